package payslip

import (
	"time"

	"folha/internal/domain/payroll"
)

// Page geometry in millimetres on an A4 portrait sheet.
const (
	PageHeight  = 297.0
	MarginX     = 15.0
	FrameWidth  = 180.0
	FrameHeight = 140.0
	TopMargin   = 6.0
	CopyOffset  = 145.0
	Copies      = 2

	tableTop    = 47.0
	tableHeight = 51.0
	headerY     = 53.0
	firstRowY   = 61.0
	rowStep     = 7.0
	totalsTop   = 100.0
	totalsH     = 12.0
	signTop     = 116.0
	signH       = 20.0

	colCode      = MarginX + 4
	colDesc      = MarginX + 17
	colEarnings  = MarginX + 135
	colDeduction = MarginX + FrameWidth - 4
	innerLeft    = MarginX + 2
	innerWidth   = FrameWidth - 4
)

type OpKind int

const (
	OpText OpKind = iota
	OpRect
	OpLine
)

type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Op is one drawing instruction. For right-aligned text X is the right edge.
type Op struct {
	Kind      OpKind
	X, Y      float64
	W, H      float64
	Text      string
	Align     Align
	Style     string
	Size      float64
	LineWidth float64
	Fill      []int
	Dashed    bool
}

type LineItem struct {
	Code        string
	Description string
	Amount      float64
	Deduction   bool
}

type Copy struct {
	Top   float64
	Items []LineItem
	Ops   []Op
}

// Layout is the full drawing plan for one page.
type Layout struct {
	Copies []Copy
	Page   []Op
}

// LineItems lists the table rows in their fixed order, omitting optional
// rows whose amount is not positive.
func LineItems(calc payroll.Calculation) []LineItem {
	items := []LineItem{{Code: "001", Description: "Salário Base", Amount: calc.BaseSalary}}
	optional := []LineItem{
		{Code: "002", Description: "Subsídio de Transporte", Amount: calc.TransportAllowance},
		{Code: "003", Description: "Subsídio de Alimentação", Amount: calc.FoodAllowance},
		{Code: "004", Description: "Horas Extras", Amount: calc.OvertimePayment},
		{Code: "101", Description: "Faltas", Amount: calc.AbsenceDeduction, Deduction: true},
		{Code: "102", Description: "Adiantamentos", Amount: calc.TotalAdvances, Deduction: true},
	}
	for _, item := range optional {
		if item.Amount > 0 {
			items = append(items, item)
		}
	}
	return items
}

func BuildLayout(employee payroll.Employee, calc payroll.Calculation, company payroll.CompanyProfile, ref time.Time) Layout {
	layout := Layout{}
	for i := 0; i < Copies; i++ {
		top := TopMargin + float64(i)*CopyOffset
		items := LineItems(calc)
		layout.Copies = append(layout.Copies, Copy{
			Top:   top,
			Items: items,
			Ops:   copyOps(top, employee, calc, company, ref, items),
		})
	}
	cut := TopMargin + FrameHeight + (CopyOffset-FrameHeight)/2
	layout.Page = []Op{{Kind: OpLine, X: 5, Y: cut, W: 200, LineWidth: 0.2, Dashed: true}}
	return layout
}

func copyOps(top float64, employee payroll.Employee, calc payroll.Calculation, company payroll.CompanyProfile, ref time.Time, items []LineItem) []Op {
	b := &opBuilder{top: top}

	b.rect(MarginX, 0, FrameWidth, FrameHeight, 0.7, nil)
	b.text(innerLeft, 8, labelTitle, AlignLeft, "B", 12)

	b.text(innerLeft, 16, company.Name, AlignLeft, "", 9)
	b.text(innerLeft, 22, company.Address, AlignLeft, "", 9)
	b.text(innerLeft, 28, labelNIF+company.NIF, AlignLeft, "", 9)

	b.text(MarginX+FrameWidth-60, 16, labelReferenceMonth, AlignLeft, "B", 9)
	b.text(MarginX+FrameWidth-2, 16, MonthLabel(ref), AlignRight, "", 9)

	b.rect(innerLeft, 31, innerWidth, 14, 0.3, nil)
	b.text(MarginX+4, 37, labelEmployee, AlignLeft, "B", 9)
	b.text(MarginX+27, 37, employee.Name, AlignLeft, "", 9)
	b.text(MarginX+4, 43, labelPosition, AlignLeft, "B", 9)
	b.text(MarginX+27, 43, employee.Position, AlignLeft, "", 9)
	b.text(MarginX+105, 37, labelBeneficiary, AlignLeft, "B", 9)
	b.text(MarginX+135, 37, blankShort, AlignLeft, "", 9)
	b.text(MarginX+105, 43, labelCategory, AlignLeft, "B", 9)
	b.text(MarginX+135, 43, blankShort, AlignLeft, "", 9)

	b.rect(innerLeft, tableTop, innerWidth, tableHeight, 0.3, nil)
	b.text(colCode, headerY, labelCode, AlignLeft, "B", 9)
	b.text(colDesc, headerY, labelDescription, AlignLeft, "B", 9)
	b.text(colEarnings, headerY, labelEarnings, AlignRight, "B", 9)
	b.text(colDeduction, headerY, labelDeductions, AlignRight, "B", 9)
	b.line(innerLeft, headerY+2, innerWidth, 0.2)

	y := firstRowY
	for _, item := range items {
		b.text(colCode, y, item.Code, AlignLeft, "", 9)
		b.text(colDesc, y, item.Description, AlignLeft, "", 9)
		if item.Deduction {
			b.text(colEarnings, y, FormatKwanza(0), AlignRight, "", 9)
			b.text(colDeduction, y, FormatDeduction(item.Amount), AlignRight, "", 9)
		} else {
			b.text(colEarnings, y, FormatKwanza(item.Amount), AlignRight, "", 9)
		}
		y += rowStep
	}

	totals := []struct {
		label string
		value float64
		x, w  float64
	}{
		{labelTotalEarnings, calc.GrossPay, innerLeft, 58},
		{labelTotalDeduction, calc.TotalDeductions(), innerLeft + 58, 58},
		{labelNetPay, calc.NetPay, innerLeft + 116, innerWidth - 116},
	}
	for _, t := range totals {
		b.rect(t.x, totalsTop, t.w, totalsH, 0.5, nil)
		b.text(t.x+2, totalsTop+4, t.label, AlignLeft, "", 8)
		b.text(t.x+t.w-2, totalsTop+10, FormatKwanza(t.value), AlignRight, "B", 10)
	}

	b.rect(innerLeft, signTop, innerWidth, signH, 0.3, []int{255, 245, 200})
	b.text(MarginX+4, signTop+6, labelDeclaration1, AlignLeft, "", 8)
	b.text(MarginX+4, signTop+11, labelDeclaration2, AlignLeft, "", 8)
	b.text(MarginX+72, signTop+6, labelDate, AlignLeft, "", 8)
	b.text(MarginX+72, signTop+13, blankDate, AlignLeft, "", 8)
	b.text(MarginX+122, signTop+6, labelSignature, AlignLeft, "", 8)
	b.text(MarginX+122, signTop+13, blankSignature, AlignLeft, "", 8)

	return b.ops
}

type opBuilder struct {
	top float64
	ops []Op
}

func (b *opBuilder) text(x, y float64, text string, align Align, style string, size float64) {
	b.ops = append(b.ops, Op{Kind: OpText, X: x, Y: b.top + y, Text: text, Align: align, Style: style, Size: size})
}

func (b *opBuilder) rect(x, y, w, h, lineWidth float64, fill []int) {
	b.ops = append(b.ops, Op{Kind: OpRect, X: x, Y: b.top + y, W: w, H: h, LineWidth: lineWidth, Fill: fill})
}

func (b *opBuilder) line(x, y, w, lineWidth float64) {
	b.ops = append(b.ops, Op{Kind: OpLine, X: x, Y: b.top + y, W: w, LineWidth: lineWidth})
}
