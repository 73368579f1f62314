package payslip

import (
	"bytes"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
	"go.uber.org/zap"

	"folha/internal/domain/payroll"
)

var (
	ErrMissingInput  = errors.New("payslip input missing")
	ErrInvalidAmount = errors.New("payslip amount not a finite number")
)

const fontFamily = "Helvetica"

// Renderer lays out and draws payslip documents. It never recomputes
// amounts; it formats the calculation it is given.
type Renderer struct {
	Author string
	Logger *zap.Logger
}

func NewRenderer() *Renderer {
	return &Renderer{Logger: zap.NewNop()}
}

func (r *Renderer) Render(employee payroll.Employee, calc payroll.Calculation, company payroll.CompanyProfile, ref time.Time) (payroll.Document, error) {
	if err := checkInputs(employee, calc, company, ref); err != nil {
		return payroll.Document{}, err
	}

	layout := BuildLayout(employee, calc, company, ref)
	content, err := r.draw(layout, employee.ID, company, ref)
	if err != nil {
		return payroll.Document{}, fmt.Errorf("draw payslip: %w", err)
	}

	return payroll.Document{
		EmployeeID:     employee.ID,
		FileName:       FileName(employee.Name, ref),
		ReferenceMonth: MonthKey(ref),
		ContentType:    payroll.ContentTypePDF,
		Content:        content,
	}, nil
}

func checkInputs(employee payroll.Employee, calc payroll.Calculation, company payroll.CompanyProfile, ref time.Time) error {
	missing := func(field string) error {
		return &payroll.ValidationError{Field: field, Reason: "is required", Err: ErrMissingInput}
	}
	switch {
	case strings.TrimSpace(employee.ID) == "":
		return missing("employee.id")
	case strings.TrimSpace(employee.Name) == "":
		return missing("employee.name")
	case calc.EmployeeID == "":
		return missing("calculation.employeeId")
	case calc.EmployeeID != employee.ID:
		return &payroll.ValidationError{Field: "calculation.employeeId", Reason: "does not match employee", Err: ErrMissingInput}
	case strings.TrimSpace(company.Name) == "":
		return missing("company.name")
	case ref.IsZero():
		return missing("referenceDate")
	}
	return checkAmounts(calc)
}

func checkAmounts(calc payroll.Calculation) error {
	amounts := []struct {
		field string
		value float64
	}{
		{"baseSalary", calc.BaseSalary},
		{"transportAllowance", calc.TransportAllowance},
		{"foodAllowance", calc.FoodAllowance},
		{"overtimePayment", calc.OvertimePayment},
		{"totalAdvances", calc.TotalAdvances},
		{"absenceDeduction", calc.AbsenceDeduction},
		{"grossPay", calc.GrossPay},
		{"netPay", calc.NetPay},
	}
	for _, a := range amounts {
		if math.IsNaN(a.value) || math.IsInf(a.value, 0) {
			return &payroll.ValidationError{Field: "calculation." + a.field, Reason: "must be a finite number", Err: ErrInvalidAmount}
		}
	}
	return nil
}

func (r *Renderer) draw(layout Layout, employeeID string, company payroll.CompanyProfile, ref time.Time) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	// Pinning the creation date to the month keeps output byte-identical
	// for every render within one reference month.
	pdf.SetCreationDate(time.Date(ref.Year(), ref.Month(), 1, 0, 0, 0, 0, time.UTC))
	pdf.SetCatalogSort(true)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetTitle(labelTitle+" "+MonthLabel(ref), true)
	pdf.SetCreator(company.Name, true)
	if r.Author != "" {
		pdf.SetAuthor(r.Author, true)
	}
	pdf.AddPage()
	tr := r.translator(pdf.UnicodeTranslatorFromDescriptor(""), employeeID)

	for _, c := range layout.Copies {
		drawOps(pdf, tr, c.Ops)
	}
	drawOps(pdf, tr, layout.Page)

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func drawOps(pdf *gofpdf.Fpdf, tr func(string) string, ops []Op) {
	for _, op := range ops {
		switch op.Kind {
		case OpText:
			pdf.SetFont(fontFamily, op.Style, op.Size)
			text := tr(op.Text)
			x := op.X
			if op.Align == AlignRight {
				x -= pdf.GetStringWidth(text)
			}
			pdf.Text(x, op.Y, text)
		case OpRect:
			pdf.SetLineWidth(op.LineWidth)
			if len(op.Fill) == 3 {
				pdf.SetFillColor(op.Fill[0], op.Fill[1], op.Fill[2])
				pdf.Rect(op.X, op.Y, op.W, op.H, "FD")
				continue
			}
			pdf.Rect(op.X, op.Y, op.W, op.H, "D")
		case OpLine:
			pdf.SetLineWidth(op.LineWidth)
			if op.Dashed {
				pdf.SetDashPattern([]float64{2, 2}, 0)
			}
			pdf.Line(op.X, op.Y, op.X+op.W, op.Y)
			if op.Dashed {
				pdf.SetDashPattern([]float64{}, 0)
			}
		}
	}
}

// translator wraps the cp1252 translator and warns when a string loses
// characters the core fonts cannot draw.
func (r *Renderer) translator(tr func(string) string, employeeID string) func(string) string {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(text string) string {
		out := tr(text)
		if lost := LostRunes(text, out); len(lost) > 0 {
			logger.Warn("payslip text not representable in cp1252",
				zap.String("employeeId", employeeID),
				zap.String("text", text),
				zap.String("replaced", string(lost)),
			)
		}
		return out
	}
}

// LostRunes lists the runes of text that a single-byte translation replaced
// with '.'.
func LostRunes(text, translated string) []rune {
	var lost []rune
	i := 0
	for _, r := range text {
		if i >= len(translated) {
			break
		}
		if r != '.' && translated[i] == '.' {
			lost = append(lost, r)
		}
		i++
	}
	return lost
}
