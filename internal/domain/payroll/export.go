package payroll

import (
	"bytes"
	"context"
	"fmt"

	"github.com/xuri/excelize/v2"
)

const (
	summarySheet      = "Folha"
	kwanzaNumberFmt   = `#,##0.00 "Kz"`
	ContentTypeXLSX   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	summaryExportName = "folha_pagamento.xlsx"
)

var summaryHeaders = []string{
	"ID", "Funcionário", "Cargo", "Salário Base", "Subsídio de Transporte",
	"Subsídio de Alimentação", "Horas Extras", "Faltas", "Adiantamentos",
	"Total Bruto", "Valor Líquido",
}

// ExportSummary writes the filtered payroll summary as an XLSX workbook.
func (s *Service) ExportSummary(ctx context.Context, filter SummaryFilter) (*bytes.Buffer, string, error) {
	summary, err := s.Summary(ctx, filter)
	if err != nil {
		return nil, "", err
	}
	buf, err := buildWorkbook(summary)
	if err != nil {
		return nil, "", fmt.Errorf("build workbook: %w", err)
	}
	return buf, summaryExportName, nil
}

func buildWorkbook(summary Summary) (*bytes.Buffer, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	numFmt := kwanzaNumberFmt
	moneyStyle, err := f.NewStyle(&excelize.Style{CustomNumFmt: &numFmt})
	if err != nil {
		return nil, err
	}

	for col, header := range summaryHeaders {
		if err := setCell(f, col+1, 1, header); err != nil {
			return nil, err
		}
	}
	lastCol, _ := excelize.ColumnNumberToName(len(summaryHeaders))
	if err := f.SetCellStyle(summarySheet, "A1", lastCol+"1", headerStyle); err != nil {
		return nil, err
	}

	for i, row := range summary.Rows {
		r := i + 2
		c := row.Calculation
		values := []any{
			row.Employee.ID, row.Employee.Name, row.Employee.Position,
			c.BaseSalary, c.TransportAllowance, c.FoodAllowance, c.OvertimePayment,
			c.AbsenceDeduction, c.TotalAdvances, c.GrossPay, c.NetPay,
		}
		for col, value := range values {
			if err := setCell(f, col+1, r, value); err != nil {
				return nil, err
			}
		}
	}

	totalRow := len(summary.Rows) + 2
	if err := setCell(f, 2, totalRow, "Total"); err != nil {
		return nil, err
	}
	if err := setCell(f, 9, totalRow, summary.TotalAdvances); err != nil {
		return nil, err
	}
	if err := setCell(f, 11, totalRow, summary.TotalPayroll); err != nil {
		return nil, err
	}
	if err := f.SetCellStyle(summarySheet, fmt.Sprintf("D%d", 2), fmt.Sprintf("%s%d", lastCol, totalRow), moneyStyle); err != nil {
		return nil, err
	}
	if err := f.SetColWidth(summarySheet, "B", lastCol, 20); err != nil {
		return nil, err
	}

	return f.WriteToBuffer()
}

func setCell(f *excelize.File, col, row int, value any) error {
	cell, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	return f.SetCellValue(summarySheet, cell, value)
}
