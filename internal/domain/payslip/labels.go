package payslip

import (
	"fmt"
	"regexp"
	"time"
)

const (
	labelTitle          = "Recibo de Pagamento"
	labelReferenceMonth = "Mês de Referência:"
	labelNIF            = "NIF: "
	labelEmployee       = "Funcionário:"
	labelPosition       = "Cargo:"
	labelBeneficiary    = "Nº Beneficiário:"
	labelCategory       = "Categoria:"
	labelCode           = "Cód."
	labelDescription    = "Descrição"
	labelEarnings       = "Vencimentos"
	labelDeductions     = "Descontos"
	labelTotalEarnings  = "Total de Vencimentos"
	labelTotalDeduction = "Total de Descontos"
	labelNetPay         = "Valor Líquido"
	labelDeclaration1   = "DECLARO TER RECEBIDO A IMPORTÂNCIA"
	labelDeclaration2   = "LÍQUIDA DISCRIMINADA NESTE RECIBO"
	labelDate           = "DATA"
	labelSignature      = "ASSINATURA DO EMPREGADO"
	blankShort          = "__________"
	blankDate           = "___/___/______"
	blankSignature      = "_________________________"

	fileNamePrefix = "recibo_pagamento_"
	fileNameSep    = "_"
)

var monthNames = [...]string{
	"janeiro", "fevereiro", "março", "abril", "maio", "junho",
	"julho", "agosto", "setembro", "outubro", "novembro", "dezembro",
}

var nameSeparators = regexp.MustCompile(`[\s/\\]+`)

// MonthLabel is the reference month printed on the slip, e.g. "10/2026".
func MonthLabel(ref time.Time) string {
	return ref.Format("01/2006")
}

// MonthKey identifies the reference month, e.g. "2026-10".
func MonthKey(ref time.Time) string {
	return ref.Format("2006-01")
}

// LongMonth spells the month out, e.g. "outubro de 2026".
func LongMonth(ref time.Time) string {
	return fmt.Sprintf("%s de %d", monthNames[ref.Month()-1], ref.Year())
}

// FileName derives the download name from the employee name and reference
// month, with every run of whitespace or path separators replaced by an
// underscore.
func FileName(employeeName string, ref time.Time) string {
	base := fileNamePrefix + employeeName + fileNameSep + LongMonth(ref)
	return nameSeparators.ReplaceAllString(base, fileNameSep) + ".pdf"
}
