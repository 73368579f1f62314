package payslip

import (
	"strings"

	"github.com/shopspring/decimal"
)

const currencySuffix = " Kz"

// FormatKwanza renders an amount as "450 000,00 Kz". Rounding to cents
// happens here only.
func FormatKwanza(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	fixed := d.StringFixed(2)
	intPart, fracPart, _ := strings.Cut(fixed, ".")
	return sign + groupThousands(intPart) + "," + fracPart + currencySuffix
}

// FormatDeduction shows an amount in the deductions column.
func FormatDeduction(amount float64) string {
	return FormatKwanza(-amount)
}

func groupThousands(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	var b strings.Builder
	head := len(digits) % 3
	if head > 0 {
		b.WriteString(digits[:head])
	}
	for i := head; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(digits[i : i+3])
	}
	return b.String()
}
