package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatTRY renders an amount the way Turkish invoices do: 4000 -> ₺4.000,00.
func FormatTRY(d decimal.Decimal) string {
	return "₺" + formatGrouped(d.StringFixed(2))
}

// FormatNumber renders an integer with dot thousands separators: 4000 -> 4.000.
func FormatNumber(n int64) string {
	return formatGrouped(decimal.NewFromInt(n).String())
}

func formatGrouped(s string) string {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")

	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	lead := len(intPart) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(intPart[:lead])
	for i := lead; i < len(intPart); i += 3 {
		b.WriteByte('.')
		b.WriteString(intPart[i : i+3])
	}
	if hasFrac {
		b.WriteByte(',')
		b.WriteString(frac)
	}
	return b.String()
}
