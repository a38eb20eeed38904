package prompts

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatPrice renders a VND amount with dot thousand separators, e.g. 22.990.000 ₫.
func FormatPrice(amount float64) string {
	d := decimal.NewFromFloat(amount).Round(0)

	digits := d.Abs().StringFixed(0)
	var sb strings.Builder
	if d.IsNegative() {
		sb.WriteByte('-')
	}
	for i, r := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			sb.WriteByte('.')
		}
		sb.WriteRune(r)
	}
	sb.WriteString(" ₫")
	return sb.String()
}
