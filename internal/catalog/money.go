package catalog

import (
	"strings"

	"github.com/shopspring/decimal"
)

// FormatINR renders an amount the way the storefront shows prices: rupee sign, Indian
// digit grouping (12,34,567) and no fraction digits.
func FormatINR(amount decimal.Decimal) string {
	rounded := amount.Round(0)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	return sign + "₹" + groupIndian(rounded.StringFixed(0))
}

func groupIndian(digits string) string {
	if len(digits) <= 3 {
		return digits
	}
	head, tail := digits[:len(digits)-3], digits[len(digits)-3:]

	var parts []string
	for len(head) > 2 {
		parts = append([]string{head[len(head)-2:]}, parts...)
		head = head[:len(head)-2]
	}
	parts = append([]string{head}, parts...)
	return strings.Join(parts, ",") + "," + tail
}
