package utils

import (
	"fmt"
	"strings"
)

// FormatMoney renders an amount with thousand separators, e.g. 1500000 ->
// "1,500,000". Fractions are dropped; nightly rates are whole amounts.
func FormatMoney(amount float64) string {
	neg := amount < 0
	if neg {
		amount = -amount
	}
	s := fmt.Sprintf("%.0f", amount)

	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)

	out := strings.Join(parts, ",")
	if neg {
		out = "-" + out
	}
	return out
}
