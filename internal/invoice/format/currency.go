package format

import (
	"fmt"
	"math"
	"strings"
)

// Currency renders an amount for display, grouping thousands with dots
// in the Indonesian style. Amounts are rounded to whole units; IDR has
// no commonly used fractional display.
func Currency(currency string, amount float64) string {
	prefix := strings.ToUpper(strings.TrimSpace(currency))
	if prefix == "" || prefix == "IDR" {
		prefix = "Rp"
	}

	negative := amount < 0
	whole := int64(math.Round(math.Abs(amount)))

	digits := fmt.Sprintf("%d", whole)
	var groups []string
	for len(digits) > 3 {
		groups = append([]string{digits[len(digits)-3:]}, groups...)
		digits = digits[:len(digits)-3]
	}
	groups = append([]string{digits}, groups...)

	out := prefix + " " + strings.Join(groups, ".")
	if negative {
		return "-" + out
	}
	return out
}
