// feed/format.go
package feed

import "fmt"

// FormatPrice renders a USD price with precision tiered by magnitude,
// so sub-dollar assets keep meaningful digits.
func FormatPrice(price float64) string {
	switch {
	case price >= 1000:
		return fmt.Sprintf("$%.2f", price)
	case price >= 1:
		return fmt.Sprintf("$%.4f", price)
	default:
		return fmt.Sprintf("$%.6f", price)
	}
}

// FormatPercent renders a signed percentage.
func FormatPercent(pct float64) string {
	if pct >= 0 {
		return fmt.Sprintf("+%.2f%%", pct)
	}
	return fmt.Sprintf("%.2f%%", pct)
}

// FormatLargeNumber abbreviates volumes and totals.
func FormatLargeNumber(n float64) string {
	switch {
	case n >= 1e9:
		return fmt.Sprintf("$%.2fB", n/1e9)
	case n >= 1e6:
		return fmt.Sprintf("$%.2fM", n/1e6)
	case n >= 1e3:
		return fmt.Sprintf("$%.2fK", n/1e3)
	default:
		return fmt.Sprintf("$%.2f", n)
	}
}
