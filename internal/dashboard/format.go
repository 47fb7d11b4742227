package dashboard

import (
	"fmt"
	"math"
	"strings"
)

// FormatInt formats an integer with comma separators.
func FormatInt(n int64) string {
	if n < 0 {
		return "-" + FormatInt(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	start := len(s) % 3
	if start > 0 {
		b.WriteString(s[:start])
	}
	for i := start; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// FormatVolume formats a share volume with B/M/K suffixes.
func FormatVolume(v int64) string {
	f := float64(v)
	switch {
	case f >= 1e9:
		return fmt.Sprintf("%.1fB", f/1e9)
	case f >= 1e6:
		return fmt.Sprintf("%.1fM", f/1e6)
	case f >= 1e3:
		return fmt.Sprintf("%.1fK", f/1e3)
	default:
		return fmt.Sprintf("%d", v)
	}
}

// maxCents bounds prices whose cent count still fits in an int64.
const maxCents = 9e18

// FormatPrice formats a price as $X.XX with thousands separators, or "-"
// when the value is not a usable price.
func FormatPrice(p float64) string {
	if p < 0 || math.IsNaN(p) || math.IsInf(p, 0) || p*100 >= maxCents {
		return "-"
	}
	cents := int64(math.Round(p * 100))
	return fmt.Sprintf("$%s.%02d", FormatInt(cents/100), cents%100)
}

// FormatChange formats a signed dollar change as "+X.XX" or "-X.XX".
func FormatChange(c float64) string {
	if math.IsNaN(c) || math.IsInf(c, 0) {
		return "-"
	}
	if math.Round(c*100) == 0 {
		return "0.00"
	}
	return fmt.Sprintf("%+.2f", c)
}

// FormatPercent formats a signed percentage (already in percent units) as
// "+X.XX%". Drops decimals at 100% and above to keep width compact.
func FormatPercent(p float64) string {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return "-"
	}
	if math.Round(p*100) == 0 {
		return "0.00%"
	}
	if math.Abs(p) >= 100 {
		return fmt.Sprintf("%+.0f%%", p)
	}
	return fmt.Sprintf("%+.2f%%", p)
}

// FormatRatio formats a fraction (0.125) as a percentage ("12.5%").
func FormatRatio(r float64) string {
	if r <= 0 || math.IsNaN(r) || math.IsInf(r, 0) {
		return ""
	}
	pct := r * 100
	if pct >= 100 {
		return fmt.Sprintf("%.0f%%", pct)
	}
	return fmt.Sprintf("%.1f%%", pct)
}
