package utils

import "fmt"

// FormatTierDuration renders a tier length for display. nil means the tier
// carries no duration, -1 means permanent.
func FormatTierDuration(lengthDays *int64) string {
	if lengthDays == nil {
		return "N/A"
	}
	days := *lengthDays
	switch {
	case days == -1:
		return "Permanent"
	case days == 0:
		return "0 days"
	case days%365 == 0:
		return plural(days/365, "year")
	case days%30 == 0:
		return plural(days/30, "month")
	case days%7 == 0:
		return plural(days/7, "week")
	default:
		return plural(days, "day")
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
