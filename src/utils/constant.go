package utils

import (
	"fmt"
	"strconv"
	"strings"
)

// -----------------------------------------------------------------------------

// Range limits for a correlation window. Yahoo daily bars and Reddit's
// listing depth both get unreliable beyond a year.
const (
	DefaultRangeDays = 30
	MaxRangeDays     = 365
)

// -----------------------------------------------------------------------------

// ParseRangeDays accepts "30", "30d", "4w", "3m"/"3mo" or "1y" and returns
// the number of days. Empty input yields fallback.
func ParseRangeDays(s string, fallback int) (int, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return fallback, nil
	}

	multiplier := 1
	switch {
	case strings.HasSuffix(s, "mo"):
		multiplier, s = 30, strings.TrimSuffix(s, "mo")
	case strings.HasSuffix(s, "d"):
		s = strings.TrimSuffix(s, "d")
	case strings.HasSuffix(s, "w"):
		multiplier, s = 7, strings.TrimSuffix(s, "w")
	case strings.HasSuffix(s, "m"):
		multiplier, s = 30, strings.TrimSuffix(s, "m")
	case strings.HasSuffix(s, "y"):
		multiplier, s = 365, strings.TrimSuffix(s, "y")
	}

	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid range %q", s)
	}
	days := n * multiplier
	if days <= 0 || days > MaxRangeDays {
		return 0, fmt.Errorf("range must be between 1 and %d days, got %d", MaxRangeDays, days)
	}
	return days, nil
}
