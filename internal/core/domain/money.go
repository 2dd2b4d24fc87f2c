package domain

import (
	"fmt"
	"strings"
)

// Amounts are carried as int64 minor units (cents). The API boundary speaks
// decimal strings with at most two fractional digits; parsing is exact so
// "500.00" always equals a stored price of 50000.

// ParseAmount converts a decimal string like "500.00" into minor units.
// It accepts an optional fraction of one or two digits and rejects
// negatives, empty input and anything non-numeric.
func ParseAmount(s string) (int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("amount is empty")
	}
	if strings.HasPrefix(s, "-") {
		return 0, fmt.Errorf("amount must not be negative: %q", s)
	}

	whole, frac := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		whole, frac = s[:i], s[i+1:]
	}
	if whole == "" || len(frac) > 2 {
		return 0, fmt.Errorf("invalid amount: %q", s)
	}

	var units int64
	for _, c := range whole {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount: %q", s)
		}
		d := int64(c - '0')
		if units > (1<<63-1-d)/10 {
			return 0, fmt.Errorf("amount out of range: %q", s)
		}
		units = units*10 + d
	}

	cents := int64(0)
	for _, c := range frac {
		if c < '0' || c > '9' {
			return 0, fmt.Errorf("invalid amount: %q", s)
		}
		cents = cents*10 + int64(c-'0')
	}
	if len(frac) == 1 {
		cents *= 10
	}

	if units > (1<<63-1-cents)/100 {
		return 0, fmt.Errorf("amount out of range: %q", s)
	}
	return units*100 + cents, nil
}

// FormatAmount renders minor units as a decimal string with two digits.
func FormatAmount(minor int64) string {
	sign := ""
	if minor < 0 {
		sign = "-"
		minor = -minor
	}
	return fmt.Sprintf("%s%d.%02d", sign, minor/100, minor%100)
}
