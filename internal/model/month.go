package model

import (
	"fmt"
	"strconv"
	"time"
)

// ParseMonth splits a cashback month into year and 1-based month.
// Both "YYYYMM" and "YYYY-MM" are accepted.
func ParseMonth(month string) (year int, mon int, err error) {
	var ys, ms string
	switch {
	case len(month) == 6:
		ys, ms = month[:4], month[4:]
	case len(month) == 7 && month[4] == '-':
		ys, ms = month[:4], month[5:]
	default:
		return 0, 0, fmt.Errorf("invalid month %q", month)
	}

	year, err = strconv.Atoi(ys)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", month, err)
	}
	mon, err = strconv.Atoi(ms)
	if err != nil {
		return 0, 0, fmt.Errorf("invalid month %q: %w", month, err)
	}
	if mon < 1 || mon > 12 {
		return 0, 0, fmt.Errorf("invalid month %q: month out of range", month)
	}
	return year, mon, nil
}

func IsValidMonth(month string) bool {
	_, _, err := ParseMonth(month)
	return err == nil
}

func FormatMonth(year int, mon time.Month) string {
	return fmt.Sprintf("%04d%02d", year, int(mon))
}

func MonthOf(t time.Time) string {
	return FormatMonth(t.Year(), t.Month())
}

// AddMonths shifts a month by n (may be negative) and returns it in YYYYMM form.
func AddMonths(month string, n int) (string, error) {
	year, mon, err := ParseMonth(month)
	if err != nil {
		return "", err
	}
	t := time.Date(year, time.Month(mon)+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	return MonthOf(t), nil
}

// NormalizeMonth converts "YYYY-MM" to "YYYYMM"; other input is returned unchanged.
func NormalizeMonth(month string) string {
	year, mon, err := ParseMonth(month)
	if err != nil {
		return month
	}
	return FormatMonth(year, time.Month(mon))
}
