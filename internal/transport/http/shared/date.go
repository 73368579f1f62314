package shared

import (
	"strings"
	"time"
)

// ParseMonth accepts YYYY-MM or YYYY-MM-DD and returns the first day of that
// month in UTC. An empty value yields the zero time.
func ParseMonth(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, nil
	}
	parsed, err := time.Parse("2006-01", value)
	if err != nil {
		parsed, err = time.Parse(time.DateOnly, value)
		if err != nil {
			return time.Time{}, err
		}
	}
	return time.Date(parsed.Year(), parsed.Month(), 1, 0, 0, 0, 0, time.UTC), nil
}
