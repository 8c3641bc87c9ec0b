package facts

import (
	"errors"
	"fmt"
	"time"
)

// DayFormat is the calendar-day layout used for all fact keys and dedupe
// keys.
const DayFormat = "2006-01-02"

// ErrInvalidDay indicates a date string that is not a YYYY-MM-DD day.
var ErrInvalidDay = errors.New("invalid day: expected YYYY-MM-DD")

// ParseDay parses a YYYY-MM-DD calendar day.
func ParseDay(day string) (time.Time, error) {
	t, err := time.Parse(DayFormat, day)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDay, day)
	}
	return t, nil
}

// FormatDay formats a time as a YYYY-MM-DD calendar day.
func FormatDay(t time.Time) string {
	return t.Format(DayFormat)
}

// DayBefore returns the calendar day n days before the given day.
func DayBefore(day string, n int) (string, error) {
	t, err := ParseDay(day)
	if err != nil {
		return "", err
	}
	return FormatDay(t.AddDate(0, 0, -n)), nil
}
