package model

import (
	"fmt"
	"time"
)

// Legacy string layouts carried over from the existing database files.
const (
	DateLayout = "02-01-2006"
	TimeLayout = "15:04"
)

// ValidateDateString checks a DD-MM-YYYY date string.
func ValidateDateString(s string) error {
	if _, err := time.Parse(DateLayout, s); err != nil {
		return fmt.Errorf("invalid date %q, expected DD-MM-YYYY: %w", s, err)
	}
	return nil
}

// ValidateTimeString checks an HH:MM time-of-day string.
func ValidateTimeString(s string) error {
	if _, err := time.Parse(TimeLayout, s); err != nil {
		return fmt.Errorf("invalid time %q, expected HH:MM: %w", s, err)
	}
	return nil
}

// CombineDateTime parses a date and time string pair into a time.Time
// in the local zone, at minute granularity.
func CombineDateTime(date, clock string) (time.Time, error) {
	t, err := time.ParseInLocation(DateLayout+" "+TimeLayout, date+" "+clock, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date/time pair %q %q: %w", date, clock, err)
	}
	return t, nil
}
