package domain

import (
	"strings"
	"time"
)

// DateLayout is the canonical calendar date format
const DateLayout = "2006-01-02"

// Date is a calendar date without a time component, stored as YYYY-MM-DD
type Date string

// ParseDate accepts YYYY-MM-DD or an RFC 3339 timestamp and returns the
// canonical date.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", Invalid("date is required")
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return Date(t.Format(DateLayout)), nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return Date(t.Format(DateLayout)), nil
	}
	return "", Invalid("date %q must be formatted as YYYY-MM-DD", s)
}

// Time returns midnight UTC of the date
func (d Date) Time() (time.Time, error) {
	return time.Parse(DateLayout, string(d))
}

func (d Date) String() string { return string(d) }
