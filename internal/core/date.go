package core

import (
	"fmt"
	"strings"
	"time"
)

const (
	DateLayout     = "2006-01-02"
	DateTimeLayout = "2006-01-02T15:04:05"
)

// Date is a wall-clock date-time without zone. It is stored as
// DateTimeLayout so that lexical order matches chronological order.
type Date struct {
	time.Time
}

var parseLayouts = []string{
	DateTimeLayout,
	DateLayout,
	time.RFC3339Nano,
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
}

// NewDate creates a new Date at midnight of year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// NewDateTime creates a Date with a time of day.
func NewDateTime(year, month, day, hour, min, sec int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, hour, min, sec, 0, time.UTC)}
}

// ParseDate accepts a calendar date, a date-time, or RFC 3339. A zone
// offset, if present, is dropped and the wall clock kept.
func ParseDate(s string) (Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Date{}, NewValidationError("empty date")
	}
	for _, layout := range parseLayouts {
		t, err := time.Parse(layout, s)
		if err != nil {
			continue
		}
		return Date{Time: time.Date(t.Year(), t.Month(), t.Day(), t.Hour(), t.Minute(), t.Second(), 0, time.UTC)}, nil
	}
	return Date{}, NewValidationError("invalid date %q", s)
}

// MustParseDate is ParseDate for literals known to be valid.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// StartOfDay returns 00:00:00 of d's calendar day.
func (d Date) StartOfDay() Date {
	y, m, day := d.Date()
	return Date{Time: time.Date(y, m, day, 0, 0, 0, 0, time.UTC)}
}

// EndOfDay returns 23:59:59 of d's calendar day.
func (d Date) EndOfDay() Date {
	y, m, day := d.Date()
	return Date{Time: time.Date(y, m, day, 23, 59, 59, 0, time.UTC)}
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(DateTimeLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := string(b)
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	if len(s) < 2 || s[0] != '"' || s[len(s)-1] != '"' {
		return fmt.Errorf("date must be a JSON string, got %s", s)
	}
	parsed, err := ParseDate(s[1 : len(s)-1])
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
