// models/day.go - Calendar day used for completion dates
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
)

// Day is a calendar date with no time of day and no time zone.
// It is persisted as YYYY-MM-DD text so that ordering and DISTINCT
// behave the same on every supported database.
type Day civil.Date

// DayOf returns the calendar date of t in t's own location.
func DayOf(t time.Time) Day {
	return Day(civil.DateOf(t))
}

// Today returns the current calendar date in loc.
func Today(loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	return DayOf(time.Now().In(loc))
}

// ParseDay parses a YYYY-MM-DD string.
func ParseDay(s string) (Day, error) {
	d, err := civil.ParseDate(strings.TrimSpace(s))
	if err != nil {
		return Day{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return Day(d), nil
}

// MustParseDay is ParseDay for literals; it panics on malformed input.
func MustParseDay(s string) Day {
	d, err := ParseDay(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Day) String() string { return civil.Date(d).String() }

func (d Day) IsZero() bool { return d == Day{} }

// AddDays moves d by n calendar days (n may be negative).
func (d Day) AddDays(n int) Day {
	return Day(civil.Date(d).AddDays(n))
}

// DaysSince reports the number of calendar days from o to d.
func (d Day) DaysSince(o Day) int {
	return civil.Date(d).DaysSince(civil.Date(o))
}

func (d Day) Before(o Day) bool { return civil.Date(d).Before(civil.Date(o)) }

func (d Day) After(o Day) bool { return civil.Date(d).After(civil.Date(o)) }

func (d Day) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Day) UnmarshalText(b []byte) error {
	parsed, err := ParseDay(string(b))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value implements driver.Valuer.
func (d Day) Value() (driver.Value, error) {
	return d.String(), nil
}

// Scan implements sql.Scanner. MySQL returns []byte, DATE columns may
// come back as time.Time.
func (d *Day) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Day{}
		return nil
	case string:
		return d.UnmarshalText([]byte(v))
	case []byte:
		return d.UnmarshalText(v)
	case time.Time:
		*d = Day(civil.DateOf(v))
		return nil
	default:
		return fmt.Errorf("cannot scan %T into Day", src)
	}
}
