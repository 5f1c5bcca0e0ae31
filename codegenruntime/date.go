// Package codegenruntime holds the small set of concrete Go types that
// generated code imports by name but this module does not itself generate:
// wire-format wrappers for OpenAPI's date-only and time-only string formats,
// which have no exact standard-library equivalent (time.Time always carries
// a date, a time, and a zone).
package codegenruntime

import (
	"strconv"
	"time"
)

const dateLayout = "2006-01-02"
const timeLayout = "15:04:05"

// Date represents an OpenAPI "format: date" value: a calendar date with no
// time-of-day or zone component.
type Date struct {
	time.Time
}

// MarshalJSON renders the date as a quoted RFC 3339 full-date string.
func (d Date) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, d.Time.Format(dateLayout)), nil
}

// UnmarshalJSON parses a quoted RFC 3339 full-date string.
func (d *Date) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return err
	}
	d.Time = t
	return nil
}

// TimeOfDay represents an OpenAPI "format: time" value: a time with no date
// component.
type TimeOfDay struct {
	time.Time
}

// MarshalJSON renders the time as a quoted partial-time string.
func (t TimeOfDay) MarshalJSON() ([]byte, error) {
	return strconv.AppendQuote(nil, t.Time.Format(timeLayout)), nil
}

// UnmarshalJSON parses a quoted partial-time string.
func (t *TimeOfDay) UnmarshalJSON(data []byte) error {
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := time.Parse(timeLayout, s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

// ParseDate parses a bare (unquoted) "format: date" string, for contexts
// outside JSON bodies — query parameters, path segments, headers — that
// carry the same wire format without surrounding quotes.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{Time: t}, nil
}

// ParseTimeOfDay parses a bare (unquoted) "format: time" string, for
// contexts outside JSON bodies that carry the same wire format without
// surrounding quotes.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return TimeOfDay{}, err
	}
	return TimeOfDay{Time: t}, nil
}
