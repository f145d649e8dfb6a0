package records

import (
	"strings"
	"time"

	"github.com/agentstation/utc"

	"github.com/agentstation/datamap/pkg/constants"
)

// timestampLayouts are accepted in addition to the bare calendar date. Any
// clock time or zone is discarded; only the written calendar day is kept.
var timestampLayouts = []string{
	constants.DateLayout,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04:05Z07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
}

// Date is a nullable calendar date. Before normalization it carries the raw
// text a source supplied; after normalization it is either a valid date or null.
type Date struct {
	raw   string
	value utc.Time
	valid bool
}

// RawDate wraps unparsed source text.
func RawDate(raw string) Date {
	return Date{raw: raw}
}

// NewDate returns a valid date for the calendar day of t as written,
// dropping its clock time and zone.
func NewDate(t time.Time) Date {
	y, m, d := t.Date()
	return Date{value: utc.New(time.Date(y, m, d, 0, 0, 0, 0, time.UTC)), valid: true}
}

// ParseDate parses s as a YYYY-MM-DD date, tolerating a trailing clock time
// and zone. It reports false for anything else.
func ParseDate(s string) (Date, bool) {
	s = strings.TrimSpace(s)
	if len(s) < len(constants.DateLayout) {
		return Date{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return NewDate(t), true
		}
	}
	return Date{}, false
}

// Normalize returns the parsed date, or null when the raw text does not parse.
func (d Date) Normalize() Date {
	if d.valid {
		return d
	}
	parsed, ok := ParseDate(d.raw)
	if !ok {
		return Date{}
	}
	return parsed
}

// Valid reports whether d holds a calendar date.
func (d Date) Valid() bool {
	return d.valid
}

// IsNull reports whether d has neither a date nor raw text.
func (d Date) IsNull() bool {
	return !d.valid && d.raw == ""
}

// Time returns the date at midnight UTC, or the zero time when null.
func (d Date) Time() utc.Time {
	return d.value
}

// Raw returns the unparsed source text.
func (d Date) Raw() string {
	return d.raw
}

// String renders a valid date as YYYY-MM-DD and anything else as its raw text.
func (d Date) String() string {
	if d.valid {
		return d.value.DateOnly()
	}
	return d.raw
}

// MarshalText implements encoding.TextMarshaler.
func (d Date) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}
