package records

import (
	"strconv"
	"strings"
)

// Number is a nullable numeric field such as a file size or record count.
type Number struct {
	value float64
	valid bool
}

// NewNumber returns a valid number.
func NewNumber(v float64) Number {
	return Number{value: v, valid: true}
}

// ParseNumber parses s, returning an empty Number for blank or non-numeric text.
func ParseNumber(s string) Number {
	s = strings.TrimSpace(s)
	if s == "" {
		return Number{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v != v { // NaN
		return Number{}
	}
	return NewNumber(v)
}

// Valid reports whether n holds a value.
func (n Number) Valid() bool {
	return n.valid
}

// Value returns the number, or zero when empty.
func (n Number) Value() float64 {
	return n.value
}

// String renders the shortest exact decimal form, or "" when empty.
func (n Number) String() string {
	if !n.valid {
		return ""
	}
	return strconv.FormatFloat(n.value, 'f', -1, 64)
}

// MarshalText implements encoding.TextMarshaler.
func (n Number) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}
