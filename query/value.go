package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Value is the payload of a leaf or a filter.
// Concrete types are Text, Number, *ModuleTerm and Raw.
type Value interface {
	// String returns the form used inside the query string grammar.
	String() string
	// IsZero reports whether the value counts as empty when rendering.
	IsZero() bool
}

// Text is a plain string value.
type Text string

func (t Text) String() string { return string(t) }

// IsZero reports whether the text is empty.
func (t Text) IsZero() bool { return t == "" }

// Number is a numeric value, usually the operand of a comparison filter.
type Number float64

// String formats the number without exponent or trailing zeros, so 42 renders as "42".
func (n Number) String() string {
	return strconv.FormatFloat(float64(n), 'f', -1, 64)
}

// IsZero reports whether the number is 0.
func (n Number) IsZero() bool { return n == 0 }

// Raw is any other JSON value (bool, object, array) carried through untouched.
type Raw json.RawMessage

func (r Raw) String() string { return string(r) }

// IsZero reports whether the raw value is empty, null or false.
func (r Raw) IsZero() bool {
	s := string(bytes.TrimSpace(r))
	return s == "" || s == "null" || s == "false"
}

// MarshalJSON writes the raw bytes back out.
func (r Raw) MarshalJSON() ([]byte, error) {
	if len(bytes.TrimSpace(r)) == 0 {
		return []byte("null"), nil
	}
	return []byte(r), nil
}

// isEmpty treats a nil Value as empty.
func isEmpty(v Value) bool {
	return v == nil || v.IsZero()
}

// decodeValue maps a JSON value onto the Value types.
// Absent or null values decode to nil.
func decodeValue(data json.RawMessage) (Value, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode string value: %w", err)
		}
		return Text(s), nil
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		var f float64
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("failed to decode numeric value: %w", err)
		}
		return Number(f), nil
	default:
		raw := make(Raw, len(data))
		copy(raw, data)
		return raw, nil
	}
}

// cloneValue copies values that own memory.
func cloneValue(v Value) Value {
	switch val := v.(type) {
	case *ModuleTerm:
		return val.Clone()
	case Raw:
		raw := make(Raw, len(val))
		copy(raw, val)
		return raw
	default:
		return v
	}
}

// valuesEqual compares two values. A module term equals a text holding its
// compact form, since module terms travel as strings.
func valuesEqual(a, b Value) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	switch av := a.(type) {
	case Text:
		switch bv := b.(type) {
		case Text:
			return av == bv
		case *ModuleTerm:
			return string(av) == bv.String()
		}
	case Number:
		bv, ok := b.(Number)
		return ok && av == bv
	case *ModuleTerm:
		switch b.(type) {
		case Text, *ModuleTerm:
			return av.String() == b.String()
		}
	case Raw:
		bv, ok := b.(Raw)
		return ok && bytes.Equal(av, bv)
	}
	return false
}
