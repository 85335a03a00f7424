package query

import (
	"encoding/json"
	"fmt"
)

// Filter is an auxiliary constraint attached to a leaf, rendered as a WITH clause.
type Filter struct {
	Name     string
	Value    Value
	Operator string
}

// NewFilter creates a filter. A nil value is stored as empty text.
func NewFilter(name string, value Value, operator string) Filter {
	if value == nil {
		value = Text("")
	}
	return Filter{Name: name, Value: value, Operator: operator}
}

// String renders the filter clause including its leading space:
//
//	 WITH [name]                  boolean filter (no value)
//	 WITH [name|value]            text filter (no operator)
//	 WITH [name|operator:value]   comparison filter
func (f Filter) String() string {
	if isEmpty(f.Value) {
		return " WITH [" + f.Name + "]"
	}
	if f.Operator == "" {
		return " WITH [" + f.Name + "|" + f.Value.String() + "]"
	}
	return " WITH [" + f.Name + "|" + f.Operator + ":" + f.Value.String() + "]"
}

// filterRecord is the JSON shape of a filter.
type filterRecord struct {
	Name     string          `json:"name"`
	Operator string          `json:"operator"`
	Value    json.RawMessage `json:"value"`
}

// MarshalJSON writes {name, operator, value}.
func (f Filter) MarshalJSON() ([]byte, error) {
	value := f.Value
	if value == nil {
		value = Text("")
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("failed to encode value of filter %q: %w", f.Name, err)
	}
	return json.Marshal(filterRecord{Name: f.Name, Operator: f.Operator, Value: raw})
}

// UnmarshalJSON reads {name, value, operator}; missing value and operator default to "".
// Neither field is validated.
func (f *Filter) UnmarshalJSON(data []byte) error {
	var rec filterRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return fmt.Errorf("failed to decode filter: %w", err)
	}
	value, err := decodeValue(rec.Value)
	if err != nil {
		return fmt.Errorf("filter %q: %w", rec.Name, err)
	}
	*f = NewFilter(rec.Name, value, rec.Operator)
	return nil
}

// FilterFromJSON builds a filter from its JSON object.
func FilterFromJSON(data []byte) (Filter, error) {
	var f Filter
	err := f.UnmarshalJSON(data)
	return f, err
}

func (f Filter) clone() Filter {
	f.Value = cloneValue(f.Value)
	return f
}

func (f Filter) equal(o Filter) bool {
	return f.Name == o.Name && f.Operator == o.Operator && valuesEqual(f.Value, o.Value)
}
