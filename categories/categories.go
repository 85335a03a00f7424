// Package categories holds the vocabulary of searchable categories: which
// categories exist, what kind of value each takes, and which filters can be
// attached to it.
package categories

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/tailscale/hujson"

	"asdb_search/query"
)

// UnsetType is reported for categories that are not in the vocabulary.
const UnsetType = "unset"

// FilterChoices are the selectable values of a filter, in their original order.
type FilterChoices struct {
	Labels  []string
	Choices map[string]float64
}

// UnmarshalJSON reads a JSON object of label to number, keeping member order.
func (c *FilterChoices) UnmarshalJSON(data []byte) error {
	c.Labels = nil
	c.Choices = make(map[string]float64)

	v, err := hujson.Parse(data)
	if err != nil {
		return fmt.Errorf("failed to parse choices: %w", err)
	}
	switch obj := v.Value.(type) {
	case *hujson.Object:
		for _, member := range obj.Members {
			label := member.Name.Value.(hujson.Literal).String()
			var value float64
			if lit, ok := member.Value.Value.(hujson.Literal); ok {
				value = lit.Float()
			}
			if _, seen := c.Choices[label]; !seen {
				c.Labels = append(c.Labels, label)
			}
			c.Choices[label] = value
		}
		return nil
	case hujson.Literal:
		if obj.Kind() == 'n' {
			return nil
		}
	}
	return fmt.Errorf("choices must be an object, got %c", v.Value.Kind())
}

// MarshalJSON writes the choices as an object in label order.
func (c FilterChoices) MarshalJSON() ([]byte, error) {
	obj := &hujson.Object{}
	for _, label := range c.Labels {
		obj.Members = append(obj.Members, hujson.ObjectMember{
			Name:  hujson.Value{Value: hujson.String(label)},
			Value: hujson.Value{Value: hujson.Float(c.Choices[label])},
		})
	}
	v := hujson.Value{Value: obj}
	return v.Pack(), nil
}

// Filter describes a filter that can be attached to a category.
type Filter struct {
	Label   string        `json:"label"`
	Type    string        `json:"type"`
	Value   string        `json:"value"`
	Choices FilterChoices `json:"choices"`
}

// Option is a searchable category.
type Option struct {
	Label       string   `json:"label"`
	Value       string   `json:"value"`
	Type        string   `json:"type"`
	Countable   bool     `json:"countable"`
	Description string   `json:"description"`
	Filters     []Filter `json:"filters"`
}

// Group is a titled list of options.
type Group struct {
	Header  string   `json:"header"`
	Options []Option `json:"options"`
}

// Categories is the full vocabulary with lookups by category value.
type Categories struct {
	Options []Option `json:"options"`
	Groups  []Group  `json:"groups"`

	types   map[string]string
	filters map[string][]Filter
}

// New creates a vocabulary from options and groups.
func New(options []Option, groups []Group) *Categories {
	c := &Categories{Options: options, Groups: groups}
	c.updateMappings()
	return c
}

// Load reads a vocabulary file. Comments and trailing commas are allowed.
func Load(path string) (*Categories, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	c := &Categories{}
	if err := c.LoadJSON(data); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return c, nil
}

// LoadJSON replaces the vocabulary with the one in data.
func (c *Categories) LoadJSON(data []byte) error {
	data, err := hujson.Standardize(data)
	if err != nil {
		return err
	}

	var raw struct {
		Options []Option `json:"options"`
		Groups  []Group  `json:"groups"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	c.Options = raw.Options
	c.Groups = raw.Groups
	c.updateMappings()
	return nil
}

// updateMappings rebuilds the lookups. Group options win over top-level
// options with the same value.
func (c *Categories) updateMappings() {
	c.types = make(map[string]string)
	c.filters = make(map[string][]Filter)

	for _, option := range c.Options {
		c.types[option.Value] = option.Type
		c.filters[option.Value] = option.Filters
	}
	for _, group := range c.Groups {
		for _, option := range group.Options {
			c.types[option.Value] = option.Type
			c.filters[option.Value] = option.Filters
		}
	}
}

// HasData reports whether both options and groups are loaded.
func (c *Categories) HasData() bool {
	return len(c.Options) > 0 && len(c.Groups) > 0
}

// Type returns the value type of a category, or UnsetType.
func (c *Categories) Type(name string) string {
	if t, ok := c.types[name]; ok {
		return t
	}
	return UnsetType
}

// Filters returns the filters available for a category.
func (c *Categories) Filters(name string) []Filter {
	return c.filters[name]
}

// Known reports whether name is a category in the vocabulary.
func (c *Categories) Known(name string) bool {
	_, ok := c.types[name]
	return ok
}

// Validate checks every leaf of a tree against the vocabulary: categories
// must be known and filters must be offered by their category. Blank leaves
// are skipped. All problems are reported together.
func (c *Categories) Validate(term *query.Term) error {
	var errs []error
	term.Leaves(func(e *query.Expr) {
		if e.Category == "" {
			return
		}
		if !c.Known(e.Category) {
			errs = append(errs, fmt.Errorf("unknown category %q", e.Category))
			return
		}
		available := c.Filters(e.Category)
		for _, f := range e.Filters {
			if !hasFilter(available, f.Name) {
				errs = append(errs, fmt.Errorf("category %q has no filter %q", e.Category, f.Name))
			}
		}
	})
	return errors.Join(errs...)
}

func hasFilter(filters []Filter, name string) bool {
	for _, f := range filters {
		if f.Value == name {
			return true
		}
	}
	return false
}
