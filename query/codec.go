package query

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// opRecord is the transfer form of an op node.
type opRecord struct {
	TermType  TermType `json:"termType"`
	Operation string   `json:"operation"`
	Left      *Term    `json:"left,omitempty"`
	Right     *Term    `json:"right,omitempty"`
}

// exprRecord is the transfer form of a leaf.
type exprRecord struct {
	TermType TermType `json:"termType"`
	Category string   `json:"category"`
	Value    Value    `json:"value"`
	Filters  []Filter `json:"filters"`
	Count    int      `json:"count"`
}

// record is the union of both transfer forms, used for decoding.
type record struct {
	TermType  TermType        `json:"termType"`
	Operation string          `json:"operation"`
	Left      json.RawMessage `json:"left"`
	Right     json.RawMessage `json:"right"`
	Category  string          `json:"category"`
	Value     json.RawMessage `json:"value"`
	Filters   []Filter        `json:"filters"`
	Count     float64         `json:"count"`
}

// MarshalJSON writes the transfer form of the tree.
func (t *Term) MarshalJSON() ([]byte, error) {
	if t.IsOp() {
		return json.Marshal(opRecord{
			TermType:  TermOp,
			Operation: t.op.Operation,
			Left:      t.op.Left,
			Right:     t.op.Right,
		})
	}

	e := t.Expr()
	filters := e.Filters
	if filters == nil {
		filters = []Filter{}
	}
	return json.Marshal(exprRecord{
		TermType: TermExpr,
		Category: e.Category,
		Value:    e.Value,
		Filters:  filters,
		Count:    e.Count,
	})
}

// UnmarshalJSON replaces the node with the tree in data; see Load.
func (t *Term) UnmarshalJSON(data []byte) error {
	return t.Load(data)
}

// Load replaces the node in place with the tree described by the transfer form.
// The operation of the root is kept as given; nested nodes go through BuildTerm.
// On error the node is left unchanged.
func (t *Term) Load(data []byte) error {
	rec, err := decodeRecord(data)
	if err != nil {
		return err
	}

	if rec.TermType == TermOp {
		built, err := buildOp(rec)
		if err != nil {
			return err
		}
		built.op.Operation = rec.Operation
		*t = *built
		return nil
	}

	built, err := buildExpr(rec)
	if err != nil {
		return err
	}
	*t = *built
	return nil
}

// BuildTerm builds a tree from its transfer form. Operations are upper-cased.
// It is the entry point for trees received from outside.
func BuildTerm(data []byte) (*Term, error) {
	rec, err := decodeRecord(data)
	if err != nil {
		return nil, err
	}
	if rec.TermType == TermOp {
		return buildOp(rec)
	}
	return buildExpr(rec)
}

func decodeRecord(data []byte) (record, error) {
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return rec, fmt.Errorf("failed to decode term: %w", err)
	}
	if !rec.TermType.Valid() {
		return rec, fmt.Errorf("%w %q", ErrInvalidTermType, rec.TermType)
	}
	return rec, nil
}

func buildExpr(rec record) (*Term, error) {
	value, err := decodeValue(rec.Value)
	if err != nil {
		return nil, fmt.Errorf("term %q: %w", rec.Category, err)
	}
	e := &Expr{
		Category: rec.Category,
		Value:    value,
		Count:    1,
	}
	if len(rec.Filters) > 0 {
		e.Filters = rec.Filters
	}
	// count is at least 1; fractions are truncated.
	if rec.Count >= 1 {
		e.Count = int(rec.Count)
	}
	return &Term{expr: e}, nil
}

func buildOp(rec record) (*Term, error) {
	left, err := buildChild(rec.Left)
	if err != nil {
		return nil, fmt.Errorf("left: %w", err)
	}
	right, err := buildChild(rec.Right)
	if err != nil {
		return nil, fmt.Errorf("right: %w", err)
	}
	return NewOp(strings.ToUpper(rec.Operation), left, right), nil
}

// buildChild builds an optional subtree; absent or null children stay nil.
func buildChild(data json.RawMessage) (*Term, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}
	return BuildTerm(data)
}
