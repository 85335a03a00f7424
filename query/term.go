package query

import (
	"errors"
	"fmt"
	"slices"
)

// TermType discriminates the two kinds of query tree node.
type TermType string

const (
	TermExpr TermType = "expr"
	TermOp   TermType = "op"
)

// Valid reports whether t is one of the known term types.
func (t TermType) Valid() bool {
	return t == TermExpr || t == TermOp
}

var (
	// ErrInvalidTermType is returned when a termType is missing or unknown.
	ErrInvalidTermType = errors.New("invalid termType")
	// ErrInvalidOperation is returned when a structural operation does not apply to a node.
	ErrInvalidOperation = errors.New("invalid operation")
)

// DefaultOperation joins the two halves created by AddTerm.
const DefaultOperation = "AND"

// Expr is the payload of a leaf node: a single predicate.
type Expr struct {
	Category string
	Value    Value
	Filters  []Filter
	Count    int
}

// Op is the payload of an internal node: a boolean combination of two subtrees.
type Op struct {
	Operation string
	Left      *Term
	Right     *Term
}

// Term is a node of a query tree. Exactly one of its payloads is set, so a
// node never carries leaf data while it is an op and vice versa.
// Each node owns its children and filters; trees must not share nodes.
// Terms are not safe for concurrent mutation.
type Term struct {
	expr *Expr
	op   *Op
}

func newExpr() *Expr {
	return &Expr{Count: 1}
}

// NewTerm creates an empty node of the given type.
func NewTerm(termType TermType) (*Term, error) {
	switch termType {
	case TermExpr:
		return &Term{expr: newExpr()}, nil
	case TermOp:
		return &Term{op: &Op{}}, nil
	default:
		return nil, fmt.Errorf("%w %q", ErrInvalidTermType, termType)
	}
}

// NewExpr creates a leaf with a count of 1.
func NewExpr(category string, value Value, filters ...Filter) *Term {
	return &Term{expr: &Expr{
		Category: category,
		Value:    value,
		Filters:  filters,
		Count:    1,
	}}
}

// NewOp creates an internal node combining left and right.
func NewOp(operation string, left, right *Term) *Term {
	return &Term{op: &Op{Operation: operation, Left: left, Right: right}}
}

// Type returns the node's current variant.
func (t *Term) Type() TermType {
	if t.op != nil {
		return TermOp
	}
	return TermExpr
}

// IsExpr reports whether the node is a leaf.
func (t *Term) IsExpr() bool { return t.op == nil }

// IsOp reports whether the node is an internal node.
func (t *Term) IsOp() bool { return t.op != nil }

// Expr returns the leaf payload, or nil on an op node.
func (t *Term) Expr() *Expr {
	if t.op != nil {
		return nil
	}
	if t.expr == nil {
		t.expr = newExpr()
	}
	return t.expr
}

// Op returns the internal node payload, or nil on a leaf.
func (t *Term) Op() *Op { return t.op }

// Reset turns the node back into a blank leaf.
func (t *Term) Reset() {
	t.op = nil
	t.expr = newExpr()
}

// AddTerm turns a leaf into an AND of the old leaf (left) and a new blank leaf (right).
func (t *Term) AddTerm() error {
	if t.IsOp() {
		return fmt.Errorf("%w: AddTerm can only be called on %q terms", ErrInvalidOperation, TermExpr)
	}
	left := &Term{expr: t.Expr()}
	t.expr = nil
	t.op = &Op{
		Operation: DefaultOperation,
		Left:      left,
		Right:     &Term{expr: newExpr()},
	}
	return nil
}

// SwapTerms exchanges the left and right subtrees.
func (t *Term) SwapTerms() error {
	if t.IsExpr() {
		return fmt.Errorf("%w: SwapTerms can only be called on %q terms", ErrInvalidOperation, TermOp)
	}
	t.op.Left, t.op.Right = t.op.Right, t.op.Left
	return nil
}

// RemoveLeft drops the left subtree and pulls the right one up into this node.
// A right leaf turns this node into that leaf; a right op is absorbed.
func (t *Term) RemoveLeft() error {
	if t.IsExpr() || t.op.Right == nil {
		return fmt.Errorf("%w: can't remove left without a right term", ErrInvalidOperation)
	}
	t.promote(t.op.Right)
	return nil
}

// RemoveRight drops the right subtree and pulls the left one up into this node.
func (t *Term) RemoveRight() error {
	if t.IsExpr() || t.op.Left == nil {
		return fmt.Errorf("%w: can't remove right without a left term", ErrInvalidOperation)
	}
	t.promote(t.op.Left)
	return nil
}

// promote replaces this node's payload with the child's.
func (t *Term) promote(child *Term) {
	if child.IsExpr() {
		t.op = nil
		t.expr = child.Expr()
		return
	}
	t.op = child.op
	t.expr = nil
}

// AddFilter appends a blank filter to a leaf.
func (t *Term) AddFilter() error {
	if t.IsOp() {
		return fmt.Errorf("%w: AddFilter can only be called on %q terms", ErrInvalidOperation, TermExpr)
	}
	e := t.Expr()
	e.Filters = append(e.Filters, NewFilter("", nil, ""))
	return nil
}

// RemoveFilter removes the filter at idx. Out-of-range indices and op nodes are ignored.
func (t *Term) RemoveFilter(idx int) {
	if t.IsOp() {
		return
	}
	e := t.Expr()
	if idx < 0 || idx >= len(e.Filters) {
		return
	}
	e.Filters = slices.Delete(e.Filters, idx, idx+1)
}

// ModuleValue interprets a leaf's value as a module domain pattern.
// It returns nil for op nodes and for leaves without a text or module value.
func (t *Term) ModuleValue() *ModuleTerm {
	if t.IsOp() {
		return nil
	}
	switch v := t.Expr().Value.(type) {
	case *ModuleTerm:
		return v
	case Text:
		return NewModuleTerm(string(v))
	}
	return nil
}

// Clone returns a deep copy of the tree.
func (t *Term) Clone() *Term {
	if t == nil {
		return nil
	}
	if t.IsOp() {
		return NewOp(t.op.Operation, t.op.Left.Clone(), t.op.Right.Clone())
	}
	e := t.Expr()
	c := &Expr{
		Category: e.Category,
		Value:    cloneValue(e.Value),
		Count:    e.Count,
	}
	for _, f := range e.Filters {
		c.Filters = append(c.Filters, f.clone())
	}
	return &Term{expr: c}
}

// Equal reports whether two trees are structurally equal.
// Nil and empty filter lists compare equal.
func Equal(a, b *Term) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Type() != b.Type() {
		return false
	}
	if a.IsOp() {
		return a.op.Operation == b.op.Operation &&
			Equal(a.op.Left, b.op.Left) &&
			Equal(a.op.Right, b.op.Right)
	}

	ae, be := a.Expr(), b.Expr()
	if ae.Category != be.Category || ae.Count != be.Count || !valuesEqual(ae.Value, be.Value) {
		return false
	}
	return slices.EqualFunc(ae.Filters, be.Filters, Filter.equal)
}

// Leaves calls fn for every leaf in depth-first, left-to-right order.
func (t *Term) Leaves(fn func(*Expr)) {
	if t == nil {
		return
	}
	if t.IsOp() {
		t.op.Left.Leaves(fn)
		t.op.Right.Leaves(fn)
		return
	}
	fn(t.Expr())
}
