// Package edits contains test cases for the termerr analyzer.
package edits

import "asdb_search/query"

// Unchecked ignores the error of an edit.
func Unchecked(t *query.Term) {
	t.SwapTerms() // want "error from Term.SwapTerms is not checked"
}

// Discarded assigns the error to the blank identifier.
func Discarded(t *query.Term, data []byte) {
	_ = t.RemoveLeft() // want "error from Term.RemoveLeft is discarded"
	_ = t.Load(data)   // want "error from Term.Load is discarded"
}

// Deferred drops the error of a deferred edit.
func Deferred(t *query.Term) {
	defer t.RemoveRight() // want "error from Term.RemoveRight is not checked"
}

// Checked handles every error.
func Checked(t *query.Term) error {
	if err := t.AddTerm(); err != nil {
		return err
	}
	err := t.SwapTerms()
	return err
}

// Returned hands the error to the caller.
func Returned(t *query.Term) error {
	return t.RemoveLeft()
}

// NoError calls methods that cannot fail.
func NoError(t *query.Term) string {
	t.RemoveFilter(0)
	return t.String()
}

type notATerm struct{}

func (notATerm) SwapTerms() error { return nil }

// OtherType calls a method with the same name on another type.
func OtherType() {
	var n notATerm
	n.SwapTerms()
}
