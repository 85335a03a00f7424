// Package query is a stand-in for the query tree package.
package query

// Term is a query tree node.
type Term struct {
	op bool
}

func (t *Term) AddTerm() error {
	t.op = true
	return nil
}

func (t *Term) SwapTerms() error   { return nil }
func (t *Term) RemoveLeft() error  { return nil }
func (t *Term) RemoveRight() error { return nil }

func (t *Term) Load(data []byte) error { return nil }

func (t *Term) RemoveFilter(idx int) {}

func (t *Term) String() string { return "" }
