package query

import "strings"

// String renders the tree in the query string grammar:
//
//	{[category]}                        leaf without value
//	{[category|value]}                  leaf with value
//	{[category|value] WITH [...]...}    leaf with filters
//	( left OPERATION right )            op node
//
// A leaf without a category renders as "". An op node with one empty side
// renders as the other side alone.
func (t *Term) String() string {
	if t == nil {
		return ""
	}
	if t.IsOp() {
		left := t.op.Left.String()
		right := t.op.Right.String()
		if left == "" {
			return right
		}
		if right == "" {
			return left
		}
		return "( " + left + " " + t.op.Operation + " " + right + " )"
	}

	e := t.Expr()
	if e.Category == "" {
		return ""
	}
	if isEmpty(e.Value) {
		return "{[" + e.Category + "]}"
	}

	var b strings.Builder
	b.WriteString("{[")
	b.WriteString(e.Category)
	b.WriteByte('|')
	b.WriteString(e.Value.String())
	b.WriteByte(']')
	for _, f := range e.Filters {
		b.WriteString(f.String())
	}
	b.WriteByte('}')
	return b.String()
}

// Render is String under the name used by callers building query strings.
func (t *Term) Render() string {
	return t.String()
}
