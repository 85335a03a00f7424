// Package query models structured searches over biosynthetic gene cluster
// records as a mutable boolean expression tree.
//
// A tree renders to the query string grammar:
//
//	{[category|value] WITH [name|operator:value]}   leaf with a filter
//	( left AND right )                              op node
//
// and travels as JSON in the transfer form
//
//	{"termType": "op", "operation": "AND", "left": {...}, "right": {...}}
//	{"termType": "expr", "category": "type", "value": "nrps", "filters": [], "count": 1}
//
// Module domain patterns use a separate compact grammar
// ("S=Condensation|L=AMP-binding+?") and are stored as leaf values.
package query

import (
	"encoding/json"
	"strings"
)

// ParseError represents a syntax error with position information.
type ParseError struct {
	Message  string `json:"message"`
	Position int    `json:"position"`
	Length   int    `json:"length"`
}

func (e *ParseError) Error() string {
	return e.Message
}

// ConvertResult is the result of converting a query string into a tree.
type ConvertResult struct {
	Valid bool        `json:"valid"`
	Terms *Term       `json:"terms,omitempty"`
	Error *ParseError `json:"error,omitempty"`
}

// Parse parses a query string into a tree. An empty string yields a blank leaf.
func Parse(s string) (*Term, error) {
	term, err := parse(s)
	if err != nil {
		return nil, err
	}
	return term, nil
}

func parse(s string) (*Term, *ParseError) {
	s = strings.TrimSpace(s)

	lexer := newLexer(s)
	tokens, err := lexer.tokenize()
	if err != nil {
		return nil, err
	}

	return newParser(tokens).parse()
}

// Convert parses a query string and reports the tree or the syntax error.
func Convert(s string) *ConvertResult {
	term, err := parse(s)
	if err != nil {
		return &ConvertResult{
			Valid: false,
			Error: err,
		}
	}

	return &ConvertResult{
		Valid: true,
		Terms: term,
	}
}

// ConvertToJSON converts a query string and returns the result as JSON.
func ConvertToJSON(s string) ([]byte, error) {
	result := Convert(s)
	return json.Marshal(result)
}
