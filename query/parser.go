package query

import (
	"math"
	"strconv"
	"strings"
)

// parser implements a recursive descent parser for query strings.
//
// Grammar:
//
//	term    → '(' term WORD term ')' | '(' term ')' | leaf
//	leaf    → '{' BRACKET filter* '}'
//	filter  → 'WITH' BRACKET
//	BRACKET → '[' any text without ']' ']'
//
// A leaf bracket holds "category" or "category|value", split on the first '|'.
// A filter bracket holds "name", "name|value" or "name|operator:value".
type parser struct {
	tokens []Token
	pos    int
}

// newParser creates a new parser for the given tokens.
func newParser(tokens []Token) *parser {
	return &parser{
		tokens: tokens,
		pos:    0,
	}
}

// current returns the current token.
func (p *parser) current() Token {
	if p.pos >= len(p.tokens) {
		return Token{Type: TokenEOF}
	}
	return p.tokens[p.pos]
}

// advance moves to the next token and returns the previous one.
func (p *parser) advance() Token {
	token := p.current()
	p.pos++
	return token
}

// expect consumes a token of the expected type or returns an error.
func (p *parser) expect(tokenType TokenType) (Token, *ParseError) {
	token := p.current()
	if token.Type != tokenType {
		return Token{}, p.unexpected(token, tokenTypeName(tokenType))
	}
	return p.advance(), nil
}

func (p *parser) unexpected(token Token, expected string) *ParseError {
	msg := "Unexpected " + describeToken(token)
	if expected != "" {
		msg += ", expected " + expected
	}
	return &ParseError{
		Message:  msg,
		Position: token.Position,
		Length:   max(token.Length, 1),
	}
}

// tokenTypeName returns a human-readable name for a token type.
func tokenTypeName(t TokenType) string {
	switch t {
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenLBrace:
		return "{"
	case TokenRBrace:
		return "}"
	case TokenBracket:
		return "[...]"
	case TokenWord:
		return "word"
	case TokenEOF:
		return "end of query"
	default:
		return "unknown"
	}
}

func describeToken(token Token) string {
	if token.Type == TokenWord {
		return "word " + token.Value
	}
	if token.Type == TokenEOF {
		return "end of query"
	}
	return "token: " + tokenTypeName(token.Type)
}

// parse parses the tokens into a tree. An empty query yields a blank leaf.
func (p *parser) parse() (*Term, *ParseError) {
	if p.current().Type == TokenEOF {
		return &Term{expr: newExpr()}, nil
	}

	term, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	if token := p.current(); token.Type != TokenEOF {
		return nil, p.unexpected(token, "")
	}
	return term, nil
}

// parseTerm parses: '(' term WORD term ')' | '(' term ')' | leaf
func (p *parser) parseTerm() (*Term, *ParseError) {
	token := p.current()

	switch token.Type {
	case TokenLParen:
		p.advance() // consume (
		left, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if p.current().Type == TokenRParen {
			p.advance()
			return left, nil
		}
		operation, err := p.expect(TokenWord)
		if err != nil {
			return nil, err
		}
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(TokenRParen); err != nil {
			return nil, err
		}
		return NewOp(strings.ToUpper(operation.Value), left, right), nil

	case TokenLBrace:
		return p.parseLeaf()

	case TokenEOF:
		return nil, &ParseError{
			Message:  "Unexpected end of query",
			Position: token.Position,
			Length:   1,
		}

	default:
		return nil, p.unexpected(token, "( or {")
	}
}

// parseLeaf parses: '{' BRACKET filter* '}'
func (p *parser) parseLeaf() (*Term, *ParseError) {
	p.advance() // consume {

	bracket, err := p.expect(TokenBracket)
	if err != nil {
		return nil, err
	}
	category, value, _ := strings.Cut(bracket.Value, "|")
	category = strings.TrimSpace(category)
	if category == "" {
		return nil, &ParseError{
			Message:  "Empty category",
			Position: bracket.Position,
			Length:   bracket.Length,
		}
	}

	e := &Expr{Category: category, Count: 1}
	if value != "" {
		e.Value = Text(value)
	}

	for p.current().Type == TokenWord {
		keyword := p.current()
		if !strings.EqualFold(keyword.Value, "WITH") {
			return nil, p.unexpected(keyword, "WITH or }")
		}
		p.advance()
		clause, err := p.expect(TokenBracket)
		if err != nil {
			return nil, err
		}
		filter, err := parseFilter(clause)
		if err != nil {
			return nil, err
		}
		e.Filters = append(e.Filters, filter)
	}

	if _, err := p.expect(TokenRBrace); err != nil {
		return nil, err
	}
	return &Term{expr: e}, nil
}

// parseFilter splits a filter clause into name, operator and value.
// rest is operator:value only when everything before the first ':' is made of
// comparison characters; otherwise the whole rest is a text value.
func parseFilter(clause Token) (Filter, *ParseError) {
	name, rest, hasValue := strings.Cut(clause.Value, "|")
	name = strings.TrimSpace(name)
	if name == "" {
		return Filter{}, &ParseError{
			Message:  "Empty filter name",
			Position: clause.Position,
			Length:   clause.Length,
		}
	}
	if !hasValue {
		return NewFilter(name, nil, ""), nil
	}

	if operator, operand, ok := strings.Cut(rest, ":"); ok && isComparison(operator) {
		return NewFilter(name, parseOperand(operand), operator), nil
	}
	return NewFilter(name, Text(rest), ""), nil
}

// parseOperand returns a Number only when it renders back to the same text.
// Zero stays Text since a zero Number renders as a boolean filter.
func parseOperand(operand string) Value {
	n, err := strconv.ParseFloat(operand, 64)
	if err != nil || n == 0 || math.IsNaN(n) || math.IsInf(n, 0) {
		return Text(operand)
	}
	if Number(n).String() != operand {
		return Text(operand)
	}
	return Number(n)
}

func isComparison(operator string) bool {
	if operator == "" {
		return false
	}
	for i := 0; i < len(operator); i++ {
		switch operator[i] {
		case '<', '>', '=', '!':
		default:
			return false
		}
	}
	return true
}
