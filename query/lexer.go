package query

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenLParen TokenType = iota
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenBracket
	TokenWord
	TokenEOF
)

// Token represents a lexical token.
type Token struct {
	Type     TokenType
	Value    string
	Position int
	Length   int
}

// lexer tokenizes query strings.
type lexer struct {
	input string
	pos   int
}

// newLexer creates a new lexer for the given input.
func newLexer(input string) *lexer {
	return &lexer{
		input: input,
		pos:   0,
	}
}

// tokenize converts the input string into a slice of tokens.
func (l *lexer) tokenize() ([]Token, *ParseError) {
	var tokens []Token

	for l.pos < len(l.input) {
		ch := l.input[l.pos]

		switch ch {
		case '(':
			tokens = append(tokens, Token{Type: TokenLParen, Value: "(", Position: l.pos, Length: 1})
			l.pos++
		case ')':
			tokens = append(tokens, Token{Type: TokenRParen, Value: ")", Position: l.pos, Length: 1})
			l.pos++
		case '{':
			tokens = append(tokens, Token{Type: TokenLBrace, Value: "{", Position: l.pos, Length: 1})
			l.pos++
		case '}':
			tokens = append(tokens, Token{Type: TokenRBrace, Value: "}", Position: l.pos, Length: 1})
			l.pos++
		case '[':
			token, err := l.readBracket()
			if err != nil {
				return nil, err
			}
			tokens = append(tokens, token)
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			if !isWordChar(ch) {
				return nil, &ParseError{
					Message:  "Unexpected character " + string(ch),
					Position: l.pos,
					Length:   1,
				}
			}
			tokens = append(tokens, l.readWord())
		}
	}

	tokens = append(tokens, Token{Type: TokenEOF, Value: "", Position: l.pos, Length: 0})
	return tokens, nil
}

// readBracket reads everything between [ and the next ] verbatim.
// Category values may contain spaces, parentheses and pipes.
func (l *lexer) readBracket() (Token, *ParseError) {
	startPos := l.pos
	l.pos++ // skip [

	for l.pos < len(l.input) {
		if l.input[l.pos] == ']' {
			value := l.input[startPos+1 : l.pos]
			l.pos++ // skip ]
			return Token{
				Type:     TokenBracket,
				Value:    value,
				Position: startPos,
				Length:   l.pos - startPos,
			}, nil
		}
		l.pos++
	}

	return Token{}, &ParseError{
		Message:  "Unterminated [ bracket",
		Position: startPos,
		Length:   l.pos - startPos,
	}
}

// readWord reads an operator or keyword such as AND, OR or WITH.
func (l *lexer) readWord() Token {
	startPos := l.pos
	for l.pos < len(l.input) && isWordChar(l.input[l.pos]) {
		l.pos++
	}
	return Token{
		Type:     TokenWord,
		Value:    l.input[startPos:l.pos],
		Position: startPos,
		Length:   l.pos - startPos,
	}
}

func isWordChar(ch byte) bool {
	return ch >= 'a' && ch <= 'z' || ch >= 'A' && ch <= 'Z' || ch >= '0' && ch <= '9' || ch == '_'
}
