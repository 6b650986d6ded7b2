package query

import "strings"

type tokenType int

const (
	tokenEOF tokenType = iota
	tokenIdent
	tokenNumber
	tokenString
	tokenKeyword
	tokenOperator
	tokenLParen
	tokenRParen
	tokenComma
	tokenStar
)

func (t tokenType) String() string {
	switch t {
	case tokenEOF:
		return "end of input"
	case tokenIdent:
		return "identifier"
	case tokenNumber:
		return "number"
	case tokenString:
		return "string"
	case tokenKeyword:
		return "keyword"
	case tokenOperator:
		return "operator"
	case tokenLParen:
		return "'('"
	case tokenRParen:
		return "')'"
	case tokenComma:
		return "','"
	case tokenStar:
		return "'*'"
	}
	return "token"
}

type token struct {
	typ tokenType
	lit string
	pos Position
}

var keywords = map[string]bool{
	"SELECT": true,
	"FROM":   true,
	"WHERE":  true,
	"ORDER":  true,
	"BY":     true,
	"ASC":    true,
	"DESC":   true,
	"AND":    true,
	"OR":     true,
	"IN":     true,
	"LIKE":   true,
	"NOT":    true,
	"NULL":   true,
	"TRUE":   true,
	"FALSE":  true,
}

type lexer struct {
	input string
	pos   int
}

func newLexer(input string) *lexer {
	return &lexer{input: input}
}

// tokenize consumes the whole input up front. Queries are short, so
// there is no benefit to streaming tokens into the parser.
func (l *lexer) tokenize() ([]token, error) {
	var tokens []token
	for {
		tok, err := l.next()
		if err != nil {
			return nil, err
		}
		tokens = append(tokens, tok)
		if tok.typ == tokenEOF {
			return tokens, nil
		}
	}
}

func (l *lexer) next() (token, error) {
	l.skipWhitespace()
	start := Position(l.pos)
	if l.pos >= len(l.input) {
		return token{typ: tokenEOF, pos: start}, nil
	}

	ch := l.input[l.pos]
	switch {
	case ch == '(':
		l.pos++
		return token{typ: tokenLParen, lit: "(", pos: start}, nil
	case ch == ')':
		l.pos++
		return token{typ: tokenRParen, lit: ")", pos: start}, nil
	case ch == ',':
		l.pos++
		return token{typ: tokenComma, lit: ",", pos: start}, nil
	case ch == '\'' || ch == '"':
		return l.readString(ch)
	case isDigit(ch):
		return l.readNumber()
	case isIdentStart(ch):
		return l.readWord()
	case ch == '*':
		l.pos++
		if l.peek() == '*' {
			l.pos++
			return token{typ: tokenOperator, lit: "**", pos: start}, nil
		}
		return token{typ: tokenStar, lit: "*", pos: start}, nil
	case ch == '/':
		l.pos++
		if l.peek() == '/' {
			l.pos++
			return token{typ: tokenOperator, lit: "//", pos: start}, nil
		}
		return token{typ: tokenOperator, lit: "/", pos: start}, nil
	case ch == '+' || ch == '-':
		l.pos++
		return token{typ: tokenOperator, lit: string(ch), pos: start}, nil
	case ch == '=':
		l.pos++
		if l.peek() != '=' {
			return token{}, &LexError{Pos: start, Msg: "expected '==' (single '=' is not an operator)"}
		}
		l.pos++
		return token{typ: tokenOperator, lit: "==", pos: start}, nil
	case ch == '!':
		l.pos++
		if l.peek() != '=' {
			return token{}, &LexError{Pos: start, Msg: "expected '!='"}
		}
		l.pos++
		return token{typ: tokenOperator, lit: "!=", pos: start}, nil
	case ch == '<':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{typ: tokenOperator, lit: "<=", pos: start}, nil
		}
		return token{typ: tokenOperator, lit: "<", pos: start}, nil
	case ch == '>':
		l.pos++
		if l.peek() == '=' {
			l.pos++
			return token{typ: tokenOperator, lit: ">=", pos: start}, nil
		}
		return token{typ: tokenOperator, lit: ">", pos: start}, nil
	}
	return token{}, &LexError{Pos: start, Msg: "unexpected character " + quoteByte(ch)}
}

func (l *lexer) readString(quote byte) (token, error) {
	start := Position(l.pos)
	l.pos++ // opening quote
	var sb strings.Builder
	for l.pos < len(l.input) {
		ch := l.input[l.pos]
		switch ch {
		case quote:
			l.pos++
			return token{typ: tokenString, lit: sb.String(), pos: start}, nil
		case '\\':
			l.pos++
			if l.pos >= len(l.input) {
				return token{}, &LexError{Pos: start, Msg: "unterminated string literal"}
			}
			esc := l.input[l.pos]
			switch esc {
			case 'n':
				sb.WriteByte('\n')
			case 't':
				sb.WriteByte('\t')
			case '\\', '\'', '"':
				sb.WriteByte(esc)
			default:
				sb.WriteByte('\\')
				sb.WriteByte(esc)
			}
			l.pos++
		default:
			sb.WriteByte(ch)
			l.pos++
		}
	}
	return token{}, &LexError{Pos: start, Msg: "unterminated string literal"}
}

func (l *lexer) readNumber() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
		l.pos++
	}
	if l.pos < len(l.input) && l.input[l.pos] == '.' && l.pos+1 < len(l.input) && isDigit(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isDigit(l.input[l.pos]) {
			l.pos++
		}
	}
	return token{typ: tokenNumber, lit: l.input[start:l.pos], pos: Position(start)}, nil
}

// readWord consumes an identifier, which may be a dotted path such as
// file.name or metadata.tags. Keywords are recognized case-insensitively.
func (l *lexer) readWord() (token, error) {
	start := l.pos
	for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
		l.pos++
	}
	word := l.input[start:l.pos]
	upper := strings.ToUpper(word)
	if keywords[upper] {
		return token{typ: tokenKeyword, lit: upper, pos: Position(start)}, nil
	}
	// Dotted path segments; a keyword never contains a dot.
	for l.pos < len(l.input) && l.input[l.pos] == '.' && l.pos+1 < len(l.input) && isIdentStart(l.input[l.pos+1]) {
		l.pos++
		for l.pos < len(l.input) && isIdentPart(l.input[l.pos]) {
			l.pos++
		}
	}
	return token{typ: tokenIdent, lit: l.input[start:l.pos], pos: Position(start)}, nil
}

func (l *lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *lexer) skipWhitespace() {
	for l.pos < len(l.input) {
		switch l.input[l.pos] {
		case ' ', '\t', '\n', '\r':
			l.pos++
		default:
			return
		}
	}
}

func isDigit(ch byte) bool { return ch >= '0' && ch <= '9' }

func isIdentStart(ch byte) bool {
	return ch == '_' || (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isIdentPart(ch byte) bool { return isIdentStart(ch) || isDigit(ch) }

func quoteByte(ch byte) string {
	return "'" + string(ch) + "'"
}
