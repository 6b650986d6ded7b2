package query

import (
	"strconv"
	"strings"

	"github.com/7sedam7/krafna/internal/value"
)

// Binary operator precedence. Comparisons bind looser than arithmetic,
// logical connectives loosest of all. Exponentiation is the only
// right-associative level.
var binaryPrecedence = map[string]int{
	"OR":       1,
	"AND":      2,
	"==":       3,
	"!=":       3,
	"<":        3,
	"<=":       3,
	">":        3,
	">=":       3,
	"IN":       3,
	"LIKE":     3,
	"NOT LIKE": 3,
	"+":        4,
	"-":        4,
	"*":        5,
	"/":        5,
	"//":       5,
	"**":       6,
}

type parser struct {
	tokens []token
	pos    int
}

// Parse compiles a query string into a Query, or fails with a LexError
// or ParseError. No row work happens here.
func Parse(input string) (*Query, error) {
	tokens, err := newLexer(input).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	q, err := p.parseQuery()
	if err != nil {
		return nil, err
	}
	return q, nil
}

// ParseExpr compiles a standalone expression, used for WHERE overrides
// supplied outside a full statement.
func ParseExpr(input string) (Expr, error) {
	tokens, err := newLexer(input).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	expr, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, parseErrf(tok.pos, "unexpected %s %q after expression", tok.typ, tok.lit)
	}
	return expr, nil
}

// ParseFromClause compiles a bare data-source call such as
// MD_TASKS("projects"), used for FROM overrides.
func ParseFromClause(input string) (*Call, error) {
	tokens, err := newLexer(input).tokenize()
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	call, err := p.parseCallExpr()
	if err != nil {
		return nil, err
	}
	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, parseErrf(tok.pos, "unexpected %s %q after FROM clause", tok.typ, tok.lit)
	}
	return call, nil
}

func (p *parser) parseQuery() (*Query, error) {
	q := &Query{}

	if err := p.expectKeyword("SELECT"); err != nil {
		return nil, err
	}
	if err := p.parseSelectList(q); err != nil {
		return nil, err
	}

	// FROM may be omitted when the caller supplies one out of band
	// (config default or flag override).
	if p.acceptKeyword("FROM") {
		call, err := p.parseCallExpr()
		if err != nil {
			return nil, err
		}
		q.From = call
	}

	if p.acceptKeyword("WHERE") {
		expr, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		q.Where = expr
	}

	if p.acceptKeyword("ORDER") {
		if err := p.expectKeyword("BY"); err != nil {
			return nil, err
		}
		if err := p.parseOrderList(q); err != nil {
			return nil, err
		}
	}

	if tok := p.peek(); tok.typ != tokenEOF {
		return nil, parseErrf(tok.pos, "unexpected %s %q after query", tok.typ, tok.lit)
	}
	return q, nil
}

func (p *parser) parseSelectList(q *Query) error {
	if p.peek().typ == tokenStar {
		p.pos++
		q.Wildcard = true
		return nil
	}
	for {
		path, err := p.parseFieldPath()
		if err != nil {
			return err
		}
		q.Select = append(q.Select, path)
		if p.peek().typ != tokenComma {
			return nil
		}
		p.pos++
	}
}

func (p *parser) parseOrderList(q *Query) error {
	for {
		path, err := p.parseFieldPath()
		if err != nil {
			return err
		}
		key := OrderKey{Path: path}
		if p.acceptKeyword("DESC") {
			key.Desc = true
		} else {
			p.acceptKeyword("ASC")
		}
		q.OrderBy = append(q.OrderBy, key)
		if p.peek().typ != tokenComma {
			return nil
		}
		p.pos++
	}
}

// parseCallExpr parses IDENT '(' args ')' where each argument must be a
// literal or a field path. Nested calls and compound expressions as
// arguments are rejected; lifting that restriction would change the
// evaluation contract for data sources.
func (p *parser) parseCallExpr() (*Call, error) {
	name := p.peek()
	if name.typ != tokenIdent {
		return nil, parseErrf(name.pos, "expected function name, got %s %q", name.typ, name.lit)
	}
	p.pos++
	if tok := p.peek(); tok.typ != tokenLParen {
		return nil, parseErrf(tok.pos, "expected '(' after %s", name.lit)
	}
	p.pos++

	call := &Call{Name: name.lit}
	if p.peek().typ == tokenRParen {
		p.pos++
		return call, nil
	}
	for {
		arg, err := p.parseCallArg()
		if err != nil {
			return nil, err
		}
		call.Args = append(call.Args, arg)
		switch tok := p.peek(); tok.typ {
		case tokenComma:
			p.pos++
		case tokenRParen:
			p.pos++
			return call, nil
		default:
			return nil, parseErrf(tok.pos, "expected ',' or ')' in argument list, got %s %q", tok.typ, tok.lit)
		}
	}
}

func (p *parser) parseCallArg() (Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokenString:
		p.pos++
		return &Literal{Val: value.String(tok.lit)}, nil
	case tokenNumber:
		p.pos++
		n, err := strconv.ParseFloat(tok.lit, 64)
		if err != nil {
			return nil, parseErrf(tok.pos, "invalid number %q", tok.lit)
		}
		return &Literal{Val: value.Number(n)}, nil
	case tokenKeyword:
		switch tok.lit {
		case "NULL":
			p.pos++
			return &Literal{Val: value.Null()}, nil
		case "TRUE":
			p.pos++
			return &Literal{Val: value.Bool(true)}, nil
		case "FALSE":
			p.pos++
			return &Literal{Val: value.Bool(false)}, nil
		}
	case tokenIdent:
		if p.peekAt(1).typ == tokenLParen {
			return nil, parseErrf(tok.pos, "nested function calls are not supported as arguments")
		}
		p.pos++
		return &FieldRef{Path: strings.Split(tok.lit, ".")}, nil
	}
	return nil, parseErrf(tok.pos, "function arguments must be literals or field names, got %s %q", tok.typ, tok.lit)
}

func (p *parser) parseFieldPath() ([]string, error) {
	tok := p.peek()
	if tok.typ != tokenIdent {
		return nil, parseErrf(tok.pos, "expected field name, got %s %q", tok.typ, tok.lit)
	}
	p.pos++
	return strings.Split(tok.lit, "."), nil
}

// parseExpr runs shunting-yard style reduction over operand and
// operator stacks. On each incoming binary operator, every stacked
// operator of greater or equal precedence is reduced first, which makes
// equal-precedence chains left-associative (10 - 3 - 2 == 5).
// Exponentiation reduces only strictly greater precedence, making it
// right-associative (2 ** 3 ** 2 == 512).
func (p *parser) parseExpr() (Expr, error) {
	var operands []Expr
	var operators []string

	reduce := func() error {
		if len(operands) < 2 || len(operators) == 0 {
			return parseErrf(p.peek().pos, "malformed expression")
		}
		op := operators[len(operators)-1]
		operators = operators[:len(operators)-1]
		right := operands[len(operands)-1]
		left := operands[len(operands)-2]
		operands = operands[:len(operands)-2]
		operands = append(operands, &Binary{Op: op, Left: left, Right: right})
		return nil
	}

	for {
		operand, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		operands = append(operands, operand)

		op, ok := p.peekBinaryOp()
		if !ok {
			break
		}
		prec := binaryPrecedence[op]
		for len(operators) > 0 {
			top := binaryPrecedence[operators[len(operators)-1]]
			if top > prec || (top == prec && op != "**") {
				if err := reduce(); err != nil {
					return nil, err
				}
				continue
			}
			break
		}
		operators = append(operators, op)
	}

	for len(operators) > 0 {
		if err := reduce(); err != nil {
			return nil, err
		}
	}
	if len(operands) != 1 {
		return nil, parseErrf(p.peek().pos, "malformed expression")
	}
	return operands[0], nil
}

// peekBinaryOp consumes and returns the next binary operator if one is
// present. NOT LIKE is fused into a single operator here.
func (p *parser) peekBinaryOp() (string, bool) {
	tok := p.peek()
	switch tok.typ {
	case tokenOperator, tokenStar:
		p.pos++
		return tok.lit, true
	case tokenKeyword:
		switch tok.lit {
		case "AND", "OR", "IN", "LIKE":
			p.pos++
			return tok.lit, true
		case "NOT":
			if p.peekAt(1).typ == tokenKeyword && p.peekAt(1).lit == "LIKE" {
				p.pos += 2
				return "NOT LIKE", true
			}
		}
	}
	return "", false
}

// parseOperand parses a primary expression with any leading unary
// operators. Unary '-' and NOT bind tighter than every binary operator,
// so -2 ** 2 is (-2) ** 2.
func (p *parser) parseOperand() (Expr, error) {
	tok := p.peek()
	switch {
	case tok.typ == tokenOperator && tok.lit == "-":
		p.pos++
		x, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "-", X: x}, nil
	case tok.typ == tokenKeyword && tok.lit == "NOT":
		p.pos++
		x, err := p.parseOperand()
		if err != nil {
			return nil, err
		}
		return &Unary{Op: "NOT", X: x}, nil
	}
	return p.parsePrimary()
}

func (p *parser) parsePrimary() (Expr, error) {
	tok := p.peek()
	switch tok.typ {
	case tokenNumber:
		p.pos++
		n, err := strconv.ParseFloat(tok.lit, 64)
		if err != nil {
			return nil, parseErrf(tok.pos, "invalid number %q", tok.lit)
		}
		return &Literal{Val: value.Number(n)}, nil
	case tokenString:
		p.pos++
		return &Literal{Val: value.String(tok.lit)}, nil
	case tokenKeyword:
		switch tok.lit {
		case "NULL":
			p.pos++
			return &Literal{Val: value.Null()}, nil
		case "TRUE":
			p.pos++
			return &Literal{Val: value.Bool(true)}, nil
		case "FALSE":
			p.pos++
			return &Literal{Val: value.Bool(false)}, nil
		}
		return nil, parseErrf(tok.pos, "unexpected keyword %s", tok.lit)
	case tokenLParen:
		p.pos++
		inner, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		if next := p.peek(); next.typ != tokenRParen {
			return nil, parseErrf(next.pos, "expected ')', got %s %q", next.typ, next.lit)
		}
		p.pos++
		return inner, nil
	case tokenIdent:
		if p.peekAt(1).typ == tokenLParen {
			return p.parseCallExpr()
		}
		p.pos++
		return &FieldRef{Path: strings.Split(tok.lit, ".")}, nil
	}
	return nil, parseErrf(tok.pos, "expected expression, got %s %q", tok.typ, tok.lit)
}

func (p *parser) peek() token {
	return p.peekAt(0)
}

func (p *parser) peekAt(offset int) token {
	i := p.pos + offset
	if i >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1] // EOF sentinel
	}
	return p.tokens[i]
}

func (p *parser) expectKeyword(kw string) error {
	tok := p.peek()
	if tok.typ != tokenKeyword || tok.lit != kw {
		return parseErrf(tok.pos, "expected %s, got %s %q", kw, tok.typ, tok.lit)
	}
	p.pos++
	return nil
}

func (p *parser) acceptKeyword(kw string) bool {
	tok := p.peek()
	if tok.typ == tokenKeyword && tok.lit == kw {
		p.pos++
		return true
	}
	return false
}
