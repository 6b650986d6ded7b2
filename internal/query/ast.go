package query

import (
	"strings"

	"github.com/7sedam7/krafna/internal/value"
)

// Expr is an expression tree node. Nodes are immutable once the parser
// returns them.
type Expr interface {
	exprNode()
}

// Literal is an inline constant: number, string, boolean, or NULL.
type Literal struct {
	Val value.Value
}

// FieldRef is a dotted path into a row, e.g. file.name or metadata.tags.
type FieldRef struct {
	Path []string
}

// Unary is prefix negation: arithmetic '-' or logical NOT.
type Unary struct {
	Op string
	X  Expr
}

// Binary covers arithmetic, comparison, membership, pattern matching,
// and the logical connectives.
type Binary struct {
	Op    string
	Left  Expr
	Right Expr
}

// Call is a function invocation. Arguments are restricted to literals
// and field references; the parser rejects anything deeper.
type Call struct {
	Name string
	Args []Expr
}

func (*Literal) exprNode()  {}
func (*FieldRef) exprNode() {}
func (*Unary) exprNode()    {}
func (*Binary) exprNode()   {}
func (*Call) exprNode()     {}

// OrderKey is one ORDER BY entry.
type OrderKey struct {
	Path []string
	Desc bool
}

// Query is a fully parsed statement, read-only after construction.
type Query struct {
	// Select holds the projected field paths; empty with Wildcard set
	// means SELECT *.
	Select   [][]string
	Wildcard bool
	From     *Call
	Where    Expr
	OrderBy  []OrderKey
}

func (f *FieldRef) String() string {
	return strings.Join(f.Path, ".")
}
