package query

import "fmt"

// Position is a byte offset into the query string, used to point error
// messages at the offending token.
type Position int

// LexError reports malformed input the tokenizer could not consume, such
// as an unterminated string literal or a stray character.
type LexError struct {
	Pos Position
	Msg string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lex error at offset %d: %s", e.Pos, e.Msg)
}

// ParseError reports a structurally invalid query: bad clause order, a
// dangling operator, unbalanced parentheses, and the like.
type ParseError struct {
	Pos Position
	Msg string
}

func (e *ParseError) Error() string {
	if e.Pos < 0 {
		return fmt.Sprintf("parse error: %s", e.Msg)
	}
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

func parseErrf(pos Position, format string, args ...any) *ParseError {
	return &ParseError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// EvalError reports a failure while evaluating an expression against a
// row. Executor callers treat these as per-row diagnostics rather than
// query-fatal conditions.
type EvalError struct {
	Msg string
	Err error
}

func (e *EvalError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("eval error: %s: %v", e.Msg, e.Err)
	}
	return fmt.Sprintf("eval error: %s", e.Msg)
}

func (e *EvalError) Unwrap() error { return e.Err }

func evalErrf(err error, format string, args ...any) *EvalError {
	return &EvalError{Msg: fmt.Sprintf(format, args...), Err: err}
}
