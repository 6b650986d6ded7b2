package query

import (
	"time"

	"github.com/7sedam7/krafna/internal/value"
)

// Row is one unit of data flowing through WHERE/SELECT/ORDER BY. Top
// level keys map to values that may themselves be nested Maps; the
// reserved "file" key always holds the producing file's sub-map.
type Row map[string]value.Value

// Get walks a dotted path through nested maps. A miss at any segment
// yields Null so queries degrade gracefully on absent metadata.
func (r Row) Get(path []string) value.Value {
	if len(path) == 0 {
		return value.Null()
	}
	v, ok := r[path[0]]
	if !ok {
		return value.Null()
	}
	for _, seg := range path[1:] {
		v, ok = v.Get(seg)
		if !ok {
			return value.Null()
		}
	}
	return v
}

// Set stores v at a dotted path, materializing intermediate maps.
func (r Row) Set(path []string, v value.Value) {
	if len(path) == 1 {
		r[path[0]] = v
		return
	}
	sub, ok := r[path[0]]
	var m map[string]value.Value
	if ok && sub.Kind() == value.KindMap {
		m = make(map[string]value.Value)
		for _, k := range sub.Keys() {
			mv, _ := sub.Get(k)
			m[k] = mv
		}
	} else {
		m = make(map[string]value.Value)
	}
	nested := Row(m)
	nested.Set(path[1:], v)
	r[path[0]] = value.Map(m)
}

// Context carries everything evaluation needs beyond the row itself.
// Today and Now are resolved once per query run so every row sees the
// same clock.
type Context struct {
	Today time.Time
	Now   time.Time
	Funcs *Registry
}

// NewContext captures the clock at query start.
func NewContext(now time.Time) *Context {
	year, month, day := now.Date()
	return &Context{
		Today: time.Date(year, month, day, 0, 0, 0, 0, now.Location()),
		Now:   now,
		Funcs: DefaultRegistry(),
	}
}

func (c *Context) binding(name string) (value.Value, bool) {
	switch name {
	case "today":
		return value.Date(c.Today), true
	case "now":
		return value.Datetime(c.Now), true
	}
	return value.Value{}, false
}

// Eval reduces an expression tree to a Value against one row. Failures
// are EvalErrors; the executor treats them as row-scoped.
func (c *Context) Eval(expr Expr, row Row) (value.Value, error) {
	switch e := expr.(type) {
	case *Literal:
		return e.Val, nil

	case *FieldRef:
		if len(e.Path) == 1 {
			if v, ok := c.binding(e.Path[0]); ok {
				if _, inRow := row[e.Path[0]]; !inRow {
					return v, nil
				}
			}
		}
		return row.Get(e.Path), nil

	case *Unary:
		x, err := c.Eval(e.X, row)
		if err != nil {
			return value.Value{}, err
		}
		switch e.Op {
		case "-":
			n, err := x.AsNumber()
			if err != nil {
				return value.Value{}, evalErrf(err, "cannot negate %s", x.Kind())
			}
			return value.Number(-n), nil
		case "NOT":
			return value.Bool(!x.AsBool()), nil
		}
		return value.Value{}, evalErrf(nil, "unknown unary operator %q", e.Op)

	case *Binary:
		return c.evalBinary(e, row)

	case *Call:
		fn, ok := c.Funcs.Lookup(e.Name)
		if !ok {
			return value.Value{}, evalErrf(nil, "unknown function %s", e.Name)
		}
		if len(e.Args) < fn.MinArity() || len(e.Args) > fn.MaxArity() {
			return value.Value{}, evalErrf(nil, "%s: wrong number of arguments (%d)", fn.Name(), len(e.Args))
		}
		args := make([]value.Value, len(e.Args))
		for i, arg := range e.Args {
			v, err := c.Eval(arg, row)
			if err != nil {
				return value.Value{}, err
			}
			args[i] = v
		}
		out, err := fn.Call(c, args)
		if err != nil {
			return value.Value{}, evalErrf(err, "%s failed", fn.Name())
		}
		return out, nil
	}
	return value.Value{}, evalErrf(nil, "unknown expression node %T", expr)
}

func (c *Context) evalBinary(e *Binary, row Row) (value.Value, error) {
	// Short-circuit connectives evaluate the right side lazily.
	switch e.Op {
	case "AND":
		left, err := c.Eval(e.Left, row)
		if err != nil {
			return value.Value{}, err
		}
		if !left.AsBool() {
			return value.Bool(false), nil
		}
		right, err := c.Eval(e.Right, row)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.AsBool()), nil
	case "OR":
		left, err := c.Eval(e.Left, row)
		if err != nil {
			return value.Value{}, err
		}
		if left.AsBool() {
			return value.Bool(true), nil
		}
		right, err := c.Eval(e.Right, row)
		if err != nil {
			return value.Value{}, err
		}
		return value.Bool(right.AsBool()), nil
	}

	left, err := c.Eval(e.Left, row)
	if err != nil {
		return value.Value{}, err
	}
	right, err := c.Eval(e.Right, row)
	if err != nil {
		return value.Value{}, err
	}

	switch e.Op {
	case "==":
		eq, err := value.Equal(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "cannot compare %s and %s", left.Kind(), right.Kind())
		}
		return value.Bool(eq), nil
	case "!=":
		eq, err := value.Equal(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "cannot compare %s and %s", left.Kind(), right.Kind())
		}
		return value.Bool(!eq), nil
	case "<", "<=", ">", ">=":
		cmp, err := value.Compare(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "cannot order %s and %s", left.Kind(), right.Kind())
		}
		switch e.Op {
		case "<":
			return value.Bool(cmp < 0), nil
		case "<=":
			return value.Bool(cmp <= 0), nil
		case ">":
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	case "IN":
		v, err := value.In(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "IN requires a list on the right, got %s", right.Kind())
		}
		return v, nil
	case "LIKE":
		v, err := value.Like(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "LIKE requires strings, got %s and %s", left.Kind(), right.Kind())
		}
		return v, nil
	case "NOT LIKE":
		v, err := value.Like(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "NOT LIKE requires strings, got %s and %s", left.Kind(), right.Kind())
		}
		return value.Bool(!v.AsBool()), nil
	case "+":
		v, err := value.Add(left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "cannot add %s and %s", left.Kind(), right.Kind())
		}
		return v, nil
	case "-", "*", "/", "//", "**":
		v, err := value.Arith(e.Op, left, right)
		if err != nil {
			return value.Value{}, evalErrf(err, "cannot apply %s to %s and %s", e.Op, left.Kind(), right.Kind())
		}
		return v, nil
	}
	return value.Value{}, evalErrf(nil, "unknown binary operator %q", e.Op)
}
