// Package value defines the dynamic value type shared by the query engine
// and the document extractor.
package value

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds.
type Kind int

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindDate
	KindList
	KindMap
)

func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindDate:
		return "date"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	default:
		return "null"
	}
}

// DateLayout is the rendering for date-only values.
const DateLayout = "2006-01-02"

// DatetimeLayout is the rendering for dates that carry a time of day.
const DatetimeLayout = time.RFC3339

// Value is a tagged union over the types a document field or query
// expression can produce. The zero Value is Null.
type Value struct {
	kind    Kind
	b       bool
	n       float64
	s       string
	t       time.Time
	hasTime bool
	list    []Value
	m       map[string]Value
}

// Null returns the null value.
func Null() Value {
	return Value{}
}

// Bool creates a boolean Value.
func Bool(b bool) Value {
	return Value{kind: KindBool, b: b}
}

// Number creates a numeric Value.
func Number(n float64) Value {
	return Value{kind: KindNumber, n: n}
}

// String creates a string Value.
func String(s string) Value {
	return Value{kind: KindString, s: s}
}

// Date creates a date-only Value.
func Date(t time.Time) Value {
	return Value{kind: KindDate, t: t}
}

// Datetime creates a date Value that carries a time of day.
func Datetime(t time.Time) Value {
	return Value{kind: KindDate, t: t, hasTime: true}
}

// List creates a list Value.
func List(items []Value) Value {
	return Value{kind: KindList, list: items}
}

// Map creates a map Value.
func Map(m map[string]Value) Value {
	return Value{kind: KindMap, m: m}
}

// Kind returns the variant tag.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether the value is null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// Time returns the underlying time for date values. The second result
// reports whether the value carries a time of day.
func (v Value) Time() (time.Time, bool) { return v.t, v.hasTime }

// Get returns the entry for key when the value is a map.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMap {
		return Null(), false
	}
	item, ok := v.m[key]
	return item, ok
}

// Keys returns the sorted keys when the value is a map.
func (v Value) Keys() []string {
	if v.kind != KindMap {
		return nil
	}
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Items returns the elements when the value is a list.
func (v Value) Items() []Value {
	if v.kind != KindList {
		return nil
	}
	return v.list
}

// AsList wraps non-list values into a single-element list and passes
// lists through.
func (v Value) AsList() []Value {
	if v.kind == KindList {
		return v.list
	}
	return []Value{v}
}

// AsString renders the value as text. Every variant has a canonical
// rendering; maps and lists render in a compact JSON-like form.
func (v Value) AsString() string {
	switch v.kind {
	case KindNull:
		return "NULL"
	case KindBool:
		return strconv.FormatBool(v.b)
	case KindNumber:
		return strconv.FormatFloat(v.n, 'f', -1, 64)
	case KindString:
		return v.s
	case KindDate:
		if v.hasTime {
			return v.t.Format(DatetimeLayout)
		}
		return v.t.Format(DateLayout)
	case KindList:
		parts := make([]string, len(v.list))
		for i, item := range v.list {
			parts[i] = item.quoted()
		}
		return "[" + strings.Join(parts, ",") + "]"
	case KindMap:
		parts := make([]string, 0, len(v.m))
		for _, k := range v.Keys() {
			parts = append(parts, strconv.Quote(k)+":"+v.m[k].quoted())
		}
		return "{" + strings.Join(parts, ",") + "}"
	}
	return ""
}

func (v Value) quoted() string {
	if v.kind == KindString || v.kind == KindDate {
		return strconv.Quote(v.AsString())
	}
	return v.AsString()
}

// AsNumber converts to a number. Strings are parsed, numbers pass
// through; every other variant is a type mismatch.
func (v Value) AsNumber() (float64, error) {
	switch v.kind {
	case KindNumber:
		return v.n, nil
	case KindString:
		n, err := strconv.ParseFloat(strings.TrimSpace(v.s), 64)
		if err != nil {
			return 0, fmt.Errorf("cannot convert %q to a number", v.s)
		}
		return n, nil
	}
	return 0, fmt.Errorf("cannot convert %s to a number", v.kind)
}

// AsBool reduces the value to a truth value. Exactly these are false:
// null, boolean false, numeric zero, and the string "false". Everything
// else, including the empty string, is true.
func (v Value) AsBool() bool {
	switch v.kind {
	case KindNull:
		return false
	case KindBool:
		return v.b
	case KindNumber:
		return v.n != 0
	case KindString:
		return v.s != "false"
	}
	return true
}

// Interface returns the value as plain Go data, for JSON output.
func (v Value) Interface() interface{} {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindDate:
		return v.AsString()
	case KindList:
		items := make([]interface{}, len(v.list))
		for i, item := range v.list {
			items[i] = item.Interface()
		}
		return items
	case KindMap:
		m := make(map[string]interface{}, len(v.m))
		for k, item := range v.m {
			m[k] = item.Interface()
		}
		return m
	}
	return nil
}

// Equal reports whether two values are equal. Null equals only Null and
// is unequal to everything else; any other cross-variant pair is a type
// mismatch.
func Equal(a, b Value) (bool, error) {
	if a.kind == KindNull || b.kind == KindNull {
		return a.kind == b.kind, nil
	}
	if a.kind != b.kind {
		return false, mismatch("==", a, b)
	}
	switch a.kind {
	case KindBool:
		return a.b == b.b, nil
	case KindNumber:
		return a.n == b.n, nil
	case KindString:
		return a.s == b.s, nil
	case KindDate:
		return a.t.Equal(b.t), nil
	case KindList:
		if len(a.list) != len(b.list) {
			return false, nil
		}
		for i := range a.list {
			eq, err := Equal(a.list[i], b.list[i])
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	case KindMap:
		if len(a.m) != len(b.m) {
			return false, nil
		}
		for k, av := range a.m {
			bv, ok := b.m[k]
			if !ok {
				return false, nil
			}
			eq, err := Equal(av, bv)
			if err != nil || !eq {
				return false, err
			}
		}
		return true, nil
	}
	return false, mismatch("==", a, b)
}

// Compare orders two values of the same variant: numbers numerically,
// strings lexicographically, dates chronologically, booleans with false
// before true. Null and cross-variant pairs do not order.
func Compare(a, b Value) (int, error) {
	if a.kind != b.kind || a.kind == KindNull {
		return 0, mismatch("compare", a, b)
	}
	switch a.kind {
	case KindBool:
		return boolCmp(a.b, b.b), nil
	case KindNumber:
		switch {
		case a.n < b.n:
			return -1, nil
		case a.n > b.n:
			return 1, nil
		}
		return 0, nil
	case KindString:
		return strings.Compare(a.s, b.s), nil
	case KindDate:
		switch {
		case a.t.Before(b.t):
			return -1, nil
		case a.t.After(b.t):
			return 1, nil
		}
		return 0, nil
	}
	return 0, mismatch("compare", a, b)
}

func boolCmp(a, b bool) int {
	switch {
	case a == b:
		return 0
	case !a:
		return -1
	}
	return 1
}

// SortCompare is a total order for ORDER BY: nulls sort first, values of
// the same variant order per Compare, and mixed variants fall back to
// their text rendering so sorting never fails mid-query.
func SortCompare(a, b Value) int {
	if a.kind == KindNull || b.kind == KindNull {
		return boolCmp(b.kind == KindNull, a.kind == KindNull)
	}
	if a.kind == b.kind {
		if c, err := Compare(a, b); err == nil {
			return c
		}
	}
	return strings.Compare(a.AsString(), b.AsString())
}

// Add implements `+`: numeric addition, string concatenation, or list
// concatenation.
func Add(a, b Value) (Value, error) {
	switch {
	case a.kind == KindNumber && b.kind == KindNumber:
		return Number(a.n + b.n), nil
	case a.kind == KindString && b.kind == KindString:
		return String(a.s + b.s), nil
	case a.kind == KindList && b.kind == KindList:
		joined := make([]Value, 0, len(a.list)+len(b.list))
		joined = append(joined, a.list...)
		joined = append(joined, b.list...)
		return List(joined), nil
	}
	return Null(), mismatch("+", a, b)
}

// Arith implements the numeric-only operators -, *, /, //, and **.
func Arith(op string, a, b Value) (Value, error) {
	if a.kind != KindNumber || b.kind != KindNumber {
		return Null(), mismatch(op, a, b)
	}
	switch op {
	case "-":
		return Number(a.n - b.n), nil
	case "*":
		return Number(a.n * b.n), nil
	case "/":
		if b.n == 0 {
			return Null(), fmt.Errorf("division by zero")
		}
		return Number(a.n / b.n), nil
	case "//":
		if b.n == 0 {
			return Null(), fmt.Errorf("division by zero")
		}
		return Number(math.Floor(a.n / b.n)), nil
	case "**":
		return Number(math.Pow(a.n, b.n)), nil
	}
	return Null(), fmt.Errorf("unknown operator %q", op)
}

// In implements membership: the right operand must be a list, and the
// left operand is compared against each element.
func In(a, b Value) (Value, error) {
	if b.kind != KindList {
		return Null(), mismatch("IN", a, b)
	}
	for _, item := range b.list {
		eq, err := Equal(a, item)
		if err != nil {
			continue
		}
		if eq {
			return Bool(true), nil
		}
	}
	return Bool(false), nil
}

func mismatch(op string, a, b Value) error {
	return fmt.Errorf("%w: %s is not defined for %s and %s", ErrTypeMismatch, op, a.kind, b.kind)
}
