package query

import (
	"fmt"
	"strings"
	"time"

	"github.com/7sedam7/krafna/internal/value"
)

// Function is a built-in scalar callable. Arity is validated by the
// evaluator before Call runs.
type Function interface {
	Name() string
	MinArity() int
	MaxArity() int
	Call(ctx *Context, args []value.Value) (value.Value, error)
}

// Registry resolves functions by case-insensitive name.
type Registry struct {
	funcs map[string]Function
}

func NewRegistry() *Registry {
	return &Registry{funcs: make(map[string]Function)}
}

func (r *Registry) Register(fn Function) {
	r.funcs[strings.ToUpper(fn.Name())] = fn
}

func (r *Registry) Lookup(name string) (Function, bool) {
	fn, ok := r.funcs[strings.ToUpper(name)]
	return fn, ok
}

// DefaultRegistry returns the built-in scalar functions. Data-source
// functions are resolved separately by the executor; they never appear
// inside expressions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(dateFunc{})
	r.Register(dateAddFunc{})
	return r
}

// dateParseLayouts are tried in order when DATE is called without an
// explicit format.
var dateParseLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04",
	"2006-01-02T15:04:05",
	time.RFC3339,
}

func parseDate(v value.Value, layout string) (value.Value, error) {
	if v.Kind() == value.KindDate {
		return v, nil
	}
	if v.Kind() != value.KindString {
		return value.Value{}, fmt.Errorf("expected a date or string, got %s", v.Kind())
	}
	s := v.AsString()
	if layout != "" {
		t, err := time.Parse(layout, s)
		if err != nil {
			return value.Value{}, fmt.Errorf("%q does not match format %q", s, layout)
		}
		return dateValue(t, layout), nil
	}
	for _, l := range dateParseLayouts {
		if t, err := time.Parse(l, s); err == nil {
			return dateValue(t, l), nil
		}
	}
	return value.Value{}, fmt.Errorf("%q is not a recognized date", s)
}

func dateValue(t time.Time, layout string) value.Value {
	if strings.Contains(layout, "15") {
		return value.Datetime(t)
	}
	return value.Date(t)
}

// dateFunc implements DATE(value [, format]).
type dateFunc struct{}

func (dateFunc) Name() string  { return "DATE" }
func (dateFunc) MinArity() int { return 1 }
func (dateFunc) MaxArity() int { return 2 }

func (dateFunc) Call(_ *Context, args []value.Value) (value.Value, error) {
	layout := ""
	if len(args) == 2 {
		if args[1].Kind() != value.KindString {
			return value.Value{}, fmt.Errorf("format must be a string, got %s", args[1].Kind())
		}
		layout = args[1].AsString()
	}
	return parseDate(args[0], layout)
}

// dateAddFunc implements DATEADD(unit, amount, date [, format]). With a
// format argument the result is a formatted string instead of a date.
type dateAddFunc struct{}

func (dateAddFunc) Name() string  { return "DATEADD" }
func (dateAddFunc) MinArity() int { return 3 }
func (dateAddFunc) MaxArity() int { return 4 }

func (dateAddFunc) Call(_ *Context, args []value.Value) (value.Value, error) {
	if args[0].Kind() != value.KindString {
		return value.Value{}, fmt.Errorf("unit must be a string, got %s", args[0].Kind())
	}
	unit := strings.ToLower(args[0].AsString())
	amount, err := args[1].AsNumber()
	if err != nil {
		return value.Value{}, fmt.Errorf("amount must be a number: %w", err)
	}
	n := int(amount)

	base, err := parseDate(args[2], "")
	if err != nil {
		return value.Value{}, err
	}
	t, baseHasTime := base.Time()
	hasTime := baseHasTime
	switch unit {
	case "year":
		t = t.AddDate(n, 0, 0)
	case "month":
		t = t.AddDate(0, n, 0)
	case "day":
		t = t.AddDate(0, 0, n)
	case "hour":
		t = t.Add(time.Duration(n) * time.Hour)
		hasTime = true
	case "minute":
		t = t.Add(time.Duration(n) * time.Minute)
		hasTime = true
	case "second":
		t = t.Add(time.Duration(n) * time.Second)
		hasTime = true
	default:
		return value.Value{}, fmt.Errorf("unknown unit %q", unit)
	}

	var out value.Value
	if hasTime {
		out = value.Datetime(t)
	} else {
		out = value.Date(t)
	}
	if len(args) == 4 {
		if args[3].Kind() != value.KindString {
			return value.Value{}, fmt.Errorf("format must be a string, got %s", args[3].Kind())
		}
		return value.String(t.Format(args[3].AsString())), nil
	}
	return out, nil
}
