package value

import (
	"errors"
	"testing"
	"time"
)

func TestAsBoolTruthTable(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"null", Null(), false},
		{"false", Bool(false), false},
		{"true", Bool(true), true},
		{"zero", Number(0), false},
		{"nonzero", Number(0.5), true},
		{"false string", String("false"), false},
		{"empty string", String(""), true},
		{"other string", String("no"), true},
		{"empty list", List(nil), true},
		{"map", Map(map[string]Value{}), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.AsBool(); got != tt.want {
				t.Errorf("AsBool(%s) = %v, want %v", tt.v.AsString(), got, tt.want)
			}
		})
	}
}

func TestAsNumber(t *testing.T) {
	if n, err := String(" 42.5 ").AsNumber(); err != nil || n != 42.5 {
		t.Errorf("AsNumber(\" 42.5 \") = %v, %v", n, err)
	}
	if n, err := Number(7).AsNumber(); err != nil || n != 7 {
		t.Errorf("AsNumber(7) = %v, %v", n, err)
	}
	if _, err := Bool(true).AsNumber(); err == nil {
		t.Error("expected error converting bool to number")
	}
	if _, err := String("nope").AsNumber(); err == nil {
		t.Error("expected error converting non-numeric string")
	}
}

func TestAsListWrapsScalars(t *testing.T) {
	wrapped := Number(1).AsList()
	if len(wrapped) != 1 || wrapped[0].Kind() != KindNumber {
		t.Fatalf("AsList(1) = %v", wrapped)
	}
	passthrough := List([]Value{Number(1), Number(2)}).AsList()
	if len(passthrough) != 2 {
		t.Fatalf("AsList on list = %v", passthrough)
	}
}

func TestEqualNullSemantics(t *testing.T) {
	eq, err := Equal(Null(), Null())
	if err != nil || !eq {
		t.Errorf("Null == Null: %v, %v", eq, err)
	}
	eq, err = Equal(Null(), Number(1))
	if err != nil || eq {
		t.Errorf("Null == 1: %v, %v", eq, err)
	}
}

func TestCompareCrossVariantFails(t *testing.T) {
	if _, err := Compare(Number(1), String("1")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("expected type mismatch, got %v", err)
	}
	if _, err := Compare(Null(), Null()); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("null does not order, got %v", err)
	}
}

func TestCompareOrdering(t *testing.T) {
	day := func(d int) Value { return Date(time.Date(2025, 1, d, 0, 0, 0, 0, time.UTC)) }
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"numbers", Number(1), Number(2), -1},
		{"strings", String("b"), String("a"), 1},
		{"dates", day(1), day(2), -1},
		{"bools", Bool(false), Bool(true), -1},
		{"equal dates", day(3), day(3), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Compare(tt.a, tt.b)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("Compare = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestArithmetic(t *testing.T) {
	if v, err := Arith("//", Number(7), Number(2)); err != nil || v.AsString() != "3" {
		t.Errorf("7 // 2 = %v, %v", v.AsString(), err)
	}
	if v, err := Arith("**", Number(2), Number(10)); err != nil || v.AsString() != "1024" {
		t.Errorf("2 ** 10 = %v, %v", v.AsString(), err)
	}
	if _, err := Arith("-", Number(1), String("x")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("1 - 'x' should mismatch, got %v", err)
	}
	if _, err := Arith("/", Number(1), Number(0)); err == nil {
		t.Error("division by zero should fail")
	}
}

func TestAddConcatenation(t *testing.T) {
	if v, err := Add(String("a"), String("b")); err != nil || v.AsString() != "ab" {
		t.Errorf("'a' + 'b' = %v, %v", v.AsString(), err)
	}
	v, err := Add(List([]Value{Number(1)}), List([]Value{Number(2)}))
	if err != nil || len(v.Items()) != 2 {
		t.Errorf("list + list = %v, %v", v.AsString(), err)
	}
	if _, err := Add(String("a"), Number(1)); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("'a' + 1 should mismatch, got %v", err)
	}
}

func TestIn(t *testing.T) {
	list := List([]Value{String("a"), String("b")})
	if v, err := In(String("b"), list); err != nil || !v.AsBool() {
		t.Errorf("'b' IN list = %v, %v", v.AsString(), err)
	}
	if v, err := In(String("z"), list); err != nil || v.AsBool() {
		t.Errorf("'z' IN list = %v, %v", v.AsString(), err)
	}
	if _, err := In(String("a"), String("ab")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("IN over non-list should mismatch, got %v", err)
	}
}

func TestLike(t *testing.T) {
	tests := []struct {
		str, pattern string
		want         bool
	}{
		{"hello world", "hello%", true},
		{"hello world", "%world", true},
		{"hello world", "h_llo%", true},
		{"hello world", "h__lo%", false},
		{"notes.md", "%.md", true},
		{"notes.md", "notes", false},
		{"abc", "%", true},
		{"abab", "%ab", true},
		{"notes.md.md", "%.md", true},
		{"abcabd", "%ab_", true},
		{"abcabd", "%abc", false},
		{"xabxcd", "%ab%cd", true},
		{"é", "_", true},
		{"café", "caf_", true},
		{"café", "%é", true},
	}
	for _, tt := range tests {
		v, err := Like(String(tt.str), String(tt.pattern))
		if err != nil {
			t.Fatal(err)
		}
		if v.AsBool() != tt.want {
			t.Errorf("%q LIKE %q = %v, want %v", tt.str, tt.pattern, v.AsBool(), tt.want)
		}
	}
	if _, err := Like(Number(1), String("%")); !errors.Is(err, ErrTypeMismatch) {
		t.Errorf("LIKE over number should mismatch, got %v", err)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := Map(map[string]Value{
		"title": String("existential crisis"),
		"done":  Bool(true),
		"count": Number(3.25),
		"when":  Datetime(time.Date(2025, 6, 15, 14, 30, 0, 0, time.UTC)),
		"tags":  List([]Value{String("a"), String("b"), Null()}),
		"nested": Map(map[string]Value{
			"depth": Number(2),
		}),
	})

	raw, err := original.MarshalBinary()
	if err != nil {
		t.Fatal(err)
	}
	var decoded Value
	if err := decoded.UnmarshalBinary(raw); err != nil {
		t.Fatal(err)
	}
	eq, err := Equal(original, decoded)
	if err != nil {
		t.Fatal(err)
	}
	if !eq {
		t.Errorf("round trip mismatch: %s vs %s", original.AsString(), decoded.AsString())
	}
}

func TestUnmarshalCorrupt(t *testing.T) {
	var v Value
	if err := v.UnmarshalBinary([]byte{0xFF, 0x01}); err == nil {
		t.Error("expected error on unknown kind byte")
	}
	if err := v.UnmarshalBinary([]byte{byte(KindString), 0x20, 'a'}); err == nil {
		t.Error("expected error on truncated string")
	}
}
