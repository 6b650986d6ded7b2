package value

import "errors"

// ErrTypeMismatch marks operations applied to variant combinations they
// are not defined for.
var ErrTypeMismatch = errors.New("type mismatch")

// Like implements SQL LIKE over two strings: % matches any run of
// characters, _ matches exactly one.
func Like(a, b Value) (Value, error) {
	if a.kind != KindString || b.kind != KindString {
		return Null(), mismatch("LIKE", a, b)
	}
	return Bool(matchLikePattern(a.s, b.s)), nil
}

// matchLikePattern walks string and pattern runes in lockstep,
// backtracking to the most recent % when a literal run stops matching.
// Backtracking is what keeps '%ab' matching "abab": the first candidate
// anchor fails to reach the end, so the % re-expands past it.
func matchLikePattern(str, pattern string) bool {
	s := []rune(str)
	p := []rune(pattern)

	si, pi := 0, 0
	backPi, backSi := -1, 0

	for si < len(s) {
		switch {
		case pi < len(p) && (p[pi] == '_' || p[pi] == s[si]):
			pi++
			si++
		case pi < len(p) && p[pi] == '%':
			backPi = pi
			backSi = si
			pi++
		case backPi >= 0:
			backSi++
			si = backSi
			pi = backPi + 1
		default:
			return false
		}
	}

	for pi < len(p) && p[pi] == '%' {
		pi++
	}
	return pi == len(p)
}
