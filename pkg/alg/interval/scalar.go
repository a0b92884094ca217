package interval

import (
	"cmp"
	"fmt"
)

// Scalar is the set of built-in numeric types usable as interval bounds.
type Scalar interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Span is a closed interval over a built-in numeric type.
// The zero Span is the valid interval [0, 0].
type Span[S Scalar] struct {
	lower S
	upper S
}

// L is an interval over 64-bit signed integers.
type L = Span[int64]

// D is an interval over 64-bit floating point numbers.
type D = Span[float64]

// NewSpan returns the interval [lower, upper].
// It fails with an *InvalidIntervalError when upper < lower or either bound is NaN.
func NewSpan[S Scalar](lower, upper S) (Span[S], error) {
	// NaN is the only value not equal to itself.
	if lower != lower || upper != upper || upper < lower {
		return Span[S]{}, invalid(lower, upper)
	}

	return Span[S]{lower: lower, upper: upper}, nil
}

// NewL returns the int64 interval [lower, upper].
func NewL(lower, upper int64) (L, error) {
	return NewSpan(lower, upper)
}

// MustL is like NewL but panics on an invalid interval.
func MustL(lower, upper int64) L {
	return must(NewL(lower, upper))
}

// NewD returns the float64 interval [lower, upper].
func NewD(lower, upper float64) (D, error) {
	return NewSpan(lower, upper)
}

// MustD is like NewD but panics on an invalid interval.
func MustD(lower, upper float64) D {
	return must(NewD(lower, upper))
}

// Lower returns the inclusive lower bound.
func (s Span[S]) Lower() S { return s.lower }

// Upper returns the inclusive upper bound.
func (s Span[S]) Upper() S { return s.upper }

// Size returns 1 + (upper - lower). It wraps for integer intervals spanning
// the whole domain.
func (s Span[S]) Size() S {
	return 1 + (s.upper - s.lower)
}

// Compare orders by lower bound, then upper bound.
func (s Span[S]) Compare(other Span[S]) Comparison {
	if c := cmp.Compare(s.lower, other.lower); c != 0 {
		return FromInt(c)
	}

	return FromInt(cmp.Compare(s.upper, other.upper))
}

// Overlaps reports whether s and other share at least one point.
func (s Span[S]) Overlaps(other Span[S]) bool {
	return s.lower <= other.upper && other.lower <= s.upper
}

// UpperMaximum returns [s.lower, max(s.upper, other.upper)].
func (s Span[S]) UpperMaximum(other Span[S]) Span[S] {
	return Span[S]{lower: s.lower, upper: max(s.upper, other.upper)}
}

// String returns the interval as "[lower, upper]".
func (s Span[S]) String() string {
	return fmt.Sprintf("[%v, %v]", s.lower, s.upper)
}
