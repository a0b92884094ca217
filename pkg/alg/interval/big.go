package interval

import (
	"math/big"
)

// B is an interval over arbitrary-precision integers.
// The bounds are never mutated after construction; accessors return copies.
// The zero B is not a valid interval; use NewB.
type B struct {
	lower *big.Int
	upper *big.Int
}

// NewB returns the interval [lower, upper], copying both bounds.
// Nil bounds are rejected.
func NewB(lower, upper *big.Int) (B, error) {
	if lower == nil || upper == nil || upper.Cmp(lower) < 0 {
		return B{}, invalid(lower, upper)
	}

	return B{lower: new(big.Int).Set(lower), upper: new(big.Int).Set(upper)}, nil
}

// MustB is like NewB but panics on an invalid interval.
func MustB(lower, upper *big.Int) B {
	return must(NewB(lower, upper))
}

// BInt64 returns the big integer interval [lower, upper].
func BInt64(lower, upper int64) (B, error) {
	return NewB(big.NewInt(lower), big.NewInt(upper))
}

// Lower returns a copy of the inclusive lower bound.
func (b B) Lower() *big.Int { return new(big.Int).Set(b.lower) }

// Upper returns a copy of the inclusive upper bound.
func (b B) Upper() *big.Int { return new(big.Int).Set(b.upper) }

// Size returns 1 + (upper - lower).
func (b B) Size() *big.Int {
	size := new(big.Int).Sub(b.upper, b.lower)

	return size.Add(size, big.NewInt(1))
}

// Compare orders by lower bound, then upper bound.
func (b B) Compare(other B) Comparison {
	if c := b.lower.Cmp(other.lower); c != 0 {
		return FromInt(c)
	}

	return FromInt(b.upper.Cmp(other.upper))
}

// Overlaps reports whether b and other share at least one point.
func (b B) Overlaps(other B) bool {
	return b.lower.Cmp(other.upper) <= 0 && other.lower.Cmp(b.upper) <= 0
}

// UpperMaximum returns [b.lower, max(b.upper, other.upper)].
// The result shares bound storage with its inputs, which is safe because
// bounds are immutable.
func (b B) UpperMaximum(other B) B {
	if other.upper.Cmp(b.upper) > 0 {
		return B{lower: b.lower, upper: other.upper}
	}

	return b
}

// String returns the interval as "[lower, upper]".
func (b B) String() string {
	if b.lower == nil || b.upper == nil {
		return "[]"
	}

	return "[" + b.lower.String() + ", " + b.upper.String() + "]"
}
