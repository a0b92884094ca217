// Package interval provides closed interval values over ordered scalar
// domains and the minimal contract the interval tree needs from them.
//
// An interval [lower, upper] is valid only when upper >= lower. Concrete
// types are immutable and can only be built through constructors that
// enforce this, so an invalid interval never reaches a tree.
//
// Intervals are ordered lexicographically by (lower, upper): the lower bound
// is the primary key and the upper bound breaks ties. Two intervals are
// Equal exactly when both bounds are equal.
package interval

import (
	"errors"
	"fmt"
)

// Sentinel errors.
var (
	// ErrInvalidInterval is returned when an interval's upper bound is less
	// than its lower bound, or a bound is not a number.
	ErrInvalidInterval = errors.New("interval: invalid interval")

	// ErrMalformed is returned when the text form of an interval cannot be parsed.
	ErrMalformed = errors.New("interval: malformed interval")
)

// Comparison is the result of a three-way comparison.
type Comparison int8

// Comparison results.
const (
	LessThan Comparison = -1
	Equal    Comparison = 0
	MoreThan Comparison = 1
)

// FromInt converts a cmp.Compare style result into a Comparison.
func FromInt(c int) Comparison {
	switch {
	case c < 0:
		return LessThan
	case c > 0:
		return MoreThan
	default:
		return Equal
	}
}

// String returns the name of the comparison result.
func (c Comparison) String() string {
	switch c {
	case LessThan:
		return "LESS_THAN"
	case Equal:
		return "EQUAL"
	case MoreThan:
		return "MORE_THAN"
	default:
		return fmt.Sprintf("Comparison(%d)", int8(c))
	}
}

// Value is the capability set an interval tree requires from its elements.
// I is the implementing type itself.
type Value[I any] interface {
	// Compare orders intervals by lower bound, then upper bound.
	Compare(other I) Comparison

	// Overlaps reports whether the two closed intervals share a point.
	Overlaps(other I) bool

	// UpperMaximum returns an interval with the receiver's lower bound and the
	// larger of the two upper bounds. It is used for annotations only.
	UpperMaximum(other I) I

	fmt.Stringer
}

// Interval is a Value that also exposes its bounds in the scalar domain S.
type Interval[S, I any] interface {
	Value[I]

	Lower() S
	Upper() S

	// Size is 1 + (upper - lower) in domain units.
	Size() S
}

// InvalidIntervalError describes an interval rejected at construction.
type InvalidIntervalError struct {
	Lower string
	Upper string
}

// Error implements error.
func (e *InvalidIntervalError) Error() string {
	return fmt.Sprintf("%v: upper bound %s is less than lower bound %s", ErrInvalidInterval, e.Upper, e.Lower)
}

// Unwrap returns ErrInvalidInterval.
func (e *InvalidIntervalError) Unwrap() error {
	return ErrInvalidInterval
}

func invalid(lower, upper any) error {
	return &InvalidIntervalError{Lower: fmt.Sprint(lower), Upper: fmt.Sprint(upper)}
}

func must[I any](i I, err error) I {
	if err != nil {
		panic(err)
	}

	return i
}
