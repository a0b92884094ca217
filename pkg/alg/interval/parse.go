package interval

import (
	"fmt"
	"math/big"
	"strconv"
	"strings"
)

// ParseL parses "[lower, upper]" into an int64 interval.
func ParseL(text string) (L, error) {
	lo, hi, err := splitBounds(text)
	if err != nil {
		return L{}, err
	}

	lower, err := strconv.ParseInt(lo, 10, 64)
	if err != nil {
		return L{}, fmt.Errorf("%w: lower bound %q: %w", ErrMalformed, lo, err)
	}

	upper, err := strconv.ParseInt(hi, 10, 64)
	if err != nil {
		return L{}, fmt.Errorf("%w: upper bound %q: %w", ErrMalformed, hi, err)
	}

	return NewL(lower, upper)
}

// ParseD parses "[lower, upper]" into a float64 interval.
func ParseD(text string) (D, error) {
	lo, hi, err := splitBounds(text)
	if err != nil {
		return D{}, err
	}

	lower, err := strconv.ParseFloat(lo, 64)
	if err != nil {
		return D{}, fmt.Errorf("%w: lower bound %q: %w", ErrMalformed, lo, err)
	}

	upper, err := strconv.ParseFloat(hi, 64)
	if err != nil {
		return D{}, fmt.Errorf("%w: upper bound %q: %w", ErrMalformed, hi, err)
	}

	return NewD(lower, upper)
}

// ParseB parses "[lower, upper]" into an arbitrary-precision interval.
func ParseB(text string) (B, error) {
	lo, hi, err := splitBounds(text)
	if err != nil {
		return B{}, err
	}

	lower, ok := new(big.Int).SetString(lo, 10)
	if !ok {
		return B{}, fmt.Errorf("%w: lower bound %q", ErrMalformed, lo)
	}

	upper, ok := new(big.Int).SetString(hi, 10)
	if !ok {
		return B{}, fmt.Errorf("%w: upper bound %q", ErrMalformed, hi)
	}

	return NewB(lower, upper)
}

// splitBounds extracts the two bound texts from "[lower, upper]".
func splitBounds(text string) (lower, upper string, err error) {
	s := strings.TrimSpace(text)

	inner, ok := strings.CutPrefix(s, "[")
	if ok {
		inner, ok = strings.CutSuffix(inner, "]")
	}

	if !ok {
		return "", "", fmt.Errorf("%w: %q is not bracketed", ErrMalformed, text)
	}

	lower, upper, ok = strings.Cut(inner, ",")
	if !ok || strings.Contains(upper, ",") {
		return "", "", fmt.Errorf("%w: %q must have exactly two bounds", ErrMalformed, text)
	}

	return strings.TrimSpace(lower), strings.TrimSpace(upper), nil
}
