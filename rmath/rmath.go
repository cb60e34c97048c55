// Package rmath holds small integer helpers shared by the runtime and the
// engine.
package rmath

import "golang.org/x/exp/constraints"

// DivRoundUp returns x/y rounded towards positive infinity.
func DivRoundUp[T constraints.Unsigned](x, y T) T {
	return (x + y - 1) / y
}

// AlignUp rounds x up to the next multiple of alignment, which must be a
// power of two.
func AlignUp[T constraints.Integer](x, alignment T) T {
	return (x + alignment - 1) & -alignment
}

// NextMultipleOf rounds x up to the next multiple of y.
func NextMultipleOf[T constraints.Integer](x, y T) T {
	r := x % y
	if r == 0 {
		return x
	}
	return x + y - r
}
