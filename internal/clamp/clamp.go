// Package clamp provides small generic arithmetic helpers for accounting
// code that must not underflow past zero.
package clamp

import "golang.org/x/exp/constraints"

// Sub returns a-b, clamped to zero rather than wrapping, for unsigned-style
// accounting over an ordinarily-signed integer type. This resolves the
// ControlRing "total_bytes" ambiguity noted in spec §9: the original source
// performed an unsigned subtraction and then a signed comparison against
// zero, and the documented intent is a clamp, not a wraparound.
func Sub[T constraints.Integer](a, b T) T {
	if b >= a {
		return 0
	}
	return a - b
}
