package mathx

import "golang.org/x/exp/constraints"

// CeilDiv returns ceil(a/b); 0 when b == 0.
func CeilDiv[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	return (a + b - 1) / b
}

// RoundDivEven returns a/b rounded to nearest, exact ties to even (as %.3f
// does for an exactly representable value); 0 when b == 0.
func RoundDivEven[T constraints.Unsigned](a, b T) T {
	if b == 0 {
		return 0
	}
	q, r := a/b, a%b
	switch {
	case r > b-r:
		q++
	case r == b-r:
		q += q & 1
	}
	return q
}
