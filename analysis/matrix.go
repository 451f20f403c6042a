// Package analysis studies a transition table offline: its long-run behaviour
// as a Markov chain, and sampled runs of the real generator and engine.
package analysis

import (
	"math"

	"stutterclock-go/automaton"
)

const (
	n = automaton.MacroStates

	// LimitPower approximates the limit matrix.
	LimitPower = 1024
	SecondsDay = 86400
)

// Matrix holds transition probabilities, row = from, column = to.
type Matrix [n][n]float64

// FromTable is the probability matrix of t.
func FromTable(t *automaton.Table) Matrix { return Matrix(t.Probabilities()) }

func Identity() Matrix {
	var m Matrix
	for i := range m {
		m[i][i] = 1
	}
	return m
}

func Mul(a, b Matrix) Matrix {
	var out Matrix
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var s float64
			for k := 0; k < n; k++ {
				s += a[i][k] * b[k][j]
			}
			out[i][j] = s
		}
	}
	return out
}

// Power is m^p by repeated squaring.
func Power(m Matrix, p int) Matrix {
	out := Identity()
	for p > 0 {
		if p&1 == 1 {
			out = Mul(out, m)
		}
		m = Mul(m, m)
		p >>= 1
	}
	return out
}

// Limit is m^LimitPower.
func Limit(m Matrix) Matrix { return Power(m, LimitPower) }

// Stationary is the mean row of the limit matrix. For an aperiodic chain every
// row is already the stationary distribution; averaging also gives the right
// answer for the periodic steady ring, whose powers never converge.
func Stationary(m Matrix) [n]float64 {
	l := Limit(m)
	var pi [n]float64
	for i := range l {
		for j := range l[i] {
			pi[j] += l[i][j] / n
		}
	}
	return pi
}

// Speed is the column-0 sum of the limit matrix: the long-run rate of ticks
// relative to a clock that visits the origin every fourth transition.
func Speed(m Matrix) float64 {
	l := Limit(m)
	var s float64
	for i := range l {
		s += l[i][0]
	}
	return s
}

// DriftPerDay is the expected gain (positive) or loss in seconds per day.
func DriftPerDay(m Matrix) float64 { return (Speed(m) - 1) * SecondsDay }

// RowSumsOK reports whether every row sums to one within eps.
func RowSumsOK(m Matrix, eps float64) bool {
	for i := range m {
		var s float64
		for _, v := range m[i] {
			s += v
		}
		if math.Abs(s-1) > eps {
			return false
		}
	}
	return true
}
