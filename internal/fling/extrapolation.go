// SPDX-License-Identifier: Unlicense OR MIT

// Package fling estimates the release velocity of a touch
// contact from its recent position samples.
package fling

import (
	"math"
	"time"

	"touchflow.org/f32"
)

// Extrapolation computes a 1-dimensional velocity estimate
// for a set of timestamped points using the least squares
// fit of a 2nd order polynomial. The same method is used by
// Android.
type Extrapolation struct {
	// Index into points.
	idx int
	// Circular buffer of samples.
	samples []sample
	// Pre-allocated cache for samples.
	cache [historySize]sample

	// Filtered values and times
	values [historySize]float32
	times  [historySize]float32
}

// Tracker is a 2-dimensional Extrapolation.
type Tracker struct {
	x, y Extrapolation
}

// Estimate is the result of an Extrapolation.
type Estimate struct {
	// Velocity is the estimated velocity in units per second.
	Velocity float32
	// Distance is the distance covered by the samples that
	// contributed to Velocity.
	Distance float32
}

type sample struct {
	t time.Duration
	v float32
}

type matrix struct {
	rows, cols int
	data       []float32
}

type coefficients [degree + 1]float32

const (
	degree      = 2
	historySize = 20
	// maxAge is the oldest sample considered part of a fling.
	maxAge = 100 * time.Millisecond
	// maxSampleGap is the largest gap between samples that
	// still counts as continuous movement.
	maxSampleGap = 40 * time.Millisecond
)

// Sample records the position v at time t.
func (e *Extrapolation) Sample(t time.Duration, v float32) {
	if e.samples == nil {
		e.samples = e.cache[:0]
	}
	s := sample{t: t, v: v}
	if e.idx == len(e.samples) && e.idx < cap(e.samples) {
		e.samples = append(e.samples, s)
	} else {
		e.samples[e.idx] = s
	}
	e.idx++
	if e.idx == cap(e.samples) {
		e.idx = 0
	}
}

// Estimate the velocity at the time of the most recent sample.
func (e *Extrapolation) Estimate() Estimate {
	if len(e.samples) == 0 {
		return Estimate{}
	}
	values := e.values[:0]
	times := e.times[:0]
	last := e.get(0)
	t := last.t
	// Walk backwards collecting samples.
	for i := 0; i < len(e.samples); i++ {
		p := e.get(-i)
		age := last.t - p.t
		if age >= maxAge || t-p.t >= maxSampleGap {
			break
		}
		t = p.t
		values = append(values, p.v-last.v)
		times = append(times, float32((-age).Seconds()))
	}
	n := len(values)
	if n < 2 {
		return Estimate{}
	}
	dist := -values[n-1]
	coef, ok := polyFit(times, values)
	if !ok {
		// Too few samples for a curve; fall back to the
		// slope between the oldest and newest sample.
		dt := -times[n-1]
		if dt <= 0 {
			return Estimate{}
		}
		return Estimate{Velocity: dist / dt, Distance: dist}
	}
	return Estimate{
		Velocity: coef[1],
		Distance: dist,
	}
}

func (e *Extrapolation) get(i int) sample {
	idx := (e.idx + i - 1 + len(e.samples)) % len(e.samples)
	return e.samples[idx]
}

// Sample records the position p at time t.
func (tr *Tracker) Sample(t time.Duration, p f32.Point) {
	tr.x.Sample(t, p.X)
	tr.y.Sample(t, p.Y)
}

// Velocity returns the estimated velocity in units per second.
func (tr *Tracker) Velocity() f32.Point {
	return f32.Pt(tr.x.Estimate().Velocity, tr.y.Estimate().Velocity)
}

// polyFit computes the least squares polynomial fit for
// the set of points in X, Y.
func polyFit(X, Y []float32) (coefficients, bool) {
	if len(X) != len(Y) {
		panic("X and Y lengths differ")
	}
	if len(X) <= degree {
		// Not enough points to fit a curve.
		return coefficients{}, false
	}

	// Construct the Vandermonde matrix A:
	//
	//  [ 1 x1 x1^2 ... ]
	//  [ 1 x2 x2^2 ... ]
	//  [ 1 x3 x3^2 ... ]
	//  ..
	A := newMatrix(len(X), degree+1)
	for i, x := range X {
		A.set(i, 0, 1)
		for j := 1; j < A.cols; j++ {
			A.set(i, j, A.get(i, j-1)*x)
		}
	}

	Q, Rt, ok := decomposeQR(A)
	if !ok {
		return coefficients{}, false
	}
	// Solve R*b = Qt*Y by back substitution.
	var coef coefficients
	for i := Rt.rows - 1; i >= 0; i-- {
		var qty float32
		for k := 0; k < Q.rows; k++ {
			qty += Q.get(k, i) * Y[k]
		}
		for j := i + 1; j < Rt.rows; j++ {
			qty -= Rt.get(j, i) * coef[j]
		}
		coef[i] = qty / Rt.get(i, i)
	}
	return coef, true
}

// decomposeQR computes and returns Q, Rt where Q*transpose(Rt) = A, if
// possible. R is guaranteed to be upper triangular and only the square
// part of R is returned.
func decomposeQR(A *matrix) (*matrix, *matrix, bool) {
	// Modified Gram-Schmidt over the columns of A.
	Q := newMatrix(A.rows, A.cols)
	Rt := newMatrix(A.cols, A.cols)
	for j := 0; j < A.cols; j++ {
		for i := 0; i < A.rows; i++ {
			Q.set(i, j, A.get(i, j))
		}
		for k := 0; k < j; k++ {
			var dot float32
			for i := 0; i < A.rows; i++ {
				dot += Q.get(i, k) * Q.get(i, j)
			}
			Rt.set(j, k, dot)
			for i := 0; i < A.rows; i++ {
				Q.set(i, j, Q.get(i, j)-dot*Q.get(i, k))
			}
		}
		var norm float32
		for i := 0; i < A.rows; i++ {
			q := Q.get(i, j)
			norm += q * q
		}
		norm = float32(math.Sqrt(float64(norm)))
		if norm < 1e-6 {
			// Degenerate data; the columns are linearly dependent.
			return nil, nil, false
		}
		Rt.set(j, j, norm)
		for i := 0; i < A.rows; i++ {
			Q.set(i, j, Q.get(i, j)/norm)
		}
	}
	return Q, Rt, true
}

func newMatrix(rows, cols int) *matrix {
	return &matrix{
		rows: rows,
		cols: cols,
		data: make([]float32, rows*cols),
	}
}

func (m *matrix) set(row, col int, v float32) {
	if row < 0 || row >= m.rows {
		panic("row out of range")
	}
	if col < 0 || col >= m.cols {
		panic("col out of range")
	}
	m.data[row*m.cols+col] = v
}

func (m *matrix) get(row, col int) float32 {
	if row < 0 || row >= m.rows {
		panic("row out of range")
	}
	if col < 0 || col >= m.cols {
		panic("col out of range")
	}
	return m.data[row*m.cols+col]
}
