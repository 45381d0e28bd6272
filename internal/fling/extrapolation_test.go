// SPDX-License-Identifier: Unlicense OR MIT

package fling

import (
	"fmt"
	"math"
	"strings"
	"testing"
	"time"

	"touchflow.org/f32"
)

func TestDecomposeQR(t *testing.T) {
	A := &matrix{
		rows: 3, cols: 3,
		data: []float32{
			12, 6, -4,
			-51, 167, 24,
			4, -68, -41,
		},
	}
	Q, Rt, ok := decomposeQR(A)
	if !ok {
		t.Fatal("decomposeQR failed")
	}
	R := Rt.transpose()
	QR := Q.mul(R)
	if !A.approxEqual(QR) {
		t.Log("A\n", A)
		t.Log("Q\n", Q)
		t.Log("R\n", R)
		t.Log("QR\n", QR)
		t.Fatal("Q*R not approximately equal to A")
	}
}

func TestFit(t *testing.T) {
	X := []float32{-1, 0, 1}
	Y := []float32{2, 0, 2}

	got, ok := polyFit(X, Y)
	if !ok {
		t.Fatal("polyFit failed")
	}
	want := coefficients{0, 0, 2}
	if !got.approxEqual(want) {
		t.Fatalf("polyFit: got %v want %v", got, want)
	}
}

func TestEstimateConstantVelocity(t *testing.T) {
	var e Extrapolation
	// 1000 units per second, sampled every 10ms.
	for i := 0; i < 8; i++ {
		e.Sample(time.Duration(i)*10*time.Millisecond, float32(i*10))
	}
	est := e.Estimate()
	if !within(est.Velocity, 1000) {
		t.Errorf("velocity = %v, want 1000", est.Velocity)
	}
	if !approxEqual(est.Distance, 70) {
		t.Errorf("distance = %v, want 70", est.Distance)
	}
}

func TestEstimateStale(t *testing.T) {
	var e Extrapolation
	e.Sample(0, 0)
	e.Sample(10*time.Millisecond, 10)
	// A long pause breaks the movement.
	e.Sample(500*time.Millisecond, 10)
	if v := e.Estimate().Velocity; v != 0 {
		t.Errorf("velocity after pause = %v, want 0", v)
	}
}

func TestEstimateTwoSamples(t *testing.T) {
	var e Extrapolation
	e.Sample(0, 0)
	e.Sample(20*time.Millisecond, -10)
	if v := e.Estimate().Velocity; !within(v, -500) {
		t.Errorf("velocity = %v, want -500", v)
	}
}

func TestTrackerWrapsHistory(t *testing.T) {
	var tr Tracker
	for i := 0; i < 3*historySize; i++ {
		ts := time.Duration(i) * 5 * time.Millisecond
		tr.Sample(ts, f32.Pt(float32(i), float32(-2*i)))
	}
	v := tr.Velocity()
	if !within(v.X, 200) || !within(v.Y, -400) {
		t.Errorf("velocity = %v, want (200,-400)", v)
	}
}

// within reports whether got is within 1% of want.
func within(got, want float32) bool {
	d := got - want
	if d < 0 {
		d = -d
	}
	if want < 0 {
		want = -want
	}
	return d <= want/100
}

func (m *matrix) transpose() *matrix {
	t := newMatrix(m.cols, m.rows)
	for i := 0; i < m.rows; i++ {
		for j := 0; j < m.cols; j++ {
			t.set(j, i, m.get(i, j))
		}
	}
	return t
}

func (m *matrix) mul(m2 *matrix) *matrix {
	if m.cols != m2.rows {
		panic("mismatched matrices")
	}
	mm := newMatrix(m.rows, m2.cols)
	for i := 0; i < mm.rows; i++ {
		for j := 0; j < mm.cols; j++ {
			var v float32
			for k := 0; k < m.cols; k++ {
				v += m.get(i, k) * m2.get(k, j)
			}
			mm.set(i, j, v)
		}
	}
	return mm
}

func (m *matrix) approxEqual(m2 *matrix) bool {
	if m.rows != m2.rows || m.cols != m2.cols {
		return false
	}
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			if !approxEqual(m.get(row, col), m2.get(row, col)) {
				return false
			}
		}
	}
	return true
}

func (m *matrix) String() string {
	var b strings.Builder
	for row := 0; row < m.rows; row++ {
		for col := 0; col < m.cols; col++ {
			v := m.get(row, col)
			b.WriteString(fmt.Sprintf("%8.3f ", v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (c coefficients) approxEqual(c2 coefficients) bool {
	for i, v := range c {
		if !approxEqual(v, c2[i]) {
			return false
		}
	}
	return true
}

// approxEqual compares a and b with a tolerance relative to
// their magnitude.
func approxEqual(a, b float32) bool {
	const epsilon = 0.0001
	tol := epsilon * (1 + float32(math.Max(math.Abs(float64(a)), math.Abs(float64(b)))))
	d := a - b
	return -tol <= d && d <= tol
}
