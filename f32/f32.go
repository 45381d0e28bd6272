// SPDX-License-Identifier: Unlicense OR MIT

/*
Package f32 is a float32 implementation of package image's
Point, extended with the distance helpers used for touch
geometry.

The coordinate space has the origin in the top left
corner with the axes extending right and down.
*/
package f32

import (
	"fmt"
	"math"
)

// A Point is a two dimensional point.
type Point struct {
	X, Y float32
}

// Pt is shorthand for Point{X: x, Y: y}.
func Pt(x, y float32) Point {
	return Point{X: x, Y: y}
}

// Add return the point p+p2.
func (p Point) Add(p2 Point) Point {
	return Point{X: p.X + p2.X, Y: p.Y + p2.Y}
}

// Sub returns the vector p-p2.
func (p Point) Sub(p2 Point) Point {
	return Point{X: p.X - p2.X, Y: p.Y - p2.Y}
}

// Mul returns p scaled by s.
func (p Point) Mul(s float32) Point {
	return Point{X: p.X * s, Y: p.Y * s}
}

// Div returns the vector p/s.
func (p Point) Div(s float32) Point {
	return Point{X: p.X / s, Y: p.Y / s}
}

// Len returns the Euclidean length of the vector p.
func (p Point) Len() float32 {
	return float32(math.Hypot(float64(p.X), float64(p.Y)))
}

// Dist returns the Euclidean distance between p and p2.
func (p Point) Dist(p2 Point) float32 {
	return p.Sub(p2).Len()
}

func (p Point) String() string {
	return fmt.Sprintf("(%g,%g)", p.X, p.Y)
}

// Centroid returns the arithmetic mean of pts, or the zero
// Point if pts is empty.
func Centroid(pts ...Point) Point {
	if len(pts) == 0 {
		return Point{}
	}
	var sum Point
	for _, p := range pts {
		sum = sum.Add(p)
	}
	return sum.Div(float32(len(pts)))
}

// Span returns the mean distance of pts from their centroid.
// It is the measure pinch gestures scale by.
func Span(pts ...Point) float32 {
	if len(pts) < 2 {
		return 0
	}
	c := Centroid(pts...)
	var d float32
	for _, p := range pts {
		d += p.Dist(c)
	}
	return d / float32(len(pts))
}
