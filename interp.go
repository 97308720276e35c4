// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.17
//

package atmdelay

import (
	"fmt"
	"math"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/interp"
	"gonum.org/v1/gonum/mat"
)

// ------------------------------------
// Regular grids
// ------------------------------------

// Values on a regular lat/lon grid. Axes in degrees, strictly increasing.
// Values has one row per latitude and one column per longitude.
type Grid2D struct {
	Lat    []float64
	Lon    []float64
	Values *mat.Dense
}

// Segment [i, i+1] of an increasing axis containing x, and the fraction of x in it
func segment(axis []float64, x float64) (int, float64, bool) {
	n := len(axis)
	if n < 2 || math.IsNaN(x) || x < axis[0] || x > axis[n-1] {
		return 0, 0, false
	}
	i, _ := slices.BinarySearch(axis, x)
	if i > 0 {
		i--
	}
	if i > n-2 {
		i = n - 2
	}
	return i, (x - axis[i]) / (axis[i+1] - axis[i]), true
}

// Bilinear interpolation at (lat, lon) [deg]
func (g *Grid2D) Bilinear(lat, lon float64) (float64, error) {
	i, u, ok := segment(g.Lat, lat)
	if !ok {
		return 0, fmt.Errorf("latitude %.6f not in [%.1f, %.1f]: %w", lat, g.Lat[0], g.Lat[len(g.Lat)-1], ErrOutOfGrid)
	}
	j, s, ok := segment(g.Lon, lon)
	if !ok {
		return 0, fmt.Errorf("longitude %.6f not in [%.1f, %.1f]: %w", lon, g.Lon[0], g.Lon[len(g.Lon)-1], ErrOutOfGrid)
	}
	v00 := g.Values.At(i, j)
	v01 := g.Values.At(i, j+1)
	v10 := g.Values.At(i+1, j)
	v11 := g.Values.At(i+1, j+1)
	return (1-u)*(1-s)*v00 + (1-u)*s*v01 + u*(1-s)*v10 + u*s*v11, nil
}

// ------------------------------------
// Time axis
// ------------------------------------

// Index i of the epochs[i], epochs[i+1] pair bracketing t: the nearest epoch,
// moved back by one if it is later than t.
func BracketTwo(epochs []time.Time, t time.Time) (int, error) {
	n := len(epochs)
	if n < 2 || t.Before(epochs[0]) || t.After(epochs[n-1]) {
		return 0, fmt.Errorf("%s: %w", t.Format(time.RFC3339Nano), ErrNotBracketed)
	}
	best := 0
	for i := range epochs {
		if absDuration(epochs[i].Sub(t)) < absDuration(epochs[best].Sub(t)) {
			best = i
		}
	}
	if epochs[best].After(t) {
		best--
	}
	if best > n-2 {
		best = n - 2
	}
	return best, nil
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}

// Linear interpolation between two epochs. dt0 and dt1 are the offsets of
// the epochs from the interpolation time (dt0 <= 0 <= dt1), in any unit.
func InterpTime(dt0, dt1, v0, v1 float64) float64 {
	dt := dt1 - dt0
	return math.Abs(dt1)/dt*v0 + math.Abs(dt0)/dt*v1
}

// 1-D interpolation at x
// - Linear: piecewise linear
// - Nearest: nearest sample, ties to the lower one
// - Cubic: not-a-knot cubic spline (natural spline for 3 samples, linear for 2)
func Interp1D(method InterpMethod, xs, ys []float64, x float64) (float64, error) {
	n := len(xs)
	if len(ys) != n {
		return 0, fmt.Errorf("%d abscissae, %d values: %w", n, len(ys), ErrInputShape)
	}
	if n < 2 || !strictlyIncreasing(xs) {
		return 0, fmt.Errorf("abscissae must be at least 2 and strictly increasing: %w", ErrInvalidOption)
	}
	if math.IsNaN(x) || x < xs[0] || x > xs[n-1] {
		return 0, fmt.Errorf("%g not in [%g, %g]: %w", x, xs[0], xs[n-1], ErrNotBracketed)
	}

	var p interp.FittablePredictor
	switch {
	case method == Nearest:
		i, u, _ := segment(xs, x)
		if u <= 0.5 {
			return ys[i], nil
		}
		return ys[i+1], nil
	case method == Linear || n == 2:
		p = &interp.PiecewiseLinear{}
	case method == Cubic && n == 3:
		p = &interp.NaturalCubic{}
	case method == Cubic:
		p = &interp.NotAKnotCubic{}
	default:
		return 0, fmt.Errorf("interpolation method %d: %w", method, ErrInvalidOption)
	}
	if err := p.Fit(xs, ys); err != nil {
		return 0, err
	}
	return p.Predict(x), nil
}

func strictlyIncreasing(xs []float64) bool {
	for i := 1; i < len(xs); i++ {
		if !(xs[i] > xs[i-1]) {
			return false
		}
	}
	return true
}

// ------------------------------------
// Area of interest
// ------------------------------------

// Lat/lon box [deg], bounds excluded
type LatLonBox struct {
	LatMin, LatMax float64
	LonMin, LonMax float64
}

// Box around the targets, enlarged by margin degrees on each side
func TargetBox(lat, lon []float64, margin float64) LatLonBox {
	return LatLonBox{
		LatMin: floats.Min(lat) - margin,
		LatMax: floats.Max(lat) + margin,
		LonMin: floats.Min(lon) - margin,
		LonMax: floats.Max(lon) + margin,
	}
}

func (b LatLonBox) Contains(lat, lon float64) bool {
	return lat > b.LatMin && lat < b.LatMax && lon > b.LonMin && lon < b.LonMax
}

// Indices of the points inside the box
func (b LatLonBox) Select(lat, lon []float64) []int {
	idx := []int{}
	for i := range lat {
		if b.Contains(lat[i], lon[i]) {
			idx = append(idx, i)
		}
	}
	return idx
}
