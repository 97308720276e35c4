// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Nodes of a regular grid, x fastest
func gridNodes(x0, x1, y0, y1, step float64) (xs, ys []float64) {
	for y := y0; y <= y1+1e-9; y += step {
		for x := x0; x <= x1+1e-9; x += step {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	return
}

func field(xs, ys []float64, f func(x, y float64) float64) []float64 {
	v := make([]float64, len(xs))
	for i := range xs {
		v[i] = f(xs[i], ys[i])
	}
	return v
}

func TestScatteredLinear(t *testing.T) {
	xs, ys := gridNodes(0, 10, 30, 40, 1)
	f := func(x, y float64) float64 { return 3*x - 2*y + 7 }
	v := field(xs, ys, f)

	p, err := NewScatteredInterpolator(Linear, xs, ys)
	require.NoError(t, err)
	for _, q := range [][2]float64{{0, 30}, {10, 40}, {4.2, 33.7}, {9.99, 30.01}, {5, 35}} {
		assert.InDelta(t, f(q[0], q[1]), p.Interpolate(v, q[0], q[1]), 1e-9, "%v", q)

		s := p.Stencil(q[0], q[1])
		assert.Len(t, s.Index, 3)
		sum := 0.0
		for _, w := range s.Weight {
			assert.GreaterOrEqual(t, w, -1e-12)
			sum += w
		}
		assert.InDelta(t, 1, sum, 1e-12)
	}
	assert.True(t, math.IsNaN(p.Interpolate(v, 10.5, 35)))
	assert.True(t, math.IsNaN(p.Interpolate(v, 5, 29)))
}

func TestScatteredLinearIrregular(t *testing.T) {
	xs := []float64{0, 4, 1, 3.5, 2, 0.5, 3}
	ys := []float64{0, 0.2, 3, 3.8, 1.5, 1.8, 2.1}
	f := func(x, y float64) float64 { return -x + 0.5*y }
	v := field(xs, ys, f)

	p, err := NewScatteredInterpolator(Linear, xs, ys)
	require.NoError(t, err)
	for _, q := range [][2]float64{{2, 1}, {1.5, 2.5}, {3, 1}, {2, 0.5}} {
		assert.InDelta(t, f(q[0], q[1]), p.Interpolate(v, q[0], q[1]), 1e-9, "%v", q)
	}
}

func TestScatteredNearest(t *testing.T) {
	xs, ys := gridNodes(0, 4, 0, 4, 1)
	v := field(xs, ys, func(x, y float64) float64 { return 10*y + x })

	p, err := NewScatteredInterpolator(Nearest, xs, ys)
	require.NoError(t, err)
	assert.Equal(t, 23.0, p.Interpolate(v, 3.2, 1.9))
	assert.Equal(t, 0.0, p.Interpolate(v, -0.3, 0.1))

	// No hull restriction
	assert.Equal(t, 44.0, p.Interpolate(v, 10, 10))
}

func smoothField(x, y float64) float64 { return 2.3 * math.Sin(x/2) * math.Cos(y/3) }

func TestScatteredCubicNodes(t *testing.T) {
	xs, ys := gridNodes(0, 20, 30, 50, 1)
	v := field(xs, ys, smoothField)

	p, err := NewScatteredInterpolator(Cubic, xs, ys)
	require.NoError(t, err)
	for i := range xs {
		assert.InDelta(t, v[i], p.Interpolate(v, xs[i], ys[i]), 1e-9, "node (%g, %g)", xs[i], ys[i])
	}
}

func TestScatteredCubicContinuity(t *testing.T) {
	xs, ys := gridNodes(0, 20, 30, 50, 1)
	v := field(xs, ys, smoothField)

	p, err := NewScatteredInterpolator(Cubic, xs, ys)
	require.NoError(t, err)

	// The steps cross vertical, horizontal and diagonal triangle edges
	const step = 1e-4
	maxJump := func(x0, y0, dx, dy float64, n int) float64 {
		jump := 0.0
		prev := p.Interpolate(v, x0, y0)
		for i := 1; i <= n; i++ {
			cur := p.Interpolate(v, x0+float64(i)*dx, y0+float64(i)*dy)
			require.False(t, math.IsNaN(cur))
			jump = math.Max(jump, math.Abs(cur-prev))
			prev = cur
		}
		return jump
	}
	assert.Less(t, maxJump(13.5, 40.3, step, 0, 20000), 4e-4)
	assert.Less(t, maxJump(7.7, 35.5, 0, step, 20000), 4e-4)
}

func TestScatteredCubicAccuracy(t *testing.T) {
	xs, ys := gridNodes(0, 20, 30, 50, 1)
	v := field(xs, ys, smoothField)

	cub, err := NewScatteredInterpolator(Cubic, xs, ys)
	require.NoError(t, err)
	lin, err := NewScatteredInterpolator(Linear, xs, ys)
	require.NoError(t, err)

	errCub, errLin := 0.0, 0.0
	for x := 2.13; x < 18; x += 0.71 {
		for y := 32.07; y < 48; y += 0.53 {
			f := smoothField(x, y)
			errCub = math.Max(errCub, math.Abs(cub.Interpolate(v, x, y)-f))
			errLin = math.Max(errLin, math.Abs(lin.Interpolate(v, x, y)-f))
		}
	}
	assert.Less(t, errCub, 0.03)
	assert.Less(t, errCub, errLin)
	assert.True(t, math.IsNaN(cub.Interpolate(v, -1, 35)))
}

func TestScatteredCubicLinearField(t *testing.T) {
	xs := []float64{0, 4, 1, 3.5, 2, 0.5, 3, 4.2, 1.1}
	ys := []float64{0, 0.2, 3, 3.8, 1.5, 1.8, 2.1, 2.6, 0.4}
	f := func(x, y float64) float64 { return 3*x - 2*y + 7 }
	v := field(xs, ys, f)

	p, err := NewScatteredInterpolator(Cubic, xs, ys)
	require.NoError(t, err)
	for _, q := range [][2]float64{{2, 1}, {1.5, 2.5}, {3, 1}, {2, 0.5}, {3.9, 2.4}} {
		assert.InDelta(t, f(q[0], q[1]), p.Interpolate(v, q[0], q[1]), 1e-9, "%v", q)

		sum := 0.0
		for _, w := range p.Stencil(q[0], q[1]).Weight {
			sum += w
		}
		assert.InDelta(t, 1, sum, 1e-9)
	}
}

func TestScatteredCubicTwoTriangles(t *testing.T) {
	xs := []float64{0, 1, 0, 1}
	ys := []float64{0, 0, 1, 1}
	f := func(x, y float64) float64 { return x + 2*y }
	v := field(xs, ys, f)

	p, err := NewScatteredInterpolator(Cubic, xs, ys)
	require.NoError(t, err)
	assert.InDelta(t, f(0.25, 0.5), p.Interpolate(v, 0.25, 0.5), 1e-9)
	assert.InDelta(t, f(0.9, 0.2), p.Interpolate(v, 0.9, 0.2), 1e-9)
}

func TestScatteredErrors(t *testing.T) {
	_, err := NewScatteredInterpolator(Linear, []float64{0, 1}, []float64{0})
	assert.ErrorIs(t, err, ErrInputShape)
	_, err = NewScatteredInterpolator(Linear, nil, nil)
	assert.ErrorIs(t, err, ErrOutOfGrid)
	_, err = NewScatteredInterpolator(Linear, []float64{0, 1}, []float64{0, 1})
	assert.ErrorIs(t, err, ErrOutOfGrid)
	_, err = NewScatteredInterpolator(Linear, []float64{0, 1, 2}, []float64{0, 1, 2})
	assert.ErrorIs(t, err, ErrOutOfGrid)
	_, err = NewScatteredInterpolator(InterpMethod(5), []float64{0, 1, 0}, []float64{0, 0, 1})
	assert.ErrorIs(t, err, ErrInvalidOption)

	// Nearest needs no triangulation
	_, err = NewScatteredInterpolator(Nearest, []float64{0, 1}, []float64{0, 1})
	assert.NoError(t, err)

	assert.True(t, math.IsNaN(Stencil{}.Apply([]float64{1})))
}
