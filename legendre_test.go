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
	"gonum.org/v1/gonum/mat"
)

// Coefficients with only the constant term: mean[k] plus an annual cosine
// term annual[k], for bh, bw, ch, cw
func constSHCoefficients(mean, annual [4]float64) *SHCoefficients {
	c := &SHCoefficients{}
	for k := 0; k < 4; k++ {
		c.Anm[k] = mat.NewDense(shRows, shCols, nil)
		c.Bnm[k] = mat.NewDense(shRows, shCols, nil)
		c.Anm[k].Set(0, 0, mean[k])
		c.Anm[k].Set(0, 1, annual[k])
	}
	return c
}

func TestLegendreVW(t *testing.T) {
	lat, lon := ToRad(36.1), ToRad(-140.3)
	x := math.Cos(lat) * math.Cos(lon)
	y := math.Cos(lat) * math.Sin(lon)
	z := math.Sin(lat)
	v, w := LegendreVW(x, y, z)

	assert.Equal(t, 1.0, v[0][0])
	assert.Equal(t, 0.0, w[0][0])
	assert.InDelta(t, z, v[1][0], 1e-15)
	assert.InDelta(t, x, v[1][1], 1e-15)
	assert.InDelta(t, y, w[1][1], 1e-15)
	assert.InDelta(t, (3*z*z-1)/2, v[2][0], 1e-15)
	assert.InDelta(t, 3*z*x, v[2][1], 1e-15)
	assert.InDelta(t, 3*z*y, w[2][1], 1e-15)
	assert.InDelta(t, 3*(x*x-y*y), v[2][2], 1e-14)
	assert.InDelta(t, 6*x*y, w[2][2], 1e-14)

	// Zonal terms are the Legendre polynomials
	p3 := (5*z*z*z - 3*z) / 2
	assert.InDelta(t, p3, v[3][0], 1e-14)
	assert.Zero(t, w[5][0])
}

func TestMapf(t *testing.T) {
	a, b, c := 0.00121, 0.0029, 0.0627
	assert.InDelta(t, 1.0, mapf(math.Pi/2, a, b, c), 1e-15)

	prev := 1.0
	for _, deg := range []float64{80, 60, 40, 20, 10, 5} {
		m := mapf(ToRad(deg), a, b, c)
		assert.Greater(t, m, prev, "elevation %g", deg)
		prev = m
	}

	// Close to the cosecant above 30 degrees
	el := ToRad(45)
	assert.InDelta(t, 1/math.Sin(el), mapf(el, a, b, c), 5e-3)
}

func TestVMF3MappingFunctions(t *testing.T) {
	coef := constSHCoefficients([4]float64{0.0029, 0.00146, 0.0627, 0.04391}, [4]float64{})
	lat := []float64{ToRad(35), ToRad(-27.2)}
	lon := []float64{ToRad(139), ToRad(151)}
	inc := []float64{ToRad(0), ToRad(38.5)}
	ah := []float64{0.00121, 0.00123}
	aw := []float64{0.00049, 0.00062}

	mf, err := VMF3MappingFunctions(coef, lat, lon, inc, ah, aw, 8)
	require.NoError(t, err)
	require.Len(t, mf.Hydrostatic, 2)
	require.Len(t, mf.Wet, 2)

	assert.InDelta(t, 1.0, mf.Hydrostatic[0], 1e-15)
	assert.InDelta(t, 1.0, mf.Wet[0], 1e-15)

	el := math.Pi/2 - inc[1]
	assert.InDelta(t, mapf(el, ah[1], 0.0029, 0.0627), mf.Hydrostatic[1], 1e-15)
	assert.InDelta(t, mapf(el, aw[1], 0.00146, 0.04391), mf.Wet[1], 1e-15)
}

func TestVMF3MappingFunctionsSeasonal(t *testing.T) {
	coef := constSHCoefficients([4]float64{0.0029, 0.00146, 0.0627, 0.04391}, [4]float64{0.0001, 0, 0, 0})
	inc := ToRad(50)
	doy := 100

	mf, err := VMF3MappingFunctions(coef, []float64{0.5}, []float64{2.0}, []float64{inc}, []float64{0.0012}, []float64{0.0005}, doy)
	require.NoError(t, err)

	bh := 0.0029 + 0.0001*math.Cos(float64(doy)/DaysInYear*2*math.Pi)
	assert.InDelta(t, mapf(math.Pi/2-inc, 0.0012, bh, 0.0627), mf.Hydrostatic[0], 1e-15)
}

func TestVMF3MappingFunctionsShape(t *testing.T) {
	coef := constSHCoefficients([4]float64{}, [4]float64{})
	_, err := VMF3MappingFunctions(coef, []float64{0, 0}, []float64{0}, []float64{0, 0}, []float64{0, 0}, []float64{0, 0}, 1)
	assert.ErrorIs(t, err, ErrInputShape)
}
