// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package atmdelay

import (
	"fmt"
	"math"
)

// VMF3 mapping functions
// D. Landskron, J. Boehm, VMF3/GPT3: refined discrete and empirical troposphere
// mapping functions, J Geod (2018) 92:349-360

// Legendre functions V(n,m) and W(n,m) up to degree and order 12 at the
// unit vector (x, y, z). Only m <= n is filled.
func LegendreVW(x, y, z float64) (v, w [SHDegree + 1][SHDegree + 1]float64) {
	const N = SHDegree
	v[0][0] = 1
	v[1][0] = z * v[0][0]
	for n := 1; n < N; n++ {
		fn := float64(n)
		v[n+1][0] = ((2*fn+1)*z*v[n][0] - fn*v[n-1][0]) / (fn + 1)
	}
	for m := 0; m < N; m++ {
		fm := float64(m)
		v[m+1][m+1] = (2*fm + 1) * (x*v[m][m] - y*w[m][m])
		w[m+1][m+1] = (2*fm + 1) * (x*w[m][m] + y*v[m][m])
		if m < N-1 {
			v[m+2][m+1] = (2*fm + 3) * z * v[m+1][m+1]
			w[m+2][m+1] = (2*fm + 3) * z * w[m+1][m+1]
		}
		for n := m + 2; n < N; n++ {
			fn := float64(n)
			v[n+1][m+1] = ((2*fn+1)*z*v[n][m+1] - (fn+fm+1)*v[n-1][m+1]) / (fn - fm)
			w[n+1][m+1] = ((2*fn+1)*z*w[n][m+1] - (fn+fm+1)*w[n-1][m+1]) / (fn - fm)
		}
	}
	return
}

// Hydrostatic and wet mapping function values, one per target
type MappingFunctions struct {
	Hydrostatic []float64
	Wet         []float64
}

// VMF3 mapping functions at each target
// - lat, lon: target position [rad]
// - incidence: incidence angle at the target [rad]
// - ah, aw: discrete a coefficients interpolated from the grid
// - doy: day of year of the acquisition
func VMF3MappingFunctions(coef *SHCoefficients, lat, lon, incidence, ah, aw []float64, doy int) (MappingFunctions, error) {
	n := len(lat)
	if len(lon) != n || len(incidence) != n || len(ah) != n || len(aw) != n {
		return MappingFunctions{}, fmt.Errorf("lat %d, lon %d, incidence %d, ah %d, aw %d: %w",
			len(lat), len(lon), len(incidence), len(ah), len(aw), ErrInputShape)
	}
	t := float64(doy) / DaysInYear * 2 * math.Pi
	mf := MappingFunctions{
		Hydrostatic: make([]float64, n),
		Wet:         make([]float64, n),
	}
	for i := 0; i < n; i++ {
		// Unit vector from the polar distance
		pd := math.Pi/2 - lat[i]
		x := math.Sin(pd) * math.Cos(lon[i])
		y := math.Sin(pd) * math.Sin(lon[i])
		z := math.Cos(pd)
		v, w := LegendreVW(x, y, z)

		bh := coef.eval(coefBH, &v, &w, t)
		bw := coef.eval(coefBW, &v, &w, t)
		ch := coef.eval(coefCH, &v, &w, t)
		cw := coef.eval(coefCW, &v, &w, t)

		el := math.Pi/2 - incidence[i]
		mf.Hydrostatic[i] = mapf(el, ah[i], bh, ch)
		mf.Wet[i] = mapf(el, aw[i], bw, cw)
	}
	return mf, nil
}

// Marini continued fraction normalized to 1 at zenith
func mapf(el, a, b, c float64) float64 {
	sinel := math.Sin(el)
	return (1.0 + a/(1.0+b/(1.0+c))) / (sinel + (a / (sinel + b/(sinel+c))))
}
