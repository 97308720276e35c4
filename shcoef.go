// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.16
//

package atmdelay

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/mat"
)

// Empirical VMF3 coefficients b and c, hydrostatic and wet
const (
	coefBH = iota
	coefBW
	coefCH
	coefCW
)

var shCoefNames = [4]string{"bh", "bw", "ch", "cw"}

const (
	shRows = (SHDegree + 1) * (SHDegree + 2) / 2 // Rows of a coefficient table (n*(n+1)/2 + m)
	shCols = 5                                   // mean, annual cos/sin, semiannual cos/sin
)

// Spherical harmonics expansion of the VMF3 b and c coefficients
// (degree and order 12, from ray-tracing on a 5x5 grid, 2001-2010).
// Anm and Bnm are indexed by coefBH, coefBW, coefCH and coefCW.
type SHCoefficients struct {
	Anm [4]*mat.Dense
	Bnm [4]*mat.Dense
}

// File names of the eight tables, without directory
func SHCoefficientFiles() []string {
	files := make([]string, 0, 8)
	for _, p := range []string{"anm", "bnm"} {
		for _, n := range shCoefNames {
			files = append(files, p+"_"+n+".txt")
		}
	}
	return files
}

// Read the eight coefficient tables from dir in fsys
func ReadSHCoefficients(fsys fs.FS, dir string) (*SHCoefficients, error) {
	c := &SHCoefficients{}
	for i, name := range SHCoefficientFiles() {
		p := path.Join(dir, name)
		f, err := fsys.Open(p)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, &FileError{Path: p, Err: ErrMapFileNotFound}
			}
			return nil, &FileError{Path: p, Err: err}
		}
		m, err := readSHTable(f)
		f.Close()
		if err != nil {
			return nil, &FileError{Path: p, Err: err}
		}
		if i < 4 {
			c.Anm[i] = m
		} else {
			c.Bnm[i-4] = m
		}
	}
	return c, nil
}

func readSHTable(r io.Reader) (*mat.Dense, error) {
	vals := make([]float64, 0, shRows*shCols)
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		f := strings.Fields(s.Text())
		if len(f) == 0 {
			continue
		}
		n++
		if n > shRows {
			return nil, fmt.Errorf("more than %d rows: %w", shRows, ErrSHCoefficients)
		}
		if len(f) != shCols {
			return nil, fmt.Errorf("row %d has %d values, want %d: %w", n, len(f), shCols, ErrSHCoefficients)
		}
		for _, v := range f {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("row %d: %q: %w", n, v, ErrSHCoefficients)
			}
			vals = append(vals, x)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if n != shRows {
		return nil, fmt.Errorf("%d rows, want %d: %w", n, shRows, ErrSHCoefficients)
	}
	return mat.NewDense(shRows, shCols, vals), nil
}

// Coefficient k (coefBH...) at a point, with seasonal terms for the
// day-of-year angle t [rad]
func (c *SHCoefficients) eval(k int, v, w *[SHDegree + 1][SHDegree + 1]float64, t float64) float64 {
	var sum [shCols]float64
	for n := 0; n <= SHDegree; n++ {
		cum := n * (n + 1) / 2
		for m := 0; m <= n; m++ {
			for j := 0; j < shCols; j++ {
				sum[j] += c.Anm[k].At(cum+m, j)*v[n][m] + c.Bnm[k].At(cum+m, j)*w[n][m]
			}
		}
	}
	return sum[0] + sum[1]*math.Cos(t) + sum[2]*math.Sin(t) + sum[3]*math.Cos(2*t) + sum[4]*math.Sin(2*t)
}
