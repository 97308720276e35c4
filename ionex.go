// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.15
//

package atmdelay

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// IONEX 1.0 specification
// https://files.igs.org/pub/data/format/ionex1.pdf
//

// Labels searched in the IONEX file
const (
	lblStartTEC   = "START OF TEC MAP"
	lblEndTEC     = "END OF TEC MAP"
	lblEpoch      = "EPOCH OF CURRENT MAP"
	lblLatRow     = "LAT/LON1/LON2/DLON/H"
	lblHeight     = "HGT1"
	lblBaseRadius = "BASE RADIUS"
	lblExponent   = "EXPONENT"
)

// Fixed global TEC grid [deg]
const (
	ionexLat1, ionexLat2 = -87.5, 87.5
	ionexLon1, ionexLon2 = -180.0, 180.0
	ionexNLat, ionexNLon = 71, 73
)

// One vertical TEC map
type TECMap struct {
	Epoch time.Time
	TEC   *mat.Dense // TECU, rows: latitude (ascending), cols: longitude (ascending)
}

// Content of an IONEX file. Header values missing from the file are replaced
// by defaults and reported in Warnings.
type IonexData struct {
	Maps             []TECMap
	LatAxis          []float64 // [deg], increasing
	LonAxis          []float64 // [deg], increasing
	Exponent         float64
	EarthRadius      float64 // [m]
	IonosphereHeight float64 // [m]
	Warnings         []string
}

// Epochs of all maps
func (p *IonexData) Epochs() []time.Time {
	ts := make([]time.Time, len(p.Maps))
	for i, m := range p.Maps {
		ts[i] = m.Epoch
	}
	return ts
}

// Grid of the i-th map
func (p *IonexData) Grid(i int) *Grid2D {
	return &Grid2D{Lat: p.LatAxis, Lon: p.LonAxis, Values: p.Maps[i].TEC}
}

var digitsRe = regexp.MustCompile(`[0-9]+`)

// Read date and time from "EPOCH OF CURRENT MAP" line
func parseEpochLine(l string) (time.Time, error) {
	d := digitsRe.FindAllString(l, 5)
	if len(d) < 5 {
		return time.Time{}, fmt.Errorf("not enough fields in epoch line: %q: %w", l, ErrTECMapReading)
	}
	v := make([]int, 5)
	for i, s := range d {
		n, err := strconv.Atoi(s)
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch line %q: %w", l, ErrTECMapReading)
		}
		v[i] = n
	}
	return time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], 0, 0, time.UTC), nil
}

// First field of the first line containing label
func headerValue(lines []string, label string) (float64, error) {
	i := slices.IndexFunc(lines, func(l string) bool { return strings.Contains(l, label) })
	if i < 0 {
		return 0, fmt.Errorf("%q not found", label)
	}
	f := strings.Fields(lines[i])
	if len(f) == 0 {
		return 0, fmt.Errorf("%q has no value", label)
	}
	return strconv.ParseFloat(f[0], 64)
}

// Indices of lines containing label
func labelIndices(lines []string, label string) []int {
	ids := []int{}
	for i, l := range lines {
		if strings.Contains(l, label) {
			ids = append(ids, i)
		}
	}
	return ids
}

// Read IONEX TEC maps
func ReadIonex(r io.Reader) (*IonexData, error) {

	// Read all lines
	lines := []string{}
	s := bufio.NewScanner(r)
	s.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for s.Scan() {
		lines = append(lines, s.Text())
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	data := &IonexData{
		LatAxis: floats.Span(make([]float64, ionexNLat), ionexLat1, ionexLat2),
		LonAxis: floats.Span(make([]float64, ionexNLon), ionexLon1, ionexLon2),
	}

	// Header values, defaults when not available
	if v, err := headerValue(lines, lblHeight); err == nil {
		data.IonosphereHeight = v * 1000
	} else {
		data.IonosphereHeight = DefaultIonosphereHeight
		data.Warnings = append(data.Warnings, fmt.Sprintf("cannot read ionospheric height (%v), using default value %.1f [m]", err, DefaultIonosphereHeight))
	}
	if v, err := headerValue(lines, lblBaseRadius); err == nil {
		data.EarthRadius = v * 1000
	} else {
		data.EarthRadius = DefaultEarthRadius
		data.Warnings = append(data.Warnings, fmt.Sprintf("cannot read earth radius (%v), using default value %.1f [m]", err, DefaultEarthRadius))
	}
	if v, err := headerValue(lines, lblExponent); err == nil {
		data.Exponent = v
	} else {
		data.Exponent = DefaultTECExponent
		data.Warnings = append(data.Warnings, fmt.Sprintf("cannot read TEC exponent (%v), using default value %.0f", err, DefaultTECExponent))
	}

	// Isolate each TEC map section
	starts := labelIndices(lines, lblStartTEC)
	ends := labelIndices(lines, lblEndTEC)
	if len(starts) != len(ends) {
		return nil, fmt.Errorf("%d START and %d END markers: %w", len(starts), len(ends), ErrTECMapReading)
	}
	scale := math.Pow(10, data.Exponent)
	for i := range starts {
		if ends[i] <= starts[i] || (i > 0 && starts[i] <= ends[i-1]) {
			return nil, fmt.Errorf("TEC map %d is not closed before the next one: %w", i+1, ErrTECMapReading)
		}
		m, err := readTECSection(lines[starts[i]+1:ends[i]], scale)
		if err != nil {
			return nil, fmt.Errorf("TEC map %d: %w", i+1, err)
		}
		if i > 0 && !m.Epoch.After(data.Maps[i-1].Epoch) {
			return nil, fmt.Errorf("TEC map %d epoch %s is not after the previous one: %w", i+1, m.Epoch, ErrTECMapReading)
		}
		data.Maps = append(data.Maps, m)
	}
	return data, nil
}

// Read one TEC map section (lines between START and END markers)
func readTECSection(section []string, scale float64) (TECMap, error) {
	var m TECMap

	// Epoch of the map
	ie := slices.IndexFunc(section, func(l string) bool { return strings.Contains(l, lblEpoch) })
	if ie < 0 {
		return m, fmt.Errorf("no %q line: %w", lblEpoch, ErrTECMapReading)
	}
	t, err := parseEpochLine(section[ie])
	if err != nil {
		return m, err
	}
	m.Epoch = t
	body := slices.Delete(slices.Clone(section), ie, ie+1)

	// Latitude rows, from LAT1 (north) to LAT2 (south) in the file
	ids := labelIndices(body, lblLatRow)
	if len(ids) != ionexNLat {
		return m, fmt.Errorf("%d latitude rows, want %d: %w", len(ids), ionexNLat, ErrTECMapReading)
	}
	ids = append(ids, len(body))
	vals := make([]float64, ionexNLat*ionexNLon)
	for k := 0; k < ionexNLat; k++ {
		row := make([]float64, 0, ionexNLon)
		for _, l := range body[ids[k]+1 : ids[k+1]] {
			for _, f := range strings.Fields(l) {
				v, err := strconv.ParseFloat(f, 64)
				if err != nil {
					return m, fmt.Errorf("row %d: %q: %w", k+1, f, ErrTECMapReading)
				}
				row = append(row, v*scale)
			}
		}
		if len(row) != ionexNLon {
			return m, fmt.Errorf("row %d has %d values, want %d: %w", k+1, len(row), ionexNLon, ErrTECMapReading)
		}
		// Reverse the row order so that latitude increases
		copy(vals[(ionexNLat-1-k)*ionexNLon:], row)
	}
	m.TEC = mat.NewDense(ionexNLat, ionexNLon, vals)
	return m, nil
}
