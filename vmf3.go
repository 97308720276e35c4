// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"golang.org/x/exp/slices"
	"gonum.org/v1/gonum/floats"
)

// VMF3 gridded files
// https://vmf.geo.tuwien.ac.at/trop_products/GRID/
//
// ! Version:            1.0
// ! Data_types:         VMF3 (lat lon ah aw zhd zwd)
// ! Epoch:              2019 01 08 00 00  0.0
//  89.5   0.5 0.00116161 0.00055544  2.2790  0.0236

// Columns needed by the delay estimation
var vmf3Required = []string{"lat", "lon", "ah", "aw", "zhd", "zwd"}

// One VMF3 grid file. Lat and Lon in degrees, Lon in (-180, 180].
// Values holds every declared column other than lat and lon.
type VMF3Grid struct {
	Type    string
	Epoch   time.Time // Zero when the header has no epoch
	Columns []string
	Lat     []float64
	Lon     []float64
	Values  map[string][]float64
}

// Declared type and column names from a "Data_types" header line
func parseDataTypes(l string) (string, []string, error) {
	i := strings.Index(l, "Data_types")
	s := l[i+len("Data_types"):]
	s = strings.TrimLeft(s, ": ")
	op := strings.Index(s, "(")
	cl := strings.LastIndex(s, ")")
	if op < 0 || cl < op {
		return "", nil, fmt.Errorf("no column list in %q: %w", l, ErrVMF3Format)
	}
	cols := strings.Fields(s[op+1 : cl])
	if len(cols) == 0 {
		return "", nil, fmt.Errorf("empty column list in %q: %w", l, ErrVMF3Format)
	}
	return strings.TrimSpace(s[:op]), cols, nil
}

// Epoch from an "Epoch:" header line (year month day hour minute second)
func parseVMF3Epoch(l string) (time.Time, error) {
	i := strings.Index(l, "Epoch:")
	f := strings.Fields(l[i+len("Epoch:"):])
	if len(f) < 5 {
		return time.Time{}, fmt.Errorf("epoch %q: %w", l, ErrVMF3Format)
	}
	v := make([]int, 5)
	for k := 0; k < 5; k++ {
		n, err := strconv.Atoi(f[k])
		if err != nil {
			return time.Time{}, fmt.Errorf("epoch %q: %w", l, ErrVMF3Format)
		}
		v[k] = n
	}
	sec := 0.0
	if len(f) > 5 {
		var err error
		if sec, err = strconv.ParseFloat(f[5], 64); err != nil {
			return time.Time{}, fmt.Errorf("epoch %q: %w", l, ErrVMF3Format)
		}
	}
	t := time.Date(v[0], time.Month(v[1]), v[2], v[3], v[4], 0, 0, time.UTC)
	return t.Add(time.Duration(sec * float64(time.Second))), nil
}

// Read a VMF3 grid file
func ReadVMF3(r io.Reader) (*VMF3Grid, error) {
	header := []string{}
	body := []string{}
	s := bufio.NewScanner(r)
	for s.Scan() {
		l := s.Text()
		if strings.Contains(l, "!") {
			header = append(header, l)
		} else if strings.TrimSpace(l) != "" {
			body = append(body, l)
		}
	}
	if err := s.Err(); err != nil {
		return nil, err
	}

	// Header
	g := &VMF3Grid{Values: map[string][]float64{}}
	i := slices.IndexFunc(header, func(l string) bool { return strings.Contains(l, "Data_types") })
	if i < 0 {
		return nil, fmt.Errorf("no Data_types header line: %w", ErrVMF3Format)
	}
	typ, cols, err := parseDataTypes(header[i])
	if err != nil {
		return nil, err
	}
	if typ != VMF3.String() {
		return nil, fmt.Errorf("declared type %q: %w", typ, ErrUnsupportedFormat)
	}
	for _, c := range vmf3Required {
		if !slices.Contains(cols, c) {
			return nil, fmt.Errorf("column %q missing in %v: %w", c, cols, ErrVMF3Format)
		}
	}
	g.Type = typ
	g.Columns = cols
	if i = slices.IndexFunc(header, func(l string) bool { return strings.Contains(l, "Epoch:") }); i >= 0 {
		if g.Epoch, err = parseVMF3Epoch(header[i]); err != nil {
			return nil, err
		}
	}

	// Body
	data := make([][]float64, len(cols))
	for k := range data {
		data[k] = make([]float64, 0, len(body))
	}
	for n, l := range body {
		f := strings.Fields(l)
		if len(f) != len(cols) {
			return nil, fmt.Errorf("data line %d has %d values, want %d: %w", n+1, len(f), len(cols), ErrVMF3Format)
		}
		for k, v := range f {
			x, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, fmt.Errorf("data line %d: %q: %w", n+1, v, ErrVMF3Format)
			}
			data[k] = append(data[k], x)
		}
	}
	for k, c := range cols {
		switch c {
		case "lat":
			g.Lat = data[k]
		case "lon":
			for j := range data[k] {
				data[k][j] = shiftLon(data[k][j])
			}
			g.Lon = data[k]
		default:
			g.Values[c] = data[k]
		}
	}
	return g, nil
}

// Grid nodes inside the box
func (g *VMF3Grid) Filter(box LatLonBox) *VMF3Grid {
	idx := box.Select(g.Lat, g.Lon)
	f := &VMF3Grid{
		Type:    g.Type,
		Epoch:   g.Epoch,
		Columns: g.Columns,
		Lat:     pick(g.Lat, idx),
		Lon:     pick(g.Lon, idx),
		Values:  make(map[string][]float64, len(g.Values)),
	}
	for k, v := range g.Values {
		f.Values[k] = pick(v, idx)
	}
	return f
}

// Same node coordinates as another grid
func (g *VMF3Grid) SameNodes(o *VMF3Grid) bool {
	const tol = 1e-8
	return len(g.Lat) == len(o.Lat) && len(g.Lon) == len(o.Lon) &&
		floats.EqualApprox(g.Lat, o.Lat, tol) && floats.EqualApprox(g.Lon, o.Lon, tol)
}

// ------------------------------------
// Grid point station coordinates
// ------------------------------------

// Station grid coordinates of the VMF3 GRID model
// https://vmf.geo.tuwien.ac.at/station_coord_files/
type GridStations struct {
	Lat               []float64 // [deg]
	Lon               []float64 // [deg], (-180, 180]
	EllipsoidalHeight []float64 // [m]
	OrthometricHeight []float64 // [m]
}

// Name of the station coordinates file of a grid resolution
func GridStationsFilename(res GridResolution) (string, error) {
	if !res.Valid() || res == Medium {
		return "", fmt.Errorf("%s: %w", res, ErrUnsupportedGridResolution)
	}
	return "gridpoint_coord_" + res.Code() + ".txt", nil
}

// Read a station coordinates file: point lat lon ellipsoidal_height orthometric_height
func ReadGridStations(r io.Reader) (*GridStations, error) {
	g := &GridStations{}
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		n++
		l := s.Text()
		if i := strings.Index(l, "%"); i >= 0 {
			l = l[:i]
		}
		f := strings.Fields(l)
		if len(f) == 0 {
			continue
		}
		if len(f) != 5 {
			return nil, fmt.Errorf("line %d has %d values, want 5: %w", n, len(f), ErrGridStations)
		}
		v := [4]float64{}
		for k := 0; k < 4; k++ {
			x, err := strconv.ParseFloat(f[k+1], 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: %q: %w", n, f[k+1], ErrGridStations)
			}
			v[k] = x
		}
		g.Lat = append(g.Lat, v[0])
		g.Lon = append(g.Lon, shiftLon(v[1]))
		g.EllipsoidalHeight = append(g.EllipsoidalHeight, v[2])
		g.OrthometricHeight = append(g.OrthometricHeight, v[3])
	}
	if err := s.Err(); err != nil {
		return nil, err
	}
	if len(g.Lat) == 0 {
		return nil, fmt.Errorf("no station: %w", ErrGridStations)
	}
	return g, nil
}

// Stations inside the box
func (g *GridStations) Filter(box LatLonBox) *GridStations {
	idx := box.Select(g.Lat, g.Lon)
	return &GridStations{
		Lat:               pick(g.Lat, idx),
		Lon:               pick(g.Lon, idx),
		EllipsoidalHeight: pick(g.EllipsoidalHeight, idx),
		OrthometricHeight: pick(g.OrthometricHeight, idx),
	}
}

func pick(v []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, k := range idx {
		out[i] = v[k]
	}
	return out
}
