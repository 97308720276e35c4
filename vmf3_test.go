// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// VMF3 grid text on a 1 degree grid, lat 25..55 and lon 355..359, 0..25,
// with constant fields
func vmf3Text(epoch time.Time, ah, aw, zhd, zwd float64) string {
	var b strings.Builder
	b.WriteString("! Version:            1.0\n")
	b.WriteString("! Source:             test\n")
	b.WriteString("! Data_types:         VMF3 (lat lon ah aw zhd zwd)\n")
	fmt.Fprintf(&b, "! Epoch:              %s  0.0\n", epoch.Format("2006 01 02 15 04"))
	b.WriteString("! Scale_factor:       1.e+00\n")
	for lat := 55; lat >= 25; lat-- {
		for _, lon := range vmf3Lons() {
			fmt.Fprintf(&b, "%5.1f %5.1f %10.8f %10.8f %7.4f %7.4f\n", float64(lat), float64(lon), ah, aw, zhd, zwd)
		}
	}
	return b.String()
}

func vmf3Lons() []int {
	lons := []int{}
	for lon := 0; lon <= 25; lon++ {
		lons = append(lons, lon)
	}
	for lon := 355; lon <= 359; lon++ {
		lons = append(lons, lon)
	}
	return lons
}

func TestReadVMF3(t *testing.T) {
	epoch := time.Date(2019, 1, 8, 6, 0, 0, 0, time.UTC)
	g, err := ReadVMF3(strings.NewReader(vmf3Text(epoch, 0.00121, 0.00049, 2.3, 0.1)))
	require.NoError(t, err)

	assert.Equal(t, "VMF3", g.Type)
	assert.Equal(t, []string{"lat", "lon", "ah", "aw", "zhd", "zwd"}, g.Columns)
	assert.True(t, epoch.Equal(g.Epoch))
	assert.Len(t, g.Lat, 31*31)
	assert.Len(t, g.Lon, 31*31)
	assert.Len(t, g.Values, 4)
	assert.Equal(t, 55.0, g.Lat[0])
	assert.Equal(t, -5.0, g.Lon[26])
	assert.Equal(t, 2.3, g.Values["zhd"][100])
	assert.Equal(t, 0.00049, g.Values["aw"][5])
}

func TestReadVMF3ExtraColumns(t *testing.T) {
	txt := "! Data_types: VMF3 (lat lon ah aw zhd zwd gh)\n" +
		"! comment\n" +
		"\n" +
		" 89.5  0.5 0.00116161 0.00055544  2.2790  0.0236 0.1\n" +
		" 89.5 180.5 0.00116161 0.00055544  2.2791  0.0237 0.2\n"
	g, err := ReadVMF3(strings.NewReader(txt))
	require.NoError(t, err)
	assert.True(t, g.Epoch.IsZero())
	assert.Equal(t, []float64{0.5, -179.5}, g.Lon)
	assert.Equal(t, []float64{0.1, 0.2}, g.Values["gh"])
}

func TestReadVMF3Errors(t *testing.T) {
	row := " 89.5  0.5 0.00116161 0.00055544  2.2790  0.0236\n"
	tests := []struct {
		name string
		txt  string
		want error
	}{
		{"no data types", "! Version: 1.0\n" + row, ErrVMF3Format},
		{"no column list", "! Data_types: VMF3\n" + row, ErrVMF3Format},
		{"other type", "! Data_types: VMF1 (lat lon ah aw zhd zwd)\n" + row, ErrUnsupportedFormat},
		{"missing column", "! Data_types: VMF3 (lat lon ah aw zhd)\n" + row, ErrVMF3Format},
		{"short row", "! Data_types: VMF3 (lat lon ah aw zhd zwd)\n" + " 89.5  0.5 0.00116161\n", ErrVMF3Format},
		{"not a value", "! Data_types: VMF3 (lat lon ah aw zhd zwd)\n" + strings.Replace(row, "2.2790", "2.27x0", 1), ErrVMF3Format},
		{"bad epoch", "! Data_types: VMF3 (lat lon ah aw zhd zwd)\n! Epoch: 2019 01\n" + row, ErrVMF3Format},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadVMF3(strings.NewReader(tt.txt))
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestParseVMF3Epoch(t *testing.T) {
	tm, err := parseVMF3Epoch("! Epoch:              2019 01 08 18 00  30.5")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2019, 1, 8, 18, 0, 30, 500000000, time.UTC), tm)

	tm, err = parseVMF3Epoch("! Epoch: 2019 01 08 18 00")
	require.NoError(t, err)
	assert.Equal(t, 18, tm.Hour())
}

func TestVMF3Filter(t *testing.T) {
	g, err := ReadVMF3(strings.NewReader(vmf3Text(time.Time{}, 0.00121, 0.00049, 2.3, 0.1)))
	require.NoError(t, err)

	box := TargetBox([]float64{40}, []float64{10}, FilterMarginDeg)
	f := g.Filter(box)
	assert.Len(t, f.Lat, 19*19)
	for i := range f.Lat {
		assert.True(t, box.Contains(f.Lat[i], f.Lon[i]))
	}
	assert.Len(t, f.Values["zwd"], 19*19)
	assert.True(t, f.SameNodes(g.Filter(box)))

	// Negative longitudes kept after the shift
	f = g.Filter(LatLonBox{LatMin: 39.5, LatMax: 40.5, LonMin: -10, LonMax: 0.5})
	assert.Equal(t, []float64{0, -5, -4, -3, -2, -1}, f.Lon)

	other := g.Filter(LatLonBox{LatMin: 39.5, LatMax: 40.5, LonMin: -10, LonMax: 1.5})
	assert.False(t, f.SameNodes(other))
}

const gridStationsText = `% Grid point coordinates
%  point   lat     lon    h_ell   h_orth
   1    40.0    10.0    152.3   104.1
   2    40.0   350.0     10.0     0.0   % ocean
   3   -10.5   120.0   1500.0  1480.0
`

func TestReadGridStations(t *testing.T) {
	g, err := ReadGridStations(strings.NewReader(gridStationsText))
	require.NoError(t, err)
	assert.Equal(t, []float64{40, 40, -10.5}, g.Lat)
	assert.Equal(t, []float64{10, -10, 120}, g.Lon)
	assert.Equal(t, []float64{152.3, 10, 1500}, g.EllipsoidalHeight)
	assert.Equal(t, []float64{104.1, 0, 1480}, g.OrthometricHeight)

	f := g.Filter(LatLonBox{LatMin: 30, LatMax: 50, LonMin: -20, LonMax: 0})
	assert.Equal(t, []float64{10}, f.EllipsoidalHeight)
}

func TestReadGridStationsErrors(t *testing.T) {
	_, err := ReadGridStations(strings.NewReader("% nothing\n"))
	assert.ErrorIs(t, err, ErrGridStations)
	_, err = ReadGridStations(strings.NewReader("1 40.0 10.0 152.3\n"))
	assert.ErrorIs(t, err, ErrGridStations)
	_, err = ReadGridStations(strings.NewReader("1 40.0 10.0 x 104.1\n"))
	assert.ErrorIs(t, err, ErrGridStations)
}

func TestGridStationsFilename(t *testing.T) {
	fn, err := GridStationsFilename(Fine)
	require.NoError(t, err)
	assert.Equal(t, "gridpoint_coord_1x1.txt", fn)
	fn, err = GridStationsFilename(Coarse)
	require.NoError(t, err)
	assert.Equal(t, "gridpoint_coord_5x5.txt", fn)

	_, err = GridStationsFilename(Medium)
	assert.ErrorIs(t, err, ErrUnsupportedGridResolution)
	_, err = GridStationsFilename(GridResolution(8))
	assert.ErrorIs(t, err, ErrUnsupportedGridResolution)
	_, err = GridStationsFilename(GridResolution(-1))
	assert.ErrorIs(t, err, ErrUnsupportedGridResolution)
}

func TestEnumValid(t *testing.T) {
	assert.True(t, Final.Valid())
	assert.True(t, Rapid.Valid())
	assert.False(t, SolutionType(2).Valid())
	assert.True(t, TwoHours.Valid())
	assert.False(t, TimeResolution(-1).Valid())
	assert.True(t, Coarse.Valid())
	assert.False(t, GridResolution(3).Valid())
	assert.True(t, IPP.Valid())
	assert.False(t, MappingMethod(3).Valid())
	assert.True(t, Nearest.Valid())
	assert.False(t, InterpMethod(3).Valid())
}
