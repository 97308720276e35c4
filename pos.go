// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.14
//

package atmdelay

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

//-------------------------------------------------------------------
// PosLLH
//-------------------------------------------------------------------

// Geodetic position on WGS84. Lat/Lon in radians, Hei in meters
type PosLLH struct {
	Lat float64
	Lon float64
	Hei float64
}

func (llh *PosLLH) ToXYZ() PosXYZ {
	// Ellipsoid parameters
	f := Fe                     // Flattening
	a := Re                     // Semi-major axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	// Conversion to Cartesian coordinates
	n := a / math.Sqrt(1-e*e*math.Sin(llh.Lat)*math.Sin(llh.Lat))
	return PosXYZ{
		X: (n + llh.Hei) * math.Cos(llh.Lat) * math.Cos(llh.Lon),
		Y: (n + llh.Hei) * math.Cos(llh.Lat) * math.Sin(llh.Lon),
		Z: (n*(1-e*e) + llh.Hei) * math.Sin(llh.Lat),
	}
}

// Convert to string (degrees)
func (llh *PosLLH) String() string {
	return fmt.Sprintf("%.8f %.8f %.4f", ToDeg(llh.Lat), ToDeg(llh.Lon), llh.Hei)
}

//-------------------------------------------------------------------
// PosXYZ
//-------------------------------------------------------------------

// Earth-centered, earth-fixed position [m]
type PosXYZ struct {
	X float64
	Y float64
	Z float64
}

func xyzOf(v r3.Vec) PosXYZ {
	return PosXYZ{X: v.X, Y: v.Y, Z: v.Z}
}

func (pos PosXYZ) Vec() r3.Vec {
	return r3.Vec{X: pos.X, Y: pos.Y, Z: pos.Z}
}

func (pos *PosXYZ) ToLLH() PosLLH {
	// In case of origin
	if pos.X == 0 && pos.Y == 0 && pos.Z == 0 {
		return PosLLH{Lat: 0, Lon: 0, Hei: -Re}
	}

	// Ellipsoid parameters
	f := Fe                     // Flattening
	a := Re                     // Semi-major axis
	b := a * (1 - f)            // Semi-minor axis
	e := math.Sqrt(f * (2 - f)) // Eccentricity

	// Bowring's initial latitude
	h := a*a - b*b
	p := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y)
	t := math.Atan2(pos.Z*a, p*b)
	sint := math.Sin(t)
	cost := math.Cos(t)
	lat := math.Atan2(pos.Z+h/b*sint*sint*sint, p-h/a*cost*cost*cost)

	// Refinement, mainly for points well above the ellipsoid (pierce points)
	var n, hei float64
	for i := 0; i < 2; i++ {
		n = a / math.Sqrt(1-e*e*math.Sin(lat)*math.Sin(lat)) // Radius of curvature in the prime vertical
		hei = p/math.Cos(lat) - n
		lat = math.Atan2(pos.Z, p*(1-e*e*n/(n+hei)))
	}
	n = a / math.Sqrt(1-e*e*math.Sin(lat)*math.Sin(lat))
	if math.Abs(lat) < math.Pi/4 {
		hei = p/math.Cos(lat) - n
	} else {
		hei = pos.Z/math.Sin(lat) - n*(1-e*e)
	}
	return PosLLH{Lat: lat, Lon: math.Atan2(pos.Y, pos.X), Hei: hei}
}

// Read from string "x y z"
func (pos *PosXYZ) Set(s string) error {
	f := strings.Fields(s)
	if len(f) != 3 {
		return fmt.Errorf("invalid position %q: want 3 fields, got %d", s, len(f))
	}
	var err error
	if pos.X, err = strconv.ParseFloat(f[0], 64); err != nil {
		return err
	}
	if pos.Y, err = strconv.ParseFloat(f[1], 64); err != nil {
		return err
	}
	if pos.Z, err = strconv.ParseFloat(f[2], 64); err != nil {
		return err
	}
	return nil
}

func (pos *PosXYZ) String() string {
	return fmt.Sprintf("%.4f %.4f %.4f", pos.X, pos.Y, pos.Z)
}

//-------------------------------------------------------------------
// Line of sight geometry
//-------------------------------------------------------------------

// Angle between two vectors [rad]. The cosine is clipped to [-1, 1]
func AngleBetween(a, b r3.Vec) float64 {
	c := r3.Dot(r3.Unit(a), r3.Unit(b))
	return math.Acos(math.Max(-1, math.Min(1, c)))
}

// Incidence angle at the target [rad]: angle between the target->sensor
// line of sight and the geocentric position vector of the target
func IncidenceAngle(sensor, target PosXYZ) float64 {
	los := r3.Sub(sensor.Vec(), target.Vec())
	return AngleBetween(los, target.Vec())
}

// First intersection of the line origin + t*dir with a sphere of the given
// radius centered at the earth center, i.e. the one with the smallest t
func LineSphereIntersection(origin, dir PosXYZ, radius float64) (PosXYZ, error) {
	o := origin.Vec()
	d := dir.Vec()
	a := r3.Norm2(d)
	if a == 0 {
		return PosXYZ{}, fmt.Errorf("zero length line direction: %w", ErrNoIntersection)
	}
	b := 2 * r3.Dot(o, d)
	c := r3.Norm2(o) - radius*radius
	disc := b*b - 4*a*c
	if disc < 0 {
		return PosXYZ{}, ErrNoIntersection
	}
	t := (-b - math.Sqrt(disc)) / (2 * a)
	return xyzOf(r3.Add(o, r3.Scale(t, d))), nil
}
