// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.12
//

package atmdelay

import (
	"errors"
	"fmt"
)

// Configuration errors, raised before any file access
var (
	ErrWrongAnalysisCenter       = errors.New("unsupported analysis center")
	ErrUnsupportedGridResolution = errors.New("unsupported grid resolution")
	ErrUnsupportedMapType        = errors.New("unsupported tropospheric map type")
	ErrInvalidOption             = errors.New("invalid option")
)

// Resource errors
var (
	ErrMapFileNotFound = errors.New("map file not found")
)

// Format errors
var (
	ErrTECMapReading     = errors.New("could not isolate each TEC MAP section")
	ErrVMF3Format        = errors.New("malformed VMF3 file")
	ErrUnsupportedFormat = errors.New("unsupported map format")
	ErrSHCoefficients    = errors.New("malformed spherical harmonics coefficients")
	ErrGridStations      = errors.New("malformed grid stations file")
	ErrGridMismatch      = errors.New("map grids do not share the same coordinates")
)

// Input and geometry errors
var (
	ErrInputShape     = errors.New("sensor and target arrays differ in length")
	ErrNotBracketed   = errors.New("acquisition time not bracketed by map epochs")
	ErrOutOfGrid      = errors.New("point outside of the map grid")
	ErrNoIntersection = errors.New("line of sight does not intersect the ionospheric shell")
)

// Error carrying the path of the file that failed
type FileError struct {
	Path string
	Err  error
}

func (e *FileError) Error() string {
	return fmt.Sprintf("%s: %s", e.Path, e.Err.Error())
}

func (e *FileError) Unwrap() error {
	return e.Err
}
