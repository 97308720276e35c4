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

	"golang.org/x/exp/slices"
)

// The zero value of every option type below is its default.
// All of them implement flag.Value (and pflag.Value through Type).

func parseName(names []string, s string) int {
	s = strings.TrimSpace(s)
	return slices.IndexFunc(names, func(n string) bool { return strings.EqualFold(n, s) })
}

func nameOf(names []string, i int) string {
	if i < 0 || i >= len(names) {
		return "UNKNOWN!"
	}
	return names[i]
}

// ------------------------------------
// Ionosphere
// ------------------------------------

// IONEX analysis center
type AnalysisCenter int

const (
	COD AnalysisCenter = iota // Final solution (CODE)
	COR                       // Rapid solution (CODE)
	EHR                       // Rapid high-rate solution, one map per hour (ESA)
	ESA                       // Final solution (ESA)
	ESR                       // Rapid solution (ESA)
	IGR                       // Rapid solution (IGS combined)
	IGS                       // Final combined solution (IGS combined)
	JPL                       // Final solution (JPL)
	UPC                       // Final solution (UPC)
	UHR                       // Rapid high-rate solution, one map per hour (UPC)
	UPR                       // Rapid solution (UPC)
	UQR                       // Rapid high-rate solution, one map per 15 minutes (UPC)
)

var analysisCenterNames = []string{"COD", "COR", "EHR", "ESA", "ESR", "IGR", "IGS", "JPL", "UPC", "UHR", "UPR", "UQR"}

// Case-insensitive lookup of an analysis center code
func ParseAnalysisCenter(s string) (AnalysisCenter, error) {
	i := parseName(analysisCenterNames, s)
	if i < 0 {
		return 0, fmt.Errorf("%q: %w", s, ErrWrongAnalysisCenter)
	}
	return AnalysisCenter(i), nil
}

func (p AnalysisCenter) Valid() bool {
	return p >= COD && p <= UQR
}

func (p AnalysisCenter) String() string { return nameOf(analysisCenterNames, int(p)) }
func (p *AnalysisCenter) Type() string { return "center" }
func (p *AnalysisCenter) Set(s string) (err error) {
	*p, err = ParseAnalysisCenter(s)
	return err
}

// TEC map solution type
type SolutionType int

const (
	Final SolutionType = iota
	Rapid
)

var solutionCodes = []string{"FIN", "RAP"}
var solutionNames = []string{"FINAL", "RAPID"}

func ParseSolutionType(s string) (SolutionType, error) {
	if i := parseName(solutionCodes, s); i >= 0 {
		return SolutionType(i), nil
	}
	if i := parseName(solutionNames, s); i >= 0 {
		return SolutionType(i), nil
	}
	return 0, fmt.Errorf("solution type %q: %w", s, ErrInvalidOption)
}

// Three-letter code used in file names
func (p SolutionType) Code() string { return nameOf(solutionCodes, int(p)) }
func (p SolutionType) String() string { return nameOf(solutionNames, int(p)) }
func (p SolutionType) Valid() bool { return p >= Final && p <= Rapid }
func (p *SolutionType) Type() string { return "solution" }
func (p *SolutionType) Set(s string) (err error) {
	*p, err = ParseSolutionType(s)
	return err
}

// TEC map time resolution
type TimeResolution int

const (
	Hour TimeResolution = iota
	HalfHour
	TwoHours
)

var resolutionCodes = []string{"01H", "30M", "02H"}
var resolutionNames = []string{"HOUR", "HALF_HOUR", "TWO_HOURS"}

func ParseTimeResolution(s string) (TimeResolution, error) {
	if i := parseName(resolutionCodes, s); i >= 0 {
		return TimeResolution(i), nil
	}
	if i := parseName(resolutionNames, s); i >= 0 {
		return TimeResolution(i), nil
	}
	return 0, fmt.Errorf("time resolution %q: %w", s, ErrInvalidOption)
}

func (p TimeResolution) Code() string { return nameOf(resolutionCodes, int(p)) }
func (p TimeResolution) String() string { return nameOf(resolutionNames, int(p)) }
func (p TimeResolution) Valid() bool { return p >= Hour && p <= TwoHours }
func (p *TimeResolution) Type() string { return "resolution" }
func (p *TimeResolution) Set(s string) (err error) {
	*p, err = ParseTimeResolution(s)
	return err
}

// Incidence angle used to build the ionospheric mapping function
type MappingMethod int

const (
	GroundConverted MappingMethod = iota // Ground incidence converted to the shell height
	Ground                               // Ground incidence angle
	IPP                                  // Zenith angle at the pierce point
)

var mappingNames = []string{"GROUND_CONVERTED", "GROUND", "IPP"}

func ParseMappingMethod(s string) (MappingMethod, error) {
	i := parseName(mappingNames, s)
	if i < 0 {
		return 0, fmt.Errorf("mapping method %q: %w", s, ErrInvalidOption)
	}
	return MappingMethod(i), nil
}

func (p MappingMethod) String() string { return nameOf(mappingNames, int(p)) }
func (p MappingMethod) Valid() bool { return p >= GroundConverted && p <= IPP }
func (p *MappingMethod) Type() string { return "mapping" }
func (p *MappingMethod) Set(s string) (err error) {
	*p, err = ParseMappingMethod(s)
	return err
}

// ------------------------------------
// Troposphere
// ------------------------------------

// Tropospheric map data type
type MapType int

const (
	VMF3 MapType = iota
	GRAD
	LHG
	RAYTR
	V3GR
	VMF1
	VMF3o
)

var mapTypeNames = []string{"VMF3", "GRAD", "LHG", "RAYTR", "V3GR", "VMF1", "VMF3o"}

func ParseMapType(s string) (MapType, error) {
	i := parseName(mapTypeNames, s)
	if i < 0 {
		return 0, fmt.Errorf("map type %q: %w", s, ErrInvalidOption)
	}
	return MapType(i), nil
}

func (p MapType) String() string { return nameOf(mapTypeNames, int(p)) }
func (p *MapType) Type() string { return "maptype" }
func (p *MapType) Set(s string) (err error) {
	*p, err = ParseMapType(s)
	return err
}

// Tropospheric map data model
type MapModel int

const (
	GRID MapModel = iota
	DORIS
	GNSS
	SLR
	VLBI
)

var mapModelNames = []string{"GRID", "DORIS", "GNSS", "SLR", "VLBI"}

func ParseMapModel(s string) (MapModel, error) {
	i := parseName(mapModelNames, s)
	if i < 0 {
		return 0, fmt.Errorf("map model %q: %w", s, ErrInvalidOption)
	}
	return MapModel(i), nil
}

func (p MapModel) String() string { return nameOf(mapModelNames, int(p)) }
func (p *MapModel) Type() string { return "model" }
func (p *MapModel) Set(s string) (err error) {
	*p, err = ParseMapModel(s)
	return err
}

// Tropospheric map data version
type MapVersion int

const (
	OP MapVersion = iota
	EI
	FC
	RADIATE
	TRP
)

var mapVersionNames = []string{"OP", "EI", "FC", "RADIATE", "TRP"}

func ParseMapVersion(s string) (MapVersion, error) {
	i := parseName(mapVersionNames, s)
	if i < 0 {
		return 0, fmt.Errorf("map version %q: %w", s, ErrInvalidOption)
	}
	return MapVersion(i), nil
}

func (p MapVersion) String() string { return nameOf(mapVersionNames, int(p)) }
func (p *MapVersion) Type() string { return "version" }
func (p *MapVersion) Set(s string) (err error) {
	*p, err = ParseMapVersion(s)
	return err
}

// Grid resolution of the GRID model
type GridResolution int

const (
	Fine   GridResolution = iota // 1x1 deg
	Medium                       // 2.5x2 deg
	Coarse                       // 5x5 deg
)

var gridResolutionCodes = []string{"1x1", "2.5x2", "5x5"}
var gridResolutionNames = []string{"FINE", "MEDIUM", "COARSE"}

func ParseGridResolution(s string) (GridResolution, error) {
	if i := parseName(gridResolutionCodes, s); i >= 0 {
		return GridResolution(i), nil
	}
	if i := parseName(gridResolutionNames, s); i >= 0 {
		return GridResolution(i), nil
	}
	return 0, fmt.Errorf("grid resolution %q: %w", s, ErrUnsupportedGridResolution)
}

func (p GridResolution) Code() string { return nameOf(gridResolutionCodes, int(p)) }
func (p GridResolution) String() string { return nameOf(gridResolutionNames, int(p)) }
func (p GridResolution) Valid() bool { return p >= Fine && p <= Coarse }
func (p *GridResolution) Type() string { return "grid" }
func (p *GridResolution) Set(s string) (err error) {
	*p, err = ParseGridResolution(s)
	return err
}

// Interpolation method for scattered grids and the time axis
type InterpMethod int

const (
	Cubic InterpMethod = iota
	Linear
	Nearest
)

var interpNames = []string{"CUBIC", "LINEAR", "NEAREST"}

func ParseInterpMethod(s string) (InterpMethod, error) {
	i := parseName(interpNames, s)
	if i < 0 {
		return 0, fmt.Errorf("interpolation method %q: %w", s, ErrInvalidOption)
	}
	return InterpMethod(i), nil
}

func (p InterpMethod) String() string { return nameOf(interpNames, int(p)) }
func (p InterpMethod) Valid() bool { return p >= Cubic && p <= Nearest }
func (p *InterpMethod) Type() string { return "interp" }
func (p *InterpMethod) Set(s string) (err error) {
	*p, err = ParseInterpMethod(s)
	return err
}
