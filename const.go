// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

const (
	PI = 3.1415926535897932  // Pi
	Re = 6378137.0           // Earth's radius [m] (WGS84 semi-major axis)
	Fe = 1.0 / 298.257223563 // Earth's flattening (WGS84)
)

// Ionosphere
const (
	DefaultEarthRadius      = 6371000.0 // Mean earth radius used by IONEX maps [m]
	DefaultIonosphereHeight = 450000.0  // Thin shell height [m]
	DefaultTECExponent      = -1.0      // IONEX default exponent (0.1 TECU)
	IonoConst               = 40.3e16   // 40.3 * 1e16 (TECU -> el/m^2) [m^3/s^2]
	EarthRotationDegPerHour = 360.0 / 24.0
	GPSWeekReference        = 2238 // First GPS week with long IONEX file names
)

// Troposphere
const (
	DaysInYear      = 365.25
	EpochStepHours  = 6 // VMF3 epochs: 00, 06, 12, 18 UT
	FilterMarginDeg = 10.0

	AtmPressure     = 1013.25   // Sea level pressure [mbar]
	TempLapseRate   = 0.0065    // ISA troposphere lapse rate [K/m]
	TempReference   = 288.15    // ISA sea level temperature [K]
	GravityAccel    = 9.80665   // [m/s^2]
	MolarMassAir    = 0.0289644 // [kg/mol]
	GasConstant     = 8.3144598 // Universal gas constant [J/mol/K]
	WetScaleHeight  = 2000.0    // Empirical wet delay decay height [m]
	SaastamoinenK   = 0.0022768
	SaastamoinenLat = 0.00266
	SaastamoinenHgt = 0.28e-6

	SHDegree = 12 // Degree and order of the VMF3 spherical harmonics
)
