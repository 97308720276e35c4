// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.14
//

package atmdelay

import (
	"fmt"
	"strings"
	"time"
)

// CDDIS naming of IONEX files
// https://cddis.nasa.gov/Data_and_Derived_Products/GNSS/atmospheric_products.html
//
// before GPS week 2238: aaagDDD0.YYi
// since GPS week 2238:  AAA0OPSTYP_YYYYDDD0000_01D_SMP_GIM.INX
func IonosphericMapFilename(t time.Time, center AnalysisCenter, sol SolutionType, res TimeResolution) string {
	t = t.UTC()
	doy := DayOfYear(t)
	if NewGTime(t).Week < GPSWeekReference {
		return fmt.Sprintf("%sg%03d0.%02di", strings.ToLower(center.String()), doy, t.Year()%100)
	}
	return fmt.Sprintf("%s0OPS%s_%d%03d0000_01D_%s_GIM.INX", center.String(), sol.Code(), t.Year(), doy, res.Code())
}

// Names and epochs of the 4 VMF3 grid files needed around t
// https://vmf.geo.tuwien.ac.at/trop_products/
//
// Maps are published at 00, 06, 12 and 18 UT. The main file is the latest
// epoch not after t; the previous one and the two following ones complete
// the bracket, rolling over to the neighbouring days when needed.
func TroposphericMapFilenames(t time.Time, mapType MapType) ([]string, []time.Time) {
	t = t.UTC()
	main := startOfDay(t).Add(time.Duration(t.Hour()/EpochStepHours*EpochStepHours) * time.Hour)
	step := time.Duration(EpochStepHours) * time.Hour

	names := make([]string, 4)
	epochs := make([]time.Time, 4)
	for i := 0; i < 4; i++ {
		e := main.Add(time.Duration(i-1) * step)
		epochs[i] = e
		names[i] = fmt.Sprintf("%s_%04d%02d%02d.H%02d", mapType.String(), e.Year(), int(e.Month()), e.Day(), e.Hour())
	}
	return names, epochs
}
