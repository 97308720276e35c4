// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.13
//

package atmdelay

import (
	"fmt"
	"math"
	"time"
)

// ------------------------------------
// Mini functions
// ------------------------------------

func SQ(x float64) float64 {
	return x * x
}

func ToDeg(rad float64) float64 {
	return rad / PI * 180.0
}

func ToRad(deg float64) float64 {
	return deg / 180.0 * PI
}

// Wrap a longitude into [-180, 180] degrees
func WrapLon(lon float64) float64 {
	if lon >= -180 && lon <= 180 {
		return lon
	}
	lon = math.Mod(lon+180, 360)
	if lon < 0 {
		lon += 360
	}
	return lon - 180
}

// Longitude from [0, 360) to (-180, 180]
func shiftLon(lon float64) float64 {
	if lon > 180 {
		return lon - 360
	}
	return lon
}

// ------------------------------------
// For command argument parsing
// ------------------------------------

// Accepted layouts of acquisition times, UTC
var timeLayouts = []string{
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006/01/02 15:04:05.999999999",
	"02-Jan-2006 15:04:05.999999999",
}

// Date and Time Parser (for command arguments and config files)
type TimeStr time.Time

func (p *TimeStr) MarshalText() (text []byte, err error) {
	return time.Time(*p).MarshalText()
}

func (p *TimeStr) UnmarshalText(text []byte) error {
	s := string(text)
	for _, layout := range timeLayouts {
		t, err := time.ParseInLocation(layout, s, time.UTC)
		if err == nil {
			*p = TimeStr(t)
			return nil
		}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return fmt.Errorf("cannot parse time %q", s)
	}
	*p = TimeStr(t.UTC())
	return nil
}

func (p *TimeStr) Set(s string) error { return p.UnmarshalText([]byte(s)) }
func (p *TimeStr) Type() string { return "time" }
func (p *TimeStr) String() string {
	if p == nil || time.Time(*p).IsZero() {
		return ""
	}
	return time.Time(*p).Format(timeLayouts[0])
}
