// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"errors"
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"gonum.org/v1/gonum/spatial/r3"
)

// Estimator options
type Option func(*options)

type options struct {
	logger log.Logger
}

func WithLogger(l log.Logger) Option {
	return func(o *options) { o.logger = l }
}

func newOptions(opts []Option) options {
	o := options{}
	for _, f := range opts {
		f(&o)
	}
	o.logger = nopIfNil(o.logger)
	return o
}

// Open a map file of fsys, reporting a missing file as ErrMapFileNotFound
func openMap(fsys fs.FS, name string) (fs.File, error) {
	f, err := fsys.Open(name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileError{Path: name, Err: ErrMapFileNotFound}
		}
		return nil, &FileError{Path: name, Err: err}
	}
	return f, nil
}

//-------------------------------------------------------------------
// Ionospheric delay
//-------------------------------------------------------------------

// Ionospheric estimation settings. The zero value of Scale stands for 1, so a
// delay can not be scaled to zero through the configuration.
type IonoConfig struct {
	Center     AnalysisCenter
	FcHz       float64 // Carrier frequency [Hz]
	Scale      float64 // Delay scaling factor, 0 is replaced by 1
	Mapping    MappingMethod
	Solution   SolutionType
	Resolution TimeResolution
}

// Ionospheric delay estimator for one acquisition time. It is immutable
// once created and can be shared between goroutines.
type IonoEstimator struct {
	time   time.Time
	cfg    IonoConfig
	file   string
	data   *IonexData
	logger log.Logger
}

// Load the TEC map file of the acquisition time t from fsys
func NewIonoEstimator(t time.Time, cfg IonoConfig, fsys fs.FS, opts ...Option) (*IonoEstimator, error) {
	o := newOptions(opts)

	// Configuration
	if !cfg.Center.Valid() {
		return nil, fmt.Errorf("analysis center %d: %w", cfg.Center, ErrWrongAnalysisCenter)
	}
	if !(cfg.FcHz > 0) {
		return nil, fmt.Errorf("carrier frequency %g Hz: %w", cfg.FcHz, ErrInvalidOption)
	}
	if !cfg.Solution.Valid() {
		return nil, fmt.Errorf("solution type %d: %w", cfg.Solution, ErrInvalidOption)
	}
	if !cfg.Resolution.Valid() {
		return nil, fmt.Errorf("time resolution %d: %w", cfg.Resolution, ErrInvalidOption)
	}
	if !cfg.Mapping.Valid() {
		return nil, fmt.Errorf("mapping method %d: %w", cfg.Mapping, ErrInvalidOption)
	}
	// Unset scale
	if cfg.Scale == 0 {
		cfg.Scale = 1
	}

	// TEC maps
	t = t.UTC()
	name := IonosphericMapFilename(t, cfg.Center, cfg.Solution, cfg.Resolution)
	f, err := openMap(fsys, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	data, err := ReadIonex(f)
	if err != nil {
		return nil, &FileError{Path: name, Err: err}
	}
	for _, w := range data.Warnings {
		level.Warn(o.logger).Log("file", name, "msg", w)
	}
	level.Info(o.logger).Log("msg", "TEC maps loaded", "file", name, "maps", len(data.Maps),
		"height", data.IonosphereHeight, "radius", data.EarthRadius)

	return &IonoEstimator{time: t, cfg: cfg, file: name, data: data, logger: o.logger}, nil
}

// Parsed TEC maps
func (p *IonoEstimator) Data() *IonexData {
	return p.data
}

// Name of the TEC map file in use
func (p *IonoEstimator) Filename() string {
	return p.file
}

// Slant ionospheric delay [m] of each sensor/target pair
func (p *IonoEstimator) EstimateDelay(sensors, targets []PosXYZ) ([]float64, error) {
	if len(sensors) != len(targets) {
		return nil, fmt.Errorf("%d sensors, %d targets: %w", len(sensors), len(targets), ErrInputShape)
	}

	// Bracketing maps
	i, err := BracketTwo(p.data.Epochs(), p.time)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", p.file, err)
	}
	dt0 := Seconds(p.time, p.data.Maps[i].Epoch) / 3600
	dt1 := Seconds(p.time, p.data.Maps[i+1].Epoch) / 3600
	g0 := p.data.Grid(i)
	g1 := p.data.Grid(i + 1)

	ipps, err := PiercePoints(sensors, targets, p.data.EarthRadius, p.data.IonosphereHeight)
	if err != nil {
		return nil, err
	}

	delay := make([]float64, len(targets))
	for k, ipp := range ipps {

		// Earth rotation between the acquisition and each map
		v0, err := g0.Bilinear(ipp.Lat, WrapLon(ipp.Lon+EarthRotationDegPerHour*dt0))
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", k, err)
		}
		v1, err := g1.Bilinear(ipp.Lat, WrapLon(ipp.Lon+EarthRotationDegPerHour*dt1))
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", k, err)
		}
		tec := InterpTime(dt0, dt1, v0, v1)

		var mf float64
		switch p.cfg.Mapping {
		case IPP:
			mf = MappingIPP(sensors[k], ipp.XYZ)
		case Ground:
			mf = MappingGround(sensors[k], targets[k])
		default:
			mf = MappingGroundConverted(sensors[k], targets[k], p.data.IonosphereHeight)
		}
		delay[k] = IonoDelay(p.cfg.FcHz, tec, mf, p.cfg.Scale)

		level.Debug(p.logger).Log("target", k, "ipp_lat", ipp.Lat, "ipp_lon", ipp.Lon, "tec", tec, "mf", mf, "delay", delay[k])
	}
	return delay, nil
}

// First order ionospheric delay [m]
// - fc: carrier frequency [Hz]
// - tec: vertical TEC [TECU]
// - mf: mapping function
// - scale: scaling factor
func IonoDelay(fc, tec, mf, scale float64) float64 {
	return IonoConst / (fc * fc) * tec * mf * scale
}

// Point where the line of sight crosses the ionospheric shell
type PiercePoint struct {
	Lat float64 // Geodetic latitude [deg]
	Lon float64 // Longitude [deg]
	XYZ PosXYZ
}

// Pierce points of the sensor->target lines of sight on a sphere of radius
// earthRadius + ionoHeight
func PiercePoints(sensors, targets []PosXYZ, earthRadius, ionoHeight float64) ([]PiercePoint, error) {
	if len(sensors) != len(targets) {
		return nil, fmt.Errorf("%d sensors, %d targets: %w", len(sensors), len(targets), ErrInputShape)
	}
	ipps := make([]PiercePoint, len(targets))
	for k := range targets {
		los := xyzOf(r3.Sub(targets[k].Vec(), sensors[k].Vec()))
		xyz, err := LineSphereIntersection(sensors[k], los, earthRadius+ionoHeight)
		if err != nil {
			return nil, fmt.Errorf("target %d: %w", k, err)
		}
		llh := xyz.ToLLH()
		ipps[k] = PiercePoint{Lat: ToDeg(llh.Lat), Lon: ToDeg(llh.Lon), XYZ: xyz}
	}
	return ipps, nil
}

// Mapping function from the zenith angle at the pierce point
func MappingIPP(sensor, ipp PosXYZ) float64 {
	z := AngleBetween(ipp.Vec(), r3.Sub(sensor.Vec(), ipp.Vec()))
	return 1 / math.Cos(z)
}

// Mapping function from the incidence angle at the target
func MappingGround(sensor, target PosXYZ) float64 {
	return 1 / math.Cos(IncidenceAngle(sensor, target))
}

// Mapping function from the incidence angle at the target, converted to the
// shell height ionoHeight [m]
func MappingGroundConverted(sensor, target PosXYZ, ionoHeight float64) float64 {
	s := DefaultEarthRadius / (DefaultEarthRadius + ionoHeight) * math.Sin(IncidenceAngle(sensor, target))
	return 1 / math.Sqrt(1-SQ(s))
}
