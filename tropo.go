// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package atmdelay

import (
	"fmt"
	"io/fs"
	"math"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
)

type TropoConfig struct {
	MapType    MapType
	Model      MapModel
	Version    MapVersion
	Resolution GridResolution
	Interp     InterpMethod
}

// Slant tropospheric delays [m], one per target
type TropoDelay struct {
	Hydrostatic []float64
	Wet         []float64
}

// Total slant delay of target k [m]
func (d TropoDelay) Total(k int) float64 {
	return d.Hydrostatic[k] + d.Wet[k]
}

// VMF3 fields interpolated to the targets
var vmf3Fields = []string{"ah", "aw", "zhd", "zwd"}

// Tropospheric delay estimator for one acquisition time. It is immutable
// once created and can be shared between goroutines.
type TropoEstimator struct {
	time     time.Time
	cfg      TropoConfig
	files    []string
	epochs   []time.Time
	grids    []*VMF3Grid
	coef     *SHCoefficients
	stations *GridStations
	logger   log.Logger
}

// Load the four VMF3 grids around t from maps, and the coefficient tables
// and grid point station coordinates from support
func NewTropoEstimator(t time.Time, cfg TropoConfig, maps, support fs.FS, opts ...Option) (*TropoEstimator, error) {
	o := newOptions(opts)

	// Configuration
	if cfg.MapType != VMF3 {
		return nil, fmt.Errorf("%s: %w", cfg.MapType, ErrUnsupportedMapType)
	}
	if cfg.Model != GRID {
		return nil, fmt.Errorf("map model %s: %w", cfg.Model, ErrInvalidOption)
	}
	if cfg.Version != OP {
		return nil, fmt.Errorf("map version %s: %w", cfg.Version, ErrInvalidOption)
	}
	stationFile, err := GridStationsFilename(cfg.Resolution)
	if err != nil {
		return nil, err
	}
	if !cfg.Interp.Valid() {
		return nil, fmt.Errorf("interpolation method %d: %w", cfg.Interp, ErrInvalidOption)
	}

	// VMF3 grids
	t = t.UTC()
	p := &TropoEstimator{time: t, cfg: cfg, logger: o.logger}
	p.files, p.epochs = TroposphericMapFilenames(t, cfg.MapType)
	for i, name := range p.files {
		g, err := readVMF3File(maps, name)
		if err != nil {
			return nil, err
		}
		if !g.Epoch.IsZero() && !g.Epoch.Equal(p.epochs[i]) {
			level.Warn(o.logger).Log("file", name, "msg", "epoch in header differs from file name", "epoch", g.Epoch)
		}
		p.grids = append(p.grids, g)
	}
	level.Info(o.logger).Log("msg", "VMF3 grids loaded", "first", p.files[0], "last", p.files[len(p.files)-1])

	// Support files
	if p.coef, err = ReadSHCoefficients(support, "."); err != nil {
		return nil, err
	}
	f, err := openMap(support, stationFile)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	if p.stations, err = ReadGridStations(f); err != nil {
		return nil, &FileError{Path: stationFile, Err: err}
	}
	level.Debug(o.logger).Log("msg", "grid stations loaded", "file", stationFile, "stations", len(p.stations.Lat))
	return p, nil
}

func readVMF3File(fsys fs.FS, name string) (*VMF3Grid, error) {
	f, err := openMap(fsys, name)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	g, err := ReadVMF3(f)
	if err != nil {
		return nil, &FileError{Path: name, Err: err}
	}
	return g, nil
}

// Names and epochs of the VMF3 files in use
func (p *TropoEstimator) Files() ([]string, []time.Time) {
	return p.files, p.epochs
}

// Slant hydrostatic and wet delays [m] of each sensor/target pair
func (p *TropoEstimator) EstimateDelay(sensors, targets []PosXYZ) (TropoDelay, error) {
	n := len(targets)
	if len(sensors) != n {
		return TropoDelay{}, fmt.Errorf("%d sensors, %d targets: %w", len(sensors), n, ErrInputShape)
	}
	if n == 0 {
		return TropoDelay{Hydrostatic: []float64{}, Wet: []float64{}}, nil
	}

	// Target positions
	lat := make([]float64, n) // [deg]
	lon := make([]float64, n) // [deg]
	hgt := make([]float64, n) // Ellipsoidal height [m]
	for k := range targets {
		llh := targets[k].ToLLH()
		lat[k], lon[k], hgt[k] = ToDeg(llh.Lat), ToDeg(llh.Lon), llh.Hei
	}
	box := TargetBox(lat, lon, FilterMarginDeg)

	// Grid nodes around the targets, the same on the four epochs
	grids := make([]*VMF3Grid, len(p.grids))
	for i, g := range p.grids {
		grids[i] = g.Filter(box)
		if i > 0 && !grids[i].SameNodes(grids[0]) {
			return TropoDelay{}, fmt.Errorf("%s and %s: %w", p.files[0], p.files[i], ErrGridMismatch)
		}
	}
	sp, err := NewScatteredInterpolator(p.cfg.Interp, grids[0].Lon, grids[0].Lat)
	if err != nil {
		return TropoDelay{}, fmt.Errorf("VMF3 grid: %w", err)
	}

	// Spatial then temporal interpolation
	ts := make([]float64, len(p.epochs))
	for i, e := range p.epochs {
		ts[i] = Seconds(p.epochs[0], e)
	}
	tq := Seconds(p.epochs[0], p.time)
	vals := make(map[string][]float64, len(vmf3Fields))
	for _, name := range vmf3Fields {
		vals[name] = make([]float64, n)
	}
	series := make([]float64, len(grids))
	for k := range targets {
		st := sp.Stencil(lon[k], lat[k])
		for _, name := range vmf3Fields {
			for i, g := range grids {
				series[i] = st.Apply(g.Values[name])
			}
			v, err := Interp1D(p.cfg.Interp, ts, series, tq)
			if err != nil {
				return TropoDelay{}, fmt.Errorf("target %d, %s: %w", k, name, err)
			}
			if math.IsNaN(v) {
				return TropoDelay{}, fmt.Errorf("target %d (%.4f, %.4f), %s: %w", k, lat[k], lon[k], name, ErrOutOfGrid)
			}
			vals[name][k] = v
		}
	}

	// Mapping functions
	latr := make([]float64, n)
	lonr := make([]float64, n)
	inc := make([]float64, n)
	for k := range targets {
		latr[k], lonr[k] = ToRad(lat[k]), ToRad(lon[k])
		inc[k] = IncidenceAngle(sensors[k], targets[k])
	}
	mf, err := VMF3MappingFunctions(p.coef, latr, lonr, inc, vals["ah"], vals["aw"], DayOfYear(p.time))
	if err != nil {
		return TropoDelay{}, err
	}

	// Heights of the grid points at the targets
	st := p.stations.Filter(box)
	hp, err := NewScatteredInterpolator(p.cfg.Interp, st.Lon, st.Lat)
	if err != nil {
		return TropoDelay{}, fmt.Errorf("grid stations: %w", err)
	}

	delay := TropoDelay{Hydrostatic: make([]float64, n), Wet: make([]float64, n)}
	for k := range targets {
		hg := hp.Interpolate(st.EllipsoidalHeight, lon[k], lat[k])
		if math.IsNaN(hg) {
			return TropoDelay{}, fmt.Errorf("target %d (%.4f, %.4f), grid station height: %w", k, lat[k], lon[k], ErrOutOfGrid)
		}

		// Zenith delays moved from the grid height to the target height
		pres := InverseSaastamoinen(vals["zhd"][k], latr[k], hg) + BarometricPressure(hgt[k]) - BarometricPressure(hg)
		zhd := Saastamoinen(pres, latr[k], hgt[k])
		zwd := WetHeightCorrection(vals["zwd"][k], hgt[k], hg)

		delay.Hydrostatic[k] = zhd * mf.Hydrostatic[k]
		delay.Wet[k] = zwd * mf.Wet[k]

		level.Debug(p.logger).Log("target", k, "lat", lat[k], "lon", lon[k], "hgt", hgt[k], "hgrid", hg,
			"zhd", zhd, "zwd", zwd, "mfh", mf.Hydrostatic[k], "mfw", mf.Wet[k])
	}
	return delay, nil
}

// Saastamoinen zenith hydrostatic delay [m]
// - pres: pressure [mbar]
// - lat: latitude [rad]
// - hgt: ellipsoidal height [m]
func Saastamoinen(pres, lat, hgt float64) float64 {
	return SaastamoinenK * pres / (1.0 - SaastamoinenLat*math.Cos(2.0*lat) - SaastamoinenHgt*hgt)
}

// Pressure [mbar] giving the zenith hydrostatic delay zhd [m]
func InverseSaastamoinen(zhd, lat, hgt float64) float64 {
	return zhd / SaastamoinenK * (1.0 - SaastamoinenLat*math.Cos(2.0*lat) - SaastamoinenHgt*hgt)
}

// ISA troposphere pressure [mbar] at height hgt [m]
func BarometricPressure(hgt float64) float64 {
	exp := GravityAccel * MolarMassAir / GasConstant / TempLapseRate
	return AtmPressure * math.Pow(1.0-TempLapseRate/TempReference*hgt, exp)
}

// Zenith wet delay moved from the grid height hg to hgt [m]
func WetHeightCorrection(zwd, hgt, hg float64) float64 {
	return zwd * math.Exp(-(hgt-hg)/WetScaleHeight)
}
