// Copyright (c) 2025 hitoshi.mukai.b@gmail.com. All rights reserved.
// You are free to use this source code for any purpose. The copyright remains with the author.
// The author accepts no liability for any damages arising from the use of this source code.
//
// Last modified: 2025.10.19
//

package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	m "github.com/mkhts/atmdelay"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Command tree. Flag values can also come from a config file (--config)
// or from ATMDELAY_* environment variables.
func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   filepath.Base(os.Args[0]),
		Short: "Atmospheric slant range delay of radar point targets",
		Long: `Estimates the slant range delay caused by the ionosphere (IONEX TEC maps)
or by the troposphere (VMF3 grids) for each sensor/target pair.

The positions file has one line per target, ECEF coordinates in meters:
	sensor_x sensor_y sensor_z target_x target_y target_z
Lines starting with # are ignored.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return loadConfig(cmd)
		},
	}
	pf := root.PersistentFlags()
	pf.String("config", "", "Config file (yaml, toml or json) holding flag values.")
	pf.String("time", "", "Acquisition time (UTC). Enclose in quotes like --time \"2019-01-08 08:32:54.152948\"")
	pf.String("positions", "", "Positions file path.")
	pf.String("maps", ".", "Directory holding the map files.")
	pf.StringP("output", "o", "", "Output file path. If not specified, output to stdout.")
	pf.Bool("nh", false, "Do not output header section.")
	pf.IntP("debug", "x", 0, "Debug information display. Specify level value. 0(warnings), 1(info), 2(debug)")

	root.AddCommand(newIonoCmd(), newTropoCmd())
	return root
}

func newIonoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "iono",
		Short: "Ionospheric delay from IONEX TEC maps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseCommon()
			if err != nil {
				return err
			}
			cfg, err := ionoConfig()
			if err != nil {
				return err
			}
			return runIono(a, cfg)
		},
	}
	f := cmd.Flags()
	f.String("center", m.COD.String(), "Analysis center. COD, COR, EHR, ESA, ESR, IGR, IGS, JPL, UPC, UHR, UPR, UQR")
	f.Float64("fc", 0, "Carrier frequency [Hz]")
	f.String("solution", m.Final.Code(), "TEC map solution type. FIN, RAP")
	f.String("resolution", m.Hour.Code(), "TEC map time resolution. 30M, 01H, 02H")
	f.String("mapping", m.GroundConverted.String(), "Mapping function incidence angle. GROUND_CONVERTED, GROUND, IPP")
	f.Float64("scale", 1.0, "Delay scaling factor")
	return cmd
}

func newTropoCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tropo",
		Short: "Tropospheric delay from VMF3 grids",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := parseCommon()
			if err != nil {
				return err
			}
			cfg, err := tropoConfig()
			if err != nil {
				return err
			}
			return runTropo(a, cfg, viper.GetString("support"))
		},
	}
	f := cmd.Flags()
	f.String("support", ".", "Directory holding the coefficient tables and the grid point coordinates files.")
	f.String("maptype", m.VMF3.String(), "Tropospheric map type. VMF3")
	f.String("model", m.GRID.String(), "Tropospheric map model. GRID")
	f.String("mapversion", m.OP.String(), "Tropospheric map version. OP")
	f.String("grid", m.Fine.Code(), "Grid resolution. 1x1, 5x5")
	f.String("interp", m.Cubic.String(), "Interpolation method. CUBIC, LINEAR, NEAREST")
	return cmd
}

// Bind flags, environment and config file
func loadConfig(cmd *cobra.Command) error {
	if err := viper.BindPFlags(cmd.Flags()); err != nil {
		return err
	}
	viper.SetEnvPrefix("ATMDELAY")
	viper.AutomaticEnv()
	if fn := viper.GetString("config"); fn != "" {
		viper.SetConfigFile(fn)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return nil
}

// Structure to hold the arguments shared by the subcommands
type cmdOpt struct {
	time        time.Time
	posFn       string
	mapDir      string
	outFn       string
	noHeader    bool
	sensors     []m.PosXYZ
	targets     []m.PosXYZ
	logger      log.Logger
	programName string
}

func parseCommon() (a cmdOpt, err error) {
	var ts m.TimeStr
	s := viper.GetString("time")
	if s == "" {
		return a, fmt.Errorf("the acquisition time must be specified! (--time option)")
	}
	if err = ts.Set(s); err != nil {
		return a, err
	}
	a.time = time.Time(ts)
	a.posFn = viper.GetString("positions")
	if a.posFn == "" {
		return a, fmt.Errorf("the positions file must be specified! (--positions option)")
	}
	if a.sensors, a.targets, err = readPositions(a.posFn); err != nil {
		return a, fmt.Errorf("failed to read positions file: %w", err)
	}
	a.mapDir = viper.GetString("maps")
	a.outFn = viper.GetString("output")
	a.noHeader = viper.GetBool("nh")
	a.logger = m.NewLogger(os.Stderr, viper.GetInt("debug"))
	a.programName = filepath.Base(os.Args[0])
	return a, nil
}

func ionoConfig() (cfg m.IonoConfig, err error) {
	if cfg.Center, err = m.ParseAnalysisCenter(viper.GetString("center")); err != nil {
		return
	}
	if cfg.Solution, err = m.ParseSolutionType(viper.GetString("solution")); err != nil {
		return
	}
	if cfg.Resolution, err = m.ParseTimeResolution(viper.GetString("resolution")); err != nil {
		return
	}
	if cfg.Mapping, err = m.ParseMappingMethod(viper.GetString("mapping")); err != nil {
		return
	}
	cfg.FcHz = viper.GetFloat64("fc")
	cfg.Scale = viper.GetFloat64("scale")
	return
}

func tropoConfig() (cfg m.TropoConfig, err error) {
	if cfg.MapType, err = m.ParseMapType(viper.GetString("maptype")); err != nil {
		return
	}
	if cfg.Model, err = m.ParseMapModel(viper.GetString("model")); err != nil {
		return
	}
	if cfg.Version, err = m.ParseMapVersion(viper.GetString("mapversion")); err != nil {
		return
	}
	if cfg.Resolution, err = m.ParseGridResolution(viper.GetString("grid")); err != nil {
		return
	}
	if cfg.Interp, err = m.ParseInterpMethod(viper.GetString("interp")); err != nil {
		return
	}
	return
}

// Read "sx sy sz tx ty tz" lines
func readPositions(fn string) ([]m.PosXYZ, []m.PosXYZ, error) {
	f, err := os.Open(fn)
	if err != nil {
		return nil, nil, err
	}
	defer f.Close()
	return parsePositions(f)
}

func parsePositions(r io.Reader) (sensors, targets []m.PosXYZ, err error) {
	s := bufio.NewScanner(r)
	n := 0
	for s.Scan() {
		n++
		l := strings.TrimSpace(s.Text())
		if l == "" || strings.HasPrefix(l, "#") {
			continue
		}
		f := strings.Fields(l)
		if len(f) != 6 {
			return nil, nil, fmt.Errorf("line %d: want 6 values, got %d", n, len(f))
		}
		var sen, tgt m.PosXYZ
		if err = sen.Set(strings.Join(f[:3], " ")); err != nil {
			return nil, nil, fmt.Errorf("line %d: sensor: %w", n, err)
		}
		if err = tgt.Set(strings.Join(f[3:], " ")); err != nil {
			return nil, nil, fmt.Errorf("line %d: target: %w", n, err)
		}
		sensors = append(sensors, sen)
		targets = append(targets, tgt)
	}
	return sensors, targets, s.Err()
}

// Ionospheric delay processing
func runIono(a cmdOpt, cfg m.IonoConfig) error {
	est, err := m.NewIonoEstimator(a.time, cfg, os.DirFS(a.mapDir), m.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("failed to load TEC maps: %w", err)
	}
	delay, err := est.EstimateDelay(a.sensors, a.targets)
	if err != nil {
		return fmt.Errorf("failed to estimate ionospheric delay: %w", err)
	}

	out, err := prepareOutput(a.outFn)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	if !a.noHeader {
		printHeader(out, a, est.Filename())
		fmt.Fprintf(out, "%% center    : %s %s %s, mapping %s, fc %.1f Hz, scale %g\n",
			cfg.Center, cfg.Solution.Code(), cfg.Resolution.Code(), cfg.Mapping, cfg.FcHz, cfg.Scale)
		fmt.Fprintf(out, "%%  idx        delay(m)\n")
	}
	printIono(out, delay)
	level.Info(a.logger).Log("msg", "done", "targets", len(delay))
	return nil
}

// Tropospheric delay processing
func runTropo(a cmdOpt, cfg m.TropoConfig, supportDir string) error {
	est, err := m.NewTropoEstimator(a.time, cfg, os.DirFS(a.mapDir), os.DirFS(supportDir), m.WithLogger(a.logger))
	if err != nil {
		return fmt.Errorf("failed to load VMF3 grids: %w", err)
	}
	delay, err := est.EstimateDelay(a.sensors, a.targets)
	if err != nil {
		return fmt.Errorf("failed to estimate tropospheric delay: %w", err)
	}

	out, err := prepareOutput(a.outFn)
	if err != nil {
		return fmt.Errorf("failed to prepare output: %w", err)
	}
	defer closeOutput(out)

	if !a.noHeader {
		files, _ := est.Files()
		printHeader(out, a, files...)
		fmt.Fprintf(out, "%% grid      : %s, interp %s\n", cfg.Resolution.Code(), cfg.Interp)
		fmt.Fprintf(out, "%%  idx  hydrostatic(m)          wet(m)        total(m)\n")
	}
	printTropo(out, delay)
	level.Info(a.logger).Log("msg", "done", "targets", len(delay.Wet))
	return nil
}

// Prepare output file
func prepareOutput(fn string) (io.WriteCloser, error) {

	// Use stdout if no output file is specified
	if len(fn) == 0 {
		return &nopCloser{os.Stdout}, nil
	}

	f, err := os.Create(fn)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}

// Close output file
func closeOutput(out io.WriteCloser) {
	if out != nil {
		out.Close()
	}
}

// nopCloser - WriteCloser that ignores close operations
type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

func printHeader(out io.Writer, a cmdOpt, mapFiles ...string) {
	fmt.Fprintf(out, "%% program   : %s\n", a.programName)
	fmt.Fprintf(out, "%% inp file  : %s\n", a.posFn)
	for _, f := range mapFiles {
		fmt.Fprintf(out, "%% map file  : %s\n", filepath.Join(a.mapDir, f))
	}
	g := m.NewGTime(a.time)
	fmt.Fprintf(out, "%% acq time  : %s(UTC) (week%d %9.3fs)(GPST)\n", a.time.Format("2006/01/02 15:04:05.000000"), g.Week, g.Sec)
}

func printIono(out io.Writer, delay []float64) {
	for k, d := range delay {
		fmt.Fprintf(out, "%6d %15.9f\n", k, d)
	}
}

func printTropo(out io.Writer, delay m.TropoDelay) {
	for k := range delay.Wet {
		fmt.Fprintf(out, "%6d %15.9f %15.9f %15.9f\n", k, delay.Hydrostatic[k], delay.Wet[k], delay.Total(k))
	}
}
