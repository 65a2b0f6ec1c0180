/*
Copyright © 2020 NAME HERE <EMAIL ADDRESS>

Licensed under the Apache License, Version 2.0 (the "License");
you may not use this file except in compliance with the License.
You may obtain a copy of the License at

	http://www.apache.org/licenses/LICENSE-2.0

Unless required by applicable law or agreed to in writing, software
distributed under the License is distributed on an "AS IS" BASIS,
WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
See the License for the specific language governing permissions and
limitations under the License.
*/
package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/pkg/profile"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/notargets/gotpfa/casefile"
	"github.com/notargets/gotpfa/plot"
	"github.com/notargets/gotpfa/transport"
)

// RunOptions are the output and profiling choices of a run
type RunOptions struct {
	Graph       bool
	Delay       time.Duration
	ASCII       bool
	Verbose     bool
	MetricsAddr string
}

// Summary collects the outcome of a run
type Summary struct {
	Steps, Failed int
	Time          float64
	Saturation    []float64
	Registry      *prometheus.Registry
}

// RunCmd represents the run command
var RunCmd = &cobra.Command{
	Use:   "run <case.yaml>",
	Short: "Run a transport case",
	Long: `
Reads a YAML case file, builds the grid, rock, fluid, boundary conditions and
drive flux, then advances the saturation over the case schedule.

Solver options come from the case file "Solver" section, the config file,
GOTPFA_ environment variables and the flags below, in increasing priority.

gotpfa run testdata/waterflood.yaml --ascii`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) (err error) {
		var (
			ro         RunOptions
			profileDir string
			countInstr bool
			dr         int
		)
		ro.Graph, _ = cmd.Flags().GetBool("graph")
		ro.ASCII, _ = cmd.Flags().GetBool("ascii")
		ro.Verbose, _ = cmd.Flags().GetBool("verbose")
		ro.MetricsAddr, _ = cmd.Flags().GetString("metricsAddr")
		dr, _ = cmd.Flags().GetInt("delay")
		ro.Delay = time.Duration(dr) * time.Millisecond
		profileDir, _ = cmd.Flags().GetString("profile")
		countInstr, _ = cmd.Flags().GetBool("perf")

		c, err := casefile.Read(args[0])
		if err != nil {
			return err
		}
		c.Print()
		if len(profileDir) != 0 {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(profileDir)).Stop()
		}
		run := func() error {
			sm, err := RunCase(c, viper.GetViper(), ro)
			if err != nil {
				return err
			}
			PrintSummary(sm)
			return nil
		}
		if !countInstr {
			return run()
		}
		instructions, err := countInstructions(run)
		if err != nil {
			return err
		}
		fmt.Printf("%d\t\t= CPU instructions\n", instructions)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(RunCmd)
	RunCmd.Flags().BoolP("graph", "g", false, "display a graph while computing solution")
	RunCmd.Flags().IntP("delay", "d", 0, "milliseconds of delay for plotting")
	RunCmd.Flags().BoolP("ascii", "a", false, "print the saturation profile in the terminal after every step")
	RunCmd.Flags().BoolP("verbose", "v", false, "log solver retries and failures to stderr")
	RunCmd.Flags().String("profile", "", "write a CPU profile into this directory")
	RunCmd.Flags().Bool("perf", false, "count CPU instructions for the run (linux)")
	RunCmd.Flags().String("metricsAddr", "", "serve prometheus metrics on this address during the run, e.g. :2112")
	RunCmd.Flags().Bool("clampSat", false, "clamp saturations into [0,1] after each step")
	RunCmd.Flags().Int("maxIt", 0, "Newton-Raphson iteration cap")
	RunCmd.Flags().Int("maxRepeats", 0, "number of times a failed step is retried with twice the sub-steps")
	bind := map[string]string{
		transport.KeyClampSat:   "clampSat",
		transport.KeyNRMaxIt:    "maxIt",
		transport.KeyMaxRepeats: "maxRepeats",
	}
	for key, flag := range bind {
		if err := viper.BindPFlag(key, RunCmd.Flags().Lookup(flag)); err != nil {
			panic(err)
		}
	}
}

// RunCase builds the case and advances it over its schedule. Options in
// the case Solver section are merged into v before the config is read.
func RunCase(c *casefile.Case, v *viper.Viper, ro RunOptions) (sm *Summary, err error) {
	if len(c.Solver) != 0 {
		if err = v.MergeConfigMap(c.Solver); err != nil {
			return nil, err
		}
	}
	cfg, err := transport.ConfigFromViper(v)
	if err != nil {
		return nil, err
	}
	cfg.Print()
	s, err := c.Build()
	if err != nil {
		return nil, err
	}
	s.Grid.PrintStatistics()
	cache, err := transport.NewCache(s.Grid, s.Rock, s.Conditions, s.Fluid)
	if err != nil {
		return nil, err
	}

	var (
		level = slog.LevelWarn
		reg   = prometheus.NewRegistry()
	)
	if ro.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})).
		With("case", c.Title)
	if len(ro.MetricsAddr) != 0 {
		var (
			addr string
			stop func()
		)
		if addr, stop, err = serveMetrics(ro.MetricsAddr, reg, logger); err != nil {
			return nil, err
		}
		defer stop()
		logger.Info("serving metrics", "addr", addr)
	}
	st := transport.NewStepper(cache, s.Fluid, cfg,
		transport.WithLogger(logger),
		transport.WithMetrics(transport.NewMetrics(reg)),
	)

	var (
		chart *plot.Chart
		x     = make([]float64, s.Grid.NumCells)
	)
	for i, cc := range s.Grid.CellCentroids {
		x[i] = cc.X
	}
	if ro.Graph {
		chart = plot.NewChart(x, ro.Delay)
		chart.Update(s.Saturation)
	}

	sm = &Summary{Saturation: s.Saturation, Registry: reg}
	for step := 1; step <= c.Schedule.Steps; step++ {
		var res transport.Result
		if res, err = st.Solve(s.Saturation, c.Schedule.Dt, s.Gravity, s.Flux, s.Injection); err != nil {
			return sm, fmt.Errorf("step %d: %w", step, err)
		}
		sm.Steps++
		sm.Time += c.Schedule.Dt
		if !res.Converged {
			sm.Failed++
			logger.Warn("step did not converge", "step", step, "flag", res.Last.Flag,
				"residual", res.Last.Residual)
		}
		if chart != nil {
			chart.Update(s.Saturation)
		}
		if ro.ASCII {
			fmt.Println(plot.ASCII(s.Saturation, 10, 80, plot.Caption(step, sm.Time)))
		}
	}
	return
}

// serveMetrics exposes reg under /metrics on addr until stop is called
func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) (bound string, stop func(), err error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server stopped", "error", err)
		}
	}()
	stop = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Warn("metrics server shutdown", "error", err)
		}
	}
	return ln.Addr().String(), stop, nil
}

// PrintSummary reports the run outcome and the solver counters
func PrintSummary(sm *Summary) {
	var mass, smin, smax = 0., 1., 0.
	for _, s := range sm.Saturation {
		mass += s
		if s < smin {
			smin = s
		}
		if s > smax {
			smax = s
		}
	}
	fmt.Printf("%d\t\t= Steps\n", sm.Steps)
	fmt.Printf("%d\t\t= Failed steps\n", sm.Failed)
	fmt.Printf("%8.5f\t= Final time\n", sm.Time)
	fmt.Printf("[%8.5f, %8.5f]\t= Saturation range\n", smin, smax)
	fmt.Printf("%8.5f\t= Sum of saturations\n", mass)
	families, err := sm.Registry.Gather()
	if err != nil {
		fmt.Printf("error: %s\n", err.Error())
		return
	}
	for _, mf := range families {
		for _, m := range mf.GetMetric() {
			switch {
			case m.GetCounter() != nil:
				fmt.Printf("%-50s %g\n", mf.GetName(), m.GetCounter().GetValue())
			case m.GetHistogram() != nil:
				fmt.Printf("%-50s %d solves, %8.5fs\n", mf.GetName(),
					m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum())
			}
		}
	}
}
