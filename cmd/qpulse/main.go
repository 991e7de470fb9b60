package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"

	"github.com/averyparr/qpulse/internal/analysis"
	"github.com/averyparr/qpulse/internal/calib"
	"github.com/averyparr/qpulse/internal/config"
	"github.com/averyparr/qpulse/internal/sim"
	"github.com/averyparr/qpulse/internal/store"
	"github.com/averyparr/qpulse/internal/transform"
	"github.com/averyparr/qpulse/internal/tui"
)

var (
	dbPath     string
	configFile string
	preset     string
	verbose    bool

	freq     float64
	rabi     float64
	duration float64
	amp      float64
	width    float64
	method   string
	absTol   float64
	relTol   float64
	points   int

	// Sweep range
	sweepFrom  float64
	sweepTo    float64
	sweepSteps int
	// Calibration search
	calibFrom   float64
	calibTo     float64
	calibRounds int
	calibPoints int
	// Gradient step
	gradStep float64
	// Export options
	exportFormat string
	exportOut    string
	noSave       bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "qpulse",
		Short: "qubit pulse simulation and calibration",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelWarn
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(
				tint.NewHandler(os.Stderr, &tint.Options{
					Level:      level,
					TimeFormat: time.Kitchen,
				}),
			))
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dbPath, "db", ".qpulse.db", "run database path")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")
	rootCmd.PersistentFlags().StringVar(&preset, "preset", "", "use preset configuration")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate a pulse and report the final excited population",
		RunE:  runPulse,
	}
	addPulseFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "skip saving the run")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep pulse amplitude and plot final population",
		RunE:  runSweep,
	}
	addPulseFlags(sweepCmd)
	sweepCmd.Flags().Float64Var(&sweepFrom, "from", 0.0, "sweep start amplitude")
	sweepCmd.Flags().Float64Var(&sweepTo, "to", 2.0, "sweep end amplitude")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 41, "sweep points")

	calibrateCmd := &cobra.Command{
		Use:   "calibrate",
		Short: "search for the amplitude maximizing excited population",
		RunE:  runCalibrate,
	}
	addPulseFlags(calibrateCmd)
	calibrateCmd.Flags().Float64Var(&calibFrom, "from", 0.5, "search interval start")
	calibrateCmd.Flags().Float64Var(&calibTo, "to", 1.5, "search interval end")
	calibrateCmd.Flags().IntVar(&calibRounds, "rounds", 6, "refinement rounds")
	calibrateCmd.Flags().IntVar(&calibPoints, "points", 9, "grid points per round")

	gradCmd := &cobra.Command{
		Use:   "grad",
		Short: "finite-difference gradient of population w.r.t. amp and width",
		RunE:  runGrad,
	}
	addPulseFlags(gradCmd)
	gradCmd.Flags().Float64Var(&gradStep, "step", transform.DefaultStep, "finite difference step")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "animate a pulse trajectory in the terminal",
		RunE:  runLive,
	}
	addPulseFlags(liveCmd)

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&exportFormat, "format", "json", "export format: json, csv or svg")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "output path (default stdout for json)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "frequency analysis of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-12s amp=%.2f width=%.1f rabi=%.3f duration=%.0f\n",
					name, p.Pulse.Amp, p.Pulse.Width, p.Qubit.Rabi, p.Qubit.Duration)
			}
			return nil
		},
	}

	rootCmd.AddCommand(runCmd, sweepCmd, calibrateCmd, gradCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addPulseFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&freq, "freq", config.DefaultFreq, "qubit frequency")
	cmd.Flags().Float64Var(&rabi, "rabi", config.DefaultRabi, "rabi rate")
	cmd.Flags().Float64Var(&duration, "time", config.DefaultDuration, "pulse duration")
	cmd.Flags().Float64Var(&amp, "amp", config.DefaultAmp, "pulse amplitude")
	cmd.Flags().Float64Var(&width, "width", config.DefaultWidth, "gaussian width")
	cmd.Flags().StringVar(&method, "method", config.DefaultMethod, "ODE method")
	cmd.Flags().Float64Var(&absTol, "abs-tol", config.DefaultAbsTol, "absolute tolerance")
	cmd.Flags().Float64Var(&relTol, "rel-tol", config.DefaultRelTol, "relative tolerance")
	cmd.Flags().IntVar(&points, "points", config.DefaultPoints, "trajectory grid points")
}

// loadConfig resolves preset, config file and flags, in increasing
// priority.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()

	if preset != "" {
		p := config.GetPreset(preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	if cmd.Flags().Changed("freq") {
		cfg.Qubit.Freq = freq
	}
	if cmd.Flags().Changed("rabi") {
		cfg.Qubit.Rabi = rabi
	}
	if cmd.Flags().Changed("time") {
		cfg.Qubit.Duration = duration
	}
	if cmd.Flags().Changed("amp") {
		cfg.Pulse.Amp = amp
	}
	if cmd.Flags().Changed("width") {
		cfg.Pulse.Width = width
	}
	if cmd.Flags().Changed("method") {
		cfg.Solver.Method = method
	}
	if cmd.Flags().Changed("abs-tol") {
		cfg.Solver.AbsTol = absTol
	}
	if cmd.Flags().Changed("rel-tol") {
		cfg.Solver.RelTol = relTol
	}
	if cmd.Flags().Changed("points") {
		cfg.Solver.Points = points
	}

	return cfg, nil
}

func newEvaluator(cfg *config.Config) (*sim.Evaluator, error) {
	return sim.New(sim.Config{
		Freq:     cfg.Qubit.Freq,
		Rabi:     cfg.Qubit.Rabi,
		Duration: cfg.Qubit.Duration,
		Method:   cfg.Solver.Method,
		AbsTol:   cfg.Solver.AbsTol,
		RelTol:   cfg.Solver.RelTol,
		Points:   cfg.Solver.Points,
	})
}

func runPulse(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	p := sim.PulseParams{Amp: cfg.Pulse.Amp, Width: cfg.Pulse.Width}

	start := time.Now()
	sol, err := ev.Trajectory(context.Background(), p, ev.Grid())
	if err != nil {
		return err
	}
	elapsed := time.Since(start)
	slog.Debug("simulation complete", "steps", sol.Steps, "elapsed", elapsed)

	pops := sim.ExcitedPopulations(sol)
	final := pops[len(pops)-1]

	graph := asciigraph.Plot(pops,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("excited population vs time"),
	)
	fmt.Println(graph)
	fmt.Println()
	fmt.Printf("amp: %.4f  width: %.2f\n", p.Amp, p.Width)
	fmt.Printf("final population: %.6f\n", final)

	if noSave {
		return nil
	}
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runID, err := st.SaveRun(context.Background(), store.RunMeta{
		Freq:       cfg.Qubit.Freq,
		Rabi:       cfg.Qubit.Rabi,
		Duration:   cfg.Qubit.Duration,
		Amp:        p.Amp,
		Width:      p.Width,
		Method:     cfg.Solver.Method,
		Population: final,
	}, sol.Times, pops)
	if err != nil {
		return err
	}
	fmt.Printf("run id: %d\n", runID)
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}

	if sweepSteps < 2 {
		return fmt.Errorf("need at least 2 sweep steps")
	}
	amps := calib.Range(sweepFrom, sweepTo, sweepSteps)

	start := time.Now()
	results, err := sim.ParallelSweep(context.Background(), ev, cfg.Pulse.Width, amps)
	if err != nil {
		return err
	}
	slog.Debug("sweep complete", "points", len(results), "elapsed", time.Since(start))

	pops := make([]float64, len(results))
	best := results[0]
	for i, r := range results {
		pops[i] = r.Population
		if r.Population > best.Population {
			best = r
		}
	}

	graph := asciigraph.Plot(pops,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("final population, amp %.2f to %.2f", sweepFrom, sweepTo)),
	)
	fmt.Println(graph)
	fmt.Println()
	fmt.Printf("best amp: %.4f  population: %.6f\n", best.Amp, best.Population)
	return nil
}

func runCalibrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}

	fn := transform.Compile(ev.Func(context.Background())).Func()

	start := time.Now()
	bestAmp, bestPop, err := calib.Maximize(context.Background(), fn, cfg.Pulse.Width,
		calibFrom, calibTo, calib.Options{Rounds: calibRounds, Points: calibPoints})
	if err != nil {
		return err
	}
	slog.Debug("calibration complete", "elapsed", time.Since(start))

	grad, err := transform.Gradient(fn)([]float64{bestAmp, cfg.Pulse.Width})
	if err != nil {
		return err
	}

	fmt.Printf("calibrated amp: %.6f\n", bestAmp)
	fmt.Printf("population: %.6f\n", bestPop)
	fmt.Printf("dP/damp at optimum: %+.2e\n", grad[0])
	return nil
}

func runGrad(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}

	fn := transform.Compile(ev.Func(context.Background())).Func()
	grad, err := transform.GradientStep(fn, gradStep)([]float64{cfg.Pulse.Amp, cfg.Pulse.Width})
	if err != nil {
		return err
	}

	fmt.Printf("amp: %.4f  width: %.2f\n", cfg.Pulse.Amp, cfg.Pulse.Width)
	fmt.Printf("dP/damp:   %+.6e\n", grad[0])
	fmt.Printf("dP/dwidth: %+.6e\n", grad[1])
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ev, err := newEvaluator(cfg)
	if err != nil {
		return err
	}
	p := sim.PulseParams{Amp: cfg.Pulse.Amp, Width: cfg.Pulse.Width}

	sol, err := ev.Trajectory(context.Background(), p, ev.Grid())
	if err != nil {
		return err
	}

	return tui.Run(tui.Playback{
		Title:  fmt.Sprintf("pulse amp=%.2f width=%.1f", p.Amp, p.Width),
		Times:  sol.Times,
		States: sol.States,
	})
}

func listRuns(cmd *cobra.Command, args []string) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	runs, err := st.ListRuns(context.Background())
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tFREQ\tRABI\tAMP\tWIDTH\tMETHOD\tPOPULATION")
	for _, run := range runs {
		fmt.Fprintf(w, "%d\t%s\t%.2f\t%.3f\t%.3f\t%.1f\t%s\t%.6f\n",
			run.ID,
			run.Timestamp.Local().Format("2006-01-02 15:04:05"),
			run.Freq,
			run.Rabi,
			run.Amp,
			run.Width,
			run.Method,
			run.Population,
		)
	}
	return w.Flush()
}

func parseRunID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid run id: %s", arg)
	}
	return id, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.LoadRun(context.Background(), runID)
	if err != nil {
		return err
	}
	times, pops, err := st.LoadTrajectory(context.Background(), runID)
	if err != nil {
		return err
	}
	if len(pops) == 0 {
		return fmt.Errorf("no trajectory data for run %d", runID)
	}

	fmt.Printf("run: %d  amp: %.4f  width: %.2f  method: %s\n\n",
		meta.ID, meta.Amp, meta.Width, meta.Method)

	graph := asciigraph.Plot(pops,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption(fmt.Sprintf("excited population, t=0 to %.0f", times[len(times)-1])),
	)
	fmt.Println(graph)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.LoadRun(context.Background(), runID)
	if err != nil {
		return err
	}
	times, pops, err := st.LoadTrajectory(context.Background(), runID)
	if err != nil {
		return err
	}
	if len(pops) < 4 {
		return fmt.Errorf("run %d has too few samples to analyze", runID)
	}

	fmt.Printf("run: %d  rabi: %.3f  amp: %.4f\n\n", meta.ID, meta.Rabi, meta.Amp)

	ps := analysis.PowerSpectrum(pops)
	plotData := ps
	if len(ps) > 32 {
		plotData = ps[:len(ps)/4]
	}
	graph := asciigraph.Plot(plotData,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("population power spectrum"),
	)
	fmt.Println(graph)
	fmt.Println()

	f := analysis.DominantFreq(times, pops)
	fmt.Printf("dominant frequency: %.4f\n", f)
	if f > 0 {
		fmt.Printf("period: %.2f\n", 1.0/f)
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID, err := parseRunID(args[0])
	if err != nil {
		return err
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer st.Close()

	meta, err := st.LoadRun(context.Background(), runID)
	if err != nil {
		return err
	}
	times, pops, err := st.LoadTrajectory(context.Background(), runID)
	if err != nil {
		return err
	}

	switch exportFormat {
	case "json":
		if exportOut == "" {
			return store.ExportJSONStdout(meta, times, pops)
		}
		return store.ExportJSON(exportOut, meta, times, pops)
	case "csv":
		if exportOut == "" {
			exportOut = fmt.Sprintf("run_%d.csv", runID)
		}
		err = store.ExportCSV(exportOut, times, pops)
	case "svg":
		if exportOut == "" {
			exportOut = fmt.Sprintf("run_%d.svg", runID)
		}
		err = store.ExportSVG(exportOut, times, pops, 800, 400)
	default:
		return fmt.Errorf("unknown format: %s", exportFormat)
	}
	if err != nil {
		return err
	}
	fmt.Printf("exported to %s\n", exportOut)
	return nil
}
