package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"gonum.org/v1/plot"

	"github.com/san-kum/statmech/internal/analysis"
	"github.com/san-kum/statmech/internal/automation"
	"github.com/san-kum/statmech/internal/config"
	"github.com/san-kum/statmech/internal/experiment"
	"github.com/san-kum/statmech/internal/export"
	"github.com/san-kum/statmech/internal/lattice"
	"github.com/san-kum/statmech/internal/optim"
	"github.com/san-kum/statmech/internal/sim"
	"github.com/san-kum/statmech/internal/spin"
	"github.com/san-kum/statmech/internal/storage"
	"github.com/san-kum/statmech/internal/tui"
	"github.com/san-kum/statmech/internal/viz"
	"github.com/san-kum/statmech/internal/wanglandau"
)

var (
	dataDir  string
	logLevel string
	logger   *log.Logger

	configFile  string
	preset      string
	seed        int64
	steps       int
	warmup      int
	sampleEvery int
	// spin models
	temperature float64
	size        int
	q           int
	coupling    float64
	field       float64
	dynamics    string
	topology    string
	// hard disks
	disks   int
	box     float64
	crystal bool

	watch     bool
	frameRate int
	runs      int

	outPath    string
	format     string
	seriesList []string

	scanFrom, scanTo   float64
	scanPoints         int
	wlFrom, wlTo       float64
	wlPoints           int
	sweepMin, sweepMax float64
	sweepPoints        int
	scanSweeps         int
	scanWarmup         int
	useWolff           bool

	blocks       int
	autocorrSpan int

	paramName  string
	gridSpecs  []string
	metricName string
	maximize   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "statmech",
		Short: "statistical mechanics simulation lab",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := log.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logger = log.NewWithOptions(os.Stderr, log.Options{
				Prefix:          "statmech",
				Level:           level,
				ReportTimestamp: true,
			})
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// default to the preset picker when no command is given
			return viz.RunInteractive()
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".statmech", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "run a simulation and store its series",
		Args:  cobra.ExactArgs(1),
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().BoolVar(&watch, "watch", false, "draw ANSI frames while running")
	runCmd.Flags().IntVar(&frameRate, "fps", 10, "frame rate for --watch")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot stored series in the terminal",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&seriesList, "series", nil, "series to plot (default all)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data as json or csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVar(&format, "format", "json", "json or csv")
	exportCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default stdout)")

	figureCmd := &cobra.Command{
		Use:   "figure [run_id]",
		Short: "render stored series as a png or svg figure",
		Args:  cobra.ExactArgs(1),
		RunE:  figureRun,
	}
	figureCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, .png or .svg (default <run_id>.png)")
	figureCmd.Flags().StringSliceVar(&seriesList, "series", nil, "series to draw (default all)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [model]",
		Short: "run a simulation and draw its final configuration",
		Args:  cobra.ExactArgs(1),
		RunE:  snapshotModel,
	}
	addModelFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file, .png or .svg (default <model>.png)")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list available presets for a model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for model: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "run a simulation in the interactive terminal view",
		Args:  cobra.ExactArgs(1),
		RunE:  runLive,
	}
	addModelFlags(liveCmd)

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "error bars, autocorrelation and spectrum of stored series",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&blocks, "blocks", 10, "number of blocks for the blocking error")
	analyzeCmd.Flags().IntVar(&autocorrSpan, "depth", 100, "autocorrelation window in samples")

	scanCmd := &cobra.Command{
		Use:   "scan",
		Short: "anneal a spin model through a temperature range",
		RunE:  scanTemperature,
	}
	addModelFlags(scanCmd)
	scanCmd.Flags().Float64Var(&scanFrom, "from", 4, "start temperature")
	scanCmd.Flags().Float64Var(&scanTo, "to", 1, "end temperature")
	scanCmd.Flags().IntVar(&scanPoints, "points", 16, "number of temperatures")
	scanCmd.Flags().IntVar(&scanSweeps, "sweeps", 2000, "measurement steps per temperature")
	scanCmd.Flags().IntVar(&scanWarmup, "equilibrate", 500, "equilibration steps per temperature")
	scanCmd.Flags().BoolVar(&useWolff, "wolff", false, "use Wolff cluster updates")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble [model]",
		Short: "run independent seeds concurrently and average their metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  runEnsemble,
	}
	addModelFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&runs, "runs", 4, "number of independent runs")

	wlCmd := &cobra.Command{
		Use:   "wanglandau",
		Short: "estimate the Ising density of states and its thermodynamics",
		RunE:  runWangLandau,
	}
	addModelFlags(wlCmd)
	wlCmd.Flags().Float64Var(&wlFrom, "from", 1, "lowest temperature of the table")
	wlCmd.Flags().Float64Var(&wlTo, "to", 4, "highest temperature of the table")
	wlCmd.Flags().IntVar(&wlPoints, "points", 13, "rows in the table")

	benchCmd := &cobra.Command{
		Use:   "bench [model]",
		Short: "compare Metropolis and Wolff dynamics on a spin model",
		Args:  cobra.ExactArgs(1),
		RunE:  benchDynamics,
	}
	addModelFlags(benchCmd)

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run the steps of a yaml scenario in order",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [model]",
		Short: "run a model across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addModelFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "param", "spin.t", "parameter: "+strings.Join(config.ParamNames(), ", "))
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 1.5, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 3.5, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 9, "number of values")
	sweepCmd.Flags().StringSliceVar(&seriesList, "show", nil, "summary or metric names to print (default all)")

	optimizeCmd := &cobra.Command{
		Use:   "optimize [model]",
		Short: "grid search for the parameters that extremise a metric",
		Args:  cobra.ExactArgs(1),
		RunE:  runOptimize,
	}
	addModelFlags(optimizeCmd)
	optimizeCmd.Flags().StringArrayVar(&gridSpecs, "grid", nil, "name=v1,v2,... (repeatable)")
	optimizeCmd.Flags().StringVar(&metricName, "metric", "specific_heat", "summary or metric value to optimise")
	optimizeCmd.Flags().BoolVar(&maximize, "max", false, "maximise instead of minimise")

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, figureCmd, snapshotCmd, presetsCmd,
		liveCmd, analyzeCmd, scanCmd, ensembleCmd, wlCmd, benchCmd, scenarioCmd, sweepCmd, optimizeCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml)")
	f.StringVar(&preset, "preset", "", "use preset configuration")
	f.Int64Var(&seed, "seed", 1, "random seed")
	f.IntVar(&steps, "steps", config.DefaultSteps, "measured steps")
	f.IntVar(&warmup, "warmup", config.DefaultWarmup, "discarded steps before measuring")
	f.IntVar(&sampleEvery, "sample-every", config.DefaultSampleEvery, "steps between samples")
	f.Float64VarP(&temperature, "temp", "T", config.DefaultT, "temperature")
	f.IntVarP(&size, "size", "L", config.DefaultL, "linear lattice size")
	f.IntVar(&q, "q", 3, "Potts states")
	f.Float64Var(&coupling, "j", 1, "coupling J (negative for antiferromagnets)")
	f.Float64Var(&field, "h", 0, "external field")
	f.StringVar(&dynamics, "dynamics", "metropolis", "metropolis or wolff")
	f.StringVar(&topology, "topology", "square", "lattice: "+strings.Join(lattice.Names(), ", "))
	f.IntVar(&disks, "disks", config.DefaultDisks, "number of hard disks")
	f.Float64Var(&box, "box", config.DefaultBox, "side of the hard-disk box")
	f.BoolVar(&crystal, "crystal", false, "start the disks on a triangular lattice")
}

// buildConfig layers defaults, a preset or config file, then explicitly set
// flags.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	cfg.Model = model

	if preset != "" {
		p := config.GetPreset(model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(model))
		}
		cfg = p
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Model == "" {
			cfg.Model = model
		}
	}
	if cfg.Model != model {
		return nil, fmt.Errorf("config is for model %q, not %q", cfg.Model, model)
	}

	f := cmd.Flags()
	if f.Changed("seed") {
		cfg.Seed = seed
	}
	if f.Changed("steps") {
		cfg.Steps = steps
	}
	if f.Changed("warmup") {
		cfg.Warmup = warmup
	}
	if f.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if f.Changed("size") {
		cfg.Spin.Lx, cfg.Spin.Ly = size, size
		cfg.Percolation.L = size
		cfg.WangLandau.L = size
	}
	if f.Changed("temp") {
		cfg.Spin.T = temperature
		cfg.HardDisk.T = temperature
	}
	if f.Changed("q") {
		cfg.Spin.Q = q
	}
	if f.Changed("j") {
		cfg.Spin.J = coupling
	}
	if f.Changed("h") {
		cfg.Spin.H = field
	}
	if f.Changed("dynamics") {
		cfg.Spin.Dynamics = dynamics
	}
	if f.Changed("topology") {
		cfg.Spin.Topology = topology
	}
	if cfg.Spin.Topology == lattice.Chain.Name {
		cfg.Spin.Ly = 1
	}
	if f.Changed("disks") {
		cfg.HardDisk.N = disks
	}
	if f.Changed("box") {
		cfg.HardDisk.Lx, cfg.HardDisk.Ly = box, box
	}
	if f.Changed("crystal") {
		cfg.HardDisk.Crystal = crystal
	}
	if model == "potts" && preset == "" && configFile == "" {
		cfg.Spin.Q = q
	}
	return cfg, cfg.Validate()
}

// signalContext cancels on Ctrl-C so long runs still return partial results.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	if watch {
		renderer := tui.NewLiveRenderer(os.Stdout, exp.GetSimulator().Engine(), frameRate)
		renderer.Start()
		defer renderer.Stop()
		exp.GetSimulator().AddObserver(renderer)
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "model", cfg.Model, "steps", cfg.Steps, "seed", cfg.Seed)
	result, err := exp.Run(ctx)
	if err != nil {
		if result == nil || ctx.Err() == nil {
			return err
		}
		logger.Warn("interrupted, keeping partial run", "steps", result.StepsTaken)
	}

	runID, err := st.Save(cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("samples: %d\n", len(result.Samples))
	printValues("summary", result.Summary)
	printValues("metrics", result.Metrics)
	return nil
}

func printValues(title string, values map[string]float64) {
	if len(values) == 0 {
		return
	}
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	fmt.Printf("\n%s:\n", title)
	for _, k := range keys {
		fmt.Printf("  %-26s %.6g\n", k, values[k])
	}
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tMODEL\tTIME\tSEED\tSTEPS\tSAMPLES")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Model,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Seed,
			run.Steps,
			run.Samples,
		)
	}

	return w.Flush()
}

// selectSeries returns the requested series, or all of them.
func selectSeries(result *sim.Result) ([]string, error) {
	if len(seriesList) == 0 {
		return result.Series, nil
	}
	for _, name := range seriesList {
		if result.Column(name) == nil {
			return nil, fmt.Errorf("unknown series %q (have %v)", name, result.Series)
		}
	}
	return seriesList, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(result.Samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s\n", meta.Model)
	fmt.Printf("samples: %d\n\n", len(result.Samples))

	names, err := selectSeries(result)
	if err != nil {
		return err
	}
	for _, name := range names {
		fmt.Println(export.Chart(result.Column(name), name, 10, 80))
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	result, err := st.LoadSeries(args[0])
	if err != nil {
		return err
	}
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result.Summary, result.Metrics = meta.Summary, meta.Metrics

	out := os.Stdout
	if outPath != "" {
		f, err := os.Create(outPath)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}

	switch format {
	case "json":
		return export.JSON(out, result)
	case "csv":
		w := csv.NewWriter(out)
		if err := w.Write(append([]string{"step"}, result.Series...)); err != nil {
			return err
		}
		for i, row := range result.Samples {
			rec := []string{strconv.Itoa(result.Steps[i])}
			for _, v := range row {
				rec = append(rec, strconv.FormatFloat(v, 'g', -1, 64))
			}
			if err := w.Write(rec); err != nil {
				return err
			}
		}
		w.Flush()
		return w.Error()
	}
	return fmt.Errorf("unknown format %q (json or csv)", format)
}

func figureRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	result, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	names, err := selectSeries(result)
	if err != nil {
		return err
	}
	p, err := export.SeriesPlot(result, names...)
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = runID + ".png"
	}
	if err := export.Save(p, path); err != nil {
		return err
	}
	fmt.Printf("figure written to %s\n", path)
	return nil
}

func snapshotModel(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	exp := experiment.New(cfg, experiment.WithLogger(logger))
	if err := exp.Setup(); err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()
	if _, err := exp.Run(ctx); err != nil && ctx.Err() == nil {
		return err
	}

	p, err := snapshotPlot(exp.GetSimulator().Engine())
	if err != nil {
		return err
	}
	path := outPath
	if path == "" {
		path = cfg.Model + ".png"
	}
	if err := export.Save(p, path); err != nil {
		return err
	}
	fmt.Printf("snapshot written to %s\n", path)
	return nil
}

// snapshotPlot draws spins and percolation sites as a heat map and disks as
// circles. Percolation cells are -1 empty, 1 occupied and 2 spanning.
func snapshotPlot(engine sim.Engine) (*plot.Plot, error) {
	switch e := engine.(type) {
	case *experiment.SpinEngine:
		lx, ly := e.Model().Size()
		return export.LatticePlot(e.Model().Snapshot(), lx, ly), nil
	case *experiment.PercolationEngine:
		p := e.Percolation()
		cells := make([]int, p.N())
		for s, occ := range p.Occupancy() {
			switch {
			case !occ:
				cells[s] = -1
			case p.Spanning(s):
				cells[s] = 2
			default:
				cells[s] = 1
			}
		}
		return export.LatticePlot(cells, p.L(), p.L()), nil
	case *experiment.HardDiskEngine:
		x, y := e.Gas().Positions()
		lx, ly := e.Gas().Box()
		return export.DiskPlot(x, y, lx, ly)
	}
	return nil, fmt.Errorf("no snapshot for model %s", engine.Name())
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	engine, err := experiment.NewRegistry().GetModel(cfg.Model, cfg, cfg.Seed, logger)
	if err != nil {
		return err
	}
	return viz.Run(engine, cfg.Model)
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	result, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(result.Samples) < 2 {
		return fmt.Errorf("need at least two samples, have %d", len(result.Samples))
	}

	fmt.Printf("analysis: %s\n", meta.ID)
	fmt.Printf("model: %s\n\n", meta.Model)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tN\tMEAN\tSTDDEV\tNAIVE_ERR\tBLOCK_ERR\tTAU")
	for _, name := range result.Series {
		s := analysis.Summarize(name, result.Column(name), blocks, autocorrSpan)
		fmt.Fprintf(w, "%s\t%d\t%.6g\t%.4g\t%.3g\t%.3g\t%.3g\n",
			s.Name, s.N, s.Mean, s.StdDev, s.NaiveErr, s.BlockErr, s.Tau)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	// spectrum of the first series, in cycles per step
	name := result.Series[0]
	spectrum := analysis.PowerSpectrum(result.Column(name))
	half := spectrum[:len(spectrum)/2]
	if len(half) < 2 {
		return nil
	}
	fmt.Println()
	fmt.Println(export.Chart(half, "power spectrum: "+name, 8, 60))

	peak := 1
	for i := 2; i < len(half); i++ {
		if half[i] > half[peak] {
			peak = i
		}
	}
	spacing := float64(result.Steps[1] - result.Steps[0])
	freq := float64(peak) / (float64(len(spectrum)) * spacing)
	fmt.Printf("\ndominant frequency: %.4g per step\n", freq)
	fmt.Printf("period: %.4g steps\n", 1/freq)
	return nil
}

func scanTemperature(cmd *cobra.Command, args []string) error {
	model := "ising"
	if cmd.Flags().Changed("q") {
		model = "potts"
	}
	cfg, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}
	p, err := experiment.SpinParams(cfg.Spin, cfg.Seed)
	if err != nil {
		return err
	}
	if model == "ising" {
		p.Q = 2
	}
	p.T = scanFrom
	m, err := spin.New(p)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	pts, err := analysis.TemperatureScan(ctx, m, analysis.ScanConfig{
		TStart: scanFrom,
		TEnd:   scanTo,
		Points: scanPoints,
		Warmup: scanWarmup,
		Sweeps: scanSweeps,
		Wolff:  useWolff,
	})
	if err != nil && len(pts) == 0 {
		return err
	}
	logger.Info("scan finished", "points", len(pts), "elapsed", time.Since(start).Round(time.Millisecond))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tE/N\t|M|/N\tC\tCHI\tACCEPT")
	heat := make([]float64, len(pts))
	for i, pt := range pts {
		heat[i] = pt.SpecificHeat
		fmt.Fprintf(w, "%.4f\t%.5f\t%.5f\t%.4f\t%.4f\t%.3f\n",
			pt.T, pt.Energy, pt.AbsMag, pt.SpecificHeat, pt.Susceptibility, pt.Acceptance)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if peak, ok := analysis.Peak(pts); ok {
		fmt.Printf("\nspecific heat peak: C=%.4f at T=%.4f (exact Tc=%.4f)\n",
			peak.SpecificHeat, peak.T, spin.CriticalTemperature(p))
	}
	if len(heat) > 1 {
		fmt.Println()
		fmt.Println(export.Chart(heat, "specific heat along the scan", 8, 60))
	}
	return err
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	exp := experiment.New(cfg, experiment.WithLogger(logger))
	results, err := exp.Ensemble(ctx, runs)
	if err != nil {
		return err
	}

	names := make(map[string]bool)
	for _, r := range results {
		for k := range r.Summary {
			names[k] = true
		}
		for k := range r.Metrics {
			names[k] = true
		}
	}
	keys := make([]string, 0, len(names))
	for k := range names {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	fmt.Printf("%s ensemble: %d runs from seed %d\n\n", cfg.Model, runs, cfg.Seed)
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tMEAN\tSTDERR")
	for _, k := range keys {
		mean, stderr := sim.Aggregate(results, k)
		fmt.Fprintf(w, "%s\t%.6g\t%.3g\n", k, mean, stderr)
	}
	return w.Flush()
}

func runWangLandau(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, "wanglandau")
	if err != nil {
		return err
	}
	wl := cfg.WangLandau
	s, err := wanglandau.New(wanglandau.Params{
		L:             wl.L,
		FlatThreshold: wl.FlatThreshold,
		FinalLnF:      wl.FinalLnF,
		CheckEvery:    wl.CheckEvery,
		MaxSweeps:     wl.MaxSweeps,
		Seed:          cfg.Seed,
	}, wanglandau.WithLogger(logger))
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	start := time.Now()
	if err := s.Run(ctx); err != nil {
		if !errors.Is(err, wanglandau.ErrNotConverged) {
			return err
		}
		logger.Warn("density of states not converged", "lnf", s.LnF(), "sweeps", s.Sweeps())
	}
	logger.Info("density of states ready", "sweeps", s.Sweeps(), "iterations", s.Iterations(),
		"elapsed", time.Since(start).Round(time.Millisecond))

	levels := s.Levels()
	lnG := make([]float64, len(levels))
	for i, l := range levels {
		lnG[i] = l.LnG
	}
	fmt.Println(export.Chart(lnG, fmt.Sprintf("ln g(E), %dx%d Ising", wl.L, wl.L), 10, 60))
	fmt.Println()

	n := float64(s.N())
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "T\tE/N\tC/N\tF/N")
	for i := 0; i < wlPoints; i++ {
		t := wlFrom
		if wlPoints > 1 {
			t += (wlTo - wlFrom) * float64(i) / float64(wlPoints-1)
		}
		fmt.Fprintf(w, "%.4f\t%.5f\t%.5f\t%.5f\n", t,
			wanglandau.MeanEnergy(levels, t)/n,
			wanglandau.HeatCapacity(levels, t)/n,
			wanglandau.FreeEnergy(levels, t)/n)
	}
	return w.Flush()
}

func benchDynamics(cmd *cobra.Command, args []string) error {
	model := args[0]
	if model != "ising" && model != "potts" {
		return fmt.Errorf("bench compares spin dynamics, got model %s", model)
	}
	base, err := buildConfig(cmd, model)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s %dx%d at T=%.4f (%d steps)\n\n", model, base.Spin.Lx, base.Spin.Ly, base.Spin.T, base.Steps)
	fmt.Printf("%-12s  %-12s  %-12s  %-12s  %-12s\n", "dynamics", "mean_energy", "err_energy", "tau_energy", "time_ms")
	fmt.Println(strings.Repeat("-", 66))

	for _, d := range []string{"metropolis", "wolff"} {
		cfg := *base
		cfg.Spin.Dynamics = d
		exp := experiment.New(&cfg, experiment.WithLogger(logger))
		if err := exp.Setup(); err != nil {
			fmt.Printf("%-12s  error: %v\n", d, err)
			continue
		}
		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			fmt.Printf("%-12s  error: %v\n", d, err)
			continue
		}
		elapsed := time.Since(start)
		fmt.Printf("%-12s  %12.6f  %12.2e  %12.2f  %12.2f\n", d,
			result.Metrics["mean_energy"], result.Metrics["err_energy"], result.Metrics["tau_energy"],
			float64(elapsed.Microseconds())/1000)
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	scenario, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	r := automation.NewRunner(experiment.NewRegistry(), st, logger)
	results, err := r.RunScenario(ctx, scenario)
	for i, res := range results {
		id := res.RunID
		if id == "" {
			id = "(not saved)"
		}
		fmt.Printf("%d  %-12s %-10s %s\n", i+1, res.Step.Model, res.Step.Preset, id)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	ctx, cancel := signalContext()
	defer cancel()

	r := automation.NewRunner(experiment.NewRegistry(), nil, logger)
	results, err := r.RunSweep(ctx, &automation.ParameterSweep{
		Base:      base,
		ParamName: paramName,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepPoints,
	})
	if len(results) == 0 {
		return err
	}

	names := seriesList
	if len(names) == 0 {
		for k := range results[0].Summary {
			names = append(names, k)
		}
		for k := range results[0].Metrics {
			names = append(names, k)
		}
		sort.Strings(names)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(paramName)+"\t"+strings.Join(names, "\t"))
	for _, res := range results {
		row := []string{strconv.FormatFloat(res.ParamValue, 'g', 6, 64)}
		for _, name := range names {
			v, _ := res.Value(name)
			row = append(row, strconv.FormatFloat(v, 'g', 6, 64))
		}
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	return err
}

// parseGrid reads "name=v1,v2,..." specifications.
func parseGrid(specs []string) ([]string, [][]float64, error) {
	names := make([]string, 0, len(specs))
	ranges := make([][]float64, 0, len(specs))
	for _, spec := range specs {
		name, list, ok := strings.Cut(spec, "=")
		if !ok {
			return nil, nil, fmt.Errorf("grid %q: want name=v1,v2,...", spec)
		}
		var values []float64
		for _, f := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
			if err != nil {
				return nil, nil, fmt.Errorf("grid %q: %w", spec, err)
			}
			values = append(values, v)
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}
	return names, ranges, nil
}

func runOptimize(cmd *cobra.Command, args []string) error {
	base, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	if len(gridSpecs) == 0 {
		return fmt.Errorf("no --grid given")
	}
	names, ranges, err := parseGrid(gridSpecs)
	if err != nil {
		return err
	}
	g, err := optim.NewGridSearch(names, ranges)
	if err != nil {
		return err
	}
	g.Maximize = maximize

	ctx, cancel := signalContext()
	defer cancel()

	best, all, err := g.Search(ctx, optim.ConfigBuilder(base, experiment.WithLogger(logger)), metricName)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+metricName)
	for _, p := range all {
		row := make([]string, 0, len(names)+1)
		for _, n := range names {
			row = append(row, strconv.FormatFloat(p.Params[n], 'g', 6, 64))
		}
		row = append(row, strconv.FormatFloat(p.Value, 'g', 6, 64))
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Printf("\nbest %s = %.6g at", metricName, best.Value)
	for _, n := range names {
		fmt.Printf(" %s=%g", n, best.Params[n])
	}
	fmt.Println()
	return nil
}
