package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/rdsim/internal/analysis"
	"github.com/san-kum/rdsim/internal/automation"
	"github.com/san-kum/rdsim/internal/config"
	"github.com/san-kum/rdsim/internal/export"
	"github.com/san-kum/rdsim/internal/grayscott"
	"github.com/san-kum/rdsim/internal/metrics"
	"github.com/san-kum/rdsim/internal/sim"
	"github.com/san-kum/rdsim/internal/storage"
	"github.com/san-kum/rdsim/internal/viz"
)

var (
	dataDir    string
	configFile string

	width         int
	height        int
	feed          float64
	kill          float64
	dt            float64
	runSteps      int
	sampleEvery   int
	stepsPerFrame int
	seed          int64
	seeds         int
	workers       int
	preset        string
	colormap      string
	scale         int
	outDir        string

	gifPath string
	pngPath string

	// sweep grid
	fMin, fMax     float64
	kMin, kMax     float64
	fSteps, kSteps int
	sweepSize      int
	sweepSteps     int
	sweepSeed      int64
	parallel       int

	trials     int
	trialSteps int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "rdsim",
		Short: "gray-scott reaction-diffusion lab",
		RunE:  runLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rdsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (yaml)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and store it",
		RunE:  runSimulation,
	}
	addModelFlags(runCmd)
	runCmd.Flags().IntVar(&runSteps, "steps", 5000, "steps to simulate")
	runCmd.Flags().IntVar(&sampleEvery, "sample-every", 0, "steps between metric samples (0 = auto)")
	runCmd.Flags().StringVar(&gifPath, "gif", "", "record sampled frames to a gif")
	runCmd.Flags().StringVar(&pngPath, "png", "", "save the final V field as png")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive terminal viewer",
		RunE:  runLive,
	}
	addModelFlags(liveCmd)
	addModelFlags(rootCmd)
	for _, c := range []*cobra.Command{rootCmd, liveCmd} {
		c.Flags().IntVar(&stepsPerFrame, "steps-per-frame", config.DefaultStepsPerFrame, "steps per rendered frame")
		c.Flags().StringVar(&outDir, "out", ".", "directory for screenshots and recordings")
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list pattern presets",
		RunE:  listPresets,
	}

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run metrics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(dataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	spectrumCmd := &cobra.Command{
		Use:   "spectrum [run_id]",
		Short: "radial power spectrum of a run's final V field",
		Args:  cobra.ExactArgs(1),
		RunE:  spectrumRun,
	}

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}
	scenarioCmd.Flags().StringVar(&outDir, "out", ".", "directory for snapshots")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "sweep feed and kill rates over a grid",
		RunE:  runSweep,
	}
	sweepCmd.Flags().Float64Var(&fMin, "f-min", 0.01, "minimum feed rate")
	sweepCmd.Flags().Float64Var(&fMax, "f-max", 0.08, "maximum feed rate")
	sweepCmd.Flags().IntVar(&fSteps, "f-steps", 5, "feed grid points")
	sweepCmd.Flags().Float64Var(&kMin, "k-min", 0.045, "minimum kill rate")
	sweepCmd.Flags().Float64Var(&kMax, "k-max", 0.065, "maximum kill rate")
	sweepCmd.Flags().IntVar(&kSteps, "k-steps", 5, "kill grid points")
	sweepCmd.Flags().IntVar(&sweepSize, "size", 128, "grid width and height")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 3000, "steps per grid point")
	sweepCmd.Flags().Int64Var(&sweepSeed, "seed", 42, "random seed shared by every grid point")
	sweepCmd.Flags().IntVar(&parallel, "parallel", 0, "engines in flight (0 = GOMAXPROCS)")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "repeat one configuration under different seed layouts",
		RunE:  runEnsemble,
	}
	addModelFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&trialSteps, "steps", 3000, "steps per trial")
	ensembleCmd.Flags().IntVar(&trials, "trials", 8, "number of trials")
	ensembleCmd.Flags().IntVar(&parallel, "parallel", 0, "engines in flight (0 = GOMAXPROCS)")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, listCmd, plotCmd, exportCmd, spectrumCmd, scenarioCmd, sweepCmd, ensembleCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addModelFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().IntVar(&width, "width", def.Width, "grid width")
	cmd.Flags().IntVar(&height, "height", def.Height, "grid height")
	cmd.Flags().Float64Var(&feed, "feed", def.Feed, "feed rate f")
	cmd.Flags().Float64Var(&kill, "kill", def.Kill, "kill rate k")
	cmd.Flags().Float64Var(&dt, "dt", def.Dt, "timestep")
	cmd.Flags().Int64Var(&seed, "seed", time.Now().UnixNano(), "random seed")
	cmd.Flags().IntVar(&seeds, "seeds", def.Seeds, "initial V discs")
	cmd.Flags().IntVar(&workers, "workers", 0, "goroutines per step (0 = NumCPU)")
	cmd.Flags().StringVar(&preset, "preset", "", "pattern preset (id or name)")
	cmd.Flags().StringVar(&colormap, "colormap", def.Colormap, "colormap")
	cmd.Flags().IntVar(&scale, "scale", def.Scale, "pixels per cell in images")
}

// loadConfig starts from the config file, or the defaults, and applies
// only the flags set on the command line.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if configFile == "" || flags.Changed("width") {
		cfg.Width = width
	}
	if configFile == "" || flags.Changed("height") {
		cfg.Height = height
	}
	if configFile == "" || flags.Changed("feed") {
		cfg.Feed = feed
	}
	if configFile == "" || flags.Changed("kill") {
		cfg.Kill = kill
	}
	if configFile == "" || flags.Changed("dt") {
		cfg.Dt = dt
	}
	if configFile == "" || flags.Changed("seeds") {
		cfg.Seeds = seeds
	}
	if configFile == "" || flags.Changed("colormap") {
		cfg.Colormap = colormap
	}
	if configFile == "" || flags.Changed("scale") {
		cfg.Scale = scale
	}
	if cfg.Seed == 0 || flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("workers") {
		cfg.Workers = workers
	}
	if flags.Changed("preset") {
		cfg.Preset = preset
	}
	if f := flags.Lookup("steps-per-frame"); f != nil && (configFile == "" || f.Changed) {
		cfg.StepsPerFrame = stepsPerFrame
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newEngine(cfg *config.Config) (*grayscott.Engine, error) {
	return grayscott.New(cfg.EngineConfig(nil))
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	cm, err := export.Lookup(cfg.Colormap)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	s := sim.New(eng)
	for _, m := range metrics.Standard() {
		s.AddMetric(m)
	}
	var rec *export.GIFRecorder
	if gifPath != "" {
		rec = export.NewGIFRecorder(cm, cfg.Scale, 0)
		s.AddObserver(rec)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %dx%d gray-scott, f=%.4f k=%.4f, %d steps...\n",
		cfg.Width, cfg.Height, eng.Params().F, eng.Params().K, runSteps)
	start := time.Now()

	result, err := s.Run(ctx, sim.Config{Steps: runSteps, SampleEvery: sampleEvery})
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		fmt.Printf("stopped after %d steps: %v\n", result.StepsTaken, err)
	}
	elapsed := time.Since(start)

	final := eng.V()
	meta := storage.RunMetadata{
		Preset:     cfg.Preset,
		Seed:       cfg.Seed,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Steps:      result.StepsTaken,
		Wavelength: analysis.DominantWavelength(final),
		Metrics:    result.Metrics,
	}
	meta.SetParams(result.Params)

	runID, err := st.Save(meta, result, final)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v (%.0f steps/sec)\n", elapsed, float64(result.StepsTaken)/elapsed.Seconds())
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	if meta.Wavelength > 0 {
		fmt.Printf("dominant wavelength: %.2f cells\n", meta.Wavelength)
	}
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6f\n", name, result.Metrics[name])
	}

	if pngPath != "" {
		if err := export.SavePNG(pngPath, final, cm, cfg.Scale); err != nil {
			return err
		}
		fmt.Printf("\nsaved %s\n", pngPath)
	}
	if rec != nil {
		if err := rec.Save(gifPath); err != nil {
			return err
		}
		fmt.Printf("saved %s (%d frames)\n", gifPath, rec.Len())
	}
	return nil
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	eng, err := newEngine(cfg)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}
	return viz.Run(eng, viz.Options{
		StepsPerFrame: cfg.StepsPerFrame,
		Colormap:      cfg.Colormap,
		Scale:         cfg.Scale,
		OutDir:        outDir,
	})
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tF\tK\tPATTERN")
	for _, p := range config.ListPresets() {
		fmt.Fprintf(w, "%d\t%s\t%.3f\t%.3f\t%s\n", p.ID, config.PresetSlug(p.ID), p.F, p.K, p.Label)
	}
	return w.Flush()
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
	fmt.Fprintln(w, "ID\tTIME\tGRID\tF\tK\tSTEPS\tWAVELENGTH")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%dx%d\t%.4f\t%.4f\t%d\t%.2f\n",
			run.ID,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Width, run.Height,
			run.F,
			run.K,
			run.Steps,
			run.Wavelength,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	series, err := st.LoadSeries(runID)
	if err != nil {
		return err
	}
	if len(series.Steps) < 2 {
		return fmt.Errorf("not enough samples to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("f=%.4f k=%.4f grid=%dx%d\n", meta.F, meta.K, meta.Width, meta.Height)
	fmt.Printf("samples: %d\n\n", len(series.Steps))

	names := make([]string, 0, len(series.Values))
	for name := range series.Values {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		graph := asciigraph.Plot(series.Values[name],
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs step"),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	if mean, ok := series.Values["mean_v"]; ok {
		if period := analysis.DominantPeriod(mean); period > 0 {
			stride := series.Steps[1] - series.Steps[0]
			fmt.Printf("mean_v oscillation period: %.1f steps\n", period*float64(stride))
		}
	}
	return nil
}

func spectrumRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	field, err := st.LoadField(runID)
	if err != nil {
		return err
	}

	ps := analysis.RadialSpectrum(field)
	if len(ps.Power) < 2 {
		return fmt.Errorf("grid too small for a spectrum")
	}
	fmt.Printf("radial spectrum: %s\n\n", meta.ID)

	graph := asciigraph.Plot(ps.Power[1:],
		asciigraph.Height(15),
		asciigraph.Width(80),
		asciigraph.Caption("power vs wavenumber"),
	)
	fmt.Println(graph)
	fmt.Println()

	k := ps.Peak()
	if k == 0 {
		fmt.Println("no pattern: field is flat")
		return nil
	}
	fmt.Printf("peak wavenumber: %d\n", k)
	fmt.Printf("dominant wavelength: %.2f cells\n", ps.Wavelength(k))
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	if err := os.MkdirAll(outDir, 0755); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("scenario: %s\n", sc.Name)
	if sc.Description != "" {
		fmt.Printf("%s\n", sc.Description)
	}
	reports, err := automation.RunScenario(ctx, sc, outDir, os.Stdout)
	if err != nil {
		return err
	}

	fmt.Println()
	for _, r := range reports {
		switch {
		case r.Path != "":
			fmt.Printf("  %d %s: %s\n", r.Index, r.Do, r.Path)
		case r.Result != nil:
			mean, _ := r.Result.Last("mean_v")
			fmt.Printf("  %d %s: %d steps, mean_v=%.4f\n", r.Index, r.Do, r.Result.StepsTaken, mean)
		}
	}
	return nil
}

func runSweep(cmd *cobra.Command, args []string) error {
	sw := &automation.ParameterSweep{
		FMin: fMin, FMax: fMax, FSteps: fSteps,
		KMin: kMin, KMax: kMax, KSteps: kSteps,
		Width:    sweepSize,
		Height:   sweepSize,
		Steps:    sweepSteps,
		Seed:     sweepSeed,
		Seeds:    grayscott.DefaultSeeds,
		Parallel: parallel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %d x %d grid, %d steps each...\n", fSteps, kSteps, sweepSteps)
	start := time.Now()
	results, err := automation.RunSweep(ctx, sw)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "F\tK\tMEAN V\tCOVERAGE\tCONTRAST\tSATURATION\tWAVELENGTH")
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%.4f\t%.4f\t%.3f\t%.4f\t%.3f\t%.2f\n",
			r.F, r.K, r.MeanV, r.Coverage, r.Contrast, r.Saturation, r.Wavelength)
	}
	return w.Flush()
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	ec := &automation.EnsembleConfig{
		Base:      cfg,
		Steps:     trialSteps,
		NumTrials: trials,
		SeedStart: cfg.Seed,
		Parallel:  parallel,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %d trials of %d steps...\n", trials, trialSteps)
	results, err := automation.RunEnsemble(ctx, ec)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TRIAL\tSEED\tCOVERAGE\tMEAN V\tWAVELENGTH\tPATTERNED")
	for _, r := range results {
		fmt.Fprintf(w, "%d\t%d\t%.3f\t%.4f\t%.2f\t%v\n",
			r.TrialID, r.Seed, r.Coverage, r.MeanV, r.Wavelength, r.Patterned)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	stats := automation.Stats(results)
	fmt.Printf("\npatterned: %d, extinct: %d\n", stats.Patterned, stats.Extinct)
	fmt.Printf("coverage: %.3f ± %.3f\n", stats.CoverageMean, stats.CoverageStd)
	return nil
}
