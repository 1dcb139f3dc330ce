package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/odestep/internal/analysis"
	"github.com/san-kum/odestep/internal/config"
	"github.com/san-kum/odestep/internal/dynamo"
	"github.com/san-kum/odestep/internal/experiment"
	"github.com/san-kum/odestep/internal/integrators"
	"github.com/san-kum/odestep/internal/storage"
	"github.com/san-kum/odestep/internal/viz"
)

var (
	dataDir  string
	logLevel string
	log      *logrus.Logger

	// run configuration flags, applied over preset and config file
	method      string
	step        float64
	start       float64
	until       float64
	sampleEvery int
	velocity    float64
	position    float64
	stiffness   float64
	mass        float64
	damping     float64
	masses      int
	configFile  string
	preset      string

	output  string
	noSave  bool
	phase   bool
	outFile string

	h0       float64
	rungs    int
	span     float64
	limit    int
	perFrame int
)

var headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))

func main() {
	rootCmd := &cobra.Command{
		Use:   "odestep",
		Short: "fixed-step Runge-Kutta and Adams-Bashforth integrators",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			log, err = setupLogger(logLevel)
			return err
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".odestep", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run [model]",
		Short: "integrate a model and store the run",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVarP(&output, "output", "o", "", "also write x, position, velocity lines to this file (- for stdout)")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

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
	plotCmd.Flags().BoolVar(&phase, "phase", false, "draw the phase portrait instead of time series")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a stored run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVar(&outFile, "out", "-", "output file (- for stdout)")

	compareCmd := &cobra.Command{
		Use:   "compare [model] [method...]",
		Short: "run several methods on the same problem",
		Args:  cobra.MinimumNArgs(1),
		RunE:  compareMethods,
	}
	addRunFlags(compareCmd)
	compareCmd.Flags().IntVar(&limit, "parallel", 0, "methods run at once (0 = all)")

	convergeCmd := &cobra.Command{
		Use:   "converge [method...]",
		Short: "measure the observed order of accuracy on the oscillator",
		RunE:  measureConvergence,
	}
	convergeCmd.Flags().Float64Var(&h0, "h0", 0.02, "largest step size")
	convergeCmd.Flags().IntVar(&rungs, "rungs", 4, "number of step sizes, each half the previous")
	convergeCmd.Flags().Float64Var(&span, "span", 2, "integration interval")

	liveCmd := &cobra.Command{
		Use:   "live [model]",
		Short: "watch an integration in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&perFrame, "steps-per-frame", 20, "steps taken per frame")

	presetsCmd := &cobra.Command{
		Use:   "presets [model]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	methodsCmd := &cobra.Command{
		Use:   "methods",
		Short: "list integration methods",
		RunE:  listMethods,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportJSONCmd, compareCmd, convergeCmd, liveCmd, presetsCmd, methodsCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level string) (*logrus.Logger, error) {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05",
	})

	lvl, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logger.SetLevel(lvl)
	return logger, nil
}

func addRunFlags(cmd *cobra.Command) {
	def := config.DefaultConfig()
	cmd.Flags().StringVar(&method, "method", def.Method, "rk4, rk5, adams4 or adams5")
	cmd.Flags().Float64Var(&step, "step", def.Step, "step size")
	cmd.Flags().Float64Var(&start, "start", def.Start, "initial value of the independent variable")
	cmd.Flags().Float64Var(&until, "until", def.Until, "stop after the first step beyond this value")
	cmd.Flags().IntVar(&sampleEvery, "sample-every", def.SampleEvery, "record one sample every N steps")
	cmd.Flags().Float64Var(&velocity, "velocity", def.InitState.Velocity, "initial velocity")
	cmd.Flags().Float64Var(&position, "position", def.InitState.Position, "initial position")
	cmd.Flags().Float64Var(&stiffness, "stiffness", def.Params.Stiffness, "spring constant k")
	cmd.Flags().Float64Var(&mass, "mass", def.Params.Mass, "mass m")
	cmd.Flags().Float64Var(&damping, "damping", def.Params.Damping, "damping coefficient c")
	cmd.Flags().IntVar(&masses, "masses", def.Params.Masses, "number of masses (chain)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

// buildConfig layers defaults, preset, config file and changed flags, in
// that order.
func buildConfig(cmd *cobra.Command, model string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if model != "" {
		cfg.Model = model
	}

	if preset != "" {
		p := config.GetPreset(cfg.Model, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.Model))
		}
		cfg = p
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if model != "" {
			cfg.Model = model
		}
	}

	flags := cmd.Flags()
	if flags.Changed("method") {
		cfg.Method = method
	}
	if flags.Changed("step") {
		cfg.Step = step
	}
	if flags.Changed("start") {
		cfg.Start = start
	}
	if flags.Changed("until") {
		cfg.Until = until
	}
	if flags.Changed("sample-every") {
		cfg.SampleEvery = sampleEvery
	}
	if flags.Changed("velocity") {
		cfg.InitState.Velocity = velocity
	}
	if flags.Changed("position") {
		cfg.InitState.Position = position
	}
	if flags.Changed("stiffness") {
		cfg.Params.Stiffness = stiffness
	}
	if flags.Changed("mass") {
		cfg.Params.Mass = mass
	}
	if flags.Changed("damping") {
		cfg.Params.Damping = damping
	}
	if flags.Changed("masses") {
		cfg.Params.Masses = masses
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if log != nil && cfg.LogLevel != "" && !flags.Changed("log-level") {
		lvl, _ := logrus.ParseLevel(cfg.LogLevel)
		log.SetLevel(lvl)
	}
	return cfg, nil
}

func modelArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, modelArg(args))
	if err != nil {
		return err
	}

	registry := experiment.NewRegistry()
	exp, err := experiment.New(cfg, registry, log)
	if err != nil {
		return err
	}
	defer exp.Close()

	ctx, cancel := signalContext()
	defer cancel()

	log.WithFields(logrus.Fields{
		"model":  cfg.Model,
		"method": cfg.Method,
		"step":   cfg.Step,
		"until":  cfg.Until,
	}).Info("running simulation")
	began := time.Now()

	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(began)
	for _, e := range result.Errors {
		log.WithError(e).Warn("run stopped early")
	}

	dest := cfg.Output
	if cmd.Flags().Changed("output") {
		dest = output
	}
	if dest != "" {
		if err := writeTrajectory(dest, exp.System(), result); err != nil {
			return err
		}
	}

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(storage.RunMetadata{
			Model:  cfg.Model,
			Method: cfg.Method,
			Step:   cfg.Step,
			Start:  cfg.Start,
			Until:  cfg.Until,
			Params: exp.System().Params,
		}, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	fmt.Printf("steps: %d\n", result.StepsTaken)
	fmt.Printf("evaluations: %d\n", result.Evaluations)
	fmt.Println("\nmetrics:")
	for _, name := range sortedKeys(result.Metrics) {
		fmt.Printf("  %s: %.6e\n", name, result.Metrics[name])
	}
	return nil
}

func writeTrajectory(path string, sys *experiment.System, result *dynamo.Result) error {
	idx := storage.TrajectoryIndices{Position: sys.Position, Velocity: sys.Velocity}
	if path == "-" {
		return storage.WriteTrajectory(os.Stdout, idx, result.Times, result.States)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.WriteTrajectory(f, idx, result.Times, result.States); err != nil {
		return err
	}
	return f.Close()
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
	fmt.Fprintln(w, "ID\tMODEL\tMETHOD\tTIME\tSTEP\tUNTIL\tEVALS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%g\t%g\t%d\n",
			run.ID,
			run.Model,
			run.Method,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Step,
			run.Until,
			run.Evaluations,
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

	states, _, err := st.LoadStates(runID)
	if err != nil {
		return err
	}
	if len(states) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("model: %s (%s, h=%g)\n", meta.Model, meta.Method, meta.Step)
	fmt.Printf("samples: %d\n\n", len(states))

	if phase {
		xIdx, yIdx := 1, 0
		if meta.Model == config.ModelChain {
			xIdx, yIdx = 0, len(states[0])/2
		}
		p := analysis.NewPhasePortrait(states, xIdx, yIdx)
		if p == nil {
			return fmt.Errorf("state too short for a phase portrait")
		}
		fmt.Println(p.ASCII(80, 24))
		return nil
	}

	numVars := min(len(states[0]), 6)
	for varIdx := 0; varIdx < numVars; varIdx++ {
		data := make([]float64, len(states))
		for i := range states {
			if varIdx < len(states[i]) {
				data[i] = states[i][varIdx]
			}
		}

		caption := fmt.Sprintf("y%d vs x", varIdx)
		if meta.Model == config.ModelOscillator {
			switch varIdx {
			case 0:
				caption = "velocity"
			case 1:
				caption = "position"
			}
		}

		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	states, times, err := st.LoadStates(runID)
	if err != nil {
		return err
	}

	result := &dynamo.Result{
		States:      states,
		Times:       times,
		Metrics:     meta.Metrics,
		StepsTaken:  meta.StepsTaken,
		Evaluations: meta.Evaluations,
	}
	return storage.ExportJSON(outFile, storage.NewExportData(meta.Model, meta.Method, meta.Step, meta.Until, result))
}

func parseKinds(names []string) ([]integrators.Kind, error) {
	if len(names) == 0 {
		return integrators.Kinds(), nil
	}
	kinds := make([]integrators.Kind, 0, len(names))
	for _, name := range names {
		k, err := integrators.ParseKind(name)
		if err != nil {
			return nil, err
		}
		kinds = append(kinds, k)
	}
	return kinds, nil
}

func compareMethods(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args[0])
	if err != nil {
		return err
	}
	kinds, err := parseKinds(args[1:])
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()

	began := time.Now()
	out, err := experiment.Compare(ctx, cfg, kinds, limit, log)
	if err != nil {
		return err
	}

	fmt.Printf("comparing methods for %s (h=%g, until=%g) in %v\n\n", cfg.Model, cfg.Step, cfg.Until, time.Since(began))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, headerStyle.Render("METHOD")+"\tORDER\tSTEPS\tEVALS\tMAX ERROR\tENERGY DRIFT")
	for _, c := range out {
		maxErr := "n/a"
		if !math.IsNaN(c.MaxError) {
			maxErr = fmt.Sprintf("%.3e", c.MaxError)
		}
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%s\t%.3e\n",
			c.Kind, c.Kind.Order(), c.Result.StepsTaken, c.Evaluations, maxErr, c.EnergyDrift)
	}
	return w.Flush()
}

func measureConvergence(cmd *cobra.Command, args []string) error {
	kinds, err := parseKinds(args)
	if err != nil {
		return err
	}
	if rungs < 2 {
		return fmt.Errorf("need at least 2 rungs, got %d", rungs)
	}

	registry := experiment.NewRegistry()
	base := config.DefaultConfig()
	build := func(kind integrators.Kind, h float64) (dynamo.Stepper, dynamo.Reference, error) {
		cfg := *base
		cfg.Method = kind.String()
		cfg.Step = h
		sys, err := registry.Build(&cfg, log)
		if err != nil {
			return nil, nil, err
		}
		return sys.Stepper, sys.Exact, nil
	}

	ctx, cancel := signalContext()
	defer cancel()

	steps := analysis.Ladder(h0, rungs)
	for _, k := range kinds {
		c, err := analysis.MeasureConvergence(ctx, k, build, span, steps)
		if err != nil {
			return err
		}

		fmt.Println(headerStyle.Render(fmt.Sprintf("%s (order %d)", k, k.Order())))
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "H\tERROR\tEVALS\tOBSERVED")
		for i, h := range c.Steps {
			observed := ""
			if i > 0 {
				observed = formatOrder(c.Orders[i-1])
			}
			fmt.Fprintf(w, "%g\t%.3e\t%d\t%s\n", h, c.Errors[i], c.Evaluations[i], observed)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Printf("mean observed order: %s\n\n", formatOrder(c.MeanOrder()))
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, modelArg(args))
	if err != nil {
		return err
	}

	sys, err := experiment.NewRegistry().Build(cfg, log)
	if err != nil {
		return err
	}
	defer sys.Release()

	m := viz.NewLive(viz.LiveConfig{
		Title:        fmt.Sprintf("%s %s", cfg.Model, sys.Kind),
		Stepper:      sys.Stepper,
		Energy:       sys.Energy,
		Position:     sys.Position,
		Velocity:     sys.Velocity,
		Until:        cfg.Until,
		StepsPerTick: perFrame,
	})

	p := tea.NewProgram(m)
	_, err = p.Run()
	return err
}

func listPresets(cmd *cobra.Command, args []string) error {
	models := []string{config.ModelOscillator, config.ModelChain}
	if len(args) > 0 {
		models = args[:1]
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MODEL\tPRESET\tMETHOD\tSTEP\tUNTIL")
	for _, model := range models {
		names := config.ListPresets(model)
		if names == nil {
			return fmt.Errorf("unknown model: %s", model)
		}
		for _, name := range names {
			p := config.GetPreset(model, name)
			fmt.Fprintf(w, "%s\t%s\t%s\t%g\t%g\n", model, name, p.Method, p.Step, p.Until)
		}
	}
	return w.Flush()
}

func listMethods(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METHOD\tORDER\tMULTISTEP")
	for _, k := range integrators.Kinds() {
		fmt.Fprintf(w, "%s\t%d\t%v\n", k, k.Order(), k.Multistep())
	}
	return w.Flush()
}

// formatOrder prints n/a for orders undefined because an error was zero.
func formatOrder(p float64) string {
	if math.IsNaN(p) {
		return "n/a"
	}
	return fmt.Sprintf("%.3f", p)
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
