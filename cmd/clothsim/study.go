package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/clothsim/internal/automation"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/optim"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/spf13/cobra"
)

var (
	compareIntegrators []string

	sweepParam string
	sweepMin   float64
	sweepMax   float64
	sweepSteps int

	searchParams []string
	searchMetric string

	mcTrials       int
	mcPerturbation float64
	mcSeed         int64
)

func studyCommands() []*cobra.Command {
	compareCmd := &cobra.Command{
		Use:   "compare [preset]",
		Short: "run the same scene under several integrators",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCompare,
	}
	addSceneFlags(compareCmd)
	compareCmd.Flags().StringSliceVar(&compareIntegrators, "integrators", integrators.Names(), "integrators to compare")

	sweepCmd := &cobra.Command{
		Use:   "sweep [preset]",
		Short: "run a scene across values of one parameter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	addSceneFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "traction_stiffness", "parameter to sweep")
	sweepCmd.Flags().Float64Var(&sweepMin, "min", 100, "first value")
	sweepCmd.Flags().Float64Var(&sweepMax, "max", 2000, "last value")
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 5, "number of values")

	searchCmd := &cobra.Command{
		Use:   "search [preset]",
		Short: "grid search parameters for the lowest metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSearch,
	}
	addSceneFlags(searchCmd)
	searchCmd.Flags().StringArrayVar(&searchParams, "param", nil, "grid axis, name=lo:hi:n")
	searchCmd.Flags().StringVar(&searchMetric, "metric", "energy_drift", "metric to minimise")

	mcCmd := &cobra.Command{
		Use:   "montecarlo [preset]",
		Short: "rerun a scene with random vertex jitter",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runMonteCarlo,
	}
	addSceneFlags(mcCmd)
	mcCmd.Flags().IntVar(&mcTrials, "trials", 20, "number of trials")
	mcCmd.Flags().Float64Var(&mcPerturbation, "perturbation", 0.01, "jitter distance")
	mcCmd.Flags().Int64Var(&mcSeed, "mc-seed", 0, "trial seed source, 0 for time-based")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of scenes",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	return []*cobra.Command{compareCmd, sweepCmd, searchCmd, mcCmd, scenarioCmd}
}

func runCompare(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(compareIntegrators) == 0 {
		return fmt.Errorf("no integrators to compare")
	}
	registry := experiment.NewRegistry()

	factory := func(i int) (*sim.Simulator, error) {
		run := cfg.Clone()
		run.Integrator = compareIntegrators[i]
		run.RecordEvery = 0
		exp, err := experiment.Build(run, registry)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", run.Integrator, err)
		}
		return exp.Simulator(), nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("comparing %v on %s, %d ticks\n\n", compareIntegrators, scene, cfg.Ticks)
	results, err := sim.NewEnsemble(factory, len(compareIntegrators)).Run(ctx, cfg.Ticks)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "INTEGRATOR\tTICKS\tFINAL ENERGY\tDRIFT\tSTRETCH\tSTABILITY")
	series := make([][]float64, 0, len(results))
	for i, r := range results {
		final := r.Energies[len(r.Energies)-1]
		fmt.Fprintf(w, "%s\t%d\t%.4f\t%.6f\t%.4f\t%.3f\n",
			compareIntegrators[i], r.TicksTaken, final, r.EnergyDrift,
			r.Metrics["stretch"], r.Metrics["stability"])
		series = append(series, finite(r.Energies))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	fmt.Println()
	fmt.Println(asciigraph.PlotMany(series,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("energy per tick: "+strings.Join(compareIntegrators, ", ")),
	))
	return nil
}

// finite drops NaN and Inf samples, which asciigraph cannot scale.
func finite(vs []float64) []float64 {
	out := make([]float64, 0, len(vs))
	for _, v := range vs {
		if !math.IsNaN(v) && !math.IsInf(v, 0) {
			out = append(out, v)
		}
	}
	if len(out) == 0 {
		out = append(out, 0)
	}
	return out
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("sweeping %s on %s from %g to %g\n\n", sweepParam, scene, sweepMin, sweepMax)
	results, err := automation.RunSweep(ctx, &automation.ParameterSweep{
		Base:      cfg,
		ParamName: sweepParam,
		ParamMin:  sweepMin,
		ParamMax:  sweepMax,
		NumSteps:  sweepSteps,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VALUE\tMIN ENERGY\tMAX ENERGY\tDRIFT\tSTRETCH\tSTABLE")
	drift := make([]float64, 0, len(results))
	for _, r := range results {
		fmt.Fprintf(w, "%g\t%.4f\t%.4f\t%.6f\t%.4f\t%v\n",
			r.ParamValue, r.MinEnergy, r.MaxEnergy, r.EnergyDrift, r.Stretch, r.Stable)
		drift = append(drift, r.EnergyDrift)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if len(drift) > 1 {
		fmt.Println()
		fmt.Println(asciigraph.Plot(finite(drift),
			asciigraph.Height(10),
			asciigraph.Width(60),
			asciigraph.Caption("energy drift vs "+sweepParam),
		))
	}
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0
	if len(searchParams) == 0 {
		return fmt.Errorf("give at least one --param name=lo:hi:n")
	}

	names := make([]string, 0, len(searchParams))
	ranges := make([][]float64, 0, len(searchParams))
	for _, p := range searchParams {
		name, values, err := parseAxis(p)
		if err != nil {
			return err
		}
		names = append(names, name)
		ranges = append(ranges, values)
	}

	registry := experiment.NewRegistry()
	build := func(params map[string]float64) (*experiment.Experiment, error) {
		run := cfg.Clone()
		for name, v := range params {
			if err := run.Set(name, v); err != nil {
				return nil, err
			}
		}
		return experiment.Build(run, registry)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("searching %v on %s for the lowest %s\n\n", names, scene, searchMetric)
	gs := optim.NewGridSearch(names, ranges)
	best, value, err := gs.Search(ctx, build, searchMetric)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(names, "\t")+"\t"+strings.ToUpper(searchMetric))
	for _, t := range gs.Trials() {
		for _, name := range names {
			fmt.Fprintf(w, "%g\t", t.Params[name])
		}
		if t.Err != nil {
			fmt.Fprintf(w, "failed: %v\n", t.Err)
			continue
		}
		fmt.Fprintf(w, "%.6f\n", t.Value)
	}
	w.Flush()

	if err != nil {
		return err
	}
	fmt.Printf("\nbest %s = %.6f at", searchMetric, value)
	for _, name := range names {
		fmt.Printf(" %s=%g", name, best[name])
	}
	fmt.Println()
	return nil
}

// parseAxis reads name=lo:hi:n into evenly spaced values.
func parseAxis(s string) (string, []float64, error) {
	name, rng, ok := strings.Cut(s, "=")
	if !ok {
		return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n", s)
	}
	parts := strings.Split(rng, ":")
	if len(parts) != 3 {
		return "", nil, fmt.Errorf("bad --param %q: want name=lo:hi:n", s)
	}
	lo, err := strconv.ParseFloat(parts[0], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad --param %q: %w", s, err)
	}
	hi, err := strconv.ParseFloat(parts[1], 64)
	if err != nil {
		return "", nil, fmt.Errorf("bad --param %q: %w", s, err)
	}
	n, err := strconv.Atoi(parts[2])
	if err != nil || n < 1 {
		return "", nil, fmt.Errorf("bad --param %q: count must be a positive integer", s)
	}
	return name, optim.Linspace(lo, hi, n), nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}
	cfg.RecordEvery = 0

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %d jittered trials of %s\n\n", mcTrials, scene)
	results, err := automation.RunMonteCarlo(ctx, &automation.MonteCarloConfig{
		Base:         cfg,
		Perturbation: mcPerturbation,
		NumTrials:    mcTrials,
		Seed:         mcSeed,
	}, experiment.NewRegistry())
	if err != nil {
		return err
	}

	stable, unstable := automation.MonteCarloStats(results)
	drifts := make([]float64, 0, len(results))
	for _, r := range results {
		drifts = append(drifts, r.EnergyDrift)
	}
	sort.Float64s(drifts)

	fmt.Printf("stable: %d\n", stable)
	fmt.Printf("unstable: %d\n", unstable)
	if n := len(drifts); n > 0 {
		fmt.Printf("drift min/median/max: %.6f / %.6f / %.6f\n", drifts[0], drifts[n/2], drifts[n-1])
	}
	return nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("scenario %s: %d steps\n", sc.Name, len(sc.Steps))
	if sc.Description != "" {
		fmt.Println(sc.Description)
	}
	fmt.Println()

	results, err := automation.RunScenario(ctx, sc, experiment.NewRegistry(), st)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "STEP\tRUN ID\tTICKS\tDRIFT\tSTRETCH")
	for _, r := range results {
		runID := r.RunID
		if runID == "" {
			runID = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%d\t%.6f\t%.4f\n",
			r.Step, runID, r.Result.TicksTaken, r.Result.EnergyDrift, r.Result.Metrics["stretch"])
	}
	w.Flush()
	return err
}
