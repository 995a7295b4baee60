package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"syscall"
	"text/tabwriter"
	"time"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}

	exp, err := experiment.Build(cfg, experiment.NewRegistry())
	if err != nil {
		return err
	}
	rest := dynamo.Geometry{
		Vertices:  exp.Cloth().Positions(),
		Triangles: exp.Cloth().Triangles,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("running %s: %d nodes, %d ticks...\n", scene, len(exp.Cloth().Nodes), cfg.Ticks)
	start := time.Now()

	result, err := exp.Run(ctx)
	if err != nil && result == nil {
		return err
	}
	if err != nil {
		logger.Warn("run stopped early", zap.Error(err), zap.Int("ticks", result.TicksTaken))
	}
	elapsed := time.Since(start)

	fmt.Printf("completed in %v\n", elapsed)
	if !noSave {
		runID, err := saveRun(scene, cfg, rest, result)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}
	printResult(result)
	return nil
}

func saveRun(scene string, cfg *config.Config, rest dynamo.Geometry, result *sim.Result) (string, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return "", err
	}
	runID, err := st.Save(runInfo(scene, cfg), result)
	if err != nil {
		return "", err
	}
	if err := st.SaveMesh(runID, rest); err != nil {
		return "", err
	}
	return runID, nil
}

func runInfo(scene string, cfg *config.Config) storage.RunInfo {
	return storage.RunInfo{
		Scene:      scene,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt,
		Substeps:   cfg.Substeps,
		Ticks:      cfg.Ticks,
		Seed:       cfg.Seed,
	}
}

func printResult(result *sim.Result) {
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Printf("energy drift: %.6f\n", result.EnergyDrift)
	for _, e := range result.Errors {
		fmt.Printf("error: %s\n", e)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Println("\nmetrics:")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range names {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, result.Metrics[name])
	}
	w.Flush()
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, scene, err := sceneConfig(cmd, args)
	if err != nil {
		return err
	}
	registry := experiment.NewRegistry()

	build := func() (*sim.Simulator, error) {
		exp, err := experiment.Build(cfg.Clone(), registry)
		if err != nil {
			return nil, err
		}
		return exp.Simulator(), nil
	}
	return viz.RunLive(scene, build)
}

func listPresets(cmd *cobra.Command, args []string) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "PRESET\tGRID\tINTEGRATOR\tOBSTACLES\tANCHORS")
	for _, name := range config.ListPresets() {
		cfg := config.GetPreset(name)
		grid := fmt.Sprintf("%dx%d", cfg.Cloth.Cols, cfg.Cloth.Rows)
		if cfg.Cloth.OBJ != "" {
			grid = cfg.Cloth.OBJ
		}
		kinds := make([]string, 0, len(cfg.Obstacles))
		for _, o := range cfg.Obstacles {
			kinds = append(kinds, o.Kind)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%v\t%d\n", name, grid, cfg.Integrator, kinds, len(cfg.Anchors))
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg := config.DefaultConfig()
	preset, _ := cmd.Flags().GetString("preset")
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.SaveTo(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}
