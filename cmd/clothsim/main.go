package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/viz"
	"github.com/spf13/cobra"
)

var (
	dataDir  string
	logLevel string
	logFile  string

	configFile  string
	integrator  string
	dt          float64
	substeps    int
	ticks       int
	seed        int64
	cols        int
	rows        int
	recordEvery int
	overrides   []string
	noSave      bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "clothsim",
		Short:        "mass-spring cloth simulation lab",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logger.Init(logLevel, logFile)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return viz.RunInteractive()
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".clothsim", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "also write logs to this rotated file")

	runCmd := &cobra.Command{
		Use:   "run [preset]",
		Short: "run a cloth simulation and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addSceneFlags(runCmd)
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "print metrics without storing the run")

	liveCmd := &cobra.Command{
		Use:   "live [preset]",
		Short: "run a simulation in the terminal viewer",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addSceneFlags(liveCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list built-in scenes",
		RunE:  listPresets,
	}

	initCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a scene config to edit",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().String("preset", "", "start from a preset instead of the defaults")

	rootCmd.AddCommand(runCmd, liveCmd, presetsCmd, initCmd)
	rootCmd.AddCommand(studyCommands()...)
	rootCmd.AddCommand(runsCommands()...)

	err := rootCmd.Execute()
	logger.Sync()
	if err != nil {
		os.Exit(1)
	}
}

func addSceneFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&integrator, "integrator", config.DefaultConfig().Integrator, "integrator")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultConfig().Dt, "tick length in seconds")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultConfig().Substeps, "substeps per tick")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultConfig().Ticks, "ticks to run")
	cmd.Flags().Int64Var(&seed, "seed", 0, "seed for vertex jitter")
	cmd.Flags().IntVar(&cols, "cols", 0, "grid columns")
	cmd.Flags().IntVar(&rows, "rows", 0, "grid rows")
	cmd.Flags().IntVar(&recordEvery, "record-every", 0, "store positions every n ticks")
	cmd.Flags().StringArrayVar(&overrides, "set", nil, "override a parameter, name=value")
}

// sceneConfig resolves the config for a command: a preset argument, then
// --config, then the defaults. Flags apply only when given.
func sceneConfig(cmd *cobra.Command, args []string) (*config.Config, string, error) {
	var cfg *config.Config
	scene := "default"

	switch {
	case len(args) > 0 && configFile != "":
		return nil, "", fmt.Errorf("give either a preset or --config, not both")
	case len(args) > 0:
		scene = args[0]
		cfg = config.GetPreset(scene)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", scene, config.ListPresets())
		}
	case configFile != "":
		var err error
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		scene = strings.TrimSuffix(filepath.Base(configFile), filepath.Ext(configFile))
	default:
		cfg = config.DefaultConfig()
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("substeps") {
		cfg.Substeps = substeps
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if flags.Changed("cols") {
		cfg.Cloth.Cols = cols
	}
	if flags.Changed("rows") {
		cfg.Cloth.Rows = rows
	}
	if flags.Changed("record-every") {
		cfg.RecordEvery = recordEvery
	}
	for _, kv := range overrides {
		name, v, err := parseOverride(kv)
		if err != nil {
			return nil, "", err
		}
		if err := cfg.Set(name, v); err != nil {
			return nil, "", err
		}
	}

	if !flags.Changed("log-level") && cfg.Logging.Level != "" {
		file := logFile
		if file == "" {
			file = cfg.Logging.File
		}
		if err := logger.Init(cfg.Logging.Level, file); err != nil {
			return nil, "", err
		}
	}

	return cfg, scene, nil
}

func parseOverride(kv string) (string, float64, error) {
	name, raw, ok := strings.Cut(kv, "=")
	if !ok {
		return "", 0, fmt.Errorf("bad --set %q: want name=value", kv)
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad --set %q: %w", kv, err)
	}
	return strings.TrimSpace(name), v, nil
}
