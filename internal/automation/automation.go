package automation

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"os"
	"sort"
	"time"

	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/experiment"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/sim"
	"github.com/san-kum/clothsim/internal/storage"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// Scenario defines a scripted sequence of cloth runs.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`
}

// ScenarioStep starts from a preset, a config file, or the defaults, in
// that order, then applies its overrides.
type ScenarioStep struct {
	Name       string             `yaml:"name"`
	Preset     string             `yaml:"preset,omitempty"`
	Config     string             `yaml:"config,omitempty"`
	Integrator string             `yaml:"integrator,omitempty"`
	Ticks      int                `yaml:"ticks,omitempty"`
	Params     map[string]float64 `yaml:"params,omitempty"`
	SaveAs     string             `yaml:"save_as,omitempty"`
}

type StepResult struct {
	Step   string
	RunID  string
	Result *sim.Result
}

func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, fmt.Errorf("scenario %s has no steps", path)
	}
	return &scenario, nil
}

// StepConfig resolves the configuration a step will run with.
func (s ScenarioStep) StepConfig() (*config.Config, error) {
	var cfg *config.Config
	switch {
	case s.Preset != "":
		cfg = config.GetPreset(s.Preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s", s.Preset)
		}
	case s.Config != "":
		var err error
		if cfg, err = config.Load(s.Config); err != nil {
			return nil, err
		}
	default:
		cfg = config.DefaultConfig()
	}

	if s.Integrator != "" {
		cfg.Integrator = s.Integrator
	}
	if s.Ticks > 0 {
		cfg.Ticks = s.Ticks
	}

	// sorted so a bad name reports the same way every time
	names := make([]string, 0, len(s.Params))
	for k := range s.Params {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		if err := cfg.Set(k, s.Params[k]); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}

// RunScenario executes every step in order and stops at the first error.
// Steps with SaveAs are written to store when it is not nil.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, store *storage.Store) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))
	log := logger.Named("scenario")

	for i, step := range scenario.Steps {
		name := step.Name
		if name == "" {
			name = fmt.Sprintf("step%d", i+1)
		}
		log.Info("running step", zap.String("scenario", scenario.Name), zap.String("step", name),
			zap.Int("index", i+1), zap.Int("total", len(scenario.Steps)))

		cfg, err := step.StepConfig()
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}

		exp, err := experiment.Build(cfg, registry)
		if err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		sr := StepResult{Step: name, Result: result}
		if step.SaveAs != "" && store != nil {
			sr.RunID, err = store.Save(storage.RunInfo{
				Scene:      step.SaveAs,
				Integrator: cfg.Integrator,
				Dt:         cfg.Dt,
				Substeps:   cfg.Substeps,
				Ticks:      cfg.Ticks,
				Seed:       cfg.Seed,
			}, result)
			if err != nil {
				return results, fmt.Errorf("step %d save: %w", i+1, err)
			}
		}
		results = append(results, sr)
	}

	return results, nil
}

// ParameterSweep runs one config across evenly spaced values of a parameter.
type ParameterSweep struct {
	Base      *config.Config
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue  float64
	MaxEnergy   float64
	MinEnergy   float64
	EnergyDrift float64
	Stretch     float64
	Stable      bool
}

func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step, got %d", sweep.NumSteps)
	}
	results := make([]SweepResult, 0, sweep.NumSteps)
	log := logger.Named("sweep")

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Base.Clone()
		if err := cfg.Set(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		exp, err := experiment.Build(cfg, registry)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		sr := SweepResult{
			ParamValue:  paramVal,
			EnergyDrift: result.EnergyDrift,
			Stretch:     result.Metrics["stretch"],
			Stable:      stable(result),
		}
		if len(result.Energies) > 0 {
			sr.MinEnergy, sr.MaxEnergy = result.Energies[0], result.Energies[0]
			for _, e := range result.Energies {
				sr.MinEnergy = math.Min(sr.MinEnergy, e)
				sr.MaxEnergy = math.Max(sr.MaxEnergy, e)
			}
		}
		results = append(results, sr)

		log.Info("sweep point", zap.Int("index", i+1), zap.Int("total", sweep.NumSteps),
			zap.String("param", sweep.ParamName), zap.Float64("value", paramVal), zap.Bool("stable", sr.Stable))
	}

	return results, nil
}

// stable reports a run that finished with finite energy and no stability
// violations.
func stable(r *sim.Result) bool {
	if len(r.Errors) > 0 {
		return false
	}
	if n := len(r.Energies); n > 0 {
		e := r.Energies[n-1]
		if math.IsNaN(e) || math.IsInf(e, 0) {
			return false
		}
	}
	if v, ok := r.Metrics["stability"]; ok && v < 1 {
		return false
	}
	return true
}

// MonteCarloConfig reruns Base with fresh vertex jitter per trial.
type MonteCarloConfig struct {
	Base         *config.Config
	Perturbation float64
	NumTrials    int
	Seed         int64
}

type MonteCarloResult struct {
	TrialID     int
	Seed        int64
	EnergyDrift float64
	Stable      bool
}

func RunMonteCarlo(ctx context.Context, cfg *MonteCarloConfig, registry *experiment.Registry) ([]MonteCarloResult, error) {
	results := make([]MonteCarloResult, 0, cfg.NumTrials)
	log := logger.Named("montecarlo")

	rng := rand.New(rand.NewSource(cfg.Seed))
	if cfg.Seed == 0 {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}

	for trial := 0; trial < cfg.NumTrials; trial++ {
		run := cfg.Base.Clone()
		run.Seed = rng.Int63()
		run.Cloth.Jitter = cfg.Perturbation

		exp, err := experiment.Build(run, registry)
		if err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, MonteCarloResult{
			TrialID:     trial,
			Seed:        run.Seed,
			EnergyDrift: result.EnergyDrift,
			Stable:      stable(result),
		})

		if (trial+1)%10 == 0 {
			log.Info("trials complete", zap.Int("done", trial+1), zap.Int("total", cfg.NumTrials))
		}
	}

	return results, nil
}

func MonteCarloStats(results []MonteCarloResult) (stableCount int, unstableCount int) {
	for _, r := range results {
		if r.Stable {
			stableCount++
		} else {
			unstableCount++
		}
	}
	return
}
