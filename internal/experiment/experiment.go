package experiment

import (
	"context"
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/config"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/physics"
	"github.com/san-kum/clothsim/internal/sim"
	"go.uber.org/zap"
)

// Experiment is a fully wired scene ready to run.
type Experiment struct {
	cfg        *config.Config
	cloth      *physics.Cloth
	simulator  *sim.Simulator
	randSource *rand.Rand
}

// Build validates cfg and assembles cloth, colliders, anchors and the
// simulator. Every error is a configuration error.
func Build(cfg *config.Config, reg *Registry) (*Experiment, error) {
	if err := cfg.Validate(); err != nil {
		logger.Warn("config rejected", zap.Error(err))
		return nil, err
	}
	if reg == nil {
		reg = NewRegistry()
	}

	e := &Experiment{
		cfg:        cfg,
		randSource: rand.New(rand.NewSource(cfg.Seed)),
	}

	geom, err := e.geometry()
	if err != nil {
		return nil, err
	}
	params, err := cfg.PhysicsParams()
	if err != nil {
		return nil, err
	}
	e.cloth, err = physics.NewCloth(geom, params)
	if err != nil {
		return nil, err
	}

	integ, err := reg.GetIntegrator(cfg.Integrator)
	if err != nil {
		return nil, err
	}

	opts := sim.DefaultOptions()
	opts.Dt = cfg.Dt
	opts.Substeps = cfg.Substeps
	opts.ValidateState = true
	if cfg.RecordEvery > 0 {
		opts.RecordEvery = cfg.RecordEvery
	}
	for i, o := range cfg.Obstacles {
		col, err := reg.GetObstacle(o)
		if err != nil {
			return nil, fmt.Errorf("obstacle %d (%s): %w", i, o.Name, err)
		}
		opts.Colliders = append(opts.Colliders, col)
	}
	for _, a := range cfg.Anchors {
		anchor := physics.NewAnchor(a.Name, a.Min, a.Max)
		anchor.Drift = a.Velocity
		opts.Anchors = append(opts.Anchors, anchor)
	}

	e.simulator, err = sim.New(e.cloth, integ, opts)
	if err != nil {
		return nil, err
	}
	for _, m := range reg.DefaultMetrics(e.cloth) {
		e.simulator.AddMetric(m)
	}
	return e, nil
}

func (e *Experiment) geometry() (dynamo.Geometry, error) {
	c := e.cfg.Cloth

	var g dynamo.Geometry
	var err error
	if c.OBJ != "" {
		g, err = mesh.LoadOBJ(c.OBJ)
	} else {
		g, err = mesh.Grid{Cols: c.Cols, Rows: c.Rows, Width: c.Width, Depth: c.Depth}.Geometry()
	}
	if err != nil {
		return g, err
	}

	g = mesh.Place(g, c.Position, c.Rotation, c.Scale)
	if c.Jitter > 0 {
		for i := range g.Vertices {
			g.Vertices[i] = g.Vertices[i].Add(mgl64.Vec3{
				(e.randSource.Float64()*2 - 1) * c.Jitter,
				(e.randSource.Float64()*2 - 1) * c.Jitter,
				(e.randSource.Float64()*2 - 1) * c.Jitter,
			})
		}
	}
	return g, nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not built")
	}
	return e.simulator.Run(ctx, e.cfg.Ticks)
}

func (e *Experiment) Config() *config.Config    { return e.cfg }
func (e *Experiment) Cloth() *physics.Cloth     { return e.cloth }
func (e *Experiment) Simulator() *sim.Simulator { return e.simulator }
