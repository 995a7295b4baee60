package sim

import (
	"context"
	"fmt"
	"math"

	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/logger"
	"github.com/san-kum/clothsim/internal/physics"
	"go.uber.org/zap"
)

// Simulator drives a cloth through fixed ticks. It is not safe for
// concurrent use; the caller owns the driver loop.
type Simulator struct {
	cloth      *physics.Cloth
	integrator dynamo.Integrator
	opts       Options
	colliders  []dynamo.Collider

	state State
	time  float64
	ticks int

	metrics   []dynamo.Metric
	observers []dynamo.Observer
	log       *zap.Logger
}

// New validates the options and captures the anchored nodes. Colliders are
// reordered so planes run before meshes.
func New(c *physics.Cloth, integrator dynamo.Integrator, opts Options) (*Simulator, error) {
	if c == nil || len(c.Nodes) == 0 {
		return nil, fmt.Errorf("%w: empty cloth", dynamo.ErrInvalidGeometry)
	}
	if integrator == nil {
		return nil, fmt.Errorf("%w: nil integrator", dynamo.ErrUnknownIntegrator)
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	s := &Simulator{
		cloth:      c,
		integrator: integrator,
		opts:       opts,
		colliders:  collision.Ordered(opts.Colliders),
		state:      Running,
		log:        logger.Named("sim"),
	}
	if opts.StartPaused {
		s.state = Paused
	}

	for _, a := range opts.Anchors {
		n := a.Capture(c)
		s.log.Debug("anchor captured", zap.String("anchor", a.Name), zap.Int("nodes", n))
	}
	c.UpdateLengths()

	s.log.Debug("simulator ready",
		zap.String("integrator", integrator.Name()),
		zap.Float64("dt", opts.Dt),
		zap.Int("substeps", opts.Substeps),
		zap.Int("colliders", len(s.colliders)),
		zap.Int("fixed", c.FixedCount()),
	)
	return s, nil
}

func (s *Simulator) AddMetric(m dynamo.Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o dynamo.Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Cloth() *physics.Cloth         { return s.cloth }
func (s *Simulator) Integrator() dynamo.Integrator { return s.integrator }
func (s *Simulator) Colliders() []dynamo.Collider  { return s.colliders }
func (s *Simulator) Anchors() []*physics.Anchor    { return s.opts.Anchors }
func (s *Simulator) Options() Options              { return s.opts }
func (s *Simulator) State() State                  { return s.state }
func (s *Simulator) Time() float64                 { return s.time }
func (s *Simulator) Ticks() int                    { return s.ticks }

func (s *Simulator) Pause()  { s.state = Paused }
func (s *Simulator) Resume() { s.state = Running }

// Toggle flips between Paused and Running and returns the new state.
func (s *Simulator) Toggle() State {
	if s.state == Running {
		s.state = Paused
	} else {
		s.state = Running
	}
	return s.state
}

// SetIntegrator swaps the scheme between ticks.
func (s *Simulator) SetIntegrator(i dynamo.Integrator) {
	if i != nil {
		s.integrator = i
	}
}

func (s *Simulator) SetSubsteps(n int) error {
	if n < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, n)
	}
	s.opts.Substeps = n
	return nil
}

// Advance performs one tick of the configured length.
func (s *Simulator) Advance() bool {
	return s.AdvanceBy(s.opts.Dt)
}

// AdvanceBy performs one tick of length dtTick split into the configured
// number of substeps. It reports false and leaves the cloth untouched when
// paused or when dtTick is not positive.
func (s *Simulator) AdvanceBy(dtTick float64) bool {
	if s.state != Running || !(dtTick > 0) {
		return false
	}

	for _, a := range s.opts.Anchors {
		a.Step(s.cloth, dtTick)
	}

	dt := dtTick / float64(s.opts.Substeps)
	for k := 0; k < s.opts.Substeps; k++ {
		s.cloth.AccumulateForces(s.time, s.colliders)
		s.integrator.Integrate(s.cloth.Nodes, dt)
		s.cloth.UpdateLengths()
		s.time += dt
	}
	s.ticks++

	for _, m := range s.metrics {
		m.Observe(s.cloth.Nodes, s.time)
	}
	for _, o := range s.observers {
		o.OnTick(s.cloth.Nodes, s.time)
	}
	return true
}

// Run advances up to ticks times. It stops early when the context is done,
// when the simulator is paused, or, with ValidateState, at the first
// non-finite node.
func (s *Simulator) Run(ctx context.Context, ticks int) (*Result, error) {
	if ticks < 1 {
		return nil, fmt.Errorf("%w: ticks = %d", dynamo.ErrParameterBounds, ticks)
	}

	res := &Result{
		Times:    make([]float64, 0, ticks+1),
		Energies: make([]float64, 0, ticks+1),
		Metrics:  make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	e0 := s.cloth.Energy()
	res.Times = append(res.Times, s.time)
	res.Energies = append(res.Energies, e0)
	if s.opts.RecordEvery > 0 {
		res.Positions = append(res.Positions, s.cloth.Positions())
		res.PositionTimes = append(res.PositionTimes, s.time)
	}

	var runErr error
	for i := 0; i < ticks; i++ {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
		default:
		}
		if runErr != nil {
			break
		}

		if !s.Advance() {
			s.log.Debug("run stopped while paused", zap.Int("tick", s.ticks))
			break
		}
		res.TicksTaken++
		res.Times = append(res.Times, s.time)
		res.Energies = append(res.Energies, s.cloth.Energy())

		if s.opts.ValidateState {
			if idx := firstInvalid(s.cloth.Nodes); idx >= 0 {
				err := &dynamo.SimulationError{Tick: s.ticks, Time: s.time, Node: idx, Wrapped: dynamo.ErrInvalidState}
				res.Errors = append(res.Errors, err)
				s.log.Warn("invalid state", zap.Error(err))
				break
			}
		}

		if every := s.opts.RecordEvery; every > 0 && res.TicksTaken%every == 0 {
			res.Positions = append(res.Positions, s.cloth.Positions())
			res.PositionTimes = append(res.PositionTimes, s.time)
		}
	}

	if e1 := res.Energies[len(res.Energies)-1]; e0 != 0 {
		res.EnergyDrift = math.Abs(e1-e0) / math.Abs(e0)
	}
	for _, m := range s.metrics {
		res.Metrics[m.Name()] = m.Value()
	}
	return res, runErr
}

// RunWithCallback advances until the callback returns false, the context is
// done, or the simulator pauses.
func (s *Simulator) RunWithCallback(ctx context.Context, callback func(s *Simulator) bool) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !callback(s) || !s.Advance() {
			return nil
		}
	}
}

func firstInvalid(nodes []dynamo.Node) int {
	for i := range nodes {
		if !dynamo.IsFinite(nodes[i].Position) || !dynamo.IsFinite(nodes[i].Velocity) {
			return i
		}
	}
	return -1
}
