package sim

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/integrators"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/physics"
)

func testCloth(t testing.TB, p physics.Params) *physics.Cloth {
	t.Helper()
	g, err := mesh.Grid{Cols: 6, Rows: 6, Width: 1, Depth: 1}.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	c, err := physics.NewCloth(g, p)
	if err != nil {
		t.Fatal(err)
	}
	return c
}

func newSim(t testing.TB, p physics.Params, opts Options) *Simulator {
	t.Helper()
	s, err := New(testCloth(t, p), integrators.NewSymplectic(), opts)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func TestNewRejectsBadConfig(t *testing.T) {
	cloth := testCloth(t, physics.DefaultParams())
	integ := integrators.NewSymplectic()

	tests := []struct {
		name  string
		cloth *physics.Cloth
		integ dynamo.Integrator
		opts  Options
		err   error
	}{
		{"zero dt", cloth, integ, Options{Dt: 0, Substeps: 1}, dynamo.ErrInvalidTimeStep},
		{"nan dt", cloth, integ, Options{Dt: math.NaN(), Substeps: 1}, dynamo.ErrInvalidTimeStep},
		{"zero substeps", cloth, integ, Options{Dt: 0.01}, dynamo.ErrInvalidSubsteps},
		{"negative record", cloth, integ, Options{Dt: 0.01, Substeps: 1, RecordEvery: -1}, dynamo.ErrParameterBounds},
		{"nil integrator", cloth, nil, DefaultOptions(), dynamo.ErrUnknownIntegrator},
		{"nil cloth", nil, integ, DefaultOptions(), dynamo.ErrInvalidGeometry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.cloth, tt.integ, tt.opts); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestSubstepsSplitTheTick(t *testing.T) {
	p := physics.DefaultParams()
	p.Wind = physics.Wind{Mode: physics.WindChanging}

	coarse := newSim(t, p, Options{Dt: 0.01, Substeps: 4})
	fine := newSim(t, p, Options{Dt: 0.0025, Substeps: 1})

	for i := 0; i < 3; i++ {
		coarse.Advance()
	}
	for i := 0; i < 12; i++ {
		fine.Advance()
	}

	if coarse.Ticks() != 3 || fine.Ticks() != 12 {
		t.Errorf("ticks = %d, %d", coarse.Ticks(), fine.Ticks())
	}
	if math.Abs(coarse.Time()-0.03) > 1e-12 {
		t.Errorf("time = %v, want 0.03", coarse.Time())
	}
	a, b := coarse.Cloth().Positions(), fine.Cloth().Positions()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("node %d: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestPausedSimulatorDoesNothing(t *testing.T) {
	opts := DefaultOptions()
	opts.StartPaused = true
	s := newSim(t, physics.DefaultParams(), opts)
	before := s.Cloth().Positions()

	if s.State() != Paused {
		t.Fatalf("state = %v", s.State())
	}
	if s.Advance() {
		t.Error("Advance reported progress while paused")
	}
	res, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.TicksTaken != 0 || s.Time() != 0 {
		t.Errorf("ticks taken = %d, time = %v", res.TicksTaken, s.Time())
	}
	after := s.Cloth().Positions()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("node %d moved while paused", i)
		}
	}

	if s.Toggle() != Running || !s.Advance() {
		t.Error("toggle should resume the simulation")
	}
	s.Pause()
	if s.AdvanceBy(0.5) {
		t.Error("AdvanceBy ran while paused")
	}
	s.Resume()
	if s.AdvanceBy(0) {
		t.Error("AdvanceBy ran with a zero tick")
	}
}

func TestDeterminism(t *testing.T) {
	build := func() *Simulator {
		p := physics.DefaultParams()
		p.Wind = physics.Wind{Mode: physics.WindChanging}
		opts := DefaultOptions()
		opts.Substeps = 2
		opts.Colliders = []dynamo.Collider{
			collision.NewSphere(mgl64.Vec3{0, -0.6, 0}, 0.5, collision.DefaultRigidity),
			collision.NewPlane(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, -1, 0}, collision.DefaultRigidity),
		}
		return newSim(t, p, opts)
	}

	r1, err := build().Run(context.Background(), 200)
	if err != nil {
		t.Fatal(err)
	}
	r2, err := build().Run(context.Background(), 200)
	if err != nil {
		t.Fatal(err)
	}

	a, b := r1.Final(), r2.Final()
	if len(a) == 0 || len(a) != len(b) {
		t.Fatalf("snapshots: %d vs %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("node %d differs: %v vs %v", i, a[i], b[i])
		}
	}
}

func TestFixedNodesStayBitIdentical(t *testing.T) {
	p := physics.DefaultParams()
	p.Wind = physics.Wind{Mode: physics.WindChanging}
	opts := DefaultOptions()
	opts.Colliders = []dynamo.Collider{
		collision.NewPlane(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{0, 0.5, 0}, collision.DefaultRigidity),
	}
	opts.Anchors = []*physics.Anchor{
		physics.NewAnchor("edge", mgl64.Vec3{-1, -0.1, -0.6}, mgl64.Vec3{1, 0.1, -0.4}),
	}
	s := newSim(t, p, opts)

	fixed := s.Anchors()[0].Nodes()
	if len(fixed) != 6 {
		t.Fatalf("captured %d nodes, want 6", len(fixed))
	}
	before := make([]dynamo.Node, len(fixed))
	for i, idx := range fixed {
		before[i] = s.Cloth().Nodes[idx]
	}

	if _, err := s.Run(context.Background(), 300); err != nil {
		t.Fatal(err)
	}
	for i, idx := range fixed {
		n := s.Cloth().Nodes[idx]
		if n.Position != before[i].Position || n.Velocity != before[i].Velocity {
			t.Errorf("fixed node %d changed: %v -> %v", idx, before[i].Position, n.Position)
		}
	}
}

func TestMovingAnchorCarriesNodes(t *testing.T) {
	opts := DefaultOptions()
	a := physics.NewAnchor("edge", mgl64.Vec3{-1, -0.1, -0.6}, mgl64.Vec3{1, 0.1, -0.4})
	a.Drift = mgl64.Vec3{0, 1, 0}
	opts.Anchors = []*physics.Anchor{a}
	s := newSim(t, physics.DefaultParams(), opts)

	idx := a.Nodes()[0]
	y0 := s.Cloth().Nodes[idx].Position.Y()
	for i := 0; i < 100; i++ {
		s.Advance()
	}
	if got := s.Cloth().Nodes[idx].Position.Y(); math.Abs(got-y0-1) > 1e-9 {
		t.Errorf("anchored node rose to %v, want %v", got, y0+1)
	}
}

func TestPlaneCorrectsCrossingNode(t *testing.T) {
	p := physics.DefaultParams()
	p.Gravity = mgl64.Vec3{}
	p.AirFriction = 0
	p.ClothFriction = 0
	c := testCloth(t, p)
	for i := range c.Nodes {
		c.Nodes[i].Position = c.Nodes[i].Position.Add(mgl64.Vec3{0, -0.05, 0})
		c.Nodes[i].Velocity = mgl64.Vec3{0, 0.1, 0}
	}
	c.UpdateLengths()

	plane := collision.NewPlane(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, collision.DefaultRigidity)
	opts := DefaultOptions()
	opts.Colliders = []dynamo.Collider{plane}
	s, err := New(c, integrators.NewSymplectic(), opts)
	if err != nil {
		t.Fatal(err)
	}

	s.Advance()
	for _, n := range c.Nodes {
		if d := plane.Distance(n.Position); d < -1e-12 {
			t.Fatalf("node %d still %v below the plane", n.Index, -d)
		}
		if n.Force.Y() <= 0 {
			t.Fatalf("node %d got no outward force: %v", n.Index, n.Force)
		}
	}
}

func TestRunRecordsAndCancels(t *testing.T) {
	opts := DefaultOptions()
	opts.RecordEvery = 5
	s := newSim(t, physics.DefaultParams(), opts)

	res, err := s.Run(context.Background(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if res.TicksTaken != 20 || len(res.Times) != 21 || len(res.Energies) != 21 {
		t.Errorf("ticks %d, times %d, energies %d", res.TicksTaken, len(res.Times), len(res.Energies))
	}
	if len(res.Positions) != 5 || len(res.PositionTimes) != 5 {
		t.Errorf("snapshots = %d, want 5", len(res.Positions))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = s.Run(ctx, 20)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
	if res.TicksTaken != 0 {
		t.Errorf("ticks after cancel = %d", res.TicksTaken)
	}

	if _, err := s.Run(context.Background(), 0); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("zero ticks err = %v", err)
	}
}

type poison struct {
	dynamo.Integrator
	after int
	calls int
}

func (p *poison) Integrate(nodes []dynamo.Node, dt float64) {
	p.Integrator.Integrate(nodes, dt)
	p.calls++
	if p.calls == p.after {
		nodes[7].Position[1] = math.NaN()
	}
}

func TestValidateStateReportsNode(t *testing.T) {
	opts := DefaultOptions()
	opts.ValidateState = true
	s, err := New(testCloth(t, physics.DefaultParams()), &poison{Integrator: integrators.NewSymplectic(), after: 3}, opts)
	if err != nil {
		t.Fatal(err)
	}

	res, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.TicksTaken != 3 || len(res.Errors) != 1 {
		t.Fatalf("ticks %d, errors %v", res.TicksTaken, res.Errors)
	}
	var simErr *dynamo.SimulationError
	if !errors.As(res.Errors[0], &simErr) || simErr.Node != 7 || simErr.Tick != 3 {
		t.Errorf("error = %v", res.Errors[0])
	}
	if !errors.Is(res.Errors[0], dynamo.ErrInvalidState) {
		t.Error("error should wrap ErrInvalidState")
	}
}

type countMetric struct{ n int }

func (c *countMetric) Name() string                       { return "count" }
func (c *countMetric) Observe(_ []dynamo.Node, _ float64) { c.n++ }
func (c *countMetric) Value() float64                     { return float64(c.n) }
func (c *countMetric) Reset()                             { c.n = 0 }

type tickObserver struct{ times []float64 }

func (o *tickObserver) OnTick(_ []dynamo.Node, t float64) { o.times = append(o.times, t) }

func TestMetricsAndObservers(t *testing.T) {
	s := newSim(t, physics.DefaultParams(), DefaultOptions())
	m := &countMetric{}
	o := &tickObserver{}
	s.AddMetric(m)
	s.AddObserver(o)

	res, err := s.Run(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if res.Metrics["count"] != 10 {
		t.Errorf("metric = %v, want 10", res.Metrics["count"])
	}
	if len(o.times) != 10 || math.Abs(o.times[9]-0.1) > 1e-12 {
		t.Errorf("observer times = %v", o.times)
	}
}

func TestSetSubstepsAndIntegrator(t *testing.T) {
	s := newSim(t, physics.DefaultParams(), DefaultOptions())
	if err := s.SetSubsteps(0); !errors.Is(err, dynamo.ErrInvalidSubsteps) {
		t.Errorf("err = %v", err)
	}
	if err := s.SetSubsteps(3); err != nil || s.Options().Substeps != 3 {
		t.Errorf("substeps = %d, err = %v", s.Options().Substeps, err)
	}
	s.SetIntegrator(integrators.NewExplicit())
	if s.Integrator().Name() != "explicit" {
		t.Errorf("integrator = %s", s.Integrator().Name())
	}
	s.SetIntegrator(nil)
	if s.Integrator() == nil {
		t.Error("nil integrator must be ignored")
	}
}

func TestEnsemble(t *testing.T) {
	factory := func(i int) (*Simulator, error) {
		return New(testCloth(t, physics.DefaultParams()), integrators.NewSymplectic(), DefaultOptions())
	}
	results, err := NewEnsemble(factory, 3).Run(context.Background(), 50)
	if err != nil {
		t.Fatal(err)
	}
	if len(results) != 3 {
		t.Fatalf("results = %d", len(results))
	}
	for i := 1; i < 3; i++ {
		a, b := results[0].Final(), results[i].Final()
		for k := range a {
			if a[k] != b[k] {
				t.Fatalf("run %d diverged at node %d", i, k)
			}
		}
	}

	failing := func(i int) (*Simulator, error) {
		if i == 1 {
			return nil, dynamo.ErrInvalidSubsteps
		}
		return factory(i)
	}
	if _, err := NewEnsemble(failing, 2).Run(context.Background(), 5); !errors.Is(err, dynamo.ErrInvalidSubsteps) {
		t.Errorf("err = %v", err)
	}
}
