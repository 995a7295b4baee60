package sim

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

// State is the run state of a Simulator. Only a Running simulator changes the
// cloth.
type State int

const (
	Paused State = iota
	Running
)

func (s State) String() string {
	switch s {
	case Paused:
		return "paused"
	case Running:
		return "running"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

const (
	DefaultDt       = 0.01
	DefaultSubsteps = 1
)

type Options struct {
	// Dt is the length of one external tick, split evenly over Substeps.
	Dt       float64
	Substeps int

	Colliders []dynamo.Collider
	Anchors   []*physics.Anchor

	StartPaused bool
	// ValidateState stops Run at the first NaN or Inf node.
	ValidateState bool
	// RecordEvery keeps one position snapshot per RecordEvery ticks.
	// Zero disables position recording.
	RecordEvery int
}

func DefaultOptions() Options {
	return Options{
		Dt:          DefaultDt,
		Substeps:    DefaultSubsteps,
		RecordEvery: 1,
	}
}

func (o Options) Validate() error {
	if !(o.Dt > 0) {
		return fmt.Errorf("%w: got %v", dynamo.ErrInvalidTimeStep, o.Dt)
	}
	if o.Substeps < 1 {
		return fmt.Errorf("%w: got %d", dynamo.ErrInvalidSubsteps, o.Substeps)
	}
	if o.RecordEvery < 0 {
		return fmt.Errorf("%w: record_every = %d", dynamo.ErrParameterBounds, o.RecordEvery)
	}
	return nil
}

type Result struct {
	Times     []float64
	Energies  []float64
	Positions [][]mgl64.Vec3
	// PositionTimes holds the time of each entry in Positions.
	PositionTimes []float64
	Metrics       map[string]float64
	TicksTaken    int
	EnergyDrift   float64
	Errors        []error
}

// Final returns the last recorded snapshot, or nil.
func (r *Result) Final() []mgl64.Vec3 {
	if len(r.Positions) == 0 {
		return nil
	}
	return r.Positions[len(r.Positions)-1]
}
