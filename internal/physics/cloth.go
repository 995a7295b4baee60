package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/logger"
	"go.uber.org/zap"
)

// Cloth owns the node array. Springs and triangles refer to nodes by index.
type Cloth struct {
	Nodes      []dynamo.Node
	Structural []dynamo.Spring
	Bending    []dynamo.Spring
	Triangles  []dynamo.Triangle
	Params     Params
}

func NewCloth(g dynamo.Geometry, p Params) (*Cloth, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	topo, err := BuildTopology(g, p.TotalMass, p.TractionStiffness, p.FlexionStiffness)
	if err != nil {
		return nil, err
	}

	c := &Cloth{
		Nodes:      topo.Nodes,
		Structural: topo.Structural,
		Bending:    topo.Bending,
		Triangles:  append([]dynamo.Triangle(nil), g.Triangles...),
		Params:     p,
	}

	logger.Debug("cloth built",
		zap.Int("nodes", len(c.Nodes)),
		zap.Int("triangles", len(c.Triangles)),
		zap.Int("structural", len(c.Structural)),
		zap.Int("bending", len(c.Bending)),
	)
	return c, nil
}

// AccumulateForces resets every accumulator and sums all contributions for
// simulation time t. Colliders are applied in slice order and never touch
// fixed nodes.
func (c *Cloth) AccumulateForces(t float64, colliders []dynamo.Collider) {
	p := &c.Params

	for i := range c.Nodes {
		c.Nodes[i].ResetForce()
		c.Nodes[i].ApplyBodyForces(p.Gravity, p.AirFriction)
	}

	for _, col := range colliders {
		for i := range c.Nodes {
			if !c.Nodes[i].Fixed {
				col.ApplyPenalty(&c.Nodes[i])
			}
		}
	}

	if p.ClothFriction != 0 {
		wind := p.Wind.At(t)
		for _, tri := range c.Triangles {
			AirDrag(c.Nodes, tri, wind, p.ClothFriction)
		}
	}

	for i := range c.Structural {
		c.Structural[i].AccumulateForces(c.Nodes, p.SpringDamping)
	}
	for i := range c.Bending {
		c.Bending[i].AccumulateForces(c.Nodes, p.SpringDamping)
	}
}

// UpdateLengths refreshes cached spring lengths after positions moved.
func (c *Cloth) UpdateLengths() {
	for i := range c.Structural {
		c.Structural[i].UpdateLength(c.Nodes)
	}
	for i := range c.Bending {
		c.Bending[i].UpdateLength(c.Nodes)
	}
}

// Energy is kinetic plus elastic plus gravitational potential, the latter
// measured from the origin.
func (c *Cloth) Energy() float64 {
	var e float64
	for i := range c.Nodes {
		n := &c.Nodes[i]
		e += n.KineticEnergy()
		e -= n.Mass * c.Params.Gravity.Dot(n.Position)
	}
	return e + c.ElasticEnergy()
}

func (c *Cloth) ElasticEnergy() float64 {
	var e float64
	for i := range c.Structural {
		e += c.Structural[i].PotentialEnergy()
	}
	for i := range c.Bending {
		e += c.Bending[i].PotentialEnergy()
	}
	return e
}

// Positions returns a snapshot ordered by node index.
func (c *Cloth) Positions() []mgl64.Vec3 {
	out := make([]mgl64.Vec3, len(c.Nodes))
	for i := range c.Nodes {
		out[i] = c.Nodes[i].Position
	}
	return out
}

// FlatPositions returns x0 y0 z0 x1 ... in node order.
func (c *Cloth) FlatPositions() []float64 {
	out := make([]float64, 0, 3*len(c.Nodes))
	for i := range c.Nodes {
		p := c.Nodes[i].Position
		out = append(out, p[0], p[1], p[2])
	}
	return out
}

func (c *Cloth) SetFixed(fixed bool, indices ...int) error {
	for _, idx := range indices {
		if idx < 0 || idx >= len(c.Nodes) {
			return fmt.Errorf("%w: node %d of %d", dynamo.ErrParameterBounds, idx, len(c.Nodes))
		}
	}
	for _, idx := range indices {
		c.Nodes[idx].Fixed = fixed
	}
	return nil
}

func (c *Cloth) FixedCount() int {
	n := 0
	for i := range c.Nodes {
		if c.Nodes[i].Fixed {
			n++
		}
	}
	return n
}

// ApplyRigidTransform shifts every fixed node by delta. Velocities are kept.
func (c *Cloth) ApplyRigidTransform(delta mgl64.Vec3) {
	if delta == (mgl64.Vec3{}) {
		return
	}
	for i := range c.Nodes {
		if c.Nodes[i].Fixed {
			c.Nodes[i].Translate(delta)
		}
	}
}

// Bounds is the axis-aligned box around all nodes.
func (c *Cloth) Bounds() (lo, hi mgl64.Vec3) {
	if len(c.Nodes) == 0 {
		return
	}
	lo, hi = c.Nodes[0].Position, c.Nodes[0].Position
	for i := 1; i < len(c.Nodes); i++ {
		p := c.Nodes[i].Position
		for k := 0; k < 3; k++ {
			lo[k] = math.Min(lo[k], p[k])
			hi[k] = math.Max(hi[k], p[k])
		}
	}
	return lo, hi
}

func (c *Cloth) GetParams() map[string]float64 {
	p := c.Params
	return map[string]float64{
		"mass":               p.TotalMass,
		"traction_stiffness": p.TractionStiffness,
		"flexion_stiffness":  p.FlexionStiffness,
		"air_friction":       p.AirFriction,
		"cloth_friction":     p.ClothFriction,
		"spring_damping":     p.SpringDamping,
		"gravity":            p.Gravity.Len(),
		"wind_x":             p.Wind.Velocity.X(),
		"wind_y":             p.Wind.Velocity.Y(),
		"wind_z":             p.Wind.Velocity.Z(),
	}
}

// SetParam changes a tunable between ticks. Stiffness changes are pushed to
// every spring of that kind; a mass change is spread evenly over the nodes.
// Gravity is tuned by magnitude and keeps its direction.
func (c *Cloth) SetParam(name string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return fmt.Errorf("%w: %s = %v", dynamo.ErrParameterBounds, name, value)
	}

	nonNegative := func(dst *float64) error {
		if value < 0 {
			return fmt.Errorf("%w: %s = %v", dynamo.ErrParameterBounds, name, value)
		}
		*dst = value
		return nil
	}

	p := &c.Params
	switch name {
	case "mass":
		if value <= 0 {
			return fmt.Errorf("%w: %v", dynamo.ErrInvalidMass, value)
		}
		p.TotalMass = value
		m := value / float64(len(c.Nodes))
		for i := range c.Nodes {
			c.Nodes[i].Mass = m
		}
	case "traction_stiffness":
		if err := nonNegative(&p.TractionStiffness); err != nil {
			return err
		}
		for i := range c.Structural {
			c.Structural[i].SetStiffness(value)
		}
	case "flexion_stiffness":
		if err := nonNegative(&p.FlexionStiffness); err != nil {
			return err
		}
		for i := range c.Bending {
			c.Bending[i].SetStiffness(value)
		}
	case "air_friction":
		return nonNegative(&p.AirFriction)
	case "cloth_friction":
		return nonNegative(&p.ClothFriction)
	case "spring_damping":
		return nonNegative(&p.SpringDamping)
	case "gravity":
		if value < 0 {
			return fmt.Errorf("%w: %s = %v", dynamo.ErrParameterBounds, name, value)
		}
		p.Gravity = ScaleGravity(p.Gravity, value)
	case "wind_x":
		p.Wind.Velocity[0] = value
	case "wind_y":
		p.Wind.Velocity[1] = value
	case "wind_z":
		p.Wind.Velocity[2] = value
	default:
		return fmt.Errorf("%w: %s", dynamo.ErrUnknownParameter, name)
	}
	return nil
}
