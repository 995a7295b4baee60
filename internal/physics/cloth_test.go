package physics

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

func TestNewClothValidatesParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		err    error
	}{
		{"zero mass", func(p *Params) { p.TotalMass = 0 }, dynamo.ErrInvalidMass},
		{"nan mass", func(p *Params) { p.TotalMass = math.NaN() }, dynamo.ErrInvalidMass},
		{"negative stiffness", func(p *Params) { p.TractionStiffness = -1 }, dynamo.ErrParameterBounds},
		{"infinite gravity", func(p *Params) { p.Gravity = mgl64.Vec3{0, math.Inf(-1), 0} }, dynamo.ErrParameterBounds},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mutate(&p)
			if _, err := NewCloth(quad(), p); !errors.Is(err, tt.err) {
				t.Errorf("err = %v, want %v", err, tt.err)
			}
		})
	}
}

func TestClothAtRestFeelsOnlyGravity(t *testing.T) {
	c, err := NewCloth(quad(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	c.AccumulateForces(0, nil)

	want := mgl64.Vec3{0, -9.81 * 25, 0}
	for _, n := range c.Nodes {
		if !n.Force.ApproxEqualThreshold(want, 1e-9) {
			t.Errorf("node %d force = %v, want %v", n.Index, n.Force, want)
		}
	}
}

type pushUp struct{ calls int }

func (p *pushUp) ApplyPenalty(n *dynamo.Node) {
	p.calls++
	n.Force = n.Force.Add(mgl64.Vec3{0, 1, 0})
}

func TestClothCollidersSkipFixedNodes(t *testing.T) {
	p := DefaultParams()
	p.Gravity = mgl64.Vec3{}
	c, err := NewCloth(quad(), p)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetFixed(true, 0, 1); err != nil {
		t.Fatal(err)
	}

	col := &pushUp{}
	c.AccumulateForces(0, []dynamo.Collider{col})

	if col.calls != 2 {
		t.Errorf("collider called %d times, want 2", col.calls)
	}
	if c.Nodes[0].Force.Y() != 0 || c.Nodes[3].Force.Y() != 1 {
		t.Errorf("forces = %v / %v", c.Nodes[0].Force, c.Nodes[3].Force)
	}
}

func TestClothEnergy(t *testing.T) {
	p := DefaultParams()
	p.TotalMass = 4
	c, err := NewCloth(quad(), p)
	if err != nil {
		t.Fatal(err)
	}
	// nodes 2 and 3 sit at y=1 with mass 1
	if got, want := c.Energy(), 2*9.81; math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %v, want %v", got, want)
	}

	c.Nodes[0].Velocity = mgl64.Vec3{2, 0, 0}
	if got, want := c.Energy(), 2*9.81+2; math.Abs(got-want) > 1e-12 {
		t.Errorf("Energy = %v, want %v", got, want)
	}

	c.Nodes[3].Position = mgl64.Vec3{1, 2, 0}
	c.UpdateLengths()
	if c.ElasticEnergy() <= 0 {
		t.Error("stretched cloth should store elastic energy")
	}
}

func TestClothSetParam(t *testing.T) {
	c, err := NewCloth(quad(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	if err := c.SetParam("traction_stiffness", 7); err != nil {
		t.Fatal(err)
	}
	for _, s := range c.Structural {
		if s.Stiffness != 7 {
			t.Errorf("structural stiffness = %v, want 7", s.Stiffness)
		}
	}
	if c.Bending[0].Stiffness != DefaultFlexionStiffness {
		t.Error("bending stiffness must not change")
	}

	if err := c.SetParam("mass", 8); err != nil {
		t.Fatal(err)
	}
	for _, n := range c.Nodes {
		if n.Mass != 2 {
			t.Errorf("node mass = %v, want 2", n.Mass)
		}
	}

	if err := c.SetParam("wind_z", 4); err != nil {
		t.Fatal(err)
	}
	if got := c.GetParams()["wind_z"]; got != 4 {
		t.Errorf("wind_z = %v", got)
	}

	if err := c.SetParam("viscosity", 1); !errors.Is(err, dynamo.ErrUnknownParameter) {
		t.Errorf("unknown param err = %v", err)
	}
	if err := c.SetParam("spring_damping", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("negative damping err = %v", err)
	}
	if err := c.SetParam("mass", 0); !errors.Is(err, dynamo.ErrInvalidMass) {
		t.Errorf("zero mass err = %v", err)
	}
}

func TestClothSetGravityKeepsDirection(t *testing.T) {
	p := DefaultParams()
	p.Gravity = mgl64.Vec3{3, -4, 0}
	c, err := NewCloth(quad(), p)
	if err != nil {
		t.Fatal(err)
	}
	if got := c.GetParams()["gravity"]; math.Abs(got-5) > 1e-12 {
		t.Errorf("gravity magnitude = %v, want 5", got)
	}

	if err := c.SetParam("gravity", 10); err != nil {
		t.Fatal(err)
	}
	if !c.Params.Gravity.ApproxEqual(mgl64.Vec3{6, -8, 0}) {
		t.Errorf("gravity = %v, want [6 -8 0]", c.Params.Gravity)
	}

	if err := c.SetParam("gravity", -1); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("negative gravity err = %v", err)
	}

	c.Params.Gravity = mgl64.Vec3{}
	if err := c.SetParam("gravity", 2); err != nil {
		t.Fatal(err)
	}
	if c.Params.Gravity != (mgl64.Vec3{0, -2, 0}) {
		t.Errorf("gravity from zero = %v, want [0 -2 0]", c.Params.Gravity)
	}
}

func TestClothSnapshots(t *testing.T) {
	c, err := NewCloth(quad(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}

	pos := c.Positions()
	pos[0] = mgl64.Vec3{9, 9, 9}
	if c.Nodes[0].Position == pos[0] {
		t.Error("Positions must return a copy")
	}

	flat := c.FlatPositions()
	if len(flat) != 12 || flat[9] != 1 || flat[10] != 1 {
		t.Errorf("FlatPositions = %v", flat)
	}

	lo, hi := c.Bounds()
	if lo != (mgl64.Vec3{0, 0, 0}) || hi != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("Bounds = %v %v", lo, hi)
	}
}

func TestClothApplyRigidTransform(t *testing.T) {
	c, err := NewCloth(quad(), DefaultParams())
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetFixed(true, 5); !errors.Is(err, dynamo.ErrParameterBounds) {
		t.Errorf("out of range err = %v", err)
	}
	if err := c.SetFixed(true, 2); err != nil {
		t.Fatal(err)
	}

	c.ApplyRigidTransform(mgl64.Vec3{0, 0, 1})
	if c.Nodes[2].Position != (mgl64.Vec3{0, 1, 1}) {
		t.Errorf("fixed node at %v", c.Nodes[2].Position)
	}
	if c.Nodes[3].Position != (mgl64.Vec3{1, 1, 0}) {
		t.Errorf("free node moved to %v", c.Nodes[3].Position)
	}
	if c.FixedCount() != 1 {
		t.Errorf("FixedCount = %d", c.FixedCount())
	}
}
