package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

type WindMode int

const (
	WindConstant WindMode = iota
	WindChanging
)

func (m WindMode) String() string {
	switch m {
	case WindConstant:
		return "constant"
	case WindChanging:
		return "changing"
	default:
		return fmt.Sprintf("WindMode(%d)", int(m))
	}
}

// ParseWindMode accepts "constant" (or empty) and "changing".
func ParseWindMode(s string) (WindMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "constant":
		return WindConstant, nil
	case "changing":
		return WindChanging, nil
	}
	return 0, fmt.Errorf("%w: wind mode %q", dynamo.ErrParameterBounds, s)
}

// Wind is the ambient air velocity. In changing mode Velocity is ignored and
// the periodic gust pattern is sampled at the simulation time instead.
type Wind struct {
	Mode     WindMode
	Velocity mgl64.Vec3
}

func (w Wind) At(t float64) mgl64.Vec3 {
	if w.Mode != WindChanging {
		return w.Velocity
	}
	s, c := math.Sincos(t / 2)
	return mgl64.Vec3{10 * s, -10 * s * c, 20 * c}
}

// AirDrag adds the aerodynamic force of one triangle to its three nodes.
// Zero-area triangles contribute nothing.
func AirDrag(nodes []dynamo.Node, tri dynamo.Triangle, wind mgl64.Vec3, friction float64) {
	a, b, c := &nodes[tri[0]], &nodes[tri[1]], &nodes[tri[2]]

	normal, twiceArea := dynamo.Normalize(b.Position.Sub(c.Position).Cross(a.Position.Sub(c.Position)))
	if twiceArea == 0 {
		return
	}
	area := twiceArea / 2

	vel := a.Velocity.Add(b.Velocity).Add(c.Velocity).Mul(1.0 / 3)
	f := normal.Mul(friction * area * normal.Dot(wind.Sub(vel)) / 3)

	a.Force = a.Force.Add(f)
	b.Force = b.Force.Add(f)
	c.Force = c.Force.Add(f)
}
