package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Sphere pushes interior nodes out radially. Force only.
type Sphere struct {
	Center     mgl64.Vec3
	Radius     float64
	BaseRadius float64
	Rigidity   float64
}

func NewSphere(center mgl64.Vec3, radius, rigidity float64) *Sphere {
	return &Sphere{Center: center, Radius: radius, BaseRadius: radius, Rigidity: rigidity}
}

// SetPose moves the sphere and scales its radius by the X scale.
func (s *Sphere) SetPose(t Transform) {
	s.Center = t.Position
	s.Radius = s.BaseRadius * t.Scale.X()
}

func (s *Sphere) ApplyPenalty(n *dynamo.Node) {
	dir, dist := dynamo.Normalize(n.Position.Sub(s.Center))
	if dist >= s.Radius || dist == 0 {
		return
	}
	n.Force = n.Force.Add(dir.Mul(s.Rigidity * (s.Radius - dist)))
}
