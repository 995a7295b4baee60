package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	DefaultRigidity    = 15.0
	DefaultPlaneOffset = 0.2
)

// Plane keeps nodes on the side its normal points to.
type Plane struct {
	Normal   mgl64.Vec3
	Point    mgl64.Vec3
	Rigidity float64
	// Offset lifts a posed plane along its normal.
	Offset float64
}

// NewPlane normalizes n; a zero normal falls back to +Y.
func NewPlane(n, point mgl64.Vec3, rigidity float64) *Plane {
	p := &Plane{Rigidity: rigidity}
	p.set(n, point)
	return p
}

// PlaneFromPose derives the plane from an obstacle whose local up axis is
// its surface normal. The plane is lifted offset units along that normal.
func PlaneFromPose(t Transform, offset, rigidity float64) *Plane {
	p := &Plane{Rigidity: rigidity, Offset: offset}
	p.SetPose(t)
	return p
}

func (p *Plane) SetPose(t Transform) {
	unit, _ := dynamo.Normalize(t.Direction(mgl64.Vec3{0, 1, 0}))
	p.set(unit, t.Position.Add(unit.Mul(p.Offset)))
}

func (p *Plane) set(n, point mgl64.Vec3) {
	unit, l := dynamo.Normalize(n)
	if l == 0 {
		unit = mgl64.Vec3{0, 1, 0}
	}
	p.Normal = unit
	p.Point = point
}

// Distance is the signed distance of x from the plane.
func (p *Plane) Distance(x mgl64.Vec3) float64 {
	return p.Normal.Dot(x.Sub(p.Point))
}

// ApplyPenalty projects a penetrating node back onto the plane and adds
// rigidity * depth along the normal.
func (p *Plane) ApplyPenalty(n *dynamo.Node) {
	d := p.Distance(n.Position)
	if d >= 0 {
		return
	}
	depth := -d
	n.Position = n.Position.Add(p.Normal.Mul(depth))
	n.Force = n.Force.Add(p.Normal.Mul(p.Rigidity * depth))
}
