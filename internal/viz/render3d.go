package viz

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	minDistance = 0.5
	maxDistance = 100.0
	maxPitch    = math.Pi/2 - 0.05
)

// Camera orbits Target at Distance. Yaw turns around +Y, Pitch tilts
// towards the top view.
type Camera struct {
	Target     mgl64.Vec3
	Yaw, Pitch float64
	Distance   float64
	FOV, Near  float64
}

func NewCamera() *Camera {
	return &Camera{
		Target:   mgl64.Vec3{0, 0.75, 0},
		Yaw:      0.6,
		Pitch:    0.35,
		Distance: 5,
		FOV:      math.Pi / 4,
		Near:     0.05,
	}
}

// Frame centers the camera on the box lo..hi and backs off until it fits.
func (c *Camera) Frame(lo, hi mgl64.Vec3) {
	c.Target = lo.Add(hi).Mul(0.5)
	radius := hi.Sub(lo).Len() / 2
	if radius == 0 {
		return
	}
	c.Distance = clamp(radius/math.Sin(c.FOV/2)*1.1, minDistance, maxDistance)
}

func (c *Camera) RotateYaw(a float64)   { c.Yaw += a }
func (c *Camera) RotatePitch(a float64) { c.Pitch = clamp(c.Pitch+a, -maxPitch, maxPitch) }
func (c *Camera) ZoomIn()               { c.Distance = clamp(c.Distance/1.2, minDistance, maxDistance) }
func (c *Camera) ZoomOut()              { c.Distance = clamp(c.Distance*1.2, minDistance, maxDistance) }

func (c *Camera) Eye() mgl64.Vec3 {
	cp := math.Cos(c.Pitch)
	dir := mgl64.Vec3{cp * math.Sin(c.Yaw), math.Sin(c.Pitch), cp * math.Cos(c.Yaw)}
	return c.Target.Add(dir.Mul(c.Distance))
}

func (c *Camera) View() mgl64.Mat4 {
	return mgl64.LookAtV(c.Eye(), c.Target, mgl64.Vec3{0, 1, 0})
}

// Project maps p onto a sw x sh pixel raster. It returns the pixel, the
// depth along the view axis, and whether p lies in front of the camera.
func (c *Camera) Project(p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	return c.project(c.View(), p, sw, sh)
}

func (c *Camera) project(view mgl64.Mat4, p mgl64.Vec3, sw, sh int) (int, int, float64, bool) {
	v := mgl64.TransformCoordinate(p, view)
	depth := -v.Z()
	if depth < c.Near {
		return 0, 0, depth, false
	}
	minDim := math.Min(float64(sw), float64(sh))
	scale := minDim / 2 / math.Tan(c.FOV/2) / depth
	sx := int(math.Round(float64(sw)/2 + v.X()*scale))
	sy := int(math.Round(float64(sh)/2 - v.Y()*scale))
	return sx, sy, depth, true
}

type Edge struct {
	Start, End mgl64.Vec3
	Ink        Ink
}

type Wireframe struct{ Edges []Edge }

func NewWireframe() *Wireframe                      { return &Wireframe{Edges: make([]Edge, 0)} }
func (w *Wireframe) AddEdge(s, e mgl64.Vec3, i Ink) { w.Edges = append(w.Edges, Edge{s, e, i}) }
func (w *Wireframe) AddPoint(p mgl64.Vec3, i Ink)   { w.Edges = append(w.Edges, Edge{p, p, i}) }
func (w *Wireframe) Clear()                         { w.Edges = w.Edges[:0] }
func (w *Wireframe) Append(o *Wireframe)            { w.Edges = append(w.Edges, o.Edges...) }

// AddSprings draws each spring between its current endpoint positions.
// Springs touching a fixed node use InkFixed.
func (w *Wireframe) AddSprings(nodes []dynamo.Node, springs []dynamo.Spring) {
	for _, s := range springs {
		ink := InkCloth
		if nodes[s.A].Fixed || nodes[s.B].Fixed {
			ink = InkFixed
		}
		w.AddEdge(nodes[s.A].Position, nodes[s.B].Position, ink)
	}
}

// AddCollider outlines a collider: a square patch for a plane, three great
// circles for a sphere, every triangle edge for a mesh.
func (w *Wireframe) AddCollider(c dynamo.Collider) {
	switch c := c.(type) {
	case *collision.Plane:
		w.addPlane(c, 2, 4)
	case *collision.Sphere:
		w.addSphere(c, 24)
	case *collision.Mesh:
		for _, t := range c.Triangles {
			a, b, d := c.Vertices[t[0]], c.Vertices[t[1]], c.Vertices[t[2]]
			w.AddEdge(a, b, InkObstacle)
			w.AddEdge(b, d, InkObstacle)
			w.AddEdge(d, a, InkObstacle)
		}
	}
}

func (w *Wireframe) addPlane(p *collision.Plane, half float64, lines int) {
	u := mgl64.Vec3{1, 0, 0}
	if math.Abs(p.Normal.Dot(u)) > 0.9 {
		u = mgl64.Vec3{0, 0, 1}
	}
	u = p.Normal.Cross(u).Normalize()
	v := p.Normal.Cross(u)
	for i := 0; i <= lines; i++ {
		f := -half + 2*half*float64(i)/float64(lines)
		w.AddEdge(p.Point.Add(u.Mul(f)).Sub(v.Mul(half)), p.Point.Add(u.Mul(f)).Add(v.Mul(half)), InkObstacle)
		w.AddEdge(p.Point.Add(v.Mul(f)).Sub(u.Mul(half)), p.Point.Add(v.Mul(f)).Add(u.Mul(half)), InkObstacle)
	}
}

func (w *Wireframe) addSphere(s *collision.Sphere, segments int) {
	axes := [3][2]mgl64.Vec3{
		{{1, 0, 0}, {0, 1, 0}},
		{{0, 1, 0}, {0, 0, 1}},
		{{0, 0, 1}, {1, 0, 0}},
	}
	for _, ax := range axes {
		prev := s.Center.Add(ax[0].Mul(s.Radius))
		for i := 1; i <= segments; i++ {
			a := 2 * math.Pi * float64(i) / float64(segments)
			next := s.Center.Add(ax[0].Mul(s.Radius * math.Cos(a))).Add(ax[1].Mul(s.Radius * math.Sin(a)))
			w.AddEdge(prev, next, InkObstacle)
			prev = next
		}
	}
}

func CreateAxesWireframe(l float64) *Wireframe {
	w, o := NewWireframe(), mgl64.Vec3{}
	w.AddEdge(o, mgl64.Vec3{l, 0, 0}, InkAxis)
	w.AddEdge(o, mgl64.Vec3{0, l, 0}, InkAxis)
	w.AddEdge(o, mgl64.Vec3{0, 0, l}, InkAxis)
	return w
}

type ProjectedEdge struct {
	X1, Y1, X2, Y2 int
	Depth          float64
	Ink            Ink
}

// ProjectEdges projects every edge with both ends in front of the camera
// and at least one end near the raster, sorted far to near.
func ProjectEdges(w *Wireframe, cam *Camera, sw, sh int) []ProjectedEdge {
	view := cam.View()
	margin := 2 * (sw + sh)
	near := func(x, y int) bool {
		return x > -margin && x < sw+margin && y > -margin && y < sh+margin
	}

	proj := make([]ProjectedEdge, 0, len(w.Edges))
	for _, e := range w.Edges {
		x1, y1, d1, ok1 := cam.project(view, e.Start, sw, sh)
		x2, y2, d2, ok2 := cam.project(view, e.End, sw, sh)
		if !ok1 || !ok2 || !near(x1, y1) || !near(x2, y2) {
			continue
		}
		proj = append(proj, ProjectedEdge{x1, y1, x2, y2, (d1 + d2) / 2, e.Ink})
	}
	sort.SliceStable(proj, func(i, j int) bool { return proj[i].Depth > proj[j].Depth })
	return proj
}

// Render3D draws the wireframe far to near so nearer edges win the cell ink.
func Render3D(c *Canvas, w *Wireframe, cam *Camera) {
	if c == nil || w == nil || cam == nil {
		return
	}
	sw, sh := c.SubSize()
	for _, e := range ProjectEdges(w, cam, sw, sh) {
		c.SetPen(e.Ink)
		if e.X1 == e.X2 && e.Y1 == e.Y2 {
			c.Set(e.X1, e.Y1)
		} else {
			c.DrawLine(e.X1, e.Y1, e.X2, e.Y2)
		}
	}
	c.SetPen(InkCloth)
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
