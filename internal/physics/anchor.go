package physics

import "github.com/go-gl/mathgl/mgl64"

// Anchor is an axis-aligned box that pins the cloth nodes inside it. Moving
// the box drags those nodes along rigidly.
type Anchor struct {
	Name     string
	Min, Max mgl64.Vec3
	// Drift moves the box at a constant velocity every step.
	Drift mgl64.Vec3

	nodes    []int
	pending  mgl64.Vec3
	velocity mgl64.Vec3
}

func NewAnchor(name string, min, max mgl64.Vec3) *Anchor {
	for k := 0; k < 3; k++ {
		if min[k] > max[k] {
			min[k], max[k] = max[k], min[k]
		}
	}
	return &Anchor{Name: name, Min: min, Max: max}
}

func (a *Anchor) Contains(p mgl64.Vec3) bool {
	for k := 0; k < 3; k++ {
		if p[k] < a.Min[k] || p[k] > a.Max[k] {
			return false
		}
	}
	return true
}

// Capture fixes every node inside the box and remembers it. It returns the
// number of captured nodes.
func (a *Anchor) Capture(c *Cloth) int {
	a.nodes = a.nodes[:0]
	for i := range c.Nodes {
		if a.Contains(c.Nodes[i].Position) {
			c.Nodes[i].Fixed = true
			a.nodes = append(a.nodes, i)
		}
	}
	return len(a.nodes)
}

func (a *Anchor) Nodes() []int { return a.nodes }

func (a *Anchor) Center() mgl64.Vec3 {
	return a.Min.Add(a.Max).Mul(0.5)
}

// MoveBy shifts the box now; captured nodes follow on the next Step.
func (a *Anchor) MoveBy(delta mgl64.Vec3) {
	a.Min = a.Min.Add(delta)
	a.Max = a.Max.Add(delta)
	a.pending = a.pending.Add(delta)
}

func (a *Anchor) MoveTo(center mgl64.Vec3) {
	a.MoveBy(center.Sub(a.Center()))
}

// Step applies drift and any pending displacement to the captured nodes. With
// nothing to apply, nodes are left untouched.
func (a *Anchor) Step(c *Cloth, dt float64) {
	if a.Drift != (mgl64.Vec3{}) {
		a.MoveBy(a.Drift.Mul(dt))
	}
	delta := a.pending
	a.pending = mgl64.Vec3{}
	if delta == (mgl64.Vec3{}) {
		a.velocity = mgl64.Vec3{}
		return
	}
	for _, idx := range a.nodes {
		c.Nodes[idx].Translate(delta)
	}
	if dt > 0 {
		a.velocity = delta.Mul(1 / dt)
	}
}

// Velocity is the displacement of the last Step divided by its dt.
func (a *Anchor) Velocity() mgl64.Vec3 { return a.velocity }
