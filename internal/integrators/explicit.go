package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Explicit is forward Euler: position advances with the velocity from before
// the step. It gains energy on oscillating systems and is kept for comparison.
type Explicit struct{}

func NewExplicit() *Explicit {
	return &Explicit{}
}

func (e *Explicit) Name() string { return "explicit" }

func (e *Explicit) Integrate(nodes []dynamo.Node, dt float64) {
	for i := range nodes {
		n := &nodes[i]
		if n.Fixed {
			continue
		}
		n.Position = n.Position.Add(n.Velocity.Mul(dt))
		n.Velocity = n.Velocity.Add(n.Force.Mul(dt / n.Mass))
	}
}
