package integrators

import "github.com/san-kum/clothsim/internal/dynamo"

// Symplectic is semi-implicit Euler: velocity first, then position with the
// new velocity.
type Symplectic struct{}

func NewSymplectic() *Symplectic {
	return &Symplectic{}
}

func (s *Symplectic) Name() string { return "symplectic" }

func (s *Symplectic) Integrate(nodes []dynamo.Node, dt float64) {
	for i := range nodes {
		n := &nodes[i]
		if n.Fixed {
			continue
		}
		n.Velocity = n.Velocity.Add(n.Force.Mul(dt / n.Mass))
		n.Position = n.Position.Add(n.Velocity.Mul(dt))
	}
}
