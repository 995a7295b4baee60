package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Node is a point mass of the cloth. Index matches the originating vertex.
type Node struct {
	Index    int
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Force    mgl64.Vec3
	Mass     float64
	Fixed    bool
}

// NewNode returns a node at rest.
func NewNode(index int, position mgl64.Vec3, mass float64) Node {
	return Node{Index: index, Position: position, Mass: mass}
}

// ResetForce zeroes the accumulator.
func (n *Node) ResetForce() {
	n.Force = mgl64.Vec3{}
}

// ApplyBodyForces adds weight and a global linear drag proportional to mass
// and velocity.
func (n *Node) ApplyBodyForces(gravity mgl64.Vec3, drag float64) {
	d := drag * n.Mass
	n.Force = n.Force.Add(gravity.Mul(n.Mass))
	n.Force = n.Force.Sub(n.Velocity.Mul(d))
}

// KineticEnergy returns ½ m |v|².
func (n *Node) KineticEnergy() float64 {
	return 0.5 * n.Mass * n.Velocity.LenSqr()
}

// Translate shifts the node without touching its velocity.
func (n *Node) Translate(delta mgl64.Vec3) {
	n.Position = n.Position.Add(delta)
}
