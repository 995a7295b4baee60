package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Spring is a damped linear connector between nodes A and B.
// RestLength is captured from the geometry at creation and never changes.
type Spring struct {
	A, B       int
	RestLength float64
	Length     float64
	Stiffness  float64
	Dir        mgl64.Vec3 // unit vector from B towards A
}

// NewSpring connects nodes a and b, taking the rest length from their
// current distance.
func NewSpring(nodes []Node, a, b int, stiffness float64) Spring {
	s := Spring{A: a, B: b, Stiffness: stiffness}
	s.UpdateLength(nodes)
	s.RestLength = s.Length
	return s
}

// UpdateLength refreshes the cached length and direction. It must run after
// every position update and before the next force pass.
func (s *Spring) UpdateLength(nodes []Node) {
	s.Dir, s.Length = Normalize(nodes[s.A].Position.Sub(nodes[s.B].Position))
}

// SetStiffness replaces k.
func (s *Spring) SetStiffness(k float64) {
	s.Stiffness = k
}

// AccumulateForces adds the elastic and damping forces to both endpoints,
// with opposite signs.
func (s *Spring) AccumulateForces(nodes []Node, damping float64) {
	a, b := &nodes[s.A], &nodes[s.B]

	force := s.Dir.Mul(-s.Stiffness * (s.Length - s.RestLength))

	d := damping * s.Stiffness
	dampingForce := s.Dir.Mul(-d * s.Dir.Dot(a.Velocity.Sub(b.Velocity)))

	a.Force = a.Force.Add(force).Add(dampingForce)
	b.Force = b.Force.Sub(force).Sub(dampingForce)
}

// PotentialEnergy returns ½ k (L - L0)².
func (s *Spring) PotentialEnergy() float64 {
	stretch := s.Length - s.RestLength
	return 0.5 * s.Stiffness * stretch * stretch
}

// Strain returns (L - L0) / L0, or 0 for a zero rest length.
func (s *Spring) Strain() float64 {
	if s.RestLength == 0 {
		return 0
	}
	return (s.Length - s.RestLength) / s.RestLength
}

// Equals reports whether both springs join the same unordered node pair.
func (s Spring) Equals(other Spring) bool {
	return (s.A == other.A && s.B == other.B) || (s.A == other.B && s.B == other.A)
}

// Key returns the node pair with the lower index first.
func (s Spring) Key() [2]int {
	if s.A < s.B {
		return [2]int{s.A, s.B}
	}
	return [2]int{s.B, s.A}
}
