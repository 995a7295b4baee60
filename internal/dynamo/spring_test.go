package dynamo

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func twoNodes(dist float64) []Node {
	return []Node{
		NewNode(0, mgl64.Vec3{0, 0, 0}, 1),
		NewNode(1, mgl64.Vec3{dist, 0, 0}, 1),
	}
}

func TestSpringRestLengthMatchesConstruction(t *testing.T) {
	nodes := []Node{
		NewNode(0, mgl64.Vec3{0.1, 0.7, -0.3}, 1),
		NewNode(1, mgl64.Vec3{1.9, -2.2, 0.4}, 1),
	}
	s := NewSpring(nodes, 0, 1, 100)
	s.UpdateLength(nodes)

	if s.Length != s.RestLength {
		t.Errorf("Length = %v, RestLength = %v, want equal", s.Length, s.RestLength)
	}
}

func TestSpringDirectionPointsFromBToA(t *testing.T) {
	nodes := twoNodes(2)
	s := NewSpring(nodes, 0, 1, 1)
	if !s.Dir.ApproxEqual(mgl64.Vec3{-1, 0, 0}) {
		t.Errorf("Dir = %v, want [-1 0 0]", s.Dir)
	}
}

func TestSpringStretchedPullsEndpointsTogether(t *testing.T) {
	nodes := twoNodes(1)
	s := NewSpring(nodes, 0, 1, 10)

	nodes[1].Position = mgl64.Vec3{1.5, 0, 0}
	s.UpdateLength(nodes)
	s.AccumulateForces(nodes, 0)

	if math.Abs(nodes[0].Force.X()-5) > 1e-12 {
		t.Errorf("A force x = %v, want 5", nodes[0].Force.X())
	}
	if math.Abs(nodes[1].Force.X()+5) > 1e-12 {
		t.Errorf("B force x = %v, want -5", nodes[1].Force.X())
	}
	sum := nodes[0].Force.Add(nodes[1].Force)
	if sum.Len() > 1e-12 {
		t.Errorf("forces do not cancel: %v", sum)
	}
}

func TestSpringDampingOpposesRelativeVelocity(t *testing.T) {
	nodes := twoNodes(1)
	s := NewSpring(nodes, 0, 1, 10)

	nodes[0].Velocity = mgl64.Vec3{-1, 0, 0}
	s.AccumulateForces(nodes, 0.5)

	// A moves away from B; damping must pull A back (+x) and B towards A (-x).
	if nodes[0].Force.X() <= 0 {
		t.Errorf("A damping force x = %v, want > 0", nodes[0].Force.X())
	}
	if nodes[1].Force.X() >= 0 {
		t.Errorf("B damping force x = %v, want < 0", nodes[1].Force.X())
	}
}

func TestSpringForcesAccumulate(t *testing.T) {
	nodes := []Node{
		NewNode(0, mgl64.Vec3{0, 0, 0}, 1),
		NewNode(1, mgl64.Vec3{1, 0, 0}, 1),
		NewNode(2, mgl64.Vec3{-1, 0, 0}, 1),
	}
	s1 := NewSpring(nodes, 0, 1, 10)
	s2 := NewSpring(nodes, 0, 2, 10)

	nodes[1].Position = mgl64.Vec3{2, 0, 0}
	nodes[2].Position = mgl64.Vec3{-2, 0, 0}
	s1.UpdateLength(nodes)
	s2.UpdateLength(nodes)
	s1.AccumulateForces(nodes, 0)
	s2.AccumulateForces(nodes, 0)

	if nodes[0].Force.Len() > 1e-12 {
		t.Errorf("symmetric pulls should cancel on node 0, got %v", nodes[0].Force)
	}
}

func TestSpringEquals(t *testing.T) {
	tests := []struct {
		name string
		a, b Spring
		want bool
	}{
		{"same order", Spring{A: 1, B: 2}, Spring{A: 1, B: 2}, true},
		{"swapped", Spring{A: 1, B: 2}, Spring{A: 2, B: 1}, true},
		{"different", Spring{A: 1, B: 2}, Spring{A: 1, B: 3}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Equals(tt.b); got != tt.want {
				t.Errorf("Equals() = %v, want %v", got, tt.want)
			}
			if got := tt.a.Key() == tt.b.Key(); got != tt.want {
				t.Errorf("Key equality = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSpringZeroLengthHasNoDirection(t *testing.T) {
	nodes := twoNodes(0)
	s := NewSpring(nodes, 0, 1, 10)
	if s.Dir != (mgl64.Vec3{}) {
		t.Errorf("Dir = %v, want zero", s.Dir)
	}
	s.AccumulateForces(nodes, 1)
	if !IsFinite(nodes[0].Force) {
		t.Errorf("force went non-finite: %v", nodes[0].Force)
	}
}
