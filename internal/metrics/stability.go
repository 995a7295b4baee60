package metrics

import (
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Stability is the fraction of ticks on which every node is finite and no
// node moves faster than the speed threshold.
type Stability struct {
	name       string
	threshold  float64
	violations int
	samples    int
}

func NewStability(speedThreshold float64) *Stability {
	return &Stability{
		name:      "stability",
		threshold: speedThreshold,
	}
}

func (s *Stability) Name() string {
	return s.name
}

func (s *Stability) Observe(nodes []dynamo.Node, _ float64) {
	s.samples++
	limit := s.threshold * s.threshold
	for i := range nodes {
		n := &nodes[i]
		if !dynamo.IsFinite(n.Position) || !dynamo.IsFinite(n.Velocity) || n.Velocity.LenSqr() > limit {
			s.violations++
			break
		}
	}
}

func (s *Stability) Value() float64 {
	if s.samples == 0 {
		return 1.0
	}
	return 1.0 - float64(s.violations)/float64(s.samples)
}

func (s *Stability) Reset() {
	s.violations = 0
	s.samples = 0
}
