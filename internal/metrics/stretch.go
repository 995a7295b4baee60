package metrics

import (
	"math"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/physics"
)

// Stretch is the mean, over ticks, of the largest structural spring strain.
// Large values mean the cloth behaves like rubber rather than fabric.
type Stretch struct {
	name    string
	cloth   *physics.Cloth
	sum     float64
	peak    float64
	samples int
}

func NewStretch(c *physics.Cloth) *Stretch {
	return &Stretch{
		name:  "stretch",
		cloth: c,
	}
}

func (s *Stretch) Name() string {
	return s.name
}

func (s *Stretch) Observe(_ []dynamo.Node, _ float64) {
	worst := 0.0
	for i := range s.cloth.Structural {
		worst = math.Max(worst, math.Abs(s.cloth.Structural[i].Strain()))
	}
	s.sum += worst
	s.peak = math.Max(s.peak, worst)
	s.samples++
}

func (s *Stretch) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.sum / float64(s.samples)
}

// Peak is the largest strain seen since the last Reset.
func (s *Stretch) Peak() float64 { return s.peak }

func (s *Stretch) Reset() {
	s.sum = 0
	s.peak = 0
	s.samples = 0
}
