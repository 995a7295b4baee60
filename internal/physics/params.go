package physics

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

const (
	DefaultMass              = 100.0
	DefaultTractionStiffness = 100.0
	DefaultFlexionStiffness  = 50.0
	DefaultAirFriction       = 0.25
	DefaultSpringDamping     = 0.15
	DefaultClothFriction     = 0.5
)

// DefaultGravity points down the Y axis.
var DefaultGravity = mgl64.Vec3{0, -9.81, 0}

// ScaleGravity returns g rescaled to the given magnitude, keeping its
// direction. A zero g is taken to point down -Y.
func ScaleGravity(g mgl64.Vec3, magnitude float64) mgl64.Vec3 {
	l := g.Len()
	if l == 0 {
		return mgl64.Vec3{0, -magnitude, 0}
	}
	return g.Mul(magnitude / l)
}

// Params are the per-cloth scalars. AirFriction is the global linear drag
// applied to every node; ClothFriction scales the aerodynamic face force.
type Params struct {
	TotalMass         float64
	TractionStiffness float64
	FlexionStiffness  float64
	AirFriction       float64
	ClothFriction     float64
	SpringDamping     float64
	Gravity           mgl64.Vec3
	Wind              Wind
}

func DefaultParams() Params {
	return Params{
		TotalMass:         DefaultMass,
		TractionStiffness: DefaultTractionStiffness,
		FlexionStiffness:  DefaultFlexionStiffness,
		AirFriction:       DefaultAirFriction,
		ClothFriction:     DefaultClothFriction,
		SpringDamping:     DefaultSpringDamping,
		Gravity:           DefaultGravity,
	}
}

// Validate rejects parameter sets that cannot produce a simulation.
func (p Params) Validate() error {
	if !(p.TotalMass > 0) || math.IsInf(p.TotalMass, 0) {
		return fmt.Errorf("%w: total mass %v", dynamo.ErrInvalidMass, p.TotalMass)
	}
	for name, v := range map[string]float64{
		"traction_stiffness": p.TractionStiffness,
		"flexion_stiffness":  p.FlexionStiffness,
		"air_friction":       p.AirFriction,
		"cloth_friction":     p.ClothFriction,
		"spring_damping":     p.SpringDamping,
	} {
		if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s = %v", dynamo.ErrParameterBounds, name, v)
		}
	}
	if !dynamo.IsFinite(p.Gravity) || !dynamo.IsFinite(p.Wind.Velocity) {
		return fmt.Errorf("%w: gravity/wind must be finite", dynamo.ErrParameterBounds)
	}
	return nil
}
