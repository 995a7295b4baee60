package dynamo

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Normalize returns the unit vector along v and its length. A zero-length
// input yields the zero vector instead of NaN components.
func Normalize(v mgl64.Vec3) (mgl64.Vec3, float64) {
	l := v.Len()
	if l == 0 {
		return mgl64.Vec3{}, 0
	}
	return v.Mul(1 / l), l
}

// IsFinite reports whether no component is NaN or Inf.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

func wrapGeometry(format string, args ...any) error {
	return fmt.Errorf("%w: "+format, append([]any{ErrInvalidGeometry}, args...)...)
}
