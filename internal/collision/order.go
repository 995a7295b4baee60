package collision

import (
	"sort"

	"github.com/san-kum/clothsim/internal/dynamo"
)

func rank(c dynamo.Collider) int {
	switch c.(type) {
	case *Plane:
		return 0
	case *Sphere:
		return 1
	case *Mesh:
		return 2
	default:
		return 3
	}
}

// Ordered returns the colliders with planes first, then spheres, then meshes.
// List order is kept within each kind.
func Ordered(cs []dynamo.Collider) []dynamo.Collider {
	out := append([]dynamo.Collider(nil), cs...)
	sort.SliceStable(out, func(i, j int) bool {
		return rank(out[i]) < rank(out[j])
	})
	return out
}

// Poser is a collider whose pose can be updated between ticks.
type Poser interface {
	dynamo.Collider
	SetPose(t Transform)
}
