package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// boxQuads lists the six faces by corner index x + 2y + 4z, ordered so that
// the triangles below face outward under the (b-c)x(a-c) normal convention.
var boxQuads = [6][4]int{
	{1, 3, 7, 5}, // +X
	{0, 4, 6, 2}, // -X
	{2, 6, 7, 3}, // +Y
	{0, 1, 5, 4}, // -Y
	{4, 5, 7, 6}, // +Z
	{0, 2, 3, 1}, // -Z
}

// Box returns a closed cube with the given half extent centered on the
// origin: 8 vertices, 12 triangles.
func Box(half float64) dynamo.Geometry {
	g := dynamo.Geometry{
		Vertices:  make([]mgl64.Vec3, 8),
		Triangles: make([]dynamo.Triangle, 0, 12),
	}
	for i := range g.Vertices {
		x, y, z := i&1, (i>>1)&1, (i>>2)&1
		g.Vertices[i] = mgl64.Vec3{
			float64(2*x-1) * half,
			float64(2*y-1) * half,
			float64(2*z-1) * half,
		}
	}
	for _, q := range boxQuads {
		g.Triangles = append(g.Triangles,
			dynamo.Triangle{q[0], q[2], q[1]},
			dynamo.Triangle{q[0], q[3], q[2]},
		)
	}
	return g
}
