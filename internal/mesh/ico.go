package mesh

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// icoFaces are counter-clockwise from outside; Icosahedron swaps the last
// two corners to match the engine's (b-c)x(a-c) normals.
var icoFaces = [20][3]int{
	{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
	{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
	{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
	{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
}

// Icosahedron returns a closed icosahedron whose vertices lie on a sphere of
// the given radius around the origin.
func Icosahedron(radius float64) dynamo.Geometry {
	t := (1 + math.Sqrt(5)) / 2
	raw := []mgl64.Vec3{
		{-1, t, 0}, {1, t, 0}, {-1, -t, 0}, {1, -t, 0},
		{0, -1, t}, {0, 1, t}, {0, -1, -t}, {0, 1, -t},
		{t, 0, -1}, {t, 0, 1}, {-t, 0, -1}, {-t, 0, 1},
	}
	g := dynamo.Geometry{
		Vertices:  make([]mgl64.Vec3, len(raw)),
		Triangles: make([]dynamo.Triangle, len(icoFaces)),
	}
	for i, v := range raw {
		g.Vertices[i] = v.Normalize().Mul(radius)
	}
	for i, f := range icoFaces {
		g.Triangles[i] = dynamo.Triangle{f[0], f[2], f[1]}
	}
	return g
}
