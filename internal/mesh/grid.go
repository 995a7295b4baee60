package mesh

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Grid is a flat rectangular cloth in the XZ plane, centered on the origin.
// Cols and Rows count vertices along X and Z.
type Grid struct {
	Cols, Rows   int
	Width, Depth float64
}

func (g Grid) Validate() error {
	if g.Cols < 2 || g.Rows < 2 {
		return fmt.Errorf("%w: grid needs at least 2x2 vertices, got %dx%d", dynamo.ErrInvalidGeometry, g.Cols, g.Rows)
	}
	if !(g.Width > 0) || !(g.Depth > 0) {
		return fmt.Errorf("%w: grid size %vx%v", dynamo.ErrInvalidGeometry, g.Width, g.Depth)
	}
	return nil
}

// Index maps a (col, row) pair to its vertex index.
func (g Grid) Index(col, row int) int {
	return row*g.Cols + col
}

// Geometry emits two triangles per cell, wound so that (b-c)x(a-c) points
// down -Y.
func (g Grid) Geometry() (dynamo.Geometry, error) {
	if err := g.Validate(); err != nil {
		return dynamo.Geometry{}, err
	}

	out := dynamo.Geometry{
		Vertices:  make([]mgl64.Vec3, 0, g.Cols*g.Rows),
		Triangles: make([]dynamo.Triangle, 0, 2*(g.Cols-1)*(g.Rows-1)),
	}
	dx := g.Width / float64(g.Cols-1)
	dz := g.Depth / float64(g.Rows-1)
	for r := 0; r < g.Rows; r++ {
		for c := 0; c < g.Cols; c++ {
			out.Vertices = append(out.Vertices, mgl64.Vec3{
				float64(c)*dx - g.Width/2,
				0,
				float64(r)*dz - g.Depth/2,
			})
		}
	}
	for r := 0; r < g.Rows-1; r++ {
		for c := 0; c < g.Cols-1; c++ {
			v0 := g.Index(c, r)
			v1 := v0 + 1
			v2 := v0 + g.Cols
			v3 := v2 + 1
			out.Triangles = append(out.Triangles,
				dynamo.Triangle{v0, v2, v1},
				dynamo.Triangle{v1, v2, v3},
			)
		}
	}
	return out, nil
}
