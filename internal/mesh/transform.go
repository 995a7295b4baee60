package mesh

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// Transform returns a copy of g with every vertex mapped through m.
// Triangles are shared with the input.
func Transform(g dynamo.Geometry, m mgl64.Mat4) dynamo.Geometry {
	out := dynamo.Geometry{
		Vertices:  make([]mgl64.Vec3, len(g.Vertices)),
		Triangles: g.Triangles,
	}
	for i, v := range g.Vertices {
		out.Vertices[i] = mgl64.TransformCoordinate(v, m)
	}
	return out
}

// Place scales, rotates (Euler degrees, XYZ order) and then translates g.
func Place(g dynamo.Geometry, position, eulerDeg mgl64.Vec3, scale float64) dynamo.Geometry {
	rot := mgl64.AnglesToQuat(
		mgl64.DegToRad(eulerDeg.X()),
		mgl64.DegToRad(eulerDeg.Y()),
		mgl64.DegToRad(eulerDeg.Z()),
		mgl64.XYZ,
	)
	m := mgl64.Translate3D(position.X(), position.Y(), position.Z()).
		Mul4(rot.Mat4()).
		Mul4(mgl64.Scale3D(scale, scale, scale))
	return Transform(g, m)
}
