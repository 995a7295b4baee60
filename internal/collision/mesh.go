package collision

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

type face struct {
	centroid mgl64.Vec3
	normal   mgl64.Vec3
}

// Mesh treats a closed triangulated obstacle as the intersection of its face
// planes. A node strictly inside every plane is pushed along the normal of
// the face it lies deepest below, scaled by that depth. Position is never
// corrected.
//
// Faces must be wound so that (b-c)x(a-c) points out of the solid.
type Mesh struct {
	Rigidity float64

	local     dynamo.Geometry
	faces     []face
	Vertices  []mgl64.Vec3
	Triangles []dynamo.Triangle
}

func NewMesh(g dynamo.Geometry, t Transform, rigidity float64) (*Mesh, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	m := &Mesh{Rigidity: rigidity, local: g, Triangles: g.Triangles}
	m.SetPose(t)
	return m, nil
}

// SetPose moves the obstacle into cloth space and recomputes the face
// planes. Degenerate faces are dropped.
func (m *Mesh) SetPose(t Transform) {
	mat := t.Matrix()
	if cap(m.Vertices) < len(m.local.Vertices) {
		m.Vertices = make([]mgl64.Vec3, len(m.local.Vertices))
	}
	m.Vertices = m.Vertices[:len(m.local.Vertices)]
	for i, v := range m.local.Vertices {
		m.Vertices[i] = mgl64.TransformCoordinate(v, mat)
	}

	m.faces = m.faces[:0]
	for _, tri := range m.Triangles {
		a, b, c := m.Vertices[tri[0]], m.Vertices[tri[1]], m.Vertices[tri[2]]
		nc, _ := dynamo.Normalize(b.Sub(c).Cross(a.Sub(c)))
		nb, _ := dynamo.Normalize(a.Sub(b).Cross(c.Sub(b)))
		na, _ := dynamo.Normalize(c.Sub(a).Cross(b.Sub(a)))
		n, l := dynamo.Normalize(na.Add(nb).Add(nc))
		if l == 0 {
			continue
		}
		m.faces = append(m.faces, face{
			centroid: a.Add(b).Add(c).Mul(1.0 / 3),
			normal:   n,
		})
	}
}

// FaceCount is the number of non-degenerate faces.
func (m *Mesh) FaceCount() int { return len(m.faces) }

// Penetration returns the largest depth below any face and that face's
// normal. ok is false when the node lies outside any face plane.
func (m *Mesh) Penetration(x mgl64.Vec3) (depth float64, normal mgl64.Vec3, ok bool) {
	if len(m.faces) == 0 {
		return 0, mgl64.Vec3{}, false
	}
	deepest := -1
	var minDist float64
	for i := range m.faces {
		d := m.faces[i].normal.Dot(x.Sub(m.faces[i].centroid))
		if d >= 0 {
			return 0, mgl64.Vec3{}, false
		}
		if deepest < 0 || d < minDist {
			deepest, minDist = i, d
		}
	}
	return -minDist, m.faces[deepest].normal, true
}

func (m *Mesh) ApplyPenalty(n *dynamo.Node) {
	depth, normal, ok := m.Penetration(n.Position)
	if !ok {
		return
	}
	n.Force = n.Force.Add(normal.Mul(m.Rigidity * depth))
}
