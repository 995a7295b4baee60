package dynamo

import "github.com/go-gl/mathgl/mgl64"

// Triangle holds three vertex indices in consistent winding.
type Triangle [3]int

// Geometry is the surface handed to the simulation once at construction.
// Vertices are expected in the common (world) coordinate space.
type Geometry struct {
	Vertices  []mgl64.Vec3
	Triangles []Triangle
}

// Validate reports ErrInvalidGeometry for empty vertex sets, out of range
// indices and triangles that repeat a vertex.
func (g Geometry) Validate() error {
	if len(g.Vertices) == 0 {
		return wrapGeometry("no vertices")
	}
	n := len(g.Vertices)
	for i, t := range g.Triangles {
		for _, idx := range t {
			if idx < 0 || idx >= n {
				return wrapGeometry("triangle %d references vertex %d of %d", i, idx, n)
			}
		}
		if t[0] == t[1] || t[1] == t[2] || t[0] == t[2] {
			return wrapGeometry("triangle %d repeats a vertex %v", i, t)
		}
	}
	return nil
}

// TrianglesFromIndices groups a flat stride-3 index array into triangles.
func TrianglesFromIndices(indices []int) ([]Triangle, error) {
	if len(indices)%3 != 0 {
		return nil, wrapGeometry("index count %d is not a multiple of 3", len(indices))
	}
	tris := make([]Triangle, len(indices)/3)
	for i := range tris {
		tris[i] = Triangle{indices[3*i], indices[3*i+1], indices[3*i+2]}
	}
	return tris, nil
}

// Collider pushes nodes out of a forbidden region. Implementations add a
// penalty to n.Force and may also correct n.Position.
type Collider interface {
	ApplyPenalty(n *Node)
}

// Integrator advances every free node by dt from its accumulated force.
type Integrator interface {
	Name() string
	Integrate(nodes []Node, dt float64)
}

// Hamiltonian is implemented by systems that can report total energy.
type Hamiltonian interface {
	Energy() float64
}

// Metric observes the node set after every tick.
type Metric interface {
	Name() string
	Observe(nodes []Node, t float64)
	Value() float64
	Reset()
}

// Observer is notified after every completed tick. Nodes must not be mutated.
type Observer interface {
	OnTick(nodes []Node, t float64)
}

// Configurable exposes runtime-tunable parameters.
type Configurable interface {
	GetParams() map[string]float64
	SetParam(name string, value float64) error
}
