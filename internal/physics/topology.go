package physics

import (
	"fmt"

	"github.com/san-kum/clothsim/internal/dynamo"
)

// Edge is a triangle side tagged with the vertex opposite to it. It only
// exists while the topology is being built.
type Edge struct {
	A, B     int
	Opposite int
}

// newEdge orders the endpoints so that A < B.
func newEdge(a, b, opposite int) Edge {
	if a > b {
		a, b = b, a
	}
	return Edge{A: a, B: b, Opposite: opposite}
}

func (e Edge) key() [2]int { return [2]int{e.A, e.B} }

// Topology is the output of BuildTopology.
type Topology struct {
	Nodes      []dynamo.Node
	Structural []dynamo.Spring
	Bending    []dynamo.Spring
}

// BuildTopology creates one node per vertex with uniform mass and derives the
// spring network. A boundary edge becomes a structural spring. An edge shared
// by two triangles yields a bending spring between their opposite vertices and
// no structural spring.
//
// Edges are grouped by their normalized vertex pair. Within a group, edges pair
// up in order of appearance; an odd edge left over (non-manifold input) stays
// structural. The output matches the pairwise scan over the edge list.
func BuildTopology(g dynamo.Geometry, totalMass, traction, flexion float64) (*Topology, error) {
	if err := g.Validate(); err != nil {
		return nil, err
	}
	if !(totalMass > 0) {
		return nil, fmt.Errorf("%w: total mass %v", dynamo.ErrInvalidMass, totalMass)
	}

	m := totalMass / float64(len(g.Vertices))
	nodes := make([]dynamo.Node, len(g.Vertices))
	for i, v := range g.Vertices {
		nodes[i] = dynamo.NewNode(i, v, m)
	}

	edges := make([]Edge, 0, 3*len(g.Triangles))
	for _, t := range g.Triangles {
		edges = append(edges,
			newEdge(t[0], t[1], t[2]),
			newEdge(t[2], t[0], t[1]),
			newEdge(t[1], t[2], t[0]),
		)
	}

	groups := make(map[[2]int][]int, len(edges))
	for i, e := range edges {
		groups[e.key()] = append(groups[e.key()], i)
	}

	removed := make([]bool, len(edges))
	topo := &Topology{Nodes: nodes}
	for i, e := range edges {
		if removed[i] {
			continue
		}
		group := groups[e.key()]
		for _, j := range group {
			if j <= i || removed[j] {
				continue
			}
			removed[i], removed[j] = true, true
			if opp := edges[j].Opposite; opp != e.Opposite {
				topo.Bending = append(topo.Bending, dynamo.NewSpring(nodes, e.Opposite, opp, flexion))
			}
			break
		}
	}

	for i, e := range edges {
		if !removed[i] {
			topo.Structural = append(topo.Structural, dynamo.NewSpring(nodes, e.A, e.B, traction))
		}
	}

	return topo, nil
}
