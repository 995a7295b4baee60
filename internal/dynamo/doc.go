// Package dynamo provides the core data model of the cloth simulation.
//
// The package defines the primitives every other package works on:
//
//   - [Node]: point mass with position, velocity and a force accumulator
//   - [Spring]: damped linear connector between two nodes, addressed by index
//   - [Geometry]: vertex and triangle arrays handed over by a mesh source
//   - [Collider]: penalty-force contract shared by all obstacle shapes
//   - [Integrator]: time-integration scheme advancing free nodes
//
// Springs and colliders never hold pointers into the node set. They refer to
// nodes by their index in the single []Node slice owned by the simulation.
//
// # Example
//
//	nodes := []dynamo.Node{
//	    dynamo.NewNode(0, mgl64.Vec3{0, 0, 0}, 1),
//	    dynamo.NewNode(1, mgl64.Vec3{1, 0, 0}, 1),
//	}
//	s := dynamo.NewSpring(nodes, 0, 1, 100)
//	s.AccumulateForces(nodes, 0.1)
//
// # Thread Safety
//
// Nothing in this package is safe for concurrent mutation. A step assumes
// exclusive access to the node slice.
package dynamo
