// Package physics holds the cloth model: the spring network derived from a
// triangulated surface and the force contributions acting on it.
//
//   - [BuildTopology]: structural and bending springs from a triangle list
//   - [Cloth]: nodes, springs and triangles plus the per-step force pass
//   - [AirDrag] and [Wind]: per-triangle aerodynamic force
//   - [Anchor]: box that pins the nodes inside it and carries them along
//
// [Cloth] implements [dynamo.Configurable] for runtime parameter adjustment and
// [dynamo.Hamiltonian] for energy bookkeeping.
//
// # Energy Conservation
//
// With damping, drag and collisions switched off the total energy reported by
// [Cloth.Energy] is the conserved quantity of the spring network:
//
//	c, _ := physics.NewCloth(geom, params)
//	e0 := c.Energy()
package physics
