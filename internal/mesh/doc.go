// Package mesh produces the triangulated surfaces fed to the simulation:
// procedural cloth grids, box obstacles and Wavefront OBJ files.
package mesh
