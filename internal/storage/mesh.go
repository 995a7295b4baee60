package storage

import (
	"io"
	"os"
	"path/filepath"

	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
)

const meshFile = "mesh.obj"

// SaveMesh stores the cloth's rest shape next to a run so its triangles can
// be paired with recorded positions later.
func (s *Store) SaveMesh(runID string, g dynamo.Geometry) error {
	return writeFile(filepath.Join(s.baseDir, runID, meshFile), func(w io.Writer) error {
		return mesh.WriteOBJ(w, g)
	})
}

func (s *Store) LoadMesh(runID string) (dynamo.Geometry, error) {
	return mesh.LoadOBJ(filepath.Join(s.baseDir, runID, meshFile))
}

// HasMesh reports whether a run stored its mesh.
func (s *Store) HasMesh(runID string) bool {
	_, err := os.Stat(filepath.Join(s.baseDir, runID, meshFile))
	return err == nil
}
