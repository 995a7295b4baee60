package mesh

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
)

// ReadOBJ parses vertex positions and faces from a Wavefront OBJ stream.
// Polygons are fan-triangulated, negative indices count back from the last
// vertex, and texture/normal references are ignored.
func ReadOBJ(r io.Reader) (dynamo.Geometry, error) {
	var g dynamo.Geometry
	sc := bufio.NewScanner(r)
	line := 0
	for sc.Scan() {
		line++
		fields := strings.Fields(sc.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return g, objError(line, "vertex needs 3 coordinates")
			}
			var v mgl64.Vec3
			for k := 0; k < 3; k++ {
				f, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return g, objError(line, "bad coordinate %q", fields[k+1])
				}
				v[k] = f
			}
			g.Vertices = append(g.Vertices, v)
		case "f":
			if len(fields) < 4 {
				return g, objError(line, "face needs at least 3 vertices")
			}
			idx := make([]int, 0, len(fields)-1)
			for _, f := range fields[1:] {
				ref := f
				if slash := strings.IndexByte(f, '/'); slash >= 0 {
					ref = f[:slash]
				}
				i, err := strconv.Atoi(ref)
				if err != nil || i == 0 {
					return g, objError(line, "bad face index %q", f)
				}
				if i < 0 {
					i = len(g.Vertices) + i
				} else {
					i--
				}
				idx = append(idx, i)
			}
			for k := 1; k+1 < len(idx); k++ {
				g.Triangles = append(g.Triangles, dynamo.Triangle{idx[0], idx[k], idx[k+1]})
			}
		}
	}
	if err := sc.Err(); err != nil {
		return g, err
	}
	return g, g.Validate()
}

func LoadOBJ(path string) (dynamo.Geometry, error) {
	f, err := os.Open(path)
	if err != nil {
		return dynamo.Geometry{}, err
	}
	defer f.Close()

	g, err := ReadOBJ(f)
	if err != nil {
		return g, fmt.Errorf("%s: %w", path, err)
	}
	return g, nil
}

// WriteOBJ writes g with 1-based face indices.
func WriteOBJ(w io.Writer, g dynamo.Geometry) error {
	bw := bufio.NewWriter(w)
	for _, v := range g.Vertices {
		fmt.Fprintf(bw, "v %g %g %g\n", v[0], v[1], v[2])
	}
	for _, t := range g.Triangles {
		fmt.Fprintf(bw, "f %d %d %d\n", t[0]+1, t[1]+1, t[2]+1)
	}
	return bw.Flush()
}

func objError(line int, format string, args ...any) error {
	return fmt.Errorf("%w: obj line %d: %s", dynamo.ErrInvalidGeometry, line, fmt.Sprintf(format, args...))
}
