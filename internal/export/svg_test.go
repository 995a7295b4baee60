package export

import (
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/mesh"
	"github.com/san-kum/clothsim/internal/viz"
)

func TestClothToSVG(t *testing.T) {
	g, err := mesh.Grid{Cols: 3, Rows: 3, Width: 1, Depth: 1}.Geometry()
	if err != nil {
		t.Fatal(err)
	}
	cam := viz.NewCamera()
	cam.Target = mgl64.Vec3{}

	svg := ClothToSVG(g.Vertices, g.Triangles, cam, 400, 300)
	if !strings.HasPrefix(svg, "<?xml") || !strings.HasSuffix(svg, "</svg>") {
		t.Fatalf("not an svg document: %.40q", svg)
	}
	if n := strings.Count(svg, "<polygon"); n != len(g.Triangles) {
		t.Errorf("polygons = %d, want %d", n, len(g.Triangles))
	}
	if !strings.Contains(svg, `width="400" height="300"`) {
		t.Error("missing size")
	}

	// a triangle behind the eye is culled
	behind := cam.Eye().Add(cam.Eye().Sub(cam.Target))
	pos := append(g.Vertices, behind)
	tris := append(g.Triangles[:1:1], [3]int{0, 1, len(pos) - 1})
	if n := strings.Count(ClothToSVG(pos, tris, cam, 400, 300), "<polygon"); n != 1 {
		t.Errorf("polygons = %d, want 1", n)
	}
}

func TestCanvasToSVG(t *testing.T) {
	if CanvasToSVG(nil, 2) != "" {
		t.Error("nil canvas produced output")
	}
	c := viz.NewCanvas(2, 1)
	c.Set(0, 0)
	c.Set(3, 3)
	svg := CanvasToSVG(c, 2)
	if n := strings.Count(svg, "<circle"); n != 2 {
		t.Errorf("circles = %d", n)
	}
	if !strings.Contains(svg, `width="8" height="8"`) {
		t.Errorf("size missing: %s", svg)
	}
}

func TestTrajectoryToSVG(t *testing.T) {
	snaps := [][]mgl64.Vec3{
		{{0, 1, 0}, {0, 2, 0}},
		{{0, 0.5, 0}, {0, 1.5, 0}},
		{{0, 0.2, 0}, {0, 1.0, 0}},
	}
	times := []float64{0, 0.1, 0.2}
	height := func(t float64, p mgl64.Vec3) mgl64.Vec2 { return mgl64.Vec2{t, p.Y()} }

	pts := Trajectory(snaps, times, 1, height)
	if len(pts) != 3 || pts[2] != (mgl64.Vec2{0.2, 1.0}) {
		t.Fatalf("points = %v", pts)
	}
	if got := Trajectory(snaps, times, 5, height); len(got) != 0 {
		t.Errorf("out of range node gave %v", got)
	}

	svg := TrajectoryToSVG(pts, 200, 100, "#ff0000")
	if !strings.Contains(svg, `stroke="#ff0000"`) || strings.Count(svg, " L") != 2 {
		t.Errorf("path = %s", svg)
	}
	if TrajectoryToSVG(pts[:1], 200, 100, "#fff") != "" {
		t.Error("single point produced a path")
	}
}
