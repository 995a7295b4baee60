package collision

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
)

func TestOrdered(t *testing.T) {
	m, err := NewMesh(mesh.Box(1), Identity(), 1)
	if err != nil {
		t.Fatal(err)
	}
	p1 := NewPlane(mgl64.Vec3{0, 1, 0}, mgl64.Vec3{}, 1)
	p2 := NewPlane(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{}, 1)
	s := NewSphere(mgl64.Vec3{}, 1, 1)

	in := []dynamo.Collider{m, p1, s, p2}
	got := Ordered(in)
	want := []dynamo.Collider{p1, p2, s, m}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("position %d = %T, want %T", i, got[i], want[i])
		}
	}
	if in[0] != m {
		t.Error("Ordered must not reorder its input")
	}
}

func TestTransform(t *testing.T) {
	tr := FromEuler(mgl64.Vec3{1, 2, 3}, mgl64.Vec3{0, 0, 90}, 2)

	if got := tr.Direction(mgl64.Vec3{1, 0, 0}); !got.ApproxEqualThreshold(mgl64.Vec3{0, 1, 0}, 1e-12) {
		t.Errorf("Direction = %v", got)
	}
	if got := tr.Point(mgl64.Vec3{1, 0, 0}); !got.ApproxEqualThreshold(mgl64.Vec3{1, 4, 3}, 1e-12) {
		t.Errorf("Point = %v", got)
	}
	if got := Identity().Point(mgl64.Vec3{4, 5, 6}); !got.ApproxEqual(mgl64.Vec3{4, 5, 6}) {
		t.Errorf("identity Point = %v", got)
	}
}
