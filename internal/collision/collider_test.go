package collision_test

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/san-kum/clothsim/internal/collision"
	"github.com/san-kum/clothsim/internal/dynamo"
	"github.com/san-kum/clothsim/internal/mesh"
)

func nodeAt(p mgl64.Vec3) dynamo.Node {
	return dynamo.NewNode(0, p, 1)
}

var _ = Describe("Plane", func() {
	var plane *collision.Plane

	BeforeEach(func() {
		plane = collision.NewPlane(mgl64.Vec3{0, 2, 0}, mgl64.Vec3{0, 0.2, 0}, collision.DefaultRigidity)
	})

	It("normalizes its normal", func() {
		Expect(plane.Normal).To(Equal(mgl64.Vec3{0, 1, 0}))
	})

	It("projects a penetrating node onto the surface and pushes it out", func() {
		n := nodeAt(mgl64.Vec3{0.3, -0.3, 1})
		n.Velocity = mgl64.Vec3{0, 1, 0}
		plane.ApplyPenalty(&n)

		Expect(plane.Distance(n.Position)).To(BeNumerically("~", 0, 1e-12))
		Expect(n.Position.X()).To(Equal(0.3))
		Expect(n.Force.Y()).To(BeNumerically("~", collision.DefaultRigidity*0.5, 1e-9))
		Expect(n.Velocity).To(Equal(mgl64.Vec3{0, 1, 0}))
	})

	It("pushes less as the penetration shrinks", func() {
		prev := math.Inf(1)
		for _, y := range []float64{-1, -0.5, 0, 0.1, 0.19} {
			n := nodeAt(mgl64.Vec3{0, y, 0})
			plane.ApplyPenalty(&n)
			Expect(n.Force.Y()).To(BeNumerically(">", 0))
			Expect(n.Force.Y()).To(BeNumerically("<", prev))
			prev = n.Force.Y()
		}
	})

	It("ignores nodes on the allowed side", func() {
		n := nodeAt(mgl64.Vec3{0, 0.2, 0})
		plane.ApplyPenalty(&n)
		Expect(n.Force).To(Equal(mgl64.Vec3{}))
		Expect(n.Position).To(Equal(mgl64.Vec3{0, 0.2, 0}))
	})

	It("falls back to +Y for a zero normal", func() {
		p := collision.NewPlane(mgl64.Vec3{}, mgl64.Vec3{}, 1)
		Expect(p.Normal).To(Equal(mgl64.Vec3{0, 1, 0}))
	})

	It("derives normal and lifted point from a pose", func() {
		p := collision.PlaneFromPose(collision.FromEuler(mgl64.Vec3{1, 0, 0}, mgl64.Vec3{0, 0, 90}, 1), collision.DefaultPlaneOffset, 1)
		Expect(p.Normal.ApproxEqualThreshold(mgl64.Vec3{-1, 0, 0}, 1e-12)).To(BeTrue())
		Expect(p.Point.ApproxEqualThreshold(mgl64.Vec3{0.8, 0, 0}, 1e-12)).To(BeTrue())

		p.SetPose(collision.Identity())
		Expect(p.Point.ApproxEqualThreshold(mgl64.Vec3{0, 0.2, 0}, 1e-12)).To(BeTrue())
	})
})

var _ = Describe("Sphere", func() {
	It("pushes interior nodes out radially", func() {
		s := collision.NewSphere(mgl64.Vec3{0, 0, 0}, 1, 10)
		n := nodeAt(mgl64.Vec3{0, 0, 0.25})
		s.ApplyPenalty(&n)
		Expect(n.Force.ApproxEqualThreshold(mgl64.Vec3{0, 0, 7.5}, 1e-12)).To(BeTrue())
		Expect(n.Position).To(Equal(mgl64.Vec3{0, 0, 0.25}))
	})

	It("leaves outside and centered nodes alone", func() {
		s := collision.NewSphere(mgl64.Vec3{}, 1, 10)
		for _, p := range []mgl64.Vec3{{2, 0, 0}, {0, 1, 0}, {}} {
			n := nodeAt(p)
			s.ApplyPenalty(&n)
			Expect(n.Force).To(Equal(mgl64.Vec3{}))
		}
	})

	It("follows its pose", func() {
		s := collision.NewSphere(mgl64.Vec3{}, 0.5, 10)
		s.SetPose(collision.FromEuler(mgl64.Vec3{0, 3, 0}, mgl64.Vec3{}, 4))
		Expect(s.Radius).To(Equal(2.0))
		Expect(s.Center).To(Equal(mgl64.Vec3{0, 3, 0}))
	})
})

var _ = Describe("Mesh", func() {
	var box *collision.Mesh

	BeforeEach(func() {
		var err error
		box, err = collision.NewMesh(mesh.Box(1), collision.Identity(), 20)
		Expect(err).NotTo(HaveOccurred())
	})

	It("keeps every box face", func() {
		Expect(box.FaceCount()).To(Equal(12))
	})

	It("pushes an interior node along the face it is deepest below", func() {
		n := nodeAt(mgl64.Vec3{0.9, 0.2, -0.3})
		box.ApplyPenalty(&n)
		Expect(n.Force.ApproxEqualThreshold(mgl64.Vec3{-38, 0, 0}, 1e-9)).To(BeTrue())
		Expect(n.Position).To(Equal(mgl64.Vec3{0.9, 0.2, -0.3}))
	})

	It("reports the largest depth with its face normal", func() {
		depth, normal, ok := box.Penetration(mgl64.Vec3{-0.2, 0.1, 0.6})
		Expect(ok).To(BeTrue())
		Expect(depth).To(BeNumerically("~", 1.6, 1e-9))
		Expect(normal.ApproxEqualThreshold(mgl64.Vec3{0, 0, -1}, 1e-9)).To(BeTrue())
	})

	It("does nothing outside the hull", func() {
		for _, p := range []mgl64.Vec3{{2, 0, 0}, {0, 1, 0}, {0.5, 0.5, 5}} {
			n := nodeAt(p)
			box.ApplyPenalty(&n)
			Expect(n.Force).To(Equal(mgl64.Vec3{}))
		}
	})

	It("moves its planes with the pose", func() {
		box.SetPose(collision.FromEuler(mgl64.Vec3{10, 0, 0}, mgl64.Vec3{}, 1))

		n := nodeAt(mgl64.Vec3{0, 0, 0})
		box.ApplyPenalty(&n)
		Expect(n.Force).To(Equal(mgl64.Vec3{}))

		depth, normal, ok := box.Penetration(mgl64.Vec3{10.5, 0.8, 0})
		Expect(ok).To(BeTrue())
		Expect(depth).To(BeNumerically("~", 1.8, 1e-9))
		Expect(normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-9)).To(BeTrue())
	})

	It("scales and rotates with the pose", func() {
		box.SetPose(collision.FromEuler(mgl64.Vec3{}, mgl64.Vec3{0, 45, 0}, 2))
		depth, normal, ok := box.Penetration(mgl64.Vec3{0, 1.5, 0})
		Expect(ok).To(BeTrue())
		Expect(depth).To(BeNumerically("~", 3.5, 1e-9))
		Expect(normal.ApproxEqualThreshold(mgl64.Vec3{0, -1, 0}, 1e-9)).To(BeTrue())
	})

	It("drops degenerate faces", func() {
		flat := dynamo.Geometry{
			Vertices:  []mgl64.Vec3{{0, 0, 0}, {1, 0, 0}, {2, 0, 0}},
			Triangles: []dynamo.Triangle{{0, 1, 2}},
		}
		m, err := collision.NewMesh(flat, collision.Identity(), 10)
		Expect(err).NotTo(HaveOccurred())
		Expect(m.FaceCount()).To(Equal(0))

		n := nodeAt(mgl64.Vec3{1, -1, 0})
		m.ApplyPenalty(&n)
		Expect(n.Force).To(Equal(mgl64.Vec3{}))
	})

	It("rejects invalid geometry", func() {
		_, err := collision.NewMesh(dynamo.Geometry{}, collision.Identity(), 1)
		Expect(err).To(MatchError(dynamo.ErrInvalidGeometry))
	})
})
