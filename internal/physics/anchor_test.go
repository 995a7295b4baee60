package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Anchor", func() {
	var (
		cloth  *Cloth
		anchor *Anchor
	)

	BeforeEach(func() {
		var err error
		cloth, err = NewCloth(quad(), DefaultParams())
		Expect(err).NotTo(HaveOccurred())
		anchor = NewAnchor("top", mgl64.Vec3{-0.1, 0.9, -0.1}, mgl64.Vec3{1.1, 1.1, 0.1})
	})

	It("captures and fixes the nodes inside its box", func() {
		Expect(anchor.Capture(cloth)).To(Equal(2))
		Expect(anchor.Nodes()).To(ConsistOf(2, 3))
		Expect(cloth.Nodes[2].Fixed).To(BeTrue())
		Expect(cloth.Nodes[0].Fixed).To(BeFalse())
	})

	It("normalizes an inverted box", func() {
		a := NewAnchor("flipped", mgl64.Vec3{1, 1, 1}, mgl64.Vec3{0, 0, 0})
		Expect(a.Min).To(Equal(mgl64.Vec3{0, 0, 0}))
		Expect(a.Contains(mgl64.Vec3{0.5, 0.5, 0.5})).To(BeTrue())
	})

	It("carries captured nodes on the next step", func() {
		anchor.Capture(cloth)
		anchor.MoveTo(anchor.Center().Add(mgl64.Vec3{0, 0, 2}))
		Expect(cloth.Nodes[2].Position).To(Equal(mgl64.Vec3{0, 1, 0}))

		anchor.Step(cloth, 0.5)
		Expect(cloth.Nodes[2].Position.ApproxEqual(mgl64.Vec3{0, 1, 2})).To(BeTrue())
		Expect(cloth.Nodes[3].Position.ApproxEqual(mgl64.Vec3{1, 1, 2})).To(BeTrue())
		Expect(cloth.Nodes[0].Position).To(Equal(mgl64.Vec3{0, 0, 0}))
		Expect(anchor.Velocity().ApproxEqual(mgl64.Vec3{0, 0, 4})).To(BeTrue())
	})

	It("leaves nodes bit-identical without displacement", func() {
		anchor.Capture(cloth)
		before := cloth.Nodes[3]
		for i := 0; i < 10; i++ {
			anchor.Step(cloth, 0.01)
		}
		Expect(cloth.Nodes[3]).To(Equal(before))
		Expect(anchor.Velocity()).To(Equal(mgl64.Vec3{}))
	})

	It("drifts at a constant velocity", func() {
		anchor.Capture(cloth)
		anchor.Drift = mgl64.Vec3{1, 0, 0}
		for i := 0; i < 4; i++ {
			anchor.Step(cloth, 0.25)
		}
		Expect(cloth.Nodes[2].Position.X()).To(BeNumerically("~", 1, 1e-12))
		Expect(anchor.Min.X()).To(BeNumerically("~", 0.9, 1e-12))
	})
})

var _ = Describe("Cloth on a grid", func() {
	It("keeps every spring at rest length right after construction", func() {
		g, err := gridGeometry(8, 8)
		Expect(err).NotTo(HaveOccurred())
		c, err := NewCloth(g, DefaultParams())
		Expect(err).NotTo(HaveOccurred())

		c.UpdateLengths()
		for _, s := range append(c.Structural, c.Bending...) {
			Expect(s.Length).To(Equal(s.RestLength))
		}
	})

	It("feels only gravity and zero drag while still in still air", func() {
		g, err := gridGeometry(4, 4)
		Expect(err).NotTo(HaveOccurred())
		p := DefaultParams()
		p.TotalMass = 16
		c, err := NewCloth(g, p)
		Expect(err).NotTo(HaveOccurred())

		c.AccumulateForces(0, nil)
		for _, n := range c.Nodes {
			Expect(n.Force.ApproxEqualThreshold(mgl64.Vec3{0, -9.81, 0}, 1e-9)).To(BeTrue())
		}
	})
})
