package collision

import "github.com/go-gl/mathgl/mgl64"

// Transform is an obstacle pose: scale, then rotate, then translate.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
	Scale    mgl64.Vec3
}

func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent(), Scale: mgl64.Vec3{1, 1, 1}}
}

// FromEuler builds a pose from XYZ Euler angles in degrees and a uniform scale.
func FromEuler(position, eulerDeg mgl64.Vec3, scale float64) Transform {
	return Transform{
		Position: position,
		Rotation: mgl64.AnglesToQuat(
			mgl64.DegToRad(eulerDeg.X()),
			mgl64.DegToRad(eulerDeg.Y()),
			mgl64.DegToRad(eulerDeg.Z()),
			mgl64.XYZ,
		),
		Scale: mgl64.Vec3{scale, scale, scale},
	}
}

func (t Transform) Matrix() mgl64.Mat4 {
	return mgl64.Translate3D(t.Position.X(), t.Position.Y(), t.Position.Z()).
		Mul4(t.Rotation.Mat4()).
		Mul4(mgl64.Scale3D(t.Scale.X(), t.Scale.Y(), t.Scale.Z()))
}

func (t Transform) Point(p mgl64.Vec3) mgl64.Vec3 {
	return mgl64.TransformCoordinate(p, t.Matrix())
}

// Direction rotates d without translating or scaling it.
func (t Transform) Direction(d mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(d)
}
