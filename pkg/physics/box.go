package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Box is an axis-aligned box given by its centre and half extents.
type Box struct {
	Center mgl64.Vec3
	Half   mgl64.Vec3
}

// Min returns the lowest corner.
func (b Box) Min() mgl64.Vec3 { return b.Center.Sub(b.Half) }

// Max returns the highest corner.
func (b Box) Max() mgl64.Vec3 { return b.Center.Add(b.Half) }

// Top returns the Z of the upper face.
func (b Box) Top() float64 { return b.Center.Z() + b.Half.Z() }

// ContainsXY reports whether p lies over the box footprint.
func (b Box) ContainsXY(p mgl64.Vec3) bool {
	return math.Abs(p.X()-b.Center.X()) <= b.Half.X() &&
		math.Abs(p.Y()-b.Center.Y()) <= b.Half.Y()
}

// Corners returns the eight corners, bottom face first.
func (b Box) Corners() [8]mgl64.Vec3 {
	lo, hi := b.Min(), b.Max()
	return [8]mgl64.Vec3{
		{lo.X(), lo.Y(), lo.Z()},
		{hi.X(), lo.Y(), lo.Z()},
		{hi.X(), hi.Y(), lo.Z()},
		{lo.X(), hi.Y(), lo.Z()},
		{lo.X(), lo.Y(), hi.Z()},
		{hi.X(), lo.Y(), hi.Z()},
		{hi.X(), hi.Y(), hi.Z()},
		{lo.X(), hi.Y(), hi.Z()},
	}
}

// RayCast intersects the ray origin + t*dir, t in [0, maxDist], with the box.
// dir must be normalised. It returns the entry distance.
func (b Box) RayCast(origin, dir mgl64.Vec3, maxDist float64) (float64, bool) {
	lo, hi := b.Min(), b.Max()
	tmin, tmax := 0.0, maxDist

	for i := 0; i < 3; i++ {
		if math.Abs(dir[i]) < 1e-12 {
			if origin[i] < lo[i] || origin[i] > hi[i] {
				return 0, false
			}
			continue
		}
		inv := 1 / dir[i]
		t1 := (lo[i] - origin[i]) * inv
		t2 := (hi[i] - origin[i]) * inv
		if t1 > t2 {
			t1, t2 = t2, t1
		}
		tmin = max(tmin, t1)
		tmax = min(tmax, t2)
		if tmin > tmax {
			return 0, false
		}
	}
	return tmin, true
}
