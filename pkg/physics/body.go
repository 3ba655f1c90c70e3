package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/jakecoffman/cp"
)

// Kind tags a body for contact filtering.
type Kind int

const (
	KindVehicle Kind = iota + 1
	KindRider
	KindObstacle
)

func (k Kind) String() string {
	switch k {
	case KindVehicle:
		return "vehicle"
	case KindRider:
		return "rider"
	case KindObstacle:
		return "obstacle"
	}
	return "unknown"
}

var up = mgl64.Vec3{0, 0, 1}

// Body is a box in the world. The X/Y plane lives in the chipmunk space;
// height and vertical velocity are integrated by the World.
type Body struct {
	ID     int
	Kind   Kind
	Static bool

	body  *cp.Body
	shape *cp.Shape
	half  mgl64.Vec3
	mass  float64

	z, vz, fz float64

	removed bool
}

// Position returns the centre of the body.
func (b *Body) Position() mgl64.Vec3 {
	p := b.body.Position()
	return mgl64.Vec3{p.X, p.Y, b.z}
}

// SetPosition teleports the body.
func (b *Body) SetPosition(p mgl64.Vec3) {
	b.body.SetPosition(cp.Vector{X: p.X(), Y: p.Y()})
	b.z = p.Z()
}

// Velocity returns the linear velocity.
func (b *Body) Velocity() mgl64.Vec3 {
	v := b.body.Velocity()
	return mgl64.Vec3{v.X, v.Y, b.vz}
}

// SetVelocity overwrites the linear velocity.
func (b *Body) SetVelocity(v mgl64.Vec3) {
	b.body.SetVelocity(v.X(), v.Y())
	b.vz = v.Z()
}

// AngularVelocity returns the spin. Only yaw is simulated.
func (b *Body) AngularVelocity() mgl64.Vec3 {
	return mgl64.Vec3{0, 0, b.body.AngularVelocity()}
}

// SetAngularVelocity overwrites the spin. Pitch and roll components are dropped.
func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	b.body.SetAngularVelocity(w.Z())
}

// Orientation returns the body rotation about the up axis.
func (b *Body) Orientation() mgl64.Quat {
	return mgl64.QuatRotate(b.body.Angle(), up)
}

// SetOrientation sets the heading from q.
func (b *Body) SetOrientation(q mgl64.Quat) {
	fwd := q.Rotate(mgl64.Vec3{0, 1, 0})
	b.body.SetAngle(math.Atan2(-fwd.X(), fwd.Y()))
}

// ApplyForce adds a force at the centre of mass for the next step.
func (b *Body) ApplyForce(f mgl64.Vec3) {
	if b.Static {
		return
	}
	b.body.ApplyForceAtWorldPoint(cp.Vector{X: f.X(), Y: f.Y()}, b.body.Position())
	b.fz += f.Z()
}

// ApplyImpulse changes the velocity immediately.
func (b *Body) ApplyImpulse(j mgl64.Vec3) {
	if b.Static {
		return
	}
	b.body.ApplyImpulseAtWorldPoint(cp.Vector{X: j.X(), Y: j.Y()}, b.body.Position())
	b.vz += j.Z() / b.mass
}

// Mass returns the body mass. Static bodies report zero.
func (b *Body) Mass() float64 { return b.mass }

// HalfExtents returns the collision box half extents.
func (b *Body) HalfExtents() mgl64.Vec3 { return b.half }

// Box returns the world-space bounds.
func (b *Body) Box() Box {
	return Box{Center: b.Position(), Half: b.half}
}

// Removed reports whether the body has left the world.
func (b *Body) Removed() bool { return b.removed }

// Ground is a support surface: it holds bodies up and answers raycasts.
type Ground struct {
	ID  int
	Box Box
}

// RayHit is the closest raycast intersection.
type RayHit struct {
	Ground   *Ground
	Point    mgl64.Vec3
	Distance float64
}
