package vehicle

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
)

// KmhPerMetrePerSecond converts world velocity to displayed speed.
const KmhPerMetrePerSecond = 3.6

var (
	forward = mgl64.Vec3{0, 1, 0}
	right   = mgl64.Vec3{1, 0, 0}
)

// Body is the part of a physics body the controller drives.
type Body interface {
	Position() mgl64.Vec3
	SetPosition(mgl64.Vec3)
	Velocity() mgl64.Vec3
	SetVelocity(mgl64.Vec3)
	AngularVelocity() mgl64.Vec3
	SetAngularVelocity(mgl64.Vec3)
	Orientation() mgl64.Quat
	SetOrientation(mgl64.Quat)
	ApplyForce(mgl64.Vec3)
	ApplyImpulse(mgl64.Vec3)
}

// State is a read-only snapshot of the vehicle.
type State struct {
	Position        mgl64.Vec3
	Orientation     mgl64.Quat
	LinearVelocity  mgl64.Vec3
	AngularVelocity mgl64.Vec3
	SpeedKmh        float64
	ProfileKey      string
	NitroCount      int
	NitroReadyAt    time.Time
	Grounded        bool
}

// Lane is the strip the vehicle is kept inside.
type Lane struct {
	CenterX   float64
	HalfWidth float64
	SoftLimit float64
	HardLimit float64
	Stiffness float64
}

// SpeedKmh returns the magnitude of v in km/h.
func SpeedKmh(v mgl64.Vec3) float64 {
	return v.Len() * KmhPerMetrePerSecond
}
