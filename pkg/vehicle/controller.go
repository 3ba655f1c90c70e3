package vehicle

import (
	"fmt"
	"math"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/models/profile"
)

// Controller turns input into forces on the bike body.
type Controller struct {
	cfg      config.VehicleConfig
	profiles profile.Table
	active   profile.Profile

	nitro     int
	lastNitro time.Time
	nitroHeld bool

	speedKmh float64
}

// Result reports what one Drive call did.
type Result struct {
	SpeedKmh   float64
	NitroFired bool
}

// NewController creates a controller running the profile stored under key.
func NewController(cfg config.VehicleConfig, profiles profile.Table, key string) (*Controller, error) {
	p, err := profiles.Lookup(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create vehicle controller: %w", err)
	}
	return &Controller{
		cfg:      cfg,
		profiles: profiles,
		active:   p,
		nitro:    cfg.NitroCharges,
	}, nil
}

// SetProfile switches the tuning used from the next step on.
// Unknown keys leave the current profile in place.
func (c *Controller) SetProfile(key string) error {
	p, err := c.profiles.Lookup(key)
	if err != nil {
		return err
	}
	c.active = p
	return nil
}

// Profile returns the active profile.
func (c *Controller) Profile() profile.Profile { return c.active }

// NitroCount returns the charges left.
func (c *Controller) NitroCount() int { return c.nitro }

// SetNitroCount replaces the charges left. Negative values become zero.
func (c *Controller) SetNitroCount(n int) {
	c.nitro = max(0, n)
}

// NitroReadyAt returns when the cooldown of the last charge ends.
func (c *Controller) NitroReadyAt() time.Time {
	if c.lastNitro.IsZero() {
		return time.Time{}
	}
	return c.lastNitro.Add(c.cfg.NitroCooldown)
}

// SpeedKmh returns the speed measured by the last Drive, capped at the profile max.
func (c *Controller) SpeedKmh() float64 { return c.speedKmh }

// Drive applies one step of control forces.
func (c *Controller) Drive(b Body, in models.Input, grounded bool, now time.Time) Result {
	p := c.active
	speed := SpeedKmh(b.Velocity())

	if in.Accelerate {
		b.ApplyForce(forward.Mul(p.Thrust(speed)))
		if speed < c.cfg.StallSpeedKmh {
			b.ApplyImpulse(forward.Mul(c.cfg.StallImpulse))
		}
	}

	if in.Brake && grounded {
		b.ApplyForce(forward.Mul(-c.cfg.BrakeForce))
	}

	if in.Left {
		b.ApplyForce(right.Mul(-c.cfg.LateralForce))
	}
	if in.Right {
		b.ApplyForce(right.Mul(c.cfg.LateralForce))
	}
	if !in.Left && !in.Right {
		v := b.Velocity()
		b.SetVelocity(mgl64.Vec3{v.X() * c.cfg.LateralDamping, v.Y(), v.Z()})
	}

	if in.Handbrake {
		b.SetVelocity(b.Velocity().Mul(c.cfg.HandbrakeDamping))
	}

	if !in.Accelerate && !in.Brake && !in.Handbrake {
		b.ApplyForce(forward.Mul(c.cfg.CruiseForce))
	}

	fired := c.nitroEdge(b, in.Nitro, grounded, now)

	b.SetAngularVelocity(mgl64.Vec3{})

	c.speedKmh = math.Min(speed, p.MaxSpeedKmh)
	return Result{SpeedKmh: c.speedKmh, NitroFired: fired}
}

func (c *Controller) nitroEdge(b Body, held, grounded bool, now time.Time) bool {
	pressed := held && !c.nitroHeld
	c.nitroHeld = held

	if !pressed || !grounded || c.nitro <= 0 {
		return false
	}
	if !c.lastNitro.IsZero() && now.Sub(c.lastNitro) <= c.cfg.NitroCooldown {
		return false
	}

	b.ApplyForce(forward.Mul(c.cfg.NitroForce))
	c.nitro--
	c.lastNitro = now
	return true
}

// Stabilize runs after the physics step: it locks the orientation upright,
// pushes the bike back towards the lane and enforces the speed cap.
func (c *Controller) Stabilize(b Body, lane Lane) {
	b.SetOrientation(mgl64.QuatIdent())
	b.SetAngularVelocity(mgl64.Vec3{})

	pos := b.Position()
	dx := pos.X() - lane.CenterX

	soft := lane.HalfWidth * lane.SoftLimit
	if math.Abs(dx) > soft {
		excess := dx - math.Copysign(soft, dx)
		b.ApplyForce(right.Mul(-lane.Stiffness * excess))
	}

	hard := lane.HalfWidth * lane.HardLimit
	if math.Abs(dx) > hard {
		b.SetPosition(mgl64.Vec3{lane.CenterX + math.Copysign(hard, dx), pos.Y(), pos.Z()})
		v := b.Velocity()
		b.SetVelocity(mgl64.Vec3{0, v.Y(), v.Z()})
	}

	c.Cap(b)
}

// Cap rescales the velocity so the speed does not exceed the profile max.
func (c *Controller) Cap(b Body) {
	v := b.Velocity()
	speed := SpeedKmh(v)
	if speed > c.active.MaxSpeedKmh && speed > 0 {
		b.SetVelocity(v.Mul(c.active.MaxSpeedKmh / speed))
	}
}

// Snapshot builds the read-only vehicle state.
func (c *Controller) Snapshot(b Body, grounded bool) State {
	return State{
		Position:        b.Position(),
		Orientation:     b.Orientation(),
		LinearVelocity:  b.Velocity(),
		AngularVelocity: b.AngularVelocity(),
		SpeedKmh:        c.speedKmh,
		ProfileKey:      c.active.Key,
		NitroCount:      c.nitro,
		NitroReadyAt:    c.NitroReadyAt(),
		Grounded:        grounded,
	}
}
