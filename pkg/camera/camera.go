package camera

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
)

// Mode selects the camera rig.
type Mode int

const (
	ThirdPerson Mode = iota
	FirstPerson
)

func (m Mode) String() string {
	if m == FirstPerson {
		return "first-person"
	}
	return "third-person"
}

// Viewport reports the drawable size used for the aspect ratio.
type Viewport interface {
	Size() (width, height int)
}

// FixedViewport is a viewport of constant size.
type FixedViewport struct {
	Width, Height int
}

// Size returns the fixed dimensions.
func (v FixedViewport) Size() (int, int) { return v.Width, v.Height }

// Transform is where the camera sits and what it looks at.
type Transform struct {
	Eye        mgl64.Vec3
	Target     mgl64.Vec3
	Up         mgl64.Vec3
	View       mgl64.Mat4
	Projection mgl64.Mat4
}

// Controller places the camera relative to the vehicle each tick.
type Controller struct {
	cfg      config.CameraConfig
	viewport Viewport
	mode     Mode
	current  Transform
}

var up = mgl64.Vec3{0, 0, 1}

// NewController creates a third-person camera.
func NewController(cfg config.CameraConfig, viewport Viewport) *Controller {
	c := &Controller{cfg: cfg, viewport: viewport}
	c.current = c.build(mgl64.Vec3{0, -cfg.ChaseBack, cfg.ChaseHeight}, mgl64.Vec3{0, cfg.LookAhead, 1})
	return c
}

// Toggle switches between the two rigs. The change shows on the next Update.
func (c *Controller) Toggle() Mode {
	if c.mode == ThirdPerson {
		c.mode = FirstPerson
	} else {
		c.mode = ThirdPerson
	}
	return c.mode
}

// Mode returns the active rig.
func (c *Controller) Mode() Mode { return c.mode }

// Update snaps the camera to the vehicle. A nil position keeps the default view.
func (c *Controller) Update(vehicle *mgl64.Vec3) Transform {
	if vehicle == nil {
		c.current = c.build(mgl64.Vec3{0, -c.cfg.ChaseBack, c.cfg.ChaseHeight}, mgl64.Vec3{0, c.cfg.LookAhead, 1})
		return c.current
	}

	p := *vehicle
	switch c.mode {
	case FirstPerson:
		c.current = c.build(
			p.Add(mgl64.Vec3{0, c.cfg.CockpitForward, c.cfg.CockpitHeight}),
			p.Add(mgl64.Vec3{0, c.cfg.LookAhead, c.cfg.CockpitHeight}),
		)
	default:
		c.current = c.build(p.Add(mgl64.Vec3{0, -c.cfg.ChaseBack, c.cfg.ChaseHeight}), p)
	}
	return c.current
}

// Current returns the last computed transform.
func (c *Controller) Current() Transform { return c.current }

func (c *Controller) build(eye, target mgl64.Vec3) Transform {
	return Transform{
		Eye:        eye,
		Target:     target,
		Up:         up,
		View:       mgl64.LookAtV(eye, target, up),
		Projection: mgl64.Perspective(mgl64.DegToRad(c.cfg.FieldOfView), c.aspect(), c.cfg.Near, c.cfg.Far),
	}
}

func (c *Controller) aspect() float64 {
	if c.viewport == nil {
		return 16.0 / 9.0
	}
	w, h := c.viewport.Size()
	if w <= 0 || h <= 0 {
		return 16.0 / 9.0
	}
	return float64(w) / float64(h)
}

// Project maps a world point to viewport pixels. ok is false for points behind the camera.
func (t Transform) Project(p mgl64.Vec3, width, height int) (x, y float64, ok bool) {
	clip := t.Projection.Mul4(t.View).Mul4x1(p.Vec4(1))
	if clip.W() <= 1e-6 {
		return 0, 0, false
	}
	ndc := clip.Vec3().Mul(1 / clip.W())
	x = (ndc.X() + 1) / 2 * float64(width)
	y = (1 - ndc.Y()) / 2 * float64(height)
	return x, y, true
}
