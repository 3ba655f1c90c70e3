package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/jakecoffman/cp"
)

// vehicle and rider share a group so they never push each other
const riderGroup uint = 1

// supportTolerance is how far below a ground top a falling body may start
// its step and still be caught by that ground.
const supportTolerance = 0.05

// Contact is a begin-contact event between a moving body and an obstacle.
type Contact struct {
	A, B *Body
}

// ContactListener receives contact events after the step that produced them.
type ContactListener func(Contact)

// World owns every body and support surface of a session.
type World struct {
	space    *cp.Space
	gravity  float64
	damping  float64
	friction float64

	bodies    []*Body
	grounds   []*Ground
	listeners []ContactListener
	pending   []Contact

	nextID   int
	disposed bool
}

// NewWorld creates an empty world.
func NewWorld(cfg config.PhysicsConfig) *World {
	space := cp.NewSpace()
	space.SetGravity(cp.Vector{})
	space.SetDamping(1 - cfg.LinearDamping)
	if cfg.Iterations > 0 {
		space.Iterations = uint(cfg.Iterations)
	}

	w := &World{
		space:    space,
		gravity:  cfg.Gravity,
		damping:  1 - cfg.LinearDamping,
		friction: cfg.GroundFriction,
	}

	for _, k := range []Kind{KindVehicle, KindRider} {
		h := space.NewCollisionHandler(cp.CollisionType(k), cp.CollisionType(KindObstacle))
		h.BeginFunc = w.begin
	}

	return w
}

func (w *World) begin(arb *cp.Arbiter, _ *cp.Space, _ interface{}) bool {
	a, b := arb.Bodies()
	ba, _ := a.UserData.(*Body)
	bb, _ := b.UserData.(*Body)
	if ba != nil && bb != nil {
		w.pending = append(w.pending, Contact{A: ba, B: bb})
	}
	return true
}

// AddDynamic adds a moving box. It cannot rotate from contacts.
func (w *World) AddDynamic(kind Kind, mass float64, half, pos mgl64.Vec3) *Body {
	cb := cp.NewBody(mass, math.Inf(1))
	cb.SetPosition(cp.Vector{X: pos.X(), Y: pos.Y()})

	b := &Body{ID: w.id(), Kind: kind, body: cb, half: half, mass: mass, z: pos.Z()}
	cb.UserData = b

	w.space.AddBody(cb)
	b.shape = w.space.AddShape(w.newShape(b))
	w.bodies = append(w.bodies, b)
	return b
}

// AddStatic adds an immovable box.
func (w *World) AddStatic(kind Kind, box Box) *Body {
	cb := cp.NewStaticBody()
	cb.SetPosition(cp.Vector{X: box.Center.X(), Y: box.Center.Y()})

	b := &Body{ID: w.id(), Kind: kind, Static: true, body: cb, half: box.Half, z: box.Center.Z()}
	cb.UserData = b

	w.space.AddBody(cb)
	b.shape = w.space.AddShape(w.newShape(b))
	w.bodies = append(w.bodies, b)
	return b
}

// AddGround adds a support surface.
func (w *World) AddGround(box Box) *Ground {
	g := &Ground{ID: w.id(), Box: box}
	w.grounds = append(w.grounds, g)
	return g
}

func (w *World) newShape(b *Body) *cp.Shape {
	shape := cp.NewBox(b.body, 2*b.half.X(), 2*b.half.Y(), 0)
	shape.SetFriction(w.friction)
	shape.SetElasticity(0)
	shape.SetCollisionType(cp.CollisionType(b.Kind))
	group := cp.NO_GROUP
	if b.Kind == KindVehicle || b.Kind == KindRider {
		group = riderGroup
	}
	shape.SetFilter(cp.NewShapeFilter(group, cp.ALL_CATEGORIES, cp.ALL_CATEGORIES))
	return shape
}

func (w *World) id() int {
	w.nextID++
	return w.nextID
}

// Resize swaps the collision box of a dynamic body, keeping its bottom where it was.
func (w *World) Resize(b *Body, half mgl64.Vec3) {
	if b == nil || b.removed || b.Static {
		return
	}
	w.space.RemoveShape(b.shape)
	b.z += half.Z() - b.half.Z()
	b.half = half
	b.shape = w.space.AddShape(w.newShape(b))
}

// Remove takes a body out of the world. Removing twice is a no-op.
func (w *World) Remove(b *Body) {
	if b == nil || b.removed {
		return
	}
	w.space.RemoveShape(b.shape)
	w.space.RemoveBody(b.body)
	b.removed = true

	for i, other := range w.bodies {
		if other == b {
			w.bodies = append(w.bodies[:i], w.bodies[i+1:]...)
			break
		}
	}
}

// Readd puts a removed dynamic body back, e.g. a rider thrown off again.
func (w *World) Readd(b *Body) {
	if b == nil || !b.removed {
		return
	}
	b.removed = false
	w.space.AddBody(b.body)
	b.shape = w.space.AddShape(w.newShape(b))
	w.bodies = append(w.bodies, b)
}

// OnContact registers a contact listener.
func (w *World) OnContact(fn ContactListener) {
	w.listeners = append(w.listeners, fn)
}

// RemoveListeners drops every contact listener.
func (w *World) RemoveListeners() {
	w.listeners = nil
	w.pending = nil
}

// Step advances the world by dt seconds.
func (w *World) Step(dt float64) {
	if w.disposed || dt <= 0 {
		return
	}

	w.space.Step(dt)

	decay := math.Pow(w.damping, dt)
	for _, b := range w.bodies {
		if b.Static {
			continue
		}
		w.integrateVertical(b, dt, decay)
	}

	contacts := w.pending
	w.pending = nil
	for _, c := range contacts {
		for _, fn := range w.listeners {
			fn(c)
		}
	}
}

func (w *World) integrateVertical(b *Body, dt, decay float64) {
	prevBottom := b.z - b.half.Z()

	b.vz = b.vz*decay + (w.gravity+b.fz/b.mass)*dt
	b.fz = 0
	b.z += b.vz * dt

	top, ok := w.supportTop(b.Position(), prevBottom)
	if !ok || b.vz > 0 || b.z-b.half.Z() > top {
		return
	}

	b.z = top + b.half.Z()
	b.vz = 0

	// coulomb friction against the ground
	v := b.body.Velocity()
	speed := v.Length()
	if speed == 0 {
		return
	}
	loss := w.friction * math.Abs(w.gravity) * dt
	if loss >= speed {
		b.body.SetVelocity(0, 0)
		return
	}
	b.body.SetVelocityVector(v.Mult((speed - loss) / speed))
}

// supportTop returns the highest ground top under p that a body whose bottom
// was at prevBottom can land on.
func (w *World) supportTop(p mgl64.Vec3, prevBottom float64) (float64, bool) {
	best, found := 0.0, false
	for _, g := range w.grounds {
		if !g.Box.ContainsXY(p) {
			continue
		}
		top := g.Box.Top()
		if top > prevBottom+supportTolerance {
			continue
		}
		if !found || top > best {
			best, found = top, true
		}
	}
	return best, found
}

// Raycast returns the closest ground hit on the segment from..to.
// A degenerate segment never hits.
func (w *World) Raycast(from, to mgl64.Vec3) (RayHit, bool) {
	dir := to.Sub(from)
	length := dir.Len()
	if length == 0 || math.IsNaN(length) || math.IsInf(length, 0) {
		return RayHit{}, false
	}
	dir = dir.Mul(1 / length)

	var hit RayHit
	found := false
	for _, g := range w.grounds {
		t, ok := g.Box.RayCast(from, dir, length)
		if !ok || (found && t >= hit.Distance) {
			continue
		}
		hit = RayHit{Ground: g, Point: from.Add(dir.Mul(t)), Distance: t}
		found = true
	}
	return hit, found
}

// Grounded casts a ray straight down from lift above the body centre.
func (w *World) Grounded(b *Body, lift, length float64) bool {
	if b == nil || b.removed {
		return false
	}
	from := b.Position().Add(mgl64.Vec3{0, 0, lift})
	_, ok := w.Raycast(from, from.Sub(mgl64.Vec3{0, 0, length}))
	return ok
}

// Bodies returns the bodies currently in the world.
func (w *World) Bodies() []*Body { return w.bodies }

// Grounds returns the support surfaces.
func (w *World) Grounds() []*Ground { return w.grounds }

// Disposed reports whether Dispose ran.
func (w *World) Disposed() bool { return w.disposed }

// Dispose removes every body, ground and listener. It is safe to call twice.
func (w *World) Dispose() {
	if w.disposed {
		return
	}
	for len(w.bodies) > 0 {
		w.Remove(w.bodies[len(w.bodies)-1])
	}
	w.grounds = nil
	w.RemoveListeners()
	w.disposed = true
}
