// Package session ties the racing core together: one Session owns the world,
// the track, the bike and everything that happens to it, and advances them
// one fixed step per Tick.
package session

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/camera"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/crash"
	"github.com/golangdaddy/turbotrails/pkg/logging"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/physics"
	"github.com/golangdaddy/turbotrails/pkg/road"
	"github.com/golangdaddy/turbotrails/pkg/schedule"
	"github.com/golangdaddy/turbotrails/pkg/vehicle"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

var (
	// ErrDisposed is returned by operations on a torn down session.
	ErrDisposed = errors.New("session disposed")
	// ErrNotInitialized is returned by Run before Init.
	ErrNotInitialized = errors.New("session not initialized")
)

// minimum forward motion that counts towards distance
const (
	minForwardVelocity = 0.5
	minForwardDelta    = 0.001
)

var riderHalf = mgl64.Vec3{0.3, 0.3, 0.9}

// InputSource is polled once per tick.
type InputSource interface {
	Poll() models.Input
}

// StatsSink receives the scoreboard.
type StatsSink interface {
	OnStats(models.SessionStats)
}

// EndSink receives the end of the session, exactly once.
type EndSink interface {
	OnSessionEnd(models.SessionEnd)
}

// StatsFunc adapts a function to StatsSink.
type StatsFunc func(models.SessionStats)

// OnStats calls f.
func (f StatsFunc) OnStats(s models.SessionStats) { f(s) }

// EndFunc adapts a function to EndSink.
type EndFunc func(models.SessionEnd)

// OnSessionEnd calls f.
func (f EndFunc) OnSessionEnd(e models.SessionEnd) { f(e) }

type noInput struct{}

func (noInput) Poll() models.Input { return models.Input{} }

// Config wires a session to its collaborators. Only Settings is required.
type Config struct {
	Settings config.Settings
	Logger   zerolog.Logger
	Input    InputSource
	Viewport camera.Viewport
	Resolver assets.Resolver
	Stats    StatsSink
	End      EndSink
	Clock    schedule.Clock
	Rand     *rand.Rand
	Meter    metric.Meter
}

// RiderView is what the renderer needs to know about the rider.
type RiderView struct {
	Present bool // the bike has a separate rider at all
	Ejected bool // thrown off and simulated on its own
	Box     physics.Box
}

// Session is one run from spawn to the last life.
type Session struct {
	id  uuid.UUID
	cfg config.Settings
	log zerolog.Logger

	input    InputSource
	stats    StatsSink
	end      EndSink
	viewport camera.Viewport
	resolver assets.Resolver

	sched *schedule.Scheduler
	rng   *rand.Rand
	diag  *logging.Diagnostics

	world      *physics.World
	track      *road.Track
	controller *vehicle.Controller
	crash      *crash.Machine
	camera     *camera.Controller
	loader     *assets.Loader

	bike     *physics.Body
	rider    *physics.Body
	mesh     *assets.Mesh
	hasRider bool
	ejected  bool
	grounded bool

	spawnY   float64
	lastY    float64
	distance float64

	ctx         context.Context
	initialized bool
	running     bool
	paused      bool
	ended       bool
	disposed    bool

	pauseHeld  bool
	cameraHeld bool
}

// New creates a session. Nothing is allocated in the world until Init.
func New(cfg Config) (*Session, error) {
	if err := cfg.Settings.Validate(); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	id := uuid.New()
	logger := logging.Component(cfg.Logger, "session").With().Str("session", id.String()).Logger()

	controller, err := vehicle.NewController(cfg.Settings.Vehicle, cfg.Settings.Profiles, cfg.Settings.Session.StartProfile)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	meter := cfg.Meter
	if meter == nil {
		meter = otel.Meter("github.com/golangdaddy/turbotrails/pkg/session")
	}
	diag, err := logging.NewDiagnostics(logger, meter, cfg.Settings.Session.DiagnosticsEvery)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	diag.SetProfile(controller.Profile().Key)

	rng := cfg.Rand
	if rng == nil {
		seed := cfg.Settings.Track.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		rng = rand.New(rand.NewSource(seed))
	}

	s := &Session{
		id:         id,
		cfg:        cfg.Settings,
		log:        logger,
		input:      cfg.Input,
		stats:      cfg.Stats,
		end:        cfg.End,
		viewport:   cfg.Viewport,
		resolver:   cfg.Resolver,
		sched:      schedule.New(cfg.Clock),
		rng:        rng,
		diag:       diag,
		controller: controller,
	}
	if s.input == nil {
		s.input = noInput{}
	}
	return s, nil
}

// Init builds the world, lays the first segments, places the bike at the spawn
// point and requests the bike model.
func (s *Session) Init(ctx context.Context) error {
	if s.disposed {
		return ErrDisposed
	}
	if s.initialized {
		return errors.New("session already initialized")
	}
	s.ctx = ctx

	s.world = physics.NewWorld(s.cfg.Physics)
	s.world.OnContact(s.onContact)

	s.track = road.NewTrack(s.cfg.Track, s.world, s.rng, s.sched.Now)
	s.track.Generate(s.cfg.Track.InitialSegments)
	s.track.Ensure(s.spawnY)

	v := s.cfg.Vehicle
	half := mgl64.Vec3{v.HalfWidth, v.HalfLength, v.HalfHeight}
	s.bike = s.world.AddDynamic(physics.KindVehicle, v.Mass, half, mgl64.Vec3{0, s.spawnY, half.Z()})
	s.lastY = s.spawnY

	s.mesh = assets.Placeholder()
	s.hasRider = true

	s.crash = crash.NewMachine(s.cfg.Crash, s.sched, hooks{s})
	s.camera = camera.NewController(s.cfg.Camera, s.viewport)
	pos := s.bike.Position()
	s.camera.Update(&pos)

	if s.resolver != nil {
		s.loader = assets.NewLoader(ctx, s.resolver)
		s.requestModel()
	}

	s.initialized = true
	s.running = true

	s.log.Info().
		Str("profile", s.controller.Profile().Key).
		Int("segments", s.track.Len()).
		Int("lives", s.crash.Lives()).
		Msg("session started")

	s.emit()
	return nil
}

// Tick advances the session by one fixed step.
func (s *Session) Tick() {
	if !s.running || s.disposed {
		return
	}

	in := s.input.Poll()
	if in.PauseToggle && !s.pauseHeld {
		s.TogglePause()
	}
	if in.CameraToggle && !s.cameraHeld {
		s.ToggleCameraMode()
	}
	s.pauseHeld, s.cameraHeld = in.PauseToggle, in.CameraToggle

	if s.loader != nil {
		s.loader.Drain(s.applyModel)
	}

	if s.paused {
		return
	}

	s.sched.RunDue()
	if !s.running || s.disposed {
		return
	}

	v := s.cfg.Vehicle
	s.grounded = s.world.Grounded(s.bike, v.GroundRayLift, v.GroundRayLength)
	res := s.controller.Drive(s.bike, in, s.grounded, s.sched.Now())
	if res.NitroFired {
		s.diag.Nitro(s.ctx, s.controller.NitroCount())
		s.log.Debug().Int("remaining", s.controller.NitroCount()).Msg("nitro fired")
		s.emit()
	}

	s.world.Step(s.cfg.Session.TimeStep)

	pos := s.bike.Position()
	s.controller.Stabilize(s.bike, s.track.LaneAt(pos.Y()))
	pos = s.bike.Position()

	s.advanceDistance(pos, s.bike.Velocity())

	if added := s.track.Ensure(pos.Y()); added > 0 {
		s.log.Debug().Int("added", added).Float64("end", s.track.End()).Msg("track extended")
	}

	if s.crash.Check(res.SpeedKmh, pos, s.obstaclesNear(pos)) {
		s.diag.Crash(s.ctx, s.crash.Lives())
		s.log.Info().
			Float64("speedKmh", res.SpeedKmh).
			Int("lives", s.crash.Lives()).
			Msg("crashed")
		s.emit()
	}

	s.camera.Update(&pos)
	s.emit()
	s.diag.Tick(s.ctx, pos, s.bike.Velocity(), s.controller.SpeedKmh(), s.distance)
}

func (s *Session) advanceDistance(pos, vel mgl64.Vec3) {
	delta := pos.Y() - s.lastY
	if vel.Y() > minForwardVelocity && delta > minForwardDelta {
		s.distance += delta
	}
	s.lastY = pos.Y()
}

func (s *Session) obstaclesNear(pos mgl64.Vec3) []mgl64.Vec3 {
	near := s.track.ObstaclesNear(pos.Y(), s.cfg.Crash.Radius)
	out := make([]mgl64.Vec3, 0, len(near))
	for _, o := range near {
		out = append(out, o.Position())
	}
	return out
}

func (s *Session) onContact(c physics.Contact) {
	s.log.Debug().
		Stringer("a", c.A.Kind).
		Stringer("b", c.B.Kind).
		Msg("contact")
}

// Run ticks once per frame until the context ends, the frames stop,
// or the session terminates.
func (s *Session) Run(ctx context.Context, frames <-chan time.Time) error {
	if s.disposed {
		return ErrDisposed
	}
	if !s.initialized {
		return ErrNotInitialized
	}
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case _, ok := <-frames:
			if !ok {
				return nil
			}
			s.Tick()
			if s.disposed || s.Terminated() {
				return nil
			}
		}
	}
}

// TogglePause flips the paused flag and reports the new value.
// A terminated or disposed session stays as it is.
func (s *Session) TogglePause() bool {
	if s.disposed || !s.running {
		return s.paused
	}
	s.paused = !s.paused
	s.log.Info().Bool("paused", s.paused).Msg("pause toggled")
	s.emit()
	return s.paused
}

// ToggleCameraMode switches the camera rig from the next tick on.
func (s *Session) ToggleCameraMode() camera.Mode {
	if s.camera == nil || s.disposed {
		return camera.ThirdPerson
	}
	mode := s.camera.Toggle()
	s.log.Debug().Stringer("mode", mode).Msg("camera toggled")
	return mode
}

// SetProfile switches the bike tuning for the next step and requests its model.
func (s *Session) SetProfile(key string) error {
	if s.disposed {
		return ErrDisposed
	}
	if err := s.controller.SetProfile(key); err != nil {
		return fmt.Errorf("failed to set profile: %w", err)
	}
	s.diag.SetProfile(key)
	s.log.Info().Str("profile", key).Msg("profile set")
	if s.loader != nil {
		s.requestModel()
	}
	return nil
}

func (s *Session) requestModel() {
	p := assets.ModelPath(s.cfg.Assets.BikeDir, s.controller.Profile().Key)
	id := s.loader.Request(p)
	s.log.Debug().Str("path", p).Uint64("request", id).Msg("model requested")
}

func (s *Session) applyModel(res assets.Result) {
	if res.Err != nil {
		s.log.Warn().Err(res.Err).Msg("using placeholder bike")
		s.useMesh(assets.Placeholder())
		return
	}
	s.log.Info().Str("path", res.Path).Msg("model loaded")
	s.useMesh(res.Mesh)
}

func (s *Session) useMesh(m *assets.Mesh) {
	old := s.mesh
	s.mesh = m
	if old != nil && old != m {
		s.release(old)
	}

	s.world.Resize(s.bike, m.HalfExtents())
	s.hasRider = m.HasRider
	if !s.hasRider && s.ejected {
		s.world.Remove(s.rider)
		s.ejected = false
	}
}

func (s *Session) release(m *assets.Mesh) {
	if m == nil || m.Placeholder {
		return
	}
	if r, ok := s.resolver.(assets.Releaser); ok {
		r.Release(m)
	}
}

// Dispose tears the session down. Calling it again does nothing.
func (s *Session) Dispose() {
	if s.disposed {
		return
	}
	s.disposed = true
	s.running = false

	if s.crash != nil {
		s.crash.Dispose()
	}
	s.sched.CancelAll()
	if s.loader != nil {
		s.loader.Close()
	}
	if s.world != nil {
		s.world.RemoveListeners()
		s.world.Dispose()
	}
	s.release(s.mesh)
	s.mesh = nil

	s.log.Info().Float64("distance", s.distance).Msg("session disposed")
}

func (s *Session) emit() {
	if s.stats != nil {
		s.stats.OnStats(s.Stats())
	}
}

func (s *Session) finish() {
	if s.ended {
		return
	}
	s.ended = true

	end := s.Summary()
	s.log.Info().
		Int("score", end.Score).
		Float64("distanceKm", end.DistanceKm()).
		Msg("session ended")
	if s.end != nil {
		s.end.OnSessionEnd(end)
	}
}

// Summary builds the end-of-session record for the run so far.
func (s *Session) Summary() models.SessionEnd {
	return models.SessionEnd{
		SessionID:        s.id.String(),
		Profile:          s.controller.Profile().Key,
		Score:            s.Stats().Score,
		DistanceTraveled: s.distance,
		EndedAt:          s.sched.Now(),
	}
}

// ID returns the session id.
func (s *Session) ID() string { return s.id.String() }

// Stats returns the current scoreboard.
func (s *Session) Stats() models.SessionStats {
	score := models.Score(s.distance, s.cfg.Session.DistancePerPoint)
	tokens := 0
	if s.cfg.Session.PointsPerToken > 0 {
		tokens = score / s.cfg.Session.PointsPerToken
	}
	st := models.SessionStats{
		Speed:        s.controller.SpeedKmh(),
		Distance:     s.distance,
		Score:        score,
		Lives:        s.cfg.Crash.Lives,
		NitroCount:   s.controller.NitroCount(),
		TokensEarned: tokens,
		Paused:       s.paused,
	}
	if s.crash != nil {
		st.Lives = s.crash.Lives()
		st.Ragdoll = s.crash.Phase() == crash.Ragdoll
		st.Terminated = s.crash.Terminated()
	}
	return st
}

// Paused reports whether ticks are skipped.
func (s *Session) Paused() bool { return s.paused }

// Terminated reports whether the last life is gone.
func (s *Session) Terminated() bool { return s.crash != nil && s.crash.Terminated() }

// Phase returns the crash phase.
func (s *Session) Phase() crash.Phase {
	if s.crash == nil {
		return crash.Normal
	}
	return s.crash.Phase()
}

// Camera returns the last camera transform.
func (s *Session) Camera() camera.Transform {
	if s.camera == nil {
		return camera.Transform{}
	}
	return s.camera.Current()
}

// CameraMode returns the active camera rig.
func (s *Session) CameraMode() camera.Mode {
	if s.camera == nil {
		return camera.ThirdPerson
	}
	return s.camera.Mode()
}

// Vehicle returns a snapshot of the bike.
func (s *Session) Vehicle() vehicle.State {
	if s.bike == nil {
		return vehicle.State{ProfileKey: s.controller.Profile().Key}
	}
	return s.controller.Snapshot(s.bike, s.grounded)
}

// VehicleBox returns the bike's collision box.
func (s *Session) VehicleBox() physics.Box {
	if s.bike == nil {
		return physics.Box{}
	}
	return s.bike.Box()
}

// Rider returns where the rider is.
func (s *Session) Rider() RiderView {
	if s.bike == nil {
		return RiderView{}
	}
	if s.ejected {
		return RiderView{Present: true, Ejected: true, Box: s.rider.Box()}
	}
	seat := s.bike.Position().Add(mgl64.Vec3{0, 0, s.cfg.Crash.RiderLift})
	return RiderView{Present: s.hasRider, Box: physics.Box{Center: seat, Half: riderHalf}}
}

// Mesh returns the bike model in use.
func (s *Session) Mesh() *assets.Mesh { return s.mesh }

// Track returns the generated track.
func (s *Session) Track() *road.Track { return s.track }

// hooks carries out what the crash machine decides.
type hooks struct{ s *Session }

func (h hooks) Eject() bool {
	s := h.s
	if !s.hasRider {
		return false
	}
	c := s.cfg.Crash
	pos := s.bike.Position().Add(mgl64.Vec3{0, 0, c.RiderLift})
	if s.rider == nil {
		s.rider = s.world.AddDynamic(physics.KindRider, c.RiderMass, riderHalf, pos)
	} else {
		s.world.Readd(s.rider)
		s.rider.SetPosition(pos)
	}
	s.rider.SetVelocity(mgl64.Vec3{
		(s.rng.Float64()*2 - 1) * c.EjectSpread,
		(s.rng.Float64()*2 - 1) * c.EjectSpread,
		c.EjectUpMin + s.rng.Float64()*(c.EjectUpMax-c.EjectUpMin),
	})
	s.rider.SetAngularVelocity(mgl64.Vec3{})
	s.ejected = true
	return true
}

func (h hooks) Respawn() {
	s := h.s
	y := s.spawnY + s.distance + s.cfg.Crash.RespawnAhead
	s.track.Ensure(y)
	lane := s.track.LaneAt(y)

	s.bike.SetPosition(mgl64.Vec3{lane.CenterX, y, s.bike.HalfExtents().Z()})
	s.bike.SetVelocity(mgl64.Vec3{})
	s.bike.SetAngularVelocity(mgl64.Vec3{})
	s.bike.SetOrientation(mgl64.QuatIdent())
	s.lastY = y

	if s.ejected {
		s.world.Remove(s.rider)
		s.ejected = false
	}

	s.log.Info().Float64("y", y).Int("lives", s.crash.Lives()).Msg("respawned")
}

func (h hooks) Terminate() {
	s := h.s
	s.running = false
	s.paused = false
	s.emit()
	s.finish()
}
