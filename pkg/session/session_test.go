package session

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/assets"
	"github.com/golangdaddy/turbotrails/pkg/camera"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/crash"
	"github.com/golangdaddy/turbotrails/pkg/models"
	"github.com/golangdaddy/turbotrails/pkg/physics"
	"github.com/golangdaddy/turbotrails/pkg/schedule"
	"github.com/golangdaddy/turbotrails/pkg/vehicle"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
)

// scriptedInput replays the same input until changed.
type scriptedInput struct {
	in    models.Input
	polls int
}

func (s *scriptedInput) Poll() models.Input {
	s.polls++
	return s.in
}

type sinks struct {
	stats []models.SessionStats
	ends  []models.SessionEnd
}

func (k *sinks) last() models.SessionStats { return k.stats[len(k.stats)-1] }

type harness struct {
	s     *Session
	input *scriptedInput
	clock *schedule.ManualClock
	sinks *sinks
}

func (h *harness) tick(n int) {
	step := time.Duration(h.s.cfg.Session.TimeStep * float64(time.Second))
	for i := 0; i < n; i++ {
		h.clock.Advance(step)
		h.s.Tick()
	}
}

func clearTrack() config.Settings {
	settings := config.Defaults()
	settings.Track.ObstacleChance = 0
	return settings
}

func newHarness(t *testing.T, settings config.Settings, resolver assets.Resolver) *harness {
	t.Helper()
	h := &harness{
		input: &scriptedInput{},
		clock: schedule.NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)),
		sinks: &sinks{},
	}
	s, err := New(Config{
		Settings: settings,
		Logger:   zerolog.Nop(),
		Input:    h.input,
		Viewport: camera.FixedViewport{Width: 1024, Height: 600},
		Resolver: resolver,
		Stats:    StatsFunc(func(st models.SessionStats) { h.sinks.stats = append(h.sinks.stats, st) }),
		End:      EndFunc(func(e models.SessionEnd) { h.sinks.ends = append(h.sinks.ends, e) }),
		Clock:    h.clock,
		Rand:     rand.New(rand.NewSource(7)),
		Meter:    noop.NewMeterProvider().Meter("test"),
	})
	require.NoError(t, err)
	require.NoError(t, s.Init(context.Background()))
	t.Cleanup(s.Dispose)
	h.s = s
	return h
}

// placeRock puts a 1 m cube on the road dy ahead of the bike.
func (h *harness) placeRock(dy float64) {
	pos := h.s.Vehicle().Position
	h.s.Track().AddObstacle(physics.Box{
		Center: mgl64.Vec3{pos.X(), pos.Y() + dy, 0.5},
		Half:   mgl64.Vec3{0.5, 0.5, 0.5},
	})
}

func TestNew_RejectsUnknownStartProfile(t *testing.T) {
	settings := config.Defaults()
	settings.Session.StartProfile = "moped"
	_, err := New(Config{Settings: settings, Logger: zerolog.Nop()})
	assert.Error(t, err)
}

func TestInit_StartsAtSpawn(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)

	st := h.s.Vehicle()
	assert.Equal(t, mgl64.Vec3{0, 0, 0.5}, st.Position)
	assert.Equal(t, "sport", st.ProfileKey)
	assert.Equal(t, 10, h.s.Track().Len())
	assert.Len(t, h.sinks.stats, 1)
	assert.Equal(t, 3, h.sinks.last().Lives)

	assert.ErrorContains(t, h.s.Init(context.Background()), "already initialized")
	assert.NotEmpty(t, h.s.ID())
}

func TestScenario_SportFromRestAcceleratesToCap(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.input.in = models.Input{Accelerate: true}

	var speeds []float64
	for i := 0; i < 300; i++ {
		h.tick(1)
		speeds = append(speeds, h.s.Stats().Speed)
		assert.LessOrEqual(t, vehicle.SpeedKmh(h.s.Vehicle().LinearVelocity), 220+1e-6, "tick %d", i)
	}

	reached := false
	for i := 1; i < len(speeds); i++ {
		assert.LessOrEqual(t, speeds[i], 220+1e-9, "tick %d", i)
		if speeds[i-1] < 220-1e-6 {
			assert.Greater(t, speeds[i], speeds[i-1], "tick %d", i)
		} else {
			reached = true
		}
	}
	assert.True(t, reached, "sport profile never reached its cap")
	assert.Greater(t, h.s.Stats().Distance, 0.0)
	assert.Greater(t, h.s.Track().End(), h.s.Vehicle().Position.Y()+400, "track must stay ahead")
}

func TestScenario_FastNearObstacleCrashes(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.placeRock(2.5)

	h.s.bike.SetVelocity(mgl64.Vec3{0, 25, 0}) // 90 km/h
	h.tick(1)

	assert.Equal(t, crash.Ragdoll, h.s.Phase())
	st := h.sinks.last()
	assert.Equal(t, 2, st.Lives)
	assert.True(t, st.Ragdoll)

	r := h.s.Rider()
	assert.True(t, r.Ejected)
	assert.GreaterOrEqual(t, h.s.rider.Velocity().Z(), 5.0-30.0/60.0)
}

func TestScenario_SlowNearObstacleDoesNotCrash(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.placeRock(2.5)

	h.s.bike.SetVelocity(mgl64.Vec3{0, 10, 0}) // 36 km/h
	h.tick(1)

	assert.Equal(t, crash.Normal, h.s.Phase())
	assert.Equal(t, 3, h.s.Stats().Lives)
}

func TestRespawn_PutsBikeAheadWithRiderBack(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.placeRock(2.5)
	h.s.bike.SetVelocity(mgl64.Vec3{0, 25, 0})
	h.tick(1)
	require.Equal(t, crash.Ragdoll, h.s.Phase())

	h.tick(178)
	require.Equal(t, crash.Ragdoll, h.s.Phase())
	d := h.s.Stats().Distance

	// the respawn is due one frame past three seconds after the crash
	h.tick(3)
	assert.Equal(t, crash.Normal, h.s.Phase())
	after := h.s.Stats().Distance
	assert.InDelta(t, d, after, 0.5, "the respawn jump is not distance")
	assert.InDelta(t, after+10, h.s.Vehicle().Position.Y(), 0.1)
	assert.False(t, h.s.Rider().Ejected)
	assert.True(t, h.s.Rider().Present)
	assert.Equal(t, 2, h.s.Stats().Lives)
}

func TestScenario_LastLifeTerminatesAfterDelay(t *testing.T) {
	settings := clearTrack()
	settings.Crash.Lives = 1
	h := newHarness(t, settings, nil)
	h.placeRock(2.5)

	h.s.bike.SetVelocity(mgl64.Vec3{0, 25, 0})
	h.tick(1)
	require.Equal(t, crash.Ragdoll, h.s.Phase())
	assert.False(t, h.s.Terminated())
	assert.Empty(t, h.sinks.ends)

	// the last life ends one frame past three seconds after the crash
	h.tick(180)
	assert.False(t, h.s.Terminated())
	h.tick(1)
	assert.True(t, h.s.Terminated())
	assert.Equal(t, crash.Ragdoll, h.s.Phase(), "no respawn without lives")

	final := h.sinks.last()
	assert.True(t, final.Terminated)
	assert.False(t, final.Paused)
	assert.Equal(t, 0, final.Lives)

	require.Len(t, h.sinks.ends, 1)
	end := h.sinks.ends[0]
	assert.Equal(t, h.s.ID(), end.SessionID)
	assert.Equal(t, "sport", end.Profile)

	// nothing moves after the end
	n := len(h.sinks.stats)
	h.tick(120)
	assert.Len(t, h.sinks.stats, n)
	assert.Len(t, h.sinks.ends, 1)
	assert.False(t, h.s.TogglePause())
}

func TestScenario_NitroTwiceInsideCooldownFiresOnce(t *testing.T) {
	settings := clearTrack()
	settings.Vehicle.NitroCharges = 1
	h := newHarness(t, settings, nil)
	h.tick(5) // settle on the ground

	h.input.in = models.Input{Nitro: true}
	h.tick(1)
	assert.Equal(t, 0, h.s.Stats().NitroCount)

	h.input.in = models.Input{}
	h.tick(1)
	h.input.in = models.Input{Nitro: true}
	h.tick(1)
	assert.Equal(t, 0, h.s.Stats().NitroCount)
}

func TestPause_HoldsSimulationAndEmitsOnToggle(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.input.in = models.Input{Accelerate: true}
	h.tick(30)

	h.input.in = models.Input{Accelerate: true, PauseToggle: true}
	h.tick(1)
	require.True(t, h.s.Paused())
	assert.True(t, h.sinks.last().Paused)

	pos := h.s.Vehicle().Position
	d := h.s.Stats().Distance
	n := len(h.sinks.stats)

	// holding the key does not toggle again
	h.tick(60)
	assert.True(t, h.s.Paused())
	assert.Equal(t, pos, h.s.Vehicle().Position)
	assert.Equal(t, d, h.s.Stats().Distance)
	assert.Len(t, h.sinks.stats, n)

	h.input.in = models.Input{Accelerate: true}
	h.tick(1)
	h.input.in = models.Input{Accelerate: true, PauseToggle: true}
	h.tick(1)
	assert.False(t, h.s.Paused())
	assert.Greater(t, h.s.Vehicle().Position.Y(), pos.Y())
}

func TestCameraToggle_EdgeTriggered(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)

	h.input.in = models.Input{CameraToggle: true}
	h.tick(10)
	assert.Equal(t, camera.FirstPerson, h.s.CameraMode())

	pos := h.s.Vehicle().Position
	assert.InDelta(t, pos.Z()+2, h.s.Camera().Eye.Z(), 1e-9)

	h.input.in = models.Input{}
	h.tick(1)
	assert.Equal(t, camera.ThirdPerson, h.s.ToggleCameraMode())
}

func TestDistance_NeverDecreases(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)

	prev := 0.0
	check := func(n int) {
		for i := 0; i < n; i++ {
			h.tick(1)
			d := h.s.Stats().Distance
			require.GreaterOrEqual(t, d, prev)
			prev = d
		}
	}

	h.input.in = models.Input{Handbrake: true}
	check(60)
	assert.Zero(t, prev, "standing still is not progress")

	h.input.in = models.Input{Accelerate: true}
	check(120)
	h.input.in = models.Input{Brake: true}
	check(120)
	h.input.in = models.Input{Accelerate: true, Left: true}
	check(60)

	assert.Equal(t, models.Score(prev, 100), h.s.Stats().Score)
}

func TestSetProfile(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)

	require.NoError(t, h.s.SetProfile("cruiser"))
	assert.Equal(t, "cruiser", h.s.Vehicle().ProfileKey)

	h.input.in = models.Input{Accelerate: true}
	for i := 0; i < 600; i++ {
		h.tick(1)
		require.LessOrEqual(t, vehicle.SpeedKmh(h.s.Vehicle().LinearVelocity), 160+1e-6, "tick %d", i)
	}
	assert.LessOrEqual(t, h.s.Stats().Speed, 160.0)

	assert.Error(t, h.s.SetProfile("moped"))
	assert.Equal(t, "cruiser", h.s.Vehicle().ProfileKey)
}

func TestDispose_Idempotent(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)
	h.placeRock(2.5)
	h.s.bike.SetVelocity(mgl64.Vec3{0, 25, 0})
	h.tick(1)
	require.Equal(t, crash.Ragdoll, h.s.Phase())

	h.s.Dispose()
	h.s.Dispose()

	n := len(h.sinks.stats)
	h.tick(600)
	assert.Len(t, h.sinks.stats, n)
	assert.Empty(t, h.sinks.ends)
	assert.Empty(t, h.s.world.Bodies())
	assert.ErrorIs(t, h.s.SetProfile("hyper"), ErrDisposed)
	assert.ErrorIs(t, h.s.Run(context.Background(), nil), ErrDisposed)
}

func TestRun_StopsOnContextAndTermination(t *testing.T) {
	h := newHarness(t, clearTrack(), nil)

	frames := make(chan time.Time)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- h.s.Run(ctx, frames) }()

	frames <- time.Now()
	frames <- time.Now()
	cancel()
	assert.ErrorIs(t, <-done, context.Canceled)

	closed := make(chan time.Time)
	close(closed)
	assert.NoError(t, h.s.Run(context.Background(), closed))
}

// meshResolver serves meshes by path and records releases.
type meshResolver struct {
	mu       sync.Mutex
	meshes   map[string]*assets.Mesh
	released []string
}

func (r *meshResolver) LoadMesh(_ context.Context, p string) (*assets.Mesh, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	m, ok := r.meshes[p]
	if !ok {
		return nil, errors.New("not found")
	}
	return m, nil
}

func (r *meshResolver) Release(m *assets.Mesh) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, m.Path)
}

func waitFor(t *testing.T, h *harness, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met in time")
		}
		time.Sleep(time.Millisecond)
		h.tick(1)
	}
}

func TestAssets_LoadedModelResizesBikeAndDropsRider(t *testing.T) {
	r := &meshResolver{meshes: map[string]*assets.Mesh{
		"assets/bike/sport.png": {Path: "assets/bike/sport.png", Size: mgl64.Vec3{1.2, 5, 1.4}},
		"assets/bike/hyper.png": {Path: "assets/bike/hyper.png", Size: mgl64.Vec3{1.4, 6, 1.2}},
	}}
	h := newHarness(t, clearTrack(), r)

	waitFor(t, h, func() bool { return !h.s.Mesh().Placeholder })
	assert.Equal(t, "assets/bike/sport.png", h.s.Mesh().Path)
	half := h.s.VehicleBox().Half
	assert.InDeltaSlice(t, []float64{0.6, 2.5, 0.7}, half[:], 1e-12)
	assert.False(t, h.s.Rider().Present)

	require.NoError(t, h.s.SetProfile("hyper"))
	waitFor(t, h, func() bool { return h.s.Mesh().Path == "assets/bike/hyper.png" })
	assert.Equal(t, []string{"assets/bike/sport.png"}, r.released)

	// without a rider a crash respawns quickly
	h.placeRock(3)
	h.s.bike.SetVelocity(mgl64.Vec3{0, 25, 0})
	h.tick(1)
	require.Equal(t, crash.Ragdoll, h.s.Phase())
	assert.False(t, h.s.Rider().Ejected)
	h.tick(50)
	assert.Equal(t, crash.Normal, h.s.Phase())

	h.s.Dispose()
	assert.Equal(t, []string{"assets/bike/sport.png", "assets/bike/hyper.png"}, r.released)
}

func TestAssets_FailureKeepsPlaceholder(t *testing.T) {
	r := &meshResolver{meshes: map[string]*assets.Mesh{}}
	h := newHarness(t, clearTrack(), r)

	h.tick(1)
	time.Sleep(20 * time.Millisecond)
	h.tick(1)

	assert.True(t, h.s.Mesh().Placeholder)
	assert.True(t, h.s.Rider().Present)
	assert.Equal(t, mgl64.Vec3{1, 2, 0.5}, h.s.VehicleBox().Half)
}

func TestAutopilot_DrivesUntilStopped(t *testing.T) {
	settings := config.Defaults()
	h := newHarness(t, settings, nil)
	pilot := NewAutopilot(h.s)
	h.s.input = pilot

	h.tick(600)
	assert.Greater(t, h.s.Stats().Distance, 100.0)
	assert.LessOrEqual(t, h.s.Stats().NitroCount, settings.Vehicle.NitroCharges)
}
