package crash

import (
	"testing"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/schedule"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	rider      bool
	ejects     int
	respawns   int
	terminates int
}

func (r *recorder) Eject() bool {
	r.ejects++
	had := r.rider
	r.rider = false
	return had
}

func (r *recorder) Respawn() {
	r.respawns++
	r.rider = true
}

func (r *recorder) Terminate() { r.terminates++ }

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newMachine(lives int) (*Machine, *recorder, *schedule.ManualClock, *schedule.Scheduler) {
	cfg := config.Defaults().Crash
	cfg.Lives = lives
	clock := schedule.NewManualClock(epoch)
	sched := schedule.New(clock)
	rec := &recorder{rider: true}
	return NewMachine(cfg, sched, rec), rec, clock, sched
}

var rock = []mgl64.Vec3{{0, 2.5, 0.5}}

func TestCheck_CrashRule(t *testing.T) {
	tests := []struct {
		name  string
		speed float64
		pos   mgl64.Vec3
		want  bool
	}{
		{"fast and close", 90, mgl64.Vec3{0, 0, 0.5}, true},
		{"at threshold", 80, mgl64.Vec3{0, 0, 0.5}, false},
		{"slow and close", 40, mgl64.Vec3{0, 0, 0.5}, false},
		{"fast and far", 200, mgl64.Vec3{0, -1, 0.5}, false},
		{"fast, just inside radius", 81, mgl64.Vec3{0, -0.49, 0.5}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _, _, _ := newMachine(3)
			assert.Equal(t, tt.want, m.Check(tt.speed, tt.pos, rock))
		})
	}
}

func TestCheck_EntersRagdollAndLosesLife(t *testing.T) {
	m, rec, clock, sched := newMachine(3)
	assert.True(t, m.ImpactAt().IsZero())

	clock.Advance(500 * time.Millisecond)
	require.True(t, m.Check(90, mgl64.Vec3{0, 0, 0.5}, rock))
	assert.Equal(t, Ragdoll, m.Phase())
	assert.Equal(t, 2, m.Lives())
	assert.Equal(t, 1, rec.ejects)
	assert.Equal(t, 1, sched.Pending())
	assert.Equal(t, epoch.Add(500*time.Millisecond), m.ImpactAt())

	due, ok := m.RespawnAt()
	require.True(t, ok)
	assert.Equal(t, m.ImpactAt().Add(3*time.Second), due)

	// no double crash while ragdolling
	assert.False(t, m.Check(90, mgl64.Vec3{0, 0, 0.5}, rock))
	assert.Equal(t, 2, m.Lives())
}

func TestRespawn_AfterDelay(t *testing.T) {
	m, rec, clock, sched := newMachine(3)
	m.Check(90, mgl64.Vec3{}, rock)

	clock.Advance(2999 * time.Millisecond)
	sched.RunDue()
	assert.Equal(t, Ragdoll, m.Phase())

	clock.Advance(time.Millisecond)
	sched.RunDue()
	assert.Equal(t, Normal, m.Phase())
	assert.Equal(t, 1, rec.respawns)
	assert.False(t, m.Terminated())
}

func TestRespawn_ShortDelayWithoutRider(t *testing.T) {
	m, rec, clock, sched := newMachine(3)
	rec.rider = false

	m.Check(90, mgl64.Vec3{}, rock)
	due, _ := m.RespawnAt()
	assert.Equal(t, epoch.Add(800*time.Millisecond), due)

	clock.Advance(800 * time.Millisecond)
	sched.RunDue()
	assert.Equal(t, Normal, m.Phase())
}

func TestLastLife_TerminatesOnce(t *testing.T) {
	m, rec, clock, sched := newMachine(1)

	require.True(t, m.Check(120, mgl64.Vec3{}, rock))
	assert.Equal(t, 0, m.Lives())
	assert.False(t, m.Terminated(), "termination waits for the delay")

	clock.Advance(3 * time.Second)
	sched.RunDue()
	assert.True(t, m.Terminated())
	assert.Equal(t, 1, rec.terminates)
	assert.Equal(t, 0, rec.respawns)

	assert.False(t, m.Check(120, mgl64.Vec3{}, rock))
	clock.Advance(time.Hour)
	sched.RunDue()
	assert.Equal(t, 1, rec.terminates)
}

func TestDispose_CancelsRespawn(t *testing.T) {
	m, rec, clock, sched := newMachine(3)
	m.Check(90, mgl64.Vec3{}, rock)

	m.Dispose()
	m.Dispose()
	_, ok := m.RespawnAt()
	assert.False(t, ok)

	clock.Advance(time.Minute)
	sched.RunDue()
	assert.Equal(t, 0, rec.respawns)
	assert.False(t, m.Check(90, mgl64.Vec3{}, rock))
}

func TestDispose_FiredHandlerRechecks(t *testing.T) {
	m, rec, _, _ := newMachine(3)
	m.Check(90, mgl64.Vec3{}, rock)

	// a handler already in flight when teardown happens
	m.disposed = true
	m.fire()
	assert.Equal(t, 0, rec.respawns)
	assert.Equal(t, 0, rec.terminates)
}
