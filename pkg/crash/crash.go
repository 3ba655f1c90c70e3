package crash

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/schedule"
)

// Phase is the rider state.
type Phase int

const (
	Normal Phase = iota
	Ragdoll
)

func (p Phase) String() string {
	if p == Ragdoll {
		return "ragdoll"
	}
	return "normal"
}

// Hooks are the scene changes a crash triggers.
type Hooks interface {
	// Eject throws the rider off and reports whether there was one.
	Eject() bool
	// Respawn puts the vehicle back on the track with the rider seated.
	Respawn()
	// Terminate ends the session.
	Terminate()
}

// Machine decides when the bike crashes and what happens after.
type Machine struct {
	cfg   config.CrashConfig
	sched *schedule.Scheduler
	hooks Hooks

	phase      Phase
	lives      int
	impactAt   time.Time
	respawn    *schedule.Task
	terminated bool
	disposed   bool
}

// NewMachine creates a machine in Normal with full lives.
func NewMachine(cfg config.CrashConfig, sched *schedule.Scheduler, hooks Hooks) *Machine {
	return &Machine{
		cfg:   cfg,
		sched: sched,
		hooks: hooks,
		lives: cfg.Lives,
	}
}

// Check applies the crash rule: fast enough and close enough to any obstacle.
// It reports whether the bike crashed on this call.
func (m *Machine) Check(speedKmh float64, pos mgl64.Vec3, obstacles []mgl64.Vec3) bool {
	if m.phase != Normal || m.terminated || m.disposed {
		return false
	}
	if speedKmh <= m.cfg.SpeedThresholdKmh {
		return false
	}
	for _, o := range obstacles {
		if pos.Sub(o).Len() < m.cfg.Radius {
			m.enterRagdoll()
			return true
		}
	}
	return false
}

func (m *Machine) enterRagdoll() {
	m.phase = Ragdoll
	m.lives--
	m.impactAt = m.sched.Now()

	delay := m.cfg.RespawnDelayNoRider
	if m.hooks.Eject() {
		delay = m.cfg.RespawnDelay
	}

	m.respawn.Cancel()
	m.respawn = m.sched.After("respawn", delay, m.fire)
}

func (m *Machine) fire() {
	m.respawn = nil
	if m.disposed {
		return
	}
	if m.lives > 0 {
		m.phase = Normal
		m.hooks.Respawn()
		return
	}
	m.terminated = true
	m.hooks.Terminate()
}

// Phase returns the current phase.
func (m *Machine) Phase() Phase { return m.phase }

// Lives returns the lives left.
func (m *Machine) Lives() int { return m.lives }

// Terminated reports whether the last life has been spent and the delay has run out.
func (m *Machine) Terminated() bool { return m.terminated }

// ImpactAt returns when the last crash happened; zero before the first one.
func (m *Machine) ImpactAt() time.Time { return m.impactAt }

// RespawnAt returns when the pending respawn runs, if one is pending.
func (m *Machine) RespawnAt() (time.Time, bool) {
	if !m.respawn.Pending() {
		return time.Time{}, false
	}
	return m.respawn.Due(), true
}

// Dispose cancels the pending respawn. Later timer firings do nothing.
func (m *Machine) Dispose() {
	m.disposed = true
	m.respawn.Cancel()
	m.respawn = nil
}
