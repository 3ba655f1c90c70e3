package logging

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Diagnostics is the rate-limited per-tick observability hook.
// Log lines are burst-sampled; metric instruments record every call.
type Diagnostics struct {
	log     zerolog.Logger
	ticks   metric.Int64Counter
	crashes metric.Int64Counter
	nitros  metric.Int64Counter
	speed   metric.Float64Histogram
	profile attribute.KeyValue
}

// NewDiagnostics creates the hook. At most one tick line is logged per interval.
func NewDiagnostics(logger zerolog.Logger, meter metric.Meter, interval time.Duration) (*Diagnostics, error) {
	if interval <= 0 {
		interval = time.Second
	}

	ticks, err := meter.Int64Counter("turbotrails.ticks",
		metric.WithDescription("Simulation ticks advanced"))
	if err != nil {
		return nil, fmt.Errorf("failed to create tick counter: %w", err)
	}
	crashes, err := meter.Int64Counter("turbotrails.crashes",
		metric.WithDescription("Crashes into obstacles"))
	if err != nil {
		return nil, fmt.Errorf("failed to create crash counter: %w", err)
	}
	nitros, err := meter.Int64Counter("turbotrails.nitro",
		metric.WithDescription("Nitro charges fired"))
	if err != nil {
		return nil, fmt.Errorf("failed to create nitro counter: %w", err)
	}
	speed, err := meter.Float64Histogram("turbotrails.speed",
		metric.WithDescription("Vehicle speed per tick"),
		metric.WithUnit("km/h"))
	if err != nil {
		return nil, fmt.Errorf("failed to create speed histogram: %w", err)
	}

	return &Diagnostics{
		log:     logger.Sample(&zerolog.BurstSampler{Burst: 1, Period: interval}),
		ticks:   ticks,
		crashes: crashes,
		nitros:  nitros,
		speed:   speed,
		profile: attribute.String("profile", ""),
	}, nil
}

// SetProfile tags subsequent measurements with the active profile.
func (d *Diagnostics) SetProfile(key string) {
	d.profile = attribute.String("profile", key)
}

// Tick records one simulation step.
func (d *Diagnostics) Tick(ctx context.Context, pos, vel mgl64.Vec3, speedKmh, distance float64) {
	attrs := metric.WithAttributes(d.profile)
	d.ticks.Add(ctx, 1, attrs)
	d.speed.Record(ctx, speedKmh, attrs)

	d.log.Debug().
		Floats64("position", pos[:]).
		Floats64("velocity", vel[:]).
		Float64("speedKmh", speedKmh).
		Float64("distance", distance).
		Msg("tick")
}

// Crash records a crash and the lives left after it.
func (d *Diagnostics) Crash(ctx context.Context, lives int) {
	d.crashes.Add(ctx, 1, metric.WithAttributes(d.profile, attribute.Int("lives", lives)))
}

// Nitro records one nitro charge being fired.
func (d *Diagnostics) Nitro(ctx context.Context, remaining int) {
	d.nitros.Add(ctx, 1, metric.WithAttributes(d.profile, attribute.Int("remaining", remaining)))
}
