package road

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/golangdaddy/turbotrails/pkg/physics"
	"github.com/golangdaddy/turbotrails/pkg/vehicle"
)

// Builder is where the track puts its collision geometry.
type Builder interface {
	AddGround(box physics.Box) *physics.Ground
	AddStatic(kind physics.Kind, box physics.Box) *physics.Body
}

// Track streams segments ahead of the vehicle. Segments are never removed.
type Track struct {
	cfg      config.TrackConfig
	builder  Builder
	rng      *rand.Rand
	now      func() time.Time
	segments []*Segment
}

// NewTrack creates an empty track. Call Generate to lay the first segments.
func NewTrack(cfg config.TrackConfig, builder Builder, rng *rand.Rand, now func() time.Time) *Track {
	if now == nil {
		now = time.Now
	}
	return &Track{
		cfg:     cfg,
		builder: builder,
		rng:     rng,
		now:     now,
	}
}

// Generate appends n segments.
func (t *Track) Generate(n int) {
	for i := 0; i < n; i++ {
		t.append()
	}
}

// Ensure appends segments until the track reaches lookahead beyond reach,
// and returns how many it added.
func (t *Track) Ensure(reach float64) int {
	added := 0
	for t.End() < reach+t.cfg.Lookahead {
		t.append()
		added++
	}
	return added
}

func (t *Track) append() *Segment {
	index := len(t.segments)
	length := t.cfg.SegmentLength
	start := float64(index)*length - length/2

	seg := &Segment{
		Index:     index,
		StartY:    start,
		EndY:      start + length,
		CenterX:   0,
		CreatedAt: t.now(),
	}

	seg.Ground = t.builder.AddGround(physics.Box{
		Center: mgl64.Vec3{seg.CenterX, start + length/2, seg.Elevation - t.cfg.Thickness/2},
		Half:   mgl64.Vec3{t.cfg.HalfWidth, length / 2, t.cfg.Thickness / 2},
	})

	// the spawn segment stays clear
	if index > 0 && t.rng.Float64() < t.cfg.ObstacleChance {
		seg.Obstacles = append(seg.Obstacles, t.placeObstacle(seg))
	}

	t.segments = append(t.segments, seg)
	return seg
}

func (t *Track) placeObstacle(seg *Segment) *Obstacle {
	w := t.rng.Float64()*2 + 1
	h := t.rng.Float64()*3 + 1
	d := t.rng.Float64()*2 + 1
	x := seg.CenterX + (t.rng.Float64()*2-1)*t.cfg.ObstacleSpread
	y := seg.StartY + t.rng.Float64()*seg.Length()

	box := physics.Box{
		Center: mgl64.Vec3{x, y, seg.Elevation + h/2},
		Half:   mgl64.Vec3{w / 2, d / 2, h / 2},
	}
	return &Obstacle{
		Segment: seg.Index,
		Box:     box,
		Body:    t.builder.AddStatic(physics.KindObstacle, box),
	}
}

// AddObstacle places an obstacle at a fixed spot on the segment under it.
func (t *Track) AddObstacle(box physics.Box) *Obstacle {
	seg := t.SegmentAt(box.Center.Y())
	o := &Obstacle{
		Segment: -1,
		Box:     box,
		Body:    t.builder.AddStatic(physics.KindObstacle, box),
	}
	if seg != nil {
		o.Segment = seg.Index
		seg.Obstacles = append(seg.Obstacles, o)
	}
	return o
}

// SegmentAt returns the segment containing y, or nil when y is off the track.
func (t *Track) SegmentAt(y float64) *Segment {
	if len(t.segments) == 0 {
		return nil
	}
	first := t.segments[0]
	i := int((y - first.StartY) / t.cfg.SegmentLength)
	if y < first.StartY || i >= len(t.segments) {
		return nil
	}
	return t.segments[i]
}

// LaneAt returns the containment lane for y. Off the track it uses the nearest segment.
func (t *Track) LaneAt(y float64) vehicle.Lane {
	centre := 0.0
	if seg := t.SegmentAt(y); seg != nil {
		centre = seg.CenterX
	} else if n := len(t.segments); n > 0 {
		centre = t.segments[n-1].CenterX
	}
	return vehicle.Lane{
		CenterX:   centre,
		HalfWidth: t.cfg.HalfWidth,
		SoftLimit: t.cfg.SoftLimit,
		HardLimit: t.cfg.HardLimit,
		Stiffness: t.cfg.CenteringStiffness,
	}
}

// Segments returns every generated segment in order.
func (t *Track) Segments() []*Segment { return t.segments }

// Len returns the number of generated segments.
func (t *Track) Len() int { return len(t.segments) }

// End returns the Y where the last segment ends.
func (t *Track) End() float64 {
	if len(t.segments) == 0 {
		return -t.cfg.SegmentLength / 2
	}
	return t.segments[len(t.segments)-1].EndY
}

// Obstacles returns every obstacle on the track.
func (t *Track) Obstacles() []*Obstacle {
	var out []*Obstacle
	for _, s := range t.segments {
		out = append(out, s.Obstacles...)
	}
	return out
}

// ObstaclesNear returns obstacles on the segments within radius of y.
func (t *Track) ObstaclesNear(y, radius float64) []*Obstacle {
	var out []*Obstacle
	for _, s := range t.segments {
		if s.EndY < y-radius || s.StartY > y+radius {
			continue
		}
		out = append(out, s.Obstacles...)
	}
	return out
}
