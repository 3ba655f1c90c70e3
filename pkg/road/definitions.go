package road

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/golangdaddy/turbotrails/pkg/physics"
)

// Segment is one straight stretch of track.
type Segment struct {
	Index     int
	StartY    float64
	EndY      float64
	CenterX   float64
	Curve     float64 // always 0: the track is straight
	Elevation float64 // always 0: the track is flat
	Ground    *physics.Ground
	Obstacles []*Obstacle
	CreatedAt time.Time
}

// Length returns the segment length along Y.
func (s *Segment) Length() float64 { return s.EndY - s.StartY }

// Contains reports whether y falls inside the segment.
func (s *Segment) Contains(y float64) bool {
	return y >= s.StartY && y < s.EndY
}

// Obstacle is a static box sitting on a segment.
type Obstacle struct {
	Segment int
	Box     physics.Box
	Body    *physics.Body
}

// Position returns the obstacle centre.
func (o *Obstacle) Position() mgl64.Vec3 { return o.Box.Center }
