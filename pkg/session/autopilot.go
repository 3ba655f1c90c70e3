package session

import (
	"math"

	"github.com/golangdaddy/turbotrails/pkg/models"
)

// Autopilot is an InputSource that rides a session on its own: full throttle,
// swerving round obstacles ahead and firing nitro whenever it can.
type Autopilot struct {
	Session *Session
	// Sight is how far ahead obstacles are considered.
	Sight float64
	// Margin is the clearance kept beside an obstacle.
	Margin float64

	polls int
}

// NewAutopilot creates an autopilot for s.
func NewAutopilot(s *Session) *Autopilot {
	return &Autopilot{Session: s, Sight: 60, Margin: 1.5}
}

// Poll decides this tick's controls.
func (a *Autopilot) Poll() models.Input {
	a.polls++
	in := models.Input{Accelerate: true}
	if a.Session == nil || a.Session.Track() == nil {
		return in
	}

	pos := a.Session.Vehicle().Position
	half := a.Session.VehicleBox().Half

	for _, o := range a.Session.Track().ObstaclesNear(pos.Y()+a.Sight/2, a.Sight/2) {
		c := o.Position()
		if c.Y()+o.Box.Half.Y() < pos.Y() || c.Y()-pos.Y() > a.Sight {
			continue
		}
		dx := pos.X() - c.X()
		if math.Abs(dx) > o.Box.Half.X()+half.X()+a.Margin {
			continue
		}
		// pass on whichever side we are already leaning to
		if dx >= 0 {
			in.Right = true
		} else {
			in.Left = true
		}
		return in
	}

	// a fresh press every half second keeps the rising edge coming
	in.Nitro = a.polls%30 == 0
	return in
}
