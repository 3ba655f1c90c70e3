package models

import (
	"encoding/json"
	"io"
	"math"
	"time"
)

// SessionStats is the live scoreboard pushed to the stats sink.
type SessionStats struct {
	Speed        float64 `json:"speed"`
	Distance     float64 `json:"distance"`
	Score        int     `json:"score"`
	Lives        int     `json:"lives"`
	NitroCount   int     `json:"nitroCount"`
	TokensEarned int     `json:"tokensEarned"`
	Paused       bool    `json:"paused"`
	Ragdoll      bool    `json:"ragdoll"`
	Terminated   bool    `json:"terminated"`
}

// SessionEnd is emitted once when the last life is lost.
type SessionEnd struct {
	SessionID        string    `json:"sessionId"`
	Profile          string    `json:"profile"`
	Score            int       `json:"score"`
	DistanceTraveled float64   `json:"distanceTraveled"`
	EndedAt          time.Time `json:"endedAt"`
}

// DistanceKm returns the distance in kilometres rounded to two decimals.
func (e SessionEnd) DistanceKm() float64 {
	return math.Round(e.DistanceTraveled/10) / 100
}

// WriteJSON writes the record as indented JSON.
func (e SessionEnd) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(struct {
		SessionEnd
		DistanceKm float64 `json:"distanceKm"`
	}{e, e.DistanceKm()})
}

// Score converts a distance into points.
func Score(distance, distancePerPoint float64) int {
	if distancePerPoint <= 0 || distance <= 0 {
		return 0
	}
	return int(math.Floor(distance / distancePerPoint))
}
