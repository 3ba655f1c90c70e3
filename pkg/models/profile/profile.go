package profile

import (
	"errors"
	"fmt"
	"math"
	"sort"
)

// ErrUnknownProfile is returned when a profile key is not in the table.
var ErrUnknownProfile = errors.New("unknown vehicle profile")

// Profile is the tuning of one bike: how fast it may go and how hard it pulls.
type Profile struct {
	Key                  string  `json:"key" mapstructure:"-"`
	MaxSpeedKmh          float64 `json:"maxSpeedKmh" mapstructure:"maxSpeedKmh"`
	BaseThrust           float64 `json:"baseThrust" mapstructure:"baseThrust"`
	BoostThrust          float64 `json:"boostThrust" mapstructure:"boostThrust"`
	AccelerationExponent float64 `json:"accelerationExponent" mapstructure:"accelerationExponent"`
}

// Thrust returns the forward drive force at the given speed.
// The boost share fades out as the speed approaches the cap.
func (p Profile) Thrust(speedKmh float64) float64 {
	ratio := 0.0
	if p.MaxSpeedKmh > 0 {
		ratio = 1 - speedKmh/p.MaxSpeedKmh
	}
	if ratio < 0 {
		ratio = 0
	}
	if ratio > 1 {
		ratio = 1
	}
	return p.BaseThrust + p.BoostThrust*math.Pow(ratio, p.AccelerationExponent)
}

// Validate reports whether the profile can drive a vehicle.
func (p Profile) Validate() error {
	if p.MaxSpeedKmh <= 0 {
		return fmt.Errorf("profile %q: max speed must be positive", p.Key)
	}
	if p.BaseThrust < 0 || p.BoostThrust < 0 {
		return fmt.Errorf("profile %q: thrust must not be negative", p.Key)
	}
	if p.AccelerationExponent <= 0 {
		return fmt.Errorf("profile %q: acceleration exponent must be positive", p.Key)
	}
	return nil
}

// Table maps profile keys to profiles.
type Table map[string]Profile

// Defaults returns the built-in profiles.
func Defaults() Table {
	return Table{
		"default": {Key: "default", MaxSpeedKmh: 220, BaseThrust: 2200, BoostThrust: 9000, AccelerationExponent: 1.25},
		"cruiser": {Key: "cruiser", MaxSpeedKmh: 160, BaseThrust: 1200, BoostThrust: 6000, AccelerationExponent: 1.35},
		"sport":   {Key: "sport", MaxSpeedKmh: 220, BaseThrust: 2200, BoostThrust: 9000, AccelerationExponent: 1.25},
		"hyper":   {Key: "hyper", MaxSpeedKmh: 260, BaseThrust: 2800, BoostThrust: 12000, AccelerationExponent: 1.20},
	}
}

// Lookup returns the profile stored under key.
func (t Table) Lookup(key string) (Profile, error) {
	p, ok := t[key]
	if !ok {
		return Profile{}, fmt.Errorf("%w: %q", ErrUnknownProfile, key)
	}
	p.Key = key
	return p, nil
}

// Keys returns the profile keys in a stable order, slowest bike first.
func (t Table) Keys() []string {
	keys := make([]string, 0, len(t))
	for k := range t {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := t[keys[i]], t[keys[j]]
		if a.MaxSpeedKmh != b.MaxSpeedKmh {
			return a.MaxSpeedKmh < b.MaxSpeedKmh
		}
		return keys[i] < keys[j]
	})
	return keys
}
