package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_WithValidConfigFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	cfg := `{
		"logLevel": "debug",
		"session": { "startProfile": "hyper" },
		"vehicle": { "nitroCooldown": "2s", "nitroCharges": 5 },
		"profiles": { "sport": { "maxSpeedKmh": 240 } }
	}`
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(cfg), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "debug", viper.GetString("logLevel"))

	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, "hyper", s.Session.StartProfile)
	assert.Equal(t, 2*time.Second, s.Vehicle.NitroCooldown)
	assert.Equal(t, 5, s.Vehicle.NitroCharges)

	sport, err := s.Profiles.Lookup("sport")
	require.NoError(t, err)
	assert.Equal(t, 240.0, sport.MaxSpeedKmh)
	assert.Equal(t, 2200.0, sport.BaseThrust, "untouched profile fields keep their defaults")
	assert.Equal(t, "sport", sport.Key)
}

func TestLoad_DefaultValues(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{}`), 0644))

	err := Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "info", viper.GetString("logLevel"))
	assert.Equal(t, "sport", viper.GetString("session.startProfile"))
	assert.Equal(t, 100.0, viper.GetFloat64("track.segmentLength"))
	assert.Equal(t, 10, viper.GetInt("track.initialSegments"))
	assert.Equal(t, 500.0, viper.GetFloat64("track.lookahead"))
	assert.Equal(t, 0.4, viper.GetFloat64("track.obstacleChance"))
	assert.Equal(t, 80.0, viper.GetFloat64("crash.speedThresholdKmh"))
	assert.Equal(t, 3, viper.GetInt("crash.lives"))
	assert.Equal(t, 3*time.Second, viper.GetDuration("crash.respawnDelay"))
	assert.Equal(t, 800*time.Millisecond, viper.GetDuration("crash.respawnDelayNoRider"))
	assert.Equal(t, 1200*time.Millisecond, viper.GetDuration("vehicle.nitroCooldown"))
	assert.Equal(t, -30.0, viper.GetFloat64("physics.gravity"))

	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, Defaults().Vehicle, s.Vehicle)
	assert.Equal(t, Defaults().Track, s.Track)
	assert.Equal(t, Defaults().Crash, s.Crash)
	assert.Len(t, s.Profiles, 4)
}

func TestLoad_MissingFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	err := Load(t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
	assert.True(t, errors.Is(err, ErrNoConfigFile))

	// defaults are still in place
	s, err := Current()
	require.NoError(t, err)
	assert.Equal(t, "sport", s.Session.StartProfile)
}

func TestLoad_MalformedFile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"logLevel": `), 0644))

	err := Load(dir)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrNoConfigFile))
}

func TestCurrent_RejectsUnknownStartProfile(t *testing.T) {
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, FileName), []byte(`{"session": {"startProfile": "rocket"}}`), 0644))
	require.NoError(t, Load(dir))

	_, err := Current()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "startProfile")
}

func TestDefaults_Validate(t *testing.T) {
	assert.NoError(t, Defaults().Validate())

	s := Defaults()
	s.Crash.Lives = 0
	assert.Error(t, s.Validate())

	s = Defaults()
	s.Session.TimeStep = 0
	assert.Error(t, s.Validate())
}
