package session

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/golangdaddy/turbotrails/pkg/config"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeadless_ReturnsSummaryWhenFramesStop(t *testing.T) {
	frames := make(chan time.Time, 600)
	for i := 0; i < cap(frames); i++ {
		frames <- time.Time{}
	}
	close(frames)

	end, err := Headless(context.Background(), Config{
		Settings: config.Defaults(),
		Logger:   zerolog.Nop(),
		Rand:     rand.New(rand.NewSource(3)),
	}, frames)
	require.NoError(t, err)

	assert.NotEmpty(t, end.SessionID)
	assert.Equal(t, "sport", end.Profile)
	assert.Greater(t, end.DistanceTraveled, 0.0)
	assert.Equal(t, int(end.DistanceTraveled/100), end.Score)
}

func TestHeadless_StopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	end, err := Headless(ctx, Config{Settings: config.Defaults(), Logger: zerolog.Nop()}, make(chan time.Time))
	require.NoError(t, err)
	assert.Zero(t, end.DistanceTraveled)
}

func TestHeadless_BadSettings(t *testing.T) {
	settings := config.Defaults()
	settings.Session.TimeStep = 0

	_, err := Headless(context.Background(), Config{Settings: settings, Logger: zerolog.Nop()}, nil)
	assert.Error(t, err)
}
