package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golangdaddy/turbotrails/pkg/models"
)

// Headless rides a session on the autopilot, one tick per frame, until ctx
// ends, the frames stop or the last life is lost. It returns the session-end
// record, or a summary of the run when it was cut short.
func Headless(ctx context.Context, cfg Config, frames <-chan time.Time) (models.SessionEnd, error) {
	var ended *models.SessionEnd
	next := cfg.End
	cfg.End = EndFunc(func(e models.SessionEnd) {
		ended = &e
		if next != nil {
			next.OnSessionEnd(e)
		}
	})

	s, err := New(cfg)
	if err != nil {
		return models.SessionEnd{}, err
	}
	s.input = NewAutopilot(s)

	if err := s.Init(ctx); err != nil {
		return models.SessionEnd{}, fmt.Errorf("failed to start headless session: %w", err)
	}
	defer s.Dispose()

	err = s.Run(ctx, frames)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, context.Canceled) {
		return models.SessionEnd{}, err
	}

	if ended != nil {
		return *ended, nil
	}
	return s.Summary(), nil
}
