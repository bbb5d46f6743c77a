package database

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// Startup probes give containers started alongside the databases a short
// window to come up.
const (
	pingAttempts = 5
	pingBackoff  = time.Second
)

// pingWithRetry calls ping until it succeeds, doubling the wait between
// attempts. The last error is returned when every attempt fails.
func pingWithRetry(ctx context.Context, what string, log zerolog.Logger, ping func(context.Context) error) error {
	wait := pingBackoff
	var err error
	for attempt := 1; attempt <= pingAttempts; attempt++ {
		if err = ping(ctx); err == nil {
			return nil
		}
		if attempt == pingAttempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Dur("retry_in", wait).Msgf("%s not reachable yet", what)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait *= 2
	}
	return err
}
