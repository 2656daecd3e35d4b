package services

import (
	"context"
	"time"
)

// Clock returns the current time. Tests pin it.
type Clock func() time.Time

// sleepCtx waits for d or until ctx is done, whichever comes first.
// It returns ctx.Err() when the wait was cut short.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
