package reconcile

import (
	"context"
	"time"
)

// runEvery calls fn every interval until ctx is done.
func runEvery(ctx context.Context, interval time.Duration, fn func(ctx context.Context)) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-t.C:
			fn(ctx)
		}
	}
}

func Poll(ctx context.Context, r Refresher, interval time.Duration) error {
	return runEvery(ctx, interval, func(ctx context.Context) {
		_ = r.Refresh(ctx)
	})
}

func Tick(ctx context.Context, s *Store, interval time.Duration) error {
	return runEvery(ctx, interval, func(context.Context) {
		s.Tick()
	})
}
