package reconcile

import (
	"context"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

const defaultResubscribeDelay = 5 * time.Second

// Listener turns account change notifications into refreshes. A failed or
// dropped subscription is retried after ResubscribeDelay; the poller keeps
// running in the meantime.
type Listener struct {
	Watcher          ports.AccountWatcher
	Game             game.Address
	Refresher        Refresher
	ResubscribeDelay time.Duration
}

func (l Listener) Run(ctx context.Context) error {
	delay := l.ResubscribeDelay
	if delay <= 0 {
		delay = defaultResubscribeDelay
	}
	for {
		notifications, err := l.Watcher.Watch(ctx, l.Game)
		switch {
		case ctx.Err() != nil:
			return nil
		case err != nil:
			hlog.CtxWarnf(ctx, "account subscription unavailable, relying on polling: %v", err)
		default:
			l.consume(ctx, notifications)
		}

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(delay):
		}
	}
}

func (l Listener) consume(ctx context.Context, notifications <-chan struct{}) {
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-notifications:
			if !ok {
				if ctx.Err() == nil {
					hlog.CtxWarnf(ctx, "account subscription dropped")
				}
				return
			}
			_ = l.Refresher.Refresh(ctx)
		}
	}
}
