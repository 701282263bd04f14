package reconcile

import (
	"context"
	"fmt"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/singleflight"
)

const refreshKey = "refresh"

type Refresher interface {
	Refresh(ctx context.Context) error
}

// Fetcher pulls the game account and its balance and applies the result to
// the Store. Concurrent Refresh calls share one in-flight fetch.
type Fetcher struct {
	Reader  ports.AccountReader
	Game    game.Address
	Store   *Store
	Events  ports.EventRepository
	Metrics ports.SyncMetrics
	Now     func() time.Time

	group singleflight.Group
}

func (f *Fetcher) Refresh(ctx context.Context) error {
	ch := f.group.DoChan(refreshKey, func() (any, error) {
		return nil, f.fetch(ctx)
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Reconcile starts a new fetch instead of joining one already in flight, so
// the applied result is issued after every write made before the call.
func (f *Fetcher) Reconcile(ctx context.Context) error {
	f.group.Forget(refreshKey)
	return f.Refresh(ctx)
}

func (f *Fetcher) fetch(ctx context.Context) error {
	tag := f.Store.Issue()

	data, err := f.Reader.GetAccountData(ctx, f.Game)
	if err != nil {
		return f.fail(ctx, fmt.Errorf("read game account: %w", err))
	}
	acc, err := game.DecodeAccount(data)
	if err != nil {
		return f.fail(ctx, err)
	}
	balance, err := f.Reader.GetBalance(ctx, f.Game)
	if err != nil {
		return f.fail(ctx, fmt.Errorf("read game balance: %w", err))
	}

	now := f.now()
	prev, next, applied := f.Store.Apply(tag, game.NewSnapshot(acc, balance), now)
	if !applied {
		hlog.CtxDebugf(ctx, "dropping stale fetch tag=%d applied=%d", tag, prev.Tag)
		if f.Metrics != nil {
			f.Metrics.RecordStaleDrop()
		}
		return nil
	}
	if f.Metrics != nil {
		f.Metrics.RecordFetch(true)
	}
	f.journal(ctx, prev, next, now)
	return nil
}

func (f *Fetcher) fail(ctx context.Context, err error) error {
	hlog.CtxWarnf(ctx, "game state fetch failed, keeping previous state: %v", err)
	if f.Metrics != nil {
		f.Metrics.RecordFetch(false)
	}
	return err
}

func (f *Fetcher) journal(ctx context.Context, prev, next State, now time.Time) {
	events := make([]game.Event, 0, 2)
	if !prev.Known || prev.Snapshot != next.Snapshot {
		events = append(events, game.SnapshotAppliedEvent(next.Snapshot, now))
	}
	if from, to := prev.Phase(), next.Phase(); from != to {
		if !game.ValidTransition(from, to) {
			hlog.CtxInfof(ctx, "phase jumped %s -> %s between fetches", from, to)
		}
		events = append(events, game.PhaseChangedEvent(from, to, now))
	}
	if len(events) == 0 || f.Events == nil {
		return
	}
	if err := f.Events.Append(ctx, events); err != nil {
		hlog.CtxWarnf(ctx, "append game events: %v", err)
	}
}

func (f *Fetcher) now() time.Time {
	if f.Now != nil {
		return f.Now()
	}
	return time.Now()
}
