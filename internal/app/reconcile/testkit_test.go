package reconcile

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"
)

var (
	testGame   = game.MustParseAddress("Vote111111111111111111111111111111111111111")
	testPlayer = game.MustParseAddress("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	testNow    = time.Unix(1_700_000_000, 0)
)

type fakeReader struct {
	mu      sync.Mutex
	account game.Account
	balance uint64
	err     error
	gate    chan struct{}
	calls   atomic.Int32
}

func (r *fakeReader) set(acc game.Account, balance uint64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.account = acc
	r.balance = balance
	r.err = nil
}

func (r *fakeReader) fail(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.err = err
}

func (r *fakeReader) GetAccountData(ctx context.Context, _ game.Address) ([]byte, error) {
	r.calls.Add(1)
	if r.gate != nil {
		select {
		case <-r.gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return nil, r.err
	}
	return game.EncodeAccount(r.account), nil
}

func (r *fakeReader) GetBalance(_ context.Context, _ game.Address) (uint64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return 0, r.err
	}
	return r.balance, nil
}

type fakeEvents struct {
	mu     sync.Mutex
	events []game.Event
}

func (f *fakeEvents) Append(_ context.Context, events []game.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, events...)
	return nil
}

func (f *fakeEvents) List(_ context.Context, filter ports.EventFilter) ([]game.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []game.Event{}
	for _, e := range f.events {
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
		if filter.Contains(e.OccurredAt) {
			out = append(out, e)
		}
	}
	return out, nil
}

func (f *fakeEvents) types() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, e.Type)
	}
	return out
}

type countingMetrics struct {
	ok, failed, stale atomic.Int32
}

func (m *countingMetrics) RecordFetch(ok bool) {
	if ok {
		m.ok.Add(1)
		return
	}
	m.failed.Add(1)
}

func (m *countingMetrics) RecordStaleDrop() {
	m.stale.Add(1)
}

type fakeWatcher struct {
	mu    sync.Mutex
	subs  []chan struct{}
	err   error
	calls atomic.Int32
}

func (w *fakeWatcher) Watch(_ context.Context, _ game.Address) (<-chan struct{}, error) {
	w.calls.Add(1)
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	ch := make(chan struct{}, 1)
	w.subs = append(w.subs, ch)
	return ch, nil
}

func (w *fakeWatcher) notify() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.subs) == 0 {
		return
	}
	select {
	case w.subs[len(w.subs)-1] <- struct{}{}:
	default:
	}
}

func (w *fakeWatcher) drop() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.subs) == 0 {
		return
	}
	close(w.subs[len(w.subs)-1])
	w.subs = w.subs[:len(w.subs)-1]
}

func fixedNow() time.Time { return testNow }

func waitFor(cond func() bool) bool {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return true
		}
		time.Sleep(5 * time.Millisecond)
	}
	return cond()
}
