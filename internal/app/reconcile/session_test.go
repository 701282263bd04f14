package reconcile

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"bossbounty/internal/domain/game"
)

func TestSessionRun_KeepsStateFreshAndTearsDown(t *testing.T) {
	r := &fakeReader{}
	r.set(game.Account{TimeToLive: 60}, 10)
	w := &fakeWatcher{}
	s := NewSession(Config{
		Game:             testGame,
		Reader:           r,
		Watcher:          w,
		PollInterval:     20 * time.Millisecond,
		TickInterval:     time.Hour,
		ResubscribeDelay: 10 * time.Millisecond,
		Now:              fixedNow,
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	if !waitFor(func() bool { return s.Store.Current().Known }) {
		t.Fatalf("initial fetch never applied")
	}
	if !waitFor(func() bool { return r.calls.Load() >= 3 }) {
		t.Fatalf("poller did not keep fetching")
	}

	r.set(game.Account{LastFeeder: testPlayer, LastFedTimestamp: testNow.Unix() - 5, TimeToLive: 60}, 10)
	w.notify()
	if !waitFor(func() bool { return s.Store.Current().Phase() == game.PhaseActive }) {
		t.Fatalf("state never moved to ACTIVE")
	}

	var late atomic.Bool
	s.Scheduler.After(time.Hour, func(context.Context) { late.Store(true) })

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run: %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("run did not return after cancellation")
	}

	s.Scheduler.After(0, func(context.Context) { late.Store(true) })
	time.Sleep(20 * time.Millisecond)
	if late.Load() {
		t.Fatalf("scheduled task survived session teardown")
	}
}

func TestSessionRun_TickerCountsDown(t *testing.T) {
	r := &fakeReader{}
	r.set(game.Account{LastFedTimestamp: testNow.Unix() - 10, TimeToLive: 60}, 0)
	s := NewSession(Config{
		Game:         testGame,
		Reader:       r,
		PollInterval: time.Hour,
		TickInterval: 5 * time.Millisecond,
		Now:          fixedNow,
	})
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = s.Run(ctx) }()

	if !waitFor(func() bool {
		st := s.Store.Current()
		return st.Known && st.View.TimeLeftSeconds < 50
	}) {
		t.Fatalf("ticker did not decrement the countdown")
	}
}
