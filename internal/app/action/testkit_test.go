package action

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/app/reconcile"
	"bossbounty/internal/domain/game"
)

var (
	testPlayer = game.MustParseAddress("4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T")
	testRival  = game.MustParseAddress("SysvarC1ock11111111111111111111111111111111")
	testNow    = time.Unix(1_700_000_000, 0)
)

type stubProgram struct {
	mu         sync.Mutex
	feedErrs   []error
	claimErrs  []error
	feedGate   chan struct{}
	feedCalls  atomic.Int32
	claimCalls atomic.Int32
	winners    []game.Address
}

func (p *stubProgram) Feed(ctx context.Context, _ game.Address) (string, error) {
	p.feedCalls.Add(1)
	if p.feedGate != nil {
		select {
		case <-p.feedGate:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if len(p.feedErrs) > 0 {
		err := p.feedErrs[0]
		p.feedErrs = p.feedErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "feed-sig", nil
}

func (p *stubProgram) ClaimReward(_ context.Context, _ game.Address, winner game.Address) (string, error) {
	p.claimCalls.Add(1)
	p.mu.Lock()
	defer p.mu.Unlock()
	p.winners = append(p.winners, winner)
	if len(p.claimErrs) > 0 {
		err := p.claimErrs[0]
		p.claimErrs = p.claimErrs[1:]
		if err != nil {
			return "", err
		}
	}
	return "claim-sig", nil
}

type stubSigner struct {
	id         game.Address
	connected  bool
	connectErr error
	connects   int
}

func (s *stubSigner) Identity() (game.Address, bool) {
	return s.id, s.connected
}

func (s *stubSigner) Connect(context.Context) (game.Address, error) {
	s.connects++
	if s.connectErr != nil {
		return game.Address{}, s.connectErr
	}
	s.connected = true
	return s.id, nil
}

func (s *stubSigner) Sign(message []byte) ([]byte, error) {
	return make([]byte, 64), nil
}

type scheduledTask struct {
	delay time.Duration
	fn    func(ctx context.Context)
}

type manualScheduler struct {
	mu    sync.Mutex
	tasks []scheduledTask
}

func (s *manualScheduler) After(d time.Duration, fn func(ctx context.Context)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tasks = append(s.tasks, scheduledTask{delay: d, fn: fn})
}

func (s *manualScheduler) runAll() {
	s.mu.Lock()
	tasks := s.tasks
	s.tasks = nil
	s.mu.Unlock()
	for _, task := range tasks {
		task.fn(context.Background())
	}
}

func (s *manualScheduler) delays() []time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]time.Duration, 0, len(s.tasks))
	for _, task := range s.tasks {
		out = append(out, task.delay)
	}
	return out
}

// chainReconciler applies whatever the fake chain holds when asked.
type chainReconciler struct {
	store *reconcile.Store
	chain game.Snapshot
	calls int
}

func (r *chainReconciler) Reconcile(context.Context) error {
	r.calls++
	r.store.Apply(r.store.Issue(), r.chain, testNow)
	return nil
}

type stubMetrics struct {
	success, rejected, retry map[game.ActionKind]int
}

func newStubMetrics() *stubMetrics {
	return &stubMetrics{
		success:  map[game.ActionKind]int{},
		rejected: map[game.ActionKind]int{},
		retry:    map[game.ActionKind]int{},
	}
}

func (m *stubMetrics) RecordSuccess(kind game.ActionKind) { m.success[kind]++ }
func (m *stubMetrics) RecordRejected(kind game.ActionKind) { m.rejected[kind]++ }
func (m *stubMetrics) RecordRetry(kind game.ActionKind) { m.retry[kind]++ }

type stubEvents struct {
	events []game.Event
}

func (e *stubEvents) Append(_ context.Context, events []game.Event) error {
	e.events = append(e.events, events...)
	return nil
}

func (e *stubEvents) List(context.Context, ports.EventFilter) ([]game.Event, error) {
	return e.events, nil
}

type fixture struct {
	uc        *UseCase
	program   *stubProgram
	signer    *stubSigner
	scheduler *manualScheduler
	chain     *chainReconciler
	metrics   *stubMetrics
	events    *stubEvents
	sleeps    []time.Duration
}

func newFixture(snap game.Snapshot) *fixture {
	store := reconcile.NewStore()
	store.Apply(store.Issue(), snap, testNow)
	f := &fixture{
		program:   &stubProgram{},
		signer:    &stubSigner{id: testPlayer, connected: true},
		scheduler: &manualScheduler{},
		chain:     &chainReconciler{store: store, chain: snap},
		metrics:   newStubMetrics(),
		events:    &stubEvents{},
	}
	f.uc = &UseCase{
		Program:    f.program,
		Signer:     f.signer,
		Store:      store,
		Reconciler: f.chain,
		Scheduler:  f.scheduler,
		Events:     f.events,
		Metrics:    f.metrics,
		Notices:    NewNoticeBoard(4),
		Now:        func() time.Time { return testNow },
		Sleep: func(_ context.Context, d time.Duration) error {
			f.sleeps = append(f.sleeps, d)
			return nil
		},
	}
	return f
}

func stillActiveErr() error {
	return &ports.ProgramError{Code: 6000, Message: "custom program error: 0x1770", Kind: ports.ErrRoundStillActive}
}
