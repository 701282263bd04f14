package reconcile

import (
	"context"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
	"golang.org/x/sync/errgroup"
)

type Config struct {
	Game             game.Address
	Reader           ports.AccountReader
	Watcher          ports.AccountWatcher
	Events           ports.EventRepository
	Metrics          ports.SyncMetrics
	PollInterval     time.Duration
	TickInterval     time.Duration
	ResubscribeDelay time.Duration
	Now              func() time.Time
}

func DefaultConfig() Config {
	return Config{
		PollInterval:     3 * time.Second,
		TickInterval:     time.Second,
		ResubscribeDelay: defaultResubscribeDelay,
		Now:              time.Now,
	}
}

// Session is the client context for one game account: it owns the state
// slot, the fetcher, the background loops and the delayed-task scheduler.
type Session struct {
	cfg       Config
	Store     *Store
	Fetcher   *Fetcher
	Scheduler *TaskScheduler
}

func NewSession(cfg Config) *Session {
	def := DefaultConfig()
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = def.PollInterval
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = def.TickInterval
	}
	if cfg.ResubscribeDelay <= 0 {
		cfg.ResubscribeDelay = def.ResubscribeDelay
	}
	if cfg.Now == nil {
		cfg.Now = def.Now
	}
	store := NewStore()
	return &Session{
		cfg:   cfg,
		Store: store,
		Fetcher: &Fetcher{
			Reader:  cfg.Reader,
			Game:    cfg.Game,
			Store:   store,
			Events:  cfg.Events,
			Metrics: cfg.Metrics,
			Now:     cfg.Now,
		},
		Scheduler: NewTaskScheduler(context.Background()),
	}
}

func (s *Session) Now() time.Time {
	return s.cfg.Now()
}

// Run fetches once, then keeps the state fresh until ctx is done. On return
// every loop has stopped, the subscription is released and pending scheduled
// tasks are cancelled.
func (s *Session) Run(ctx context.Context) error {
	defer s.Scheduler.Close()

	stop := s.Store.Subscribe(func(prev, next State) {
		if from, to := prev.Phase(), next.Phase(); from != to {
			hlog.CtxInfof(ctx, "boss phase %s -> %s game=%s time_left=%ds", from, to, s.cfg.Game, next.View.TimeLeftSeconds)
		}
	})
	defer stop()

	if err := s.Fetcher.Refresh(ctx); err != nil {
		hlog.CtxWarnf(ctx, "initial fetch of %s failed: %v", s.cfg.Game, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return Poll(gctx, s.Fetcher, s.cfg.PollInterval)
	})
	g.Go(func() error {
		return Tick(gctx, s.Store, s.cfg.TickInterval)
	})
	if s.cfg.Watcher != nil {
		g.Go(func() error {
			return Listener{
				Watcher:          s.cfg.Watcher,
				Game:             s.cfg.Game,
				Refresher:        s.Fetcher,
				ResubscribeDelay: s.cfg.ResubscribeDelay,
			}.Run(gctx)
		})
	}
	return g.Wait()
}

func (s *Session) Close() {
	s.Scheduler.Close()
}
