package action

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/app/reconcile"
	"bossbounty/internal/domain/game"

	"github.com/cloudwego/hertz/pkg/common/hlog"
)

var (
	ErrActionInProgress = errors.New("action already in progress")
	ErrBossDefeated     = errors.New("boss is down, claim the bounty instead")
	ErrStateUnknown     = errors.New("game state not loaded yet")
)

const (
	defaultReconcileDelay   = time.Second
	defaultClaimSettleDelay = 2 * time.Second
	defaultClaimRetryDelay  = 1500 * time.Millisecond
)

type Reconciler interface {
	Reconcile(ctx context.Context) error
}

// UseCase dispatches the two player actions. Each action is guarded by its
// own in-flight flag; a call made while the same action is pending returns
// ErrActionInProgress without touching the chain.
type UseCase struct {
	Program          ports.ProgramClient
	Signer           ports.Signer
	Store            *reconcile.Store
	Reconciler       Reconciler
	Scheduler        ports.Scheduler
	Events           ports.EventRepository
	Metrics          ports.ActionMetrics
	Notices          *NoticeBoard
	Now              func() time.Time
	Sleep            func(ctx context.Context, d time.Duration) error
	ReconcileDelay   time.Duration
	ClaimSettleDelay time.Duration
	ClaimRetryDelay  time.Duration

	smashing atomic.Bool
	claiming atomic.Bool
}

func (u *UseCase) Pending() (smashing, claiming bool) {
	return u.smashing.Load(), u.claiming.Load()
}

func (u *UseCase) Smash(ctx context.Context) (Response, error) {
	if !u.smashing.CompareAndSwap(false, true) {
		return Response{}, ErrActionInProgress
	}
	defer u.smashing.Store(false)

	if state := u.Store.Current(); state.Known && state.View.IsDead {
		return Response{}, ErrBossDefeated
	}
	caller, err := u.identity(ctx)
	if err != nil {
		u.notify(game.NoticeError, "connect a wallet to smash")
		return Response{}, err
	}

	sig, err := u.Program.Feed(ctx, caller)
	if err != nil {
		u.rejected(ctx, game.ActionSmash, game.EventSmashRejected, caller, err)
		return Response{}, fmt.Errorf("feed: %w", err)
	}

	u.Store.ApplyOptimisticFeed(caller, u.now())
	u.succeeded(ctx, game.ActionSmash, game.EventSmashSubmitted, caller, sig, "SMASH!")
	u.scheduleReconcile(delayOr(u.ReconcileDelay, defaultReconcileDelay))
	return Response{Kind: game.ActionSmash, Caller: caller.String(), Signature: sig, Attempts: 1}, nil
}

func (u *UseCase) Claim(ctx context.Context) (Response, error) {
	if !u.claiming.CompareAndSwap(false, true) {
		return Response{}, ErrActionInProgress
	}
	defer u.claiming.Store(false)

	state := u.Store.Current()
	if !state.Known {
		return Response{}, ErrStateUnknown
	}
	if !state.View.IsDead {
		return Response{}, fmt.Errorf("%w: %s left", ports.ErrRoundStillActive, state.View.TimeLabel())
	}
	caller, err := u.identity(ctx)
	if err != nil {
		u.notify(game.NoticeError, "connect a wallet to claim")
		return Response{}, err
	}
	winner := state.Snapshot.LastFeeder

	attempts := 1
	sig, err := u.Program.ClaimReward(ctx, caller, winner)
	if errors.Is(err, ports.ErrRoundStillActive) {
		// local and chain clocks disagree near expiry; the chain gets one more chance
		hlog.CtxInfof(ctx, "claim rejected as still active, retrying once: %v", err)
		u.record(ctx, game.ActionEvent(game.EventClaimRetried, caller, "", reasonOf(err), u.now()))
		if u.Metrics != nil {
			u.Metrics.RecordRetry(game.ActionClaim)
		}
		if serr := u.sleep(ctx, delayOr(u.ClaimRetryDelay, defaultClaimRetryDelay)); serr != nil {
			err = serr
		} else {
			attempts++
			sig, err = u.Program.ClaimReward(ctx, caller, winner)
		}
	}
	if err != nil {
		u.rejected(ctx, game.ActionClaim, game.EventClaimRejected, caller, err)
		return Response{Kind: game.ActionClaim, Caller: caller.String(), Attempts: attempts}, fmt.Errorf("claim reward: %w", err)
	}

	u.succeeded(ctx, game.ActionClaim, game.EventClaimSubmitted, caller, sig, "bounty claimed!")
	u.scheduleReconcile(delayOr(u.ClaimSettleDelay, defaultClaimSettleDelay))
	return Response{Kind: game.ActionClaim, Caller: caller.String(), Signature: sig, Attempts: attempts}, nil
}

func (u *UseCase) identity(ctx context.Context) (game.Address, error) {
	if id, ok := u.Signer.Identity(); ok {
		return id, nil
	}
	id, err := u.Signer.Connect(ctx)
	if err != nil {
		if errors.Is(err, ports.ErrSignerUnavailable) {
			return game.Address{}, err
		}
		return game.Address{}, fmt.Errorf("%w: %v", ports.ErrSignerUnavailable, err)
	}
	return id, nil
}

func (u *UseCase) succeeded(ctx context.Context, kind game.ActionKind, eventType string, caller game.Address, sig, message string) {
	hlog.CtxInfof(ctx, "%s confirmed caller=%s sig=%s", kind, caller, sig)
	if u.Metrics != nil {
		u.Metrics.RecordSuccess(kind)
	}
	u.record(ctx, game.ActionEvent(eventType, caller, sig, "", u.now()))
	u.notify(game.NoticeSuccess, message)
}

// rejected surfaces the failure and forces a refetch so no optimistic
// state outlives a rejected call.
func (u *UseCase) rejected(ctx context.Context, kind game.ActionKind, eventType string, caller game.Address, err error) {
	reason := reasonOf(err)
	hlog.CtxWarnf(ctx, "%s rejected caller=%s: %v", kind, caller, err)
	if u.Metrics != nil {
		u.Metrics.RecordRejected(kind)
	}
	u.record(ctx, game.ActionEvent(eventType, caller, "", reason, u.now()))
	u.notify(game.NoticeError, fmt.Sprintf("%s failed: %s", kind, reason))
	u.scheduleReconcile(0)
}

func (u *UseCase) scheduleReconcile(d time.Duration) {
	u.Scheduler.After(d, func(ctx context.Context) {
		if err := u.Reconciler.Reconcile(ctx); err != nil {
			hlog.CtxWarnf(ctx, "reconcile after action: %v", err)
		}
	})
}

func (u *UseCase) record(ctx context.Context, evt game.Event) {
	if u.Events == nil {
		return
	}
	if err := u.Events.Append(ctx, []game.Event{evt}); err != nil {
		hlog.CtxWarnf(ctx, "append action event: %v", err)
	}
}

func (u *UseCase) notify(level game.NoticeLevel, message string) {
	if u.Notices != nil {
		u.Notices.Post(level, message, u.now())
	}
}

func (u *UseCase) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u *UseCase) sleep(ctx context.Context, d time.Duration) error {
	if u.Sleep != nil {
		return u.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func reasonOf(err error) string {
	var perr *ports.ProgramError
	if errors.As(err, &perr) {
		return perr.Reason()
	}
	return err.Error()
}

func delayOr(d, fallback time.Duration) time.Duration {
	if d > 0 {
		return d
	}
	return fallback
}
