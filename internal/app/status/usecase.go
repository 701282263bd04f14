package status

import (
	"context"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/app/reconcile"
	"bossbounty/internal/domain/game"
)

// staleAfter marks a state the HUD should flag as possibly out of date.
const staleAfter = 15 * time.Second

type StateSource interface {
	Current() reconcile.State
}

type ActionActivity interface {
	Pending() (smashing, claiming bool)
}

type NoticeSource interface {
	Recent() []game.Notice
}

type UseCase struct {
	State   StateSource
	Signer  ports.Signer
	Actions ActionActivity
	Notices NoticeSource
	Now     func() time.Time
}

func (u UseCase) Execute(_ context.Context, _ Request) (Response, error) {
	nowFn := u.Now
	if nowFn == nil {
		nowFn = time.Now
	}
	state := u.State.Current()
	in := game.HUDInput{
		Known:    state.Known,
		Snapshot: state.Snapshot,
		View:     state.View,
	}
	if u.Signer != nil {
		if id, ok := u.Signer.Identity(); ok {
			in.Identity = &id
		}
	}
	if u.Actions != nil {
		in.Smashing, in.Claiming = u.Actions.Pending()
	}
	if u.Notices != nil {
		in.Notices = u.Notices.Recent()
	}

	resp := Response{HUD: game.BuildHUD(in), Tag: state.Tag}
	if state.Known {
		resp.FetchedAt = state.FetchedAt.Unix()
		resp.Stale = nowFn().Sub(state.FetchedAt) > staleAfter
	}
	return resp, nil
}
