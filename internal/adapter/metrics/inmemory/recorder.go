package inmemory

import (
	"sync"

	"bossbounty/internal/domain/game"
)

type Snapshot struct {
	FetchTotal     uint64            `json:"fetch_total"`
	FetchFailure   uint64            `json:"fetch_failure"`
	StaleDropped   uint64            `json:"stale_dropped"`
	ActionTotal    uint64            `json:"action_total"`
	ActionSuccess  uint64            `json:"action_success"`
	ActionRejected uint64            `json:"action_rejected"`
	ClaimRetries   uint64            `json:"claim_retries"`
	ByAction       map[string]uint64 `json:"by_action"`
}

type Recorder struct {
	mu           sync.Mutex
	fetchOK      uint64
	fetchFailed  uint64
	staleDropped uint64
	success      uint64
	rejected     uint64
	retries      uint64
	byAction     map[string]uint64
}

func NewRecorder() *Recorder {
	return &Recorder{
		byAction: map[string]uint64{},
	}
}

func (r *Recorder) RecordFetch(ok bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if ok {
		r.fetchOK++
	} else {
		r.fetchFailed++
	}
}

func (r *Recorder) RecordStaleDrop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.staleDropped++
}

func (r *Recorder) RecordSuccess(kind game.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.success++
	r.byAction[string(kind)+"_ok"]++
}

func (r *Recorder) RecordRejected(kind game.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rejected++
	r.byAction[string(kind)+"_rejected"]++
}

func (r *Recorder) RecordRetry(kind game.ActionKind) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if kind == game.ActionClaim {
		r.retries++
	}
	r.byAction[string(kind)+"_retry"]++
}

func (r *Recorder) Snapshot() Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := Snapshot{
		FetchTotal:     r.fetchOK + r.fetchFailed,
		FetchFailure:   r.fetchFailed,
		StaleDropped:   r.staleDropped,
		ActionSuccess:  r.success,
		ActionRejected: r.rejected,
		ActionTotal:    r.success + r.rejected,
		ClaimRetries:   r.retries,
		ByAction:       make(map[string]uint64, len(r.byAction)),
	}
	for k, v := range r.byAction {
		out.ByAction[k] = v
	}
	return out
}

func (r *Recorder) SnapshotAny() any {
	return r.Snapshot()
}
