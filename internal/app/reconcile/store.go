package reconcile

import (
	"sync"
	"time"

	"bossbounty/internal/domain/game"
)

// State is the single slot written by fetches, the ticker and optimistic
// action updates.
type State struct {
	Known      bool          `json:"known"`
	Tag        uint64        `json:"tag"`
	Snapshot   game.Snapshot `json:"snapshot"`
	View       game.View     `json:"view"`
	FetchedAt  time.Time     `json:"fetched_at"`
	Optimistic bool          `json:"optimistic"`
}

func (s State) Phase() game.Phase {
	if !s.Known {
		return game.PhaseLoading
	}
	return s.View.Phase()
}

type Observer func(prev, next State)

// Store applies tagged writes: a write lands only if its tag is newer than
// the one already applied. Tags are handed out at issue time, so a slow fetch
// cannot overwrite a fresher one.
type Store struct {
	mu        sync.Mutex
	issued    uint64
	state     State
	nextObsID int
	observers map[int]Observer
}

func NewStore() *Store {
	return &Store{observers: map[int]Observer{}}
}

func (s *Store) Issue() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued++
	return s.issued
}

func (s *Store) Current() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

func (s *Store) Apply(tag uint64, snap game.Snapshot, now time.Time) (State, State, bool) {
	s.mu.Lock()
	prev := s.state
	if s.state.Known && tag <= s.state.Tag {
		s.mu.Unlock()
		return prev, prev, false
	}
	s.state = State{
		Known:     true,
		Tag:       tag,
		Snapshot:  snap,
		View:      game.Derive(snap, now),
		FetchedAt: now,
	}
	next := s.state
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, prev, next)
	return prev, next, true
}

// ApplyOptimisticFeed refills the timer for caller right after a feed call
// succeeded. It takes a fresh tag so fetches issued before the feed are
// treated as stale.
func (s *Store) ApplyOptimisticFeed(caller game.Address, now time.Time) (State, bool) {
	s.mu.Lock()
	if !s.state.Known {
		s.mu.Unlock()
		return State{}, false
	}
	prev := s.state
	s.issued++
	snap := prev.Snapshot
	snap.LastFeeder = caller
	snap.LastFedTimestamp = now.Unix()
	s.state = State{
		Known:      true,
		Tag:        s.issued,
		Snapshot:   snap,
		View:       game.Derive(snap, now),
		FetchedAt:  prev.FetchedAt,
		Optimistic: true,
	}
	next := s.state
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, prev, next)
	return next, true
}

// Tick is the one-second display decrement between fetches.
func (s *Store) Tick() (State, bool) {
	s.mu.Lock()
	if !s.state.Known || s.state.View.IsWaiting || s.state.View.TimeLeftSeconds == 0 {
		cur := s.state
		s.mu.Unlock()
		return cur, false
	}
	prev := s.state
	s.state.View = prev.View.Decrement(prev.Snapshot.TimeToLive)
	next := s.state
	obs := s.observersLocked()
	s.mu.Unlock()

	notify(obs, prev, next)
	return next, true
}

func (s *Store) Subscribe(fn Observer) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextObsID
	s.nextObsID++
	s.observers[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.observers, id)
	}
}

func (s *Store) observersLocked() []Observer {
	if len(s.observers) == 0 {
		return nil
	}
	out := make([]Observer, 0, len(s.observers))
	for _, fn := range s.observers {
		out = append(out, fn)
	}
	return out
}

func notify(obs []Observer, prev, next State) {
	for _, fn := range obs {
		fn(prev, next)
	}
}
