package memory

import (
	"context"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"
)

type EventRepo struct {
	store *Store
}

func NewEventRepo(store *Store) EventRepo {
	return EventRepo{store: store}
}

func (r EventRepo) Append(_ context.Context, events []game.Event) error {
	if len(events) == 0 {
		return nil
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	r.store.events = append(r.store.events, events...)
	if over := len(r.store.events) - r.store.capacity; over > 0 {
		r.store.events = append([]game.Event(nil), r.store.events[over:]...)
	}
	return nil
}

// List returns the events inside the filter window, newest first.
func (r EventRepo) List(_ context.Context, filter ports.EventFilter) ([]game.Event, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()
	out := []game.Event{}
	for i := len(r.store.events) - 1; i >= 0; i-- {
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
		if e := r.store.events[i]; filter.Contains(e.OccurredAt) {
			out = append(out, e)
		}
	}
	if len(out) == 0 {
		return nil, ports.ErrNotFound
	}
	return out, nil
}
