package ports

import (
	"context"
	"time"

	"bossbounty/internal/domain/game"
)

type EventRepository interface {
	Append(ctx context.Context, events []game.Event) error
	List(ctx context.Context, filter EventFilter) ([]game.Event, error)
}

// EventFilter selects journal entries. The window is applied before Limit.
// A zero From or Until leaves that side open; Until is exclusive.
type EventFilter struct {
	Limit int
	From  time.Time
	Until time.Time
}

func (f EventFilter) Contains(at time.Time) bool {
	if !f.From.IsZero() && at.Before(f.From) {
		return false
	}
	if !f.Until.IsZero() && !at.Before(f.Until) {
		return false
	}
	return true
}
