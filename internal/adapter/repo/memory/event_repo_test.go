package memory

import (
	"context"
	"errors"
	"testing"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"
)

func evt(typ string, sec int64) game.Event {
	return game.Event{Type: typ, OccurredAt: time.Unix(sec, 0)}
}

func TestEventRepo_ListNewestFirst(t *testing.T) {
	repo := NewEventRepo(NewStore(0))
	ctx := context.Background()
	if _, err := repo.List(ctx, ports.EventFilter{Limit: 10}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on empty journal, got %v", err)
	}
	_ = repo.Append(ctx, []game.Event{evt("a", 1), evt("b", 2)})
	_ = repo.Append(ctx, []game.Event{evt("c", 3)})

	got, err := repo.List(ctx, ports.EventFilter{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 2 || got[0].Type != "c" || got[1].Type != "b" {
		t.Fatalf("unexpected order: %+v", got)
	}
	all, _ := repo.List(ctx, ports.EventFilter{})
	if len(all) != 3 {
		t.Fatalf("expected 3 events, got %d", len(all))
	}
}

func TestEventRepo_DropsOldestBeyondCapacity(t *testing.T) {
	store := NewStore(2)
	repo := NewEventRepo(store)
	ctx := context.Background()
	_ = repo.Append(ctx, []game.Event{evt("a", 1), evt("b", 2), evt("c", 3)})

	if store.Len() != 2 {
		t.Fatalf("expected capacity 2, got %d", store.Len())
	}
	got, _ := repo.List(ctx, ports.EventFilter{})
	if got[0].Type != "c" || got[1].Type != "b" {
		t.Fatalf("unexpected retained events: %+v", got)
	}
}

func TestEventRepo_WindowAppliedBeforeLimit(t *testing.T) {
	repo := NewEventRepo(NewStore(0))
	ctx := context.Background()
	batch := make([]game.Event, 0, 600)
	for sec := int64(1000); sec < 1600; sec++ {
		batch = append(batch, evt("smash", sec))
	}
	_ = repo.Append(ctx, batch)

	got, err := repo.List(ctx, ports.EventFilter{
		Limit: 500,
		From:  time.Unix(1000, 0),
		Until: time.Unix(1051, 0),
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(got) != 51 {
		t.Fatalf("expected 51 events in window, got %d", len(got))
	}
	if got[0].OccurredAt.Unix() != 1050 || got[50].OccurredAt.Unix() != 1000 {
		t.Fatalf("unexpected window edges %d..%d", got[0].OccurredAt.Unix(), got[50].OccurredAt.Unix())
	}

	if _, err := repo.List(ctx, ports.EventFilter{From: time.Unix(5000, 0)}); !errors.Is(err, ports.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for an empty window, got %v", err)
	}
}
