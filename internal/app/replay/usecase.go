package replay

import (
	"context"
	"errors"
	"math"
	"time"

	"bossbounty/internal/app/ports"
	"bossbounty/internal/domain/game"
)

const maxLimit = 500

var ErrInvalidRequest = errors.New("invalid replay request")

type UseCase struct {
	Events ports.EventRepository
}

func (u UseCase) Execute(ctx context.Context, req Request) (Response, error) {
	if req.Limit < 0 || (req.OccurredTo > 0 && req.OccurredFrom > req.OccurredTo) {
		return Response{}, ErrInvalidRequest
	}
	limit := req.Limit
	if limit == 0 || limit > maxLimit {
		limit = maxLimit
	}
	events, err := u.Events.List(ctx, window(limit, req.OccurredFrom, req.OccurredTo))
	if err != nil {
		if errors.Is(err, ports.ErrNotFound) {
			return Response{Events: []game.Event{}}, nil
		}
		return Response{}, err
	}
	return Response{Events: events, LatestSnapshot: latestSnapshot(events)}, nil
}

// window turns inclusive unix-second bounds into a repository filter. Values
// <= 0 leave that side open.
func window(limit int, from, to int64) ports.EventFilter {
	f := ports.EventFilter{Limit: limit}
	if from > 0 {
		f.From = time.Unix(from, 0)
	}
	if to > 0 {
		f.Until = time.Unix(to+1, 0)
	}
	return f
}

// latestSnapshot rebuilds the newest journaled snapshot. Events are newest
// first.
func latestSnapshot(events []game.Event) *game.Snapshot {
	for _, evt := range events {
		if evt.Type != game.EventSnapshotApplied || evt.Payload == nil {
			continue
		}
		snap := game.Snapshot{
			LastFedTimestamp: int64(num(evt.Payload["last_fed_timestamp"])),
			TimeToLive:       int64(num(evt.Payload["time_to_live"])),
			Balance:          uint64(math.Max(0, num(evt.Payload["balance_lamports"]))),
		}
		if s, ok := evt.Payload["last_feeder"].(string); ok {
			if addr, err := game.ParseAddress(s); err == nil {
				snap.LastFeeder = addr
			}
		}
		return &snap
	}
	return nil
}

func num(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case uint64:
		return float64(n)
	default:
		return 0
	}
}
