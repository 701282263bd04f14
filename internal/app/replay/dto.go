package replay

import "bossbounty/internal/domain/game"

type Request struct {
	Limit        int
	OccurredFrom int64
	OccurredTo   int64
}

type Response struct {
	Events         []game.Event   `json:"events"`
	LatestSnapshot *game.Snapshot `json:"latest_snapshot,omitempty"`
}
