package ports

import "bossbounty/internal/domain/game"

type SyncMetrics interface {
	RecordFetch(ok bool)
	RecordStaleDrop()
}

type ActionMetrics interface {
	RecordSuccess(kind game.ActionKind)
	RecordRejected(kind game.ActionKind)
	RecordRetry(kind game.ActionKind)
}
