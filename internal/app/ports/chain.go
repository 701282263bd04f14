package ports

import (
	"context"

	"bossbounty/internal/domain/game"
)

type AccountReader interface {
	GetAccountData(ctx context.Context, addr game.Address) ([]byte, error)
	GetBalance(ctx context.Context, addr game.Address) (uint64, error)
}

// AccountWatcher delivers one value per change notification. The channel is
// closed when the subscription ends, for any reason.
type AccountWatcher interface {
	Watch(ctx context.Context, addr game.Address) (<-chan struct{}, error)
}

type ProgramClient interface {
	Feed(ctx context.Context, caller game.Address) (string, error)
	ClaimReward(ctx context.Context, caller, winner game.Address) (string, error)
}

type Signer interface {
	Identity() (game.Address, bool)
	Connect(ctx context.Context) (game.Address, error)
	Sign(message []byte) ([]byte, error)
}
