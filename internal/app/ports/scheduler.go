package ports

import (
	"context"
	"time"
)

// Scheduler runs fn once after d unless its owner is torn down first.
type Scheduler interface {
	After(d time.Duration, fn func(ctx context.Context))
}
