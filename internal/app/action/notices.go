package action

import (
	"sync"
	"time"

	"bossbounty/internal/domain/game"
)

const defaultNoticeLimit = 8

// NoticeBoard keeps the most recent player-facing messages, newest first.
type NoticeBoard struct {
	mu    sync.Mutex
	limit int
	items []game.Notice
}

func NewNoticeBoard(limit int) *NoticeBoard {
	if limit <= 0 {
		limit = defaultNoticeLimit
	}
	return &NoticeBoard{limit: limit}
}

func (b *NoticeBoard) Post(level game.NoticeLevel, message string, at time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.items = append([]game.Notice{{Level: level, Message: message, At: at}}, b.items...)
	if len(b.items) > b.limit {
		b.items = b.items[:b.limit]
	}
}

func (b *NoticeBoard) Recent() []game.Notice {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]game.Notice(nil), b.items...)
}
