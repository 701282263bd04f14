package status

import "bossbounty/internal/domain/game"

type Request struct{}

type Response struct {
	HUD       game.HUD `json:"hud"`
	Tag       uint64   `json:"tag"`
	FetchedAt int64    `json:"fetched_at"`
	Stale     bool     `json:"stale"`
}
