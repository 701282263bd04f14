package action

import "bossbounty/internal/domain/game"

type Response struct {
	Kind      game.ActionKind `json:"kind"`
	Caller    string          `json:"caller"`
	Signature string          `json:"signature"`
	Attempts  int             `json:"attempts"`
}
