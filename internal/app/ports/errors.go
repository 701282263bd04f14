package ports

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrSignerUnavailable  = errors.New("signer unavailable")
	ErrRoundStillActive   = errors.New("round still active")
	ErrTransactionExpired = errors.New("transaction expired before confirmation")
)

// ProgramError is a remote rejection of a submitted call, either from
// preflight simulation or from the confirmed transaction status.
type ProgramError struct {
	Code    int
	Message string
	Logs    []string
	Kind    error
}

func (e *ProgramError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = "program rejected call"
	}
	if e.Code != 0 {
		return fmt.Sprintf("%s (custom error %d)", msg, e.Code)
	}
	return msg
}

func (e *ProgramError) Unwrap() error {
	return e.Kind
}

// Reason is the short text shown to a player.
func (e *ProgramError) Reason() string {
	for _, line := range e.Logs {
		if i := strings.Index(line, "Error Message: "); i >= 0 {
			return strings.TrimSpace(line[i+len("Error Message: "):])
		}
	}
	return e.Error()
}
