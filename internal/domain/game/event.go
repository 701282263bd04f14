package game

import "time"

type ActionKind string

const (
	ActionSmash ActionKind = "smash"
	ActionClaim ActionKind = "claim"
)

const (
	EventSnapshotApplied = "snapshot_applied"
	EventPhaseChanged    = "phase_changed"
	EventSmashSubmitted  = "smash_submitted"
	EventSmashRejected   = "smash_rejected"
	EventClaimSubmitted  = "claim_submitted"
	EventClaimRetried    = "claim_retried"
	EventClaimRejected   = "claim_rejected"
)

type Event struct {
	Type       string         `json:"type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Payload    map[string]any `json:"payload,omitempty"`
}

func SnapshotAppliedEvent(s Snapshot, at time.Time) Event {
	return Event{
		Type:       EventSnapshotApplied,
		OccurredAt: at,
		Payload: map[string]any{
			"last_feeder":        s.LastFeeder.String(),
			"last_fed_timestamp": s.LastFedTimestamp,
			"time_to_live":       s.TimeToLive,
			"balance_lamports":   s.Balance,
		},
	}
}

func PhaseChangedEvent(from, to Phase, at time.Time) Event {
	return Event{
		Type:       EventPhaseChanged,
		OccurredAt: at,
		Payload: map[string]any{
			"from": string(from),
			"to":   string(to),
		},
	}
}

func ActionEvent(eventType string, caller Address, signature string, reason string, at time.Time) Event {
	payload := map[string]any{"caller": caller.String()}
	if signature != "" {
		payload["signature"] = signature
	}
	if reason != "" {
		payload["reason"] = reason
	}
	return Event{Type: eventType, OccurredAt: at, Payload: payload}
}
