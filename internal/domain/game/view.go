package game

import (
	"fmt"
	"time"
)

type Phase string

const (
	PhaseLoading Phase = "LOADING"
	PhaseWaiting Phase = "WAITING"
	PhaseActive  Phase = "ACTIVE"
	PhaseDead    Phase = "DEAD"
)

// View holds the display values derived from a Snapshot and the wall clock.
type View struct {
	TimeLeftSeconds int64   `json:"time_left_seconds"`
	ArmorPercent    float64 `json:"armor_percent"`
	IsWaiting       bool    `json:"is_waiting"`
	IsDead          bool    `json:"is_dead"`
}

func Derive(s Snapshot, now time.Time) View {
	if s.IsWaiting() {
		return View{
			TimeLeftSeconds: max(s.TimeToLive, 0),
			ArmorPercent:    100,
			IsWaiting:       true,
		}
	}
	expiry := s.LastFedTimestamp + s.TimeToLive
	left := max(expiry-now.Unix(), 0)
	return View{
		TimeLeftSeconds: left,
		ArmorPercent:    ArmorPercent(left, s.TimeToLive),
		IsDead:          left == 0,
	}
}

func ArmorPercent(timeLeft, timeToLive int64) float64 {
	if timeLeft <= 0 || timeToLive <= 0 {
		return 0
	}
	return min(100, 100*float64(timeLeft)/float64(timeToLive))
}

// Decrement is the per-second display step between fetches. Waiting views
// do not count down.
func (v View) Decrement(timeToLive int64) View {
	if v.IsWaiting {
		return v
	}
	next := v
	next.TimeLeftSeconds = max(v.TimeLeftSeconds-1, 0)
	next.ArmorPercent = min(v.ArmorPercent, ArmorPercent(next.TimeLeftSeconds, timeToLive))
	next.IsDead = next.TimeLeftSeconds == 0
	return next
}

func (v View) Phase() Phase {
	switch {
	case v.IsWaiting:
		return PhaseWaiting
	case v.IsDead:
		return PhaseDead
	default:
		return PhaseActive
	}
}

func (v View) TimeLabel() string {
	return fmt.Sprintf("%ds", v.TimeLeftSeconds)
}

// ValidTransition reports whether a play cycle may move from one phase to the
// next. Repeating a phase is always allowed; LOADING may become anything.
func ValidTransition(from, to Phase) bool {
	if from == to || from == PhaseLoading {
		return true
	}
	switch from {
	case PhaseWaiting:
		return to == PhaseActive
	case PhaseActive:
		return to == PhaseDead
	case PhaseDead:
		return to == PhaseWaiting
	}
	return false
}
