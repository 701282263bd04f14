package game

import (
	"fmt"
	"time"
)

type Mood string

const (
	MoodIdle   Mood = "IDLE"
	MoodAction Mood = "ACTION"
	MoodTense  Mood = "TENSE"
	MoodWin    Mood = "WIN"
)

const (
	SmashLabelStart = "START"
	SmashLabel      = "SMASH"
	ClaimLabel      = "CLAIM BOUNTY"

	tenseThresholdSeconds = 10
)

type NoticeLevel string

const (
	NoticeInfo    NoticeLevel = "info"
	NoticeSuccess NoticeLevel = "success"
	NoticeError   NoticeLevel = "error"
)

type Notice struct {
	Level   NoticeLevel `json:"level"`
	Message string      `json:"message"`
	At      time.Time   `json:"at"`
}

type Button struct {
	Enabled bool   `json:"enabled"`
	Label   string `json:"label"`
}

type HUD struct {
	Phase           Phase    `json:"phase"`
	TimeLabel       string   `json:"time_label"`
	TimeLeftSeconds int64    `json:"time_left_seconds"`
	ArmorPercent    float64  `json:"armor_percent"`
	LastFeeder      string   `json:"last_feeder,omitempty"`
	BountyLamports  uint64   `json:"bounty_lamports"`
	BountySOL       string   `json:"bounty_sol"`
	Mood            Mood     `json:"mood"`
	Identity        string   `json:"identity,omitempty"`
	Smash           Button   `json:"smash"`
	Claim           Button   `json:"claim"`
	Notices         []Notice `json:"notices"`
}

type HUDInput struct {
	Known    bool
	Snapshot Snapshot
	View     View
	Identity *Address
	Smashing bool
	Claiming bool
	Notices  []Notice
}

func BuildHUD(in HUDInput) HUD {
	hud := HUD{
		Phase:   PhaseLoading,
		Mood:    MoodIdle,
		Smash:   Button{Label: SmashLabel},
		Claim:   Button{Label: ClaimLabel},
		Notices: in.Notices,
	}
	if hud.Notices == nil {
		hud.Notices = []Notice{}
	}
	if in.Identity != nil {
		hud.Identity = in.Identity.String()
	}
	if !in.Known {
		hud.TimeLabel = "--"
		hud.BountySOL = formatSOL(0)
		return hud
	}

	v := in.View
	hud.Phase = v.Phase()
	hud.TimeLabel = v.TimeLabel()
	hud.TimeLeftSeconds = v.TimeLeftSeconds
	hud.ArmorPercent = v.ArmorPercent
	hud.BountyLamports = in.Snapshot.Balance
	hud.BountySOL = formatSOL(in.Snapshot.Balance)
	if !in.Snapshot.LastFeeder.IsZero() {
		hud.LastFeeder = in.Snapshot.LastFeeder.String()
	}

	if v.IsWaiting {
		hud.Smash.Label = SmashLabelStart
	}
	hud.Smash.Enabled = !v.IsDead && !in.Smashing
	hud.Claim.Enabled = v.IsDead && !in.Claiming
	hud.Mood = moodFor(in)
	return hud
}

func moodFor(in HUDInput) Mood {
	v := in.View
	switch {
	case in.Smashing:
		return MoodAction
	case v.IsDead && in.Identity != nil && *in.Identity == in.Snapshot.LastFeeder:
		return MoodWin
	case !v.IsWaiting && !v.IsDead && v.TimeLeftSeconds <= tenseThresholdSeconds:
		return MoodTense
	default:
		return MoodIdle
	}
}

func formatSOL(lamports uint64) string {
	return fmt.Sprintf("%.4f SOL", float64(lamports)/LamportsPerSOL)
}
