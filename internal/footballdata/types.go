package footballdata

import (
	"fmt"
	"time"
)

// Status is the coarse match status the alert engine reacts to.
// Provider statuses outside the four actionable values map to StatusUnknown.
type Status string

const (
	StatusScheduled Status = "SCHEDULED"
	StatusInPlay    Status = "IN_PLAY"
	StatusPaused    Status = "PAUSED"
	StatusFinished  Status = "FINISHED"
	StatusUnknown   Status = "UNKNOWN"
)

// mapStatus converts a raw provider status to the coarse Status enum.
// TIMED is the provider's "scheduled with confirmed kickoff time".
func mapStatus(raw string) Status {
	switch raw {
	case "SCHEDULED", "TIMED":
		return StatusScheduled
	case "IN_PLAY":
		return StatusInPlay
	case "PAUSED":
		return StatusPaused
	case "FINISHED":
		return StatusFinished
	default:
		return StatusUnknown
	}
}

// Score is a goal pair where either side may not be known yet. The provider
// reports null goals before kickoff and for abandoned fixtures.
type Score struct {
	Home *int `json:"home"`
	Away *int `json:"away"`
}

// Known reports whether both components are present.
func (s Score) Known() bool {
	return s.Home != nil && s.Away != nil
}

// Empty reports whether neither component is present.
func (s Score) Empty() bool {
	return s.Home == nil && s.Away == nil
}

// Equal compares two scores component-wise, treating nil as distinct from
// any concrete goal count.
func (s Score) Equal(other Score) bool {
	return intPtrEqual(s.Home, other.Home) && intPtrEqual(s.Away, other.Away)
}

// String renders "1-0", with "?" for unknown components.
func (s Score) String() string {
	return fmt.Sprintf("%s-%s", intPtrString(s.Home), intPtrString(s.Away))
}

func intPtrEqual(a, b *int) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func intPtrString(p *int) string {
	if p == nil {
		return "?"
	}
	return fmt.Sprintf("%d", *p)
}

// Snapshot is a single point-in-time read of one match from the provider.
type Snapshot struct {
	ID       string
	Status   Status
	HomeTeam string
	AwayTeam string
	Kickoff  time.Time
	FullTime Score
	HalfTime Score
}

// Label renders the one-line match summary used in menus and alerts:
// "15:30 • Arsenal 1-0 Chelsea • IN_PLAY".
func (s Snapshot) Label() string {
	kickoff := "??:??"
	if !s.Kickoff.IsZero() {
		kickoff = s.Kickoff.UTC().Format("15:04")
	}
	score := "vs"
	if s.FullTime.Known() {
		score = s.FullTime.String()
	}
	return fmt.Sprintf("%s • %s %s %s • %s", kickoff, s.HomeTeam, score, s.AwayTeam, s.Status)
}
