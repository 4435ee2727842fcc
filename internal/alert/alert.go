// Package alert decides which alerts a freshly observed match snapshot
// triggers, given what has already been sent for that match.
//
// Decide is a pure function over (previous record, snapshot); all I/O —
// fetching snapshots, fanning out messages, persisting records — lives in
// the poller. That keeps the dedup rules directly testable.
package alert

import (
	"github.com/kxbet/matchwatch/internal/footballdata"
)

// Kind identifies one alert type.
type Kind string

const (
	KindStart    Kind = "START"
	KindHalftime Kind = "HALFTIME"
	KindGoal     Kind = "GOAL"
	KindFulltime Kind = "FULLTIME"
)

// Kinds lists every alert kind the engine can emit, in emission order.
var Kinds = []Kind{KindStart, KindHalftime, KindGoal, KindFulltime}

// Event is one alert to fan out to a match's subscribers.
type Event struct {
	Kind  Kind
	Match footballdata.Snapshot
	// Score carries the half-time score for HALFTIME events and the
	// full-time score for GOAL and FULLTIME events. Unset for START.
	Score footballdata.Score
}

// MatchRecord is the per-match dedup state persisted between polls.
//
// Sent holds the one-shot kinds (START, HALFTIME, FULLTIME); once a kind is
// marked it is never unmarked. GOAL alerts are deduplicated by comparing
// LastFullTime against the observed score instead, since a match can have
// many goals.
type MatchRecord struct {
	LastStatus   footballdata.Status `json:"last_status,omitempty"`
	LastFullTime footballdata.Score  `json:"last_full_time"`
	Sent         map[Kind]bool       `json:"sent,omitempty"`
}

// WasSent reports whether a one-shot kind has already been delivered.
func (r MatchRecord) WasSent(kind Kind) bool {
	return r.Sent[kind]
}

// clone returns a copy sharing nothing with the receiver, so Decide never
// mutates its input.
func (r MatchRecord) clone() MatchRecord {
	next := r
	next.Sent = make(map[Kind]bool, len(r.Sent))
	for kind, sent := range r.Sent {
		if sent {
			next.Sent[kind] = true
		}
	}
	return next
}

// Decide computes the alerts a snapshot triggers and the updated record to
// persist. Rules run in fixed order (START, HALFTIME, GOAL, FULLTIME); a
// single snapshot can trigger several of them when polls straddle more than
// one transition.
//
// The returned record always reflects the observed status and, once known,
// the observed full-time score — even when no event fires.
func Decide(prev MatchRecord, observed footballdata.Snapshot) ([]Event, MatchRecord) {
	next := prev.clone()
	var events []Event

	if observed.Status == footballdata.StatusInPlay && !prev.WasSent(KindStart) {
		events = append(events, Event{Kind: KindStart, Match: observed})
		next.Sent[KindStart] = true
	}

	if observed.Status == footballdata.StatusPaused && !prev.WasSent(KindHalftime) {
		// Half-time score may be missing from the provider; the alert
		// still fires with unknown placeholders.
		events = append(events, Event{Kind: KindHalftime, Match: observed, Score: observed.HalfTime})
		next.Sent[KindHalftime] = true
	}

	if observed.FullTime.Known() && !observed.FullTime.Equal(prev.LastFullTime) {
		// The first time a score becomes known (typically the 0-0 at
		// kickoff) is not a goal.
		if !prev.LastFullTime.Empty() {
			events = append(events, Event{Kind: KindGoal, Match: observed, Score: observed.FullTime})
		}
		next.LastFullTime = observed.FullTime
	}

	if observed.Status == footballdata.StatusFinished && !prev.WasSent(KindFulltime) {
		events = append(events, Event{Kind: KindFulltime, Match: observed, Score: observed.FullTime})
		next.Sent[KindFulltime] = true
	}

	next.LastStatus = observed.Status
	return events, next
}
