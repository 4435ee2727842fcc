// Package store persists the shared subscription state: which subscriber
// follows which matches, and the per-match alert dedup records.
//
// Two implementations exist — a JSON file snapshot store and a Postgres
// store. Both serialize every read-modify-write so the Telegram front-end
// toggling subscriptions and the poll loop updating records never interleave
// into a lost update.
package store

import (
	"context"
	"errors"
	"slices"

	"github.com/kxbet/matchwatch/internal/alert"
)

// ErrStorageUnavailable indicates the durable medium is unreadable or
// corrupt. Callers treat it as fatal for the current poll cycle and retry
// on the next tick; state is never silently reset.
var ErrStorageUnavailable = errors.New("storage unavailable")

// State is the full persisted snapshot.
type State struct {
	// Subscribers maps subscriber id to the ordered list of followed
	// match ids. An empty list is a valid idle subscriber; entries are
	// never removed.
	Subscribers map[string][]string `json:"subscribers"`
	// Matches maps match id to its alert dedup record.
	Matches map[string]alert.MatchRecord `json:"matches"`
}

// NewState returns an empty snapshot with initialized maps.
func NewState() *State {
	return &State{
		Subscribers: make(map[string][]string),
		Matches:     make(map[string]alert.MatchRecord),
	}
}

// normalize repairs nil maps after JSON decoding.
func (s *State) normalize() {
	if s.Subscribers == nil {
		s.Subscribers = make(map[string][]string)
	}
	if s.Matches == nil {
		s.Matches = make(map[string]alert.MatchRecord)
	}
}

// Toggle flips tracking of matchID for subscriberID and reports whether the
// subscriber now tracks the match.
func (s *State) Toggle(subscriberID, matchID string) bool {
	followed := s.Subscribers[subscriberID]
	if i := slices.Index(followed, matchID); i >= 0 {
		s.Subscribers[subscriberID] = slices.Delete(followed, i, i+1)
		return false
	}
	s.Subscribers[subscriberID] = append(followed, matchID)
	return true
}

// TrackedMatchIDs returns the sorted union of all subscribers' followed
// match ids. This set — not record existence — decides what gets polled.
func (s *State) TrackedMatchIDs() []string {
	seen := make(map[string]bool)
	var ids []string
	for _, followed := range s.Subscribers {
		for _, id := range followed {
			if !seen[id] {
				seen[id] = true
				ids = append(ids, id)
			}
		}
	}
	slices.Sort(ids)
	return ids
}

// SubscribersOf returns the sorted ids of subscribers following a match.
func (s *State) SubscribersOf(matchID string) []string {
	var subs []string
	for id, followed := range s.Subscribers {
		if slices.Contains(followed, matchID) {
			subs = append(subs, id)
		}
	}
	slices.Sort(subs)
	return subs
}

// Record returns the dedup record for a match, lazily defaulting to a
// never-observed record.
func (s *State) Record(matchID string) alert.MatchRecord {
	if rec, ok := s.Matches[matchID]; ok {
		return rec
	}
	return alert.MatchRecord{}
}

// Store is the durable subscription state shared by the Telegram front-end
// and the poll loop.
type Store interface {
	// Load returns the full current state.
	Load(ctx context.Context) (*State, error)
	// Save atomically replaces the full state. A concurrent Load never
	// observes a partial write.
	Save(ctx context.Context, state *State) error

	// ToggleTracking idempotently flips tracking and reports whether the
	// subscriber now tracks the match.
	ToggleTracking(ctx context.Context, subscriberID, matchID string) (bool, error)
	// TrackedMatchIDs returns the union of all followed match ids.
	TrackedMatchIDs(ctx context.Context) ([]string, error)
	// TrackedBy returns the match ids one subscriber follows, in
	// subscription order.
	TrackedBy(ctx context.Context, subscriberID string) ([]string, error)
	// SubscribersOf returns the subscribers following a match.
	SubscribersOf(ctx context.Context, matchID string) ([]string, error)

	// Record returns a match's dedup record, zero if never observed.
	Record(ctx context.Context, matchID string) (alert.MatchRecord, error)
	// PutRecord persists an updated dedup record.
	PutRecord(ctx context.Context, matchID string, record alert.MatchRecord) error

	Close() error
}
