// Package poller drives the alert cycle: every tick it polls the tracked
// matches, runs each snapshot through the alert engine, fans the resulting
// alerts out to subscribers, and persists the updated dedup records.
//
// One bad match never stops a cycle — fetch and delivery failures are
// logged and skipped, retried naturally on the next tick.
package poller

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/kxbet/matchwatch/internal/alert"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/footballdata"
	"github.com/kxbet/matchwatch/internal/notify"
	"github.com/kxbet/matchwatch/internal/store"
)

// MatchClient is the slice of the provider client the poller needs.
type MatchClient interface {
	Match(ctx context.Context, matchID string) (footballdata.Snapshot, error)
}

// Poller owns the background polling loop.
type Poller struct {
	store    store.Store
	client   MatchClient
	notifier notify.Notifier
	logger   *slog.Logger

	pollInterval time.Duration
	idleInterval time.Duration
	pacing       *rate.Limiter
}

// New creates a poller from the shared dependencies.
func New(st store.Store, client MatchClient, notifier notify.Notifier, cfg *config.Config, logger *slog.Logger) *Poller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Poller{
		store:        st,
		client:       client,
		notifier:     notifier,
		logger:       logger,
		pollInterval: cfg.PollInterval,
		idleInterval: cfg.IdleInterval,
		pacing:       rate.NewLimiter(rate.Every(cfg.MatchPacing), 1),
	}
}

// Run blocks until ctx is cancelled. Intended to be called with `go`.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Poll loop started",
		"poll_interval", p.pollInterval,
		"idle_interval", p.idleInterval)

	timer := time.NewTimer(0) // first cycle immediately
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Poll loop stopped")
			return
		case <-timer.C:
			timer.Reset(p.runCycle(ctx))
		}
	}
}

// runCycle processes every tracked match once and returns how long to sleep
// before the next cycle.
func (p *Poller) runCycle(ctx context.Context) time.Duration {
	matchIDs, err := p.store.TrackedMatchIDs(ctx)
	if err != nil {
		// Fatal for this cycle only; the store may recover by next tick.
		p.logger.Error("Tracked match set unavailable", "error", err)
		return p.pollInterval
	}
	if len(matchIDs) == 0 {
		return p.idleInterval
	}

	for _, matchID := range matchIDs {
		// Pacing bounds the provider request rate across the cycle.
		if err := p.pacing.Wait(ctx); err != nil {
			return p.pollInterval
		}
		p.processMatch(ctx, matchID)
	}
	return p.pollInterval
}

// processMatch runs one tracked match through fetch → decide → fan-out →
// persist. The record is persisted before the next match so a crash loses
// at most the in-flight update.
func (p *Poller) processMatch(ctx context.Context, matchID string) {
	observed, err := p.client.Match(ctx, matchID)
	if errors.Is(err, footballdata.ErrMatchNotFound) {
		p.logger.Debug("Match no longer resolvable", "match_id", matchID)
		return
	}
	if err != nil {
		p.logger.Warn("Fetch failed, skipping match", "match_id", matchID, "error", err)
		return
	}

	prev, err := p.store.Record(ctx, matchID)
	if err != nil {
		p.logger.Warn("Record unavailable, skipping match", "match_id", matchID, "error", err)
		return
	}

	events, next := alert.Decide(prev, observed)

	for _, event := range events {
		subscribers, err := p.store.SubscribersOf(ctx, matchID)
		if err != nil {
			p.logger.Warn("Subscriber set unavailable", "match_id", matchID, "error", err)
			continue
		}

		text := eventText(event)
		delivered := 0
		for _, subscriberID := range subscribers {
			if err := p.notifier.Send(ctx, subscriberID, text); err != nil {
				p.logger.Warn("Delivery failed",
					"match_id", matchID, "kind", event.Kind,
					"subscriber", subscriberID, "error", err)
				continue
			}
			delivered++
		}
		p.logger.Info("Alert dispatched",
			"match_id", matchID, "kind", event.Kind,
			"delivered", delivered, "subscribers", len(subscribers))
	}

	// Persist after delivery so a crash in between re-sends rather than
	// drops the alert. Shutdown must not abort an in-flight persist.
	if err := p.store.PutRecord(context.WithoutCancel(ctx), matchID, next); err != nil {
		p.logger.Error("Persist failed", "match_id", matchID, "error", err)
	}
}
