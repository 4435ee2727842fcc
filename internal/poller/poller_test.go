package poller

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/kxbet/matchwatch/internal/alert"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/footballdata"
	"github.com/kxbet/matchwatch/internal/notify"
	"github.com/kxbet/matchwatch/internal/store"
)

// --------------------------------------------------------------------------
// Fakes
// --------------------------------------------------------------------------

type fakeClient struct {
	snapshots map[string]footballdata.Snapshot
	errs      map[string]error
}

func (f *fakeClient) Match(ctx context.Context, matchID string) (footballdata.Snapshot, error) {
	if err := f.errs[matchID]; err != nil {
		return footballdata.Snapshot{}, err
	}
	snap, ok := f.snapshots[matchID]
	if !ok {
		return footballdata.Snapshot{}, footballdata.ErrMatchNotFound
	}
	return snap, nil
}

type fakeNotifier struct {
	sent map[string][]string // subscriber id -> delivered texts
	fail map[string]bool
}

func newFakeNotifier() *fakeNotifier {
	return &fakeNotifier{sent: make(map[string][]string), fail: make(map[string]bool)}
}

func (f *fakeNotifier) Send(ctx context.Context, subscriberID string, text string) error {
	if f.fail[subscriberID] {
		return fmt.Errorf("subscriber %s: %w", subscriberID, notify.ErrDeliveryFailed)
	}
	f.sent[subscriberID] = append(f.sent[subscriberID], text)
	return nil
}

// --------------------------------------------------------------------------
// Helpers
// --------------------------------------------------------------------------

func ip(n int) *int { return &n }

func inPlay(id string, home, away int) footballdata.Snapshot {
	return footballdata.Snapshot{
		ID:       id,
		Status:   footballdata.StatusInPlay,
		HomeTeam: "Arsenal",
		AwayTeam: "Chelsea",
		FullTime: footballdata.Score{Home: ip(home), Away: ip(away)},
	}
}

func newTestPoller(t *testing.T, client *fakeClient, notifier *fakeNotifier) (*Poller, store.Store) {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "subscriptions.json"))
	cfg := &config.Config{
		PollInterval: time.Minute,
		IdleInterval: 10 * time.Second,
		MatchPacing:  time.Millisecond,
	}
	return New(st, client, notifier, cfg, nil), st
}

func track(t *testing.T, st store.Store, subscriberID, matchID string) {
	t.Helper()
	if _, err := st.ToggleTracking(context.Background(), subscriberID, matchID); err != nil {
		t.Fatal(err)
	}
}

// --------------------------------------------------------------------------
// Tests
// --------------------------------------------------------------------------

func TestCycleDispatchesToTrackingSubscribersOnly(t *testing.T) {
	client := &fakeClient{snapshots: map[string]footballdata.Snapshot{
		"m1": inPlay("m1", 0, 0),
		"m2": {ID: "m2", Status: footballdata.StatusScheduled},
	}}
	notifier := newFakeNotifier()
	p, st := newTestPoller(t, client, notifier)
	ctx := context.Background()

	track(t, st, "1001", "m1")
	track(t, st, "1002", "m1")
	track(t, st, "1003", "m2")

	if next := p.runCycle(ctx); next != p.pollInterval {
		t.Errorf("expected poll interval after active cycle, got %v", next)
	}

	for _, sub := range []string{"1001", "1002"} {
		if len(notifier.sent[sub]) != 1 {
			t.Errorf("expected exactly one alert for %s, got %d", sub, len(notifier.sent[sub]))
		}
	}
	if len(notifier.sent["1003"]) != 0 {
		t.Errorf("non-tracking subscriber received %v", notifier.sent["1003"])
	}

	rec, err := st.Record(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.WasSent(alert.KindStart) {
		t.Error("expected START flag persisted")
	}
	if rec.LastStatus != footballdata.StatusInPlay {
		t.Errorf("expected persisted status IN_PLAY, got %s", rec.LastStatus)
	}

	// The same snapshot on the next cycle must not re-alert.
	p.runCycle(ctx)
	for _, sub := range []string{"1001", "1002"} {
		if len(notifier.sent[sub]) != 1 {
			t.Errorf("duplicate alert delivered to %s: %v", sub, notifier.sent[sub])
		}
	}
}

func TestDeliveryFailureDoesNotBlockOthers(t *testing.T) {
	client := &fakeClient{snapshots: map[string]footballdata.Snapshot{
		"m1": inPlay("m1", 0, 0),
	}}
	notifier := newFakeNotifier()
	notifier.fail["1001"] = true
	p, st := newTestPoller(t, client, notifier)
	ctx := context.Background()

	track(t, st, "1001", "m1")
	track(t, st, "1002", "m1")

	p.runCycle(ctx)

	if len(notifier.sent["1002"]) != 1 {
		t.Errorf("expected delivery to 1002 despite 1001 failing, got %v", notifier.sent["1002"])
	}

	// The record persists regardless, so the alert is not retried: first
	// delivery is at-most-once-attempted per subscriber.
	rec, err := st.Record(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if !rec.WasSent(alert.KindStart) {
		t.Error("expected START flag persisted after partial delivery")
	}
}

func TestFetchFailureSkipsMatchWithoutMutation(t *testing.T) {
	client := &fakeClient{
		snapshots: map[string]footballdata.Snapshot{},
		errs:      map[string]error{"m1": errors.New("connection reset")},
	}
	notifier := newFakeNotifier()
	p, st := newTestPoller(t, client, notifier)
	ctx := context.Background()

	track(t, st, "1001", "m1")

	p.runCycle(ctx)

	if len(notifier.sent) != 0 {
		t.Errorf("expected no deliveries, got %v", notifier.sent)
	}
	rec, err := st.Record(ctx, "m1")
	if err != nil {
		t.Fatal(err)
	}
	if rec.LastStatus != "" || rec.WasSent(alert.KindStart) {
		t.Errorf("fetch failure must not mutate the record, got %+v", rec)
	}

	// Recovery on a later cycle alerts normally.
	delete(client.errs, "m1")
	client.snapshots["m1"] = inPlay("m1", 0, 0)
	p.runCycle(ctx)
	if len(notifier.sent["1001"]) != 1 {
		t.Errorf("expected alert after recovery, got %v", notifier.sent["1001"])
	}
}

func TestIdleCycleUsesIdleInterval(t *testing.T) {
	p, _ := newTestPoller(t, &fakeClient{}, newFakeNotifier())

	if next := p.runCycle(context.Background()); next != p.idleInterval {
		t.Errorf("expected idle interval with nothing tracked, got %v", next)
	}
}

func TestGoalAlertText(t *testing.T) {
	client := &fakeClient{snapshots: map[string]footballdata.Snapshot{
		"m1": inPlay("m1", 1, 0),
	}}
	notifier := newFakeNotifier()
	p, st := newTestPoller(t, client, notifier)
	ctx := context.Background()

	track(t, st, "1001", "m1")
	if err := st.PutRecord(ctx, "m1", alert.MatchRecord{
		LastStatus:   footballdata.StatusInPlay,
		LastFullTime: footballdata.Score{Home: ip(0), Away: ip(0)},
		Sent:         map[alert.Kind]bool{alert.KindStart: true},
	}); err != nil {
		t.Fatal(err)
	}

	p.runCycle(ctx)

	texts := notifier.sent["1001"]
	if len(texts) != 1 {
		t.Fatalf("expected one alert, got %v", texts)
	}
	want := "⚽ BUT ! Score: 1-0\n??:?? • Arsenal 1-0 Chelsea • IN_PLAY"
	if texts[0] != want {
		t.Errorf("expected %q, got %q", want, texts[0])
	}
}
