package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/kxbet/matchwatch/internal/alert"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/store"
)

func newTestRouter(t *testing.T) (http.Handler, store.Store) {
	t.Helper()
	st := store.NewFileStore(filepath.Join(t.TempDir(), "subscriptions.json"))
	cfg := &config.Config{Environment: "test", CORSAllowOrigins: []string{"*"}}
	return NewRouter(st, nil, cfg), st
}

func get(t *testing.T, router http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	for _, path := range []string{"/health", "/health/store", "/health/cache"} {
		if rec := get(t, router, path); rec.Code != http.StatusOK {
			t.Errorf("GET %s returned %d", path, rec.Code)
		}
	}
}

func TestGetTracked(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	if _, err := st.ToggleTracking(ctx, "1001", "497555"); err != nil {
		t.Fatal(err)
	}
	if _, err := st.ToggleTracking(ctx, "1002", "497555"); err != nil {
		t.Fatal(err)
	}
	if err := st.PutRecord(ctx, "497555", alert.MatchRecord{
		Sent: map[alert.Kind]bool{alert.KindStart: true},
	}); err != nil {
		t.Fatal(err)
	}

	rec := get(t, router, "/api/v1/tracked")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var body struct {
		Count   int `json:"count"`
		Tracked []struct {
			MatchID     string `json:"match_id"`
			Subscribers int    `json:"subscribers"`
		} `json:"tracked"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Count != 1 || len(body.Tracked) != 1 {
		t.Fatalf("expected one tracked match, got %+v", body)
	}
	if body.Tracked[0].MatchID != "497555" || body.Tracked[0].Subscribers != 2 {
		t.Errorf("unexpected tracked entry %+v", body.Tracked[0])
	}
}

func TestGetMatchRecord(t *testing.T) {
	router, st := newTestRouter(t)
	ctx := context.Background()

	if _, err := st.ToggleTracking(ctx, "1001", "497555"); err != nil {
		t.Fatal(err)
	}

	rec := get(t, router, "/api/v1/matches/497555")
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", rec.Code)
	}

	var body struct {
		MatchID     string   `json:"match_id"`
		Subscribers []string `json:"subscribers"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.MatchID != "497555" {
		t.Errorf("unexpected match id %s", body.MatchID)
	}
	if len(body.Subscribers) != 1 || body.Subscribers[0] != "1001" {
		t.Errorf("unexpected subscribers %v", body.Subscribers)
	}
}
