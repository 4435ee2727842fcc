package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/kxbet/matchwatch/internal/alert"
	"github.com/kxbet/matchwatch/internal/cache"
	"github.com/kxbet/matchwatch/internal/config"
	"github.com/kxbet/matchwatch/internal/store"
)

// Handler holds shared dependencies for all endpoint handlers.
type Handler struct {
	store    store.Store
	listings *cache.Cache
	cfg      *config.Config
}

// Root serves API info at /.
func (h *Handler) Root(w http.ResponseWriter, r *http.Request) {
	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"name":        "Matchwatch Ops API",
		"status":      "running",
		"environment": h.cfg.Environment,
	})
}

// HealthCheck returns basic health status.
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckStore verifies the subscription store is readable.
func (h *Handler) HealthCheckStore(w http.ResponseWriter, r *http.Request) {
	if _, err := h.store.Load(r.Context()); err != nil {
		writeJSONObject(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":    "unhealthy",
			"store":     "unavailable",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
		return
	}
	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"store":     "available",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheckCache returns menu listing cache statistics.
func (h *Handler) HealthCheckCache(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{"enabled": false}
	if h.listings != nil {
		stats = h.listings.Stats()
	}
	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"status":    "healthy",
		"cache":     stats,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// trackedMatch is the ops view of one tracked match.
type trackedMatch struct {
	MatchID     string            `json:"match_id"`
	Subscribers int               `json:"subscribers"`
	Record      alert.MatchRecord `json:"record"`
}

// GetTracked lists every tracked match with its subscriber count and dedup
// record.
func (h *Handler) GetTracked(w http.ResponseWriter, r *http.Request) {
	state, err := h.store.Load(r.Context())
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
		return
	}

	tracked := make([]trackedMatch, 0)
	for _, matchID := range state.TrackedMatchIDs() {
		tracked = append(tracked, trackedMatch{
			MatchID:     matchID,
			Subscribers: len(state.SubscribersOf(matchID)),
			Record:      state.Record(matchID),
		})
	}
	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"count":   len(tracked),
		"tracked": tracked,
	})
}

// GetMatchRecord returns one match's dedup record and subscriber ids.
func (h *Handler) GetMatchRecord(w http.ResponseWriter, r *http.Request) {
	matchID := chi.URLParam(r, "matchID")

	record, err := h.store.Record(r.Context(), matchID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
		return
	}
	subscribers, err := h.store.SubscribersOf(r.Context(), matchID)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "storage_unavailable", err.Error())
		return
	}

	writeJSONObject(w, http.StatusOK, map[string]interface{}{
		"match_id":    matchID,
		"record":      record,
		"subscribers": subscribers,
	})
}
