package cache

import (
	"testing"
	"time"

	"github.com/kxbet/matchwatch/internal/footballdata"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New(time.Minute, true)

	if _, ok := c.Get("PL:2026-08-30"); ok {
		t.Fatal("expected miss on empty cache")
	}

	listing := []footballdata.Snapshot{{ID: "497555", HomeTeam: "Arsenal"}}
	c.Set("PL:2026-08-30", listing)

	got, ok := c.Get("PL:2026-08-30")
	if !ok || len(got) != 1 || got[0].ID != "497555" {
		t.Errorf("expected cached listing, got %v (hit=%v)", got, ok)
	}
}

func TestExpiredEntryMisses(t *testing.T) {
	c := New(-time.Second, true) // everything is born expired
	c.Set("PL:2026-08-30", []footballdata.Snapshot{{ID: "1"}})

	if _, ok := c.Get("PL:2026-08-30"); ok {
		t.Fatal("expected expired entry to miss")
	}

	c.evict()
	stats := c.Stats()
	if stats["total_keys"].(int) != 0 {
		t.Errorf("expected eviction to drop expired keys, got %v", stats)
	}
}

func TestDisabledCacheIsNoOp(t *testing.T) {
	c := New(time.Minute, false)
	c.Set("key", []footballdata.Snapshot{{ID: "1"}})
	if _, ok := c.Get("key"); ok {
		t.Fatal("disabled cache must never hit")
	}
}
