package network

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
)

func TestHubChannelBuffersFollowConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.BroadcastChannelBuffer = 7
	cfg.ClientSendBuffer = 3

	hub := NewHub(nil, logger.NewLogger(), cfg)
	if got := cap(hub.broadcast); got != 7 {
		t.Errorf("Expected broadcast buffer 7 from config, got %d", got)
	}

	client := NewClient(hub, nil)
	if got := cap(client.send); got != 3 {
		t.Errorf("Expected client send buffer 3 from config, got %d", got)
	}
}

func TestHistoryStatsCountsLoggedEventTypes(t *testing.T) {
	eventLog := events.NewLog(nil)
	now := time.Now()
	eventLog.Append(events.GameEvent{ID: "E1", Timestamp: now, Type: events.EventTypePurchase})
	eventLog.Append(events.GameEvent{ID: "E2", Timestamp: now, Type: events.EventTypePurchase})
	eventLog.Append(events.GameEvent{ID: "E3", Timestamp: now, Type: events.EventTypePrestige})

	hh := NewHistoryHandler(eventLog, logger.NewLogger())
	rec := httptest.NewRecorder()
	hh.HandleStats(rec, httptest.NewRequest(http.MethodGet, "/api/history/stats", nil))

	var body struct {
		Stats map[string]int `json:"stats"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode stats response: %v", err)
	}

	if body.Stats["total_events"] != 3 || body.Stats["purchases"] != 2 || body.Stats["prestiges"] != 1 {
		t.Errorf("Unexpected aggregate counts: %+v", body.Stats)
	}
	// Clicks are metrics-scoped, not event-log-scoped, so the stats must
	// not advertise a count that can never move.
	if _, ok := body.Stats["clicks"]; ok {
		t.Errorf("Expected no clicks row in event-log stats")
	}
}
