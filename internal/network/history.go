// Package network - history.go
// Event history endpoint - JSON export of the economy audit trail.
//
// Lets a frontend or a balance analyst replay the immutable history of
// clicks, purchases and prestiges for a save.
package network

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/logger"
)

// HistoryHandler provides the event history API.
type HistoryHandler struct {
	eventLog *events.Log
	logger   *logger.Logger
}

// NewHistoryHandler creates a new event history handler.
func NewHistoryHandler(el *events.Log, log *logger.Logger) *HistoryHandler {
	return &HistoryHandler{
		eventLog: el,
		logger:   log,
	}
}

// HistoryEvent is an event formatted for public viewing.
type HistoryEvent struct {
	ID        string      `json:"id"`
	Timestamp string      `json:"timestamp"`
	Type      string      `json:"type"`
	ActorID   string      `json:"actor_id"`
	Summary   string      `json:"summary"`
	Payload   interface{} `json:"payload,omitempty"`
}

// HistoryResponse is the API response for the history export.
type HistoryResponse struct {
	TotalEvents int            `json:"total_events"`
	FilteredBy  string         `json:"filtered_by,omitempty"`
	GeneratedAt string         `json:"generated_at"`
	Events      []HistoryEvent `json:"events"`
}

// HandleHistory returns the event history, optionally filtered.
// GET /api/history?type=GENERATOR_PURCHASE&since=120
func (hh *HistoryHandler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventType := r.URL.Query().Get("type")
	sinceStr := r.URL.Query().Get("since")

	since := 0
	if sinceStr != "" {
		s, err := strconv.Atoi(sinceStr)
		if err != nil {
			hh.jsonError(w, "Invalid since index", http.StatusBadRequest)
			return
		}
		since = s
	}

	allEvents := hh.eventLog.Since(since)

	var historyEvents []HistoryEvent
	filterDesc := ""
	if eventType != "" {
		filterDesc = "Type " + eventType
	}

	for _, e := range allEvents {
		if eventType != "" && string(e.Type) != eventType {
			continue
		}
		historyEvents = append(historyEvents, hh.convertToHistoryEvent(e))
	}

	response := HistoryResponse{
		TotalEvents: len(historyEvents),
		FilteredBy:  filterDesc,
		GeneratedAt: time.Now().Format(time.RFC3339),
		Events:      historyEvents,
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(response)
}

// HandleEventDetail returns a specific event including its payload.
// GET /api/history/event?event_id=XXX
func (hh *HistoryHandler) HandleEventDetail(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	eventID := r.URL.Query().Get("event_id")
	if eventID == "" {
		hh.jsonError(w, "Missing event_id", http.StatusBadRequest)
		return
	}

	for _, e := range hh.eventLog.Replay() {
		if e.ID == eventID {
			detail := hh.convertToHistoryEvent(e)
			detail.Payload = e.Payload

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(detail)
			return
		}
	}

	hh.jsonError(w, "Event not found", http.StatusNotFound)
}

// HandleStats returns aggregate counts over the event history.
// GET /api/history/stats
func (hh *HistoryHandler) HandleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		hh.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	allEvents := hh.eventLog.Replay()

	// Clicks are counted by /metrics, not here: the session does not log an
	// event per click, so a click row would always read zero.
	stats := map[string]int{
		"total_events": len(allEvents),
		"purchases":    0,
		"prestiges":    0,
		"conversions":  0,
		"achievements": 0,
	}

	for _, e := range allEvents {
		switch e.Type {
		case events.EventTypePurchase:
			stats["purchases"]++
		case events.EventTypePrestige:
			stats["prestiges"]++
		case events.EventTypeConversion:
			stats["conversions"]++
		case events.EventTypeAchievement:
			stats["achievements"]++
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"generated_at": time.Now().Format(time.RFC3339),
		"stats":        stats,
	})
}

// RegisterRoutes sets up the history API routes.
func (hh *HistoryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/history", hh.HandleHistory)
	mux.HandleFunc("/api/history/event", hh.HandleEventDetail)
	mux.HandleFunc("/api/history/stats", hh.HandleStats)
}

// convertToHistoryEvent transforms an internal event to public format.
func (hh *HistoryHandler) convertToHistoryEvent(e events.GameEvent) HistoryEvent {
	return HistoryEvent{
		ID:        e.ID,
		Timestamp: e.Timestamp.Format(time.RFC3339),
		Type:      string(e.Type),
		ActorID:   e.ActorID,
		Summary:   hh.summarizeEvent(e),
	}
}

// summarizeEvent creates a human-readable summary.
func (hh *HistoryHandler) summarizeEvent(e events.GameEvent) string {
	switch e.Type {
	case events.EventTypeClick:
		return "A manual click earned coins."
	case events.EventTypePurchase:
		return "A generator was purchased."
	case events.EventTypePrestige:
		return "A prestige reset was committed."
	case events.EventTypeConversion:
		return "Resources were converted."
	case events.EventTypeBoostActivated:
		return "A temporary boost was activated."
	case events.EventTypeAchievement:
		return "An achievement was unlocked."
	case events.EventTypeOfflineCatchup:
		return "Offline production was credited."
	case events.EventTypeSnapshotSaved:
		return "The save was checkpointed."
	default:
		return "Something happened."
	}
}

// jsonError sends an error response.
func (hh *HistoryHandler) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}
