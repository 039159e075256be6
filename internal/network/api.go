// Package network - api.go
// REST API for frontends that do not hold a WebSocket open. Every
// endpoint maps one-to-one to a serialized session entry point.
package network

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
	"github.com/sikidle/server/internal/engine"
	"github.com/sikidle/server/internal/platform/logger"
	"github.com/sikidle/server/internal/platform/metrics"
)

// APIBridge handles REST interactions with the game session.
type APIBridge struct {
	session *engine.Session
	wsHub   *Hub
	logger  *logger.Logger
}

// NewAPIBridge creates a new REST handler over the session.
func NewAPIBridge(session *engine.Session, hub *Hub, log *logger.Logger) *APIBridge {
	return &APIBridge{
		session: session,
		wsHub:   hub,
		logger:  log,
	}
}

// PurchaseRequest is the payload for buying a generator.
type PurchaseRequest struct {
	Generator string `json:"generator"`
}

// PrestigeRequest is the payload for triggering a prestige reset.
type PrestigeRequest struct {
	Tier string `json:"tier"`
}

// ConvertRequest is the payload for a resource conversion.
type ConvertRequest struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Amount float64 `json:"amount"`
	Rate   float64 `json:"rate"`
}

// BoostRequest is the payload for activating a timed multiplier.
type BoostRequest struct {
	Category string  `json:"category"`
	Factor   float64 `json:"factor"`
	Seconds  float64 `json:"seconds"`
}

// HandleClick is the endpoint for manual clicks.
// POST /api/click
func (ab *APIBridge) HandleClick(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	result := ab.session.Click()
	metrics.Get().RecordClick()
	ab.notifyState()

	ab.jsonSuccess(w, map[string]interface{}{
		"gained":     result.Gained,
		"critical":   result.Critical,
		"experience": result.Experience,
	})
}

// HandlePurchase is the endpoint for buying a generator.
// POST /api/purchase
func (ab *APIBridge) HandlePurchase(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PurchaseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Generator == "" {
		ab.jsonError(w, "Missing generator", http.StatusBadRequest)
		return
	}

	bought := ab.session.PurchaseGenerator(generator.Type(req.Generator))
	if bought {
		metrics.Get().RecordPurchase()
		ab.notifyState()
	}

	view, known := ab.session.GeneratorViewFor(generator.Type(req.Generator))
	if !known {
		ab.jsonError(w, "Unknown generator", http.StatusBadRequest)
		return
	}

	ab.jsonSuccess(w, map[string]interface{}{
		"purchased": bought,
		"generator": view,
	})
}

// HandlePrestige is the endpoint for committing a prestige reset.
// POST /api/prestige
func (ab *APIBridge) HandlePrestige(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PrestigeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	result := ab.session.PerformPrestige(prestige.Tier(req.Tier))
	if result.Eligible {
		metrics.Get().RecordPrestige()
		ab.notifyState()
	}

	// Ineligibility is not an HTTP error. The result carries the
	// missing amount so the frontend can render a progress bar.
	ab.jsonSuccess(w, result)
}

// HandlePrestigePreview returns the prestige outcome without committing.
// GET /api/prestige/preview?tier=soft
func (ab *APIBridge) HandlePrestigePreview(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tier := r.URL.Query().Get("tier")
	if tier == "" {
		ab.jsonError(w, "Missing tier", http.StatusBadRequest)
		return
	}

	ab.jsonSuccess(w, ab.session.PrestigePreview(prestige.Tier(tier)))
}

// HandleConvert is the endpoint for exchanging one resource for another.
// POST /api/convert
func (ab *APIBridge) HandleConvert(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req ConvertRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	ok := ab.session.ConvertResource(
		resource.Type(req.From),
		resource.Type(req.To),
		req.Amount,
		req.Rate,
	)
	if ok {
		ab.notifyState()
	}

	ab.jsonSuccess(w, map[string]interface{}{
		"converted": ok,
		"from":      req.From,
		"to":        req.To,
	})
}

// HandleBoost is the endpoint for activating a timed multiplier.
// POST /api/boost
func (ab *APIBridge) HandleBoost(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req BoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		ab.jsonError(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	if req.Factor <= 0 || req.Seconds <= 0 {
		ab.jsonError(w, "Factor and seconds must be positive", http.StatusBadRequest)
		return
	}

	ab.session.ActivateBoost(
		engine.Category(req.Category),
		req.Factor,
		time.Duration(req.Seconds*float64(time.Second)),
	)
	ab.notifyState()

	ab.jsonSuccess(w, map[string]interface{}{
		"activated": true,
		"category":  req.Category,
	})
}

// HandleState returns the full game view for rendering.
// GET /api/state
func (ab *APIBridge) HandleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ab.jsonSuccess(w, ab.session.View())
}

// HandleAdvisory returns the current pacing advice.
// GET /api/advisory
func (ab *APIBridge) HandleAdvisory(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		ab.jsonError(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	ab.jsonSuccess(w, ab.session.Advisory())
}

// RegisterRoutes sets up the game API routes.
func (ab *APIBridge) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/click", ab.HandleClick)
	mux.HandleFunc("/api/purchase", ab.HandlePurchase)
	mux.HandleFunc("/api/prestige", ab.HandlePrestige)
	mux.HandleFunc("/api/prestige/preview", ab.HandlePrestigePreview)
	mux.HandleFunc("/api/convert", ab.HandleConvert)
	mux.HandleFunc("/api/boost", ab.HandleBoost)
	mux.HandleFunc("/api/state", ab.HandleState)
	mux.HandleFunc("/api/advisory", ab.HandleAdvisory)
}

// notifyState pushes a fresh view to all WebSocket spectators after a
// REST mutation so both surfaces stay in sync.
func (ab *APIBridge) notifyState() {
	if ab.wsHub != nil {
		ab.wsHub.BroadcastState()
	}
}

// jsonError sends an error response.
func (ab *APIBridge) jsonError(w http.ResponseWriter, message string, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{"error": message})
}

// jsonSuccess sends a success response.
func (ab *APIBridge) jsonSuccess(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(data)
}
