// Package metrics provides observability for the game server.
package metrics

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// Collector gathers performance and economy counters.
type Collector struct {
	// Tick metrics
	TickCount      int64
	TickLatencySum int64 // nanoseconds
	TickLatencyMax int64

	// Persistence metrics
	SnapshotsSaved int64
	SaveErrors     int64

	// Economy metrics
	Clicks    int64
	Purchases int64
	Prestiges int64

	// WebSocket metrics
	WSConnectionsActive int64
	WSMessagesOut       int64

	// System
	StartTime time.Time
}

// Global collector instance
var collector = &Collector{
	StartTime: time.Now(),
}

// Get returns the global collector.
func Get() *Collector {
	return collector
}

// RecordTick records a tick cycle completion.
func (c *Collector) RecordTick(latency time.Duration) {
	atomic.AddInt64(&c.TickCount, 1)
	atomic.AddInt64(&c.TickLatencySum, int64(latency))

	// Update max (non-atomic but acceptable for metrics)
	if int64(latency) > c.TickLatencyMax {
		c.TickLatencyMax = int64(latency)
	}
}

// RecordSave records a snapshot persistence outcome.
func (c *Collector) RecordSave(ok bool) {
	if ok {
		atomic.AddInt64(&c.SnapshotsSaved, 1)
	} else {
		atomic.AddInt64(&c.SaveErrors, 1)
	}
}

// RecordClick bumps the manual-action counter.
func (c *Collector) RecordClick() {
	atomic.AddInt64(&c.Clicks, 1)
}

// RecordPurchase bumps the generator-purchase counter.
func (c *Collector) RecordPurchase() {
	atomic.AddInt64(&c.Purchases, 1)
}

// RecordPrestige bumps the prestige counter.
func (c *Collector) RecordPrestige() {
	atomic.AddInt64(&c.Prestiges, 1)
}

// ClientConnected tracks a WebSocket client joining or leaving.
func (c *Collector) ClientConnected(delta int64) {
	atomic.AddInt64(&c.WSConnectionsActive, delta)
}

// MessageSent tracks an outbound WebSocket message.
func (c *Collector) MessageSent() {
	atomic.AddInt64(&c.WSMessagesOut, 1)
}

// report is the JSON shape served by the handler.
type report struct {
	UptimeSeconds  float64 `json:"uptime_seconds"`
	TickCount      int64   `json:"tick_count"`
	TickLatencyAvg float64 `json:"tick_latency_avg_ms"`
	TickLatencyMax float64 `json:"tick_latency_max_ms"`
	SnapshotsSaved int64   `json:"snapshots_saved"`
	SaveErrors     int64   `json:"save_errors"`
	Clicks         int64   `json:"clicks"`
	Purchases      int64   `json:"purchases"`
	Prestiges      int64   `json:"prestiges"`
	WSConnections  int64   `json:"ws_connections_active"`
	WSMessagesOut  int64   `json:"ws_messages_out"`
}

// Handler serves the collector as JSON at /metrics.
func (c *Collector) Handler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ticks := atomic.LoadInt64(&c.TickCount)
		var avg float64
		if ticks > 0 {
			avg = float64(atomic.LoadInt64(&c.TickLatencySum)) / float64(ticks) / 1e6
		}

		rep := report{
			UptimeSeconds:  time.Since(c.StartTime).Seconds(),
			TickCount:      ticks,
			TickLatencyAvg: avg,
			TickLatencyMax: float64(c.TickLatencyMax) / 1e6,
			SnapshotsSaved: atomic.LoadInt64(&c.SnapshotsSaved),
			SaveErrors:     atomic.LoadInt64(&c.SaveErrors),
			Clicks:         atomic.LoadInt64(&c.Clicks),
			Purchases:      atomic.LoadInt64(&c.Purchases),
			Prestiges:      atomic.LoadInt64(&c.Prestiges),
			WSConnections:  atomic.LoadInt64(&c.WSConnectionsActive),
			WSMessagesOut:  atomic.LoadInt64(&c.WSMessagesOut),
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(rep)
	}
}
