// Package storage provides the persistence layer for the game server.
// This package implements the repository pattern to keep the domain pure.
package storage

import (
	"context"
	"time"
)

// GameEvent mirrors the domain event structure for persistence.
// The domain package should NOT import this; use interfaces instead.
type GameEvent struct {
	ID        string                 `json:"id" db:"id"`
	SaveID    string                 `json:"save_id" db:"save_id"`
	Timestamp time.Time              `json:"timestamp" db:"timestamp"`
	EventType string                 `json:"event_type" db:"event_type"`
	ActorID   string                 `json:"actor_id" db:"actor_id"`
	Payload   map[string]interface{} `json:"payload" db:"payload"`
}

// EventRepository defines the interface for economy event persistence.
type EventRepository interface {
	// Append adds a new event to the immutable ledger.
	Append(ctx context.Context, event GameEvent) error

	// GetBySaveID retrieves all events for a save slot (for replay/history).
	GetBySaveID(ctx context.Context, saveID string) ([]GameEvent, error)

	// GetByEventType retrieves all events of a specific type.
	GetByEventType(ctx context.Context, saveID string, eventType string) ([]GameEvent, error)
}

// Snapshot is the persisted image of one session: balances, generator
// counts, the prestige record, and the achievement counters. String keys
// rather than domain types so unknown identifiers degrade at load time
// instead of breaking the schema.
type Snapshot struct {
	SaveID      string             `json:"save_id"`
	Balances    map[string]float64 `json:"balances"`
	Generators  map[string]int     `json:"generators"`
	Lifetime    float64            `json:"lifetime_coins"`
	Crystals    int64              `json:"crystals"`
	Prestiges   int64              `json:"prestige_count"`
	TierCounts  map[string]int64   `json:"tier_counts"`
	CycleEarned float64            `json:"cycle_earned"`
	Clicks      int64              `json:"clicks"`
	Purchases   int64              `json:"purchases"`
	LastSavedAt time.Time          `json:"last_saved_at"`
}

// SnapshotRepository defines the load/save contract for session snapshots.
// Both operations may fail; callers retry with backoff and never discard
// in-memory state on failure.
type SnapshotRepository interface {
	// Save upserts the snapshot for its save slot.
	Save(ctx context.Context, snapshot Snapshot) error

	// Load retrieves the snapshot for a save slot, or nil if none exists.
	Load(ctx context.Context, saveID string) (*Snapshot, error)
}
