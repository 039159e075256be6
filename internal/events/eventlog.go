// Package events provides the append-only economy event log. It is an audit
// trail and broadcast feed, not the source of truth: balances and counts
// live in the session state and its snapshots.
package events

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// EventType defines the category of an economy event.
type EventType string

const (
	EventTypeClick          EventType = "CLICK"
	EventTypePurchase       EventType = "GENERATOR_PURCHASE"
	EventTypePrestige       EventType = "PRESTIGE"
	EventTypeConversion     EventType = "RESOURCE_CONVERSION"
	EventTypeBoostActivated EventType = "BOOST_ACTIVATED"
	EventTypeAchievement    EventType = "ACHIEVEMENT_UNLOCKED"
	EventTypeOfflineCatchup EventType = "OFFLINE_CATCHUP"
	EventTypeSnapshotSaved  EventType = "SNAPSHOT_SAVED"
)

// GameEvent represents an immutable record of an action in the economy.
type GameEvent struct {
	ID        string      `json:"id"`
	Timestamp time.Time   `json:"timestamp"`
	Type      EventType   `json:"type"`
	ActorID   string      `json:"actor_id"` // player or SYSTEM
	Payload   interface{} `json:"payload"`  // event-specific data
}

// Persister defines how an event is durably stored.
type Persister interface {
	Append(event GameEvent) error
}

// Log is the in-memory append-only log of economy events, optionally backed
// by a persister.
type Log struct {
	mu        sync.RWMutex
	events    []GameEvent
	persister Persister
}

// NewLog creates a new event log with an optional persister.
func NewLog(persister Persister) *Log {
	return &Log{
		events:    make([]GameEvent, 0),
		persister: persister,
	}
}

// Append adds a new event to the log. Events are immutable once appended.
// Persistence is write-through but off the caller's goroutine so it can
// never hold up the mutation path.
func (l *Log) Append(event GameEvent) {
	l.mu.Lock()
	l.events = append(l.events, event)
	l.mu.Unlock()

	if l.persister != nil {
		go func(e GameEvent) {
			_ = l.persister.Append(e)
		}(event)
	}
}

// Len returns the number of events appended so far.
func (l *Log) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.events)
}

// Since returns the events appended after the given index. Used by pollers
// (the WebSocket hub) to pick up just the new tail.
func (l *Log) Since(index int) []GameEvent {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if index < 0 {
		index = 0
	}
	if index >= len(l.events) {
		return nil
	}
	out := make([]GameEvent, len(l.events)-index)
	copy(out, l.events[index:])
	return out
}

// Replay returns the full event history.
func (l *Log) Replay() []GameEvent {
	return l.Since(0)
}

// GenerateEventID creates a unique event identifier.
func GenerateEventID() string {
	return uuid.NewString()
}
