package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// SQLiteEventRepository implements EventRepository for SQLite.
type SQLiteEventRepository struct {
	db *sql.DB
}

func NewSQLiteEventRepository(db *sql.DB) *SQLiteEventRepository {
	return &SQLiteEventRepository{db: db}
}

func (r *SQLiteEventRepository) Append(ctx context.Context, event GameEvent) error {
	payloadBytes, err := json.Marshal(event.Payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	query := `
		INSERT INTO events (id, save_id, timestamp, event_type, actor_id, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`
	_, err = r.db.ExecContext(ctx, query,
		event.ID, event.SaveID, event.Timestamp, event.EventType, event.ActorID,
		string(payloadBytes),
	)
	if err != nil {
		return fmt.Errorf("failed to append event: %w", err)
	}
	return nil
}

func (r *SQLiteEventRepository) getMany(ctx context.Context, query string, args ...interface{}) ([]GameEvent, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []GameEvent
	for rows.Next() {
		var e GameEvent
		var payloadStr string
		err := rows.Scan(&e.ID, &e.SaveID, &e.Timestamp, &e.EventType, &e.ActorID, &payloadStr)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(payloadStr), &e.Payload); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

func (r *SQLiteEventRepository) GetBySaveID(ctx context.Context, saveID string) ([]GameEvent, error) {
	query := `SELECT id, save_id, timestamp, event_type, actor_id, payload FROM events WHERE save_id = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, saveID)
}

func (r *SQLiteEventRepository) GetByEventType(ctx context.Context, saveID string, eventType string) ([]GameEvent, error) {
	query := `SELECT id, save_id, timestamp, event_type, actor_id, payload FROM events WHERE save_id = ? AND event_type = ? ORDER BY timestamp ASC`
	return r.getMany(ctx, query, saveID, eventType)
}

// ---------------------------------------------------------
// SQLiteSnapshotRepository
// ---------------------------------------------------------

type SQLiteSnapshotRepository struct {
	db *sql.DB
}

func NewSQLiteSnapshotRepository(db *sql.DB) *SQLiteSnapshotRepository {
	return &SQLiteSnapshotRepository{db: db}
}

func (r *SQLiteSnapshotRepository) Save(ctx context.Context, snapshot Snapshot) error {
	balances, err := json.Marshal(snapshot.Balances)
	if err != nil {
		return fmt.Errorf("failed to marshal balances: %w", err)
	}
	generators, err := json.Marshal(snapshot.Generators)
	if err != nil {
		return fmt.Errorf("failed to marshal generators: %w", err)
	}
	tierCounts, err := json.Marshal(snapshot.TierCounts)
	if err != nil {
		return fmt.Errorf("failed to marshal tier counts: %w", err)
	}

	query := `
		INSERT INTO snapshots (save_id, balances_json, generators_json, lifetime_coins, crystals, prestige_count, tier_counts_json, cycle_earned, clicks, purchases, last_saved_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(save_id) DO UPDATE SET
			balances_json=excluded.balances_json,
			generators_json=excluded.generators_json,
			lifetime_coins=excluded.lifetime_coins,
			crystals=excluded.crystals,
			prestige_count=excluded.prestige_count,
			tier_counts_json=excluded.tier_counts_json,
			cycle_earned=excluded.cycle_earned,
			clicks=excluded.clicks,
			purchases=excluded.purchases,
			last_saved_at=excluded.last_saved_at
	`
	_, err = r.db.ExecContext(ctx, query,
		snapshot.SaveID, string(balances), string(generators),
		snapshot.Lifetime, snapshot.Crystals, snapshot.Prestiges, string(tierCounts),
		snapshot.CycleEarned, snapshot.Clicks, snapshot.Purchases, snapshot.LastSavedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

func (r *SQLiteSnapshotRepository) Load(ctx context.Context, saveID string) (*Snapshot, error) {
	query := `SELECT save_id, balances_json, generators_json, lifetime_coins, crystals, prestige_count, tier_counts_json, cycle_earned, clicks, purchases, last_saved_at FROM snapshots WHERE save_id = ?`

	var s Snapshot
	var balancesStr, generatorsStr, tierCountsStr string
	var lastSaved time.Time
	err := r.db.QueryRowContext(ctx, query, saveID).Scan(
		&s.SaveID, &balancesStr, &generatorsStr, &s.Lifetime, &s.Crystals,
		&s.Prestiges, &tierCountsStr, &s.CycleEarned, &s.Clicks, &s.Purchases, &lastSaved,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}

	if err := json.Unmarshal([]byte(balancesStr), &s.Balances); err != nil {
		return nil, fmt.Errorf("corrupt balances in snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(generatorsStr), &s.Generators); err != nil {
		return nil, fmt.Errorf("corrupt generators in snapshot: %w", err)
	}
	if err := json.Unmarshal([]byte(tierCountsStr), &s.TierCounts); err != nil {
		return nil, fmt.Errorf("corrupt tier counts in snapshot: %w", err)
	}
	s.LastSavedAt = lastSaved
	return &s, nil
}
