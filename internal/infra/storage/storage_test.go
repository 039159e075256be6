package storage

import (
	"context"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/sikidle/server/internal/platform/logger"
)

func testDB(t *testing.T) *SQLiteSnapshotRepository {
	t.Helper()
	db, err := InitSQLite(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("InitSQLite failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLiteSnapshotRepository(db)
}

func testSnapshot() Snapshot {
	return Snapshot{
		SaveID:      "SAVE_TEST",
		Balances:    map[string]float64{"coins": 123_456.5, "crystals": 7},
		Generators:  map[string]int{"farm": 17, "bank": 2},
		Lifetime:    9_000_000,
		Crystals:    7,
		Prestiges:   3,
		TierCounts:  map[string]int64{"soft": 2, "hard": 1},
		CycleEarned: 100_000,
		Clicks:      1_200,
		Purchases:   60,
		LastSavedAt: time.Now().UTC().Truncate(time.Second),
	}
}

func TestSnapshotSaveLoadRoundTrip(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	want := testSnapshot()
	if err := repo.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	got, err := repo.Load(ctx, "SAVE_TEST")
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if got == nil {
		t.Fatalf("Expected a snapshot, got nil")
	}

	if got.Balances["coins"] != want.Balances["coins"] {
		t.Errorf("Expected coins %f, got %f", want.Balances["coins"], got.Balances["coins"])
	}
	if got.Generators["farm"] != 17 {
		t.Errorf("Expected 17 farms, got %d", got.Generators["farm"])
	}
	if got.Lifetime != want.Lifetime || got.Crystals != want.Crystals || got.Prestiges != want.Prestiges {
		t.Errorf("Prestige record mismatch: got %+v", got)
	}
	if got.TierCounts["soft"] != 2 || got.TierCounts["hard"] != 1 {
		t.Errorf("Tier counts mismatch: got %+v", got.TierCounts)
	}
	if got.Clicks != 1_200 || got.Purchases != 60 {
		t.Errorf("Counters mismatch: clicks=%d purchases=%d", got.Clicks, got.Purchases)
	}
}

func TestSnapshotUpsertOverwrites(t *testing.T) {
	repo := testDB(t)
	ctx := context.Background()

	first := testSnapshot()
	if err := repo.Save(ctx, first); err != nil {
		t.Fatalf("First save failed: %v", err)
	}

	second := first
	second.Balances = map[string]float64{"coins": 999}
	second.Crystals = 9
	if err := repo.Save(ctx, second); err != nil {
		t.Fatalf("Second save failed: %v", err)
	}

	got, err := repo.Load(ctx, "SAVE_TEST")
	if err != nil || got == nil {
		t.Fatalf("Load after upsert failed: %v", err)
	}
	if got.Balances["coins"] != 999 || got.Crystals != 9 {
		t.Errorf("Expected the upsert to overwrite, got coins=%f crystals=%d",
			got.Balances["coins"], got.Crystals)
	}
}

func TestLoadMissingSaveReturnsNil(t *testing.T) {
	repo := testDB(t)

	got, err := repo.Load(context.Background(), "NO_SUCH_SAVE")
	if err != nil {
		t.Fatalf("Load of a missing save must not error: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil for a missing save, got %+v", got)
	}
}

func TestEventAppendAndQuery(t *testing.T) {
	db, err := InitSQLite(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("InitSQLite failed: %v", err)
	}
	defer db.Close()
	repo := NewSQLiteEventRepository(db)
	ctx := context.Background()

	base := time.Now().UTC().Truncate(time.Second)
	eventsIn := []GameEvent{
		{ID: "E1", SaveID: "SAVE_TEST", Timestamp: base, EventType: "CLICK", ActorID: "player", Payload: map[string]interface{}{"gained": 1.0}},
		{ID: "E2", SaveID: "SAVE_TEST", Timestamp: base.Add(time.Second), EventType: "GENERATOR_PURCHASE", ActorID: "player", Payload: map[string]interface{}{"generator": "farm"}},
		{ID: "E3", SaveID: "OTHER", Timestamp: base.Add(2 * time.Second), EventType: "CLICK", ActorID: "player", Payload: map[string]interface{}{}},
	}
	for _, e := range eventsIn {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatalf("Append %s failed: %v", e.ID, err)
		}
	}

	bySave, err := repo.GetBySaveID(ctx, "SAVE_TEST")
	if err != nil {
		t.Fatalf("GetBySaveID failed: %v", err)
	}
	if len(bySave) != 2 {
		t.Fatalf("Expected 2 events for SAVE_TEST, got %d", len(bySave))
	}
	if bySave[0].ID != "E1" || bySave[1].ID != "E2" {
		t.Errorf("Expected timestamp order E1,E2, got %s,%s", bySave[0].ID, bySave[1].ID)
	}

	byType, err := repo.GetByEventType(ctx, "SAVE_TEST", "GENERATOR_PURCHASE")
	if err != nil {
		t.Fatalf("GetByEventType failed: %v", err)
	}
	if len(byType) != 1 || byType[0].Payload["generator"] != "farm" {
		t.Errorf("Expected the purchase event with its payload, got %+v", byType)
	}
}

// flakyRepo fails a configured number of saves before succeeding.
type flakyRepo struct {
	failures int
	saves    int
}

func (r *flakyRepo) Save(ctx context.Context, snapshot Snapshot) error {
	r.saves++
	if r.saves <= r.failures {
		return context.DeadlineExceeded
	}
	return nil
}

func (r *flakyRepo) Load(ctx context.Context, saveID string) (*Snapshot, error) {
	return nil, nil
}

func TestCheckpointerRetriesWithBackoff(t *testing.T) {
	repo := &flakyRepo{failures: 2}
	c := NewCheckpointer(repo, testSnapshot, logger.NewLogger(), time.Minute, 3, time.Millisecond)

	if !c.SaveNow(context.Background()) {
		t.Fatalf("Expected the save to succeed on the third attempt")
	}
	if repo.saves != 3 {
		t.Errorf("Expected 3 attempts, got %d", repo.saves)
	}
	if c.Dirty() {
		t.Errorf("Expected clean state after a successful save")
	}
}

// syncRepo counts saves under a lock for concurrent tests.
type syncRepo struct {
	mu    sync.Mutex
	saves int
}

func (r *syncRepo) Save(ctx context.Context, snapshot Snapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saves++
	return nil
}

func (r *syncRepo) Load(ctx context.Context, saveID string) (*Snapshot, error) {
	return nil, nil
}

func (r *syncRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.saves
}

func TestCheckpointerShutdownSaveIsSerialized(t *testing.T) {
	repo := &syncRepo{}
	c := NewCheckpointer(repo, testSnapshot, logger.NewLogger(), time.Hour, 1, time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	go c.Run(ctx)

	// Hammer on-demand saves while the shutdown save fires; the mutex keeps
	// the attempts from interleaving and dirty stays consistent.
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.SaveNow(context.Background())
		}()
	}
	cancel()
	c.Wait()
	wg.Wait()

	if got := repo.count(); got != 5 {
		t.Errorf("Expected 4 on-demand saves plus the shutdown save, got %d", got)
	}
	if c.Dirty() {
		t.Errorf("Expected clean state after successful saves")
	}
}

func TestCheckpointerGivesUpAndStaysDirty(t *testing.T) {
	repo := &flakyRepo{failures: 100}
	c := NewCheckpointer(repo, testSnapshot, logger.NewLogger(), time.Minute, 2, time.Millisecond)

	if c.SaveNow(context.Background()) {
		t.Fatalf("Expected the save to give up")
	}
	if repo.saves != 3 {
		t.Errorf("Expected maxRetries+1 = 3 attempts, got %d", repo.saves)
	}
	if !c.Dirty() {
		t.Errorf("Expected dirty state after a failed save")
	}
}
