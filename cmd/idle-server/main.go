// Package main is the entry point for the SiKIdle economy server.
// It only handles dependency injection and server initialization.
// NO business logic belongs here.
package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
	"github.com/sikidle/server/internal/engine"
	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/infra/storage"
	"github.com/sikidle/server/internal/network"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
	"github.com/sikidle/server/internal/platform/metrics"
)

// saveID identifies the singleton save slot this server runs.
const saveID = "SAVE_1"

// SQLitePersisterAdapter translates domain events to storage events.
type SQLitePersisterAdapter struct {
	repo *storage.SQLiteEventRepository
}

func (a *SQLitePersisterAdapter) Append(event events.GameEvent) error {
	payloadBytes, _ := json.Marshal(event.Payload)
	var payloadMap map[string]interface{}
	json.Unmarshal(payloadBytes, &payloadMap)

	storageEvent := storage.GameEvent{
		ID:        event.ID,
		SaveID:    saveID,
		Timestamp: event.Timestamp,
		EventType: string(event.Type),
		ActorID:   event.ActorID,
		Payload:   payloadMap,
	}
	return a.repo.Append(context.Background(), storageEvent)
}

// toStorageSnapshot converts the engine's typed snapshot to the string-keyed
// persistence shape.
func toStorageSnapshot(snap engine.Snapshot) storage.Snapshot {
	out := storage.Snapshot{
		SaveID:      saveID,
		Balances:    make(map[string]float64, len(snap.Balances)),
		Generators:  make(map[string]int, len(snap.Generators)),
		Lifetime:    snap.Prestige.LifetimeCoins,
		Crystals:    snap.Prestige.Crystals,
		Prestiges:   snap.Prestige.PrestigeCount,
		TierCounts:  make(map[string]int64, len(snap.Prestige.TierCounts)),
		CycleEarned: snap.CycleEarned,
		Clicks:      snap.Clicks,
		Purchases:   snap.Purchases,
		LastSavedAt: snap.CapturedAt,
	}
	for t, amount := range snap.Balances {
		out.Balances[string(t)] = amount
	}
	for t, count := range snap.Generators {
		out.Generators[string(t)] = count
	}
	for tier, n := range snap.Prestige.TierCounts {
		out.TierCounts[string(tier)] = n
	}
	return out
}

// fromStorageSnapshot converts a loaded snapshot back to engine types.
// Unknown identifiers survive the conversion; Session.Restore skips them
// with a warning.
func fromStorageSnapshot(snap *storage.Snapshot) engine.Snapshot {
	out := engine.Snapshot{
		Balances:   make(map[resource.Type]float64, len(snap.Balances)),
		Generators: make(map[generator.Type]int, len(snap.Generators)),
		Prestige: prestige.State{
			LifetimeCoins: snap.Lifetime,
			Crystals:      snap.Crystals,
			PrestigeCount: snap.Prestiges,
			TierCounts:    make(map[prestige.Tier]int64, len(snap.TierCounts)),
		},
		CycleEarned: snap.CycleEarned,
		Clicks:      snap.Clicks,
		Purchases:   snap.Purchases,
		Prestiges:   snap.Prestiges,
		CapturedAt:  snap.LastSavedAt,
	}
	for name, amount := range snap.Balances {
		out.Balances[resource.Type(name)] = amount
	}
	for name, count := range snap.Generators {
		out.Generators[generator.Type(name)] = count
	}
	for name, n := range snap.TierCounts {
		out.Prestige.TierCounts[prestige.Tier(name)] = n
	}
	return out
}

func main() {
	log.Println("[IDLE-SERVER] Initializing SiKIdle Authoritative Economy Server...")

	appLogger := logger.NewLogger()
	cfg := config.DefaultConfig()

	appLogger.Info("Initializing SQLite database 'sikidle.db'...")
	db, err := storage.InitSQLite("sikidle.db")
	if err != nil {
		appLogger.Error("Failed to initialize SQLite: %v", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DBMaxOpenConns)
	db.SetMaxIdleConns(cfg.DBMaxIdleConns)

	eventRepo := storage.NewSQLiteEventRepository(db)
	eventPersister := &SQLitePersisterAdapter{repo: eventRepo}

	appLogger.Info("Bootstrapping EventLog...")
	eventLog := events.NewLog(eventPersister)

	appLogger.Info("Bootstrapping Economy Session...")
	session := engine.NewSession(cfg, appLogger, eventLog)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Restore the save slot and credit production for the downtime.
	snapRepo := storage.NewSQLiteSnapshotRepository(db)
	stored, err := snapRepo.Load(ctx, saveID)
	if err != nil {
		appLogger.Error("Failed to load snapshot, starting fresh: %v", err)
	} else if stored != nil {
		session.Restore(fromStorageSnapshot(stored))
		offline := time.Since(stored.LastSavedAt)
		if offline > 0 {
			credited := session.Tick(offline.Seconds())
			appLogger.Info("Offline catch-up: credited %.0f seconds of production.", offline.Seconds())
			eventLog.Append(events.GameEvent{
				ID:        events.GenerateEventID(),
				Timestamp: time.Now(),
				Type:      events.EventTypeOfflineCatchup,
				ActorID:   "SYSTEM",
				Payload: map[string]interface{}{
					"offline_seconds": offline.Seconds(),
					"credited":        credited,
				},
			})
		}
	} else {
		appLogger.Info("No snapshot for %s, starting a new save.", saveID)
	}

	// Autosave routine. The capture closure runs under the session lock;
	// the SQLite write happens on the checkpointer's goroutine.
	checkpointer := storage.NewCheckpointer(
		snapRepo,
		func() storage.Snapshot { return toStorageSnapshot(session.Snapshot()) },
		appLogger,
		cfg.AutosaveInterval,
		cfg.SaveMaxRetries,
		cfg.SaveBackoffBase,
	)
	checkpointer.SetOnSave(func(ok bool) {
		if !ok {
			return
		}
		eventLog.Append(events.GameEvent{
			ID:        events.GenerateEventID(),
			Timestamp: time.Now(),
			Type:      events.EventTypeSnapshotSaved,
			ActorID:   "SYSTEM",
			Payload:   map[string]interface{}{"save_id": saveID},
		})
	})
	go checkpointer.Run(ctx)

	appLogger.Info("Bootstrapping WebSocket Hub...")
	hub := network.NewHub(session, appLogger, cfg)
	go hub.Run(ctx)
	hub.StartEventPoller(ctx, eventLog)

	ticker := engine.NewTicker(session, appLogger, cfg.TickRate)
	ticker.SetTickCallback(hub.BroadcastState)
	go ticker.Start(ctx)

	// API routes
	mux := http.NewServeMux()

	api := network.NewAPIBridge(session, hub, appLogger)
	api.RegisterRoutes(mux)

	history := network.NewHistoryHandler(eventLog, appLogger)
	history.RegisterRoutes(mux)

	mux.HandleFunc("/metrics", metrics.Get().Handler())

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		serveWs(hub, w, r, appLogger)
	})

	srv := &http.Server{Addr: ":8080", Handler: mux}
	go func() {
		log.Println("[IDLE-SERVER] HTTP API & WS Server listening on :8080")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	log.Println("[IDLE-SERVER] Server running. Press Ctrl+C to exit.")

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("[IDLE-SERVER] Shutting down...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	srv.Shutdown(shutdownCtx)

	// Cancelling the run context triggers the checkpointer's final save;
	// wait for it to finish before exiting.
	cancel()
	checkpointer.Wait()
	if checkpointer.Dirty() {
		appLogger.Error("Final save failed, in-memory progress since last autosave is lost.")
	}
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow cross-origin requests for the web frontend dev server
	},
}

// serveWs handles websocket requests from the peer.
func serveWs(hub *network.Hub, w http.ResponseWriter, r *http.Request, log *logger.Logger) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Error("Failed to upgrade websocket connection: %v", err)
		return
	}

	client := network.NewClient(hub, conn)
	client.Register()

	// Allow collection of memory referenced by the caller by doing all work in
	// new goroutines.
	go client.WritePump()
	go client.ReadPump()
}
