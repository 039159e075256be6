package engine

import (
	"context"
	"time"

	"github.com/sikidle/server/internal/platform/logger"
	"github.com/sikidle/server/internal/platform/metrics"
)

// Ticker drives the session's accrual heartbeat in real time. It knows
// nothing about generators or balances, only elapsed time: each firing
// advances the session by the wall-clock seconds since the previous one.
type Ticker struct {
	session *Session
	logger  *logger.Logger
	rate    time.Duration
	onTick  func()
}

// NewTicker creates the game-loop driver.
func NewTicker(session *Session, log *logger.Logger, rate time.Duration) *Ticker {
	return &Ticker{session: session, logger: log, rate: rate}
}

// SetTickCallback installs a hook fired after every tick (the WebSocket hub
// uses it to broadcast fresh views).
func (t *Ticker) SetTickCallback(fn func()) {
	t.onTick = fn
}

// Start begins the loop. Call in a goroutine.
func (t *Ticker) Start(ctx context.Context) {
	t.logger.Info("Economy ticker started at %s interval", t.rate)

	ticker := time.NewTicker(t.rate)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case <-ctx.Done():
			t.logger.Info("Economy ticker stopped by context.")
			return
		case now := <-ticker.C:
			dt := now.Sub(last).Seconds()
			last = now
			t.session.Tick(dt)
			metrics.Get().RecordTick(time.Since(now))
			if t.onTick != nil {
				t.onTick()
			}
		}
	}
}
