package storage

import (
	"context"
	"sync"
	"time"

	"github.com/sikidle/server/internal/platform/logger"
	"github.com/sikidle/server/internal/platform/metrics"
)

// CaptureFunc produces an atomically captured snapshot of live state. The
// capture must be cheap (a copy under the session lock); the checkpointer
// does all I/O outside it.
type CaptureFunc func() Snapshot

// Checkpointer persists snapshots on an interval and on demand, retrying
// failures with exponential backoff. Persistence is best-effort: a failed
// save is logged and retried, never allowed to block gameplay or discard
// in-memory state.
type Checkpointer struct {
	repo        SnapshotRepository
	capture     CaptureFunc
	logger      *logger.Logger
	interval    time.Duration
	maxRetries  int
	backoffBase time.Duration

	// mu serializes SaveNow so the interval goroutine and on-demand callers
	// never interleave attempts, and guards dirty.
	mu sync.Mutex

	// Dirty reports whether the last save attempt failed, so the UI can
	// surface "progress not yet saved".
	dirty bool

	// done closes once Run has finished its final shutdown save.
	done chan struct{}

	onSave func(ok bool)
}

// NewCheckpointer wires a checkpointer over a snapshot repository.
func NewCheckpointer(repo SnapshotRepository, capture CaptureFunc, log *logger.Logger, interval time.Duration, maxRetries int, backoffBase time.Duration) *Checkpointer {
	return &Checkpointer{
		repo:        repo,
		capture:     capture,
		logger:      log,
		interval:    interval,
		maxRetries:  maxRetries,
		backoffBase: backoffBase,
		done:        make(chan struct{}),
	}
}

// SetOnSave installs a callback fired after every save attempt (the server
// records an audit event from it).
func (c *Checkpointer) SetOnSave(fn func(ok bool)) {
	c.onSave = fn
}

// Run saves on the configured interval until the context is cancelled, then
// performs one final save and closes the Wait channel. Call in a goroutine;
// the shutdown path owns the final save, callers just Wait for it.
func (c *Checkpointer) Run(ctx context.Context) {
	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			// Final checkpoint on shutdown; the parent context is gone so
			// give the write its own deadline.
			saveCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			c.SaveNow(saveCtx)
			cancel()
			return
		case <-ticker.C:
			c.SaveNow(ctx)
		}
	}
}

// Wait blocks until Run has completed its final shutdown save.
func (c *Checkpointer) Wait() {
	<-c.done
}

// SaveNow captures and persists one snapshot, retrying with exponential
// backoff. Returns true if the snapshot was durably written.
func (c *Checkpointer) SaveNow(ctx context.Context) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.capture()

	backoff := c.backoffBase
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				c.dirty = true
				return false
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		err := c.repo.Save(ctx, snap)
		if err == nil {
			c.dirty = false
			metrics.Get().RecordSave(true)
			if c.onSave != nil {
				c.onSave(true)
			}
			return true
		}
		c.logger.Warn("snapshot save attempt %d failed: %v", attempt+1, err)
	}

	c.dirty = true
	metrics.Get().RecordSave(false)
	c.logger.Error("snapshot save gave up after %d attempts; progress not yet saved", c.maxRetries+1)
	if c.onSave != nil {
		c.onSave(false)
	}
	return false
}

// Dirty reports whether in-memory progress is ahead of the last durable
// save.
func (c *Checkpointer) Dirty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.dirty
}
