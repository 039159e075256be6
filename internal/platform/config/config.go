// Package config provides tunable parameters for the economy engine.
// Values live here rather than as scattered constants so the simulator
// and the server can run with different pacing.
package config

import (
	"runtime"
	"time"
)

// Config holds tuned parameters for the server and the economy core.
type Config struct {
	// Game loop
	TickRate time.Duration // real-time interval between accrual ticks

	// Click action
	ClickBaseIncome float64
	ClickExperience float64

	// Balance / stagnation detection
	StagnationFraction float64       // growth per minute below this fraction of balance = wall
	ProgressWindowMin  time.Duration // samples shorter than this are rejected as noise
	CostReductionCap   float64       // additive cost-reduction can never exceed this

	// Persistence
	AutosaveInterval time.Duration
	SaveMaxRetries   int
	SaveBackoffBase  time.Duration

	// Channel buffers
	BroadcastChannelBuffer int
	ClientSendBuffer       int

	// Database connections
	DBMaxOpenConns int
	DBMaxIdleConns int
}

// DefaultConfig returns sensible defaults for production.
func DefaultConfig() *Config {
	numCPU := runtime.NumCPU()

	return &Config{
		TickRate: 1 * time.Second,

		ClickBaseIncome: 1.0,
		ClickExperience: 1.0,

		StagnationFraction: 0.001, // 0.1% of balance per minute
		ProgressWindowMin:  60 * time.Second,
		CostReductionCap:   0.5,

		AutosaveInterval: 30 * time.Second,
		SaveMaxRetries:   5,
		SaveBackoffBase:  1 * time.Second,

		BroadcastChannelBuffer: 256,
		ClientSendBuffer:       64,

		DBMaxOpenConns: numCPU * 4,
		DBMaxIdleConns: numCPU * 2,
	}
}
