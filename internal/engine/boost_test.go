package engine

import (
	"testing"
	"time"
)

// fakeClock lets tests move time forward deterministically.
type fakeClock struct {
	current time.Time
}

func (c *fakeClock) now() time.Time {
	return c.current
}

func (c *fakeClock) advance(d time.Duration) {
	c.current = c.current.Add(d)
}

func TestBoostContributesWhileActive(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_000_000, 0)}
	b := NewBoostSource()
	b.now = clock.now

	b.Activate(CategoryGeneratorIncome, 2.0, 30*time.Second)

	if got := b.Multiplier(CategoryGeneratorIncome); got != 2.0 {
		t.Errorf("Expected active boost factor 2.0, got %f", got)
	}
	if got := b.Multiplier(CategoryClickIncome); got != 1.0 {
		t.Errorf("Expected identity for an unboosted category, got %f", got)
	}
}

func TestBoostExpiresToIdentity(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_000_000, 0)}
	b := NewBoostSource()
	b.now = clock.now

	b.Activate(CategoryGeneratorIncome, 2.0, 30*time.Second)
	clock.advance(31 * time.Second)

	if got := b.Multiplier(CategoryGeneratorIncome); got != 1.0 {
		t.Errorf("Expected expired boost to contribute the identity, got %f", got)
	}
	if got := b.ActiveCount(); got != 0 {
		t.Errorf("Expected no active boosts after expiry, got %d", got)
	}
}

func TestOverlappingBoostsCompose(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_000_000, 0)}
	b := NewBoostSource()
	b.now = clock.now

	b.Activate(CategoryGeneratorIncome, 2.0, 60*time.Second)
	b.Activate(CategoryGeneratorIncome, 3.0, 60*time.Second)

	if got := b.Multiplier(CategoryGeneratorIncome); got != 6.0 {
		t.Errorf("Expected overlapping boosts to multiply to 6.0, got %f", got)
	}

	// Additive channel boosts stack by sum instead.
	b.Activate(CategoryCriticalChance, 0.1, 60*time.Second)
	b.Activate(CategoryCriticalChance, 0.2, 60*time.Second)
	if got := b.Multiplier(CategoryCriticalChance); got < 0.299 || got > 0.301 {
		t.Errorf("Expected additive boosts to sum to 0.3, got %f", got)
	}
}

func TestPartialExpiryKeepsTheRemainingBoost(t *testing.T) {
	clock := &fakeClock{current: time.Unix(1_000_000, 0)}
	b := NewBoostSource()
	b.now = clock.now

	b.Activate(CategoryGeneratorIncome, 2.0, 10*time.Second)
	b.Activate(CategoryGeneratorIncome, 3.0, 60*time.Second)
	clock.advance(20 * time.Second)

	if got := b.Multiplier(CategoryGeneratorIncome); got != 3.0 {
		t.Errorf("Expected only the long boost to survive, got %f", got)
	}
	if got := b.ActiveCount(); got != 1 {
		t.Errorf("Expected one surviving boost, got %d", got)
	}
}
