package resource

import (
	"math"
	"testing"
)

func TestSpendInsufficientLeavesBalanceUntouched(t *testing.T) {
	l := NewLedger()
	l.Set(Coins, 50)

	if l.Spend(Coins, 100) {
		t.Errorf("Expected spend of 100 against 50 to fail")
	}
	if got := l.Get(Coins); got != 50 {
		t.Errorf("Expected balance untouched at 50, got %f", got)
	}
}

func TestSpendExactBalance(t *testing.T) {
	l := NewLedger()
	l.Set(Coins, 100)

	if !l.Spend(Coins, 100) {
		t.Errorf("Expected spend of exactly the balance to succeed")
	}
	if got := l.Get(Coins); got != 0 {
		t.Errorf("Expected zero balance after spending everything, got %f", got)
	}
}

func TestAddClampsToMaximum(t *testing.T) {
	l := NewLedger()
	// Energy starts full at 100 and is capped at 100.
	added := l.Add(Energy, 50)
	if added != 0 {
		t.Errorf("Expected no energy added above the cap, got %f", added)
	}

	l.Set(Energy, 90)
	added = l.Add(Energy, 50)
	if added != 10 {
		t.Errorf("Expected only 10 energy added up to the cap, got %f", added)
	}
	if got := l.Get(Energy); got != 100 {
		t.Errorf("Expected energy capped at 100, got %f", got)
	}
}

func TestGarbageAmountsCollapseToZero(t *testing.T) {
	l := NewLedger()
	l.Set(Coins, 100)

	cases := []float64{-10, math.NaN(), math.Inf(1), math.Inf(-1)}
	for _, amount := range cases {
		if added := l.Add(Coins, amount); added != 0 {
			t.Errorf("Add(%f) should credit nothing, got %f", amount, added)
		}
		if !l.Spend(Coins, amount) {
			t.Errorf("Spend(%f) should be a successful no-op", amount)
		}
		if got := l.Get(Coins); got != 100 {
			t.Errorf("Balance drifted to %f after garbage amount %f", got, amount)
		}
	}

	l.Set(Coins, math.NaN())
	if got := l.Get(Coins); got != 0 {
		t.Errorf("Set(NaN) should clamp to zero, got %f", got)
	}
}

func TestConvertIsAtomic(t *testing.T) {
	l := NewLedger()
	l.Set(Coins, 100)

	// Insufficient source: nothing moves.
	if l.Convert(Coins, Iron, 200, 0.5) {
		t.Errorf("Expected conversion beyond balance to fail")
	}
	if l.Get(Coins) != 100 || l.Get(Iron) != 0 {
		t.Errorf("Failed conversion mutated balances: coins=%f iron=%f", l.Get(Coins), l.Get(Iron))
	}

	// Sufficient source: debit and credit together.
	if !l.Convert(Coins, Iron, 40, 0.5) {
		t.Errorf("Expected conversion within balance to succeed")
	}
	if l.Get(Coins) != 60 {
		t.Errorf("Expected 60 coins after converting 40, got %f", l.Get(Coins))
	}
	if l.Get(Iron) != 20 {
		t.Errorf("Expected 20 iron from 40 coins at rate 0.5, got %f", l.Get(Iron))
	}
}

func TestConvertRejectsZeroAndGarbageRates(t *testing.T) {
	l := NewLedger()
	l.Set(Coins, 100)

	if l.Convert(Coins, Iron, 50, 0) {
		t.Errorf("Expected zero-rate conversion to be rejected")
	}
	if l.Convert(Coins, Iron, 50, math.NaN()) {
		t.Errorf("Expected NaN-rate conversion to be rejected")
	}
	if l.Get(Coins) != 100 {
		t.Errorf("Rejected conversions must not touch the source, got %f", l.Get(Coins))
	}
}

func TestNewLedgerStartsWithFullEnergy(t *testing.T) {
	l := NewLedger()
	if got := l.Get(Energy); got != 100 {
		t.Errorf("Expected a fresh ledger to start with 100 energy, got %f", got)
	}
	if got := l.Get(Coins); got != 0 {
		t.Errorf("Expected a fresh ledger to start with 0 coins, got %f", got)
	}
}
