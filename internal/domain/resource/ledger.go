package resource

import "math"

// Ledger maps resource types to non-negative balances.
//
// The ledger itself carries no lock: every mutation must come through the
// single serialized session path, which is what makes Spend and Convert
// atomic with respect to each other.
type Ledger struct {
	balances map[Type]float64
}

// NewLedger creates a ledger with every catalogue resource at zero,
// except Energy which starts full.
func NewLedger() *Ledger {
	l := &Ledger{balances: make(map[Type]float64, len(AllTypes))}
	for _, t := range AllTypes {
		l.balances[t] = 0
	}
	l.balances[Energy] = 100
	return l
}

// sanitize clamps wall-clock-derived garbage before it touches a balance.
// Negative, NaN and infinite amounts all collapse to zero.
func sanitize(amount float64) float64 {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		return 0
	}
	return amount
}

// Get returns the current balance for a resource type.
func (l *Ledger) Get(t Type) float64 {
	return l.balances[t]
}

// Set overwrites a balance, clamping to [0, max].
func (l *Ledger) Set(t Type, amount float64) {
	if math.IsNaN(amount) || math.IsInf(amount, 0) || amount < 0 {
		amount = 0
	}
	if info, ok := catalogue[t]; ok && info.Max > 0 && amount > info.Max {
		amount = info.Max
	}
	l.balances[t] = amount
}

// Add credits a resource and returns the amount actually added after the
// configured maximum is applied. Callers must use the return value, not the
// requested amount, for anything downstream.
func (l *Ledger) Add(t Type, amount float64) float64 {
	amount = sanitize(amount)
	if amount == 0 {
		return 0
	}

	current := l.balances[t]
	next := current + amount
	if info, ok := catalogue[t]; ok && info.Max > 0 && next > info.Max {
		next = info.Max
	}
	l.balances[t] = next
	return next - current
}

// Spend debits a resource atomically: it succeeds iff the balance covers the
// full amount. There are no partial spends.
func (l *Ledger) Spend(t Type, amount float64) bool {
	amount = sanitize(amount)
	if amount == 0 {
		return true
	}
	if l.balances[t] < amount {
		return false
	}
	l.balances[t] -= amount
	return true
}

// CanAfford reports whether a spend of the given amount would succeed.
func (l *Ledger) CanAfford(t Type, amount float64) bool {
	return l.balances[t] >= sanitize(amount)
}

// Convert exchanges one resource for another at the given rate.
// The debit and credit happen as one unit: if the debit fails the ledger is
// untouched, and a successful debit is always followed by the credit.
func (l *Ledger) Convert(from, to Type, amount, rate float64) bool {
	amount = sanitize(amount)
	rate = sanitize(rate)
	if amount == 0 || rate == 0 {
		return false
	}
	if !l.Spend(from, amount) {
		return false
	}
	l.Add(to, amount*rate)
	return true
}

// Balances returns a copy of every balance, for snapshots and views.
func (l *Ledger) Balances() map[Type]float64 {
	out := make(map[Type]float64, len(l.balances))
	for t, v := range l.balances {
		out[t] = v
	}
	return out
}
