package engine

import (
	"math"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/resource"
)

// AccrualEngine advances generator production into the ledger for an
// elapsed-time delta. The computation is O(number of generator types),
// independent of how large the delta is, which is what makes offline
// catch-up over many hours cheap and exact.
type AccrualEngine struct {
	registry   *generator.Registry
	ledger     *resource.Ledger
	aggregator *Aggregator
}

// NewAccrualEngine wires an accrual engine over the registry and ledger.
func NewAccrualEngine(registry *generator.Registry, ledger *resource.Ledger, aggregator *Aggregator) *AccrualEngine {
	return &AccrualEngine{registry: registry, ledger: ledger, aggregator: aggregator}
}

// Advance credits production for dt seconds and returns the amounts
// actually credited per resource.
//
// Multipliers are looked up exactly once per call, so
// Advance(t1); Advance(t2) yields the same ledger delta as Advance(t1+t2)
// under a constant multiplier snapshot. dt values corrupted by clock skew
// (negative, NaN, Inf) are treated as zero.
func (a *AccrualEngine) Advance(dt float64) map[resource.Type]float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil
	}

	snap := a.aggregator.Snapshot()
	return a.AdvanceWith(dt, snap)
}

// AdvanceWith credits production using an already-captured multiplier
// snapshot. Split out so the session can apply one snapshot across an
// offline catch-up and its follow-up bookkeeping.
func (a *AccrualEngine) AdvanceWith(dt float64, snap MultiplierSnapshot) map[resource.Type]float64 {
	if math.IsNaN(dt) || math.IsInf(dt, 0) || dt <= 0 {
		return nil
	}

	factor := snap.Get(CategoryGeneratorIncome) * snap.Get(CategoryGlobalIncome)

	var credited map[resource.Type]float64
	cat := a.registry.Catalogue()
	for _, t := range cat.Types() {
		count := a.registry.Count(t)
		if count == 0 {
			continue
		}
		info, ok := cat.Info(t)
		if !ok {
			continue
		}

		production := info.BaseRate * float64(count) * dt * factor
		added := a.ledger.Add(info.Produces, production)
		if added > 0 {
			if credited == nil {
				credited = make(map[resource.Type]float64)
			}
			credited[info.Produces] += added
		}
	}
	return credited
}
