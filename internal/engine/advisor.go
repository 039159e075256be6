package engine

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
)

// Advisory is the read-only output consumed by the UI layer.
type Advisory struct {
	IsStagnating   bool    `json:"is_stagnating"`
	ProgressRate   float64 `json:"progress_rate"` // primary currency per minute
	Recommendation string  `json:"recommendation"`
}

// BalanceAdvisor watches the primary-currency trajectory, detects the
// progression wall, and recommends the next best purchase. It is strictly
// read-only over the other components.
type BalanceAdvisor struct {
	ledger         *resource.Ledger
	registry       *generator.Registry
	prestigeEngine *prestige.Engine
	aggregator     *Aggregator
	cycleEarned    func() float64

	stagnationFraction float64
	window             time.Duration
	now                func() time.Time

	lastSampleAt time.Time
	lastBalance  float64
	lastRate     float64
}

// NewBalanceAdvisor wires an advisor over the live components.
func NewBalanceAdvisor(
	ledger *resource.Ledger,
	registry *generator.Registry,
	prestigeEngine *prestige.Engine,
	aggregator *Aggregator,
	cycleEarned func() float64,
	stagnationFraction float64,
	window time.Duration,
) *BalanceAdvisor {
	return &BalanceAdvisor{
		ledger:             ledger,
		registry:           registry,
		prestigeEngine:     prestigeEngine,
		aggregator:         aggregator,
		cycleEarned:        cycleEarned,
		stagnationFraction: stagnationFraction,
		window:             window,
		now:                time.Now,
	}
}

// ProgressRate samples the primary-currency delta over the trailing window
// and returns it in currency per minute. Samples shorter than the window
// are rejected as noise: the previous value is returned unchanged.
func (b *BalanceAdvisor) ProgressRate() float64 {
	now := b.now()
	balance := b.ledger.Get(resource.Coins)

	if b.lastSampleAt.IsZero() {
		b.lastSampleAt = now
		b.lastBalance = balance
		return b.lastRate
	}

	elapsed := now.Sub(b.lastSampleAt)
	if elapsed < b.window {
		return b.lastRate
	}

	rate := (balance - b.lastBalance) / elapsed.Minutes()
	if rate < 0 {
		rate = 0
	}
	b.lastRate = rate
	b.lastSampleAt = now
	b.lastBalance = balance
	return rate
}

// IsStagnating reports the wall: the player is prestige-eligible yet growth
// has dropped below the stagnation fraction of the current balance per
// minute.
func (b *BalanceAdvisor) IsStagnating() bool {
	preview := b.prestigeEngine.Preview(prestige.TierSoft, b.cycleEarned())
	if !preview.Eligible {
		return false
	}
	return b.ProgressRate() < b.stagnationFraction*b.ledger.Get(resource.Coins)
}

// RecommendPurchase picks the affordable generator maximizing production
// gained per unit of cost; ties break towards the lowest absolute cost, the
// cheaper suggestion being the more immediately actionable one.
func (b *BalanceAdvisor) RecommendPurchase() (generator.Type, bool) {
	reduction := b.aggregator.Get(CategoryCostReduction)

	var best generator.Type
	bestEfficiency := 0.0
	bestCost := 0.0
	found := false

	cat := b.registry.Catalogue()
	for _, t := range cat.Types() {
		info, ok := cat.Info(t)
		if !ok {
			continue
		}
		if info.MaxCount > 0 && b.registry.Count(t) >= info.MaxCount {
			continue
		}

		cost := b.registry.DiscountedCost(t, reduction)
		if !b.ledger.CanAfford(info.CostsIn, cost) {
			continue
		}

		efficiency := info.BaseRate / cost
		if !found || efficiency > bestEfficiency ||
			(efficiency == bestEfficiency && cost < bestCost) {
			best = t
			bestEfficiency = efficiency
			bestCost = cost
			found = true
		}
	}
	return best, found
}

// Advise produces the advisory view. It never mutates economy state.
func (b *BalanceAdvisor) Advise() Advisory {
	adv := Advisory{
		IsStagnating: b.IsStagnating(),
		ProgressRate: b.lastRate,
	}

	rec, ok := b.RecommendPurchase()
	switch {
	case adv.IsStagnating && !ok:
		adv.Recommendation = "Progress has slowed to a crawl. Prestige now for permanent multipliers."
	case ok:
		info, _ := b.registry.Catalogue().Info(rec)
		cost := b.registry.DiscountedCost(rec, b.aggregator.Get(CategoryCostReduction))
		adv.Recommendation = fmt.Sprintf("Buy a %s for %s gold (+%s/s)",
			info.Name,
			humanize.CommafWithDigits(cost, 0),
			humanize.CommafWithDigits(info.BaseRate, 1))
	default:
		adv.Recommendation = "Keep accumulating gold, or consider a prestige."
	}
	return adv
}
