package engine

import (
	"time"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
)

// GeneratorView is the read-only projection of one generator for the UI.
type GeneratorView struct {
	Type                generator.Type `json:"type"`
	Name                string         `json:"name"`
	Emoji               string         `json:"emoji"`
	Count               int            `json:"count"`
	Cost                float64        `json:"cost"`
	CanAfford           bool           `json:"can_afford"`
	ProductionPerSecond float64        `json:"production_per_second"`
	Unlocked            bool           `json:"unlocked"`
}

// StateView is the consistent read-only projection served to UI clients.
type StateView struct {
	Balances    map[resource.Type]float64         `json:"balances"`
	PlayerLevel int                               `json:"player_level"`
	CycleEarned float64                           `json:"cycle_earned"`
	Generators  []GeneratorView                   `json:"generators"`
	Prestige    prestige.Multipliers              `json:"prestige_multipliers"`
	Previews    map[prestige.Tier]prestige.Result `json:"prestige_previews"`
	Advisory    Advisory                          `json:"advisory"`
}

// GeneratorViewFor projects one generator.
func (s *Session) GeneratorViewFor(t generator.Type) (GeneratorView, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.generatorViewLocked(t)
}

func (s *Session) generatorViewLocked(t generator.Type) (GeneratorView, bool) {
	info, ok := s.registry.Catalogue().Info(t)
	if !ok {
		s.logger.Warn("unknown generator type %q in view request", t)
		return GeneratorView{}, false
	}

	reduction := s.aggregator.Get(CategoryCostReduction)
	cost := s.registry.DiscountedCost(t, reduction)
	return GeneratorView{
		Type:                t,
		Name:                info.Name,
		Emoji:               info.Emoji,
		Count:               s.registry.Count(t),
		Cost:                cost,
		CanAfford:           s.ledger.CanAfford(info.CostsIn, cost),
		ProductionPerSecond: s.registry.ProductionPerSecond(t),
		Unlocked:            s.playerLevelLocked() >= info.UnlockLevel,
	}, true
}

// PrestigePreview reports what a prestige at the tier would pay right now,
// without committing anything.
func (s *Session) PrestigePreview(tier prestige.Tier) prestige.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.prestigeEngine.Preview(tier, s.cycleEarned)
}

// Advisory produces the stagnation/recommendation view.
func (s *Session) Advisory() Advisory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.advisor.Advise()
}

// View captures the full consistent state projection under one lock hold.
func (s *Session) View() StateView {
	s.mu.Lock()
	defer s.mu.Unlock()

	view := StateView{
		Balances:    s.ledger.Balances(),
		PlayerLevel: s.playerLevelLocked(),
		CycleEarned: s.cycleEarned,
		Prestige:    s.prestigeEngine.State().Derived(),
		Previews:    make(map[prestige.Tier]prestige.Result, 3),
		Advisory:    s.advisor.Advise(),
	}
	for _, t := range s.registry.Catalogue().Types() {
		if gv, ok := s.generatorViewLocked(t); ok {
			view.Generators = append(view.Generators, gv)
		}
	}
	for _, tier := range []prestige.Tier{prestige.TierSoft, prestige.TierHard, prestige.TierDimensional} {
		view.Previews[tier] = s.prestigeEngine.Preview(tier, s.cycleEarned)
	}
	return view
}

// Snapshot is the atomically captured persistence image of one session:
// ledger balances, generator counts, the prestige record, and the
// achievement counters it is rederived from.
type Snapshot struct {
	Balances    map[resource.Type]float64
	Generators  map[generator.Type]int
	Prestige    prestige.State
	CycleEarned float64
	Clicks      int64
	Purchases   int64
	Prestiges   int64
	CapturedAt  time.Time
}

// Snapshot captures a consistent image under the session lock. The caller
// (the checkpointer) persists it outside the lock so saving never holds up
// the mutation path.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := Snapshot{
		Balances:    s.ledger.Balances(),
		Generators:  make(map[generator.Type]int),
		Prestige:    *s.prestigeEngine.State(),
		CycleEarned: s.cycleEarned,
		CapturedAt:  time.Now(),
	}
	snap.Prestige.TierCounts = make(map[prestige.Tier]int64, len(s.prestigeEngine.State().TierCounts))
	for tier, n := range s.prestigeEngine.State().TierCounts {
		snap.Prestige.TierCounts[tier] = n
	}
	for _, t := range s.registry.Catalogue().Types() {
		snap.Generators[t] = s.registry.Count(t)
	}
	snap.Clicks, snap.Purchases, snap.Prestiges = s.achievements.Counters()
	return snap
}

// Restore reloads a persisted snapshot into the live session. Unknown
// resource or generator identifiers in the snapshot are logged and skipped
// rather than crashing the load.
func (s *Session) Restore(snap Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for t, amount := range snap.Balances {
		if _, ok := resource.InfoFor(t); !ok {
			s.logger.Warn("unknown resource %q in snapshot, skipping", t)
			continue
		}
		s.ledger.Set(t, amount)
	}
	for t, count := range snap.Generators {
		if _, ok := s.registry.Catalogue().Info(t); !ok {
			s.logger.Warn("unknown generator %q in snapshot, skipping", t)
			continue
		}
		s.registry.SetCount(t, count)
	}

	state := s.prestigeEngine.State()
	state.LifetimeCoins = snap.Prestige.LifetimeCoins
	state.Crystals = snap.Prestige.Crystals
	state.PrestigeCount = snap.Prestige.PrestigeCount
	state.TierCounts = make(map[prestige.Tier]int64, len(snap.Prestige.TierCounts))
	for tier, n := range snap.Prestige.TierCounts {
		state.TierCounts[tier] = n
	}

	s.cycleEarned = snap.CycleEarned
	s.achievements.Restore(snap.Clicks, snap.Purchases, snap.Prestiges)
}
