package engine

import (
	"math"
	"testing"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
)

func newTestSession() *Session {
	return NewSession(config.DefaultConfig(), logger.NewLogger(), events.NewLog(nil))
}

func TestClickCreditsCoinsAndExperience(t *testing.T) {
	s := newTestSession()

	result := s.Click()
	if result.Gained < 1.0 {
		t.Errorf("Expected at least the base click income, got %f", result.Gained)
	}
	if result.Experience != 1.0 {
		t.Errorf("Expected 1 experience per click, got %f", result.Experience)
	}
	if got := s.Balance(resource.Coins); got != result.Gained {
		t.Errorf("Expected balance to match the click result, got %f vs %f", got, result.Gained)
	}
}

func TestPurchaseThroughSession(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 25)

	if !s.PurchaseGenerator(generator.Farm) {
		t.Fatalf("Expected farm purchase with 25 coins to succeed")
	}
	if got := s.Balance(resource.Coins); got != 15 {
		t.Errorf("Expected 15 coins left after a 10-coin farm, got %f", got)
	}
	if got := s.registry.Count(generator.Farm); got != 1 {
		t.Errorf("Expected 1 farm owned, got %d", got)
	}
}

func TestTickAccumulatesCycleEarnings(t *testing.T) {
	s := newTestSession()
	s.registry.SetCount(generator.Farm, 4)

	s.Tick(10) // 0.5 * 4 * 10 = 20 coins
	if got := s.Balance(resource.Coins); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected 20 coins after the tick, got %f", got)
	}
	if got := s.CycleEarned(); math.Abs(got-20) > 1e-9 {
		t.Errorf("Expected cycle earnings to track production, got %f", got)
	}
}

func TestPlayerLevelCurve(t *testing.T) {
	s := newTestSession()

	if got := s.PlayerLevel(); got != 1 {
		t.Errorf("Expected level 1 with no experience, got %d", got)
	}
	s.ledger.Set(resource.Experience, 100)
	if got := s.PlayerLevel(); got != 2 {
		t.Errorf("Expected level 2 at 100 XP, got %d", got)
	}
	s.ledger.Set(resource.Experience, 400)
	if got := s.PlayerLevel(); got != 3 {
		t.Errorf("Expected level 3 at 400 XP, got %d", got)
	}
}

func TestPrestigeIneligibleTouchesNothing(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 500_000)
	s.cycleEarned = 500_000
	s.registry.SetCount(generator.Farm, 10)

	res := s.PerformPrestige(prestige.TierSoft)
	if res.Eligible {
		t.Fatalf("Expected ineligibility at 500k cycle earnings")
	}
	if res.Missing != 500_000 {
		t.Errorf("Expected 500000 missing, got %f", res.Missing)
	}
	if s.Balance(resource.Coins) != 500_000 || s.registry.Count(generator.Farm) != 10 {
		t.Errorf("Ineligible prestige must not reset anything")
	}
}

func TestPrestigeResetProtocol(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 4_000_000)
	s.ledger.Set(resource.Iron, 300)
	s.ledger.Set(resource.Diamonds, 12)
	s.cycleEarned = 4_000_000
	s.registry.SetCount(generator.Farm, 50)
	s.registry.SetCount(generator.Bank, 5)
	s.achievements.OnClick() // unlock first_click

	res := s.PerformPrestige(prestige.TierSoft)
	if !res.Eligible {
		t.Fatalf("Expected eligibility at 4M cycle earnings")
	}
	if res.CrystalsGained != 2 {
		t.Errorf("Expected 2 crystals from 4M lifetime, got %d", res.CrystalsGained)
	}

	// Cycle progress is gone.
	if s.Balance(resource.Coins) != 0 {
		t.Errorf("Expected coins reset to 0, got %f", s.Balance(resource.Coins))
	}
	if s.Balance(resource.Iron) != 0 {
		t.Errorf("Expected iron reset to 0, got %f", s.Balance(resource.Iron))
	}
	if s.registry.Count(generator.Farm) != 0 || s.registry.Count(generator.Bank) != 0 {
		t.Errorf("Expected all generator counts reset")
	}
	if s.CycleEarned() != 0 {
		t.Errorf("Expected cycle earnings reset, got %f", s.CycleEarned())
	}

	// Permanent state survives.
	if s.Balance(resource.Crystals) != 2 {
		t.Errorf("Expected crystal balance to mirror the record, got %f", s.Balance(resource.Crystals))
	}
	if s.Balance(resource.Diamonds) != 12 {
		t.Errorf("Expected premium currency to survive, got %f", s.Balance(resource.Diamonds))
	}
	if s.Balance(resource.Energy) != 100 {
		t.Errorf("Expected a fresh cycle to start with full energy, got %f", s.Balance(resource.Energy))
	}
	if !s.achievements.Unlocked("first_click") {
		t.Errorf("Expected achievements to survive the reset")
	}
	if s.prestigeEngine.State().LifetimeCoins != 4_000_000 {
		t.Errorf("Expected lifetime record kept, got %f", s.prestigeEngine.State().LifetimeCoins)
	}
}

func TestPrestigeBackToBackPaysNothing(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 4_000_000)
	s.cycleEarned = 4_000_000

	first := s.PerformPrestige(prestige.TierSoft)
	if !first.Eligible || first.CrystalsGained != 2 {
		t.Fatalf("Expected the first prestige to pay 2 crystals, got %+v", first)
	}

	// The reset emptied the cycle, so repeating the prestige trades nothing
	// and must stay ineligible with the crystal total frozen.
	for i := 0; i < 3; i++ {
		res := s.PerformPrestige(prestige.TierSoft)
		if res.Eligible {
			t.Fatalf("Expected prestige %d after the reset to be ineligible, got %+v", i+2, res)
		}
	}
	if got := s.prestigeEngine.State().Crystals; got != 2 {
		t.Errorf("Expected crystal total frozen at 2, got %d", got)
	}
	if got := s.prestigeEngine.State().PrestigeCount; got != 1 {
		t.Errorf("Expected a single recorded prestige, got %d", got)
	}
}

func TestPrestigeMultipliersFeedIncome(t *testing.T) {
	s := newTestSession()
	s.cycleEarned = 4_000_000
	s.ledger.Set(resource.Coins, 4_000_000)
	s.PerformPrestige(prestige.TierSoft)

	// 2 crystals: +20% global income on the next cycle.
	if got := s.aggregator.Get(CategoryGlobalIncome); got < 1.2 {
		t.Errorf("Expected at least 1.2x global income with 2 crystals, got %f", got)
	}
}

func TestConvertResourceThroughSession(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 100)

	if !s.ConvertResource(resource.Coins, resource.Wood, 50, 2) {
		t.Fatalf("Expected a valid conversion to succeed")
	}
	if s.Balance(resource.Coins) != 50 || s.Balance(resource.Wood) != 100 {
		t.Errorf("Expected 50 coins and 100 wood, got %f and %f",
			s.Balance(resource.Coins), s.Balance(resource.Wood))
	}

	if s.ConvertResource(resource.Type("mana"), resource.Coins, 10, 1) {
		t.Errorf("Expected conversion from an unknown resource to be rejected")
	}
}

func TestSnapshotRestoreRoundTrip(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 123_456)
	s.ledger.Set(resource.Experience, 900)
	s.registry.SetCount(generator.Farm, 17)
	s.cycleEarned = 123_456
	s.prestigeEngine.State().Crystals = 5
	s.prestigeEngine.State().LifetimeCoins = 9_000_000
	s.achievements.Restore(1_200, 60, 2)

	snap := s.Snapshot()

	restored := newTestSession()
	restored.Restore(snap)

	if got := restored.Balance(resource.Coins); got != 123_456 {
		t.Errorf("Expected 123456 coins restored, got %f", got)
	}
	if got := restored.registry.Count(generator.Farm); got != 17 {
		t.Errorf("Expected 17 farms restored, got %d", got)
	}
	if got := restored.CycleEarned(); got != 123_456 {
		t.Errorf("Expected cycle earnings restored, got %f", got)
	}
	state := restored.prestigeEngine.State()
	if state.Crystals != 5 || state.LifetimeCoins != 9_000_000 {
		t.Errorf("Expected prestige record restored, got %+v", state)
	}

	// Achievement unlocks rederive from the restored counters.
	if !restored.achievements.Unlocked("clicks_1k") {
		t.Errorf("Expected clicks_1k rederived from 1200 restored clicks")
	}
	if !restored.achievements.Unlocked("first_prestige") {
		t.Errorf("Expected first_prestige rederived from 2 restored prestiges")
	}
}

func TestRestoreSkipsUnknownIdentifiers(t *testing.T) {
	s := newTestSession()

	snap := Snapshot{
		Balances:   map[resource.Type]float64{resource.Coins: 777, "mana": 999},
		Generators: map[generator.Type]int{generator.Farm: 3, "castle": 9},
		Prestige:   prestige.State{TierCounts: map[prestige.Tier]int64{}},
	}
	s.Restore(snap)

	if got := s.Balance(resource.Coins); got != 777 {
		t.Errorf("Expected known balance restored, got %f", got)
	}
	if got := s.Balance(resource.Type("mana")); got != 0 {
		t.Errorf("Expected unknown resource skipped, got %f", got)
	}
	if got := s.registry.Count(generator.Farm); got != 3 {
		t.Errorf("Expected known generator restored, got %d", got)
	}
	if got := s.registry.Count(generator.Type("castle")); got != 0 {
		t.Errorf("Expected unknown generator skipped, got %d", got)
	}
}

func TestViewIsConsistent(t *testing.T) {
	s := newTestSession()
	s.ledger.Set(resource.Coins, 1_000)
	s.registry.SetCount(generator.Farm, 3)

	view := s.View()
	if view.Balances[resource.Coins] != 1_000 {
		t.Errorf("Expected 1000 coins in the view, got %f", view.Balances[resource.Coins])
	}
	if len(view.Generators) != 9 {
		t.Errorf("Expected all 9 catalogue generators in the view, got %d", len(view.Generators))
	}
	if len(view.Previews) != 3 {
		t.Errorf("Expected previews for all 3 tiers, got %d", len(view.Previews))
	}
	for _, gv := range view.Generators {
		if gv.Type == generator.Farm {
			if gv.Count != 3 {
				t.Errorf("Expected farm count 3 in the view, got %d", gv.Count)
			}
			if !gv.CanAfford {
				t.Errorf("Expected a farm to be affordable at 1000 coins")
			}
		}
	}
}
