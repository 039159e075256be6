// Package prestige implements the permanent-progression layer: lifetime
// totals, crystal derivation, and the multipliers crystals grant. This
// package is PURE and must NOT import any infrastructure packages.
package prestige

import "math"

// Tier identifies a prestige tier. Tiers are independent and always
// player-selected, never auto-escalated.
type Tier string

const (
	TierSoft        Tier = "soft"
	TierHard        Tier = "hard"
	TierDimensional Tier = "dimensional"
)

// TierInfo holds the static parameters of a prestige tier.
type TierInfo struct {
	Name              string
	Threshold         float64 // lifetime primary currency required
	Normalization     float64 // divisor inside the sqrt of the crystal formula
	CrystalMultiplier float64
}

// DefaultTiers returns the standard tier table. The crystal formula uses
// the same normalization for every tier; higher tiers only gate harder and
// pay out a flat multiple.
func DefaultTiers() map[Tier]TierInfo {
	return map[Tier]TierInfo{
		TierSoft:        {Name: "Soft Prestige", Threshold: 1_000_000, Normalization: 1_000_000, CrystalMultiplier: 1},
		TierHard:        {Name: "Hard Prestige", Threshold: 1_000_000_000, Normalization: 1_000_000, CrystalMultiplier: 2},
		TierDimensional: {Name: "Dimensional Prestige", Threshold: 1_000_000_000_000, Normalization: 1_000_000, CrystalMultiplier: 5},
	}
}

// Per-crystal bonus rates. The multipliers below are always recomputed from
// the crystal count, never accumulated incrementally, so they stay
// recomputable from persisted state alone.
const (
	incomePerCrystal    = 0.10 // +10% income per crystal
	costReductionStep   = 0.01 // -1% cost per 5 crystals
	costReductionPer    = 5
	costReductionCap    = 0.5
	experienceBonusStep = 0.10 // +10% experience per 10 crystals
	experienceBonusPer  = 10
)

// State is the persistent prestige record. It survives every reset; only
// the active-cycle ledger and generator counts are zeroed by a prestige.
type State struct {
	LifetimeCoins float64
	Crystals      int64
	PrestigeCount int64
	TierCounts    map[Tier]int64
}

// NewState returns a zeroed prestige record.
func NewState() *State {
	return &State{TierCounts: make(map[Tier]int64)}
}

// CrystalsFor computes the crystals a prestige at the given tier would pay
// for a lifetime total: floor(max(1, floor(sqrt(lifetime/normalization))) *
// tier multiplier), or zero below the normalization floor. Monotonically
// non-decreasing in lifetime.
func CrystalsFor(tier TierInfo, lifetime float64) int64 {
	if lifetime < tier.Normalization || tier.Normalization <= 0 {
		return 0
	}
	base := math.Floor(math.Sqrt(lifetime / tier.Normalization))
	if base < 1 {
		base = 1
	}
	return int64(math.Floor(base * tier.CrystalMultiplier))
}

// IncomeMultiplier is the income factor granted by a crystal count.
func IncomeMultiplier(crystals int64) float64 {
	return 1.0 + float64(crystals)*incomePerCrystal
}

// CostReduction is the additive cost-reduction fraction granted by a
// crystal count, capped.
func CostReduction(crystals int64) float64 {
	reduction := float64(crystals/costReductionPer) * costReductionStep
	return math.Min(costReductionCap, reduction)
}

// ExperienceBonus is the experience-gain factor granted by a crystal count.
func ExperienceBonus(crystals int64) float64 {
	return 1.0 + float64(crystals/experienceBonusPer)*experienceBonusStep
}

// Multipliers bundles the derived multiplier set for views.
type Multipliers struct {
	Income          float64 `json:"income"`
	GeneratorIncome float64 `json:"generator_income"`
	CostReduction   float64 `json:"cost_reduction"`
	ExperienceBonus float64 `json:"experience_bonus"`
}

// Derived recomputes the full multiplier set from the crystal count.
func (s *State) Derived() Multipliers {
	return Multipliers{
		Income:          IncomeMultiplier(s.Crystals),
		GeneratorIncome: IncomeMultiplier(s.Crystals),
		CostReduction:   CostReduction(s.Crystals),
		ExperienceBonus: ExperienceBonus(s.Crystals),
	}
}
