package engine

import "github.com/sikidle/server/internal/domain/prestige"

// prestigeSource adapts the persistent prestige record into a multiplier
// source. The crystal income bonus feeds the global-income channel only;
// the generator-income channel is left to building-specific sources, so the
// same crystals are never counted twice in the accrual product.
type prestigeSource struct {
	state *prestige.State
}

func (p prestigeSource) Multiplier(cat Category) float64 {
	switch cat {
	case CategoryGlobalIncome:
		return prestige.IncomeMultiplier(p.state.Crystals)
	case CategoryCostReduction:
		return prestige.CostReduction(p.state.Crystals)
	case CategoryExperienceGain:
		return prestige.ExperienceBonus(p.state.Crystals)
	default:
		return Identity(cat)
	}
}
