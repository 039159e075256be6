package prestige

// Result is the structured outcome of a prestige attempt. Ineligibility is
// an expected, non-fatal outcome, never an error.
type Result struct {
	Eligible       bool        `json:"eligible"`
	Tier           Tier        `json:"tier"`
	Missing        float64     `json:"missing,omitempty"` // primary currency short of the threshold
	CrystalsGained int64       `json:"crystals_gained"`
	CrystalsTotal  int64       `json:"crystals_total"`
	Multipliers    Multipliers `json:"multipliers"`
}

// Engine evaluates eligibility and commits prestige events against a State.
// The reset of ledger and generator counts belongs to the caller, which owns
// those components; the engine only transitions the persistent record.
type Engine struct {
	tiers map[Tier]TierInfo
	state *State
}

// NewEngine wires an engine around a persistent state and a tier table.
func NewEngine(state *State, tiers map[Tier]TierInfo) *Engine {
	return &Engine{state: state, tiers: tiers}
}

// State exposes the persistent record for snapshots and multiplier sources.
func (e *Engine) State() *State {
	return e.state
}

// TierInfo looks up a tier definition.
func (e *Engine) TierInfo(t Tier) (TierInfo, bool) {
	info, ok := e.tiers[t]
	return info, ok
}

// Preview computes what a prestige at the given tier would pay, given the
// primary currency earned this cycle, without committing anything.
func (e *Engine) Preview(tier Tier, cycleEarned float64) Result {
	info, ok := e.tiers[tier]
	if !ok {
		return Result{Eligible: false, Tier: tier}
	}

	// Eligibility is earned per cycle: the coins traded away by the reset
	// are the ones that must clear the threshold. Lifetime totals only size
	// the payout, so a fresh cycle always starts ineligible.
	if cycleEarned < info.Threshold {
		return Result{
			Eligible: false,
			Tier:     tier,
			Missing:  info.Threshold - cycleEarned,
		}
	}

	gained := CrystalsFor(info, e.state.LifetimeCoins+cycleEarned)
	after := *e.state
	after.Crystals += gained
	return Result{
		Eligible:       true,
		Tier:           tier,
		CrystalsGained: gained,
		CrystalsTotal:  after.Crystals,
		Multipliers:    after.Derived(),
	}
}

// Commit performs the prestige against the persistent record: folds the
// cycle earnings into the lifetime total, credits crystals, bumps the
// counters. On ineligibility the state is untouched and the returned result
// carries the missing amount.
func (e *Engine) Commit(tier Tier, cycleEarned float64) Result {
	res := e.Preview(tier, cycleEarned)
	if !res.Eligible {
		return res
	}

	e.state.LifetimeCoins += cycleEarned
	e.state.Crystals += res.CrystalsGained
	e.state.PrestigeCount++
	if e.state.TierCounts == nil {
		e.state.TierCounts = make(map[Tier]int64)
	}
	e.state.TierCounts[tier]++

	res.CrystalsTotal = e.state.Crystals
	res.Multipliers = e.state.Derived()
	return res
}
