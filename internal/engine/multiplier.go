package engine

// Category identifies one multiplier channel composed by the aggregator.
type Category string

const (
	CategoryClickIncome     Category = "click_income"
	CategoryGeneratorIncome Category = "generator_income"
	CategoryGlobalIncome    Category = "global_income"
	CategoryCostReduction   Category = "cost_reduction"
	CategoryExperienceGain  Category = "experience_gain"
	CategoryCriticalChance  Category = "critical_chance"
	CategoryCriticalDamage  Category = "critical_damage"
)

// additiveCategories are composed by sum instead of product. Probability-like
// channels clamp to [0,1]; cost reduction clamps to the configured cap.
var additiveCategories = map[Category]bool{
	CategoryCostReduction:  true,
	CategoryCriticalChance: true,
}

// Identity returns the neutral contribution for a category: 1 for
// multiplicative channels, 0 for additive ones.
func Identity(cat Category) float64 {
	if additiveCategories[cat] {
		return 0
	}
	return 1
}

// Source is the capability every bonus provider implements (prestige,
// equipment, talents, boosts, achievements). A source that has nothing to
// say for a category returns the identity rather than being special-cased
// by callers.
type Source interface {
	Multiplier(cat Category) float64
}

// NopSource contributes the identity for every category. Collaborators that
// are disabled or absent register this instead of being probed for.
type NopSource struct{}

func (NopSource) Multiplier(cat Category) float64 {
	return Identity(cat)
}

// MultiplierSnapshot is a category-to-factor mapping captured at one point
// in time. It is recomputed on demand and never stored long-term, which is
// what keeps stale-cache bugs out of the accrual math.
type MultiplierSnapshot map[Category]float64

// Get returns the snapshot factor for a category, defaulting to identity.
func (s MultiplierSnapshot) Get(cat Category) float64 {
	if v, ok := s[cat]; ok {
		return v
	}
	return Identity(cat)
}

// Aggregator composes independent bonus sources into a single factor per
// category. Multiplicative channels compose by product; additive stacking
// across sources is deliberately not supported for them, as it is a known
// source of runaway balance.
type Aggregator struct {
	sources          []Source
	costReductionCap float64
}

// NewAggregator creates an aggregator with the given cost-reduction cap.
func NewAggregator(costReductionCap float64) *Aggregator {
	return &Aggregator{costReductionCap: costReductionCap}
}

// Register adds a bonus source. Sources are always re-pulled; registering
// is the only push that ever happens.
func (a *Aggregator) Register(src Source) {
	if src == nil {
		return
	}
	a.sources = append(a.sources, src)
}

// Get recomputes the composed factor for one category.
func (a *Aggregator) Get(cat Category) float64 {
	if additiveCategories[cat] {
		sum := 0.0
		for _, src := range a.sources {
			sum += src.Multiplier(cat)
		}
		if sum < 0 {
			sum = 0
		}
		limit := 1.0
		if cat == CategoryCostReduction {
			limit = a.costReductionCap
		}
		if sum > limit {
			sum = limit
		}
		return sum
	}

	product := 1.0
	for _, src := range a.sources {
		product *= src.Multiplier(cat)
	}
	return product
}

// Snapshot pulls every category once. One snapshot is taken per accrual
// call so the multiplier stays stable for the duration of the call.
func (a *Aggregator) Snapshot() MultiplierSnapshot {
	snap := make(MultiplierSnapshot, 7)
	for _, cat := range []Category{
		CategoryClickIncome, CategoryGeneratorIncome, CategoryGlobalIncome,
		CategoryCostReduction, CategoryExperienceGain,
		CategoryCriticalChance, CategoryCriticalDamage,
	} {
		snap[cat] = a.Get(cat)
	}
	return snap
}
