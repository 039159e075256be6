package engine

import "time"

// Boost is a temporary multiplier granted by the surrounding application
// (watching an ad, a premium consumable). It contributes its factor until
// it expires, then the identity; expired boosts never need removal by
// callers.
type Boost struct {
	Category  Category
	Factor    float64
	ExpiresAt time.Time
}

// BoostSource holds the active temporary boosts and implements Source.
type BoostSource struct {
	boosts []Boost
	now    func() time.Time
}

// NewBoostSource creates an empty boost source.
func NewBoostSource() *BoostSource {
	return &BoostSource{now: time.Now}
}

// Activate adds a temporary boost for the given duration.
func (b *BoostSource) Activate(cat Category, factor float64, duration time.Duration) Boost {
	boost := Boost{Category: cat, Factor: factor, ExpiresAt: b.now().Add(duration)}
	b.boosts = append(b.boosts, boost)
	return boost
}

// Multiplier implements Source. Active boosts for the category compose
// multiplicatively among themselves; expired entries are dropped lazily.
func (b *BoostSource) Multiplier(cat Category) float64 {
	now := b.now()
	factor := Identity(cat)

	live := b.boosts[:0]
	for _, boost := range b.boosts {
		if now.After(boost.ExpiresAt) {
			continue
		}
		live = append(live, boost)
		if boost.Category != cat {
			continue
		}
		if additiveCategories[cat] {
			factor += boost.Factor
		} else {
			factor *= boost.Factor
		}
	}
	b.boosts = live
	return factor
}

// ActiveCount returns how many boosts are currently live.
func (b *BoostSource) ActiveCount() int {
	now := b.now()
	n := 0
	for _, boost := range b.boosts {
		if !now.After(boost.ExpiresAt) {
			n++
		}
	}
	return n
}
