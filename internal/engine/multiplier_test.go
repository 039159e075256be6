package engine

import (
	"math"
	"testing"
)

// fixedSource contributes a fixed factor for one category and the identity
// for everything else.
type fixedSource struct {
	cat    Category
	factor float64
}

func (f fixedSource) Multiplier(cat Category) float64 {
	if cat == f.cat {
		return f.factor
	}
	return Identity(cat)
}

func TestMultiplicativeComposition(t *testing.T) {
	agg := NewAggregator(0.5)
	agg.Register(fixedSource{CategoryGeneratorIncome, 1.5})
	agg.Register(fixedSource{CategoryGeneratorIncome, 2.0})

	if got := agg.Get(CategoryGeneratorIncome); math.Abs(got-3.0) > 1e-9 {
		t.Errorf("Expected 1.5 * 2.0 = 3.0, got %f", got)
	}
}

func TestEmptyAggregatorReturnsIdentity(t *testing.T) {
	agg := NewAggregator(0.5)

	if got := agg.Get(CategoryGlobalIncome); got != 1.0 {
		t.Errorf("Expected identity 1.0 for an empty multiplicative channel, got %f", got)
	}
	if got := agg.Get(CategoryCriticalChance); got != 0.0 {
		t.Errorf("Expected identity 0.0 for an empty additive channel, got %f", got)
	}
}

func TestCriticalChanceClampedToProbability(t *testing.T) {
	agg := NewAggregator(0.5)
	agg.Register(fixedSource{CategoryCriticalChance, 0.7})
	agg.Register(fixedSource{CategoryCriticalChance, 0.6})

	if got := agg.Get(CategoryCriticalChance); got != 1.0 {
		t.Errorf("Expected critical chance clamped to 1.0, got %f", got)
	}
}

func TestNegativeAdditiveSumClampsToZero(t *testing.T) {
	agg := NewAggregator(0.5)
	agg.Register(fixedSource{CategoryCriticalChance, -0.3})

	if got := agg.Get(CategoryCriticalChance); got != 0.0 {
		t.Errorf("Expected negative additive sum clamped to 0, got %f", got)
	}
}

func TestCostReductionCappedAtConfiguredCap(t *testing.T) {
	agg := NewAggregator(0.5)
	agg.Register(fixedSource{CategoryCostReduction, 0.3})
	agg.Register(fixedSource{CategoryCostReduction, 0.4})

	if got := agg.Get(CategoryCostReduction); got != 0.5 {
		t.Errorf("Expected cost reduction capped at 0.5, got %f", got)
	}
}

func TestNopSourceIsNeutralEverywhere(t *testing.T) {
	agg := NewAggregator(0.5)
	agg.Register(fixedSource{CategoryGlobalIncome, 2.0})
	agg.Register(NopSource{})
	agg.Register(NopSource{})

	if got := agg.Get(CategoryGlobalIncome); got != 2.0 {
		t.Errorf("Expected nop sources to not change the product, got %f", got)
	}
	if got := agg.Get(CategoryCostReduction); got != 0.0 {
		t.Errorf("Expected nop sources to not change the sum, got %f", got)
	}
}

func TestSnapshotDefaultsToIdentity(t *testing.T) {
	snap := MultiplierSnapshot{}
	if got := snap.Get(CategoryClickIncome); got != 1.0 {
		t.Errorf("Expected missing multiplicative entry to read as 1.0, got %f", got)
	}
	if got := snap.Get(CategoryCostReduction); got != 0.0 {
		t.Errorf("Expected missing additive entry to read as 0.0, got %f", got)
	}
}
