package generator

import (
	"math"

	"github.com/sikidle/server/internal/domain/resource"
)

// saturationExponent is the magnitude (in natural log of the cost) beyond
// which cost math switches to saturation instead of unbounded float growth.
const saturationExponent = 700 // e^709 overflows float64

// PurchaseHook is notified after every successful purchase. Hook errors are
// reported to the registry's observer but never unwind the purchase.
type PurchaseHook func(t Type, newCount int) error

// Wallet is the slice of the ledger the registry needs: an atomic spend.
type Wallet interface {
	Spend(t resource.Type, amount float64) bool
}

// Observer receives registry diagnostics. The zero value ignores everything.
type Observer interface {
	Warn(format string, v ...interface{})
	Event(eventType string, actorID string, details string)
}

// nopObserver swallows diagnostics when no observer is wired.
type nopObserver struct{}

func (nopObserver) Warn(string, ...interface{})  {}
func (nopObserver) Event(string, string, string) {}

// Instance is the owned state for one generator type. Accrual timing lives
// with the engine's centralized tick, not per instance.
type Instance struct {
	Count int
}

// Registry tracks owned counts against the immutable catalogue.
type Registry struct {
	catalogue *Catalogue
	owned     map[Type]*Instance
	hook      PurchaseHook
	observer  Observer
}

// NewRegistry creates a registry with zero of everything owned.
func NewRegistry(catalogue *Catalogue, observer Observer) *Registry {
	if observer == nil {
		observer = nopObserver{}
	}
	r := &Registry{
		catalogue: catalogue,
		owned:     make(map[Type]*Instance, len(catalogue.order)),
		observer:  observer,
	}
	for _, t := range catalogue.order {
		r.owned[t] = &Instance{}
	}
	return r
}

// SetPurchaseHook installs the post-purchase callback (achievement tracking
// and the like). Only one hook is supported; the session fans out.
func (r *Registry) SetPurchaseHook(hook PurchaseHook) {
	r.hook = hook
}

// Catalogue exposes the immutable catalogue for views.
func (r *Registry) Catalogue() *Catalogue {
	return r.catalogue
}

// Count returns the owned count for a generator type.
// Unknown types are a catalogue defect: logged loudly, treated as zero.
func (r *Registry) Count(t Type) int {
	inst, ok := r.owned[t]
	if !ok {
		r.observer.Warn("unknown generator type %q in Count, treating as 0", t)
		return 0
	}
	return inst.Count
}

// SetCount overwrites an owned count. Used by snapshot restore and the
// prestige reset; negative counts clamp to zero.
func (r *Registry) SetCount(t Type, count int) {
	inst, ok := r.owned[t]
	if !ok {
		r.observer.Warn("unknown generator type %q in SetCount, ignoring", t)
		return
	}
	if count < 0 {
		count = 0
	}
	inst.Count = count
}

// ResetAll zeroes every owned count. The catalogue is untouched.
func (r *Registry) ResetAll() {
	for _, inst := range r.owned {
		inst.Count = 0
	}
}

// CurrentCost returns the cost of the next unit:
// floor(baseCost * growth^count), strictly increasing in count because
// growth > 1 by construction. Once the exponent would overflow float64 the
// cost saturates at +Inf magnitude capped to MaxFloat64.
func (r *Registry) CurrentCost(t Type) float64 {
	info, ok := r.catalogue.Info(t)
	if !ok {
		r.observer.Warn("unknown generator type %q in CurrentCost", t)
		return math.MaxFloat64
	}
	return costAt(info, r.Count(t))
}

// costAt computes the purchase cost for a given owned count, working in the
// log domain once the raw power would overflow.
func costAt(info Info, count int) float64 {
	logCost := math.Log(info.BaseCost) + float64(count)*math.Log(info.CostGrowth)
	if logCost > saturationExponent {
		return math.MaxFloat64
	}
	return math.Floor(info.BaseCost * math.Pow(info.CostGrowth, float64(count)))
}

// DiscountedCost applies a cost-reduction fraction (0..1) to the current
// cost, flooring the result. A zero reduction returns CurrentCost unchanged.
func (r *Registry) DiscountedCost(t Type, reduction float64) float64 {
	cost := r.CurrentCost(t)
	if reduction <= 0 {
		return cost
	}
	if reduction > 1 {
		reduction = 1
	}
	return math.Floor(cost * (1 - reduction))
}

// ProductionPerSecond returns baseRate * count for a type, pre-multiplier.
// Bonus application is the accrual engine's job, which keeps the cost and
// production formulas independent of bonus state.
func (r *Registry) ProductionPerSecond(t Type) float64 {
	info, ok := r.catalogue.Info(t)
	if !ok {
		r.observer.Warn("unknown generator type %q in ProductionPerSecond", t)
		return 0
	}
	return info.BaseRate * float64(r.Count(t))
}

// Purchase buys one unit of a generator: rejects at the configured maximum,
// spends the discounted cost through the wallet, then increments the count
// and fires the purchase hook. A failing hook is logged, never unwound.
func (r *Registry) Purchase(t Type, wallet Wallet, costReduction float64) bool {
	info, ok := r.catalogue.Info(t)
	if !ok {
		r.observer.Warn("unknown generator type %q in Purchase, rejecting", t)
		return false
	}
	inst := r.owned[t]

	if info.MaxCount > 0 && inst.Count >= info.MaxCount {
		return false
	}

	cost := r.DiscountedCost(t, costReduction)
	if !wallet.Spend(info.CostsIn, cost) {
		return false
	}

	inst.Count++
	r.observer.Event("GENERATOR_PURCHASED", string(t), info.Name)

	if r.hook != nil {
		if err := r.hook(t, inst.Count); err != nil {
			r.observer.Warn("purchase hook failed for %s: %v", t, err)
		}
	}
	return true
}
