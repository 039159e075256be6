package engine

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/domain/prestige"
	"github.com/sikidle/server/internal/domain/resource"
	"github.com/sikidle/server/internal/events"
	"github.com/sikidle/server/internal/platform/config"
	"github.com/sikidle/server/internal/platform/logger"
)

// Session is the single mutation authority for one player's economy.
//
// ARCHITECTURAL RULE: every mutation (tick, click, purchase, conversion,
// prestige) is serialized through the session mutex. Collaborators read
// views or append requests; they never touch the ledger or registry
// directly, which is what makes double-spends impossible under bursty
// input.
type Session struct {
	mu sync.Mutex

	cfg    *config.Config
	logger *logger.Logger

	ledger         *resource.Ledger
	registry       *generator.Registry
	prestigeEngine *prestige.Engine
	aggregator     *Aggregator
	accrual        *AccrualEngine
	advisor        *BalanceAdvisor
	boosts         *BoostSource
	achievements   *AchievementTracker

	eventLog *events.Log
	rng      *rand.Rand

	// cycleEarned is the primary currency earned since the last prestige.
	cycleEarned float64
}

// NewSession wires up the whole economy core with default catalogue data.
func NewSession(cfg *config.Config, log *logger.Logger, eventLog *events.Log) *Session {
	ledger := resource.NewLedger()
	registry := generator.NewRegistry(generator.DefaultCatalogue(), log)
	prestigeEngine := prestige.NewEngine(prestige.NewState(), prestige.DefaultTiers())
	aggregator := NewAggregator(cfg.CostReductionCap)

	s := &Session{
		cfg:            cfg,
		logger:         log,
		ledger:         ledger,
		registry:       registry,
		prestigeEngine: prestigeEngine,
		aggregator:     aggregator,
		boosts:         NewBoostSource(),
		achievements:   NewAchievementTracker(log),
		eventLog:       eventLog,
		rng:            rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	s.accrual = NewAccrualEngine(registry, ledger, aggregator)
	s.advisor = NewBalanceAdvisor(
		ledger, registry, prestigeEngine, aggregator,
		func() float64 { return s.cycleEarned },
		cfg.StagnationFraction, cfg.ProgressWindowMin,
	)

	// Built-in bonus sources. External collaborators (equipment, talents)
	// register through RegisterBonusSource; an absent collaborator simply
	// never registers and contributes the identity.
	aggregator.Register(prestigeSource{state: prestigeEngine.State()})
	aggregator.Register(s.boosts)
	aggregator.Register(s.achievements)

	registry.SetPurchaseHook(s.onPurchase)
	s.achievements.SetUnlockCallback(func(a Achievement) {
		s.appendEvent(events.EventTypeAchievement, a.ID)
	})

	return s
}

// RegisterBonusSource attaches an external multiplier provider (equipment,
// talents, or anything else implementing Source).
func (s *Session) RegisterBonusSource(src Source) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.aggregator.Register(src)
}

func (s *Session) appendEvent(t events.EventType, payload interface{}) {
	if s.eventLog == nil {
		return
	}
	s.eventLog.Append(events.GameEvent{
		ID:        events.GenerateEventID(),
		Timestamp: time.Now(),
		Type:      t,
		ActorID:   "player",
		Payload:   payload,
	})
}

// onPurchase fans the purchase hook out to collaborators. Hook failures are
// contained inside the registry and never unwind the purchase.
func (s *Session) onPurchase(t generator.Type, newCount int) error {
	s.appendEvent(events.EventTypePurchase, map[string]interface{}{
		"generator": t,
		"count":     newCount,
	})
	return s.achievements.OnPurchase(t, newCount)
}

// Tick advances the economy by dt seconds of generator production. The
// driver calls this once per scheduling period, and once more with a large
// dt at load time for offline catch-up.
func (s *Session) Tick(dt float64) map[resource.Type]float64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	credited := s.accrual.Advance(dt)
	s.cycleEarned += credited[resource.Coins]
	s.advisor.ProgressRate() // keep the trailing window sampled
	return credited
}

// ClickResult reports the outcome of one manual click.
type ClickResult struct {
	Gained     float64 `json:"gained"`
	Critical   bool    `json:"critical"`
	Experience float64 `json:"experience"`
}

// Click credits the manual action: base income through the click and global
// channels, with a chance of a critical that doubles the payout (scaled by
// critical-damage bonuses), plus experience.
func (s *Session) Click() ClickResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.aggregator.Snapshot()
	gained := s.cfg.ClickBaseIncome * snap.Get(CategoryClickIncome) * snap.Get(CategoryGlobalIncome)

	critical := s.rng.Float64() < snap.Get(CategoryCriticalChance)
	if critical {
		gained *= 2 * snap.Get(CategoryCriticalDamage)
	}

	added := s.ledger.Add(resource.Coins, gained)
	s.cycleEarned += added

	xp := s.ledger.Add(resource.Experience, s.cfg.ClickExperience*snap.Get(CategoryExperienceGain))
	s.achievements.OnClick()

	return ClickResult{Gained: added, Critical: critical, Experience: xp}
}

// PurchaseGenerator buys one unit of a generator through the serialized
// path, applying the aggregated cost reduction.
func (s *Session) PurchaseGenerator(t generator.Type) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	reduction := s.aggregator.Get(CategoryCostReduction)
	return s.registry.Purchase(t, s.ledger, reduction)
}

// ConvertResource exchanges resources atomically at the given rate.
func (s *Session) ConvertResource(from, to resource.Type, amount, rate float64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := resource.InfoFor(from); !ok {
		s.logger.Warn("unknown resource %q in ConvertResource, rejecting", from)
		return false
	}
	if _, ok := resource.InfoFor(to); !ok {
		s.logger.Warn("unknown resource %q in ConvertResource, rejecting", to)
		return false
	}

	ok := s.ledger.Convert(from, to, amount, rate)
	if ok {
		s.appendEvent(events.EventTypeConversion, map[string]interface{}{
			"from": from, "to": to, "amount": amount, "rate": rate,
		})
	}
	return ok
}

// ActivateBoost grants a temporary multiplier (an ad bonus or premium
// consumable) for the given duration.
func (s *Session) ActivateBoost(cat Category, factor float64, duration time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.boosts.Activate(cat, factor, duration)
	s.appendEvent(events.EventTypeBoostActivated, map[string]interface{}{
		"category": cat, "factor": factor, "seconds": duration.Seconds(),
	})
}

// PerformPrestige runs the full reset protocol for a tier. On ineligibility
// the returned result carries the missing amount and nothing is touched;
// there is no partial reset.
func (s *Session) PerformPrestige(tier prestige.Tier) prestige.Result {
	s.mu.Lock()
	defer s.mu.Unlock()

	res := s.prestigeEngine.Commit(tier, s.cycleEarned)
	if !res.Eligible {
		return res
	}

	// Reset active-cycle progress. The prestige and premium currencies are
	// state, not cycle progress, and survive; so do achievements and the
	// prestige record itself.
	for _, t := range resource.AllTypes {
		if t == resource.Crystals || t == resource.Diamonds {
			continue
		}
		s.ledger.Set(t, 0)
	}
	s.ledger.Set(resource.Crystals, float64(s.prestigeEngine.State().Crystals))
	s.ledger.Set(resource.Energy, 100)
	s.registry.ResetAll()
	s.cycleEarned = 0

	s.achievements.OnPrestige()
	s.appendEvent(events.EventTypePrestige, res)
	s.logger.Event("PRESTIGE", "player", string(tier))
	return res
}

// Balance returns the current amount of a resource.
func (s *Session) Balance(t resource.Type) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Get(t)
}

// PlayerLevel derives the level from current experience. The curve is the
// usual square-root ramp: 100 XP to level 2, 400 to level 3, and so on.
func (s *Session) PlayerLevel() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.playerLevelLocked()
}

func (s *Session) playerLevelLocked() int {
	xp := s.ledger.Get(resource.Experience)
	return 1 + int(math.Floor(math.Sqrt(xp/100)))
}

// CycleEarned returns the primary currency earned this prestige cycle.
func (s *Session) CycleEarned() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cycleEarned
}
