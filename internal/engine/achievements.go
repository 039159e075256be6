package engine

import (
	"github.com/sikidle/server/internal/domain/generator"
	"github.com/sikidle/server/internal/platform/logger"
)

// Achievement is a permanent milestone. Achievements survive prestige
// resets and each unlocked one grants a small global income bonus.
type Achievement struct {
	ID          string
	Name        string
	Description string
}

// achievementBonusPerUnlock is the global income factor each unlocked
// achievement contributes on top of 1.0.
const achievementBonusPerUnlock = 0.01

// AchievementTracker consumes purchase and click milestones and acts as a
// multiplier source. It is fed by the generator purchase hook, so a failure
// here must never unwind a purchase; the tracker therefore never errors.
type AchievementTracker struct {
	logger *logger.Logger

	totalClicks    int64
	totalPurchases int64
	totalPrestiges int64

	unlocked map[string]bool
	onUnlock func(a Achievement)
}

var achievementTable = []struct {
	Achievement
	check func(t *AchievementTracker) bool
}{
	{Achievement{ID: "first_click", Name: "First Steps", Description: "Click once"}, func(t *AchievementTracker) bool { return t.totalClicks >= 1 }},
	{Achievement{ID: "clicks_1k", Name: "Dedicated", Description: "Click 1,000 times"}, func(t *AchievementTracker) bool { return t.totalClicks >= 1_000 }},
	{Achievement{ID: "first_generator", Name: "Automation", Description: "Buy a generator"}, func(t *AchievementTracker) bool { return t.totalPurchases >= 1 }},
	{Achievement{ID: "generators_50", Name: "Industrialist", Description: "Buy 50 generators"}, func(t *AchievementTracker) bool { return t.totalPurchases >= 50 }},
	{Achievement{ID: "generators_500", Name: "Tycoon", Description: "Buy 500 generators"}, func(t *AchievementTracker) bool { return t.totalPurchases >= 500 }},
	{Achievement{ID: "first_prestige", Name: "Rebirth", Description: "Prestige once"}, func(t *AchievementTracker) bool { return t.totalPrestiges >= 1 }},
	{Achievement{ID: "prestige_10", Name: "Eternal Return", Description: "Prestige ten times"}, func(t *AchievementTracker) bool { return t.totalPrestiges >= 10 }},
}

// NewAchievementTracker creates an empty tracker.
func NewAchievementTracker(log *logger.Logger) *AchievementTracker {
	return &AchievementTracker{
		logger:   log,
		unlocked: make(map[string]bool),
	}
}

// SetUnlockCallback installs an observer for newly unlocked achievements
// (the session records them in the event log).
func (t *AchievementTracker) SetUnlockCallback(fn func(a Achievement)) {
	t.onUnlock = fn
}

// OnPurchase is the generator purchase hook.
func (t *AchievementTracker) OnPurchase(gen generator.Type, newCount int) error {
	t.totalPurchases++
	t.evaluate()
	return nil
}

// OnClick records a manual click.
func (t *AchievementTracker) OnClick() {
	t.totalClicks++
	t.evaluate()
}

// OnPrestige records a completed prestige.
func (t *AchievementTracker) OnPrestige() {
	t.totalPrestiges++
	t.evaluate()
}

func (t *AchievementTracker) evaluate() {
	for _, entry := range achievementTable {
		if t.unlocked[entry.ID] || !entry.check(t) {
			continue
		}
		t.unlocked[entry.ID] = true
		if t.logger != nil {
			t.logger.Event("ACHIEVEMENT", "player", entry.Name)
		}
		if t.onUnlock != nil {
			t.onUnlock(entry.Achievement)
		}
	}
}

// UnlockedCount returns how many achievements are unlocked.
func (t *AchievementTracker) UnlockedCount() int {
	return len(t.unlocked)
}

// Unlocked reports whether a specific achievement is unlocked.
func (t *AchievementTracker) Unlocked(id string) bool {
	return t.unlocked[id]
}

// Counters exposes the raw milestone counters for snapshots.
func (t *AchievementTracker) Counters() (clicks, purchases, prestiges int64) {
	return t.totalClicks, t.totalPurchases, t.totalPrestiges
}

// Restore reloads the milestone counters from a snapshot and re-evaluates
// thresholds, so unlocks are always derivable from persisted counters.
func (t *AchievementTracker) Restore(clicks, purchases, prestiges int64) {
	t.totalClicks = clicks
	t.totalPurchases = purchases
	t.totalPrestiges = prestiges
	t.evaluate()
}

// Multiplier implements Source: +1% global income per unlocked achievement.
func (t *AchievementTracker) Multiplier(cat Category) float64 {
	if cat != CategoryGlobalIncome {
		return Identity(cat)
	}
	return 1.0 + float64(len(t.unlocked))*achievementBonusPerUnlock
}
