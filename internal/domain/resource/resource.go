// Package resource defines the multi-currency ledger at the heart of the
// economy. This package is PURE and must NOT import any infrastructure
// packages (network, events, platform).
package resource

// Type identifies a currency or material.
type Type string

const (
	// Currencies
	Coins    Type = "coins"    // primary currency, earned by clicks and generators
	Crystals Type = "crystals" // prestige currency, survives resets
	Diamonds Type = "diamonds" // premium currency

	// Special resources
	Energy     Type = "energy"
	Experience Type = "experience"

	// Crafting materials
	Iron  Type = "iron"
	Wood  Type = "wood"
	Stone Type = "stone"

	// Exploration materials
	ArcaneEssence Type = "arcane_essence"
)

// Info holds the static display and unlock metadata for a resource type.
type Info struct {
	Name        string
	Symbol      string
	Description string
	UnlockLevel int
	Max         float64 // 0 means unbounded
	Precision   int     // decimals to display
}

// AllTypes lists every resource in catalogue order.
var AllTypes = []Type{
	Coins, Crystals, Diamonds, Energy, Experience,
	Iron, Wood, Stone, ArcaneEssence,
}

var catalogue = map[Type]Info{
	Coins:         {Name: "Gold", Symbol: "🪙", Description: "Basic game currency", UnlockLevel: 1},
	Crystals:      {Name: "Crystals", Symbol: "💎", Description: "Permanent currency earned by prestige", UnlockLevel: 25},
	Diamonds:      {Name: "Diamonds", Symbol: "💠", Description: "Premium currency", UnlockLevel: 50},
	Energy:        {Name: "Energy", Symbol: "⚡", Description: "Power for special abilities", UnlockLevel: 10, Max: 100, Precision: 0},
	Experience:    {Name: "Experience", Symbol: "✨", Description: "Progress towards the next level", UnlockLevel: 5},
	Iron:          {Name: "Iron", Symbol: "🔩", Description: "Basic construction material", UnlockLevel: 15},
	Wood:          {Name: "Wood", Symbol: "🪵", Description: "Renewable natural resource", UnlockLevel: 12},
	Stone:         {Name: "Stone", Symbol: "🪨", Description: "Sturdy building material", UnlockLevel: 18},
	ArcaneEssence: {Name: "Arcane Essence", Symbol: "🔮", Description: "Magical power from ancient ruins", UnlockLevel: 30},
}

// InfoFor returns the static metadata for a resource type.
// The second return is false for identifiers not in the catalogue.
func InfoFor(t Type) (Info, bool) {
	info, ok := catalogue[t]
	return info, ok
}

// Unlocked reports whether the resource is available at the given player level.
func Unlocked(t Type, playerLevel int) bool {
	info, ok := catalogue[t]
	if !ok {
		return false
	}
	return playerLevel >= info.UnlockLevel
}
