// Package generator defines the catalogue of automated generators and the
// registry tracking how many of each the player owns. This package is PURE
// and must NOT import any infrastructure packages.
package generator

import "github.com/sikidle/server/internal/domain/resource"

// Type identifies a generator (building) in the catalogue.
type Type string

const (
	Farm       Type = "farm"
	Factory    Type = "factory"
	Bank       Type = "bank"
	Mine       Type = "mine"
	Sawmill    Type = "sawmill"
	Quarry     Type = "quarry"
	Laboratory Type = "laboratory"
	Reactor    Type = "reactor"
	Portal     Type = "portal"
)

// Info is the immutable catalogue entry for a generator type.
// Created at startup, never mutated.
type Info struct {
	Name        string
	Description string
	Emoji       string
	BaseCost    float64
	CostGrowth  float64 // per-unit cost multiplier, always > 1
	BaseRate    float64 // production per second per unit owned
	Produces    resource.Type
	CostsIn     resource.Type
	UnlockLevel int
	MaxCount    int // 0 means unlimited
}

// Catalogue is the ordered set of generator definitions.
type Catalogue struct {
	order []Type
	info  map[Type]Info
}

// DefaultCatalogue returns the standard game catalogue. Each tier costs 10x
// the previous and produces 5x as much, all priced and paid in gold.
func DefaultCatalogue() *Catalogue {
	c := &Catalogue{info: make(map[Type]Info, 9)}
	add := func(t Type, info Info) {
		if info.CostGrowth == 0 {
			info.CostGrowth = 1.15
		}
		if info.Produces == "" {
			info.Produces = resource.Coins
		}
		if info.CostsIn == "" {
			info.CostsIn = resource.Coins
		}
		if info.UnlockLevel == 0 {
			info.UnlockLevel = 1
		}
		c.order = append(c.order, t)
		c.info[t] = info
	}

	add(Farm, Info{Name: "Farm", Description: "Generates gold automatically", Emoji: "🚜", BaseCost: 10, BaseRate: 0.5})
	add(Factory, Info{Name: "Factory", Description: "Medium gold production", Emoji: "🏭", BaseCost: 100, BaseRate: 5})
	add(Bank, Info{Name: "Bank", Description: "High gold generation", Emoji: "🏦", BaseCost: 1_000, BaseRate: 25})
	add(Mine, Info{Name: "Mine", Description: "Extracts ore and materials", Emoji: "⛏️", BaseCost: 10_000, BaseRate: 125})
	add(Sawmill, Info{Name: "Sawmill", Description: "Produces lumber around the clock", Emoji: "🪚", BaseCost: 100_000, BaseRate: 625})
	add(Quarry, Info{Name: "Quarry", Description: "Carves stone out of the mountains", Emoji: "🗻", BaseCost: 1_000_000, BaseRate: 3_125})
	add(Laboratory, Info{Name: "Laboratory", Description: "Generates knowledge and wealth", Emoji: "🧪", BaseCost: 10_000_000, BaseRate: 15_625})
	add(Reactor, Info{Name: "Reactor", Description: "Constant high-output generation", Emoji: "⚡", BaseCost: 100_000_000, BaseRate: 78_125})
	add(Portal, Info{Name: "Dimensional Portal", Description: "Generates interdimensional riches", Emoji: "🌀", BaseCost: 1_000_000_000, BaseRate: 390_625})

	return c
}

// Types returns the catalogue order.
func (c *Catalogue) Types() []Type {
	return c.order
}

// Info returns the catalogue entry for a type.
// The second return is false for identifiers not in the catalogue.
func (c *Catalogue) Info(t Type) (Info, bool) {
	info, ok := c.info[t]
	return info, ok
}
