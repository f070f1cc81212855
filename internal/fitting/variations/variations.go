// Package variations builds the item substitution graph: for every declared
// item, which other items may stand in for it and whether each is an upgrade
// or a downgrade.
package variations

import (
	"sort"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// DrugRule rewrites expected cargo when its detector is part of it.
type DrugRule struct {
	Detect fitting.ItemID
	Remove map[fitting.ItemID]bool
	Add    map[fitting.ItemID]int64
}

// Graph is the read-only substitution graph. It is safe for concurrent use.
type Graph struct {
	variations     map[fitting.ItemID][]fitting.Variation
	cargoIgnore    map[fitting.ItemID]bool
	drugs          []DrugRule
	identification map[fitting.ItemID]bool
}

// Get returns the variations declared for id, best matches first, or nil if
// id takes part in no group.
func (g *Graph) Get(id fitting.ItemID) []fitting.Variation {
	return g.variations[id]
}

// Of returns the variations of id, falling back to the implicit
// self-variation for undeclared items.
func (g *Graph) Of(id fitting.ItemID) []fitting.Variation {
	if vars, ok := g.variations[id]; ok {
		return vars
	}
	return []fitting.Variation{{From: id, To: id}}
}

// CargoIgnored reports whether id is left out of cargo comparison.
func (g *Graph) CargoIgnored(id fitting.ItemID) bool {
	return g.cargoIgnore[id]
}

// DrugRules returns the cargo substitution rules ordered by detector id.
func (g *Graph) DrugRules() []DrugRule {
	return g.drugs
}

// Identifies reports whether id is decisive when recognizing a doctrine fit.
func (g *Graph) Identifies(id fitting.ItemID) bool {
	return g.identification[id]
}

// Len returns the number of items with declared variations.
func (g *Graph) Len() int {
	return len(g.variations)
}

// sortKey orders a variation list: exact matches, then upgrades from the
// smallest step up, then downgrades from the smallest step down.
func sortKey(delta int64) int64 {
	if delta < 0 {
		return 1000000 - delta
	}
	return delta
}

func sortVariations(vars []fitting.Variation) {
	sort.Slice(vars, func(i, j int) bool {
		ki, kj := sortKey(vars[i].TierDelta), sortKey(vars[j].TierDelta)
		if ki != kj {
			return ki < kj
		}
		return vars[i].To < vars[j].To
	})
}
