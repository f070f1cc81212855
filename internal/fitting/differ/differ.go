// Package differ reconciles an actual loadout against an expected one,
// accounting for substitutable items.
package differ

import (
	"github.com/rsned/waitlist-fitting-server/internal/fitting/variations"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Cargo shortfalls on stacks of at least cargoStackMin are only reported
// once they exceed cargoShortfallPercent of the expected amount.
const (
	cargoStackMin         = 10
	cargoShortfallPercent = 80
)

// Differ compares loadouts using a shared variation graph.
type Differ struct {
	graph *variations.Graph
}

// New creates a Differ.
func New(graph *variations.Graph) *Differ {
	return &Differ{graph: graph}
}

// SectionDiff is the reconciliation of one item section.
type SectionDiff struct {
	Missing    map[fitting.ItemID]int64
	Extra      map[fitting.ItemID]int64
	Upgraded   map[fitting.ItemID]map[fitting.ItemID]int64
	Downgraded map[fitting.ItemID]map[fitting.ItemID]int64
}

// Section reconciles expected against actual. Exact-tier matches are
// consumed for every expected item before any substitution is considered,
// so restocking the same item always wins over bookkeeping a swap.
func (d *Differ) Section(expected, actual map[fitting.ItemID]int64) SectionDiff {
	extra := copyCounts(actual)
	missing := copyCounts(expected)
	upgraded := make(map[fitting.ItemID]map[fitting.ItemID]int64)
	downgraded := make(map[fitting.ItemID]map[fitting.ItemID]int64)

	order := fitting.SortedIDs(missing)

	for _, want := range order {
		for _, v := range d.graph.Of(want) {
			if v.TierDelta != 0 {
				continue
			}
			consume(missing, extra, want, v.To)
		}
	}

	for _, want := range order {
		for _, v := range d.graph.Of(want) {
			n := consume(missing, extra, want, v.To)
			if n == 0 {
				continue
			}
			switch {
			case v.TierDelta > 0:
				addPair(upgraded, v.From, v.To, n)
			case v.TierDelta < 0:
				addPair(downgraded, v.From, v.To, n)
			}
		}
	}

	return SectionDiff{
		Missing:    positive(missing),
		Extra:      positive(extra),
		Upgraded:   upgraded,
		Downgraded: downgraded,
	}
}

// Diff compares a whole loadout. Cargo is compared after dropping ignored
// items and applying drug substitution rules to the expected side; cargo
// downgrades count as missing, and large stacks tolerate a partial shortfall.
func (d *Differ) Diff(expected, actual fitting.Loadout) fitting.DiffResult {
	modules := d.Section(expected.Modules, actual.Modules)

	wantCargo := d.expectedCargo(expected.Cargo)
	cargo := d.Section(wantCargo, actual.Cargo)

	cargoMissing := cargo.Missing
	for from, to := range cargo.Downgraded {
		for _, n := range to {
			cargoMissing[from] += n
		}
	}
	for id, n := range cargoMissing {
		if want := wantCargo[id]; want >= cargoStackMin && n <= want*cargoShortfallPercent/100 {
			delete(cargoMissing, id)
		}
	}

	return fitting.DiffResult{
		ModuleMissing:    modules.Missing,
		ModuleExtra:      modules.Extra,
		ModuleUpgraded:   modules.Upgraded,
		ModuleDowngraded: modules.Downgraded,
		CargoMissing:     cargoMissing,
	}
}

func (d *Differ) expectedCargo(cargo map[fitting.ItemID]int64) map[fitting.ItemID]int64 {
	want := make(map[fitting.ItemID]int64, len(cargo))
	for id, n := range cargo {
		if !d.graph.CargoIgnored(id) {
			want[id] = n
		}
	}

	for _, rule := range d.graph.DrugRules() {
		if _, ok := want[rule.Detect]; !ok {
			continue
		}
		for id := range want {
			if rule.Remove[id] {
				delete(want, id)
			}
		}
		for id, n := range rule.Add {
			want[id] = n
		}
	}

	return want
}

// consume moves as much of want's remaining need as possible onto have's
// spare count and returns the amount moved.
func consume(missing, extra map[fitting.ItemID]int64, want, have fitting.ItemID) int64 {
	n := min(missing[want], extra[have])
	if n <= 0 {
		return 0
	}
	missing[want] -= n
	extra[have] -= n
	return n
}

func addPair(m map[fitting.ItemID]map[fitting.ItemID]int64, from, to fitting.ItemID, n int64) {
	inner, ok := m[from]
	if !ok {
		inner = make(map[fitting.ItemID]int64)
		m[from] = inner
	}
	inner[to] += n
}

func copyCounts(m map[fitting.ItemID]int64) map[fitting.ItemID]int64 {
	out := make(map[fitting.ItemID]int64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func positive(m map[fitting.ItemID]int64) map[fitting.ItemID]int64 {
	for k, v := range m {
		if v <= 0 {
			delete(m, k)
		}
	}
	return m
}
