package matcher

import (
	"sort"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/differ"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/variations"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Score weights per unit of difference.
const (
	weightMissing    = 12
	weightExtra      = 8
	weightDowngraded = 5
	weightUpgraded   = 1

	// identificationMultiplier scales differences on items that identify a fit.
	identificationMultiplier = 100
)

// Match is the chosen doctrine fit and how the loadout differs from it.
type Match struct {
	Fit   fitting.DoctrineFit
	Diff  fitting.DiffResult
	Score int64
}

// Matcher picks the closest doctrine fit for a loadout.
type Matcher struct {
	doctrine *Doctrine
	differ   *differ.Differ
	graph    *variations.Graph
}

// New creates a Matcher.
func New(doctrine *Doctrine, graph *variations.Graph) *Matcher {
	return &Matcher{
		doctrine: doctrine,
		differ:   differ.New(graph),
		graph:    graph,
	}
}

// FindFit compares actual with every doctrine fit on the same hull and
// returns the lowest-scoring one. Ties go to the fit declared first. The
// second result is false when no doctrine fit uses the hull.
func (m *Matcher) FindFit(actual fitting.Loadout) (Match, bool) {
	candidates := m.doctrine.ForHull(actual.Hull)
	if len(candidates) == 0 {
		return Match{}, false
	}

	matches := make([]Match, len(candidates))
	for i, c := range candidates {
		diff := m.differ.Diff(c.Fit, actual)
		matches[i] = Match{Fit: c, Diff: diff, Score: m.Score(diff)}
	}
	sort.SliceStable(matches, func(i, j int) bool { return matches[i].Score < matches[j].Score })

	return matches[0], true
}

// Score rates a diff; lower is closer. Upgrades and downgrades are charged
// to the expected item.
func (m *Matcher) Score(diff fitting.DiffResult) int64 {
	var score int64
	for id, n := range diff.ModuleMissing {
		score += weightMissing * n * m.multiplier(id)
	}
	for id, n := range diff.ModuleExtra {
		score += weightExtra * n * m.multiplier(id)
	}
	for id, to := range diff.ModuleDowngraded {
		for _, n := range to {
			score += weightDowngraded * n * m.multiplier(id)
		}
	}
	for id, to := range diff.ModuleUpgraded {
		for _, n := range to {
			score += weightUpgraded * n * m.multiplier(id)
		}
	}
	return score
}

func (m *Matcher) multiplier(id fitting.ItemID) int64 {
	if m.graph.Identifies(id) {
		return identificationMultiplier
	}
	return 1
}

// Differ returns the differ used for comparisons.
func (m *Matcher) Differ() *differ.Differ {
	return m.differ
}

// Doctrine returns the doctrine catalog.
func (m *Matcher) Doctrine() *Doctrine {
	return m.doctrine
}
