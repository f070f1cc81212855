package skillplan

import (
	"container/heap"
	"context"
	"fmt"
	"math"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// valueScale converts propagated values to integers for heap ordering.
const valueScale = 1e9

var spGrowth = math.Sqrt(32)

// SkillPoints returns the skill points needed to reach level of a skill with
// the given training time multiplier.
func SkillPoints(multiplier float64, level fitting.SkillLevel) float64 {
	if level <= 0 {
		return 0
	}
	return 250 * multiplier * math.Pow(spGrowth, float64(level-1))
}

type node struct {
	dependees   []fitting.LevelPair
	unsatisfied int
	value       int64
}

type skillGraph struct {
	nodes map[fitting.LevelPair]*node
	items map[fitting.ItemID]*fitting.Item
}

func (g *skillGraph) entry(p fitting.LevelPair) *node {
	n, ok := g.nodes[p]
	if !ok {
		n = &node{}
		g.nodes[p] = n
	}
	return n
}

func (g *skillGraph) item(ctx context.Context, cat catalog.Catalog, id fitting.ItemID) (*fitting.Item, error) {
	if item, ok := g.items[id]; ok {
		return item, nil
	}
	item, err := catalog.Item(ctx, cat, id)
	if err != nil {
		return nil, err
	}
	g.items[id] = item
	return item, nil
}

// buildGraph links every requirement to what it needs: level N needs level
// N-1, and level 1 needs the skill's own prerequisites. Prerequisites are
// themselves expanded only when expand is set.
func buildGraph(ctx context.Context, cat catalog.Catalog, reqs []fitting.LevelPair, expand bool) (*skillGraph, error) {
	g := &skillGraph{
		nodes: make(map[fitting.LevelPair]*node),
		items: make(map[fitting.ItemID]*fitting.Item),
	}

	stack := append([]fitting.LevelPair(nil), reqs...)
	processed := make(map[fitting.LevelPair]bool)

	for len(stack) > 0 {
		pair := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if processed[pair] {
			continue
		}
		processed[pair] = true

		var needs []fitting.LevelPair
		follow := true
		switch {
		case pair.Level >= 2:
			needs = append(needs, fitting.LevelPair{Skill: pair.Skill, Level: pair.Level - 1})
		case pair.Level == 1:
			item, err := g.item(ctx, cat, pair.Skill)
			if err != nil {
				return nil, fmt.Errorf("loading skill %d: %w", pair.Skill, err)
			}
			for _, id := range fitting.SortedIDs(item.SkillRequirements) {
				if l := item.SkillRequirements[id]; l > 0 {
					needs = append(needs, fitting.LevelPair{Skill: id, Level: l})
				}
			}
			follow = expand
		}

		g.entry(pair).unsatisfied = len(needs)
		for _, need := range needs {
			n := g.entry(need)
			n.dependees = append(n.dependees, pair)
			if follow {
				stack = append(stack, need)
			}
		}
	}

	return g, nil
}

// score computes every node's propagated value: priority per skill point plus
// half the value of each node depending on it.
func (g *skillGraph) score(ctx context.Context, cat catalog.Catalog, priority func(fitting.ItemID) float64) error {
	memo := make(map[fitting.LevelPair]float64, len(g.nodes))
	visiting := make(map[fitting.LevelPair]bool)

	var value func(p fitting.LevelPair) (float64, error)
	value = func(p fitting.LevelPair) (float64, error) {
		if v, ok := memo[p]; ok {
			return v, nil
		}
		if visiting[p] {
			return 0, fmt.Errorf("%w: skill prerequisite cycle at %d level %d", fitting.ErrConfiguration, p.Skill, p.Level)
		}
		visiting[p] = true
		defer delete(visiting, p)

		item, err := g.item(ctx, cat, p.Skill)
		if err != nil {
			return 0, fmt.Errorf("loading skill %d: %w", p.Skill, err)
		}
		multiplier, ok := item.Attribute(fitting.AttributeTrainingTimeMultiplier)
		if !ok || multiplier <= 0 {
			return 0, fmt.Errorf("%w: %s has no training time multiplier", fitting.ErrConfiguration, item.Name)
		}

		v := priority(p.Skill) / SkillPoints(multiplier, p.Level)
		for _, dep := range g.nodes[p].dependees {
			dv, err := value(dep)
			if err != nil {
				return 0, err
			}
			v += dv / 2
		}
		memo[p] = v
		return v, nil
	}

	for p, n := range g.nodes {
		v, err := value(p)
		if err != nil {
			return err
		}
		n.value = int64(v * valueScale)
	}
	return nil
}

type ready struct {
	value int64
	pair  fitting.LevelPair
}

// readyHeap pops the highest (value, level, skill) first.
type readyHeap []ready

func (h readyHeap) Len() int { return len(h) }
func (h readyHeap) Less(i, j int) bool {
	a, b := h[i], h[j]
	if a.value != b.value {
		return a.value > b.value
	}
	if a.pair.Level != b.pair.Level {
		return a.pair.Level > b.pair.Level
	}
	return a.pair.Skill > b.pair.Skill
}
func (h readyHeap) Swap(i, j int) { h[i], h[j] = h[j], h[i] }
func (h *readyHeap) Push(x any)   { *h = append(*h, x.(ready)) }
func (h *readyHeap) Pop() any {
	old := *h
	x := old[len(old)-1]
	*h = old[:len(old)-1]
	return x
}

// flatten orders the graph so every node follows everything it needs,
// choosing the most valuable ready node at each point.
func (g *skillGraph) flatten() ([]fitting.LevelPair, error) {
	remaining := make(map[fitting.LevelPair]int, len(g.nodes))
	h := &readyHeap{}
	for p, n := range g.nodes {
		remaining[p] = n.unsatisfied
		if n.unsatisfied == 0 {
			*h = append(*h, ready{value: n.value, pair: p})
		}
	}
	heap.Init(h)

	order := make([]fitting.LevelPair, 0, len(g.nodes))
	for h.Len() > 0 {
		next := heap.Pop(h).(ready)
		order = append(order, next.pair)
		for _, dep := range g.nodes[next.pair].dependees {
			remaining[dep]--
			if remaining[dep] == 0 {
				heap.Push(h, ready{value: g.nodes[dep].value, pair: dep})
			}
		}
	}

	if len(order) < len(g.nodes) {
		return nil, fmt.Errorf("%w: skill prerequisite cycle among %d requirements", fitting.ErrConfiguration, len(g.nodes)-len(order))
	}
	return order, nil
}

// SortedPlan orders reqs and everything they need for training.
func SortedPlan(ctx context.Context, cat catalog.Catalog, reqs []fitting.LevelPair, priority func(fitting.ItemID) float64, expand bool) ([]fitting.LevelPair, error) {
	g, err := buildGraph(ctx, cat, reqs, expand)
	if err != nil {
		return nil, err
	}
	if err := g.score(ctx, cat, priority); err != nil {
		return nil, err
	}
	return g.flatten()
}
