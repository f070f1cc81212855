package engine

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// names loads the items for ids in one batch.
func (e *Engine) names(ctx context.Context, ids map[fitting.ItemID]bool) (map[fitting.ItemID]*fitting.Item, error) {
	items, err := e.catalog.Items(ctx, fitting.SortedIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("loading item names: %w", err)
	}
	return items, nil
}

func (e *Engine) namedDiff(ctx context.Context, d fitting.DiffResult) (*fitting.NamedDiff, error) {
	ids := make(map[fitting.ItemID]bool)
	for _, m := range []map[fitting.ItemID]int64{d.ModuleMissing, d.ModuleExtra, d.CargoMissing} {
		for id := range m {
			ids[id] = true
		}
	}
	for _, m := range []map[fitting.ItemID]map[fitting.ItemID]int64{d.ModuleUpgraded, d.ModuleDowngraded} {
		for from, to := range m {
			ids[from] = true
			for id := range to {
				ids[id] = true
			}
		}
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	return &fitting.NamedDiff{
		ModuleMissing:    itemCounts(items, d.ModuleMissing),
		ModuleExtra:      itemCounts(items, d.ModuleExtra),
		ModuleUpgraded:   substitutions(items, d.ModuleUpgraded),
		ModuleDowngraded: substitutions(items, d.ModuleDowngraded),
		CargoMissing:     itemCounts(items, d.CargoMissing),
	}, nil
}

func ref(items map[fitting.ItemID]*fitting.Item, id fitting.ItemID) fitting.ItemRef {
	return fitting.ItemRef{ID: id, Name: catalog.Name(items, id)}
}

func itemCounts(items map[fitting.ItemID]*fitting.Item, m map[fitting.ItemID]int64) []fitting.ItemCount {
	out := make([]fitting.ItemCount, 0, len(m))
	for _, id := range fitting.SortedIDs(m) {
		out = append(out, fitting.ItemCount{ID: id, Name: catalog.Name(items, id), Count: m[id]})
	}
	return out
}

func substitutions(items map[fitting.ItemID]*fitting.Item, m map[fitting.ItemID]map[fitting.ItemID]int64) []fitting.Substitution {
	var out []fitting.Substitution
	for _, from := range fitting.SortedIDs(m) {
		for _, to := range fitting.SortedIDs(m[from]) {
			out = append(out, fitting.Substitution{
				From:  ref(items, from),
				To:    ref(items, to),
				Count: m[from][to],
			})
		}
	}
	if out == nil {
		out = []fitting.Substitution{}
	}
	return out
}

func (e *Engine) namePlans(ctx context.Context, plans []skillplan.Plan) ([]fitting.SkillPlanResult, error) {
	ids := make(map[fitting.ItemID]bool)
	for _, p := range plans {
		for _, l := range p.Levels {
			ids[l.Skill] = true
		}
		for _, s := range p.Ships {
			ids[s] = true
		}
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	out := make([]fitting.SkillPlanResult, 0, len(plans))
	for _, p := range plans {
		r := fitting.SkillPlanResult{
			Name:        p.Name,
			Description: p.Description,
			Alpha:       p.Alpha,
			Levels:      make([]fitting.SkillLevelEntry, 0, len(p.Levels)),
			Ships:       make([]fitting.ItemRef, 0, len(p.Ships)),
			TotalSP:     p.TotalSP,
		}
		for _, l := range p.Levels {
			r.Levels = append(r.Levels, fitting.SkillLevelEntry{Skill: ref(items, l.Skill), Level: l.Level})
		}
		for _, s := range p.Ships {
			r.Ships = append(r.Ships, ref(items, s))
		}
		out = append(out, r)
	}
	return out, nil
}
