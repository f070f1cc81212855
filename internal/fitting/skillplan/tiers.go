// Package skillplan holds the per-hull skill requirement tables and builds
// ordered training plans from them.
package skillplan

import (
	"context"
	"fmt"
	"sort"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Tier names a requirement level of a hull's skill table.
type Tier string

const (
	TierMin   Tier = "min"
	TierElite Tier = "elite"
	TierGold  Tier = "gold"
)

// ParseTier accepts min, elite or gold.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierMin, TierElite, TierGold:
		return t, nil
	}
	return "", fmt.Errorf("%w: %q", fitting.ErrInvalidTier, s)
}

// HullSkills is the skill table of one hull.
type HullSkills struct {
	Name     string
	ID       fitting.ItemID
	levels   map[fitting.ItemID]map[Tier]fitting.SkillLevel
	priority map[fitting.ItemID]float64
}

// Level returns the level skill must reach for tier, if the hull asks for it.
func (h *HullSkills) Level(skill fitting.ItemID, tier Tier) (fitting.SkillLevel, bool) {
	l, ok := h.levels[skill][tier]
	return l, ok
}

// Requirements returns every nonzero requirement of tier, ordered by skill.
func (h *HullSkills) Requirements(tier Tier) []fitting.LevelPair {
	var reqs []fitting.LevelPair
	for _, skill := range fitting.SortedIDs(h.levels) {
		if l, ok := h.levels[skill][tier]; ok && l > 0 {
			reqs = append(reqs, fitting.LevelPair{Skill: skill, Level: l})
		}
	}
	return reqs
}

// Meets reports whether trained satisfies every requirement of tier.
func (h *HullSkills) Meets(trained map[fitting.ItemID]fitting.SkillLevel, tier Tier) bool {
	for skill, tiers := range h.levels {
		if req, ok := tiers[tier]; ok && trained[skill] < req {
			return false
		}
	}
	return true
}

// Priority returns the training weight of skill; 1 unless configured.
func (h *HullSkills) Priority(skill fitting.ItemID) float64 {
	if p, ok := h.priority[skill]; ok {
		return p
	}
	return 1
}

// Skills returns the skills in the table, ascending.
func (h *HullSkills) Skills() []fitting.ItemID {
	return fitting.SortedIDs(h.levels)
}

// SkillData is every hull's skill table plus the named skill categories.
type SkillData struct {
	hulls       map[string]*HullSkills
	byID        map[fitting.ItemID]*HullSkills
	categories  map[string][]fitting.ItemID
	defaultHull string
}

// LoadSkillData resolves the names in a skills document against the catalog.
// Elite levels default to min and gold to elite.
func LoadSkillData(ctx context.Context, cat catalog.Catalog, doc *config.Skills) (*SkillData, error) {
	var names []string
	for hull, skills := range doc.Requirements {
		names = append(names, hull)
		for skill := range skills {
			names = append(names, skill)
		}
	}
	for _, skills := range doc.Categories {
		names = append(names, skills...)
	}
	ids, err := cat.IDsOf(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolving skill names: %w", err)
	}

	var problems config.Problems
	resolve := func(name, source string) (fitting.ItemID, bool) {
		id, ok := ids[name]
		if !ok {
			problems.Add(fmt.Errorf("%s: %w: %q", source, fitting.ErrUnknownItem, name))
		}
		return id, ok
	}

	data := &SkillData{
		hulls:       make(map[string]*HullSkills),
		byID:        make(map[fitting.ItemID]*HullSkills),
		categories:  make(map[string][]fitting.ItemID),
		defaultHull: doc.DefaultHull,
	}

	hullNames := make([]string, 0, len(doc.Requirements))
	for hull := range doc.Requirements {
		hullNames = append(hullNames, hull)
	}
	sort.Strings(hullNames)

	for _, hull := range hullNames {
		source := "requirements " + hull
		hullID, ok := resolve(hull, source)
		if !ok {
			continue
		}
		h := &HullSkills{
			Name:     hull,
			ID:       hullID,
			levels:   make(map[fitting.ItemID]map[Tier]fitting.SkillLevel),
			priority: make(map[fitting.ItemID]float64),
		}
		for skill, tiers := range doc.Requirements[hull] {
			skillID, ok := resolve(skill, source)
			if !ok {
				continue
			}
			h.levels[skillID] = expandTiers(tiers)
			if tiers.Priority != nil {
				h.priority[skillID] = *tiers.Priority
			}
		}
		data.hulls[hull] = h
		data.byID[hullID] = h
	}

	for category, skills := range doc.Categories {
		for _, skill := range skills {
			if id, ok := resolve(skill, "categories "+category); ok {
				data.categories[category] = append(data.categories[category], id)
			}
		}
	}

	if err := problems.Err(); err != nil {
		return nil, err
	}
	return data, nil
}

func expandTiers(t config.SkillTiers) map[Tier]fitting.SkillLevel {
	out := make(map[Tier]fitting.SkillLevel, 3)
	base, elite, gold := t.Min, t.Elite, t.Gold
	if elite == nil {
		elite = base
	}
	if gold == nil {
		gold = elite
	}
	if base != nil {
		out[TierMin] = *base
	}
	if elite != nil {
		out[TierElite] = *elite
	}
	if gold != nil {
		out[TierGold] = *gold
	}
	return out
}

// Hull returns the table of the named hull.
func (d *SkillData) Hull(name string) (*HullSkills, bool) {
	h, ok := d.hulls[name]
	return h, ok
}

// HullByID returns the table of a hull by item id.
func (d *SkillData) HullByID(id fitting.ItemID) (*HullSkills, bool) {
	h, ok := d.byID[id]
	return h, ok
}

// Default returns the table used for steps not tied to a hull.
func (d *SkillData) Default() *HullSkills {
	return d.hulls[d.defaultHull]
}

// Category returns the skills of a named category.
func (d *SkillData) Category(name string) []fitting.ItemID {
	return d.categories[name]
}

// CategoryNames returns the configured category names, sorted.
func (d *SkillData) CategoryNames() []string {
	names := make([]string, 0, len(d.categories))
	for name := range d.categories {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured hulls.
func (d *SkillData) Len() int {
	return len(d.hulls)
}
