package engine

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// otherSkills holds the skills of a table that no category lists.
const otherSkills = "Other"

// HullSkills returns the configured skill table of a hull, grouped by skill
// category in name order, with uncategorized skills last.
func (e *Engine) HullSkills(ctx context.Context, req fitting.HullSkillsRequest) (*fitting.HullSkillsResponse, error) {
	h, ok := e.skills.Hull(req.Hull)
	if !ok {
		return nil, fmt.Errorf("%w: no skill table for %q", fitting.ErrUnknownItem, req.Hull)
	}

	inTable := map[fitting.ItemID]bool{}
	for _, s := range h.Skills() {
		inTable[s] = true
	}
	ids := map[fitting.ItemID]bool{h.ID: true}
	for s := range inTable {
		ids[s] = true
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	entry := func(skill fitting.ItemID) fitting.HullSkillEntry {
		base, _ := h.Level(skill, skillplan.TierMin)
		elite, _ := h.Level(skill, skillplan.TierElite)
		gold, _ := h.Level(skill, skillplan.TierGold)
		return fitting.HullSkillEntry{Skill: ref(items, skill), Min: base, Elite: elite, Gold: gold}
	}

	resp := &fitting.HullSkillsResponse{Hull: ref(items, h.ID)}
	placed := make(map[fitting.ItemID]bool)
	for _, name := range e.skills.CategoryNames() {
		group := fitting.SkillCategoryEntry{Name: name}
		for _, skill := range e.skills.Category(name) {
			if !inTable[skill] {
				continue
			}
			group.Skills = append(group.Skills, entry(skill))
			placed[skill] = true
		}
		if len(group.Skills) > 0 {
			resp.Categories = append(resp.Categories, group)
		}
	}

	other := fitting.SkillCategoryEntry{Name: otherSkills}
	for _, skill := range h.Skills() {
		if !placed[skill] {
			other.Skills = append(other.Skills, entry(skill))
		}
	}
	if len(other.Skills) > 0 {
		resp.Categories = append(resp.Categories, other)
	}
	return resp, nil
}
