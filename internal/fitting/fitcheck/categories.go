// Package fitcheck evaluates a pilot's loadout for the waitlist: doctrine
// compliance, skill tier, and the queue the pilot belongs in.
package fitcheck

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// CategoryStarter is used when no rule matches.
const CategoryStarter = "starter"

type categoryRule struct {
	item     fitting.ItemID
	category string
}

// Categorizer assigns waitlist categories from item rules.
type Categorizer struct {
	categories []config.WaitlistCategory
	rules      []categoryRule
}

// NewCategorizer resolves the item names in a categories document.
func NewCategorizer(ctx context.Context, cat catalog.Catalog, doc *config.Categories) (*Categorizer, error) {
	names := make([]string, 0, len(doc.Rules))
	for _, r := range doc.Rules {
		names = append(names, r.Item)
	}
	ids, err := cat.IDsOf(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolving category rules: %w", err)
	}

	c := &Categorizer{categories: doc.Categories}
	var problems config.Problems
	for i, r := range doc.Rules {
		id, ok := ids[r.Item]
		if !ok {
			problems.Add(fmt.Errorf("rules[%d]: %w: %q", i, fitting.ErrUnknownItem, r.Item))
			continue
		}
		c.rules = append(c.rules, categoryRule{item: id, category: r.Category})
	}
	if err := problems.Err(); err != nil {
		return nil, err
	}
	return c, nil
}

// Categorize returns the category of the first rule whose item is the hull
// or a fitted module.
func (c *Categorizer) Categorize(fit fitting.Loadout) (string, bool) {
	for _, r := range c.rules {
		if r.item == fit.Hull || fit.Modules[r.item] > 0 {
			return r.category, true
		}
	}
	return "", false
}

// Categories returns the configured categories in declaration order.
func (c *Categorizer) Categories() []config.WaitlistCategory {
	return c.categories
}
