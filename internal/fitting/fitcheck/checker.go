package fitcheck

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/matcher"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Tags.
const (
	TagStarterSkills = "STARTER-SKILLS"
	TagEliteSkills   = "ELITE-SKILLS"
	TagGoldSkills    = "GOLD-SKILLS"
	TagEliteFit      = "ELITE-FIT"
)

const categoryLogi = "logi"

// Item names the checks depend on.
const (
	bastionModule = "Bastion Module I"
	hullUpgrades  = "Hull Upgrades"
	mechanics     = "Mechanics"
	emComp        = "EM Armor Compensation"
	thermalComp   = "Thermal Armor Compensation"
	kineticComp   = "Kinetic Armor Compensation"
	explosiveComp = "Explosive Armor Compensation"
)

// Result is the outcome of a fit check.
type Result struct {
	Approved bool
	Category string
	Tags     []string
	Errors   []string
	// Match is nil when no doctrine fit uses the hull.
	Match *matcher.Match
}

// Checker evaluates loadouts against the doctrine and skill tables.
type Checker struct {
	catalog    catalog.Catalog
	matcher    *matcher.Matcher
	skills     *skillplan.SkillData
	categories *Categorizer
	ids        map[string]fitting.ItemID
}

// NewChecker creates a Checker, resolving the items its rules refer to.
func NewChecker(ctx context.Context, cat catalog.Catalog, m *matcher.Matcher, skills *skillplan.SkillData, categories *Categorizer) (*Checker, error) {
	names := []string{bastionModule, hullUpgrades, mechanics, emComp, thermalComp, kineticComp, explosiveComp}
	ids, err := cat.IDsOf(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolving fit check items: %w", err)
	}
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("%w: %w: %q", fitting.ErrConfiguration, fitting.ErrUnknownItem, name)
		}
	}
	return &Checker{
		catalog:    cat,
		matcher:    m,
		skills:     skills,
		categories: categories,
		ids:        ids,
	}, nil
}

type check struct {
	*Checker
	fit     fitting.Loadout
	trained map[fitting.ItemID]fitting.SkillLevel

	approved bool
	tags     map[string]bool
	errors   []string
	match    *matcher.Match
}

// Check evaluates fit for a pilot with the given trained skills. The fit
// must already be validated.
func (c *Checker) Check(ctx context.Context, fit fitting.Loadout, trained map[fitting.ItemID]fitting.SkillLevel) (Result, error) {
	k := &check{
		Checker:  c,
		fit:      fit,
		trained:  trained,
		approved: true,
		tags:     make(map[string]bool),
	}

	k.skillTier()
	if err := k.moduleSkills(ctx); err != nil {
		return Result{}, err
	}
	k.doctrine()
	k.tankSkills()
	category := k.category()

	tags := make([]string, 0, len(k.tags))
	for t := range k.tags {
		tags = append(tags, t)
	}
	sort.Strings(tags)

	return Result{
		Approved: k.approved,
		Category: category,
		Tags:     tags,
		Errors:   k.errors,
		Match:    k.match,
	}, nil
}

func (k *check) skill(name string) fitting.SkillLevel {
	return k.trained[k.ids[name]]
}

func (k *check) skillTier() {
	h, ok := k.skills.HullByID(k.fit.Hull)
	switch {
	case !ok:
		k.tags[TagStarterSkills] = true
	case h.Meets(k.trained, skillplan.TierGold):
		k.tags[TagGoldSkills] = true
	case h.Meets(k.trained, skillplan.TierElite):
		k.tags[TagEliteSkills] = true
	case h.Meets(k.trained, skillplan.TierMin):
	default:
		k.tags[TagStarterSkills] = true
	}
}

func (k *check) moduleSkills(ctx context.Context) error {
	ids := append([]fitting.ItemID{k.fit.Hull}, fitting.SortedIDs(k.fit.Modules)...)
	items, err := k.catalog.Items(ctx, ids)
	if err != nil {
		return fmt.Errorf("loading fit items: %w", err)
	}
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			return fmt.Errorf("%w: id %d", fitting.ErrInvalidModule, id)
		}
		for skill, level := range item.SkillRequirements {
			if k.trained[skill] < level {
				k.errors = append(k.errors, fmt.Sprintf("Missing skills to online/use '%s'", item.Name))
				break
			}
		}
	}
	return nil
}

func (k *check) doctrine() {
	m, ok := k.matcher.FindFit(k.fit)
	if !ok {
		k.approved = false
		return
	}
	k.match = &m

	d := m.Diff
	modulesOK := len(d.ModuleDowngraded) == 0 && len(d.ModuleExtra) == 0 && len(d.ModuleMissing) == 0
	if !modulesOK || len(d.CargoMissing) > 0 {
		k.approved = false
	}
	if modulesOK && strings.Contains(m.Fit.Name, "ELITE") {
		k.tags[TagEliteFit] = true
	}
}

func (k *check) tankSkills() {
	required := fitting.SkillLevel(4)
	if k.match != nil && strings.Contains(k.match.Fit.Name, "STARTER") {
		required = 2
	}

	have := min(k.skill(emComp), k.skill(thermalComp), k.skill(kineticComp), k.skill(explosiveComp))
	if have < required {
		k.errors = append(k.errors, fmt.Sprintf("Missing Armor Compensation skills: level %d required", required))
	}

	if k.fit.Modules[k.ids[bastionModule]] > 0 {
		if k.skill(hullUpgrades) < 5 {
			k.errors = append(k.errors, "Missing tank skill: Hull Upgrades 5 required")
		}
		if k.skill(mechanics) < 4 {
			k.errors = append(k.errors, "Missing tank skill: Mechanics 4 required")
		}
	}
}

// category applies the category rules; starter-skilled pilots fly in the
// starter queue, except logi, which is refused.
func (k *check) category() string {
	category, ok := k.categories.Categorize(k.fit)
	if !ok {
		category = CategoryStarter
	}
	if k.tags[TagStarterSkills] {
		if category == categoryLogi {
			k.approved = false
		} else {
			category = CategoryStarter
		}
	}
	return category
}
