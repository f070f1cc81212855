package skillplan

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/matcher"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Tank presets.
const (
	TankStarter = "starter"
	TankBastion = "bastion"
)

var armorCompensations = []string{
	"EM Armor Compensation",
	"Thermal Armor Compensation",
	"Kinetic Armor Compensation",
	"Explosive Armor Compensation",
}

const (
	mechanicsSkill    = "Mechanics"
	hullUpgradesSkill = "Hull Upgrades"
)

// Plan is a built training plan.
type Plan struct {
	Name        string
	Description string
	Alpha       bool
	Levels      []fitting.LevelPair
	Ships       []fitting.ItemID
	TotalSP     int64
}

// Planner turns plan steps into ordered skill levels.
type Planner struct {
	catalog  catalog.Catalog
	doctrine *matcher.Doctrine
	skills   *SkillData
	expand   bool
}

// NewPlanner creates a Planner. With expand set, prerequisites of
// prerequisites are followed as well.
func NewPlanner(cat catalog.Catalog, doctrine *matcher.Doctrine, skills *SkillData, expand bool) *Planner {
	return &Planner{
		catalog:  cat,
		doctrine: doctrine,
		skills:   skills,
		expand:   expand,
	}
}

// BuildAll builds every plan of a document, reporting all failures together
// as one configuration error.
func (p *Planner) BuildAll(ctx context.Context, doc *config.Plans) ([]Plan, error) {
	var (
		plans    []Plan
		problems config.Problems
	)
	for _, def := range doc.Plans {
		plan, err := p.Build(ctx, def)
		if err != nil {
			problems.Add(fmt.Errorf("plan %q: %w", def.Name, err))
			continue
		}
		plans = append(plans, plan)
	}
	if err := problems.Err(); err != nil {
		return nil, err
	}
	return plans, nil
}

// Build orders each step's requirements on its own and concatenates the
// results, keeping the first occurrence of every level.
func (p *Planner) Build(ctx context.Context, def config.Plan) (Plan, error) {
	plan := Plan{
		Name:        def.Name,
		Description: def.Description,
		Alpha:       def.Alpha,
	}
	seen := make(map[fitting.LevelPair]bool)
	ships := make(map[fitting.ItemID]bool)

	for i, step := range def.Steps {
		levels, ship, err := p.Step(ctx, step)
		if err != nil {
			return Plan{}, fmt.Errorf("step %d (%s): %w", i+1, step.Type, err)
		}
		for _, l := range levels {
			if !seen[l] {
				seen[l] = true
				plan.Levels = append(plan.Levels, l)
			}
		}
		if ship > 0 && !ships[ship] {
			ships[ship] = true
			plan.Ships = append(plan.Ships, ship)
		}
	}

	sp, err := p.TotalSP(ctx, plan.Levels)
	if err != nil {
		return Plan{}, err
	}
	plan.TotalSP = sp
	return plan, nil
}

// Step resolves one plan step to ordered levels, plus the hull it is about
// when it has one.
func (p *Planner) Step(ctx context.Context, step config.Step) ([]fitting.LevelPair, fitting.ItemID, error) {
	switch step.Type {
	case config.StepFit:
		return p.fitStep(ctx, step.Hull, step.Fit)
	case config.StepSkills:
		return p.tierStep(ctx, step.From, step.Tier)
	case config.StepSkill:
		levels, err := p.singleStep(ctx, step.From, step.Level)
		return levels, 0, err
	case config.StepTank:
		levels, err := p.tankStep(ctx, step.From)
		return levels, 0, err
	}
	return nil, 0, fmt.Errorf("%w: unknown step type %q", fitting.ErrMalformedInput, step.Type)
}

func (p *Planner) hull(name string) (*HullSkills, error) {
	h, ok := p.skills.Hull(name)
	if !ok {
		return nil, fmt.Errorf("%w: no skill requirements for hull %q", fitting.ErrConfiguration, name)
	}
	return h, nil
}

func (p *Planner) fitStep(ctx context.Context, hullName, fitName string) ([]fitting.LevelPair, fitting.ItemID, error) {
	hullID, err := catalog.IDOf(ctx, p.catalog, hullName)
	if err != nil {
		return nil, 0, err
	}

	var fit *fitting.DoctrineFit
	for _, f := range p.doctrine.ForHull(hullID) {
		if f.Name == fitName {
			fit = &f
			break
		}
	}
	if fit == nil {
		return nil, 0, fmt.Errorf("%w: %q for %s", fitting.ErrFitNotFound, fitName, hullName)
	}

	ids := append([]fitting.ItemID{fit.Fit.Hull}, fitting.SortedIDs(fit.Fit.Modules)...)
	items, err := p.catalog.Items(ctx, ids)
	if err != nil {
		return nil, 0, fmt.Errorf("loading fit items: %w", err)
	}

	reqs := make(map[fitting.LevelPair]bool)
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			return nil, 0, fmt.Errorf("%w: id %d", fitting.ErrUnknownItem, id)
		}
		for skill, level := range item.SkillRequirements {
			if level > 0 {
				reqs[fitting.LevelPair{Skill: skill, Level: level}] = true
			}
		}
	}

	h, err := p.hull(catalog.Name(items, fit.Fit.Hull))
	if err != nil {
		return nil, 0, err
	}
	levels, err := p.sorted(ctx, h, reqs)
	return levels, fit.Fit.Hull, err
}

func (p *Planner) tierStep(ctx context.Context, hullName, tierName string) ([]fitting.LevelPair, fitting.ItemID, error) {
	tier, err := ParseTier(tierName)
	if err != nil {
		return nil, 0, err
	}
	h, err := p.hull(hullName)
	if err != nil {
		return nil, 0, err
	}

	reqs := make(map[fitting.LevelPair]bool)
	for _, r := range h.Requirements(tier) {
		reqs[r] = true
	}
	levels, err := p.sorted(ctx, h, reqs)
	return levels, h.ID, err
}

func (p *Planner) singleStep(ctx context.Context, skillName string, level fitting.SkillLevel) ([]fitting.LevelPair, error) {
	if level < 1 || level > fitting.MaxSkillLevel {
		return nil, fmt.Errorf("%w: level %d of %q", fitting.ErrMalformedInput, level, skillName)
	}
	id, err := catalog.IDOf(ctx, p.catalog, skillName)
	if err != nil {
		return nil, err
	}
	reqs := map[fitting.LevelPair]bool{{Skill: id, Level: level}: true}
	return p.sorted(ctx, p.skills.Default(), reqs)
}

// tankStep trains the armor compensations to 2 for the starter preset and 4
// otherwise; the bastion preset adds Mechanics 4 and Hull Upgrades 5.
func (p *Planner) tankStep(ctx context.Context, preset string) ([]fitting.LevelPair, error) {
	comps := fitting.SkillLevel(4)
	if preset == TankStarter {
		comps = 2
	}

	names := append([]string{mechanicsSkill, hullUpgradesSkill}, armorCompensations...)
	ids, err := p.catalog.IDsOf(ctx, names)
	if err != nil {
		return nil, fmt.Errorf("resolving tank skills: %w", err)
	}
	for _, name := range names {
		if _, ok := ids[name]; !ok {
			return nil, fmt.Errorf("%w: %q", fitting.ErrUnknownItem, name)
		}
	}

	reqs := make(map[fitting.LevelPair]bool)
	for _, name := range armorCompensations {
		reqs[fitting.LevelPair{Skill: ids[name], Level: comps}] = true
	}
	if preset == TankBastion {
		reqs[fitting.LevelPair{Skill: ids[mechanicsSkill], Level: 4}] = true
		reqs[fitting.LevelPair{Skill: ids[hullUpgradesSkill], Level: 5}] = true
	}
	return p.sorted(ctx, p.skills.Default(), reqs)
}

func (p *Planner) sorted(ctx context.Context, h *HullSkills, reqs map[fitting.LevelPair]bool) ([]fitting.LevelPair, error) {
	seed := make([]fitting.LevelPair, 0, len(reqs))
	for r := range reqs {
		seed = append(seed, r)
	}
	sort.Slice(seed, func(i, j int) bool {
		if seed[i].Skill != seed[j].Skill {
			return seed[i].Skill < seed[j].Skill
		}
		return seed[i].Level < seed[j].Level
	})
	return SortedPlan(ctx, p.catalog, seed, h.Priority, p.expand)
}

// levelSP is the cumulative skill points per level at multiplier 1, as the
// game rounds them.
var levelSP = [...]float64{0, 250, 1415, 8000, 45255, 256000}

// TotalSP returns the skill points needed to train every skill in levels to
// the highest level listed for it.
func (p *Planner) TotalSP(ctx context.Context, levels []fitting.LevelPair) (int64, error) {
	highest := make(map[fitting.ItemID]fitting.SkillLevel)
	for _, l := range levels {
		if l.Level > fitting.MaxSkillLevel {
			return 0, fmt.Errorf("%w: skill %d at level %d is above %d", fitting.ErrConfiguration, l.Skill, l.Level, fitting.MaxSkillLevel)
		}
		if l.Level > highest[l.Skill] {
			highest[l.Skill] = l.Level
		}
	}
	ids := fitting.SortedIDs(highest)
	items, err := p.catalog.Items(ctx, ids)
	if err != nil {
		return 0, fmt.Errorf("loading skills: %w", err)
	}

	var total int64
	for _, id := range ids {
		item, ok := items[id]
		if !ok {
			return 0, fmt.Errorf("%w: skill %d", fitting.ErrUnknownItem, id)
		}
		multiplier, ok := item.Attribute(fitting.AttributeTrainingTimeMultiplier)
		if !ok {
			return 0, fmt.Errorf("%w: %s has no training time multiplier", fitting.ErrConfiguration, item.Name)
		}
		total += int64(math.Round(levelSP[highest[id]] * multiplier))
	}
	return total, nil
}
