package config

import (
	"fmt"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

var validate = validator.New()

// ============================================
// modules.yaml
// ============================================

// Modules is the item substitution document.
type Modules struct {
	Alternatives   [][][]string         `yaml:"alternatives" validate:"dive,min=1,dive,min=1,dive,required"`
	FromMeta       []FromMetaEntry      `yaml:"from_meta" validate:"dive"`
	FromAttribute  []FromAttributeEntry `yaml:"from_attribute" validate:"dive"`
	AcceptT1       []string             `yaml:"accept_t1" validate:"dive,required,min=2"`
	CargoIgnore    []string             `yaml:"cargo_ignore" validate:"dive,required"`
	Drugs          []DrugRule           `yaml:"drugs_approve_override" validate:"dive"`
	Identification []string             `yaml:"identification" validate:"dive,required"`
}

// FromMetaEntry declares a meta family by its base item.
type FromMetaEntry struct {
	Base        string `yaml:"base" validate:"required"`
	Abyssal     string `yaml:"abyssal"`
	Alternative string `yaml:"alternative"`
}

// FromAttributeEntry ranks the meta families of Base by an attribute.
type FromAttributeEntry struct {
	Base      []string            `yaml:"base" validate:"required,min=1,dive,required"`
	Attribute fitting.AttributeID `yaml:"attribute" validate:"required,gt=0"`
	Reverse   bool                `yaml:"reverse"`
}

// DrugRule rewrites expected cargo when Detect is part of it.
type DrugRule struct {
	Detect string       `yaml:"detect" validate:"required"`
	Remove []string     `yaml:"remove" validate:"dive,required"`
	Add    []DrugAmount `yaml:"add" validate:"dive"`
}

// DrugAmount is a replacement cargo entry.
type DrugAmount struct {
	Name   string `yaml:"name" validate:"required"`
	Amount int64  `yaml:"amount" validate:"gt=0"`
}

// ParseModules decodes and validates a modules document.
func ParseModules(data []byte) (*Modules, error) {
	var m Modules
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("%w: parsing modules: %w", fitting.ErrConfiguration, err)
	}
	if err := validate.Struct(&m); err != nil {
		return nil, fmt.Errorf("%w: validating modules: %w", fitting.ErrConfiguration, err)
	}
	return &m, nil
}

// ============================================
// skills.yaml
// ============================================

// Skills is the per-hull skill requirement document.
type Skills struct {
	// DefaultHull supplies priorities for plan steps that are not tied to a hull.
	DefaultHull  string                           `yaml:"default_hull" validate:"required"`
	Categories   map[string][]string              `yaml:"categories"`
	Requirements map[string]map[string]SkillTiers `yaml:"requirements" validate:"required,min=1"`
}

// SkillTiers are the levels a hull asks of one skill. Elite defaults to Min
// and Gold to Elite.
type SkillTiers struct {
	Min      *fitting.SkillLevel `yaml:"min" validate:"omitempty,min=0,max=5"`
	Elite    *fitting.SkillLevel `yaml:"elite" validate:"omitempty,min=0,max=5"`
	Gold     *fitting.SkillLevel `yaml:"gold" validate:"omitempty,min=0,max=5"`
	Priority *float64            `yaml:"priority" validate:"omitempty,gt=0"`
}

// ParseSkills decodes and validates a skills document.
func ParseSkills(data []byte) (*Skills, error) {
	var s Skills
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: parsing skills: %w", fitting.ErrConfiguration, err)
	}
	if err := validate.Struct(&s); err != nil {
		return nil, fmt.Errorf("%w: validating skills: %w", fitting.ErrConfiguration, err)
	}
	for hull, skills := range s.Requirements {
		for skill, tiers := range skills {
			if err := validate.Struct(&tiers); err != nil {
				return nil, fmt.Errorf("%w: validating skills %s/%s: %w", fitting.ErrConfiguration, hull, skill, err)
			}
		}
	}
	if _, ok := s.Requirements[s.DefaultHull]; !ok {
		return nil, fmt.Errorf("%w: default hull %q has no requirements", fitting.ErrConfiguration, s.DefaultHull)
	}
	return &s, nil
}

// ============================================
// skillplan.yaml
// ============================================

// Step types.
const (
	StepFit    = "fit"
	StepSkills = "skills"
	StepSkill  = "skill"
	StepTank   = "tank"
)

// Plans is the skill plan document.
type Plans struct {
	// ExpandPrerequisites follows prerequisites of prerequisites when
	// building a plan graph. Off, only the direct prerequisites of a
	// level 1 requirement are added.
	ExpandPrerequisites bool   `yaml:"expand_prerequisites"`
	Plans               []Plan `yaml:"plans" validate:"dive"`
}

// Plan is a named, ordered list of steps.
type Plan struct {
	Name        string `yaml:"name" json:"name" validate:"required"`
	Description string `yaml:"description" json:"description"`
	Alpha       bool   `yaml:"alpha" json:"alpha"`
	Steps       []Step `yaml:"plan" json:"plan" validate:"required,min=1,dive"`
}

// Step is one plan entry. Which fields apply depends on Type.
type Step struct {
	Type  string             `yaml:"type" json:"type" validate:"required,oneof=fit skills skill tank"`
	Hull  string             `yaml:"hull,omitempty" json:"hull,omitempty" validate:"required_if=Type fit"`
	Fit   string             `yaml:"fit,omitempty" json:"fit,omitempty" validate:"required_if=Type fit"`
	From  string             `yaml:"from,omitempty" json:"from,omitempty" validate:"required_unless=Type fit"`
	Tier  string             `yaml:"tier,omitempty" json:"tier,omitempty" validate:"required_if=Type skills"`
	Level fitting.SkillLevel `yaml:"level,omitempty" json:"level,omitempty" validate:"min=0,max=5"`
}

// ParsePlans decodes and validates a skill plan document.
func ParsePlans(data []byte) (*Plans, error) {
	var p Plans
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: parsing skill plans: %w", fitting.ErrConfiguration, err)
	}
	if err := validate.Struct(&p); err != nil {
		return nil, fmt.Errorf("%w: validating skill plans: %w", fitting.ErrConfiguration, err)
	}
	return &p, nil
}

// ============================================
// categories.yaml
// ============================================

// Categories is the waitlist category document.
type Categories struct {
	Categories []WaitlistCategory `yaml:"categories" validate:"required,min=1,dive"`
	Rules      []CategoryRule     `yaml:"rules" validate:"dive"`
}

// WaitlistCategory is a queue pilots are sorted into.
type WaitlistCategory struct {
	ID   string `yaml:"id" json:"id" validate:"required"`
	Name string `yaml:"name" json:"name" validate:"required"`
}

// CategoryRule assigns a category to fits using Item as hull or module.
type CategoryRule struct {
	Item     string `yaml:"item" validate:"required"`
	Category string `yaml:"category" validate:"required"`
}

// ParseCategories decodes and validates a categories document.
func ParseCategories(data []byte) (*Categories, error) {
	var c Categories
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("%w: parsing categories: %w", fitting.ErrConfiguration, err)
	}
	if err := validate.Struct(&c); err != nil {
		return nil, fmt.Errorf("%w: validating categories: %w", fitting.ErrConfiguration, err)
	}
	known := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		known[cat.ID] = true
	}
	for _, rule := range c.Rules {
		if !known[rule.Category] {
			return nil, fmt.Errorf("%w: rule for %q names unknown category %q", fitting.ErrConfiguration, rule.Item, rule.Category)
		}
	}
	return &c, nil
}
