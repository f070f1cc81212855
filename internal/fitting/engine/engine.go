// Package engine ties the fitting components together into the operations
// served to clients. An Engine is built once and is read-only afterwards.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/codec"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/config"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fitcheck"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/matcher"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/skillplan"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/variations"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Engine is the fitting analysis context shared by every request.
type Engine struct {
	catalog    catalog.Catalog
	codec      *codec.Codec
	graph      *variations.Graph
	doctrine   *matcher.Doctrine
	matcher    *matcher.Matcher
	skills     *skillplan.SkillData
	categories *fitcheck.Categorizer
	checker    *fitcheck.Checker
	plans      []fitting.SkillPlanResult
	logger     *slog.Logger
}

// New builds the engine from the catalog and the game rule documents. Every
// configuration problem found is reported in one error wrapping
// fitting.ErrConfiguration; other errors are returned as they occur.
func New(ctx context.Context, cat catalog.Catalog, data *config.Data, logger *slog.Logger) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		catalog: cat,
		codec:   codec.New(cat),
		logger:  logger,
	}

	var problems config.Problems
	collect := func(stage string, err error) error {
		if err == nil {
			return nil
		}
		if errors.Is(err, fitting.ErrConfiguration) {
			problems.Add(fmt.Errorf("%s: %w", stage, err))
			return nil
		}
		return fmt.Errorf("%s: %w", stage, err)
	}

	var err error
	e.graph, err = variations.Build(ctx, cat, data.Modules)
	if err := collect("modules", err); err != nil {
		return nil, err
	}

	e.doctrine, err = matcher.LoadDoctrine(ctx, e.codec, data.Fits)
	if err := collect("fits", err); err != nil {
		return nil, err
	}

	e.skills, err = skillplan.LoadSkillData(ctx, cat, data.Skills)
	if err := collect("skills", err); err != nil {
		return nil, err
	}

	e.categories, err = fitcheck.NewCategorizer(ctx, cat, data.Categories)
	if err := collect("categories", err); err != nil {
		return nil, err
	}

	// Everything below needs the pieces built above.
	if err := problems.Err(); err != nil {
		return nil, err
	}

	e.matcher = matcher.New(e.doctrine, e.graph)

	planner := skillplan.NewPlanner(cat, e.doctrine, e.skills, data.Plans.ExpandPrerequisites)
	plans, err := planner.BuildAll(ctx, data.Plans)
	if err := collect("skill plans", err); err != nil {
		return nil, err
	}

	e.checker, err = fitcheck.NewChecker(ctx, cat, e.matcher, e.skills, e.categories)
	if err := collect("fit check", err); err != nil {
		return nil, err
	}

	if err := problems.Err(); err != nil {
		return nil, err
	}

	e.plans, err = e.namePlans(ctx, plans)
	if err != nil {
		return nil, err
	}

	logger.Info("fitting engine ready",
		"variation_items", e.graph.Len(),
		"doctrine_fits", e.doctrine.Len(),
		"doctrine_hulls", len(e.doctrine.Hulls()),
		"skill_hulls", e.skills.Len(),
		"skill_plans", len(e.plans),
	)
	return e, nil
}

// Codec returns the loadout codec.
func (e *Engine) Codec() *codec.Codec {
	return e.codec
}

// Graph returns the variation graph.
func (e *Engine) Graph() *variations.Graph {
	return e.graph
}

// Doctrine returns the doctrine fit catalog.
func (e *Engine) Doctrine() *matcher.Doctrine {
	return e.doctrine
}
