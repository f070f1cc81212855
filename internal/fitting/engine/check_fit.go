package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// CheckFit evaluates a pilot's DNA loadout and trained skills for the
// waitlist.
func (e *Engine) CheckFit(ctx context.Context, req fitting.CheckFitRequest) (*fitting.CheckFitResponse, error) {
	fit, err := e.parseOne(ctx, fitting.FormatDNA, req.Fit)
	if err != nil {
		return nil, err
	}
	trained := req.Skills
	if trained == nil {
		trained = map[fitting.ItemID]fitting.SkillLevel{}
	}

	res, err := e.checker.Check(ctx, fit, trained)
	if err != nil {
		return nil, err
	}

	resp := &fitting.CheckFitResponse{
		Approved: res.Approved,
		Category: res.Category,
		Tags:     res.Tags,
		Errors:   res.Errors,
	}
	resp.CategoryName = e.categoryName(res.Category)
	if res.Match != nil {
		resp.Doctrine = res.Match.Fit.Name
		resp.Diff, err = e.namedDiff(ctx, res.Match.Diff)
		if err != nil {
			return nil, err
		}
	}

	e.logger.Debug("checked fit", "hull", fit.Hull, "approved", resp.Approved, "category", resp.Category)
	return resp, nil
}

// categoryName returns the display name of a waitlist category, or the id
// itself for categories that are not configured.
func (e *Engine) categoryName(id string) string {
	for _, c := range e.categories.Categories() {
		if c.ID == id {
			return c.Name
		}
	}
	return id
}
