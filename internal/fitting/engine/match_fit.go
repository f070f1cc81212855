package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// MatchFit finds the doctrine fit closest to a loadout. A hull without
// doctrine fits is reported as unmatched, not as an error.
func (e *Engine) MatchFit(ctx context.Context, req fitting.MatchFitRequest) (*fitting.MatchFitResponse, error) {
	fit, err := e.parseOne(ctx, req.Format, req.Fit)
	if err != nil {
		return nil, err
	}

	m, ok := e.matcher.FindFit(fit)
	if !ok {
		e.logger.Debug("no doctrine fit for hull", "hull", fit.Hull)
		return &fitting.MatchFitResponse{Matched: false}, nil
	}

	named, err := e.namedDiff(ctx, m.Diff)
	if err != nil {
		return nil, err
	}
	e.logger.Debug("matched fit", "doctrine", m.Fit.Name, "score", m.Score)
	return &fitting.MatchFitResponse{
		Matched:  true,
		Doctrine: m.Fit.Name,
		Score:    m.Score,
		Clean:    m.Diff.IsClean(),
		Diff:     named,
	}, nil
}
