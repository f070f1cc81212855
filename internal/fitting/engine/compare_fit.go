package engine

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// CompareFit diffs an actual DNA loadout against an expected one, given
// either as DNA or as a doctrine fit name.
func (e *Engine) CompareFit(ctx context.Context, req fitting.CompareFitRequest) (*fitting.CompareFitResponse, error) {
	expected, err := e.expectedFit(ctx, req)
	if err != nil {
		return nil, err
	}
	actual, err := e.parseOne(ctx, fitting.FormatDNA, req.Actual)
	if err != nil {
		return nil, err
	}

	diff := e.matcher.Differ().Diff(expected, actual)
	named, err := e.namedDiff(ctx, diff)
	if err != nil {
		return nil, err
	}
	return &fitting.CompareFitResponse{Clean: diff.IsClean(), Diff: *named}, nil
}

func (e *Engine) expectedFit(ctx context.Context, req fitting.CompareFitRequest) (fitting.Loadout, error) {
	switch {
	case req.Doctrine != "" && req.Expected != "":
		return fitting.Loadout{}, fmt.Errorf("%w: give either an expected fit or a doctrine name, not both", fitting.ErrMalformedInput)
	case req.Doctrine != "":
		fit, ok := e.doctrine.ByName(req.Doctrine)
		if !ok {
			return fitting.Loadout{}, fmt.Errorf("%w: %q", fitting.ErrFitNotFound, req.Doctrine)
		}
		return fit.Fit, nil
	case req.Expected != "":
		return e.parseOne(ctx, fitting.FormatDNA, req.Expected)
	}
	return fitting.Loadout{}, fmt.Errorf("%w: no expected fit", fitting.ErrMalformedInput)
}

// parseOne decodes and validates text holding exactly one loadout.
func (e *Engine) parseOne(ctx context.Context, format, text string) (fitting.Loadout, error) {
	fits, err := e.codec.ParseValid(ctx, format, text)
	if err != nil {
		return fitting.Loadout{}, err
	}
	if len(fits) != 1 {
		return fitting.Loadout{}, fmt.Errorf("%w: expected one fit, got %d", fitting.ErrInvalidFit, len(fits))
	}
	return fits[0], nil
}
