package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// ParseFit decodes and validates loadout text, returning each loadout with
// item names and its canonical DNA.
func (e *Engine) ParseFit(ctx context.Context, req fitting.ParseFitRequest) (*fitting.ParseFitResponse, error) {
	fits, err := e.codec.ParseValid(ctx, req.Format, req.Text)
	if err != nil {
		return nil, err
	}

	ids := make(map[fitting.ItemID]bool)
	for _, fit := range fits {
		for _, id := range fit.ItemIDs() {
			ids[id] = true
		}
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &fitting.ParseFitResponse{Fits: make([]fitting.ParsedFit, 0, len(fits))}
	for _, fit := range fits {
		dna, err := e.codec.EncodeDNA(ctx, fit)
		if err != nil {
			return nil, err
		}
		resp.Fits = append(resp.Fits, fitting.ParsedFit{
			Hull:    ref(items, fit.Hull),
			DNA:     dna,
			Modules: itemCounts(items, fit.Modules),
			Cargo:   itemCounts(items, fit.Cargo),
		})
	}

	e.logger.Debug("parsed fits", "format", req.Format, "count", len(resp.Fits))
	return resp, nil
}
