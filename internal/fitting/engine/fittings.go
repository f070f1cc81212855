package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Fittings lists the doctrine fits with canonical DNA, grouped by hull in
// ascending hull id and declaration order within a hull.
func (e *Engine) Fittings(ctx context.Context) (*fitting.FittingsResponse, error) {
	hulls := e.doctrine.Hulls()
	ids := make(map[fitting.ItemID]bool, len(hulls))
	for _, h := range hulls {
		ids[h] = true
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &fitting.FittingsResponse{Hulls: make([]fitting.DoctrineHull, 0, len(hulls))}
	for _, h := range hulls {
		group := fitting.DoctrineHull{Hull: ref(items, h)}
		for _, f := range e.doctrine.ForHull(h) {
			dna, err := e.codec.EncodeDNA(ctx, f.Fit)
			if err != nil {
				return nil, err
			}
			group.Fits = append(group.Fits, fitting.DoctrineEntry{Name: f.Name, DNA: dna})
		}
		resp.Hulls = append(resp.Hulls, group)
	}
	return resp, nil
}
