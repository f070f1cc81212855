package engine

import (
	"context"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// ItemVariations lists the items accepted in place of the named item, in the
// order the differ tries them. The list is empty for items no group declares.
func (e *Engine) ItemVariations(ctx context.Context, req fitting.ItemVariationsRequest) (*fitting.ItemVariationsResponse, error) {
	id, err := catalog.IDOf(ctx, e.catalog, req.Item)
	if err != nil {
		return nil, err
	}

	vars := e.graph.Get(id)
	ids := map[fitting.ItemID]bool{id: true}
	for _, v := range vars {
		ids[v.To] = true
	}
	items, err := e.names(ctx, ids)
	if err != nil {
		return nil, err
	}

	resp := &fitting.ItemVariationsResponse{
		Item:       ref(items, id),
		Variations: make([]fitting.VariationEntry, 0, len(vars)),
	}
	for _, v := range vars {
		resp.Variations = append(resp.Variations, fitting.VariationEntry{Item: ref(items, v.To), TierDelta: v.TierDelta})
	}
	return resp, nil
}
