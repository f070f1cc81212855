package codec

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Validate checks that every count is positive, every id resolves, no
// cargo-only item is fitted, and the hull is a ship.
func (c *Codec) Validate(ctx context.Context, fit fitting.Loadout) error {
	for _, id := range fitting.SortedIDs(fit.Modules) {
		if n := fit.Modules[id]; n <= 0 {
			return fmt.Errorf("%w: %d of module %d", fitting.ErrInvalidCount, n, id)
		}
	}
	for _, id := range fitting.SortedIDs(fit.Cargo) {
		if n := fit.Cargo[id]; n <= 0 {
			return fmt.Errorf("%w: %d of cargo %d", fitting.ErrInvalidCount, n, id)
		}
	}

	ids := fit.ItemIDs()
	items, err := c.catalog.Items(ctx, ids)
	if err != nil {
		return fmt.Errorf("resolving items: %w", err)
	}
	for _, id := range ids {
		if _, ok := items[id]; !ok {
			return fmt.Errorf("%w: id %d", fitting.ErrInvalidModule, id)
		}
	}

	for _, id := range fitting.SortedIDs(fit.Modules) {
		if item := items[id]; item.IsAlwaysCargo() {
			return fmt.Errorf("%w: %s", fitting.ErrCargoOnlyModule, item.Name)
		}
	}

	if hull := items[fit.Hull]; hull.Category != fitting.CategoryShip {
		return fmt.Errorf("%w: %s is a %s", fitting.ErrInvalidHull, hull.Name, hull.Category)
	}

	return nil
}

// ParseValid decodes text in the given format and validates every loadout
// found. DNA input always yields exactly one loadout.
func (c *Codec) ParseValid(ctx context.Context, format, text string) ([]fitting.Loadout, error) {
	var fits []fitting.Loadout
	switch format {
	case fitting.FormatDNA, "":
		fit, err := c.ParseDNA(ctx, text)
		if err != nil {
			return nil, err
		}
		fits = []fitting.Loadout{fit}
	case fitting.FormatEFT:
		parsed, err := c.ParseEFT(ctx, text)
		if err != nil {
			return nil, err
		}
		fits = parsed
	default:
		return nil, fmt.Errorf("%w: unknown format %q", fitting.ErrMalformedInput, format)
	}

	if len(fits) == 0 {
		return nil, fmt.Errorf("%w: no fit found", fitting.ErrInvalidFit)
	}
	for _, fit := range fits {
		if err := c.Validate(ctx, fit); err != nil {
			return nil, err
		}
	}
	return fits, nil
}
