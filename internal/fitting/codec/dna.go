// Package codec converts loadouts to and from their text encodings: the
// compact colon-separated DNA form and the multi-line EFT form.
package codec

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/catalog"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// MaxDNAClauses bounds the number of item clauses accepted in one DNA string.
const MaxDNAClauses = 1000

// Codec parses and encodes loadouts, consulting the catalog to tell fitted
// items from cargo.
type Codec struct {
	catalog catalog.Catalog
}

// New creates a Codec.
func New(cat catalog.Catalog) *Codec {
	return &Codec{catalog: cat}
}

type dnaClause struct {
	id      fitting.ItemID
	count   int64
	toCargo bool
}

// ParseDNA decodes a DNA string of the form
//
//	hull:item[_][;count]:...::
//
// A trailing underscore forces an item into cargo; otherwise charges and
// implants go to cargo and everything else is fitted.
func (c *Codec) ParseDNA(ctx context.Context, dna string) (fitting.Loadout, error) {
	pieces := strings.Split(dna, ":")

	hull, err := parseItemID(pieces[0])
	if err != nil {
		return fitting.Loadout{}, fmt.Errorf("%w: hull %q", fitting.ErrInvalidFit, pieces[0])
	}

	var (
		clauses []dnaClause
		lookup  []fitting.ItemID
	)
	for _, piece := range pieces[1:] {
		if piece == "" {
			continue
		}
		if len(clauses) >= MaxDNAClauses {
			return fitting.Loadout{}, fmt.Errorf("%w: more than %d items", fitting.ErrInvalidFit, MaxDNAClauses)
		}

		idPart, countPart, hasCount := strings.Cut(piece, ";")

		clause := dnaClause{count: 1}
		if strings.HasSuffix(idPart, "_") {
			clause.toCargo = true
			idPart = strings.TrimSuffix(idPart, "_")
		}
		if clause.id, err = parseItemID(idPart); err != nil {
			return fitting.Loadout{}, fmt.Errorf("%w: item %q", fitting.ErrInvalidFit, piece)
		}
		if hasCount {
			if clause.count, err = strconv.ParseInt(countPart, 10, 64); err != nil {
				return fitting.Loadout{}, fmt.Errorf("%w: count %q", fitting.ErrInvalidFit, piece)
			}
		}
		if !clause.toCargo {
			lookup = append(lookup, clause.id)
		}
		clauses = append(clauses, clause)
	}

	items, err := c.catalog.Items(ctx, lookup)
	if err != nil {
		return fitting.Loadout{}, fmt.Errorf("resolving items: %w", err)
	}

	fit := fitting.NewLoadout(hull)
	for _, clause := range clauses {
		dest := fit.Modules
		if !clause.toCargo {
			item, ok := items[clause.id]
			if !ok {
				return fitting.Loadout{}, fmt.Errorf("%w: id %d", fitting.ErrInvalidModule, clause.id)
			}
			if item.IsAlwaysCargo() {
				dest = fit.Cargo
			}
		} else {
			dest = fit.Cargo
		}
		dest[clause.id] += clause.count
	}

	return fit, nil
}

// EncodeDNA writes the canonical DNA form: modules by ascending id, then cargo
// by ascending id with an underscore on items that would otherwise be read
// back as fitted.
func (c *Codec) EncodeDNA(ctx context.Context, fit fitting.Loadout) (string, error) {
	cargoIDs := fitting.SortedIDs(fit.Cargo)
	items, err := c.catalog.Items(ctx, cargoIDs)
	if err != nil {
		return "", fmt.Errorf("resolving items: %w", err)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%d:", fit.Hull)
	for _, id := range fitting.SortedIDs(fit.Modules) {
		fmt.Fprintf(&sb, "%d;%d:", id, fit.Modules[id])
	}
	for _, id := range cargoIDs {
		item, ok := items[id]
		if !ok {
			return "", fmt.Errorf("%w: id %d", fitting.ErrInvalidModule, id)
		}
		if item.IsAlwaysCargo() {
			fmt.Fprintf(&sb, "%d;%d:", id, fit.Cargo[id])
		} else {
			fmt.Fprintf(&sb, "%d_;%d:", id, fit.Cargo[id])
		}
	}
	sb.WriteString(":")

	return sb.String(), nil
}

func parseItemID(s string) (fitting.ItemID, error) {
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("item id %d out of range", n)
	}
	return fitting.ItemID(n), nil
}
