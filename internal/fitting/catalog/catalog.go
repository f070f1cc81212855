// Package catalog defines the read-only item catalog the fitting engine
// resolves ids and names against.
package catalog

import (
	"context"
	"fmt"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

// Catalog resolves items. Batched lookups leave unknown keys out of the
// result rather than failing.
type Catalog interface {
	Items(ctx context.Context, ids []fitting.ItemID) (map[fitting.ItemID]*fitting.Item, error)
	IDsOf(ctx context.Context, names []string) (map[string]fitting.ItemID, error)
	MetaVariants(ctx context.Context, id fitting.ItemID) (map[fitting.ItemID]int, error)
}

// Item resolves a single id, failing with ErrUnknownItem if it is absent.
func Item(ctx context.Context, c Catalog, id fitting.ItemID) (*fitting.Item, error) {
	items, err := c.Items(ctx, []fitting.ItemID{id})
	if err != nil {
		return nil, err
	}
	item, ok := items[id]
	if !ok {
		return nil, fmt.Errorf("%w: id %d", fitting.ErrUnknownItem, id)
	}
	return item, nil
}

// IDOf resolves a single name, failing with ErrUnknownItem if it is absent.
func IDOf(ctx context.Context, c Catalog, name string) (fitting.ItemID, error) {
	ids, err := c.IDsOf(ctx, []string{name})
	if err != nil {
		return 0, err
	}
	id, ok := ids[name]
	if !ok {
		return 0, fmt.Errorf("%w: %q", fitting.ErrUnknownItem, name)
	}
	return id, nil
}

// Name returns the item name for id, or a placeholder if it is unknown.
func Name(items map[fitting.ItemID]*fitting.Item, id fitting.ItemID) string {
	if item, ok := items[id]; ok {
		return item.Name
	}
	return fmt.Sprintf("Unknown item %d", id)
}

// Store adapts a SQLite item store to the Catalog interface.
type Store struct {
	items *db.ItemStore
}

var _ Catalog = (*Store)(nil)

// NewStore creates a catalog backed by the database.
func NewStore(database *db.DB) *Store {
	return &Store{items: db.NewItemStore(database)}
}

func (s *Store) Items(ctx context.Context, ids []fitting.ItemID) (map[fitting.ItemID]*fitting.Item, error) {
	return s.items.LoadItems(ctx, ids)
}

func (s *Store) IDsOf(ctx context.Context, names []string) (map[string]fitting.ItemID, error) {
	return s.items.IDsOf(ctx, names)
}

func (s *Store) MetaVariants(ctx context.Context, id fitting.ItemID) (map[fitting.ItemID]int, error) {
	return s.items.MetaVariants(ctx, id)
}

// MaxItemID returns the highest known item id.
func (s *Store) MaxItemID(ctx context.Context) (fitting.ItemID, error) {
	return s.items.MaxItemID(ctx)
}
