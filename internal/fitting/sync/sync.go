// Package sync loads static item data into the catalog database.
package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
)

// Sync metadata keys.
const (
	MetaItemsLastSync = "items_last_sync"
	MetaItemsCount    = "items_count"
	MetaItemsImportID = "items_import_id"
)

// Syncer handles catalog imports.
type Syncer struct {
	db *db.DB
}

// NewSyncer creates a new Syncer.
func NewSyncer(database *db.DB) *Syncer {
	return &Syncer{db: database}
}

// ImportResult summarizes one import.
type ImportResult struct {
	ImportID string
	Imported int
	Skipped  int
}

// ImportItemsFromFile imports a JSON array of items. Records without a
// positive id or a name are skipped.
func (s *Syncer) ImportItemsFromFile(ctx context.Context, path string) (*ImportResult, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var records []db.ItemRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("parsing JSON: %w", err)
	}

	return s.ImportItems(ctx, records)
}

// ImportItems stores records and updates the sync metadata.
func (s *Syncer) ImportItems(ctx context.Context, records []db.ItemRecord) (*ImportResult, error) {
	items := make([]db.ItemRecord, 0, len(records))
	for _, rec := range records {
		rec.Name = strings.TrimSpace(rec.Name)
		if rec.ID <= 0 || rec.Name == "" {
			continue
		}
		items = append(items, rec)
	}

	itemStore := db.NewItemStore(s.db)
	if err := itemStore.BulkInsertItems(ctx, items); err != nil {
		return nil, fmt.Errorf("inserting items: %w", err)
	}

	result := &ImportResult{
		ImportID: uuid.NewString(),
		Imported: len(items),
		Skipped:  len(records) - len(items),
	}

	// Update sync metadata
	if err := s.db.SetSyncMetadata(ctx, MetaItemsLastSync, time.Now().Format(time.RFC3339)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaItemsCount, strconv.Itoa(result.Imported)); err != nil {
		return nil, err
	}
	if err := s.db.SetSyncMetadata(ctx, MetaItemsImportID, result.ImportID); err != nil {
		return nil, err
	}

	return result, nil
}
