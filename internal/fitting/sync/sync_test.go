package sync_test

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsned/waitlist-fitting-server/internal/fitting/db"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/fittest"
	"github.com/rsned/waitlist-fitting-server/internal/fitting/sync"
	"github.com/rsned/waitlist-fitting-server/pkg/fitting"
)

func openDB(t *testing.T) *db.DB {
	t.Helper()
	database, err := db.OpenAndInit(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })
	return database
}

func TestImportItemsFromFile(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)

	path := filepath.Join(t.TempDir(), "items.json")
	require.NoError(t, os.WriteFile(path, fittest.File(t, "items.json"), 0o644))

	res, err := sync.NewSyncer(database).ImportItemsFromFile(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, len(fittest.Records(t)), res.Imported)
	assert.Zero(t, res.Skipped)
	_, err = uuid.Parse(res.ImportID)
	assert.NoError(t, err)

	count, err := database.GetSyncMetadata(ctx, sync.MetaItemsCount)
	require.NoError(t, err)
	assert.Equal(t, strconv.Itoa(res.Imported), count)

	importID, err := database.GetSyncMetadata(ctx, sync.MetaItemsImportID)
	require.NoError(t, err)
	assert.Equal(t, res.ImportID, importID)

	last, err := database.GetSyncMetadata(ctx, sync.MetaItemsLastSync)
	require.NoError(t, err)
	assert.NotEmpty(t, last)

	n, err := db.NewItemStore(database).CountItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, res.Imported, n)
}

func TestImportItemsSkipsBadRecords(t *testing.T) {
	ctx := context.Background()
	database := openDB(t)

	res, err := sync.NewSyncer(database).ImportItems(ctx, []db.ItemRecord{
		{ID: 1, Name: "  Padded Name  ", GroupID: 1, CategoryID: 7, Published: true},
		{ID: 0, Name: "No Id"},
		{ID: 2, Name: "   "},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, res.Imported)
	assert.Equal(t, 2, res.Skipped)

	ids, err := db.NewItemStore(database).IDsOf(ctx, []string{"Padded Name"})
	require.NoError(t, err)
	assert.Equal(t, map[string]fitting.ItemID{"Padded Name": 1}, ids)
}

func TestImportItemsFromFileErrors(t *testing.T) {
	ctx := context.Background()
	syncer := sync.NewSyncer(openDB(t))

	_, err := syncer.ImportItemsFromFile(ctx, filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"id": 1}`), 0o644))
	_, err = syncer.ImportItemsFromFile(ctx, path)
	assert.ErrorContains(t, err, "parsing JSON")
}
