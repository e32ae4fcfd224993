package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofair/server/internal/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	require.NoError(t, db.RunMigrations())
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreateAndListSearches(t *testing.T) {
	db := newTestDB(t)

	first := &models.SavedSearch{Make: "opel", Model: "corsa", PriceTo: 3000, Pages: 2}
	require.NoError(t, db.CreateSearch(first))
	assert.NotZero(t, first.ID)

	second := &models.SavedSearch{Make: "vw", Model: "golf", Pages: 1}
	require.NoError(t, db.CreateSearch(second))

	searches, err := db.GetRecentSearches(10)
	require.NoError(t, err)
	assert.Len(t, searches, 2)

	searches, err = db.GetRecentSearches(1)
	require.NoError(t, err)
	assert.Len(t, searches, 1)
}

func TestUpdateSearchCount(t *testing.T) {
	db := newTestDB(t)

	search := &models.SavedSearch{Make: "opel", Model: "corsa"}
	require.NoError(t, db.CreateSearch(search))
	require.NoError(t, db.UpdateSearchCount(search.ID, 42))

	searches, err := db.GetRecentSearches(1)
	require.NoError(t, err)
	require.Len(t, searches, 1)
	assert.Equal(t, 42, searches[0].ListingCount)
}

func TestUpsertListingsIgnoresDuplicates(t *testing.T) {
	db := newTestDB(t)

	search := &models.SavedSearch{Make: "opel", Model: "corsa"}
	require.NoError(t, db.CreateSearch(search))

	batch := []*models.StoredListing{
		{SearchID: search.ID, Title: "Opel Corsa 1.3 CDI", URL: "https://example.com/1"},
		{SearchID: search.ID, Title: "Opel Corsa 1.2", URL: "https://example.com/2"},
	}
	require.NoError(t, UpsertListings(db.GetDB(), batch))

	// Re-inserting the same URLs under the same search is a no-op.
	again := []*models.StoredListing{
		{SearchID: search.ID, Title: "Opel Corsa 1.3 CDI", URL: "https://example.com/1"},
	}
	require.NoError(t, UpsertListings(db.GetDB(), again))

	listings, err := db.GetSearchListings(search.ID)
	require.NoError(t, err)
	assert.Len(t, listings, 2)
}

func TestUpsertListingsSameURLDifferentSearch(t *testing.T) {
	db := newTestDB(t)

	first := &models.SavedSearch{Make: "opel", Model: "corsa"}
	require.NoError(t, db.CreateSearch(first))
	second := &models.SavedSearch{Make: "opel", Model: "corsa"}
	require.NoError(t, db.CreateSearch(second))

	require.NoError(t, UpsertListings(db.GetDB(), []*models.StoredListing{
		{SearchID: first.ID, Title: "Opel Corsa", URL: "https://example.com/1"},
	}))
	require.NoError(t, UpsertListings(db.GetDB(), []*models.StoredListing{
		{SearchID: second.ID, Title: "Opel Corsa", URL: "https://example.com/1"},
	}))

	listings, err := db.GetSearchListings(second.ID)
	require.NoError(t, err)
	assert.Len(t, listings, 1)
}

func TestUpsertListingsEmptyBatch(t *testing.T) {
	db := newTestDB(t)
	assert.NoError(t, UpsertListings(db.GetDB(), nil))
}
