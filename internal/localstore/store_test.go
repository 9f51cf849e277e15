package localstore

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/pkg/models"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestLibraryRoundTrip(t *testing.T) {
	s := openTestStore(t)

	lib := models.Library{
		ReadBooks: []models.ReadItem{
			{ID: "r1", Title: "Dune", Rating: 5, DateRead: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)},
		},
		ToReadBooks: []models.ToReadItem{
			{ID: "t1", Title: "Hyperion", DateAdded: time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)},
		},
	}
	require.NoError(t, s.SaveLibrary(lib))

	got := s.LoadLibrary()
	assert.Equal(t, lib, got)
}

func TestLoadLibraryEmptyStore(t *testing.T) {
	s := openTestStore(t)

	got := s.LoadLibrary()
	assert.NotNil(t, got.ReadBooks)
	assert.NotNil(t, got.ToReadBooks)
	assert.Empty(t, got.ReadBooks)
	assert.Empty(t, got.ToReadBooks)
}

func TestLoadLibraryCorruptPayloadResets(t *testing.T) {
	s := openTestStore(t)

	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(libraryKey), []byte("{not json"))
	})
	require.NoError(t, err)

	got := s.LoadLibrary()
	assert.Empty(t, got.ReadBooks)
	assert.Empty(t, got.ToReadBooks)
}

func TestRecCacheFreshness(t *testing.T) {
	s := openTestStore(t)

	_, ok := s.LoadRecCache()
	assert.False(t, ok)

	recs := []models.Recommendation{{Title: "Dune", Source: models.SourceExternal, ExternalID: "x1"}}
	require.NoError(t, s.SaveRecCache(recs))

	got, ok := s.LoadRecCache()
	require.True(t, ok)
	assert.Equal(t, recs, got)

	// an entry older than the TTL is a miss
	stale, err := json.Marshal(recCache{TS: time.Now().Add(-25 * time.Hour), Results: recs})
	require.NoError(t, err)
	err = s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(recCacheKey), stale)
	})
	require.NoError(t, err)

	_, ok = s.LoadRecCache()
	assert.False(t, ok)
}

func TestMagicLinkMarkerOncePerEmail(t *testing.T) {
	s := openTestStore(t)

	first, err := s.MarkMagicLinkSent("Reader@Example.COM")
	require.NoError(t, err)
	assert.True(t, first)

	again, err := s.MarkMagicLinkSent("reader@example.com")
	require.NoError(t, err)
	assert.False(t, again, "case-insensitive repeat should hit the marker")

	other, err := s.MarkMagicLinkSent("someone@else.net")
	require.NoError(t, err)
	assert.True(t, other)
}
