package books

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/pkg/models"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	schema, err := os.ReadFile("../../docs/schema.sql")
	require.NoError(t, err)
	_, err = db.Exec(string(schema))
	require.NoError(t, err)

	_, err = db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u1', 'alice', 'alice@example.com', 'x')`)
	require.NoError(t, err)
	return db
}

func TestUpsertRoundTripsEnrichmentFields(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	rating := 5
	read := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	row := models.BookRow{
		ID:               "b1",
		UserID:           "u1",
		Title:            "Dune",
		Status:           models.StatusRead,
		Rating:           &rating,
		DateRead:         &read,
		Author:           "Frank Herbert",
		ShortDescription: "Desert planet politics.",
		Categories:       []string{"Fiction", "Science Fiction"},
	}
	require.NoError(t, repo.Upsert(ctx, row))

	got, err := repo.Get(ctx, "u1", "b1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Dune", got.Title)
	assert.Equal(t, "Frank Herbert", got.Author)
	require.NotNil(t, got.Rating)
	assert.Equal(t, 5, *got.Rating)
	assert.Equal(t, []string{"Fiction", "Science Fiction"}, got.Categories)
	require.NotNil(t, got.DateRead)
	assert.True(t, got.DateRead.Equal(read))
}

func TestUpsertReplacesExistingRow(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	rating := 3
	row := models.BookRow{ID: "b1", UserID: "u1", Title: "Dune", Status: models.StatusRead, Rating: &rating}
	require.NoError(t, repo.Upsert(ctx, row))

	rating = 5
	row.Rating = &rating
	row.Title = "Dune (reread)"
	require.NoError(t, repo.Upsert(ctx, row))

	rows, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dune (reread)", rows[0].Title)
	assert.Equal(t, 5, *rows[0].Rating)
}

func TestUpsertRejectsOutOfRangeRating(t *testing.T) {
	repo := NewRepo(openTestDB(t))

	rating := 9
	row := models.BookRow{ID: "b1", UserID: "u1", Title: "Dune", Status: models.StatusRead, Rating: &rating}
	assert.Error(t, repo.Upsert(context.Background(), row))
}

func TestDeleteReportsWhetherARowExisted(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.BookRow{ID: "b1", UserID: "u1", Title: "Ubik", Status: models.StatusToRead}))

	ok, err := repo.Delete(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = repo.Delete(ctx, "u1", "b1")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestReplaceAllForUserOnlyTouchesThatUser(t *testing.T) {
	db := openTestDB(t)
	_, err := db.Exec(`INSERT INTO users (id, username, email, password_hash) VALUES ('u2', 'bob', 'bob@example.com', 'x')`)
	require.NoError(t, err)

	repo := NewRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.Upsert(ctx, models.BookRow{ID: "b1", UserID: "u1", Title: "Dune", Status: models.StatusToRead}))
	require.NoError(t, repo.Upsert(ctx, models.BookRow{ID: "b1", UserID: "u2", Title: "Ubik", Status: models.StatusToRead}))

	require.NoError(t, repo.ReplaceAllForUser(ctx, "u1", []models.BookRow{
		{ID: "b2", UserID: "u1", Title: "Hyperion", Status: models.StatusToRead},
	}))

	mine, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Hyperion", mine[0].Title)

	theirs, err := repo.ListByUser(ctx, "u2")
	require.NoError(t, err)
	assert.Len(t, theirs, 1)
}

func TestReplaceAllForUserRollsBackOnBadRow(t *testing.T) {
	repo := NewRepo(openTestDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Upsert(ctx, models.BookRow{ID: "b1", UserID: "u1", Title: "Dune", Status: models.StatusRead}))

	bad := 0 // fails the rating range check on both upsert paths
	err := repo.ReplaceAllForUser(ctx, "u1", []models.BookRow{
		{ID: "b2", UserID: "u1", Title: "Hyperion", Status: models.StatusToRead},
		{ID: "b3", UserID: "u1", Title: "Ubik", Status: models.StatusRead, Rating: &bad},
	})
	require.Error(t, err)

	rows, err := repo.ListByUser(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, rows, 1, "failed replace must leave the shelf as it was")
	assert.Equal(t, "Dune", rows[0].Title)
}

func TestSplitRowsFallsBackToCreatedAt(t *testing.T) {
	created := time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)
	rating := 4
	rows := []models.BookRow{
		{ID: "r1", Title: "Dune", Status: models.StatusRead, Rating: &rating, CreatedAt: created},
		{ID: "t1", Title: "Ubik", Status: models.StatusToRead, CreatedAt: created},
		{ID: "x1", Title: "Ghost", Status: "archived", CreatedAt: created},
	}

	lib := SplitRows(rows)
	require.Len(t, lib.ReadBooks, 1)
	assert.True(t, lib.ReadBooks[0].DateRead.Equal(created))
	require.Len(t, lib.ToReadBooks, 1)
	assert.True(t, lib.ToReadBooks[0].DateAdded.Equal(created))
}

func TestRowFromReadFillsZeroDate(t *testing.T) {
	row := RowFromRead("u1", models.ReadItem{ID: "r1", Title: "Dune", Rating: 5})
	require.NotNil(t, row.DateRead)
	assert.False(t, row.DateRead.IsZero())
	require.NotNil(t, row.Rating)
	assert.Equal(t, 5, *row.Rating)
	assert.Equal(t, models.StatusRead, row.Status)
}
