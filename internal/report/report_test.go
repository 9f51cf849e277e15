package report

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/pkg/models"
)

type fakeEvents struct {
	events    []models.Event
	firstSeen map[string]time.Time
}

func (f *fakeEvents) ListSince(context.Context, time.Time) ([]models.Event, error) {
	return f.events, nil
}

func (f *fakeEvents) FirstSeen(context.Context) (map[string]time.Time, error) {
	return f.firstSeen, nil
}

func TestBuildSplitsNewAndReturningVisitors(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	inWindow := now.AddDate(0, 0, -2)
	longAgo := now.AddDate(0, 0, -60)

	src := &fakeEvents{
		events: []models.Event{
			{AnonID: "a1", Name: "page_view", CreatedAt: inWindow},
			{AnonID: "a1", Name: "book_added", BookTitle: "Dune", UserID: "u1", CreatedAt: inWindow},
			{AnonID: "a2", Name: "page_view", CreatedAt: inWindow},
		},
		firstSeen: map[string]time.Time{
			"a1": longAgo,   // seen before the window
			"a2": inWindow,  // brand new
		},
	}

	rep, err := NewBuilder(src).Build(context.Background(), now)
	require.NoError(t, err)

	assert.Equal(t, 3, rep.TotalEvents)
	assert.Equal(t, 2, rep.ActiveVisitors)
	assert.Equal(t, 1, rep.NewVisitors)
	assert.Equal(t, 1, rep.Returning)
	assert.Equal(t, 1, rep.SignedIn)
	assert.Equal(t, 2, rep.EventCounts["page_view"])
	assert.Equal(t, 1, rep.EventCounts["book_added"])
}

func TestBuildUserCSVSortedByActivity(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, 0, -1)

	src := &fakeEvents{
		events: []models.Event{
			{AnonID: "quiet", Name: "page_view", CreatedAt: ts},
			{AnonID: "busy", Name: "page_view", CreatedAt: ts},
			{AnonID: "busy", Name: "book_added", BookTitle: "Hyperion", CreatedAt: ts},
			{AnonID: "busy", Name: "book_rated", BookTitle: "Hyperion", CreatedAt: ts},
		},
		firstSeen: map[string]time.Time{},
	}

	rep, err := NewBuilder(src).Build(context.Background(), now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(rep.UserCSV)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "anon_id,user_id,events,last_seen", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "busy,"), "most active visitor first, got %q", lines[1])
	assert.True(t, strings.HasPrefix(lines[2], "quiet,"))
}

func TestBuildBookCSVAggregatesByTitle(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	ts := now.AddDate(0, 0, -1)

	four, five := 4, 5
	src := &fakeEvents{
		events: []models.Event{
			{AnonID: "a1", Name: "book_added", BookTitle: "Dune", BookAuthor: "Frank Herbert", CreatedAt: ts},
			{AnonID: "a2", Name: "book_rated", BookTitle: "dune", BookRating: &five, CreatedAt: ts},
			{AnonID: "a1", Name: "book_rated", BookTitle: "Dune", BookRating: &four, CreatedAt: ts},
			{AnonID: "a2", Name: "book_added", BookTitle: "Ubik", BookAuthor: "Philip K. Dick", CreatedAt: ts},
		},
		firstSeen: map[string]time.Time{},
	}

	rep, err := NewBuilder(src).Build(context.Background(), now)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(string(rep.BookCSV)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "title,author,events,avg_rating", lines[0])
	assert.Equal(t, "Dune,Frank Herbert,3,4.5", lines[1], "case-insensitive title grouping keeps first casing and author")
	assert.Equal(t, "Ubik,Philip K. Dick,1,", lines[2])
}

func TestSummaryMentionsWindowAndCounts(t *testing.T) {
	now := time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC)
	src := &fakeEvents{
		events: []models.Event{
			{AnonID: "a1", Name: "page_view", CreatedAt: now.AddDate(0, 0, -1)},
		},
		firstSeen: map[string]time.Time{},
	}

	rep, err := NewBuilder(src).Build(context.Background(), now)
	require.NoError(t, err)

	summary := rep.Summary()
	assert.Contains(t, summary, "2024-05-03 to 2024-05-10")
	assert.Contains(t, summary, "page_view")
	assert.Contains(t, summary, "Active visitors:   1")
}
