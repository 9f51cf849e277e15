package recommend

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/internal/metadata"
	"leafnote/pkg/models"
)

type fakeSearcher struct {
	calls   []metadata.Query
	results map[string][]metadata.Volume
	err     error
}

func (f *fakeSearcher) Search(_ context.Context, q metadata.Query, _ int) ([]metadata.Volume, error) {
	f.calls = append(f.calls, q)
	if f.err != nil {
		return nil, f.err
	}
	return f.results[q.Encode()], nil
}

func TestFetchExternalShortCircuitsWithoutSeeds(t *testing.T) {
	fake := &fakeSearcher{}
	engine := NewEngine(fake)

	got := engine.FetchExternal(context.Background(), nil, nil, 5)
	assert.Empty(t, got)
	assert.Empty(t, fake.calls, "no network call expected without seeds")

	// rating 3 reads are not seeds either
	read := []models.ReadItem{{Title: "Meh", Rating: 3, DateRead: day("2024-01-01")}}
	got = engine.FetchExternal(context.Background(), read, nil, 5)
	assert.Empty(t, got)
	assert.Empty(t, fake.calls)
}

func TestFetchExternalDegradesToEmptyOnError(t *testing.T) {
	fake := &fakeSearcher{err: errors.New("upstream down")}
	engine := NewEngine(fake)

	read := []models.ReadItem{{Title: "Dune", Author: "Frank Herbert", Rating: 5, DateRead: day("2024-01-01")}}
	got := engine.FetchExternal(context.Background(), read, nil, 5)

	assert.Empty(t, got)
	assert.Len(t, fake.calls, 1)
}

func TestFetchExternalFiltersCandidates(t *testing.T) {
	seedQuery := metadata.Query{Author: "Frank Herbert"}
	fake := &fakeSearcher{results: map[string][]metadata.Volume{
		seedQuery.Encode(): {
			{ID: "v1", Title: "Dune", Language: "en"},                         // same as seed
			{ID: "v2", Title: "Dune Messiah", Language: "fr"},                 // non-English
			{ID: "v3", Title: "Summary of Dune", Language: "en"},              // banned substring
			{ID: "v4", Title: "Children of Dune", Language: "en"},             // kept
			{ID: "v5", Title: "Heretics of Dune", Language: ""},               // kept, unknown lang
			{ID: "v6", Title: "God Emperor", Language: "en"},                  // owned already
			{ID: "v7", Title: "Dune!!", Subtitle: "Deluxe", Language: "en"},   // normalizes to the seed title
			{ID: "v8", Title: "The Santaroga Barrier", Subtitle: "A Box Set Collection", Language: "en"}, // banned subtitle
		},
	}}
	engine := NewEngine(fake)

	read := []models.ReadItem{{Title: "Dune", Author: "Frank Herbert", Rating: 5, DateRead: day("2024-01-01")}}
	toRead := []models.ToReadItem{{Title: "God Emperor", DateAdded: day("2024-02-01")}}

	got := engine.FetchExternal(context.Background(), read, toRead, 10)

	require.Len(t, got, 2)
	assert.Equal(t, "Children of Dune", got[0].Title)
	assert.Equal(t, "v4", got[0].ExternalID)
	assert.Equal(t, models.SourceExternal, got[0].Source)
	assert.Equal(t, "Heretics of Dune", got[1].Title)
}

func TestFetchExternalRoundRobinAcrossSeeds(t *testing.T) {
	q1 := metadata.Query{Author: "Author One"}
	q2 := metadata.Query{Author: "Author Two"}
	fake := &fakeSearcher{results: map[string][]metadata.Volume{
		q1.Encode(): {
			{ID: "a1", Title: "Alpha", Language: "en"},
			{ID: "a2", Title: "Beta", Language: "en"},
		},
		q2.Encode(): {
			{ID: "b1", Title: "Gamma", Language: "en"},
			{ID: "b2", Title: "Delta", Language: "en"},
		},
	}}
	engine := NewEngine(fake)

	read := []models.ReadItem{
		{Title: "Seed One", Author: "Author One", Rating: 5, DateRead: day("2024-01-02")},
		{Title: "Seed Two", Author: "Author Two", Rating: 5, DateRead: day("2024-01-01")},
	}

	got := engine.FetchExternal(context.Background(), read, nil, 3)
	require.Len(t, got, 3)
	assert.Equal(t, "Alpha", got[0].Title)
	assert.Equal(t, "Gamma", got[1].Title)
	assert.Equal(t, "Beta", got[2].Title)
}

func TestBuildSeedQuery(t *testing.T) {
	// author wins, narrowed by primary category
	q := buildSeedQuery(models.ReadItem{Title: "Dune", Author: "Frank Herbert", Categories: []string{"Sci-Fi"}})
	assert.Equal(t, `inauthor:"Frank Herbert" subject:"Sci-Fi"`, q.Encode())

	// keyword fallback drops short tokens, numerals and stop words
	q = buildSeedQuery(models.ReadItem{Title: "The Wheel of Time Book III 2nd Edition"})
	assert.Equal(t, "wheel time", q.Encode())

	// nothing significant left: exact title
	q = buildSeedQuery(models.ReadItem{Title: "It"})
	assert.Equal(t, "It", q.Encode())
}

func TestTitleKeywords(t *testing.T) {
	assert.Equal(t, []string{"wheel", "time"}, titleKeywords("The Wheel of Time Vol. IV"))
	assert.Empty(t, titleKeywords("I II III"))
	assert.Empty(t, titleKeywords("42 7"))
}

func TestTokenOverlap(t *testing.T) {
	// sequels sharing one series word stay under the cutoff
	seq := tokenOverlap(tokenSet("dune"), tokenSet("children of dune"))
	assert.InDelta(t, 1.0/3.0, seq, 1e-9)

	// near-identical edition titles score above it
	ed := tokenOverlap(tokenSet("the name of the wind"), tokenSet("the name of the wind deluxe"))
	assert.Greater(t, ed, overlapCutoff)

	assert.InDelta(t, 0.0, tokenOverlap(tokenSet("foo"), tokenSet("bar")), 1e-9)
}
