package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"leafnote/pkg/models"
)

func TestCombineExternalFirst(t *testing.T) {
	external := []models.Recommendation{{Title: "A", ExternalID: "x1", Source: models.SourceExternal}}
	local := []models.Recommendation{{Title: "B", Source: models.SourceToRead}}

	got := Combine(external, local, 5)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0].Title)
	assert.Equal(t, "B", got[1].Title)
}

func TestCombineDedupsAcrossSources(t *testing.T) {
	external := []models.Recommendation{
		{Title: "Dune", ExternalID: "x1", Source: models.SourceExternal},
		{Title: "Hyperion", ExternalID: "x2", Source: models.SourceExternal},
		{Title: "Hyperion Deluxe", ExternalID: "x2", Source: models.SourceExternal}, // same external id
	}
	local := []models.Recommendation{
		{Title: "dune!", Source: models.SourceToRead}, // same normalized title
		{Title: "Foundation", Source: models.SourceTopRated},
	}

	got := Combine(external, local, 10)
	require.Len(t, got, 3)
	assert.Equal(t, "Dune", got[0].Title)
	assert.Equal(t, "Hyperion", got[1].Title)
	assert.Equal(t, "Foundation", got[2].Title)
}

func TestCombineCap(t *testing.T) {
	external := []models.Recommendation{
		{Title: "A", ExternalID: "1"},
		{Title: "B", ExternalID: "2"},
	}
	local := []models.Recommendation{{Title: "C"}, {Title: "D"}}

	assert.Len(t, Combine(external, local, 3), 3)
	assert.Empty(t, Combine(external, local, 0))
}
