package models

// RecSource records which rule produced a recommendation.
type RecSource string

const (
	SourceToRead       RecSource = "from_to_read"
	SourceTopRated     RecSource = "from_top_rated"
	SourceSimilarGenre RecSource = "from_similar_genre"
	SourceExternal     RecSource = "from_external"
	SourceFallback     RecSource = "fallback"
)

// Recommendation is a suggested title with a human-readable reason.
// Never persisted as canonical state; recomputed on demand.
type Recommendation struct {
	Title            string    `json:"title"`
	Reason           string    `json:"reason"`
	Source           RecSource `json:"source"`
	Author           string    `json:"author,omitempty"`
	ShortDescription string    `json:"shortDescription,omitempty"`
	ExternalID       string    `json:"externalId,omitempty"`
}
