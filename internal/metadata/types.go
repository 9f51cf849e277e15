package metadata

import "strings"

// Volume is one search result from the books API, reduced to the fields
// the tracker consumes.
type Volume struct {
	ID          string
	Title       string
	Subtitle    string
	Authors     []string
	Description string
	Language    string
	Categories  []string
}

// PrimaryAuthor returns the first listed author, or "".
func (v Volume) PrimaryAuthor() string {
	if len(v.Authors) == 0 {
		return ""
	}
	return v.Authors[0]
}

// Query describes one search. Either free text, or a structured
// author/subject search; structured fields win when set.
type Query struct {
	Text    string
	Author  string
	Subject string
}

// Encode renders the query in the books API q= syntax.
func (q Query) Encode() string {
	if q.Author != "" {
		parts := []string{`inauthor:"` + q.Author + `"`}
		if q.Subject != "" {
			parts = append(parts, `subject:"`+q.Subject+`"`)
		}
		return strings.Join(parts, " ")
	}
	return q.Text
}

type volumesResponse struct {
	TotalItems int `json:"totalItems"`
	Items      []struct {
		ID         string `json:"id"`
		VolumeInfo struct {
			Title       string   `json:"title"`
			Subtitle    string   `json:"subtitle"`
			Authors     []string `json:"authors"`
			Description string   `json:"description"`
			Language    string   `json:"language"`
			Categories  []string `json:"categories"`
		} `json:"volumeInfo"`
	} `json:"items"`
}
