// Package enrich fills in author, description and categories for a
// bare title via the external metadata API. Lookups never fail the
// add-item flow: every miss degrades to a synthesized description.
package enrich

import (
	"context"
	"log"

	"leafnote/internal/metadata"
	"leafnote/internal/recommend"
)

// Meta is what enrichment adds to an item.
type Meta struct {
	Author           string
	ShortDescription string
	Categories       []string
}

type Searcher interface {
	Search(ctx context.Context, q metadata.Query, limit int) ([]metadata.Volume, error)
}

type Enricher struct {
	Books Searcher
}

func NewEnricher(books Searcher) *Enricher {
	return &Enricher{Books: books}
}

// Lookup finds metadata for a title. The first search hit wins; its
// description is reduced to two sentences. Any failure, non-success or
// empty result set falls back to synthesized text.
func (e *Enricher) Lookup(ctx context.Context, title string) Meta {
	volumes, err := e.Books.Search(ctx, metadata.Query{Text: title}, 5)
	if err != nil {
		log.Printf("[enrich] lookup %q failed: %v", title, err)
		return fallback(title, "")
	}
	if len(volumes) == 0 {
		return fallback(title, "")
	}

	v := volumes[0]
	meta := Meta{
		Author:     v.PrimaryAuthor(),
		Categories: v.Categories,
	}
	if v.Description != "" {
		meta.ShortDescription = recommend.SummarizeTwoSentences(v.Description)
	} else {
		meta.ShortDescription = recommend.FallbackMeta(title, meta.Author)
	}
	return meta
}

func fallback(title, author string) Meta {
	return Meta{
		Author:           author,
		ShortDescription: recommend.FallbackMeta(title, author),
	}
}
