package recommend

import (
	"context"
	"log"
	"strings"

	"leafnote/internal/metadata"
	"leafnote/pkg/models"
)

const (
	maxSeeds        = 3
	maxKeywords     = 6
	candidatePage   = 20
	overlapCutoff   = 0.70
	minKeywordRunes = 3
)

// Searcher is the slice of the metadata client the engine needs.
type Searcher interface {
	Search(ctx context.Context, q metadata.Query, limit int) ([]metadata.Volume, error)
}

// Engine fetches external recommendation candidates seeded by the
// user's highest rated reads.
type Engine struct {
	Books Searcher
}

func NewEngine(books Searcher) *Engine {
	return &Engine{Books: books}
}

// stopWords are series/ordinal filler that make poor search keywords.
var stopWords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "book": {}, "novel": {},
	"volume": {}, "vol": {}, "part": {}, "edition": {}, "series": {},
	"trilogy": {}, "saga": {}, "first": {}, "second": {}, "third": {},
	"one": {}, "two": {}, "three": {}, "1st": {}, "2nd": {}, "3rd": {},
}

// bannedSubstrings mark derivative editions we never want to surface:
// study guides, companion summaries, boxed sets and the like.
var bannedSubstrings = []string{
	"summary", "study guide", "analysis of", "workbook", "companion",
	"boxed set", "box set", "sparknotes", "cliffsnotes", "trivia",
	"quiz book", "coloring book", "journal",
}

// FetchExternal queries the books API once per seed and interleaves the
// filtered candidate pools round-robin. Failures are non-fatal: a seed
// whose lookup errors simply contributes nothing, and no seeds at all
// short-circuits without any network call.
func (e *Engine) FetchExternal(ctx context.Context, readItems []models.ReadItem, toReadItems []models.ToReadItem, max int) []models.Recommendation {
	if max <= 0 {
		return []models.Recommendation{}
	}

	seeds := pickSeeds(readItems)
	if len(seeds) == 0 {
		return []models.Recommendation{}
	}

	owned := ownedIndex(readItems, toReadItems)

	// one outbound call at a time: seed N+1 only after seed N resolves
	pools := make([][]models.Recommendation, 0, len(seeds))
	for _, seed := range seeds {
		volumes, err := e.Books.Search(ctx, buildSeedQuery(seed), candidatePage)
		if err != nil {
			log.Printf("[recommend] seed %q lookup failed: %v", seed.Title, err)
			continue
		}
		pools = append(pools, filterCandidates(seed, volumes, owned))
	}

	return interleave(pools, max)
}

// pickSeeds returns up to three rating>=4 reads, best and most recent
// first.
func pickSeeds(items []models.ReadItem) []models.ReadItem {
	seeds := highlyRated(items)
	if len(seeds) > maxSeeds {
		seeds = seeds[:maxSeeds]
	}
	return seeds
}

type ownedSet struct {
	titles map[string]struct{}
}

func ownedIndex(readItems []models.ReadItem, toReadItems []models.ToReadItem) ownedSet {
	set := ownedSet{titles: make(map[string]struct{}, len(readItems)+len(toReadItems))}
	for _, it := range readItems {
		set.titles[NormalizeTitle(it.Title)] = struct{}{}
	}
	for _, it := range toReadItems {
		set.titles[NormalizeTitle(it.Title)] = struct{}{}
	}
	return set
}

func (s ownedSet) has(normTitle string) bool {
	_, ok := s.titles[normTitle]
	return ok
}

// buildSeedQuery prefers an author search, narrowed by the seed's
// primary category when one is known. Without an author it falls back
// to significant title keywords, then to the exact title.
func buildSeedQuery(seed models.ReadItem) metadata.Query {
	if seed.Author != "" {
		q := metadata.Query{Author: seed.Author}
		if len(seed.Categories) > 0 {
			q.Subject = seed.Categories[0]
		}
		return q
	}

	if kws := titleKeywords(seed.Title); len(kws) > 0 {
		return metadata.Query{Text: strings.Join(kws, " ")}
	}
	return metadata.Query{Text: seed.Title}
}

// titleKeywords extracts up to six significant tokens from a title,
// dropping short tokens, pure digits, roman numerals and stop words.
func titleKeywords(title string) []string {
	tokens := strings.Fields(NormalizeTitle(title))
	out := make([]string, 0, maxKeywords)
	for _, tok := range tokens {
		if len(out) >= maxKeywords {
			break
		}
		if len([]rune(tok)) < minKeywordRunes {
			continue
		}
		if isDigits(tok) || isRomanNumeral(tok) {
			continue
		}
		if _, stop := stopWords[tok]; stop {
			continue
		}
		out = append(out, tok)
	}
	return out
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}

func isRomanNumeral(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		switch r {
		case 'i', 'v', 'x', 'l', 'c', 'd', 'm':
		default:
			return false
		}
	}
	return true
}

// filterCandidates applies the per-seed candidate filters and reduces
// surviving volumes to recommendation shape.
func filterCandidates(seed models.ReadItem, volumes []metadata.Volume, owned ownedSet) []models.Recommendation {
	seedKey := NormalizeTitle(seed.Title)
	seedTokens := tokenSet(seedKey)

	out := make([]models.Recommendation, 0, len(volumes))
	for _, v := range volumes {
		if v.Language != "" && v.Language != "en" {
			continue
		}
		if hasBannedSubstring(v.Title) || hasBannedSubstring(v.Subtitle) {
			continue
		}

		key := NormalizeTitle(v.Title)
		if key == "" || key == seedKey {
			continue
		}
		// near-identical titles are usually the same edition resurfacing
		if tokenOverlap(seedTokens, tokenSet(key)) > overlapCutoff {
			continue
		}
		if owned.has(key) {
			continue
		}

		out = append(out, models.Recommendation{
			Title:            v.Title,
			Reason:           "readers of " + seed.Title + " also picked this up",
			Source:           models.SourceExternal,
			Author:           v.PrimaryAuthor(),
			ShortDescription: ShortDescFromText(v.Description),
			ExternalID:       v.ID,
		})
	}
	return out
}

func hasBannedSubstring(s string) bool {
	s = strings.ToLower(s)
	for _, b := range bannedSubstrings {
		if strings.Contains(s, b) {
			return true
		}
	}
	return false
}

func tokenSet(normTitle string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range strings.Fields(normTitle) {
		set[tok] = struct{}{}
	}
	return set
}

// tokenOverlap is the Jaccard overlap of two token sets. Near-identical
// titles ("The Name of the Wind" vs "The Name of the Wind: Deluxe")
// score high; genuine sequels sharing a series word do not.
func tokenOverlap(a, b map[string]struct{}) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	common := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			common++
		}
	}
	union := len(a) + len(b) - common
	return float64(common) / float64(union)
}

// interleave merges the pools round-robin (pool 1 index 0, pool 2
// index 0, ..., pool 1 index 1, ...), skipping anything already emitted
// by external id or normalized title.
func interleave(pools [][]models.Recommendation, max int) []models.Recommendation {
	out := make([]models.Recommendation, 0, max)
	seenIDs := make(map[string]struct{})
	seenTitles := make(map[string]struct{})

	longest := 0
	for _, p := range pools {
		if len(p) > longest {
			longest = len(p)
		}
	}

	for i := 0; i < longest && len(out) < max; i++ {
		for _, pool := range pools {
			if len(out) >= max {
				break
			}
			if i >= len(pool) {
				continue
			}
			rec := pool[i]
			if rec.ExternalID != "" {
				if _, dup := seenIDs[rec.ExternalID]; dup {
					continue
				}
			}
			key := NormalizeTitle(rec.Title)
			if _, dup := seenTitles[key]; dup {
				continue
			}
			if rec.ExternalID != "" {
				seenIDs[rec.ExternalID] = struct{}{}
			}
			seenTitles[key] = struct{}{}
			out = append(out, rec)
		}
	}
	return out
}
