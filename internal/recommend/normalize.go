package recommend

import (
	"strings"
	"unicode"

	"leafnote/pkg/models"
)

// NormalizeTitle converts a title to a canonical comparison key:
// lowercase, punctuation stripped, whitespace collapsed to single
// spaces. Two titles are "the same book" iff their keys are equal.
// The key is never shown to the user.
func NormalizeTitle(title string) string {
	title = strings.ToLower(title)

	var b strings.Builder
	b.Grow(len(title))

	prevSpace := false
	for _, r := range title {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_':
			b.WriteRune(r)
			prevSpace = false
		case unicode.IsSpace(r):
			if !prevSpace && b.Len() > 0 {
				b.WriteRune(' ')
				prevSpace = true
			}
		default:
			// punctuation: dropped entirely, not treated as a separator
		}
	}
	return strings.TrimSpace(b.String())
}

// DedupReadItems keeps the first occurrence per normalized title,
// preserving input order. Several ranking rules rely on caller-supplied
// ordering as a priority signal, so order must survive dedup.
func DedupReadItems(items []models.ReadItem) []models.ReadItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.ReadItem, 0, len(items))
	for _, it := range items {
		key := NormalizeTitle(it.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}

// DedupToReadItems is the to-read counterpart of DedupReadItems.
func DedupToReadItems(items []models.ToReadItem) []models.ToReadItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.ToReadItem, 0, len(items))
	for _, it := range items {
		key := NormalizeTitle(it.Title)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
