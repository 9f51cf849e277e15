package recommend

import (
	"fmt"
	"sort"

	"leafnote/pkg/models"
)

const (
	maxFromToRead   = 3
	maxFromTopRated = 3
	maxFromGenres   = 2
	highRatingFloor = 4
)

// Recommend produces an ordered, deduplicated list of suggestions from
// the user's two lists. Pure and deterministic for a given input; ties
// are broken by stable input order. Output length never exceeds max and
// no normalized title appears twice.
//
// Priority order:
//  1. most recently added to-read items,
//  2. highly rated read items not already queued,
//  3. genre-affinity picks from the rated>=4 set,
//  4. a motivational fallback when nothing else produced output,
//  5. a generic discover placeholder to pad toward max.
func Recommend(readItems []models.ReadItem, toReadItems []models.ToReadItem, max int) []models.Recommendation {
	if max <= 0 {
		return []models.Recommendation{}
	}

	out := make([]models.Recommendation, 0, max)
	seen := make(map[string]struct{})

	add := func(rec models.Recommendation) bool {
		if len(out) >= max {
			return false
		}
		key := NormalizeTitle(rec.Title)
		if _, dup := seen[key]; dup {
			return false
		}
		seen[key] = struct{}{}
		out = append(out, rec)
		return true
	}

	// 1. already-queued items, newest first
	queued := make([]models.ToReadItem, len(toReadItems))
	copy(queued, toReadItems)
	sort.SliceStable(queued, func(i, j int) bool {
		return queued[i].DateAdded.After(queued[j].DateAdded)
	})
	for i, it := range queued {
		if i >= maxFromToRead {
			break
		}
		add(models.Recommendation{
			Title:            it.Title,
			Reason:           "already on your to-read list",
			Source:           models.SourceToRead,
			Author:           it.Author,
			ShortDescription: it.ShortDescription,
		})
	}

	// 2. highly rated reads, excluding anything already queued
	queuedKeys := make(map[string]struct{}, len(toReadItems))
	for _, it := range toReadItems {
		queuedKeys[NormalizeTitle(it.Title)] = struct{}{}
	}

	topRated := highlyRated(readItems)
	added := 0
	for _, it := range topRated {
		if added >= maxFromTopRated {
			break
		}
		if _, dup := queuedKeys[NormalizeTitle(it.Title)]; dup {
			continue
		}
		if add(models.Recommendation{
			Title:            it.Title,
			Reason:           fmt.Sprintf("you rated it %d stars, worth revisiting or finding something similar", it.Rating),
			Source:           models.SourceTopRated,
			Author:           it.Author,
			ShortDescription: it.ShortDescription,
		}) {
			added++
		}
	}

	// 3. genre affinity over the rated>=4 set
	for _, category := range topCategories(topRated, maxFromGenres) {
		promoted := false
		for _, it := range toReadItems {
			if !hasCategory(it.Categories, category) {
				continue
			}
			if add(models.Recommendation{
				Title:            it.Title,
				Reason:           fmt.Sprintf("matches your interest in %s", category),
				Source:           models.SourceSimilarGenre,
				Author:           it.Author,
				ShortDescription: it.ShortDescription,
			}) {
				promoted = true
				break
			}
		}
		if !promoted {
			add(models.Recommendation{
				Title:  fmt.Sprintf("Explore more %s", category),
				Reason: "you seem to enjoy this genre",
				Source: models.SourceSimilarGenre,
			})
		}
	}

	// 4. nothing at all: one motivational nudge
	if len(out) == 0 {
		add(models.Recommendation{
			Title:  "Add a few books you loved",
			Reason: "rate some reads and we can suggest what to pick up next",
			Source: models.SourceFallback,
		})
	}

	// 5. pad toward max with the generic discover placeholder
	for len(out) < max {
		if !add(models.Recommendation{
			Title:  "Discover new reads",
			Reason: "browse for something outside your usual picks",
			Source: models.SourceFallback,
		}) {
			break
		}
	}

	return out
}

// highlyRated returns the rating>=4 subset sorted by rating desc then
// dateRead desc, input order preserved on full ties.
func highlyRated(items []models.ReadItem) []models.ReadItem {
	out := make([]models.ReadItem, 0, len(items))
	for _, it := range items {
		if it.Rating >= highRatingFloor {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].DateRead.After(out[j].DateRead)
	})
	return out
}

// topCategories counts category occurrences across the given items and
// returns the top n by count. Ties keep first-encountered order.
func topCategories(items []models.ReadItem, n int) []string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, it := range items {
		for _, c := range it.Categories {
			if c == "" {
				continue
			}
			if _, ok := counts[c]; !ok {
				order = append(order, c)
			}
			counts[c]++
		}
	}

	sort.SliceStable(order, func(i, j int) bool {
		return counts[order[i]] > counts[order[j]]
	})
	if len(order) > n {
		order = order[:n]
	}
	return order
}

func hasCategory(categories []string, want string) bool {
	for _, c := range categories {
		if c == want {
			return true
		}
	}
	return false
}
