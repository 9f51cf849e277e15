package recommend

import "leafnote/pkg/models"

// Combine merges external and local recommendations into one view,
// external candidates first (novelty bias), deduplicated by external id
// then by normalized title. Output length never exceeds max.
func Combine(external, local []models.Recommendation, max int) []models.Recommendation {
	if max <= 0 {
		return []models.Recommendation{}
	}

	out := make([]models.Recommendation, 0, max)
	seenIDs := make(map[string]struct{})
	seenTitles := make(map[string]struct{})

	add := func(rec models.Recommendation) {
		if len(out) >= max {
			return
		}
		if rec.ExternalID != "" {
			if _, dup := seenIDs[rec.ExternalID]; dup {
				return
			}
		}
		key := NormalizeTitle(rec.Title)
		if _, dup := seenTitles[key]; dup {
			return
		}
		if rec.ExternalID != "" {
			seenIDs[rec.ExternalID] = struct{}{}
		}
		seenTitles[key] = struct{}{}
		out = append(out, rec)
	}

	for _, rec := range external {
		add(rec)
	}
	for _, rec := range local {
		add(rec)
	}
	return out
}
