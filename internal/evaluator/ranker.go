package evaluator

import (
	"sort"

	"autofair/server/internal/models"
)

const (
	topSimilarLimit   = 10
	sampleTitlesLimit = 5
)

// Rank orders scored listings by descending score, breaking ties by the
// smaller absolute price difference from the input price, and truncates to
// the surfaced maximum. The input slice is not modified.
func Rank(listings []*models.Listing, inputPrice int) []*models.Listing {
	ranked := make([]*models.Listing, len(listings))
	copy(ranked, listings)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return absInt(ranked[i].Price-inputPrice) < absInt(ranked[j].Price-inputPrice)
	})

	if len(ranked) > topSimilarLimit {
		ranked = ranked[:topSimilarLimit]
	}
	return ranked
}

// SampleTitles returns up to five titles from listings sharing the input's
// make and model, as a diagnostic when no comparison was possible.
func SampleTitles(listings []*models.Listing) []string {
	titles := make([]string, 0, sampleTitlesLimit)
	for _, l := range listings {
		titles = append(titles, l.Title)
		if len(titles) == sampleTitlesLimit {
			break
		}
	}
	return titles
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
