package evaluator

import (
	"fmt"
	"math"

	"autofair/server/internal/models"
)

// minComparable is the smallest listing set a price average may be drawn from.
const minComparable = 3

// Aggregation is the outcome of tier-aware price averaging.
type Aggregation struct {
	AveragePrice int
	Quality      models.ComparisonQuality
	Note         string
	HighCount    int
	MediumCount  int
	// Selected is the set the average was computed over; low-tier listings
	// appear here only on the fallback path.
	Selected []*models.Listing
}

// Aggregate selects the best available tier set and computes its mean price.
// It returns nil when fewer than minComparable listings exist in total, which
// callers surface as the insufficient-data outcome.
func Aggregate(listings []*models.Listing) *Aggregation {
	var qualified []*models.Listing
	high, medium := 0, 0
	for _, l := range listings {
		switch l.Tier {
		case models.TierHigh:
			high++
			qualified = append(qualified, l)
		case models.TierMedium:
			medium++
			qualified = append(qualified, l)
		}
	}

	agg := &Aggregation{HighCount: high, MediumCount: medium}
	switch {
	case len(qualified) >= minComparable:
		agg.Selected = qualified
		if high >= minComparable {
			agg.Quality = models.QualityHigh
			agg.Note = fmt.Sprintf("Based on %d listings with close specification matches", len(qualified))
		} else {
			agg.Quality = models.QualityMedium
			agg.Note = fmt.Sprintf("Based on %d listings, %d with close specification matches; treat with caution",
				len(qualified), high)
		}
	case len(listings) >= minComparable:
		// Fallback: too few specification matches, average over everything.
		agg.Selected = listings
		agg.Quality = models.QualityLow
		agg.Note = fmt.Sprintf("Based on %d listings with insufficient specification overlap; treat with caution",
			len(listings))
	default:
		return nil
	}

	sum := 0
	for _, l := range agg.Selected {
		sum += l.Price
	}
	agg.AveragePrice = int(math.Round(float64(sum) / float64(len(agg.Selected))))
	return agg
}
