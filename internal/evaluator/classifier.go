package evaluator

import "autofair/server/internal/models"

// Tier thresholds. A high tier additionally requires the year and mileage
// flags, so specification overlap alone can never outrank temporal/usage
// comparability.
const (
	highScoreThreshold   = 0.70
	mediumScoreThreshold = 0.40
)

// Classify buckets a scored listing into its match-confidence tier and
// records it on the listing.
func Classify(l *models.Listing) models.Tier {
	switch {
	case l.Score >= highScoreThreshold && l.Quality != nil && l.Quality.Year && l.Quality.Mileage:
		l.Tier = models.TierHigh
	case l.Score >= mediumScoreThreshold:
		l.Tier = models.TierMedium
	default:
		l.Tier = models.TierLow
	}
	return l.Tier
}
