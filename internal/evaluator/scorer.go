package evaluator

import (
	"math"
	"strings"

	"autofair/server/internal/models"
)

// Attribute weights. Structurally defining attributes count double; cosmetic
// ones count once. The sum of all weights is the score denominator.
const (
	weightEngineType   = 2
	weightTransmission = 2
	weightBodyType     = 2
	weightYear         = 2
	weightMileage      = 2
	weightEngineSize   = 1
	weightPower        = 1
	weightColor        = 1
	weightDoors        = 1
	weightSeats        = 1

	totalWeight = weightEngineType + weightTransmission + weightBodyType +
		weightYear + weightMileage + weightEngineSize + weightPower +
		weightColor + weightDoors + weightSeats
)

// Matching tolerances.
const (
	yearTolerance         = 2
	mileageTolerance      = 0.20
	numericRangeTolerance = 0.10
)

// Scorer computes per-listing similarity against the input vehicle's profile.
type Scorer struct {
	input *models.Listing
}

// NewScorer builds a scorer for one input profile (see Extractor.InputProfile).
func NewScorer(input *models.Listing) *Scorer {
	return &Scorer{input: input}
}

// Score fills in the listing's Score and MatchQuality. Absent attributes on
// either side never match but are also never penalized beyond their missing
// weight contribution.
func (s *Scorer) Score(l *models.Listing) {
	q := &models.MatchQuality{
		Year:         intWithin(l.Year, s.input.Year, yearTolerance),
		Mileage:      relativeWithin(l.Mileage, s.input.Mileage, mileageTolerance),
		EngineType:   stringsEqual(l.EngineType, s.input.EngineType),
		Transmission: stringsEqual(l.Transmission, s.input.Transmission),
		BodyType:     stringsEqual(l.BodyType, s.input.BodyType),
		Color:        stringsEqual(l.Color, s.input.Color),
		Doors:        stringsEqual(l.Doors, s.input.Doors),
		Seats:        stringsEqual(l.Seats, s.input.Seats),
		EngineSize:   floatsWithin(l.EngineSize, s.input.EngineSize),
		Power:        floatsWithin(l.Power, s.input.Power),
	}

	matched := 0
	if q.EngineType {
		matched += weightEngineType
	}
	if q.Transmission {
		matched += weightTransmission
	}
	if q.BodyType {
		matched += weightBodyType
	}
	if q.Year {
		matched += weightYear
	}
	if q.Mileage {
		matched += weightMileage
	}
	if q.EngineSize {
		matched += weightEngineSize
	}
	if q.Power {
		matched += weightPower
	}
	if q.Color {
		matched += weightColor
	}
	if q.Doors {
		matched += weightDoors
	}
	if q.Seats {
		matched += weightSeats
	}

	l.Quality = q
	l.Score = math.Round(float64(matched)/totalWeight*100) / 100
}

func intWithin(a, b, tolerance int) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tolerance
}

// relativeWithin compares mileage relative to the input figure, guarding the
// zero-mileage case.
func relativeWithin(listing, input int, tolerance float64) bool {
	base := input
	if base < 1 {
		base = 1
	}
	return math.Abs(float64(listing-input))/float64(base) <= tolerance
}

func stringsEqual(a, b *string) bool {
	if a == nil || b == nil {
		return false
	}
	return strings.EqualFold(*a, *b)
}

// floatsWithin matches numeric-range attributes within ±10% of the listing's
// own value.
func floatsWithin(listing, input *float64) bool {
	if listing == nil || input == nil {
		return false
	}
	return math.Abs(*listing-*input) <= numericRangeTolerance*(*listing)
}
