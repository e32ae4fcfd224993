package evaluator

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"autofair/server/internal/models"
)

// Evaluator runs the full comparison pipeline: extraction, candidate
// filtering, scoring, tiering, aggregation and verdict composition. One call
// is a pure function of its inputs; the evaluator holds no state between
// evaluations.
type Evaluator struct {
	extractor *Extractor
	logger    *logrus.Logger
}

func New(logger *logrus.Logger) *Evaluator {
	if logger == nil {
		logger = logrus.New()
	}
	return &Evaluator{
		extractor: NewExtractor(logger),
		logger:    logger,
	}
}

// Evaluate compares the input vehicle against the raw listing pool and
// produces the analysis verdict. Data-sufficiency problems are reported
// through the result's Error field, never as a Go error.
func (e *Evaluator) Evaluate(input models.InputVehicle, raw []models.RawListing) *models.AnalysisResult {
	listings := e.extractor.ExtractBatch(raw)

	candidates := filterByTitle(listings, input.Make, input.Model)
	if len(candidates) == 0 {
		// Fallback: any listing of the same make.
		candidates = filterByTitle(listings, input.Make, "")
	}
	if len(candidates) == 0 {
		return &models.AnalysisResult{
			Error:             fmt.Sprintf("no comparable listings found for %s %s", input.Make, input.Model),
			ComparisonQuality: models.QualityNone,
			SampleTitles:      []string{},
		}
	}

	scorer := NewScorer(e.extractor.InputProfile(input))
	for _, l := range candidates {
		scorer.Score(l)
		Classify(l)
	}

	agg := Aggregate(candidates)
	if agg == nil || agg.AveragePrice <= 0 {
		return &models.AnalysisResult{
			Error:             fmt.Sprintf("not enough comparable listings for %s %s", input.Make, input.Model),
			ComparisonQuality: models.QualityNone,
			SampleTitles:      SampleTitles(candidates),
		}
	}

	percentDiff, isCheaper := Judge(input.Price, agg.AveragePrice)

	e.logger.WithFields(logrus.Fields{
		"make":          input.Make,
		"model":         input.Model,
		"candidates":    len(candidates),
		"selected":      len(agg.Selected),
		"average_price": agg.AveragePrice,
		"quality":       agg.Quality,
	}).Info("Evaluation complete")

	return &models.AnalysisResult{
		AveragePrice:         agg.AveragePrice,
		CountSimilar:         len(agg.Selected),
		PercentDiff:          percentDiff,
		IsCheaper:            isCheaper,
		ComparisonQuality:    agg.Quality,
		QualityNote:          agg.Note,
		HighQualityMatches:   agg.HighCount,
		MediumQualityMatches: agg.MediumCount,
		TopSimilar:           Rank(agg.Selected, input.Price),
	}
}

// filterByTitle keeps listings whose title mentions both make and model
// (model may be empty for the make-only fallback).
func filterByTitle(listings []*models.Listing, make, model string) []*models.Listing {
	var out []*models.Listing
	for _, l := range listings {
		title := strings.ToLower(l.Title)
		if strings.Contains(title, make) && (model == "" || strings.Contains(title, model)) {
			out = append(out, l)
		}
	}
	return out
}
