package evaluator

import (
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofair/server/internal/models"
)

func newTestEvaluator() *Evaluator {
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return New(logger)
}

func corsaRaw(title, year, mileage, price string) models.RawListing {
	return models.RawListing{Title: title, Year: year, Mileage: mileage, Price: price}
}

func TestEvaluateCheaperThanMarket(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa 1.3 CDI manuelni", 2007, 150000, 2500)
	require.NoError(t, err)

	// All three share year window, mileage window, engine type and
	// transmission with the input.
	raw := []models.RawListing{
		corsaRaw("Opel Corsa 1.3 CDI manuelni", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa 1.3 CDI manuelni", "2008", "155.000 km", "2.600 €"),
		corsaRaw("Opel Corsa 1.3 CDI manuelni", "2006", "160.000 km", "3.200 €"),
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.Equal(t, 2600, result.AveragePrice)
	assert.Equal(t, 3, result.CountSimilar)
	assert.True(t, result.IsCheaper)
	assert.Equal(t, 3.8, result.PercentDiff)
	assert.Len(t, result.TopSimilar, 3)
}

func TestEvaluateEqualPriceIsNotCheaper(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa 1.3 CDI", 2007, 150000, 2600)
	require.NoError(t, err)

	raw := []models.RawListing{
		corsaRaw("Opel Corsa 1.3 CDI", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa 1.3 CDI", "2008", "155.000 km", "2.600 €"),
		corsaRaw("Opel Corsa 1.3 CDI", "2006", "160.000 km", "3.200 €"),
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.Equal(t, 2600, result.AveragePrice)
	assert.False(t, result.IsCheaper)
	assert.Equal(t, 0.0, result.PercentDiff)
}

func TestEvaluateNoSharedMakeModel(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	raw := []models.RawListing{
		corsaRaw("VW Golf 5 1.9 TDI", "2007", "150.000 km", "3.000 €"),
		corsaRaw("Fiat Punto 1.2", "2008", "120.000 km", "1.800 €"),
	}

	result := e.Evaluate(input, raw)
	assert.NotEmpty(t, result.Error)
	assert.Empty(t, result.SampleTitles)
	assert.Zero(t, result.AveragePrice)
	assert.Equal(t, models.QualityNone, result.ComparisonQuality)
}

func TestEvaluateBareListingsCollapseToLowTier(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	// No optional attributes anywhere: only year and mileage can match, so
	// every listing tiers low and aggregation takes the fallback path.
	raw := []models.RawListing{
		corsaRaw("Opel Corsa", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa", "2008", "155.000 km", "2.600 €"),
		corsaRaw("Opel Corsa", "2006", "160.000 km", "3.200 €"),
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.Equal(t, models.QualityLow, result.ComparisonQuality)
	assert.NotEmpty(t, result.QualityNote)
	assert.Zero(t, result.HighQualityMatches)
	assert.Zero(t, result.MediumQualityMatches)

	for _, l := range result.TopSimilar {
		assert.Equal(t, models.TierLow, l.Tier)
		require.NotNil(t, l.Quality)
		assert.False(t, l.Quality.EngineType)
		assert.False(t, l.Quality.Transmission)
		assert.False(t, l.Quality.BodyType)
		assert.False(t, l.Quality.EngineSize)
		assert.False(t, l.Quality.Power)
		assert.False(t, l.Quality.Color)
		assert.False(t, l.Quality.Doors)
		assert.False(t, l.Quality.Seats)
	}
}

func TestEvaluateTooFewListings(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	raw := []models.RawListing{
		corsaRaw("Opel Corsa 1.3", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa 1.2", "2008", "155.000 km", "2.600 €"),
	}

	result := e.Evaluate(input, raw)
	assert.NotEmpty(t, result.Error)
	assert.Len(t, result.SampleTitles, 2)
	assert.Equal(t, "Opel Corsa 1.3", result.SampleTitles[0])
}

func TestEvaluateMakeOnlyFallback(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	// No Corsa in the pool, but same make everywhere.
	raw := []models.RawListing{
		corsaRaw("Opel Astra 1.7 CDTI", "2007", "150.000 km", "2.400 €"),
		corsaRaw("Opel Astra 1.6", "2008", "145.000 km", "2.800 €"),
		corsaRaw("Opel Vectra 1.9 CDTI", "2006", "165.000 km", "2.600 €"),
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.Equal(t, 2600, result.AveragePrice)
	assert.Equal(t, 3, result.CountSimilar)
}

func TestEvaluateDropsMalformedListings(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	raw := []models.RawListing{
		corsaRaw("Opel Corsa 1.3", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa 1.2", "2008", "155.000 km", "2.600 €"),
		corsaRaw("Opel Corsa 1.4", "2006", "160.000 km", "3.200 €"),
		corsaRaw("Opel Corsa na upit", "2007", "150.000 km", "na upit"),
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.Equal(t, 3, result.CountSimilar)
	assert.Equal(t, 2600, result.AveragePrice)
}

func TestEvaluateIsDeterministic(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa 1.3 CDI", 2007, 150000, 2500)
	require.NoError(t, err)

	raw := []models.RawListing{
		corsaRaw("Opel Corsa 1.3 CDI", "2007", "150.000 km", "2.000 €"),
		corsaRaw("Opel Corsa 1.3 benzin automatik", "2008", "155.000 km", "2.600 €"),
		corsaRaw("Opel Corsa 1.0 karavan dizel", "2006", "160.000 km", "3.200 €"),
		corsaRaw("Opel Corsa hibrid registrovan klima", "2009", "120.000 km", "4.100 €"),
	}

	first := e.Evaluate(input, raw)
	second := e.Evaluate(input, raw)
	assert.Equal(t, first, second)
}

func TestEvaluateTopSimilarBounds(t *testing.T) {
	e := newTestEvaluator()

	input, err := models.NewInputVehicle("Opel Corsa", 2007, 150000, 2500)
	require.NoError(t, err)

	var raw []models.RawListing
	for i := 0; i < 25; i++ {
		raw = append(raw, corsaRaw("Opel Corsa 1.3", "2007", "150.000 km", "2.500 €"))
	}

	result := e.Evaluate(input, raw)
	require.Empty(t, result.Error)
	assert.LessOrEqual(t, len(result.TopSimilar), 10)
	assert.LessOrEqual(t, len(result.TopSimilar), result.CountSimilar)
	assert.LessOrEqual(t, result.HighQualityMatches+result.MediumQualityMatches, result.CountSimilar)

	for i := 1; i < len(result.TopSimilar); i++ {
		assert.GreaterOrEqual(t, result.TopSimilar[i-1].Score, result.TopSimilar[i].Score)
	}
}
