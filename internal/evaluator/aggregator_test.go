package evaluator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autofair/server/internal/models"
)

func tiered(tier models.Tier, price int) *models.Listing {
	return &models.Listing{Title: "Opel Corsa", Year: 2010, Mileage: 150000, Price: price, Tier: tier}
}

func TestAggregateHighQuality(t *testing.T) {
	listings := []*models.Listing{
		tiered(models.TierHigh, 5000),
		tiered(models.TierHigh, 5200),
		tiered(models.TierHigh, 5400),
		tiered(models.TierLow, 900),
	}

	agg := Aggregate(listings)
	require.NotNil(t, agg)
	assert.Equal(t, models.QualityHigh, agg.Quality)
	assert.Equal(t, 3, agg.HighCount)
	assert.Equal(t, 0, agg.MediumCount)
	assert.Len(t, agg.Selected, 3)
	// The low-tier listing must not drag the average down.
	assert.Equal(t, 5200, agg.AveragePrice)
}

func TestAggregateMediumQuality(t *testing.T) {
	listings := []*models.Listing{
		tiered(models.TierHigh, 5000),
		tiered(models.TierMedium, 5500),
		tiered(models.TierMedium, 6000),
	}

	agg := Aggregate(listings)
	require.NotNil(t, agg)
	assert.Equal(t, models.QualityMedium, agg.Quality)
	assert.Equal(t, 1, agg.HighCount)
	assert.Equal(t, 2, agg.MediumCount)
	assert.Equal(t, 5500, agg.AveragePrice)
	assert.Contains(t, agg.Note, "treat with caution")
}

func TestAggregateFallbackToAllListings(t *testing.T) {
	listings := []*models.Listing{
		tiered(models.TierLow, 4000),
		tiered(models.TierLow, 5000),
		tiered(models.TierMedium, 6000),
	}

	agg := Aggregate(listings)
	require.NotNil(t, agg)
	assert.Equal(t, models.QualityLow, agg.Quality)
	assert.Len(t, agg.Selected, 3)
	assert.Equal(t, 5000, agg.AveragePrice)
	assert.Contains(t, agg.Note, "insufficient specification overlap")
}

func TestAggregateInsufficientData(t *testing.T) {
	listings := []*models.Listing{
		tiered(models.TierHigh, 5000),
		tiered(models.TierHigh, 5200),
	}

	assert.Nil(t, Aggregate(listings))
	assert.Nil(t, Aggregate(nil))
}

func TestAggregateMeanIsReproducible(t *testing.T) {
	listings := []*models.Listing{
		tiered(models.TierMedium, 2001),
		tiered(models.TierMedium, 2600),
		tiered(models.TierMedium, 3200),
	}

	agg := Aggregate(listings)
	require.NotNil(t, agg)

	sum := 0
	for _, l := range agg.Selected {
		sum += l.Price
	}
	mean := float64(sum) / float64(len(agg.Selected))
	// 7801/3 = 2600.33... rounds to the nearest whole unit.
	assert.Equal(t, 2600, agg.AveragePrice)
	assert.InDelta(t, float64(agg.AveragePrice), mean, 0.5)
}
