package models

import (
	"fmt"
	"strings"
	"time"
)

// RawListing holds a single scraped advert exactly as it came off the
// marketplace page. Every field is free text; the extractor decides what is
// actually usable.
type RawListing struct {
	Title        string `json:"title"`
	Year         string `json:"year"`
	Mileage      string `json:"mileage"`
	Price        string `json:"price"`
	Engine       string `json:"engine,omitempty"`
	EngineSize   string `json:"engine_size,omitempty"`
	Transmission string `json:"transmission,omitempty"`
	BodyType     string `json:"body_type,omitempty"`
	Power        string `json:"power,omitempty"`
	Color        string `json:"color,omitempty"`
	Doors        string `json:"doors,omitempty"`
	Seats        string `json:"seats,omitempty"`
	FuelType     string `json:"fuel_type,omitempty"`
	SellerType   string `json:"seller_type,omitempty"`
	SellerInfo   string `json:"seller_info,omitempty"`
	City         string `json:"city,omitempty"`
	URL          string `json:"url,omitempty"`
}

// Listing is the canonical form of an advert for the duration of one
// evaluation. Year, mileage and price are always present; everything else is
// optional and stays nil when extraction could not determine it.
type Listing struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Mileage int    `json:"mileage"`
	Price   int    `json:"price"`

	EngineType   *string  `json:"engine_type,omitempty"`
	EngineSize   *float64 `json:"engine_size,omitempty"`
	Transmission *string  `json:"transmission,omitempty"`
	BodyType     *string  `json:"body_type,omitempty"`
	Power        *float64 `json:"power,omitempty"`
	Color        *string  `json:"color,omitempty"`
	Doors        *string  `json:"doors,omitempty"`
	Seats        *string  `json:"seats,omitempty"`
	FuelType     *string  `json:"fuel_type,omitempty"`
	SellerType   *string  `json:"seller_type,omitempty"`
	SellerInfo   *string  `json:"seller_info,omitempty"`
	City         *string  `json:"city,omitempty"`
	URL          *string  `json:"url,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`

	Score   float64       `json:"score"`
	Quality *MatchQuality `json:"match_quality,omitempty"`
	Tier    Tier          `json:"tier,omitempty"`
}

// MatchQuality records, per attribute, whether the listing matched the input
// vehicle within that attribute's tolerance. Recomputed on every evaluation.
type MatchQuality struct {
	EngineType   bool `json:"engine_type"`
	Transmission bool `json:"transmission"`
	BodyType     bool `json:"body_type"`
	EngineSize   bool `json:"engine_size"`
	Power        bool `json:"power"`
	Color        bool `json:"color"`
	Doors        bool `json:"doors"`
	Seats        bool `json:"seats"`
	Year         bool `json:"year"`
	Mileage      bool `json:"mileage"`
}

// Tier is the match-confidence bucket assigned to a scored listing.
type Tier string

const (
	TierHigh   Tier = "high"
	TierMedium Tier = "medium"
	TierLow    Tier = "low"
)

// ComparisonQuality labels the confidence of the overall verdict.
type ComparisonQuality string

const (
	QualityHigh   ComparisonQuality = "high"
	QualityMedium ComparisonQuality = "medium"
	QualityLow    ComparisonQuality = "low"
	QualityNone   ComparisonQuality = "none"
)

// InputVehicle is the vehicle being evaluated. Make and model are derived
// from the title; the struct is validated on construction and immutable after.
type InputVehicle struct {
	Make    string `json:"make"`
	Model   string `json:"model"`
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Mileage int    `json:"mileage"`
	Price   int    `json:"price"`
}

const (
	MinVehicleYear = 1900
	MaxVehicleYear = 2030
)

// NewInputVehicle validates the raw input fields and derives make/model from
// the first two title tokens.
func NewInputVehicle(title string, year, mileage, price int) (InputVehicle, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return InputVehicle{}, fmt.Errorf("title is required")
	}
	if year < MinVehicleYear || year > MaxVehicleYear {
		return InputVehicle{}, fmt.Errorf("year %d out of range %d-%d", year, MinVehicleYear, MaxVehicleYear)
	}
	if mileage < 0 {
		return InputVehicle{}, fmt.Errorf("mileage must not be negative")
	}
	if price < 0 {
		return InputVehicle{}, fmt.Errorf("price must not be negative")
	}

	v := InputVehicle{Title: title, Year: year, Mileage: mileage, Price: price}
	parts := strings.Fields(strings.ToLower(title))
	v.Make = parts[0]
	if len(parts) > 1 {
		v.Model = parts[1]
	}
	return v, nil
}

// AnalysisResult is the verdict of one evaluation. When Error is set the
// comparison fields carry no meaning; SampleTitles then holds up to five
// diagnostic titles.
type AnalysisResult struct {
	AveragePrice         int               `json:"average_price,omitempty"`
	CountSimilar         int               `json:"count_similar,omitempty"`
	PercentDiff          float64           `json:"percent_diff"`
	IsCheaper            bool              `json:"is_cheaper"`
	ComparisonQuality    ComparisonQuality `json:"comparison_quality"`
	QualityNote          string            `json:"quality_note,omitempty"`
	HighQualityMatches   int               `json:"high_quality_matches"`
	MediumQualityMatches int               `json:"medium_quality_matches"`
	TopSimilar           []*Listing        `json:"top_similar,omitempty"`
	SampleTitles         []string          `json:"sample_titles,omitempty"`
	Error                string            `json:"error,omitempty"`
}

// SavedSearch is one persisted scrape run.
type SavedSearch struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	Make         string    `json:"make"`
	Model        string    `json:"model"`
	PriceTo      int       `json:"price_to"`
	Pages        int       `json:"pages"`
	ListingCount int       `json:"listing_count"`
	CreatedAt    time.Time `json:"created_at"`
}

// StoredListing is a raw listing row persisted under a SavedSearch.
type StoredListing struct {
	ID           int64     `json:"id" gorm:"primaryKey"`
	SearchID     int64     `json:"search_id" gorm:"uniqueIndex:idx_search_url"`
	Title        string    `json:"title"`
	Year         string    `json:"year"`
	Mileage      string    `json:"mileage"`
	Price        string    `json:"price"`
	Engine       string    `json:"engine"`
	Transmission string    `json:"transmission"`
	City         string    `json:"city"`
	URL          string    `json:"url" gorm:"uniqueIndex:idx_search_url"`
	CreatedAt    time.Time `json:"created_at"`
}
