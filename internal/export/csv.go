package export

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"autofair/server/internal/models"
)

// WriteListingsCSV dumps canonical listings to a CSV file so a scrape run can
// be inspected or re-used outside the tool. Intermediate directories are
// created automatically.
func WriteListingsCSV(path string, listings []*models.Listing) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("csv: create output dir: %w", err)
		}
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("csv: create file %q: %w", path, err)
	}
	defer f.Close()

	w := csv.NewWriter(f)
	header := []string{
		"title", "year", "mileage", "price", "engine_type", "engine_size",
		"transmission", "body_type", "fuel_type", "city", "url", "keywords",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("csv: write header: %w", err)
	}

	for _, l := range listings {
		row := []string{
			l.Title,
			strconv.Itoa(l.Year),
			strconv.Itoa(l.Mileage),
			strconv.Itoa(l.Price),
			optString(l.EngineType),
			optFloat(l.EngineSize),
			optString(l.Transmission),
			optString(l.BodyType),
			optString(l.FuelType),
			optString(l.City),
			optString(l.URL),
			strings.Join(l.Keywords, ";"),
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	w.Flush()
	return w.Error()
}

func optString(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func optFloat(f *float64) string {
	if f == nil {
		return ""
	}
	return strconv.FormatFloat(*f, 'f', 1, 64)
}
