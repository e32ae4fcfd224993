package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/evaluator"
	"autofair/server/internal/export"
	"autofair/server/internal/models"
	"autofair/server/internal/scraper"
)

func main() {
	var (
		makeFlag    = flag.String("make", "", "Car make (required)")
		modelFlag   = flag.String("model", "", "Car model (required)")
		yearFlag    = flag.Int("year", 0, "Year of the car (required)")
		mileageFlag = flag.Int("mileage", -1, "Mileage in km (required)")
		priceFlag   = flag.Int("price", -1, "Asking price in EUR (required)")
		pagesFlag   = flag.Int("pages", 0, "Result pages to scrape (0 = configured max)")
		csvFlag     = flag.String("csv", "listings.csv", "Path for the scraped listings CSV")
	)
	flag.Parse()

	if *makeFlag == "" || *modelFlag == "" || *yearFlag == 0 || *mileageFlag < 0 || *priceFlag < 0 {
		flag.Usage()
		os.Exit(2)
	}

	logger := logrus.New()
	logger.SetOutput(os.Stderr)

	if err := godotenv.Load(); err == nil {
		logger.Debug("Loaded .env")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	title := fmt.Sprintf("%s %s", *makeFlag, *modelFlag)
	input, err := models.NewInputVehicle(title, *yearFlag, *mileageFlag, *priceFlag)
	if err != nil {
		logger.WithError(err).Fatal("Invalid input vehicle")
	}

	fmt.Printf("Evaluating: %s, %d, %dkm, %d€\n", title, input.Year, input.Mileage, input.Price)
	fmt.Println("Scraping comparable listings...")

	s := scraper.New(cfg, logger)
	raw, err := s.Scrape(context.Background(), *makeFlag, *modelFlag, *priceFlag, *pagesFlag)
	if err != nil {
		logger.WithError(err).Fatal("Scrape failed")
	}

	ext := evaluator.NewExtractor(logger)
	canonical := ext.ExtractBatch(raw)
	if err := export.WriteListingsCSV(*csvFlag, canonical); err != nil {
		logger.WithError(err).Error("Failed to write listings CSV")
	} else {
		fmt.Printf("Scraped listings saved to %s\n\n", *csvFlag)
	}

	result := evaluator.New(logger).Evaluate(input, raw)
	printResult(result)
}

func printResult(r *models.AnalysisResult) {
	if r.Error != "" {
		fmt.Printf("[!] %s\n", r.Error)
		if len(r.SampleTitles) > 0 {
			fmt.Println("Sample similar titles:")
			for _, t := range r.SampleTitles {
				fmt.Printf("  - %s\n", t)
			}
		}
		return
	}

	if r.IsCheaper {
		fmt.Printf("Your car is %.1f%% cheaper than the average of %d most similar listings (avg: %d€). Good deal!\n",
			r.PercentDiff, r.CountSimilar, r.AveragePrice)
	} else {
		fmt.Printf("Your car is %.1f%% more expensive than the average of %d most similar listings (avg: %d€). Not a great deal.\n",
			r.PercentDiff, r.CountSimilar, r.AveragePrice)
	}
	fmt.Printf("Comparison quality: %s (%s)\n", r.ComparisonQuality, r.QualityNote)

	if len(r.TopSimilar) > 0 {
		fmt.Println("Most similar listings:")
		for _, l := range r.TopSimilar {
			line := fmt.Sprintf("  - %s | %d | %dkm | %d€ | score %.2f", l.Title, l.Year, l.Mileage, l.Price, l.Score)
			if l.URL != nil {
				line += " | " + *l.URL
			}
			fmt.Println(line)
		}
	}
}
