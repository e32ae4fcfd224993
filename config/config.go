package config

import "github.com/caarlos0/env/v6"

type Config struct {
	Server struct {
		// HTTP listen port
		Port int `env:"PORT" envDefault:"5250"`
	}

	Database struct {
		// SQLite file holding saved searches and their raw listings
		Path string `env:"DATABASE_PATH" envDefault:"database/autofair.db"`
	}

	Scraper struct {
		// Marketplace search endpoint
		BaseURL string `env:"SCRAPER_BASE_URL" envDefault:"https://www.polovniautomobili.com/auto-oglasi/pretraga"`

		// Hard cap on result pages per scrape
		MaxPages int `env:"SCRAPER_MAX_PAGES" envDefault:"5"`

		// Delay between result pages (in milliseconds)
		RateLimitMs int `env:"SCRAPER_RATE_LIMIT_MS" envDefault:"2000"`

		// Per-page load timeout (in seconds)
		PageTimeoutSec int `env:"SCRAPER_PAGE_TIMEOUT" envDefault:"60"`

		// Optional explicit browser binary
		ChromeBin string `env:"CHROME_BIN"`
	}

	// BatchProcessing configuration
	BatchProcessing struct {
		// Maximum number of listings to accumulate before processing
		MaxBatchSize int `env:"BATCH_MAX_SIZE" envDefault:"100"`

		// Number of concurrent batch processors
		ProcessorCount int `env:"BATCH_PROCESSOR_COUNT" envDefault:"2"`

		// Maximum number of retries for failed batches
		MaxRetries int `env:"BATCH_MAX_RETRIES" envDefault:"3"`

		// Delay between retries in seconds
		RetryDelay int `env:"BATCH_RETRY_DELAY" envDefault:"5"`
	}

	Refresh struct {
		// Whether saved searches are periodically re-scraped
		Enabled bool `env:"REFRESH_ENABLED" envDefault:"false"`

		// Hours between refresh runs
		IntervalHours int `env:"REFRESH_INTERVAL_HOURS" envDefault:"12"`

		// How many recent searches each run refreshes
		SearchLimit int `env:"REFRESH_SEARCH_LIMIT" envDefault:"5"`
	}

	Telegram struct {
		BotToken string `env:"TELEGRAM_BOT_TOKEN"`
		ChatID   string `env:"TELEGRAM_CHAT_ID"`

		// Minimum percent-cheaper verdict that triggers a deal alert
		MinPercentDiff float64 `env:"TELEGRAM_MIN_PERCENT_DIFF" envDefault:"5"`
	}
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
