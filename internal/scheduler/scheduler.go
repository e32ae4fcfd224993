package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/database"
	"autofair/server/internal/models"
	"autofair/server/internal/queue"
	"autofair/server/internal/scraper"
)

// Scheduler periodically re-scrapes the most recent saved searches so their
// listing pools stay fresh between user visits.
type Scheduler struct {
	cfg     *config.Config
	db      *database.Database
	scraper *scraper.Scraper
	queue   *queue.ListingQueue
	logger  *logrus.Logger

	done      chan struct{}
	waitGroup sync.WaitGroup
	startOnce sync.Once
	stopOnce  sync.Once
}

func NewScheduler(cfg *config.Config, db *database.Database, s *scraper.Scraper, q *queue.ListingQueue, logger *logrus.Logger) *Scheduler {
	if logger == nil {
		logger = logrus.New()
	}
	return &Scheduler{
		cfg:     cfg,
		db:      db,
		scraper: s,
		queue:   q,
		logger:  logger,
		done:    make(chan struct{}),
	}
}

// Start launches the refresh loop. It is a no-op when refresh is disabled.
func (s *Scheduler) Start() {
	if !s.cfg.Refresh.Enabled {
		s.logger.Info("Search refresh is disabled")
		return
	}

	s.startOnce.Do(func() {
		s.waitGroup.Add(1)
		go s.run()
	})
}

// Stop shuts the refresh loop down and waits for an in-flight run to finish.
func (s *Scheduler) Stop() {
	s.stopOnce.Do(func() {
		close(s.done)
	})
	s.waitGroup.Wait()
}

func (s *Scheduler) run() {
	defer s.waitGroup.Done()

	interval := time.Duration(s.cfg.Refresh.IntervalHours) * time.Hour
	s.logger.WithField("interval", interval.String()).Info("Search refresh scheduler started")

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-s.done:
			s.logger.Info("Search refresh scheduler stopped")
			return
		case <-ticker.C:
			s.refreshRecentSearches()
		}
	}
}

// refreshRecentSearches re-runs the newest saved searches through the
// scraper. Failures are logged per search; one broken search never stops the
// others.
func (s *Scheduler) refreshRecentSearches() {
	searches, err := s.db.GetRecentSearches(s.cfg.Refresh.SearchLimit)
	if err != nil {
		s.logger.WithError(err).Error("Failed to load searches for refresh")
		return
	}

	for _, search := range searches {
		select {
		case <-s.done:
			return
		default:
		}

		if err := s.refreshSearch(search); err != nil {
			s.logger.WithError(err).WithFields(logrus.Fields{
				"make":  search.Make,
				"model": search.Model,
			}).Error("Failed to refresh search")
		}
	}
}

func (s *Scheduler) refreshSearch(search models.SavedSearch) error {
	raw, err := s.scraper.Scrape(context.Background(), search.Make, search.Model, search.PriceTo, search.Pages)
	if err != nil {
		return err
	}

	fresh := &models.SavedSearch{
		Make:         search.Make,
		Model:        search.Model,
		PriceTo:      search.PriceTo,
		Pages:        search.Pages,
		ListingCount: len(raw),
	}
	if err := s.db.CreateSearch(fresh); err != nil {
		return err
	}

	batch := make([]*models.StoredListing, 0, len(raw))
	for _, r := range raw {
		batch = append(batch, &models.StoredListing{
			SearchID:     fresh.ID,
			Title:        r.Title,
			Year:         r.Year,
			Mileage:      r.Mileage,
			Price:        r.Price,
			Engine:       r.Engine,
			Transmission: r.Transmission,
			City:         r.City,
			URL:          r.URL,
		})
	}

	s.logger.WithFields(logrus.Fields{
		"make":     search.Make,
		"model":    search.Model,
		"listings": len(batch),
	}).Info("Refreshed search")
	return s.queue.Push(batch)
}
