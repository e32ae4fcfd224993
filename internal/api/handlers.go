package api

import (
	"net/http"
	"os"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/database"
	"autofair/server/internal/evaluator"
	"autofair/server/internal/models"
	"autofair/server/internal/queue"
	"autofair/server/internal/scraper"
	"autofair/server/internal/telegram"
)

type Handler struct {
	cfg             *config.Config
	db              *database.Database
	logger          *logrus.Logger
	evaluator       *evaluator.Evaluator
	scraper         *scraper.Scraper
	queue           *queue.ListingQueue
	telegramService *telegram.Service
}

type ScrapeRequest struct {
	Make    string `json:"make" binding:"required"`
	Model   string `json:"model" binding:"required"`
	PriceTo int    `json:"price_to"`
	Pages   int    `json:"pages"`
}

type InputCar struct {
	Title   string `json:"title"`
	Year    int    `json:"year"`
	Mileage int    `json:"mileage"`
	Price   int    `json:"price"`
}

type AnalyzeRequest struct {
	InputCar InputCar            `json:"input_car" binding:"required"`
	Listings []models.RawListing `json:"listings" binding:"required"`
}

func NewHandler(cfg *config.Config, db *database.Database, q *queue.ListingQueue, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		cfg:             cfg,
		db:              db,
		logger:          logger,
		evaluator:       evaluator.New(logger),
		scraper:         scraper.New(cfg, logger),
		queue:           q,
		telegramService: telegram.NewService(cfg, logger),
	}
}

// Scrape fetches comparable listings from the marketplace, persists the run
// and returns the raw listings to the caller.
func (h *Handler) Scrape(c *gin.Context) {
	var req ScrapeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse scrape request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "make and model are required"})
		return
	}

	raw, err := h.scraper.Scrape(c.Request.Context(), req.Make, req.Model, req.PriceTo, req.Pages)
	if err != nil {
		h.logger.WithError(err).Error("Scrape failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to fetch listings from marketplace"})
		return
	}

	h.persistSearch(req, raw)
	c.JSON(http.StatusOK, raw)
}

// persistSearch records the run and feeds the listings to the batch queue.
// Persistence is best-effort; a storage problem never fails the scrape
// response.
func (h *Handler) persistSearch(req ScrapeRequest, raw []models.RawListing) {
	search := &models.SavedSearch{
		Make:         req.Make,
		Model:        req.Model,
		PriceTo:      req.PriceTo,
		Pages:        req.Pages,
		ListingCount: len(raw),
	}
	if err := h.db.CreateSearch(search); err != nil {
		h.logger.WithError(err).Error("Failed to save search")
		return
	}

	batchSize := h.cfg.BatchProcessing.MaxBatchSize
	for start := 0; start < len(raw); start += batchSize {
		end := start + batchSize
		if end > len(raw) {
			end = len(raw)
		}
		batch := make([]*models.StoredListing, 0, end-start)
		for _, r := range raw[start:end] {
			batch = append(batch, &models.StoredListing{
				SearchID:     search.ID,
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
		if err := h.queue.Push(batch); err != nil {
			h.logger.WithError(err).Error("Failed to enqueue listing batch")
		}
	}
}

// Analyze evaluates an input vehicle against a pool of raw listings.
// Validation problems are 400s; a listing pool too thin to compare against is
// still a 200 whose body carries a semantic error field.
func (h *Handler) Analyze(c *gin.Context) {
	var req AnalyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.WithError(err).Error("Failed to parse analyze request")
		c.JSON(http.StatusBadRequest, gin.H{"error": "input_car and listings are required"})
		return
	}

	input, err := models.NewInputVehicle(req.InputCar.Title, req.InputCar.Year, req.InputCar.Mileage, req.InputCar.Price)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := h.evaluator.Evaluate(input, req.Listings)

	if h.telegramService.Enabled() {
		go func() {
			if err := h.telegramService.NotifyDeal(input, result); err != nil {
				h.logger.WithError(err).Error("Failed to send deal alert")
			}
		}()
	}

	c.JSON(http.StatusOK, result)
}

// GetRecentSearches lists the most recent saved scrape runs.
func (h *Handler) GetRecentSearches(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "10")
	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		limit = 10
	}

	searches, err := h.db.GetRecentSearches(limit)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get recent searches")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get recent searches"})
		return
	}

	c.JSON(http.StatusOK, searches)
}

// GetSearchListings returns the raw listings stored under one saved search.
func (h *Handler) GetSearchListings(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid search id"})
		return
	}

	listings, err := h.db.GetSearchListings(id)
	if err != nil {
		h.logger.WithError(err).Error("Failed to get search listings")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get search listings"})
		return
	}

	c.JSON(http.StatusOK, listings)
}

// Health is the liveness probe.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
