package main

import (
	"fmt"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"autofair/server/config"
	"autofair/server/internal/api"
	"autofair/server/internal/database"
	"autofair/server/internal/processor"
	"autofair/server/internal/queue"
	"autofair/server/internal/scheduler"
	"autofair/server/internal/scraper"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetOutput(os.Stdout)

	if err := godotenv.Load(); err != nil {
		logger.Info("No .env file found, using system environment")
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	logger.Infof("Using database at: %s", cfg.Database.Path)
	db, err := database.NewDatabase(cfg.Database.Path)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize database")
	}
	defer db.Close()

	logger.Info("Running database migrations...")
	if err := db.RunMigrations(); err != nil {
		logger.WithError(err).Fatal("Failed to run database migrations")
	}

	// Scraped listings flow through the queue into SQLite in batches.
	listingQueue := queue.NewListingQueue(cfg.BatchProcessing.MaxBatchSize, logger)
	batchProcessor := processor.NewBatchProcessor(db.GetDB(), listingQueue, cfg, logger)
	batchProcessor.Start()
	listingQueue.Start()
	defer func() {
		listingQueue.Close()
		batchProcessor.Stop()
	}()

	// Periodic re-scrape of recent searches, when enabled.
	refreshScheduler := scheduler.NewScheduler(cfg, db, scraper.New(cfg, logger), listingQueue, logger)
	refreshScheduler.Start()
	defer refreshScheduler.Stop()

	handler := api.NewHandler(cfg, db, listingQueue, logger)

	router := gin.Default()
	router.Use(cors.Default())
	api.SetupRoutes(router, handler)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Infof("Starting server on %s", addr)
	if err := router.Run(addr); err != nil {
		logger.WithError(err).Fatal("Server failed to start")
	}
}
