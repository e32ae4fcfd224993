package database

import (
	"fmt"
	"os"
	"path/filepath"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"autofair/server/internal/models"
)

// Database persists scrape runs and their raw listings in SQLite.
type Database struct {
	db *gorm.DB
}

func NewDatabase(dbPath string) (*Database, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	return &Database{db: db}, nil
}

// RunMigrations creates or upgrades the schema.
func (d *Database) RunMigrations() error {
	return d.db.AutoMigrate(&models.SavedSearch{}, &models.StoredListing{})
}

// GetDB exposes the underlying gorm handle for transactional batch work.
func (d *Database) GetDB() *gorm.DB {
	return d.db
}

// CreateSearch records a new scrape run and fills in its ID.
func (d *Database) CreateSearch(search *models.SavedSearch) error {
	return d.db.Create(search).Error
}

// UpdateSearchCount stores the number of listings a run ended up with.
func (d *Database) UpdateSearchCount(searchID int64, count int) error {
	return d.db.Model(&models.SavedSearch{}).
		Where("id = ?", searchID).
		Update("listing_count", count).Error
}

// GetRecentSearches returns the newest saved searches, most recent first.
func (d *Database) GetRecentSearches(limit int) ([]models.SavedSearch, error) {
	if limit <= 0 {
		limit = 10
	}
	var searches []models.SavedSearch
	err := d.db.Order("created_at DESC").Limit(limit).Find(&searches).Error
	return searches, err
}

// GetSearchListings returns the raw listings stored under one search.
func (d *Database) GetSearchListings(searchID int64) ([]models.StoredListing, error) {
	var listings []models.StoredListing
	err := d.db.Where("search_id = ?", searchID).Order("id").Find(&listings).Error
	return listings, err
}

// Close releases the underlying connection pool.
func (d *Database) Close() error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// UpsertListings inserts a batch of stored listings, ignoring rows already
// present for the same search and URL. It is meant to run inside the batch
// processor's transaction.
func UpsertListings(tx *gorm.DB, batch []*models.StoredListing) error {
	if len(batch) == 0 {
		return nil
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "search_id"}, {Name: "url"}},
		DoNothing: true,
	}).Create(batch).Error
}
