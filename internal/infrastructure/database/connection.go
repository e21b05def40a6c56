package database

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/eslsoft/bookdrill/internal/adapter/repository"
	"github.com/eslsoft/bookdrill/internal/infrastructure/config"
)

// NewConnection opens a gorm database handle for the configured driver.
func NewConnection(cfg *config.Config) (*gorm.DB, func(), error) {
	var dialector gorm.Dialector
	switch cfg.DatabaseDriver() {
	case "postgres":
		dialector = postgres.Open(cfg.DatabaseURL())
	default:
		dialector = sqlite.Open(cfg.Database.Path)
	}

	logLevel := gormlogger.Silent
	if cfg.Database.LogSQL {
		logLevel = gormlogger.Info
	}

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger: gormlogger.Default.LogMode(logLevel),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("unwrap database handle: %w", err)
	}
	sqlDB.SetMaxOpenConns(10)

	cleanup := func() { _ = sqlDB.Close() }
	return db, cleanup, nil
}

// Migrate creates or updates the schema for every registered model.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(repository.Models()...); err != nil {
		return fmt.Errorf("migrate schema: %w", err)
	}
	return nil
}
