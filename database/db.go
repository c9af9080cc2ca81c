package database

import (
	"fmt"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/mtheuszin1/adscale-deploy/config"
	"github.com/mtheuszin1/adscale-deploy/models"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

var DB *gorm.DB

// InitDB opens the configured database, migrates it and stores it in DB.
func InitDB(cfg config.DatabaseConfig) error {
	db, err := Open(cfg.Path)
	if err != nil {
		return err
	}
	DB = db
	return nil
}

// Open connects to the sqlite file at path and migrates the schema.
func Open(path string) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("open database %s: %w", path, err)
	}

	if path == MemoryPath {
		// Every new connection would see its own empty database.
		sqlDB, err := db.DB()
		if err != nil {
			return nil, fmt.Errorf("open database %s: %w", path, err)
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(&models.Ad{}, &models.AdHistory{}, &IntelligenceSnapshotRecord{}); err != nil {
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return db, nil
}

func GetDB() *gorm.DB {
	return DB
}
