package database

import (
	"epaper-app/internal/domain/epaper"

	"go.uber.org/zap"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open connects to postgres and migrates the e-paper tables.
func Open(dsn string, log *zap.Logger) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(
		&epaper.Edition{},
		&epaper.Category{},
		&epaper.Page{},
		&epaper.PageHotspot{},
	); err != nil {
		return nil, err
	}

	log.Info("database connected and migrated")
	return db, nil
}
