package db

import (
	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/pkg/logger"
	"gorm.io/gorm"
)

// Models lists every table owned by the storefront.
var Models = []interface{}{
	&model.StorageRecord{},
}

// Migrate runs database migrations
func Migrate() error {
	return MigrateDB(DB)
}

// MigrateDB runs migrations against the given connection.
func MigrateDB(conn *gorm.DB) error {
	logger.Info("Running database migrations...")

	if err := conn.AutoMigrate(Models...); err != nil {
		logger.Error("Failed to run migrations", err)
		return err
	}

	logger.Info("Database migrations completed successfully", map[string]interface{}{
		"models_count": len(Models),
	})
	return nil
}
