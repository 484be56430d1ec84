package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// GormBackend stores one row per key in the storage_records table.
type GormBackend struct {
	db *gorm.DB
}

func NewGormBackend(db *gorm.DB) *GormBackend {
	return &GormBackend{db: db}
}

func (g *GormBackend) Get(ctx context.Context, key string) ([]byte, error) {
	var record model.StorageRecord
	err := g.db.WithContext(ctx).Where("record_key = ?", key).First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load record %s: %w", key, err)
	}
	return []byte(record.Value), nil
}

func (g *GormBackend) Set(ctx context.Context, key string, value []byte) error {
	record := model.StorageRecord{RecordKey: key, Value: string(value)}
	err := g.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "record_key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&record).Error
	if err != nil {
		return fmt.Errorf("save record %s: %w", key, err)
	}
	return nil
}

func (g *GormBackend) Delete(ctx context.Context, key string) error {
	if err := g.db.WithContext(ctx).Where("record_key = ?", key).Delete(&model.StorageRecord{}).Error; err != nil {
		return fmt.Errorf("delete record %s: %w", key, err)
	}
	return nil
}

func (g *GormBackend) Name() string { return "sql" }
