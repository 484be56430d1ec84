package model

import "time"

// StorageRecord is one durable key/value record, e.g. a shopper's serialized cart.
type StorageRecord struct {
	RecordKey string    `gorm:"primaryKey;size:255" json:"key"`
	Value     string    `gorm:"type:text;not null" json:"value"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (StorageRecord) TableName() string {
	return "storage_records"
}
