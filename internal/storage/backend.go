package storage

import (
	"context"
	"errors"
	"fmt"
)

// ErrNotFound is returned by Get when no record exists under the key.
var ErrNotFound = errors.New("storage: record not found")

// Backend is durable key/value storage for serialized records.
// Implementations: in-memory, Redis, SQL (GORM) and S3.
type Backend interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Name() string
}

// ScopedKey namespaces a record key under one shopper scope.
func ScopedKey(scopeID, key string) string {
	return fmt.Sprintf("scope:%s:%s", scopeID, key)
}
