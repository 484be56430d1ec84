package storage

import (
	"context"
	"testing"

	"github.com/ikkim/kicks-storefront/internal/app/model"
	"github.com/ikkim/kicks-storefront/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGormBackend_Contract(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	runBackendContract(t, NewGormBackend(testDB))
}

func TestGormBackend_UpsertKeepsSingleRow(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})

	ctx := context.Background()
	b := NewGormBackend(testDB)

	require.NoError(t, b.Set(ctx, "scope:a:kicks_cart", []byte("[1]")))
	require.NoError(t, b.Set(ctx, "scope:a:kicks_cart", []byte("[2]")))

	var count int64
	require.NoError(t, testDB.Model(&model.StorageRecord{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)

	got, err := b.Get(ctx, "scope:a:kicks_cart")
	require.NoError(t, err)
	assert.Equal(t, "[2]", string(got))
}
