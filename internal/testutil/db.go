// Package testutil opens throwaway databases and seeds catalog rows for
// repository, service and handler tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/db"
)

// NewDB returns a migrated in-memory SQLite database. A single connection
// keeps every caller on the same memory database and serializes transactions.
func NewDB(t *testing.T) *gorm.DB {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
		NowFunc:        func() time.Time { return time.Now().UTC() },
	})
	require.NoError(t, err)

	sqlDB, err := gdb.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.Migrate(context.Background(), gdb, models.All()...))
	return gdb
}

func Product(t *testing.T, gdb *gorm.DB, price int64) *models.Product {
	t.Helper()
	p := &models.Product{Name: "Linen shirt", Price: price}
	require.NoError(t, gdb.Create(p).Error)
	return p
}

// SizedVariant creates a variant carrying per-size stock, in the order given.
func SizedVariant(t *testing.T, gdb *gorm.DB, productID uuid.UUID, sizes ...models.VariantSize) *models.Variant {
	t.Helper()
	for i := range sizes {
		sizes[i].Position = i
	}
	v := &models.Variant{ProductID: productID, ColorName: "Sand", Sizes: sizes}
	require.NoError(t, gdb.Create(v).Error)
	return v
}

// LegacyVariant creates a variant that only has the single size+amount pair.
func LegacyVariant(t *testing.T, gdb *gorm.DB, productID uuid.UUID, size string, amount int) *models.Variant {
	t.Helper()
	v := &models.Variant{ProductID: productID, ColorName: "Ink", Size: size, Amount: amount}
	require.NoError(t, gdb.Create(v).Error)
	return v
}

func Size(size string, amount int) models.VariantSize {
	return models.VariantSize{Size: size, Amount: amount}
}

func Amount(t *testing.T, gdb *gorm.DB, variantID uuid.UUID, size string) int {
	t.Helper()
	var row models.VariantSize
	err := gdb.Where("variant_id = ? AND size = ?", variantID, size).First(&row).Error
	require.NoError(t, err)
	return row.Amount
}
