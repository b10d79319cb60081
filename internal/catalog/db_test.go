package catalog

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/logger"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	products := `
CREATE TABLE IF NOT EXISTS products (
  id TEXT PRIMARY KEY,
  handle TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  description TEXT,
  base_price NUMERIC NOT NULL DEFAULT 0,
  is_available INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`
	variants := `
CREATE TABLE IF NOT EXISTS product_variants (
  id TEXT PRIMARY KEY,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  price_adjustment NUMERIC,
  is_available INTEGER NOT NULL DEFAULT 1,
  created_at DATETIME,
  updated_at DATETIME
);`

	require.NoError(t, db.Exec(products).Error)
	require.NoError(t, db.Exec(variants).Error)
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "catalog-test", Output: io.Discard})
}
