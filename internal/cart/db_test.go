package cart

import (
	"io"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/kinaskak/storefront-backend/pkg/logger"
)

func setupCartTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	carts := `
CREATE TABLE IF NOT EXISTS carts (
  id TEXT PRIMARY KEY,
  status TEXT NOT NULL DEFAULT 'active',
  created_at DATETIME,
  updated_at DATETIME
);`
	cartItems := `
CREATE TABLE IF NOT EXISTS cart_items (
  id TEXT PRIMARY KEY,
  cart_id TEXT NOT NULL,
  product_id TEXT NOT NULL,
  variant_id TEXT NOT NULL,
  quantity INTEGER NOT NULL,
  created_at DATETIME,
  updated_at DATETIME,
  UNIQUE (cart_id, variant_id)
);`
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

	for _, ddl := range []string{carts, cartItems, products, variants} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "cart-test", Output: io.Discard})
}
