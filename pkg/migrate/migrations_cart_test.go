package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestCartMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no cart migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE TABLE IF NOT EXISTS cart_items",
		"CONSTRAINT ux_cart_items_cart_variant UNIQUE (cart_id, variant_id)",
		"FOREIGN KEY (cart_id) REFERENCES carts(id) ON DELETE CASCADE",
		"CHECK (quantity > 0)",
		"DROP TABLE IF EXISTS cart_items",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestCheckoutMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_checkout_and_outbox_tables.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no checkout migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CONSTRAINT ux_checkouts_merchant_reference_id UNIQUE (merchant_reference_id)",
		"payment_method_types TEXT[]",
		"payload JSONB NOT NULL",
		"WHERE published_at IS NULL",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}
