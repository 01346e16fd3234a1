package infra

import (
	"fmt"
	"time"

	"pricedesk/internal/model"

	"github.com/rs/zerolog/log"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// NewDatabase opens a GORM connection backed by pgx, migrates the price tables
// and applies the idempotent index patches AutoMigrate cannot express.
func NewDatabase(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(30 * time.Minute)

	if err := RunMigrations(db); err != nil {
		return nil, err
	}
	return db, nil
}

// RunMigrations creates / updates every table the price desk owns. Integration
// tests call it directly against a throwaway container.
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&model.Category{},
		&model.Brand{},
		&model.Part{},
		&model.StockMovement{},
		&model.PriceHistory{},
	); err != nil {
		return fmt.Errorf("AutoMigrate: %w", err)
	}
	if err := applySchemaPatches(db); err != nil {
		return fmt.Errorf("schema patches: %w", err)
	}
	return nil
}

// applySchemaPatches runs DDL that GORM tags cannot describe. Every statement
// is IF NOT EXISTS so re-running on a patched DB is a no-op.
func applySchemaPatches(db *gorm.DB) error {
	patches := []struct{ descr, sql string }{
		// case-insensitive search on the listing
		{"idx_parts_part_no_lower",
			`CREATE INDEX IF NOT EXISTS idx_parts_part_no_lower ON parts (lower(part_no))`},
		{"idx_parts_description_lower",
			`CREATE INDEX IF NOT EXISTS idx_parts_description_lower ON parts (lower(description))`},
		// quantity on hand is summed per part on every listing
		{"idx_stock_movements_part_type",
			`CREATE INDEX IF NOT EXISTS idx_stock_movements_part_type ON stock_movements (part_id, type)`},
		// history is always read newest first
		{"idx_price_history_created_desc",
			`CREATE INDEX IF NOT EXISTS idx_price_history_created_desc ON price_history (created_at DESC)`},
		{"chk_parts_prices_non_negative", `
DO $$ BEGIN
  IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'chk_parts_prices_non_negative') THEN
    ALTER TABLE parts ADD CONSTRAINT chk_parts_prices_non_negative
      CHECK (cost >= 0 AND price_a >= 0 AND price_b >= 0);
  END IF;
END $$`},
	}
	for _, p := range patches {
		if err := db.Exec(p.sql).Error; err != nil {
			return fmt.Errorf("patch %q: %w", p.descr, err)
		}
		log.Debug().Str("patch", p.descr).Msg("schema patch applied")
	}
	return nil
}
