// cmd/seedparts/main.go creates or refreshes a small demo catalog.
// Usage: go run ./cmd/seedparts
package main

import (
	"context"
	"fmt"

	"pricedesk/internal/config"
	"pricedesk/internal/infra"
	"pricedesk/internal/model"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type seedPart struct {
	partNo, description, category, brand string
	cost, priceA, priceB                 string
	stockIn, stockOut                    int
}

var catalog = []seedPart{
	{"OF-1001", "Oil filter 3/4-16 UNF", "Filters", "Mann", "4.20", "7.90", "7.10", 40, 12},
	{"AF-2040", "Air filter panel", "Filters", "Mann", "6.75", "12.50", "11.25", 25, 5},
	{"FF-3300", "Fuel filter inline", "Filters", "Bosch", "5.10", "9.80", "8.90", 18, 18},
	{"BP-4410", "Brake pad set front", "Brakes", "Brembo", "22.00", "39.90", "36.50", 12, 3},
	{"BD-4500", "Brake disc 280mm", "Brakes", "Brembo", "31.40", "54.00", "49.90", 6, 0},
	{"SP-7100", "Spark plug iridium", "Ignition", "NGK", "3.15", "6.20", "5.60", 120, 47},
	{"WB-8020", "Wiper blade 22in", "Body", "Bosch", "0.00", "8.50", "7.90", 30, 2},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("config")
	}
	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("db connect")
	}

	err = db.WithContext(context.Background()).Transaction(func(tx *gorm.DB) error {
		for _, sp := range catalog {
			if err := seed(tx, sp); err != nil {
				return fmt.Errorf("%s: %w", sp.partNo, err)
			}
		}
		return nil
	})
	if err != nil {
		log.Fatal().Err(err).Msg("seed")
	}
	fmt.Printf("seeded %d parts\n", len(catalog))
}

func seed(tx *gorm.DB, sp seedPart) error {
	cat := model.Category{Name: sp.category}
	if err := tx.Where(model.Category{Name: sp.category}).FirstOrCreate(&cat).Error; err != nil {
		return err
	}
	brand := model.Brand{Name: sp.brand}
	if err := tx.Where(model.Brand{Name: sp.brand}).FirstOrCreate(&brand).Error; err != nil {
		return err
	}

	part := model.Part{
		PartNo:      sp.partNo,
		Description: sp.description,
		CategoryID:  &cat.ID,
		BrandID:     &brand.ID,
		Cost:        decimal.RequireFromString(sp.cost),
		PriceA:      decimal.RequireFromString(sp.priceA),
		PriceB:      decimal.RequireFromString(sp.priceB),
		Status:      model.PartStatusActive,
	}
	// Re-running refreshes descriptions but never overwrites prices set since.
	err := tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "part_no"}},
		DoUpdates: clause.AssignmentColumns([]string{"description", "category_id", "brand_id", "updated_at"}),
	}).Create(&part).Error
	if err != nil {
		return err
	}
	if err := tx.Where("part_no = ?", sp.partNo).First(&part).Error; err != nil {
		return err
	}

	var movements int64
	if err := tx.Model(&model.StockMovement{}).Where("part_id = ?", part.ID).Count(&movements).Error; err != nil {
		return err
	}
	if movements > 0 {
		return nil
	}
	ref := "seed"
	rows := []model.StockMovement{
		{PartID: part.ID, Type: model.MovementIn, Quantity: sp.stockIn, Reference: &ref},
	}
	if sp.stockOut > 0 {
		rows = append(rows, model.StockMovement{PartID: part.ID, Type: model.MovementOut, Quantity: sp.stockOut, Reference: &ref})
	}
	return tx.Create(&rows).Error
}
