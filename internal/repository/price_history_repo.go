package repository

import (
	"context"

	"pricedesk/internal/model"

	"gorm.io/gorm"
)

type PriceHistoryRepository interface {
	CreateTx(tx *gorm.DB, rows []model.PriceHistory) error
	List(ctx context.Context, page, limit int) ([]model.PriceHistory, int64, error)
}

type priceHistoryRepository struct{ db *gorm.DB }

func NewPriceHistoryRepository(db *gorm.DB) PriceHistoryRepository {
	return &priceHistoryRepository{db: db}
}

func (r *priceHistoryRepository) CreateTx(tx *gorm.DB, rows []model.PriceHistory) error {
	if len(rows) == 0 {
		return nil
	}
	return tx.Create(&rows).Error
}

// List returns paginated price-change records, newest first
// (append-only table, so this reflects natural insert order).
func (r *priceHistoryRepository) List(ctx context.Context, page, limit int) ([]model.PriceHistory, int64, error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	var total int64
	if err := r.db.WithContext(ctx).
		Model(&model.PriceHistory{}).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []model.PriceHistory
	offset := (page - 1) * limit
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}
