package repository

import (
	"context"
	"strings"

	"pricedesk/internal/dto"
	"pricedesk/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PriceableRow is a part joined with its category/brand names and on-hand stock.
type PriceableRow struct {
	ID          uuid.UUID
	PartNo      string
	Description string
	Category    string
	Brand       string
	Qty         int
	Cost        decimal.Decimal
	PriceA      decimal.Decimal
	PriceB      decimal.Decimal
	PriceM      decimal.Decimal
}

// PartRepository defines the data access contract for priced parts.
// Services depend on this interface, not on the concrete GORM implementation,
// enabling clean unit testing via stubs.
type PartRepository interface {
	ListPriceable(ctx context.Context, filter dto.PriceItemFilter) ([]PriceableRow, int64, error)
	FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error)

	// Used inside transactions; callers must pass the tx instance
	FindForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Part, error)
	UpdatePricesTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error

	// Transaction runs fn in a database transaction.
	Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error
}

type partRepo struct{ db *gorm.DB }

func NewPartRepository(db *gorm.DB) PartRepository { return &partRepo{db: db} }

// netStockSQL aggregates the stock ledger per part.
const netStockSQL = `SELECT part_id,
       SUM(CASE WHEN type = 'in' THEN quantity ELSE -quantity END) AS net
  FROM stock_movements
 GROUP BY part_id`

func (r *partRepo) ListPriceable(ctx context.Context, filter dto.PriceItemFilter) ([]PriceableRow, int64, error) {
	// Fresh chain per statement: Count and Scan must not share builder state.
	base := func() *gorm.DB {
		q := r.db.WithContext(ctx).
			Table("parts").
			Joins("LEFT JOIN categories ON categories.id = parts.category_id").
			Joins("LEFT JOIN brands ON brands.id = parts.brand_id").
			Where("parts.status = ?", model.PartStatusActive)

		if s := strings.TrimSpace(filter.Search); s != "" {
			like := "%" + s + "%"
			q = q.Where("(parts.part_no ILIKE ? OR parts.description ILIKE ?)", like, like)
		}
		if c := strings.TrimSpace(filter.Category); c != "" && c != "all" {
			q = q.Where("categories.name = ?", c)
		}
		return q
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var rows []PriceableRow
	offset := (filter.Page - 1) * filter.Limit
	err := base().
		Select(`parts.id, parts.part_no, parts.description,
		        COALESCE(categories.name, 'Uncategorized') AS category,
		        COALESCE(brands.name, 'Unknown') AS brand,
		        GREATEST(COALESCE(stock.net, 0), 0) AS qty,
		        parts.cost, parts.price_a, parts.price_b, parts.price_m`).
		Joins("LEFT JOIN (" + netStockSQL + ") AS stock ON stock.part_id = parts.id").
		Order("parts.part_no ASC").
		Limit(filter.Limit).
		Offset(offset).
		Scan(&rows).Error
	return rows, total, err
}

func (r *partRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Part, error) {
	var p model.Part
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	return &p, err
}

// FindForUpdateTx row-locks the parts so concurrent patches on the same part
// serialize and each history row sees the right "old" value.
func (r *partRepo) FindForUpdateTx(tx *gorm.DB, ids []uuid.UUID) ([]model.Part, error) {
	var parts []model.Part
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id IN ?", ids).
		Order("part_no ASC").
		Find(&parts).Error
	return parts, err
}

func (r *partRepo) UpdatePricesTx(tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	return tx.Model(&model.Part{}).Where("id = ?", id).Updates(updates).Error
}

func (r *partRepo) Transaction(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return r.db.WithContext(ctx).Transaction(fn)
}
