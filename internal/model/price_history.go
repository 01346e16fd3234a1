package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceHistory records every committed price change. Rows are immutable;
// never updated nor deleted.
type PriceHistory struct {
	ID           uuid.UUID        `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PartID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	PartNo       string           `gorm:"not null"`
	Description  string           `gorm:"not null;default:''"`
	PriceField   string           `gorm:"not null"` // cost | priceA | priceB | all
	UpdateType   string           `gorm:"not null"` // percentage | fixed | individual
	UpdateValue  *decimal.Decimal `gorm:"type:decimal(12,4)"`
	OldValue     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	NewValue     *decimal.Decimal `gorm:"type:decimal(12,2)"`
	ItemsUpdated int              `gorm:"not null;default:1"`
	Reason       string           `gorm:"not null"`
	UpdatedBy    string           `gorm:"not null;default:'System'"`
	CreatedAt    time.Time        `gorm:"index"`
}

// TableName keeps the singular table name the history endpoint has always used.
func (PriceHistory) TableName() string { return "price_history" }

const (
	UpdateTypePercentage = "percentage"
	UpdateTypeFixed      = "fixed"
	UpdateTypeIndividual = "individual"
)
