package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Part is one catalog entry. Cost, PriceA and PriceB are the prices the
// revision engine manages; PriceM is carried for the catalog screens only.
type Part struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PartNo      string          `gorm:"uniqueIndex;not null"`
	Description string          `gorm:"not null;default:''"`
	CategoryID  *uuid.UUID      `gorm:"type:uuid;index"`
	BrandID     *uuid.UUID      `gorm:"type:uuid;index"`
	Cost        decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceA      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceB      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PriceM      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status      string          `gorm:"not null;default:'active';index"` // active | inactive
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Category *Category `gorm:"foreignKey:CategoryID"`
	Brand    *Brand    `gorm:"foreignKey:BrandID"`
}

const PartStatusActive = "active"
