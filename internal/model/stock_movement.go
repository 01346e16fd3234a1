package model

import (
	"time"

	"github.com/google/uuid"
)

// StockMovement is an append-only stock ledger row. On-hand quantity for a part
// is Σ(in) − Σ(out), floored at zero.
type StockMovement struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PartID    uuid.UUID `gorm:"type:uuid;not null;index"`
	Type      string    `gorm:"not null"` // in | out
	Quantity  int       `gorm:"not null"`
	Reference *string
	CreatedAt time.Time
}

const (
	MovementIn  = "in"
	MovementOut = "out"
)
