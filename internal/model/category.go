package model

import (
	"time"

	"github.com/google/uuid"
)

// Category classifies parts (filters, brakes, ...).
type Category struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName pins the plural; GORM would infer it anyway, the migrations rely on it.
func (Category) TableName() string { return "categories" }

// Brand is the manufacturer of a part.
type Brand struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
