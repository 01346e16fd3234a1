package dto

import "github.com/shopspring/decimal"

// ─── Request DTOs ────────────────────────────────────────────────────────────

// UpdatePricesRequest is a minimal patch: absent fields are left untouched.
type UpdatePricesRequest struct {
	Cost      *decimal.Decimal `json:"cost"       validate:"omitempty,min=0"`
	PriceA    *decimal.Decimal `json:"priceA"     validate:"omitempty,min=0"`
	PriceB    *decimal.Decimal `json:"priceB"     validate:"omitempty,min=0"`
	Reason    string           `json:"reason"`
	UpdatedBy string           `json:"updated_by"`
}

type BulkUpdatePricesRequest struct {
	PartIDs     []string        `json:"part_ids"     validate:"required,min=1,dive,uuid"`
	PriceField  string          `json:"price_field"  validate:"required,oneof=cost priceA priceB all"`
	UpdateType  string          `json:"update_type"  validate:"required,oneof=percentage fixed"`
	UpdateValue decimal.Decimal `json:"update_value"`
	Reason      string          `json:"reason"       validate:"required"`
	UpdatedBy   string          `json:"updated_by"`
}

// ─── Filter / Pagination ─────────────────────────────────────────────────────

type PriceItemFilter struct {
	Search   string `form:"search"`
	Category string `form:"category"`
	Page     int    `form:"page,default=1"     validate:"min=1"`
	Limit    int    `form:"limit,default=1000" validate:"min=1,max=5000"`
}

type Pagination struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"totalPages"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

// PriceItemResponse is one row of the price-management listing.
type PriceItemResponse struct {
	ID          string          `json:"id"`
	PartNo      string          `json:"partNo"`
	Description string          `json:"description"`
	Category    string          `json:"category"`
	Brand       string          `json:"brand"`
	Qty         int             `json:"qty"`
	Cost        decimal.Decimal `json:"cost"`
	PriceA      decimal.Decimal `json:"priceA"`
	PriceB      decimal.Decimal `json:"priceB"`
	PriceM      decimal.Decimal `json:"priceM"`
}

type PriceItemListResponse struct {
	Data       []PriceItemResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

type UpdatePricesResponse struct {
	ID     string          `json:"id"`
	PartNo string          `json:"partNo"`
	Cost   decimal.Decimal `json:"cost"`
	PriceA decimal.Decimal `json:"priceA"`
	PriceB decimal.Decimal `json:"priceB"`
}

type BulkUpdatePricesResponse struct {
	Message      string `json:"message"`
	UpdatedCount int    `json:"updated_count"`
}

// PriceHistoryEntry is one row of the revision audit log.
type PriceHistoryEntry struct {
	ID           string           `json:"id"`
	Date         string           `json:"date"`
	PartNo       string           `json:"partNo,omitempty"`
	ItemsUpdated int              `json:"itemsUpdated"`
	PriceField   string           `json:"priceField"`
	UpdateType   string           `json:"updateType"`
	Value        decimal.Decimal  `json:"value"`
	OldValue     *decimal.Decimal `json:"oldValue,omitempty"`
	NewValue     *decimal.Decimal `json:"newValue,omitempty"`
	Reason       string           `json:"reason"`
	UpdatedBy    string           `json:"updatedBy"`
}

type PriceHistoryListResponse struct {
	Data       []PriceHistoryEntry `json:"data"`
	Pagination Pagination          `json:"pagination"`
}
