package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"pricedesk/internal/dto"
	"pricedesk/internal/model"
	"pricedesk/internal/pricing"
	"pricedesk/internal/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var (
	ErrPartNotFound  = errors.New("part not found")
	ErrNoPartsFound  = errors.New("no parts found")
	ErrNoPriceFields = errors.New("no valid price fields to update")
)

const (
	priceListVersionKey = "pricelist:version"
	defaultActor        = "System"
)

// PriceService is the server side of the price store: listing, per-part
// patches, server-side bulk revisions and the audit log.
type PriceService interface {
	List(ctx context.Context, filter dto.PriceItemFilter) (*dto.PriceItemListResponse, error)
	UpdatePrices(ctx context.Context, id uuid.UUID, req dto.UpdatePricesRequest, actor string) (*dto.UpdatePricesResponse, error)
	BulkUpdatePrices(ctx context.Context, req dto.BulkUpdatePricesRequest, actor string) (*dto.BulkUpdatePricesResponse, error)
	ListHistory(ctx context.Context, page, limit int) (*dto.PriceHistoryListResponse, error)
}

type priceService struct {
	parts    repository.PartRepository
	history  repository.PriceHistoryRepository
	rdb      *redis.Client
	cacheTTL time.Duration
}

// NewPriceService wires the service. rdb may be nil, which disables the listing cache.
func NewPriceService(parts repository.PartRepository, history repository.PriceHistoryRepository, rdb *redis.Client, cacheTTL time.Duration) PriceService {
	return &priceService{parts: parts, history: history, rdb: rdb, cacheTTL: cacheTTL}
}

// ── List ──────────────────────────────────────────────────────────────────────

func (s *priceService) List(ctx context.Context, filter dto.PriceItemFilter) (*dto.PriceItemListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 1000
	}

	key := s.listCacheKey(ctx, filter)
	if key != "" {
		if cached, err := s.rdb.Get(ctx, key).Bytes(); err == nil {
			var resp dto.PriceItemListResponse
			if jsonErr := json.Unmarshal(cached, &resp); jsonErr == nil {
				return &resp, nil
			}
		}
	}

	rows, total, err := s.parts.ListPriceable(ctx, filter)
	if err != nil {
		return nil, err
	}

	data := make([]dto.PriceItemResponse, 0, len(rows))
	for _, r := range rows {
		data = append(data, dto.PriceItemResponse{
			ID:          r.ID.String(),
			PartNo:      r.PartNo,
			Description: r.Description,
			Category:    r.Category,
			Brand:       r.Brand,
			Qty:         max(r.Qty, 0),
			Cost:        r.Cost,
			PriceA:      r.PriceA,
			PriceB:      r.PriceB,
			PriceM:      r.PriceM,
		})
	}
	resp := &dto.PriceItemListResponse{
		Data:       data,
		Pagination: paginate(filter.Page, filter.Limit, total),
	}

	// Populate cache, best effort
	if key != "" {
		if b, jsonErr := json.Marshal(resp); jsonErr == nil {
			_ = s.rdb.Set(ctx, key, b, s.cacheTTL).Err()
		}
	}
	return resp, nil
}

// listCacheKey embeds the listing version so a price write invalidates every
// cached page at once. Empty means "do not cache".
func (s *priceService) listCacheKey(ctx context.Context, f dto.PriceItemFilter) string {
	if s.rdb == nil || s.cacheTTL <= 0 {
		return ""
	}
	version, err := s.rdb.Get(ctx, priceListVersionKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		return ""
	}
	return fmt.Sprintf("pricelist:v%d:%s|%s|%d|%d",
		version, strings.ToLower(strings.TrimSpace(f.Search)), f.Category, f.Page, f.Limit)
}

func (s *priceService) invalidateList(ctx context.Context) {
	if s.rdb == nil {
		return
	}
	if err := s.rdb.Incr(ctx, priceListVersionKey).Err(); err != nil {
		log.Warn().Err(err).Msg("price list cache invalidation failed")
	}
}

// ── UpdatePrices ──────────────────────────────────────────────────────────────
// Minimal patch on one part. Repeating the same patch leaves the same end state
// and records no further history, since nothing changes the second time.

func (s *priceService) UpdatePrices(ctx context.Context, id uuid.UUID, req dto.UpdatePricesRequest, actor string) (*dto.UpdatePricesResponse, error) {
	requested := map[pricing.Field]*decimal.Decimal{
		pricing.FieldCost:   req.Cost,
		pricing.FieldPriceA: req.PriceA,
		pricing.FieldPriceB: req.PriceB,
	}
	hasField := false
	for _, v := range requested {
		if v != nil {
			hasField = true
		}
	}
	if !hasField {
		return nil, ErrNoPriceFields
	}

	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		reason = "Individual price update"
	}
	by := resolveActor(req.UpdatedBy, actor)

	var updated model.Part
	err := s.parts.Transaction(ctx, func(tx *gorm.DB) error {
		parts, err := s.parts.FindForUpdateTx(tx, []uuid.UUID{id})
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			return ErrPartNotFound
		}
		part := parts[0]

		updates := make(map[string]interface{})
		var rows []model.PriceHistory
		for _, f := range []pricing.Field{pricing.FieldCost, pricing.FieldPriceA, pricing.FieldPriceB} {
			v := requested[f]
			if v == nil {
				continue
			}
			next := pricing.Round2(*v)
			old := partPrice(&part, f)
			if next.Equal(old) {
				continue
			}
			updates[priceColumn(f)] = next
			setPartPrice(&part, f, next)
			rows = append(rows, historyRow(&part, f, model.UpdateTypeIndividual, nil, old, next, 1, reason, by))
		}

		if len(updates) > 0 {
			if err := s.parts.UpdatePricesTx(tx, id, updates); err != nil {
				return err
			}
			if err := s.history.CreateTx(tx, rows); err != nil {
				return err
			}
		}
		updated = part
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	return &dto.UpdatePricesResponse{
		ID:     updated.ID.String(),
		PartNo: updated.PartNo,
		Cost:   updated.Cost,
		PriceA: updated.PriceA,
		PriceB: updated.PriceB,
	}, nil
}

// ── BulkUpdatePrices ─────────────────────────────────────────────────────────
// Server-side rendition of the revision engine: same transform, same rounding,
// always computed from the stored value. One history row per part.

func (s *priceService) BulkUpdatePrices(ctx context.Context, req dto.BulkUpdatePricesRequest, actor string) (*dto.BulkUpdatePricesResponse, error) {
	field, err := pricing.ParseField(req.PriceField)
	if err != nil {
		return nil, err
	}
	fields, _ := field.Fields()
	kind := pricing.TransformKind(req.UpdateType)
	if kind != pricing.TransformPercentage && kind != pricing.TransformFixed {
		return nil, fmt.Errorf("%w: %q", pricing.ErrInvalidTransform, req.UpdateType)
	}
	if err := pricing.CheckMagnitude(req.UpdateValue); err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, pricing.ErrMissingReason
	}

	ids := make([]uuid.UUID, 0, len(req.PartIDs))
	for _, raw := range req.PartIDs {
		id, err := uuid.Parse(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid part id %q: %w", raw, err)
		}
		ids = append(ids, id)
	}
	by := resolveActor(req.UpdatedBy, actor)
	magnitude := req.UpdateValue

	var count int
	err = s.parts.Transaction(ctx, func(tx *gorm.DB) error {
		parts, err := s.parts.FindForUpdateTx(tx, ids)
		if err != nil {
			return err
		}
		if len(parts) == 0 {
			return ErrNoPartsFound
		}

		rows := make([]model.PriceHistory, 0, len(parts))
		for i := range parts {
			part := &parts[i]
			updates := make(map[string]interface{}, len(fields))
			var old, next decimal.Decimal
			for _, f := range fields {
				old = partPrice(part, f)
				next = pricing.Transform(kind, old, magnitude)
				updates[priceColumn(f)] = next
				setPartPrice(part, f, next)
			}
			if err := s.parts.UpdatePricesTx(tx, part.ID, updates); err != nil {
				return err
			}

			row := historyRow(part, field, string(kind), &magnitude, old, next, len(req.PartIDs), reason, by)
			if field == pricing.FieldAll {
				// old/new only describe a single-field revision
				row.OldValue, row.NewValue = nil, nil
			}
			rows = append(rows, row)
		}
		count = len(parts)
		return s.history.CreateTx(tx, rows)
	})
	if err != nil {
		return nil, err
	}

	s.invalidateList(ctx)
	log.Info().
		Int("parts", count).
		Str("field", string(field)).
		Str("type", string(kind)).
		Str("value", magnitude.String()).
		Str("by", by).
		Msg("bulk price update applied")

	return &dto.BulkUpdatePricesResponse{
		Message:      fmt.Sprintf("Successfully updated %d parts", count),
		UpdatedCount: count,
	}, nil
}

// ── ListHistory ──────────────────────────────────────────────────────────────

func (s *priceService) ListHistory(ctx context.Context, page, limit int) (*dto.PriceHistoryListResponse, error) {
	rows, total, err := s.history.List(ctx, page, limit)
	if err != nil {
		return nil, err
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 500 {
		limit = 50
	}

	data := make([]dto.PriceHistoryEntry, 0, len(rows))
	for i := range rows {
		data = append(data, historyToDTO(&rows[i]))
	}
	return &dto.PriceHistoryListResponse{Data: data, Pagination: paginate(page, limit, total)}, nil
}

// ── Helpers ───────────────────────────────────────────────────────────────────

func historyToDTO(h *model.PriceHistory) dto.PriceHistoryEntry {
	value := decimal.Zero
	switch {
	case h.UpdateValue != nil:
		value = *h.UpdateValue
	case h.NewValue != nil:
		value = *h.NewValue
	}
	return dto.PriceHistoryEntry{
		ID:           h.ID.String(),
		Date:         h.CreatedAt.UTC().Format(time.RFC3339),
		PartNo:       h.PartNo,
		ItemsUpdated: h.ItemsUpdated,
		PriceField:   h.PriceField,
		UpdateType:   updateTypeLabel(h.UpdateType),
		Value:        value,
		OldValue:     h.OldValue,
		NewValue:     h.NewValue,
		Reason:       h.Reason,
		UpdatedBy:    resolveActor(h.UpdatedBy, ""),
	}
}

func updateTypeLabel(t string) string {
	switch t {
	case model.UpdateTypePercentage:
		return "Percentage (%)"
	case model.UpdateTypeFixed:
		return "Fixed Amount"
	default:
		return t
	}
}

func historyRow(p *model.Part, f pricing.Field, updateType string, value *decimal.Decimal, old, next decimal.Decimal, items int, reason, by string) model.PriceHistory {
	o, n := old, next
	return model.PriceHistory{
		PartID:       p.ID,
		PartNo:       p.PartNo,
		Description:  p.Description,
		PriceField:   string(f),
		UpdateType:   updateType,
		UpdateValue:  value,
		OldValue:     &o,
		NewValue:     &n,
		ItemsUpdated: items,
		Reason:       reason,
		UpdatedBy:    by,
	}
}

func resolveActor(explicit, fallback string) string {
	if s := strings.TrimSpace(explicit); s != "" {
		return s
	}
	if s := strings.TrimSpace(fallback); s != "" {
		return s
	}
	return defaultActor
}

func priceColumn(f pricing.Field) string {
	switch f {
	case pricing.FieldPriceA:
		return "price_a"
	case pricing.FieldPriceB:
		return "price_b"
	default:
		return "cost"
	}
}

func partPrice(p *model.Part, f pricing.Field) decimal.Decimal {
	switch f {
	case pricing.FieldPriceA:
		return p.PriceA
	case pricing.FieldPriceB:
		return p.PriceB
	default:
		return p.Cost
	}
}

func setPartPrice(p *model.Part, f pricing.Field, v decimal.Decimal) {
	switch f {
	case pricing.FieldPriceA:
		p.PriceA = v
	case pricing.FieldPriceB:
		p.PriceB = v
	default:
		p.Cost = v
	}
}

func paginate(page, limit int, total int64) dto.Pagination {
	pages := 0
	if limit > 0 {
		pages = int((total + int64(limit) - 1) / int64(limit))
	}
	return dto.Pagination{Page: page, Limit: limit, Total: total, TotalPages: pages}
}
