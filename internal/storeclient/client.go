// Package storeclient talks to the price store HTTP API on behalf of the
// workbench: listing priceable parts, patching one part's prices and reading
// the revision history.
package storeclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"pricedesk/internal/dto"
	"pricedesk/internal/infra"
	"pricedesk/internal/pricing"

	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// StatusError is returned for any non-2xx answer from the store.
type StatusError struct {
	Code   int
	Detail string
}

func (e *StatusError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("store returned %d", e.Code)
	}
	return fmt.Sprintf("store returned %d: %s", e.Code, e.Detail)
}

// Temporary reports whether retrying the same request could succeed.
func (e *StatusError) Temporary() bool {
	return e.Code >= 500 || e.Code == http.StatusTooManyRequests
}

// Config configures a Client. Zero values pick the defaults noted per field.
type Config struct {
	BaseURL    string
	Token      string
	Timeout    time.Duration // default 15s
	RatePerSec float64       // 0 disables client-side throttling
	Breaker    *infra.CircuitBreaker
	HTTPClient *http.Client
}

type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	limiter    *rate.Limiter
	breaker    *infra.CircuitBreaker
}

// New builds a Client. When cfg.Breaker is nil a breaker with the default
// price-store settings is created; only transport errors and retryable
// statuses count against it.
func New(cfg Config) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
	hc := cfg.HTTPClient
	if hc == nil {
		hc = &http.Client{Timeout: cfg.Timeout}
	}
	cb := cfg.Breaker
	if cb == nil {
		cbCfg := infra.DefaultCBConfig()
		cbCfg.IsFailure = countsAgainstBreaker
		cb = infra.NewCircuitBreaker(cbCfg)
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		token:      cfg.Token,
		httpClient: hc,
		breaker:    cb,
	}
	if cfg.RatePerSec > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(cfg.RatePerSec), max(1, int(cfg.RatePerSec)))
	}
	return c
}

func countsAgainstBreaker(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Temporary()
	}
	return !errors.Is(err, context.Canceled)
}

// ── Price items ───────────────────────────────────────────────────────────────

// ListPriceItems fetches one page of the price-management listing.
func (c *Client) ListPriceItems(ctx context.Context, f dto.PriceItemFilter) (*dto.PriceItemListResponse, error) {
	q := url.Values{}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}

	var out dto.PriceItemListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/parts/price-management?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list price items: %w", err)
	}
	return &out, nil
}

// LoadItems walks every page matching the filter and materializes the rows as
// price items with staged values equal to committed.
func (c *Client) LoadItems(ctx context.Context, f dto.PriceItemFilter) ([]*pricing.PriceItem, error) {
	if f.Limit <= 0 {
		f.Limit = 1000
	}
	var items []*pricing.PriceItem
	for page := 1; ; page++ {
		f.Page = page
		resp, err := c.ListPriceItems(ctx, f)
		if err != nil {
			return nil, err
		}
		for _, row := range resp.Data {
			items = append(items, pricing.NewPriceItem(row.ID, row.PartNo, row.Description, row.Category,
				row.Qty, row.Cost, row.PriceA, row.PriceB))
		}
		if len(resp.Data) == 0 || page >= resp.Pagination.TotalPages {
			break
		}
	}
	log.Debug().Int("items", len(items)).Str("search", f.Search).Str("category", f.Category).Msg("price items loaded")
	return items, nil
}

// UpdateItemPrices sends a minimal price patch for one part. It bypasses the
// circuit breaker: every item of a commit reaches the store and is judged on
// its own answer.
func (c *Client) UpdateItemPrices(ctx context.Context, id string, patch pricing.Patch) error {
	if err := c.send(ctx, http.MethodPut, "/v1/parts/"+url.PathEscape(id)+"/prices", patch, nil); err != nil {
		return fmt.Errorf("update prices of %s: %w", id, err)
	}
	return nil
}

// BulkUpdatePrices asks the store to apply a revision server-side.
func (c *Client) BulkUpdatePrices(ctx context.Context, req dto.BulkUpdatePricesRequest) (*dto.BulkUpdatePricesResponse, error) {
	var out dto.BulkUpdatePricesResponse
	if err := c.do(ctx, http.MethodPost, "/v1/parts/bulk-update-prices", req, &out); err != nil {
		return nil, fmt.Errorf("bulk update prices: %w", err)
	}
	return &out, nil
}

// ── History ───────────────────────────────────────────────────────────────────

func (c *Client) ListPriceHistory(ctx context.Context, page, limit int) (*dto.PriceHistoryListResponse, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}
	var out dto.PriceHistoryListResponse
	if err := c.do(ctx, http.MethodGet, "/v1/parts/price-history?"+q.Encode(), nil, &out); err != nil {
		return nil, fmt.Errorf("list price history: %w", err)
	}
	return &out, nil
}

// ── Transport ─────────────────────────────────────────────────────────────────

// do runs a request behind the circuit breaker.
func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.breaker.Execute(func() error {
		return c.roundTrip(ctx, method, path, in, out)
	})
}

// send runs a request with throttling only.
func (c *Client) send(ctx context.Context, method, path string, in, out interface{}) error {
	if err := c.wait(ctx); err != nil {
		return err
	}
	return c.roundTrip(ctx, method, path, in, out)
}

func (c *Client) wait(ctx context.Context) error {
	if c.limiter == nil {
		return nil
	}
	return c.limiter.Wait(ctx)
}

func (c *Client) roundTrip(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("store unreachable: %w", err)
	}
	defer resp.Body.Close()

	log.Debug().
		Str("method", method).
		Str("path", path).
		Int("status", resp.StatusCode).
		Dur("latency", time.Since(start)).
		Msg("store request")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeStatusError(resp)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeStatusError(resp *http.Response) error {
	se := &StatusError{Code: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	var envelope struct {
		Detail string `json:"detail"`
		Error  string `json:"error"`
	}
	if json.Unmarshal(raw, &envelope) == nil {
		se.Detail = envelope.Detail
		if se.Detail == "" {
			se.Detail = envelope.Error
		}
	}
	if se.Detail == "" {
		se.Detail = strings.TrimSpace(string(raw))
	}
	return se
}
