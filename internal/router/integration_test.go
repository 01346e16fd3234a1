//go:build integration

package router_test

// End-to-end test of the price desk against real Postgres + Redis via
// testcontainers. The workbench talks to the gin engine through the HTTP
// store client, exactly as pricectl does.
// Run with: go test -tags integration ./internal/router/... -v

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"pricedesk/internal/commit"
	"pricedesk/internal/config"
	"pricedesk/internal/desk"
	"pricedesk/internal/dto"
	"pricedesk/internal/infra"
	"pricedesk/internal/middleware"
	"pricedesk/internal/model"
	"pricedesk/internal/pricing"
	"pricedesk/internal/router"
	"pricedesk/internal/storeclient"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcPostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	tcRedis "github.com/testcontainers/testcontainers-go/modules/redis"
	"gorm.io/gorm"
)

const secret = "integration-secret"

type testEnv struct {
	db     *gorm.DB
	client *storeclient.Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	ctx := context.Background()

	pgC, err := tcPostgres.RunContainer(ctx,
		testcontainers.WithImage("postgres:15-alpine"),
		tcPostgres.WithDatabase("pricedesk_test"),
		tcPostgres.WithUsername("pricedesk"),
		tcPostgres.WithPassword("pricedesk"),
		testcontainers.WithWaitStrategy(tcPostgres.BasicWaitStrategies()...),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = pgC.Terminate(ctx) })

	pgURL, err := pgC.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	rdC, err := tcRedis.RunContainer(ctx, testcontainers.WithImage("redis:7-alpine"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rdC.Terminate(ctx) })

	rdURL, err := rdC.ConnectionString(ctx)
	require.NoError(t, err)

	cfg := &config.Config{
		Env:               "test",
		RateLimitPerMin:   10000,
		CORSOrigin:        "*",
		DatabaseURL:       pgURL,
		RedisURL:          rdURL,
		PriceListCacheTTL: time.Minute,
		JWTSecret:         secret,
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	require.NoError(t, err)
	rdb, err := infra.NewRedis(cfg.RedisURL)
	require.NoError(t, err)

	srv := httptest.NewServer(router.New(cfg, db, rdb))
	t.Cleanup(srv.Close)

	token, err := middleware.NewToken(secret, "u-1", "ana", router.RoleManager, time.Hour)
	require.NoError(t, err)

	return &testEnv{
		db:     db,
		client: storeclient.New(storeclient.Config{BaseURL: srv.URL, Token: token}),
	}
}

func seedPart(t *testing.T, db *gorm.DB, cat *model.Category, partNo, cost, a, b string, in, out int) model.Part {
	t.Helper()
	p := model.Part{
		PartNo:     partNo,
		CategoryID: &cat.ID,
		Cost:       decimal.RequireFromString(cost),
		PriceA:     decimal.RequireFromString(a),
		PriceB:     decimal.RequireFromString(b),
		Status:     model.PartStatusActive,
	}
	require.NoError(t, db.Create(&p).Error)
	require.NoError(t, db.Create(&model.StockMovement{PartID: p.ID, Type: model.MovementIn, Quantity: in}).Error)
	if out > 0 {
		require.NoError(t, db.Create(&model.StockMovement{PartID: p.ID, Type: model.MovementOut, Quantity: out}).Error)
	}
	return p
}

func TestE2E_BulkRevisionCommitAndHistory(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	filters := model.Category{Name: "Filters"}
	brakes := model.Category{Name: "Brakes"}
	require.NoError(t, env.db.Create(&filters).Error)
	require.NoError(t, env.db.Create(&brakes).Error)
	seedPart(t, env.db, &filters, "OF-100", "100.00", "150.00", "140.00", 5, 2)
	seedPart(t, env.db, &filters, "OF-200", "19.99", "29.99", "27.50", 1, 4)
	seedPart(t, env.db, &brakes, "BP-300", "50.00", "75.00", "70.00", 3, 0)

	w := desk.New(env.client, commit.NewCoordinator(env.client, 4), "ana")
	require.NoError(t, w.Load(ctx, dto.PriceItemFilter{Category: "all"}))
	require.Len(t, w.Items(), 3)

	// on-hand = max(0, in - out)
	qty := map[string]int{}
	for _, it := range w.Items() {
		qty[it.PartNo] = it.Qty
	}
	assert.Equal(t, map[string]int{"BP-300": 3, "OF-100": 3, "OF-200": 0}, qty)

	w.SelectAllVisible("", "Filters")
	require.NoError(t, w.ApplyBulkRevision(pricing.BulkRevisionRequest{
		Field: pricing.FieldAll, Kind: pricing.TransformPercentage, Magnitude: "10", Reason: "Supplier list",
	}))

	res, err := w.Commit(ctx, "Supplier list")
	require.NoError(t, err)
	assert.Len(t, res.Succeeded, 2)
	assert.Empty(t, pricing.Modified(w.Items()))

	// cached listing was invalidated by the writes
	prices := map[string]string{}
	for _, it := range w.Items() {
		prices[it.PartNo] = it.Cost.StringFixed(2)
	}
	assert.Equal(t, map[string]string{"OF-100": "110.00", "OF-200": "21.99", "BP-300": "50.00"}, prices)

	hist, err := w.History(ctx, 1, 50)
	require.NoError(t, err)
	// one "individual" row per changed field: 2 parts × 3 fields
	assert.Len(t, hist.Data, 6)
	for _, h := range hist.Data {
		assert.Equal(t, "ana", h.UpdatedBy)
		assert.Equal(t, "Supplier list", h.Reason)
	}

	// repeating the same patch is a no-op on the store
	var before int64
	require.NoError(t, env.db.Model(&model.PriceHistory{}).Count(&before).Error)
	price := decimal.RequireFromString("110.00")
	var of100 string
	for _, it := range w.Items() {
		if it.PartNo == "OF-100" {
			of100 = it.ID
		}
	}
	require.NoError(t, env.client.UpdateItemPrices(ctx, of100, pricing.Patch{Cost: &price, Reason: "again"}))
	var after int64
	require.NoError(t, env.db.Model(&model.PriceHistory{}).Count(&after).Error)
	assert.Equal(t, before, after)
}

func TestE2E_ServerSideBulkUpdate(t *testing.T) {
	env := setupTestEnv(t)
	ctx := context.Background()

	cat := model.Category{Name: "Ignition"}
	require.NoError(t, env.db.Create(&cat).Error)
	p1 := seedPart(t, env.db, &cat, "SP-1", "3.15", "6.20", "5.60", 10, 0)
	p2 := seedPart(t, env.db, &cat, "SP-2", "1.00", "2.00", "1.50", 10, 0)

	resp, err := env.client.BulkUpdatePrices(ctx, dto.BulkUpdatePricesRequest{
		PartIDs:     []string{p1.ID.String(), p2.ID.String()},
		PriceField:  "priceB",
		UpdateType:  "fixed",
		UpdateValue: decimal.RequireFromString("-2"),
		Reason:      "Clearance",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, resp.UpdatedCount)

	var got []model.Part
	require.NoError(t, env.db.Order("part_no").Find(&got).Error)
	assert.Equal(t, "3.60", got[0].PriceB.StringFixed(2))
	assert.Equal(t, "0.00", got[1].PriceB.StringFixed(2), "clamped at zero")

	hist, err := env.client.ListPriceHistory(ctx, 1, 10)
	require.NoError(t, err)
	require.NotEmpty(t, hist.Data)
	assert.Equal(t, "Fixed Amount", hist.Data[0].UpdateType)
	assert.Equal(t, "ana", hist.Data[0].UpdatedBy)
}
