package router

import (
	"time"

	"pricedesk/internal/config"
	"pricedesk/internal/handler"
	"pricedesk/internal/middleware"
	"pricedesk/internal/repository"
	"pricedesk/internal/service"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Roles carried in the JWT. Reading prices is open to every role; writing
// them needs manager or admin.
const (
	RoleOperator = "operator"
	RoleManager  = "manager"
	RoleAdmin    = "admin"
)

// New wires all dependencies and returns a configured Gin engine.
// Dependency graph: Handler ← Service ← Repository ← DB/Redis
func New(cfg *config.Config, db *gorm.DB, rdb *redis.Client) *gin.Engine {
	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// ── Repositories ─────────────────────────────────────────────────────────
	partRepo := repository.NewPartRepository(db)
	historyRepo := repository.NewPriceHistoryRepository(db)

	// ── Services ─────────────────────────────────────────────────────────────
	priceSvc := service.NewPriceService(partRepo, historyRepo, rdb, cfg.PriceListCacheTTL)

	return NewEngine(cfg, priceSvc, handler.Health(db, rdb))
}

// NewEngine builds the HTTP surface around an already constructed service.
// Split from New so handler-level tests can run without Postgres.
func NewEngine(cfg *config.Config, priceSvc service.PriceService, health gin.HandlerFunc) *gin.Engine {
	r := gin.New()

	// Global middleware chain (order matters)
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())
	r.Use(middleware.Recovery())
	r.Use(middleware.CORS(cfg.CORSOrigin))
	r.Use(middleware.ErrorHandler())
	r.Use(middleware.RateLimiter(cfg.RateLimitPerMin, time.Minute))

	// ── Handlers ─────────────────────────────────────────────────────────────
	pricesH := handler.NewPricesHandler(priceSvc)

	// ── Routes ───────────────────────────────────────────────────────────────

	// Public
	r.GET("/health", health)

	// Protected routes
	v1 := r.Group("/v1", middleware.JWTAuth(cfg.JWTSecret))
	{
		readers := middleware.RequireRole(RoleOperator, RoleManager, RoleAdmin)
		writers := middleware.RequireRole(RoleManager, RoleAdmin)

		parts := v1.Group("/parts")
		parts.GET("/price-management", readers, pricesH.List)
		parts.GET("/price-history", readers, pricesH.History)
		parts.PUT("/:id/prices", writers, pricesH.UpdatePrices)
		parts.POST("/bulk-update-prices", writers, pricesH.BulkUpdatePrices)
	}

	// Swagger UI, only enabled outside production
	if cfg.Env != "production" {
		r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	return r
}
