package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// probe reports "connected", "disabled" or "error" for one dependency.
type probe func(ctx context.Context) string

func postgresProbe(db *gorm.DB) probe {
	return func(ctx context.Context) string {
		sqlDB, err := db.DB()
		if err != nil || sqlDB.PingContext(ctx) != nil {
			return "error"
		}
		return "connected"
	}
}

func redisProbe(rdb *redis.Client) probe {
	return func(ctx context.Context) string {
		if rdb == nil {
			return "disabled"
		}
		if rdb.Ping(ctx).Err() != nil {
			return "error"
		}
		return "connected"
	}
}

// Health answers 503 only when postgres is down. Redis backs the listing
// cache alone, so losing it is reported but keeps the store healthy.
func Health(db *gorm.DB, rdb *redis.Client) gin.HandlerFunc {
	return healthHandler(postgresProbe(db), redisProbe(rdb))
}

func healthHandler(database, cache probe) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
		defer cancel()

		dbStatus := database(ctx)
		cacheStatus := cache(ctx)

		status := http.StatusOK
		if dbStatus != "connected" {
			status = http.StatusServiceUnavailable
		}
		c.JSON(status, gin.H{
			"ok":    status == http.StatusOK,
			"db":    dbStatus,
			"redis": cacheStatus,
		})
	}
}
