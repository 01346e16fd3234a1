package middleware

import (
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"pricedesk/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
)

// ── Per-IP API rate limiter ───────────────────────────────────────────────────
// Token bucket per client IP: limit requests per window, bursting up to limit.

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

type ipLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	every    rate.Limit
	burst    int
}

func (l *ipLimiter) get(ip string, now time.Time) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	v, ok := l.visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(l.every, l.burst)}
		l.visitors[ip] = v
	}
	v.lastSeen = now
	return v.limiter
}

func (l *ipLimiter) purge(idle time.Duration) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	cutoff := time.Now().Add(-idle)
	purged := 0
	for ip, v := range l.visitors {
		if v.lastSeen.Before(cutoff) {
			delete(l.visitors, ip)
			purged++
		}
	}
	return purged
}

const purgeInterval = 5 * time.Minute

// RateLimiter allows limit requests per window per IP. A background goroutine
// drops idle visitors so the map does not grow without bound.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	if limit < 1 {
		limit = 1
	}
	l := &ipLimiter{
		visitors: make(map[string]*visitor),
		every:    rate.Limit(float64(limit) / window.Seconds()),
		burst:    limit,
	}

	go func() {
		ticker := time.NewTicker(purgeInterval)
		defer ticker.Stop()
		for range ticker.C {
			if n := l.purge(window + purgeInterval); n > 0 {
				log.Debug().Int("entries_purged", n).Msg("rate limiter visitors purged")
			}
		}
	}()

	return func(c *gin.Context) {
		lim := l.get(c.ClientIP(), time.Now())
		r := lim.Reserve()
		if delay := r.Delay(); delay > 0 {
			r.Cancel()
			c.Header("Retry-After", formatSeconds(delay))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.WithCode(apierror.CodeRateLimited, "Too many requests. Try again shortly."))
			return
		}
		c.Next()
	}
}

func formatSeconds(d time.Duration) string {
	return strconv.Itoa(int(math.Ceil(d.Seconds())))
}
