package middleware

import (
	"net/http"
	"runtime/debug"
	"time"

	"pricedesk/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrorHandler logs errors handlers attached with c.Error and, when the
// handler wrote nothing, answers with a bare 500. Error text stays in the log.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Str("route", c.FullPath()).
				Str("actor", Actor(c)).
				Err(e.Err).
				Msg("request failed")
		}
		if !c.Writer.Written() {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal("Internal server error"))
		}
	}
}

// Recovery turns a panic into a 500 and logs the stack.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			r := recover()
			if r == nil {
				return
			}
			log.Error().
				Str("request_id", c.GetString(RequestIDKey)).
				Interface("panic", r).
				Bytes("stack", debug.Stack()).
				Msg("panic recovered")
			c.AbortWithStatusJSON(http.StatusInternalServerError, apierror.Internal("Internal server error"))
		}()
		c.Next()
	}
}

// Logger writes one line per request. Server errors log at error level,
// client errors at warn, the rest at info.
func Logger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		var ev *zerolog.Event
		switch {
		case status >= 500:
			ev = log.Error()
		case status >= 400:
			ev = log.Warn()
		default:
			ev = log.Info()
		}
		ev.Str("request_id", c.GetString(RequestIDKey)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Int("bytes", c.Writer.Size()).
			Dur("latency", time.Since(start)).
			Msg("request")
	}
}
