package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/law-makers/goodscrawl/internal/ratelimit"
	"github.com/law-makers/goodscrawl/internal/reqctx"
	"github.com/rs/zerolog"
)

// RequestIDHeader carries the request id in and out
const RequestIDHeader = "X-Request-ID"

// RequestID attaches the caller's request id, or a fresh one, to the request
// context and echoes it in the response
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := reqctx.WithRequestID(c.Request.Context(), c.GetHeader(RequestIDHeader))
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, reqctx.GetRequestContext(ctx).RequestID)
		c.Next()
	}
}

// AccessLog logs one line per request
func AccessLog(logger zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		l := reqctx.Logger(c.Request.Context(), logger)
		l.Info().
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("latency", time.Since(start)).
			Str("client", c.ClientIP()).
			Msg("HTTP request")
	}
}

// CORS allows any origin; the API is read-only
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Access-Control-Allow-Origin", "*")
		c.Header("Access-Control-Allow-Methods", "GET, OPTIONS")
		c.Header("Access-Control-Allow-Headers", "Content-Type, "+RequestIDHeader)
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// RateLimit rejects a client IP that has used up its token bucket
func RateLimit(limiter *ratelimit.KeyedLimiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !limiter.AllowKey(c.ClientIP()) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorResponse{
				Error: "rate limit exceeded, please slow down",
				Code:  "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
