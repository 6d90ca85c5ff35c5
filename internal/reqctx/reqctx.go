// Package reqctx carries a per-scrape request id through contexts and logs.
package reqctx

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/rs/zerolog"
)

type key int

const requestKey key = 0

// RequestContext identifies one scrape call
type RequestContext struct {
	RequestID string
	StartTime time.Time
}

// WithRequestContext attaches a fresh request id unless ctx already has one
func WithRequestContext(ctx context.Context) context.Context {
	if _, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return ctx
	}
	return WithRequestID(ctx, generateID())
}

// WithRequestID attaches id, e.g. one supplied by an HTTP client
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		id = generateID()
	}
	return context.WithValue(ctx, requestKey, &RequestContext{
		RequestID: id,
		StartTime: time.Now(),
	})
}

// GetRequestContext returns the request context of ctx, or a placeholder
func GetRequestContext(ctx context.Context) *RequestContext {
	if rc, ok := ctx.Value(requestKey).(*RequestContext); ok {
		return rc
	}
	return &RequestContext{
		RequestID: "unknown",
		StartTime: time.Now(),
	}
}

// Logger returns base with the request id of ctx attached
func Logger(ctx context.Context, base zerolog.Logger) zerolog.Logger {
	return base.With().Str("request_id", GetRequestContext(ctx).RequestID).Logger()
}

// Elapsed is the time since the request started
func Elapsed(ctx context.Context) time.Duration {
	return time.Since(GetRequestContext(ctx).StartTime)
}

func generateID() string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%x", time.Now().UnixNano())
	}
	return hex.EncodeToString(b)
}
