package reqctx

import (
	"bytes"
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestWithRequestContextKeepsExistingID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "abc")
	ctx = WithRequestContext(ctx)
	assert.Equal(t, "abc", GetRequestContext(ctx).RequestID)

	fresh := GetRequestContext(WithRequestContext(context.Background())).RequestID
	assert.Len(t, fresh, 16)
	assert.Equal(t, "unknown", GetRequestContext(context.Background()).RequestID)
}

func TestLoggerCarriesRequestID(t *testing.T) {
	var buf bytes.Buffer
	log := Logger(WithRequestID(context.Background(), "req-1"), zerolog.New(&buf))
	log.Info().Msg("hello")
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
}
