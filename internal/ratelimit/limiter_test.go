package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDomainLimiter_PerHost(t *testing.T) {
	dl := NewDomainLimiter(1, 1)

	assert.True(t, dl.Allow("https://www.musinsa.com/products/1"))
	assert.False(t, dl.Allow("https://www.musinsa.com/products/2"), "same host shares the bucket")
	assert.True(t, dl.Allow("https://smartstore.naver.com/a/products/1"))
	assert.True(t, dl.Allow("::not a url"), "unparseable URLs are not limited")
}

func TestDomainLimiter_WaitHonoursContext(t *testing.T) {
	dl := NewDomainLimiter(0.1, 1)
	assert.NoError(t, dl.Wait(context.Background(), "https://www.musinsa.com/"))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.Error(t, dl.Wait(ctx, "https://www.musinsa.com/"))
}

func TestKeyedLimiter_SetLimit(t *testing.T) {
	kl := NewKeyedLimiter(1, 1)
	kl.SetLimit("10.0.0.1", 1000, 5)
	for i := 0; i < 5; i++ {
		assert.True(t, kl.AllowKey("10.0.0.1"))
	}
	assert.True(t, kl.AllowKey("10.0.0.2"))
	assert.False(t, kl.AllowKey("10.0.0.2"))
}
