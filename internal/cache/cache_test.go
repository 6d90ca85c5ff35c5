package cache

import (
	"testing"
	"time"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func record(title string) *models.ProductRecord {
	rec := models.NewProductRecord("musinsa")
	rec.Title = title
	rec.Sizes = append(rec.Sizes, models.SizeOption{Name: "M"})
	return rec
}

func TestGetReturnsIndependentCopies(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()

	rec := record("후드")
	mc.Set("k", rec, time.Minute)
	rec.Title = "changed after set"

	got, ok := mc.Get("k")
	require.True(t, ok)
	assert.Equal(t, "후드", got.Title)

	got.Sizes[0].Name = "XL"
	again, _ := mc.Get("k")
	assert.Equal(t, "M", again.Sizes[0].Name)
}

func TestExpiry(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()
	now := time.Now()
	mc.now = func() time.Time { return now }

	mc.Set("k", record("a"), time.Minute)
	_, ok := mc.Get("k")
	assert.True(t, ok)

	now = now.Add(2 * time.Minute)
	_, ok = mc.Get("k")
	assert.False(t, ok)
	assert.Equal(t, 0, mc.Len())
}

func TestPurgeExpired(t *testing.T) {
	mc := NewMemoryCache(10)
	defer mc.Close()
	now := time.Now()
	mc.now = func() time.Time { return now }

	mc.Set("short", record("a"), time.Second)
	mc.Set("long", record("b"), time.Hour)
	now = now.Add(time.Minute)

	assert.Equal(t, 1, mc.purgeExpired())
	assert.Equal(t, 1, mc.Len())
}

func TestLRUEviction(t *testing.T) {
	mc := NewMemoryCache(2)
	defer mc.Close()

	mc.Set("a", record("a"), time.Minute)
	mc.Set("b", record("b"), time.Minute)
	_, _ = mc.Get("a")
	mc.Set("c", record("c"), time.Minute)

	_, okA := mc.Get("a")
	_, okB := mc.Get("b")
	_, okC := mc.Get("c")
	assert.True(t, okA)
	assert.False(t, okB)
	assert.True(t, okC)

	stats := mc.Stats()
	assert.Equal(t, 2, stats["entries"])
	assert.Equal(t, uint64(1), stats["misses"])
}

func TestKeyIsCanonical(t *testing.T) {
	assert.Equal(t,
		Key("musinsa", "https://www.musinsa.com/products/1"),
		Key("musinsa", "http://WWW.MUSINSA.COM/products/1/?utm_source=x#top"))
	assert.NotEqual(t, Key("musinsa", "https://a.com/1"), Key("naver", "https://a.com/1"))
}

func TestCloseStopsCleanup(t *testing.T) {
	defer goleak.VerifyNone(t)
	mc := NewMemoryCache(1)
	mc.Close()
	time.Sleep(10 * time.Millisecond)
}
