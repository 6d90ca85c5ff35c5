package batch

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/law-makers/goodscrawl/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type mockScraper struct {
	delay   map[string]time.Duration
	active  atomic.Int32
	maxSeen atomic.Int32
	mu      sync.Mutex
	calls   []string
}

func (m *mockScraper) Scrape(ctx context.Context, url string) (*models.ProductRecord, error) {
	n := m.active.Add(1)
	defer m.active.Add(-1)
	for {
		seen := m.maxSeen.Load()
		if n <= seen || m.maxSeen.CompareAndSwap(seen, n) {
			break
		}
	}
	m.mu.Lock()
	m.calls = append(m.calls, url)
	m.mu.Unlock()

	select {
	case <-time.After(m.delay[url] + time.Millisecond):
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if url == "error" {
		return nil, errors.New("fetch error")
	}
	rec := models.NewProductRecord("mock")
	rec.Title = url
	return rec, nil
}

func TestRunner_OrderedResults(t *testing.T) {
	scraper := &mockScraper{delay: map[string]time.Duration{
		"url1": 30 * time.Millisecond,
		"url2": 0,
		"url3": 10 * time.Millisecond,
	}}
	runner := New(scraper, 2, 0)

	results := runner.Collect(context.Background(), []string{"url1", "url2", "error", "url3"})
	require.Len(t, results, 4)

	for i, res := range results {
		assert.Equal(t, i, res.Index)
	}
	assert.Equal(t, "url1", results[0].Record.Title)
	assert.Equal(t, "url2", results[1].Record.Title)
	assert.Nil(t, results[2].Record)
	assert.EqualError(t, results[2].Err, "fetch error")
	assert.Equal(t, "url3", results[3].Record.Title)
	assert.LessOrEqual(t, scraper.maxSeen.Load(), int32(2))
}

func TestRunner_Cancelled(t *testing.T) {
	scraper := &mockScraper{delay: map[string]time.Duration{"slow": time.Second}}
	runner := New(scraper, 1, 0)

	ctx, cancel := context.WithCancel(context.Background())
	results := runner.Run(ctx, []string{"slow", "a", "b"})
	time.Sleep(20 * time.Millisecond)
	cancel()

	var got []models.ScrapeResult
	for res := range results {
		got = append(got, res)
	}
	require.Len(t, got, 3)
	for _, res := range got {
		assert.ErrorIs(t, res.Err, context.Canceled)
	}
	assert.Equal(t, []string{"slow"}, scraper.calls)
}

func TestRunner_AbandonedChannelDoesNotLeak(t *testing.T) {
	runner := New(&mockScraper{}, 2, 0)
	results := runner.Run(context.Background(), []string{"a", "b", "c"})
	<-results
	// the remaining results are buffered; goleak checks the workers exit
	time.Sleep(20 * time.Millisecond)
}

func TestRunner_Empty(t *testing.T) {
	assert.Empty(t, New(&mockScraper{}, 1, 0).Collect(context.Background(), nil))
}

func TestOptimalConcurrency(t *testing.T) {
	assert.Equal(t, 1, OptimalConcurrency(1))
	n := OptimalConcurrency(0)
	assert.GreaterOrEqual(t, n, 1)
	assert.LessOrEqual(t, n, 50)
	assert.LessOrEqual(t, New(&mockScraper{}, 0, 3).Concurrency(), 3)
	assert.Equal(t, 7, New(&mockScraper{}, 7, 3).Concurrency())
}
