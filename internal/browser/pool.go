// Package browser drives headless Chrome through chromedp: a pool of
// reusable tabs and a page handle over one tab.
package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog/log"
)

// ErrPoolClosed is returned by Acquire after Close
var ErrPoolClosed = errors.New("browser pool is closed")

// MaxPoolSize caps the number of concurrent tabs
const MaxPoolSize = 10

// Tab wraps a chromedp context with its cancel function
type Tab struct {
	Ctx    context.Context
	Cancel context.CancelFunc
}

// PoolOptions configures the browser pool
type PoolOptions struct {
	Size       int
	Headless   bool
	UserAgent  string
	Proxy      string
	ChromePath string
	ExtraArgs  []chromedp.ExecAllocatorOption
}

// BrowserPool hands out Chrome tabs. Tabs are created lazily up to Size and
// reused after Release.
type BrowserPool struct {
	size        int
	idle        chan *Tab
	slots       chan struct{}
	allocCtx    context.Context
	allocCancel context.CancelFunc
	mu          sync.Mutex
	closed      bool
}

// NewBrowserPool creates the allocator shared by every tab. No browser is
// started until the first Acquire or Warm.
func NewBrowserPool(opts PoolOptions) *BrowserPool {
	if opts.Size <= 0 {
		opts.Size = 3
	}
	if opts.Size > MaxPoolSize {
		opts.Size = MaxPoolSize
	}

	allocOpts := allocatorOptions(opts)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)

	log.Debug().Int("size", opts.Size).Bool("headless", opts.Headless).Msg("Browser pool created")

	return &BrowserPool{
		size:        opts.Size,
		idle:        make(chan *Tab, opts.Size),
		slots:       make(chan struct{}, opts.Size),
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
	}
}

func allocatorOptions(opts PoolOptions) []chromedp.ExecAllocatorOption {
	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-breakpad", true),
		chromedp.Flag("disable-default-apps", true),
		chromedp.Flag("disable-hang-monitor", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("log-level", "3"),
		chromedp.Flag("mute-audio", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-infobars", true),
		chromedp.Flag("lang", "ko-KR"),
		chromedp.WindowSize(1920, 1080),
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}
	if path := FindChrome(opts.ChromePath); path != "" {
		allocOpts = append([]chromedp.ExecAllocatorOption{chromedp.ExecPath(path)}, allocOpts...)
	}
	if opts.Headless {
		allocOpts = append(allocOpts, chromedp.Flag("headless", "new"))
	} else {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if opts.Proxy != "" {
		allocOpts = append(allocOpts, chromedp.ProxyServer(opts.Proxy))
	}
	return append(allocOpts, opts.ExtraArgs...)
}

// Warm starts n tabs ahead of time so the first pages skip browser startup
func (bp *BrowserPool) Warm(ctx context.Context, n int) error {
	if n > bp.size {
		n = bp.size
	}
	tabs := make([]*Tab, 0, n)
	for i := 0; i < n; i++ {
		tab, err := bp.Acquire(ctx)
		if err != nil {
			for _, t := range tabs {
				bp.Release(t)
			}
			return fmt.Errorf("failed to warm up browser tab %d: %w", i, err)
		}
		tabs = append(tabs, tab)
	}
	for _, t := range tabs {
		bp.Release(t)
	}
	log.Info().Int("tabs", n).Msg("Browser pool warmed")
	return nil
}

// Acquire returns an idle tab, opens a new one while under Size, or waits
// for a Release until ctx is done.
func (bp *BrowserPool) Acquire(ctx context.Context) (*Tab, error) {
	if bp.isClosed() {
		return nil, ErrPoolClosed
	}

	select {
	case tab := <-bp.idle:
		return bp.checkout(tab)
	default:
	}

	select {
	case tab := <-bp.idle:
		return bp.checkout(tab)
	case bp.slots <- struct{}{}:
		tab, err := bp.open()
		if err != nil {
			<-bp.slots
			return nil, err
		}
		return bp.checkout(tab)
	case <-ctx.Done():
		return nil, fmt.Errorf("timeout waiting for available browser tab: %w", ctx.Err())
	}
}

func (bp *BrowserPool) open() (*Tab, error) {
	tabCtx, cancel := chromedp.NewContext(bp.allocCtx)
	if err := chromedp.Run(tabCtx, chromedp.Navigate("about:blank")); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to start browser tab: %w", err)
	}
	log.Debug().Msg("Browser tab opened")
	return &Tab{Ctx: tabCtx, Cancel: cancel}, nil
}

func (bp *BrowserPool) checkout(tab *Tab) (*Tab, error) {
	if bp.isClosed() {
		bp.discard(tab)
		return nil, ErrPoolClosed
	}
	log.Debug().Msg("Browser tab acquired from pool")
	return tab, nil
}

// Release returns a tab to the pool after resetting it to a blank page. A
// tab that cannot be reset is closed and its slot freed.
func (bp *BrowserPool) Release(tab *Tab) {
	if tab == nil {
		return
	}
	if bp.isClosed() {
		bp.discard(tab)
		return
	}

	resetCtx, cancel := context.WithTimeout(tab.Ctx, 5*time.Second)
	err := chromedp.Run(resetCtx, chromedp.Navigate("about:blank"))
	cancel()
	if err != nil {
		log.Debug().Err(err).Msg("Browser tab reset failed, discarding")
		bp.discard(tab)
		return
	}

	bp.mu.Lock()
	defer bp.mu.Unlock()
	if bp.closed {
		tab.Cancel()
		return
	}
	select {
	case bp.idle <- tab:
		log.Debug().Msg("Browser tab released to pool")
	default:
		tab.Cancel()
		<-bp.slots
		log.Warn().Msg("Browser pool full, discarding tab")
	}
}

func (bp *BrowserPool) discard(tab *Tab) {
	tab.Cancel()
	select {
	case <-bp.slots:
	default:
	}
}

func (bp *BrowserPool) isClosed() bool {
	bp.mu.Lock()
	defer bp.mu.Unlock()
	return bp.closed
}

// Close shuts down all idle tabs and the browser process
func (bp *BrowserPool) Close() error {
	bp.mu.Lock()
	if bp.closed {
		bp.mu.Unlock()
		return nil
	}
	bp.closed = true
	for {
		select {
		case tab := <-bp.idle:
			tab.Cancel()
			continue
		default:
		}
		break
	}
	bp.mu.Unlock()

	bp.allocCancel()
	log.Info().Msg("Browser pool closed")
	return nil
}

// Size returns the pool size
func (bp *BrowserPool) Size() int {
	return bp.size
}

// Available returns the number of idle tabs
func (bp *BrowserPool) Available() int {
	return len(bp.idle)
}
