package auth

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/chromedp"
	"github.com/law-makers/goodscrawl/internal/browser"
	"github.com/rs/zerolog/log"
)

// LoginOptions configures the interactive login behavior
type LoginOptions struct {
	// SessionName is the name to save the session as, usually the site name
	SessionName string
	// URL to navigate to for login
	URL string
	// WaitSelector is the CSS selector that appears once logged in. Without
	// one the user confirms on Prompt.
	WaitSelector string
	Timeout      time.Duration
	Headers      map[string]string
	ChromePath   string
	UserAgent    string
	// Prompt receives instructions; Confirm is read for the Enter key
	Prompt  io.Writer
	Confirm io.Reader
}

// InteractiveLogin opens a visible browser on the login page and captures its
// cookies once the user has signed in.
func InteractiveLogin(ctx context.Context, opts LoginOptions) (*SessionData, error) {
	if opts.SessionName == "" {
		return nil, fmt.Errorf("session name is required")
	}
	if opts.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 5 * time.Minute
	}
	if opts.Prompt == nil {
		opts.Prompt = io.Discard
	}

	log.Info().
		Str("session", opts.SessionName).
		Str("url", opts.URL).
		Msg("Starting interactive login")

	ctx, cancel := context.WithTimeout(ctx, opts.Timeout)
	defer cancel()

	allocOpts := []chromedp.ExecAllocatorOption{
		chromedp.NoFirstRun,
		chromedp.NoDefaultBrowserCheck,
		chromedp.Flag("headless", false),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("log-level", "3"),
		chromedp.WindowSize(1280, 900),
	}
	if path := browser.FindChrome(opts.ChromePath); path != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(path))
	}
	if opts.UserAgent != "" {
		allocOpts = append(allocOpts, chromedp.UserAgent(opts.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(ctx, allocOpts...)
	defer allocCancel()
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	defer browserCancel()

	fmt.Fprintln(opts.Prompt, "Browser opened. Complete the login in the browser window.")
	if err := chromedp.Run(browserCtx, network.Enable(), chromedp.Navigate(opts.URL)); err != nil {
		return nil, fmt.Errorf("failed to navigate: %w", err)
	}

	if opts.WaitSelector != "" {
		fmt.Fprintf(opts.Prompt, "Waiting for element: %s\n", opts.WaitSelector)
		if err := chromedp.Run(browserCtx, chromedp.WaitVisible(opts.WaitSelector, chromedp.ByQuery)); err != nil {
			return nil, fmt.Errorf("login timeout or failed: %w", err)
		}
	} else {
		fmt.Fprintln(opts.Prompt, "Press Enter once you have completed login...")
		if err := waitEnter(ctx, opts.Confirm); err != nil {
			return nil, err
		}
	}

	var cookies []*network.Cookie
	err := chromedp.Run(browserCtx, chromedp.ActionFunc(func(ctx context.Context) error {
		var err error
		cookies, err = network.GetCookies().Do(ctx)
		return err
	}))
	if err != nil {
		return nil, fmt.Errorf("failed to extract cookies: %w", err)
	}
	if len(cookies) == 0 {
		return nil, fmt.Errorf("no cookies found - login may have failed")
	}

	log.Info().Int("cookie_count", len(cookies)).Msg("Cookies extracted")
	return NewSession(opts.SessionName, opts.URL, cookies, opts.Headers, time.Now()), nil
}

// NewSession builds a session from browser cookies. The session expires with
// its longest-lived cookie; session-only cookies leave it open-ended.
func NewSession(name, url string, cookies []*network.Cookie, headers map[string]string, now time.Time) *SessionData {
	session := &SessionData{
		Name:      name,
		URL:       url,
		Cookies:   make([]Cookie, len(cookies)),
		Headers:   headers,
		CreatedAt: now,
	}
	maxExpires := 0.0
	for i, c := range cookies {
		session.Cookies[i] = Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Expires:  c.Expires,
			HTTPOnly: c.HTTPOnly,
			Secure:   c.Secure,
			SameSite: string(c.SameSite),
		}
		maxExpires = max(maxExpires, c.Expires)
	}
	if maxExpires > 0 {
		session.ExpiresAt = time.Unix(int64(maxExpires), 0)
	}
	return session
}

func waitEnter(ctx context.Context, r io.Reader) error {
	if r == nil {
		<-ctx.Done()
		return fmt.Errorf("login aborted: %w", ctx.Err())
	}
	done := make(chan error, 1)
	go func() {
		_, err := bufio.NewReader(r).ReadString('\n')
		done <- err
	}()
	select {
	case err := <-done:
		if err != nil && err != io.EOF {
			return fmt.Errorf("failed to read confirmation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("login aborted: %w", ctx.Err())
	}
}
