package platform

import (
	"context"
	"time"

	"github.com/playwright-community/playwright-go"
	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"
)

const (
	gotoTimeoutMs  = 60_000
	responseWaitMs = 20_000
	settleDelayMs  = 1_200
	navInterval    = 1500 * time.Millisecond
)

// Browser wraps a single shared Chromium process. Both platform sessions
// are created from it so only one browser runs per crawl.
type Browser struct {
	pw      *playwright.Playwright
	browser playwright.Browser
}

// Launch starts Playwright and a Chromium instance with automation
// markers disabled.
func Launch(headless bool) (*Browser, error) {
	pw, err := playwright.Run()
	if err != nil {
		return nil, eris.Wrap(err, "platform: start playwright")
	}

	browser, err := pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(headless),
		Args:     []string{"--disable-blink-features=AutomationControlled"},
	})
	if err != nil {
		_ = pw.Stop()
		return nil, eris.Wrap(err, "platform: launch chromium")
	}

	return &Browser{pw: pw, browser: browser}, nil
}

// Close shuts the browser and the Playwright driver down. Safe to call on
// a nil or partially-initialized Browser.
func (b *Browser) Close() {
	if b == nil {
		return
	}
	if b.browser != nil {
		_ = b.browser.Close()
	}
	if b.pw != nil {
		_ = b.pw.Stop()
	}
}

// SessionOptions configures an isolated browsing context for one platform.
type SessionOptions struct {
	StorageStatePath string
	Locale           string
	TimezoneID       string
	UserAgent        string
	Viewport         *playwright.Size
	InitScript       string
}

// Session is one platform's isolated browsing context with a single page
// reused serially across keywords. Navigations are paced by a rate
// limiter to avoid hammering one external surface.
type Session struct {
	context playwright.BrowserContext
	page    playwright.Page
	limiter *rate.Limiter
}

// NewSession opens an isolated context (cookies and storage do not cross
// platforms) and a single page.
func (b *Browser) NewSession(opts SessionOptions) (*Session, error) {
	ctxOpts := playwright.BrowserNewContextOptions{}
	if opts.StorageStatePath != "" {
		ctxOpts.StorageStatePath = playwright.String(opts.StorageStatePath)
	}
	if opts.Locale != "" {
		ctxOpts.Locale = playwright.String(opts.Locale)
	}
	if opts.TimezoneID != "" {
		ctxOpts.TimezoneId = playwright.String(opts.TimezoneID)
	}
	if opts.UserAgent != "" {
		ctxOpts.UserAgent = playwright.String(opts.UserAgent)
	}
	if opts.Viewport != nil {
		ctxOpts.Viewport = opts.Viewport
	}

	bc, err := b.browser.NewContext(ctxOpts)
	if err != nil {
		return nil, eris.Wrap(err, "platform: new browser context")
	}

	if opts.InitScript != "" {
		if err := bc.AddInitScript(playwright.Script{Content: playwright.String(opts.InitScript)}); err != nil {
			_ = bc.Close()
			return nil, eris.Wrap(err, "platform: add init script")
		}
	}

	page, err := bc.NewPage()
	if err != nil {
		_ = bc.Close()
		return nil, eris.Wrap(err, "platform: new page")
	}

	return &Session{
		context: bc,
		page:    page,
		limiter: rate.NewLimiter(rate.Every(navInterval), 1),
	}, nil
}

// Goto navigates the session page with a bounded timeout and a short
// settle delay for client-side rendering.
func (s *Session) Goto(ctx context.Context, url string) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	_, err := s.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(gotoTimeoutMs),
	})
	if err != nil {
		return eris.Wrapf(err, "platform: goto %s", url)
	}
	s.page.WaitForTimeout(settleDelayMs)
	return nil
}

// Close closes the page and its context. Safe on nil.
func (s *Session) Close() {
	if s == nil {
		return
	}
	if s.page != nil {
		_ = s.page.Close()
	}
	if s.context != nil {
		_ = s.context.Close()
	}
}
