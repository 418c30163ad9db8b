package fetcher

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"golang.org/x/time/rate"

	"github.com/saitej13sai/donizo-material-scraper/config"
)

// Browser owns one headless Chrome instance shared by all rendered
// fetches of a run. Launch is deferred to the first rendered fetch so
// runs that never escalate past static fetching stay browser-free.
type Browser struct {
	mu       sync.Mutex
	browser  *rod.Browser
	launched bool
	err      error
}

// NewBrowser creates an unlaunched browser handle.
func NewBrowser() *Browser {
	return &Browser{}
}

func (b *Browser) get() (*rod.Browser, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.launched {
		return b.browser, b.err
	}
	b.launched = true
	b.browser, b.err = launchBrowser()
	return b.browser, b.err
}

// Close shuts down the browser process if it was launched.
func (b *Browser) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.browser == nil {
		return nil
	}
	err := b.browser.Close()
	b.browser = nil
	return err
}

func launchBrowser() (*rod.Browser, error) {
	l := launcher.New().
		Headless(true).
		NoSandbox(true).
		Leakless(false).
		Set("disable-blink-features", "AutomationControlled").
		Set("disable-dev-shm-usage").
		Set("disable-gpu").
		Set("no-first-run").
		Set("no-default-browser-check").
		Set("disable-extensions").
		Set("mute-audio")

	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		l = l.Bin(bin)
	}

	controlURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("failed to launch browser: %w", err)
	}

	browser := rod.New().ControlURL(controlURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("failed to connect to browser: %w", err)
	}
	return browser, nil
}

// RodFetcher implements the rendered-browser strategy. It borrows the
// shared Browser, opens a fresh tab per fetch and waits for a stable DOM
// before taking the page content.
type RodFetcher struct {
	shared       *Browser
	waitSelector string
	timeout      time.Duration
	limiter      *rate.Limiter
}

// NewRodFetcher creates a rendered fetcher for one site profile.
func NewRodFetcher(shared *Browser, site config.SiteConfig) *RodFetcher {
	waitSel := site.WaitSelector
	if waitSel == "" {
		waitSel = site.Selectors.ProductCard
	}
	return &RodFetcher{
		shared:       shared,
		waitSelector: waitSel,
		timeout:      site.RenderTimeout(),
		limiter:      rate.NewLimiter(rate.Every(site.Throttle()), 1),
	}
}

// Fetch implements the Fetcher interface.
func (rf *RodFetcher) Fetch(ctx context.Context, pageURL string) (*Page, error) {
	if err := rf.limiter.Wait(ctx); err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}

	browser, err := rf.shared.get()
	if err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}

	ctx, cancel := context.WithTimeout(ctx, rf.timeout)
	defer cancel()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}
	defer page.Close()

	page = page.Context(ctx)

	// Stealth must be installed before navigation to take effect.
	if _, err := page.EvalOnNewDocument(stealth.JS); err != nil {
		log.Printf("[warn] stealth injection failed, continuing without: %v\n", err)
	}

	if err := page.Navigate(pageURL); err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}
	if err := page.WaitLoad(); err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}

	// Best effort: the card selector showing up means listings rendered.
	// A miss is not fatal; the extractor decides whether the page is empty.
	if rf.waitSelector != "" {
		if _, err := page.Timeout(10 * time.Second).Element(rf.waitSelector); err != nil {
			log.Printf("[warn] wait selector %q not found on %s\n", rf.waitSelector, pageURL)
		}
	}
	if err := page.Timeout(10 * time.Second).WaitStable(time.Second); err != nil {
		log.Printf("[warn] page did not stabilize for %s: %v\n", pageURL, err)
	}

	html, err := page.HTML()
	if err != nil {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: err}
	}

	finalURL := pageURL
	if info, err := page.Info(); err == nil && info.URL != "" {
		finalURL = info.URL
	}

	if looksBlocked(html) {
		return nil, &Error{URL: pageURL, Strategy: StrategyRendered, Err: ErrBlocked}
	}

	return &Page{HTML: html, Strategy: StrategyRendered, FinalURL: finalURL}, nil
}
