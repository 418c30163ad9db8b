package fetcher

import (
	"context"
	"errors"
	"log"

	"github.com/saitej13sai/donizo-material-scraper/config"
)

// FallbackFetcher tries the primary strategy first and escalates exactly
// once to the rendered strategy when the primary response indicates
// blocking. The escalation never cascades back: a rendered failure is
// final.
type FallbackFetcher struct {
	primary  Fetcher
	rendered Fetcher
}

// NewFallbackFetcher wraps a primary fetcher with a rendered escalation.
func NewFallbackFetcher(primary, rendered Fetcher) *FallbackFetcher {
	return &FallbackFetcher{primary: primary, rendered: rendered}
}

// Fetch implements the Fetcher interface.
func (f *FallbackFetcher) Fetch(ctx context.Context, url string) (*Page, error) {
	page, err := f.primary.Fetch(ctx, url)
	if err == nil {
		return page, nil
	}
	if !errors.Is(err, ErrBlocked) {
		return nil, err
	}

	log.Printf("[warn] static fetch blocked for %s, escalating to rendered\n", url)
	return f.rendered.Fetch(ctx, url)
}

// ForSite builds the fetcher matching a site profile: rendered-primary
// sites go straight to the browser, static sites get the one-shot
// rendered fallback.
func ForSite(shared *Browser, site config.SiteConfig) Fetcher {
	rendered := NewRodFetcher(shared, site)
	if site.Driver == config.DriverRendered {
		return rendered
	}
	return NewFallbackFetcher(NewCollyFetcher(site), rendered)
}
