package scraper

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/saitej13sai/donizo-material-scraper/config"
	"github.com/saitej13sai/donizo-material-scraper/fetcher"
	"github.com/saitej13sai/donizo-material-scraper/filter"
	"github.com/saitej13sai/donizo-material-scraper/models"
	"github.com/saitej13sai/donizo-material-scraper/normalize"
	"github.com/saitej13sai/donizo-material-scraper/parser"
)

// SiteScraper drives one retailer's fetch → extract → normalize pipeline
// across a category's listing pages.
type SiteScraper struct {
	site      string
	cfg       config.SiteConfig
	fetcher   fetcher.Fetcher
	extractor parser.Extractor
	filter    *filter.Filter
}

// NewSiteScraper wires a site profile to its fetcher and extractor.
func NewSiteScraper(site string, cfg config.SiteConfig, f fetcher.Fetcher, ex parser.Extractor, flt *filter.Filter) *SiteScraper {
	return &SiteScraper{site: site, cfg: cfg, fetcher: f, extractor: ex, filter: flt}
}

// ScrapeCategory walks a category's pages until one of the termination
// conditions hits: a page with zero extractable entries, the record
// limit, or the configured page ceiling.
//
// Page 1 is requested via the unparameterized category URL first; sites
// whose first page is unpaged return entries there directly. When that
// response is empty, page 1 is retried once in its explicit ?page=N form
// before the category is concluded empty.
//
// A fetch failure ends the category only. The records gathered so far
// are returned together with the error so the caller can keep partial
// results.
func (s *SiteScraper) ScrapeCategory(ctx context.Context, category string, limit int, capturedAt time.Time) ([]models.Material, error) {
	baseURL, ok := s.cfg.Categories[category]
	if !ok {
		return nil, fmt.Errorf("site %s has no category %s", s.site, category)
	}

	param := s.cfg.Pagination.Param
	startPage := s.cfg.Pagination.Start()
	maxPages := s.cfg.Pagination.Max()

	var items []models.Material

	for n := 0; n < maxPages; n++ {
		target := baseURL
		if n > 0 {
			if param == "" {
				// No pagination configured: single-page category.
				break
			}
			var err error
			target, err = pageURL(baseURL, param, startPage+n)
			if err != nil {
				return items, err
			}
		}

		entries, err := s.fetchEntries(ctx, target)
		if err != nil {
			return items, err
		}

		if len(entries) == 0 && n == 0 && param != "" {
			// Unpaged first page came back empty. Retry with the
			// explicit paginated form before giving up on the category.
			retryURL, urlErr := pageURL(baseURL, param, startPage)
			if urlErr != nil {
				return items, urlErr
			}
			log.Printf("[info] %s/%s: no entries on base URL, retrying %s\n", s.site, category, retryURL)
			entries, err = s.fetchEntries(ctx, retryURL)
			if err != nil {
				return items, err
			}
		}

		if len(entries) == 0 {
			break
		}

		for _, entry := range entries {
			record := normalize.Record(entry, s.site, category, capturedAt)
			if s.filter != nil && !s.filter.Keep(record) {
				continue
			}
			items = append(items, record)
			if limit > 0 && len(items) >= limit {
				return items, nil
			}
		}
	}

	return items, nil
}

func (s *SiteScraper) fetchEntries(ctx context.Context, target string) ([]parser.RawEntry, error) {
	page, err := s.fetcher.Fetch(ctx, target)
	if err != nil {
		return nil, err
	}
	return s.extractor.Extract(page.HTML, page.FinalURL)
}
