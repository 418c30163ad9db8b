package scraper

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/saitej13sai/donizo-material-scraper/config"
	"github.com/saitej13sai/donizo-material-scraper/fetcher"
	"github.com/saitej13sai/donizo-material-scraper/filter"
	"github.com/saitej13sai/donizo-material-scraper/models"
	"github.com/saitej13sai/donizo-material-scraper/parser"
)

// DefaultLimitPerCategory caps how many records one (site, category)
// pair contributes when the caller does not say otherwise.
const DefaultLimitPerCategory = 200

// Options selects what a run covers. Empty slices mean "everything
// configured".
type Options struct {
	Sites            []string
	Categories       []string
	LimitPerCategory int
}

// Runner executes the sites × categories cross product sequentially and
// aggregates the results. The fetcher and extractor factories exist so
// tests can inject fakes; production runs use the defaults wired by
// NewRunner.
type Runner struct {
	cfg          *config.Config
	browser      *fetcher.Browser
	newFetcher   func(site string, sc config.SiteConfig) fetcher.Fetcher
	newExtractor func(site string, sc config.SiteConfig) parser.Extractor
}

// NewRunner creates a Runner with one shared browser for all rendered
// fetches of the run.
func NewRunner(cfg *config.Config) *Runner {
	browser := fetcher.NewBrowser()
	return &Runner{
		cfg:     cfg,
		browser: browser,
		newFetcher: func(site string, sc config.SiteConfig) fetcher.Fetcher {
			return fetcher.ForSite(browser, sc)
		},
		newExtractor: func(site string, sc config.SiteConfig) parser.Extractor {
			return parser.ForSite(site, sc.Selectors)
		},
	}
}

// Close releases the shared browser, if one was launched.
func (r *Runner) Close() error {
	if r.browser == nil {
		return nil
	}
	return r.browser.Close()
}

// Run scrapes every selected (site, category) pair and returns the
// deduplicated record collection. A failing pair is logged and skipped;
// its partial records are kept. All records of one run share the same
// capture timestamp.
func (r *Runner) Run(ctx context.Context, opts Options) ([]models.Material, error) {
	limit := opts.LimitPerCategory
	if limit <= 0 {
		limit = DefaultLimitPerCategory
	}

	capturedAt := time.Now().UTC()
	flt := filter.New(r.cfg.Filters)

	var all []models.Material
	for _, site := range r.selectSites(opts.Sites) {
		siteCfg := r.cfg.Sites[site]
		ss := NewSiteScraper(site, siteCfg, r.newFetcher(site, siteCfg), r.newExtractor(site, siteCfg), flt)

		for _, category := range selectCategories(siteCfg, opts.Categories) {
			got, err := ss.ScrapeCategory(ctx, category, limit, capturedAt)
			if err != nil {
				log.Printf("[warn] %s/%s: scrape ended early with %d records: %v\n", site, category, len(got), err)
			} else {
				log.Printf("[info] %s/%s: %d records\n", site, category, len(got))
			}
			all = append(all, got...)

			if ctx.Err() != nil {
				return dedupe(all), ctx.Err()
			}
		}
	}

	return dedupe(all), nil
}

// selectSites returns the run's site keys in deterministic order.
func (r *Runner) selectSites(selection []string) []string {
	var sites []string
	if len(selection) == 0 {
		for key := range r.cfg.Sites {
			sites = append(sites, key)
		}
	} else {
		for _, key := range selection {
			if _, ok := r.cfg.Sites[key]; ok {
				sites = append(sites, key)
			} else {
				log.Printf("[warn] unknown site %q skipped\n", key)
			}
		}
	}
	sort.Strings(sites)
	return sites
}

func selectCategories(siteCfg config.SiteConfig, selection []string) []string {
	var categories []string
	if len(selection) == 0 {
		for key := range siteCfg.Categories {
			categories = append(categories, key)
		}
	} else {
		for _, key := range selection {
			if _, ok := siteCfg.Categories[key]; ok {
				categories = append(categories, key)
			}
		}
	}
	sort.Strings(categories)
	return categories
}

// dedupe collapses duplicate ids across the whole run. The first
// occurrence keeps its position, the last occurrence wins the slot:
// overlapping pagination most often re-yields the same item with fresher
// data on the later page.
func dedupe(materials []models.Material) []models.Material {
	seen := make(map[string]int, len(materials))
	out := make([]models.Material, 0, len(materials))
	for _, m := range materials {
		if idx, ok := seen[m.ID]; ok {
			out[idx] = m
			continue
		}
		seen[m.ID] = len(out)
		out = append(out, m)
	}
	return out
}
