package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Driver values accepted in a site profile.
const (
	DriverStatic   = "static"
	DriverRendered = "rendered"
)

// Config is the root of the YAML scraper configuration.
type Config struct {
	Sites   map[string]SiteConfig `yaml:"sites"`
	Filters FilterConfig          `yaml:"filters"`
}

// SiteConfig is one retailer's profile: fetch strategy, throttling,
// structural selectors and the category landing URLs.
type SiteConfig struct {
	// Driver selects the primary fetch strategy ("static" or "rendered").
	// Static fetches still escalate to the rendered driver once when the
	// response looks blocked.
	Driver               string  `yaml:"driver"`
	ThrottleSeconds      float64 `yaml:"throttle_seconds"`
	RenderTimeoutSeconds float64 `yaml:"render_timeout_seconds"`
	// WaitSelector, when set, is the element the rendered driver waits
	// for before taking the page content.
	WaitSelector string            `yaml:"wait_selector"`
	UserAgent    string            `yaml:"user_agent"`
	Pagination   PaginationConfig  `yaml:"pagination"`
	Selectors    Selectors         `yaml:"selectors"`
	Categories   map[string]string `yaml:"categories"`
}

// PaginationConfig describes how listing pages beyond the first are
// addressed.
type PaginationConfig struct {
	Param string `yaml:"param"`
	// StartPage is a pointer so an explicit 0 (zero-indexed sites) is
	// distinguishable from the key being absent.
	StartPage *int `yaml:"start_page"`
	MaxPages  int  `yaml:"max_pages"`
}

// Selectors holds the CSS selectors used to locate product fields within
// a listing page. ProductCard is required; the rest are optional and
// extraction degrades gracefully when they are missing.
type Selectors struct {
	ProductCard  string `yaml:"product_card"`
	Name         string `yaml:"name"`
	Price        string `yaml:"price"`
	Brand        string `yaml:"brand"`
	URL          string `yaml:"url"`
	Image        string `yaml:"image"`
	Availability string `yaml:"availability"`
}

// FilterConfig controls post-normalization record filtering.
type FilterConfig struct {
	// RequirePrice drops records whose price text did not parse.
	// Defaults to true when omitted.
	RequirePrice *bool `yaml:"require_price"`
}

// Throttle returns the minimum delay between two fetches against the site.
func (s SiteConfig) Throttle() time.Duration {
	if s.ThrottleSeconds <= 0 {
		return 500 * time.Millisecond
	}
	return time.Duration(s.ThrottleSeconds * float64(time.Second))
}

// RenderTimeout returns the deadline for a single rendered page fetch.
func (s SiteConfig) RenderTimeout() time.Duration {
	if s.RenderTimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(s.RenderTimeoutSeconds * float64(time.Second))
}

// Start returns the first page number used with the pagination param.
// Unset defaults to 1; an explicit 0 configures a zero-indexed site.
func (p PaginationConfig) Start() int {
	if p.StartPage == nil {
		return 1
	}
	return *p.StartPage
}

// Max returns the page-count ceiling guarding against runaway pagination.
func (p PaginationConfig) Max() int {
	if p.MaxPages <= 0 {
		return 10
	}
	return p.MaxPages
}

// RequirePriceEnabled reports whether unpriced records should be dropped.
func (f FilterConfig) RequirePriceEnabled() bool {
	if f.RequirePrice == nil {
		return true
	}
	return *f.RequirePrice
}

// LoadConfig loads and validates the scraper configuration from a YAML file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Sites) == 0 {
		return fmt.Errorf("config has no sites")
	}
	for key, site := range c.Sites {
		switch site.Driver {
		case "", DriverStatic, DriverRendered:
		default:
			return fmt.Errorf("site %s: unknown driver %q", key, site.Driver)
		}
		if site.Selectors.ProductCard == "" {
			return fmt.Errorf("site %s: selectors.product_card is required", key)
		}
		if len(site.Categories) == 0 {
			return fmt.Errorf("site %s: no categories configured", key)
		}
	}
	return nil
}
