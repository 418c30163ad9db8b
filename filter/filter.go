package filter

import (
	"github.com/saitej13sai/donizo-material-scraper/config"
	"github.com/saitej13sai/donizo-material-scraper/models"
)

// Filter applies the configured record policy to normalized materials.
type Filter struct {
	cfg config.FilterConfig
}

// New creates a Filter instance.
func New(cfg config.FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Keep reports whether a single record passes the policy. Records count
// against the per-category limit only when kept.
func (f *Filter) Keep(m models.Material) bool {
	if f.cfg.RequirePriceEnabled() && m.Price == nil {
		return false
	}
	return true
}
