// Package normalize turns raw extracted fields into typed Material
// records. Normalization never fails: a field that cannot be parsed
// degrades to null instead of dropping the record.
package normalize

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/saitej13sai/donizo-material-scraper/models"
	"github.com/saitej13sai/donizo-material-scraper/parser"
)

// priceRegexp matches the first monetary pattern in a noisy text block:
// a currency marker before or after an amount with comma or dot decimals.
var priceRegexp = regexp.MustCompile(
	`(?i)(?P<currency>€|EUR|£)\s*(?P<amount>\d+[.,]?\d*(?:[.,]\d{2})?)|(?P<amount2>\d+[.,]?\d*)\s*(?P<currency2>€|EUR|£)`,
)

// unitRegexp matches per-quantity suffixes like "/ m²" or "par kg". The
// trailing guard plays the role of a word boundary; \b is ASCII-only in
// RE2 and would reject "m²".
var unitRegexp = regexp.MustCompile(`(?i)(?:/|par)\s*(m2|m²|m3|ml|kg|pièce|unité|paquet|boîte|l|m)(?:[^\d\pL²³]|$)`)

// ParsePrice scans text for the first monetary pattern and returns the
// parsed price, or nil when no pattern matches. The Raw field holds the
// exact matched substring.
func ParsePrice(text string) *models.Price {
	if text == "" {
		return nil
	}
	t := strings.TrimSpace(strings.ReplaceAll(text, " ", " "))

	m := priceRegexp.FindStringSubmatch(t)
	if m == nil {
		return nil
	}

	currency := m[1]
	amount := m[2]
	if amount == "" {
		amount = m[3]
		currency = m[4]
	}

	amount = strings.ReplaceAll(amount, " ", "")
	amount = strings.ReplaceAll(amount, ",", ".")
	value, err := strconv.ParseFloat(amount, 64)
	if err != nil || value < 0 {
		return nil
	}

	// "EUR" and "eur" collapse to the symbol so downstream consumers see
	// one currency spelling.
	if currency != "" && (currency[0] == 'E' || currency[0] == 'e') {
		currency = "€"
	}

	return &models.Price{Value: value, Currency: currency, Raw: m[0]}
}

// ParseUnit returns the per-quantity unit found in text, or "".
func ParseUnit(text string) string {
	if text == "" {
		return ""
	}
	t := strings.ReplaceAll(text, " ", " ")
	m := unitRegexp.FindStringSubmatch(t)
	if m == nil {
		return ""
	}
	return m[1]
}

// StableID derives the record fingerprint from the site and a normalized
// form of the product URL. It is deterministic across runs and
// independent of extraction order, so re-scraping the same product
// yields the same id even when its promotional name text changed.
func StableID(site, rawURL string) string {
	sum := sha256.Sum256([]byte(site + "|" + identityURL(rawURL)))
	return hex.EncodeToString(sum[:])[:16]
}

// identityURL canonicalizes a product URL for fingerprinting: lowercase
// scheme/host, fragment dropped, query re-encoded in sorted key order,
// trailing slash trimmed.
func identityURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Fragment = ""
	u.RawQuery = u.Query().Encode()
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// Record builds a Material from one raw entry. capturedAt is the run's
// batch time: every record of one invocation carries the same timestamp.
func Record(entry parser.RawEntry, site, category string, capturedAt time.Time) models.Material {
	price := ParsePrice(entry.PriceText)
	if price == nil {
		price = ParsePrice(entry.Name)
	}

	unit := ParseUnit(entry.PriceText)
	if unit == "" {
		unit = ParseUnit(entry.Name)
	}

	return models.Material{
		ID:           StableID(site, entry.URL),
		Site:         site,
		Category:     category,
		Name:         entry.Name,
		Brand:        optional(entry.Brand),
		Price:        price,
		Unit:         optional(unit),
		URL:          entry.URL,
		ImageURL:     optional(entry.ImageURL),
		Availability: optional(entry.Availability),
		ScrapedAt:    capturedAt.UTC().Format(time.RFC3339),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
