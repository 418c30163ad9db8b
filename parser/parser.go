// Package parser locates product cards in listing-page HTML and pulls
// out their raw text fields. Cleaning and typing are deliberately left
// to the normalize package: what counts as noise differs per field, so
// extraction keeps whatever the markup carries.
package parser

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/saitej13sai/donizo-material-scraper/config"
)

// RawEntry is one product's unprocessed fields as they appear in markup.
// Empty strings mean the field was absent; only Name is mandatory for an
// entry to be produced at all.
type RawEntry struct {
	Name         string
	Brand        string
	PriceText    string
	URL          string
	ImageURL     string
	Availability string
}

// Extractor produces the raw product entries of one listing page.
// Zero entries is a valid outcome; it is the pagination stop signal,
// not an error.
type Extractor interface {
	Extract(htmlContent, baseURL string) ([]RawEntry, error)
}

// ForSite returns the extraction strategy for a retailer. Unknown sites
// get the generic selector-driven extractor.
func ForSite(site string, sel config.Selectors) Extractor {
	switch site {
	case "castorama":
		return &Castorama{entryExtractor{sel: sel, euroFallback: true}}
	case "leroymerlin":
		return &LeroyMerlin{entryExtractor{sel: sel, euroFallback: true}}
	case "manomano":
		return &ManoMano{entryExtractor{sel: sel, anchorName: true, euroFallback: true}}
	default:
		return &Generic{entryExtractor{sel: sel, euroFallback: true}}
	}
}

// Castorama extracts product cards from castorama.fr category pages,
// where cards are frequently bare anchors wrapped in list items.
type Castorama struct{ e entryExtractor }

func (c *Castorama) Extract(htmlContent, baseURL string) ([]RawEntry, error) {
	return c.e.extract(htmlContent, baseURL)
}

// LeroyMerlin extracts product cards from leroymerlin.fr category pages.
type LeroyMerlin struct{ e entryExtractor }

func (l *LeroyMerlin) Extract(htmlContent, baseURL string) ([]RawEntry, error) {
	return l.e.extract(htmlContent, baseURL)
}

// ManoMano extracts product cards from manomano.fr category pages. Cards
// there are anchors whose own text doubles as the product name when no
// title node is present.
type ManoMano struct{ e entryExtractor }

func (m *ManoMano) Extract(htmlContent, baseURL string) ([]RawEntry, error) {
	return m.e.extract(htmlContent, baseURL)
}

// Generic is the plain selector-driven extractor.
type Generic struct{ e entryExtractor }

func (g *Generic) Extract(htmlContent, baseURL string) ([]RawEntry, error) {
	return g.e.extract(htmlContent, baseURL)
}

// entryExtractor is the shared selector-driven extraction logic the
// per-site types configure.
type entryExtractor struct {
	sel config.Selectors
	// anchorName falls back to the card anchor's text for the name.
	anchorName bool
	// euroFallback scans the card for the first text node containing a
	// euro sign when the price selector matches nothing.
	euroFallback bool
}

func (e *entryExtractor) extract(htmlContent, baseURL string) ([]RawEntry, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML: %w", err)
	}

	base, err := url.Parse(baseURL)
	if err != nil {
		base = nil
	}

	var entries []RawEntry
	doc.Find(e.sel.ProductCard).Each(func(_ int, card *goquery.Selection) {
		if entry, ok := e.extractCard(card, base); ok {
			entries = append(entries, entry)
		}
	})
	return entries, nil
}

func (e *entryExtractor) extractCard(card *goquery.Selection, base *url.URL) (RawEntry, bool) {
	container := card
	href := ""

	if card.Is("a") {
		href = card.AttrOr("href", "")
		if parent := card.Closest("li, article, div"); parent.Length() > 0 {
			container = parent
		}
	} else if e.sel.URL != "" {
		href = container.Find(e.sel.URL).First().AttrOr("href", "")
	}

	var entry RawEntry
	entry.URL = resolveURL(base, href)

	if e.sel.Name != "" {
		entry.Name = cleanText(container.Find(e.sel.Name).First().Text())
	}
	if entry.Name == "" && (e.anchorName || card.Is("a")) {
		entry.Name = cleanText(card.Text())
	}
	if entry.Name == "" {
		return RawEntry{}, false
	}

	if e.sel.Brand != "" {
		entry.Brand = cleanText(container.Find(e.sel.Brand).First().Text())
	}

	if e.sel.Price != "" {
		entry.PriceText = cleanText(container.Find(e.sel.Price).First().Text())
	}
	if entry.PriceText == "" && e.euroFallback {
		entry.PriceText = firstEuroText(container)
	}

	if e.sel.Image != "" {
		img := container.Find(e.sel.Image).First()
		src := img.AttrOr("src", "")
		if src == "" {
			src = img.AttrOr("data-src", "")
		}
		if src != "" {
			entry.ImageURL = resolveURL(base, src)
		}
	}

	if e.sel.Availability != "" {
		entry.Availability = cleanText(container.Find(e.sel.Availability).First().Text())
	}

	return entry, true
}

// firstEuroText returns the first text node in the card mentioning a euro
// sign, falling back to the card's whole text. Mirrors scanning the
// card's stripped strings rather than grabbing a specific price node.
func firstEuroText(s *goquery.Selection) string {
	found := ""
	s.Find("*").EachWithBreak(func(_ int, n *goquery.Selection) bool {
		own := ownText(n)
		if strings.Contains(own, "€") {
			found = own
			return false
		}
		return true
	})
	if found == "" {
		if t := cleanText(s.Text()); strings.Contains(t, "€") {
			found = t
		}
	}
	return found
}

// ownText collects only the direct text children of a node, so a parent
// doesn't swallow the text of its whole subtree.
func ownText(s *goquery.Selection) string {
	var b strings.Builder
	s.Contents().Each(func(_ int, c *goquery.Selection) {
		if goquery.NodeName(c) == "#text" {
			b.WriteString(c.Text())
		}
	})
	return cleanText(b.String())
}

// cleanText trims and collapses whitespace runs. Promotional labels and
// other markup noise are kept on purpose.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// resolveURL makes href absolute against the page URL. An empty href
// resolves to the page URL itself, matching the source page as the
// fallback product link.
func resolveURL(base *url.URL, href string) string {
	if base == nil {
		return href
	}
	if href == "" {
		return base.String()
	}
	ref, err := url.Parse(href)
	if err != nil {
		return href
	}
	return base.ResolveReference(ref).String()
}
