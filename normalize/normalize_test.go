package normalize

import (
	"testing"
	"time"

	"github.com/saitej13sai/donizo-material-scraper/parser"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		text     string
		value    float64
		currency string
		raw      string
	}{
		{"comma decimals suffix symbol", "34,95 €", 34.95, "€", "34,95 €"},
		{"dot decimals no space", "Prix: 8.99€ / M2", 8.99, "€", "8.99€"},
		{"symbol before amount", "€ 120", 120, "€", "€ 120"},
		{"eur word collapses to symbol", "EUR 25", 25, "€", "EUR 25"},
		{"pound", "£12.50", 12.50, "£", "£12.50"},
		{"non breaking space", "19,90 € / m²", 19.90, "€", "19,90 €"},
		{"first match wins", "Avant 49,99 € maintenant 39,99 €", 49.99, "€", "49,99 €"},
		{"noise around", "PromotionCarrelage sol gris 34,95 €/ M2 Entrepôt", 34.95, "€", "34,95 €"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := ParsePrice(tt.text)
			if p == nil {
				t.Fatalf("ParsePrice(%q) = nil, want value %v", tt.text, tt.value)
			}
			if p.Value != tt.value {
				t.Errorf("value = %v, want %v", p.Value, tt.value)
			}
			if p.Currency != tt.currency {
				t.Errorf("currency = %q, want %q", p.Currency, tt.currency)
			}
			if p.Raw != tt.raw {
				t.Errorf("raw = %q, want %q", p.Raw, tt.raw)
			}
		})
	}
}

func TestParsePriceNoMatch(t *testing.T) {
	for _, text := range []string{"", "Livraison gratuite", "Carrelage sol gris 60x60", "ref 5059340460307"} {
		if p := ParsePrice(text); p != nil {
			t.Errorf("ParsePrice(%q) = %+v, want nil", text, p)
		}
	}
}

func TestParseUnit(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"19,90 € / m²", "m²"},
		{"Prix: 8.99€ / M2", "M2"},
		{"12,00 € par pièce", "pièce"},
		{"3,49 € / L", "L"},
		{"5,99 € / kg promo", "kg"},
		{"9,90 € le paquet", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ParseUnit(tt.text); got != tt.want {
			t.Errorf("ParseUnit(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestStableID(t *testing.T) {
	site := "castorama"
	u := "https://www.castorama.fr/carrelage-sol/5059340460307_CAFR.prd"

	a := StableID(site, u)
	b := StableID(site, u)
	if a != b {
		t.Fatalf("StableID not deterministic: %q vs %q", a, b)
	}
	if len(a) != 16 {
		t.Fatalf("StableID length = %d, want 16", len(a))
	}

	if StableID("leroymerlin", u) == a {
		t.Error("different sites must yield different ids")
	}
	if StableID(site, u+"?utm=1") == a {
		t.Error("different query must yield a different id")
	}
}

func TestStableIDNormalizesURL(t *testing.T) {
	base := StableID("castorama", "https://www.castorama.fr/produit/p1?b=2&a=1")
	variants := []string{
		"HTTPS://WWW.CASTORAMA.FR/produit/p1?b=2&a=1",
		"https://www.castorama.fr/produit/p1?a=1&b=2",
		"https://www.castorama.fr/produit/p1/?b=2&a=1",
		"https://www.castorama.fr/produit/p1?b=2&a=1#reviews",
	}
	for _, v := range variants {
		if got := StableID("castorama", v); got != base {
			t.Errorf("StableID(%q) = %q, want %q", v, got, base)
		}
	}
}

func TestRecordPriceFallsBackToName(t *testing.T) {
	capturedAt := time.Date(2026, 3, 1, 10, 30, 0, 0, time.UTC)
	entry := parser.RawEntry{
		Name: "PromotionCarrelage sol et mur gris clair 34,95 €/ M2 Entrepôt du bricolage",
		URL:  "https://www.castorama.fr/carrelage/5059340460307_CAFR.prd",
	}

	m := Record(entry, "castorama", "tiles", capturedAt)

	if m.Price == nil {
		t.Fatal("price not recovered from name text")
	}
	if m.Price.Value != 34.95 || m.Price.Currency != "€" {
		t.Errorf("price = %+v, want 34.95 €", *m.Price)
	}
	if m.Unit == nil || *m.Unit != "M2" {
		t.Errorf("unit = %v, want M2", m.Unit)
	}
	if m.ID != StableID("castorama", entry.URL) {
		t.Errorf("id = %q does not match the site+url fingerprint", m.ID)
	}
	if m.ScrapedAt != "2026-03-01T10:30:00Z" {
		t.Errorf("scraped_at = %q, want 2026-03-01T10:30:00Z", m.ScrapedAt)
	}
}

func TestRecordNullSafety(t *testing.T) {
	entry := parser.RawEntry{
		Name: "Echantillon carrelage gris",
		URL:  "https://www.castorama.fr/echantillon.prd",
	}

	m := Record(entry, "castorama", "tiles", time.Now())

	if m.Price != nil {
		t.Errorf("price = %+v, want nil", *m.Price)
	}
	if m.Unit != nil || m.Brand != nil || m.ImageURL != nil || m.Availability != nil {
		t.Error("missing optional fields must stay nil")
	}
	if m.Name != entry.Name || m.URL != entry.URL {
		t.Error("identity fields must be carried through")
	}
}

func TestRecordBatchTimestamp(t *testing.T) {
	capturedAt := time.Date(2026, 3, 1, 9, 0, 0, 0, time.FixedZone("CET", 3600))
	a := Record(parser.RawEntry{Name: "A 1 €", URL: "https://x.fr/a"}, "castorama", "tiles", capturedAt)
	b := Record(parser.RawEntry{Name: "B 2 €", URL: "https://x.fr/b"}, "castorama", "paint", capturedAt)

	if a.ScrapedAt != b.ScrapedAt {
		t.Errorf("records of one run differ: %q vs %q", a.ScrapedAt, b.ScrapedAt)
	}
	if a.ScrapedAt != "2026-03-01T08:00:00Z" {
		t.Errorf("scraped_at = %q, want UTC RFC 3339", a.ScrapedAt)
	}
}
