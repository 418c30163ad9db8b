package models

import "strings"

// Price holds the parsed price of a material together with the raw text
// it was parsed from. A nil *Price on Material means no monetary pattern
// was found in the source markup.
type Price struct {
	Value    float64 `json:"value"`
	Currency string  `json:"currency"`
	Raw      string  `json:"raw"`
}

// Material represents one normalized product record scraped from a
// retailer listing page. The JSON field names are the output contract
// consumed by the pricing pipeline, do not rename them.
type Material struct {
	ID           string  `json:"id"`
	Site         string  `json:"site"`
	Category     string  `json:"category"`
	Name         string  `json:"name"`
	Brand        *string `json:"brand"`
	Price        *Price  `json:"price"`
	Unit         *string `json:"unit"`
	URL          string  `json:"url"`
	ImageURL     *string `json:"image_url"`
	Availability *string `json:"availability"`
	ScrapedAt    string  `json:"scraped_at"`
}

// VectorDoc is the flattened form of a Material used for vector-index
// ingestion (one JSONL line per record).
type VectorDoc struct {
	ID   string     `json:"id"`
	Text string     `json:"text"`
	Meta VectorMeta `json:"meta"`
}

// VectorMeta carries the filterable fields alongside the embedding text.
type VectorMeta struct {
	Site       string   `json:"site"`
	Category   string   `json:"category"`
	Brand      *string  `json:"brand"`
	PriceValue *float64 `json:"price_value"`
	Currency   *string  `json:"currency"`
	URL        string   `json:"url"`
}

// ToVectorDoc flattens a Material into a VectorDoc. The text field is a
// pipe-joined concatenation of the non-empty descriptive fields, in the
// same order the search index expects.
func (m Material) ToVectorDoc() VectorDoc {
	parts := []string{m.Site, m.Category}
	if m.Brand != nil {
		parts = append(parts, *m.Brand)
	}
	parts = append(parts, m.Name)
	if m.Price != nil {
		parts = append(parts, m.Price.Raw)
	}
	if m.Unit != nil {
		parts = append(parts, *m.Unit)
	}
	parts = append(parts, m.URL)

	nonEmpty := parts[:0]
	for _, p := range parts {
		if p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}

	meta := VectorMeta{
		Site:     m.Site,
		Category: m.Category,
		Brand:    m.Brand,
		URL:      m.URL,
	}
	if m.Price != nil {
		v := m.Price.Value
		c := m.Price.Currency
		meta.PriceValue = &v
		meta.Currency = &c
	}

	return VectorDoc{
		ID:   m.ID,
		Text: strings.Join(nonEmpty, " | "),
		Meta: meta,
	}
}
