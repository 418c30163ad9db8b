package models

import (
	"encoding/json"
	"strings"
	"testing"
)

func strPtr(s string) *string { return &s }

func TestToVectorDoc(t *testing.T) {
	m := Material{
		ID:       "abc123",
		Site:     "castorama",
		Category: "tiles",
		Name:     "Carrelage sol gris 60x60",
		Brand:    strPtr("GoodHome"),
		Price:    &Price{Value: 34.95, Currency: "€", Raw: "34,95 €"},
		Unit:     strPtr("m²"),
		URL:      "https://www.castorama.fr/p.prd",
	}

	doc := m.ToVectorDoc()

	if doc.ID != m.ID {
		t.Errorf("id = %q", doc.ID)
	}
	want := "castorama | tiles | GoodHome | Carrelage sol gris 60x60 | 34,95 € | m² | https://www.castorama.fr/p.prd"
	if doc.Text != want {
		t.Errorf("text = %q, want %q", doc.Text, want)
	}
	if doc.Meta.PriceValue == nil || *doc.Meta.PriceValue != 34.95 {
		t.Errorf("meta price = %v", doc.Meta.PriceValue)
	}
	if doc.Meta.Currency == nil || *doc.Meta.Currency != "€" {
		t.Errorf("meta currency = %v", doc.Meta.Currency)
	}
}

func TestToVectorDocSkipsMissingFields(t *testing.T) {
	m := Material{
		ID:       "abc123",
		Site:     "manomano",
		Category: "tiles",
		Name:     "Plinthe MDF",
		URL:      "https://www.manomano.fr/p/1",
	}

	doc := m.ToVectorDoc()

	if strings.Contains(doc.Text, "||") || strings.Contains(doc.Text, "|  |") {
		t.Errorf("empty fields leaked into text: %q", doc.Text)
	}
	if doc.Text != "manomano | tiles | Plinthe MDF | https://www.manomano.fr/p/1" {
		t.Errorf("text = %q", doc.Text)
	}
	if doc.Meta.PriceValue != nil || doc.Meta.Currency != nil || doc.Meta.Brand != nil {
		t.Error("missing fields must stay null in meta")
	}
}

func TestMaterialJSONContract(t *testing.T) {
	m := Material{
		ID:        "abc123",
		Site:      "castorama",
		Category:  "tiles",
		Name:      "Carrelage",
		URL:       "https://www.castorama.fr/p.prd",
		ScrapedAt: "2026-03-01T10:30:00Z",
	}

	data, err := json.Marshal(m)
	if err != nil {
		t.Fatal(err)
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"id", "site", "category", "name", "brand", "price", "unit", "url", "image_url", "availability", "scraped_at"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("output field %q missing", key)
		}
	}
	if string(raw["price"]) != "null" {
		t.Errorf("absent price = %s, want null", raw["price"])
	}
	if string(raw["unit"]) != "null" {
		t.Errorf("absent unit = %s, want null", raw["unit"])
	}
}
