// Package exporter writes run output to disk: the JSON array consumed by
// the pricing pipeline and the JSONL vector-doc feed for index ingestion.
package exporter

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/saitej13sai/donizo-material-scraper/models"
)

// WriteJSON saves the materials as one pretty-printed JSON array.
func WriteJSON(materials []models.Material, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(materials); err != nil {
		return fmt.Errorf("failed to encode materials: %w", err)
	}
	return nil
}

// WriteJSONL saves one flattened vector doc per line.
func WriteJSONL(materials []models.Material, path string) error {
	f, err := createFile(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetEscapeHTML(false)
	for _, m := range materials {
		if err := enc.Encode(m.ToVectorDoc()); err != nil {
			return fmt.Errorf("failed to encode vector doc %s: %w", m.ID, err)
		}
	}
	return nil
}

func createFile(path string) (*os.File, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create output directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
