package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Series identifies one forecast series published by a schedule server.
type Series struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market,omitempty"`
	Zone   string `json:"zone,omitempty"`
}

// SeriesList is the JSON catalog format used on disk.
type SeriesList struct {
	UpdatedAt time.Time `json:"updated_at"`
	Series    []Series  `json:"series"`
}

// LoadSeries reads a series catalog from a JSON file.
func LoadSeries(path string) (*SeriesList, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read series file: %w", err)
	}

	var list SeriesList
	if err := json.Unmarshal(raw, &list); err != nil {
		return nil, fmt.Errorf("failed to parse series file %s: %w", path, err)
	}
	return &list, nil
}

// SaveSeries writes a series catalog as indented JSON, creating the
// parent directory as needed.
func SaveSeries(path string, list *SeriesList) error {
	if list == nil {
		return fmt.Errorf("series list is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(list, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal series list: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write series file: %w", err)
	}
	return nil
}

// GetDefaultSeriesPath returns the catalog path, honoring SERIES_FILE.
func GetDefaultSeriesPath() string {
	if path := os.Getenv("SERIES_FILE"); path != "" {
		return path
	}
	return filepath.Join("data", "series.json")
}
