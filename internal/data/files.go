package data

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadWindowJSON loads a forecast window from a fixture file written by
// the prefetch tool (or by SaveWindowJSON).
func LoadWindowJSON(path string) (*WindowResponse, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read window file: %w", err)
	}

	var resp WindowResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return nil, fmt.Errorf("failed to parse window file %s: %w", path, err)
	}
	if err := resp.Window.Validate(); err != nil {
		return nil, fmt.Errorf("window file %s is malformed: %w", path, err)
	}
	return &resp, nil
}

// SaveWindowJSON writes a forecast window as an indented JSON fixture,
// creating parent directories as needed.
func SaveWindowJSON(path string, resp *WindowResponse) error {
	if resp == nil {
		return fmt.Errorf("window response is nil")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", dir, err)
	}

	raw, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal window: %w", err)
	}

	if err := os.WriteFile(path, raw, 0644); err != nil {
		return fmt.Errorf("failed to write window file: %w", err)
	}
	return nil
}

// LoadWindowDir loads every *.json window fixture in a directory,
// keyed by series name. Files that do not parse as windows fail the
// whole load so a corrupt fixture never silently disappears.
func LoadWindowDir(dir string) (map[string]*WindowResponse, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read window directory: %w", err)
	}

	windows := make(map[string]*WindowResponse)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		resp, err := LoadWindowJSON(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		key := resp.Series
		if key == "" {
			key = strings.TrimSuffix(entry.Name(), ".json")
		}
		windows[key] = resp
	}
	return windows, nil
}
