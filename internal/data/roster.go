package data

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/nathantgray/tesp/internal/config"
)

// HousePreset is one roster entry: the preset ID (file name without
// extension), the file it came from, and the loaded house.
type HousePreset struct {
	ID    string
	Path  string
	House config.House
}

// LoadRoster loads every *.yaml house preset under dir, in directory
// order. A preset without a name adopts its ID. Presets that do not
// parse or validate are logged and skipped so one bad file never hides
// the rest of the roster.
func LoadRoster(dir string) ([]HousePreset, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read roster directory: %w", err)
	}

	presets := []HousePreset{}
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}

		path := filepath.Join(dir, entry.Name())
		house, err := config.LoadHouse(path)
		if err != nil {
			log.Printf("[Roster] Skipping %s: %v", entry.Name(), err)
			continue
		}

		id := strings.TrimSuffix(entry.Name(), ".yaml")
		if house.Name == "" {
			house.Name = id
		}
		if err := house.Validate(); err != nil {
			log.Printf("[Roster] Skipping %s: %v", entry.Name(), err)
			continue
		}

		presets = append(presets, HousePreset{ID: id, Path: path, House: house})
	}
	return presets, nil
}
