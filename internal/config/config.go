// Package config loads and validates the on-disk run configuration.
//
// Defaults are applied first and the YAML is decoded over them, so a key
// written in the file always wins, including explicit zeros. Unknown keys
// are rejected.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"

	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
	"github.com/nathantgray/tesp/internal/strategy"
)

var validate = validator.New()

// House is one simulated residence: its envelope, plant, occupant
// schedule and bidding policy.
type House struct {
	Name     string         `yaml:"name" validate:"required"`
	Location model.Location `yaml:"location"`

	Structure model.StructureParams `yaml:"structure"`
	Equipment model.EquipmentParams `yaml:"equipment"`
	Schedule  schedule.Params       `yaml:"schedule"`
	Bidding   strategy.Config       `yaml:"bidding"`
}

// Run fixes the horizon and the exogenous loads of one simulation.
type Run struct {
	Start time.Time            `yaml:"start"`
	Hours int                  `yaml:"hours" default:"24" validate:"gt=0"`
	Mode  model.ThermostatMode `yaml:"mode" default:"COOLING" validate:"oneof=OFF HEATING COOLING"`

	// WaterHeaterKW is the flat non-HVAC appliance draw used to
	// reconstruct whole-house telemetry.
	WaterHeaterKW float64 `yaml:"water_heater_kw" default:"0.5" validate:"gte=0"`

	// Workers bounds fleet parallelism; 0 means one worker per CPU.
	Workers int `yaml:"workers" validate:"gte=0"`
}

// Config is the merged run configuration. On disk it is YAML with three
// top-level keys: house_file, house and run.
type Config struct {
	// HouseFile optionally names a separate YAML preset
	// (e.g. examples/houses/*.yaml). Keys set inline under house override
	// the preset key by key.
	HouseFile string

	House House
	Run   Run
}

// Load reads, merges and validates a run configuration.
func Load(path string) (*Config, error) {
	c, err := LoadUnchecked(path)
	if err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// LoadUnchecked loads and merges config, but does not validate it.
// Useful for debugging/printing partial configs.
func LoadUnchecked(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	c := &Config{}
	if err := defaults.Set(&c.House); err != nil {
		return nil, err
	}
	if err := defaults.Set(&c.Run); err != nil {
		return nil, err
	}

	var raw struct {
		HouseFile string    `yaml:"house_file"`
		House     yaml.Node `yaml:"house"`
		Run       yaml.Node `yaml:"run"`
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("parse %s: file is empty", path)
		}
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	c.HouseFile = raw.HouseFile

	if !raw.Run.IsZero() {
		if err := decodeStrict(&raw.Run, &c.Run); err != nil {
			return nil, fmt.Errorf("parse %s: run: %w", path, err)
		}
	}

	// If house_file is set, load the preset first so inline keys win.
	if c.HouseFile != "" {
		housePath := c.HouseFile
		if !filepath.IsAbs(housePath) {
			// Prefer interpreting relative paths as relative to the config
			// file directory, but fall back to the provided path (relative
			// to cwd) if that doesn't exist.
			cand := filepath.Join(filepath.Dir(path), housePath)
			if _, err := os.Stat(cand); err == nil {
				housePath = cand
			}
		}
		if err := loadHouseFile(housePath, &c.House); err != nil {
			return nil, err
		}
	}

	if !raw.House.IsZero() {
		if err := decodeStrict(&raw.House, &c.House); err != nil {
			return nil, fmt.Errorf("parse %s: house: %w", path, err)
		}
	} else if c.HouseFile == "" {
		log.Warn().Str("path", path).Msg("no house section set, running the default house")
	}
	return c, nil
}

// LoadHouse reads a standalone house preset file, a YAML document whose
// single top-level key is house. Defaults fill the keys the preset omits.
func LoadHouse(path string) (House, error) {
	var h House
	if err := defaults.Set(&h); err != nil {
		return House{}, err
	}
	if err := loadHouseFile(path, &h); err != nil {
		return House{}, err
	}
	return h, nil
}

// Validate checks the house parameters against their declared bounds and
// proves the envelope against the window lookup tables.
func (h *House) Validate() error {
	if err := validate.Struct(h); err != nil {
		return err
	}
	if _, err := model.NewStructure(h.Structure); err != nil {
		return err
	}
	return nil
}

func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}
	if c.Run.Start.IsZero() {
		return errors.New("run.start is required")
	}
	if err := c.House.Validate(); err != nil {
		return fmt.Errorf("house config invalid: %w", err)
	}
	if err := validate.Struct(c.Run); err != nil {
		return fmt.Errorf("run config invalid: %w", err)
	}
	return nil
}

type houseFileWrapper struct {
	House yaml.Node `yaml:"house"`
}

func loadHouseFile(path string, dst *House) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	var w houseFileWrapper
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&w); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	if w.House.IsZero() {
		return fmt.Errorf("parse %s: no house section", path)
	}
	if err := decodeStrict(&w.House, dst); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

// decodeStrict overlays a YAML node onto dst, rejecting unknown keys.
// Keys absent from the node leave dst untouched.
func decodeStrict(node *yaml.Node, dst any) error {
	raw, err := yaml.Marshal(node)
	if err != nil {
		return err
	}
	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	return dec.Decode(dst)
}

// DefaultHouse is the reference residence: a 2500 ft² single-story slab
// house in Austin with a heat pump. Fields without documented defaults
// (envelope areas and R-values) are filled with its survey values.
func DefaultHouse() House {
	var h House
	if err := defaults.Set(&h); err != nil {
		panic(err)
	}
	h.Name = "reference-2500"
	h.Location = model.Location{Latitude: 30.266, Longitude: -97.733, TZOffset: -6}
	h.Structure.SquareFootage = 2500
	h.Structure.Doors = 4
	h.Structure.RRoof = 30
	h.Structure.RWall = 19
	h.Structure.RFloor = 22
	h.Structure.RDoors = 5
	h.Structure.WindowWallRatio = 0.15
	return h
}
