package model

import (
	"fmt"
	"math"
)

// KWToBTUPerHr converts electrical kW to thermal Btu/h.
const KWToBTUPerHr = 3412.1416331279

// StructureParams describes the building envelope.
// Units:
// - SquareFootage: ft², CeilingHeight: ft
// - R-values: h·ft²·°F/Btu
// - GrossAirHeatCapacity: Btu/(ft³·°F)
// - ThermalMassPerFloorArea: Btu/(ft²·°F)
// - InteriorHeatTransferCoeff: Btu/(h·ft²·°F)
type StructureParams struct {
	SquareFootage float64 `yaml:"sqft" validate:"gt=0"`
	Stories       float64 `yaml:"stories" default:"1" validate:"gte=1"`
	CeilingHeight float64 `yaml:"ceiling_height" default:"8"`
	AspectRatio   float64 `yaml:"aspect_ratio" default:"1.5"`

	Doors          float64 `yaml:"doors"`
	SingleDoorArea float64 `yaml:"single_door_area" default:"19.5"`

	RRoof  float64 `yaml:"r_roof"`
	RWall  float64 `yaml:"r_wall"`
	RFloor float64 `yaml:"r_floor"`
	RDoors float64 `yaml:"r_doors"`

	WindowWallRatio  float64          `yaml:"window_wall_ratio"`
	GlazingLayers    int              `yaml:"glazing_layers" default:"2" validate:"gte=1,lte=3"`
	GlassType        GlassType        `yaml:"glass_type" default:"NORMAL" validate:"oneof=OTHER NORMAL LOW_E"`
	GlazingTreatment GlazingTreatment `yaml:"glazing_treatment" default:"CLEAR" validate:"oneof=CLEAR ABS REFLECTIVE"`
	WindowFrame      WindowFrame      `yaml:"window_frame" default:"ALUMINUM" validate:"oneof=NONE ALUMINUM THERMAL_BREAK WOOD INSULATED"`
	// WETC is the exterior transmission coefficient: the fraction of
	// incident solar that survives exterior shading.
	WETC float64 `yaml:"wetc" default:"0.6"`

	ExteriorCeilingFraction float64 `yaml:"exterior_ceiling_fraction" default:"1"`
	ExteriorFloorFraction   float64 `yaml:"exterior_floor_fraction" default:"1"`
	ExteriorWallFraction    float64 `yaml:"exterior_wall_fraction" default:"1"`

	InteriorExteriorWallRatio float64 `yaml:"interior_exterior_wall_ratio" default:"1.5"`
	InteriorHeatTransferCoeff float64 `yaml:"interior_heat_transfer_coefficient" default:"1.46"`
	GrossAirHeatCapacity      float64 `yaml:"gross_air_heat_capacity" default:"0.018"`
	ThermalMassPerFloorArea   float64 `yaml:"thermal_mass_per_floor_area" default:"3"`

	// AirchangePerHour is carried for advisory validation; infiltration is
	// not part of the conductance model.
	AirchangePerHour float64 `yaml:"airchange_per_hour"`

	// Fractions of internal and solar gains absorbed by the structure mass
	// rather than the indoor air.
	MassInternalGainFraction float64 `yaml:"mass_internal_gain_fraction" default:"0.5"`
	MassSolarGainFraction    float64 `yaml:"mass_solar_gain_fraction" default:"0.5"`
}

// Nominal parameter ranges for advisory validation. Values outside these
// bounds are suspicious but not fatal.
const (
	nominalRMin         = 1.0
	nominalRRoofMax     = 60.0
	nominalRWallMax     = 40.0
	nominalRFloorMax    = 40.0
	nominalRDoorsMax    = 20.0
	nominalAirchangeMin = 0.1
	nominalAirchangeMax = 10.0
)

// Warnings reports advisory range violations. The model still works with
// out-of-range values; callers are expected to log these and continue.
func (p StructureParams) Warnings() []string {
	var w []string
	check := func(name string, val, lo, hi float64) {
		if val != 0 && (val < lo || val > hi) {
			w = append(w, fmt.Sprintf("%s is %g, outside of nominal range of %g to %g", name, val, lo, hi))
		}
	}
	check("r_roof", p.RRoof, nominalRMin, nominalRRoofMax)
	check("r_wall", p.RWall, nominalRMin, nominalRWallMax)
	check("r_floor", p.RFloor, nominalRMin, nominalRFloorMax)
	check("r_doors", p.RDoors, nominalRMin, nominalRDoorsMax)
	check("airchange_per_hour", p.AirchangePerHour, nominalAirchangeMin, nominalAirchangeMax)
	if p.Doors < 0 {
		w = append(w, fmt.Sprintf("doors is %g, negative door counts are ignored by sizing rules", p.Doors))
	}
	return w
}

// Structure holds the envelope areas and the equivalent thermal parameters
// derived from StructureParams. Computed once at construction; treat as
// immutable afterwards.
type Structure struct {
	Params StructureParams

	CeilingArea           float64 // ft²
	FloorArea             float64 // ft²
	Perimeter             float64 // ft
	GrossExteriorWallArea float64 // ft²
	GrossWindowArea       float64 // ft²
	TotalDoorArea         float64 // ft²
	NetWallArea           float64 // ft²
	InteriorAirHeatCap    float64 // Btu/°F

	WindowTransmission float64
	RWindows           float64 // h·ft²·°F/Btu

	UA float64 // indoor-outdoor conductance, Btu/(h·°F)
	CA float64 // indoor air heat capacity, Btu/°F
	HM float64 // air-mass conductance, Btu/(h·°F)
	CM float64 // structure mass heat capacity, Btu/°F

	// SolarHeatgainFactor scales incident solar flux (Btu/(h·ft²)) to the
	// heat flow reaching the indoor air (Btu/h).
	SolarHeatgainFactor float64
}

// NewStructure derives the envelope areas and ETP parameters. The window
// lookups fail on combinations the tables do not cover, which indicates a
// configuration error.
func NewStructure(p StructureParams) (*Structure, error) {
	wtc, err := windowTransmission(p.GlazingLayers, p.GlazingTreatment, p.WindowFrame)
	if err != nil {
		return nil, err
	}
	rg, err := windowResistance(p.GlassType, p.GlazingLayers, p.WindowFrame)
	if err != nil {
		return nil, err
	}

	s := &Structure{Params: p, WindowTransmission: wtc, RWindows: rg}
	s.computeAreas()
	s.computeETP()
	return s, nil
}

func (s *Structure) computeAreas() {
	p := s.Params
	s.CeilingArea = div(p.SquareFootage, p.Stories, 0) * p.ExteriorCeilingFraction
	s.FloorArea = div(p.SquareFootage, p.Stories, 0) * p.ExteriorFloorFraction
	s.Perimeter = 2 * (1 + p.AspectRatio) * math.Sqrt(div(s.CeilingArea, p.AspectRatio, 0))
	s.GrossExteriorWallArea = p.Stories * p.CeilingHeight * s.Perimeter
	s.GrossWindowArea = p.WindowWallRatio * s.GrossExteriorWallArea * p.ExteriorWallFraction
	s.TotalDoorArea = p.Doors * p.SingleDoorArea
	s.NetWallArea = (s.GrossExteriorWallArea - s.GrossWindowArea - s.TotalDoorArea) * p.ExteriorWallFraction
	s.InteriorAirHeatCap = p.SquareFootage * p.CeilingHeight * p.GrossAirHeatCapacity
}

func (s *Structure) computeETP() {
	p := s.Params
	// Undefined resistances contribute no conductance rather than dividing
	// by zero.
	s.UA = div(s.CeilingArea, p.RRoof, 0) +
		div(s.FloorArea, p.RFloor, 0) +
		div(s.NetWallArea, p.RWall, 0) +
		div(s.GrossWindowArea, s.RWindows, 0) +
		div(s.TotalDoorArea, p.RDoors, 0)
	s.CA = 3 * s.InteriorAirHeatCap
	s.HM = p.InteriorHeatTransferCoeff * (div(s.NetWallArea, p.ExteriorWallFraction, 0) +
		s.GrossExteriorWallArea*p.InteriorExteriorWallRatio +
		div(s.CeilingArea*p.Stories, p.ExteriorCeilingFraction, 0))
	s.CM = p.SquareFootage*p.ThermalMassPerFloorArea - 2*s.InteriorAirHeatCap
	s.SolarHeatgainFactor = s.GrossWindowArea * s.WindowTransmission * p.WETC
}

// div guards conductance terms against undefined (zero) denominators,
// returning whenZero instead of dividing.
func div(numerator, denominator, whenZero float64) float64 {
	if denominator == 0 {
		return whenZero
	}
	return numerator / denominator
}
