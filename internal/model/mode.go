package model

import (
	"fmt"
	"strings"
)

// ThermostatMode selects which comfort band the thermostat enforces.
// Keep these values stable; they appear in config files and CSV output.
type ThermostatMode string

const (
	ModeOff     ThermostatMode = "OFF"
	ModeHeating ThermostatMode = "HEATING"
	ModeCooling ThermostatMode = "COOLING"
)

func ParseThermostatMode(s string) (ThermostatMode, error) {
	m := ThermostatMode(strings.ToUpper(strings.TrimSpace(s)))
	switch m {
	case ModeOff, ModeHeating, ModeCooling:
		return m, nil
	}
	return "", fmt.Errorf("unknown thermostat mode %q", s)
}

// HeatingSystemType identifies the heating plant serving the house.
type HeatingSystemType string

const (
	HeatingNone     HeatingSystemType = "NONE"
	HeatingGas      HeatingSystemType = "GAS"
	HeatingElectric HeatingSystemType = "ELECTRIC"
	HeatingHeatPump HeatingSystemType = "HEAT_PUMP"
)

func ParseHeatingSystemType(s string) (HeatingSystemType, error) {
	h := HeatingSystemType(strings.ToUpper(strings.TrimSpace(s)))
	switch h {
	case HeatingNone, HeatingGas, HeatingElectric, HeatingHeatPump:
		return h, nil
	}
	return "", fmt.Errorf("unknown heating system type %q", s)
}

// CoolingSystemType identifies the cooling plant serving the house.
type CoolingSystemType string

const (
	CoolingNone     CoolingSystemType = "NONE"
	CoolingElectric CoolingSystemType = "ELECTRIC"
)

func ParseCoolingSystemType(s string) (CoolingSystemType, error) {
	c := CoolingSystemType(strings.ToUpper(strings.TrimSpace(s)))
	switch c {
	case CoolingNone, CoolingElectric:
		return c, nil
	}
	return "", fmt.Errorf("unknown cooling system type %q", s)
}

// WindowFrame is the window frame material class used by the envelope
// lookup tables.
type WindowFrame string

const (
	FrameNone         WindowFrame = "NONE"
	FrameAluminum     WindowFrame = "ALUMINUM"
	FrameThermalBreak WindowFrame = "THERMAL_BREAK"
	FrameWood         WindowFrame = "WOOD"
	FrameInsulated    WindowFrame = "INSULATED"
)

// GlazingTreatment is the window coating class.
type GlazingTreatment string

const (
	TreatmentClear      GlazingTreatment = "CLEAR"
	TreatmentABS        GlazingTreatment = "ABS"
	TreatmentReflective GlazingTreatment = "REFLECTIVE"
)

// GlassType is the window glass class.
type GlassType string

const (
	GlassOther  GlassType = "OTHER"
	GlassNormal GlassType = "NORMAL"
	GlassLowE   GlassType = "LOW_E"
)
