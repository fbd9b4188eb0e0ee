package model

import (
	"fmt"
	"math"
)

// EquipmentParams describes the HVAC plant and its performance curves.
// Capacity curves correct the design capacity for outside air temperature;
// COP curves correct the rated COP the same way. The coefficient defaults
// are the standard residential heat-pump curves.
type EquipmentParams struct {
	HeatingSystem HeatingSystemType `yaml:"heating_system" default:"HEAT_PUMP" validate:"oneof=NONE GAS ELECTRIC HEAT_PUMP"`
	CoolingSystem CoolingSystemType `yaml:"cooling_system" default:"ELECTRIC" validate:"oneof=NONE ELECTRIC"`

	HeatingCOP float64 `yaml:"heating_cop" default:"2.5"`
	CoolingCOP float64 `yaml:"cooling_cop" default:"3.5"`

	OverSizingFactor float64 `yaml:"over_sizing_factor" default:"0.1"`
	// LatentLoadFraction is the extra moisture load carried by the cooling
	// plant relative to the sensible load, at saturated humidity.
	LatentLoadFraction float64 `yaml:"latent_load_fraction" default:"0.3"`

	CoolingDesignTemperature float64 `yaml:"cooling_design_temperature" default:"95"`
	HeatingDesignTemperature float64 `yaml:"heating_design_temperature" default:"0"`
	DesignCoolingSetpoint    float64 `yaml:"design_cooling_setpoint" default:"75"`
	DesignHeatingSetpoint    float64 `yaml:"design_heating_setpoint" default:"70"`
	DesignInternalGains      float64 `yaml:"design_internal_gains"`
	DesignPeakSolar          float64 `yaml:"design_peak_solar" default:"195"`

	CoolingCapK0 float64 `yaml:"cooling_capacity_k0" default:"1.48924533"`
	CoolingCapK1 float64 `yaml:"cooling_capacity_k1" default:"-0.00514995"`

	HeatingCapK0 float64 `yaml:"heating_capacity_k0" default:"0.34148808"`
	HeatingCapK1 float64 `yaml:"heating_capacity_k1" default:"0.00894102"`
	HeatingCapK2 float64 `yaml:"heating_capacity_k2" default:"0.00010787"`

	CoolingCOPK0 float64 `yaml:"cooling_cop_k0" default:"-0.01363961"`
	CoolingCOPK1 float64 `yaml:"cooling_cop_k1" default:"0.01066989"`
	// CoolingCOPLimit is the outside temperature below which the cooling
	// COP correction stops extrapolating.
	CoolingCOPLimit float64 `yaml:"cooling_cop_limit" default:"40"`

	HeatingCOPK0    float64 `yaml:"heating_cop_k0" default:"2.03914613"`
	HeatingCOPK1    float64 `yaml:"heating_cop_k1" default:"-0.03906753"`
	HeatingCOPK2    float64 `yaml:"heating_cop_k2" default:"0.00045617"`
	HeatingCOPK3    float64 `yaml:"heating_cop_k3" default:"-0.00000203"`
	HeatingCOPLimit float64 `yaml:"heating_cop_limit"`
}

// Nominal COP range for advisory validation.
const (
	nominalCOPMin = 1.0
	nominalCOPMax = 10.0
)

// Warnings reports advisory range violations for logging; none are fatal.
func (p EquipmentParams) Warnings() []string {
	var w []string
	if p.CoolingCOP != 0 && (p.CoolingCOP < nominalCOPMin || p.CoolingCOP > nominalCOPMax) {
		w = append(w, fmt.Sprintf("cooling_cop is %g, outside of nominal range of %g to %g", p.CoolingCOP, nominalCOPMin, nominalCOPMax))
	}
	if p.HeatingCOP != 0 && (p.HeatingCOP < nominalCOPMin || p.HeatingCOP > nominalCOPMax) {
		w = append(w, fmt.Sprintf("heating_cop is %g, outside of nominal range of %g to %g", p.HeatingCOP, nominalCOPMin, nominalCOPMax))
	}
	if p.OverSizingFactor < 0 || p.OverSizingFactor > 1 {
		w = append(w, fmt.Sprintf("over_sizing_factor is %g, outside of nominal range of 0 to 1", p.OverSizingFactor))
	}
	return w
}

// Equipment is the sized HVAC plant. Design capacities are computed once
// from the structure's thermal parameters and are fixed afterwards.
type Equipment struct {
	Params EquipmentParams

	DesignCoolingCapacity float64 // Btu/h, rounded up to a 6000 multiple
	DesignHeatingCapacity float64 // Btu/h
}

// NewEquipment sizes the plant against the structure's design loads. A
// heat pump shares one compressor between modes, so its heating capacity
// is the unrounded cooling design load.
func NewEquipment(p EquipmentParams, s *Structure) *Equipment {
	rawCooling := (1.0+p.OverSizingFactor)*(1.0+p.LatentLoadFraction)*
		(s.UA*(p.CoolingDesignTemperature-p.DesignCoolingSetpoint)) +
		p.DesignInternalGains +
		p.DesignPeakSolar*s.SolarHeatgainFactor

	e := &Equipment{Params: p}
	e.DesignCoolingCapacity = math.Ceil(rawCooling/6000) * 6000

	if p.HeatingSystem == HeatingHeatPump {
		e.DesignHeatingCapacity = rawCooling
	} else {
		rawHeating := (1.0 + p.OverSizingFactor) * s.UA *
			(p.DesignHeatingSetpoint - p.HeatingDesignTemperature)
		e.DesignHeatingCapacity = math.Ceil(rawHeating/10000.0) * 10000.0
	}
	return e
}

// HeatingCapacity corrects the design heating capacity for the outside air
// temperature.
func (e *Equipment) HeatingCapacity(outsideTemp float64) float64 {
	p := e.Params
	return e.DesignHeatingCapacity * (p.HeatingCapK0 +
		p.HeatingCapK1*outsideTemp +
		p.HeatingCapK2*outsideTemp*outsideTemp)
}

// CoolingCapacity corrects the design cooling capacity for the outside air
// temperature.
func (e *Equipment) CoolingCapacity(outsideTemp float64) float64 {
	p := e.Params
	return e.DesignCoolingCapacity * (p.CoolingCapK0 + p.CoolingCapK1*outsideTemp)
}

// AdjustedHeatingCOP applies the temperature correction curve. Below the
// curve limit the correction is held at the limit value instead of
// extrapolating.
func (e *Equipment) AdjustedHeatingCOP(outsideTemp float64) float64 {
	p := e.Params
	t := outsideTemp
	if t < p.HeatingCOPLimit {
		t = p.HeatingCOPLimit
	}
	return p.HeatingCOP / (p.HeatingCOPK0 + p.HeatingCOPK1*t + p.HeatingCOPK2*t*t + p.HeatingCOPK3*t*t*t)
}

// AdjustedCoolingCOP applies the temperature correction curve with the same
// low-temperature hold as AdjustedHeatingCOP.
func (e *Equipment) AdjustedCoolingCOP(outsideTemp float64) float64 {
	p := e.Params
	t := outsideTemp
	if t < p.CoolingCOPLimit {
		t = p.CoolingCOPLimit
	}
	return p.CoolingCOP / (p.CoolingCOPK0 + p.CoolingCOPK1*t)
}

// HeatingCOPSeries evaluates the heating COP correction over a temperature
// forecast.
func (e *Equipment) HeatingCOPSeries(temps []float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = e.AdjustedHeatingCOP(t)
	}
	return out
}

// CoolingCOPSeries evaluates the cooling COP correction over a temperature
// forecast.
func (e *Equipment) CoolingCOPSeries(temps []float64) []float64 {
	out := make([]float64, len(temps))
	for i, t := range temps {
		out[i] = e.AdjustedCoolingCOP(t)
	}
	return out
}

// RatedKW estimates the electrical draw of the plant at the given outside
// temperature, for runs that have no metered load telemetry. Gas heat
// contributes no electrical HVAC load.
func (e *Equipment) RatedKW(mode ThermostatMode, outsideTemp float64) float64 {
	switch mode {
	case ModeCooling:
		if e.Params.CoolingSystem != CoolingElectric {
			return 0
		}
		cop := e.AdjustedCoolingCOP(outsideTemp)
		if cop <= 0 {
			return 0
		}
		return e.CoolingCapacity(outsideTemp) / (cop * KWToBTUPerHr)
	case ModeHeating:
		if e.Params.HeatingSystem != HeatingElectric && e.Params.HeatingSystem != HeatingHeatPump {
			return 0
		}
		cop := e.AdjustedHeatingCOP(outsideTemp)
		if cop <= 0 {
			return 0
		}
		return e.HeatingCapacity(outsideTemp) / (cop * KWToBTUPerHr)
	}
	return 0
}
