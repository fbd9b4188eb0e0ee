package model

import "math"

// Environment carries the time-varying boundary conditions and the heat
// flows derived from them each step. The flows form a dependency chain
// (Qs, then Qh, Qi, Qm, and finally Qa); each computation stores its
// result so downstream terms reuse values already in hand instead of
// recomputing upstream ones.
type Environment struct {
	OutsideAirTemp float64 // °F
	SolarGainFlux  float64 // Btu/(h·ft²), averaged over vertical surfaces
	Humidity       float64 // fraction 0..1

	Qs    float64 // solar heat flow into the envelope, Btu/h
	Qh    float64 // HVAC heat flow, Btu/h (negative when cooling)
	QhKW  float64 // electrical counterpart of Qh, kW (signed)
	Qi    float64 // internal gains from non-HVAC loads, Btu/h
	Qm    float64 // heat flow into the structure mass, Btu/h
	QaOn  float64 // heat flow into indoor air with the plant running, Btu/h
	QaOff float64 // heat flow into indoor air with the plant idle, Btu/h
}

// Clone returns an independent copy for speculative lookahead.
func (e *Environment) Clone() *Environment {
	c := *e
	return &c
}

// latentFactor scales sensible cooling for the latent (moisture) load at
// the given humidity.
func latentFactor(humidity, latentLoadFraction float64) float64 {
	return 1.0 + latentLoadFraction/(1.0+math.Exp(4.0-10.0*humidity))
}

// ComputeQs converts the incident solar flux to a heat flow through the
// windows.
func (e *Environment) ComputeQs(solarHeatgainFactor float64) float64 {
	e.Qs = e.SolarGainFlux * solarHeatgainFactor
	return e.Qs
}

// ComputeQh computes the HVAC heat flow for the current thermostat mode.
// The 2% capacity terms account for fan heat. The electrical counterpart
// is zeroed when the plant is idle so internal-gain accounting sees no
// HVAC draw.
func (e *Environment) ComputeQh(eq *Equipment, st *AssetState) float64 {
	switch st.Mode {
	case ModeHeating:
		capacity := eq.HeatingCapacity(e.OutsideAirTemp)
		e.Qh = capacity + 0.02*capacity
		e.QhKW = st.HVACKW
	case ModeCooling:
		capacity := eq.CoolingCapacity(e.OutsideAirTemp)
		e.Qh = -capacity/latentFactor(e.Humidity, eq.Params.LatentLoadFraction) + 0.02*capacity
		e.QhKW = -st.HVACKW
	default:
		e.Qh = 0
		e.QhKW = 0
	}
	if !st.HVACOn {
		e.QhKW = 0
	}
	return e.Qh
}

// ComputeQi derives internal gains from the whole-house load net of the
// HVAC and water heater draws. A negative result means the load telemetry
// is inconsistent; the stored value is floored at zero.
func (e *Environment) ComputeQi(st *AssetState) float64 {
	qi := (st.HouseKW - math.Abs(e.QhKW) - st.WaterHeaterKW) * KWToBTUPerHr
	if qi < 0 {
		qi = 0
	}
	e.Qi = qi
	return e.Qi
}

// ComputeQm accumulates the internal and solar gain fractions absorbed by
// the structure mass.
func (e *Environment) ComputeQm(massInternalFrac, massSolarFrac float64) float64 {
	e.Qm = massInternalFrac*e.Qi + massSolarFrac*e.Qs
	return e.Qm
}

// ComputeQa computes the indoor-air heat flows for both plant branches.
func (e *Environment) ComputeQa(massInternalFrac, massSolarFrac float64) (on, off float64) {
	e.QaOff = (1-massInternalFrac)*e.Qi + (1-massSolarFrac)*e.Qs
	e.QaOn = e.Qh + e.QaOff
	return e.QaOn, e.QaOff
}

// ComputeHeatFlows runs the full chain in dependency order.
func (e *Environment) ComputeHeatFlows(s *Structure, eq *Equipment, st *AssetState) {
	e.ComputeQs(s.SolarHeatgainFactor)
	e.ComputeQh(eq, st)
	e.ComputeQi(st)
	e.ComputeQm(s.Params.MassInternalGainFraction, s.Params.MassSolarGainFraction)
	e.ComputeQa(s.Params.MassInternalGainFraction, s.Params.MassSolarGainFraction)
}
