package model

// AssetState is the mutable physical state of one house's HVAC asset. The
// canonical trajectory mutates a single instance in place; speculative
// lookahead works on Clone copies so the canonical state is never touched.
type AssetState struct {
	IndoorAirTemp float64 // °F
	MassTemp      float64 // °F

	HVACKW        float64 // electrical draw of the plant when running, kW
	WaterHeaterKW float64 // kW
	HouseKW       float64 // whole-house load, kW

	HVACOn bool
	Mode   ThermostatMode
}

// Clone returns an independent copy.
func (s *AssetState) Clone() *AssetState {
	c := *s
	return &c
}
