package model

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// Forecast holds the exogenous series over the bidding window, one entry
// per hour slot. The JSON shape matches the window fixtures written by the
// prefetch tool.
type Forecast struct {
	Price          []float64 `json:"price"`            // $/kWh
	OutsideAirTemp []float64 `json:"outside_air_temp"` // °F
	Humidity       []float64 `json:"humidity"`         // fraction 0..1
	SolarDirect    []float64 `json:"solar_direct"`     // W/ft²
	SolarDiffuse   []float64 `json:"solar_diffuse"`    // W/ft²
	InternalGain   []float64 `json:"internal_gain"`    // Btu/h

	// SolarGain is derived from the irradiance series by FillSolarGain.
	SolarGain []float64 `json:"solar_gain,omitempty"` // Btu/(h·ft²)
}

// Window returns the number of forecast slots.
func (f *Forecast) Window() int { return len(f.Price) }

// Slice returns a view of n slots starting at offset. The returned
// forecast shares the underlying series; it is not a copy.
func (f *Forecast) Slice(offset, n int) (*Forecast, error) {
	if offset < 0 || n <= 0 || offset+n > f.Window() {
		return nil, fmt.Errorf("forecast slice [%d,%d) is outside the %d-slot window", offset, offset+n, f.Window())
	}
	out := &Forecast{
		Price:          f.Price[offset : offset+n],
		OutsideAirTemp: f.OutsideAirTemp[offset : offset+n],
		Humidity:       f.Humidity[offset : offset+n],
		SolarDirect:    f.SolarDirect[offset : offset+n],
		SolarDiffuse:   f.SolarDiffuse[offset : offset+n],
		InternalGain:   f.InternalGain[offset : offset+n],
	}
	if len(f.SolarGain) >= offset+n {
		out.SolarGain = f.SolarGain[offset : offset+n]
	}
	return out, nil
}

// Validate checks that every series covers the same window.
func (f *Forecast) Validate() error {
	w := len(f.Price)
	if w == 0 {
		return fmt.Errorf("forecast window is empty")
	}
	if len(f.OutsideAirTemp) != w {
		return fmt.Errorf("forecast series outside_air_temp has %d entries, want %d", len(f.OutsideAirTemp), w)
	}
	if len(f.Humidity) != w {
		return fmt.Errorf("forecast series humidity has %d entries, want %d", len(f.Humidity), w)
	}
	if len(f.SolarDirect) != w {
		return fmt.Errorf("forecast series solar_direct has %d entries, want %d", len(f.SolarDirect), w)
	}
	if len(f.SolarDiffuse) != w {
		return fmt.Errorf("forecast series solar_diffuse has %d entries, want %d", len(f.SolarDiffuse), w)
	}
	if len(f.InternalGain) != w {
		return fmt.Errorf("forecast series internal_gain has %d entries, want %d", len(f.InternalGain), w)
	}
	if len(f.SolarGain) != 0 && len(f.SolarGain) != w {
		return fmt.Errorf("forecast series solar_gain has %d entries, want %d", len(f.SolarGain), w)
	}
	return nil
}

// ForecastStats summarizes the price and temperature series for bid
// construction.
type ForecastStats struct {
	PriceMean   float64
	PriceStdDev float64
	PriceDelta  float64 // max − min
	PriceMin    float64
	PriceMax    float64
	PriceFirst  float64 // price of the slot currently being bid
	TempMin     float64
	TempMax     float64
}

// Stats computes summary statistics over the forecast window.
func (f *Forecast) Stats() ForecastStats {
	var s ForecastStats
	if len(f.Price) > 0 {
		s.PriceMean = stat.Mean(f.Price, nil)
		s.PriceStdDev = stat.StdDev(f.Price, nil)
		s.PriceMin = floats.Min(f.Price)
		s.PriceMax = floats.Max(f.Price)
		s.PriceDelta = s.PriceMax - s.PriceMin
		s.PriceFirst = f.Price[0]
	}
	if len(f.OutsideAirTemp) > 0 {
		s.TempMin = floats.Min(f.OutsideAirTemp)
		s.TempMax = floats.Max(f.OutsideAirTemp)
	}
	return s
}

// LatentFactors evaluates the latent cooling load factor over the humidity
// series.
func (f *Forecast) LatentFactors(latentLoadFraction float64) []float64 {
	out := make([]float64, len(f.Humidity))
	for i, h := range f.Humidity {
		out[i] = latentFactor(h, latentLoadFraction)
	}
	return out
}

// Location is where the house sits, for solar geometry.
type Location struct {
	Latitude  float64 `yaml:"latitude" json:"latitude"`   // degrees, north positive
	Longitude float64 `yaml:"longitude" json:"longitude"` // degrees, east positive
	TZOffset  float64 `yaml:"tz_offset" json:"tz_offset"` // hours from UTC
}

// FillSolarGain derives the solar gain series from the irradiance series,
// walking clock hours forward from the given start and rolling the day of
// year across midnight.
func (f *Forecast) FillSolarGain(loc Location, dayOfYear int, startHour float64) {
	f.SolarGain = make([]float64, len(f.SolarDirect))
	for t := range f.SolarDirect {
		hour := startHour + float64(t)
		day := dayOfYear + int(hour/24)
		hour = math.Mod(hour, 24)
		for day > 365 {
			day -= 365
		}
		f.SolarGain[t] = SolarGain(day, hour, f.SolarDirect[t], f.SolarDiffuse[t],
			loc.Latitude, loc.Longitude, loc.TZOffset)
	}
}
