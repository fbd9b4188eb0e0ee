package sim

import (
	"time"

	"github.com/nathantgray/tesp/internal/model"
)

// LedgerRow is one market period of output.
// This is the primary artifact for "what happened" in a run.
type LedgerRow struct {
	Index int
	Time  time.Time

	Mode model.ThermostatMode

	Price float64 // cleared $/kWh
	Award float64 // cleared quantity, kW

	CoolingSetpoint float64
	HeatingSetpoint float64

	IndoorAirTemp  float64 // °F at period end
	MassTemp       float64 // °F at period end
	OutsideAirTemp float64

	HVACOn    bool    // plant state over the period
	HVACKW    float64 // actual draw over the period, kW
	EnergyKWH float64
	Cost      float64

	CumEnergyKWH float64
	CumCost      float64
}

type Result struct {
	Ledger []LedgerRow

	TotalEnergyKWH float64
	TotalCost      float64
	// DiscomfortDegHrs integrates the absolute deviation of the indoor
	// temperature from the occupant basepoint over the run.
	DiscomfortDegHrs float64
	FinalIndoorTemp  float64
}
