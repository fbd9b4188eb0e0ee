package models

import (
	"time"

	"github.com/nathantgray/tesp/internal/strategy"
)

// SimulateResponse represents the response from a simulated run
type SimulateResponse struct {
	Status  string          `json:"status"`
	Summary SimulateSummary `json:"summary"`
	Ledger  []LedgerRow     `json:"ledger,omitempty"`
}

// SimulateSummary contains aggregated run results
type SimulateSummary struct {
	House            string      `json:"house"`
	Mode             string      `json:"mode"`
	TotalPeriods     int         `json:"total_periods"`
	RunWindow        TimeWindow  `json:"run_window"`
	TotalEnergyKWH   float64     `json:"total_energy_kwh"`
	TotalCost        float64     `json:"total_cost"`
	AveragePriceKWH  float64     `json:"average_price_per_kwh"`
	DiscomfortDegHrs float64     `json:"discomfort_deg_hrs"`
	FinalIndoorTemp  float64     `json:"final_indoor_temp"`
	HVACRunWindows   []RunWindow `json:"hvac_run_windows,omitempty"` // Per-day plant run windows
}

// TimeWindow represents a time range
type TimeWindow struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// RunWindow is a per-day window spanning the periods the plant ran
type RunWindow struct {
	TimeWindow
	AveragePriceKWH float64 `json:"average_price_per_kwh"` // Weighted average price while running
	EnergyKWH       float64 `json:"energy_kwh"`            // Total energy drawn in this window
}

// LedgerRow represents one market period of the run
type LedgerRow struct {
	Index           int       `json:"index"`
	Time            time.Time `json:"time"`
	Mode            string    `json:"mode"`
	Price           float64   `json:"price"`
	AwardKW         float64   `json:"award_kw"`
	CoolingSetpoint float64   `json:"cooling_setpoint"`
	HeatingSetpoint float64   `json:"heating_setpoint"`
	IndoorAirTemp   float64   `json:"indoor_temp"`
	MassTemp        float64   `json:"mass_temp"`
	OutsideAirTemp  float64   `json:"outside_temp"`
	HVACOn          bool      `json:"hvac_on"`
	HVACKW          float64   `json:"hvac_kw"`
	EnergyKWH       float64   `json:"energy_kwh"`
	Cost            float64   `json:"cost"`
	CumEnergyKWH    float64   `json:"cum_energy_kwh"`
	CumCost         float64   `json:"cum_cost"`
}

// CompareResponse represents the response from a comparison
type CompareResponse struct {
	Comparison []ComparisonResult `json:"comparison"`
}

// ComparisonResult contains results for one variation
type ComparisonResult struct {
	Name    string          `json:"name"`
	Summary SimulateSummary `json:"summary"`
}

// BidResponse carries one house's four-point demand curve
type BidResponse struct {
	House   string              `json:"house"`
	Mode    string              `json:"mode"`
	At      time.Time           `json:"at"`
	Bid     []strategy.BidPoint `json:"bid"`     // 4 vertices, prices non-increasing
	PlanKW  float64             `json:"plan_kw"` // day-ahead quantity for the period
	RatedKW float64             `json:"rated_kw"`
}

// AggregateBidResponse carries the fleet bids and the stacked curve
type AggregateBidResponse struct {
	Bids  []BidResponse       `json:"bids"`
	Curve []strategy.BidPoint `json:"curve"` // descending-price cumulative demand
}

// RankResponse represents the response from ranking houses
type RankResponse struct {
	Rankings []Ranking `json:"rankings"`
}

// Ranking represents one ranked house
type Ranking struct {
	Rank          int     `json:"rank"`
	House         string  `json:"house"`
	Series        string  `json:"series"`
	Slots         int     `json:"slots"`
	SpreadP95P05  float64 `json:"spread_p95_p05"`
	MinPrice      float64 `json:"min_price"`
	MaxPrice      float64 `json:"max_price"`
	StorageKWH    float64 `json:"storage_kwh"`
	PowerKW       float64 `json:"power_kw"`
	OracleSavings float64 `json:"oracle_savings"`
}

// HouseInfo represents information about a house preset
type HouseInfo struct {
	ID    string     `json:"id"`
	Name  string     `json:"name"`
	File  string     `json:"file"`
	Specs HouseSpecs `json:"specs"`
}

// HouseSpecs contains headline house parameters
type HouseSpecs struct {
	SquareFootage float64 `json:"sqft"`
	HeatingSystem string  `json:"heating_system"`
	CoolingCOP    float64 `json:"cooling_cop"`
	Slider        float64 `json:"slider"`
}

// StrategyInfo represents information about a bidding strategy
type StrategyInfo struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  []ParameterInfo `json:"parameters"`
}

// ParameterInfo describes a strategy parameter
type ParameterInfo struct {
	Name        string      `json:"name"`
	Type        string      `json:"type"` // "float", "int", "bool"
	Description string      `json:"description"`
	Default     interface{} `json:"default,omitempty"`
}

// SeriesInfo represents one forecast series in the catalog
type SeriesInfo struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Market string `json:"market"`
	Zone   string `json:"zone,omitempty"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information
type ErrorDetail struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Details map[string]interface{} `json:"details,omitempty"`
}
