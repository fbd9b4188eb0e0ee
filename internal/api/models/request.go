package models

import (
	"time"

	"github.com/nathantgray/tesp/internal/model"
)

// SimulateRequest is the body for POST /api/v1/simulate.
type SimulateRequest struct {
	HouseFile string          `json:"house_file,omitempty"` // preset name under HOUSE_DIR
	House     HouseOverrides  `json:"house,omitempty"`
	Run       RunConfig       `json:"run" binding:"required"`
	Forecast  ForecastSource  `json:"forecast" binding:"required"`
	Options   SimulateOptions `json:"options,omitempty"`
}

// RunConfig fixes the horizon of one simulated run.
type RunConfig struct {
	Start         time.Time `json:"start" binding:"required"`
	Hours         int       `json:"hours" binding:"required,gt=0"`
	Mode          string    `json:"mode,omitempty"` // OFF, HEATING or COOLING; default COOLING
	WaterHeaterKW float64   `json:"water_heater_kw,omitempty"`
}

// ForecastSource selects where the forecast window comes from.
type ForecastSource struct {
	Type string `json:"type" binding:"required,oneof=window server"`

	// Inline window, for type "window".
	Window *model.Forecast `json:"window,omitempty"`

	// Schedule server query, for type "server".
	APIKey string `json:"api_key,omitempty"`
	Series string `json:"series,omitempty"`
}

// HouseOverrides carries request-level knobs layered over a preset.
// Pointer fields distinguish "absent" from an explicit zero.
type HouseOverrides struct {
	Name string `json:"name,omitempty"`

	SquareFootage    *float64 `json:"sqft,omitempty"`
	AirchangePerHour *float64 `json:"airchange_per_hour,omitempty"`

	HeatingSystem *string  `json:"heating_system,omitempty"`
	CoolingCOP    *float64 `json:"cooling_cop,omitempty"`
	HeatingCOP    *float64 `json:"heating_cop,omitempty"`

	Slider   *float64 `json:"slider,omitempty"`
	Deadband *float64 `json:"deadband,omitempty"`

	Optimize              *bool    `json:"optimize,omitempty"`
	ProfitMarginIntercept *float64 `json:"profit_margin_intercept,omitempty"`
	Window                *int     `json:"window,omitempty"`
	PeriodSeconds         *int     `json:"period_seconds,omitempty"`
}

// SimulateOptions contains optional simulate parameters
type SimulateOptions struct {
	IncludeLedger bool `json:"include_ledger,omitempty"` // default: false
}

// CompareRequest is the body for POST /api/v1/simulate/compare.
type CompareRequest struct {
	HouseFile  string         `json:"house_file,omitempty"`
	House      HouseOverrides `json:"house,omitempty"`
	Run        RunConfig      `json:"run" binding:"required"`
	Forecast   ForecastSource `json:"forecast" binding:"required"`
	Variations []Variation    `json:"variations" binding:"required,min=1"`
}

// Variation is one knob set to compare against the base house.
type Variation struct {
	Name  string         `json:"name" binding:"required"`
	House HouseOverrides `json:"house,omitempty"`
}

// BidRequest is the body for POST /api/v1/bid.
type BidRequest struct {
	HouseFile string         `json:"house_file,omitempty"`
	House     HouseOverrides `json:"house,omitempty"`
	Forecast  ForecastSource `json:"forecast" binding:"required"`

	At   time.Time `json:"at" binding:"required"` // delivery period start
	Mode string    `json:"mode,omitempty"`        // default COOLING

	// IndoorAirTemp pins the room state the bid is formed from.
	// Defaults to the midpoint of the scheduled basepoints.
	IndoorAirTemp *float64 `json:"indoor_air_temp,omitempty"`
}

// AggregateBidRequest is the body for POST /api/v1/bid/aggregate.
type AggregateBidRequest struct {
	Houses   []FleetHouse   `json:"houses" binding:"required,min=1"`
	Forecast ForecastSource `json:"forecast" binding:"required"`
	At       time.Time      `json:"at" binding:"required"`
	Mode     string         `json:"mode,omitempty"`
}

// FleetHouse names one member of the bid aggregation.
type FleetHouse struct {
	HouseFile string         `json:"house_file,omitempty"`
	House     HouseOverrides `json:"house,omitempty"`
}

// RankRequest represents a request to rank houses by flexibility
type RankRequest struct {
	APIKey    string `form:"api_key" binding:"required"` // schedule server API key
	Series    string `form:"series" binding:"required"`
	StartDate string `form:"start_date" binding:"required"` // YYYY-MM-DD
	Hours     int    `form:"hours,omitempty"`               // default: 48
	Houses    string `form:"houses,omitempty"`              // comma-separated preset names
	Limit     int    `form:"limit,omitempty"`               // default: 10
}
