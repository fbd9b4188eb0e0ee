package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/sim"
)

// SimulateHandler handles simulation-related requests
type SimulateHandler struct{}

// NewSimulateHandler creates a new simulate handler
func NewSimulateHandler() *SimulateHandler {
	return &SimulateHandler{}
}

// RunSimulation handles POST /api/v1/simulate
func (h *SimulateHandler) RunSimulation(c *gin.Context) {
	var req models.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	// Validate API key when the forecast comes from the schedule server
	if req.Forecast.Type == "server" {
		if err := validateAPIKey(req.Forecast.APIKey); err != nil {
			badRequest(c, "INVALID_API_KEY", err)
			return
		}
	}

	mode, err := parseMode(req.Run.Mode)
	if err != nil {
		badRequest(c, "INVALID_MODE", err)
		return
	}

	house, err := resolveHouse(req.HouseFile, req.House)
	if err != nil {
		badRequest(c, "INVALID_HOUSE", err)
		return
	}

	a, err := agent.New(house.Name, house.Structure, house.Equipment, house.Schedule, house.Bidding)
	if err != nil {
		badRequest(c, "INVALID_HOUSE", err)
		return
	}

	// The engine plans a full window ahead of every simulated hour, so the
	// forecast has to outlast the horizon by the planning window.
	slots := req.Run.Hours + a.Window()
	f, err := fetchForecast(req.Forecast, req.Run.Start, slots, house.Location)
	if err != nil {
		serverErrorResponse(c, err)
		return
	}

	engine := sim.New(sim.Config{
		Start:         req.Run.Start,
		Hours:         req.Run.Hours,
		Mode:          mode,
		WaterHeaterKW: req.Run.WaterHeaterKW,
	})
	market := &agent.PriceSeries{Start: req.Run.Start, Slot: time.Hour, Prices: f.Price}

	result, err := engine.Run(c.Request.Context(), a, f, market)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SIMULATION_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, h.buildResponse(house, mode, result, req.Options.IncludeLedger))
}

// CompareSimulations handles POST /api/v1/simulate/compare
func (h *SimulateHandler) CompareSimulations(c *gin.Context) {
	var req models.CompareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	// Validate API key when the forecast comes from the schedule server
	if req.Forecast.Type == "server" {
		if err := validateAPIKey(req.Forecast.APIKey); err != nil {
			badRequest(c, "INVALID_API_KEY", err)
			return
		}
	}

	mode, err := parseMode(req.Run.Mode)
	if err != nil {
		badRequest(c, "INVALID_MODE", err)
		return
	}

	base, err := resolveHouse(req.HouseFile, req.House)
	if err != nil {
		badRequest(c, "INVALID_HOUSE", err)
		return
	}

	// Resolve every variation before fetching, so one forecast covers the
	// widest planning window in the set.
	type variant struct {
		name  string
		house config.House
	}
	variants := make([]variant, 0, len(req.Variations))
	maxWindow := 0
	for _, v := range req.Variations {
		house := base
		if err := applyOverrides(&house, v.House); err != nil {
			continue // Skip invalid variations
		}
		if err := house.Validate(); err != nil {
			continue // Skip invalid variations
		}
		if house.Bidding.Window > maxWindow {
			maxWindow = house.Bidding.Window
		}
		variants = append(variants, variant{name: v.Name, house: house})
	}
	if len(variants) == 0 {
		badRequest(c, "INVALID_VARIATIONS", fmt.Errorf("no valid variations to run"))
		return
	}

	f, err := fetchForecast(req.Forecast, req.Run.Start, req.Run.Hours+maxWindow, base.Location)
	if err != nil {
		serverErrorResponse(c, err)
		return
	}

	engine := sim.New(sim.Config{
		Start:         req.Run.Start,
		Hours:         req.Run.Hours,
		Mode:          mode,
		WaterHeaterKW: req.Run.WaterHeaterKW,
	})
	market := &agent.PriceSeries{Start: req.Run.Start, Slot: time.Hour, Prices: f.Price}

	comparison := make([]models.ComparisonResult, 0, len(variants))
	for _, v := range variants {
		a, err := agent.New(v.house.Name, v.house.Structure, v.house.Equipment, v.house.Schedule, v.house.Bidding)
		if err != nil {
			continue // Skip houses the thermal model rejects
		}
		result, err := engine.Run(c.Request.Context(), a, f, market)
		if err != nil {
			continue // Skip failed runs
		}
		comparison = append(comparison, models.ComparisonResult{
			Name:    v.name,
			Summary: h.buildSummary(v.house, mode, result),
		})
	}

	c.JSON(http.StatusOK, models.CompareResponse{Comparison: comparison})
}

// Helper methods

func (h *SimulateHandler) buildResponse(house config.House, mode model.ThermostatMode, result *sim.Result, includeLedger bool) models.SimulateResponse {
	response := models.SimulateResponse{
		Status:  "completed",
		Summary: h.buildSummary(house, mode, result),
	}

	if includeLedger {
		response.Ledger = h.convertLedger(result.Ledger)
	}

	return response
}

func (h *SimulateHandler) buildSummary(house config.House, mode model.ThermostatMode, result *sim.Result) models.SimulateSummary {
	summary := models.SimulateSummary{
		House:            house.Name,
		Mode:             string(mode),
		TotalPeriods:     len(result.Ledger),
		TotalEnergyKWH:   result.TotalEnergyKWH,
		TotalCost:        result.TotalCost,
		DiscomfortDegHrs: result.DiscomfortDegHrs,
		FinalIndoorTemp:  result.FinalIndoorTemp,
	}
	if result.TotalEnergyKWH > 0 {
		summary.AveragePriceKWH = result.TotalCost / result.TotalEnergyKWH
	}
	if len(result.Ledger) == 0 {
		return summary
	}

	period := house.Bidding.Period()
	summary.RunWindow = models.TimeWindow{
		Start: result.Ledger[0].Time,
		End:   result.Ledger[len(result.Ledger)-1].Time.Add(period),
	}

	// Group the periods the plant actually drew energy into per-day run
	// windows carrying an energy-weighted average price.
	type dayKey struct {
		Year  int
		Month time.Month
		Day   int
	}
	type windowData struct {
		window      models.TimeWindow
		totalCost   float64
		totalEnergy float64
	}

	byDay := make(map[dayKey]*windowData)
	var days []dayKey // ledger order, so windows come out chronological

	for _, row := range result.Ledger {
		if !row.HVACOn || row.EnergyKWH <= 0 {
			continue
		}
		day := dayKey{Year: row.Time.Year(), Month: row.Time.Month(), Day: row.Time.Day()}
		if win, exists := byDay[day]; exists {
			// Extend the window to include this period
			win.window.End = row.Time.Add(period)
			win.totalCost += row.Cost
			win.totalEnergy += row.EnergyKWH
		} else {
			byDay[day] = &windowData{
				window:      models.TimeWindow{Start: row.Time, End: row.Time.Add(period)},
				totalCost:   row.Cost,
				totalEnergy: row.EnergyKWH,
			}
			days = append(days, day)
		}
	}

	windows := make([]models.RunWindow, 0, len(days))
	for _, day := range days {
		win := byDay[day]
		avgPrice := 0.0
		if win.totalEnergy > 0 {
			avgPrice = win.totalCost / win.totalEnergy
		}
		windows = append(windows, models.RunWindow{
			TimeWindow:      win.window,
			AveragePriceKWH: avgPrice,
			EnergyKWH:       win.totalEnergy,
		})
	}
	summary.HVACRunWindows = windows

	return summary
}

func (h *SimulateHandler) convertLedger(ledger []sim.LedgerRow) []models.LedgerRow {
	result := make([]models.LedgerRow, len(ledger))
	for i, row := range ledger {
		result[i] = models.LedgerRow{
			Index:           row.Index,
			Time:            row.Time,
			Mode:            string(row.Mode),
			Price:           row.Price,
			AwardKW:         row.Award,
			CoolingSetpoint: row.CoolingSetpoint,
			HeatingSetpoint: row.HeatingSetpoint,
			IndoorAirTemp:   row.IndoorAirTemp,
			MassTemp:        row.MassTemp,
			OutsideAirTemp:  row.OutsideAirTemp,
			HVACOn:          row.HVACOn,
			HVACKW:          row.HVACKW,
			EnergyKWH:       row.EnergyKWH,
			Cost:            row.Cost,
			CumEnergyKWH:    row.CumEnergyKWH,
			CumCost:         row.CumCost,
		}
	}
	return result
}
