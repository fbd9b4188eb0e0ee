package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/api/models"
)

// StrategyHandler handles strategy-related requests
type StrategyHandler struct{}

// NewStrategyHandler creates a new strategy handler
func NewStrategyHandler() *StrategyHandler {
	return &StrategyHandler{}
}

// ListStrategies handles GET /api/v1/strategies
func (h *StrategyHandler) ListStrategies(c *gin.Context) {
	strategies := []models.StrategyInfo{
		{
			Name:        "optimized",
			Description: "Day-ahead consumption plan solved by dynamic programming over the forecast window, bid into the real-time market as four-point demand curves.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "window",
					Type:        "int",
					Description: "Number of hourly slots in the day-ahead planning window",
					Default:     48,
				},
				{
					Name:        "period_seconds",
					Type:        "int",
					Description: "Real-time market period in seconds (must divide one hour)",
					Default:     300,
				},
				{
					Name:        "profit_margin_intercept",
					Type:        "float",
					Description: "Percent margin applied to the bid price range at slider 1",
					Default:     10.0,
				},
				{
					Name:        "price_cap",
					Type:        "float",
					Description: "Upper bound on bid prices ($/kWh)",
					Default:     1.0,
				},
				{
					Name:        "optimizer_budget_ms",
					Type:        "int",
					Description: "Time budget for the day-ahead optimizer before it falls back to the closed-form plan",
					Default:     2000,
				},
			},
		},
		{
			Name:        "baseline",
			Description: "Closed-form schedule tracking without optimization. The plan holds the scheduled setpoint and bids reflect the deviation the comfort ramps allow.",
			Parameters: []models.ParameterInfo{
				{
					Name:        "window",
					Type:        "int",
					Description: "Number of hourly slots in the planning window",
					Default:     48,
				},
				{
					Name:        "period_seconds",
					Type:        "int",
					Description: "Real-time market period in seconds (must divide one hour)",
					Default:     300,
				},
				{
					Name:        "interpolation",
					Type:        "bool",
					Description: "Interpolate between plan slots when pricing mid-hour periods",
					Default:     true,
				},
			},
		},
	}

	c.JSON(http.StatusOK, gin.H{"strategies": strategies})
}
