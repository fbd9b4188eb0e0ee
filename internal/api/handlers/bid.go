package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/agent"
	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/sim"
	"github.com/nathantgray/tesp/internal/strategy"
)

// BidHandler handles bid-related requests
type BidHandler struct{}

// NewBidHandler creates a new bid handler
func NewBidHandler() *BidHandler {
	return &BidHandler{}
}

// FormBid handles POST /api/v1/bid
func (h *BidHandler) FormBid(c *gin.Context) {
	var req models.BidRequest
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

	mode, err := parseMode(req.Mode)
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

	f, err := fetchForecast(req.Forecast, req.At, a.Window(), house.Location)
	if err != nil {
		serverErrorResponse(c, err)
		return
	}
	// Bid statistics read exactly the planning window, not whatever tail
	// the caller happened to supply.
	win, err := f.Slice(0, a.Window())
	if err != nil {
		badRequest(c, "INVALID_FORECAST", err)
		return
	}

	a.SetMode(mode)
	if req.IndoorAirTemp != nil {
		a.State.IndoorAirTemp = *req.IndoorAirTemp
		a.State.MassTemp = *req.IndoorAirTemp
	}

	simHour := sim.HourOfDay(req.At)
	dayOfWeek := sim.DayOfWeek(req.At)
	if err := a.PlanWindow(c.Request.Context(), win, simHour, dayOfWeek); err != nil {
		badRequest(c, "PLAN_ERROR", err)
		return
	}

	bid, err := a.FormBid(win, simHour, dayOfWeek)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "BID_ERROR",
				Message: err.Error(),
			},
		})
		return
	}

	c.JSON(http.StatusOK, h.buildBidResponse(a, mode, req, bid))
}

// AggregateBids handles POST /api/v1/bid/aggregate
func (h *BidHandler) AggregateBids(c *gin.Context) {
	var req models.AggregateBidRequest
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

	mode, err := parseMode(req.Mode)
	if err != nil {
		badRequest(c, "INVALID_MODE", err)
		return
	}

	// Resolve the whole fleet before fetching, so one forecast covers the
	// widest planning window. The fleet shares a feeder, so the first
	// house's location stands in for all of them.
	agents := make([]*agent.Agent, 0, len(req.Houses))
	maxWindow := 0
	var loc model.Location
	for _, fh := range req.Houses {
		house, err := resolveHouse(fh.HouseFile, fh.House)
		if err != nil {
			continue // Skip invalid houses
		}
		a, err := agent.New(house.Name, house.Structure, house.Equipment, house.Schedule, house.Bidding)
		if err != nil {
			continue // Skip houses the thermal model rejects
		}
		if len(agents) == 0 {
			loc = house.Location
		}
		if a.Window() > maxWindow {
			maxWindow = a.Window()
		}
		agents = append(agents, a)
	}
	if len(agents) == 0 {
		badRequest(c, "INVALID_HOUSES", fmt.Errorf("no house in the fleet could be built"))
		return
	}

	f, err := fetchForecast(req.Forecast, req.At, maxWindow, loc)
	if err != nil {
		serverErrorResponse(c, err)
		return
	}

	simHour := sim.HourOfDay(req.At)
	dayOfWeek := sim.DayOfWeek(req.At)

	bids := make([]strategy.Bid, 0, len(agents))
	responses := make([]models.BidResponse, 0, len(agents))
	for _, a := range agents {
		win, err := f.Slice(0, a.Window())
		if err != nil {
			continue // Window exceeds the fetched forecast
		}
		a.SetMode(mode)
		if err := a.PlanWindow(c.Request.Context(), win, simHour, dayOfWeek); err != nil {
			continue // Skip houses that fail to plan
		}
		bid, err := a.FormBid(win, simHour, dayOfWeek)
		if err != nil {
			continue // Skip houses that fail to bid
		}
		bids = append(bids, bid)
		responses = append(responses, models.BidResponse{
			House:   a.Name,
			Mode:    string(mode),
			At:      req.At,
			Bid:     bid[:],
			PlanKW:  planFirstSlot(a),
			RatedKW: a.State.HVACKW,
		})
	}
	if len(bids) == 0 {
		badRequest(c, "INVALID_HOUSES", fmt.Errorf("no house in the fleet produced a bid"))
		return
	}

	c.JSON(http.StatusOK, models.AggregateBidResponse{
		Bids:  responses,
		Curve: strategy.MarginalPriceCurve(bids, true),
	})
}

// Helper methods

func (h *BidHandler) buildBidResponse(a *agent.Agent, mode model.ThermostatMode, req models.BidRequest, bid strategy.Bid) models.BidResponse {
	return models.BidResponse{
		House:   a.Name,
		Mode:    string(mode),
		At:      req.At,
		Bid:     bid[:],
		PlanKW:  planFirstSlot(a),
		RatedKW: a.State.HVACKW,
	}
}

// planFirstSlot is the day-ahead quantity for the period being bid.
func planFirstSlot(a *agent.Agent) float64 {
	plan := a.Plan()
	if len(plan.Quantity) == 0 {
		return 0
	}
	return plan.Quantity[0]
}
