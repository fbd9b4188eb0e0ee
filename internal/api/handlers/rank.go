package handlers

import (
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/analysis"
	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/data"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/schedule"
)

// RankHandler handles ranking-related requests
type RankHandler struct{}

// NewRankHandler creates a new rank handler
func NewRankHandler() *RankHandler {
	return &RankHandler{}
}

// RankHouses handles GET /api/v1/rank
func (h *RankHandler) RankHouses(c *gin.Context) {
	var req models.RankRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		badRequest(c, "INVALID_REQUEST", err)
		return
	}

	// Validate API key
	if err := validateAPIKey(req.APIKey); err != nil {
		badRequest(c, "INVALID_API_KEY", err)
		return
	}

	startTime, err := time.Parse("2006-01-02", req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "INVALID_DATE",
				Message: "start_date must be in YYYY-MM-DD format",
			},
		})
		return
	}

	hours := req.Hours
	if hours <= 0 {
		hours = 48
	}

	// Resolve the preset names to rank: the explicit list, or every
	// preset in the house roster.
	var names []string
	if req.Houses != "" {
		names = strings.Split(req.Houses, ",")
		for i := range names {
			names[i] = strings.TrimSpace(names[i])
		}
	} else if presets, err := data.LoadRoster(houseDir()); err == nil {
		for _, p := range presets {
			names = append(names, p.ID)
		}
	}
	if len(names) == 0 {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "HOUSES_REQUIRED",
				Message: "no house presets found; specify the houses query parameter (comma-separated)",
			},
		})
		return
	}

	// Fetch the price window once; every house is ranked against it.
	client := data.NewScheduleServerClient(req.APIKey, os.Getenv("SCHEDULE_SERVER_URL"))
	resp, err := client.QueryWindow(data.WindowParams{
		Series: req.Series,
		Start:  startTime,
		Hours:  hours,
	})
	if err != nil {
		serverErrorResponse(c, err)
		return
	}

	houses := make([]analysis.House, 0, len(names))
	for _, name := range names {
		house, err := resolveHouse(name, models.HouseOverrides{})
		if err != nil {
			log.Printf("RankHandler: Skipping house %s: %v", name, err)
			continue
		}
		structure, err := model.NewStructure(house.Structure)
		if err != nil {
			log.Printf("RankHandler: Skipping house %s: %v", name, err)
			continue
		}
		houses = append(houses, analysis.House{
			Name:      house.Name,
			Structure: structure,
			Equipment: model.NewEquipment(house.Equipment, structure),
			Schedule:  schedule.New(house.Schedule),
		})
	}

	ranked := analysis.RankBySavings(houses, req.Series, &resp.Window)

	// Apply limit
	limit := req.Limit
	if limit <= 0 {
		limit = 10
	}
	if limit > len(ranked) {
		limit = len(ranked)
	}
	ranked = ranked[:limit]

	rankings := make([]models.Ranking, len(ranked))
	for i, r := range ranked {
		rankings[i] = models.Ranking{
			Rank:          i + 1,
			House:         r.House,
			Series:        r.Series,
			Slots:         r.Slots,
			SpreadP95P05:  r.SpreadP95P05,
			MinPrice:      r.MinPrice,
			MaxPrice:      r.MaxPrice,
			StorageKWH:    r.StorageKWH,
			PowerKW:       r.PowerKW,
			OracleSavings: r.OracleSavings,
		}
	}

	c.JSON(http.StatusOK, models.RankResponse{Rankings: rankings})
}
