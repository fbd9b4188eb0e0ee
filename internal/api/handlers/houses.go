package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/data"
)

// HouseHandler handles house preset requests
type HouseHandler struct {
	houseDir string
}

// NewHouseHandler creates a new house handler
func NewHouseHandler() *HouseHandler {
	dir := houseDir()
	log.Printf("HouseHandler: Using house directory: %s", dir)
	return &HouseHandler{houseDir: dir}
}

// GetHouseDir returns the house preset directory path
func (h *HouseHandler) GetHouseDir() string {
	return h.houseDir
}

// ListHouses handles GET /api/v1/houses
func (h *HouseHandler) ListHouses(c *gin.Context) {
	houses := []models.HouseInfo{}

	presets, err := data.LoadRoster(h.houseDir)
	if err != nil {
		// A missing preset directory is an empty catalog, not a failure.
		log.Printf("HouseHandler: Failed to read house directory %s: %v", h.houseDir, err)
		c.JSON(http.StatusOK, gin.H{"houses": houses})
		return
	}

	for _, p := range presets {
		houses = append(houses, models.HouseInfo{
			ID:   p.ID,
			Name: p.House.Name,
			File: p.Path,
			Specs: models.HouseSpecs{
				SquareFootage: p.House.Structure.SquareFootage,
				HeatingSystem: string(p.House.Equipment.HeatingSystem),
				CoolingCOP:    p.House.Equipment.CoolingCOP,
				Slider:        p.House.Schedule.Slider,
			},
		})
	}

	c.JSON(http.StatusOK, gin.H{"houses": houses})
}
