package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/data"
)

// ListSeries handles GET /api/v1/series
func ListSeries(c *gin.Context) {
	list, err := data.LoadSeries(data.GetDefaultSeriesPath())
	if err != nil {
		// A catalog that was never prefetched is empty, not broken.
		if errors.Is(err, os.ErrNotExist) {
			c.JSON(http.StatusOK, gin.H{
				"series": []models.SeriesInfo{},
				"count":  0,
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    "SERIES_LOAD_ERROR",
				Message: fmt.Sprintf("Failed to load series catalog: %v", err),
			},
		})
		return
	}

	series := make([]models.SeriesInfo, len(list.Series))
	for i, s := range list.Series {
		series[i] = models.SeriesInfo{
			ID:     s.ID,
			Name:   s.Name,
			Market: s.Market,
			Zone:   s.Zone,
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"series":     series,
		"updated_at": list.UpdatedAt,
		"count":      len(series),
	})
}
