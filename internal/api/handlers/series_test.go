package handlers

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/data"
)

func seriesRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/api/v1/series", ListSeries)
	return router
}

func TestListSeries(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")
	list := &data.SeriesList{
		UpdatedAt: time.Date(2016, 8, 1, 0, 0, 0, 0, time.UTC),
		Series: []data.Series{
			{ID: "ercot_8500_hourly", Name: "ERCOT 8500 bus hourly", Market: "ERCOT", Zone: "LZ_SOUTH"},
			{ID: "pjm_da_hourly", Name: "PJM day-ahead hourly", Market: "PJM"},
		},
	}
	require.NoError(t, data.SaveSeries(path, list))
	t.Setenv("SERIES_FILE", path)

	w := doJSON(t, seriesRouter(), http.MethodGet, "/api/v1/series", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Series []models.SeriesInfo `json:"series"`
		Count  int                 `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Count)
	require.Len(t, resp.Series, 2)
	assert.Equal(t, "ercot_8500_hourly", resp.Series[0].ID)
	assert.Equal(t, "LZ_SOUTH", resp.Series[0].Zone)
	assert.Equal(t, "pjm_da_hourly", resp.Series[1].ID)
}

func TestListSeriesMissingCatalog(t *testing.T) {
	t.Setenv("SERIES_FILE", filepath.Join(t.TempDir(), "absent.json"))

	w := doJSON(t, seriesRouter(), http.MethodGet, "/api/v1/series", nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp struct {
		Count int `json:"count"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 0, resp.Count)
}

func TestListSeriesCorruptCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "series.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	t.Setenv("SERIES_FILE", path)

	w := doJSON(t, seriesRouter(), http.MethodGet, "/api/v1/series", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "SERIES_LOAD_ERROR", errorCode(t, w))
}
