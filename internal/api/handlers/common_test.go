package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/model"
)

// testWindow builds a hot-afternoon forecast with a mild price ramp.
func testWindow(slots int) *model.Forecast {
	f := &model.Forecast{
		Price:          make([]float64, slots),
		OutsideAirTemp: make([]float64, slots),
		Humidity:       make([]float64, slots),
		SolarDirect:    make([]float64, slots),
		SolarDiffuse:   make([]float64, slots),
		InternalGain:   make([]float64, slots),
	}
	for i := 0; i < slots; i++ {
		f.Price[i] = 0.02 + 0.01*float64(i%4)
		f.OutsideAirTemp[i] = 95
		f.Humidity[i] = 0.5
		f.InternalGain[i] = 1000
	}
	return f
}

// fastBidding shrinks the planning window and slows the market cadence so
// runs stay small.
func fastBidding() models.HouseOverrides {
	window := 4
	period := 900
	return models.HouseOverrides{Window: &window, PeriodSeconds: &period}
}

func presetYAML(name string, sqft, slider float64) string {
	return fmt.Sprintf(`house:
  name: %s
  location:
    latitude: 30.266
    longitude: -97.733
    tz_offset: -6
  structure:
    sqft: %g
    doors: 2
    r_roof: 30
    r_wall: 19
    r_floor: 22
    r_doors: 5
    window_wall_ratio: 0.15
  schedule:
    slider: %g
  bidding:
    window: 4
    period_seconds: 900
`, name, sqft, slider)
}

func writePreset(t *testing.T, dir, file, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, file), []byte(content), 0o644))
}

// doJSON drives a router with a JSON request body.
func doJSON(t *testing.T, router http.Handler, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rdr = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rdr)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var resp models.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return resp.Error.Code
}

func TestParseMode(t *testing.T) {
	m, err := parseMode("")
	require.NoError(t, err)
	assert.Equal(t, model.ModeCooling, m)

	m, err = parseMode("heating")
	require.NoError(t, err)
	assert.Equal(t, model.ModeHeating, m)

	_, err = parseMode("TOASTY")
	assert.ErrorContains(t, err, "unknown thermostat mode")
}

func TestApplyOverrides(t *testing.T) {
	h := config.DefaultHouse()

	sqft := 3200.0
	ach := 0.6
	coolCOP := 4.2
	heatCOP := 4.5
	slider := 0.9
	deadband := 1.5
	optimize := false
	margin := 15.0
	window := 6
	period := 300
	heating := "GAS"

	err := applyOverrides(&h, models.HouseOverrides{
		Name:                  "custom",
		SquareFootage:         &sqft,
		AirchangePerHour:      &ach,
		HeatingSystem:         &heating,
		CoolingCOP:            &coolCOP,
		HeatingCOP:            &heatCOP,
		Slider:                &slider,
		Deadband:              &deadband,
		Optimize:              &optimize,
		ProfitMarginIntercept: &margin,
		Window:                &window,
		PeriodSeconds:         &period,
	})
	require.NoError(t, err)

	assert.Equal(t, "custom", h.Name)
	assert.Equal(t, 3200.0, h.Structure.SquareFootage)
	assert.Equal(t, 0.6, h.Structure.AirchangePerHour)
	assert.Equal(t, model.HeatingGas, h.Equipment.HeatingSystem)
	assert.Equal(t, 4.2, h.Equipment.CoolingCOP)
	assert.Equal(t, 4.5, h.Equipment.HeatingCOP)
	assert.Equal(t, 0.9, h.Schedule.Slider)
	assert.Equal(t, 1.5, h.Schedule.Deadband)
	assert.False(t, h.Bidding.Optimize)
	assert.Equal(t, 15.0, h.Bidding.ProfitMarginIntercept)
	assert.Equal(t, 6, h.Bidding.Window)
	assert.Equal(t, 300, h.Bidding.PeriodSeconds)
}

func TestApplyOverridesRejectsUnknownHeating(t *testing.T) {
	h := config.DefaultHouse()
	heating := "COAL"
	err := applyOverrides(&h, models.HouseOverrides{HeatingSystem: &heating})
	assert.ErrorContains(t, err, "unknown heating system")
}

func TestResolveHouseDefault(t *testing.T) {
	sqft := 1750.0
	h, err := resolveHouse("", models.HouseOverrides{Name: "tweaked", SquareFootage: &sqft})
	require.NoError(t, err)
	assert.Equal(t, "tweaked", h.Name)
	assert.Equal(t, 1750.0, h.Structure.SquareFootage)
}

func TestResolveHousePreset(t *testing.T) {
	dir := t.TempDir()
	writePreset(t, dir, "ranch.yaml", presetYAML("ranch-1800", 1800, 0.3))
	t.Setenv("HOUSE_DIR", dir)

	h, err := resolveHouse("ranch", models.HouseOverrides{})
	require.NoError(t, err)
	assert.Equal(t, "ranch-1800", h.Name)
	assert.Equal(t, 1800.0, h.Structure.SquareFootage)
	assert.Equal(t, 0.3, h.Schedule.Slider)
	assert.Equal(t, 4, h.Bidding.Window)
}

func TestResolveHouseMissingPreset(t *testing.T) {
	t.Setenv("HOUSE_DIR", t.TempDir())
	_, err := resolveHouse("ghost", models.HouseOverrides{})
	assert.ErrorContains(t, err, `house preset "ghost"`)
}

func TestResolveHouseRejectsOutOfRangeSlider(t *testing.T) {
	slider := 1.5
	_, err := resolveHouse("", models.HouseOverrides{Slider: &slider})
	assert.Error(t, err)
}

func TestFetchForecastWindowSource(t *testing.T) {
	loc := model.Location{Latitude: 30.266, Longitude: -97.733, TZOffset: -6}
	start := time.Date(2016, 8, 1, 0, 0, 0, 0, time.UTC)

	f, err := fetchForecast(models.ForecastSource{Type: "window", Window: testWindow(6)}, start, 6, loc)
	require.NoError(t, err)
	assert.Equal(t, 6, f.Window())
	assert.Len(t, f.SolarGain, 6)
}

func TestFetchForecastWindowTooShort(t *testing.T) {
	loc := model.Location{}
	start := time.Date(2016, 8, 1, 0, 0, 0, 0, time.UTC)

	_, err := fetchForecast(models.ForecastSource{Type: "window", Window: testWindow(3)}, start, 6, loc)
	assert.ErrorContains(t, err, "covers 3 slots")
}

func TestFetchForecastMissingWindow(t *testing.T) {
	_, err := fetchForecast(models.ForecastSource{Type: "window"}, time.Now(), 4, model.Location{})
	assert.ErrorContains(t, err, "forecast.window is required")
}

func TestFetchForecastUnsupportedType(t *testing.T) {
	_, err := fetchForecast(models.ForecastSource{Type: "crystal_ball"}, time.Now(), 4, model.Location{})
	assert.ErrorContains(t, err, "unsupported forecast source type")
}
