package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/nathantgray/tesp/internal/api/models"
	"github.com/nathantgray/tesp/internal/config"
	"github.com/nathantgray/tesp/internal/data"
	"github.com/nathantgray/tesp/internal/model"
	"github.com/nathantgray/tesp/internal/sim"
)

// houseDir resolves the house preset directory. HOUSE_DIR wins; otherwise
// presets are looked up under examples/houses relative to the working
// directory.
func houseDir() string {
	dir := os.Getenv("HOUSE_DIR")
	if dir == "" {
		wd, err := os.Getwd()
		if err == nil {
			dir = filepath.Join(wd, "examples", "houses")
		} else {
			dir = "./examples/houses"
		}
	}
	if absDir, err := filepath.Abs(dir); err == nil {
		dir = absDir
	}
	return dir
}

// resolveHouse layers request overrides over a named preset, or over the
// reference house when no preset is named.
func resolveHouse(houseFile string, o models.HouseOverrides) (config.House, error) {
	h := config.DefaultHouse()
	if houseFile != "" {
		loaded, err := config.LoadHouse(filepath.Join(houseDir(), houseFile+".yaml"))
		if err != nil {
			return config.House{}, fmt.Errorf("house preset %q: %w", houseFile, err)
		}
		h = loaded
	}
	if err := applyOverrides(&h, o); err != nil {
		return config.House{}, err
	}
	if err := h.Validate(); err != nil {
		return config.House{}, err
	}
	return h, nil
}

func applyOverrides(h *config.House, o models.HouseOverrides) error {
	if o.Name != "" {
		h.Name = o.Name
	}
	if o.SquareFootage != nil {
		h.Structure.SquareFootage = *o.SquareFootage
	}
	if o.AirchangePerHour != nil {
		h.Structure.AirchangePerHour = *o.AirchangePerHour
	}
	if o.HeatingSystem != nil {
		hs, err := model.ParseHeatingSystemType(*o.HeatingSystem)
		if err != nil {
			return err
		}
		h.Equipment.HeatingSystem = hs
	}
	if o.CoolingCOP != nil {
		h.Equipment.CoolingCOP = *o.CoolingCOP
	}
	if o.HeatingCOP != nil {
		h.Equipment.HeatingCOP = *o.HeatingCOP
	}
	if o.Slider != nil {
		h.Schedule.Slider = *o.Slider
	}
	if o.Deadband != nil {
		h.Schedule.Deadband = *o.Deadband
	}
	if o.Optimize != nil {
		h.Bidding.Optimize = *o.Optimize
	}
	if o.ProfitMarginIntercept != nil {
		h.Bidding.ProfitMarginIntercept = *o.ProfitMarginIntercept
	}
	if o.Window != nil {
		h.Bidding.Window = *o.Window
	}
	if o.PeriodSeconds != nil {
		h.Bidding.PeriodSeconds = *o.PeriodSeconds
	}
	return nil
}

// parseMode maps the request mode onto a thermostat mode, defaulting to
// cooling when the request leaves it blank.
func parseMode(s string) (model.ThermostatMode, error) {
	if s == "" {
		return model.ModeCooling, nil
	}
	return model.ParseThermostatMode(s)
}

// fetchForecast resolves the forecast window for a run starting at start
// and covering at least slots hourly entries. Solar gains are derived
// against the house location when the source does not carry them.
func fetchForecast(src models.ForecastSource, start time.Time, slots int, loc model.Location) (*model.Forecast, error) {
	var f *model.Forecast
	switch src.Type {
	case "window":
		if src.Window == nil {
			return nil, fmt.Errorf("forecast.window is required when forecast.type is \"window\"")
		}
		f = src.Window
		if err := f.Validate(); err != nil {
			return nil, err
		}
	case "server":
		client := data.NewScheduleServerClient(src.APIKey, os.Getenv("SCHEDULE_SERVER_URL"))
		resp, err := client.QueryWindow(data.WindowParams{
			Series: src.Series,
			Start:  start,
			Hours:  slots,
		})
		if err != nil {
			return nil, err
		}
		f = &resp.Window
	default:
		return nil, fmt.Errorf("unsupported forecast source type: %s", src.Type)
	}
	if f.Window() < slots {
		return nil, fmt.Errorf("forecast covers %d slots, the run needs %d", f.Window(), slots)
	}
	if len(f.SolarGain) == 0 {
		f.FillSolarGain(loc, start.YearDay(), sim.HourOfDay(start))
	}
	return f, nil
}

// validateAPIKey performs basic validation on the API key
func validateAPIKey(apiKey string) error {
	if apiKey == "" {
		return fmt.Errorf("API key is required")
	}
	// Basic validation: reject obviously invalid keys
	if len(apiKey) < 10 {
		return fmt.Errorf("API key appears to be invalid (too short)")
	}
	// Reject keys that are just whitespace
	if len(strings.TrimSpace(apiKey)) == 0 {
		return fmt.Errorf("API key cannot be empty or whitespace")
	}
	return nil
}

// serverErrorResponse maps a forecast fetch failure onto an HTTP status.
// Schedule server auth failures pass through as 401 and rate limits as
// 429; everything else is a 400 carrying the upstream message.
func serverErrorResponse(c *gin.Context, err error) {
	var srvErr *data.ServerError
	if errors.As(err, &srvErr) {
		statusCode := http.StatusBadRequest
		if srvErr.StatusCode == http.StatusForbidden || srvErr.StatusCode == http.StatusUnauthorized {
			statusCode = http.StatusUnauthorized
		} else if srvErr.StatusCode == http.StatusTooManyRequests {
			statusCode = http.StatusTooManyRequests
		}
		c.JSON(statusCode, models.ErrorResponse{
			Error: models.ErrorDetail{
				Code:    srvErr.Code,
				Message: srvErr.Message,
				Details: map[string]interface{}{
					"status_code": srvErr.StatusCode,
					"retry_after": srvErr.RetryAfter,
				},
			},
		})
		return
	}
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    "FORECAST_FETCH_ERROR",
			Message: err.Error(),
		},
	})
}

// badRequest writes a 400 with the given error code.
func badRequest(c *gin.Context, code string, err error) {
	c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error: models.ErrorDetail{
			Code:    code,
			Message: err.Error(),
		},
	})
}
