package data

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/nathantgray/tesp/internal/metrics"
	"github.com/nathantgray/tesp/internal/model"
)

// ScheduleServerClient fetches forecast windows from a schedule server.
type ScheduleServerClient struct {
	APIKey  string
	BaseURL string
	Client  *http.Client
}

// NewScheduleServerClient creates a new schedule server client.
// If baseURL is empty, defaults to "http://localhost:5150".
func NewScheduleServerClient(apiKey string, baseURL string) *ScheduleServerClient {
	if baseURL == "" {
		baseURL = "http://localhost:5150"
	}
	return &ScheduleServerClient{
		APIKey:  apiKey,
		BaseURL: baseURL,
		Client: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WindowParams defines parameters for querying a forecast window.
type WindowParams struct {
	Series string    // e.g. "ercot_8500_hourly"
	Start  time.Time // first slot of the window
	Hours  int       // window length in hourly slots
}

// WindowResponse is the schedule server's window payload. The same shape
// is written to fixture files by the prefetch tool.
type WindowResponse struct {
	Series string         `json:"series"`
	Start  time.Time      `json:"start"`
	Hours  int            `json:"hours"`
	Window model.Forecast `json:"window"`
}

// ServerError represents an error from the schedule server.
type ServerError struct {
	StatusCode int
	Code       string
	Message    string
	RetryAfter string // For rate limit errors
}

func (e *ServerError) Error() string {
	return e.Message
}

// QueryWindow fetches one forecast window.
//
// If caching is enabled (ENABLE_SCHEDULE_CACHE=true), responses may be
// served from memory; see WindowCache for when that is appropriate.
func (c *ScheduleServerClient) QueryWindow(params WindowParams) (*WindowResponse, error) {
	if err := c.validateAPIKey(); err != nil {
		return nil, err
	}

	cache := GetCache()
	if cache != nil {
		cacheKey := GenerateWindowKey(params)
		if cached, found := cache.Get(cacheKey); found {
			log.Printf("[ScheduleServer] Cache hit: %d-slot window (series=%s, start=%s)",
				cached.Window.Window(), params.Series, params.Start.Format(time.RFC3339))
			metrics.ForecastRequests.WithLabelValues("cache_hit").Inc()
			return cached, nil
		}
	}

	if params.Series == "" {
		return nil, fmt.Errorf("series is required")
	}
	if params.Start.IsZero() {
		return nil, fmt.Errorf("start is required")
	}
	if params.Hours <= 0 {
		return nil, fmt.Errorf("hours must be positive")
	}

	// Build URL: /v1/series/{series}/window
	u, err := url.Parse(c.BaseURL + "/v1/series/" + url.PathEscape(params.Series) + "/window")
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}
	q := u.Query()
	q.Set("start", params.Start.Format(time.RFC3339))
	q.Set("hours", strconv.Itoa(params.Hours))
	u.RawQuery = q.Encode()

	log.Printf("[ScheduleServer] Request: GET %s (series=%s, start=%s, hours=%d)",
		u.Path, params.Series, params.Start.Format(time.RFC3339), params.Hours)

	req, err := http.NewRequest("GET", u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("x-api-key", c.APIKey)
	req.Header.Set("Accept", "application/json")

	startTime := time.Now()
	resp, err := c.Client.Do(req)
	duration := time.Since(startTime)
	if err != nil {
		log.Printf("[ScheduleServer] Request failed: %v (duration: %v)", err, duration)
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	log.Printf("[ScheduleServer] Response: %d %s (duration: %v, series=%s)",
		resp.StatusCode, resp.Status, duration, params.Series)

	switch resp.StatusCode {
	case http.StatusOK:
		// Success, continue
	case http.StatusUnauthorized:
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Code:       "UNAUTHORIZED",
			Message:    "Unauthorized: Invalid API key",
		}
	case http.StatusForbidden:
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Code:       "INVALID_API_KEY",
			Message:    "Invalid API key or insufficient permissions",
		}
	case http.StatusNotFound:
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Code:       "SERIES_NOT_FOUND",
			Message:    fmt.Sprintf("Series %q is not published by this server", params.Series),
		}
	case http.StatusTooManyRequests:
		retryAfter := resp.Header.Get("Retry-After")
		log.Printf("[ScheduleServer] Error: 429 Rate Limit Exceeded - Retry after: %s (series=%s)",
			retryAfter, params.Series)
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Code:       "RATE_LIMIT_EXCEEDED",
			Message:    fmt.Sprintf("Rate limit exceeded. Retry after: %s", retryAfter),
			RetryAfter: retryAfter,
		}
	default:
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, &ServerError{
			StatusCode: resp.StatusCode,
			Code:       "API_ERROR",
			Message:    fmt.Sprintf("API returned status %d: %s", resp.StatusCode, resp.Status),
		}
	}

	var result WindowResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		log.Printf("[ScheduleServer] Error decoding response: %v (series=%s)", err, params.Series)
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if err := result.Window.Validate(); err != nil {
		metrics.ForecastRequests.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("schedule server window is malformed: %w", err)
	}

	log.Printf("[ScheduleServer] Success: Received %d-slot window (series=%s)",
		result.Window.Window(), params.Series)
	metrics.ForecastRequests.WithLabelValues("fetched").Inc()

	if cache := GetCache(); cache != nil {
		cache.Set(GenerateWindowKey(params), &result)
		log.Printf("[ScheduleServer] Cached response (series=%s)", params.Series)
	}

	return &result, nil
}

// validateAPIKey rejects obviously bad keys before spending a request.
func (c *ScheduleServerClient) validateAPIKey() error {
	if c.APIKey == "" {
		return &ServerError{
			StatusCode: 0,
			Code:       "MISSING_API_KEY",
			Message:    "API key is required",
		}
	}
	if len(c.APIKey) < 10 {
		return &ServerError{
			StatusCode: 0,
			Code:       "INVALID_API_KEY_FORMAT",
			Message:    "API key appears to be invalid (too short)",
		}
	}
	return nil
}

// QueryWindowByString is a convenience method that parses a date string.
// startDate should be in "YYYY-MM-DD" format; the window starts at
// midnight UTC of that day.
func (c *ScheduleServerClient) QueryWindowByString(series, startDate string, hours int) (*WindowResponse, error) {
	start, err := time.Parse("2006-01-02", startDate)
	if err != nil {
		return nil, fmt.Errorf("invalid start_date format (expected YYYY-MM-DD): %w", err)
	}
	return c.QueryWindow(WindowParams{
		Series: series,
		Start:  start,
		Hours:  hours,
	})
}
