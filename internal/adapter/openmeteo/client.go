package openmeteo

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/couchcryptid/weather-now/internal/config"
	"github.com/couchcryptid/weather-now/internal/domain"
	"github.com/couchcryptid/weather-now/internal/observability"
)

// Values of the api metric label.
const (
	apiForward  = "geocode_forward"
	apiReverse  = "geocode_reverse"
	apiForecast = "forecast"
)

// hourlyFields is the hourly series requested with every forecast.
const hourlyFields = "temperature_2m,relativehumidity_2m,apparent_temperature"

// Client implements domain.Geocoder and domain.ForecastProvider using the
// Open-Meteo geocoding and forecast APIs.
type Client struct {
	httpClient   *http.Client
	geocodingURL string
	forecastURL  string
	language     string
	metrics      *observability.Metrics
	logger       *slog.Logger
}

// NewClient creates an Open-Meteo client from the configured endpoints.
func NewClient(cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: cfg.HTTPTimeout,
		},
		geocodingURL: cfg.GeocodingBaseURL,
		forecastURL:  cfg.ForecastBaseURL,
		language:     cfg.GeocodingLanguage,
		metrics:      metrics,
		logger:       logger,
	}
}

// ForwardGeocode returns the single best match for a place name.
func (c *Client) ForwardGeocode(ctx context.Context, name string) (domain.GeocodingResult, error) {
	params := url.Values{
		"name":     {name},
		"count":    {"1"},
		"language": {c.language},
		"format":   {"json"},
	}
	return c.geocode(ctx, params, apiForward)
}

// ReverseGeocode returns the single best match for a coordinate pair.
func (c *Client) ReverseGeocode(ctx context.Context, lat, lon float64) (domain.GeocodingResult, error) {
	params := url.Values{
		"latitude":  {formatCoord(lat)},
		"longitude": {formatCoord(lon)},
		"count":     {"1"},
		"language":  {c.language},
		"format":    {"json"},
	}
	return c.geocode(ctx, params, apiReverse)
}

// CurrentConditions fetches the current-conditions block and hourly series.
// The provider infers the timezone from the coordinates.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (domain.Forecast, error) {
	params := url.Values{
		"latitude":        {formatCoord(lat)},
		"longitude":       {formatCoord(lon)},
		"current_weather": {"true"},
		"hourly":          {hourlyFields},
		"timezone":        {"auto"},
	}

	var resp forecastResponse
	if err := c.getJSON(ctx, c.forecastURL+"?"+params.Encode(), apiForecast, &resp); err != nil {
		return domain.Forecast{}, err
	}
	if resp.CurrentWeather == nil {
		c.metrics.UpstreamRequests.WithLabelValues(apiForecast, "empty").Inc()
		return domain.Forecast{}, errors.New("forecast response missing current_weather")
	}
	c.metrics.UpstreamRequests.WithLabelValues(apiForecast, "success").Inc()

	cw := resp.CurrentWeather
	return domain.Forecast{
		Current: domain.CurrentWeather{
			Temperature: cw.Temperature,
			WindSpeed:   cw.WindSpeed,
			WeatherCode: cw.WeatherCode,
			Time:        cw.Time,
		},
		Hourly: domain.HourlySeries{
			Time:                resp.Hourly.Time,
			Temperature:         resp.Hourly.Temperature,
			RelativeHumidity:    resp.Hourly.RelativeHumidity,
			ApparentTemperature: resp.Hourly.ApparentTemperature,
		},
	}, nil
}

// geocode treats a rejected query as no match: a non-200 reply whose body is
// still JSON carries no results. Transport and decode failures stay errors.
func (c *Client) geocode(ctx context.Context, params url.Values, api string) (domain.GeocodingResult, error) {
	var resp geocodingResponse
	if err := c.getJSON(ctx, c.geocodingURL+"?"+params.Encode(), api, &resp); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.JSON {
			c.logger.Debug("geocoding query rejected", "api", api, "status", apiErr.StatusCode, "reason", apiErr.Reason)
			return domain.GeocodingResult{}, domain.ErrNoMatch
		}
		return domain.GeocodingResult{}, err
	}

	if len(resp.Results) == 0 {
		c.metrics.UpstreamRequests.WithLabelValues(api, "empty").Inc()
		return domain.GeocodingResult{}, domain.ErrNoMatch
	}
	c.metrics.UpstreamRequests.WithLabelValues(api, "success").Inc()

	r := resp.Results[0]
	return domain.GeocodingResult{
		Lat:     r.Latitude,
		Lon:     r.Longitude,
		Name:    r.Name,
		Country: r.Country,
	}, nil
}

// getJSON performs a GET and decodes a 200 response into v. Transport, status
// and decode failures are counted as errors; the caller records success.
func (c *Client) getJSON(ctx context.Context, fullURL, api string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues(api).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(api, "error").Inc()
		return fmt.Errorf("%s request: %w", api, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		c.metrics.UpstreamRequests.WithLabelValues(api, "error").Inc()
		return newAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		c.metrics.UpstreamRequests.WithLabelValues(api, "error").Inc()
		return fmt.Errorf("decode %s response: %w", api, err)
	}

	c.logger.Debug("open-meteo request complete", "api", api, "duration", time.Since(start))
	return nil
}

// APIError is a non-200 reply from an Open-Meteo endpoint. JSON reports
// whether the body decoded as a JSON object.
type APIError struct {
	StatusCode int
	Reason     string
	JSON       bool
	body       string
}

func (e *APIError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("open-meteo API error: status %d: %s", e.StatusCode, e.Reason)
	}
	return fmt.Sprintf("open-meteo API error: status %d: %s", e.StatusCode, e.body)
}

func newAPIError(resp *http.Response) *APIError {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	e := &APIError{StatusCode: resp.StatusCode, body: string(body)}
	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil {
		e.JSON = true
		e.Reason = parsed.Reason
	}
	return e
}

// formatCoord renders a coordinate in its shortest exact decimal form.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// Open-Meteo API response types.

type geocodingResponse struct {
	Results []geocodingResult `json:"results"`
}

type geocodingResult struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
}

type forecastResponse struct {
	CurrentWeather *currentWeather `json:"current_weather"`
	Hourly         hourlySeries    `json:"hourly"`
}

type currentWeather struct {
	Temperature float64 `json:"temperature"`
	WindSpeed   float64 `json:"windspeed"`
	WeatherCode int     `json:"weathercode"`
	Time        string  `json:"time"`
}

type hourlySeries struct {
	Time                []string   `json:"time"`
	Temperature         []*float64 `json:"temperature_2m"`
	RelativeHumidity    []*float64 `json:"relativehumidity_2m"`
	ApparentTemperature []*float64 `json:"apparent_temperature"`
}

type errorResponse struct {
	Error  bool   `json:"error"`
	Reason string `json:"reason"`
}
