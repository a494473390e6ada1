package geolocation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/couchcryptid/weather-now/internal/domain"
)

// ErrUnavailable is returned when the lookup service cannot place the caller.
var ErrUnavailable = errors.New("position unavailable")

// IPLocator approximates the host position from its public IP address using
// an ip-api.com compatible JSON endpoint.
type IPLocator struct {
	httpClient *http.Client
	endpoint   string
	timeout    time.Duration
	logger     *slog.Logger
}

// NewIPLocator creates an IP-based locator. timeout bounds each lookup,
// standing in for a permission prompt that never resolves.
func NewIPLocator(endpoint string, timeout time.Duration, logger *slog.Logger) *IPLocator {
	return &IPLocator{
		httpClient: &http.Client{},
		endpoint:   endpoint,
		timeout:    timeout,
		logger:     logger,
	}
}

func (l *IPLocator) CurrentPosition(ctx context.Context) (domain.Geo, error) {
	ctx, cancel := context.WithTimeout(ctx, l.timeout)
	defer cancel()

	u := l.endpoint + "?" + url.Values{"fields": {"status,message,lat,lon"}}.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return domain.Geo{}, fmt.Errorf("create request: %w", err)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return domain.Geo{}, fmt.Errorf("ip lookup: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return domain.Geo{}, fmt.Errorf("ip lookup: status %d: %w", resp.StatusCode, ErrUnavailable)
	}

	var body ipResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return domain.Geo{}, fmt.Errorf("decode ip lookup: %w", err)
	}
	if body.Status != "success" {
		l.logger.Debug("ip lookup refused", "message", body.Message)
		return domain.Geo{}, fmt.Errorf("ip lookup: %s: %w", body.Message, ErrUnavailable)
	}

	return domain.Geo{Lat: body.Lat, Lon: body.Lon}, nil
}

type ipResponse struct {
	Status  string  `json:"status"`
	Message string  `json:"message"`
	Lat     float64 `json:"lat"`
	Lon     float64 `json:"lon"`
}
