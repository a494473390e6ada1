package domain

import "context"

// GeocodingResult contains location data returned by a geocoding provider.
type GeocodingResult struct {
	Lat     float64
	Lon     float64
	Name    string
	Country string
}

// Geocoder resolves place names and coordinates.
// Both methods return ErrNoMatch when the provider has no result.
type Geocoder interface {
	// ForwardGeocode converts a place name to its best single match.
	ForwardGeocode(ctx context.Context, name string) (GeocodingResult, error)

	// ReverseGeocode converts coordinates to place details.
	ReverseGeocode(ctx context.Context, lat, lon float64) (GeocodingResult, error)
}

// ForecastProvider fetches current conditions plus the hourly series.
type ForecastProvider interface {
	CurrentConditions(ctx context.Context, lat, lon float64) (Forecast, error)
}

// Locator exposes the host's location capability.
type Locator interface {
	CurrentPosition(ctx context.Context) (Geo, error)
}

// Notifier receives user-facing notices when searches settle.
type Notifier interface {
	Notify(ctx context.Context, n Notice) error
}
