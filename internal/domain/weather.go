package domain

import "time"

const (
	// UnknownCountry is used when the geocoding provider omits a country.
	UnknownCountry = "Unknown"

	// CurrentLocationName is the display name used when reverse geocoding
	// cannot name the device position.
	CurrentLocationName = "Current Location"

	// DefaultIcon is the glyph shown on every card, regardless of condition.
	DefaultIcon = "☁️"
)

// Geo represents a WGS-84 latitude/longitude coordinate pair.
type Geo struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Location is the resolved identity for one search. It is built per search
// and dropped once the forecast has been fetched.
type Location struct {
	Geo     Geo
	City    string
	Country string
}

// CurrentWeather is the provider's current-conditions block.
type CurrentWeather struct {
	Temperature float64
	WindSpeed   float64
	WeatherCode int
	Time        string
}

// HourlySeries holds the hourly values requested alongside current conditions.
// Nil entries mark hours the provider returned as null.
type HourlySeries struct {
	Time                []string
	Temperature         []*float64
	RelativeHumidity    []*float64
	ApparentTemperature []*float64
}

// Forecast is the provider payload for a single coordinate pair.
type Forecast struct {
	Current CurrentWeather
	Hourly  HourlySeries
}

// WeatherSnapshot is the display record observed by the presentation layer.
type WeatherSnapshot struct {
	City        string  `json:"city"`
	Country     string  `json:"country"`
	Temperature float64 `json:"temperature"`
	Condition   string  `json:"condition"`
	FeelsLike   float64 `json:"feelsLike"`
	WindSpeed   float64 `json:"windSpeed"`
	Humidity    int     `json:"humidity"`
	Icon        string  `json:"icon"`
	Timestamp   string  `json:"timestamp"`
}

// NoticeKind distinguishes success notices from error notices.
type NoticeKind string

const (
	NoticeSuccess NoticeKind = "success"
	NoticeError   NoticeKind = "error"
)

// Notice is a user-facing message emitted when a search settles.
type Notice struct {
	SearchID  string     `json:"search_id"`
	Kind      NoticeKind `json:"kind"`
	Title     string     `json:"title"`
	Message   string     `json:"message"`
	City      string     `json:"city,omitempty"`
	Country   string     `json:"country,omitempty"`
	ErrorKind ErrorKind  `json:"error_kind,omitempty"`
	EmittedAt time.Time  `json:"emitted_at"`
}
