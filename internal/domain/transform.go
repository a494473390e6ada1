package domain

import (
	"math"
	"time"
)

const (
	defaultHumidity = 50

	// providerTimeLayout is the minute-precision local time used by the
	// forecast API for current_weather.time and hourly.time.
	providerTimeLayout = "2006-01-02T15:04"
)

// Condition labels.
const (
	ConditionClear        = "Clear"
	ConditionPartlyCloudy = "Partly Cloudy"
	ConditionCloudy       = "Cloudy"
	ConditionRainy        = "Rainy"
	ConditionSnowy        = "Snowy"
	ConditionStormy       = "Stormy"
)

// ClassifyCondition maps a WMO weather code to a condition label. Thresholds
// are tested in ascending order, so negative codes fall into Partly Cloudy.
func ClassifyCondition(code int) string {
	switch {
	case code == 0:
		return ConditionClear
	case code <= 3:
		return ConditionPartlyCloudy
	case code <= 48:
		return ConditionCloudy
	case code <= 67:
		return ConditionRainy
	case code <= 77:
		return ConditionSnowy
	default:
		return ConditionStormy
	}
}

// HourResolver picks the hourly-series index that represents "now".
// A negative index means no entry applies and defaults are used.
type HourResolver interface {
	ResolveHour(f Forecast) int
}

// WallClockHour indexes the hourly series by the local hour of the package clock.
type WallClockHour struct{}

func (WallClockHour) ResolveHour(Forecast) int {
	return clock.Now().Hour()
}

// ProviderHour indexes the hourly series by matching the observation time of
// the current conditions, truncated to the hour, against hourly.time.
type ProviderHour struct{}

func (ProviderHour) ResolveHour(f Forecast) int {
	observed, err := time.Parse(providerTimeLayout, f.Current.Time)
	if err != nil {
		return -1
	}
	want := observed.Truncate(time.Hour).Format(providerTimeLayout)
	for i, ts := range f.Hourly.Time {
		if ts == want {
			return i
		}
	}
	return -1
}

// Normalize maps a forecast payload and its resolved location into the
// display snapshot, reading hourly values at index hour.
func Normalize(f Forecast, loc Location, hour int) WeatherSnapshot {
	humidity, ok := valueAt(f.Hourly.RelativeHumidity, hour)
	if !ok {
		humidity = defaultHumidity
	}
	feelsLike, ok := valueAt(f.Hourly.ApparentTemperature, hour)
	if !ok {
		feelsLike = f.Current.Temperature
	}

	return WeatherSnapshot{
		City:        loc.City,
		Country:     loc.Country,
		Temperature: f.Current.Temperature,
		Condition:   ClassifyCondition(f.Current.WeatherCode),
		FeelsLike:   feelsLike,
		WindSpeed:   f.Current.WindSpeed,
		Humidity:    int(math.Round(humidity)),
		Icon:        DefaultIcon,
		Timestamp:   f.Current.Time,
	}
}

// valueAt returns series[i] when it exists and is not null.
func valueAt(series []*float64, i int) (float64, bool) {
	if i < 0 || i >= len(series) || series[i] == nil {
		return 0, false
	}
	return *series[i], true
}
