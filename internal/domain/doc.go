// Package domain models current-conditions lookups against the Open-Meteo APIs.
//
// # Data Sources
//
// Two public endpoints are chained for every search:
//
//	Geocoding: https://geocoding-api.open-meteo.com/v1/search
//	Forecast:  https://api.open-meteo.com/v1/forecast
//
// A city search resolves the name to coordinates first (forward geocoding) and
// then fetches conditions for those coordinates. A current-location search
// obtains device coordinates from a [Locator], reverse geocodes them for a
// display name, then fetches conditions.
//
// # Provider Conventions
//
// Current conditions:
//
//	current_weather.temperature  °C
//	current_weather.windspeed    km/h
//	current_weather.weathercode  WMO weather interpretation code
//	current_weather.time         local ISO-8601 minute, e.g. "2024-01-01T12:00"
//
// Hourly series:
//
//	hourly.time, hourly.relativehumidity_2m, hourly.apparent_temperature
//	One entry per hour starting at local midnight of the current day, so the
//	entry for the current hour sits at index 0–23. Entries may be null.
//
// Missing values:
//
//	Humidity defaults to 50 and feels-like defaults to the current temperature
//	when the hourly entry is null or the series is shorter than the index.
//	A geocoding reply without "country" yields the "Unknown" sentinel.
//
// Condition classification:
//
//	Thresholds are tested in ascending order and the first match wins:
//
//	  0 Clear | ≤3 Partly Cloudy | ≤48 Cloudy | ≤67 Rainy | ≤77 Snowy | else Stormy
//
// # Hour Index Resolution
//
// The hourly index is resolved by a [HourResolver]. [WallClockHour] uses the
// local hour of the package clock (see [SetClock]); [ProviderHour] matches the
// current observation time against hourly.time instead.
package domain
