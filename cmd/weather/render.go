package main

import (
	"fmt"
	"io"
	"math"
	"time"

	"github.com/couchcryptid/weather-now/internal/domain"
)

const providerTimeLayout = "2006-01-02T15:04"

// renderCard writes a plain-text weather card for snap.
func renderCard(w io.Writer, snap domain.WeatherSnapshot) error {
	dateLine, timeLine := formatTimestamp(snap.Timestamp)

	_, err := fmt.Fprintf(w, `%s
%s
%s  %s

%s  %d°C
%s
Feels like %d°C

Feels Like  %d°C
Wind        %d km/h
Humidity    %d%%
`,
		snap.City,
		snap.Country,
		dateLine, timeLine,
		snap.Icon, roundHalfUp(snap.Temperature),
		snap.Condition,
		roundHalfUp(snap.FeelsLike),
		roundHalfUp(snap.FeelsLike),
		roundHalfUp(snap.WindSpeed),
		snap.Humidity,
	)
	return err
}

// formatTimestamp renders the provider's local timestamp as
// "Monday, January 1, 2024" and "12:00 PM". Unparseable values are shown raw.
func formatTimestamp(ts string) (date, clock string) {
	t, err := time.Parse(providerTimeLayout, ts)
	if err != nil {
		return ts, ""
	}
	return t.Format("Monday, January 2, 2006"), t.Format("03:04 PM")
}

// roundHalfUp rounds .5 toward positive infinity, so -2.5 shows as -2.
func roundHalfUp(v float64) int {
	return int(math.Floor(v + 0.5))
}
