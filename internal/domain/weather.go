package domain

import "time"

// Weather is today's forecast snapshot. OK is false when the forecast could
// not be fetched; every other field is then zero.
type Weather struct {
	OK         bool
	MinC       float64
	MaxC       float64
	FeelsLikeC float64
	Sunrise    time.Time
	Sunset     time.Time
	Code       int
	HasCode    bool
}

// Unavailable is the sentinel returned when the forecast cannot be fetched.
var Unavailable = Weather{OK: false}

// Daylight returns the time between sunrise and sunset.
func (w Weather) Daylight() time.Duration {
	return w.Sunset.Sub(w.Sunrise)
}

// Condition returns a short label for the WMO weather code, or "" when the
// code is missing or unknown.
func (w Weather) Condition() string {
	if !w.HasCode {
		return ""
	}
	return wmoConditions[w.Code]
}

// WMO 4677 codes as used by Open-Meteo.
var wmoConditions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Fog",
	48: "Rime fog",
	51: "Light drizzle",
	53: "Drizzle",
	55: "Dense drizzle",
	56: "Freezing drizzle",
	57: "Dense freezing drizzle",
	61: "Light rain",
	63: "Rain",
	65: "Heavy rain",
	66: "Freezing rain",
	67: "Heavy freezing rain",
	71: "Light snow",
	73: "Snow",
	75: "Heavy snow",
	77: "Snow grains",
	80: "Light showers",
	81: "Showers",
	82: "Violent showers",
	85: "Snow showers",
	86: "Heavy snow showers",
	95: "Thunderstorm",
	96: "Thunderstorm with hail",
	99: "Thunderstorm with heavy hail",
}
