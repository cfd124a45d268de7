package weather

import (
	"strconv"
)

// CityCandidate is one geocoded match for a free-text query. Candidates have
// no stable identity; their position in a result list is all that orders them.
type CityCandidate struct {
	Latitude    float64 `json:"latitude" validate:"required,latitude"`
	Longitude   float64 `json:"longitude" validate:"required,longitude"`
	DisplayName string  `json:"name" validate:"required"`
	Country     string  `json:"country,omitempty"`
	// PostalCodes may be empty; that is never an error.
	PostalCodes []string `json:"postcodes"`
}

// Key returns a canonical string key for this candidate's coordinates.
func (c CityCandidate) Key() string {
	return strconv.FormatFloat(c.Latitude, 'f', 4, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', 4, 64)
}

// WeatherSnapshot is one fetched reading for a candidate, already rounded
// and localized for display.
type WeatherSnapshot struct {
	TemperatureC  int      `json:"temperatureC"`
	FeelsLikeC    int      `json:"feelsLikeC"`
	HumidityPct   int      `json:"humidityPercent"`
	WindSpeedKmh  float64  `json:"windSpeedKmh"`
	ConditionCode int      `json:"conditionCode"`
	ConditionText string   `json:"conditionText"`
	CityName      string   `json:"cityName"`
	Country       string   `json:"country,omitempty"`
	PostalCodes   []string `json:"postcodes"`
}

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear  Condition = "clear"
	ConditionCloudy Condition = "cloudy"
	ConditionFog    Condition = "fog"
	ConditionRain   Condition = "rain"
	ConditionSnow   Condition = "snow"
	ConditionStorm  Condition = "storm"
)

// Theme is the background bucket a condition renders with.
type Theme string

const (
	ThemeSunny  Theme = "sunny"
	ThemeCloudy Theme = "cloudy"
)
