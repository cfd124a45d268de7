package weather

import (
	"context"
	"time"
)

// Reading is a provider's raw current-condition reading, before rounding
// and localization.
type Reading struct {
	ProviderName string
	Timestamp    time.Time

	TemperatureC         float64
	ApparentTemperatureC float64
	HumidityPct          float64
	WindSpeedKmh         float64
	WeatherCode          int
}

// Geocoder turns a free-text query into ranked city candidates.
type Geocoder interface {
	Name() string
	Search(ctx context.Context, query string, limit int) ([]CityCandidate, error)
}

// CurrentProvider fetches current conditions at a candidate's coordinates.
type CurrentProvider interface {
	Name() string
	FetchCurrent(ctx context.Context, city CityCandidate) (Reading, error)
}
