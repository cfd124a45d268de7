package weather

import (
	"math"
	"slices"

	"golang.org/x/text/message"
)

// NewSnapshot combines a candidate and a provider reading into the snapshot
// the display renders. Temperatures and humidity are rounded to whole
// numbers, wind speed to one decimal place.
func NewSnapshot(city CityCandidate, r Reading, p *message.Printer) WeatherSnapshot {
	info := MapCondition(r.WeatherCode)

	text := info.Text
	if p != nil {
		text = p.Sprintf(info.Text)
	}

	return WeatherSnapshot{
		TemperatureC:  roundInt(r.TemperatureC),
		FeelsLikeC:    roundInt(r.ApparentTemperatureC),
		HumidityPct:   roundInt(r.HumidityPct),
		WindSpeedKmh:  math.Round(r.WindSpeedKmh*10) / 10,
		ConditionCode: r.WeatherCode,
		ConditionText: text,
		CityName:      city.DisplayName,
		Country:       city.Country,
		PostalCodes:   slices.Clone(city.PostalCodes),
	}
}

func roundInt(v float64) int {
	return int(math.Round(v))
}
