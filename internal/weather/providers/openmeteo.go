package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultForecastURL is Open-Meteo's forecast endpoint.
const DefaultForecastURL = "https://api.open-meteo.com/v1/forecast"

// currentFields are the current-condition variables requested from Open-Meteo.
const currentFields = "temperature_2m,relative_humidity_2m,apparent_temperature,weather_code,wind_speed_10m"

// OpenMeteoProvider implements weather.CurrentProvider for Open-Meteo.
type OpenMeteoProvider struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoProvider creates the provider. An empty baseURL selects the
// public endpoint.
func NewOpenMeteoProvider(client *http.Client, baseURL string) *OpenMeteoProvider {
	if baseURL == "" {
		baseURL = DefaultForecastURL
	}

	return &OpenMeteoProvider{
		name:    "openmeteo",
		baseURL: baseURL,
		httpCfg: HTTPClientConfig{
			Client:   client,
			Endpoint: "forecast",
			Backoff: BackoffConfig{
				MaxRetries:      2,
				InitialInterval: 500 * time.Millisecond,
				MaxInterval:     5 * time.Second,
			},
		},
		circuit: newCircuitBreaker("openmeteo"),
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// FetchCurrent requests current conditions at the city's coordinates.
func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, city weather.CityCandidate) (weather.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", strconv.FormatFloat(city.Latitude, 'f', -1, 64))
		values.Set("longitude", strconv.FormatFloat(city.Longitude, 'f', -1, 64))
		values.Set("current", currentFields)
		values.Set("timezone", "auto")
		values.Set("forecast_days", "1")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return weather.Reading{}, err
	}
	defer resp.Body.Close()

	var payload struct {
		Current *struct {
			Time                string   `json:"time"`
			Temperature         *float64 `json:"temperature_2m"`
			RelativeHumidity    float64  `json:"relative_humidity_2m"`
			ApparentTemperature float64  `json:"apparent_temperature"`
			WeatherCode         int      `json:"weather_code"`
			WindSpeed           float64  `json:"wind_speed_10m"`
		} `json:"current"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return weather.Reading{}, fmt.Errorf("decode forecast response: %w", err)
	}
	if payload.Current == nil || payload.Current.Temperature == nil {
		return weather.Reading{}, fmt.Errorf("forecast response has no current conditions")
	}

	// Open-Meteo reports local time without an offset when timezone=auto.
	ts, err := time.Parse("2006-01-02T15:04", payload.Current.Time)
	if err != nil {
		ts = time.Now().UTC()
	}

	return weather.Reading{
		ProviderName:         p.name,
		Timestamp:            ts,
		TemperatureC:         *payload.Current.Temperature,
		ApparentTemperatureC: payload.Current.ApparentTemperature,
		HumidityPct:          payload.Current.RelativeHumidity,
		WindSpeedKmh:         payload.Current.WindSpeed,
		WeatherCode:          payload.Current.WeatherCode,
	}, nil
}
