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
	"golang.org/x/time/rate"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultGeocodingURL is Open-Meteo's geocoding search endpoint.
const DefaultGeocodingURL = "https://geocoding-api.open-meteo.com/v1/search"

// GeocodingProvider implements weather.Geocoder on the Open-Meteo geocoding API.
type GeocodingProvider struct {
	name     string
	baseURL  string
	language string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
}

// NewGeocodingProvider creates the provider. language is the two-letter code
// results are localized in; an empty baseURL selects the public endpoint.
func NewGeocodingProvider(client *http.Client, baseURL, language string) *GeocodingProvider {
	if baseURL == "" {
		baseURL = DefaultGeocodingURL
	}
	if language == "" {
		language = "en"
	}

	return &GeocodingProvider{
		name:     "openmeteo-geocoding",
		baseURL:  baseURL,
		language: language,
		httpCfg: HTTPClientConfig{
			Client:   client,
			Endpoint: "geocoding",
			// Searches happen while typing; a stale retry is worth less than
			// the next keystroke's query.
			Backoff: BackoffConfig{
				MaxRetries:      1,
				InitialInterval: 250 * time.Millisecond,
				MaxInterval:     time.Second,
			},
			Limiter: rate.NewLimiter(rate.Limit(5), 5),
		},
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

func (p *GeocodingProvider) Name() string {
	return p.name
}

type geocodingResult struct {
	Name      string   `json:"name"`
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Country   string   `json:"country"`
	Admin1    string   `json:"admin1"`
	Postcodes []string `json:"postcodes"`
}

// Search returns at most limit candidates in the order the API ranked them.
func (p *GeocodingProvider) Search(ctx context.Context, query string, limit int) ([]weather.CityCandidate, error) {
	if common.IsBlank(query) {
		return []weather.CityCandidate{}, nil
	}
	if limit <= 0 {
		limit = weather.MaxCandidates
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", query)
		values.Set("count", strconv.Itoa(limit))
		values.Set("language", p.language)
		values.Set("format", "json")

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, http.NoBody)
	}

	resp, err := doRequestWithResilience(ctx, p.httpCfg, p.circuit, buildRequest)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var payload struct {
		Results []geocodingResult `json:"results"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode geocoding response: %w", err)
	}

	out := make([]weather.CityCandidate, 0, len(payload.Results))
	for _, r := range payload.Results {
		if len(out) == limit {
			break
		}
		postcodes := r.Postcodes
		if postcodes == nil {
			postcodes = []string{}
		}
		out = append(out, weather.CityCandidate{
			Latitude:    r.Latitude,
			Longitude:   r.Longitude,
			DisplayName: r.Name,
			Country:     common.FirstNonEmpty(r.Country, r.Admin1),
			PostalCodes: postcodes,
		})
	}
	return out, nil
}
