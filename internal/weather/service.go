package weather

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/sync/singleflight"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/metrics"
)

const (
	// MaxCandidates caps how many matches a search returns.
	MaxCandidates = 5
	// DefaultSearchTimeout bounds a geocoding call shared by several callers.
	DefaultSearchTimeout = 10 * time.Second
)

// Service is the single entry point the controllers and the HTTP API use to
// reach the geocoding and weather providers. It owns the failure policies:
// search failures degrade to no matches, weather failures are surfaced as a
// localized *FetchError.
type Service struct {
	geocoder Geocoder
	provider CurrentProvider
	printer  *message.Printer

	results       *cache.Cache
	group         singleflight.Group
	searchTimeout time.Duration
}

// ServiceOption customizes a Service.
type ServiceOption func(*Service)

// WithSearchCacheTTL sets how long successful search results are reused.
// Zero disables the cache.
func WithSearchCacheTTL(ttl time.Duration) ServiceOption {
	return func(s *Service) {
		if ttl <= 0 {
			s.results = nil
			return
		}
		s.results = cache.New(ttl, 2*ttl)
	}
}

// WithSearchTimeout bounds each shared geocoding call. It should match the
// HTTP client timeout.
func WithSearchTimeout(d time.Duration) ServiceOption {
	return func(s *Service) {
		if d > 0 {
			s.searchTimeout = d
		}
	}
}

// NewService creates a new Service. A nil printer means English.
func NewService(geocoder Geocoder, provider CurrentProvider, printer *message.Printer, opts ...ServiceOption) *Service {
	if printer == nil {
		printer = message.NewPrinter(language.English)
	}
	s := &Service{
		geocoder: geocoder,
		provider: provider,
		printer:  printer,
		results:  cache.New(10*time.Minute, 20*time.Minute),

		searchTimeout: DefaultSearchTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Printer returns the printer used for localized texts.
func (s *Service) Printer() *message.Printer {
	return s.printer
}

// Search returns up to MaxCandidates matches for query in the geocoder's
// relevance order. Blank queries return nothing without a network call, and
// failures are logged and reported as no matches.
func (s *Service) Search(ctx context.Context, query string) []CityCandidate {
	query = strings.TrimSpace(query)
	if common.IsBlank(query) || s.geocoder == nil {
		return []CityCandidate{}
	}

	key := strings.ToLower(query)
	if s.results != nil {
		if cached, ok := s.results.Get(key); ok {
			metrics.SearchCacheHitsTotal.Inc()
			return slices.Clone(cached.([]CityCandidate))
		}
	}

	// The shared call outlives any single caller's cancellation.
	ch := s.group.DoChan(key, func() (interface{}, error) {
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.searchTimeout)
		defer cancel()
		return s.geocoder.Search(sctx, query, MaxCandidates)
	})
	var res singleflight.Result
	select {
	case res = <-ch:
	case <-ctx.Done():
		return []CityCandidate{}
	}
	v, err, shared := res.Val, res.Err, res.Shared
	if err != nil {
		logger.L().Warn("geocoding_failed", "provider", s.geocoder.Name(), "query", query, "err", err)
		return []CityCandidate{}
	}

	found := v.([]CityCandidate)
	if len(found) > MaxCandidates {
		found = found[:MaxCandidates]
	}
	if s.results != nil {
		s.results.Set(key, found, cache.DefaultExpiration)
	}
	logger.L().Debug("geocoding_done", "query", query, "results", len(found), "shared", shared)
	return slices.Clone(found)
}

// FetchCurrent loads current conditions for city. Any failure is returned as
// a *FetchError carrying the localized user-facing message.
func (s *Service) FetchCurrent(ctx context.Context, city CityCandidate) (WeatherSnapshot, error) {
	if s.provider == nil {
		return WeatherSnapshot{}, s.fetchError(city, errors.New("no weather provider configured"))
	}

	reading, err := s.provider.FetchCurrent(ctx, city)
	if err != nil {
		fe := s.fetchError(city, fmt.Errorf("%s: %w", s.provider.Name(), err))
		logger.L().Error("weather_fetch_failed", "city", city.DisplayName, "err", fe.Detail())
		return WeatherSnapshot{}, fe
	}

	snap := NewSnapshot(city, reading, s.printer)
	logger.L().Debug("weather_fetch_done",
		"city", city.DisplayName,
		"temperature_c", snap.TemperatureC,
		"code", snap.ConditionCode,
	)
	return snap, nil
}

// ConditionText returns the localized description for code.
func (s *Service) ConditionText(code int) string {
	return s.printer.Sprintf(MapCondition(code).Text)
}

func (s *Service) fetchError(city CityCandidate, err error) *FetchError {
	return &FetchError{
		City:    city.DisplayName,
		Message: s.printer.Sprintf(i18n.MsgFetchFailed),
		Err:     err,
	}
}
