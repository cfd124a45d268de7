package weather

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather/internal/i18n"
)

type fakeGeocoder struct {
	mu      sync.Mutex
	calls   int
	results []CityCandidate
	err     error
}

func (f *fakeGeocoder) Name() string { return "fake-geocoder" }

func (f *fakeGeocoder) Search(_ context.Context, _ string, _ int) ([]CityCandidate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.results, f.err
}

type fakeProvider struct {
	reading Reading
	err     error
}

func (f *fakeProvider) Name() string { return "fake-weather" }

func (f *fakeProvider) FetchCurrent(_ context.Context, _ CityCandidate) (Reading, error) {
	return f.reading, f.err
}

var paris = CityCandidate{Latitude: 48.8534, Longitude: 2.3488, DisplayName: "Paris", Country: "France", PostalCodes: []string{"75001", "75002"}}

type blockingGeocoder struct {
	started chan struct{}
	release chan struct{}
	once    sync.Once
	ctxErr  error
}

func (g *blockingGeocoder) Name() string { return "blocking-geocoder" }

func (g *blockingGeocoder) Search(ctx context.Context, _ string, _ int) ([]CityCandidate, error) {
	g.once.Do(func() { close(g.started) })
	select {
	case <-g.release:
	case <-ctx.Done():
	}
	g.ctxErr = ctx.Err()
	if g.ctxErr != nil {
		return nil, g.ctxErr
	}
	return []CityCandidate{paris}, nil
}

func TestServiceSearchSurvivesFirstCallerCancel(t *testing.T) {
	g := &blockingGeocoder{started: make(chan struct{}), release: make(chan struct{})}
	s := NewService(g, nil, nil, WithSearchCacheTTL(0))

	ctx, cancel := context.WithCancel(context.Background())
	first := make(chan []CityCandidate)
	go func() { first <- s.Search(ctx, "Paris") }()
	<-g.started

	second := make(chan []CityCandidate)
	go func() { second <- s.Search(context.Background(), "Paris") }()

	cancel()
	assert.Empty(t, <-first)

	close(g.release)
	got := <-second
	require.Len(t, got, 1)
	assert.Equal(t, "Paris", got[0].DisplayName)
	assert.NoError(t, g.ctxErr)
}

func TestMapConditionFallback(t *testing.T) {
	assert.Equal(t, MapCondition(0), MapCondition(9999))
	assert.Equal(t, MapCondition(0), MapCondition(-1))
	assert.Equal(t, "Overcast", MapCondition(3).Text)
}

func TestConditionTableThemes(t *testing.T) {
	for _, code := range ConditionCodes() {
		info := MapCondition(code)
		assert.Equal(t, code, info.Code)
		assert.Contains(t, []Theme{ThemeSunny, ThemeCloudy}, info.Theme, "code %d", code)
		assert.NotEmpty(t, info.Icon, "code %d", code)
		assert.NotEqual(t, info.Text, i18n.NewPrinter("de").Sprintf(info.Text), "code %d has no German text", code)
	}
	assert.Equal(t, ThemeSunny, MapCondition(0).Theme)
	assert.Equal(t, ThemeSunny, MapCondition(1).Theme)
	assert.Equal(t, ThemeCloudy, MapCondition(61).Theme)
}

func TestNewSnapshotRounding(t *testing.T) {
	r := Reading{
		TemperatureC:         12.5,
		ApparentTemperatureC: -3.4,
		HumidityPct:          71.6,
		WindSpeedKmh:         14.26,
		WeatherCode:          3,
	}
	snap := NewSnapshot(paris, r, i18n.NewPrinter("en"))

	assert.Equal(t, 13, snap.TemperatureC)
	assert.Equal(t, -3, snap.FeelsLikeC)
	assert.Equal(t, 72, snap.HumidityPct)
	assert.InDelta(t, 14.3, snap.WindSpeedKmh, 1e-9)
	assert.Equal(t, "Overcast", snap.ConditionText)
	assert.Equal(t, "Paris", snap.CityName)
	assert.Equal(t, "France", snap.Country)
	assert.Equal(t, []string{"75001", "75002"}, snap.PostalCodes)
}

func TestServiceSearchBlankSkipsNetwork(t *testing.T) {
	g := &fakeGeocoder{results: []CityCandidate{paris}}
	s := NewService(g, nil, nil)

	assert.Empty(t, s.Search(context.Background(), ""))
	assert.Empty(t, s.Search(context.Background(), "   \t"))
	assert.Equal(t, 0, g.calls)
}

func TestServiceSearchFailureDegradesToEmpty(t *testing.T) {
	g := &fakeGeocoder{err: errors.New("connection refused")}
	s := NewService(g, nil, nil)

	got := s.Search(context.Background(), "Paris")
	require.NotNil(t, got)
	assert.Empty(t, got)
}

func TestServiceSearchCapsAndCaches(t *testing.T) {
	many := make([]CityCandidate, 7)
	for i := range many {
		many[i] = CityCandidate{Latitude: float64(i + 1), Longitude: 1, DisplayName: "Springfield"}
	}
	g := &fakeGeocoder{results: many}
	s := NewService(g, nil, nil)

	got := s.Search(context.Background(), "Springfield")
	require.Len(t, got, MaxCandidates)
	assert.InDelta(t, 1.0, got[0].Latitude, 0)

	again := s.Search(context.Background(), " springfield ")
	assert.Equal(t, got, again)
	assert.Equal(t, 1, g.calls)
}

func TestServiceSearchCacheDisabled(t *testing.T) {
	g := &fakeGeocoder{results: []CityCandidate{paris}}
	s := NewService(g, nil, nil, WithSearchCacheTTL(0))

	s.Search(context.Background(), "Paris")
	s.Search(context.Background(), "Paris")
	assert.Equal(t, 2, g.calls)
}

func TestServiceFetchCurrent(t *testing.T) {
	p := &fakeProvider{reading: Reading{TemperatureC: 18.2, ApparentTemperatureC: 17.5, HumidityPct: 40, WindSpeedKmh: 9.04, WeatherCode: 0}}
	s := NewService(nil, p, i18n.NewPrinter("de"))

	snap, err := s.FetchCurrent(context.Background(), paris)
	require.NoError(t, err)
	assert.Equal(t, 18, snap.TemperatureC)
	assert.Equal(t, 18, snap.FeelsLikeC)
	assert.Equal(t, "Klarer Himmel", snap.ConditionText)
}

func TestServiceFetchCurrentLocalizedError(t *testing.T) {
	cause := errors.New("server error")
	p := &fakeProvider{err: cause}
	s := NewService(nil, p, i18n.NewPrinter("de"))

	_, err := s.FetchCurrent(context.Background(), paris)
	require.Error(t, err)

	var fe *FetchError
	require.ErrorAs(t, err, &fe)
	assert.Equal(t, "Wetterdaten konnten nicht geladen werden.", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "Paris", fe.City)
}
