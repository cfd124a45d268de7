package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/city-weather/internal/autocomplete"
	"github.com/i474232898/city-weather/internal/debounce"
	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/lastcity"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/weather"
)

var madrid = weather.CityCandidate{Latitude: 40.4165, Longitude: -3.70256, DisplayName: "Madrid", Country: "Spain", PostalCodes: []string{"28001"}}

type stubGeocoder struct{}

func (stubGeocoder) Name() string { return "stub" }

func (stubGeocoder) Search(_ context.Context, query string, _ int) ([]weather.CityCandidate, error) {
	if strings.HasPrefix("Madrid", query) {
		return []weather.CityCandidate{madrid}, nil
	}
	return nil, nil
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchCurrent(_ context.Context, city weather.CityCandidate) (weather.Reading, error) {
	return weather.Reading{TemperatureC: 31, ApparentTemperatureC: 33, HumidityPct: 20, WindSpeedKmh: 9.5, WeatherCode: 0}, nil
}

type testApp struct {
	model  Model
	bridge *Bridge
	clock  *debounce.ManualClock
	kv     *store.MemoryStore
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	ctx := context.Background()
	p := i18n.NewPrinter("en")
	clock := debounce.NewManualClock(time.Date(2026, 6, 1, 8, 0, 0, 0, time.UTC))
	kv := store.NewMemoryStore()
	svc := weather.NewService(stubGeocoder{}, stubProvider{}, p)
	sync1 := func(fn func()) { fn() }

	bridge := NewBridge()
	sel := selection.New()
	disp := display.New(svc, lastcity.New(kv), bridge,
		display.WithClock(clock), display.WithRunner(sync1), display.WithPrinter(p))
	ac := autocomplete.New(svc, sel,
		autocomplete.WithClock(clock), autocomplete.WithRunner(sync1),
		autocomplete.WithPrinter(p), autocomplete.OnChange(bridge.Suggestions))
	unsubscribe := disp.Attach(ctx, sel)
	t.Cleanup(func() {
		unsubscribe()
		ac.Close()
		disp.Close()
	})

	return &testApp{model: NewModel(ctx, ac, disp, sel, p), bridge: bridge, clock: clock, kv: kv}
}

func (a *testApp) send(msg tea.Msg) {
	next, _ := a.model.Update(msg)
	a.model = next.(Model)
}

// pump feeds everything the controllers queued into the model.
func (a *testApp) pump() {
	for _, msg := range a.bridge.drain() {
		a.send(msg)
	}
}

func (a *testApp) typeText(s string) {
	for _, r := range s {
		a.send(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}})
	}
}

func TestSearchSelectAndRender(t *testing.T) {
	app := newTestApp(t)

	app.typeText("Mad")
	assert.Equal(t, "Mad", app.model.input.Value())
	assert.False(t, app.model.suggestions.Open)

	app.clock.Advance(autocomplete.DefaultDebounce)
	app.pump()
	require.True(t, app.model.suggestions.Open)
	assert.Contains(t, app.model.View(), "Madrid, Spain (28001)")

	app.send(tea.KeyMsg{Type: tea.KeyDown})
	assert.Contains(t, app.model.View(), "> Madrid, Spain (28001)")

	app.send(tea.KeyMsg{Type: tea.KeyEnter})
	app.pump()

	assert.Empty(t, app.model.input.Value())
	assert.Equal(t, "Currently showing: Madrid, Spain (28001)", app.model.input.Placeholder)
	require.NotNil(t, app.model.card)
	assert.Equal(t, "31°C", app.model.card.Temperature)
	assert.False(t, app.model.busy)
	assert.False(t, app.model.loading)
	assert.Equal(t, "Weather for Madrid: Clear sky, 31°C", app.model.announce)

	view := app.model.View()
	assert.Contains(t, view, "Madrid, Spain")
	assert.Contains(t, view, "Feels like 33°C")
	assert.Equal(t, 1, app.kv.Len())

	app.clock.Advance(display.DefaultThemeDelay)
	app.pump()
	assert.Equal(t, weather.ThemeSunny, app.model.theme)
}

func TestEscapeClosesSuggestions(t *testing.T) {
	app := newTestApp(t)
	app.typeText("Mad")
	app.clock.Advance(autocomplete.DefaultDebounce)
	app.pump()
	require.True(t, app.model.suggestions.Open)

	app.send(tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, app.model.suggestions.Open)
	assert.NotContains(t, app.model.View(), "Madrid, Spain")
}

func TestNoResultsRow(t *testing.T) {
	app := newTestApp(t)
	app.typeText("Zzz")
	app.clock.Advance(autocomplete.DefaultDebounce)
	app.pump()

	assert.Contains(t, app.model.View(), i18n.MsgNoResults)
	app.send(tea.KeyMsg{Type: tea.KeyEnter})
	app.pump()
	assert.Nil(t, app.model.card)
}

func TestClearCacheShortcut(t *testing.T) {
	app := newTestApp(t)
	app.typeText("Mad")
	app.clock.Advance(autocomplete.DefaultDebounce)
	app.pump()
	app.send(tea.KeyMsg{Type: tea.KeyDown})
	app.send(tea.KeyMsg{Type: tea.KeyEnter})
	app.pump()
	require.Equal(t, 1, app.kv.Len())

	app.send(tea.KeyMsg{Type: tea.KeyCtrlX})
	app.pump()
	assert.Equal(t, 0, app.kv.Len())
	assert.Equal(t, "Saved city cleared.", app.model.announce)
}

func TestOlderSuggestionsAreIgnored(t *testing.T) {
	app := newTestApp(t)
	app.send(suggestionsMsg(autocomplete.Snapshot{Version: 100, Open: true, Entries: []autocomplete.Entry{{Label: "new", Selectable: true}}}))
	app.send(suggestionsMsg(autocomplete.Snapshot{Version: 99, Open: true, Entries: []autocomplete.Entry{{Label: "old", Selectable: true}}}))

	require.Len(t, app.model.suggestions.Entries, 1)
	assert.Equal(t, "new", app.model.suggestions.Entries[0].Label)
}

func TestErrorCard(t *testing.T) {
	app := newTestApp(t)
	app.send(errorMsg{city: i18n.ErrorCity, condition: i18n.ErrorCondition})

	view := app.model.View()
	assert.Contains(t, view, i18n.ErrorCity)
	assert.Contains(t, view, i18n.ErrorCondition)
}

func TestErrorKeepsRestOfCard(t *testing.T) {
	app := newTestApp(t)
	app.send(cardMsg(display.Card{
		Temperature: "21°C", FeelsLike: "20°C", Condition: "Clear sky", Location: "Madrid, Spain",
		Humidity: "30%", Wind: "5.0 km/h", PostalHidden: true, Glyph: "*",
	}))
	app.send(errorMsg{city: i18n.ErrorCity, condition: i18n.ErrorCondition})

	view := app.model.View()
	assert.Contains(t, view, i18n.ErrorCity)
	assert.Contains(t, view, i18n.ErrorCondition)
	assert.Contains(t, view, "21°C")
	assert.Contains(t, view, "30%")
	assert.NotContains(t, view, "Madrid, Spain")
	assert.NotContains(t, view, "Clear sky")
}

func TestCtrlCQuits(t *testing.T) {
	app := newTestApp(t)
	_, cmd := app.model.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	require.NotNil(t, cmd)
	assert.Equal(t, tea.Quit(), cmd())
}

func TestBridgeDeliversInOrder(t *testing.T) {
	b := NewBridge()
	defer b.Stop()

	var mu sync.Mutex
	var got []tea.Msg
	done := make(chan struct{})
	b.ShowLoading(true)
	b.Announce("a")
	b.Start(func(msg tea.Msg) {
		mu.Lock()
		defer mu.Unlock()
		got = append(got, msg)
		if len(got) == 4 {
			close(done)
		}
	})
	b.Announce("b")
	b.ShowLoading(false)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("messages not delivered")
	}
	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []tea.Msg{loadingMsg(true), announceMsg("a"), announceMsg("b"), loadingMsg(false)}, got)
}
