package autocomplete

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/i474232898/city-weather/internal/debounce"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/weather"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

var (
	berlin = weather.CityCandidate{Latitude: 52.52437, Longitude: 13.41053, DisplayName: "Berlin", Country: "Germany", PostalCodes: []string{"10115", "10117"}}
	bern   = weather.CityCandidate{Latitude: 46.94809, Longitude: 7.44744, DisplayName: "Bern", Country: "Switzerland"}
	paris  = weather.CityCandidate{Latitude: 48.85341, Longitude: 2.3488, DisplayName: "Paris", Country: "France", PostalCodes: []string{"75001"}}
)

type fakeSearcher struct {
	mu      sync.Mutex
	queries []string
	results map[string][]weather.CityCandidate
}

func (f *fakeSearcher) Search(_ context.Context, query string) []weather.CityCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queries = append(f.queries, query)
	return f.results[query]
}

func (f *fakeSearcher) calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func sync1(f func()) { f() }

type harness struct {
	clock    *debounce.ManualClock
	searcher *fakeSearcher
	sel      *selection.Selection
	ctrl     *Controller
	events   []selection.Event
}

func newHarness(t *testing.T, opts ...Option) *harness {
	t.Helper()
	h := &harness{
		clock: debounce.NewManualClock(time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)),
		searcher: &fakeSearcher{results: map[string][]weather.CityCandidate{
			"Ber":   {berlin, bern},
			"Berl":  {berlin},
			"Paris": {paris},
		}},
		sel: selection.New(),
	}
	h.sel.Subscribe(func(ev selection.Event) { h.events = append(h.events, ev) })

	base := []Option{WithClock(h.clock), WithRunner(sync1)}
	h.ctrl = New(h.searcher, h.sel, append(base, opts...)...)
	t.Cleanup(h.ctrl.Close)
	return h
}

func (h *harness) typeText(text string) {
	h.ctrl.Input(text)
	h.clock.Advance(DefaultDebounce)
}

func TestRapidInputSendsOneQuery(t *testing.T) {
	h := newHarness(t)

	for _, text := range []string{"B", "Be", "Ber", "Berl"} {
		h.ctrl.Input(text)
		h.clock.Advance(100 * time.Millisecond)
	}
	assert.Empty(t, h.searcher.calls())
	assert.Equal(t, StateDebouncing, h.ctrl.Snapshot().State)

	h.clock.Advance(DefaultDebounce)
	assert.Equal(t, []string{"Berl"}, h.searcher.calls())

	snap := h.ctrl.Snapshot()
	assert.Equal(t, StateShowingResults, snap.State)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "Berlin, Germany (10115)", snap.Entries[0].Label)
}

func TestSpacedInputQueriesEachTime(t *testing.T) {
	h := newHarness(t)

	h.typeText("Ber")
	h.typeText("Berl")
	assert.Equal(t, []string{"Ber", "Berl"}, h.searcher.calls())
}

func TestBlankInputClosesWithoutQuery(t *testing.T) {
	h := newHarness(t)

	h.typeText("Ber")
	require.True(t, h.ctrl.Snapshot().Open)

	h.typeText("   ")
	snap := h.ctrl.Snapshot()
	assert.False(t, snap.Open)
	assert.Empty(t, snap.Entries)
	assert.Equal(t, StateIdle, snap.State)
	assert.Equal(t, []string{"Ber"}, h.searcher.calls())
}

func TestNoResultsEntryIsNotSelectable(t *testing.T) {
	h := newHarness(t)

	h.typeText("Atlantis")
	snap := h.ctrl.Snapshot()
	require.True(t, snap.Open)
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, i18n.MsgNoResults, snap.Entries[0].Label)
	assert.False(t, snap.Entries[0].Selectable)

	h.ctrl.MoveDown()
	assert.Equal(t, -1, h.ctrl.Snapshot().Index)
	assert.False(t, h.ctrl.Commit(0))
	assert.False(t, h.ctrl.Enter())
	assert.Empty(t, h.events)
}

func TestKeyboardNavigationIsClamped(t *testing.T) {
	h := newHarness(t)
	h.typeText("Ber")

	h.ctrl.MoveUp()
	assert.Equal(t, -1, h.ctrl.Snapshot().Index)

	h.ctrl.MoveDown()
	h.ctrl.MoveDown()
	h.ctrl.MoveDown()
	snap := h.ctrl.Snapshot()
	assert.Equal(t, 1, snap.Index)
	assert.Equal(t, StateNavigating, snap.State)
	assert.False(t, snap.Entries[0].Selected)
	assert.True(t, snap.Entries[1].Selected)

	h.ctrl.MoveUp()
	h.ctrl.MoveUp()
	h.ctrl.MoveUp()
	snap = h.ctrl.Snapshot()
	assert.Equal(t, -1, snap.Index)
	assert.Equal(t, StateShowingResults, snap.State)
}

func TestEnterCommitsActiveEntryOnce(t *testing.T) {
	h := newHarness(t)
	h.typeText("Ber")

	assert.False(t, h.ctrl.Enter(), "enter without an active entry")

	h.ctrl.MoveDown()
	h.ctrl.MoveDown()
	require.True(t, h.ctrl.Enter())
	assert.False(t, h.ctrl.Enter())
	assert.False(t, h.ctrl.Commit(1))

	require.Len(t, h.events, 1)
	assert.Equal(t, bern, h.events[0].City)
	assert.Equal(t, "Bern, Switzerland", h.events[0].Label)

	snap := h.ctrl.Snapshot()
	assert.Equal(t, StateSelected, snap.State)
	assert.Empty(t, snap.Input)
	assert.Equal(t, "Currently showing: Bern, Switzerland", snap.Placeholder)
	assert.False(t, snap.Open)

	cur, ok := h.sel.Current()
	require.True(t, ok)
	assert.Equal(t, bern, cur.City)
}

func TestCommitByIndex(t *testing.T) {
	h := newHarness(t)
	h.typeText("Ber")

	assert.False(t, h.ctrl.Commit(5))
	require.True(t, h.ctrl.Commit(0))
	require.Len(t, h.events, 1)
	assert.Equal(t, berlin, h.events[0].City)
}

func TestEscapeAndBlurClose(t *testing.T) {
	h := newHarness(t)

	h.typeText("Ber")
	h.ctrl.MoveDown()
	h.ctrl.Escape()
	snap := h.ctrl.Snapshot()
	assert.False(t, snap.Open)
	assert.Equal(t, -1, snap.Index)
	assert.Equal(t, "Ber", snap.Input)

	h.typeText("Berl")
	h.ctrl.Blur()
	assert.False(t, h.ctrl.Snapshot().Open)
	assert.Empty(t, h.events)
}

func TestStaleResultsAreDropped(t *testing.T) {
	var queued []func()
	h := newHarness(t, WithRunner(func(f func()) { queued = append(queued, f) }))

	h.typeText("Ber")
	h.typeText("Paris")
	require.Len(t, queued, 2)

	// The newer query answers first, then the older one arrives.
	queued[1]()
	queued[0]()

	snap := h.ctrl.Snapshot()
	require.Len(t, snap.Entries, 1)
	assert.Equal(t, "Paris, France (75001)", snap.Entries[0].Label)
}

func TestResultsAfterCommitAreDropped(t *testing.T) {
	var queued []func()
	h := newHarness(t)
	h.typeText("Ber")

	h.ctrl.run = func(f func()) { queued = append(queued, f) }
	h.typeText("Paris")
	require.True(t, h.ctrl.Commit(0))
	require.Len(t, queued, 1)

	queued[0]()
	assert.False(t, h.ctrl.Snapshot().Open)
}

func TestCommitCancelsPendingDebounce(t *testing.T) {
	h := newHarness(t)
	h.typeText("Ber")

	h.ctrl.Input("Berl")
	require.True(t, h.ctrl.Commit(0))
	h.clock.Advance(time.Second)

	assert.Equal(t, []string{"Ber"}, h.searcher.calls())
	assert.Equal(t, StateSelected, h.ctrl.Snapshot().State)
}

func TestOnChangeVersionsIncrease(t *testing.T) {
	var versions []uint64
	h := newHarness(t, OnChange(func(s Snapshot) { versions = append(versions, s.Version) }))

	h.typeText("Ber")
	h.ctrl.MoveDown()
	require.NotEmpty(t, versions)
	for i := 1; i < len(versions); i++ {
		assert.Greater(t, versions[i], versions[i-1])
	}
}

func TestGermanPlaceholder(t *testing.T) {
	h := newHarness(t, WithPrinter(i18n.NewPrinter("de")))
	assert.Equal(t, "Stadt suchen...", h.ctrl.Snapshot().Placeholder)

	h.typeText("Paris")
	require.True(t, h.ctrl.Commit(0))
	assert.Equal(t, "Aktuell angezeigt: Paris, France (75001)", h.ctrl.Snapshot().Placeholder)
}

func TestFormatLabel(t *testing.T) {
	tests := []struct {
		name string
		city weather.CityCandidate
		want string
	}{
		{"full", berlin, "Berlin, Germany (10115)"},
		{"no postal", bern, "Bern, Switzerland"},
		{"no country", weather.CityCandidate{DisplayName: "Nowhere", PostalCodes: []string{"1"}}, "Nowhere (1)"},
		{"blank postal", weather.CityCandidate{DisplayName: "X", Country: "Y", PostalCodes: []string{""}}, "X, Y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatLabel(tt.city))
		})
	}
}

func TestRealRunner(t *testing.T) {
	s := &fakeSearcher{results: map[string][]weather.CityCandidate{"Paris": {paris}}}
	done := make(chan Snapshot, 8)
	ctrl := New(s, selection.New(), WithDebounce(5*time.Millisecond), OnChange(func(snap Snapshot) {
		if snap.State == StateShowingResults {
			done <- snap
		}
	}))
	defer ctrl.Close()

	ctrl.Input("Paris")
	select {
	case snap := <-done:
		require.Len(t, snap.Entries, 1)
		assert.Equal(t, paris, snap.Entries[0].City)
	case <-time.After(2 * time.Second):
		t.Fatal("no results delivered")
	}
}
