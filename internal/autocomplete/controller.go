// Package autocomplete drives the city search box: it debounces keystrokes,
// queries the geocoder, keeps the suggestion list and keyboard cursor, and
// commits the chosen city to the shared selection.
package autocomplete

import (
	"context"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/common"
	"github.com/i474232898/city-weather/internal/debounce"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/metrics"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/weather"
)

// DefaultDebounce is the quiet period before a query is sent.
const DefaultDebounce = 300 * time.Millisecond

// State is the search session state.
type State int

const (
	StateIdle State = iota
	StateDebouncing
	StateQuerying
	StateShowingResults
	StateNavigating
	StateSelected
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDebouncing:
		return "debouncing"
	case StateQuerying:
		return "querying"
	case StateShowingResults:
		return "showing_results"
	case StateNavigating:
		return "navigating"
	case StateSelected:
		return "selected"
	default:
		return "unknown"
	}
}

// Searcher is what the controller queries. *weather.Service implements it.
type Searcher interface {
	Search(ctx context.Context, query string) []weather.CityCandidate
}

// Entry is one row of the suggestion list.
type Entry struct {
	Label      string
	Selectable bool
	// Selected marks the row under the keyboard cursor.
	Selected bool
	City     weather.CityCandidate
}

// Snapshot is an immutable copy of the controller state handed to views.
// Version increases with every change; views drop snapshots older than the
// last one they rendered.
type Snapshot struct {
	Version     uint64
	State       State
	Input       string
	Placeholder string
	Open        bool
	Entries     []Entry
	Index       int
}

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	searcher  Searcher
	selection *selection.Selection
	debouncer *debounce.Debouncer
	printer   *message.Printer
	run       func(func())
	onChange  func(Snapshot)

	ctx    context.Context
	cancel context.CancelFunc

	state       State
	input       string
	placeholder string
	open        bool
	candidates  []weather.CityCandidate
	index       int
	seq         uint64
	version     uint64
}

// Option customizes a Controller.
type Option func(*options)

type options struct {
	delay    time.Duration
	clock    debounce.Clock
	printer  *message.Printer
	run      func(func())
	onChange func(Snapshot)
}

// WithDebounce sets the quiet period.
func WithDebounce(d time.Duration) Option {
	return func(o *options) { o.delay = d }
}

// WithClock replaces the timer source.
func WithClock(c debounce.Clock) Option {
	return func(o *options) { o.clock = c }
}

// WithPrinter sets the printer for the placeholder and the "no results" row.
func WithPrinter(p *message.Printer) Option {
	return func(o *options) { o.printer = p }
}

// WithRunner replaces how queries are started. The default runs each query
// on its own goroutine.
func WithRunner(run func(func())) Option {
	return func(o *options) { o.run = run }
}

// OnChange registers the view callback.
func OnChange(f func(Snapshot)) Option {
	return func(o *options) { o.onChange = f }
}

// New creates a Controller that searches with s and commits to sel.
func New(s Searcher, sel *selection.Selection, opts ...Option) *Controller {
	o := options{
		delay: DefaultDebounce,
		run:   func(f func()) { go f() },
	}
	for _, opt := range opts {
		opt(&o)
	}
	if o.printer == nil {
		o.printer = message.NewPrinter(language.English)
	}

	ctx, cancel := context.WithCancel(context.Background())
	return &Controller{
		searcher:    s,
		selection:   sel,
		debouncer:   debounce.New(o.delay, o.clock),
		printer:     o.printer,
		run:         o.run,
		onChange:    o.onChange,
		ctx:         ctx,
		cancel:      cancel,
		index:       -1,
		placeholder: o.printer.Sprintf(i18n.MsgSearchHint),
	}
}

// Close stops pending timers and cancels in-flight queries.
func (c *Controller) Close() {
	c.debouncer.Cancel()
	c.cancel()
}

// Input records the text of the search box and restarts the debounce.
func (c *Controller) Input(text string) {
	c.mu.Lock()
	c.input = text
	c.state = StateDebouncing
	c.debouncer.Trigger(c.fire)
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// fire runs once the input has been quiet for the debounce period.
func (c *Controller) fire() {
	c.mu.Lock()
	query := strings.TrimSpace(c.input)
	if common.IsBlank(query) {
		c.closeLocked()
		c.state = StateIdle
		snap := c.snapshotLocked()
		c.mu.Unlock()
		c.notify(snap)
		return
	}

	c.seq++
	seq := c.seq
	c.state = StateQuerying
	snap := c.snapshotLocked()
	ctx := c.ctx
	c.mu.Unlock()
	c.notify(snap)

	logger.L().Debug("autocomplete_query", "query", query, "seq", seq)
	c.run(func() {
		results := c.searcher.Search(ctx, query)
		c.applyResults(seq, query, results)
	})
}

func (c *Controller) applyResults(seq uint64, query string, results []weather.CityCandidate) {
	c.mu.Lock()
	if seq != c.seq {
		c.mu.Unlock()
		metrics.StaleResponsesTotal.WithLabelValues("search").Inc()
		logger.L().Debug("autocomplete_stale_results", "query", query, "seq", seq, "latest", c.latestSeq())
		return
	}

	c.candidates = results
	c.open = true
	c.index = -1
	c.state = StateShowingResults
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

func (c *Controller) latestSeq() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// MoveDown advances the cursor, stopping at the last entry.
func (c *Controller) MoveDown() {
	c.move(1)
}

// MoveUp moves the cursor back, stopping at -1 (no entry).
func (c *Controller) MoveUp() {
	c.move(-1)
}

func (c *Controller) move(delta int) {
	c.mu.Lock()
	if !c.open || len(c.candidates) == 0 {
		c.mu.Unlock()
		return
	}

	next := c.index + delta
	if next > len(c.candidates)-1 {
		next = len(c.candidates) - 1
	}
	if next < -1 {
		next = -1
	}
	c.index = next
	if c.index >= 0 {
		c.state = StateNavigating
	} else {
		c.state = StateShowingResults
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Enter commits the entry under the cursor. It reports whether a city was
// committed; with no active entry nothing happens.
func (c *Controller) Enter() bool {
	c.mu.Lock()
	idx := c.index
	c.mu.Unlock()
	if idx < 0 {
		return false
	}
	return c.Commit(idx)
}

// Commit selects the entry at i, as a click on it would. It reports whether
// a city was committed; stale or out-of-range indexes are ignored so a
// selection fires at most once per open list.
func (c *Controller) Commit(i int) bool {
	c.mu.Lock()
	if !c.open || i < 0 || i >= len(c.candidates) {
		c.mu.Unlock()
		return false
	}

	city := c.candidates[i]
	label := FormatLabel(city)

	c.input = ""
	c.placeholder = c.printer.Sprintf(i18n.MsgCurrentlyShown, label)
	c.closeLocked()
	c.state = StateSelected
	c.debouncer.Cancel()
	// Results still in flight belong to a finished session.
	c.seq++
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	logger.L().Info("city_selected", "city", city.DisplayName, "country", city.Country)
	if c.selection != nil {
		c.selection.Select(city, label)
	}
	return true
}

// Escape closes the list and resets the cursor.
func (c *Controller) Escape() {
	c.dismiss()
}

// Blur closes the list when focus leaves both the input and the list.
func (c *Controller) Blur() {
	c.dismiss()
}

func (c *Controller) dismiss() {
	c.mu.Lock()
	if !c.open && c.index == -1 {
		c.mu.Unlock()
		return
	}
	c.closeLocked()
	c.state = StateIdle
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Snapshot returns the current state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) closeLocked() {
	c.open = false
	c.index = -1
	c.candidates = nil
}

func (c *Controller) snapshotLocked() Snapshot {
	c.version++
	snap := Snapshot{
		Version:     c.version,
		State:       c.state,
		Input:       c.input,
		Placeholder: c.placeholder,
		Open:        c.open,
		Index:       c.index,
	}
	if !c.open {
		return snap
	}
	if len(c.candidates) == 0 {
		snap.Entries = []Entry{{Label: c.printer.Sprintf(i18n.MsgNoResults)}}
		return snap
	}
	snap.Entries = make([]Entry, len(c.candidates))
	for i, city := range c.candidates {
		snap.Entries[i] = Entry{
			Label:      FormatLabel(city),
			Selectable: true,
			Selected:   i == c.index,
			City:       city,
		}
	}
	return snap
}

func (c *Controller) notify(s Snapshot) {
	if c.onChange != nil {
		c.onChange(s)
	}
}

// FormatLabel renders a candidate the same way for the list and for the
// committed selection: "Name, Country (first postal code)".
func FormatLabel(city weather.CityCandidate) string {
	var b strings.Builder
	b.WriteString(city.DisplayName)
	if !common.IsBlank(city.Country) {
		b.WriteString(", ")
		b.WriteString(city.Country)
	}
	if len(city.PostalCodes) > 0 && !common.IsBlank(city.PostalCodes[0]) {
		b.WriteString(" (")
		b.WriteString(city.PostalCodes[0])
		b.WriteString(")")
	}
	return b.String()
}
