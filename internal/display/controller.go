// Package display owns the weather card: it resolves which city to show at
// startup, fetches weather for selected cities, and drives a View.
package display

import (
	"context"
	"sync"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/i474232898/city-weather/internal/debounce"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/lastcity"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/metrics"
	"github.com/i474232898/city-weather/internal/selection"
	"github.com/i474232898/city-weather/internal/weather"
)

const (
	DefaultThemeDelay  = 300 * time.Millisecond
	DefaultAnnounceTTL = 5 * time.Second
)

// DefaultCity is shown when nothing usable is cached.
var DefaultCity = weather.CityCandidate{
	Latitude:    52.52,
	Longitude:   13.405,
	DisplayName: "Berlin",
	Country:     "Germany",
	PostalCodes: []string{},
}

// View receives rendering commands. Calls may arrive from any goroutine.
type View interface {
	ShowLoading(on bool)
	ShowResult()
	SetBusy(busy bool, label string)
	Render(card Card)
	RenderError(city, condition string)
	ApplyTheme(theme weather.Theme)
	// Announce sets the live-region text; empty clears it.
	Announce(text string)
}

// Fetcher loads current weather. *weather.Service implements it.
type Fetcher interface {
	FetchCurrent(ctx context.Context, city weather.CityCandidate) (weather.WeatherSnapshot, error)
}

// Controller is safe for concurrent use.
type Controller struct {
	mu sync.Mutex

	fetcher Fetcher
	cache   *lastcity.Cache
	view    View
	printer *message.Printer
	clock   debounce.Clock
	run     func(func())

	defaultCity weather.CityCandidate
	maxAge      time.Duration
	themeDelay  time.Duration
	announceTTL time.Duration

	seq          uint64
	busy         int
	spinners     int
	current      *weather.CityCandidate
	currentLabel string
	themeTimer   debounce.Timer
	announceGen  uint64
	announceTmr  debounce.Timer
}

// Option customizes a Controller.
type Option func(*Controller)

func WithDefaultCity(c weather.CityCandidate) Option {
	return func(ctrl *Controller) { ctrl.defaultCity = c }
}

func WithMaxAge(d time.Duration) Option {
	return func(ctrl *Controller) { ctrl.maxAge = d }
}

// WithThemeDelay sets how long after a render the theme switches. Zero
// switches immediately.
func WithThemeDelay(d time.Duration) Option {
	return func(ctrl *Controller) { ctrl.themeDelay = d }
}

// WithAnnounceTTL sets how long an announcement stays before it is cleared.
// Zero keeps it.
func WithAnnounceTTL(d time.Duration) Option {
	return func(ctrl *Controller) { ctrl.announceTTL = d }
}

func WithPrinter(p *message.Printer) Option {
	return func(ctrl *Controller) { ctrl.printer = p }
}

func WithClock(c debounce.Clock) Option {
	return func(ctrl *Controller) { ctrl.clock = c }
}

// WithRunner replaces how selection-triggered fetches are started. The
// default runs each on its own goroutine.
func WithRunner(run func(func())) Option {
	return func(ctrl *Controller) { ctrl.run = run }
}

// New creates a Controller. cache may be nil, which disables persistence.
func New(f Fetcher, cache *lastcity.Cache, view View, opts ...Option) *Controller {
	c := &Controller{
		fetcher:     f,
		cache:       cache,
		view:        view,
		clock:       debounce.RealClock,
		run:         func(fn func()) { go fn() },
		defaultCity: DefaultCity,
		maxAge:      lastcity.DefaultMaxAge,
		themeDelay:  DefaultThemeDelay,
		announceTTL: DefaultAnnounceTTL,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.printer == nil {
		c.printer = message.NewPrinter(language.English)
	}
	return c
}

// Bootstrap shows the saved city, or the default city when nothing usable
// is saved. A failed first fetch is retried once with the default city; if
// that fails too the static error is rendered and returned. Nothing is
// written to the cache.
func (c *Controller) Bootstrap(ctx context.Context) error {
	seq := c.next()

	var (
		city   = c.defaultCity
		label  string
		cached bool
	)
	if c.cache != nil {
		if rec, ok := c.cache.Load(c.maxAge); ok {
			city, label, cached = rec.CityCandidate, rec.DisplayText, true
		}
	}
	if cached {
		c.view.ShowLoading(true)
	} else {
		c.view.ShowResult()
	}

	snap, err := c.fetcher.FetchCurrent(ctx, city)
	if err != nil {
		logger.L().Warn("bootstrap_fallback_default", "city", city.DisplayName, "err", err)
		city, label = c.defaultCity, ""
		snap, err = c.fetcher.FetchCurrent(ctx, city)
	}

	if !c.latest(seq) {
		c.dropStale(city)
		// A newer request showing the spinner owns it now.
		if cached && !c.spinning() {
			c.view.ShowLoading(false)
			c.view.ShowResult()
		}
		return nil
	}
	if cached {
		c.view.ShowLoading(false)
		c.view.ShowResult()
	}
	if err != nil {
		c.renderError()
		return err
	}
	c.show(seq, city, label, snap)
	return nil
}

// RequestWeather fetches and renders weather for city. The busy state is
// held for the duration and always released. On success the city is saved
// under label when persist is set and the result is announced. A result
// that arrives after a newer request started is dropped.
func (c *Controller) RequestWeather(ctx context.Context, city weather.CityCandidate, label string, persist, showSpinner bool) error {
	seq := c.next()
	c.beginBusy(showSpinner)
	defer c.endBusy(showSpinner)

	snap, err := c.fetcher.FetchCurrent(ctx, city)
	if !c.latest(seq) {
		c.dropStale(city)
		return nil
	}
	if err != nil {
		c.renderError()
		return err
	}

	if persist && c.cache != nil {
		c.cache.Save(city, label)
	}
	c.show(seq, city, label, snap)
	c.announce(c.printer.Sprintf(i18n.MsgAnnounce, snap.CityName, snap.ConditionText, snap.TemperatureC))
	return nil
}

// OnSelected handles a committed selection: fetch with the spinner and save
// the city on success. The fetch runs on the controller's runner so the
// caller is not blocked.
func (c *Controller) OnSelected(ctx context.Context, ev selection.Event) {
	c.run(func() {
		_ = c.RequestWeather(ctx, ev.City, ev.Label, true, true)
	})
}

// Attach subscribes the controller to sel and returns the unsubscribe func.
func (c *Controller) Attach(ctx context.Context, sel *selection.Selection) func() {
	return sel.Subscribe(func(ev selection.Event) { c.OnSelected(ctx, ev) })
}

// Submit re-requests the current selection, as the submit button does. It
// reports whether there was anything to submit.
func (c *Controller) Submit(ctx context.Context, sel *selection.Selection) bool {
	ev, ok := sel.Current()
	if !ok {
		return false
	}
	c.OnSelected(ctx, ev)
	return true
}

// Refresh re-fetches the city on screen without the spinner and without
// touching the cache. It is a no-op before anything has been rendered.
func (c *Controller) Refresh(ctx context.Context) error {
	city, label, ok := c.Current()
	if !ok {
		return nil
	}
	return c.RequestWeather(ctx, city, label, false, false)
}

// ClearCache forgets the saved city and announces the outcome.
func (c *Controller) ClearCache() {
	if c.cache != nil && !c.cache.Clear() {
		c.announce(c.printer.Sprintf(i18n.MsgCacheClearFail))
		return
	}
	c.announce(c.printer.Sprintf(i18n.MsgCacheCleared))
}

// Current returns the city on screen.
func (c *Controller) Current() (weather.CityCandidate, string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return weather.CityCandidate{}, "", false
	}
	return *c.current, c.currentLabel, true
}

// Busy reports whether a request holds the busy state.
func (c *Controller) Busy() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.busy > 0
}

// Close stops pending theme and announcement timers.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.themeTimer != nil {
		c.themeTimer.Stop()
		c.themeTimer = nil
	}
	if c.announceTmr != nil {
		c.announceTmr.Stop()
		c.announceTmr = nil
	}
}

func (c *Controller) spinning() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.spinners > 0
}

func (c *Controller) next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

func (c *Controller) latest(seq uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return seq == c.seq
}

func (c *Controller) dropStale(city weather.CityCandidate) {
	metrics.StaleResponsesTotal.WithLabelValues("weather").Inc()
	logger.L().Debug("weather_stale_response", "city", city.DisplayName)
}

func (c *Controller) beginBusy(showSpinner bool) {
	c.mu.Lock()
	c.busy++
	if showSpinner {
		c.spinners++
	}
	c.mu.Unlock()

	c.view.SetBusy(true, c.printer.Sprintf(i18n.MsgBusy))
	if showSpinner {
		c.view.ShowLoading(true)
	}
}

func (c *Controller) endBusy(showSpinner bool) {
	c.mu.Lock()
	c.busy--
	if showSpinner {
		c.spinners--
	}
	idle := c.busy == 0
	c.mu.Unlock()

	if showSpinner {
		c.view.ShowLoading(false)
	}
	if idle {
		c.view.SetBusy(false, c.printer.Sprintf(i18n.MsgSubmit))
	}
}

func (c *Controller) renderError() {
	c.view.RenderError(i18n.ErrorCity, i18n.ErrorCondition)
}

func (c *Controller) show(seq uint64, city weather.CityCandidate, label string, snap weather.WeatherSnapshot) {
	card := Present(snap, c.printer)

	c.mu.Lock()
	c.current = &city
	c.currentLabel = label
	if c.themeTimer != nil {
		c.themeTimer.Stop()
		c.themeTimer = nil
	}
	c.mu.Unlock()

	c.view.Render(card)

	if c.themeDelay <= 0 {
		c.view.ApplyTheme(card.Theme)
		return
	}
	t := c.clock.AfterFunc(c.themeDelay, func() {
		if c.latest(seq) {
			c.view.ApplyTheme(card.Theme)
		}
	})
	c.mu.Lock()
	c.themeTimer = t
	c.mu.Unlock()
}

func (c *Controller) announce(text string) {
	c.mu.Lock()
	c.announceGen++
	gen := c.announceGen
	if c.announceTmr != nil {
		c.announceTmr.Stop()
		c.announceTmr = nil
	}
	c.mu.Unlock()

	c.view.Announce(text)
	if c.announceTTL <= 0 {
		return
	}

	t := c.clock.AfterFunc(c.announceTTL, func() {
		c.mu.Lock()
		current := gen == c.announceGen
		c.mu.Unlock()
		if current {
			c.view.Announce("")
		}
	})
	c.mu.Lock()
	if gen == c.announceGen {
		c.announceTmr = t
	} else {
		t.Stop()
	}
	c.mu.Unlock()
}
