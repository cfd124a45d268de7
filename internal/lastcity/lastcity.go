// Package lastcity is the advisory single-slot cache of the city the user
// last looked at. Reads that find nothing usable self-heal by clearing the
// slot; writes never fail the caller.
package lastcity

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/metrics"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/weather"
)

const (
	// Key is the storage key the record lives under.
	Key = "lastCity"
	// DefaultMaxAge is how long a saved city stays valid.
	DefaultMaxAge = 24 * time.Hour

	probeKey = "__storage_probe__"
)

var validate = validator.New()

// CachedCity is the persisted record: the candidate plus when it was saved
// and the label it was shown with.
type CachedCity struct {
	weather.CityCandidate
	SavedAtEpochMs int64  `json:"savedAt"`
	DisplayText    string `json:"displayText"`
}

// SavedAt returns the write time.
func (c CachedCity) SavedAt() time.Time {
	return time.UnixMilli(c.SavedAtEpochMs)
}

// Cache reads and writes the single CachedCity slot.
type Cache struct {
	kv  store.KV
	now func() time.Time
}

// Option customizes a Cache.
type Option func(*Cache)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) { c.now = now }
}

// New creates a Cache on top of kv.
func New(kv store.KV, opts ...Option) *Cache {
	c := &Cache{kv: kv, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Save overwrites the slot with city, stamped with the current time.
// Failures are logged and swallowed.
func (c *Cache) Save(city weather.CityCandidate, displayText string) {
	rec := CachedCity{
		CityCandidate:  city,
		SavedAtEpochMs: c.now().UnixMilli(),
		DisplayText:    displayText,
	}
	if rec.PostalCodes == nil {
		rec.PostalCodes = []string{}
	}

	b, err := json.Marshal(rec)
	if err != nil {
		metrics.LastCityWriteFailTotal.Inc()
		logger.L().Warn("last_city_encode_failed", "city", city.DisplayName, "err", err)
		return
	}
	if err := c.kv.Set(Key, string(b)); err != nil {
		metrics.LastCityWriteFailTotal.Inc()
		logger.L().Warn("last_city_save_failed", "city", city.DisplayName, "err", err)
		return
	}
	logger.L().Debug("last_city_saved", "city", city.DisplayName)
}

// Load returns the saved city if there is one younger than maxAge with all
// required fields. A non-positive maxAge means DefaultMaxAge. Any record that
// is unreadable, expired or incomplete is cleared.
func (c *Cache) Load(maxAge time.Duration) (CachedCity, bool) {
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}

	raw, err := c.kv.Get(Key)
	if errors.Is(err, store.ErrNotFound) {
		metrics.LastCityLoadsTotal.WithLabelValues("miss").Inc()
		return CachedCity{}, false
	}
	if errors.Is(err, store.ErrCorrupt) {
		return c.discard("invalid", "corrupt", err)
	}
	if err != nil {
		metrics.LastCityLoadsTotal.WithLabelValues("miss").Inc()
		logger.L().Warn("last_city_read_failed", "err", err)
		return CachedCity{}, false
	}

	var rec CachedCity
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return c.discard("invalid", "decode", err)
	}
	if err := validate.Struct(rec.CityCandidate); err != nil {
		return c.discard("invalid", "validate", err)
	}
	if c.now().Sub(rec.SavedAt()) > maxAge {
		return c.discard("expired", "expired", nil)
	}

	metrics.LastCityLoadsTotal.WithLabelValues("hit").Inc()
	return rec, true
}

// Clear removes the saved city and reports whether it is gone. Failures
// are logged, never returned.
func (c *Cache) Clear() bool {
	if err := c.kv.Delete(Key); err != nil {
		logger.L().Warn("last_city_clear_failed", "err", err)
		return false
	}
	return true
}

// IsAvailable probes the storage with a throwaway write and delete.
func (c *Cache) IsAvailable() bool {
	if err := c.kv.Set(probeKey, "1"); err != nil {
		return false
	}
	if err := c.kv.Delete(probeKey); err != nil {
		return false
	}
	return true
}

func (c *Cache) discard(outcome, reason string, err error) (CachedCity, bool) {
	metrics.LastCityLoadsTotal.WithLabelValues(outcome).Inc()
	logger.L().Info("last_city_discarded", "reason", reason, "err", err)
	c.Clear()
	return CachedCity{}, false
}
