package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/weather"
	"github.com/i474232898/city-weather/internal/weather/providers"
)

// Storage backends.
const (
	StoreFile   = "file"
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type AppConfig struct {
	// Language selects the message catalog and the geocoder's result language.
	Language string `validate:"required"`

	GeocodingURL string        `validate:"required,url"`
	WeatherURL   string        `validate:"required,url"`
	HTTPTimeout  time.Duration `validate:"gt=0"`

	Debounce        time.Duration `validate:"gt=0"`
	CacheMaxAge     time.Duration `validate:"gt=0"`
	ThemeDelay      time.Duration `validate:"gte=0"`
	AnnounceTTL     time.Duration `validate:"gte=0"`
	RefreshInterval time.Duration `validate:"gte=0"` // 0 disables the periodic refresh

	DefaultCity weather.CityCandidate

	StoreBackend   string `validate:"oneof=file memory redis"`
	StorePath      string
	StoreKeyPrefix string

	RedisHost    string
	RedisPort    int `validate:"gt=0,lte=65535"`
	RedisPass    string
	RedisDB      int `validate:"gte=0"`
	RedisTimeout time.Duration

	Port string `validate:"required,numeric"`
}

var validate = validator.New()

// Load reads configuration from environment with sensible defaults.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logger.L().Debug("dotenv_not_loaded", "err", err)
	}
	cfg := &AppConfig{}

	cfg.Language = languageFromLocale(getenvDefault("LANGUAGE", os.Getenv("LANG")))
	cfg.GeocodingURL = getenvDefault("GEOCODING_URL", providers.DefaultGeocodingURL)
	cfg.WeatherURL = getenvDefault("WEATHER_URL", providers.DefaultForecastURL)

	var err error
	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"HTTP_TIMEOUT", "10s", &cfg.HTTPTimeout},
		{"DEBOUNCE", "300ms", &cfg.Debounce},
		{"CACHE_MAX_AGE", "24h", &cfg.CacheMaxAge},
		{"THEME_DELAY", "300ms", &cfg.ThemeDelay},
		{"ANNOUNCE_TTL", "5s", &cfg.AnnounceTTL},
		{"REFRESH_INTERVAL", "15m", &cfg.RefreshInterval},
		{"REDIS_TIMEOUT", "2s", &cfg.RedisTimeout},
	}
	for _, d := range durations {
		if *d.dst, err = getenvDuration(d.key, d.def); err != nil {
			return nil, err
		}
	}

	cfg.DefaultCity, err = loadDefaultCity()
	if err != nil {
		return nil, err
	}

	cfg.StoreBackend = strings.ToLower(getenvDefault("STORE_BACKEND", StoreFile))
	cfg.StorePath = os.Getenv("STORE_PATH")
	cfg.StoreKeyPrefix = getenvDefault("STORE_KEY_PREFIX", "city-weather:")

	cfg.RedisHost = getenvDefault("REDIS_HOST", "localhost")
	cfg.RedisPort = getenvInt("REDIS_PORT", 6379)
	cfg.RedisPass = os.Getenv("REDIS_PASS")
	cfg.RedisDB = getenvInt("REDIS_DB", 0)

	cfg.Port = getenvDefault("PORT", "8080")

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the loaded values, including ones changed by CLI flags.
func (c *AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// RedisAddr returns host:port for the Redis backend.
func (c *AppConfig) RedisAddr() string {
	return c.RedisHost + ":" + strconv.Itoa(c.RedisPort)
}

func loadDefaultCity() (weather.CityCandidate, error) {
	city := display.DefaultCity
	city.DisplayName = getenvDefault("DEFAULT_CITY_NAME", city.DisplayName)
	city.Country = getenvDefault("DEFAULT_CITY_COUNTRY", city.Country)

	var err error
	if city.Latitude, err = getenvFloat("DEFAULT_CITY_LAT", city.Latitude); err != nil {
		return city, err
	}
	if city.Longitude, err = getenvFloat("DEFAULT_CITY_LON", city.Longitude); err != nil {
		return city, err
	}
	if err := validate.Struct(city); err != nil {
		return city, fmt.Errorf("invalid default city: %w", err)
	}
	return city, nil
}

// languageFromLocale turns a POSIX locale such as de_DE.UTF-8, or a GNU
// LANGUAGE list such as de_DE:en, into "de".
func languageFromLocale(locale string) string {
	locale = strings.TrimSpace(locale)
	if locale == "" || locale == "C" || locale == "POSIX" {
		return "en"
	}
	if i := strings.IndexAny(locale, "_.@-:"); i > 0 {
		locale = locale[:i]
	}
	return strings.ToLower(locale)
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		n, err := strconv.Atoi(v)
		if err == nil {
			return n
		}
	}
	return def
}

func getenvFloat(key string, def float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return f, nil
}

func getenvDuration(key, def string) (time.Duration, error) {
	d, err := time.ParseDuration(getenvDefault(key, def))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
