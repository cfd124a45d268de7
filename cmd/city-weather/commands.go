package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/text/message"

	httpapi "github.com/i474232898/city-weather/internal/api/http"
	"github.com/i474232898/city-weather/internal/config"
	"github.com/i474232898/city-weather/internal/display"
	"github.com/i474232898/city-weather/internal/i18n"
	"github.com/i474232898/city-weather/internal/lastcity"
	"github.com/i474232898/city-weather/internal/logger"
	"github.com/i474232898/city-weather/internal/scheduler"
	"github.com/i474232898/city-weather/internal/store"
	"github.com/i474232898/city-weather/internal/tui"
	"github.com/i474232898/city-weather/internal/weather"
	"github.com/i474232898/city-weather/internal/weather/providers"
)

const appName = "city-weather"

// settings is what every subcommand shares once flags and environment have
// been merged.
type settings struct {
	cfg     *config.AppConfig
	lang    string
	backend string
}

func newRootCommand() *cobra.Command {
	rt := &settings{}

	rootCmd := &cobra.Command{
		Use:           appName,
		Short:         "Look up the current weather for a city",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&rt.lang, "lang", "", "Message language (en or de); overrides LANGUAGE")
	rootCmd.PersistentFlags().StringVar(&rt.backend, "store", "", "Storage backend for the saved city: file, memory or redis; overrides STORE_BACKEND")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}
		if rt.lang != "" {
			cfg.Language = rt.lang
		}
		if rt.backend != "" {
			cfg.StoreBackend = rt.backend
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		rt.cfg = cfg
		return nil
	}

	rootCmd.AddCommand(
		tuiCommand(rt),
		serveCommand(rt),
		clearCacheCommand(rt),
	)
	return rootCmd
}

func tuiCommand(rt *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Start the interactive terminal widget",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.cfg
			if err := setupFileLogging(); err != nil {
				return err
			}

			kv, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			printer := i18n.NewPrinter(cfg.Language)
			cache := lastcity.New(kv)
			checkStorage(cache, printer, cmd.ErrOrStderr())
			app := tui.New(cmd.Context(), tui.Options{
				Service:  newService(cfg, printer),
				Cache:    cache,
				Printer:  printer,
				Debounce: cfg.Debounce,
				Display: []display.Option{
					display.WithDefaultCity(cfg.DefaultCity),
					display.WithMaxAge(cfg.CacheMaxAge),
					display.WithThemeDelay(cfg.ThemeDelay),
					display.WithAnnounceTTL(cfg.AnnounceTTL),
				},
			})

			sched := scheduler.New(app.Display(), cfg.RefreshInterval, 2*cfg.HTTPTimeout)
			if err := sched.Start(); err != nil {
				return fmt.Errorf("failed to start scheduler: %w", err)
			}
			defer sched.Stop()

			logger.L().Info("tui_started", "language", cfg.Language, "store", cfg.StoreBackend)
			return app.Run()
		},
	}
}

func serveCommand(rt *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the search, weather and saved-city JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.cfg
			logger.Setup()

			// A server keeps the saved city in memory unless told otherwise.
			if rt.backend == "" && os.Getenv("STORE_BACKEND") == "" {
				cfg.StoreBackend = config.StoreMemory
			}
			kv, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			app := httpapi.NewApp(httpapi.Deps{
				Service:  newService(cfg, i18n.NewPrinter(cfg.Language)),
				LastCity: lastcity.New(kv),
				MaxAge:   cfg.CacheMaxAge,
			})

			errCh := make(chan error, 1)
			go func() {
				logger.L().Info("server_listening", "port", cfg.Port, "store", cfg.StoreBackend)
				errCh <- app.Listen(":" + cfg.Port)
			}()

			select {
			case err := <-errCh:
				return fmt.Errorf("fiber server stopped: %w", err)
			case <-cmd.Context().Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := app.ShutdownWithContext(shutdownCtx); err != nil {
				logger.L().Error("shutdown_failed", "err", err)
			}
			return nil
		},
	}
}

func clearCacheCommand(rt *settings) *cobra.Command {
	return &cobra.Command{
		Use:   "clear-cache",
		Short: "Forget the saved city",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := rt.cfg
			logger.Setup()

			kv, closeStore, err := openStore(cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			p := i18n.NewPrinter(cfg.Language)
			if !lastcity.New(kv).Clear() {
				return errors.New(p.Sprintf(i18n.MsgCacheClearFail))
			}
			fmt.Fprintln(cmd.OutOrStdout(), p.Sprintf(i18n.MsgCacheCleared))
			return nil
		},
	}
}

// checkStorage warns once when the saved-city storage cannot be written.
// The widget still runs; it just will not remember the city.
func checkStorage(cache *lastcity.Cache, printer *message.Printer, w io.Writer) bool {
	if cache.IsAvailable() {
		return true
	}
	logger.L().Warn("last_city_storage_unavailable")
	fmt.Fprintln(w, printer.Sprintf(i18n.MsgStorageDown))
	return false
}

// setupFileLogging keeps log lines off the terminal UI: LOG_FILE when set,
// otherwise a file under the user cache directory.
func setupFileLogging() error {
	path := os.Getenv("LOG_FILE")
	if path == "" {
		dir, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("resolve log directory: %w", err)
		}
		path = filepath.Join(dir, appName, appName+".log")
	}
	if _, err := logger.SetupFile(path); err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	return nil
}

func openStore(cfg *config.AppConfig) (store.KV, func(), error) {
	switch cfg.StoreBackend {
	case config.StoreMemory:
		return store.NewMemoryStore(), func() {}, nil
	case config.StoreRedis:
		s := store.NewRedisStore(store.RedisOptions{
			Addr:     cfg.RedisAddr(),
			Password: cfg.RedisPass,
			DB:       cfg.RedisDB,
			Prefix:   cfg.StoreKeyPrefix,
			Timeout:  cfg.RedisTimeout,
		})
		return s, func() { _ = s.Close() }, nil
	default:
		path := cfg.StorePath
		if path == "" {
			var err error
			if path, err = store.DefaultPath(appName); err != nil {
				return nil, nil, fmt.Errorf("resolve store path: %w", err)
			}
		}
		logger.L().Debug("file_store_open", "path", path)
		return store.NewFileStore(path), func() {}, nil
	}
}

// newService builds the Open-Meteo clients on one shared HTTP client.
func newService(cfg *config.AppConfig, printer *message.Printer) *weather.Service {
	httpClient := &http.Client{Timeout: cfg.HTTPTimeout}
	geocoder := providers.NewGeocodingProvider(httpClient, cfg.GeocodingURL, i18n.Code(i18n.Match(cfg.Language)))
	forecast := providers.NewOpenMeteoProvider(httpClient, cfg.WeatherURL)
	return weather.NewService(geocoder, forecast, printer, weather.WithSearchTimeout(cfg.HTTPTimeout))
}
