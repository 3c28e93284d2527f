package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	httpapi "github.com/i474232898/weather-analytics/internal/api/http"
	"github.com/i474232898/weather-analytics/internal/cli"
	"github.com/i474232898/weather-analytics/internal/config"
	"github.com/i474232898/weather-analytics/internal/logging"
	"github.com/i474232898/weather-analytics/internal/scheduler"
	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
	"github.com/i474232898/weather-analytics/internal/weather/providers"
)

func main() {
	// Load configuration.
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load config")
	}

	logging.Init(logging.Config{Level: cfg.LogLevel, Format: cfg.LogFormat})

	service, err := buildService(cfg)
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to build service")
	}

	cmd, err := cli.New(service, func(cmd *cobra.Command) error {
		return serve(cmd.Context(), cfg, service)
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("new cli")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := cmd.ExecuteContext(ctx); err != nil {
		logging.Error().Err(err).Msg("exec")
		stop()
		os.Exit(1)
	}
}

func buildService(cfg *config.AppConfig) (*weather.Service, error) {
	// Shared HTTP client for outbound provider calls; per-call deadlines come from the context.
	httpClient := &http.Client{
		Timeout: cfg.WeatherAPITimeout + 5*time.Second,
	}

	sunTimes, err := weather.SunTimesPolicyByName(cfg.SunTimesFallback)
	if err != nil {
		return nil, err
	}

	var resolver weather.Resolver
	switch cfg.Geocoder {
	case "google":
		resolver = providers.NewGoogleGeocoder(cfg.GoogleAPIKey)
	default:
		resolver = providers.NewOpenMeteoGeocoder(httpClient, cfg.GeocodingBaseURL, cfg.RateLimitRPS)
	}
	resolver = weather.NewCachingResolver(resolver, cfg.GeocodeCacheTTL)

	var provider weather.Provider
	switch cfg.WeatherProvider {
	case "openweather":
		provider = providers.NewOpenWeatherProvider(httpClient, cfg.OpenWeatherAPIKey, cfg.RateLimitRPS, sunTimes)
	case "weatherapi":
		provider = providers.NewWeatherAPIProvider(httpClient, cfg.WeatherAPIKey, cfg.RateLimitRPS, sunTimes)
	default:
		provider = providers.NewOpenMeteoProvider(httpClient, cfg.WeatherBaseURL, cfg.RateLimitRPS, sunTimes)
	}

	locator := providers.NewIPLocator(cfg.GeoAPIURL, cfg.GeoAPITimeout)

	// In-memory store with configured retention.
	memStore := store.NewMemoryStore(cfg.StoreMaxHistory, cfg.StoreMaxAge)

	return weather.NewService(weather.ServiceConfig{
		DefaultCities:    cfg.DefaultCities,
		CallTimeout:      cfg.WeatherAPITimeout,
		WeatherBaseURL:   cfg.WeatherBaseURL,
		GeocodingBaseURL: cfg.GeocodingBaseURL,
		GeoAPIURL:        cfg.GeoAPIURL,
	}, resolver, provider, locator, memStore), nil
}

func serve(ctx context.Context, cfg *config.AppConfig, service *weather.Service) error {
	// Scheduler that periodically refreshes analytics for the default batch.
	sched := scheduler.New(cfg.DefaultCities, cfg.RefreshInterval, service)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	// Batch endpoints wait for the slowest city, hence the longer write timeout.
	app := fiber.New(fiber.Config{
		AppName:               "weather-analytics",
		DisableStartupMessage: true,
		ReadTimeout:           10 * time.Second,
		WriteTimeout:          2*cfg.WeatherAPITimeout + 10*time.Second,
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		ErrorHandler:          httpapi.ErrorHandler,
	})

	// Global middleware
	app.Use(logger.New())
	app.Use(recover.New())

	// Basic health endpoint
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"status":  "ok",
			"service": "weather-analytics",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	// API routes.
	httpapi.RegisterRoutes(app, service)

	errCh := make(chan error, 1)
	go func() {
		logging.Info().Str("port", cfg.Port).Msg("http: listening")
		errCh <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		logging.Error().Err(err).Msg("error during shutdown")
	}
	return nil
}
