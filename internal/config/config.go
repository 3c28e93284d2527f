package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/logging"
)

var defaultCities = []string{"London", "New York", "Tokyo", "Paris", "Sydney", "Berlin", "Moscow", "Cairo", "Mumbai", "Beijing"}

type AppConfig struct {
	Port string `yaml:"port"`

	WeatherBaseURL   string `yaml:"weatherBaseUrl"`
	GeocodingBaseURL string `yaml:"geocodingBaseUrl"`
	GeoAPIURL        string `yaml:"geoApiUrl"`

	// WeatherAPITimeout bounds each geocoding/weather call per city.
	WeatherAPITimeout time.Duration `yaml:"weatherApiTimeout"`
	GeoAPITimeout     time.Duration `yaml:"geoApiTimeout"`

	DefaultCities []string `yaml:"defaultCities"`

	// WeatherProvider is one of openmeteo, openweather, weatherapi.
	WeatherProvider   string `yaml:"weatherProvider"`
	OpenWeatherAPIKey string `yaml:"openWeatherApiKey"`
	WeatherAPIKey     string `yaml:"weatherApiKey"`

	// Geocoder is one of openmeteo, google.
	Geocoder        string        `yaml:"geocoder"`
	GoogleAPIKey    string        `yaml:"googleApiKey"`
	GeocodeCacheTTL time.Duration `yaml:"geocodeCacheTtl"` // 0 = every call re-resolves

	// SunTimesFallback is one of solar, offset, none.
	SunTimesFallback string  `yaml:"sunTimesFallback"`
	RateLimitRPS     float64 `yaml:"rateLimitRps"`

	// RefreshInterval controls how often the default batch is re-aggregated.
	RefreshInterval time.Duration `yaml:"refreshInterval"`

	// In-memory store retention.
	StoreMaxHistory int           `yaml:"storeMaxHistory"` // max number of snapshots per batch (0 = unlimited)
	StoreMaxAge     time.Duration `yaml:"storeMaxAge"`     // max age of snapshots (0 = unlimited)

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// Load reads .env, the environment and, when WEATHER_CONFIG_FILE is set, a
// YAML overlay whose non-zero fields win.
func Load() (*AppConfig, error) {
	if err := godotenv.Load(); err != nil {
		logging.Debug().Err(err).Msg("config: no .env file loaded")
	}

	cfg, err := FromEnv()
	if err != nil {
		return nil, err
	}

	if path := os.Getenv("WEATHER_CONFIG_FILE"); path != "" {
		if err := cfg.overlayFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// FromEnv builds the configuration from environment variables with defaults.
func FromEnv() (*AppConfig, error) {
	cfg := &AppConfig{
		Port:              getenvDefault("PORT", "8080"),
		WeatherBaseURL:    getenvDefault("WEATHER_BASE_URL", "https://api.open-meteo.com/v1"),
		GeocodingBaseURL:  getenvDefault("GEOCODING_BASE_URL", "https://geocoding-api.open-meteo.com/v1"),
		GeoAPIURL:         getenvDefault("GEO_API_URL", "http://ip-api.com/json"),
		WeatherProvider:   strings.ToLower(getenvDefault("WEATHER_PROVIDER", "openmeteo")),
		OpenWeatherAPIKey: os.Getenv("OPENWEATHER_API_KEY"),
		WeatherAPIKey:     os.Getenv("WEATHERAPI_API_KEY"),
		Geocoder:          strings.ToLower(getenvDefault("GEOCODER", "openmeteo")),
		GoogleAPIKey:      os.Getenv("GOOGLE_GEOCODING_API_KEY"),
		SunTimesFallback:  strings.ToLower(getenvDefault("SUN_TIMES_FALLBACK", "solar")),
		StoreMaxHistory:   getenvInt("STORE_MAX_HISTORY", 96), // roughly 24h at 15-minute intervals
		LogLevel:          getenvDefault("LOG_LEVEL", "info"),
		LogFormat:         getenvDefault("LOG_FORMAT", "json"),
	}

	cfg.DefaultCities = common.SplitList(os.Getenv("DEFAULT_CITIES"))
	if len(cfg.DefaultCities) == 0 {
		cfg.DefaultCities = append([]string(nil), defaultCities...)
	}

	rps, err := strconv.ParseFloat(getenvDefault("RATE_LIMIT_RPS", "10"), 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %w", err)
	}
	cfg.RateLimitRPS = rps

	durations := []struct {
		key string
		def string
		dst *time.Duration
	}{
		{"WEATHER_API_TIMEOUT", "10s", &cfg.WeatherAPITimeout},
		{"GEO_API_TIMEOUT", "5s", &cfg.GeoAPITimeout},
		{"GEOCODE_CACHE_TTL", "0s", &cfg.GeocodeCacheTTL},
		{"REFRESH_INTERVAL", "15m", &cfg.RefreshInterval},
		{"STORE_MAX_AGE", "24h", &cfg.StoreMaxAge},
	}
	for _, d := range durations {
		v, err := parseDuration(getenvDefault(d.key, d.def))
		if err != nil {
			return nil, fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	return cfg, nil
}

// Validate checks enumerated settings and provider keys.
func (c *AppConfig) Validate() error {
	switch c.WeatherProvider {
	case "openmeteo":
	case "openweather":
		if c.OpenWeatherAPIKey == "" {
			return fmt.Errorf("OPENWEATHER_API_KEY is required for provider openweather")
		}
	case "weatherapi":
		if c.WeatherAPIKey == "" {
			return fmt.Errorf("WEATHERAPI_API_KEY is required for provider weatherapi")
		}
	default:
		return fmt.Errorf("unknown WEATHER_PROVIDER %q", c.WeatherProvider)
	}

	switch c.Geocoder {
	case "openmeteo":
	case "google":
		if c.GoogleAPIKey == "" {
			return fmt.Errorf("GOOGLE_GEOCODING_API_KEY is required for geocoder google")
		}
	default:
		return fmt.Errorf("unknown GEOCODER %q", c.Geocoder)
	}

	switch c.SunTimesFallback {
	case "solar", "offset", "none":
	default:
		return fmt.Errorf("unknown SUN_TIMES_FALLBACK %q", c.SunTimesFallback)
	}

	if c.WeatherAPITimeout <= 0 {
		return fmt.Errorf("WEATHER_API_TIMEOUT must be positive")
	}
	return nil
}

// fileConfig mirrors AppConfig with durations as strings so YAML can use "10s".
type fileConfig struct {
	Port              string   `yaml:"port"`
	WeatherBaseURL    string   `yaml:"weatherBaseUrl"`
	GeocodingBaseURL  string   `yaml:"geocodingBaseUrl"`
	GeoAPIURL         string   `yaml:"geoApiUrl"`
	WeatherAPITimeout string   `yaml:"weatherApiTimeout"`
	GeoAPITimeout     string   `yaml:"geoApiTimeout"`
	DefaultCities     []string `yaml:"defaultCities"`
	WeatherProvider   string   `yaml:"weatherProvider"`
	OpenWeatherAPIKey string   `yaml:"openWeatherApiKey"`
	WeatherAPIKey     string   `yaml:"weatherApiKey"`
	Geocoder          string   `yaml:"geocoder"`
	GoogleAPIKey      string   `yaml:"googleApiKey"`
	GeocodeCacheTTL   string   `yaml:"geocodeCacheTtl"`
	SunTimesFallback  string   `yaml:"sunTimesFallback"`
	RateLimitRPS      float64  `yaml:"rateLimitRps"`
	RefreshInterval   string   `yaml:"refreshInterval"`
	StoreMaxHistory   int      `yaml:"storeMaxHistory"`
	StoreMaxAge       string   `yaml:"storeMaxAge"`
	LogLevel          string   `yaml:"logLevel"`
	LogFormat         string   `yaml:"logFormat"`
}

func (c *AppConfig) overlayFile(path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	return c.overlayYAML(raw)
}

func (c *AppConfig) overlayYAML(raw []byte) error {
	var f fileConfig
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}

	setString(&c.Port, f.Port)
	setString(&c.WeatherBaseURL, f.WeatherBaseURL)
	setString(&c.GeocodingBaseURL, f.GeocodingBaseURL)
	setString(&c.GeoAPIURL, f.GeoAPIURL)
	setString(&c.WeatherProvider, strings.ToLower(f.WeatherProvider))
	setString(&c.OpenWeatherAPIKey, f.OpenWeatherAPIKey)
	setString(&c.WeatherAPIKey, f.WeatherAPIKey)
	setString(&c.Geocoder, strings.ToLower(f.Geocoder))
	setString(&c.GoogleAPIKey, f.GoogleAPIKey)
	setString(&c.SunTimesFallback, strings.ToLower(f.SunTimesFallback))
	setString(&c.LogLevel, f.LogLevel)
	setString(&c.LogFormat, f.LogFormat)

	if len(f.DefaultCities) > 0 {
		c.DefaultCities = f.DefaultCities
	}
	if f.RateLimitRPS > 0 {
		c.RateLimitRPS = f.RateLimitRPS
	}
	if f.StoreMaxHistory > 0 {
		c.StoreMaxHistory = f.StoreMaxHistory
	}

	durations := []struct {
		name string
		raw  string
		dst  *time.Duration
	}{
		{"weatherApiTimeout", f.WeatherAPITimeout, &c.WeatherAPITimeout},
		{"geoApiTimeout", f.GeoAPITimeout, &c.GeoAPITimeout},
		{"geocodeCacheTtl", f.GeocodeCacheTTL, &c.GeocodeCacheTTL},
		{"refreshInterval", f.RefreshInterval, &c.RefreshInterval},
		{"storeMaxAge", f.StoreMaxAge, &c.StoreMaxAge},
	}
	for _, d := range durations {
		if d.raw == "" {
			continue
		}
		v, err := parseDuration(d.raw)
		if err != nil {
			return fmt.Errorf("invalid %s in config file: %w", d.name, err)
		}
		*d.dst = v
	}
	return nil
}

// parseDuration accepts Go durations and bare milliseconds ("10000").
func parseDuration(s string) (time.Duration, error) {
	if ms, err := strconv.Atoi(s); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	return time.ParseDuration(s)
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
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
