package weather

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/i474232898/weather-analytics/internal/logging"
)

var validate = validator.New()

var (
	// ErrNoReadings is returned by RefreshAnalytics when every city failed.
	ErrNoReadings = errors.New("no successful readings in batch")
	// ErrForecastUnsupported is returned when the provider has no forecast endpoint.
	ErrForecastUnsupported = errors.New("provider does not support forecasts")
)

const defaultForecastDays = 7

// AnalyticsSnapshot is a stored aggregate for a batch at a point in time.
type AnalyticsSnapshot struct {
	ID        string    `json:"id"`
	BatchKey  string    `json:"batchKey"`
	Timestamp time.Time `json:"timestamp"` // always UTC
	Cities    []string  `json:"cities"`
	Aggregate Aggregate `json:"aggregate"`
}

// SnapshotStore is the contract the in-memory store (and any future persistent store) must satisfy.
type SnapshotStore interface {
	SaveSnapshot(snapshot AnalyticsSnapshot) AnalyticsSnapshot
	GetLatest(batchKey string) (AnalyticsSnapshot, error)
	GetRange(batchKey string, from, to time.Time) ([]AnalyticsSnapshot, error)
}

// ServiceConfig carries the plain parameters the service needs.
type ServiceConfig struct {
	DefaultCities []string
	CallTimeout   time.Duration
	ForecastDays  int

	// Reported by Configuration.
	WeatherBaseURL   string
	GeocodingBaseURL string
	GeoAPIURL        string
}

// Service orchestrates validation, resolution, fetching, aggregation and snapshot storage.
type Service struct {
	cfg      ServiceConfig
	resolver Resolver
	provider Provider
	locator  Locator
	store    SnapshotStore
	batch    *BatchFetcher
}

// NewService creates a new Service. locator and store may be nil.
func NewService(cfg ServiceConfig, resolver Resolver, provider Provider, locator Locator, store SnapshotStore) *Service {
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = defaultForecastDays
	}
	return &Service{
		cfg:      cfg,
		resolver: resolver,
		provider: provider,
		locator:  locator,
		store:    store,
		batch:    NewBatchFetcher(resolver, provider, cfg.CallTimeout),
	}
}

// DefaultCities returns a copy of the configured default batch.
func (s *Service) DefaultCities() []string {
	return append([]string(nil), s.cfg.DefaultCities...)
}

func (s *Service) cities(cities []string) []string {
	if len(cities) == 0 {
		return s.DefaultCities()
	}
	return cities
}

// Validate checks a city name without touching the network.
func (s *Service) Validate(raw string) ValidationResult {
	return ValidateCityName(raw)
}

// CurrentWeather validates, resolves and fetches a single city.
func (s *Service) CurrentWeather(ctx context.Context, city string) (Reading, error) {
	reading, err := s.batch.FetchOne(ctx, city)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Reading{}, fmt.Errorf("%w. Please check the spelling and try again.", err)
		}
		return Reading{}, err
	}
	logging.Debug().Str("city", city).Str("provider", reading.Provider).Msg("service: fetched current weather")
	return reading, nil
}

// CurrentWeatherAt fetches current conditions for raw coordinates, such as
// the caller's own location, without geocoding.
func (s *Service) CurrentWeatherAt(ctx context.Context, lat, lon float64) (Reading, error) {
	coords := Coordinates{
		Latitude:  lat,
		Longitude: lon,
		Name:      "Your Location",
		Country:   "Unknown",
	}
	if err := validate.Struct(coords); err != nil {
		return Reading{}, &ValidationError{Message: fmt.Sprintf("Invalid coordinates %g, %g", lat, lon)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.batch.callTimeout)
	defer cancel()

	reading, err := s.provider.FetchCurrent(ctx, coords)
	if err != nil {
		return Reading{}, timeoutAsTransport(ctx, "current weather at coordinates", err)
	}
	return reading, nil
}

// Forecast returns the sampled multi-day forecast for a city.
func (s *Service) Forecast(ctx context.Context, city string) (Forecast, error) {
	fp, ok := s.provider.(ForecastProvider)
	if !ok {
		return Forecast{}, ErrForecastUnsupported
	}

	v := ValidateCityName(city)
	if !v.Valid {
		return Forecast{}, v.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, s.batch.callTimeout)
	defer cancel()

	coords, err := s.resolver.Resolve(ctx, v.Normalized)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Forecast{}, fmt.Errorf("%w for forecast. Please check the spelling and try again.", err)
		}
		return Forecast{}, err
	}

	return fp.FetchForecast(ctx, coords, s.cfg.ForecastDays)
}

// FetchBatch fetches every city concurrently; an empty list means the default batch.
func (s *Service) FetchBatch(ctx context.Context, cities []string) BatchResult {
	return s.batch.FetchAll(ctx, s.cities(cities))
}

// Analytics fetches the batch and aggregates it.
func (s *Service) Analytics(ctx context.Context, cities []string) Aggregate {
	return AggregateBatch(s.FetchBatch(ctx, cities))
}

// Trends fetches and aggregates the batch, then selects the bucket for filterKey.
// Unknown filter keys fail before any network call.
func (s *Service) Trends(ctx context.Context, filterKey string, cities []string) (Trend, error) {
	filter, err := ParseFilter(filterKey)
	if err != nil {
		return Trend{}, err
	}
	return QueryTrend(s.Analytics(ctx, cities), filter), nil
}

// Suggest returns well-known city names matching input.
func (s *Service) Suggest(input string, limit int) []string {
	return Suggest(input, limit)
}

// SearchResult is the outcome of Search.
type SearchResult struct {
	Success     bool     `json:"success"`
	Data        *Reading `json:"data,omitempty"`
	Error       string   `json:"error,omitempty"`
	Suggestions []string `json:"suggestions"`
}

// Search looks a city up and offers suggestions when that fails.
func (s *Service) Search(ctx context.Context, query string, includeSuggestions bool, limit int) SearchResult {
	if limit <= 0 {
		limit = 10
	}

	suggestions := func(limit int) []string {
		if !includeSuggestions {
			return []string{}
		}
		return Suggest(query, limit)
	}

	v := ValidateCityName(query)
	if !v.Valid {
		return SearchResult{Error: v.Error, Suggestions: suggestions(DefaultSuggestionLimit)}
	}

	reading, err := s.CurrentWeather(ctx, query)
	if err != nil {
		return SearchResult{Error: err.Error(), Suggestions: suggestions(limit)}
	}
	return SearchResult{Success: true, Data: &reading, Suggestions: []string{}}
}

// fallbackLocation is used whenever IP geolocation fails.
var fallbackLocation = UserLocation{
	City:      "London",
	Country:   "United Kingdom",
	Latitude:  51.5074,
	Longitude: -0.1278,
	Timezone:  "Europe/London",
	Fallback:  true,
}

// UserLocation returns the caller's approximate location, or London when unknown.
func (s *Service) UserLocation(ctx context.Context) UserLocation {
	if s.locator == nil {
		return fallbackLocation
	}
	loc, err := s.locator.Locate(ctx)
	if err != nil {
		logging.Warn().Err(err).Msg("service: ip geolocation failed; using default location")
		return fallbackLocation
	}
	return loc
}

// ConfigurationReport describes the active pipeline configuration.
type ConfigurationReport struct {
	Provider         string   `json:"apiProvider"`
	WeatherBaseURL   string   `json:"weatherBaseUrl"`
	GeocodingBaseURL string   `json:"geocodingBaseUrl"`
	GeoAPIURL        string   `json:"geoApiUrl"`
	Timeout          string   `json:"timeout"`
	DefaultCities    []string `json:"defaultCities"`
	Features         []string `json:"features"`
}

// Configuration reports the active provider and endpoints.
func (s *Service) Configuration() ConfigurationReport {
	return ConfigurationReport{
		Provider:         s.provider.Name(),
		WeatherBaseURL:   s.cfg.WeatherBaseURL,
		GeocodingBaseURL: s.cfg.GeocodingBaseURL,
		GeoAPIURL:        s.cfg.GeoAPIURL,
		Timeout:          s.batch.callTimeout.String(),
		DefaultCities:    s.DefaultCities(),
		Features: []string{
			"Current conditions",
			"Hourly forecast",
			"Batch analytics with trend buckets",
			"Global coverage",
		},
	}
}

// ConnectionReport is the outcome of TestConnection.
type ConnectionReport struct {
	Success      bool     `json:"success"`
	Provider     string   `json:"provider"`
	Message      string   `json:"message,omitempty"`
	Data         string   `json:"data,omitempty"`
	Error        string   `json:"error,omitempty"`
	Instructions []string `json:"instructions,omitempty"`
}

// TestConnection resolves London and fetches its current weather.
func (s *Service) TestConnection(ctx context.Context) ConnectionReport {
	report := ConnectionReport{Provider: s.provider.Name()}

	reading, err := s.batch.FetchOne(ctx, "London")
	if err != nil {
		report.Error = err.Error()
		report.Instructions = []string{
			"Check your internet connection",
			"Check the configured base URLs and API keys",
			"Open-Meteo requires no API key; see https://open-meteo.com",
		}
		return report
	}

	report.Success = true
	report.Message = reading.Provider + " connection successful"
	report.Data = strings.TrimSuffix(reading.Coordinates.Name+", "+reading.Coordinates.Country, ", ")
	return report
}

// BatchKey is the canonical store key for a list of cities.
func BatchKey(cities []string) string {
	keys := make([]string, len(cities))
	for i, c := range cities {
		keys[i] = LookupKey(c)
	}
	return strings.Join(keys, "|")
}

// RefreshAnalytics aggregates the batch and stores a snapshot. When every
// city fails nothing is stored, so the last good snapshot stays current.
func (s *Service) RefreshAnalytics(ctx context.Context, cities []string) (AnalyticsSnapshot, error) {
	cities = s.cities(cities)
	agg := s.Analytics(ctx, cities)
	if !agg.HasData {
		logging.Warn().Int("cities", len(cities)).Msg("service: no successful readings; keeping last good snapshot if any")
		return AnalyticsSnapshot{}, ErrNoReadings
	}

	snap := AnalyticsSnapshot{
		BatchKey:  BatchKey(cities),
		Timestamp: time.Now().UTC(),
		Cities:    append([]string(nil), cities...),
		Aggregate: agg,
	}
	if s.store == nil {
		return snap, nil
	}
	return s.store.SaveSnapshot(snap), nil
}

// LatestAnalytics returns the newest stored snapshot for the batch.
func (s *Service) LatestAnalytics(cities []string) (AnalyticsSnapshot, error) {
	if s.store == nil {
		return AnalyticsSnapshot{}, ErrNoReadings
	}
	return s.store.GetLatest(BatchKey(s.cities(cities)))
}

// AnalyticsHistory returns stored snapshots for the batch within [from, to].
func (s *Service) AnalyticsHistory(cities []string, from, to time.Time) ([]AnalyticsSnapshot, error) {
	if s.store == nil {
		return nil, ErrNoReadings
	}
	return s.store.GetRange(BatchKey(s.cities(cities)), from, to)
}
