package weather

import (
	"context"
)

// Resolver turns a normalized city name into coordinates
// (Open-Meteo geocoding, Google geocoding).
type Resolver interface {
	Resolve(ctx context.Context, city string) (Coordinates, error)
}

// Provider abstracts a current-conditions source (Open-Meteo, OpenWeatherMap, WeatherAPI).
type Provider interface {
	Name() string
	FetchCurrent(ctx context.Context, coords Coordinates) (Reading, error)
}

// ForecastProvider is implemented by providers able to return multi-day forecasts.
type ForecastProvider interface {
	FetchForecast(ctx context.Context, coords Coordinates, days int) (Forecast, error)
}

// Locator returns the approximate location of the current caller.
type Locator interface {
	Locate(ctx context.Context) (UserLocation, error)
}
