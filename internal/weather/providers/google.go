package providers

import (
	"context"
	"fmt"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// GoogleGeocoder implements weather.Resolver on the Google Geocoding API.
// Google does not report a timezone; the weather provider resolves it with timezone=auto.
type GoogleGeocoder struct {
	apiKey string
	lookup func(geocoder.Address) (geocoder.Location, error)
}

// NewGoogleGeocoder sets the geocoder package's process-wide API key once;
// lookups then run concurrently.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	if apiKey != "" {
		geocoder.ApiKey = apiKey
	}
	return &GoogleGeocoder{
		apiKey: apiKey,
		lookup: geocoder.Geocoding,
	}
}

func (g *GoogleGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	if g.apiKey == "" {
		return weather.Coordinates{}, fmt.Errorf("google geocoding api key is not configured")
	}

	type result struct {
		loc geocoder.Location
		err error
	}
	done := make(chan result, 1)

	go func() {
		loc, err := g.lookup(geocoder.Address{City: city})
		done <- result{loc: loc, err: err}
	}()

	var res result
	select {
	case <-ctx.Done():
		return weather.Coordinates{}, weather.NewTransportError("google geocode "+city, ctx.Err())
	case res = <-done:
	}

	if res.err != nil {
		if common.HasAnyFold(res.err.Error(), "zero_results", "no results", "not found") {
			return weather.Coordinates{}, &weather.NotFoundError{City: city}
		}
		return weather.Coordinates{}, weather.NewTransportError("google geocode "+city, res.err)
	}
	if res.loc.Latitude == 0 && res.loc.Longitude == 0 {
		return weather.Coordinates{}, &weather.NotFoundError{City: city}
	}

	coords := weather.Coordinates{
		Latitude:  res.loc.Latitude,
		Longitude: res.loc.Longitude,
		Name:      city,
	}
	if err := validate.Struct(coords); err != nil {
		return weather.Coordinates{}, weather.NewTransportError("google geocode "+city, fmt.Errorf("invalid coordinates: %w", err))
	}
	return coords, nil
}
