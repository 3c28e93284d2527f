package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-analytics/internal/weather"
)

var validate = validator.New()

// OpenMeteoGeocoder implements weather.Resolver using the Open-Meteo geocoding API.
// It always takes the first match.
type OpenMeteoGeocoder struct {
	name    string
	baseURL string
	httpCfg HTTPClientConfig
	circuit *gobreaker.CircuitBreaker
}

// NewOpenMeteoGeocoder creates the resolver. baseURL is the API root, e.g.
// https://geocoding-api.open-meteo.com/v1.
func NewOpenMeteoGeocoder(client *http.Client, baseURL string, rps float64) *OpenMeteoGeocoder {
	return &OpenMeteoGeocoder{
		name:    "openmeteo-geocoding",
		baseURL: strings.TrimRight(baseURL, "/"),
		httpCfg: newHTTPConfig(client, rps),
		circuit: newCircuitBreaker("openmeteo-geocoding"),
	}
}

// BaseURL returns the configured API root.
func (g *OpenMeteoGeocoder) BaseURL() string {
	return g.baseURL
}

func (g *OpenMeteoGeocoder) Resolve(ctx context.Context, city string) (weather.Coordinates, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("name", city)
		values.Set("count", "1")
		values.Set("language", "en")
		values.Set("format", "json")

		u := fmt.Sprintf("%s/search?%s", g.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Results []struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
			Name      string  `json:"name"`
			Country   string  `json:"country"`
			Admin1    string  `json:"admin1"`
			Timezone  string  `json:"timezone"`
		} `json:"results"`
	}

	if err := getJSON(ctx, g.name, g.httpCfg, g.circuit, buildRequest, &payload); err != nil {
		return weather.Coordinates{}, weather.NewTransportError("geocode "+city, err)
	}

	if len(payload.Results) == 0 {
		return weather.Coordinates{}, &weather.NotFoundError{City: city}
	}

	r := payload.Results[0]
	coords := weather.Coordinates{
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Name:      r.Name,
		Country:   r.Country,
		Region:    r.Admin1,
		Timezone:  r.Timezone,
	}
	if coords.Name == "" {
		coords.Name = city
	}

	if err := validate.Struct(coords); err != nil {
		return weather.Coordinates{}, weather.NewTransportError("geocode "+city, fmt.Errorf("invalid coordinates: %w", err))
	}

	return coords, nil
}
