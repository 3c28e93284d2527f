package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/i474232898/weather-analytics/internal/weather"
)

// IPLocator implements weather.Locator with an ip-api.com compatible endpoint.
type IPLocator struct {
	client *resty.Client
	url    string
}

func NewIPLocator(url string, timeout time.Duration) *IPLocator {
	return &IPLocator{
		client: resty.New().SetTimeout(timeout),
		url:    url,
	}
}

// URL returns the configured endpoint.
func (l *IPLocator) URL() string {
	return l.url
}

func (l *IPLocator) Locate(ctx context.Context) (weather.UserLocation, error) {
	var payload struct {
		Status   string  `json:"status"`
		Message  string  `json:"message"`
		City     string  `json:"city"`
		Country  string  `json:"country"`
		Lat      float64 `json:"lat"`
		Lon      float64 `json:"lon"`
		Timezone string  `json:"timezone"`
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetResult(&payload).
		Get(l.url)
	if err != nil {
		return weather.UserLocation{}, weather.NewTransportError("ip geolocation", err)
	}
	if resp.IsError() {
		return weather.UserLocation{}, weather.NewTransportError("ip geolocation",
			fmt.Errorf("%w: %d", errUnexpected, resp.StatusCode()))
	}
	if payload.Status != "success" {
		return weather.UserLocation{}, fmt.Errorf("invalid response from geolocation service: %s", payload.Message)
	}

	return weather.UserLocation{
		City:      payload.City,
		Country:   payload.Country,
		Latitude:  payload.Lat,
		Longitude: payload.Lon,
		Timezone:  payload.Timezone,
	}, nil
}
