package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-analytics/internal/weather"
)

// OpenWeatherProvider implements the weather.Provider interface for OpenWeatherMap.
type OpenWeatherProvider struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	sunTimes weather.SunTimesPolicy
}

func NewOpenWeatherProvider(client *http.Client, apiKey string, rps float64, sunTimes weather.SunTimesPolicy) *OpenWeatherProvider {
	return &OpenWeatherProvider{
		name:     "openweathermap",
		apiKey:   apiKey,
		baseURL:  "https://api.openweathermap.org/data/2.5/weather",
		httpCfg:  newHTTPConfig(client, rps),
		circuit:  newCircuitBreaker("openweather"),
		sunTimes: sunTimes,
	}
}

func (p *OpenWeatherProvider) Name() string {
	return p.name
}

func (p *OpenWeatherProvider) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("openweather api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("appid", p.apiKey)
		values.Set("units", "metric")
		values.Set("lat", formatCoord(coords.Latitude))
		values.Set("lon", formatCoord(coords.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Dt   int64 `json:"dt"`
		Main struct {
			Temp      float64 `json:"temp"`
			FeelsLike float64 `json:"feels_like"`
			Humidity  float64 `json:"humidity"`
			Pressure  float64 `json:"pressure"`
		} `json:"main"`
		Wind struct {
			Speed float64 `json:"speed"`
			Deg   float64 `json:"deg"`
		} `json:"wind"`
		Clouds struct {
			All float64 `json:"all"`
		} `json:"clouds"`
		Visibility float64 `json:"visibility"`
		Sys        struct {
			Sunrise int64 `json:"sunrise"`
			Sunset  int64 `json:"sunset"`
		} `json:"sys"`
		Weather []owmCondition `json:"weather"`
	}

	if err := getJSON(ctx, p.name, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weather.Reading{}, weather.NewTransportError("openweather current", err)
	}

	observed := payload.Dt
	if observed == 0 {
		observed = time.Now().Unix()
	}

	visibility := payload.Visibility
	if visibility <= 0 {
		visibility = defaultVisibilityM
	}

	cond, desc, icon := mapOpenWeatherCondition(payload.Weather)

	reading := weather.Reading{
		City:        coords.Name,
		Temperature: weather.Round1(payload.Main.Temp),
		FeelsLike:   weather.Round1(payload.Main.FeelsLike),
		Humidity:    payload.Main.Humidity,
		Pressure:    payload.Main.Pressure,
		WindSpeed:   weather.Round1(payload.Wind.Speed),
		WindDeg:     payload.Wind.Deg,
		Condition:   cond,
		Description: desc,
		Icon:        icon,
		Visibility:  visibility,
		CloudCover:  payload.Clouds.All,
		ObservedAt:  observed,
		Sunrise:     payload.Sys.Sunrise,
		Sunset:      payload.Sys.Sunset,
		Coordinates: coords,
		Timezone:    coords.Timezone,
		Provider:    p.name,
	}
	weather.ApplySunTimes(&reading, p.sunTimes)

	return reading, nil
}

type owmCondition struct {
	Main        string `json:"main"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
}

func mapOpenWeatherCondition(items []owmCondition) (weather.Condition, string, string) {
	if len(items) == 0 {
		return weather.ConditionUnknown, "Unknown weather", "01d"
	}
	it := items[0]
	desc := it.Description
	if desc != "" {
		desc = strings.ToUpper(desc[:1]) + desc[1:]
	}

	var cond weather.Condition
	switch it.Main {
	case "Clear":
		cond = weather.ConditionClear
	case "Clouds":
		cond = weather.ConditionClouds
	case "Drizzle":
		cond = weather.ConditionDrizzle
	case "Rain":
		cond = weather.ConditionRain
	case "Snow":
		cond = weather.ConditionSnow
	case "Thunderstorm":
		cond = weather.ConditionThunderstorm
	case "Mist", "Fog", "Haze", "Smoke":
		cond = weather.ConditionFog
	default:
		return weather.ConditionUnknown, "Unknown weather", "01d"
	}
	return cond, desc, it.Icon
}
