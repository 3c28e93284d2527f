package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-analytics/internal/common"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// WeatherAPIProvider implements the weather.Provider interface for WeatherAPI.com.
type WeatherAPIProvider struct {
	name     string
	apiKey   string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	sunTimes weather.SunTimesPolicy
}

func NewWeatherAPIProvider(client *http.Client, apiKey string, rps float64, sunTimes weather.SunTimesPolicy) *WeatherAPIProvider {
	return &WeatherAPIProvider{
		name:     "weatherapi",
		apiKey:   apiKey,
		baseURL:  "https://api.weatherapi.com/v1/current.json",
		httpCfg:  newHTTPConfig(client, rps),
		circuit:  newCircuitBreaker("weatherapi"),
		sunTimes: sunTimes,
	}
}

func (p *WeatherAPIProvider) Name() string {
	return p.name
}

func (p *WeatherAPIProvider) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	if p.apiKey == "" {
		return weather.Reading{}, fmt.Errorf("weatherapi api key is not configured")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("key", p.apiKey)
		// WeatherAPI uses "q" for location; it accepts "lat,lon".
		values.Set("q", formatCoord(coords.Latitude)+","+formatCoord(coords.Longitude))

		u := fmt.Sprintf("%s?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload struct {
		Location struct {
			TzID string `json:"tz_id"`
		} `json:"location"`
		Current struct {
			LastUpdatedEpoch int64   `json:"last_updated_epoch"`
			TempC            float64 `json:"temp_c"`
			FeelslikeC       float64 `json:"feelslike_c"`
			Humidity         float64 `json:"humidity"`
			WindKph          float64 `json:"wind_kph"`
			WindDegree       float64 `json:"wind_degree"`
			PressureMb       float64 `json:"pressure_mb"`
			VisKm            float64 `json:"vis_km"`
			Cloud            float64 `json:"cloud"`
			Condition        struct {
				Text string `json:"text"`
			} `json:"condition"`
		} `json:"current"`
	}

	if err := getJSON(ctx, p.name, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weather.Reading{}, weather.NewTransportError("weatherapi current", err)
	}

	observed := payload.Current.LastUpdatedEpoch
	if observed == 0 {
		observed = time.Now().Unix()
	}

	visibility := payload.Current.VisKm * 1000
	if visibility <= 0 {
		visibility = defaultVisibilityM
	}

	tz := coords.Timezone
	if tz == "" {
		tz = payload.Location.TzID
	}

	cond := mapWeatherAPICondition(payload.Current.Condition.Text)
	desc := payload.Current.Condition.Text
	if cond == weather.ConditionUnknown {
		desc = "Unknown weather"
	}

	reading := weather.Reading{
		City:        coords.Name,
		Temperature: weather.Round1(payload.Current.TempC),
		FeelsLike:   weather.Round1(payload.Current.FeelslikeC),
		Humidity:    payload.Current.Humidity,
		Pressure:    payload.Current.PressureMb,
		// Convert wind from kph to m/s.
		WindSpeed:   weather.Round1(payload.Current.WindKph / 3.6),
		WindDeg:     payload.Current.WindDegree,
		Condition:   cond,
		Description: desc,
		Visibility:  visibility,
		CloudCover:  payload.Current.Cloud,
		ObservedAt:  observed,
		Coordinates: coords,
		Timezone:    tz,
		Provider:    p.name,
	}
	weather.ApplySunTimes(&reading, p.sunTimes)

	return reading, nil
}

// mapWeatherAPICondition classifies free-text conditions; order matters
// ("Patchy light rain with thunder" is a thunderstorm).
func mapWeatherAPICondition(text string) weather.Condition {
	switch {
	case text == "":
		return weather.ConditionUnknown
	case common.HasAnyFold(text, "thunder", "storm"):
		return weather.ConditionThunderstorm
	case common.HasAnyFold(text, "drizzle"):
		return weather.ConditionDrizzle
	case common.HasAnyFold(text, "rain", "shower"):
		return weather.ConditionRain
	case common.HasAnyFold(text, "snow", "sleet", "blizzard", "ice pellets"):
		return weather.ConditionSnow
	case common.HasAnyFold(text, "fog", "mist"):
		return weather.ConditionFog
	case common.HasAnyFold(text, "cloud", "overcast"):
		return weather.ConditionClouds
	case common.HasAnyFold(text, "sunny", "clear"):
		return weather.ConditionClear
	default:
		return weather.ConditionUnknown
	}
}
