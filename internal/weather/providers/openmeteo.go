package providers

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/i474232898/weather-analytics/internal/weather"
)

const (
	defaultVisibilityM  = 10000
	openMeteoTimeLayout = "2006-01-02T15:04"
	forecastSampleStep  = 3
	forecastMaxEntries  = 40
)

var currentFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"apparent_temperature",
	"weather_code",
	"surface_pressure",
	"wind_speed_10m",
	"wind_direction_10m",
	"cloud_cover",
	"visibility",
}

var hourlyFields = []string{
	"temperature_2m",
	"relative_humidity_2m",
	"weather_code",
	"surface_pressure",
	"wind_speed_10m",
	"wind_direction_10m",
}

// OpenMeteoProvider implements weather.Provider and weather.ForecastProvider for Open-Meteo.
type OpenMeteoProvider struct {
	name     string
	baseURL  string
	httpCfg  HTTPClientConfig
	circuit  *gobreaker.CircuitBreaker
	sunTimes weather.SunTimesPolicy
}

// NewOpenMeteoProvider creates the provider. baseURL is the API root, e.g.
// https://api.open-meteo.com/v1. sunTimes fills sunrise/sunset when the
// response lacks them; nil leaves them unset.
func NewOpenMeteoProvider(client *http.Client, baseURL string, rps float64, sunTimes weather.SunTimesPolicy) *OpenMeteoProvider {
	return &OpenMeteoProvider{
		name:     "openmeteo",
		baseURL:  strings.TrimRight(baseURL, "/"),
		httpCfg:  newHTTPConfig(client, rps),
		circuit:  newCircuitBreaker("openmeteo"),
		sunTimes: sunTimes,
	}
}

func (p *OpenMeteoProvider) Name() string {
	return p.name
}

// BaseURL returns the configured API root.
func (p *OpenMeteoProvider) BaseURL() string {
	return p.baseURL
}

type openMeteoCurrent struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Current          struct {
		Time                string   `json:"time"`
		Temperature2m       float64  `json:"temperature_2m"`
		RelativeHumidity2m  float64  `json:"relative_humidity_2m"`
		ApparentTemperature *float64 `json:"apparent_temperature"`
		WeatherCode         *int     `json:"weather_code"`
		SurfacePressure     float64  `json:"surface_pressure"`
		WindSpeed10m        float64  `json:"wind_speed_10m"`
		WindDirection10m    float64  `json:"wind_direction_10m"`
		CloudCover          *float64 `json:"cloud_cover"`
		Visibility          *float64 `json:"visibility"`
	} `json:"current"`
	Daily struct {
		Sunrise []string `json:"sunrise"`
		Sunset  []string `json:"sunset"`
	} `json:"daily"`
}

func (p *OpenMeteoProvider) FetchCurrent(ctx context.Context, coords weather.Coordinates) (weather.Reading, error) {
	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(coords.Latitude))
		values.Set("longitude", formatCoord(coords.Longitude))
		values.Set("current", strings.Join(currentFields, ","))
		values.Set("daily", "sunrise,sunset")
		values.Set("forecast_days", "1")
		values.Set("wind_speed_unit", "ms")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload openMeteoCurrent
	if err := getJSON(ctx, p.name, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weather.Reading{}, weather.NewTransportError("openmeteo forecast", err)
	}

	loc := time.FixedZone(payload.Timezone, payload.UTCOffsetSeconds)
	cur := payload.Current

	observed, err := time.ParseInLocation(openMeteoTimeLayout, cur.Time, loc)
	if err != nil {
		observed = time.Now()
	}

	info := weather.DescribeCode(-1)
	if cur.WeatherCode != nil {
		info = weather.DescribeCode(*cur.WeatherCode)
	}

	feelsLike := cur.Temperature2m
	if cur.ApparentTemperature != nil {
		feelsLike = *cur.ApparentTemperature
	}

	visibility := float64(defaultVisibilityM)
	if cur.Visibility != nil && *cur.Visibility > 0 {
		visibility = *cur.Visibility
	}

	var cloudCover float64
	if cur.CloudCover != nil {
		cloudCover = *cur.CloudCover
	}

	tz := coords.Timezone
	if tz == "" {
		tz = payload.Timezone
	}

	reading := weather.Reading{
		City:        coords.Name,
		Temperature: weather.Round1(cur.Temperature2m),
		FeelsLike:   weather.Round1(feelsLike),
		Humidity:    cur.RelativeHumidity2m,
		Pressure:    cur.SurfacePressure,
		WindSpeed:   weather.Round1(cur.WindSpeed10m),
		WindDeg:     cur.WindDirection10m,
		Condition:   info.Condition,
		Description: info.Description,
		Icon:        info.Icon,
		Visibility:  visibility,
		CloudCover:  cloudCover,
		ObservedAt:  observed.Unix(),
		Sunrise:     firstLocalEpoch(payload.Daily.Sunrise, loc),
		Sunset:      firstLocalEpoch(payload.Daily.Sunset, loc),
		Coordinates: coords,
		Timezone:    tz,
		Provider:    p.name,
	}
	weather.ApplySunTimes(&reading, p.sunTimes)

	return reading, nil
}

type openMeteoHourly struct {
	Timezone         string `json:"timezone"`
	UTCOffsetSeconds int    `json:"utc_offset_seconds"`
	Hourly           struct {
		Time               []string  `json:"time"`
		Temperature2m      []float64 `json:"temperature_2m"`
		RelativeHumidity2m []float64 `json:"relative_humidity_2m"`
		WeatherCode        []int     `json:"weather_code"`
		SurfacePressure    []float64 `json:"surface_pressure"`
		WindSpeed10m       []float64 `json:"wind_speed_10m"`
		WindDirection10m   []float64 `json:"wind_direction_10m"`
	} `json:"hourly"`
}

// FetchForecast returns an hourly forecast sampled every third hour, at most 40 entries.
func (p *OpenMeteoProvider) FetchForecast(ctx context.Context, coords weather.Coordinates, days int) (weather.Forecast, error) {
	if days <= 0 {
		return weather.Forecast{}, fmt.Errorf("days must be greater than zero")
	}

	buildRequest := func() (*http.Request, error) {
		values := url.Values{}
		values.Set("latitude", formatCoord(coords.Latitude))
		values.Set("longitude", formatCoord(coords.Longitude))
		values.Set("hourly", strings.Join(hourlyFields, ","))
		values.Set("forecast_days", strconv.Itoa(days))
		values.Set("wind_speed_unit", "ms")
		values.Set("timezone", "auto")

		u := fmt.Sprintf("%s/forecast?%s", p.baseURL, values.Encode())
		return http.NewRequest(http.MethodGet, u, nil)
	}

	var payload openMeteoHourly
	if err := getJSON(ctx, p.name, p.httpCfg, p.circuit, buildRequest, &payload); err != nil {
		return weather.Forecast{}, weather.NewTransportError("openmeteo hourly forecast", err)
	}

	loc := time.FixedZone(payload.Timezone, payload.UTCOffsetSeconds)
	h := payload.Hourly

	forecast := weather.Forecast{
		City:        coords.Name,
		Country:     coords.Country,
		Coordinates: coords,
		Entries:     make([]weather.ForecastEntry, 0, forecastMaxEntries),
	}

	for i := 0; i < len(h.Time) && len(forecast.Entries) < forecastMaxEntries; i += forecastSampleStep {
		ts, err := time.ParseInLocation(openMeteoTimeLayout, h.Time[i], loc)
		if err != nil {
			continue
		}
		info := weather.DescribeCode(intAt(h.WeatherCode, i, -1))
		forecast.Entries = append(forecast.Entries, weather.ForecastEntry{
			Time:        ts.Unix(),
			TimeText:    ts.UTC().Format("2006-01-02 15:04:05"),
			Temperature: weather.Round1(floatAt(h.Temperature2m, i)),
			Humidity:    floatAt(h.RelativeHumidity2m, i),
			Pressure:    floatAt(h.SurfacePressure, i),
			WindSpeed:   weather.Round1(floatAt(h.WindSpeed10m, i)),
			WindDeg:     floatAt(h.WindDirection10m, i),
			Condition:   info.Condition,
			Description: info.Description,
			Icon:        info.Icon,
		})
	}

	return forecast, nil
}

func formatCoord(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// firstLocalEpoch parses the first element of an Open-Meteo local time array; 0 when absent.
func firstLocalEpoch(values []string, loc *time.Location) int64 {
	if len(values) == 0 || values[0] == "" {
		return 0
	}
	t, err := time.ParseInLocation(openMeteoTimeLayout, values[0], loc)
	if err != nil {
		return 0
	}
	return t.Unix()
}

func floatAt(values []float64, i int) float64 {
	if i < len(values) {
		return values[i]
	}
	return 0
}

func intAt(values []int, i, def int) int {
	if i < len(values) {
		return values[i]
	}
	return def
}
