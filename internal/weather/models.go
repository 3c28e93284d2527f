package weather

import (
	"math"

	"github.com/goccy/go-json"
)

// Condition represents a normalized high-level weather condition.
type Condition string

const (
	ConditionClear        Condition = "Clear"
	ConditionClouds       Condition = "Clouds"
	ConditionFog          Condition = "Fog"
	ConditionDrizzle      Condition = "Drizzle"
	ConditionRain         Condition = "Rain"
	ConditionSnow         Condition = "Snow"
	ConditionThunderstorm Condition = "Thunderstorm"
	ConditionUnknown      Condition = "Unknown"
)

// Coordinates is the result of resolving a city name.
// Latitude/Longitude must be within the usual geographic ranges.
type Coordinates struct {
	Latitude  float64 `json:"latitude" validate:"gte=-90,lte=90"`
	Longitude float64 `json:"longitude" validate:"gte=-180,lte=180"`
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Region    string  `json:"region,omitempty"`
	Timezone  string  `json:"timezone,omitempty"`
}

// Reading is the canonical, provider-agnostic current weather view.
// Temperature, FeelsLike and WindSpeed are rounded to one decimal.
type Reading struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temperatureC"`
	FeelsLike   float64   `json:"feelsLikeC"`
	Humidity    float64   `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     float64   `json:"windDeg"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
	Visibility  float64   `json:"visibilityM"`
	CloudCover  float64   `json:"cloudCoverPercent"`
	ObservedAt  int64     `json:"observedAt"`

	// Sunrise/Sunset are zero when the provider omitted them and no
	// fallback policy produced a value.
	Sunrise           int64 `json:"sunrise,omitempty"`
	Sunset            int64 `json:"sunset,omitempty"`
	SunTimesEstimated bool  `json:"sunTimesEstimated,omitempty"`

	Coordinates Coordinates `json:"coordinates"`
	Timezone    string      `json:"timezone,omitempty"`
	Provider    string      `json:"provider"`
}

// BatchEntry is the outcome for a single requested city.
// Exactly one of Reading and FailureReason is set.
type BatchEntry struct {
	CityName      string   `json:"cityName"`
	Reading       *Reading `json:"reading,omitempty"`
	FailureReason string   `json:"failureReason,omitempty"`
}

// OK reports whether the entry holds a reading.
func (e BatchEntry) OK() bool {
	return e.Reading != nil
}

// BatchResult holds one entry per requested city in request order.
type BatchResult []BatchEntry

// Place is a single member of a trend bucket.
type Place struct {
	City        string    `json:"city"`
	Temperature float64   `json:"temp"`
	Humidity    float64   `json:"humidity"`
	WindSpeed   float64   `json:"windSpeed"`
	Condition   Condition `json:"condition"`
}

// TemperatureRange is {+Inf, -Inf} when no reading contributed.
type TemperatureRange struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
}

// EmptyTemperatureRange returns the sentinel range used before any reading is seen.
func EmptyTemperatureRange() TemperatureRange {
	return TemperatureRange{Min: math.Inf(1), Max: math.Inf(-1)}
}

// Empty reports whether the range still holds the sentinel.
func (r TemperatureRange) Empty() bool {
	return r.Min > r.Max
}

// MarshalJSON encodes the empty sentinel as null; JSON has no infinities.
func (r TemperatureRange) MarshalJSON() ([]byte, error) {
	if r.Empty() {
		return []byte("null"), nil
	}
	type plain TemperatureRange
	return json.Marshal(plain(r))
}

// Aggregate is the analytics view over a batch. It is recomputed from
// scratch on every call.
type Aggregate struct {
	AverageTemperature float64           `json:"averageTemperature"`
	AverageHumidity    float64           `json:"averageHumidity"`
	AverageWindSpeed   float64           `json:"averageWindSpeed"`
	CitiesCount        int               `json:"citiesCount"`
	ValidCount         int               `json:"validCount"`
	HasData            bool              `json:"hasData"`
	WeatherConditions  map[Condition]int `json:"weatherConditions"`
	TemperatureRange   TemperatureRange  `json:"temperatureRange"`

	HotPlaces    []Place `json:"hotPlaces"`
	ColdPlaces   []Place `json:"coldPlaces"`
	RainyPlaces  []Place `json:"rainyPlaces"`
	WindyPlaces  []Place `json:"windyPlaces"`
	HumidPlaces  []Place `json:"humidPlaces"`
	ClearPlaces  []Place `json:"clearPlaces"`
	CloudyPlaces []Place `json:"cloudyPlaces"`
}

// ForecastEntry is one sampled point of a multi-day forecast.
type ForecastEntry struct {
	Time        int64     `json:"dt"`
	TimeText    string    `json:"dtText"`
	Temperature float64   `json:"temperatureC"`
	Humidity    float64   `json:"humidityPercent"`
	Pressure    float64   `json:"pressureHpa"`
	WindSpeed   float64   `json:"windSpeed"`
	WindDeg     float64   `json:"windDeg"`
	Condition   Condition `json:"condition"`
	Description string    `json:"description"`
	Icon        string    `json:"icon,omitempty"`
}

// Forecast is a sampled forecast for a resolved city, ordered by time.
type Forecast struct {
	City        string          `json:"city"`
	Country     string          `json:"country"`
	Coordinates Coordinates     `json:"coordinates"`
	Entries     []ForecastEntry `json:"list"`
}

// UserLocation is the approximate location of the caller.
type UserLocation struct {
	City      string  `json:"city"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
	Timezone  string  `json:"timezone"`
	Fallback  bool    `json:"fallback,omitempty"`
}
