package weather

import (
	"fmt"
	"strings"
)

// Filter selects a trend bucket.
type Filter string

const (
	FilterAll    Filter = "all"
	FilterHot    Filter = "hot"
	FilterCold   Filter = "cold"
	FilterRainy  Filter = "rainy"
	FilterWindy  Filter = "windy"
	FilterHumid  Filter = "humid"
	FilterClear  Filter = "clear"
	FilterCloudy Filter = "cloudy"
)

// Filters lists every known filter key.
var Filters = []Filter{FilterAll, FilterHot, FilterCold, FilterRainy, FilterWindy, FilterHumid, FilterClear, FilterCloudy}

// Trend is the result of a trend query. Data holds []Place for bucket
// filters and the whole Aggregate for FilterAll.
type Trend struct {
	Title  string `json:"title"`
	Data   any    `json:"data"`
	Metric string `json:"metric"`
	Unit   string `json:"unit"`
}

type trendSpec struct {
	title  string
	metric string
	unit   string
	places func(a *Aggregate) []Place
}

var trendSpecs = map[Filter]trendSpec{
	FilterHot:    {"Hottest Places", "temperature", "°C", func(a *Aggregate) []Place { return a.HotPlaces }},
	FilterCold:   {"Coldest Places", "temperature", "°C", func(a *Aggregate) []Place { return a.ColdPlaces }},
	FilterRainy:  {"Rainy Places", "humidity", "%", func(a *Aggregate) []Place { return a.RainyPlaces }},
	FilterWindy:  {"Windiest Places", "windSpeed", "m/s", func(a *Aggregate) []Place { return a.WindyPlaces }},
	FilterHumid:  {"Most Humid Places", "humidity", "%", func(a *Aggregate) []Place { return a.HumidPlaces }},
	FilterClear:  {"Clear Weather Places", "temperature", "°C", func(a *Aggregate) []Place { return a.ClearPlaces }},
	FilterCloudy: {"Cloudy Places", "temperature", "°C", func(a *Aggregate) []Place { return a.CloudyPlaces }},
}

// ParseFilter accepts a filter key case-insensitively. An empty key is
// FilterAll; anything else unknown is ErrUnknownFilter.
func ParseFilter(key string) (Filter, error) {
	f := Filter(strings.ToLower(strings.TrimSpace(key)))
	if f == "" || f == FilterAll {
		return FilterAll, nil
	}
	if _, ok := trendSpecs[f]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownFilter, key)
	}
	return f, nil
}

// QueryTrend returns the bucket selected by filter, or the whole aggregate
// for FilterAll and any filter without a bucket.
func QueryTrend(agg Aggregate, filter Filter) Trend {
	spec, ok := trendSpecs[filter]
	if !ok {
		return Trend{
			Title:  "Weather Overview",
			Data:   agg,
			Metric: "general",
			Unit:   "",
		}
	}
	return Trend{
		Title:  spec.title,
		Data:   spec.places(&agg),
		Metric: spec.metric,
		Unit:   spec.unit,
	}
}
