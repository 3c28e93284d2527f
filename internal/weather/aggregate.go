package weather

import (
	"math"
	"sort"

	"github.com/i474232898/weather-analytics/internal/common"
)

// Classification thresholds.
const (
	HotAbove   = 25.0 // °C, exclusive
	ColdBelow  = 10.0 // °C, exclusive
	WindyAbove = 10.0 // m/s, exclusive
	HumidAbove = 70.0 // %, exclusive
)

// bucket is an independent membership predicate; a reading may satisfy several.
type bucket struct {
	match func(r *Reading) bool
	dest  func(a *Aggregate) *[]Place
}

var buckets = []bucket{
	{
		match: func(r *Reading) bool { return r.Temperature > HotAbove },
		dest:  func(a *Aggregate) *[]Place { return &a.HotPlaces },
	},
	{
		match: func(r *Reading) bool { return r.Temperature < ColdBelow },
		dest:  func(a *Aggregate) *[]Place { return &a.ColdPlaces },
	},
	{
		match: func(r *Reading) bool { return common.HasAnyFold(string(r.Condition), "rain", "drizzle", "thunderstorm") },
		dest:  func(a *Aggregate) *[]Place { return &a.RainyPlaces },
	},
	{
		match: func(r *Reading) bool { return r.WindSpeed > WindyAbove },
		dest:  func(a *Aggregate) *[]Place { return &a.WindyPlaces },
	},
	{
		match: func(r *Reading) bool { return r.Humidity > HumidAbove },
		dest:  func(a *Aggregate) *[]Place { return &a.HumidPlaces },
	},
	{
		match: func(r *Reading) bool { return common.HasAnyFold(string(r.Condition), "clear", "sunny") },
		dest:  func(a *Aggregate) *[]Place { return &a.ClearPlaces },
	},
	{
		match: func(r *Reading) bool { return common.HasAnyFold(string(r.Condition), "cloud", "overcast") },
		dest:  func(a *Aggregate) *[]Place { return &a.CloudyPlaces },
	},
}

// AggregateBatch computes averages, range, condition histogram and trend
// buckets over the entries of batch that hold a reading. It is a pure
// function of its input.
func AggregateBatch(batch BatchResult) Aggregate {
	agg := Aggregate{
		CitiesCount:       len(batch),
		WeatherConditions: make(map[Condition]int),
		TemperatureRange:  EmptyTemperatureRange(),
		HotPlaces:         []Place{},
		ColdPlaces:        []Place{},
		RainyPlaces:       []Place{},
		WindyPlaces:       []Place{},
		HumidPlaces:       []Place{},
		ClearPlaces:       []Place{},
		CloudyPlaces:      []Place{},
	}

	var (
		sumTemp     float64
		sumHumidity float64
		sumWind     float64
		valid       int
	)

	for _, e := range batch {
		r := e.Reading
		if r == nil {
			continue
		}
		valid++

		sumTemp += r.Temperature
		sumHumidity += r.Humidity
		sumWind += r.WindSpeed

		agg.TemperatureRange.Min = math.Min(agg.TemperatureRange.Min, r.Temperature)
		agg.TemperatureRange.Max = math.Max(agg.TemperatureRange.Max, r.Temperature)

		agg.WeatherConditions[r.Condition]++

		place := Place{
			City:        e.CityName,
			Temperature: RoundHalfUp(r.Temperature),
			Humidity:    r.Humidity,
			WindSpeed:   RoundHalfUp(r.WindSpeed),
			Condition:   r.Condition,
		}
		for _, b := range buckets {
			if b.match(r) {
				dst := b.dest(&agg)
				*dst = append(*dst, place)
			}
		}
	}

	agg.ValidCount = valid
	if valid > 0 {
		n := float64(valid)
		agg.HasData = true
		agg.AverageTemperature = Round1(sumTemp / n)
		agg.AverageHumidity = RoundHalfUp(sumHumidity / n)
		agg.AverageWindSpeed = Round1(sumWind / n)
	}

	sort.SliceStable(agg.HotPlaces, func(i, j int) bool {
		return agg.HotPlaces[i].Temperature > agg.HotPlaces[j].Temperature
	})
	sort.SliceStable(agg.ColdPlaces, func(i, j int) bool {
		return agg.ColdPlaces[i].Temperature < agg.ColdPlaces[j].Temperature
	})
	sort.SliceStable(agg.WindyPlaces, func(i, j int) bool {
		return agg.WindyPlaces[i].WindSpeed > agg.WindyPlaces[j].WindSpeed
	})
	sort.SliceStable(agg.HumidPlaces, func(i, j int) bool {
		return agg.HumidPlaces[i].Humidity > agg.HumidPlaces[j].Humidity
	})

	return agg
}
