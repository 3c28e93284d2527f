package weather

import (
	"fmt"
	"time"

	"github.com/sixdouglas/suncalc"
)

// SunTimesPolicy supplies sunrise/sunset when a provider omits them.
// ok=false leaves the fields unset on the reading.
type SunTimesPolicy interface {
	SunTimes(coords Coordinates, observed time.Time) (sunrise, sunset time.Time, ok bool)
}

// SolarSunTimes computes sunrise/sunset for the observation day from the coordinates.
type SolarSunTimes struct{}

func (SolarSunTimes) SunTimes(coords Coordinates, observed time.Time) (time.Time, time.Time, bool) {
	times := suncalc.GetTimes(observed, coords.Latitude, coords.Longitude)
	sunrise := times["sunrise"].Value
	sunset := times["sunset"].Value
	// Polar day/night yields zero or invalid times.
	if sunrise.IsZero() || sunset.IsZero() || !sunset.After(sunrise) {
		return time.Time{}, time.Time{}, false
	}
	return sunrise, sunset, true
}

// OffsetSunTimes reports Now()-Offset and Now()+Offset.
type OffsetSunTimes struct {
	Offset time.Duration
	Now    func() time.Time
}

func (p OffsetSunTimes) SunTimes(_ Coordinates, _ time.Time) (time.Time, time.Time, bool) {
	now := time.Now
	if p.Now != nil {
		now = p.Now
	}
	t := now()
	return t.Add(-p.Offset), t.Add(p.Offset), true
}

// NoSunTimes never synthesizes values.
type NoSunTimes struct{}

func (NoSunTimes) SunTimes(Coordinates, time.Time) (time.Time, time.Time, bool) {
	return time.Time{}, time.Time{}, false
}

// SunTimesPolicyByName maps the configured policy name.
func SunTimesPolicyByName(name string) (SunTimesPolicy, error) {
	switch name {
	case "", "solar":
		return SolarSunTimes{}, nil
	case "offset":
		return OffsetSunTimes{Offset: time.Hour}, nil
	case "none":
		return NoSunTimes{}, nil
	default:
		return nil, fmt.Errorf("unknown sun times fallback %q", name)
	}
}

// ApplySunTimes fills missing sunrise/sunset on r using policy.
func ApplySunTimes(r *Reading, policy SunTimesPolicy) {
	if r.Sunrise != 0 && r.Sunset != 0 {
		return
	}
	if policy == nil {
		return
	}
	sunrise, sunset, ok := policy.SunTimes(r.Coordinates, time.Unix(r.ObservedAt, 0).UTC())
	if !ok {
		return
	}
	if r.Sunrise == 0 {
		r.Sunrise = sunrise.Unix()
	}
	if r.Sunset == 0 {
		r.Sunset = sunset.Unix()
	}
	r.SunTimesEstimated = true
}
