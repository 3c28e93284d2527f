package weather

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

type fakeResolver struct {
	coords map[string]Coordinates
	err    map[string]error
	delay  time.Duration
	calls  atomic.Int64
}

func (f *fakeResolver) Resolve(ctx context.Context, city string) (Coordinates, error) {
	f.calls.Add(1)
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return Coordinates{}, ctx.Err()
		}
	}
	if err, ok := f.err[city]; ok {
		return Coordinates{}, err
	}
	if c, ok := f.coords[city]; ok {
		return c, nil
	}
	return Coordinates{}, &NotFoundError{City: city}
}

type fakeProvider struct {
	mu       sync.Mutex
	readings map[string]Reading
	panicFor string
	seen     []string
}

func (f *fakeProvider) Name() string { return "fake" }

func (f *fakeProvider) FetchCurrent(_ context.Context, coords Coordinates) (Reading, error) {
	f.mu.Lock()
	f.seen = append(f.seen, coords.Name)
	f.mu.Unlock()

	if coords.Name == f.panicFor {
		panic("boom")
	}
	r, ok := f.readings[coords.Name]
	if !ok {
		return Reading{}, NewTransportError("fake current", errTestUpstream)
	}
	r.Coordinates = coords
	r.Provider = "fake"
	return r, nil
}

type testError string

func (e testError) Error() string { return string(e) }

const errTestUpstream = testError("upstream unavailable")

// newFakes returns a resolver/provider pair that knows the given cities.
func newFakes(readings ...Reading) (*fakeResolver, *fakeProvider) {
	res := &fakeResolver{coords: map[string]Coordinates{}, err: map[string]error{}}
	prov := &fakeProvider{readings: map[string]Reading{}}
	for i, r := range readings {
		res.coords[r.City] = Coordinates{Latitude: float64(i), Longitude: float64(i), Name: r.City}
		prov.readings[r.City] = r
	}
	return res, prov
}

func reading(city string, temp, humidity, wind float64, cond Condition) Reading {
	return Reading{
		City:        city,
		Temperature: temp,
		Humidity:    humidity,
		WindSpeed:   wind,
		Condition:   cond,
	}
}

func entry(city string, r Reading) BatchEntry {
	return BatchEntry{CityName: city, Reading: &r}
}
