package weather

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

type memStore struct {
	mu    sync.Mutex
	snaps []AnalyticsSnapshot
}

func (m *memStore) SaveSnapshot(s AnalyticsSnapshot) AnalyticsSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.ID = "snap-" + string(rune('a'+len(m.snaps)))
	m.snaps = append(m.snaps, s)
	return s
}

func (m *memStore) GetLatest(key string) (AnalyticsSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.snaps) - 1; i >= 0; i-- {
		if m.snaps[i].BatchKey == key {
			return m.snaps[i], nil
		}
	}
	return AnalyticsSnapshot{}, errors.New("missing")
}

func (m *memStore) GetRange(key string, from, to time.Time) ([]AnalyticsSnapshot, error) {
	return nil, errors.New("not implemented")
}

type fakeLocator struct {
	loc UserLocation
	err error
}

func (f fakeLocator) Locate(context.Context) (UserLocation, error) {
	return f.loc, f.err
}

func newTestService(store SnapshotStore, locator Locator, readings ...Reading) *Service {
	res, prov := newFakes(readings...)
	cfg := ServiceConfig{
		DefaultCities: []string{"London", "Cairo"},
		CallTimeout:   time.Second,
	}
	return NewService(cfg, res, prov, locator, store)
}

func TestServiceCurrentWeatherNotFound(t *testing.T) {
	svc := newTestService(nil, nil)

	_, err := svc.CurrentWeather(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	want := `City "Atlantis" not found. Please check the spelling and try again.`
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestServiceTrendsDefaultBatch(t *testing.T) {
	svc := newTestService(nil, nil,
		reading("London", 11, 82, 5, ConditionRain),
		reading("Cairo", 33, 20, 4, ConditionClear),
	)

	trend, err := svc.Trends(context.Background(), "hot", nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	places := trend.Data.([]Place)
	if len(places) != 1 || places[0].City != "Cairo" {
		t.Fatalf("unexpected hot places %+v", places)
	}

	if _, err := svc.Trends(context.Background(), "sunny", nil); !errors.Is(err, ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestServiceSearch(t *testing.T) {
	svc := newTestService(nil, nil, reading("London", 11, 82, 5, ConditionRain))

	ok := svc.Search(context.Background(), "London", true, 0)
	if !ok.Success || ok.Data == nil || len(ok.Suggestions) != 0 {
		t.Fatalf("unexpected success result %+v", ok)
	}

	invalid := svc.Search(context.Background(), "L", true, 0)
	if invalid.Success || invalid.Error != "City name must be at least 2 characters long" {
		t.Fatalf("unexpected invalid result %+v", invalid)
	}

	missing := svc.Search(context.Background(), "Londonderry", true, 0)
	if missing.Success || !strings.Contains(missing.Error, "not found") {
		t.Fatalf("unexpected missing result %+v", missing)
	}
	if len(missing.Suggestions) != 0 {
		t.Fatalf("no common city contains %q, got %v", "Londonderry", missing.Suggestions)
	}

	noSuggest := svc.Search(context.Background(), "Lond", false, 0)
	if noSuggest.Suggestions == nil || len(noSuggest.Suggestions) != 0 {
		t.Fatalf("suggestions should be an empty list when disabled, got %v", noSuggest.Suggestions)
	}
}

func TestServiceUserLocationFallback(t *testing.T) {
	svc := newTestService(nil, fakeLocator{err: errors.New("offline")})

	loc := svc.UserLocation(context.Background())
	if loc.City != "London" || loc.Latitude != 51.5074 || loc.Longitude != -0.1278 || !loc.Fallback {
		t.Fatalf("unexpected fallback %+v", loc)
	}

	want := UserLocation{City: "Lisbon", Country: "Portugal", Latitude: 38.72, Longitude: -9.14}
	svc = newTestService(nil, fakeLocator{loc: want})
	if got := svc.UserLocation(context.Background()); got != want {
		t.Fatalf("got %+v, want %+v", got, want)
	}
}

func TestServiceRefreshAnalytics(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store, nil,
		reading("London", 11, 82, 5, ConditionRain),
		reading("Cairo", 33, 20, 4, ConditionClear),
	)

	snap, err := svc.RefreshAnalytics(context.Background(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if snap.BatchKey != "london|cairo" || snap.ID == "" || snap.Aggregate.ValidCount != 2 {
		t.Fatalf("unexpected snapshot %+v", snap)
	}

	latest, err := svc.LatestAnalytics([]string{"London", "Cairo"})
	if err != nil || latest.ID != snap.ID {
		t.Fatalf("latest = %+v, %v", latest, err)
	}
}

func TestServiceRefreshAnalyticsNoReadings(t *testing.T) {
	store := &memStore{}
	svc := newTestService(store, nil)

	if _, err := svc.RefreshAnalytics(context.Background(), []string{"Atlantis"}); !errors.Is(err, ErrNoReadings) {
		t.Fatalf("expected ErrNoReadings, got %v", err)
	}
	if len(store.snaps) != 0 {
		t.Fatalf("nothing should be stored when every city fails")
	}
}

func TestServiceForecastUnsupported(t *testing.T) {
	svc := newTestService(nil, nil)
	if _, err := svc.Forecast(context.Background(), "London"); !errors.Is(err, ErrForecastUnsupported) {
		t.Fatalf("expected ErrForecastUnsupported, got %v", err)
	}
}

func TestServiceTestConnection(t *testing.T) {
	svc := newTestService(nil, nil)
	report := svc.TestConnection(context.Background())
	if report.Success || report.Error == "" || len(report.Instructions) == 0 {
		t.Fatalf("unexpected failing report %+v", report)
	}

	svc = newTestService(nil, nil, reading("London", 11, 82, 5, ConditionRain))
	report = svc.TestConnection(context.Background())
	if !report.Success || report.Provider != "fake" {
		t.Fatalf("unexpected report %+v", report)
	}
}

type forecastingProvider struct {
	*fakeProvider
}

func (forecastingProvider) FetchForecast(_ context.Context, coords Coordinates, _ int) (Forecast, error) {
	return Forecast{City: coords.Name}, nil
}

func TestServiceForecastNotFound(t *testing.T) {
	res, prov := newFakes()
	svc := NewService(ServiceConfig{CallTimeout: time.Second}, res, forecastingProvider{prov}, nil, nil)

	_, err := svc.Forecast(context.Background(), "Atlantis")
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	want := `City "Atlantis" not found for forecast. Please check the spelling and try again.`
	if err.Error() != want {
		t.Fatalf("error = %q, want %q", err.Error(), want)
	}
}

func TestServiceCurrentWeatherAt(t *testing.T) {
	svc := newTestService(nil, nil, reading("Your Location", 18, 55, 3, ConditionClear))

	r, err := svc.CurrentWeatherAt(context.Background(), 52.52, 13.41)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.City != "Your Location" || r.Coordinates.Country != "Unknown" {
		t.Fatalf("unexpected reading %+v", r)
	}
	if r.Coordinates.Latitude != 52.52 || r.Coordinates.Longitude != 13.41 {
		t.Fatalf("unexpected coordinates %+v", r.Coordinates)
	}

	for _, c := range [][2]float64{{91, 0}, {-91, 0}, {0, 181}, {0, -180.5}} {
		if _, err := svc.CurrentWeatherAt(context.Background(), c[0], c[1]); !errors.Is(err, ErrValidation) {
			t.Errorf("%v: expected validation error, got %v", c, err)
		}
	}
}
