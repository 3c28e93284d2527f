package providers

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/kelvins/geocoder"

	"github.com/i474232898/weather-analytics/internal/weather"
)

func TestOpenMeteoGeocoderResolve(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if r.URL.Path != "/search" || q.Get("name") != "New York" || q.Get("count") != "1" || q.Get("language") != "en" {
			t.Errorf("unexpected request %s?%s", r.URL.Path, r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"results":[{"latitude":40.71,"longitude":-74.01,"name":"New York","country":"United States","admin1":"New York","timezone":"America/New_York"}]}`))
	})

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, 0)
	coords, err := g.Resolve(context.Background(), "New York")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := weather.Coordinates{Latitude: 40.71, Longitude: -74.01, Name: "New York", Country: "United States", Region: "New York", Timezone: "America/New_York"}
	if coords != want {
		t.Fatalf("got %+v, want %+v", coords, want)
	}
}

func TestOpenMeteoGeocoderNotFound(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generationtime_ms":0.5}`))
	})

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, 0)
	_, err := g.Resolve(context.Background(), "Atlantis")
	if !errors.Is(err, weather.ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
	if err.Error() != `City "Atlantis" not found` {
		t.Fatalf("unexpected message %q", err.Error())
	}
}

func TestOpenMeteoGeocoderRejectsInvalidCoordinates(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results":[{"latitude":123,"longitude":0,"name":"Broken"}]}`))
	})

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, 0)
	if _, err := g.Resolve(context.Background(), "Broken"); !errors.Is(err, weather.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestOpenMeteoGeocoderClientErrorIsTransport(t *testing.T) {
	srv := jsonServer(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	})

	g := NewOpenMeteoGeocoder(srv.Client(), srv.URL, 0)
	if _, err := g.Resolve(context.Background(), "Paris"); !errors.Is(err, weather.ErrTransport) {
		t.Fatalf("expected transport error, got %v", err)
	}
}

func TestGoogleGeocoderResolve(t *testing.T) {
	g := NewGoogleGeocoder("key")
	g.lookup = func(addr geocoder.Address) (geocoder.Location, error) {
		if addr.City != "Paris" {
			t.Errorf("unexpected address %+v", addr)
		}
		return geocoder.Location{Latitude: 48.85, Longitude: 2.35}, nil
	}

	coords, err := g.Resolve(context.Background(), "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if coords.Latitude != 48.85 || coords.Longitude != 2.35 || coords.Name != "Paris" {
		t.Fatalf("unexpected coords %+v", coords)
	}
}

func TestGoogleGeocoderErrors(t *testing.T) {
	tests := []struct {
		name   string
		loc    geocoder.Location
		err    error
		target error
	}{
		{"zero results", geocoder.Location{}, errors.New("ZERO_RESULTS"), weather.ErrNotFound},
		{"origin", geocoder.Location{}, nil, weather.ErrNotFound},
		{"upstream", geocoder.Location{}, errors.New("REQUEST_DENIED"), weather.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := NewGoogleGeocoder("key")
			g.lookup = func(geocoder.Address) (geocoder.Location, error) { return tt.loc, tt.err }

			if _, err := g.Resolve(context.Background(), "Atlantis"); !errors.Is(err, tt.target) {
				t.Fatalf("expected %v, got %v", tt.target, err)
			}
		})
	}

	if _, err := NewGoogleGeocoder("").Resolve(context.Background(), "Paris"); err == nil {
		t.Fatalf("missing api key should fail")
	}
}

func TestGoogleGeocoderLookupsRunConcurrently(t *testing.T) {
	g := NewGoogleGeocoder("key")
	if geocoder.ApiKey != "key" {
		t.Fatalf("api key not set on construction")
	}

	release := make(chan struct{})
	defer close(release)
	g.lookup = func(addr geocoder.Address) (geocoder.Location, error) {
		if addr.City == "Slowville" {
			<-release
		}
		return geocoder.Location{Latitude: 48.85, Longitude: 2.35}, nil
	}

	go func() {
		_, _ = g.Resolve(context.Background(), "Slowville")
	}()
	time.Sleep(10 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if _, err := g.Resolve(ctx, "Paris"); err != nil {
		t.Fatalf("a hung lookup must not block other cities: %v", err)
	}
}
