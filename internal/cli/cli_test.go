package cli

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/i474232898/weather-analytics/internal/weather"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, city string) (weather.Coordinates, error) {
	if city == "Atlantis" {
		return weather.Coordinates{}, &weather.NotFoundError{City: city}
	}
	return weather.Coordinates{Name: city}, nil
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchCurrent(_ context.Context, coords weather.Coordinates) (weather.Reading, error) {
	temp := 20.0
	if coords.Name == "Dubai" {
		temp = 40
	}
	return weather.Reading{City: coords.Name, Temperature: temp, Humidity: 40, WindSpeed: 3, Condition: weather.ConditionClear}, nil
}

func run(t *testing.T, serve ServeFunc, args ...string) (string, error) {
	t.Helper()
	svc := weather.NewService(weather.ServiceConfig{
		DefaultCities: []string{"Paris", "Dubai"},
		CallTimeout:   time.Second,
	}, stubResolver{}, stubProvider{}, nil, nil)

	if serve == nil {
		serve = func(*cobra.Command) error { return nil }
	}
	cmd, err := New(svc, serve)
	if err != nil {
		t.Fatalf("new cli: %v", err)
	}

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{}, args...))
	err = cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTrendsCommand(t *testing.T) {
	out, err := run(t, nil, "trends", "hot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Hottest Places") || !strings.Contains(out, "Dubai") || strings.Contains(out, "Paris") {
		t.Fatalf("unexpected output:\n%s", out)
	}

	out, err = run(t, nil, "trends", "--cities", "Paris")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(out, "Weather Overview") || !strings.Contains(out, "1/1") {
		t.Fatalf("unexpected overview:\n%s", out)
	}

	if _, err := run(t, nil, "trends", "sunny"); !errors.Is(err, weather.ErrUnknownFilter) {
		t.Fatalf("expected ErrUnknownFilter, got %v", err)
	}
}

func TestValidateCommand(t *testing.T) {
	out, err := run(t, nil, "validate", "  New   York ")
	if err != nil || !strings.Contains(out, `"New York"`) {
		t.Fatalf("unexpected result %q, %v", out, err)
	}

	if _, err := run(t, nil, "validate", "L"); !errors.Is(err, weather.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestSuggestCommand(t *testing.T) {
	out, err := run(t, nil, "suggest", "lon", "--limit", "2")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.TrimSpace(out) != "London\nBarcelona" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestServeIsDefault(t *testing.T) {
	called := 0
	serve := func(*cobra.Command) error {
		called++
		return nil
	}

	if _, err := run(t, serve); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := run(t, serve, "serve"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if called != 2 {
		t.Fatalf("serve should run for the root and serve commands, ran %d times", called)
	}
}
