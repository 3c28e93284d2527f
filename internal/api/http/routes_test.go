package httpapi

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"

	"github.com/i474232898/weather-analytics/internal/store"
	"github.com/i474232898/weather-analytics/internal/weather"
)

type stubResolver struct{}

func (stubResolver) Resolve(_ context.Context, city string) (weather.Coordinates, error) {
	switch city {
	case "London", "Cairo", "Oslo":
		return weather.Coordinates{Name: city, Latitude: 1, Longitude: 1}, nil
	case "Offline":
		return weather.Coordinates{}, weather.NewTransportError("geocode Offline", io.ErrUnexpectedEOF)
	default:
		return weather.Coordinates{}, &weather.NotFoundError{City: city}
	}
}

type stubProvider struct{}

func (stubProvider) Name() string { return "stub" }

func (stubProvider) FetchCurrent(_ context.Context, coords weather.Coordinates) (weather.Reading, error) {
	temps := map[string]float64{"London": 12, "Cairo": 31, "Oslo": 3}
	return weather.Reading{
		City:        coords.Name,
		Temperature: temps[coords.Name],
		Humidity:    50,
		WindSpeed:   4,
		Condition:   weather.ConditionClear,
		Coordinates: coords,
		Provider:    "stub",
	}, nil
}

type stubLocator struct{}

func (stubLocator) Locate(context.Context) (weather.UserLocation, error) {
	return weather.UserLocation{}, io.ErrUnexpectedEOF
}

func newTestApp(t *testing.T) (*fiber.App, *weather.Service) {
	t.Helper()
	memStore := store.NewMemoryStore(10, time.Hour)
	svc := weather.NewService(weather.ServiceConfig{
		DefaultCities: []string{"London", "Cairo"},
		CallTimeout:   time.Second,
	}, stubResolver{}, stubProvider{}, stubLocator{}, memStore)

	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler})
	RegisterRoutes(app, svc)
	return app, svc
}

func doGet(t *testing.T, app *fiber.App, target string, out any) int {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	resp, err := app.Test(req, 5000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s: %v", target, err)
		}
	}
	return resp.StatusCode
}

func TestCurrentWeatherStatusCodes(t *testing.T) {
	app, _ := newTestApp(t)

	tests := []struct {
		city string
		code int
	}{
		{"London", http.StatusOK},
		{"L", http.StatusBadRequest},
		{"Atlantis", http.StatusNotFound},
		{"Offline", http.StatusBadGateway},
	}
	for _, tt := range tests {
		if code := doGet(t, app, "/api/v1/weather/current?city="+url.QueryEscape(tt.city), nil); code != tt.code {
			t.Errorf("city %q: expected status %d, got %d", tt.city, tt.code, code)
		}
	}
}

func TestCurrentWeatherByCoordinates(t *testing.T) {
	app, _ := newTestApp(t)

	var reading weather.Reading
	if code := doGet(t, app, "/api/v1/weather/current?lat=51.5&lon=-0.12", &reading); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if reading.City != "Your Location" || reading.Coordinates.Country != "Unknown" || reading.Coordinates.Latitude != 51.5 {
		t.Fatalf("unexpected reading %+v", reading)
	}

	for _, q := range []string{"lat=95&lon=0", "lat=abc&lon=0", "lat=10"} {
		if code := doGet(t, app, "/api/v1/weather/current?"+q, nil); code != http.StatusBadRequest {
			t.Errorf("%s: expected status 400, got %d", q, code)
		}
	}
}

func TestNotFoundMessage(t *testing.T) {
	app, _ := newTestApp(t)

	var body struct {
		Error   bool   `json:"error"`
		Message string `json:"message"`
	}
	doGet(t, app, "/api/v1/weather/current?city=Atlantis", &body)
	if !body.Error || body.Message != `City "Atlantis" not found. Please check the spelling and try again.` {
		t.Fatalf("unexpected body %+v", body)
	}
}

func TestBatchEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	var body struct {
		Results weather.BatchResult `json:"results"`
	}
	if code := doGet(t, app, "/api/v1/weather/batch?cities=London,InvalidCityXYZ123", &body); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if len(body.Results) != 2 || !body.Results[0].OK() || body.Results[1].FailureReason == "" {
		t.Fatalf("unexpected results %+v", body.Results)
	}

	if code := doGet(t, app, "/api/v1/weather/batch", nil); code != http.StatusBadRequest {
		t.Fatalf("missing cities should be 400, got %d", code)
	}
}

func TestTrendsEndpoint(t *testing.T) {
	app, _ := newTestApp(t)

	var trend struct {
		Title  string          `json:"title"`
		Metric string          `json:"metric"`
		Unit   string          `json:"unit"`
		Data   []weather.Place `json:"data"`
	}
	if code := doGet(t, app, "/api/v1/trends/cold?cities=London,Oslo,Cairo", &trend); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if trend.Title != "Coldest Places" || len(trend.Data) != 1 || trend.Data[0].City != "Oslo" {
		t.Fatalf("unexpected trend %+v", trend)
	}

	if code := doGet(t, app, "/api/v1/trends/sunny", nil); code != http.StatusBadRequest {
		t.Fatalf("unknown filter should be 400, got %d", code)
	}

	var overview struct {
		Title string            `json:"title"`
		Data  weather.Aggregate `json:"data"`
	}
	if code := doGet(t, app, "/api/v1/trends", &overview); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if overview.Title != "Weather Overview" || overview.Data.CitiesCount != 2 {
		t.Fatalf("default batch overview expected, got %+v", overview)
	}
}

func TestAnalyticsHistory(t *testing.T) {
	app, svc := newTestApp(t)

	if code := doGet(t, app, "/api/v1/analytics/latest", nil); code != http.StatusNotFound {
		t.Fatalf("expected 404 before any refresh, got %d", code)
	}

	snap, err := svc.RefreshAnalytics(context.Background(), nil)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}

	var latest weather.AnalyticsSnapshot
	if code := doGet(t, app, "/api/v1/analytics/latest", &latest); code != http.StatusOK || latest.ID != snap.ID {
		t.Fatalf("unexpected latest %d %+v", code, latest)
	}

	from := strconv.FormatInt(snap.Timestamp.Add(-time.Minute).Unix(), 10)
	to := snap.Timestamp.Add(time.Minute).Format(time.RFC3339)
	var history struct {
		Snapshots []weather.AnalyticsSnapshot `json:"snapshots"`
	}
	if code := doGet(t, app, "/api/v1/analytics/history?from="+from+"&to="+url.QueryEscape(to), &history); code != http.StatusOK {
		t.Fatalf("unexpected status %d", code)
	}
	if len(history.Snapshots) != 1 {
		t.Fatalf("expected one snapshot, got %+v", history.Snapshots)
	}

	if code := doGet(t, app, "/api/v1/analytics/history?from="+to+"&to="+from, nil); code != http.StatusBadRequest {
		t.Fatalf("inverted range should be 400, got %d", code)
	}
	if code := doGet(t, app, "/api/v1/analytics/history?from=yesterday&to="+from, nil); code != http.StatusBadRequest {
		t.Fatalf("bad time should be 400, got %d", code)
	}
}

func TestCityEndpoints(t *testing.T) {
	app, _ := newTestApp(t)

	var validation weather.ValidationResult
	doGet(t, app, "/api/v1/cities/validate?name=L", &validation)
	if validation.Valid || validation.Error != "City name must be at least 2 characters long" {
		t.Fatalf("unexpected validation %+v", validation)
	}

	var suggest struct {
		Suggestions []string `json:"suggestions"`
	}
	doGet(t, app, "/api/v1/cities/suggest?q=lon&limit=1", &suggest)
	if len(suggest.Suggestions) != 1 || suggest.Suggestions[0] != "London" {
		t.Fatalf("unexpected suggestions %+v", suggest)
	}
	if code := doGet(t, app, "/api/v1/cities/suggest?q=lon&limit=500", nil); code != http.StatusBadRequest {
		t.Fatalf("limit out of range should be 400, got %d", code)
	}

	var search weather.SearchResult
	doGet(t, app, "/api/v1/cities/search?q=Cairo", &search)
	if !search.Success || search.Data == nil || search.Data.Temperature != 31 {
		t.Fatalf("unexpected search %+v", search)
	}
}

func TestLocationAndStatus(t *testing.T) {
	app, _ := newTestApp(t)

	var loc weather.UserLocation
	doGet(t, app, "/api/v1/location", &loc)
	if loc.City != "London" || !loc.Fallback {
		t.Fatalf("expected London fallback, got %+v", loc)
	}

	var status struct {
		Configuration weather.ConfigurationReport `json:"configuration"`
		Connection    *weather.ConnectionReport   `json:"connection"`
	}
	doGet(t, app, "/api/v1/status?probe=true", &status)
	if status.Configuration.Provider != "stub" || status.Connection == nil || !status.Connection.Success {
		t.Fatalf("unexpected status %+v", status)
	}
}

func TestForecastUnsupported(t *testing.T) {
	app, _ := newTestApp(t)
	if code := doGet(t, app, "/api/v1/weather/forecast?city=London", nil); code != http.StatusNotImplemented {
		t.Fatalf("expected 501, got %d", code)
	}
}
