package weather

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/i474232898/weather-analytics/internal/logging"
	"github.com/i474232898/weather-analytics/internal/metrics"
)

// DefaultCallTimeout bounds a single city's resolve+fetch pipeline.
const DefaultCallTimeout = 10 * time.Second

// BatchFetcher resolves and fetches weather for many cities concurrently.
type BatchFetcher struct {
	resolver    Resolver
	provider    Provider
	callTimeout time.Duration
}

// NewBatchFetcher creates a BatchFetcher. callTimeout <= 0 uses DefaultCallTimeout.
func NewBatchFetcher(resolver Resolver, provider Provider, callTimeout time.Duration) *BatchFetcher {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &BatchFetcher{
		resolver:    resolver,
		provider:    provider,
		callTimeout: callTimeout,
	}
}

// FetchOne validates, resolves and fetches a single city.
func (f *BatchFetcher) FetchOne(ctx context.Context, city string) (Reading, error) {
	v := ValidateCityName(city)
	if !v.Valid {
		metrics.CityFetches.WithLabelValues("validate", "error").Inc()
		return Reading{}, v.Err()
	}

	ctx, cancel := context.WithTimeout(ctx, f.callTimeout)
	defer cancel()

	coords, err := f.resolver.Resolve(ctx, v.Normalized)
	if err != nil {
		metrics.CityFetches.WithLabelValues("resolve", "error").Inc()
		return Reading{}, timeoutAsTransport(ctx, "geocode", err)
	}

	reading, err := f.provider.FetchCurrent(ctx, coords)
	if err != nil {
		metrics.CityFetches.WithLabelValues("fetch", "error").Inc()
		return Reading{}, timeoutAsTransport(ctx, "fetch weather", err)
	}

	metrics.CityFetches.WithLabelValues("fetch", "ok").Inc()
	return reading, nil
}

// FetchAll runs one pipeline per city and waits for all of them to settle.
// The result has one entry per city in input order; failures never affect
// sibling cities. Cancelling ctx cancels every outstanding pipeline.
func (f *BatchFetcher) FetchAll(ctx context.Context, cities []string) BatchResult {
	result := make(BatchResult, len(cities))
	metrics.BatchSize.Observe(float64(len(cities)))

	var wg sync.WaitGroup
	for i, city := range cities {
		i, city := i, city
		wg.Add(1)
		go func() {
			defer wg.Done()
			result[i] = f.settle(ctx, city)
		}()
	}
	wg.Wait()

	return result
}

// settle converts every outcome, including panics, into a BatchEntry.
func (f *BatchFetcher) settle(ctx context.Context, city string) (entry BatchEntry) {
	entry.CityName = city
	defer func() {
		if r := recover(); r != nil {
			logging.Error().Str("city", city).Interface("panic", r).Msg("batch: pipeline panicked")
			entry.Reading = nil
			entry.FailureReason = fmt.Sprintf("internal error: %v", r)
		}
	}()

	reading, err := f.FetchOne(ctx, city)
	if err != nil {
		logging.Warn().Str("city", city).Err(err).Msg("batch: city failed")
		entry.FailureReason = err.Error()
		return entry
	}
	entry.Reading = &reading
	return entry
}

// timeoutAsTransport reports an expired per-call deadline as a TransportError.
func timeoutAsTransport(ctx context.Context, op string, err error) error {
	if ctx.Err() != nil && !errors.Is(err, ErrTransport) {
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ctx.Err(), err)}
	}
	return err
}
