package weather

import (
	"context"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/i474232898/weather-analytics/internal/cache"
	"github.com/i474232898/weather-analytics/internal/metrics"
)

// flightTimeout bounds a shared lookup when the first caller has no deadline.
const flightTimeout = 30 * time.Second

// CachingResolver memoizes successful resolutions by lookup key for a short
// TTL. Concurrent lookups of the same city share one upstream call, which
// outlives any single caller's cancellation. Failures are never cached.
type CachingResolver struct {
	next  Resolver
	cache *cache.Cache[Coordinates]
	group singleflight.Group
}

// NewCachingResolver wraps next. A ttl <= 0 returns next unchanged so every
// call re-resolves.
func NewCachingResolver(next Resolver, ttl time.Duration) Resolver {
	if ttl <= 0 {
		return next
	}
	return &CachingResolver{
		next:  next,
		cache: cache.New[Coordinates](ttl),
	}
}

func (r *CachingResolver) Resolve(ctx context.Context, city string) (Coordinates, error) {
	key := LookupKey(city)
	if coords, ok := r.cache.Get(key); ok {
		metrics.GeocodeCache.WithLabelValues("hit").Inc()
		return coords, nil
	}
	metrics.GeocodeCache.WithLabelValues("miss").Inc()

	ch := r.group.DoChan(key, func() (interface{}, error) {
		flightCtx, cancel := r.flightContext(ctx)
		defer cancel()

		coords, err := r.next.Resolve(flightCtx, city)
		if err != nil {
			return Coordinates{}, err
		}
		r.cache.Set(key, coords)
		return coords, nil
	})

	select {
	case <-ctx.Done():
		return Coordinates{}, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return Coordinates{}, res.Err
		}
		return res.Val.(Coordinates), nil
	}
}

// flightContext detaches the shared lookup from the caller that started it
// while keeping that caller's deadline.
func (r *CachingResolver) flightContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if deadline, ok := ctx.Deadline(); ok {
		return context.WithDeadline(detached, deadline)
	}
	return context.WithTimeout(detached, flightTimeout)
}

// Stats exposes the underlying cache counters.
func (r *CachingResolver) Stats() cache.Stats {
	return r.cache.Stats()
}
