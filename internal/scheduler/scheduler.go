package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/i474232898/weather-analytics/internal/logging"
	"github.com/i474232898/weather-analytics/internal/metrics"
	"github.com/i474232898/weather-analytics/internal/weather"
)

// Refresher is the part of weather.Service the scheduler drives.
type Refresher interface {
	RefreshAnalytics(ctx context.Context, cities []string) (weather.AnalyticsSnapshot, error)
}

// Scheduler periodically re-aggregates analytics for the default city batch.
type Scheduler struct {
	scheduler  *gocron.Scheduler
	refresher  Refresher
	cities     []string
	interval   time.Duration
	jobTimeout time.Duration
}

// New creates a new Scheduler.
func New(cities []string, interval time.Duration, refresher Refresher) *Scheduler {
	s := gocron.NewScheduler(time.UTC)
	return &Scheduler{
		scheduler:  s,
		refresher:  refresher,
		cities:     cities,
		interval:   interval,
		jobTimeout: time.Minute,
	}
}

// Start schedules the periodic job and starts the underlying scheduler.
// The first run happens immediately.
func (s *Scheduler) Start() error {
	if len(s.cities) == 0 {
		logging.Info().Msg("scheduler: no cities configured; nothing to schedule")
		return nil
	}

	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 15
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(s.RunOnce)
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// RunOnce refreshes the analytics snapshot for the configured batch.
func (s *Scheduler) RunOnce() {
	logging.Info().Int("cities", len(s.cities)).Msg("scheduler: running analytics refresh")

	ctx, cancel := context.WithTimeout(context.Background(), s.jobTimeout)
	defer cancel()

	snap, err := s.refresher.RefreshAnalytics(ctx, s.cities)
	if err != nil {
		metrics.RefreshFailures.Inc()
		if errors.Is(err, weather.ErrNoReadings) {
			logging.Warn().Msg("scheduler: refresh produced no readings")
			return
		}
		logging.Error().Err(err).Msg("scheduler: refresh failed")
		return
	}

	metrics.LastRefresh.Set(float64(snap.Timestamp.Unix()))
	logging.Info().
		Str("id", snap.ID).
		Int("valid", snap.Aggregate.ValidCount).
		Int("cities", snap.Aggregate.CitiesCount).
		Msg("scheduler: completed analytics refresh")
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
