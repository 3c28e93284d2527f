package store

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/i474232898/weather-analytics/internal/weather"
)

var (
	// ErrNotFound is returned when no analytics exist for a given batch.
	ErrNotFound = errors.New("no analytics for batch")
)

// SnapshotHistory holds a time-ordered list of analytics snapshots for a batch.
type SnapshotHistory struct {
	Snapshots []weather.AnalyticsSnapshot
}

// MemoryStore is a concurrency-safe in-memory implementation of weather.SnapshotStore.
type MemoryStore struct {
	mu sync.RWMutex

	// key: batch key, value: history
	data map[string]*SnapshotHistory

	// retention configuration
	maxHistory int           // max number of snapshots per batch
	maxAge     time.Duration // optional max age for snapshots

	now func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		data:       make(map[string]*SnapshotHistory),
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// SaveSnapshot appends a snapshot for its batch and enforces retention.
// A missing ID or timestamp is filled in; the stored snapshot is returned.
func (s *MemoryStore) SaveSnapshot(snapshot weather.AnalyticsSnapshot) weather.AnalyticsSnapshot {
	if snapshot.ID == "" {
		snapshot.ID = uuid.NewString()
	}
	if snapshot.Timestamp.IsZero() {
		snapshot.Timestamp = s.now().UTC()
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	history, ok := s.data[snapshot.BatchKey]
	if !ok {
		history = &SnapshotHistory{}
		s.data[snapshot.BatchKey] = history
	}

	history.Snapshots = append(history.Snapshots, snapshot)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(history.Snapshots) > s.maxHistory {
		over := len(history.Snapshots) - s.maxHistory
		history.Snapshots = history.Snapshots[over:]
	}

	// Enforce retention by age; the newest snapshot is always kept.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(history.Snapshots)-1; i++ {
			if !history.Snapshots[i].Timestamp.Before(cutoff) {
				break
			}
		}
		history.Snapshots = history.Snapshots[i:]
	}

	return snapshot
}

// GetLatest returns the most recent snapshot for a batch.
func (s *MemoryStore) GetLatest(batchKey string) (weather.AnalyticsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[batchKey]
	if !ok || len(history.Snapshots) == 0 {
		return weather.AnalyticsSnapshot{}, ErrNotFound
	}
	return history.Snapshots[len(history.Snapshots)-1], nil
}

// GetRange returns all snapshots for a batch between from and to (inclusive).
func (s *MemoryStore) GetRange(batchKey string, from, to time.Time) ([]weather.AnalyticsSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.data[batchKey]
	if !ok || len(history.Snapshots) == 0 {
		return nil, ErrNotFound
	}

	var result []weather.AnalyticsSnapshot
	for _, snap := range history.Snapshots {
		if !snap.Timestamp.Before(from) && !snap.Timestamp.After(to) {
			result = append(result, snap)
		}
	}

	if len(result) == 0 {
		return nil, ErrNotFound
	}

	return result, nil
}
