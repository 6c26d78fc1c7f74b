package usecase

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"
)

// DefaultPollInterval is how often the console refreshes its schedules
const DefaultPollInterval = 5 * time.Second

// ErrStaleResponse is returned by Refresh when a newer request or a local
// write superseded it; the fetched data was discarded.
var ErrStaleResponse = errors.New("stale schedule response discarded")

// Store owns the console's in-memory copy of every schedule. Only Refresh
// and the local write-backs (Upsert, Remove) change it.
type Store struct {
	gateway repository.ScheduleGateway
	metrics *metrics.Metrics
	logger  logger.Logger

	// issued is bumped by every refresh request and every local write
	issued atomic.Uint64

	mu        sync.RWMutex
	schedules []entity.Schedule
	updatedAt time.Time
}

// NewStore creates an empty store backed by gateway
func NewStore(gateway repository.ScheduleGateway, metrics *metrics.Metrics, logger logger.Logger) *Store {
	return &Store{
		gateway: gateway,
		metrics: metrics,
		logger:  logger,
	}
}

// Refresh fetches the full schedule set and replaces the local copy, unless
// another refresh or a local write was issued while the fetch was in flight.
// On a fetch error the local copy is left as it was.
func (s *Store) Refresh(ctx context.Context) error {
	seq := s.issued.Add(1)

	schedules, err := s.gateway.ListSchedules(ctx)
	if err != nil {
		s.metrics.Refreshes.WithLabelValues("failed").Inc()
		return fmt.Errorf("failed to fetch schedules: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.issued.Load() {
		s.metrics.StaleResponses.Inc()
		s.metrics.Refreshes.WithLabelValues("stale").Inc()
		return ErrStaleResponse
	}
	s.schedules = schedules
	s.updatedAt = time.Now()
	s.metrics.Refreshes.WithLabelValues("applied").Inc()
	s.metrics.StoreSize.Set(float64(len(schedules)))
	return nil
}

// Poll refreshes immediately and then on every tick until ctx is done
func (s *Store) Poll(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	s.refreshLogged(ctx)
	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Schedule polling stopped")
			return
		case <-ticker.C:
			s.refreshLogged(ctx)
		}
	}
}

func (s *Store) refreshLogged(ctx context.Context) {
	err := s.Refresh(ctx)
	switch {
	case err == nil:
	case errors.Is(err, ErrStaleResponse):
		s.logger.Debug("Discarded stale schedule response")
	case ctx.Err() != nil:
	default:
		s.metrics.ErrorsCount.WithLabelValues("refresh").Inc()
		s.logger.Error("Failed to refresh schedules", "error", err)
	}
}

// UpdatedAt is the time of the last applied refresh
func (s *Store) UpdatedAt() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.updatedAt
}

// Len returns the number of schedules held
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.schedules)
}

// All returns a copy of every schedule in fetch order
func (s *Store) All() []entity.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]entity.Schedule, len(s.schedules))
	copy(out, s.schedules)
	return out
}

// Get returns the schedule with the given transaction ID
func (s *Store) Get(transactionID string) (entity.Schedule, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, sch := range s.schedules {
		if sch.TransactionID == transactionID {
			return sch, true
		}
	}
	return entity.Schedule{}, false
}

// FilterByDate returns the schedules dated date, in fetch order
func (s *Store) FilterByDate(date string) []entity.Schedule {
	return s.filter(func(sch entity.Schedule) bool {
		return sch.Date == date
	})
}

// FilterByDriver narrows a date to one driver. An empty driver name
// matches every schedule on the date.
func (s *Store) FilterByDriver(date, driverName string) []entity.Schedule {
	driverName = strings.TrimSpace(driverName)
	return s.filter(func(sch entity.Schedule) bool {
		if sch.Date != date {
			return false
		}
		return driverName == "" || strings.EqualFold(strings.TrimSpace(sch.Current.DriverName), driverName)
	})
}

// DriversOn lists the distinct driver names assigned on date, sorted
func (s *Store) DriversOn(date string) []string {
	seen := make(map[string]bool)
	var drivers []string
	for _, sch := range s.FilterByDate(date) {
		name := strings.TrimSpace(sch.Current.DriverName)
		if name == "" || seen[name] {
			continue
		}
		seen[name] = true
		drivers = append(drivers, name)
	}
	sort.Strings(drivers)
	return drivers
}

// Board is the rendered list for a date: optionally one driver, ordered by time
func (s *Store) Board(date, driverName string) []entity.Schedule {
	return SortByDateThenTime(s.FilterByDriver(date, driverName))
}

// Upsert applies schedules the backend has accepted. Existing entries keep
// their position; new ones are appended.
func (s *Store) Upsert(schedules ...entity.Schedule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued.Add(1)

	merged := make([]entity.Schedule, len(s.schedules), len(s.schedules)+len(schedules))
	copy(merged, s.schedules)
	index := make(map[string]int, len(merged))
	for i, sch := range merged {
		index[sch.TransactionID] = i
	}
	for _, sch := range schedules {
		if i, ok := index[sch.TransactionID]; ok {
			merged[i] = sch
			continue
		}
		index[sch.TransactionID] = len(merged)
		merged = append(merged, sch)
	}
	s.schedules = merged
	s.metrics.StoreSize.Set(float64(len(s.schedules)))
}

// Remove drops a schedule the backend has deleted. Unknown IDs are ignored.
func (s *Store) Remove(transactionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.issued.Add(1)

	kept := make([]entity.Schedule, 0, len(s.schedules))
	for _, sch := range s.schedules {
		if sch.TransactionID != transactionID {
			kept = append(kept, sch)
		}
	}
	s.schedules = kept
	s.metrics.StoreSize.Set(float64(len(s.schedules)))
}

func (s *Store) filter(keep func(entity.Schedule) bool) []entity.Schedule {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []entity.Schedule
	for _, sch := range s.schedules {
		if keep(sch) {
			out = append(out, sch)
		}
	}
	return out
}
