package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"
	"dispatch-console/pkg/utils"

	"github.com/robfig/cron/v3"
)

const (
	// ETASpec runs the worker every quarter hour
	ETASpec = "*/15 * * * *"

	etaLayout    = "2006-01-02 15:04:05"
	etaBuffer    = 5 * time.Minute
	etaLookahead = time.Hour
)

// Built-in coordinates for the airports bookings name in their pickup text
var fallbackAirports = map[string]entity.Airport{
	"RPLL": {ICAO: "RPLL", IATA: "MNL", Name: "Ninoy Aquino International Airport", Latitude: 14.5086, Longitude: 121.019},
	"RPLC": {ICAO: "RPLC", IATA: "CRK", Name: "Clark International Airport", Latitude: 15.1869, Longitude: 120.5604},
}

// ErrNoLiveData is returned when a flight has no position or speed yet
var ErrNoLiveData = errors.New("flight not yet departed or no live data")

// AirportFromPickup maps a pickup text to the ICAO code of its airport
func AirportFromPickup(pickup string) (string, bool) {
	switch {
	case strings.Contains(pickup, "(MNL)"):
		return "RPLL", true
	case strings.Contains(pickup, "(CRK)"):
		return "RPLC", true
	}
	return "", false
}

// ShouldRunETA reports whether now is within the hour before the trip's
// pickup time on the trip's date
func ShouldRunETA(schedule entity.Schedule, now time.Time) bool {
	clock, ok := utils.ParseClock(schedule.Time)
	if !ok {
		return false
	}
	day, err := time.ParseInLocation(utils.ISODateLayout, schedule.Date, now.Location())
	if err != nil {
		return false
	}
	tripTime := day.Add(time.Duration(clock.Minutes()) * time.Minute)
	return !now.Before(tripTime.Add(-etaLookahead)) && !now.After(tripTime)
}

// ComputeETA estimates arrival from a live position: great-circle distance
// over ground speed, plus a fixed buffer, in the location of now
func ComputeETA(pos entity.FlightPosition, destLat, destLon float64, now time.Time) (entity.FlightETA, error) {
	if pos.SpeedKmh <= 0 {
		return entity.FlightETA{}, ErrNoLiveData
	}
	distance := utils.Haversine(pos.Latitude, pos.Longitude, destLat, destLon)
	hours := distance / pos.SpeedKmh
	eta := now.Add(time.Duration(hours * float64(time.Hour))).Add(etaBuffer)
	return entity.FlightETA{DistanceKm: distance, Hours: hours, Local: eta}, nil
}

// ETAWorker stores flight ETAs on today's arrival pickups
type ETAWorker struct {
	schedules repository.ScheduleRepository
	airports  repository.AirportRepository
	flights   repository.FlightRepository
	location  *time.Location
	cron      *cron.Cron
	metrics   *metrics.Metrics
	logger    logger.Logger
	now       func() time.Time
}

// NewETAWorker creates a new ETA worker. airports may be nil.
func NewETAWorker(
	schedules repository.ScheduleRepository,
	airports repository.AirportRepository,
	flights repository.FlightRepository,
	location *time.Location,
	metrics *metrics.Metrics,
	logger logger.Logger,
) *ETAWorker {
	if location == nil {
		location = time.UTC
	}
	return &ETAWorker{
		schedules: schedules,
		airports:  airports,
		flights:   flights,
		location:  location,
		cron:      cron.New(cron.WithLocation(location)),
		metrics:   metrics,
		logger:    logger,
		now:       time.Now,
	}
}

// Start schedules RunOnce on ETASpec until ctx is done
func (w *ETAWorker) Start(ctx context.Context) error {
	_, err := w.cron.AddFunc(ETASpec, func() {
		if err := w.RunOnce(ctx); err != nil {
			w.metrics.ErrorsCount.WithLabelValues("eta").Inc()
			w.logger.Error("ETA run failed", "error", err)
		}
	})
	if err != nil {
		return fmt.Errorf("failed to schedule eta worker: %w", err)
	}
	w.cron.Start()
	w.logger.Info("ETA worker started", "spec", ETASpec, "timezone", w.location.String())

	go func() {
		<-ctx.Done()
		<-w.cron.Stop().Done()
		w.logger.Info("ETA worker stopped")
	}()
	return nil
}

// RunOnce updates every eligible trip of today.
// Failures on one trip are logged and do not stop the others.
func (w *ETAWorker) RunOnce(ctx context.Context) error {
	now := w.now().In(w.location)
	today := now.Format(utils.ISODateLayout)

	trips, err := w.schedules.FindActiveArrivals(ctx, today)
	if err != nil {
		return fmt.Errorf("failed to find arrivals for %s: %w", today, err)
	}

	updated := 0
	for _, trip := range trips {
		if !ShouldRunETA(*trip, now) {
			continue
		}
		icao, ok := AirportFromPickup(trip.Pickup)
		if !ok {
			continue
		}
		if err := w.updateTrip(ctx, trip, icao, now); err != nil {
			w.logger.Warn("Failed to update ETA",
				"transactionID", trip.TransactionID,
				"flight", trip.FlightNumber,
				"error", err)
			continue
		}
		updated++
	}

	w.logger.Info("ETA run finished", "date", today, "candidates", len(trips), "updated", updated)
	return nil
}

func (w *ETAWorker) updateTrip(ctx context.Context, trip *entity.Schedule, icao string, now time.Time) error {
	pos, err := w.flights.GetLivePosition(ctx, strings.ToUpper(strings.TrimSpace(trip.FlightNumber)))
	if err != nil {
		return err
	}

	var destLat, destLon float64
	if pos.ArrivalLat != nil && pos.ArrivalLon != nil {
		destLat, destLon = *pos.ArrivalLat, *pos.ArrivalLon
	} else {
		airport := w.airport(ctx, icao)
		destLat, destLon = airport.Latitude, airport.Longitude
	}

	eta, err := ComputeETA(*pos, destLat, destLon, now)
	if err != nil {
		return err
	}
	if err := w.schedules.SetETA(ctx, trip.TransactionID, entity.ETA{
		Est:       eta.Local.Format(etaLayout),
		Timestamp: w.now().UnixMilli(),
	}); err != nil {
		return fmt.Errorf("failed to store eta: %w", err)
	}

	w.metrics.ETAUpdates.Inc()
	w.logger.Info("ETA updated",
		"transactionID", trip.TransactionID,
		"flight", trip.FlightNumber,
		"distanceKm", eta.DistanceKm,
		"eta", eta.Local.Format(etaLayout))
	return nil
}

// airport prefers the airport table and falls back to the built-in entry
func (w *ETAWorker) airport(ctx context.Context, icao string) entity.Airport {
	if w.airports != nil {
		airport, err := w.airports.GetByICAO(ctx, icao)
		if err == nil {
			return *airport
		}
		w.logger.Debug("Airport lookup failed, using built-in coordinates", "icao", icao, "error", err)
	}
	return fallbackAirports[icao]
}
