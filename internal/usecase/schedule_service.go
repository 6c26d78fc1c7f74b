package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/metrics"
	"dispatch-console/pkg/utils"

	"github.com/go-playground/validator/v10"
)

// ErrNoNextStage is returned when advancing a completed, cancelled or
// unrecognized status
var ErrNoNextStage = errors.New("status has no next stage")

// ScheduleService carries out the console's write actions. Every action
// goes to the backend first; the store is only touched once it succeeded.
type ScheduleService struct {
	gateway  repository.ScheduleGateway
	store    *Store
	ids      *TransactionIDs
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   logger.Logger
}

// NewScheduleService creates a new schedule service
func NewScheduleService(gateway repository.ScheduleGateway, store *Store, ids *TransactionIDs, metrics *metrics.Metrics, logger logger.Logger) *ScheduleService {
	return &ScheduleService{
		gateway:  gateway,
		store:    store,
		ids:      ids,
		validate: validator.New(),
		metrics:  metrics,
		logger:   logger,
	}
}

// Create saves a manually entered booking. The transaction ID is assigned
// here and the status always starts at Pending.
func (s *ScheduleService) Create(ctx context.Context, schedule entity.Schedule) (entity.Schedule, error) {
	taken := make(map[string]bool)
	for _, existing := range s.store.All() {
		taken[existing.TransactionID] = true
	}
	id, err := s.ids.Next(ctx, taken)
	if err != nil {
		return entity.Schedule{}, err
	}
	schedule.TransactionID = id
	schedule.Status = entity.Pending
	if schedule.Company == "" {
		schedule.Company = DefaultCompany
	}

	if err := s.validate.Struct(schedule); err != nil {
		return entity.Schedule{}, fmt.Errorf("invalid schedule: %w", err)
	}
	if err := s.gateway.CreateSchedules(ctx, []entity.Schedule{schedule}); err != nil {
		s.metrics.ErrorsCount.WithLabelValues("create").Inc()
		return entity.Schedule{}, fmt.Errorf("failed to create schedule: %w", err)
	}
	s.store.Upsert(schedule)

	s.logger.Info("Schedule created", "transactionID", id, "date", schedule.Date)
	return schedule, nil
}

// Update replaces a booking. The transaction ID in the path always wins
// over the one in the body.
func (s *ScheduleService) Update(ctx context.Context, transactionID string, schedule entity.Schedule) (entity.Schedule, error) {
	schedule.TransactionID = transactionID
	if err := s.validate.Struct(schedule); err != nil {
		return entity.Schedule{}, fmt.Errorf("invalid schedule: %w", err)
	}
	if err := s.save(ctx, schedule, "update"); err != nil {
		return entity.Schedule{}, err
	}
	return schedule, nil
}

// SetStatus writes any status, in any order
func (s *ScheduleService) SetStatus(ctx context.Context, transactionID string, status entity.Status) (entity.Schedule, error) {
	schedule, err := s.lookup(transactionID)
	if err != nil {
		return entity.Schedule{}, err
	}
	schedule.Status = status
	if err := s.save(ctx, schedule, "status"); err != nil {
		return entity.Schedule{}, err
	}
	s.logger.Info("Schedule status changed", "transactionID", transactionID, "status", status.String())
	return schedule, nil
}

// Advance moves a booking to the stage after its current one
func (s *ScheduleService) Advance(ctx context.Context, transactionID string) (entity.Schedule, error) {
	schedule, err := s.lookup(transactionID)
	if err != nil {
		return entity.Schedule{}, err
	}
	next, ok := schedule.Status.Next()
	if !ok {
		return entity.Schedule{}, fmt.Errorf("%s is %q: %w", transactionID, schedule.Status.String(), ErrNoNextStage)
	}
	return s.SetStatus(ctx, transactionID, next)
}

// TransferDriver hands a booking to another driver. Only the current
// assignment changes.
func (s *ScheduleService) TransferDriver(ctx context.Context, transactionID, driverName, cellPhone string) (entity.Schedule, error) {
	schedule, err := s.lookup(transactionID)
	if err != nil {
		return entity.Schedule{}, err
	}
	phone := utils.ExtractMobile(cellPhone)
	if phone == "" {
		phone = utils.Digits(cellPhone)
	}
	schedule.Current = entity.Assignment{
		DriverName: strings.TrimSpace(driverName),
		CellPhone:  phone,
	}
	if err := s.save(ctx, schedule, "transfer"); err != nil {
		return entity.Schedule{}, err
	}
	s.logger.Info("Driver transferred", "transactionID", transactionID, "driver", schedule.Current.DriverName)
	return schedule, nil
}

// Delete removes a booking. Deleting an ID the backend no longer has
// succeeds.
func (s *ScheduleService) Delete(ctx context.Context, transactionID string) error {
	err := s.gateway.DeleteSchedule(ctx, transactionID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		s.metrics.ErrorsCount.WithLabelValues("delete").Inc()
		return fmt.Errorf("failed to delete schedule %s: %w", transactionID, err)
	}
	s.store.Remove(transactionID)
	s.logger.Info("Schedule deleted", "transactionID", transactionID)
	return nil
}

func (s *ScheduleService) lookup(transactionID string) (entity.Schedule, error) {
	schedule, ok := s.store.Get(transactionID)
	if !ok {
		return entity.Schedule{}, fmt.Errorf("schedule %s: %w", transactionID, repository.ErrNotFound)
	}
	return schedule, nil
}

func (s *ScheduleService) save(ctx context.Context, schedule entity.Schedule, operation string) error {
	if err := s.gateway.UpdateSchedule(ctx, schedule); err != nil {
		s.metrics.ErrorsCount.WithLabelValues(operation).Inc()
		return fmt.Errorf("failed to update schedule %s: %w", schedule.TransactionID, err)
	}
	s.store.Upsert(schedule)
	return nil
}
