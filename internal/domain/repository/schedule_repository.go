package repository

import (
	"context"

	"dispatch-console/internal/domain/entity"
)

// ScheduleRepository defines the interface for schedule persistence (server side)
type ScheduleRepository interface {
	FindAll(ctx context.Context) ([]*entity.Schedule, error)
	FindByTransactionID(ctx context.Context, transactionID string) (*entity.Schedule, error)
	FindActiveArrivals(ctx context.Context, date string) ([]*entity.Schedule, error)
	CreateMany(ctx context.Context, schedules []*entity.Schedule) ([]string, error)
	Update(ctx context.Context, transactionID string, fields map[string]interface{}) error
	Delete(ctx context.Context, transactionID string) error
	SetETA(ctx context.Context, transactionID string, eta entity.ETA) error
}

// ScheduleGateway is the console's view of the backend's /api/schedules endpoints
type ScheduleGateway interface {
	ListSchedules(ctx context.Context) ([]entity.Schedule, error)
	CreateSchedules(ctx context.Context, schedules []entity.Schedule) error
	UpdateSchedule(ctx context.Context, schedule entity.Schedule) error
	DeleteSchedule(ctx context.Context, transactionID string) error
}
