package usecase

import (
	"testing"

	"dispatch-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func TestComputeDashboard(t *testing.T) {
	schedules := []*entity.Schedule{
		{Date: "2024-03-15", Status: entity.Pending},
		{Date: "2024-03-15", Status: entity.Confirmed},
		{Date: "2024-03-15", Status: entity.OnRoute},
		{Date: "2024-03-15", Status: entity.Completed},
		{Date: "2024-03-15", Status: entity.Cancelled},
		{Date: "2024-03-15", Status: entity.ParseStatus("Delayed")},
		{Date: "2024-03-16", Status: entity.Pending},
	}
	users := []*entity.User{
		{UID: "1", Active: true},
		{UID: "2", Active: false},
		{UID: "3", Active: true},
	}

	got := ComputeDashboard(schedules, users, "2024-03-15")
	assert.Equal(t, entity.DashboardMetrics{
		TotalSchedules: 7,
		BookingsToday:  6,
		PendingToday:   1,
		ActiveToday:    2,
		CompletedToday: 1,
		CancelledToday: 1,
		TotalUsers:     3,
		ActiveUsers:    2,
	}, got)
}

func TestComputeDashboard_Empty(t *testing.T) {
	assert.Equal(t, entity.DashboardMetrics{}, ComputeDashboard(nil, nil, "2024-03-15"))
}
