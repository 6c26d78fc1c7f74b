package usecase

import (
	"dispatch-console/internal/domain/entity"
)

// ComputeDashboard counts the admin dashboard figures for the day today
func ComputeDashboard(schedules []*entity.Schedule, users []*entity.User, today string) entity.DashboardMetrics {
	m := entity.DashboardMetrics{
		TotalSchedules: len(schedules),
		TotalUsers:     len(users),
	}
	for _, s := range schedules {
		if s.Date != today {
			continue
		}
		m.BookingsToday++
		switch s.Status.Kind {
		case entity.StatusPending:
			m.PendingToday++
		case entity.StatusCompleted:
			m.CompletedToday++
		case entity.StatusCancelled:
			m.CancelledToday++
		case entity.StatusConfirmed, entity.StatusArrived, entity.StatusOnRoute:
			m.ActiveToday++
		}
	}
	for _, u := range users {
		if u.Active {
			m.ActiveUsers++
		}
	}
	return m
}
