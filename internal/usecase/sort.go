package usecase

import (
	"sort"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/pkg/utils"
)

// SortByDateThenTime returns a new slice ordered by date, then by time of
// day. Times that cannot be read come first on their date, ahead of
// midnight. Equal keys keep their input order.
func SortByDateThenTime(schedules []entity.Schedule) []entity.Schedule {
	type keyed struct {
		minutes  int
		schedule entity.Schedule
	}
	items := make([]keyed, len(schedules))
	for i, s := range schedules {
		minutes := -1
		if clock, ok := utils.ParseClock(s.Time); ok {
			minutes = clock.Minutes()
		}
		items[i] = keyed{minutes: minutes, schedule: s}
	}

	sort.SliceStable(items, func(a, b int) bool {
		if items[a].schedule.Date != items[b].schedule.Date {
			return items[a].schedule.Date < items[b].schedule.Date
		}
		return items[a].minutes < items[b].minutes
	})

	out := make([]entity.Schedule, len(items))
	for i, item := range items {
		out[i] = item.schedule
	}
	return out
}
