package usecase

import (
	"testing"

	"dispatch-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
)

func txIDs(schedules []entity.Schedule) []string {
	ids := make([]string, len(schedules))
	for i, s := range schedules {
		ids[i] = s.TransactionID
	}
	return ids
}

func TestSortByDateThenTime(t *testing.T) {
	in := []entity.Schedule{
		{TransactionID: "D2-0800", Date: "2024-03-16", Time: "8:00AM"},
		{TransactionID: "D1-2055", Date: "2024-03-15", Time: "8:55PM"},
		{TransactionID: "D1-1200P", Date: "2024-03-15", Time: "12:00PM"},
		{TransactionID: "D1-0000", Date: "2024-03-15", Time: "12:00AM"},
		{TransactionID: "D1-1430", Date: "2024-03-15", Time: "14:30"},
		{TransactionID: "D1-NONE", Date: "2024-03-15", Time: ""},
	}

	out := SortByDateThenTime(in)
	assert.Equal(t, []string{"D1-NONE", "D1-0000", "D1-1200P", "D1-1430", "D1-2055", "D2-0800"}, txIDs(out))

	// input untouched
	assert.Equal(t, "D2-0800", in[0].TransactionID)
}

func TestSortByDateThenTime_StableOnTies(t *testing.T) {
	in := []entity.Schedule{
		{TransactionID: "first", Date: "2024-03-15", Time: "9:00AM"},
		{TransactionID: "second", Date: "2024-03-15", Time: "9:00 am"},
		{TransactionID: "third", Date: "2024-03-15", Time: "09:00"},
		{TransactionID: "tba-1", Date: "2024-03-15", Time: "TBA"},
		{TransactionID: "tba-2", Date: "2024-03-15", Time: "?"},
	}
	assert.Equal(t, []string{"tba-1", "tba-2", "first", "second", "third"}, txIDs(SortByDateThenTime(in)))
}

func TestSortByDateThenTime_Empty(t *testing.T) {
	assert.Empty(t, SortByDateThenTime(nil))
}
