package usecase

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"dispatch-console/internal/domain/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boardSchedules() []entity.Schedule {
	return []entity.Schedule{
		{TransactionID: "AAA101", Date: "2024-03-15", Time: "8:55PM", Current: entity.Assignment{DriverName: "Juan Dela Cruz"}},
		{TransactionID: "AAA102", Date: "2024-03-15", Time: "6:00AM", Current: entity.Assignment{DriverName: "Pedro Reyes"}},
		{TransactionID: "AAA103", Date: "2024-03-16", Time: "7:00AM", Current: entity.Assignment{DriverName: "Juan Dela Cruz"}},
		{TransactionID: "AAA104", Date: "2024-03-15", Time: "12:00AM", Current: entity.Assignment{DriverName: "juan dela cruz "}},
		{TransactionID: "AAA105", Date: "2024-03-15", Time: "TBA"},
	}
}

func newTestStore(list func(ctx context.Context) ([]entity.Schedule, error)) *Store {
	return NewStore(&fakeGateway{list: list}, testMetrics(), testLogger())
}

func TestStore_RefreshAndQueries(t *testing.T) {
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		return boardSchedules(), nil
	})
	require.NoError(t, store.Refresh(context.Background()))
	assert.Equal(t, 5, store.Len())
	assert.False(t, store.UpdatedAt().IsZero())

	assert.Len(t, store.FilterByDate("2024-03-15"), 4)
	assert.Empty(t, store.FilterByDate("2024-03-20"))

	juan := store.FilterByDriver("2024-03-15", "Juan Dela Cruz")
	require.Len(t, juan, 2)
	assert.Equal(t, "AAA101", juan[0].TransactionID)
	assert.Equal(t, "AAA104", juan[1].TransactionID)

	assert.Len(t, store.FilterByDriver("2024-03-15", ""), 4)

	assert.Equal(t, []string{"Juan Dela Cruz", "Pedro Reyes", "juan dela cruz"}, store.DriversOn("2024-03-15"))

	got, ok := store.Get("AAA103")
	require.True(t, ok)
	assert.Equal(t, "2024-03-16", got.Date)
	_, ok = store.Get("ZZZ999")
	assert.False(t, ok)
}

func TestStore_Board(t *testing.T) {
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		return boardSchedules(), nil
	})
	require.NoError(t, store.Refresh(context.Background()))

	var ids []string
	for _, s := range store.Board("2024-03-15", "") {
		ids = append(ids, s.TransactionID)
	}
	// unreadable time first, then midnight, then by time of day
	assert.Equal(t, []string{"AAA105", "AAA104", "AAA102", "AAA101"}, ids)
}

func TestStore_RefreshErrorKeepsData(t *testing.T) {
	fail := false
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		if fail {
			return nil, errBackendDown
		}
		return boardSchedules(), nil
	})
	require.NoError(t, store.Refresh(context.Background()))

	fail = true
	err := store.Refresh(context.Background())
	assert.ErrorIs(t, err, errBackendDown)
	assert.Equal(t, 5, store.Len())
}

func TestStore_DiscardsStaleResponse(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32

	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return []entity.Schedule{{TransactionID: "OLD001", Date: "2024-03-15"}}, nil
		}
		return []entity.Schedule{{TransactionID: "NEW001", Date: "2024-03-15"}}, nil
	})

	slow := make(chan error, 1)
	go func() { slow <- store.Refresh(context.Background()) }()
	<-entered

	require.NoError(t, store.Refresh(context.Background()))
	close(release)

	assert.ErrorIs(t, <-slow, ErrStaleResponse)
	all := store.All()
	require.Len(t, all, 1)
	assert.Equal(t, "NEW001", all[0].TransactionID)
}

func TestStore_LocalWriteSupersedesInFlightRefresh(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})

	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		close(entered)
		<-release
		return nil, nil
	})

	done := make(chan error, 1)
	go func() { done <- store.Refresh(context.Background()) }()
	<-entered

	store.Upsert(entity.Schedule{TransactionID: "NEW001", Date: "2024-03-15"})
	close(release)

	assert.ErrorIs(t, <-done, ErrStaleResponse)
	_, ok := store.Get("NEW001")
	assert.True(t, ok)
}

func TestStore_UpsertAndRemove(t *testing.T) {
	fetched := boardSchedules()
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		return fetched, nil
	})
	require.NoError(t, store.Refresh(context.Background()))

	store.Upsert(
		entity.Schedule{TransactionID: "AAA102", Date: "2024-03-15", Status: entity.Arrived},
		entity.Schedule{TransactionID: "NEW001", Date: "2024-03-15"},
	)
	all := store.All()
	require.Len(t, all, 6)
	assert.Equal(t, "AAA102", all[1].TransactionID)
	assert.True(t, all[1].Status.Equal(entity.Arrived))
	assert.Equal(t, "NEW001", all[5].TransactionID)

	store.Remove("AAA101")
	store.Remove("UNKNOWN")
	assert.Equal(t, 5, store.Len())
	_, ok := store.Get("AAA101")
	assert.False(t, ok)

	// the gateway's slice is never modified in place
	assert.Equal(t, "AAA101", fetched[0].TransactionID)
	assert.True(t, fetched[1].Status.Equal(entity.Pending))
}

func TestStore_AllReturnsCopy(t *testing.T) {
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		return boardSchedules(), nil
	})
	require.NoError(t, store.Refresh(context.Background()))

	all := store.All()
	all[0].TransactionID = "CHANGED"
	_, ok := store.Get("AAA101")
	assert.True(t, ok)
}

func TestStore_PollStopsWithContext(t *testing.T) {
	var calls atomic.Int32
	store := newTestStore(func(ctx context.Context) ([]entity.Schedule, error) {
		calls.Add(1)
		return boardSchedules(), nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		store.Poll(ctx, 10*time.Millisecond)
		close(done)
	}()

	assert.Eventually(t, func() bool { return calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Poll did not stop")
	}
	assert.Equal(t, 5, store.Len())
}
