package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "tok-123"

type backend struct {
	mu          sync.Mutex
	healthHits  int
	created     [][]entity.Schedule
	updated     []entity.Schedule
	failUpdates bool
}

func (b *backend) handler() http.Handler {
	mux := http.NewServeMux()
	writeJSON := func(w http.ResponseWriter, code int, v interface{}) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(code)
		json.NewEncoder(w).Encode(v)
	}
	checkToken := func(w http.ResponseWriter, r *http.Request) bool {
		cookie, err := r.Cookie(CSRFCookie)
		if err != nil || r.Header.Get(CSRFHeader) != cookie.Value {
			writeJSON(w, http.StatusForbidden, map[string]string{"error": "CSRF token missing or invalid"})
			return false
		}
		return true
	}

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		b.healthHits++
		b.mu.Unlock()
		http.SetCookie(w, &http.Cookie{Name: CSRFCookie, Value: testToken, Path: "/"})
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("GET /api/schedules", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"success": true,
			"schedules": []map[string]interface{}{
				{"transactionID": "AAA101", "date": "2024-03-15", "time": "8:55PM", "status": "On Route", "pax": 2},
				{"transactionID": "AAA102", "date": "2024-03-15", "status": "Waiting"},
			},
		})
	})
	mux.HandleFunc("POST /api/schedules", func(w http.ResponseWriter, r *http.Request) {
		if !checkToken(w, r) {
			return
		}
		var batch []entity.Schedule
		if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		b.mu.Lock()
		b.created = append(b.created, batch)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("PUT /api/schedules/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !checkToken(w, r) {
			return
		}
		if b.failUpdates {
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "Failed to update schedule"})
			return
		}
		if r.PathValue("id") == "MISSING" {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "Schedule not found"})
			return
		}
		var s entity.Schedule
		json.NewDecoder(r.Body).Decode(&s)
		b.mu.Lock()
		b.updated = append(b.updated, s)
		b.mu.Unlock()
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})
	})
	mux.HandleFunc("DELETE /api/schedules/{id}", func(w http.ResponseWriter, r *http.Request) {
		if !checkToken(w, r) {
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "Schedule not found"})
	})
	mux.HandleFunc("GET /api/admin/users", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"users": []entity.User{{UID: "u1", FirstName: "Juan", LastName: "Dela Cruz", Phone: "0917-657-7693", Role: "driver"}},
		})
	})
	mux.HandleFunc("GET /api/admin/transport-units", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]interface{}{
			"units": []entity.TransportUnit{{ID: "t1", Name: "Van 1", PlateNo: "ABC 1234"}},
		})
	})
	mux.HandleFunc("GET /api/admin/dashboard", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, entity.DashboardMetrics{BookingsToday: 4, PendingToday: 1})
	})
	return mux
}

func newTestClient(t *testing.T) (*Client, *backend) {
	t.Helper()
	b := &backend{}
	server := httptest.NewServer(b.handler())
	t.Cleanup(server.Close)

	client, err := NewClient(server.URL+"/", 5*time.Second, logger.NewNopLogger())
	require.NoError(t, err)
	return client, b
}

func TestClient_ListSchedules(t *testing.T) {
	client, _ := newTestClient(t)

	schedules, err := client.ListSchedules(context.Background())
	require.NoError(t, err)
	require.Len(t, schedules, 2)
	assert.True(t, schedules[0].Status.Equal(entity.OnRoute))
	assert.Equal(t, entity.FlexString("2"), schedules[0].Pax)
	assert.Equal(t, "Waiting", schedules[1].Status.String())
}

func TestClient_CreateSchedulesEchoesToken(t *testing.T) {
	client, b := newTestClient(t)
	batch := []entity.Schedule{
		{TransactionID: "AAA101", Date: "2024-03-15"},
		{TransactionID: "AAA102", Date: "2024-03-15"},
	}

	require.NoError(t, client.CreateSchedules(context.Background(), batch))
	require.NoError(t, client.CreateSchedules(context.Background(), batch[:1]))

	assert.Equal(t, 1, b.healthHits, "token fetched once and reused from the jar")
	require.Len(t, b.created, 2)
	assert.Len(t, b.created[0], 2)
}

func TestClient_UpdateSchedule(t *testing.T) {
	client, b := newTestClient(t)

	require.NoError(t, client.UpdateSchedule(context.Background(), entity.Schedule{TransactionID: "AAA101", Date: "2024-03-15", Status: entity.Arrived}))
	require.Len(t, b.updated, 1)
	assert.True(t, b.updated[0].Status.Equal(entity.Arrived))

	err := client.UpdateSchedule(context.Background(), entity.Schedule{TransactionID: "MISSING", Date: "2024-03-15"})
	assert.ErrorIs(t, err, repository.ErrNotFound)
	var statusErr *StatusError
	require.True(t, errors.As(err, &statusErr))
	assert.Equal(t, http.StatusNotFound, statusErr.Code)
	assert.Equal(t, "Schedule not found", statusErr.Message)
}

func TestClient_UpdateScheduleServerError(t *testing.T) {
	client, b := newTestClient(t)
	b.failUpdates = true

	err := client.UpdateSchedule(context.Background(), entity.Schedule{TransactionID: "AAA101", Date: "2024-03-15"})
	require.Error(t, err)
	assert.False(t, errors.Is(err, repository.ErrNotFound))
	assert.Contains(t, err.Error(), "status 500")
}

func TestClient_DeleteMissingIsSuccess(t *testing.T) {
	client, _ := newTestClient(t)
	assert.NoError(t, client.DeleteSchedule(context.Background(), "GONE01"))
}

func TestClient_RosterAndDashboard(t *testing.T) {
	client, _ := newTestClient(t)

	users, err := client.ListUsers(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, "Juan", users[0].FirstName)

	units, err := client.ListTransportUnits(context.Background())
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, "ABC 1234", units[0].PlateNo)

	dash, err := client.Dashboard(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, dash.BookingsToday)
}

func TestClient_NetworkFailure(t *testing.T) {
	client, err := NewClient("http://127.0.0.1:1", time.Second, logger.NewNopLogger())
	require.NoError(t, err)

	_, err = client.ListSchedules(context.Background())
	assert.Error(t, err)
}
