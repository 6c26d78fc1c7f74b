package repository

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWhatsappRepository_Send(t *testing.T) {
	var got entity.SendMessageRequest
	var auth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/mailcast/send-message", r.URL.Path)
		auth = r.Header.Get("Authorization")
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"success":true,"data":{"taskId":"task-9","status":"queued"}}`))
	}))
	defer server.Close()

	repo := NewWhatsappRepository(server.URL, "secret", "company-1", "agent-1", logger.NewNopLogger())
	at := time.Date(2024, 3, 15, 8, 0, 0, 0, time.FixedZone("PHT", 8*60*60))

	taskID, err := repo.Send(context.Background(), &entity.OutboundMessage{
		TransactionID: "AAA101",
		Phone:         "+639176577693",
		Text:          "Booking confirmed",
		ScheduleAt:    at,
	})
	require.NoError(t, err)

	assert.Equal(t, "task-9", taskID)
	assert.Equal(t, "Bearer secret", auth)
	assert.Equal(t, "company-1", got.CompanyID)
	assert.Equal(t, "agent-1", got.AgentID)
	assert.Equal(t, "+639176577693", got.PhoneNumber)
	assert.Equal(t, "Booking confirmed", got.Message.Text)
	assert.Equal(t, "text", got.Type)
	assert.Equal(t, "2024-03-15T00:00:00Z", got.ScheduleAt)
}

func TestWhatsappRepository_SendFailures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		message *entity.OutboundMessage
	}{
		{
			name:    "gateway error status",
			status:  http.StatusBadGateway,
			body:    `{"error":"upstream"}`,
			message: &entity.OutboundMessage{Phone: "+639176577693", Text: "hi"},
		},
		{
			name:    "rejected",
			status:  http.StatusOK,
			body:    `{"success":false,"error":{"message":"agent offline","code":"AGENT"}}`,
			message: &entity.OutboundMessage{Phone: "+639176577693", Text: "hi"},
		},
		{
			name:    "not e164",
			status:  http.StatusOK,
			body:    `{"success":true}`,
			message: &entity.OutboundMessage{Phone: "09176577693", Text: "hi"},
		},
		{
			name:    "empty text",
			status:  http.StatusOK,
			body:    `{"success":true}`,
			message: &entity.OutboundMessage{Phone: "+639176577693"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			repo := NewWhatsappRepository(server.URL, "secret", "company-1", "agent-1", logger.NewNopLogger())
			_, err := repo.Send(context.Background(), tt.message)
			assert.Error(t, err)
		})
	}
}

func flightServer(t *testing.T, body string, status int) (*httptest.Server, *string) {
	t.Helper()
	var query string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.RawQuery
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(server.Close)
	return server, &query
}

func TestAviationEdgeRepository_GetLivePosition(t *testing.T) {
	server, query := flightServer(t, `[{
		"geography": {"latitude": 15.5, "longitude": 121.0},
		"speed": {"horizontal": 780.5},
		"arrival": {"icaoCode": "RPLL", "latitude": 14.5086, "longitude": 121.019},
		"flight": {"iataNumber": "PR102"},
		"system": {"updated": 1710460800}
	}]`, http.StatusOK)

	repo := NewAviationEdgeRepository(server.URL, "key-1", logger.NewNopLogger())
	pos, err := repo.GetLivePosition(context.Background(), "PR102")
	require.NoError(t, err)

	assert.Contains(t, *query, "key=key-1")
	assert.Contains(t, *query, "flightIata=PR102")
	assert.Equal(t, 15.5, pos.Latitude)
	assert.Equal(t, 121.0, pos.Longitude)
	assert.Equal(t, 780.5, pos.SpeedKmh)
	assert.Equal(t, "RPLL", pos.ArrivalICAO)
	require.NotNil(t, pos.ArrivalLat)
	assert.Equal(t, 14.5086, *pos.ArrivalLat)
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), pos.ReportedAt)
}

func TestAviationEdgeRepository_NotFound(t *testing.T) {
	bodies := map[string]string{
		"no record":  `{"error":"No Record Found","success":false}`,
		"empty list": `[]`,
		"on ground":  `[{"flight":{"iataNumber":"PR102"}}]`,
		"no speed":   `[{"geography":{"latitude":15,"longitude":121}}]`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			server, _ := flightServer(t, body, http.StatusOK)
			repo := NewAviationEdgeRepository(server.URL, "key-1", logger.NewNopLogger())

			_, err := repo.GetLivePosition(context.Background(), "PR102")
			assert.ErrorIs(t, err, repository.ErrNotFound)
		})
	}
}

func TestAviationEdgeRepository_ServerError(t *testing.T) {
	server, _ := flightServer(t, `oops`, http.StatusInternalServerError)
	repo := NewAviationEdgeRepository(server.URL, "key-1", logger.NewNopLogger())

	_, err := repo.GetLivePosition(context.Background(), "PR102")
	require.Error(t, err)
	assert.NotErrorIs(t, err, repository.ErrNotFound)
}
