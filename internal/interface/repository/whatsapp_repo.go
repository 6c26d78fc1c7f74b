package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"

	"github.com/go-playground/validator/v10"
)

// WhatsappRepository sends outbox messages through the WhatsApp gateway
type WhatsappRepository struct {
	logger      logger.Logger
	validate    *validator.Validate
	baseURL     string
	bearerToken string
	companyID   string
	agentID     string
}

// NewWhatsappRepository creates a new WhatsApp repository
func NewWhatsappRepository(baseURL, bearerToken, companyID, agentID string, logger logger.Logger) repository.NotificationRepository {
	return &WhatsappRepository{
		logger:      logger,
		validate:    validator.New(),
		baseURL:     baseURL,
		bearerToken: bearerToken,
		companyID:   companyID,
		agentID:     agentID,
	}
}

// Send posts a text message and returns the gateway's task ID. A zero
// ScheduleAt means send now.
func (r *WhatsappRepository) Send(ctx context.Context, message *entity.OutboundMessage) (string, error) {
	msg := entity.SendMessageRequest{
		CompanyID:   r.companyID,
		AgentID:     r.agentID,
		PhoneNumber: message.Phone,
		Message:     entity.WhatsAppText{Text: message.Text},
		Type:        "text",
	}
	if !message.ScheduleAt.IsZero() {
		msg.ScheduleAt = message.ScheduleAt.UTC().Format(time.RFC3339)
	}

	if err := msg.Message.Validate(); err != nil {
		return "", fmt.Errorf("invalid message: %w", err)
	}
	if err := r.validate.Struct(msg); err != nil {
		return "", fmt.Errorf("invalid message: %w", err)
	}

	jsonData, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("failed to marshal message: %w", err)
	}

	url := fmt.Sprintf("%s/api/v1/mailcast/send-message", r.baseURL)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.bearerToken)
	req.Header.Set("Content-Type", "application/json")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		var errorBody map[string]interface{}
		json.NewDecoder(resp.Body).Decode(&errorBody)
		return "", fmt.Errorf("WhatsApp service returned status %d: %v", resp.StatusCode, errorBody)
	}

	var response entity.SendMessageResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if !response.Success {
		return "", fmt.Errorf("WhatsApp service rejected message: %s (code: %s)", response.Error.Message, response.Error.Code)
	}

	r.logger.Info("Notification queued on WhatsApp service",
		"taskId", response.Data.TaskID,
		"transactionID", message.TransactionID,
		"phone", message.Phone)
	return response.Data.TaskID, nil
}
