package entity

import "errors"

// SendMessageRequest is the body accepted by the WhatsApp gateway's send-message endpoint
type SendMessageRequest struct {
	CompanyID   string       `json:"companyId" validate:"required"`
	AgentID     string       `json:"agentId" validate:"required"`
	PhoneNumber string       `json:"phoneNumber" validate:"required,e164"`
	Message     WhatsAppText `json:"message" validate:"required"`
	ScheduleAt  string       `json:"scheduleAt,omitempty"`
	Type        string       `json:"type" validate:"required,oneof=text image document"`
}

// WhatsAppText is a plain text message body
type WhatsAppText struct {
	Text string `json:"text,omitempty"`
}

// Validate rejects empty text messages
func (m WhatsAppText) Validate() error {
	if m.Text == "" {
		return errors.New("message text is required")
	}
	return nil
}

// SendMessageResponse is the gateway's reply
type SendMessageResponse struct {
	Success bool `json:"success"`
	Data    struct {
		TaskID     string `json:"taskId"`
		Status     string `json:"status"`
		ScheduleAt string `json:"scheduleAt"`
	} `json:"data"`
	Error struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"error"`
}
