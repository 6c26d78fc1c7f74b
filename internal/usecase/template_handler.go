package usecase

import (
	"context"

	"dispatch-console/internal/domain/entity"
)

// TemplateHandler processes the mailbox messages whose subject it recognizes
type TemplateHandler interface {
	// CanHandle determines if this handler can process the given subject
	CanHandle(subject string) bool

	// Process imports what the message carries
	Process(ctx context.Context, message *entity.MailboxMessage) (*ImportResult, error)
}

// SubjectRouter routes mailbox messages to the appropriate handler
type SubjectRouter interface {
	Register(handler TemplateHandler)
	GetHandler(subject string) TemplateHandler
}
