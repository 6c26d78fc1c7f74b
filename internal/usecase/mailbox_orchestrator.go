package usecase

import (
	"context"
	"errors"
	"fmt"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
)

// MailboxOrchestrator hands fetched mailbox messages to their handler and
// records the outcome so each message is imported once
type MailboxOrchestrator struct {
	mailboxRepo repository.MailboxRepository
	router      SubjectRouter
	logger      logger.Logger
}

// NewMailboxOrchestrator creates a new mailbox orchestrator
func NewMailboxOrchestrator(mailboxRepo repository.MailboxRepository, router SubjectRouter, logger logger.Logger) *MailboxOrchestrator {
	return &MailboxOrchestrator{
		mailboxRepo: mailboxRepo,
		router:      router,
		logger:      logger,
	}
}

// ProcessMessage processes a single message right after it was saved.
// A handler failure is recorded on the message and not returned, so the
// remaining messages of a poll still run.
func (o *MailboxOrchestrator) ProcessMessage(ctx context.Context, message *entity.MailboxMessage) error {
	handler := o.router.GetHandler(message.Subject)
	if handler == nil {
		o.logger.Debug("No handler found for message",
			"subject", message.Subject,
			"messageID", message.MessageID)
		return o.mailboxRepo.MarkAsProcessed(ctx, message.MessageID, entity.StatusSkipped, "none", "no matching handler", 0, "")
	}

	handlerType := fmt.Sprintf("%T", handler)
	if err := o.mailboxRepo.UpdateStatus(ctx, message.MessageID, entity.StatusProcessing); err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}

	result, err := handler.Process(ctx, message)
	targetDate := ""
	imported := 0
	if result != nil {
		targetDate = result.TargetDate
		imported = len(result.Schedules)
	}

	switch {
	case err == nil, errors.Is(err, ErrNoSchedules):
		o.logger.Info("Mailbox message processed",
			"messageID", message.MessageID,
			"handler", handlerType,
			"imported", imported,
			"targetDate", targetDate)
		return o.mailboxRepo.MarkAsProcessed(ctx, message.MessageID, entity.StatusProcessed, handlerType, "", imported, targetDate)
	default:
		o.logger.Error("Handler failed to process message",
			"messageID", message.MessageID,
			"handler", handlerType,
			"error", err)
		if markErr := o.mailboxRepo.MarkAsProcessed(ctx, message.MessageID, entity.StatusFailed, handlerType, err.Error(), imported, targetDate); markErr != nil {
			o.logger.Error("Failed to record message failure", "messageID", message.MessageID, "error", markErr)
		}
		return nil
	}
}
