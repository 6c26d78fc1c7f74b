package repository

import (
	"context"
	"time"

	"dispatch-console/internal/domain/entity"
)

// MailboxRepository records which mailbox messages were already imported
type MailboxRepository interface {
	Save(ctx context.Context, message *entity.MailboxMessage) error
	FindByMessageIDs(ctx context.Context, messageIDs []string) (map[string]*entity.MailboxMessage, error)
	UpdateStatus(ctx context.Context, messageID, status string) error
	MarkAsProcessed(ctx context.Context, messageID, status, handlerType, errorDetail string, imported int, targetDate string) error
	// ReleaseStale forgets messages stuck before completion for longer than
	// olderThan, so the next poll fetches them again
	ReleaseStale(ctx context.Context, olderThan time.Duration) (int64, error)
}
