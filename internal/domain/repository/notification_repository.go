package repository

import (
	"context"

	"dispatch-console/internal/domain/entity"
)

// NotificationRepository defines the interface for outbound message transports
type NotificationRepository interface {
	Send(ctx context.Context, message *entity.OutboundMessage) (string, error)
}
