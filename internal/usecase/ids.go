package usecase

import (
	"context"
	"errors"

	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
	"dispatch-console/pkg/utils"
)

const maxIDAttempts = 50

// ErrNoFreeTransactionID is returned when every drawn ID was already taken
var ErrNoFreeTransactionID = errors.New("no free transaction id")

// TransactionIDs draws transaction IDs and retries on collision with the
// IDs already known locally and, when configured, the shared registry.
type TransactionIDs struct {
	registry repository.TransactionIDRegistry
	newID    func() string
	logger   logger.Logger
}

// NewTransactionIDs creates a generator; registry may be nil
func NewTransactionIDs(registry repository.TransactionIDRegistry, logger logger.Logger) *TransactionIDs {
	return &TransactionIDs{
		registry: registry,
		newID:    utils.NewTransactionID,
		logger:   logger,
	}
}

// Next returns an ID absent from taken and records it there. A registry
// outage is logged and the local check alone decides.
func (g *TransactionIDs) Next(ctx context.Context, taken map[string]bool) (string, error) {
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		id := g.newID()
		if taken[id] {
			continue
		}
		if g.registry != nil {
			ok, err := g.registry.Reserve(ctx, id)
			if err != nil {
				g.logger.Warn("Transaction ID registry unavailable", "error", err)
			} else if !ok {
				continue
			}
		}
		taken[id] = true
		return id, nil
	}
	return "", ErrNoFreeTransactionID
}
