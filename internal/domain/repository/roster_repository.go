package repository

import (
	"context"

	"dispatch-console/internal/domain/entity"
)

// UserRepository defines the interface for roster storage (server side)
type UserRepository interface {
	FindAll(ctx context.Context, role string) ([]*entity.User, error)
}

// TransportUnitRepository defines the interface for fleet storage (server side)
type TransportUnitRepository interface {
	FindAll(ctx context.Context) ([]*entity.TransportUnit, error)
	FindByPlate(ctx context.Context, plateNo string) (*entity.TransportUnit, error)
}

// RosterGateway is the console's view of the roster and fleet endpoints
type RosterGateway interface {
	ListUsers(ctx context.Context) ([]entity.User, error)
	ListTransportUnits(ctx context.Context) ([]entity.TransportUnit, error)
}

// TransactionIDRegistry reserves transaction IDs across console instances.
// Reserve returns false when the ID is already taken.
type TransactionIDRegistry interface {
	Reserve(ctx context.Context, transactionID string) (bool, error)
}
