package repository

import (
	"context"

	"dispatch-console/internal/domain/entity"
)

// AirportRepository defines the interface for airport lookups
type AirportRepository interface {
	GetByICAO(ctx context.Context, icao string) (*entity.Airport, error)
}

// FlightRepository defines the interface for live flight data
type FlightRepository interface {
	GetLivePosition(ctx context.Context, flightIATA string) (*entity.FlightPosition, error)
}
