package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"

	"gorm.io/gorm"
)

// GormAirportRepository implements the AirportRepository interface
type GormAirportRepository struct {
	db *gorm.DB
}

// NewGormAirportRepository creates a new GORM airport repository
func NewGormAirportRepository(db *gorm.DB) repository.AirportRepository {
	return &GormAirportRepository{
		db: db,
	}
}

// Airports GORM model for database mapping
type Airports struct {
	ID        uint           `gorm:"primaryKey"`
	ICAO      string         `gorm:"column:icao;size:4;uniqueIndex"`
	IATA      string         `gorm:"column:iata;size:3;index"`
	Name      string         `gorm:"column:airport_name"`
	CityName  string         `gorm:"column:cityname"`
	TzName    string         `gorm:"column:tzname"`
	Latitude  float64        `gorm:"column:latitude"`
	Longitude float64        `gorm:"column:longitude"`
	DeletedAt gorm.DeletedAt `gorm:"index"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TableName overrides the default table name
func (Airports) TableName() string {
	return "m_airports"
}

// MigrateAirports creates or updates the airports table
func MigrateAirports(db *gorm.DB) error {
	return db.AutoMigrate(&Airports{})
}

// GetByICAO finds an airport by ICAO code
func (r *GormAirportRepository) GetByICAO(ctx context.Context, icao string) (*entity.Airport, error) {
	var airport Airports
	result := r.db.WithContext(ctx).Where("icao = ?", strings.ToUpper(icao)).First(&airport)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, repository.ErrNotFound
		}
		return nil, result.Error
	}

	// Convert GORM model to domain entity
	return &entity.Airport{
		ID:        airport.ID,
		ICAO:      airport.ICAO,
		IATA:      airport.IATA,
		Name:      airport.Name,
		CityName:  airport.CityName,
		TzName:    airport.TzName,
		Latitude:  airport.Latitude,
		Longitude: airport.Longitude,
		CreatedAt: airport.CreatedAt,
		UpdatedAt: airport.UpdatedAt,
		DeletedAt: airport.DeletedAt,
	}, nil
}
