package entity

import (
	"time"

	"gorm.io/gorm"
)

// Airport is an arrival airport the ETA worker can measure against
type Airport struct {
	ID        uint
	ICAO      string
	IATA      string
	Name      string
	CityName  string
	TzName    string
	Latitude  float64
	Longitude float64
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt
}
