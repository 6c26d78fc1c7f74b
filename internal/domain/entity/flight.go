// internal/domain/entity/flight.go
package entity

import "time"

// FlightPosition is a live position report for a flight in the air
type FlightPosition struct {
	FlightIATA  string
	Latitude    float64
	Longitude   float64
	SpeedKmh    float64
	ArrivalLat  *float64
	ArrivalLon  *float64
	ArrivalICAO string
	ReportedAt  time.Time
}

// FlightETA is the result of an ETA computation
type FlightETA struct {
	DistanceKm float64
	Hours      float64
	Local      time.Time
}

// DashboardMetrics are the headline counts of the admin dashboard
type DashboardMetrics struct {
	TotalSchedules int `json:"totalSchedules"`
	BookingsToday  int `json:"bookingsToday"`
	PendingToday   int `json:"pendingToday"`
	ActiveToday    int `json:"activeToday"`
	CompletedToday int `json:"completedToday"`
	CancelledToday int `json:"cancelledToday"`
	TotalUsers     int `json:"totalUsers"`
	ActiveUsers    int `json:"activeUsers"`
}
