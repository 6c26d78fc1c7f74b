package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"dispatch-console/internal/domain/entity"
	"dispatch-console/internal/domain/repository"
	"dispatch-console/pkg/logger"
)

// AviationEdgeRepository reads live flight positions from Aviation Edge
type AviationEdgeRepository struct {
	baseURL string
	apiKey  string
	logger  logger.Logger
}

// NewAviationEdgeRepository creates a new flight repository
func NewAviationEdgeRepository(baseURL, apiKey string, logger logger.Logger) repository.FlightRepository {
	if baseURL == "" {
		baseURL = "https://aviation-edge.com/v2/public/flights"
	}
	return &AviationEdgeRepository{
		baseURL: baseURL,
		apiKey:  apiKey,
		logger:  logger,
	}
}

type aviationEdgeFlight struct {
	Geography *struct {
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
	} `json:"geography"`
	Speed *struct {
		Horizontal float64 `json:"horizontal"`
	} `json:"speed"`
	Arrival *struct {
		IcaoCode  string   `json:"icaoCode"`
		Latitude  *float64 `json:"latitude"`
		Longitude *float64 `json:"longitude"`
	} `json:"arrival"`
	Flight struct {
		IataNumber string `json:"iataNumber"`
	} `json:"flight"`
	System struct {
		Updated int64 `json:"updated"`
	} `json:"system"`
}

// GetLivePosition returns the newest position report for a flight. A
// flight with no report, or not yet airborne, is ErrNotFound.
func (r *AviationEdgeRepository) GetLivePosition(ctx context.Context, flightIATA string) (*entity.FlightPosition, error) {
	query := url.Values{}
	query.Set("key", r.apiKey)
	query.Set("flightIata", flightIATA)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+query.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("aviation edge returned status %d", resp.StatusCode)
	}

	var body json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	// "No Record Found" comes back as an object instead of a list
	if len(bytes.TrimSpace(body)) == 0 || bytes.TrimSpace(body)[0] != '[' {
		return nil, fmt.Errorf("flight %s: %w", flightIATA, repository.ErrNotFound)
	}

	var flights []aviationEdgeFlight
	if err := json.Unmarshal(body, &flights); err != nil {
		return nil, fmt.Errorf("failed to decode flights: %w", err)
	}
	if len(flights) == 0 {
		return nil, fmt.Errorf("flight %s: %w", flightIATA, repository.ErrNotFound)
	}

	f := flights[0]
	if f.Geography == nil || f.Speed == nil {
		return nil, fmt.Errorf("flight %s has no live position: %w", flightIATA, repository.ErrNotFound)
	}

	pos := &entity.FlightPosition{
		FlightIATA: flightIATA,
		Latitude:   f.Geography.Latitude,
		Longitude:  f.Geography.Longitude,
		SpeedKmh:   f.Speed.Horizontal,
	}
	if f.System.Updated > 0 {
		pos.ReportedAt = time.Unix(f.System.Updated, 0).UTC()
	}
	if f.Arrival != nil {
		pos.ArrivalICAO = f.Arrival.IcaoCode
		pos.ArrivalLat = f.Arrival.Latitude
		pos.ArrivalLon = f.Arrival.Longitude
	}

	r.logger.Debug("Live flight position",
		"flight", flightIATA,
		"lat", pos.Latitude,
		"lon", pos.Longitude,
		"speedKmh", pos.SpeedKmh)
	return pos, nil
}
