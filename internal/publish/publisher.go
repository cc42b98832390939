package publish

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/bbernstein/parentstops/internal/models"
)

// Publisher sends the parent stations of a run somewhere besides the output table
type Publisher interface {
	Publish(ctx context.Context, runID string, stations []models.StopRecord) error
}

// StationRecord is the stored form of a generated parent station
type StationRecord struct {
	StationID string  `dynamodbav:"stationId" json:"stationId"`
	RunID     string  `dynamodbav:"runId" json:"runId"`
	Name      string  `dynamodbav:"name" json:"name"`
	Latitude  float64 `dynamodbav:"latitude" json:"latitude"`
	Longitude float64 `dynamodbav:"longitude" json:"longitude"`
	CreatedAt int64   `dynamodbav:"createdAt" json:"createdAt"`
}

func (r StationRecord) Validate() error {
	if r.StationID == "" {
		return fmt.Errorf("station ID is required")
	}
	if r.RunID == "" {
		return fmt.Errorf("run ID is required")
	}
	if r.Latitude < -90 || r.Latitude > 90 {
		return fmt.Errorf("latitude %f out of range for station %s", r.Latitude, r.StationID)
	}
	if r.Longitude < -180 || r.Longitude > 180 {
		return fmt.Errorf("longitude %f out of range for station %s", r.Longitude, r.StationID)
	}
	return nil
}

// NewStationRecords converts parent station rows into records
func NewStationRecords(runID string, stations []models.StopRecord, createdAt int64) ([]StationRecord, error) {
	records := make([]StationRecord, 0, len(stations))
	for _, s := range stations {
		coord, err := s.Coordinate()
		if err != nil {
			return nil, err
		}
		record := StationRecord{
			StationID: s.ID,
			RunID:     runID,
			Name:      s.Name,
			Latitude:  coord.Latitude,
			Longitude: coord.Longitude,
			CreatedAt: createdAt,
		}
		if err := record.Validate(); err != nil {
			return nil, fmt.Errorf("invalid station record: %w", err)
		}
		records = append(records, record)
	}
	return records, nil
}

// Multi publishes to every publisher in turn and joins their errors
type Multi []Publisher

func (m Multi) Publish(ctx context.Context, runID string, stations []models.StopRecord) error {
	var errs []error
	for _, p := range m {
		if err := p.Publish(ctx, runID, stations); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Names lists the publishers for logging
func (m Multi) Names() string {
	names := make([]string, 0, len(m))
	for _, p := range m {
		names = append(names, fmt.Sprintf("%T", p))
	}
	return strings.Join(names, ",")
}
