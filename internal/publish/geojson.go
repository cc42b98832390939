package publish

import (
	"context"
	"fmt"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/paulmach/orb/geojson"
	"github.com/rs/zerolog/log"
)

// Saver stores bytes at a location; stops.Store satisfies it
type Saver interface {
	Save(ctx context.Context, location string, data []byte) error
}

// GeoJSONPublisher writes the parent stations of a run as a point
// FeatureCollection, handy for eyeballing the clusters on a map.
type GeoJSONPublisher struct {
	saver    Saver
	location string
}

func NewGeoJSONPublisher(saver Saver, location string) *GeoJSONPublisher {
	return &GeoJSONPublisher{
		saver:    saver,
		location: location,
	}
}

// FeatureCollection builds the collection without writing it
func FeatureCollection(runID string, stations []models.StopRecord) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range stations {
		coord, err := s.Coordinate()
		if err != nil {
			return nil, err
		}
		f := geojson.NewFeature(coord.Point())
		f.ID = s.ID
		f.Properties["stop_id"] = s.ID
		f.Properties["stop_name"] = s.Name
		f.Properties["location_type"] = s.LocationType
		f.Properties["run_id"] = runID
		fc.Append(f)
	}
	return fc, nil
}

func (p *GeoJSONPublisher) Publish(ctx context.Context, runID string, stations []models.StopRecord) error {
	fc, err := FeatureCollection(runID, stations)
	if err != nil {
		return err
	}

	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("encoding feature collection: %w", err)
	}
	if err := p.saver.Save(ctx, p.location, data); err != nil {
		return fmt.Errorf("writing geojson: %w", err)
	}

	log.Debug().Str("run_id", runID).Str("location", p.location).Int("station_count", len(stations)).Msg("Published parent stations as GeoJSON")
	return nil
}
