package models

import (
	"fmt"
	"strconv"
	"strings"
)

// LocationType mirrors the GTFS location_type discriminator
type LocationType int

const (
	LocationTypeStop    LocationType = 0
	LocationTypeStation LocationType = 1
)

// Column names of the stop table we read or write
const (
	ColumnStopID        = "stop_id"
	ColumnStopName      = "stop_name"
	ColumnStopLat       = "stop_lat"
	ColumnStopLon       = "stop_lon"
	ColumnLocationType  = "location_type"
	ColumnParentStation = "parent_station"
	ColumnPlatformCode  = "platform_code"
)

// StopRecord is one row of the stop table. Values are kept as text the way
// they were read; coordinates are only parsed when a centroid needs them.
type StopRecord struct {
	ID            string
	Name          string
	Latitude      string
	Longitude     string
	LocationType  string
	ParentStation string
	PlatformCode  string
	// Extra holds every other column of the input row, keyed by header.
	Extra map[string]string
}

// Coordinate parses the record's latitude and longitude
func (s StopRecord) Coordinate() (Coordinate, error) {
	lat, err := strconv.ParseFloat(strings.TrimSpace(s.Latitude), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing latitude of stop %s: %w", s.ID, err)
	}
	lon, err := strconv.ParseFloat(strings.TrimSpace(s.Longitude), 64)
	if err != nil {
		return Coordinate{}, fmt.Errorf("parsing longitude of stop %s: %w", s.ID, err)
	}
	return Coordinate{Latitude: lat, Longitude: lon}, nil
}

// IsStation reports whether the row is a station (location_type = 1)
func (s StopRecord) IsStation() bool {
	return strings.TrimSpace(s.LocationType) == strconv.Itoa(int(LocationTypeStation))
}

// Field returns the value of a column by its header name
func (s StopRecord) Field(column string) string {
	switch column {
	case ColumnStopID:
		return s.ID
	case ColumnStopName:
		return s.Name
	case ColumnStopLat:
		return s.Latitude
	case ColumnStopLon:
		return s.Longitude
	case ColumnLocationType:
		return s.LocationType
	case ColumnParentStation:
		return s.ParentStation
	case ColumnPlatformCode:
		return s.PlatformCode
	}
	return s.Extra[column]
}

// SetField assigns a column value by its header name
func (s *StopRecord) SetField(column, value string) {
	switch column {
	case ColumnStopID:
		s.ID = value
	case ColumnStopName:
		s.Name = value
	case ColumnStopLat:
		s.Latitude = value
	case ColumnStopLon:
		s.Longitude = value
	case ColumnLocationType:
		s.LocationType = value
	case ColumnParentStation:
		s.ParentStation = value
	case ColumnPlatformCode:
		s.PlatformCode = value
	default:
		if s.Extra == nil {
			s.Extra = make(map[string]string)
		}
		s.Extra[column] = value
	}
}

// NewParentStation builds the synthetic station row for a cluster of platforms.
// It carries no parent reference of its own.
func NewParentStation(id, name string, center Coordinate) StopRecord {
	return StopRecord{
		ID:           id,
		Name:         name,
		Latitude:     strconv.FormatFloat(center.Latitude, 'f', -1, 64),
		Longitude:    strconv.FormatFloat(center.Longitude, 'f', -1, 64),
		LocationType: strconv.Itoa(int(LocationTypeStation)),
	}
}

// ExtractedPrefix is the (prefix, platform code) pair pulled out of a stop name
type ExtractedPrefix struct {
	Prefix       string
	PlatformCode string
}
