package publish

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"time"

	"github.com/bbernstein/parentstops/internal/models"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schemaSQL string

// SQLitePublisher appends each run's parent stations to a local SQLite file
type SQLitePublisher struct {
	conn *sql.DB
	now  func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and ensures the schema
func OpenSQLite(ctx context.Context, path string) (*SQLitePublisher, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite database: %w", err)
	}
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("pinging sqlite database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, "PRAGMA busy_timeout = 5000"); err != nil {
		log.Warn().Err(err).Msg("Failed to set sqlite busy timeout")
	}
	if _, err := conn.ExecContext(ctx, schemaSQL); err != nil {
		conn.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	log.Debug().Str("path", path).Msg("Opened SQLite database")
	return &SQLitePublisher{conn: conn, now: time.Now}, nil
}

func (p *SQLitePublisher) Close() error {
	return p.conn.Close()
}

func (p *SQLitePublisher) Publish(ctx context.Context, runID string, stations []models.StopRecord) error {
	records, err := NewStationRecords(runID, stations, p.now().Unix())
	if err != nil {
		return err
	}

	tx, err := p.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO parent_stations (station_id, run_id, name, latitude, longitude, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (run_id, station_id) DO UPDATE SET
			name = excluded.name,
			latitude = excluded.latitude,
			longitude = excluded.longitude`)
	if err != nil {
		return fmt.Errorf("preparing insert: %w", err)
	}
	defer stmt.Close()

	for _, r := range records {
		if _, err := stmt.ExecContext(ctx, r.StationID, r.RunID, r.Name, r.Latitude, r.Longitude, r.CreatedAt); err != nil {
			return fmt.Errorf("inserting station %s: %w", r.StationID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing parent stations: %w", err)
	}

	log.Debug().Str("run_id", runID).Int("station_count", len(records)).Msg("Published parent stations to SQLite")
	return nil
}

// Stations returns the stored records of a run ordered by station ID
func (p *SQLitePublisher) Stations(ctx context.Context, runID string) ([]StationRecord, error) {
	rows, err := p.conn.QueryContext(ctx, `
		SELECT station_id, run_id, name, latitude, longitude, created_at
		FROM parent_stations WHERE run_id = ? ORDER BY station_id`, runID)
	if err != nil {
		return nil, fmt.Errorf("querying parent stations: %w", err)
	}
	defer rows.Close()

	var out []StationRecord
	for rows.Next() {
		var r StationRecord
		if err := rows.Scan(&r.StationID, &r.RunID, &r.Name, &r.Latitude, &r.Longitude, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning parent station: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
