// Package history provides SQLite-based recording of weather observations.
// It is an observer of the engine, not engine state: a restart still loses
// every active storm and cell, only the measurement log survives.
package history

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/tempest/internal/weather"
)

// DB wraps a SQLite connection for the weather history log.
type DB struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		temperature REAL NOT NULL,
		humidity REAL NOT NULL,
		pressure REAL NOT NULL,
		precip_intensity REAL NOT NULL,
		wind_speed REAL NOT NULL,
		wind_direction REAL NOT NULL,
		wave_height REAL NOT NULL,
		active_storms INTEGER NOT NULL,
		active_cells INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		category TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_tick ON samples(tick);
	CREATE INDEX IF NOT EXISTS idx_events_tick ON events(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// Sample is one recorded observation of the weather at the reference point.
type Sample struct {
	Tick            uint64  `json:"tick" db:"tick"`
	SimTime         float64 `json:"sim_time" db:"sim_time"`
	Temperature     float64 `json:"temperature" db:"temperature"`
	Humidity        float64 `json:"humidity" db:"humidity"`
	Pressure        float64 `json:"pressure" db:"pressure"`
	PrecipIntensity float64 `json:"precip_intensity" db:"precip_intensity"`
	WindSpeed       float64 `json:"wind_speed" db:"wind_speed"`
	WindDirection   float64 `json:"wind_direction" db:"wind_direction"`
	WaveHeight      float64 `json:"wave_height" db:"wave_height"`
	ActiveStorms    int     `json:"active_storms" db:"active_storms"`
	ActiveCells     int     `json:"active_cells" db:"active_cells"`
}

// RecordSample appends one observation row.
func (db *DB) RecordSample(s Sample) error {
	_, err := db.conn.Exec(`INSERT INTO samples
		(tick, sim_time, temperature, humidity, pressure, precip_intensity,
		 wind_speed, wind_direction, wave_height, active_storms, active_cells)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		s.Tick, s.SimTime, s.Temperature, s.Humidity, s.Pressure, s.PrecipIntensity,
		s.WindSpeed, s.WindDirection, s.WaveHeight, s.ActiveStorms, s.ActiveCells,
	)
	if err != nil {
		return fmt.Errorf("insert sample: %w", err)
	}
	return nil
}

// RecordEvents appends engine events not yet persisted past lastTime.
// Returns the new high-water mark.
func (db *DB) RecordEvents(tick uint64, events []weather.Event, lastTime float64) (float64, error) {
	newMark := lastTime
	if len(events) == 0 {
		return newMark, nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return newMark, err
	}
	defer tx.Rollback()

	for _, e := range events {
		if e.Time <= lastTime {
			continue
		}
		if _, err := tx.Exec(
			"INSERT INTO events (tick, sim_time, category, description) VALUES (?, ?, ?, ?)",
			tick, e.Time, e.Category, e.Description,
		); err != nil {
			return newMark, fmt.Errorf("insert event: %w", err)
		}
		if e.Time > newMark {
			newMark = e.Time
		}
	}

	return newMark, tx.Commit()
}

// RecentSamples returns the most recent N observations, newest first.
func (db *DB) RecentSamples(limit int) ([]Sample, error) {
	var samples []Sample
	err := db.conn.Select(&samples, `SELECT
		tick, sim_time, temperature, humidity, pressure, precip_intensity,
		wind_speed, wind_direction, wave_height, active_storms, active_cells
		FROM samples ORDER BY id DESC LIMIT ?`, limit)
	return samples, err
}

// RecentEvents returns the most recent N persisted events, newest first.
func (db *DB) RecentEvents(limit int) ([]weather.Event, error) {
	var events []weather.Event
	err := db.conn.Select(&events,
		"SELECT sim_time AS time, category, description FROM events ORDER BY id DESC LIMIT ?",
		limit,
	)
	return events, err
}
