package repositories

import (
	"database/sql"
	"errors"
	"fmt"
)

// Initialize the Postgres schema.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createDriversQuery := `
	CREATE TABLE IF NOT EXISTS drivers (
		driver_id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		home_terminal_timezone TEXT NOT NULL DEFAULT 'UTC',
		cycle TEXT NOT NULL DEFAULT '70_8',
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	`

	createDutyEntriesQuery := `
	CREATE TABLE IF NOT EXISTS duty_entries (
		id TEXT PRIMARY KEY,
		driver_id INTEGER NOT NULL REFERENCES drivers(driver_id),
		status TEXT NOT NULL CHECK (status IN ('OFF', 'SB', 'ON', 'D')),
		start_time TIMESTAMPTZ NOT NULL,
		end_time TIMESTAMPTZ,
		location TEXT NOT NULL DEFAULT '',
		odometer DOUBLE PRECISION NOT NULL DEFAULT 0,
		remarks TEXT NOT NULL DEFAULT '',
		CHECK (end_time IS NULL OR end_time >= start_time)
	);
	`

	// At most one active status per driver.
	createOpenEntryIndexQuery := `
	CREATE UNIQUE INDEX IF NOT EXISTS idx_duty_entries_one_open
	ON duty_entries(driver_id) WHERE end_time IS NULL;
	`

	createEntriesIndexQuery := `
	CREATE INDEX IF NOT EXISTS idx_duty_entries_driver_start
	ON duty_entries(driver_id, start_time);
	`

	createCertificationsQuery := `
	CREATE TABLE IF NOT EXISTS log_certifications (
		driver_id INTEGER NOT NULL REFERENCES drivers(driver_id),
		log_date DATE NOT NULL,
		certified_at TIMESTAMPTZ NOT NULL,
		method TEXT NOT NULL CHECK (method IN ('ELECTRONIC', 'PIN', 'BIOMETRIC')),
		PRIMARY KEY (driver_id, log_date)
	);
	`

	createRouteCacheQuery := `
	CREATE TABLE IF NOT EXISTS route_cache (
		profile TEXT NOT NULL,
		origin TEXT NOT NULL,
		destination TEXT NOT NULL,
		distance_meters INTEGER NOT NULL,
		duration_seconds INTEGER NOT NULL,
		cached_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		PRIMARY KEY (profile, origin, destination)
	);
	`

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		address TEXT PRIMARY KEY,
		lon DOUBLE PRECISION NOT NULL,
		lat DOUBLE PRECISION NOT NULL
	);
	`

	statements := []string{
		createDriversQuery,
		createDutyEntriesQuery,
		createOpenEntryIndexQuery,
		createEntriesIndexQuery,
		createCertificationsQuery,
		createRouteCacheQuery,
		createGeocodeCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

// Populate the database with drivers and duty entries from a JSON seed file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	if db == nil {
		return errors.New("seed: DB is nil")
	}

	seed, err := LoadSeed(jsonPath)
	if err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed: begin tx: %w", err)
	}
	defer tx.Rollback()

	driverQuery := `
	INSERT INTO drivers (
		driver_id,
		name,
		home_terminal_timezone,
		cycle
	)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (driver_id) DO UPDATE SET
		name = EXCLUDED.name,
		home_terminal_timezone = EXCLUDED.home_terminal_timezone,
		cycle = EXCLUDED.cycle;
	`
	for _, d := range seed.Drivers {
		tz := d.HomeTerminalTimezone
		if tz == "" {
			tz = "UTC"
		}
		cycle := d.Cycle
		if cycle == "" {
			cycle = "70_8"
		}
		if _, err := tx.Exec(driverQuery, d.DriverID, d.Name, tz, cycle); err != nil {
			return fmt.Errorf("seed: upsert driver_id=%d: %w", d.DriverID, err)
		}
	}

	entryQuery := `
	INSERT INTO duty_entries (
		id,
		driver_id,
		status,
		start_time,
		end_time,
		location,
		odometer,
		remarks
	)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	ON CONFLICT (id) DO NOTHING;
	`
	stmt, err := tx.Prepare(entryQuery)
	if err != nil {
		return fmt.Errorf("seed: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, e := range seed.DutyEntries {
		if _, err := stmt.Exec(e.ID, e.DriverID, e.Status, e.Start, e.End, e.Location, e.Odometer, e.Remarks); err != nil {
			return fmt.Errorf("seed: insert entry id=%s driver_id=%d: %w", e.ID, e.DriverID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed: commit tx: %w", err)
	}

	return nil
}
