package repositories

import (
	"context"
	"database/sql"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"time"
)

// Postgres-backed implementation of the DriverRepository and DutyEntryRepository ports.
type PostgresDutyRepository struct{ DB *sql.DB }

func NewPostgresDutyRepository(db *sql.DB) *PostgresDutyRepository {
	return &PostgresDutyRepository{DB: db}
}

func (p *PostgresDutyRepository) GetDriver(ctx context.Context, driverID int) (*domain.Driver, error) {
	if p.DB == nil {
		return nil, errors.New("postgres duty repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		name,
		home_terminal_timezone,
		cycle,
		is_active
	FROM drivers
	WHERE driver_id = $1;
	`
	var d domain.Driver
	err := p.DB.QueryRowContext(ctx, query, driverID).Scan(
		&d.DriverID,
		&d.Name,
		&d.HomeTerminalTimezone,
		&d.Cycle,
		&d.IsActive,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("driver_id=%d: %w", driverID, ports.ErrDriverNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get driver driver_id=%d: %w", driverID, err)
	}

	return &d, nil
}

func (p *PostgresDutyRepository) ListDrivers(ctx context.Context) ([]domain.Driver, error) {
	if p.DB == nil {
		return nil, errors.New("postgres duty repository: DB is nil")
	}

	query := `
	SELECT
		driver_id,
		name,
		home_terminal_timezone,
		cycle,
		is_active
	FROM drivers
	ORDER BY driver_id;
	`
	rows, err := p.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list drivers: query drivers table: %w", err)
	}
	defer rows.Close()

	drivers := make([]domain.Driver, 0, 16)
	for rows.Next() {
		var d domain.Driver
		if err := rows.Scan(&d.DriverID, &d.Name, &d.HomeTerminalTimezone, &d.Cycle, &d.IsActive); err != nil {
			return nil, fmt.Errorf("list drivers: scan row: %w", err)
		}
		drivers = append(drivers, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list drivers: row iteration: %w", err)
	}

	return drivers, nil
}

// Return entries overlapping [from, to], ordered by start time.
func (p *PostgresDutyRepository) ListDutyEntries(
	ctx context.Context,
	driverID int,
	from time.Time,
	to time.Time,
) ([]domain.DutyStatusEntry, error) {
	if p.DB == nil {
		return nil, errors.New("postgres duty repository: DB is nil")
	}

	query := `
	SELECT
		id,
		driver_id,
		status,
		start_time,
		end_time,
		location,
		odometer,
		remarks
	FROM duty_entries
	WHERE driver_id = $1
		AND start_time <= $3
		AND (end_time IS NULL OR end_time > $2)
	ORDER BY start_time;
	`
	rows, err := p.DB.QueryContext(ctx, query, driverID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list duty entries: query duty_entries table: %w", err)
	}
	defer rows.Close()

	entries := make([]domain.DutyStatusEntry, 0, 64)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("list duty entries: %w", err)
		}
		entries = append(entries, e)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list duty entries: row iteration: %w", err)
	}

	return entries, nil
}

func (p *PostgresDutyRepository) CurrentDutyStatus(ctx context.Context, driverID int) (domain.DutyStatusEntry, error) {
	if p.DB == nil {
		return domain.DutyStatusEntry{}, errors.New("postgres duty repository: DB is nil")
	}

	query := `
	SELECT
		id,
		driver_id,
		status,
		start_time,
		end_time,
		location,
		odometer,
		remarks
	FROM duty_entries
	WHERE driver_id = $1 AND end_time IS NULL;
	`
	e, err := scanEntry(p.DB.QueryRowContext(ctx, query, driverID))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.DutyStatusEntry{}, ports.ErrNoOpenEntry
	}
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("current duty status driver_id=%d: %w", driverID, err)
	}

	return e, nil
}

// Close the open entry at entry.Start and insert entry, in one transaction.
func (p *PostgresDutyRepository) AppendDutyStatus(ctx context.Context, entry domain.DutyStatusEntry) (domain.DutyStatusEntry, error) {
	if p.DB == nil {
		return domain.DutyStatusEntry{}, errors.New("postgres duty repository: DB is nil")
	}

	tx, err := p.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var latest sql.NullTime
	err = tx.QueryRowContext(ctx, `SELECT MAX(start_time) FROM duty_entries WHERE driver_id = $1;`, entry.DriverID).Scan(&latest)
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status: latest start: %w", err)
	}
	if latest.Valid && !entry.Start.After(latest.Time) {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status driver_id=%d: start %s is not after the latest entry",
			entry.DriverID, entry.Start.Format(time.RFC3339))
	}

	closeQuery := `
	UPDATE duty_entries
	SET end_time = $2
	WHERE driver_id = $1 AND end_time IS NULL;
	`
	if _, err := tx.ExecContext(ctx, closeQuery, entry.DriverID, entry.Start); err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status: close open entry: %w", err)
	}

	insertQuery := `
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
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	_, err = tx.ExecContext(ctx, insertQuery,
		entry.ID,
		entry.DriverID,
		string(entry.Status),
		entry.Start,
		entry.End,
		entry.Location,
		entry.Odometer,
		entry.Remarks,
	)
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status: insert id=%s: %w", entry.ID, err)
	}

	if err := tx.Commit(); err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("append duty status: commit tx: %w", err)
	}

	return entry, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (domain.DutyStatusEntry, error) {
	var e domain.DutyStatusEntry
	var status string
	var end sql.NullTime
	err := row.Scan(&e.ID, &e.DriverID, &status, &e.Start, &end, &e.Location, &e.Odometer, &e.Remarks)
	if err != nil {
		return domain.DutyStatusEntry{}, err
	}

	e.Status = domain.DutyStatus(status)
	if end.Valid {
		t := end.Time
		e.End = &t
	}
	return e, nil
}
