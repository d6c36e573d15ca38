package ports

import (
	"context"
	"eld-hos-service/internal/domain"
	"errors"
	"time"
)

var (
	ErrDriverNotFound  = errors.New("driver not found")
	ErrNoOpenEntry     = errors.New("driver has no active duty status")
	ErrLogNotCertified = errors.New("daily log is not certified")
)

// Port: read access to driver records.
type DriverRepository interface {
	GetDriver(ctx context.Context, driverID int) (*domain.Driver, error)
	// Return all drivers ordered by id.
	ListDrivers(ctx context.Context) ([]domain.Driver, error)
}

// Port: the duty-status history, which is the source of truth for HOS counters.
type DutyEntryRepository interface {
	// Return entries overlapping [from, to], ordered by start time.
	ListDutyEntries(ctx context.Context, driverID int, from, to time.Time) ([]domain.DutyStatusEntry, error)
	// Close the open entry at entry.Start and store entry as the new active status.
	AppendDutyStatus(ctx context.Context, entry domain.DutyStatusEntry) (domain.DutyStatusEntry, error)
	// Return the currently active entry, or ErrNoOpenEntry.
	CurrentDutyStatus(ctx context.Context, driverID int) (domain.DutyStatusEntry, error)
}

// Port: driver certifications of daily logs, one per driver and log date.
type CertificationRepository interface {
	// Store c, replacing an earlier certification of the same log.
	CertifyLog(ctx context.Context, c domain.LogCertification) error
	// Remove the certification of one log, or return ErrLogNotCertified.
	UncertifyLog(ctx context.Context, driverID int, logDate string) error
	// Return the driver's certifications ordered by log date.
	ListCertifications(ctx context.Context, driverID int) ([]domain.LogCertification, error)
}
