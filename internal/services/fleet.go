package services

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"time"
)

// DriverSummary is a driver record with its active duty status, if any.
type DriverSummary struct {
	Driver  domain.Driver
	Current *domain.DutyStatusEntry
}

// DriverFilter narrows ListDrivers. Zero values match everything.
type DriverFilter struct {
	Active *bool
	Status domain.DutyStatus
}

func (s *HOSService) summary(ctx context.Context, d domain.Driver) (DriverSummary, error) {
	out := DriverSummary{Driver: d}
	cur, err := s.Entries.CurrentDutyStatus(ctx, d.DriverID)
	switch {
	case errors.Is(err, ports.ErrNoOpenEntry):
	case err != nil:
		return DriverSummary{}, fmt.Errorf("driver_id=%d current status: %w", d.DriverID, err)
	default:
		out.Current = &cur
	}
	return out, nil
}

func (s *HOSService) ListDrivers(ctx context.Context, f DriverFilter) ([]DriverSummary, error) {
	if f.Status != "" {
		st, err := domain.ParseDutyStatus(string(f.Status))
		if err != nil {
			return nil, &domain.ValidationError{Field: "duty_status", Reason: err.Error()}
		}
		f.Status = st
	}

	drivers, err := s.Drivers.ListDrivers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list drivers: %w", err)
	}

	out := make([]DriverSummary, 0, len(drivers))
	for _, d := range drivers {
		if f.Active != nil && d.IsActive != *f.Active {
			continue
		}
		sum, err := s.summary(ctx, d)
		if err != nil {
			return nil, fmt.Errorf("list drivers: %w", err)
		}
		if f.Status != "" && (sum.Current == nil || sum.Current.Status != f.Status) {
			continue
		}
		out = append(out, sum)
	}
	return out, nil
}

func (s *HOSService) Driver(ctx context.Context, driverID int) (*DriverSummary, error) {
	d, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	sum, err := s.summary(ctx, *d)
	if err != nil {
		return nil, fmt.Errorf("driver: %w", err)
	}
	return &sum, nil
}

// DriverCompliance is one active driver's row in a ComplianceReport.
type DriverCompliance struct {
	DriverID   int
	Name       string
	Violations []domain.Violation
	// LastCertified is the latest certified log date, empty if none.
	LastCertified string
	// Inconsistent marks a history that could not be replayed.
	Inconsistent bool
}

// ComplianceReport aggregates HOS violations and log certification over the
// active fleet for the last Days days.
type ComplianceReport struct {
	From          time.Time
	To            time.Time
	Days          int
	ActiveDrivers int
	// Compliant counts drivers with no violation of each kind.
	Compliant map[domain.ViolationKind]int
	// ViolationCounts counts violations of each kind across the fleet.
	ViolationCounts map[domain.ViolationKind]int
	// OverallComplianceRate is the percentage of drivers without any violation.
	OverallComplianceRate float64
	CertifiedToday        int
	CertifiedThisWeek     int
	NeverCertified        int
	InconsistentHistories int
	Drivers               []DriverCompliance
}

var reportKinds = []domain.ViolationKind{
	domain.DailyDriveLimitExceeded,
	domain.DailyDutyWindowExceeded,
	domain.CycleLimitExceeded,
	domain.MissingRequiredBreak,
}

// ComplianceReport runs violation detection for every active driver. A driver
// whose history cannot be replayed is reported as inconsistent and counted as
// non-compliant instead of failing the whole report.
func (s *HOSService) ComplianceReport(ctx context.Context, days int) (*ComplianceReport, error) {
	if days < 1 {
		return nil, &domain.ValidationError{Field: "days", Reason: "must be at least 1"}
	}

	active := true
	drivers, err := s.ListDrivers(ctx, DriverFilter{Active: &active})
	if err != nil {
		return nil, fmt.Errorf("compliance report: %w", err)
	}

	now := s.Now()
	rep := &ComplianceReport{
		From:            now.AddDate(0, 0, -days),
		To:              now,
		Days:            days,
		ActiveDrivers:   len(drivers),
		Compliant:       make(map[domain.ViolationKind]int, len(reportKinds)),
		ViolationCounts: make(map[domain.ViolationKind]int, len(reportKinds)),
		Drivers:         make([]DriverCompliance, 0, len(drivers)),
	}
	for _, k := range reportKinds {
		rep.Compliant[k] = 0
		rep.ViolationCounts[k] = 0
	}

	clean := 0
	for _, sum := range drivers {
		d := sum.Driver
		row := DriverCompliance{DriverID: d.DriverID, Name: d.Name}

		vs, err := s.Violations(ctx, d.DriverID, days)
		var ierr *domain.InvariantError
		switch {
		case errors.As(err, &ierr):
			log.Printf("compliance report: driver_id=%d inconsistent history: %v", d.DriverID, err)
			row.Inconsistent = true
			rep.InconsistentHistories++
		case err != nil:
			return nil, fmt.Errorf("compliance report: %w", err)
		default:
			row.Violations = vs
			seen := make(map[domain.ViolationKind]bool, len(vs))
			for _, v := range vs {
				rep.ViolationCounts[v.Kind]++
				seen[v.Kind] = true
			}
			for _, k := range reportKinds {
				if !seen[k] {
					rep.Compliant[k]++
				}
			}
			if len(vs) == 0 {
				clean++
			}
		}

		if err := s.certificationStatus(ctx, &d, now, rep, &row); err != nil {
			return nil, fmt.Errorf("compliance report: %w", err)
		}
		rep.Drivers = append(rep.Drivers, row)
	}

	rep.OverallComplianceRate = 100
	if rep.ActiveDrivers > 0 {
		rep.OverallComplianceRate = float64(clean) / float64(rep.ActiveDrivers) * 100
	}
	return rep, nil
}

// certificationStatus tallies the driver's certifications against today and
// the last seven log days in the driver's zone.
func (s *HOSService) certificationStatus(
	ctx context.Context,
	d *domain.Driver,
	now time.Time,
	rep *ComplianceReport,
	row *DriverCompliance,
) error {
	var certs []domain.LogCertification
	if s.Certifications != nil {
		var err error
		certs, err = s.Certifications.ListCertifications(ctx, d.DriverID)
		if err != nil {
			return err
		}
	}

	if len(certs) == 0 {
		rep.NeverCertified++
		return nil
	}

	local := now.In(location(d))
	today := local.Format(domain.LogDateLayout)
	weekStart := local.AddDate(0, 0, -6).Format(domain.LogDateLayout)

	var certifiedToday, certifiedThisWeek bool
	for _, c := range certs {
		if c.LogDate > row.LastCertified {
			row.LastCertified = c.LogDate
		}
		if c.LogDate == today {
			certifiedToday = true
		}
		if c.LogDate >= weekStart && c.LogDate <= today {
			certifiedThisWeek = true
		}
	}
	if certifiedToday {
		rep.CertifiedToday++
	}
	if certifiedThisWeek {
		rep.CertifiedThisWeek++
	}
	return nil
}
