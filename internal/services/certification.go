package services

import (
	"context"
	"eld-hos-service/internal/domain"
	"errors"
	"fmt"
	"log"
	"time"
)

var ErrCertificationDisabled = errors.New("log certification is not configured")

// CertifyLogs records the driver's certification of each log date. Without
// dates the current day in the driver's home terminal zone is certified.
// Future days cannot be certified.
func (s *HOSService) CertifyLogs(
	ctx context.Context,
	driverID int,
	dates []string,
	method string,
) ([]domain.LogCertification, error) {
	if s.Certifications == nil {
		return nil, ErrCertificationDisabled
	}

	m, err := domain.ParseCertificationMethod(method)
	if err != nil {
		return nil, &domain.ValidationError{Field: "certification_method", Reason: err.Error()}
	}

	driver, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("certify logs: %w", err)
	}

	now := s.Now()
	today := now.In(location(driver)).Format(domain.LogDateLayout)
	if len(dates) == 0 {
		dates = []string{today}
	}

	for _, d := range dates {
		if _, err := time.Parse(domain.LogDateLayout, d); err != nil {
			return nil, &domain.ValidationError{Field: "log_dates", Reason: fmt.Sprintf("%q must be YYYY-MM-DD", d)}
		}
		// Same-layout dates compare in calendar order.
		if d > today {
			return nil, &domain.ValidationError{Field: "log_dates", Reason: fmt.Sprintf("%s is in the future", d)}
		}
	}

	out := make([]domain.LogCertification, 0, len(dates))
	for _, d := range dates {
		c := domain.LogCertification{DriverID: driverID, LogDate: d, CertifiedAt: now, Method: m}
		if err := s.Certifications.CertifyLog(ctx, c); err != nil {
			return nil, fmt.Errorf("certify logs: %w", err)
		}
		out = append(out, c)
	}

	log.Printf("driver_id=%d certified_logs=%d method=%s", driverID, len(out), m)
	return out, nil
}

// UncertifyLog withdraws the certification of one log date.
func (s *HOSService) UncertifyLog(ctx context.Context, driverID int, logDate string) error {
	if s.Certifications == nil {
		return ErrCertificationDisabled
	}
	if _, err := s.Drivers.GetDriver(ctx, driverID); err != nil {
		return fmt.Errorf("uncertify log: %w", err)
	}
	if err := s.Certifications.UncertifyLog(ctx, driverID, logDate); err != nil {
		return fmt.Errorf("uncertify log: %w", err)
	}

	log.Printf("driver_id=%d uncertified log_date=%s", driverID, logDate)
	return nil
}

// voidCertifications drops certifications of the log days a duty change
// starting at from rewrites, through the day holding now.
func (s *HOSService) voidCertifications(ctx context.Context, driver *domain.Driver, from, now time.Time) error {
	if s.Certifications == nil {
		return nil
	}

	certs, err := s.Certifications.ListCertifications(ctx, driver.DriverID)
	if err != nil {
		return fmt.Errorf("void certifications: %w", err)
	}

	loc := location(driver)
	first := from.In(loc).Format(domain.LogDateLayout)
	last := now.In(loc).Format(domain.LogDateLayout)
	for _, c := range certs {
		if c.LogDate < first || c.LogDate > last {
			continue
		}
		if err := s.Certifications.UncertifyLog(ctx, driver.DriverID, c.LogDate); err != nil {
			return fmt.Errorf("void certifications: %w", err)
		}
		log.Printf("driver_id=%d log_date=%s certification voided by duty status change", driver.DriverID, c.LogDate)
	}
	return nil
}
