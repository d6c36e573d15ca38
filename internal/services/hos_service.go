package services

import (
	"context"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/obs"
	"eld-hos-service/internal/ports"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/zoobzio/clockz"
)

// HOSService answers HOS questions from the stored duty history.
// It holds no state of its own; every call replays the entries.
type HOSService struct {
	Drivers ports.DriverRepository
	Entries ports.DutyEntryRepository
	// Certifications may be nil, which disables log certification.
	Certifications ports.CertificationRepository
	Clock          clockz.Clock
	Rules          domain.RuleSet
}

type DriverHOSStatus struct {
	Driver     *domain.Driver
	Current    *domain.DutyStatusEntry
	AsOf       time.Time
	Rules      domain.RuleSet
	Replay     ReplayResult
	Compliance domain.ComplianceResult
}

type ChangeDutyStatusRequest struct {
	DriverID int
	Status   domain.DutyStatus
	At       *time.Time
	Location string
	Odometer *float64
	Remarks  string
}

// Now is the instant HOS status is evaluated at.
func (s *HOSService) Now() time.Time {
	if s.Clock == nil {
		return clockz.RealClock.Now()
	}
	return s.Clock.Now()
}

// rulesFor picks the driver's cycle preset, falling back to the service rules.
func (s *HOSService) rulesFor(d *domain.Driver) domain.RuleSet {
	if d == nil || strings.TrimSpace(d.Cycle) == "" || d.Cycle == s.Rules.Name {
		return s.Rules
	}

	r, err := domain.RulesFor(d.Cycle)
	if err != nil {
		log.Printf("driver_id=%d unknown cycle %q, using %s", d.DriverID, d.Cycle, s.Rules.Name)
		return s.Rules
	}
	return r
}

// location is the driver's home terminal zone, which defines log days.
func location(d *domain.Driver) *time.Location {
	tz := strings.TrimSpace(d.HomeTerminalTimezone)
	if tz == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(tz)
	if err != nil {
		log.Printf("driver_id=%d bad home terminal timezone %q: %v", d.DriverID, tz, err)
		return time.UTC
	}
	return loc
}

// lookback covers the cycle window plus a restart that may straddle its start.
func lookback(r domain.RuleSet) time.Duration {
	return r.CycleWindow() + r.Restart
}

func (s *HOSService) history(
	ctx context.Context,
	driverID int,
	from time.Time,
	to time.Time,
) (_ []domain.DutyStatusEntry, err error) {
	defer obs.Time(ctx, "hos.history")(&err)

	entries, err := s.Entries.ListDutyEntries(ctx, driverID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list duty entries driver_id=%d: %w", driverID, err)
	}
	return entries, nil
}

// Status replays the driver's history at the current instant and evaluates it.
func (s *HOSService) Status(ctx context.Context, driverID int) (*DriverHOSStatus, error) {
	driver, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("hos status: %w", err)
	}

	rules := s.rulesFor(driver)
	now := s.Now()

	entries, err := s.history(ctx, driverID, now.Add(-lookback(rules)), now)
	if err != nil {
		return nil, fmt.Errorf("hos status: %w", err)
	}

	state, err := Replay(entries, now, rules)
	if err != nil {
		return nil, fmt.Errorf("hos status: replay driver_id=%d: %w", driverID, err)
	}

	res, err := EvaluateReplayed(EvaluateInput{Counters: state.Counters, At: now}, rules)
	if err != nil {
		return nil, fmt.Errorf("hos status: evaluate driver_id=%d: %w", driverID, err)
	}

	out := &DriverHOSStatus{
		Driver:     driver,
		AsOf:       now,
		Rules:      rules,
		Replay:     state,
		Compliance: res,
	}
	if n := len(entries); n > 0 && entries[n-1].IsOpen() {
		cur := entries[n-1]
		out.Current = &cur
	}

	return out, nil
}

// Violations detects rule breaches whose crossing instant falls in the last days.
func (s *HOSService) Violations(ctx context.Context, driverID int, days int) ([]domain.Violation, error) {
	if days < 1 {
		return nil, &domain.ValidationError{Field: "days", Reason: "must be at least 1"}
	}

	driver, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("violations: %w", err)
	}

	rules := s.rulesFor(driver)
	now := s.Now()
	since := now.AddDate(0, 0, -days)

	entries, err := s.history(ctx, driverID, since.Add(-lookback(rules)), now)
	if err != nil {
		return nil, fmt.Errorf("violations: %w", err)
	}

	all, err := DetectViolations(entries, now, rules)
	if err != nil {
		return nil, fmt.Errorf("violations: driver_id=%d: %w", driverID, err)
	}

	out := make([]domain.Violation, 0, len(all))
	for _, v := range all {
		if !v.DetectedAt.Before(since) {
			out = append(out, v)
		}
	}
	return out, nil
}

// DailyLog builds the log sheet for date (YYYY-MM-DD) in the driver's home terminal zone.
func (s *HOSService) DailyLog(ctx context.Context, driverID int, date string) (*domain.DailyLog, error) {
	driver, err := s.Drivers.GetDriver(ctx, driverID)
	if err != nil {
		return nil, fmt.Errorf("daily log: %w", err)
	}

	day, err := time.ParseInLocation(domain.LogDateLayout, date, location(driver))
	if err != nil {
		return nil, &domain.ValidationError{Field: "date", Reason: "must be YYYY-MM-DD"}
	}

	rules := s.rulesFor(driver)
	now := s.Now()

	entries, err := s.history(ctx, driverID, day.Add(-lookback(rules)), day.AddDate(0, 0, 1))
	if err != nil {
		return nil, fmt.Errorf("daily log: %w", err)
	}

	sheet, err := BuildDailyLog(driverID, entries, day, now, rules)
	if err != nil {
		return nil, fmt.Errorf("daily log: driver_id=%d date=%s: %w", driverID, date, err)
	}

	if s.Certifications != nil {
		certs, err := s.Certifications.ListCertifications(ctx, driverID)
		if err != nil {
			return nil, fmt.Errorf("daily log: %w", err)
		}
		for i := range certs {
			if certs[i].LogDate == date {
				sheet.Certification = &certs[i]
				break
			}
		}
	}
	return sheet, nil
}

// ListEntries returns the raw duty history between from and to.
func (s *HOSService) ListEntries(ctx context.Context, driverID int, from, to time.Time) ([]domain.DutyStatusEntry, error) {
	if !from.Before(to) {
		return nil, &domain.ValidationError{Field: "from", Reason: "must be before to"}
	}
	if _, err := s.Drivers.GetDriver(ctx, driverID); err != nil {
		return nil, fmt.Errorf("list entries: %w", err)
	}
	return s.history(ctx, driverID, from, to)
}

// ChangeDutyStatus closes the active entry and opens a new one.
func (s *HOSService) ChangeDutyStatus(ctx context.Context, req ChangeDutyStatusRequest) (domain.DutyStatusEntry, error) {
	if _, err := domain.ParseDutyStatus(string(req.Status)); err != nil {
		return domain.DutyStatusEntry{}, &domain.ValidationError{Field: "new_status", Reason: err.Error()}
	}

	driver, err := s.Drivers.GetDriver(ctx, req.DriverID)
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("change duty status: %w", err)
	}

	now := s.Now()
	at := now
	if req.At != nil {
		at = *req.At
	}
	if at.After(now) {
		return domain.DutyStatusEntry{}, &domain.ValidationError{Field: "at", Reason: "must not be in the future"}
	}

	entry := domain.DutyStatusEntry{
		ID:       uuid.NewString(),
		DriverID: req.DriverID,
		Status:   req.Status,
		Start:    at,
		Location: strings.TrimSpace(req.Location),
		Remarks:  strings.TrimSpace(req.Remarks),
	}

	cur, err := s.Entries.CurrentDutyStatus(ctx, req.DriverID)
	switch {
	case errors.Is(err, ports.ErrNoOpenEntry):
	case err != nil:
		return domain.DutyStatusEntry{}, fmt.Errorf("change duty status: current status: %w", err)
	default:
		if cur.Status == req.Status {
			return domain.DutyStatusEntry{}, &domain.ValidationError{
				Field:  "new_status",
				Reason: fmt.Sprintf("driver is already %s", req.Status.Label()),
			}
		}
		if !at.After(cur.Start) {
			return domain.DutyStatusEntry{}, &domain.ValidationError{Field: "at", Reason: "must be after the current status started"}
		}
		entry.Odometer = cur.Odometer
	}

	if req.Odometer != nil {
		if *req.Odometer < entry.Odometer {
			return domain.DutyStatusEntry{}, &domain.ValidationError{Field: "odometer_reading", Reason: "must not decrease"}
		}
		entry.Odometer = *req.Odometer
	}

	saved, err := s.Entries.AppendDutyStatus(ctx, entry)
	if err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("change duty status: %w", err)
	}

	log.Printf("driver_id=%d duty_status=%s at=%s", req.DriverID, saved.Status, saved.Start.Format(time.RFC3339))

	if err := s.voidCertifications(ctx, driver, saved.Start, now); err != nil {
		return domain.DutyStatusEntry{}, fmt.Errorf("change duty status: %w", err)
	}
	return saved, nil
}
