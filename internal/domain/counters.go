package domain

import (
	"fmt"
	"math"
)

// HOSCounters is the rolling HOS state, in hours. It is always a projection of
// the duty-status entries and is never stored on its own.
type HOSCounters struct {
	CycleHoursUsed       float64
	DailyDriveHours      float64
	DailyDutyHours       float64
	ContinuousDriveHours float64
}

// Check validates the structural invariants shared by reported and replayed counters.
func (c HOSCounters) Check() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"cycle_hours_used", c.CycleHoursUsed},
		{"daily_drive_hours", c.DailyDriveHours},
		{"daily_duty_hours", c.DailyDutyHours},
		{"continuous_drive_hours", c.ContinuousDriveHours},
	}
	for _, f := range fields {
		if math.IsNaN(f.v) || math.IsInf(f.v, 0) {
			return &ValidationError{Field: f.name, Reason: "must be a finite number"}
		}
		if f.v < 0 {
			return &ValidationError{Field: f.name, Reason: "must not be negative"}
		}
	}

	if c.DailyDriveHours > c.DailyDutyHours {
		return &ValidationError{Field: "daily_drive_hours", Reason: "must not exceed daily_duty_hours"}
	}
	if c.ContinuousDriveHours > c.DailyDriveHours {
		return &ValidationError{Field: "continuous_drive_hours", Reason: "must not exceed daily_drive_hours"}
	}

	return nil
}

// CheckCaps additionally rejects counters that are already above their rule caps.
// Client-reported counters are bounded this way; replayed counters are not.
func (c HOSCounters) CheckCaps(r RuleSet) error {
	if err := c.Check(); err != nil {
		return err
	}

	caps := []struct {
		name string
		v    float64
		cap  float64
	}{
		{"cycle_hours_used", c.CycleHoursUsed, r.CycleLimit.Hours()},
		{"daily_drive_hours", c.DailyDriveHours, r.DailyDriveLimit.Hours()},
		{"daily_duty_hours", c.DailyDutyHours, r.DutyWindow.Hours()},
	}
	for _, f := range caps {
		if f.v > f.cap {
			return &ValidationError{Field: f.name, Reason: fmt.Sprintf("must not exceed %g", f.cap)}
		}
	}

	return nil
}
