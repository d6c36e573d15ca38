package services

import (
	"eld-hos-service/internal/domain"
	"fmt"
	"math"
	"strings"
	"time"
)

// defaultExtensionHours is the extension tested when no proposed drive is given:
// a driver "can drive" only if one more minute would be legal.
const defaultExtensionHours = 1.0 / 60

// EvaluateInput is a compliance question: may a driver with these counters drive
// ProposedDriveHours more (or at all, when nil)? At stamps any violations.
type EvaluateInput struct {
	Counters           domain.HOSCounters
	ProposedDriveHours *float64
	At                 time.Time
}

// Evaluate answers a compliance check for client-reported counters.
//
// Counters are validated before any rule runs, including the rule caps: a form
// cannot report more than the regulated maximum. Being out of hours is not an
// error; it is a result with CanDrive=false.
func Evaluate(in EvaluateInput, rules domain.RuleSet) (domain.ComplianceResult, error) {
	if err := in.Counters.CheckCaps(rules); err != nil {
		return domain.ComplianceResult{}, err
	}
	if err := checkProposal(in.ProposedDriveHours); err != nil {
		return domain.ComplianceResult{}, err
	}

	return evaluate(in, rules), nil
}

// EvaluateReplayed evaluates counters projected from duty history.
// Those may already be past a cap (the driver broke a rule), so only
// structural checks apply.
func EvaluateReplayed(in EvaluateInput, rules domain.RuleSet) (domain.ComplianceResult, error) {
	if err := in.Counters.Check(); err != nil {
		return domain.ComplianceResult{}, err
	}
	if err := checkProposal(in.ProposedDriveHours); err != nil {
		return domain.ComplianceResult{}, err
	}

	return evaluate(in, rules), nil
}

func checkProposal(p *float64) error {
	if p == nil {
		return nil
	}
	if math.IsNaN(*p) || math.IsInf(*p, 0) {
		return &domain.ValidationError{Field: "proposed_drive_hours", Reason: "must be a finite number"}
	}
	if *p < 0 {
		return &domain.ValidationError{Field: "proposed_drive_hours", Reason: "must not be negative"}
	}
	return nil
}

func evaluate(in EvaluateInput, rules domain.RuleSet) domain.ComplianceResult {
	c := in.Counters

	proposed := 0.0
	tested := defaultExtensionHours
	if in.ProposedDriveHours != nil {
		proposed = *in.ProposedDriveHours
		tested = proposed
	}

	driveCap := rules.DailyDriveLimit.Hours()
	dutyCap := rules.DutyWindow.Hours()
	cycleCap := rules.CycleLimit.Hours()
	breakCap := rules.BreakAfterDriving.Hours()

	checks := []struct {
		kind  domain.ViolationKind
		used  float64
		limit float64
		what  string
	}{
		{domain.DailyDriveLimitExceeded, c.DailyDriveHours, driveCap, "daily driving"},
		{domain.DailyDutyWindowExceeded, c.DailyDutyHours, dutyCap, "on-duty window"},
		{domain.CycleLimitExceeded, c.CycleHoursUsed, cycleCap, rules.Name + " cycle"},
		{domain.MissingRequiredBreak, c.ContinuousDriveHours, breakCap, "driving without a 30-minute break"},
	}

	var violations []domain.Violation
	for _, ch := range checks {
		if ch.used+tested <= ch.limit {
			continue
		}
		violations = append(violations, domain.Violation{
			Kind:       ch.kind,
			DetectedAt: in.At,
			Detail:     violationDetail(ch.what, ch.used, ch.limit, in.ProposedDriveHours),
			Severity:   ch.kind.Severity(),
		})
	}

	driveAfter := c.DailyDriveHours + proposed
	dutyAfter := c.DailyDutyHours + proposed
	cycleAfter := c.CycleHoursUsed + proposed

	// The binding constraint is the most restrictive of the three buckets.
	available := min(driveCap-driveAfter, dutyCap-dutyAfter, cycleCap-cycleAfter)

	res := domain.ComplianceResult{
		CanDrive:             len(violations) == 0,
		AvailableDriveHours:  floorZero(available),
		AvailableDutyHours:   floorZero(dutyCap - dutyAfter),
		RemainingCycleHours:  floorZero(cycleCap - cycleAfter),
		DriveHoursUntilBreak: floorZero(breakCap - (c.ContinuousDriveHours + proposed)),
		NeedsRestart:         c.CycleHoursUsed >= cycleCap,
		Violations:           violations,
	}

	for _, v := range violations {
		if v.Kind == domain.CycleLimitExceeded {
			res.NeedsRestart = true
		}
	}

	res.Reason = reason(res)
	return res
}

func violationDetail(what string, used, limit float64, proposed *float64) string {
	if proposed == nil {
		return fmt.Sprintf("%s limit reached: %.2fh of %gh used", what, used, limit)
	}
	return fmt.Sprintf("%s limit exceeded: %.2fh used + %.2fh proposed > %gh", what, used, *proposed, limit)
}

func reason(r domain.ComplianceResult) string {
	if r.CanDrive {
		return "Driver can legally drive"
	}

	parts := make([]string, 0, len(r.Violations)+1)
	for _, v := range r.Violations {
		parts = append(parts, v.Detail)
	}
	if r.NeedsRestart {
		parts = append(parts, "34-hour restart required")
	}
	return strings.Join(parts, "; ")
}

func floorZero(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
