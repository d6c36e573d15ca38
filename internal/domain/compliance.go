package domain

import "time"

type ViolationKind string

const (
	DailyDriveLimitExceeded ViolationKind = "DAILY_DRIVE_LIMIT_EXCEEDED"
	DailyDutyWindowExceeded ViolationKind = "DAILY_DUTY_WINDOW_EXCEEDED"
	CycleLimitExceeded      ViolationKind = "CYCLE_LIMIT_EXCEEDED"
	MissingRequiredBreak    ViolationKind = "MISSING_REQUIRED_BREAK"
)

type Severity string

const (
	SeverityLow      Severity = "LOW"
	SeverityMedium   Severity = "MEDIUM"
	SeverityHigh     Severity = "HIGH"
	SeverityCritical Severity = "CRITICAL"
)

// Severity returns the fixed severity for each violation kind.
func (k ViolationKind) Severity() Severity {
	switch k {
	case CycleLimitExceeded:
		return SeverityCritical
	case DailyDriveLimitExceeded, DailyDutyWindowExceeded:
		return SeverityHigh
	case MissingRequiredBreak:
		return SeverityMedium
	}
	return SeverityLow
}

type Violation struct {
	Kind       ViolationKind
	DetectedAt time.Time
	Detail     string
	Severity   Severity
}

// ComplianceResult is the immutable outcome of one evaluation.
type ComplianceResult struct {
	CanDrive             bool
	AvailableDriveHours  float64
	AvailableDutyHours   float64
	RemainingCycleHours  float64
	DriveHoursUntilBreak float64
	NeedsRestart         bool
	Violations           []Violation
	Reason               string
}

// Has reports whether the result contains a violation of kind k.
func (r ComplianceResult) Has(k ViolationKind) bool {
	for _, v := range r.Violations {
		if v.Kind == k {
			return true
		}
	}
	return false
}
