package dto

import (
	"eld-hos-service/internal/domain"
	"time"
)

// ComplianceCheckRequest uses pointers so a missing counter is reported, not read as zero.
type ComplianceCheckRequest struct {
	CurrentCycleHours    *float64 `json:"current_cycle_hours"`
	DailyDriveHours      *float64 `json:"daily_drive_hours"`
	DailyDutyHours       *float64 `json:"daily_duty_hours"`
	ContinuousDriveHours *float64 `json:"continuous_drive_hours"`
	ProposedDriveHours   *float64 `json:"proposed_drive_hours"`
}

type ViolationResponse struct {
	ViolationType string    `json:"violation_type"`
	Severity      string    `json:"severity"`
	Description   string    `json:"description"`
	ViolationTime time.Time `json:"violation_time"`
}

type ComplianceResponse struct {
	CanDrive             bool                `json:"can_drive"`
	AvailableDriveHours  float64             `json:"available_drive_hours"`
	AvailableDutyHours   float64             `json:"available_duty_hours"`
	RemainingCycleHours  float64             `json:"remaining_cycle_hours"`
	DriveHoursUntilBreak float64             `json:"drive_hours_until_break"`
	NeedsRestart         bool                `json:"needs_restart"`
	Reason               string              `json:"reason,omitempty"`
	Violations           []ViolationResponse `json:"violations"`
}

func FromViolations(vs []domain.Violation) []ViolationResponse {
	out := make([]ViolationResponse, 0, len(vs))
	for _, v := range vs {
		out = append(out, ViolationResponse{
			ViolationType: string(v.Kind),
			Severity:      string(v.Severity),
			Description:   v.Detail,
			ViolationTime: v.DetectedAt,
		})
	}
	return out
}

func FromCompliance(r domain.ComplianceResult) ComplianceResponse {
	return ComplianceResponse{
		CanDrive:             r.CanDrive,
		AvailableDriveHours:  r.AvailableDriveHours,
		AvailableDutyHours:   r.AvailableDutyHours,
		RemainingCycleHours:  r.RemainingCycleHours,
		DriveHoursUntilBreak: r.DriveHoursUntilBreak,
		NeedsRestart:         r.NeedsRestart,
		Reason:               r.Reason,
		Violations:           FromViolations(r.Violations),
	}
}

type RuleSetResponse struct {
	Name                   string  `json:"name"`
	CycleLimitHours        float64 `json:"cycle_limit_hours"`
	CycleDays              int     `json:"cycle_days"`
	DailyDriveLimitHours   float64 `json:"daily_drive_limit_hours"`
	DutyWindowHours        float64 `json:"duty_window_hours"`
	BreakAfterDrivingHours float64 `json:"break_after_driving_hours"`
	MinBreakMinutes        float64 `json:"min_break_minutes"`
	DailyRestHours         float64 `json:"daily_rest_hours"`
	RestartHours           float64 `json:"restart_hours"`
}

func FromRuleSet(r domain.RuleSet) RuleSetResponse {
	return RuleSetResponse{
		Name:                   r.Name,
		CycleLimitHours:        r.CycleLimit.Hours(),
		CycleDays:              r.CycleDays,
		DailyDriveLimitHours:   r.DailyDriveLimit.Hours(),
		DutyWindowHours:        r.DutyWindow.Hours(),
		BreakAfterDrivingHours: r.BreakAfterDriving.Hours(),
		MinBreakMinutes:        r.MinBreak.Minutes(),
		DailyRestHours:         r.DailyRest.Hours(),
		RestartHours:           r.Restart.Hours(),
	}
}

type DutyStatusOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
