package dto

import (
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/services"
	"fmt"
	"strings"
	"time"
)

type DutyEntryResponse struct {
	ID                  string     `json:"id"`
	DutyStatus          string     `json:"duty_status"`
	StartTime           time.Time  `json:"start_time"`
	EndTime             *time.Time `json:"end_time,omitempty"`
	DurationMinutes     float64    `json:"duration_minutes"`
	LocationDescription string     `json:"location_description,omitempty"`
	OdometerReading     float64    `json:"odometer_reading"`
	Remarks             string     `json:"remarks,omitempty"`
}

// FromEntry measures an open entry up to now.
func FromEntry(e domain.DutyStatusEntry, now time.Time) DutyEntryResponse {
	return DutyEntryResponse{
		ID:                  e.ID,
		DutyStatus:          string(e.Status),
		StartTime:           e.Start,
		EndTime:             e.End,
		DurationMinutes:     e.Duration(now).Minutes(),
		LocationDescription: e.Location,
		OdometerReading:     e.Odometer,
		Remarks:             e.Remarks,
	}
}

func FromEntries(es []domain.DutyStatusEntry, now time.Time) []DutyEntryResponse {
	out := make([]DutyEntryResponse, 0, len(es))
	for _, e := range es {
		out = append(out, FromEntry(e, now))
	}
	return out
}

type ListDutyEntriesResponse struct {
	DriverID int                 `json:"driver_id"`
	From     time.Time           `json:"from"`
	To       time.Time           `json:"to"`
	Entries  []DutyEntryResponse `json:"duty_entries"`
}

// HOSStatusResponse flattens the compliance fields next to the replayed counters.
type HOSStatusResponse struct {
	DriverID               int        `json:"driver_id"`
	Name                   string     `json:"name"`
	Cycle                  string     `json:"cycle"`
	AsOf                   time.Time  `json:"as_of"`
	CurrentDutyStatus      string     `json:"current_duty_status,omitempty"`
	LastDutyChangeTime     *time.Time `json:"last_duty_change_time,omitempty"`
	LastDutyChangeLocation string     `json:"last_duty_change_location,omitempty"`
	CurrentCycleHours      float64    `json:"current_cycle_hours"`
	CurrentDailyDriveHours float64    `json:"current_daily_drive_hours"`
	CurrentDailyDutyHours  float64    `json:"current_daily_duty_hours"`
	ContinuousDriveHours   float64    `json:"continuous_drive_hours"`
	BreakSatisfied         bool       `json:"break_satisfied"`
	DutyWindowOpenedAt     *time.Time `json:"duty_window_opened_at,omitempty"`
	LastRestEndedAt        *time.Time `json:"last_rest_ended_at,omitempty"`
	LastRestartEndedAt     *time.Time `json:"last_restart_ended_at,omitempty"`
	ComplianceResponse
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}

func FromHOSStatus(st *services.DriverHOSStatus) HOSStatusResponse {
	c := st.Replay.Counters
	out := HOSStatusResponse{
		DriverID:               st.Driver.DriverID,
		Name:                   st.Driver.Name,
		Cycle:                  st.Rules.Name,
		AsOf:                   st.AsOf,
		CurrentCycleHours:      c.CycleHoursUsed,
		CurrentDailyDriveHours: c.DailyDriveHours,
		CurrentDailyDutyHours:  c.DailyDutyHours,
		ContinuousDriveHours:   c.ContinuousDriveHours,
		BreakSatisfied:         st.Replay.BreakSatisfied,
		DutyWindowOpenedAt:     optionalTime(st.Replay.WindowOpenedAt),
		LastRestEndedAt:        optionalTime(st.Replay.LastRestEndedAt),
		LastRestartEndedAt:     optionalTime(st.Replay.LastRestartEndedAt),
		ComplianceResponse:     FromCompliance(st.Compliance),
	}
	if st.Current != nil {
		start := st.Current.Start
		out.CurrentDutyStatus = string(st.Current.Status)
		out.LastDutyChangeTime = &start
		out.LastDutyChangeLocation = st.Current.Location
	}
	return out
}

type ChangeDutyStatusRequest struct {
	NewStatus       string     `json:"new_status"`
	Location        string     `json:"location"`
	OdometerReading *float64   `json:"odometer_reading"`
	Remarks         string     `json:"remarks"`
	At              *time.Time `json:"at"`
}

type ViolationsResponse struct {
	DriverID   int                 `json:"driver_id"`
	Days       int                 `json:"days"`
	Violations []ViolationResponse `json:"violations"`
}

type DailyLogResponse struct {
	ID                    string              `json:"id"`
	DriverID              int                 `json:"driver_id"`
	LogDate               string              `json:"log_date"`
	StartingOdometer      float64             `json:"starting_odometer"`
	EndingOdometer        float64             `json:"ending_odometer"`
	TotalMilesDriven      float64             `json:"total_miles_driven"`
	TotalDriveTime        float64             `json:"total_drive_time"`
	TotalOnDutyTime       float64             `json:"total_on_duty_time"`
	TotalOffDutyTime      float64             `json:"total_off_duty_time"`
	TotalSleeperBerthTime float64             `json:"total_sleeper_berth_time"`
	CycleHoursUsed        float64             `json:"cycle_hours_used"`
	IsCompliant           bool                `json:"is_compliant"`
	ViolationSummary      string              `json:"violation_summary,omitempty"`
	IsCertified           bool                `json:"is_certified"`
	CertifiedAt           *time.Time          `json:"certified_at,omitempty"`
	DutyEntries           []DutyEntryResponse `json:"duty_entries"`
	Violations            []ViolationResponse `json:"violations"`
}

// FromDailyLog reports on-duty time as the ON row only; driving is totalled separately.
func FromDailyLog(l *domain.DailyLog, now time.Time) DailyLogResponse {
	date := l.Date.Format(domain.LogDateLayout)
	out := DailyLogResponse{
		ID:                    domain.LogID(l.DriverID, date),
		DriverID:              l.DriverID,
		LogDate:               date,
		StartingOdometer:      l.StartOdometer,
		EndingOdometer:        l.EndOdometer,
		TotalMilesDriven:      l.MilesDriven,
		TotalDriveTime:        l.Totals[domain.Driving],
		TotalOnDutyTime:       l.Totals[domain.OnDutyNotDriving],
		TotalOffDutyTime:      l.Totals[domain.OffDuty],
		TotalSleeperBerthTime: l.Totals[domain.SleeperBerth],
		CycleHoursUsed:        l.CycleHoursUsed,
		IsCompliant:           l.IsCompliant,
		DutyEntries:           FromEntries(l.Entries, now),
		Violations:            FromViolations(l.Violations),
	}
	if len(l.Violations) > 0 {
		out.ViolationSummary = violationSummary(l.Violations)
	}
	if c := l.Certification; c != nil {
		at := c.CertifiedAt
		out.IsCertified = true
		out.CertifiedAt = &at
	}
	return out
}

func violationSummary(vs []domain.Violation) string {
	counts := make(map[domain.ViolationKind]int, len(vs))
	var order []domain.ViolationKind
	for _, v := range vs {
		if counts[v.Kind] == 0 {
			order = append(order, v.Kind)
		}
		counts[v.Kind]++
	}

	parts := make([]string, 0, len(order))
	for _, k := range order {
		if n := counts[k]; n > 1 {
			parts = append(parts, fmt.Sprintf("%s x%d", k, n))
			continue
		}
		parts = append(parts, string(k))
	}
	return strings.Join(parts, ", ")
}
