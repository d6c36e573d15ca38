package dto

import (
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/services"
	"time"
)

type DriverResponse struct {
	DriverID             int        `json:"driver_id"`
	Name                 string     `json:"name"`
	HomeTerminalTimezone string     `json:"home_terminal_timezone"`
	Cycle                string     `json:"cycle"`
	IsActive             bool       `json:"is_active"`
	CurrentDutyStatus    string     `json:"current_duty_status,omitempty"`
	CurrentStatusSince   *time.Time `json:"current_status_since,omitempty"`
}

func FromDriverSummary(s services.DriverSummary) DriverResponse {
	tz := s.Driver.HomeTerminalTimezone
	if tz == "" {
		tz = "UTC"
	}
	out := DriverResponse{
		DriverID:             s.Driver.DriverID,
		Name:                 s.Driver.Name,
		HomeTerminalTimezone: tz,
		Cycle:                s.Driver.Cycle,
		IsActive:             s.Driver.IsActive,
	}
	if s.Current != nil {
		since := s.Current.Start
		out.CurrentDutyStatus = string(s.Current.Status)
		out.CurrentStatusSince = &since
	}
	return out
}

type ListDriversResponse struct {
	Count   int              `json:"count"`
	Drivers []DriverResponse `json:"drivers"`
}

func FromDriverSummaries(list []services.DriverSummary) ListDriversResponse {
	out := ListDriversResponse{Count: len(list), Drivers: make([]DriverResponse, 0, len(list))}
	for _, s := range list {
		out.Drivers = append(out.Drivers, FromDriverSummary(s))
	}
	return out
}

// CertifyLogsRequest certifies the listed days, or today when LogDates is empty.
type CertifyLogsRequest struct {
	LogDates            []string `json:"log_dates"`
	CertificationMethod string   `json:"certification_method"`
}

type CertificationResponse struct {
	LogID               string    `json:"log_id"`
	DriverID            int       `json:"driver_id"`
	LogDate             string    `json:"log_date"`
	CertifiedAt         time.Time `json:"certified_at"`
	CertificationMethod string    `json:"certification_method"`
}

func FromCertification(c domain.LogCertification) CertificationResponse {
	return CertificationResponse{
		LogID:               domain.LogID(c.DriverID, c.LogDate),
		DriverID:            c.DriverID,
		LogDate:             c.LogDate,
		CertifiedAt:         c.CertifiedAt,
		CertificationMethod: string(c.Method),
	}
}

type CertifyLogsResponse struct {
	DriverID       int                     `json:"driver_id"`
	CertifiedCount int                     `json:"certified_count"`
	Certifications []CertificationResponse `json:"certifications"`
}

func FromCertifications(driverID int, cs []domain.LogCertification) CertifyLogsResponse {
	out := CertifyLogsResponse{
		DriverID:       driverID,
		CertifiedCount: len(cs),
		Certifications: make([]CertificationResponse, 0, len(cs)),
	}
	for _, c := range cs {
		out.Certifications = append(out.Certifications, FromCertification(c))
	}
	return out
}

type UncertifyLogResponse struct {
	LogID       string `json:"log_id"`
	IsCertified bool   `json:"is_certified"`
}

type ReportPeriod struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	Days      int    `json:"days"`
}

type FleetOverview struct {
	TotalActiveDrivers int `json:"total_active_drivers"`
}

type HOSCompliance struct {
	CycleCompliant        int     `json:"cycle_compliant"`
	DailyDriveCompliant   int     `json:"daily_drive_compliant"`
	DailyDutyCompliant    int     `json:"daily_duty_compliant"`
	BreakCompliant        int     `json:"break_compliant"`
	OverallComplianceRate float64 `json:"overall_compliance_rate"`
}

type ViolationTotals struct {
	CycleViolations        int `json:"cycle_violations"`
	DailyDriveViolations   int `json:"daily_drive_violations"`
	DailyDutyViolations    int `json:"daily_duty_violations"`
	MissingBreakViolations int `json:"missing_break_violations"`
}

type CertificationStatus struct {
	CertifiedToday    int `json:"certified_today"`
	CertifiedThisWeek int `json:"certified_this_week"`
	NeverCertified    int `json:"never_certified"`
}

type DriverComplianceResponse struct {
	DriverID            int                 `json:"driver_id"`
	Name                string              `json:"name"`
	IsCompliant         bool                `json:"is_compliant"`
	InconsistentHistory bool                `json:"inconsistent_history,omitempty"`
	LastCertifiedLog    string              `json:"last_certified_log,omitempty"`
	Violations          []ViolationResponse `json:"violations"`
}

type ComplianceReportResponse struct {
	ReportPeriod          ReportPeriod               `json:"report_period"`
	FleetOverview         FleetOverview              `json:"fleet_overview"`
	HOSCompliance         HOSCompliance              `json:"hos_compliance"`
	Violations            ViolationTotals            `json:"violations"`
	CertificationStatus   CertificationStatus        `json:"certification_status"`
	InconsistentHistories int                        `json:"inconsistent_histories"`
	Drivers               []DriverComplianceResponse `json:"drivers"`
}

func FromComplianceReport(r *services.ComplianceReport) ComplianceReportResponse {
	out := ComplianceReportResponse{
		ReportPeriod: ReportPeriod{
			StartDate: r.From.Format(domain.LogDateLayout),
			EndDate:   r.To.Format(domain.LogDateLayout),
			Days:      r.Days,
		},
		FleetOverview: FleetOverview{TotalActiveDrivers: r.ActiveDrivers},
		HOSCompliance: HOSCompliance{
			CycleCompliant:        r.Compliant[domain.CycleLimitExceeded],
			DailyDriveCompliant:   r.Compliant[domain.DailyDriveLimitExceeded],
			DailyDutyCompliant:    r.Compliant[domain.DailyDutyWindowExceeded],
			BreakCompliant:        r.Compliant[domain.MissingRequiredBreak],
			OverallComplianceRate: r.OverallComplianceRate,
		},
		Violations: ViolationTotals{
			CycleViolations:        r.ViolationCounts[domain.CycleLimitExceeded],
			DailyDriveViolations:   r.ViolationCounts[domain.DailyDriveLimitExceeded],
			DailyDutyViolations:    r.ViolationCounts[domain.DailyDutyWindowExceeded],
			MissingBreakViolations: r.ViolationCounts[domain.MissingRequiredBreak],
		},
		CertificationStatus: CertificationStatus{
			CertifiedToday:    r.CertifiedToday,
			CertifiedThisWeek: r.CertifiedThisWeek,
			NeverCertified:    r.NeverCertified,
		},
		InconsistentHistories: r.InconsistentHistories,
		Drivers:               make([]DriverComplianceResponse, 0, len(r.Drivers)),
	}
	for _, d := range r.Drivers {
		out.Drivers = append(out.Drivers, DriverComplianceResponse{
			DriverID:            d.DriverID,
			Name:                d.Name,
			IsCompliant:         !d.Inconsistent && len(d.Violations) == 0,
			InconsistentHistory: d.Inconsistent,
			LastCertifiedLog:    d.LastCertified,
			Violations:          FromViolations(d.Violations),
		})
	}
	return out
}
