package handlers

import (
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/services"
	"net/http"

	"github.com/zoobzio/clockz"
)

type ComplianceHandler struct {
	Rules   domain.RuleSet
	Clock   clockz.Clock
	Metrics *metrics.Collector
}

// Check evaluates client-reported counters. Without continuous_drive_hours the
// break clock starts at zero, as for /trips/check/.
func (h *ComplianceHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.ComplianceCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	required := []struct {
		name string
		v    *float64
	}{
		{"current_cycle_hours", req.CurrentCycleHours},
		{"daily_drive_hours", req.DailyDriveHours},
		{"daily_duty_hours", req.DailyDutyHours},
	}
	for _, f := range required {
		if f.v == nil {
			h.Metrics.RecordInvalidCheck()
			writeFieldError(w, r, f.name, f.name+" is required")
			return
		}
	}

	counters := domain.HOSCounters{
		CycleHoursUsed:  *req.CurrentCycleHours,
		DailyDriveHours: *req.DailyDriveHours,
		DailyDutyHours:  *req.DailyDutyHours,
	}
	if req.ContinuousDriveHours != nil {
		counters.ContinuousDriveHours = *req.ContinuousDriveHours
	}

	clock := h.Clock
	if clock == nil {
		clock = clockz.RealClock
	}

	res, err := services.Evaluate(services.EvaluateInput{
		Counters:           counters,
		ProposedDriveHours: req.ProposedDriveHours,
		At:                 clock.Now().UTC(),
	}, h.Rules)
	if err != nil {
		h.Metrics.RecordInvalidCheck()
		writeServiceError(w, r, h.Metrics, "compliance check", err)
		return
	}

	h.Metrics.RecordCheck(res)
	writeJSON(w, r, http.StatusOK, dto.FromCompliance(res))
}

// RuleSet exposes the active rule set.
func (h *ComplianceHandler) RuleSet(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	writeJSON(w, r, http.StatusOK, dto.FromRuleSet(h.Rules))
}

func DutyStatusOptions(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	out := make([]dto.DutyStatusOption, 0, len(domain.AllDutyStatuses))
	for _, s := range domain.AllDutyStatuses {
		out = append(out, dto.DutyStatusOption{Value: string(s), Label: s.Label()})
	}
	writeJSON(w, r, http.StatusOK, out)
}
