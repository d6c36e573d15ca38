package handlers

import (
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/services"
	"net/http"

	"github.com/zoobzio/clockz"
)

type TripHandler struct {
	Planner *services.TripPlanner
	Clock   clockz.Clock
	Metrics *metrics.Collector
}

// Check plans the trip and returns the HOS-legal schedule. Nothing is stored.
func (h *TripHandler) Check(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}

	var req dto.TripCheckRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.CurrentCycleHours == nil {
		writeFieldError(w, r, "current_cycle_hours", "current_cycle_hours is required")
		return
	}

	clock := h.Clock
	if clock == nil {
		clock = clockz.RealClock
	}
	depart := clock.Now().UTC()
	if req.DepartAt != nil {
		depart = *req.DepartAt
	}

	plan, err := h.Planner.Plan(r.Context(), services.TripRequest{
		CurrentLocation: req.CurrentLocation,
		PickupLocation:  req.PickupLocation,
		DropoffLocation: req.DropoffLocation,
		Counters: domain.HOSCounters{
			CycleHoursUsed:       *req.CurrentCycleHours,
			DailyDriveHours:      req.CurrentDailyDriveHours,
			DailyDutyHours:       req.CurrentDailyDutyHours,
			ContinuousDriveHours: req.ContinuousDriveHours,
		},
		DepartAt: depart,
	})
	if err != nil {
		writeServiceError(w, r, h.Metrics, "trip check", err)
		return
	}

	h.Metrics.RecordCheck(plan.Initial)
	writeJSON(w, r, http.StatusOK, dto.FromTripPlan(plan))
}
