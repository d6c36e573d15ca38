package handlers

import (
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/services"
	"net/http"
	"strconv"
	"strings"
)

const defaultReportDays = 7

// ListDrivers accepts is_active=true|false and duty_status=<code>. A driver
// caller only sees their own record.
func (h *DriverHandler) ListDrivers(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}

	var f services.DriverFilter
	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("is_active")); v != "" {
		active, err := strconv.ParseBool(v)
		if err != nil {
			writeFieldError(w, r, "is_active", "is_active must be true or false")
			return
		}
		f.Active = &active
	}
	if v := strings.TrimSpace(q.Get("duty_status")); v != "" {
		f.Status = domain.DutyStatus(strings.ToUpper(v))
	}

	list, err := h.Service.ListDrivers(r.Context(), f)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "list drivers", err)
		return
	}

	if auth.RoleFromContext(r.Context()) == auth.RoleDriver {
		own := list[:0]
		for _, d := range list {
			if auth.CanAccessDriver(r.Context(), d.Driver.DriverID) {
				own = append(own, d)
			}
		}
		list = own
	}

	writeJSON(w, r, http.StatusOK, dto.FromDriverSummaries(list))
}

func (h *DriverHandler) GetDriver(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	sum, err := h.Service.Driver(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "get driver", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromDriverSummary(*sum))
}

// ComplianceReport covers the active fleet, so drivers may not read it.
func (h *DriverHandler) ComplianceReport(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	if auth.RoleFromContext(r.Context()) == auth.RoleDriver {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return
	}

	days := defaultReportDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeFieldError(w, r, "days", "days must be an integer")
			return
		}
		days = n
	}

	rep, err := h.Service.ComplianceReport(r.Context(), days)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "compliance report", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromComplianceReport(rep))
}
