package handlers

import (
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/domain"
	"net/http"
)

// CertifyLogs takes an optional body; without one today's log is certified
// electronically.
func (h *DriverHandler) CertifyLogs(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	var req dto.CertifyLogsRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	certs, err := h.Service.CertifyLogs(r.Context(), id, req.LogDates, req.CertificationMethod)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "certify logs", err)
		return
	}

	h.Metrics.RecordCertification("certify", len(certs))
	writeJSON(w, r, http.StatusOK, dto.FromCertifications(id, certs))
}

// logID resolves a "<driver_id>-<date>" path id under the same access rule as driver paths.
func (h *DriverHandler) logID(w http.ResponseWriter, r *http.Request) (int, string, bool) {
	id, date, err := domain.ParseLogID(r.PathValue("log_id"))
	if err != nil {
		writeServiceError(w, r, h.Metrics, "log id", err)
		return 0, "", false
	}
	if !auth.CanAccessDriver(r.Context(), id) {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return 0, "", false
	}
	return id, date, true
}

func (h *DriverHandler) CertifyLog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	id, date, ok := h.logID(w, r)
	if !ok {
		return
	}

	var req dto.CertifyLogsRequest
	if r.ContentLength != 0 && !decodeJSON(w, r, &req) {
		return
	}

	certs, err := h.Service.CertifyLogs(r.Context(), id, []string{date}, req.CertificationMethod)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "certify log", err)
		return
	}

	h.Metrics.RecordCertification("certify", len(certs))
	writeJSON(w, r, http.StatusOK, dto.FromCertification(certs[0]))
}

func (h *DriverHandler) UncertifyLog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	id, date, ok := h.logID(w, r)
	if !ok {
		return
	}

	if err := h.Service.UncertifyLog(r.Context(), id, date); err != nil {
		writeServiceError(w, r, h.Metrics, "uncertify log", err)
		return
	}

	h.Metrics.RecordCertification("uncertify", 1)
	writeJSON(w, r, http.StatusOK, dto.UncertifyLogResponse{LogID: domain.LogID(id, date), IsCertified: false})
}
