package handlers

import (
	"eld-hos-service/internal/adapters/export"
	"eld-hos-service/internal/api/dto"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/services"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"
)

const defaultViolationDays = 7

type DriverHandler struct {
	Service *services.HOSService
	Metrics *metrics.Collector
}

// driver resolves the path id and enforces that drivers only reach their own records.
func (h *DriverHandler) driver(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, ok := driverID(w, r)
	if !ok {
		return 0, false
	}
	if !auth.CanAccessDriver(r.Context(), id) {
		writeError(w, r, http.StatusForbidden, "forbidden")
		return 0, false
	}
	return id, true
}

func (h *DriverHandler) HOSStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	st, err := h.Service.Status(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "hos status", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromHOSStatus(st))
}

func (h *DriverHandler) ChangeDutyStatus(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodPost) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	var req dto.ChangeDutyStatusRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	entry, err := h.Service.ChangeDutyStatus(r.Context(), services.ChangeDutyStatusRequest{
		DriverID: id,
		Status:   domain.DutyStatus(strings.ToUpper(strings.TrimSpace(req.NewStatus))),
		At:       req.At,
		Location: req.Location,
		Odometer: req.OdometerReading,
		Remarks:  req.Remarks,
	})
	if err != nil {
		writeServiceError(w, r, h.Metrics, "change duty status", err)
		return
	}

	h.Metrics.RecordStatusChange(entry.Status)
	writeJSON(w, r, http.StatusCreated, dto.FromEntry(entry, h.Service.Now()))
}

// DutyEntries lists raw history. from/to are RFC3339 and default to the last 24 hours.
func (h *DriverHandler) DutyEntries(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	now := h.Service.Now()
	to := now
	from := now.Add(-24 * time.Hour)

	q := r.URL.Query()
	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeFieldError(w, r, "from", "from must be an RFC3339 timestamp")
			return
		}
		from = t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			writeFieldError(w, r, "to", "to must be an RFC3339 timestamp")
			return
		}
		to = t
	}

	entries, err := h.Service.ListEntries(r.Context(), id, from, to)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "list duty entries", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ListDutyEntriesResponse{
		DriverID: id,
		From:     from,
		To:       to,
		Entries:  dto.FromEntries(entries, now),
	})
}

func (h *DriverHandler) Violations(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	days := defaultViolationDays
	if v := strings.TrimSpace(r.URL.Query().Get("days")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			writeFieldError(w, r, "days", "days must be an integer")
			return
		}
		days = n
	}

	vs, err := h.Service.Violations(r.Context(), id, days)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "violations", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.ViolationsResponse{
		DriverID:   id,
		Days:       days,
		Violations: dto.FromViolations(vs),
	})
}

func (h *DriverHandler) DailyLog(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	sheet, err := h.Service.DailyLog(r.Context(), id, r.PathValue("date"))
	if err != nil {
		writeServiceError(w, r, h.Metrics, "daily log", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.FromDailyLog(sheet, h.Service.Now()))
}

// Printable renders the daily log as a PDF (default) or XLSX download.
func (h *DriverHandler) Printable(w http.ResponseWriter, r *http.Request) {
	if !allowMethod(w, r, http.MethodGet) {
		return
	}
	id, ok := h.driver(w, r)
	if !ok {
		return
	}

	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "pdf"
	}
	if format != "pdf" && format != "xlsx" {
		writeFieldError(w, r, "format", "format must be pdf or xlsx")
		return
	}

	date := r.PathValue("date")
	sheet, err := h.Service.DailyLog(r.Context(), id, date)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "printable log", err)
		return
	}
	driver, err := h.Service.Drivers.GetDriver(r.Context(), id)
	if err != nil {
		writeServiceError(w, r, h.Metrics, "printable log", err)
		return
	}

	var (
		body        []byte
		contentType string
	)
	now := h.Service.Now()
	switch format {
	case "xlsx":
		body, err = export.BuildDailyLogXLSX(sheet, driver, now)
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		body, err = export.BuildDailyLogPDF(sheet, driver, now)
		contentType = "application/pdf"
	}
	if err != nil {
		writeServiceError(w, r, h.Metrics, "printable log", err)
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"daily-log-%d-%s.%s\"", id, date, format))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		log.Printf("printable log write failed: driver_id=%d err=%v", id, err)
	}
}
