package handlers

import (
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/ports"
	"eld-hos-service/internal/services"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"
	"strconv"
)

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("encode failed: method=%s path=%s err=%v", r.Method, r.URL.Path, err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, msg string) {
	writeJSON(w, r, status, map[string]string{"error": msg})
}

func writeFieldError(w http.ResponseWriter, r *http.Request, field, msg string) {
	writeJSON(w, r, http.StatusBadRequest, map[string]string{"error": msg, "field": field})
}

// requestField maps evaluator field names to the request body names clients send.
var requestField = map[string]string{
	"cycle_hours_used": "current_cycle_hours",
}

// writeServiceError maps service failures to HTTP responses. Validation
// problems are the caller's fault; a broken duty history never is.
func writeServiceError(w http.ResponseWriter, r *http.Request, m *metrics.Collector, op string, err error) {
	var verr *domain.ValidationError
	var ierr *domain.InvariantError

	switch {
	case errors.As(err, &verr):
		field := verr.Field
		if f, ok := requestField[field]; ok {
			field = f
		}
		writeFieldError(w, r, field, verr.Error())
	case errors.Is(err, ports.ErrDriverNotFound):
		writeError(w, r, http.StatusNotFound, "driver not found")
	case errors.Is(err, ports.ErrLogNotCertified):
		writeError(w, r, http.StatusConflict, "daily log is not certified")
	case errors.Is(err, services.ErrCertificationDisabled):
		writeError(w, r, http.StatusNotImplemented, "log certification is not configured")
	case errors.Is(err, ports.ErrRouteNotFound):
		log.Printf("%s: %v", op, err)
		writeError(w, r, http.StatusUnprocessableEntity, "no route found between the given locations")
	case errors.As(err, &ierr):
		m.RecordReplayFailure()
		log.Printf("%s: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "duty history is inconsistent")
	default:
		log.Printf("%s failed: %v", op, err)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON reads exactly one JSON object with no unknown fields.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(r.Body)
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return false
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return false
	}
	return true
}

func allowMethod(w http.ResponseWriter, r *http.Request, method string) bool {
	if r.Method == method {
		return true
	}
	w.Header().Set("Allow", method)
	writeError(w, r, http.StatusMethodNotAllowed, "method not allowed")
	return false
}

func driverID(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id < 1 {
		writeError(w, r, http.StatusBadRequest, "driver id must be a positive integer")
		return 0, false
	}
	return id, true
}
