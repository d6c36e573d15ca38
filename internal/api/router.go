package api

import (
	"eld-hos-service/internal/api/handlers"
	"eld-hos-service/internal/auth"
	"eld-hos-service/internal/domain"
	"eld-hos-service/internal/platform/metrics"
	"eld-hos-service/internal/services"
	"net/http"

	"github.com/zoobzio/clockz"
)

// Deps are the collaborators the HTTP layer needs. Metrics and Auth may be nil.
type Deps struct {
	HOS     *services.HOSService
	Planner *services.TripPlanner
	Rules   domain.RuleSet
	Clock   clockz.Clock
	Metrics *metrics.Collector
	Auth    *auth.Middleware
}

// NewRouter wires HTTP handlers with their dependencies and returns an http.Handler.
// This is the API composition root (handlers stay unaware of concrete adapters).
func NewRouter(d Deps) http.Handler {
	mux := http.NewServeMux()

	compliance := &handlers.ComplianceHandler{Rules: d.Rules, Clock: d.Clock, Metrics: d.Metrics}
	drivers := &handlers.DriverHandler{Service: d.HOS, Metrics: d.Metrics}
	trips := &handlers.TripHandler{Planner: d.Planner, Clock: d.Clock, Metrics: d.Metrics}

	mux.HandleFunc("/health", handlers.Health)
	mux.Handle("/metrics", d.Metrics.Handler())

	mux.HandleFunc("/eld/compliance/check/{$}", compliance.Check)
	mux.HandleFunc("/hos-rules/{$}", compliance.RuleSet)
	mux.HandleFunc("/duty-status-options/{$}", handlers.DutyStatusOptions)

	mux.HandleFunc("/drivers/{$}", drivers.ListDrivers)
	mux.HandleFunc("/drivers/{id}/{$}", drivers.GetDriver)
	mux.HandleFunc("/drivers/{id}/hos_status/{$}", drivers.HOSStatus)
	mux.HandleFunc("/drivers/{id}/change_duty_status/{$}", drivers.ChangeDutyStatus)
	mux.HandleFunc("/drivers/{id}/duty_entries/{$}", drivers.DutyEntries)
	mux.HandleFunc("/drivers/{id}/violations/{$}", drivers.Violations)
	mux.HandleFunc("/drivers/{id}/logs/{date}/{$}", drivers.DailyLog)
	mux.HandleFunc("/drivers/{id}/logs/{date}/printable/{$}", drivers.Printable)
	mux.HandleFunc("/drivers/{id}/certify_logs/{$}", drivers.CertifyLogs)
	mux.HandleFunc("/eld/logs/{log_id}/certify/{$}", drivers.CertifyLog)
	mux.HandleFunc("/eld/logs/{log_id}/uncertify/{$}", drivers.UncertifyLog)
	mux.HandleFunc("/compliance-report/{$}", drivers.ComplianceReport)

	mux.HandleFunc("/trips/check/{$}", trips.Check)

	return requestIDMiddleware(loggingMiddleware(d.Metrics, d.Auth.Wrap(mux)))
}
