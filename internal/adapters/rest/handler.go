// Package rest exposes the surveillance operations over HTTP with JSON
// bodies. Errors map to status codes: validation 400, missing records 404,
// illegal alert transitions 409, anything else 500.
package rest

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"jalsuraksha/internal/adapters/exports"
	"jalsuraksha/internal/core"
	"jalsuraksha/pkg/domain"
)

// Handler routes API requests to the service and the export worker.
type Handler struct {
	Service *core.Service
	Exports *exports.Worker
}

// NewHandler constructs the API handler. The export worker is optional.
func NewHandler(svc *core.Service, worker *exports.Worker) *Handler {
	return &Handler{Service: svc, Exports: worker}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimSuffix(r.URL.Path, "/")
	switch {
	case path == "/api/phcs" || strings.HasPrefix(path, "/api/phcs/"):
		h.handlePHCs(w, r, strings.TrimPrefix(path, "/api/phcs"))
	case path == "/api/disease-reports" || strings.HasPrefix(path, "/api/disease-reports/"):
		h.handleDiseaseReports(w, r, strings.TrimPrefix(path, "/api/disease-reports"))
	case path == "/api/water-quality-tests" || strings.HasPrefix(path, "/api/water-quality-tests/"):
		h.handleWaterTests(w, r, strings.TrimPrefix(path, "/api/water-quality-tests"))
	case path == "/api/alerts" || strings.HasPrefix(path, "/api/alerts/"):
		h.handleAlerts(w, r, strings.TrimPrefix(path, "/api/alerts"))
	case path == "/api/users" || strings.HasPrefix(path, "/api/users/"):
		h.handleUsers(w, r, strings.TrimPrefix(path, "/api/users"))
	case path == "/api/dashboard/summary":
		h.handleDashboard(w, r)
	case path == "/api/exports" || strings.HasPrefix(path, "/api/exports/"):
		h.handleExports(w, r, strings.TrimPrefix(path, "/api/exports"))
	default:
		http.NotFound(w, r)
	}
}

func (h *Handler) handlePHCs(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			query := r.URL.Query()
			var (
				phcs []domain.PHC
				err  error
			)
			switch {
			case query.Get("state") != "":
				phcs, err = h.Service.ListPHCsByState(ctx, query.Get("state"))
			case query.Get("district") != "":
				phcs, err = h.Service.ListPHCsByDistrict(ctx, query.Get("district"))
			default:
				phcs, err = h.Service.ListPHCs(ctx)
			}
			respond(w, http.StatusOK, phcs, err)
		case http.MethodPost:
			var in domain.PHCInput
			if !decode(w, r, &in) {
				return
			}
			phc, err := h.Service.CreatePHC(ctx, in)
			respond(w, http.StatusCreated, phc, err)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := strings.TrimPrefix(rest, "/")
	switch r.Method {
	case http.MethodGet:
		phc, err := h.Service.GetPHC(ctx, id)
		respond(w, http.StatusOK, phc, err)
	case http.MethodPatch:
		var patch domain.PHCPatch
		if !decode(w, r, &patch) {
			return
		}
		phc, err := h.Service.UpdatePHC(ctx, id, patch)
		respond(w, http.StatusOK, phc, err)
	case http.MethodDelete:
		respondDelete(w, h.Service.DeletePHC(ctx, id))
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleDiseaseReports(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			query := r.URL.Query()
			var (
				reports []domain.DiseaseReport
				err     error
			)
			switch {
			case query.Get("phcId") != "":
				reports, err = h.Service.ListDiseaseReportsByPHC(ctx, query.Get("phcId"))
			case query.Get("startDate") != "" || query.Get("endDate") != "":
				var start, end time.Time
				start, end, err = parseDateRange(query.Get("startDate"), query.Get("endDate"))
				if err == nil {
					reports, err = h.Service.ListDiseaseReportsByDateRange(ctx, start, end)
				}
			case query.Get("days") != "":
				var days int
				days, err = parseDays(query.Get("days"))
				if err == nil {
					reports, err = h.Service.ListRecentDiseaseReports(ctx, days)
				}
			default:
				reports, err = h.Service.ListDiseaseReports(ctx)
			}
			respond(w, http.StatusOK, reports, err)
		case http.MethodPost:
			var in domain.DiseaseReportInput
			if !decode(w, r, &in) {
				return
			}
			report, err := h.Service.CreateDiseaseReport(ctx, in)
			respond(w, http.StatusCreated, report, err)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := strings.TrimPrefix(rest, "/")
	switch r.Method {
	case http.MethodGet:
		report, err := h.Service.GetDiseaseReport(ctx, id)
		respond(w, http.StatusOK, report, err)
	case http.MethodPatch:
		var patch domain.DiseaseReportPatch
		if !decode(w, r, &patch) {
			return
		}
		report, err := h.Service.UpdateDiseaseReport(ctx, id, patch)
		respond(w, http.StatusOK, report, err)
	case http.MethodDelete:
		respondDelete(w, h.Service.DeleteDiseaseReport(ctx, id))
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleWaterTests(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			query := r.URL.Query()
			var (
				tests []domain.WaterQualityTest
				err   error
			)
			switch {
			case query.Get("phcId") != "":
				tests, err = h.Service.ListWaterQualityTestsByPHC(ctx, query.Get("phcId"))
			case query.Get("startDate") != "" || query.Get("endDate") != "":
				var start, end time.Time
				start, end, err = parseDateRange(query.Get("startDate"), query.Get("endDate"))
				if err == nil {
					tests, err = h.Service.ListWaterQualityTestsByDateRange(ctx, start, end)
				}
			case query.Get("days") != "":
				var days int
				days, err = parseDays(query.Get("days"))
				if err == nil {
					tests, err = h.Service.ListRecentWaterQualityTests(ctx, days)
				}
			default:
				tests, err = h.Service.ListWaterQualityTests(ctx)
			}
			respond(w, http.StatusOK, tests, err)
		case http.MethodPost:
			var in domain.WaterQualityTestInput
			if !decode(w, r, &in) {
				return
			}
			test, err := h.Service.CreateWaterQualityTest(ctx, in)
			respond(w, http.StatusCreated, test, err)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := strings.TrimPrefix(rest, "/")
	switch r.Method {
	case http.MethodGet:
		test, err := h.Service.GetWaterQualityTest(ctx, id)
		respond(w, http.StatusOK, test, err)
	case http.MethodPatch:
		var patch domain.WaterQualityTestPatch
		if !decode(w, r, &patch) {
			return
		}
		test, err := h.Service.UpdateWaterQualityTest(ctx, id, patch)
		respond(w, http.StatusOK, test, err)
	case http.MethodDelete:
		respondDelete(w, h.Service.DeleteWaterQualityTest(ctx, id))
	default:
		methodNotAllowed(w)
	}
}

type actorRequest struct {
	VerifiedBy string `json:"verifiedBy"`
	ResolvedBy string `json:"resolvedBy"`
}

func (h *Handler) handleAlerts(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			query := r.URL.Query()
			var (
				alerts []domain.Alert
				err    error
			)
			switch {
			case query.Get("phcId") != "":
				alerts, err = h.Service.ListAlertsByPHC(ctx, query.Get("phcId"))
			case query.Get("status") != "":
				alerts, err = h.Service.ListAlertsByStatus(ctx, domain.AlertStatus(query.Get("status")))
			case query.Get("severity") != "":
				alerts, err = h.Service.ListAlertsBySeverity(ctx, domain.AlertSeverity(query.Get("severity")))
			case query.Get("days") != "":
				var days int
				days, err = parseDays(query.Get("days"))
				if err == nil {
					alerts, err = h.Service.ListRecentAlerts(ctx, days)
				}
			default:
				alerts, err = h.Service.ListAlerts(ctx)
			}
			respond(w, http.StatusOK, alerts, err)
		case http.MethodPost:
			var in domain.AlertInput
			if !decode(w, r, &in) {
				return
			}
			alert, err := h.Service.CreateAlert(ctx, in)
			respond(w, http.StatusCreated, alert, err)
		default:
			methodNotAllowed(w)
		}
		return
	}

	rest = strings.TrimPrefix(rest, "/")
	if rest == "active" {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		alerts, err := h.Service.ListActiveAlerts(ctx)
		respond(w, http.StatusOK, alerts, err)
		return
	}

	if id, ok := strings.CutSuffix(rest, "/verify"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req actorRequest
		if !decode(w, r, &req) {
			return
		}
		alert, err := h.Service.VerifyAlert(ctx, id, req.VerifiedBy)
		respond(w, http.StatusOK, alert, err)
		return
	}
	if id, ok := strings.CutSuffix(rest, "/resolve"); ok {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var req actorRequest
		if !decode(w, r, &req) {
			return
		}
		alert, err := h.Service.ResolveAlert(ctx, id, req.ResolvedBy)
		respond(w, http.StatusOK, alert, err)
		return
	}

	switch r.Method {
	case http.MethodGet:
		alert, err := h.Service.GetAlert(ctx, rest)
		respond(w, http.StatusOK, alert, err)
	case http.MethodPatch:
		var patch domain.AlertPatch
		if !decode(w, r, &patch) {
			return
		}
		alert, err := h.Service.UpdateAlert(ctx, rest, patch)
		respond(w, http.StatusOK, alert, err)
	case http.MethodDelete:
		respondDelete(w, h.Service.DeleteAlert(ctx, rest))
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleUsers(w http.ResponseWriter, r *http.Request, rest string) {
	ctx := r.Context()
	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			if email := r.URL.Query().Get("email"); email != "" {
				user, err := h.Service.GetUserByEmail(ctx, email)
				respond(w, http.StatusOK, user, err)
				return
			}
			users, err := h.Service.ListUsers(ctx)
			respond(w, http.StatusOK, users, err)
		case http.MethodPost:
			var in domain.UserInput
			if !decode(w, r, &in) {
				return
			}
			user, err := h.Service.CreateUser(ctx, in)
			respond(w, http.StatusCreated, user, err)
		default:
			methodNotAllowed(w)
		}
		return
	}

	id := strings.TrimPrefix(rest, "/")
	switch r.Method {
	case http.MethodGet:
		user, err := h.Service.GetUser(ctx, id)
		respond(w, http.StatusOK, user, err)
	case http.MethodPatch:
		var patch domain.UserPatch
		if !decode(w, r, &patch) {
			return
		}
		user, err := h.Service.UpdateUser(ctx, id, patch)
		respond(w, http.StatusOK, user, err)
	case http.MethodDelete:
		respondDelete(w, h.Service.DeleteUser(ctx, id))
	default:
		methodNotAllowed(w)
	}
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	summary, err := h.Service.DashboardSummary(r.Context())
	respond(w, http.StatusOK, summary, err)
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, rest string) {
	if h.Exports == nil {
		http.NotFound(w, r)
		return
	}
	if rest == "" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		var input exports.ExportInput
		if !decode(w, r, &input) {
			return
		}
		record, err := h.Exports.Enqueue(r.Context(), input)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"error": err.Error()})
			return
		}
		writeJSON(w, http.StatusAccepted, record)
		return
	}

	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}
	id := strings.TrimPrefix(rest, "/")
	record, ok := h.Exports.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": "export not found"})
		return
	}
	writeJSON(w, http.StatusOK, record)
}

// respond writes the operation result or maps its error to a status code.
func respond[T any](w http.ResponseWriter, status int, value T, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, status, value)
}

func respondDelete(w http.ResponseWriter, err error) {
	if err != nil {
		writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func decode(w http.ResponseWriter, r *http.Request, into any) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]any{"error": "invalid request payload"})
		return false
	}
	return true
}

func writeError(w http.ResponseWriter, err error) {
	var verr domain.ValidationErrors
	if errors.As(err, &verr) {
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":   "validation failed",
			"details": verr.Fields,
		})
		return
	}
	var nf domain.NotFoundError
	if errors.As(err, &nf) {
		writeJSON(w, http.StatusNotFound, map[string]any{"error": nf.Error()})
		return
	}
	var lerr domain.LifecycleError
	if errors.As(err, &lerr) {
		writeJSON(w, http.StatusConflict, map[string]any{"error": lerr.Error()})
		return
	}
	writeJSON(w, http.StatusInternalServerError, map[string]any{"error": "internal error"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func parseDays(raw string) (int, error) {
	days, err := strconv.Atoi(raw)
	if err != nil || days < 1 {
		return 0, domain.ValidationErrors{Fields: []domain.FieldError{
			{Field: "days", Message: "must be a positive number"},
		}}
	}
	return days, nil
}

// parseDateRange accepts RFC 3339 timestamps or plain dates. A date-only end
// bound covers the whole day.
func parseDateRange(startRaw, endRaw string) (time.Time, time.Time, error) {
	var fields []domain.FieldError
	start, _, err := parseDate(startRaw)
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "start_date", Message: "invalid date"})
	}
	end, dateOnly, err := parseDate(endRaw)
	if err != nil {
		fields = append(fields, domain.FieldError{Field: "end_date", Message: "invalid date"})
	}
	if len(fields) > 0 {
		return time.Time{}, time.Time{}, domain.ValidationErrors{Fields: fields}
	}
	if dateOnly {
		end = end.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return start, end, nil
}

func parseDate(raw string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, false, nil
	}
	t, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]any{"error": "method not allowed"})
}
