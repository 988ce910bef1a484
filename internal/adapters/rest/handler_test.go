package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"jalsuraksha/internal/adapters/exports"
	"jalsuraksha/internal/blob"
	"jalsuraksha/internal/core"
	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/pkg/domain"
)

func newTestHandler(t *testing.T) (*Handler, *core.Service) {
	t.Helper()
	svc := core.NewService(memory.NewStore())
	worker := exports.NewWorker(svc, blob.NewMemoryStore(), nil)
	worker.Start()
	t.Cleanup(func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = worker.Stop(ctx)
	})
	return NewHandler(svc, worker), svc
}

func doJSON(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	if err := json.Unmarshal(rec.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %s: %v", rec.Body.String(), err)
	}
	return out
}

func TestCreateAndGetPHC(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/phcs", domain.PHCInput{
		Name: "Guwahati PHC", District: "Kamrup", State: "Assam", Latitude: 26.14, Longitude: 91.73,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[domain.PHC](t, rec)
	if created.ID == "" || created.Status != domain.PHCStatusActive {
		t.Fatalf("unexpected created phc: %+v", created)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/phcs/"+created.ID, nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("get status %d", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/phcs?state=Assam", nil)
	if phcs := decodeBody[[]domain.PHC](t, rec); len(phcs) != 1 {
		t.Fatalf("state filter returned %d phcs", len(phcs))
	}
}

func TestValidationFailureShape(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/phcs", domain.PHCInput{Latitude: 200})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status %d, want 400", rec.Code)
	}
	body := decodeBody[struct {
		Error   string              `json:"error"`
		Details []domain.FieldError `json:"details"`
	}](t, rec)
	if body.Error != "validation failed" || len(body.Details) == 0 {
		t.Fatalf("unexpected error body: %+v", body)
	}
	seen := map[string]bool{}
	for _, d := range body.Details {
		seen[d.Field] = true
	}
	if !seen["name"] || !seen["latitude"] {
		t.Fatalf("expected name and latitude details, got %+v", body.Details)
	}
}

func TestMissingRecordIs404(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/alerts/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}

func TestAlertVerifyResolveRoutes(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()

	alert, err := svc.CreateAlert(ctx, domain.AlertInput{
		Title: "cholera watch", Description: "rising cases", Severity: domain.AlertSeverityHigh,
		PHCID: "phc-1", AffectedPopulation: 500, EstimatedCases: 5, Confidence: 60,
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}

	rec := doJSON(t, h, http.MethodPost, "/api/alerts/"+alert.ID+"/verify", map[string]string{"verifiedBy": "Dr. Das"})
	if rec.Code != http.StatusOK {
		t.Fatalf("verify status %d: %s", rec.Code, rec.Body.String())
	}
	verified := decodeBody[domain.Alert](t, rec)
	if verified.Status != domain.AlertStatusVerified {
		t.Fatalf("status = %s", verified.Status)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/alerts/"+alert.ID+"/resolve", map[string]string{"resolvedBy": "Dr. Bora"})
	if rec.Code != http.StatusOK {
		t.Fatalf("resolve status %d", rec.Code)
	}

	// Terminal alert: another verify is a conflict.
	rec = doJSON(t, h, http.MethodPost, "/api/alerts/"+alert.ID+"/verify", map[string]string{"verifiedBy": "Dr. Das"})
	if rec.Code != http.StatusConflict {
		t.Fatalf("verify on resolved status %d, want 409", rec.Code)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/alerts/active", nil)
	if alerts := decodeBody[[]domain.Alert](t, rec); len(alerts) != 0 {
		t.Fatalf("active listing has %d alerts, want 0", len(alerts))
	}
}

func TestDiseaseReportQueryDispatch(t *testing.T) {
	h, svc := newTestHandler(t)
	ctx := context.Background()

	mk := func(phcID string, date time.Time) {
		t.Helper()
		if _, err := svc.CreateDiseaseReport(ctx, domain.DiseaseReportInput{
			PHCID: phcID, ReportDate: date, DiseaseType: domain.DiseaseDiarrhea,
			CaseCount: 3, AgeGroup: domain.AgeGroupChild, Severity: domain.ReportSeverityModerate,
			ReportedBy: "asha worker",
		}); err != nil {
			t.Fatalf("create report: %v", err)
		}
	}
	now := time.Now().UTC()
	mk("phc-1", now)
	mk("phc-2", now.AddDate(0, 0, -30))

	rec := doJSON(t, h, http.MethodGet, "/api/disease-reports?phcId=phc-1", nil)
	if reports := decodeBody[[]domain.DiseaseReport](t, rec); len(reports) != 1 {
		t.Fatalf("phcId filter returned %d", len(reports))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/disease-reports?days=7", nil)
	if reports := decodeBody[[]domain.DiseaseReport](t, rec); len(reports) != 1 {
		t.Fatalf("days filter returned %d", len(reports))
	}

	start := now.AddDate(0, 0, -40).Format("2006-01-02")
	end := now.Format("2006-01-02")
	rec = doJSON(t, h, http.MethodGet, fmt.Sprintf("/api/disease-reports?startDate=%s&endDate=%s", start, end), nil)
	if reports := decodeBody[[]domain.DiseaseReport](t, rec); len(reports) != 2 {
		t.Fatalf("range filter returned %d", len(reports))
	}

	rec = doJSON(t, h, http.MethodGet, "/api/disease-reports?days=zero", nil)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("bad days status %d, want 400", rec.Code)
	}
}

func TestUserRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/users", domain.UserInput{
		Name: "Anita Deka", Email: "anita@example.org", Role: domain.RolePHCWorker,
	})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create status %d: %s", rec.Code, rec.Body.String())
	}
	created := decodeBody[domain.User](t, rec)
	if created.Language != domain.LanguageEnglish {
		t.Fatalf("language default = %s", created.Language)
	}

	rec = doJSON(t, h, http.MethodGet, "/api/users?email=anita@example.org", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("lookup status %d", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/users?email=nobody@example.org", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing email status %d, want 404", rec.Code)
	}

	rec = doJSON(t, h, http.MethodDelete, "/api/users/"+created.ID, nil)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete status %d, want 204", rec.Code)
	}
}

func TestDashboardSummaryRoute(t *testing.T) {
	h, svc := newTestHandler(t)
	if _, err := svc.CreatePHC(context.Background(), domain.PHCInput{
		Name: "Imphal PHC", District: "Imphal West", State: "Manipur", Latitude: 24.81, Longitude: 93.93,
	}); err != nil {
		t.Fatalf("create phc: %v", err)
	}

	rec := doJSON(t, h, http.MethodGet, "/api/dashboard/summary", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d", rec.Code)
	}
	summary := decodeBody[domain.DashboardSummary](t, rec)
	if summary.TotalPHCs != 1 {
		t.Fatalf("total phcs = %d", summary.TotalPHCs)
	}
}

func TestExportRoutes(t *testing.T) {
	h, _ := newTestHandler(t)

	rec := doJSON(t, h, http.MethodPost, "/api/exports", exports.ExportInput{
		Dataset:     exports.DatasetAlerts,
		RequestedBy: "analyst",
	})
	if rec.Code != http.StatusAccepted {
		t.Fatalf("enqueue status %d: %s", rec.Code, rec.Body.String())
	}
	queued := decodeBody[exports.ExportRecord](t, rec)
	if queued.ID == "" {
		t.Fatalf("missing export id: %+v", queued)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		rec = doJSON(t, h, http.MethodGet, "/api/exports/"+queued.ID, nil)
		if rec.Code != http.StatusOK {
			t.Fatalf("get status %d", rec.Code)
		}
		record := decodeBody[exports.ExportRecord](t, rec)
		if record.CompletedAt != nil {
			if record.Status != exports.ExportStatusSucceeded {
				t.Fatalf("export ended %s: %s", record.Status, record.Error)
			}
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("export did not complete")
		}
		time.Sleep(5 * time.Millisecond)
	}

	rec = doJSON(t, h, http.MethodPost, "/api/exports", exports.ExportInput{Dataset: "rainfall"})
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("unknown dataset status %d, want 400", rec.Code)
	}
	rec = doJSON(t, h, http.MethodGet, "/api/exports/missing", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("missing export status %d, want 404", rec.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	h, _ := newTestHandler(t)
	rec := doJSON(t, h, http.MethodGet, "/api/nope", nil)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status %d, want 404", rec.Code)
	}
}
