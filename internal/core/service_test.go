package core

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/pkg/domain"
)

func newTestService(t *testing.T, opts ...Option) *Service {
	t.Helper()
	return NewService(memory.NewStore(), opts...)
}

func mustCreateAlert(t *testing.T, svc *Service, phcID string, severity domain.AlertSeverity) domain.Alert {
	t.Helper()
	alert, err := svc.CreateAlert(context.Background(), domain.AlertInput{
		Title:              "cholera cluster",
		Description:        "case spike near the river ghat",
		Severity:           severity,
		PHCID:              phcID,
		AffectedPopulation: 1200,
		EstimatedCases:     14,
		Confidence:         82,
	})
	if err != nil {
		t.Fatalf("create alert: %v", err)
	}
	return alert
}

func fieldMessages(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr domain.ValidationErrors
	if !errors.As(err, &verr) {
		t.Fatalf("expected validation error, got %v", err)
	}
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestCreateDiseaseReportValidationRejectsBadInput(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateDiseaseReport(ctx, domain.DiseaseReportInput{
		PHCID:       "phc-1",
		ReportDate:  time.Now(),
		DiseaseType: "flu",
		CaseCount:   0,
		AgeGroup:    domain.AgeGroupAdult,
		Severity:    domain.ReportSeverityMild,
		ReportedBy:  "asha worker",
	})
	fields := fieldMessages(t, err)
	if _, ok := fields["disease_type"]; !ok {
		t.Fatalf("expected disease_type violation, got %v", fields)
	}
	if fields["case_count"] != "must be at least 1" {
		t.Fatalf("unexpected case_count message: %q", fields["case_count"])
	}

	if reports, _ := svc.ListDiseaseReports(ctx); len(reports) != 0 {
		t.Fatalf("failed create must not persist, found %d reports", len(reports))
	}
}

func TestGetAlertNotFound(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.GetAlert(context.Background(), "missing")
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if nf.Entity != "alert" || nf.ID != "missing" {
		t.Fatalf("unexpected not-found detail: %+v", nf)
	}
}

func TestVerifyThenResolvePreservesVerificationStamp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	verified, err := svc.VerifyAlert(ctx, alert.ID, "Dr. Das")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if verified.Status != domain.AlertStatusVerified || verified.VerifiedBy == nil || *verified.VerifiedBy != "Dr. Das" {
		t.Fatalf("unexpected verified alert: %+v", verified)
	}

	resolved, err := svc.ResolveAlert(ctx, alert.ID, "Dr. Bora")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if resolved.Status != domain.AlertStatusResolved {
		t.Fatalf("expected resolved status, got %s", resolved.Status)
	}
	if resolved.VerifiedBy == nil || *resolved.VerifiedBy != "Dr. Das" {
		t.Fatalf("resolution must keep the verification stamp, got %+v", resolved.VerifiedBy)
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != "Dr. Bora" {
		t.Fatalf("unexpected resolver stamp: %+v", resolved.ResolvedBy)
	}
}

func TestRepeatVerifyOverwritesStamp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	first, err := svc.VerifyAlert(ctx, alert.ID, "Dr. Das")
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	second, err := svc.VerifyAlert(ctx, alert.ID, "Dr. Bora")
	if err != nil {
		t.Fatalf("repeat verify: %v", err)
	}
	if second.Status != domain.AlertStatusVerified {
		t.Fatalf("status = %s", second.Status)
	}
	if second.VerifiedBy == nil || *second.VerifiedBy != "Dr. Bora" {
		t.Fatalf("repeat verify must replace the actor, got %+v", second.VerifiedBy)
	}
	if second.VerifiedAt == nil || second.VerifiedAt.Before(*first.VerifiedAt) {
		t.Fatalf("repeat verify must refresh the timestamp: first %v second %v", first.VerifiedAt, second.VerifiedAt)
	}
}

func TestRepeatResolveOverwritesStamp(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	first, err := svc.ResolveAlert(ctx, alert.ID, "Dr. Das")
	if err != nil {
		t.Fatalf("first resolve: %v", err)
	}
	second, err := svc.ResolveAlert(ctx, alert.ID, "Dr. Bora")
	if err != nil {
		t.Fatalf("repeat resolve: %v", err)
	}
	if second.Status != domain.AlertStatusResolved {
		t.Fatalf("status = %s", second.Status)
	}
	if second.ResolvedBy == nil || *second.ResolvedBy != "Dr. Bora" {
		t.Fatalf("repeat resolve must replace the actor, got %+v", second.ResolvedBy)
	}
	if second.ResolvedAt == nil || second.ResolvedAt.Before(*first.ResolvedAt) {
		t.Fatalf("repeat resolve must refresh the timestamp: first %v second %v", first.ResolvedAt, second.ResolvedAt)
	}
}

func TestResolveStraightFromActive(t *testing.T) {
	svc := newTestService(t)
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityMedium)

	resolved, err := svc.ResolveAlert(context.Background(), alert.ID, "Dr. Das")
	if err != nil {
		t.Fatalf("resolve from active: %v", err)
	}
	if resolved.Status != domain.AlertStatusResolved || resolved.VerifiedAt != nil {
		t.Fatalf("unexpected alert after direct resolution: %+v", resolved)
	}
}

func TestVerifyRejectedOnTerminalAlert(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)
	if _, err := svc.ResolveAlert(ctx, alert.ID, "Dr. Das"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	_, err := svc.VerifyAlert(ctx, alert.ID, "Dr. Bora")
	var lerr domain.LifecycleError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected lifecycle error, got %v", err)
	}
	if lerr.From != domain.AlertStatusResolved || lerr.To != domain.AlertStatusVerified {
		t.Fatalf("unexpected lifecycle detail: %+v", lerr)
	}
}

func TestVerifyRequiresActor(t *testing.T) {
	svc := newTestService(t)
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityLow)

	_, err := svc.VerifyAlert(context.Background(), alert.ID, "  ")
	fields := fieldMessages(t, err)
	if fields["verified_by"] != "required" {
		t.Fatalf("expected verified_by required, got %v", fields)
	}
}

func TestVerifyUnknownAlert(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.VerifyAlert(context.Background(), "missing", "Dr. Das")
	var nf domain.NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestUpdateAlertFalseAlarmFreezesStatus(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	falseAlarm := domain.AlertStatusFalseAlarm
	if _, err := svc.UpdateAlert(ctx, alert.ID, domain.AlertPatch{Status: &falseAlarm}); err != nil {
		t.Fatalf("mark false alarm: %v", err)
	}

	active := domain.AlertStatusActive
	_, err := svc.UpdateAlert(ctx, alert.ID, domain.AlertPatch{Status: &active})
	var lerr domain.LifecycleError
	if !errors.As(err, &lerr) {
		t.Fatalf("expected lifecycle error reopening a false alarm, got %v", err)
	}
}

func TestUpdateAlertVerifiedStatusNeedsStamp(t *testing.T) {
	svc := newTestService(t)
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	verified := domain.AlertStatusVerified
	_, err := svc.UpdateAlert(context.Background(), alert.ID, domain.AlertPatch{Status: &verified})
	fields := fieldMessages(t, err)
	if _, ok := fields["verified_by"]; !ok {
		t.Fatalf("expected verified_by violation, got %v", fields)
	}
}

func TestUpdateAlertStampsMustPair(t *testing.T) {
	svc := newTestService(t)
	alert := mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityHigh)

	at := time.Now().UTC()
	_, err := svc.UpdateAlert(context.Background(), alert.ID, domain.AlertPatch{VerifiedAt: &at})
	fields := fieldMessages(t, err)
	if fields["verified_at"] != "must be set together with verified_by" {
		t.Fatalf("expected pairing violation, got %v", fields)
	}
}

func TestCreateUserDuplicateEmail(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	in := domain.UserInput{Name: "Anita Deka", Email: "anita@example.org", Role: domain.RolePHCWorker}
	if _, err := svc.CreateUser(ctx, in); err != nil {
		t.Fatalf("first create: %v", err)
	}

	in.Name = "Someone Else"
	_, err := svc.CreateUser(ctx, in)
	fields := fieldMessages(t, err)
	if fields["email"] != "already registered" {
		t.Fatalf("expected duplicate email violation, got %v", fields)
	}
}

func TestUpdateUserEmailCollision(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	first, err := svc.CreateUser(ctx, domain.UserInput{Name: "Anita Deka", Email: "anita@example.org", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("create first: %v", err)
	}
	second, err := svc.CreateUser(ctx, domain.UserInput{Name: "Ravi Nath", Email: "ravi@example.org", Role: domain.RoleViewer})
	if err != nil {
		t.Fatalf("create second: %v", err)
	}

	taken := first.Email
	if _, err := svc.UpdateUser(ctx, second.ID, domain.UserPatch{Email: &taken}); err == nil {
		t.Fatal("expected collision on another user's email")
	}

	// Re-submitting a user's own email is not a collision.
	own := second.Email
	if _, err := svc.UpdateUser(ctx, second.ID, domain.UserPatch{Email: &own}); err != nil {
		t.Fatalf("own email re-submit: %v", err)
	}
}

func TestListRecentRejectsNegativeDays(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ListRecentDiseaseReports(context.Background(), -3)
	fields := fieldMessages(t, err)
	if fields["days"] != "must be a positive number" {
		t.Fatalf("expected days violation, got %v", fields)
	}
}

func TestListByDateRangeRejectsInvertedRange(t *testing.T) {
	svc := newTestService(t)
	end := time.Now()
	start := end.Add(24 * time.Hour)
	_, err := svc.ListWaterQualityTestsByDateRange(context.Background(), start, end)
	fields := fieldMessages(t, err)
	if fields["start_date"] != "must not be after end_date" {
		t.Fatalf("expected range violation, got %v", fields)
	}
}

func TestListAlertsByStatusRejectsUnknownStatus(t *testing.T) {
	svc := newTestService(t)
	_, err := svc.ListAlertsByStatus(context.Background(), "escalated")
	if err == nil {
		t.Fatal("expected validation error for unknown status")
	}
}

type captureRecorder struct {
	mu           sync.Mutex
	observations []struct {
		operation string
		success   bool
	}
}

func (r *captureRecorder) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.observations = append(r.observations, struct {
		operation string
		success   bool
	}{operation, success})
}

func TestMetricsRecorderObservesOutcomes(t *testing.T) {
	rec := &captureRecorder{}
	svc := newTestService(t, WithMetricsRecorder(rec))
	ctx := context.Background()

	mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityLow)
	if _, err := svc.GetAlert(ctx, "missing"); err == nil {
		t.Fatal("expected not-found error")
	}

	rec.mu.Lock()
	defer rec.mu.Unlock()
	if len(rec.observations) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(rec.observations))
	}
	if rec.observations[0].operation != "create_alert" || !rec.observations[0].success {
		t.Fatalf("unexpected first observation: %+v", rec.observations[0])
	}
	if rec.observations[1].operation != "get_alert" || rec.observations[1].success {
		t.Fatalf("unexpected second observation: %+v", rec.observations[1])
	}
}

func TestJSONTracerRecordsSpans(t *testing.T) {
	tracer := NewJSONTracer(nil)
	svc := newTestService(t, WithTracer(tracer))
	mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityLow)

	entries := tracer.Entries()
	if len(entries) != 1 {
		t.Fatalf("expected 1 span, got %d", len(entries))
	}
	if entries[0].Operation != "create_alert" || entries[0].Status != "success" {
		t.Fatalf("unexpected span: %+v", entries[0])
	}
}
