package core

import (
	"context"
	"testing"
	"time"

	"jalsuraksha/pkg/domain"
)

func TestDashboardSummaryCountsDistinctHighRiskPHCs(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	for _, name := range []string{"Guwahati PHC", "Silchar PHC"} {
		if _, err := svc.CreatePHC(ctx, domain.PHCInput{
			Name: name, District: "Kamrup", State: "Assam", Latitude: 26.14, Longitude: 91.73,
		}); err != nil {
			t.Fatalf("create phc: %v", err)
		}
	}

	mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityCritical)
	mustCreateAlert(t, svc, "phc-1", domain.AlertSeverityLow)
	mustCreateAlert(t, svc, "phc-2", domain.AlertSeverityHigh)
	resolved := mustCreateAlert(t, svc, "phc-3", domain.AlertSeverityCritical)
	if _, err := svc.ResolveAlert(ctx, resolved.ID, "Dr. Das"); err != nil {
		t.Fatalf("resolve: %v", err)
	}

	if _, err := svc.CreateDiseaseReport(ctx, domain.DiseaseReportInput{
		PHCID:       "phc-1",
		ReportDate:  time.Now().UTC(),
		DiseaseType: domain.DiseaseCholera,
		CaseCount:   6,
		AgeGroup:    domain.AgeGroupChild,
		Severity:    domain.ReportSeveritySevere,
		ReportedBy:  "asha worker",
	}); err != nil {
		t.Fatalf("create report: %v", err)
	}

	summary, err := svc.DashboardSummary(ctx)
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.TotalPHCs != 2 {
		t.Fatalf("total phcs = %d, want 2", summary.TotalPHCs)
	}
	if summary.ActiveAlerts != 3 {
		t.Fatalf("active alerts = %d, want 3", summary.ActiveAlerts)
	}
	// The resolved critical alert must not count.
	if summary.CriticalAlerts != 1 {
		t.Fatalf("critical alerts = %d, want 1", summary.CriticalAlerts)
	}
	if summary.HighRiskPHCs != 2 {
		t.Fatalf("high risk phcs = %d, want 2", summary.HighRiskPHCs)
	}
	if summary.RecentDiseaseReports != 1 {
		t.Fatalf("recent reports = %d, want 1", summary.RecentDiseaseReports)
	}
	if summary.RecentWaterTests != 0 {
		t.Fatalf("recent water tests = %d, want 0", summary.RecentWaterTests)
	}
}

func TestDashboardSummaryEmptyStore(t *testing.T) {
	svc := newTestService(t)
	summary, err := svc.DashboardSummary(context.Background())
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary != (domain.DashboardSummary{}) {
		t.Fatalf("expected zero summary, got %+v", summary)
	}
}
