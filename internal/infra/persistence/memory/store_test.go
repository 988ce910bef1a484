package memory

import (
	"testing"
	"time"

	"jalsuraksha/pkg/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func strPtr(s string) *string { return &s }

func TestCreatePHCAssignsIdentityAndDefaults(t *testing.T) {
	store := NewStore()
	created, err := store.CreatePHC(domain.PHCInput{Name: "Guwahati PHC", District: "Kamrup", State: "Assam", Latitude: 26.1445, Longitude: 91.7362})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if created.ID == "" || created.CreatedAt.IsZero() {
		t.Fatalf("identity fields not assigned: %+v", created.Base)
	}
	if created.Status != domain.PHCStatusActive {
		t.Fatalf("status default = %q, want active", created.Status)
	}
	got, ok := store.GetPHC(created.ID)
	if !ok {
		t.Fatal("created record not retrievable")
	}
	if got.Name != created.Name || got.Latitude != created.Latitude {
		t.Fatalf("round trip mismatch: %+v vs %+v", got, created)
	}
}

func TestIdentifiersAreUniqueAcrossRepositories(t *testing.T) {
	store := NewStore()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		p, _ := store.CreatePHC(domain.PHCInput{Name: "P", District: "D", State: "S"})
		u, _ := store.CreateUser(domain.UserInput{Name: "U", Email: "u@example.org", Role: domain.RoleViewer})
		for _, id := range []string{p.ID, u.ID} {
			if seen[id] {
				t.Fatalf("duplicate identifier %s", id)
			}
			seen[id] = true
		}
	}
}

func TestUpdatePHCTouchesOnlyPatchedFields(t *testing.T) {
	store := NewStore()
	created, _ := store.CreatePHC(domain.PHCInput{Name: "Silchar PHC", District: "Cachar", State: "Assam", Latitude: 24.8, Longitude: 92.8, ContactPhone: strPtr("+91-1111")})
	updated, ok, err := store.UpdatePHC(created.ID, domain.PHCPatch{District: strPtr("Hailakandi")})
	if err != nil || !ok {
		t.Fatalf("update: ok=%v err=%v", ok, err)
	}
	if updated.District != "Hailakandi" {
		t.Fatalf("district = %q", updated.District)
	}
	if updated.Name != created.Name || updated.Latitude != created.Latitude {
		t.Fatal("unpatched fields changed")
	}
	if updated.ContactPhone == nil || *updated.ContactPhone != "+91-1111" {
		t.Fatal("optional field lost during patch")
	}
	if updated.ID != created.ID || !updated.CreatedAt.Equal(created.CreatedAt) {
		t.Fatal("identity fields changed by update")
	}
}

func TestUpdateUnknownIDReportsAbsent(t *testing.T) {
	store := NewStore()
	_, ok, err := store.UpdatePHC("missing", domain.PHCPatch{Name: strPtr("X")})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Fatal("update of unknown id reported success")
	}
}

func TestDeleteIsFinal(t *testing.T) {
	store := NewStore()
	created, _ := store.CreateUser(domain.UserInput{Name: "A", Email: "a@example.org", Role: domain.RoleAdmin})
	ok, err := store.DeleteUser(created.ID)
	if err != nil || !ok {
		t.Fatalf("first delete: ok=%v err=%v", ok, err)
	}
	if _, found := store.GetUser(created.ID); found {
		t.Fatal("deleted record still retrievable")
	}
	ok, err = store.DeleteUser(created.ID)
	if err != nil {
		t.Fatalf("second delete: %v", err)
	}
	if ok {
		t.Fatal("second delete reported success")
	}
}

func TestRecentDiseaseReportsIncludesCutoffDay(t *testing.T) {
	store := NewStore()
	now := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	store.nowFn = fixedClock(now)

	mk := func(date time.Time) domain.DiseaseReport {
		r, err := store.CreateDiseaseReport(domain.DiseaseReportInput{
			PHCID: "p1", ReportDate: date, DiseaseType: domain.DiseaseCholera,
			CaseCount: 3, AgeGroup: domain.AgeGroupAdult, Severity: domain.ReportSeverityModerate,
			ReportedBy: "worker",
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		return r
	}
	onBoundary := mk(now.AddDate(0, 0, -7))
	outside := mk(now.AddDate(0, 0, -8))
	fresh := mk(now.AddDate(0, 0, -1))

	recent := store.ListRecentDiseaseReports(7)
	if len(recent) != 2 {
		t.Fatalf("recent count = %d, want 2", len(recent))
	}
	if recent[0].ID != fresh.ID || recent[1].ID != onBoundary.ID {
		t.Fatalf("recent order wrong: %s, %s", recent[0].ID, recent[1].ID)
	}
	for _, r := range recent {
		if r.ID == outside.ID {
			t.Fatal("record older than the window included")
		}
	}
}

func TestRecentDefaultsToSevenDays(t *testing.T) {
	store := NewStore()
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	store.nowFn = fixedClock(now)
	if _, err := store.CreateWaterQualityTest(domain.WaterQualityTestInput{
		PHCID: "p1", TestDate: now.AddDate(0, 0, -6), Location: "well", Source: domain.SourceBorewell, TestedBy: "tech",
	}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := len(store.ListRecentWaterQualityTests(0)); got != 1 {
		t.Fatalf("default window count = %d, want 1", got)
	}
}

func TestDateRangeBoundsAreInclusive(t *testing.T) {
	store := NewStore()
	start := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 3, 31, 0, 0, 0, 0, time.UTC)
	for _, date := range []time.Time{start, end, start.AddDate(0, 0, -1), end.AddDate(0, 0, 1)} {
		if _, err := store.CreateWaterQualityTest(domain.WaterQualityTestInput{
			PHCID: "p1", TestDate: date, Location: "pond", Source: domain.SourcePond, TestedBy: "tech",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}
	got := store.ListWaterQualityTestsByDateRange(start, end)
	if len(got) != 2 {
		t.Fatalf("range count = %d, want 2 (bounds included)", len(got))
	}
}

func TestVerifyAndResolveStampActorAndTime(t *testing.T) {
	store := NewStore()
	created, _ := store.CreateAlert(domain.AlertInput{
		Title: "Cholera cluster", Description: "spike", Severity: domain.AlertSeverityHigh,
		PHCID: "p1", AffectedPopulation: 1200, EstimatedCases: 14, Confidence: 80,
	})
	if created.Status != domain.AlertStatusActive || created.AlertedAt.IsZero() {
		t.Fatalf("new alert not active: %+v", created)
	}

	verified, ok, err := store.VerifyAlert(created.ID, "Dr. Das")
	if err != nil || !ok {
		t.Fatalf("verify: ok=%v err=%v", ok, err)
	}
	if verified.Status != domain.AlertStatusVerified {
		t.Fatalf("status = %s", verified.Status)
	}
	if verified.VerifiedBy == nil || *verified.VerifiedBy != "Dr. Das" || verified.VerifiedAt == nil {
		t.Fatal("verification stamp incomplete")
	}

	resolved, ok, err := store.ResolveAlert(created.ID, "Dr. Roy")
	if err != nil || !ok {
		t.Fatalf("resolve: ok=%v err=%v", ok, err)
	}
	if resolved.Status != domain.AlertStatusResolved {
		t.Fatalf("status = %s", resolved.Status)
	}
	if resolved.ResolvedBy == nil || *resolved.ResolvedBy != "Dr. Roy" || resolved.ResolvedAt == nil {
		t.Fatal("resolution stamp incomplete")
	}
	if resolved.VerifiedBy == nil || *resolved.VerifiedBy != "Dr. Das" {
		t.Fatal("resolution clobbered the verification stamp")
	}
}

func TestAlertListingsAreNewestFirst(t *testing.T) {
	store := NewStore()
	base := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	ids := make([]string, 3)
	for i := 0; i < 3; i++ {
		store.nowFn = fixedClock(base.AddDate(0, 0, i))
		a, _ := store.CreateAlert(domain.AlertInput{
			Title: "t", Description: "d", Severity: domain.AlertSeverityLow,
			PHCID: "p1", AffectedPopulation: 1, EstimatedCases: 1, Confidence: 10,
		})
		ids[i] = a.ID
	}
	active := store.ListActiveAlerts()
	if len(active) != 3 {
		t.Fatalf("active count = %d", len(active))
	}
	if active[0].ID != ids[2] || active[2].ID != ids[0] {
		t.Fatal("active alerts not newest first")
	}
}

func TestReadsReturnDefensiveCopies(t *testing.T) {
	store := NewStore()
	created, _ := store.CreateAlert(domain.AlertInput{
		Title: "t", Description: "d", Severity: domain.AlertSeverityMedium,
		PHCID: "p1", AffectedPopulation: 10, EstimatedCases: 2, Confidence: 50,
		RiskFactors: []string{"flooding"},
	})
	got, _ := store.GetAlert(created.ID)
	got.RiskFactors[0] = "tampered"
	again, _ := store.GetAlert(created.ID)
	if again.RiskFactors[0] != "flooding" {
		t.Fatal("stored record aliased to caller slice")
	}
}

func TestGetUserByEmailExactMatch(t *testing.T) {
	store := NewStore()
	created, _ := store.CreateUser(domain.UserInput{Name: "Priya", Email: "priya@jalsuraksha.gov.in", Role: domain.RoleAdmin})
	got, ok := store.GetUserByEmail("priya@jalsuraksha.gov.in")
	if !ok || got.ID != created.ID {
		t.Fatalf("lookup failed: ok=%v", ok)
	}
	if got.Language != domain.LanguageEnglish {
		t.Fatalf("language default = %q", got.Language)
	}
	if _, ok := store.GetUserByEmail("PRIYA@jalsuraksha.gov.in"); ok {
		t.Fatal("email lookup must be exact")
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	store := NewStore()
	phc, _ := store.CreatePHC(domain.PHCInput{Name: "Imphal PHC", District: "Imphal West", State: "Manipur"})
	if _, err := store.CreateAlert(domain.AlertInput{
		Title: "t", Description: "d", Severity: domain.AlertSeverityLow,
		PHCID: phc.ID, AffectedPopulation: 5, EstimatedCases: 1, Confidence: 20,
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	other := NewStore()
	if err := other.ImportState(store.ExportState()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got, ok := other.GetPHC(phc.ID); !ok || got.Name != phc.Name {
		t.Fatal("imported store missing health center")
	}
	if len(other.ListActiveAlerts()) != 1 {
		t.Fatal("imported store missing alert")
	}
}

func TestFilteredPHCListings(t *testing.T) {
	store := NewStore()
	if _, err := store.CreatePHC(domain.PHCInput{Name: "A", District: "Kamrup", State: "Assam"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreatePHC(domain.PHCInput{Name: "B", District: "Cachar", State: "Assam"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := store.CreatePHC(domain.PHCInput{Name: "C", District: "West Tripura", State: "Tripura"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	if got := len(store.ListPHCsByState("Assam")); got != 2 {
		t.Fatalf("by state = %d, want 2", got)
	}
	if got := len(store.ListPHCsByDistrict("Cachar")); got != 1 {
		t.Fatalf("by district = %d, want 1", got)
	}
	if got := len(store.ListPHCsByState("Kerala")); got != 0 {
		t.Fatalf("unknown state = %d, want 0", got)
	}
}
