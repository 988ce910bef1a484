// Package memory provides the reference in-memory implementation of the
// surveillance store. All state lives in maps guarded by a single RWMutex;
// every read returns a defensive copy so callers can never alias stored
// records.
package memory

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"jalsuraksha/pkg/domain"
)

type state struct {
	phcs    map[string]domain.PHC
	reports map[string]domain.DiseaseReport
	tests   map[string]domain.WaterQualityTest
	alerts  map[string]domain.Alert
	users   map[string]domain.User
}

func newState() state {
	return state{
		phcs:    make(map[string]domain.PHC),
		reports: make(map[string]domain.DiseaseReport),
		tests:   make(map[string]domain.WaterQualityTest),
		alerts:  make(map[string]domain.Alert),
		users:   make(map[string]domain.User),
	}
}

// Store implements domain.Store backed by process memory. A new store is
// empty; seed data arrives only through ImportState.
type Store struct {
	mu    sync.RWMutex
	state state
	nowFn func() time.Time
}

// NewStore returns an empty in-memory store.
func NewStore() *Store {
	return &Store{
		state: newState(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

func newID() string { return uuid.NewString() }

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneStrings(in []string) []string {
	out := make([]string, len(in))
	copy(out, in)
	return out
}

func clonePHC(p domain.PHC) domain.PHC {
	p.ContactPhone = clonePtr(p.ContactPhone)
	p.AdminName = clonePtr(p.AdminName)
	return p
}

func cloneDiseaseReport(r domain.DiseaseReport) domain.DiseaseReport {
	r.Symptoms = clonePtr(r.Symptoms)
	r.Notes = clonePtr(r.Notes)
	return r
}

func cloneWaterQualityTest(w domain.WaterQualityTest) domain.WaterQualityTest {
	w.PHValue = clonePtr(w.PHValue)
	w.Turbidity = clonePtr(w.Turbidity)
	w.BacterialCount = clonePtr(w.BacterialCount)
	w.ChlorineLevel = clonePtr(w.ChlorineLevel)
	w.Notes = clonePtr(w.Notes)
	return w
}

func cloneAlert(a domain.Alert) domain.Alert {
	a.RiskFactors = cloneStrings(a.RiskFactors)
	a.VerifiedAt = clonePtr(a.VerifiedAt)
	a.VerifiedBy = clonePtr(a.VerifiedBy)
	a.ResolvedAt = clonePtr(a.ResolvedAt)
	a.ResolvedBy = clonePtr(a.ResolvedBy)
	return a
}

func cloneUser(u domain.User) domain.User {
	u.PHCID = clonePtr(u.PHCID)
	u.Phone = clonePtr(u.Phone)
	return u
}

// sortByCreation orders plain listings oldest first with the identifier as a
// stable tie break.
func sortByCreation[T any](items []T, base func(T) domain.Base) {
	sort.Slice(items, func(i, j int) bool {
		bi, bj := base(items[i]), base(items[j])
		if !bi.CreatedAt.Equal(bj.CreatedAt) {
			return bi.CreatedAt.Before(bj.CreatedAt)
		}
		return bi.ID < bj.ID
	})
}

// sortNewestFirst orders time-keyed listings newest first.
func sortNewestFirst[T any](items []T, at func(T) time.Time) {
	sort.SliceStable(items, func(i, j int) bool {
		return at(items[i]).After(at(items[j]))
	})
}

// recentCutoff yields the inclusive lower bound for a trailing window of
// whole days. A non-positive window falls back to seven days.
func (s *Store) recentCutoff(days int) time.Time {
	if days <= 0 {
		days = 7
	}
	return s.nowFn().AddDate(0, 0, -days)
}

// GetPHC returns the health center under id, if any.
func (s *Store) GetPHC(id string) (domain.PHC, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	p, ok := s.state.phcs[id]
	if !ok {
		return domain.PHC{}, false
	}
	return clonePHC(p), true
}

// ListPHCs returns every health center ordered by creation time.
func (s *Store) ListPHCs() []domain.PHC {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PHC, 0, len(s.state.phcs))
	for _, p := range s.state.phcs {
		out = append(out, clonePHC(p))
	}
	sortByCreation(out, func(p domain.PHC) domain.Base { return p.Base })
	return out
}

// ListPHCsByState returns health centers in the given state.
func (s *Store) ListPHCsByState(st string) []domain.PHC {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PHC, 0)
	for _, p := range s.state.phcs {
		if p.State == st {
			out = append(out, clonePHC(p))
		}
	}
	sortByCreation(out, func(p domain.PHC) domain.Base { return p.Base })
	return out
}

// ListPHCsByDistrict returns health centers in the given district.
func (s *Store) ListPHCsByDistrict(district string) []domain.PHC {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.PHC, 0)
	for _, p := range s.state.phcs {
		if p.District == district {
			out = append(out, clonePHC(p))
		}
	}
	sortByCreation(out, func(p domain.PHC) domain.Base { return p.Base })
	return out
}

// CreatePHC stores a new health center, assigning its identity fields.
func (s *Store) CreatePHC(in domain.PHCInput) (domain.PHC, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := domain.PHC{
		Base:         domain.Base{ID: newID(), CreatedAt: s.nowFn()},
		Name:         in.Name,
		District:     in.District,
		State:        in.State,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		ContactPhone: clonePtr(in.ContactPhone),
		AdminName:    clonePtr(in.AdminName),
		Status:       in.Status,
	}
	if p.Status == "" {
		p.Status = domain.PHCStatusActive
	}
	s.state.phcs[p.ID] = p
	return clonePHC(p), nil
}

// UpdatePHC applies the non-nil patch fields to the stored record.
func (s *Store) UpdatePHC(id string, patch domain.PHCPatch) (domain.PHC, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.state.phcs[id]
	if !ok {
		return domain.PHC{}, false, nil
	}
	if patch.Name != nil {
		p.Name = *patch.Name
	}
	if patch.District != nil {
		p.District = *patch.District
	}
	if patch.State != nil {
		p.State = *patch.State
	}
	if patch.Latitude != nil {
		p.Latitude = *patch.Latitude
	}
	if patch.Longitude != nil {
		p.Longitude = *patch.Longitude
	}
	if patch.ContactPhone != nil {
		p.ContactPhone = clonePtr(patch.ContactPhone)
	}
	if patch.AdminName != nil {
		p.AdminName = clonePtr(patch.AdminName)
	}
	if patch.Status != nil {
		p.Status = *patch.Status
	}
	s.state.phcs[id] = p
	return clonePHC(p), true, nil
}

// DeletePHC removes the record, reporting whether it existed.
func (s *Store) DeletePHC(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.phcs[id]
	delete(s.state.phcs, id)
	return ok, nil
}

// GetDiseaseReport returns the report under id, if any.
func (s *Store) GetDiseaseReport(id string) (domain.DiseaseReport, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	r, ok := s.state.reports[id]
	if !ok {
		return domain.DiseaseReport{}, false
	}
	return cloneDiseaseReport(r), true
}

// ListDiseaseReports returns every report ordered by creation time.
func (s *Store) ListDiseaseReports() []domain.DiseaseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DiseaseReport, 0, len(s.state.reports))
	for _, r := range s.state.reports {
		out = append(out, cloneDiseaseReport(r))
	}
	sortByCreation(out, func(r domain.DiseaseReport) domain.Base { return r.Base })
	return out
}

// ListDiseaseReportsByPHC returns reports filed by the given health center,
// newest report date first.
func (s *Store) ListDiseaseReportsByPHC(phcID string) []domain.DiseaseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DiseaseReport, 0)
	for _, r := range s.state.reports {
		if r.PHCID == phcID {
			out = append(out, cloneDiseaseReport(r))
		}
	}
	sortNewestFirst(out, func(r domain.DiseaseReport) time.Time { return r.ReportDate })
	return out
}

// ListDiseaseReportsByDateRange returns reports whose report date falls
// within [start, end], bounds included, newest first.
func (s *Store) ListDiseaseReportsByDateRange(start, end time.Time) []domain.DiseaseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.DiseaseReport, 0)
	for _, r := range s.state.reports {
		if !r.ReportDate.Before(start) && !r.ReportDate.After(end) {
			out = append(out, cloneDiseaseReport(r))
		}
	}
	sortNewestFirst(out, func(r domain.DiseaseReport) time.Time { return r.ReportDate })
	return out
}

// ListRecentDiseaseReports returns reports from the trailing window of whole
// days, cutoff included, newest first.
func (s *Store) ListRecentDiseaseReports(days int) []domain.DiseaseReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.recentCutoff(days)
	out := make([]domain.DiseaseReport, 0)
	for _, r := range s.state.reports {
		if !r.ReportDate.Before(cutoff) {
			out = append(out, cloneDiseaseReport(r))
		}
	}
	sortNewestFirst(out, func(r domain.DiseaseReport) time.Time { return r.ReportDate })
	return out
}

// CreateDiseaseReport stores a new report, assigning its identity fields.
func (s *Store) CreateDiseaseReport(in domain.DiseaseReportInput) (domain.DiseaseReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r := domain.DiseaseReport{
		Base:        domain.Base{ID: newID(), CreatedAt: s.nowFn()},
		PHCID:       in.PHCID,
		ReportDate:  in.ReportDate,
		DiseaseType: in.DiseaseType,
		CaseCount:   in.CaseCount,
		AgeGroup:    in.AgeGroup,
		Severity:    in.Severity,
		Symptoms:    clonePtr(in.Symptoms),
		Notes:       clonePtr(in.Notes),
		ReportedBy:  in.ReportedBy,
		Verified:    in.Verified,
	}
	s.state.reports[r.ID] = r
	return cloneDiseaseReport(r), nil
}

// UpdateDiseaseReport applies the non-nil patch fields to the stored record.
func (s *Store) UpdateDiseaseReport(id string, patch domain.DiseaseReportPatch) (domain.DiseaseReport, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.state.reports[id]
	if !ok {
		return domain.DiseaseReport{}, false, nil
	}
	if patch.PHCID != nil {
		r.PHCID = *patch.PHCID
	}
	if patch.ReportDate != nil {
		r.ReportDate = *patch.ReportDate
	}
	if patch.DiseaseType != nil {
		r.DiseaseType = *patch.DiseaseType
	}
	if patch.CaseCount != nil {
		r.CaseCount = *patch.CaseCount
	}
	if patch.AgeGroup != nil {
		r.AgeGroup = *patch.AgeGroup
	}
	if patch.Severity != nil {
		r.Severity = *patch.Severity
	}
	if patch.Symptoms != nil {
		r.Symptoms = clonePtr(patch.Symptoms)
	}
	if patch.Notes != nil {
		r.Notes = clonePtr(patch.Notes)
	}
	if patch.ReportedBy != nil {
		r.ReportedBy = *patch.ReportedBy
	}
	if patch.Verified != nil {
		r.Verified = *patch.Verified
	}
	s.state.reports[id] = r
	return cloneDiseaseReport(r), true, nil
}

// DeleteDiseaseReport removes the record, reporting whether it existed.
func (s *Store) DeleteDiseaseReport(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.reports[id]
	delete(s.state.reports, id)
	return ok, nil
}

// GetWaterQualityTest returns the test under id, if any.
func (s *Store) GetWaterQualityTest(id string) (domain.WaterQualityTest, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.state.tests[id]
	if !ok {
		return domain.WaterQualityTest{}, false
	}
	return cloneWaterQualityTest(w), true
}

// ListWaterQualityTests returns every test ordered by creation time.
func (s *Store) ListWaterQualityTests() []domain.WaterQualityTest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WaterQualityTest, 0, len(s.state.tests))
	for _, w := range s.state.tests {
		out = append(out, cloneWaterQualityTest(w))
	}
	sortByCreation(out, func(w domain.WaterQualityTest) domain.Base { return w.Base })
	return out
}

// ListWaterQualityTestsByPHC returns tests sampled by the given health
// center, newest test date first.
func (s *Store) ListWaterQualityTestsByPHC(phcID string) []domain.WaterQualityTest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WaterQualityTest, 0)
	for _, w := range s.state.tests {
		if w.PHCID == phcID {
			out = append(out, cloneWaterQualityTest(w))
		}
	}
	sortNewestFirst(out, func(w domain.WaterQualityTest) time.Time { return w.TestDate })
	return out
}

// ListWaterQualityTestsByDateRange returns tests whose test date falls
// within [start, end], bounds included, newest first.
func (s *Store) ListWaterQualityTestsByDateRange(start, end time.Time) []domain.WaterQualityTest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.WaterQualityTest, 0)
	for _, w := range s.state.tests {
		if !w.TestDate.Before(start) && !w.TestDate.After(end) {
			out = append(out, cloneWaterQualityTest(w))
		}
	}
	sortNewestFirst(out, func(w domain.WaterQualityTest) time.Time { return w.TestDate })
	return out
}

// ListRecentWaterQualityTests returns tests from the trailing window of
// whole days, cutoff included, newest first.
func (s *Store) ListRecentWaterQualityTests(days int) []domain.WaterQualityTest {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.recentCutoff(days)
	out := make([]domain.WaterQualityTest, 0)
	for _, w := range s.state.tests {
		if !w.TestDate.Before(cutoff) {
			out = append(out, cloneWaterQualityTest(w))
		}
	}
	sortNewestFirst(out, func(w domain.WaterQualityTest) time.Time { return w.TestDate })
	return out
}

// CreateWaterQualityTest stores a new test, assigning its identity fields.
func (s *Store) CreateWaterQualityTest(in domain.WaterQualityTestInput) (domain.WaterQualityTest, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w := domain.WaterQualityTest{
		Base:           domain.Base{ID: newID(), CreatedAt: s.nowFn()},
		PHCID:          in.PHCID,
		TestDate:       in.TestDate,
		Location:       in.Location,
		Source:         in.Source,
		PHValue:        clonePtr(in.PHValue),
		Turbidity:      clonePtr(in.Turbidity),
		BacterialCount: clonePtr(in.BacterialCount),
		ChlorineLevel:  clonePtr(in.ChlorineLevel),
		Notes:          clonePtr(in.Notes),
		TestedBy:       in.TestedBy,
		Status:         in.Status,
	}
	if w.Status == "" {
		w.Status = domain.WaterTestPending
	}
	s.state.tests[w.ID] = w
	return cloneWaterQualityTest(w), nil
}

// UpdateWaterQualityTest applies the non-nil patch fields to the stored
// record.
func (s *Store) UpdateWaterQualityTest(id string, patch domain.WaterQualityTestPatch) (domain.WaterQualityTest, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, ok := s.state.tests[id]
	if !ok {
		return domain.WaterQualityTest{}, false, nil
	}
	if patch.PHCID != nil {
		w.PHCID = *patch.PHCID
	}
	if patch.TestDate != nil {
		w.TestDate = *patch.TestDate
	}
	if patch.Location != nil {
		w.Location = *patch.Location
	}
	if patch.Source != nil {
		w.Source = *patch.Source
	}
	if patch.PHValue != nil {
		w.PHValue = clonePtr(patch.PHValue)
	}
	if patch.Turbidity != nil {
		w.Turbidity = clonePtr(patch.Turbidity)
	}
	if patch.BacterialCount != nil {
		w.BacterialCount = clonePtr(patch.BacterialCount)
	}
	if patch.ChlorineLevel != nil {
		w.ChlorineLevel = clonePtr(patch.ChlorineLevel)
	}
	if patch.Notes != nil {
		w.Notes = clonePtr(patch.Notes)
	}
	if patch.TestedBy != nil {
		w.TestedBy = *patch.TestedBy
	}
	if patch.Status != nil {
		w.Status = *patch.Status
	}
	s.state.tests[id] = w
	return cloneWaterQualityTest(w), true, nil
}

// DeleteWaterQualityTest removes the record, reporting whether it existed.
func (s *Store) DeleteWaterQualityTest(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.tests[id]
	delete(s.state.tests, id)
	return ok, nil
}

// GetAlert returns the alert under id, if any.
func (s *Store) GetAlert(id string) (domain.Alert, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.state.alerts[id]
	if !ok {
		return domain.Alert{}, false
	}
	return cloneAlert(a), true
}

// ListAlerts returns every alert ordered by creation time.
func (s *Store) ListAlerts() []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, 0, len(s.state.alerts))
	for _, a := range s.state.alerts {
		out = append(out, cloneAlert(a))
	}
	sortByCreation(out, func(a domain.Alert) domain.Base { return a.Base })
	return out
}

// ListAlertsByPHC returns alerts raised for the given health center, newest
// first.
func (s *Store) ListAlertsByPHC(phcID string) []domain.Alert {
	return s.filterAlerts(func(a domain.Alert) bool { return a.PHCID == phcID })
}

// ListAlertsByStatus returns alerts in the given lifecycle state, newest
// first.
func (s *Store) ListAlertsByStatus(status domain.AlertStatus) []domain.Alert {
	return s.filterAlerts(func(a domain.Alert) bool { return a.Status == status })
}

// ListAlertsBySeverity returns alerts of the given severity, newest first.
func (s *Store) ListAlertsBySeverity(severity domain.AlertSeverity) []domain.Alert {
	return s.filterAlerts(func(a domain.Alert) bool { return a.Severity == severity })
}

// ListActiveAlerts returns alerts still in the active state, newest first.
func (s *Store) ListActiveAlerts() []domain.Alert {
	return s.ListAlertsByStatus(domain.AlertStatusActive)
}

// ListRecentAlerts returns alerts raised within the trailing window of whole
// days, cutoff included, newest first.
func (s *Store) ListRecentAlerts(days int) []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.recentCutoff(days)
	out := make([]domain.Alert, 0)
	for _, a := range s.state.alerts {
		if !a.AlertedAt.Before(cutoff) {
			out = append(out, cloneAlert(a))
		}
	}
	sortNewestFirst(out, func(a domain.Alert) time.Time { return a.AlertedAt })
	return out
}

func (s *Store) filterAlerts(keep func(domain.Alert) bool) []domain.Alert {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Alert, 0)
	for _, a := range s.state.alerts {
		if keep(a) {
			out = append(out, cloneAlert(a))
		}
	}
	sortNewestFirst(out, func(a domain.Alert) time.Time { return a.AlertedAt })
	return out
}

// CreateAlert stores a new alert in the active state, stamping AlertedAt.
func (s *Store) CreateAlert(in domain.AlertInput) (domain.Alert, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.nowFn()
	a := domain.Alert{
		Base:               domain.Base{ID: newID(), CreatedAt: now},
		Title:              in.Title,
		Description:        in.Description,
		Severity:           in.Severity,
		Status:             domain.AlertStatusActive,
		PHCID:              in.PHCID,
		AffectedPopulation: in.AffectedPopulation,
		EstimatedCases:     in.EstimatedCases,
		Confidence:         in.Confidence,
		RiskFactors:        cloneStrings(in.RiskFactors),
		AlertedAt:          now,
	}
	s.state.alerts[a.ID] = a
	return cloneAlert(a), nil
}

// UpdateAlert applies the non-nil patch fields to the stored record.
func (s *Store) UpdateAlert(id string, patch domain.AlertPatch) (domain.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.alerts[id]
	if !ok {
		return domain.Alert{}, false, nil
	}
	if patch.Title != nil {
		a.Title = *patch.Title
	}
	if patch.Description != nil {
		a.Description = *patch.Description
	}
	if patch.Severity != nil {
		a.Severity = *patch.Severity
	}
	if patch.Status != nil {
		a.Status = *patch.Status
	}
	if patch.PHCID != nil {
		a.PHCID = *patch.PHCID
	}
	if patch.AffectedPopulation != nil {
		a.AffectedPopulation = *patch.AffectedPopulation
	}
	if patch.EstimatedCases != nil {
		a.EstimatedCases = *patch.EstimatedCases
	}
	if patch.Confidence != nil {
		a.Confidence = *patch.Confidence
	}
	if patch.RiskFactors != nil {
		a.RiskFactors = cloneStrings(*patch.RiskFactors)
	}
	if patch.VerifiedAt != nil {
		a.VerifiedAt = clonePtr(patch.VerifiedAt)
	}
	if patch.VerifiedBy != nil {
		a.VerifiedBy = clonePtr(patch.VerifiedBy)
	}
	if patch.ResolvedAt != nil {
		a.ResolvedAt = clonePtr(patch.ResolvedAt)
	}
	if patch.ResolvedBy != nil {
		a.ResolvedBy = clonePtr(patch.ResolvedBy)
	}
	s.state.alerts[id] = a
	return cloneAlert(a), true, nil
}

// VerifyAlert stamps the verifying actor and time and marks the alert
// verified. Repeat calls overwrite the stamp.
func (s *Store) VerifyAlert(id, by string) (domain.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.alerts[id]
	if !ok {
		return domain.Alert{}, false, nil
	}
	now := s.nowFn()
	a.Status = domain.AlertStatusVerified
	a.VerifiedAt = &now
	a.VerifiedBy = &by
	s.state.alerts[id] = a
	return cloneAlert(a), true, nil
}

// ResolveAlert stamps the resolving actor and time and marks the alert
// resolved. Repeat calls overwrite the stamp.
func (s *Store) ResolveAlert(id, by string) (domain.Alert, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	a, ok := s.state.alerts[id]
	if !ok {
		return domain.Alert{}, false, nil
	}
	now := s.nowFn()
	a.Status = domain.AlertStatusResolved
	a.ResolvedAt = &now
	a.ResolvedBy = &by
	s.state.alerts[id] = a
	return cloneAlert(a), true, nil
}

// DeleteAlert removes the record, reporting whether it existed.
func (s *Store) DeleteAlert(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.alerts[id]
	delete(s.state.alerts, id)
	return ok, nil
}

// GetUser returns the user under id, if any.
func (s *Store) GetUser(id string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.state.users[id]
	if !ok {
		return domain.User{}, false
	}
	return cloneUser(u), true
}

// GetUserByEmail returns the user registered under the exact email, if any.
func (s *Store) GetUserByEmail(email string) (domain.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, u := range s.state.users {
		if u.Email == email {
			return cloneUser(u), true
		}
	}
	return domain.User{}, false
}

// ListUsers returns every user ordered by creation time.
func (s *Store) ListUsers() []domain.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.User, 0, len(s.state.users))
	for _, u := range s.state.users {
		out = append(out, cloneUser(u))
	}
	sortByCreation(out, func(u domain.User) domain.Base { return u.Base })
	return out
}

// CreateUser stores a new user, assigning its identity fields.
func (s *Store) CreateUser(in domain.UserInput) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := domain.User{
		Base:     domain.Base{ID: newID(), CreatedAt: s.nowFn()},
		Name:     in.Name,
		Email:    in.Email,
		Role:     in.Role,
		PHCID:    clonePtr(in.PHCID),
		Language: in.Language,
		Phone:    clonePtr(in.Phone),
	}
	if u.Language == "" {
		u.Language = domain.LanguageEnglish
	}
	s.state.users[u.ID] = u
	return cloneUser(u), nil
}

// UpdateUser applies the non-nil patch fields to the stored record.
func (s *Store) UpdateUser(id string, patch domain.UserPatch) (domain.User, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.state.users[id]
	if !ok {
		return domain.User{}, false, nil
	}
	if patch.Name != nil {
		u.Name = *patch.Name
	}
	if patch.Email != nil {
		u.Email = *patch.Email
	}
	if patch.Role != nil {
		u.Role = *patch.Role
	}
	if patch.PHCID != nil {
		u.PHCID = clonePtr(patch.PHCID)
	}
	if patch.Language != nil {
		u.Language = *patch.Language
	}
	if patch.Phone != nil {
		u.Phone = clonePtr(patch.Phone)
	}
	s.state.users[id] = u
	return cloneUser(u), true, nil
}

// DeleteUser removes the record, reporting whether it existed.
func (s *Store) DeleteUser(id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.state.users[id]
	delete(s.state.users, id)
	return ok, nil
}

// ExportState snapshots every repository in a stable order.
func (s *Store) ExportState() domain.Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	snap := domain.Snapshot{
		PHCs:              make([]domain.PHC, 0, len(s.state.phcs)),
		DiseaseReports:    make([]domain.DiseaseReport, 0, len(s.state.reports)),
		WaterQualityTests: make([]domain.WaterQualityTest, 0, len(s.state.tests)),
		Alerts:            make([]domain.Alert, 0, len(s.state.alerts)),
		Users:             make([]domain.User, 0, len(s.state.users)),
	}
	for _, p := range s.state.phcs {
		snap.PHCs = append(snap.PHCs, clonePHC(p))
	}
	for _, r := range s.state.reports {
		snap.DiseaseReports = append(snap.DiseaseReports, cloneDiseaseReport(r))
	}
	for _, w := range s.state.tests {
		snap.WaterQualityTests = append(snap.WaterQualityTests, cloneWaterQualityTest(w))
	}
	for _, a := range s.state.alerts {
		snap.Alerts = append(snap.Alerts, cloneAlert(a))
	}
	for _, u := range s.state.users {
		snap.Users = append(snap.Users, cloneUser(u))
	}
	sortByCreation(snap.PHCs, func(p domain.PHC) domain.Base { return p.Base })
	sortByCreation(snap.DiseaseReports, func(r domain.DiseaseReport) domain.Base { return r.Base })
	sortByCreation(snap.WaterQualityTests, func(w domain.WaterQualityTest) domain.Base { return w.Base })
	sortByCreation(snap.Alerts, func(a domain.Alert) domain.Base { return a.Base })
	sortByCreation(snap.Users, func(u domain.User) domain.Base { return u.Base })
	return snap
}

// ImportState replaces every repository with the snapshot contents.
func (s *Store) ImportState(snap domain.Snapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newState()
	for _, p := range snap.PHCs {
		next.phcs[p.ID] = clonePHC(p)
	}
	for _, r := range snap.DiseaseReports {
		next.reports[r.ID] = cloneDiseaseReport(r)
	}
	for _, w := range snap.WaterQualityTests {
		next.tests[w.ID] = cloneWaterQualityTest(w)
	}
	for _, a := range snap.Alerts {
		next.alerts[a.ID] = cloneAlert(a)
	}
	for _, u := range snap.Users {
		next.users[u.ID] = cloneUser(u)
	}
	s.state = next
	return nil
}
