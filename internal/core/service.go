// Package core implements the surveillance service: the validation boundary,
// the alert lifecycle guard, the dashboard summary, and storage selection.
package core

import (
	"context"
	"time"

	"jalsuraksha/pkg/domain"
)

// Service exposes every operation of the surveillance core over a
// domain.Store. All inputs pass validation before the store is touched; a
// failed validation produces no mutation.
type Service struct {
	store   domain.Store
	metrics MetricsRecorder
	tracer  Tracer
}

// Option configures a Service.
type Option func(*Service)

// WithMetricsRecorder attaches a metrics recorder observed around every
// operation.
func WithMetricsRecorder(rec MetricsRecorder) Option {
	return func(s *Service) { s.metrics = rec }
}

// WithTracer attaches a tracer opening one span per operation.
func WithTracer(tr Tracer) Option {
	return func(s *Service) { s.tracer = tr }
}

// NewService wraps the store.
func NewService(store domain.Store, opts ...Option) *Service {
	s := &Service{store: store}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) run(ctx context.Context, operation string, fn func() error) error {
	var span TraceSpan
	if s.tracer != nil {
		ctx, span = s.tracer.Start(ctx, operation)
	}
	started := time.Now()
	err := fn()
	if s.metrics != nil {
		s.metrics.Observe(ctx, operation, err == nil, time.Since(started))
	}
	if span != nil {
		span.End(err)
	}
	return err
}

// CreatePHC validates and stores a new health center.
func (s *Service) CreatePHC(ctx context.Context, in domain.PHCInput) (domain.PHC, error) {
	var out domain.PHC
	err := s.run(ctx, "create_phc", func() error {
		if err := validatePHCInput(in); err != nil {
			return err
		}
		var err error
		out, err = s.store.CreatePHC(in)
		return err
	})
	return out, err
}

// GetPHC fetches a health center by id.
func (s *Service) GetPHC(ctx context.Context, id string) (domain.PHC, error) {
	var out domain.PHC
	err := s.run(ctx, "get_phc", func() error {
		p, ok := s.store.GetPHC(id)
		if !ok {
			return domain.NotFoundError{Entity: "phc", ID: id}
		}
		out = p
		return nil
	})
	return out, err
}

// ListPHCs lists every health center.
func (s *Service) ListPHCs(ctx context.Context) ([]domain.PHC, error) {
	var out []domain.PHC
	err := s.run(ctx, "list_phcs", func() error {
		out = s.store.ListPHCs()
		return nil
	})
	return out, err
}

// ListPHCsByState lists health centers in a state.
func (s *Service) ListPHCsByState(ctx context.Context, state string) ([]domain.PHC, error) {
	var out []domain.PHC
	err := s.run(ctx, "list_phcs_by_state", func() error {
		out = s.store.ListPHCsByState(state)
		return nil
	})
	return out, err
}

// ListPHCsByDistrict lists health centers in a district.
func (s *Service) ListPHCsByDistrict(ctx context.Context, district string) ([]domain.PHC, error) {
	var out []domain.PHC
	err := s.run(ctx, "list_phcs_by_district", func() error {
		out = s.store.ListPHCsByDistrict(district)
		return nil
	})
	return out, err
}

// UpdatePHC validates and applies a partial update.
func (s *Service) UpdatePHC(ctx context.Context, id string, patch domain.PHCPatch) (domain.PHC, error) {
	var out domain.PHC
	err := s.run(ctx, "update_phc", func() error {
		if err := validatePHCPatch(patch); err != nil {
			return err
		}
		updated, ok, err := s.store.UpdatePHC(id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "phc", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// DeletePHC removes a health center.
func (s *Service) DeletePHC(ctx context.Context, id string) error {
	return s.run(ctx, "delete_phc", func() error {
		ok, err := s.store.DeletePHC(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "phc", ID: id}
		}
		return nil
	})
}

// CreateDiseaseReport validates and stores a new disease report.
func (s *Service) CreateDiseaseReport(ctx context.Context, in domain.DiseaseReportInput) (domain.DiseaseReport, error) {
	var out domain.DiseaseReport
	err := s.run(ctx, "create_disease_report", func() error {
		if err := validateDiseaseReportInput(in); err != nil {
			return err
		}
		var err error
		out, err = s.store.CreateDiseaseReport(in)
		return err
	})
	return out, err
}

// GetDiseaseReport fetches a disease report by id.
func (s *Service) GetDiseaseReport(ctx context.Context, id string) (domain.DiseaseReport, error) {
	var out domain.DiseaseReport
	err := s.run(ctx, "get_disease_report", func() error {
		r, ok := s.store.GetDiseaseReport(id)
		if !ok {
			return domain.NotFoundError{Entity: "disease report", ID: id}
		}
		out = r
		return nil
	})
	return out, err
}

// ListDiseaseReports lists every disease report.
func (s *Service) ListDiseaseReports(ctx context.Context) ([]domain.DiseaseReport, error) {
	var out []domain.DiseaseReport
	err := s.run(ctx, "list_disease_reports", func() error {
		out = s.store.ListDiseaseReports()
		return nil
	})
	return out, err
}

// ListDiseaseReportsByPHC lists reports filed by a health center.
func (s *Service) ListDiseaseReportsByPHC(ctx context.Context, phcID string) ([]domain.DiseaseReport, error) {
	var out []domain.DiseaseReport
	err := s.run(ctx, "list_disease_reports_by_phc", func() error {
		out = s.store.ListDiseaseReportsByPHC(phcID)
		return nil
	})
	return out, err
}

// ListDiseaseReportsByDateRange lists reports within [start, end].
func (s *Service) ListDiseaseReportsByDateRange(ctx context.Context, start, end time.Time) ([]domain.DiseaseReport, error) {
	var out []domain.DiseaseReport
	err := s.run(ctx, "list_disease_reports_by_date_range", func() error {
		if err := validateDateRange(start, end); err != nil {
			return err
		}
		out = s.store.ListDiseaseReportsByDateRange(start, end)
		return nil
	})
	return out, err
}

// ListRecentDiseaseReports lists reports from the trailing window; zero days
// means the default seven.
func (s *Service) ListRecentDiseaseReports(ctx context.Context, days int) ([]domain.DiseaseReport, error) {
	var out []domain.DiseaseReport
	err := s.run(ctx, "list_recent_disease_reports", func() error {
		if err := validateDays(days); err != nil {
			return err
		}
		out = s.store.ListRecentDiseaseReports(days)
		return nil
	})
	return out, err
}

// UpdateDiseaseReport validates and applies a partial update.
func (s *Service) UpdateDiseaseReport(ctx context.Context, id string, patch domain.DiseaseReportPatch) (domain.DiseaseReport, error) {
	var out domain.DiseaseReport
	err := s.run(ctx, "update_disease_report", func() error {
		if err := validateDiseaseReportPatch(patch); err != nil {
			return err
		}
		updated, ok, err := s.store.UpdateDiseaseReport(id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "disease report", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// DeleteDiseaseReport removes a disease report.
func (s *Service) DeleteDiseaseReport(ctx context.Context, id string) error {
	return s.run(ctx, "delete_disease_report", func() error {
		ok, err := s.store.DeleteDiseaseReport(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "disease report", ID: id}
		}
		return nil
	})
}

// CreateWaterQualityTest validates and stores a new water test.
func (s *Service) CreateWaterQualityTest(ctx context.Context, in domain.WaterQualityTestInput) (domain.WaterQualityTest, error) {
	var out domain.WaterQualityTest
	err := s.run(ctx, "create_water_quality_test", func() error {
		if err := validateWaterQualityTestInput(in); err != nil {
			return err
		}
		var err error
		out, err = s.store.CreateWaterQualityTest(in)
		return err
	})
	return out, err
}

// GetWaterQualityTest fetches a water test by id.
func (s *Service) GetWaterQualityTest(ctx context.Context, id string) (domain.WaterQualityTest, error) {
	var out domain.WaterQualityTest
	err := s.run(ctx, "get_water_quality_test", func() error {
		w, ok := s.store.GetWaterQualityTest(id)
		if !ok {
			return domain.NotFoundError{Entity: "water quality test", ID: id}
		}
		out = w
		return nil
	})
	return out, err
}

// ListWaterQualityTests lists every water test.
func (s *Service) ListWaterQualityTests(ctx context.Context) ([]domain.WaterQualityTest, error) {
	var out []domain.WaterQualityTest
	err := s.run(ctx, "list_water_quality_tests", func() error {
		out = s.store.ListWaterQualityTests()
		return nil
	})
	return out, err
}

// ListWaterQualityTestsByPHC lists tests sampled by a health center.
func (s *Service) ListWaterQualityTestsByPHC(ctx context.Context, phcID string) ([]domain.WaterQualityTest, error) {
	var out []domain.WaterQualityTest
	err := s.run(ctx, "list_water_quality_tests_by_phc", func() error {
		out = s.store.ListWaterQualityTestsByPHC(phcID)
		return nil
	})
	return out, err
}

// ListWaterQualityTestsByDateRange lists tests within [start, end].
func (s *Service) ListWaterQualityTestsByDateRange(ctx context.Context, start, end time.Time) ([]domain.WaterQualityTest, error) {
	var out []domain.WaterQualityTest
	err := s.run(ctx, "list_water_quality_tests_by_date_range", func() error {
		if err := validateDateRange(start, end); err != nil {
			return err
		}
		out = s.store.ListWaterQualityTestsByDateRange(start, end)
		return nil
	})
	return out, err
}

// ListRecentWaterQualityTests lists tests from the trailing window; zero days
// means the default seven.
func (s *Service) ListRecentWaterQualityTests(ctx context.Context, days int) ([]domain.WaterQualityTest, error) {
	var out []domain.WaterQualityTest
	err := s.run(ctx, "list_recent_water_quality_tests", func() error {
		if err := validateDays(days); err != nil {
			return err
		}
		out = s.store.ListRecentWaterQualityTests(days)
		return nil
	})
	return out, err
}

// UpdateWaterQualityTest validates and applies a partial update.
func (s *Service) UpdateWaterQualityTest(ctx context.Context, id string, patch domain.WaterQualityTestPatch) (domain.WaterQualityTest, error) {
	var out domain.WaterQualityTest
	err := s.run(ctx, "update_water_quality_test", func() error {
		if err := validateWaterQualityTestPatch(patch); err != nil {
			return err
		}
		updated, ok, err := s.store.UpdateWaterQualityTest(id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "water quality test", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// DeleteWaterQualityTest removes a water test.
func (s *Service) DeleteWaterQualityTest(ctx context.Context, id string) error {
	return s.run(ctx, "delete_water_quality_test", func() error {
		ok, err := s.store.DeleteWaterQualityTest(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "water quality test", ID: id}
		}
		return nil
	})
}

// CreateAlert validates and raises a new alert in the active state.
func (s *Service) CreateAlert(ctx context.Context, in domain.AlertInput) (domain.Alert, error) {
	var out domain.Alert
	err := s.run(ctx, "create_alert", func() error {
		if err := validateAlertInput(in); err != nil {
			return err
		}
		var err error
		out, err = s.store.CreateAlert(in)
		return err
	})
	return out, err
}

// GetAlert fetches an alert by id.
func (s *Service) GetAlert(ctx context.Context, id string) (domain.Alert, error) {
	var out domain.Alert
	err := s.run(ctx, "get_alert", func() error {
		a, ok := s.store.GetAlert(id)
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		out = a
		return nil
	})
	return out, err
}

// ListAlerts lists every alert.
func (s *Service) ListAlerts(ctx context.Context) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_alerts", func() error {
		out = s.store.ListAlerts()
		return nil
	})
	return out, err
}

// ListAlertsByPHC lists alerts raised for a health center.
func (s *Service) ListAlertsByPHC(ctx context.Context, phcID string) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_alerts_by_phc", func() error {
		out = s.store.ListAlertsByPHC(phcID)
		return nil
	})
	return out, err
}

// ListAlertsByStatus lists alerts in a lifecycle state.
func (s *Service) ListAlertsByStatus(ctx context.Context, status domain.AlertStatus) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_alerts_by_status", func() error {
		if !domain.KnownAlertStatus(status) {
			var v violations
			v.add("status", "invalid value")
			return v.err()
		}
		out = s.store.ListAlertsByStatus(status)
		return nil
	})
	return out, err
}

// ListAlertsBySeverity lists alerts of a severity.
func (s *Service) ListAlertsBySeverity(ctx context.Context, severity domain.AlertSeverity) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_alerts_by_severity", func() error {
		if !validAlertSeverity(severity) {
			var v violations
			v.add("severity", "invalid value")
			return v.err()
		}
		out = s.store.ListAlertsBySeverity(severity)
		return nil
	})
	return out, err
}

// ListActiveAlerts lists alerts still in the active state.
func (s *Service) ListActiveAlerts(ctx context.Context) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_active_alerts", func() error {
		out = s.store.ListActiveAlerts()
		return nil
	})
	return out, err
}

// ListRecentAlerts lists alerts raised within the trailing window; zero days
// means the default seven.
func (s *Service) ListRecentAlerts(ctx context.Context, days int) ([]domain.Alert, error) {
	var out []domain.Alert
	err := s.run(ctx, "list_recent_alerts", func() error {
		if err := validateDays(days); err != nil {
			return err
		}
		out = s.store.ListRecentAlerts(days)
		return nil
	})
	return out, err
}

// UpdateAlert validates and applies a partial update. Status changes pass
// the lifecycle guard; a direct move into verified or resolved must carry the
// matching actor and timestamp when the record lacks them.
func (s *Service) UpdateAlert(ctx context.Context, id string, patch domain.AlertPatch) (domain.Alert, error) {
	var out domain.Alert
	err := s.run(ctx, "update_alert", func() error {
		if err := validateAlertPatch(patch); err != nil {
			return err
		}
		current, ok := s.store.GetAlert(id)
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		if patch.Status != nil {
			if err := domain.CheckAlertTransition(id, current.Status, *patch.Status); err != nil {
				return err
			}
			var v violations
			if *patch.Status == domain.AlertStatusVerified && current.VerifiedAt == nil && patch.VerifiedBy == nil {
				v.add("verified_by", "required when status becomes verified")
			}
			if *patch.Status == domain.AlertStatusResolved && current.ResolvedAt == nil && patch.ResolvedBy == nil {
				v.add("resolved_by", "required when status becomes resolved")
			}
			if err := v.err(); err != nil {
				return err
			}
		}
		updated, ok, err := s.store.UpdateAlert(id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// VerifyAlert moves an alert to verified, stamping the acting verifier.
// Re-verifying a verified alert refreshes the stamp; verifying a terminal
// alert is rejected.
func (s *Service) VerifyAlert(ctx context.Context, id, by string) (domain.Alert, error) {
	var out domain.Alert
	err := s.run(ctx, "verify_alert", func() error {
		var v violations
		v.requireString("verified_by", by)
		if err := v.err(); err != nil {
			return err
		}
		current, ok := s.store.GetAlert(id)
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		if err := domain.CheckAlertTransition(id, current.Status, domain.AlertStatusVerified); err != nil {
			return err
		}
		updated, ok, err := s.store.VerifyAlert(id, by)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// ResolveAlert moves an alert to resolved, stamping the acting resolver.
// Resolution is allowed straight from active; a false-alarm alert is frozen.
func (s *Service) ResolveAlert(ctx context.Context, id, by string) (domain.Alert, error) {
	var out domain.Alert
	err := s.run(ctx, "resolve_alert", func() error {
		var v violations
		v.requireString("resolved_by", by)
		if err := v.err(); err != nil {
			return err
		}
		current, ok := s.store.GetAlert(id)
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		if err := domain.CheckAlertTransition(id, current.Status, domain.AlertStatusResolved); err != nil {
			return err
		}
		updated, ok, err := s.store.ResolveAlert(id, by)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// DeleteAlert removes an alert.
func (s *Service) DeleteAlert(ctx context.Context, id string) error {
	return s.run(ctx, "delete_alert", func() error {
		ok, err := s.store.DeleteAlert(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "alert", ID: id}
		}
		return nil
	})
}

// CreateUser validates and registers a new user. Email must be unused.
func (s *Service) CreateUser(ctx context.Context, in domain.UserInput) (domain.User, error) {
	var out domain.User
	err := s.run(ctx, "create_user", func() error {
		if err := validateUserInput(in); err != nil {
			return err
		}
		if _, exists := s.store.GetUserByEmail(in.Email); exists {
			var v violations
			v.add("email", "already registered")
			return v.err()
		}
		var err error
		out, err = s.store.CreateUser(in)
		return err
	})
	return out, err
}

// GetUser fetches a user by id.
func (s *Service) GetUser(ctx context.Context, id string) (domain.User, error) {
	var out domain.User
	err := s.run(ctx, "get_user", func() error {
		u, ok := s.store.GetUser(id)
		if !ok {
			return domain.NotFoundError{Entity: "user", ID: id}
		}
		out = u
		return nil
	})
	return out, err
}

// GetUserByEmail fetches the user registered under the exact email.
func (s *Service) GetUserByEmail(ctx context.Context, email string) (domain.User, error) {
	var out domain.User
	err := s.run(ctx, "get_user_by_email", func() error {
		u, ok := s.store.GetUserByEmail(email)
		if !ok {
			return domain.NotFoundError{Entity: "user", ID: email}
		}
		out = u
		return nil
	})
	return out, err
}

// ListUsers lists every user.
func (s *Service) ListUsers(ctx context.Context) ([]domain.User, error) {
	var out []domain.User
	err := s.run(ctx, "list_users", func() error {
		out = s.store.ListUsers()
		return nil
	})
	return out, err
}

// UpdateUser validates and applies a partial update. A patched email must
// not collide with another user.
func (s *Service) UpdateUser(ctx context.Context, id string, patch domain.UserPatch) (domain.User, error) {
	var out domain.User
	err := s.run(ctx, "update_user", func() error {
		if err := validateUserPatch(patch); err != nil {
			return err
		}
		if patch.Email != nil {
			if existing, ok := s.store.GetUserByEmail(*patch.Email); ok && existing.ID != id {
				var v violations
				v.add("email", "already registered")
				return v.err()
			}
		}
		updated, ok, err := s.store.UpdateUser(id, patch)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "user", ID: id}
		}
		out = updated
		return nil
	})
	return out, err
}

// DeleteUser removes a user.
func (s *Service) DeleteUser(ctx context.Context, id string) error {
	return s.run(ctx, "delete_user", func() error {
		ok, err := s.store.DeleteUser(id)
		if err != nil {
			return err
		}
		if !ok {
			return domain.NotFoundError{Entity: "user", ID: id}
		}
		return nil
	})
}
