package core

import (
	"context"

	"jalsuraksha/pkg/domain"
)

// DashboardSummary aggregates the headline counters shown on the monitoring
// dashboard. Recency counters use the default seven-day window; high-risk
// health centers are the distinct centers referenced by active alerts.
func (s *Service) DashboardSummary(ctx context.Context) (domain.DashboardSummary, error) {
	var out domain.DashboardSummary
	err := s.run(ctx, "dashboard_summary", func() error {
		phcs := s.store.ListPHCs()
		active := s.store.ListActiveAlerts()
		reports := s.store.ListRecentDiseaseReports(0)
		tests := s.store.ListRecentWaterQualityTests(0)

		critical := 0
		highRisk := make(map[string]struct{}, len(active))
		for _, alert := range active {
			if alert.Severity == domain.AlertSeverityCritical {
				critical++
			}
			highRisk[alert.PHCID] = struct{}{}
		}

		out = domain.DashboardSummary{
			TotalPHCs:            len(phcs),
			ActiveAlerts:         len(active),
			RecentDiseaseReports: len(reports),
			RecentWaterTests:     len(tests),
			CriticalAlerts:       critical,
			HighRiskPHCs:         len(highRisk),
		}
		return nil
	})
	return out, err
}
