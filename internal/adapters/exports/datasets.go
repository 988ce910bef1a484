// Package exports renders surveillance datasets to blob artifacts through an
// asynchronous worker.
package exports

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"jalsuraksha/internal/core"
)

// Dataset identifies an exportable surveillance dataset.
type Dataset string

const (
	DatasetDiseaseReports   Dataset = "disease_reports"
	DatasetWaterTests       Dataset = "water_tests"
	DatasetAlerts           Dataset = "alerts"
	DatasetDashboardSummary Dataset = "dashboard_summary"
)

// Format identifies an artifact encoding.
type Format string

const (
	FormatJSON Format = "json"
	FormatCSV  Format = "csv"
)

// KnownDataset reports whether d names an exportable dataset.
func KnownDataset(d Dataset) bool {
	switch d {
	case DatasetDiseaseReports, DatasetWaterTests, DatasetAlerts, DatasetDashboardSummary:
		return true
	}
	return false
}

// KnownFormat reports whether f names a supported encoding.
func KnownFormat(f Format) bool {
	return f == FormatJSON || f == FormatCSV
}

// tabular is a rendered dataset: a fixed column order plus row maps keyed by
// column name.
type tabular struct {
	Columns []string
	Rows    []map[string]any
}

func renderDataset(ctx context.Context, svc *core.Service, dataset Dataset) (tabular, error) {
	switch dataset {
	case DatasetDiseaseReports:
		reports, err := svc.ListDiseaseReports(ctx)
		if err != nil {
			return tabular{}, err
		}
		out := tabular{Columns: []string{
			"id", "phc_id", "report_date", "disease_type", "case_count",
			"age_group", "severity", "reported_by", "verified", "created_at",
		}}
		for _, r := range reports {
			out.Rows = append(out.Rows, map[string]any{
				"id":           r.ID,
				"phc_id":       r.PHCID,
				"report_date":  r.ReportDate,
				"disease_type": string(r.DiseaseType),
				"case_count":   r.CaseCount,
				"age_group":    string(r.AgeGroup),
				"severity":     string(r.Severity),
				"reported_by":  r.ReportedBy,
				"verified":     r.Verified,
				"created_at":   r.CreatedAt,
			})
		}
		return out, nil
	case DatasetWaterTests:
		tests, err := svc.ListWaterQualityTests(ctx)
		if err != nil {
			return tabular{}, err
		}
		out := tabular{Columns: []string{
			"id", "phc_id", "test_date", "location", "source", "ph_value",
			"turbidity", "bacterial_count", "chlorine_level", "status",
			"tested_by", "created_at",
		}}
		for _, w := range tests {
			out.Rows = append(out.Rows, map[string]any{
				"id":              w.ID,
				"phc_id":          w.PHCID,
				"test_date":       w.TestDate,
				"location":        w.Location,
				"source":          string(w.Source),
				"ph_value":        w.PHValue,
				"turbidity":       w.Turbidity,
				"bacterial_count": w.BacterialCount,
				"chlorine_level":  w.ChlorineLevel,
				"status":          string(w.Status),
				"tested_by":       w.TestedBy,
				"created_at":      w.CreatedAt,
			})
		}
		return out, nil
	case DatasetAlerts:
		alerts, err := svc.ListAlerts(ctx)
		if err != nil {
			return tabular{}, err
		}
		out := tabular{Columns: []string{
			"id", "title", "severity", "status", "phc_id",
			"affected_population", "estimated_cases", "confidence",
			"alerted_at", "verified_by", "resolved_by",
		}}
		for _, a := range alerts {
			out.Rows = append(out.Rows, map[string]any{
				"id":                  a.ID,
				"title":               a.Title,
				"severity":            string(a.Severity),
				"status":              string(a.Status),
				"phc_id":              a.PHCID,
				"affected_population": a.AffectedPopulation,
				"estimated_cases":     a.EstimatedCases,
				"confidence":          a.Confidence,
				"alerted_at":          a.AlertedAt,
				"verified_by":         a.VerifiedBy,
				"resolved_by":         a.ResolvedBy,
			})
		}
		return out, nil
	case DatasetDashboardSummary:
		summary, err := svc.DashboardSummary(ctx)
		if err != nil {
			return tabular{}, err
		}
		return tabular{
			Columns: []string{
				"total_phcs", "active_alerts", "recent_disease_reports",
				"recent_water_tests", "critical_alerts", "high_risk_phcs",
			},
			Rows: []map[string]any{{
				"total_phcs":             summary.TotalPHCs,
				"active_alerts":          summary.ActiveAlerts,
				"recent_disease_reports": summary.RecentDiseaseReports,
				"recent_water_tests":     summary.RecentWaterTests,
				"critical_alerts":        summary.CriticalAlerts,
				"high_risk_phcs":         summary.HighRiskPHCs,
			}},
		}, nil
	default:
		return tabular{}, fmt.Errorf("unknown dataset %s", dataset)
	}
}

func formatCell(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case *float64:
		if val == nil {
			return ""
		}
		return strconv.FormatFloat(*val, 'f', -1, 64)
	case *string:
		if val == nil {
			return ""
		}
		return *val
	case time.Time:
		return val.UTC().Format(time.RFC3339)
	default:
		return fmt.Sprint(val)
	}
}
