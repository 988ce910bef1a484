// Package domain defines the entities, inputs, error kinds, and store
// contract of the JalSuraksha water-borne disease surveillance core.
package domain

import "time"

// Base carries the identity fields shared by every stored entity. The store
// assigns both fields at creation time; they never change afterwards.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
}

// PHCStatus describes whether a primary health center is operational.
type PHCStatus string

const (
	PHCStatusActive   PHCStatus = "active"
	PHCStatusInactive PHCStatus = "inactive"
)

// PHC is a primary health center registered with the surveillance network.
type PHC struct {
	Base
	Name         string    `json:"name"`
	District     string    `json:"district"`
	State        string    `json:"state"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	AdminName    *string   `json:"admin_name,omitempty"`
	Status       PHCStatus `json:"status"`
}

// DiseaseType enumerates the water-borne diseases tracked by the network.
type DiseaseType string

const (
	DiseaseCholera         DiseaseType = "cholera"
	DiseaseDiarrhea        DiseaseType = "diarrhea"
	DiseaseTyphoid         DiseaseType = "typhoid"
	DiseaseHepatitisA      DiseaseType = "hepatitis_a"
	DiseaseDysentery       DiseaseType = "dysentery"
	DiseaseGastroenteritis DiseaseType = "gastroenteritis"
)

// AgeGroup buckets the affected population of a disease report.
type AgeGroup string

const (
	AgeGroupChild  AgeGroup = "0-5"
	AgeGroupSchool AgeGroup = "6-18"
	AgeGroupAdult  AgeGroup = "19-60"
	AgeGroupSenior AgeGroup = "60+"
)

// ReportSeverity grades the clinical severity of a disease report.
type ReportSeverity string

const (
	ReportSeverityMild     ReportSeverity = "mild"
	ReportSeverityModerate ReportSeverity = "moderate"
	ReportSeveritySevere   ReportSeverity = "severe"
)

// DiseaseReport records a cluster of cases observed at a health center.
type DiseaseReport struct {
	Base
	PHCID       string         `json:"phc_id"`
	ReportDate  time.Time      `json:"report_date"`
	DiseaseType DiseaseType    `json:"disease_type"`
	CaseCount   int            `json:"case_count"`
	AgeGroup    AgeGroup       `json:"age_group"`
	Severity    ReportSeverity `json:"severity"`
	Symptoms    *string        `json:"symptoms,omitempty"`
	Notes       *string        `json:"notes,omitempty"`
	ReportedBy  string         `json:"reported_by"`
	Verified    bool           `json:"verified"`
}

// WaterSource identifies the kind of water point a quality test sampled.
type WaterSource string

const (
	SourceBorewell        WaterSource = "borewell"
	SourceHandPump        WaterSource = "hand_pump"
	SourceRiver           WaterSource = "river"
	SourcePond            WaterSource = "pond"
	SourceMunicipalSupply WaterSource = "municipal_supply"
	SourceOther           WaterSource = "other"
)

// WaterTestStatus is the assessed outcome of a water quality test.
type WaterTestStatus string

const (
	WaterTestSafe         WaterTestStatus = "safe"
	WaterTestContaminated WaterTestStatus = "contaminated"
	WaterTestPending      WaterTestStatus = "pending"
)

// WaterQualityTest records a field measurement of a local water source.
// Individual readings are optional; a test may carry any subset of them.
type WaterQualityTest struct {
	Base
	PHCID          string          `json:"phc_id"`
	TestDate       time.Time       `json:"test_date"`
	Location       string          `json:"location"`
	Source         WaterSource     `json:"source"`
	PHValue        *float64        `json:"ph_value,omitempty"`
	Turbidity      *float64        `json:"turbidity,omitempty"`
	BacterialCount *float64        `json:"bacterial_count,omitempty"`
	ChlorineLevel  *float64        `json:"chlorine_level,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	TestedBy       string          `json:"tested_by"`
	Status         WaterTestStatus `json:"status"`
}

// AlertSeverity grades the urgency of an outbreak alert.
type AlertSeverity string

const (
	AlertSeverityLow      AlertSeverity = "low"
	AlertSeverityMedium   AlertSeverity = "medium"
	AlertSeverityHigh     AlertSeverity = "high"
	AlertSeverityCritical AlertSeverity = "critical"
)

// AlertStatus is the lifecycle state of an outbreak alert.
type AlertStatus string

const (
	AlertStatusActive     AlertStatus = "active"
	AlertStatusVerified   AlertStatus = "verified"
	AlertStatusResolved   AlertStatus = "resolved"
	AlertStatusFalseAlarm AlertStatus = "false-alarm"
)

// Alert is a potential outbreak signal tied to a health center. VerifiedAt
// and VerifiedBy are populated together, as are ResolvedAt and ResolvedBy.
type Alert struct {
	Base
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Severity           AlertSeverity `json:"severity"`
	Status             AlertStatus   `json:"status"`
	PHCID              string        `json:"phc_id"`
	AffectedPopulation int           `json:"affected_population"`
	EstimatedCases     int           `json:"estimated_cases"`
	Confidence         float64       `json:"confidence"`
	RiskFactors        []string      `json:"risk_factors"`
	AlertedAt          time.Time     `json:"alerted_at"`
	VerifiedAt         *time.Time    `json:"verified_at,omitempty"`
	VerifiedBy         *string       `json:"verified_by,omitempty"`
	ResolvedAt         *time.Time    `json:"resolved_at,omitempty"`
	ResolvedBy         *string       `json:"resolved_by,omitempty"`
}

// UserRole scopes what a user account may do.
type UserRole string

const (
	RoleAdmin     UserRole = "admin"
	RolePHCWorker UserRole = "phc_worker"
	RoleDataEntry UserRole = "data_entry"
	RoleViewer    UserRole = "viewer"
)

// Language is a user's preferred interface language.
type Language string

const (
	LanguageEnglish  Language = "en"
	LanguageAssamese Language = "as"
	LanguageBengali  Language = "bn"
)

// User is an account known to the surveillance network. Email is unique
// across all users.
type User struct {
	Base
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	PHCID    *string  `json:"phc_id,omitempty"`
	Language Language `json:"language"`
	Phone    *string  `json:"phone,omitempty"`
}

// DashboardSummary aggregates network state for the monitoring dashboard.
// Recent counts cover the trailing seven days including the boundary.
type DashboardSummary struct {
	TotalPHCs            int `json:"total_phcs"`
	ActiveAlerts         int `json:"active_alerts"`
	RecentDiseaseReports int `json:"recent_disease_reports"`
	RecentWaterTests     int `json:"recent_water_tests"`
	CriticalAlerts       int `json:"critical_alerts"`
	HighRiskPHCs         int `json:"high_risk_phcs"`
}
