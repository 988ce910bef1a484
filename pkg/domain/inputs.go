package domain

import "time"

// PHCInput carries the caller-supplied fields for creating a health center.
// Status defaults to active when empty.
type PHCInput struct {
	Name         string    `json:"name"`
	District     string    `json:"district"`
	State        string    `json:"state"`
	Latitude     float64   `json:"latitude"`
	Longitude    float64   `json:"longitude"`
	ContactPhone *string   `json:"contact_phone,omitempty"`
	AdminName    *string   `json:"admin_name,omitempty"`
	Status       PHCStatus `json:"status,omitempty"`
}

// PHCPatch updates a subset of health center fields. Nil fields are left
// untouched.
type PHCPatch struct {
	Name         *string    `json:"name,omitempty"`
	District     *string    `json:"district,omitempty"`
	State        *string    `json:"state,omitempty"`
	Latitude     *float64   `json:"latitude,omitempty"`
	Longitude    *float64   `json:"longitude,omitempty"`
	ContactPhone *string    `json:"contact_phone,omitempty"`
	AdminName    *string    `json:"admin_name,omitempty"`
	Status       *PHCStatus `json:"status,omitempty"`
}

// DiseaseReportInput carries the caller-supplied fields for a disease report.
type DiseaseReportInput struct {
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

// DiseaseReportPatch updates a subset of disease report fields.
type DiseaseReportPatch struct {
	PHCID       *string         `json:"phc_id,omitempty"`
	ReportDate  *time.Time      `json:"report_date,omitempty"`
	DiseaseType *DiseaseType    `json:"disease_type,omitempty"`
	CaseCount   *int            `json:"case_count,omitempty"`
	AgeGroup    *AgeGroup       `json:"age_group,omitempty"`
	Severity    *ReportSeverity `json:"severity,omitempty"`
	Symptoms    *string         `json:"symptoms,omitempty"`
	Notes       *string         `json:"notes,omitempty"`
	ReportedBy  *string         `json:"reported_by,omitempty"`
	Verified    *bool           `json:"verified,omitempty"`
}

// WaterQualityTestInput carries the caller-supplied fields for a water test.
// Status defaults to pending when empty.
type WaterQualityTestInput struct {
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
	Status         WaterTestStatus `json:"status,omitempty"`
}

// WaterQualityTestPatch updates a subset of water test fields.
type WaterQualityTestPatch struct {
	PHCID          *string          `json:"phc_id,omitempty"`
	TestDate       *time.Time       `json:"test_date,omitempty"`
	Location       *string          `json:"location,omitempty"`
	Source         *WaterSource     `json:"source,omitempty"`
	PHValue        *float64         `json:"ph_value,omitempty"`
	Turbidity      *float64         `json:"turbidity,omitempty"`
	BacterialCount *float64         `json:"bacterial_count,omitempty"`
	ChlorineLevel  *float64         `json:"chlorine_level,omitempty"`
	Notes          *string          `json:"notes,omitempty"`
	TestedBy       *string          `json:"tested_by,omitempty"`
	Status         *WaterTestStatus `json:"status,omitempty"`
}

// AlertInput carries the caller-supplied fields for raising an alert. New
// alerts always enter the lifecycle in the active state; AlertedAt is
// assigned by the store.
type AlertInput struct {
	Title              string        `json:"title"`
	Description        string        `json:"description"`
	Severity           AlertSeverity `json:"severity"`
	PHCID              string        `json:"phc_id"`
	AffectedPopulation int           `json:"affected_population"`
	EstimatedCases     int           `json:"estimated_cases"`
	Confidence         float64       `json:"confidence"`
	RiskFactors        []string      `json:"risk_factors,omitempty"`
}

// AlertPatch updates a subset of alert fields. Status changes are subject to
// the lifecycle guard; verification and resolution stamps must be patched in
// pairs.
type AlertPatch struct {
	Title              *string        `json:"title,omitempty"`
	Description        *string        `json:"description,omitempty"`
	Severity           *AlertSeverity `json:"severity,omitempty"`
	Status             *AlertStatus   `json:"status,omitempty"`
	PHCID              *string        `json:"phc_id,omitempty"`
	AffectedPopulation *int           `json:"affected_population,omitempty"`
	EstimatedCases     *int           `json:"estimated_cases,omitempty"`
	Confidence         *float64       `json:"confidence,omitempty"`
	RiskFactors        *[]string      `json:"risk_factors,omitempty"`
	VerifiedAt         *time.Time     `json:"verified_at,omitempty"`
	VerifiedBy         *string        `json:"verified_by,omitempty"`
	ResolvedAt         *time.Time     `json:"resolved_at,omitempty"`
	ResolvedBy         *string        `json:"resolved_by,omitempty"`
}

// UserInput carries the caller-supplied fields for registering a user.
// Language defaults to English when empty.
type UserInput struct {
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Role     UserRole `json:"role"`
	PHCID    *string  `json:"phc_id,omitempty"`
	Language Language `json:"language,omitempty"`
	Phone    *string  `json:"phone,omitempty"`
}

// UserPatch updates a subset of user fields.
type UserPatch struct {
	Name     *string   `json:"name,omitempty"`
	Email    *string   `json:"email,omitempty"`
	Role     *UserRole `json:"role,omitempty"`
	PHCID    *string   `json:"phc_id,omitempty"`
	Language *Language `json:"language,omitempty"`
	Phone    *string   `json:"phone,omitempty"`
}
