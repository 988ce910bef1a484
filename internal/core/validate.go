package core

import (
	"net/mail"
	"strings"
	"time"

	"jalsuraksha/pkg/domain"
)

// violations accumulates field errors while an input is checked.
type violations struct {
	fields []domain.FieldError
}

func (v *violations) add(field, message string) {
	v.fields = append(v.fields, domain.FieldError{Field: field, Message: message})
}

func (v *violations) err() error {
	if len(v.fields) == 0 {
		return nil
	}
	return domain.ValidationErrors{Fields: v.fields}
}

func (v *violations) requireString(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required")
	}
}

func (v *violations) requireDate(field string, value time.Time) {
	if value.IsZero() {
		v.add(field, "required")
	}
}

func (v *violations) checkLatitude(value float64) {
	if value < -90 || value > 90 {
		v.add("latitude", "must be between -90 and 90")
	}
}

func (v *violations) checkLongitude(value float64) {
	if value < -180 || value > 180 {
		v.add("longitude", "must be between -180 and 180")
	}
}

func (v *violations) checkPositive(field string, value int) {
	if value < 1 {
		v.add(field, "must be at least 1")
	}
}

func (v *violations) checkNonNegative(field string, value *float64) {
	if value != nil && *value < 0 {
		v.add(field, "must not be negative")
	}
}

func (v *violations) checkEmail(field, value string) {
	if strings.TrimSpace(value) == "" {
		v.add(field, "required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.add(field, "invalid email address")
	}
}

func validPHCStatus(s domain.PHCStatus) bool {
	switch s {
	case domain.PHCStatusActive, domain.PHCStatusInactive:
		return true
	}
	return false
}

func validDiseaseType(d domain.DiseaseType) bool {
	switch d {
	case domain.DiseaseCholera, domain.DiseaseDiarrhea, domain.DiseaseTyphoid,
		domain.DiseaseHepatitisA, domain.DiseaseDysentery, domain.DiseaseGastroenteritis:
		return true
	}
	return false
}

func validAgeGroup(a domain.AgeGroup) bool {
	switch a {
	case domain.AgeGroupChild, domain.AgeGroupSchool, domain.AgeGroupAdult, domain.AgeGroupSenior:
		return true
	}
	return false
}

func validReportSeverity(s domain.ReportSeverity) bool {
	switch s {
	case domain.ReportSeverityMild, domain.ReportSeverityModerate, domain.ReportSeveritySevere:
		return true
	}
	return false
}

func validWaterSource(s domain.WaterSource) bool {
	switch s {
	case domain.SourceBorewell, domain.SourceHandPump, domain.SourceRiver,
		domain.SourcePond, domain.SourceMunicipalSupply, domain.SourceOther:
		return true
	}
	return false
}

func validWaterTestStatus(s domain.WaterTestStatus) bool {
	switch s {
	case domain.WaterTestSafe, domain.WaterTestContaminated, domain.WaterTestPending:
		return true
	}
	return false
}

func validAlertSeverity(s domain.AlertSeverity) bool {
	switch s {
	case domain.AlertSeverityLow, domain.AlertSeverityMedium, domain.AlertSeverityHigh, domain.AlertSeverityCritical:
		return true
	}
	return false
}

func validUserRole(r domain.UserRole) bool {
	switch r {
	case domain.RoleAdmin, domain.RolePHCWorker, domain.RoleDataEntry, domain.RoleViewer:
		return true
	}
	return false
}

func validLanguage(l domain.Language) bool {
	switch l {
	case domain.LanguageEnglish, domain.LanguageAssamese, domain.LanguageBengali:
		return true
	}
	return false
}

func validatePHCInput(in domain.PHCInput) error {
	var v violations
	v.requireString("name", in.Name)
	v.requireString("district", in.District)
	v.requireString("state", in.State)
	v.checkLatitude(in.Latitude)
	v.checkLongitude(in.Longitude)
	if in.Status != "" && !validPHCStatus(in.Status) {
		v.add("status", "invalid value")
	}
	return v.err()
}

func validatePHCPatch(patch domain.PHCPatch) error {
	var v violations
	if patch.Name != nil {
		v.requireString("name", *patch.Name)
	}
	if patch.District != nil {
		v.requireString("district", *patch.District)
	}
	if patch.State != nil {
		v.requireString("state", *patch.State)
	}
	if patch.Latitude != nil {
		v.checkLatitude(*patch.Latitude)
	}
	if patch.Longitude != nil {
		v.checkLongitude(*patch.Longitude)
	}
	if patch.Status != nil && !validPHCStatus(*patch.Status) {
		v.add("status", "invalid value")
	}
	return v.err()
}

func validateDiseaseReportInput(in domain.DiseaseReportInput) error {
	var v violations
	v.requireString("phc_id", in.PHCID)
	v.requireDate("report_date", in.ReportDate)
	if !validDiseaseType(in.DiseaseType) {
		v.add("disease_type", "invalid value")
	}
	v.checkPositive("case_count", in.CaseCount)
	if !validAgeGroup(in.AgeGroup) {
		v.add("age_group", "invalid value")
	}
	if !validReportSeverity(in.Severity) {
		v.add("severity", "invalid value")
	}
	v.requireString("reported_by", in.ReportedBy)
	return v.err()
}

func validateDiseaseReportPatch(patch domain.DiseaseReportPatch) error {
	var v violations
	if patch.PHCID != nil {
		v.requireString("phc_id", *patch.PHCID)
	}
	if patch.ReportDate != nil {
		v.requireDate("report_date", *patch.ReportDate)
	}
	if patch.DiseaseType != nil && !validDiseaseType(*patch.DiseaseType) {
		v.add("disease_type", "invalid value")
	}
	if patch.CaseCount != nil {
		v.checkPositive("case_count", *patch.CaseCount)
	}
	if patch.AgeGroup != nil && !validAgeGroup(*patch.AgeGroup) {
		v.add("age_group", "invalid value")
	}
	if patch.Severity != nil && !validReportSeverity(*patch.Severity) {
		v.add("severity", "invalid value")
	}
	if patch.ReportedBy != nil {
		v.requireString("reported_by", *patch.ReportedBy)
	}
	return v.err()
}

func validateWaterQualityTestInput(in domain.WaterQualityTestInput) error {
	var v violations
	v.requireString("phc_id", in.PHCID)
	v.requireDate("test_date", in.TestDate)
	v.requireString("location", in.Location)
	if !validWaterSource(in.Source) {
		v.add("source", "invalid value")
	}
	if in.PHValue != nil && (*in.PHValue < 0 || *in.PHValue > 14) {
		v.add("ph_value", "must be between 0 and 14")
	}
	v.checkNonNegative("turbidity", in.Turbidity)
	v.checkNonNegative("bacterial_count", in.BacterialCount)
	v.checkNonNegative("chlorine_level", in.ChlorineLevel)
	v.requireString("tested_by", in.TestedBy)
	if in.Status != "" && !validWaterTestStatus(in.Status) {
		v.add("status", "invalid value")
	}
	return v.err()
}

func validateWaterQualityTestPatch(patch domain.WaterQualityTestPatch) error {
	var v violations
	if patch.PHCID != nil {
		v.requireString("phc_id", *patch.PHCID)
	}
	if patch.TestDate != nil {
		v.requireDate("test_date", *patch.TestDate)
	}
	if patch.Location != nil {
		v.requireString("location", *patch.Location)
	}
	if patch.Source != nil && !validWaterSource(*patch.Source) {
		v.add("source", "invalid value")
	}
	if patch.PHValue != nil && (*patch.PHValue < 0 || *patch.PHValue > 14) {
		v.add("ph_value", "must be between 0 and 14")
	}
	v.checkNonNegative("turbidity", patch.Turbidity)
	v.checkNonNegative("bacterial_count", patch.BacterialCount)
	v.checkNonNegative("chlorine_level", patch.ChlorineLevel)
	if patch.TestedBy != nil {
		v.requireString("tested_by", *patch.TestedBy)
	}
	if patch.Status != nil && !validWaterTestStatus(*patch.Status) {
		v.add("status", "invalid value")
	}
	return v.err()
}

func validateAlertInput(in domain.AlertInput) error {
	var v violations
	v.requireString("title", in.Title)
	v.requireString("description", in.Description)
	if !validAlertSeverity(in.Severity) {
		v.add("severity", "invalid value")
	}
	v.requireString("phc_id", in.PHCID)
	v.checkPositive("affected_population", in.AffectedPopulation)
	v.checkPositive("estimated_cases", in.EstimatedCases)
	if in.Confidence < 0 || in.Confidence > 100 {
		v.add("confidence", "must be between 0 and 100")
	}
	return v.err()
}

// validateAlertPatch checks field values and the pairing of verification and
// resolution stamps; lifecycle legality is checked separately against the
// current record.
func validateAlertPatch(patch domain.AlertPatch) error {
	var v violations
	if patch.Title != nil {
		v.requireString("title", *patch.Title)
	}
	if patch.Description != nil {
		v.requireString("description", *patch.Description)
	}
	if patch.Severity != nil && !validAlertSeverity(*patch.Severity) {
		v.add("severity", "invalid value")
	}
	if patch.Status != nil && !domain.KnownAlertStatus(*patch.Status) {
		v.add("status", "invalid value")
	}
	if patch.PHCID != nil {
		v.requireString("phc_id", *patch.PHCID)
	}
	if patch.AffectedPopulation != nil {
		v.checkPositive("affected_population", *patch.AffectedPopulation)
	}
	if patch.EstimatedCases != nil {
		v.checkPositive("estimated_cases", *patch.EstimatedCases)
	}
	if patch.Confidence != nil && (*patch.Confidence < 0 || *patch.Confidence > 100) {
		v.add("confidence", "must be between 0 and 100")
	}
	if (patch.VerifiedAt == nil) != (patch.VerifiedBy == nil) {
		v.add("verified_at", "must be set together with verified_by")
	}
	if (patch.ResolvedAt == nil) != (patch.ResolvedBy == nil) {
		v.add("resolved_at", "must be set together with resolved_by")
	}
	return v.err()
}

func validateUserInput(in domain.UserInput) error {
	var v violations
	v.requireString("name", in.Name)
	v.checkEmail("email", in.Email)
	if !validUserRole(in.Role) {
		v.add("role", "invalid value")
	}
	if in.Language != "" && !validLanguage(in.Language) {
		v.add("language", "invalid value")
	}
	return v.err()
}

func validateUserPatch(patch domain.UserPatch) error {
	var v violations
	if patch.Name != nil {
		v.requireString("name", *patch.Name)
	}
	if patch.Email != nil {
		v.checkEmail("email", *patch.Email)
	}
	if patch.Role != nil && !validUserRole(*patch.Role) {
		v.add("role", "invalid value")
	}
	if patch.Language != nil && !validLanguage(*patch.Language) {
		v.add("language", "invalid value")
	}
	return v.err()
}

func validateDays(days int) error {
	if days < 0 {
		var v violations
		v.add("days", "must be a positive number")
		return v.err()
	}
	return nil
}

func validateDateRange(start, end time.Time) error {
	var v violations
	v.requireDate("start_date", start)
	v.requireDate("end_date", end)
	if len(v.fields) == 0 && start.After(end) {
		v.add("start_date", "must not be after end_date")
	}
	return v.err()
}
