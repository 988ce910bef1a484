package domain

import "time"

// Store is the persistence contract of the surveillance core. The in-memory
// implementation is the reference; file and relational implementations wrap
// it and must preserve its observable behavior.
//
// Reads return defensive copies and report presence with a boolean. Mutations
// return an error only for backing store failures; absence is reported with
// the boolean, not an error. List results are ordered: recency queries and
// alert listings newest first, plain listings by creation time.
type Store interface {
	GetPHC(id string) (PHC, bool)
	ListPHCs() []PHC
	ListPHCsByState(state string) []PHC
	ListPHCsByDistrict(district string) []PHC
	CreatePHC(in PHCInput) (PHC, error)
	UpdatePHC(id string, patch PHCPatch) (PHC, bool, error)
	DeletePHC(id string) (bool, error)

	GetDiseaseReport(id string) (DiseaseReport, bool)
	ListDiseaseReports() []DiseaseReport
	ListDiseaseReportsByPHC(phcID string) []DiseaseReport
	ListDiseaseReportsByDateRange(start, end time.Time) []DiseaseReport
	ListRecentDiseaseReports(days int) []DiseaseReport
	CreateDiseaseReport(in DiseaseReportInput) (DiseaseReport, error)
	UpdateDiseaseReport(id string, patch DiseaseReportPatch) (DiseaseReport, bool, error)
	DeleteDiseaseReport(id string) (bool, error)

	GetWaterQualityTest(id string) (WaterQualityTest, bool)
	ListWaterQualityTests() []WaterQualityTest
	ListWaterQualityTestsByPHC(phcID string) []WaterQualityTest
	ListWaterQualityTestsByDateRange(start, end time.Time) []WaterQualityTest
	ListRecentWaterQualityTests(days int) []WaterQualityTest
	CreateWaterQualityTest(in WaterQualityTestInput) (WaterQualityTest, error)
	UpdateWaterQualityTest(id string, patch WaterQualityTestPatch) (WaterQualityTest, bool, error)
	DeleteWaterQualityTest(id string) (bool, error)

	GetAlert(id string) (Alert, bool)
	ListAlerts() []Alert
	ListAlertsByPHC(phcID string) []Alert
	ListAlertsByStatus(status AlertStatus) []Alert
	ListAlertsBySeverity(severity AlertSeverity) []Alert
	ListActiveAlerts() []Alert
	ListRecentAlerts(days int) []Alert
	CreateAlert(in AlertInput) (Alert, error)
	UpdateAlert(id string, patch AlertPatch) (Alert, bool, error)
	// VerifyAlert stamps the verifying actor and time and moves the alert to
	// verified. ResolveAlert does the same for resolution. Both overwrite any
	// previous stamp; lifecycle legality is the caller's concern.
	VerifyAlert(id, by string) (Alert, bool, error)
	ResolveAlert(id, by string) (Alert, bool, error)
	DeleteAlert(id string) (bool, error)

	GetUser(id string) (User, bool)
	GetUserByEmail(email string) (User, bool)
	ListUsers() []User
	CreateUser(in UserInput) (User, error)
	UpdateUser(id string, patch UserPatch) (User, bool, error)
	DeleteUser(id string) (bool, error)

	// ExportState snapshots every repository; ImportState replaces them
	// wholesale. Used by persistence wrappers and seed loading.
	ExportState() Snapshot
	ImportState(Snapshot) error
}

// Snapshot is a full copy of every repository, suitable for serialization.
type Snapshot struct {
	PHCs              []PHC              `json:"phcs"`
	DiseaseReports    []DiseaseReport    `json:"disease_reports"`
	WaterQualityTests []WaterQualityTest `json:"water_quality_tests"`
	Alerts            []Alert            `json:"alerts"`
	Users             []User             `json:"users"`
}
