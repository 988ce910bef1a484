// Package sqlite persists the surveillance store in an embedded sqlite file.
// The store wraps the in-memory implementation: reads are served from memory
// and every successful mutation re-persists the affected snapshot buckets.
package sqlite

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"

	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/pkg/domain"
)

// DefaultPath is used when no sqlite path is configured.
const DefaultPath = "./jalsuraksha.db"

const schema = `CREATE TABLE IF NOT EXISTS state (
	bucket TEXT PRIMARY KEY,
	payload BLOB NOT NULL
)`

// Store is a sqlite-backed domain.Store.
type Store struct {
	*memory.Store
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// NewStore opens (or creates) the sqlite file at path and hydrates the
// embedded memory store from it.
func NewStore(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure sqlite schema: %w", err)
	}
	store := &Store{Store: memory.NewStore(), db: db, path: path}
	if err := store.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

// Path returns the sqlite file location backing the store.
func (s *Store) Path() string { return s.path }

// Close releases the underlying database handle.
func (s *Store) Close() error { return s.db.Close() }

func (s *Store) load() error {
	rows, err := s.db.Query(`SELECT bucket, payload FROM state`)
	if err != nil {
		return fmt.Errorf("load state: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var snap domain.Snapshot
	for rows.Next() {
		var bucket string
		var payload []byte
		if err := rows.Scan(&bucket, &payload); err != nil {
			return fmt.Errorf("scan state row: %w", err)
		}
		if err := decodeBucket(&snap, bucket, payload); err != nil {
			return err
		}
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate state rows: %w", err)
	}
	return s.Store.ImportState(snap)
}

func decodeBucket(snap *domain.Snapshot, bucket string, payload []byte) error {
	var err error
	switch bucket {
	case "phcs":
		err = json.Unmarshal(payload, &snap.PHCs)
	case "disease_reports":
		err = json.Unmarshal(payload, &snap.DiseaseReports)
	case "water_quality_tests":
		err = json.Unmarshal(payload, &snap.WaterQualityTests)
	case "alerts":
		err = json.Unmarshal(payload, &snap.Alerts)
	case "users":
		err = json.Unmarshal(payload, &snap.Users)
	default:
		// Unknown buckets are tolerated so older files keep loading.
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode bucket %s: %w", bucket, err)
	}
	return nil
}

func encodeBuckets(snap domain.Snapshot) (map[string][]byte, error) {
	buckets := map[string]any{
		"phcs":                snap.PHCs,
		"disease_reports":     snap.DiseaseReports,
		"water_quality_tests": snap.WaterQualityTests,
		"alerts":              snap.Alerts,
		"users":               snap.Users,
	}
	out := make(map[string][]byte, len(buckets))
	for name, value := range buckets {
		payload, err := json.Marshal(value)
		if err != nil {
			return nil, fmt.Errorf("encode bucket %s: %w", name, err)
		}
		out[name] = payload
	}
	return out, nil
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	buckets, err := encodeBuckets(s.Store.ExportState())
	if err != nil {
		return err
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	for name, payload := range buckets {
		if _, err := tx.Exec(
			`INSERT INTO state(bucket, payload) VALUES(?, ?)
			 ON CONFLICT(bucket) DO UPDATE SET payload = excluded.payload`,
			name, payload,
		); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("persist bucket %s: %w", name, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit persist: %w", err)
	}
	return nil
}

func mutate[T any](s *Store, op func() (T, error)) (T, error) {
	out, err := op()
	if err != nil {
		return out, err
	}
	if err := s.persist(); err != nil {
		var zero T
		return zero, err
	}
	return out, nil
}

func mutateExisting[T any](s *Store, op func() (T, bool, error)) (T, bool, error) {
	out, ok, err := op()
	if err != nil || !ok {
		return out, ok, err
	}
	if err := s.persist(); err != nil {
		var zero T
		return zero, false, err
	}
	return out, true, nil
}

func (s *Store) mutateDelete(op func() (bool, error)) (bool, error) {
	ok, err := op()
	if err != nil || !ok {
		return ok, err
	}
	if err := s.persist(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *Store) CreatePHC(in domain.PHCInput) (domain.PHC, error) {
	return mutate(s, func() (domain.PHC, error) { return s.Store.CreatePHC(in) })
}

func (s *Store) UpdatePHC(id string, patch domain.PHCPatch) (domain.PHC, bool, error) {
	return mutateExisting(s, func() (domain.PHC, bool, error) { return s.Store.UpdatePHC(id, patch) })
}

func (s *Store) DeletePHC(id string) (bool, error) {
	return s.mutateDelete(func() (bool, error) { return s.Store.DeletePHC(id) })
}

func (s *Store) CreateDiseaseReport(in domain.DiseaseReportInput) (domain.DiseaseReport, error) {
	return mutate(s, func() (domain.DiseaseReport, error) { return s.Store.CreateDiseaseReport(in) })
}

func (s *Store) UpdateDiseaseReport(id string, patch domain.DiseaseReportPatch) (domain.DiseaseReport, bool, error) {
	return mutateExisting(s, func() (domain.DiseaseReport, bool, error) { return s.Store.UpdateDiseaseReport(id, patch) })
}

func (s *Store) DeleteDiseaseReport(id string) (bool, error) {
	return s.mutateDelete(func() (bool, error) { return s.Store.DeleteDiseaseReport(id) })
}

func (s *Store) CreateWaterQualityTest(in domain.WaterQualityTestInput) (domain.WaterQualityTest, error) {
	return mutate(s, func() (domain.WaterQualityTest, error) { return s.Store.CreateWaterQualityTest(in) })
}

func (s *Store) UpdateWaterQualityTest(id string, patch domain.WaterQualityTestPatch) (domain.WaterQualityTest, bool, error) {
	return mutateExisting(s, func() (domain.WaterQualityTest, bool, error) { return s.Store.UpdateWaterQualityTest(id, patch) })
}

func (s *Store) DeleteWaterQualityTest(id string) (bool, error) {
	return s.mutateDelete(func() (bool, error) { return s.Store.DeleteWaterQualityTest(id) })
}

func (s *Store) CreateAlert(in domain.AlertInput) (domain.Alert, error) {
	return mutate(s, func() (domain.Alert, error) { return s.Store.CreateAlert(in) })
}

func (s *Store) UpdateAlert(id string, patch domain.AlertPatch) (domain.Alert, bool, error) {
	return mutateExisting(s, func() (domain.Alert, bool, error) { return s.Store.UpdateAlert(id, patch) })
}

func (s *Store) VerifyAlert(id, by string) (domain.Alert, bool, error) {
	return mutateExisting(s, func() (domain.Alert, bool, error) { return s.Store.VerifyAlert(id, by) })
}

func (s *Store) ResolveAlert(id, by string) (domain.Alert, bool, error) {
	return mutateExisting(s, func() (domain.Alert, bool, error) { return s.Store.ResolveAlert(id, by) })
}

func (s *Store) DeleteAlert(id string) (bool, error) {
	return s.mutateDelete(func() (bool, error) { return s.Store.DeleteAlert(id) })
}

func (s *Store) CreateUser(in domain.UserInput) (domain.User, error) {
	return mutate(s, func() (domain.User, error) { return s.Store.CreateUser(in) })
}

func (s *Store) UpdateUser(id string, patch domain.UserPatch) (domain.User, bool, error) {
	return mutateExisting(s, func() (domain.User, bool, error) { return s.Store.UpdateUser(id, patch) })
}

func (s *Store) DeleteUser(id string) (bool, error) {
	return s.mutateDelete(func() (bool, error) { return s.Store.DeleteUser(id) })
}

// ImportState replaces all repositories and persists the result.
func (s *Store) ImportState(snap domain.Snapshot) error {
	if err := s.Store.ImportState(snap); err != nil {
		return err
	}
	return s.persist()
}
