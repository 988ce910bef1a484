// Package postgres persists the surveillance store in a PostgreSQL server
// using the same snapshot-bucket layout as the sqlite backend. Reads come
// from the embedded memory store; every successful mutation re-persists the
// snapshot.
package postgres

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"sync"

	_ "github.com/jackc/pgx/v5/stdlib"

	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/pkg/domain"
)

// DefaultDSN points at a local server when no DSN is configured.
const DefaultDSN = "postgres://localhost/jalsuraksha?sslmode=disable"

const schema = `CREATE TABLE IF NOT EXISTS state (
	bucket TEXT PRIMARY KEY,
	payload JSONB NOT NULL
)`

var sqlOpen = sql.Open

// OverrideSQLOpen swaps the database opener, returning a restore func. Tests
// use it to run against a stub connection.
func OverrideSQLOpen(fn func(driverName, dsn string) (*sql.DB, error)) func() {
	prev := sqlOpen
	sqlOpen = fn
	return func() { sqlOpen = prev }
}

// Store is a PostgreSQL-backed domain.Store.
type Store struct {
	*memory.Store
	mu  sync.Mutex
	db  *sql.DB
	dsn string
}

// NewStore connects to the server at dsn and hydrates the embedded memory
// store from it.
func NewStore(dsn string) (*Store, error) {
	if dsn == "" {
		dsn = DefaultDSN
	}
	db, err := sqlOpen("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ensure postgres schema: %w", err)
	}
	store := &Store{Store: memory.NewStore(), db: db, dsn: dsn}
	if err := store.load(); err != nil {
		_ = db.Close()
		return nil, err
	}
	return store, nil
}

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
		return nil
	}
	if err != nil {
		return fmt.Errorf("decode bucket %s: %w", bucket, err)
	}
	return nil
}

func (s *Store) persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := s.Store.ExportState()
	buckets := map[string]any{
		"phcs":                snap.PHCs,
		"disease_reports":     snap.DiseaseReports,
		"water_quality_tests": snap.WaterQualityTests,
		"alerts":              snap.Alerts,
		"users":               snap.Users,
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin persist: %w", err)
	}
	for name, value := range buckets {
		payload, err := json.Marshal(value)
		if err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("encode bucket %s: %w", name, err)
		}
		if _, err := tx.Exec(
			`INSERT INTO state(bucket, payload) VALUES($1, $2)
			 ON CONFLICT(bucket) DO UPDATE SET payload = EXCLUDED.payload`,
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
