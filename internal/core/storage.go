package core

import (
	"fmt"
	"os"

	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/internal/infra/persistence/postgres"
	"jalsuraksha/internal/infra/persistence/sqlite"
	"jalsuraksha/pkg/domain"
)

// StorageDriver identifies a concrete storage implementation.
type StorageDriver string

const (
	StorageMemory   StorageDriver = "memory"   // in-memory only (tests / ephemeral)
	StorageSQLite   StorageDriver = "sqlite"   // embedded sqlite file
	StoragePostgres StorageDriver = "postgres" // PostgreSQL server
)

// OpenStore selects a backend using environment variables. Defaults to the
// in-memory store when unset.
//
//	JALSURAKSHA_STORAGE_DRIVER: memory|sqlite|postgres (default memory)
//	JALSURAKSHA_SQLITE_PATH: path to sqlite file (default ./jalsuraksha.db)
//	JALSURAKSHA_POSTGRES_DSN: postgres DSN when driver=postgres
func OpenStore() (domain.Store, error) {
	driver := os.Getenv("JALSURAKSHA_STORAGE_DRIVER")
	if driver == "" {
		driver = string(StorageMemory)
	}
	switch StorageDriver(driver) {
	case StorageMemory:
		return memory.NewStore(), nil
	case StorageSQLite:
		path := os.Getenv("JALSURAKSHA_SQLITE_PATH")
		return sqlite.NewStore(path)
	case StoragePostgres:
		dsn := os.Getenv("JALSURAKSHA_POSTGRES_DSN")
		return postgres.NewStore(dsn)
	default:
		return nil, fmt.Errorf("unknown storage driver %s", driver)
	}
}
