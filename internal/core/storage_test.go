package core

import (
	"path/filepath"
	"testing"

	"jalsuraksha/internal/infra/persistence/memory"
	"jalsuraksha/internal/infra/persistence/sqlite"
)

func TestOpenStoreDefaultsToMemory(t *testing.T) {
	t.Setenv("JALSURAKSHA_STORAGE_DRIVER", "")
	store, err := OpenStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenStoreSQLite(t *testing.T) {
	t.Setenv("JALSURAKSHA_STORAGE_DRIVER", "sqlite")
	t.Setenv("JALSURAKSHA_SQLITE_PATH", filepath.Join(t.TempDir(), "state.db"))
	store, err := OpenStore()
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	st, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer st.Close()
}

func TestOpenStoreUnknownDriver(t *testing.T) {
	t.Setenv("JALSURAKSHA_STORAGE_DRIVER", "cassandra")
	if _, err := OpenStore(); err == nil {
		t.Fatal("expected error for unknown driver")
	}
}

func TestSeedSnapshotLoads(t *testing.T) {
	store := memory.NewStore()
	if err := store.ImportState(SeedSnapshot()); err != nil {
		t.Fatalf("import: %v", err)
	}
	if phcs := store.ListPHCs(); len(phcs) != 5 {
		t.Fatalf("seeded phcs = %d, want 5", len(phcs))
	}
	admin, ok := store.GetUserByEmail("priya.sharma@jalsuraksha.gov.in")
	if !ok {
		t.Fatal("seed admin missing")
	}
	if admin.Role != "admin" {
		t.Fatalf("seed admin role = %s", admin.Role)
	}
}
