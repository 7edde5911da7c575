package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"path/filepath"
	"testing"

	"tolsubmissions/pkg/domain"

	_ "modernc.org/sqlite"
)

// stubDB stands in for Postgres: the store only issues portable SQL against
// the state table, so a file-backed SQLite database exercises the same paths.
func stubDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "stub.db"))
	if err != nil {
		t.Fatalf("open stub db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestRunInTransactionPersistsState(t *testing.T) {
	db := stubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	store, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}

	var id string
	err = store.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		m, err := tx.CreateManifest(domain.Manifest{
			ProjectName: "ToL",
			Samples:     []domain.Sample{{Row: 1, SpecimenID: "SAN0000100"}},
		})
		id = m.ID
		return err
	})
	if err != nil {
		t.Fatalf("RunInTransaction: %v", err)
	}

	var payload []byte
	if err := db.QueryRow(`SELECT payload FROM state WHERE bucket = 'manifests'`).Scan(&payload); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var manifests map[string]domain.Manifest
	if err := json.Unmarshal(payload, &manifests); err != nil {
		t.Fatalf("decode snapshot: %v", err)
	}
	if _, ok := manifests[id]; !ok {
		t.Fatalf("expected manifest %q in snapshot, got %d entries", id, len(manifests))
	}
}

func TestNewStoreLoadsExistingSnapshot(t *testing.T) {
	db := stubDB(t)
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) { return db, nil })
	defer restore()

	seed, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore (seed): %v", err)
	}
	if err := seed.RunInTransaction(context.Background(), func(tx domain.Transaction) error {
		_, err := tx.CreateSpecimen(domain.Specimen{SpecimenID: "SAN0000100", BiosampleAccession: "SAMEA1"})
		return err
	}); err != nil {
		t.Fatalf("seed transaction: %v", err)
	}

	reloaded, err := NewStore("")
	if err != nil {
		t.Fatalf("NewStore (reload): %v", err)
	}
	sp, ok := reloaded.GetSpecimen("SAN0000100")
	if !ok || sp.BiosampleAccession != "SAMEA1" {
		t.Fatalf("expected specimen hydrated from snapshot, got %+v ok=%v", sp, ok)
	}
}

func TestOverrideSQLOpenRestores(t *testing.T) {
	called := false
	restore := OverrideSQLOpen(func(driver, dsn string) (*sql.DB, error) {
		called = true
		return stubDB(t), nil
	})
	if _, err := NewStore(""); err != nil {
		t.Fatalf("NewStore with override: %v", err)
	}
	if !called {
		t.Fatalf("expected override to be used")
	}
	restore()
}
