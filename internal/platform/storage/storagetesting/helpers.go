package storagetesting

import (
	"context"
	"database/sql"
	"os"
	"testing"

	"github.com/MichalMitros/flyer-shopper/internal/platform/storage"
	"github.com/MichalMitros/flyer-shopper/internal/platform/storage/gen/postgres/public/table"
	"github.com/go-jet/jet/v2/qrm"

	pgmodels "github.com/MichalMitros/flyer-shopper/internal/platform/storage/gen/postgres/public/model"

	_ "github.com/lib/pq"
)

// Open opens connection to Postgres DB. Skips the test when DATABASE_URL isn't set.
func Open(t *testing.T) *sql.DB {
	t.Helper()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("please provide database URL via DATABASE_URL environment variable")
	}

	db, err := sql.Open("postgres", dbURL)
	if err != nil {
		t.Fatalf("can't open connection to %q: %s", dbURL, err)
	}

	return db
}

// OpenSQLite opens migrated in-memory SQLite DB closed on test cleanup.
func OpenSQLite(t *testing.T) *sql.DB {
	t.Helper()

	db, err := storage.OpenSQLite(context.Background(), ":memory:")
	if err != nil {
		t.Fatal("can't open sqlite database", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := storage.NewSQLite(db).Migrate(context.Background()); err != nil {
		t.Fatal("can't migrate sqlite database", err)
	}

	return db
}

// InsertPreferences is a helper test function to insert preferences.
func InsertPreferences(t *testing.T, exc qrm.Executable, prefs ...pgmodels.Preference) {
	t.Helper()

	if len(prefs) == 0 {
		return
	}

	_, err := table.Preference.INSERT(table.Preference.AllColumns).MODELS(prefs).Exec(exc)
	if err != nil {
		t.Fatal("can't insert preferences", err)
	}
}

// GetPreferences is a helper test function to get all preferences.
func GetPreferences(t *testing.T, queryable qrm.Queryable) []pgmodels.Preference {
	t.Helper()

	prefs := []pgmodels.Preference{}
	err := table.Preference.SELECT(table.Preference.AllColumns).
		ORDER_BY(table.Preference.Key.ASC()).
		Query(queryable, &prefs)
	if err != nil {
		t.Fatal("can't get preferences", err)
	}

	return prefs
}

// CleanupData is a helper test function to delete all preferences.
func CleanupData(t *testing.T, exc qrm.Executable) {
	t.Helper()

	_, err := table.Preference.DELETE().WHERE(table.Preference.Key.IS_NOT_NULL()).Exec(exc)
	if err != nil {
		t.Fatal("can't delete preferences data", err)
	}
}
