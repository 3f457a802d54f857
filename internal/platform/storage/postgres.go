package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/MichalMitros/flyer-shopper/internal/platform/storage/gen/postgres/public/table"

	pgmodels "github.com/MichalMitros/flyer-shopper/internal/platform/storage/gen/postgres/public/model"
	pg "github.com/go-jet/jet/v2/postgres"
	"github.com/go-jet/jet/v2/qrm"
)

const postgresSchema = `
CREATE TABLE IF NOT EXISTS public.preference (
	key        TEXT PRIMARY KEY,
	value      TEXT NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
);`

// Postgres is preferences storage in PostgreSQL database.
type Postgres struct {
	db *sql.DB
}

// NewPostgres returns new Postgres.
func NewPostgres(db *sql.DB) Postgres {
	return Postgres{db: db}
}

// Migrate creates missing tables.
func (p Postgres) Migrate(ctx context.Context) error {
	if _, err := p.db.ExecContext(ctx, postgresSchema); err != nil {
		return fmt.Errorf("can't create preference table: %w", err)
	}
	return nil
}

// Get returns value stored under key. Returns false when there is no such key.
func (p Postgres) Get(ctx context.Context, key string) (string, bool, error) {
	var pref pgmodels.Preference
	err := table.Preference.SELECT(table.Preference.AllColumns).
		WHERE(table.Preference.Key.EQ(pg.String(key))).
		QueryContext(ctx, p.db, &pref)

	if errors.Is(err, qrm.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("can't get preference %q from database: %w", key, err)
	}

	return pref.Value, true, nil
}

// Set stores value under key, replacing previous value.
func (p Postgres) Set(ctx context.Context, key, value string) error {
	pref := pgmodels.Preference{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	_, err := table.Preference.INSERT(table.Preference.AllColumns).
		MODEL(pref).
		ON_CONFLICT(table.Preference.Key).
		DO_UPDATE(pg.SET(
			table.Preference.Value.SET(table.Preference.EXCLUDED.Value),
			table.Preference.UpdatedAt.SET(table.Preference.EXCLUDED.UpdatedAt),
		)).
		ExecContext(ctx, p.db)
	if err != nil {
		return fmt.Errorf("can't set preference %q in database: %w", key, err)
	}

	return nil
}
