// Package migrations holds the versioned Postgres schema and applies it once per version.
package migrations

import (
	"context"
	"fmt"
	"sort"

	"github.com/Abraxas-365/fittsee/pkg/errx"
	"github.com/Abraxas-365/fittsee/pkg/logx"
	"github.com/jmoiron/sqlx"
)

// Migration is one forward-only schema step.
type Migration struct {
	Version    string
	Name       string
	Statements []string
}

// All lists every migration in version order.
var All = []Migration{
	{
		Version: "20250101000001",
		Name:    "create_users_and_profiles",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS users (
				id            TEXT PRIMARY KEY,
				email         TEXT NOT NULL UNIQUE,
				password_hash TEXT NOT NULL,
				role          TEXT NOT NULL DEFAULT 'CUSTOMER',
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE TABLE IF NOT EXISTS user_profiles (
				user_id           TEXT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
				full_name         TEXT,
				height_cm         DOUBLE PRECISION,
				chest_cm          DOUBLE PRECISION,
				shoulders_cm      DOUBLE PRECISION,
				waist_cm          DOUBLE PRECISION,
				body_photo_url    TEXT,
				face_crop_url     TEXT,
				skin_tone_hex     TEXT,
				profile_completed BOOLEAN NOT NULL DEFAULT FALSE,
				created_at        TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at        TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		Version: "20250101000002",
		Name:    "create_catalog",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS products (
				id          TEXT PRIMARY KEY,
				name        TEXT NOT NULL,
				description TEXT,
				brand       TEXT,
				category    TEXT NOT NULL DEFAULT 'tshirt',
				fit_type    TEXT NOT NULL DEFAULT 'REGULAR',
				is_active   BOOLEAN NOT NULL DEFAULT TRUE,
				created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
			`CREATE INDEX IF NOT EXISTS idx_products_active_name ON products (is_active, name)`,
			`CREATE TABLE IF NOT EXISTS product_variants (
				id         TEXT PRIMARY KEY,
				product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				size       TEXT NOT NULL,
				sku        TEXT,
				is_active  BOOLEAN NOT NULL DEFAULT TRUE,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (product_id, size)
			)`,
			`CREATE TABLE IF NOT EXISTS garment_assets (
				id         TEXT PRIMARY KEY,
				product_id TEXT NOT NULL REFERENCES products(id) ON DELETE CASCADE,
				size       TEXT NOT NULL,
				asset_type TEXT NOT NULL,
				url        TEXT NOT NULL,
				note       TEXT,
				created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				UNIQUE (product_id, size, asset_type)
			)`,
			`CREATE TABLE IF NOT EXISTS mannequin_assets (
				id               TEXT PRIMARY KEY,
				body_type        TEXT NOT NULL UNIQUE,
				video_url        TEXT NOT NULL,
				duration_ms      INTEGER NOT NULL DEFAULT 2000,
				rotation_degrees INTEGER NOT NULL DEFAULT 180,
				created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW()
			)`,
		},
	},
	{
		Version: "20250101000003",
		Name:    "create_render_jobs",
		Statements: []string{
			`CREATE TABLE IF NOT EXISTS render_jobs (
				id            TEXT PRIMARY KEY,
				user_id       TEXT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
				product_id    TEXT NOT NULL REFERENCES products(id),
				size          TEXT NOT NULL,
				status        TEXT NOT NULL DEFAULT 'QUEUED',
				progress      INTEGER NOT NULL DEFAULT 0 CHECK (progress BETWEEN 0 AND 100),
				video_url     TEXT,
				error_message TEXT,
				enqueued_at   TIMESTAMPTZ,
				created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
				CHECK ((status = 'DONE') = (video_url IS NOT NULL)),
				CHECK (error_message IS NULL OR status = 'FAILED')
			)`,
			`CREATE INDEX IF NOT EXISTS idx_render_jobs_user ON render_jobs (user_id, created_at DESC)`,
			`CREATE INDEX IF NOT EXISTS idx_render_jobs_unqueued
				ON render_jobs (created_at)
				WHERE status = 'QUEUED' AND enqueued_at IS NULL`,
		},
	},
}

const createVersionTable = `CREATE TABLE IF NOT EXISTS schema_migrations (
	version    TEXT PRIMARY KEY,
	name       TEXT NOT NULL,
	applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Up applies every migration not yet recorded in schema_migrations.
// Each migration runs in its own transaction. It returns the number applied.
func Up(ctx context.Context, db *sqlx.DB) (int, error) {
	if _, err := db.ExecContext(ctx, createVersionTable); err != nil {
		return 0, errx.Wrap(err, "failed to create schema_migrations", errx.TypeInternal)
	}

	var applied []string
	if err := db.SelectContext(ctx, &applied, `SELECT version FROM schema_migrations`); err != nil {
		return 0, errx.Wrap(err, "failed to read applied migrations", errx.TypeInternal)
	}
	done := make(map[string]bool, len(applied))
	for _, v := range applied {
		done[v] = true
	}

	pending := make([]Migration, 0, len(All))
	for _, m := range All {
		if !done[m.Version] {
			pending = append(pending, m)
		}
	}
	sort.Slice(pending, func(i, j int) bool { return pending[i].Version < pending[j].Version })

	for _, m := range pending {
		if err := apply(ctx, db, m); err != nil {
			return 0, err
		}
		logx.WithFields(logx.Fields{"version": m.Version, "name": m.Name}).Info("📦 Migration applied")
	}
	return len(pending), nil
}

func apply(ctx context.Context, db *sqlx.DB, m Migration) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return errx.Wrap(err, "failed to begin migration", errx.TypeInternal)
	}
	defer tx.Rollback()

	for i, stmt := range m.Statements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return errx.Wrap(err, fmt.Sprintf("migration %s statement %d failed", m.Version, i+1), errx.TypeInternal).
				WithDetail("name", m.Name)
		}
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO schema_migrations (version, name) VALUES ($1, $2)`, m.Version, m.Name); err != nil {
		return errx.Wrap(err, "failed to record migration", errx.TypeInternal)
	}
	return tx.Commit()
}
