package main

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func openDB(ctx context.Context, dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	return db, nil
}

func initSchema(ctx context.Context, db *sql.DB) error {
	schema := `
	CREATE TABLE IF NOT EXISTS image_resolutions (
		id BIGSERIAL PRIMARY KEY,
		driver_id   TEXT NOT NULL,
		image_url   TEXT NOT NULL,
		placeholder BOOLEAN NOT NULL,
		search_term TEXT NOT NULL DEFAULT '',
		resolved_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS image_resolutions_resolved_at_idx
		ON image_resolutions (resolved_at DESC);
	`

	_, err := db.ExecContext(ctx, schema)
	return err
}
