package main

import (
	"context"
	"database/sql"
)

// resolutionStore is an append-only log of portrait resolutions.
type resolutionStore struct {
	db *sql.DB
}

// recordResolution appends one resolution outcome
func (s *resolutionStore) recordResolution(ctx context.Context, res Resolution) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO image_resolutions (driver_id, image_url, placeholder, search_term, resolved_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		res.DriverID, res.ImageURL, res.Placeholder, res.SearchTerm, res.ResolvedAt,
	)
	return err
}

// listResolutions lists the most recent resolutions, newest first
func (s *resolutionStore) listResolutions(ctx context.Context, limit int) ([]Resolution, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT driver_id, image_url, placeholder, search_term, resolved_at
		FROM image_resolutions
		ORDER BY resolved_at DESC, id DESC
		LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	resolutions := []Resolution{}

	for rows.Next() {
		var r Resolution
		if err := rows.Scan(&r.DriverID, &r.ImageURL, &r.Placeholder, &r.SearchTerm, &r.ResolvedAt); err != nil {
			return nil, err
		}
		resolutions = append(resolutions, r)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return resolutions, nil
}
