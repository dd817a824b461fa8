package db

import (
	"context"
	"fmt"
	"time"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/geotransform"
)

// Events returns the located events of a project, oldest first.
func (db *DB) Events(ctx context.Context, projectID string) ([]strata.Event, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT event_id, loc_x, loc_y, loc_z, magnitude, occurred_at
		   FROM events WHERE project_id = ? ORDER BY occurred_at, event_id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer rows.Close()

	var out []strata.Event
	for rows.Next() {
		var e strata.Event
		var occurred int64
		if err := rows.Scan(&e.ID, &e.Position.X, &e.Position.Y, &e.Position.Z, &e.Magnitude, &occurred); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		e.OccurredAt = fromUnixNano(occurred)
		out = append(out, e)
	}
	return out, rows.Err()
}

// toUnixNano stores an unset time as 0, the column default.
func toUnixNano(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixNano()
}

func fromUnixNano(ns int64) time.Time {
	if ns == 0 {
		return time.Time{}
	}
	return time.Unix(0, ns).UTC()
}

// InsertEvents upserts events into a project.
func (db *DB) InsertEvents(ctx context.Context, projectID string, events []strata.Event) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx,
		`INSERT OR REPLACE INTO events (project_id, event_id, loc_x, loc_y, loc_z, magnitude, occurred_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for _, e := range events {
		if _, err := stmt.ExecContext(ctx, projectID, e.ID,
			e.Position.X, e.Position.Y, e.Position.Z, e.Magnitude, toUnixNano(e.OccurredAt)); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
	}
	return tx.Commit()
}

// ControlPairs returns the transform control points of a project in
// stored order.
func (db *DB) ControlPairs(ctx context.Context, projectID string) ([]geotransform.ControlPair, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT sys_x, sys_y, geo_x, geo_y FROM control_points WHERE project_id = ? ORDER BY seq`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to query control points: %w", err)
	}
	defer rows.Close()

	var out []geotransform.ControlPair
	for rows.Next() {
		var c geotransform.ControlPair
		if err := rows.Scan(&c.System.X, &c.System.Y, &c.Geo.X, &c.Geo.Y); err != nil {
			return nil, fmt.Errorf("failed to scan control point: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// ReplaceControlPairs stores pairs as the control points of a project.
func (db *DB) ReplaceControlPairs(ctx context.Context, projectID string, pairs []geotransform.ControlPair) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM control_points WHERE project_id = ?`, projectID); err != nil {
		return fmt.Errorf("failed to clear control points: %w", err)
	}
	for i, c := range pairs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO control_points (project_id, seq, sys_x, sys_y, geo_x, geo_y) VALUES (?, ?, ?, ?, ?, ?)`,
			projectID, i, c.System.X, c.System.Y, c.Geo.X, c.Geo.Y); err != nil {
			return fmt.Errorf("failed to insert control point %d: %w", i, err)
		}
	}
	return tx.Commit()
}
