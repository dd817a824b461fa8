package db

import (
	"context"
	"fmt"

	"github.com/banshee-data/strata/internal/strata"
	"github.com/banshee-data/strata/internal/strata/stratum"
)

// SurveyPoints returns the point set of one model version in stored order.
func (db *DB) SurveyPoints(ctx context.Context, modelID string) (strata.PointSet, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT point_x, point_y, point_z FROM survey_points WHERE model_id = ? ORDER BY seq`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query survey points: %w", err)
	}
	defer rows.Close()

	var ps strata.PointSet
	for rows.Next() {
		var p strata.Point3D
		if err := rows.Scan(&p.X, &p.Y, &p.Z); err != nil {
			return nil, fmt.Errorf("failed to scan survey point: %w", err)
		}
		ps = append(ps, p)
	}
	return ps, rows.Err()
}

// ReplaceSurveyPoints stores ps as the point set of modelID, replacing any
// previous rows. Order is kept through seq.
func (db *DB) ReplaceSurveyPoints(ctx context.Context, modelID string, ps strata.PointSet) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM survey_points WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("failed to clear survey points: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO survey_points (model_id, seq, point_x, point_y, point_z) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()
	for i, p := range ps {
		if _, err := stmt.ExecContext(ctx, modelID, i, p.X, p.Y, p.Z); err != nil {
			return fmt.Errorf("failed to insert survey point %d: %w", i, err)
		}
	}
	return tx.Commit()
}

// Layers returns the layer records of one model version in stored order.
func (db *DB) Layers(ctx context.Context, modelID string) ([]stratum.LayerRecord, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT layer_name, layer_distance, layer_depth, layer_type
		   FROM layers WHERE model_id = ? ORDER BY seq`, modelID)
	if err != nil {
		return nil, fmt.Errorf("failed to query layers: %w", err)
	}
	defer rows.Close()

	var out []stratum.LayerRecord
	for rows.Next() {
		var r stratum.LayerRecord
		if err := rows.Scan(&r.Name, &r.Distance, &r.Depth, &r.Type); err != nil {
			return nil, fmt.Errorf("failed to scan layer: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// ReplaceLayers stores records as the layers of modelID in the given order.
func (db *DB) ReplaceLayers(ctx context.Context, modelID string, records []stratum.LayerRecord) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM layers WHERE model_id = ?`, modelID); err != nil {
		return fmt.Errorf("failed to clear layers: %w", err)
	}
	for i, r := range records {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO layers (model_id, seq, layer_name, layer_distance, layer_depth, layer_type)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			modelID, i, r.Name, r.Distance, r.Depth, r.Type); err != nil {
			return fmt.Errorf("failed to insert layer %q: %w", r.Name, err)
		}
	}
	return tx.Commit()
}

// ListModels returns the model IDs that have survey points.
func (db *DB) ListModels(ctx context.Context) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT DISTINCT model_id FROM survey_points ORDER BY model_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
