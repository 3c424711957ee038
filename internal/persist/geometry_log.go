package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/nav"
)

// GeometryEntry records one applied reconfigure.
type GeometryEntry struct {
	Geometry  grid.Geometry
	Heuristic nav.HeuristicParams
	Layout    string
	AppliedAt time.Time
}

// GeometryLogRepo is an append-only history of grid reconfigures.
type GeometryLogRepo struct {
	db *DB
}

func NewGeometryLogRepo(db *DB) *GeometryLogRepo {
	return &GeometryLogRepo{db: db}
}

// Write appends a batch of entries in a single transaction.
func (r *GeometryLogRepo) Write(ctx context.Context, entries []GeometryEntry) error {
	if len(entries) == 0 {
		return nil
	}
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("geometry log begin: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		at := e.AppliedAt
		if at.IsZero() {
			at = time.Now()
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO geometry_log (rows, cols, cell_width, margin, max_weight, ramp_cells, layout, applied_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			e.Geometry.Rows, e.Geometry.Cols, e.Geometry.Width, e.Geometry.Margin,
			e.Heuristic.MaxWeight, e.Heuristic.RampCells, e.Layout, at,
		); err != nil {
			return fmt.Errorf("geometry log insert: %w", err)
		}
	}
	return tx.Commit(ctx)
}

// Recent returns up to limit entries, newest first.
func (r *GeometryLogRepo) Recent(ctx context.Context, limit int) ([]GeometryEntry, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT rows, cols, cell_width, margin, max_weight, ramp_cells, layout, applied_at
		 FROM geometry_log ORDER BY applied_at DESC, id DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("geometry log query: %w", err)
	}
	defer rows.Close()

	var out []GeometryEntry
	for rows.Next() {
		var e GeometryEntry
		if err := rows.Scan(&e.Geometry.Rows, &e.Geometry.Cols, &e.Geometry.Width, &e.Geometry.Margin,
			&e.Heuristic.MaxWeight, &e.Heuristic.RampCells, &e.Layout, &e.AppliedAt); err != nil {
			return nil, fmt.Errorf("geometry log scan: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}
