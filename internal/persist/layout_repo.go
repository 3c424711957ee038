package persist

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/text/cases"
)

// ErrLayoutNotFound is returned by Load for an unknown layout name.
var ErrLayoutNotFound = errors.New("obstacle layout not found")

// stampRow is the JSONB shape of one stamp.
type stampRow struct {
	Row  int    `json:"row"`
	Col  int    `json:"col"`
	Kind string `json:"kind"`
}

// LayoutInfo describes a stored layout without its stamps.
type LayoutInfo struct {
	Name       string
	Rows       int
	Cols       int
	StampCount int
	Checksum   []byte
	UpdatedAt  time.Time
}

// LayoutRepo stores named obstacle layouts.
type LayoutRepo struct {
	db *DB
}

func NewLayoutRepo(db *DB) *LayoutRepo {
	return &LayoutRepo{db: db}
}

// LayoutKey is the lookup key for a layout name: trimmed and case-folded,
// so "Arena" and " arena" name the same layout.
func LayoutKey(name string) string {
	return cases.Fold().String(strings.TrimSpace(name))
}

// Checksum hashes the stamps independent of their order. Duplicate cells
// keep the last kind, matching how SetFromSpec applies them.
func Checksum(stamps []obstacle.Stamp) [32]byte {
	last := make(map[grid.Cell]obstacle.Kind, len(stamps))
	for _, s := range stamps {
		last[s.Cell] = s.Kind
	}
	cells := make([]grid.Cell, 0, len(last))
	for c := range last {
		cells = append(cells, c)
	}
	sort.Slice(cells, func(i, j int) bool {
		if cells[i].Row != cells[j].Row {
			return cells[i].Row < cells[j].Row
		}
		return cells[i].Col < cells[j].Col
	})
	buf := make([]byte, 0, len(cells)*17)
	for _, c := range cells {
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(c.Row)))
		buf = binary.LittleEndian.AppendUint64(buf, uint64(int64(c.Col)))
		buf = append(buf, byte(last[c]))
	}
	return blake2b.Sum256(buf)
}

// Save upserts a layout. It reports false when the stored layout already
// had the same stamps and nothing was written.
func (r *LayoutRepo) Save(ctx context.Context, name string, rows, cols int, stamps []obstacle.Stamp) (bool, error) {
	key := LayoutKey(name)
	if key == "" {
		return false, errors.New("save layout: empty name")
	}
	sum := Checksum(stamps)

	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("save layout begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var existing []byte
	err = tx.QueryRow(ctx, `SELECT checksum FROM obstacle_layouts WHERE name = $1 FOR UPDATE`, key).Scan(&existing)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return false, fmt.Errorf("save layout %s: %w", key, err)
	}
	if err == nil && string(existing) == string(sum[:]) {
		return false, nil
	}

	rowsJSON := make([]stampRow, len(stamps))
	for i, s := range stamps {
		rowsJSON[i] = stampRow{Row: s.Cell.Row, Col: s.Cell.Col, Kind: s.Kind.String()}
	}
	if _, err := tx.Exec(ctx,
		`INSERT INTO obstacle_layouts (name, display, rows, cols, stamps, stamp_count, checksum)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (name) DO UPDATE SET
		   display = EXCLUDED.display, rows = EXCLUDED.rows, cols = EXCLUDED.cols,
		   stamps = EXCLUDED.stamps, stamp_count = EXCLUDED.stamp_count,
		   checksum = EXCLUDED.checksum, updated_at = now()`,
		key, strings.TrimSpace(name), rows, cols, rowsJSON, len(stamps), sum[:],
	); err != nil {
		return false, fmt.Errorf("save layout %s: %w", key, err)
	}
	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("save layout %s commit: %w", key, err)
	}
	return true, nil
}

// Load returns the stamps of a stored layout.
func (r *LayoutRepo) Load(ctx context.Context, name string) ([]obstacle.Stamp, error) {
	var rowsJSON []stampRow
	err := r.db.Pool.QueryRow(ctx,
		`SELECT stamps FROM obstacle_layouts WHERE name = $1`, LayoutKey(name),
	).Scan(&rowsJSON)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrLayoutNotFound, name)
	}
	if err != nil {
		return nil, fmt.Errorf("load layout %s: %w", name, err)
	}
	stamps := make([]obstacle.Stamp, 0, len(rowsJSON))
	for _, s := range rowsJSON {
		kind, ok := obstacle.ParseKind(s.Kind)
		if !ok {
			return nil, fmt.Errorf("load layout %s: bad kind %q at (%d,%d)", name, s.Kind, s.Row, s.Col)
		}
		stamps = append(stamps, obstacle.Stamp{Cell: grid.Cell{Row: s.Row, Col: s.Col}, Kind: kind})
	}
	return stamps, nil
}

// List returns every stored layout, by name.
func (r *LayoutRepo) List(ctx context.Context) ([]LayoutInfo, error) {
	rows, err := r.db.Pool.Query(ctx,
		`SELECT display, rows, cols, stamp_count, checksum, updated_at
		 FROM obstacle_layouts ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list layouts: %w", err)
	}
	defer rows.Close()

	var out []LayoutInfo
	for rows.Next() {
		var li LayoutInfo
		if err := rows.Scan(&li.Name, &li.Rows, &li.Cols, &li.StampCount, &li.Checksum, &li.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan layout: %w", err)
		}
		out = append(out, li)
	}
	return out, rows.Err()
}

// Delete removes a layout. Deleting a missing layout is not an error.
func (r *LayoutRepo) Delete(ctx context.Context, name string) error {
	_, err := r.db.Pool.Exec(ctx, `DELETE FROM obstacle_layouts WHERE name = $1`, LayoutKey(name))
	return err
}
