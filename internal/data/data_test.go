package data

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadLayoutTable(t *testing.T) {
	dir := t.TempDir()
	write(t, dir, "arena.csv", "# arena\n0,0,5\n\n1,0,0\n")
	path := write(t, dir, "layouts.yaml", `
layouts:
  - name: wall
    stamps:
      - {row: 5, col: 2, kind: full}
      - {row: 5, col: 3}
      - {row: 6, col: 3, kind: half_sw}
  - name: arena
    tile_file: arena.csv
    stamps:
      - {row: 9, col: 9, kind: "2"}
`)
	table, err := LoadLayoutTable(path)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Count())
	assert.Equal(t, []string{"arena", "wall"}, table.Names())

	wall, ok := table.Get("wall")
	require.True(t, ok)
	assert.Equal(t, []obstacle.Stamp{
		{Cell: grid.Cell{Row: 5, Col: 2}, Kind: obstacle.Full},
		{Cell: grid.Cell{Row: 5, Col: 3}, Kind: obstacle.Full},
		{Cell: grid.Cell{Row: 6, Col: 3}, Kind: obstacle.HalfSW},
	}, wall)

	arena, _ := table.Get("arena")
	assert.Equal(t, []obstacle.Stamp{
		{Cell: grid.Cell{Row: 0, Col: 2}, Kind: obstacle.Full},
		{Cell: grid.Cell{Row: 1, Col: 0}, Kind: obstacle.HalfNE},
		{Cell: grid.Cell{Row: 9, Col: 9}, Kind: obstacle.HalfNW},
	}, arena)

	_, ok = table.Get("missing")
	assert.False(t, ok)
}

func TestLayoutUnknownKind(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "layouts.yaml", "layouts:\n  - name: bad\n    stamps:\n      - {row: 1, col: 1, kind: lava}\n")
	_, err := LoadLayoutTable(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnknownKind))

	_, err = ParseTiles(strings.NewReader("0,9\n"))
	assert.True(t, errors.Is(err, ErrUnknownKind))
}

func TestLayoutMissingTileFile(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "layouts.yaml", "layouts:\n  - name: x\n    tile_file: nope.csv\n")
	_, err := LoadLayoutTable(path)
	assert.Error(t, err)
}

func TestSpawnGroups(t *testing.T) {
	dir := t.TempDir()
	path := write(t, dir, "spawns.yaml", `
groups:
  - name: red
    team: 1
    count: 4
    at: {row: 0, col: 0}
    spread: 1
    dest: {row: 8, col: 8}
  - name: idle
    count: 1
    at: {row: 3, col: 3}
`)
	groups, err := LoadSpawnGroups(path)
	require.NoError(t, err)
	require.Len(t, groups, 2)
	assert.Equal(t, 1, groups[0].Team)
	require.NotNil(t, groups[0].Dest)
	assert.Equal(t, grid.Cell{Row: 8, Col: 8}, groups[0].Dest.Cell())
	assert.Nil(t, groups[1].Dest)

	geo := grid.NewGeometry(10, 10, 1)
	blocked := grid.Cell{Row: 0, Col: 1}
	cells := groups[0].Cells(geo, func(c grid.Cell) bool { return c != blocked })
	assert.Equal(t, []grid.Cell{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 1, Col: 1}}, cells,
		"corner spawn clipped to the grid and the blocked cell skipped")
}
