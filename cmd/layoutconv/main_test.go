package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/l1jgo/navgrid/internal/data"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConvertGlyphs(t *testing.T) {
	src := "; arena\n" +
		"..#\n" +
		"/\\><\n" +
		"5\n"
	entry, rows, cols, err := convert(strings.NewReader(src), "arena")
	require.NoError(t, err)
	assert.Equal(t, 3, rows)
	assert.Equal(t, 4, cols)
	assert.Equal(t, "arena", entry.Name)
	assert.Equal(t, []data.StampEntry{
		{Row: 0, Col: 2, Kind: "full"},
		{Row: 1, Col: 0, Kind: "half_ne"},
		{Row: 1, Col: 1, Kind: "half_nw"},
		{Row: 1, Col: 2, Kind: "half_se"},
		{Row: 1, Col: 3, Kind: "half_sw"},
		{Row: 2, Col: 0, Kind: "full"},
	}, entry.Stamps)
}

func TestConvertRejectsUnknownGlyph(t *testing.T) {
	_, _, _, err := convert(strings.NewReader("..\n.x\n"), "bad")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 1 col 1")
}

func TestWrittenLayoutLoads(t *testing.T) {
	entry, rows, cols, err := convert(strings.NewReader("#.\n.<\n"), "tiny")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, write(&buf, entry, rows, cols, "tiny.txt"))
	assert.True(t, strings.HasPrefix(buf.String(), "# Obstacle layout, auto-generated from tiny.txt (2x2, 2 stamps)"))

	path := filepath.Join(t.TempDir(), "layouts.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))
	table, err := data.LoadLayoutTable(path)
	require.NoError(t, err)

	stamps, ok := table.Get("tiny")
	require.True(t, ok)
	assert.Equal(t, []obstacle.Stamp{
		{Cell: grid.Cell{Row: 0, Col: 0}, Kind: obstacle.Full},
		{Cell: grid.Cell{Row: 1, Col: 1}, Kind: obstacle.HalfSW},
	}, stamps)
}
