package data

import (
	"fmt"
	"os"

	"github.com/l1jgo/navgrid/internal/grid"
	"gopkg.in/yaml.v3"
)

// CellRef is a cell written as {row, col} in YAML.
type CellRef struct {
	Row int `yaml:"row"`
	Col int `yaml:"col"`
}

func (c CellRef) Cell() grid.Cell { return grid.Cell{Row: c.Row, Col: c.Col} }

// SpawnGroup places Count agents of one team in a square of Spread cells
// around At, all heading for Dest when set.
type SpawnGroup struct {
	Name   string   `yaml:"name"`
	Team   int      `yaml:"team"`
	Count  int      `yaml:"count"`
	At     CellRef  `yaml:"at"`
	Spread int      `yaml:"spread"`
	Dest   *CellRef `yaml:"dest"`
}

type spawnFile struct {
	Groups []SpawnGroup `yaml:"groups"`
}

// LoadSpawnGroups loads spawns.yaml.
func LoadSpawnGroups(path string) ([]SpawnGroup, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read spawn list %s: %w", path, err)
	}
	var file spawnFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parse spawn list: %w", err)
	}
	return file.Groups, nil
}

// Cells returns up to Count spawn cells, row-major through the square around
// At, skipping cells outside geo or rejected by ok.
func (g SpawnGroup) Cells(geo grid.Geometry, ok func(grid.Cell) bool) []grid.Cell {
	out := make([]grid.Cell, 0, g.Count)
	for dr := -g.Spread; dr <= g.Spread && len(out) < g.Count; dr++ {
		for dc := -g.Spread; dc <= g.Spread && len(out) < g.Count; dc++ {
			c := grid.Cell{Row: g.At.Row + dr, Col: g.At.Col + dc}
			if !geo.InBounds(c) || (ok != nil && !ok(c)) {
				continue
			}
			out = append(out, c)
		}
	}
	return out
}
