package visibility

import (
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/spatial"
)

// Map tracks, per team, how many of the team's agents see each cell. It is
// fed only by spatial change records, never by rescanning agents: an agent
// entering a cell adds one to every cell within sight of it, leaving
// subtracts one.
type Map struct {
	geo    grid.Geometry
	sight  float64 // in cells
	counts []*grid.Dense[uint16]
}

func NewMap(geo grid.Geometry, teams int, sight float64) *Map {
	if teams < 1 {
		teams = 1
	}
	m := &Map{geo: geo, sight: sight, counts: make([]*grid.Dense[uint16], teams)}
	for i := range m.counts {
		m.counts[i] = grid.NewDense[uint16](geo)
	}
	return m
}

func (m *Map) Geometry() grid.Geometry { return m.geo }
func (m *Map) Sight() float64          { return m.sight }

// Apply folds one change record into the counts. Records for unknown teams
// are ignored.
func (m *Map) Apply(ch spatial.Change) {
	if ch.Team < 0 || ch.Team >= len(m.counts) {
		return
	}
	d := m.counts[ch.Team]
	if ch.HasPrev && m.geo.InBounds(ch.Prev) {
		for _, c := range m.geo.CellsInRadius(ch.Prev, m.sight) {
			if p := d.Ptr(c); p != nil && *p > 0 {
				*p--
			}
		}
	}
	if ch.HasNew && m.geo.InBounds(ch.New) {
		for _, c := range m.geo.CellsInRadius(ch.New, m.sight) {
			if p := d.Ptr(c); p != nil && *p < ^uint16(0) {
				*p++
			}
		}
	}
}

// Visible reports whether any agent of team sees c.
func (m *Map) Visible(team int, c grid.Cell) bool { return m.Watchers(team, c) > 0 }

// Watchers returns how many agents of team see c.
func (m *Map) Watchers(team int, c grid.Cell) int {
	if team < 0 || team >= len(m.counts) {
		return 0
	}
	return int(m.counts[team].Get(c))
}

// VisibleCells counts the cells team currently sees.
func (m *Map) VisibleCells(team int) int {
	if team < 0 || team >= len(m.counts) {
		return 0
	}
	n := 0
	d := m.counts[team]
	for i := 0; i < m.geo.Len(); i++ {
		if d.Get(m.geo.CellAt(i)) > 0 {
			n++
		}
	}
	return n
}

// Resize drops all counts for a new geometry. Agents are re-inserted
// afterwards and their change records rebuild the map.
func (m *Map) Resize(geo grid.Geometry) {
	m.geo = geo
	for _, d := range m.counts {
		d.Resize(geo)
	}
}
