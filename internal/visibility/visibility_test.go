package visibility

import (
	"testing"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/spatial"
	"github.com/stretchr/testify/assert"
)

func TestApplyEnterMoveLeave(t *testing.T) {
	geo := grid.NewGeometry(20, 20, 1)
	m := NewMap(geo, 2, 2)
	at := grid.Cell{Row: 10, Col: 10}

	m.Apply(spatial.Change{Team: 0, New: at, HasNew: true})
	assert.True(t, m.Visible(0, at))
	assert.True(t, m.Visible(0, grid.Cell{Row: 11, Col: 11}))
	assert.False(t, m.Visible(0, grid.Cell{Row: 12, Col: 10}), "radius is exclusive")
	assert.False(t, m.Visible(1, at), "other team")
	assert.Equal(t, 9, m.VisibleCells(0))

	next := grid.Cell{Row: 10, Col: 11}
	m.Apply(spatial.Change{Team: 0, Prev: at, HasPrev: true, New: next, HasNew: true})
	assert.False(t, m.Visible(0, grid.Cell{Row: 10, Col: 9}))
	assert.True(t, m.Visible(0, grid.Cell{Row: 10, Col: 12}))

	m.Apply(spatial.Change{Team: 0, Prev: next, HasPrev: true, PrevBecameEmpty: true})
	assert.Equal(t, 0, m.VisibleCells(0))
}

func TestOverlappingWatchers(t *testing.T) {
	m := NewMap(grid.NewGeometry(10, 10, 1), 1, 1.5)
	a := grid.Cell{Row: 4, Col: 4}
	b := grid.Cell{Row: 4, Col: 5}
	m.Apply(spatial.Change{Team: 0, New: a, HasNew: true})
	m.Apply(spatial.Change{Team: 0, New: b, HasNew: true})
	assert.Equal(t, 2, m.Watchers(0, a))

	m.Apply(spatial.Change{Team: 0, Prev: a, HasPrev: true})
	assert.Equal(t, 1, m.Watchers(0, a))
	assert.Equal(t, 0, m.Watchers(0, grid.Cell{Row: 4, Col: 3}))

	// Unbalanced removals saturate at zero.
	m.Apply(spatial.Change{Team: 0, Prev: a, HasPrev: true})
	m.Apply(spatial.Change{Team: 0, Prev: a, HasPrev: true})
	assert.Equal(t, 0, m.Watchers(0, grid.Cell{Row: 4, Col: 3}))
	assert.Equal(t, 0, m.Watchers(7, a))
}

func TestResizeClears(t *testing.T) {
	m := NewMap(grid.NewGeometry(10, 10, 1), 1, 2)
	m.Apply(spatial.Change{Team: 0, New: grid.Cell{Row: 5, Col: 5}, HasNew: true})
	geo := grid.NewGeometry(6, 6, 2)
	m.Resize(geo)
	assert.Equal(t, geo, m.Geometry())
	assert.Equal(t, 0, m.VisibleCells(0))
}
