package obstacle

import (
	"testing"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/vec"
	"github.com/stretchr/testify/assert"
)

func newTestField(margin int) *Field {
	geo := grid.NewGeometry(20, 20, 10)
	geo.Margin = margin
	return NewField(geo, DefaultRepulsion())
}

func TestSetFromSpecClearsFirst(t *testing.T) {
	f := newTestField(0)

	n := f.SetFromSpec([]Stamp{
		{Cell: grid.Cell{Row: 3, Col: 3}, Kind: Full},
		{Cell: grid.Cell{Row: 3, Col: 4}, Kind: HalfNE},
		{Cell: grid.Cell{Row: 30, Col: 4}, Kind: Full},
	})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, f.Count())
	assert.Equal(t, HalfNE, f.Kind(grid.Cell{Row: 3, Col: 4}))

	f.SetFromSpec([]Stamp{{Cell: grid.Cell{Row: 7, Col: 7}, Kind: Full}})
	assert.Equal(t, Empty, f.Kind(grid.Cell{Row: 3, Col: 3}))
	assert.Equal(t, 1, f.Count())
}

func TestIsPassable(t *testing.T) {
	f := newTestField(5)
	f.SetFromSpec([]Stamp{
		{Cell: grid.Cell{Row: 10, Col: 10}, Kind: Full},
		{Cell: grid.Cell{Row: 10, Col: 11}, Kind: HalfSW},
	})

	assert.True(t, f.IsPassable(grid.Cell{Row: 9, Col: 9}))
	assert.False(t, f.IsPassable(grid.Cell{Row: 10, Col: 10}))
	assert.False(t, f.IsPassable(grid.Cell{Row: 10, Col: 11}), "half blocks are not passable")
	assert.False(t, f.IsPassable(grid.Cell{Row: 2, Col: 10}), "boundary ring")
	assert.False(t, f.IsPassable(grid.Cell{Row: -1, Col: 10}))
}

func TestRepulsionPushesAway(t *testing.T) {
	f := newTestField(5)
	wall := grid.Cell{Row: 10, Col: 11}
	f.SetFromSpec([]Stamp{{Cell: wall, Kind: Full}})

	geo := f.Geometry()
	centre := geo.ToWorld(grid.Cell{Row: 10, Col: 10})

	// Standing in the cell left of the wall: push points left (-X).
	force := f.RepulsionForce(centre, vec.Vec2{})
	assert.Less(t, force.X, 0.0)
	assert.InDelta(t, 0.0, force.Y, 1e-12)

	// Closer to the wall pushes harder.
	closer := f.RepulsionForce(centre.Add(vec.Vec2{X: 4}), vec.Vec2{})
	assert.Less(t, closer.X, force.X)

	// Moving into the wall boosts the push; moving away does not.
	into := f.RepulsionForce(centre, vec.Vec2{X: 5})
	away := f.RepulsionForce(centre, vec.Vec2{X: -5})
	assert.Less(t, into.X, force.X)
	assert.Equal(t, force, away)
}

func TestRepulsionSumsSides(t *testing.T) {
	f := newTestField(5)
	f.SetFromSpec([]Stamp{
		{Cell: grid.Cell{Row: 9, Col: 10}, Kind: Full},
		{Cell: grid.Cell{Row: 11, Col: 10}, Kind: Full},
	})
	centre := f.Geometry().ToWorld(grid.Cell{Row: 10, Col: 10})
	force := f.RepulsionForce(centre, vec.Vec2{})
	assert.InDelta(t, 0.0, force.X, 1e-12)
	assert.InDelta(t, 0.0, force.Y, 1e-12, "opposite walls cancel")

	f.SetFromSpec([]Stamp{{Cell: grid.Cell{Row: 9, Col: 10}, Kind: Full}})
	force = f.RepulsionForce(centre, vec.Vec2{})
	assert.Greater(t, force.Y, 0.0, "wall above pushes down")
}

func TestRepulsionZeroOnBoundary(t *testing.T) {
	f := newTestField(5)
	f.SetFromSpec([]Stamp{{Cell: grid.Cell{Row: 3, Col: 4}, Kind: Full}})
	geo := f.Geometry()
	assert.Equal(t, vec.Vec2{}, f.RepulsionForce(geo.ToWorld(grid.Cell{Row: 3, Col: 3}), vec.Vec2{X: 10}))
	assert.Equal(t, vec.Vec2{}, f.RepulsionForce(vec.Vec2{X: 1e6}, vec.Vec2{}))
}

func TestParseKind(t *testing.T) {
	for k := Empty; k <= Full; k++ {
		got, ok := ParseKind(k.String())
		assert.True(t, ok)
		assert.Equal(t, k, got)
	}
	_, ok := ParseKind("lava")
	assert.False(t, ok)
}
