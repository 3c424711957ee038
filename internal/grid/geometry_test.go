package grid

import (
	"math"
	"testing"

	"github.com/l1jgo/navgrid/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	for _, geo := range []Geometry{
		NewGeometry(10, 10, 10),
		NewGeometry(7, 13, 2.5),
		NewGeometry(1, 1, 1),
		NewGeometry(64, 32, 0.75),
	} {
		for r := 0; r < geo.Rows; r++ {
			for c := 0; c < geo.Cols; c++ {
				cell := Cell{Row: r, Col: c}
				got, ok := geo.ToCell(geo.ToWorld(cell))
				require.True(t, ok, "cell %v of %+v", cell, geo)
				assert.Equal(t, cell, got)
			}
		}
	}
}

func TestToCellCentredOrigin(t *testing.T) {
	geo := NewGeometry(10, 10, 10)

	c, ok := geo.ToCell(vec.Vec2{})
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 5, Col: 5}, c)

	c, ok = geo.ToCell(vec.Vec2{X: -50, Y: -50})
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 0, Col: 0}, c)

	c, ok = geo.ToCell(vec.Vec2{X: 49.9, Y: -0.1})
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 4, Col: 9}, c)

	assert.Equal(t, vec.Vec2{X: -45, Y: -45}, geo.ToWorld(Cell{}))
}

func TestToCellOutOfBounds(t *testing.T) {
	geo := NewGeometry(10, 10, 10)
	for _, p := range []vec.Vec2{
		{X: 50, Y: 0},
		{X: 0, Y: 50},
		{X: -50.01, Y: 0},
		{X: 0, Y: -1000},
	} {
		_, ok := geo.ToCell(p)
		assert.False(t, ok, "%v", p)
	}

	_, ok := Geometry{Rows: 4, Cols: 4}.ToCell(vec.Vec2{})
	assert.False(t, ok, "zero width")
}

func TestNeighbors8Order(t *testing.T) {
	geo := NewGeometry(10, 10, 1)
	n := geo.Neighbors8(Cell{Row: 5, Col: 5})
	want := []Cell{
		{4, 4}, {4, 5}, {4, 6}, {5, 6}, {6, 6}, {6, 5}, {6, 4}, {5, 4},
	}
	for i, w := range want {
		assert.Equal(t, w, n[i].Cell)
		assert.True(t, n[i].Ok)
		if i%2 == 0 {
			assert.Equal(t, math.Sqrt2, n[i].Cost)
		} else {
			assert.Equal(t, 1.0, n[i].Cost)
		}
	}

	corner := geo.Neighbors8(Cell{})
	okCount := 0
	for _, nb := range corner {
		if nb.Ok {
			okCount++
		}
	}
	assert.Equal(t, 3, okCount)
}

func TestCellsInRadius(t *testing.T) {
	geo := NewGeometry(20, 20, 1)

	assert.Empty(t, geo.CellsInRadius(Cell{Row: 10, Col: 10}, 0))
	assert.Equal(t, []Cell{{10, 10}}, geo.CellsInRadius(Cell{Row: 10, Col: 10}, 1))

	// radius 2: dist² < 4 -> the 3x3 block plus the four cells two steps out
	// orthogonally are excluded (dist² == 4).
	assert.Len(t, geo.CellsInRadius(Cell{Row: 10, Col: 10}, 2), 9)
	assert.Len(t, geo.CellsInRadius(Cell{Row: 10, Col: 10}, 2.01), 13)

	for _, c := range geo.CellsInRadius(Cell{Row: 0, Col: 0}, 3) {
		assert.True(t, geo.InBounds(c))
		assert.Less(t, float64(c.Row*c.Row+c.Col*c.Col), 9.0)
	}
}

func TestIsBoundary(t *testing.T) {
	geo := NewGeometry(20, 20, 1)
	assert.True(t, geo.IsBoundary(Cell{Row: 4, Col: 10}))
	assert.True(t, geo.IsBoundary(Cell{Row: 10, Col: 15}))
	assert.False(t, geo.IsBoundary(Cell{Row: 5, Col: 5}))
	assert.False(t, geo.IsBoundary(Cell{Row: 14, Col: 14}))

	geo.Margin = 0
	assert.False(t, geo.IsBoundary(Cell{}))
}

func TestOctile(t *testing.T) {
	assert.Equal(t, 5.0, Octile(Cell{Row: 5, Col: 0}, Cell{Row: 5, Col: 5}))
	assert.InDelta(t, 3*math.Sqrt2, Octile(Cell{}, Cell{Row: 3, Col: 3}), 1e-12)
	assert.InDelta(t, 2+math.Sqrt2, Octile(Cell{}, Cell{Row: 1, Col: 3}), 1e-12)
}

func TestCellRange(t *testing.T) {
	geo := NewGeometry(10, 10, 10)

	lo, hi, ok := geo.CellRange(AABB{Min: vec.Vec2{X: -5, Y: -5}, Max: vec.Vec2{X: 14, Y: 4}})
	require.True(t, ok)
	assert.Equal(t, Cell{Row: 4, Col: 4}, lo)
	assert.Equal(t, Cell{Row: 5, Col: 6}, hi)

	lo, hi, ok = geo.CellRange(AABB{Min: vec.Vec2{X: -1000, Y: -1000}, Max: vec.Vec2{X: 1000, Y: 1000}})
	require.True(t, ok)
	assert.Equal(t, Cell{}, lo)
	assert.Equal(t, Cell{Row: 9, Col: 9}, hi)

	_, _, ok = geo.CellRange(AABB{Min: vec.Vec2{X: 60, Y: 0}, Max: vec.Vec2{X: 70, Y: 10}})
	assert.False(t, ok)
}
