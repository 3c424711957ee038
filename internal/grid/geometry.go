package grid

import (
	"math"

	"github.com/l1jgo/navgrid/internal/vec"
)

// DefaultBoundaryMargin is the ring of cells along every edge that searches
// treat as impassable.
const DefaultBoundaryMargin = 5

// Cell is a (row, col) address. Cells produced by Geometry are always in
// bounds; row-major flat index is Row*Cols + Col.
type Cell struct {
	Row int
	Col int
}

// Neighbor is one entry of the 8-neighbour enumeration.
type Neighbor struct {
	Cell Cell
	Cost float64 // 1 orthogonal, √2 diagonal
	Ok   bool    // false when the neighbour falls outside the grid
}

// Neighbour offsets in enumeration order:
// up-left, up, up-right, right, down-right, down, down-left, left.
// Flow-vector ties are broken by this order.
var (
	dRow8 = [8]int{-1, -1, -1, 0, 1, 1, 1, 0}
	dCol8 = [8]int{-1, 0, 1, 1, 1, 0, -1, -1}
)

// Orthogonal offsets: up, right, down, left.
var (
	dRow4 = [4]int{-1, 0, 1, 0}
	dCol4 = [4]int{0, 1, 0, -1}
)

// Offset8 returns the (dRow, dCol) step of neighbour i in enumeration order.
func Offset8(i int) (int, int) { return dRow8[i], dCol8[i] }

// Offset4 returns the (dRow, dCol) step of orthogonal neighbour i
// (up, right, down, left).
func Offset4(i int) (int, int) { return dRow4[i], dCol4[i] }

// Geometry maps world positions onto a uniform grid centred on the world
// origin. It is a plain value: copying it is cheap and it has no mutable state.
type Geometry struct {
	Rows   int
	Cols   int
	Width  float64 // world units per cell edge
	Margin int     // boundary ring thickness in cells
}

// NewGeometry builds a geometry with the default boundary margin.
func NewGeometry(rows, cols int, width float64) Geometry {
	return Geometry{Rows: rows, Cols: cols, Width: width, Margin: DefaultBoundaryMargin}
}

// Len is the number of cells.
func (g Geometry) Len() int { return g.Rows * g.Cols }

// offset shifts world coordinates so the grid's top-left corner sits at 0,0.
func (g Geometry) offset() vec.Vec2 {
	return vec.Vec2{X: float64(g.Cols) * g.Width / 2, Y: float64(g.Rows) * g.Width / 2}
}

// InBounds reports whether c lies inside [0,Rows)×[0,Cols).
func (g Geometry) InBounds(c Cell) bool {
	return c.Row >= 0 && c.Row < g.Rows && c.Col >= 0 && c.Col < g.Cols
}

// Index returns the row-major flat index of an in-bounds cell.
func (g Geometry) Index(c Cell) int { return c.Row*g.Cols + c.Col }

// CellAt is the inverse of Index.
func (g Geometry) CellAt(idx int) Cell { return Cell{Row: idx / g.Cols, Col: idx % g.Cols} }

// ToCell discretizes a world position. ok is false outside the world box.
func (g Geometry) ToCell(p vec.Vec2) (Cell, bool) {
	if g.Width <= 0 {
		return Cell{}, false
	}
	off := g.offset()
	col := math.Floor((p.X + off.X) / g.Width)
	row := math.Floor((p.Y + off.Y) / g.Width)
	if row < 0 || col < 0 || row >= float64(g.Rows) || col >= float64(g.Cols) {
		return Cell{}, false
	}
	return Cell{Row: int(row), Col: int(col)}, true
}

// ToWorld returns the centre of c.
func (g Geometry) ToWorld(c Cell) vec.Vec2 {
	off := g.offset()
	return vec.Vec2{
		X: (float64(c.Col)+0.5)*g.Width - off.X,
		Y: (float64(c.Row)+0.5)*g.Width - off.Y,
	}
}

// IsBoundary reports whether c lies within Margin cells of any edge.
func (g Geometry) IsBoundary(c Cell) bool {
	m := g.Margin
	return c.Row < m || c.Col < m || c.Row >= g.Rows-m || c.Col >= g.Cols-m
}

// Neighbors8 enumerates the eight neighbours of c with their edge costs.
func (g Geometry) Neighbors8(c Cell) [8]Neighbor {
	var out [8]Neighbor
	for i := 0; i < 8; i++ {
		n := Cell{Row: c.Row + dRow8[i], Col: c.Col + dCol8[i]}
		cost := 1.0
		if dRow8[i] != 0 && dCol8[i] != 0 {
			cost = math.Sqrt2
		}
		out[i] = Neighbor{Cell: n, Cost: cost, Ok: g.InBounds(n)}
	}
	return out
}

// Neighbors4 enumerates the orthogonal neighbours of c (up, right, down, left).
func (g Geometry) Neighbors4(c Cell) [4]Neighbor {
	var out [4]Neighbor
	for i := 0; i < 4; i++ {
		n := Cell{Row: c.Row + dRow4[i], Col: c.Col + dCol4[i]}
		out[i] = Neighbor{Cell: n, Cost: 1, Ok: g.InBounds(n)}
	}
	return out
}

// CellsInRadius returns every in-bounds cell whose squared cell distance to
// center is strictly below radius². radius is measured in cells.
func (g Geometry) CellsInRadius(center Cell, radius float64) []Cell {
	if radius <= 0 {
		return nil
	}
	r := int(math.Ceil(radius))
	r2 := radius * radius
	out := make([]Cell, 0, (2*r+1)*(2*r+1))
	for dr := -r; dr <= r; dr++ {
		for dc := -r; dc <= r; dc++ {
			if float64(dr*dr+dc*dc) >= r2 {
				continue
			}
			c := Cell{Row: center.Row + dr, Col: center.Col + dc}
			if g.InBounds(c) {
				out = append(out, c)
			}
		}
	}
	return out
}

// Octile is the 8-connected straight-line distance between two cells.
func Octile(a, b Cell) float64 {
	dr := math.Abs(float64(a.Row - b.Row))
	dc := math.Abs(float64(a.Col - b.Col))
	return dr + dc + (math.Sqrt2-2)*math.Min(dr, dc)
}

// AABB is an axis-aligned world-space box.
type AABB struct {
	Min vec.Vec2
	Max vec.Vec2
}

// Bounds returns the world box covered by the grid.
func (g Geometry) Bounds() AABB {
	off := g.offset()
	return AABB{Min: vec.Vec2{X: -off.X, Y: -off.Y}, Max: off}
}

// CellRange returns the inclusive cell rectangle covered by box, clamped to
// the grid. ok is false when box does not touch the grid.
func (g Geometry) CellRange(box AABB) (lo, hi Cell, ok bool) {
	if g.Width <= 0 || g.Len() == 0 {
		return Cell{}, Cell{}, false
	}
	b := g.Bounds()
	if box.Max.X < b.Min.X || box.Max.Y < b.Min.Y || box.Min.X >= b.Max.X || box.Min.Y >= b.Max.Y {
		return Cell{}, Cell{}, false
	}
	off := g.offset()
	clamp := func(v float64, n int) int {
		i := int(math.Floor(v / g.Width))
		if i < 0 {
			return 0
		}
		if i >= n {
			return n - 1
		}
		return i
	}
	lo = Cell{Row: clamp(box.Min.Y+off.Y, g.Rows), Col: clamp(box.Min.X+off.X, g.Cols)}
	hi = Cell{Row: clamp(box.Max.Y+off.Y, g.Rows), Col: clamp(box.Max.X+off.X, g.Cols)}
	return lo, hi, true
}
