package obstacle

import (
	"fmt"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/vec"
)

// Kind is the obstacle content of one cell.
type Kind uint8

const (
	Empty  Kind = iota
	HalfNE      // diagonal half-block filling the north-east triangle
	HalfNW
	HalfSE
	HalfSW
	Full
)

var kindNames = [...]string{"empty", "half_ne", "half_nw", "half_se", "half_sw", "full"}

func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// ParseKind maps an authoring name back to a Kind.
func ParseKind(s string) (Kind, bool) {
	for i, n := range kindNames {
		if n == s {
			return Kind(i), true
		}
	}
	return Empty, false
}

// Stamp is one authored obstacle cell.
type Stamp struct {
	Cell grid.Cell
	Kind Kind
}

// RepulsionParams tunes the push away from neighbouring obstacle cells.
type RepulsionParams struct {
	Strength     float64 // peak magnitude at the obstacle centre
	FalloffCells float64 // distance (in cell widths) at which the push reaches zero
	VelocityGain float64 // boost per unit of velocity heading into the obstacle
}

func DefaultRepulsion() RepulsionParams {
	return RepulsionParams{Strength: 1, FalloffCells: 1.5, VelocityGain: 0.1}
}

// Field is the static obstacle map. Authored data only: SetFromSpec is the
// sole mutation path.
type Field struct {
	cells  *grid.Dense[Kind]
	params RepulsionParams
}

func NewField(geo grid.Geometry, params RepulsionParams) *Field {
	if params.FalloffCells <= 0 {
		params.FalloffCells = 1.5
	}
	return &Field{cells: grid.NewDense[Kind](geo), params: params}
}

func (f *Field) Geometry() grid.Geometry { return f.cells.Geometry() }

// SetFromSpec clears the grid and stamps the given cells. Stamps outside the
// grid are skipped; the number applied is returned.
func (f *Field) SetFromSpec(stamps []Stamp) int {
	f.cells.Fill(Empty)
	n := 0
	for _, s := range stamps {
		if f.cells.Set(s.Cell, s.Kind) {
			n++
		}
	}
	return n
}

// Resize adopts a new geometry. All stamps are discarded.
func (f *Field) Resize(geo grid.Geometry) { f.cells.Resize(geo) }

// Kind returns the stored content of c; Empty out of bounds.
func (f *Field) Kind(c grid.Cell) Kind { return f.cells.Get(c) }

// IsPassable reports whether searches may enter c: in bounds, Empty and
// outside the boundary ring.
func (f *Field) IsPassable(c grid.Cell) bool {
	geo := f.cells.Geometry()
	return geo.InBounds(c) && !geo.IsBoundary(c) && f.cells.Get(c) == Empty
}

// RepulsionForce sums the pushes away from the four orthogonal neighbours of
// the occupied cell that hold an obstacle. Each push falls off linearly with
// distance to the obstacle's centre and grows when velocity points into it.
// Zero on boundary cells and outside the grid.
func (f *Field) RepulsionForce(pos, velocity vec.Vec2) vec.Vec2 {
	geo := f.cells.Geometry()
	c, ok := geo.ToCell(pos)
	if !ok || geo.IsBoundary(c) {
		return vec.Vec2{}
	}
	reach := f.params.FalloffCells * geo.Width
	var force vec.Vec2
	for i, nb := range geo.Neighbors4(c) {
		if !nb.Ok || f.cells.Get(nb.Cell) == Empty {
			continue
		}
		dr, dc := grid.Offset4(i)
		toward := vec.Vec2{X: float64(dc), Y: float64(dr)}

		dist := pos.Sub(geo.ToWorld(nb.Cell)).Length()
		mag := 1 - dist/reach
		if mag <= 0 {
			continue
		}
		if approach := velocity.Dot(toward); approach > 0 {
			mag *= 1 + approach*f.params.VelocityGain
		}
		force = force.Sub(toward.Mul(mag * f.params.Strength))
	}
	return force
}

// Count returns the number of non-empty cells.
func (f *Field) Count() int {
	geo := f.cells.Geometry()
	n := 0
	for i := 0; i < geo.Len(); i++ {
		if f.cells.Get(geo.CellAt(i)) != Empty {
			n++
		}
	}
	return n
}
