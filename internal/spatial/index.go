package spatial

import (
	"math"

	"github.com/l1jgo/navgrid/internal/core/ecs"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/vec"
	"go.uber.org/zap"
)

// MaxTeams bounds the team partitions a TeamMask can address.
const MaxTeams = 64

// TeamMask selects team partitions for queries.
type TeamMask uint64

const AllTeams TeamMask = math.MaxUint64

// Teams builds a mask from team numbers.
func Teams(teams ...int) TeamMask {
	var m TeamMask
	for _, t := range teams {
		if t >= 0 && t < MaxTeams {
			m |= 1 << uint(t)
		}
	}
	return m
}

func (m TeamMask) Has(team int) bool {
	return team >= 0 && team < MaxTeams && m&(1<<uint(team)) != 0
}

// Change records one grid-membership transition for downstream consumers
// (visibility, rendering). HasNew is false for removals.
type Change struct {
	Entity          ecs.EntityID
	Team            int
	Prev            grid.Cell
	HasPrev         bool
	PrevBecameEmpty bool // the team's set at Prev is now empty
	New             grid.Cell
	HasNew          bool
}

// bucket is the small set of handles of one team in one cell.
type bucket []ecs.EntityID

func (b *bucket) remove(id ecs.EntityID) bool {
	s := *b
	for i := range s {
		if s[i] == id {
			s[i] = s[len(s)-1]
			*b = s[:len(s)-1]
			return true
		}
	}
	return false
}

// Index is a per-team spatial hash over the grid. Membership only changes
// through Update/Remove; there is no periodic rebuild.
// Mutated only from the simulation goroutine; queries may fan out once the
// spatial phase of a tick is done.
type Index struct {
	geo   grid.Geometry
	cells []*grid.Dense[bucket]         // per team
	where []map[ecs.EntityID]grid.Cell // per team: last cell we stored the entity in
	log   *zap.Logger
}

func NewIndex(geo grid.Geometry, teams int, log *zap.Logger) *Index {
	if log == nil {
		log = zap.NewNop()
	}
	if teams < 1 {
		teams = 1
	}
	if teams > MaxTeams {
		teams = MaxTeams
	}
	idx := &Index{
		geo:   geo,
		cells: make([]*grid.Dense[bucket], teams),
		where: make([]map[ecs.EntityID]grid.Cell, teams),
		log:   log,
	}
	for t := range idx.cells {
		idx.cells[t] = grid.NewDense[bucket](geo)
		idx.where[t] = make(map[ecs.EntityID]grid.Cell)
	}
	return idx
}

func (x *Index) Geometry() grid.Geometry { return x.geo }
func (x *Index) Teams() int              { return len(x.cells) }

// Resize adopts a new geometry and drops all membership. Callers re-insert.
func (x *Index) Resize(geo grid.Geometry) {
	x.geo = geo
	for t := range x.cells {
		x.cells[t].Resize(geo)
		x.where[t] = make(map[ecs.EntityID]grid.Cell)
	}
}

func (x *Index) validTeam(team int) bool {
	return team >= 0 && team < len(x.cells)
}

// Update moves an entity from prev (if hasPrev) to next. It is a no-op when
// prev == next. A prev that disagrees with the recorded membership is logged
// and the entity is pulled out of wherever it actually is, so the entity
// never ends up in two cells.
func (x *Index) Update(id ecs.EntityID, team int, prev grid.Cell, hasPrev bool, next grid.Cell) (Change, bool) {
	if !x.validTeam(team) {
		x.log.Warn("spatial update for unknown team", zap.Stringer("entity", id), zap.Int("team", team))
		return Change{}, false
	}
	if !x.geo.InBounds(next) {
		x.log.Warn("spatial update to out-of-bounds cell",
			zap.Stringer("entity", id), zap.Int("row", next.Row), zap.Int("col", next.Col))
		return Change{}, false
	}
	if hasPrev && prev == next {
		return Change{}, false
	}

	cells := x.cells[team]
	actual, tracked := x.where[team][id]
	ch := Change{Entity: id, Team: team, Prev: prev, HasPrev: hasPrev, New: next, HasNew: true}

	if hasPrev {
		if !tracked || actual != prev {
			x.log.Warn("stale prev cell in spatial update",
				zap.Stringer("entity", id),
				zap.Int("team", team),
				zap.Int("prev_row", prev.Row), zap.Int("prev_col", prev.Col),
				zap.Bool("tracked", tracked))
		}
		if b := cells.Ptr(prev); b != nil {
			b.remove(id)
			ch.PrevBecameEmpty = len(*b) == 0
		}
	} else if tracked {
		x.log.Warn("entity already indexed, moving",
			zap.Stringer("entity", id), zap.Int("team", team))
	}
	if tracked && (!hasPrev || actual != prev) {
		if b := cells.Ptr(actual); b != nil {
			b.remove(id)
		}
	}

	b := cells.Ptr(next)
	*b = append(*b, id)
	x.where[team][id] = next
	return ch, true
}

// Remove takes an entity out of cell. ok is false when nothing was removed.
func (x *Index) Remove(id ecs.EntityID, team int, cell grid.Cell) (Change, bool) {
	if !x.validTeam(team) {
		return Change{}, false
	}
	cells := x.cells[team]
	removed := false
	empty := false
	if b := cells.Ptr(cell); b != nil && b.remove(id) {
		removed = true
		empty = len(*b) == 0
	}
	if actual, tracked := x.where[team][id]; tracked && actual != cell {
		x.log.Warn("stale cell in spatial remove",
			zap.Stringer("entity", id),
			zap.Int("team", team),
			zap.Int("row", cell.Row), zap.Int("col", cell.Col))
		if b := cells.Ptr(actual); b != nil && b.remove(id) {
			removed = true
		}
	}
	delete(x.where[team], id)
	if !removed {
		return Change{}, false
	}
	return Change{Entity: id, Team: team, Prev: cell, HasPrev: true, PrevBecameEmpty: empty}, true
}

// CellOf returns the cell the index currently holds id in.
func (x *Index) CellOf(id ecs.EntityID, team int) (grid.Cell, bool) {
	if !x.validTeam(team) {
		return grid.Cell{}, false
	}
	c, ok := x.where[team][id]
	return c, ok
}

// Len returns the number of entities indexed for team.
func (x *Index) Len(team int) int {
	if !x.validTeam(team) {
		return 0
	}
	return len(x.where[team])
}

// InCell returns the handles of team in c. The slice is owned by the index.
func (x *Index) InCell(c grid.Cell, team int) []ecs.EntityID {
	if !x.validTeam(team) {
		return nil
	}
	return x.cells[team].Get(c)
}

// EntitiesInRadius collects entities of the selected teams whose cells lie
// within radius (world units) of pos. Cell-granular: callers that need exact
// distances filter the result.
func (x *Index) EntitiesInRadius(pos vec.Vec2, radius float64, teams TeamMask) map[ecs.EntityID]struct{} {
	out := make(map[ecs.EntityID]struct{})
	center, ok := x.geo.ToCell(pos)
	if !ok || radius < 0 || x.geo.Width <= 0 {
		return out
	}
	// One extra cell so entities standing near a cell edge are not missed.
	for _, c := range x.geo.CellsInRadius(center, radius/x.geo.Width+1) {
		for t := range x.cells {
			if !teams.Has(t) {
				continue
			}
			for _, id := range x.cells[t].Get(c) {
				out[id] = struct{}{}
			}
		}
	}
	return out
}

// EntitiesInBoundingBox returns every entity, of any team, in the cells the
// box covers. Order is row-major, then team.
func (x *Index) EntitiesInBoundingBox(box grid.AABB) []ecs.EntityID {
	lo, hi, ok := x.geo.CellRange(box)
	if !ok {
		return nil
	}
	var out []ecs.EntityID
	for r := lo.Row; r <= hi.Row; r++ {
		for c := lo.Col; c <= hi.Col; c++ {
			cell := grid.Cell{Row: r, Col: c}
			for t := range x.cells {
				out = append(out, x.cells[t].Get(cell)...)
			}
		}
	}
	return out
}
