package nav

import (
	"math"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/vec"
	"go.uber.org/zap"
)

// flowEntry is the cached navigation state for one destination cell.
type flowEntry struct {
	search  *AStar
	vectors *grid.Sparse[vec.Vec2]
}

// Stats is a snapshot of cache activity for metrics.
type Stats struct {
	Entries     int
	Finalized   int    // finalized cells across all entries
	Vectors     int    // flow vectors across all entries
	Unreachable uint64 // source requests that found no path, cumulative
	Extensions  uint64 // ExtendToSource calls, cumulative
	Collected   uint64 // entries removed by GarbageCollect, cumulative
}

// FlowCache keeps one incremental search and flow field per destination.
// Ensure/GarbageCollect/Clear mutate and must run from the single tick
// writer; Sample and the read accessors may fan out afterwards.
type FlowCache struct {
	geo     grid.Geometry
	params  HeuristicParams
	entries map[grid.Cell]*flowEntry
	log     *zap.Logger

	unreachable uint64
	extensions  uint64
	collected   uint64
}

func NewFlowCache(geo grid.Geometry, params HeuristicParams, log *zap.Logger) *FlowCache {
	if log == nil {
		log = zap.NewNop()
	}
	return &FlowCache{
		geo:     geo,
		params:  params,
		entries: make(map[grid.Cell]*flowEntry),
		log:     log,
	}
}

func (f *FlowCache) Geometry() grid.Geometry { return f.geo }

// Ensure makes sure every reachable source has a flow vector toward dest,
// extending the destination's search as needed. It returns how many sources
// have no path; callers treat those as "no navigation force".
func (f *FlowCache) Ensure(dest grid.Cell, sources []grid.Cell, pass Passability) int {
	if !f.geo.InBounds(dest) {
		return len(sources)
	}
	e := f.entries[dest]
	if e == nil {
		e = &flowEntry{
			search:  NewAStar(f.geo, dest, f.params),
			vectors: grid.NewSparse[vec.Vec2](f.geo),
		}
		f.entries[dest] = e
	}

	unreachable := 0
	for _, src := range sources {
		if e.vectors.Has(src) {
			continue
		}
		f.extensions++
		reached, fresh := e.search.ExtendToSource(src, pass)
		if len(fresh) > 0 {
			e.updateVectors(f.geo, fresh, pass)
		}
		if !reached {
			unreachable++
			f.unreachable++
			f.log.Debug("no path to destination",
				zap.Int("dest_row", dest.Row), zap.Int("dest_col", dest.Col),
				zap.Int("src_row", src.Row), zap.Int("src_col", src.Col))
		}
	}
	return unreachable
}

// updateVectors writes flow vectors for newly finalized cells and refreshes
// already-finalized neighbours whose steepest descent may now point into one
// of them.
func (e *flowEntry) updateVectors(geo grid.Geometry, fresh []grid.Cell, pass Passability) {
	touched := make(map[grid.Cell]struct{}, len(fresh)*2)
	for _, c := range fresh {
		touched[c] = struct{}{}
		for _, nb := range geo.Neighbors8(c) {
			if nb.Ok && e.vectors.Has(nb.Cell) {
				touched[nb.Cell] = struct{}{}
			}
		}
	}
	for c := range touched {
		e.vectors.Set(c, e.steepest(geo, c, pass))
	}
}

// steepest returns the unit vector from c toward the finalized neighbour
// with the strictly lowest cost, or zero at the destination. Ties keep the
// first neighbour in enumeration order. A diagonal step is only taken when
// both orthogonal cells flanking it are passable.
func (e *flowEntry) steepest(geo grid.Geometry, c grid.Cell, pass Passability) vec.Vec2 {
	best, ok := e.search.Cost(c)
	if !ok {
		return vec.Vec2{}
	}
	bestDir := -1
	for i, nb := range geo.Neighbors8(c) {
		if !nb.Ok {
			continue
		}
		cost, ok := e.search.Cost(nb.Cell)
		if !ok || cost >= best {
			continue
		}
		dr, dc := grid.Offset8(i)
		if dr != 0 && dc != 0 {
			if !pass.IsPassable(grid.Cell{Row: c.Row + dr, Col: c.Col}) ||
				!pass.IsPassable(grid.Cell{Row: c.Row, Col: c.Col + dc}) {
				continue
			}
		}
		best = cost
		bestDir = i
	}
	if bestDir < 0 {
		return vec.Vec2{}
	}
	dr, dc := grid.Offset8(bestDir)
	return vec.Vec2{X: float64(dc), Y: float64(dr)}.Normalized()
}

// Sample blends the flow vectors of the occupied cell and its eight
// neighbours, weighting each by width² minus the squared distance to its
// centre, and normalizes the sum. Zero when dest is not cached, off-grid or
// on the boundary ring.
func (f *FlowCache) Sample(dest grid.Cell, pos vec.Vec2) vec.Vec2 {
	e := f.entries[dest]
	if e == nil {
		return vec.Vec2{}
	}
	c, ok := f.geo.ToCell(pos)
	if !ok || f.geo.IsBoundary(c) {
		return vec.Vec2{}
	}
	w2 := f.geo.Width * f.geo.Width

	var sum vec.Vec2
	add := func(cell grid.Cell) {
		v, ok := e.vectors.Get(cell)
		if !ok {
			return
		}
		weight := math.Max(0, w2-pos.DistanceSq(f.geo.ToWorld(cell)))
		sum = sum.Add(v.Mul(weight))
	}
	add(c)
	for _, nb := range f.geo.Neighbors8(c) {
		if nb.Ok {
			add(nb.Cell)
		}
	}
	return sum.Normalized()
}

// GarbageCollect drops every entry whose destination is not in active and
// returns how many were removed. Run once per tick after all Ensure calls.
func (f *FlowCache) GarbageCollect(active map[grid.Cell]struct{}) int {
	removed := 0
	for dest := range f.entries {
		if _, ok := active[dest]; !ok {
			delete(f.entries, dest)
			removed++
		}
	}
	f.collected += uint64(removed)
	return removed
}

// Clear drops every entry.
func (f *FlowCache) Clear() {
	f.collected += uint64(len(f.entries))
	f.entries = make(map[grid.Cell]*flowEntry)
}

// Reset invalidates the whole cache for a new geometry and heuristic.
// Fields are destination-keyed and rebuilt lazily, never re-projected.
func (f *FlowCache) Reset(geo grid.Geometry, params HeuristicParams) {
	f.Clear()
	f.geo = geo
	f.params = params
}

func (f *FlowCache) Len() int { return len(f.entries) }

func (f *FlowCache) Has(dest grid.Cell) bool {
	_, ok := f.entries[dest]
	return ok
}

// Cost returns the finalized cost of c toward dest.
func (f *FlowCache) Cost(dest, c grid.Cell) (float64, bool) {
	e := f.entries[dest]
	if e == nil {
		return 0, false
	}
	return e.search.Cost(c)
}

// Vector returns the flow vector stored for c toward dest.
func (f *FlowCache) Vector(dest, c grid.Cell) (vec.Vec2, bool) {
	e := f.entries[dest]
	if e == nil {
		return vec.Vec2{}, false
	}
	return e.vectors.Get(c)
}

func (f *FlowCache) Stats() Stats {
	s := Stats{
		Entries:     len(f.entries),
		Unreachable: f.unreachable,
		Extensions:  f.extensions,
		Collected:   f.collected,
	}
	for _, e := range f.entries {
		s.Finalized += e.search.Finalized()
		s.Vectors += e.vectors.Len()
	}
	return s
}
