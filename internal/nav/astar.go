package nav

import (
	"github.com/l1jgo/navgrid/internal/grid"
)

// Passability answers whether a search may enter a cell.
// *obstacle.Field implements it.
type Passability interface {
	IsPassable(c grid.Cell) bool
}

// AStar is a single-destination, multi-source search that keeps its
// finalized costs and frontier between calls. Costs are measured from the
// destination, so every finalized cell stays valid for any later source and
// agents sharing a destination share one search.
type AStar struct {
	geo    grid.Geometry
	dest   grid.Cell
	params HeuristicParams

	costs *grid.Sparse[float64] // finalized, never revised
	open  map[int]float64       // best cost pushed per non-finalized cell

	frontier minHeap
	keyedFor grid.Cell // source the frontier priorities were computed for
	keyed    bool
	seeded   bool

	fresh []grid.Cell
}

func NewAStar(geo grid.Geometry, dest grid.Cell, params HeuristicParams) *AStar {
	return &AStar{
		geo:      geo,
		dest:     dest,
		params:   params,
		costs:    grid.NewSparse[float64](geo),
		open:     make(map[int]float64),
		frontier: make(minHeap, 0, 64),
	}
}

func (a *AStar) Destination() grid.Cell { return a.dest }

// Cost returns the finalized cost of c from the destination.
func (a *AStar) Cost(c grid.Cell) (float64, bool) { return a.costs.Get(c) }

// Finalized returns the number of finalized cells.
func (a *AStar) Finalized() int { return a.costs.Len() }

// FrontierLen returns the number of queued candidates (including stale ones).
func (a *AStar) FrontierLen() int { return len(a.frontier) }

// Exhausted reports that every cell reachable from the destination has been
// finalized; further sources cannot succeed unless already finalized.
func (a *AStar) Exhausted() bool { return a.seeded && len(a.frontier) == 0 }

// ExtendToSource runs the search until source is finalized or the frontier
// empties. It returns whether source is reachable and the cells finalized by
// this call; the slice is reused by the next call.
func (a *AStar) ExtendToSource(source grid.Cell, pass Passability) (bool, []grid.Cell) {
	a.fresh = a.fresh[:0]
	if !a.seeded {
		a.seeded = true
		// An obstacle destination is never finalized; every source is unreachable.
		if pass.IsPassable(a.dest) {
			a.pushCandidate(a.geo.Index(a.dest), 0, 0)
		}
	}
	if a.costs.Has(source) {
		return true, a.fresh
	}
	if !a.geo.InBounds(source) || !pass.IsPassable(source) || len(a.frontier) == 0 {
		return false, a.fresh
	}

	// Entries queued for an earlier source carry that source's heuristic.
	// Mixing them with fresh keys would let a worse path win, so re-key.
	if !a.keyed || a.keyedFor != source {
		a.frontier.rekey(func(e frontierEntry) float64 {
			return e.cost + a.params.heuristic(a.geo.CellAt(e.idx), source, a.dest)
		})
		a.keyedFor, a.keyed = source, true
	}

	for len(a.frontier) > 0 {
		e := a.frontier.pop()
		c := a.geo.CellAt(e.idx)
		if a.costs.Has(c) {
			continue
		}
		a.costs.Set(c, e.cost)
		delete(a.open, e.idx)
		a.fresh = append(a.fresh, c)
		if c == source {
			return true, a.fresh
		}

		for _, nb := range a.geo.Neighbors8(c) {
			if !nb.Ok || a.costs.Has(nb.Cell) || !pass.IsPassable(nb.Cell) {
				continue
			}
			cost := e.cost + nb.Cost
			a.pushCandidate(a.geo.Index(nb.Cell), cost, cost+a.params.heuristic(nb.Cell, source, a.dest))
		}
	}
	return false, a.fresh
}

func (a *AStar) pushCandidate(idx int, cost, prio float64) {
	if best, ok := a.open[idx]; ok && best <= cost {
		return
	}
	a.open[idx] = cost
	a.frontier.push(frontierEntry{idx: idx, cost: cost, prio: prio})
}
