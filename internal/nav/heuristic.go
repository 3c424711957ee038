package nav

import (
	"math"

	"github.com/l1jgo/navgrid/internal/grid"
)

// HeuristicParams shapes how greedy the search gets away from the
// destination. The octile estimate is scaled by a weight that ramps from 0 at
// the destination to MaxWeight at RampCells and beyond.
type HeuristicParams struct {
	MaxWeight float64
	RampCells float64

	// Curve, when set, replaces the linear ramp: Curve[i] is the weight at
	// grid distance i, interpolated between samples and clamped past the end.
	Curve []float64
}

func DefaultHeuristic() HeuristicParams {
	return HeuristicParams{MaxWeight: 0.9, RampCells: 30}
}

// Weight returns the heuristic scale for a cell dist cells from the destination.
func (p HeuristicParams) Weight(dist float64) float64 {
	if len(p.Curve) > 0 {
		return sampleCurve(p.Curve, dist)
	}
	if p.MaxWeight <= 0 {
		return 0
	}
	if p.RampCells <= 0 || dist >= p.RampCells {
		return p.MaxWeight
	}
	return p.MaxWeight * dist / p.RampCells
}

func sampleCurve(curve []float64, dist float64) float64 {
	if dist <= 0 {
		return curve[0]
	}
	last := len(curve) - 1
	if dist >= float64(last) {
		return curve[last]
	}
	i := int(math.Floor(dist))
	t := dist - float64(i)
	return curve[i]*(1-t) + curve[i+1]*t
}

// heuristic estimates the remaining cost from cell to source. Near the
// destination the weight is ~0 and the search is exact; far away it turns
// greedy.
func (p HeuristicParams) heuristic(cell, source, dest grid.Cell) float64 {
	w := p.Weight(grid.Octile(cell, dest))
	if w == 0 {
		return 0
	}
	return w * grid.Octile(cell, source)
}
