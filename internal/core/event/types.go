package event

import (
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/nav"
)

// GeometryChanged is emitted after a reconfigure replaced the grid. Every
// cell-keyed consumer must rebuild; no old cell coordinate stays valid.
type GeometryChanged struct {
	Old, New  grid.Geometry
	Heuristic nav.HeuristicParams
}

// AgentDespawned is emitted when an agent's entity was destroyed.
type AgentDespawned struct {
	Team     int
	LastCell grid.Cell
	HadCell  bool
}
