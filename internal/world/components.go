package world

import (
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/vec"
)

// Body is an agent's kinematic state in world units.
type Body struct {
	Pos vec.Vec2
	Vel vec.Vec2
}

// Membership is an agent's team and the cell the spatial index last stored
// it in. Cell is the prev_cell handed to the next index update.
type Membership struct {
	Team    int
	Cell    grid.Cell
	Indexed bool
}

// Navigator holds an agent's navigation request. The destination is a plain
// world position; whatever picked it lives outside this package.
type Navigator struct {
	Dest     vec.Vec2
	Active   bool
	DestCell grid.Cell // resolved each tick by NavigationSystem
	Resolved bool      // DestCell is inside the grid
	HasPath  bool      // the source cell had a flow vector after the last ensure
}

// Steering is the per-tick output handed to the integrator.
type Steering struct {
	Flow      vec.Vec2 // unit flow direction, zero when there is none
	Repulsion vec.Vec2
	Force     vec.Vec2
}
