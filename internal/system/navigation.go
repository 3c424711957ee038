package system

import (
	"time"

	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/world"
)

// NavigationSystem groups this tick's (destination, source) pairs and makes
// sure each reachable source has a flow vector. It records the active
// destination set for FlowGCSystem.
// Phase 2 (Navigate).
type NavigationSystem struct {
	world       *world.State
	unreachable int
}

func NewNavigationSystem(ws *world.State) *NavigationSystem {
	return &NavigationSystem{world: ws}
}

func (s *NavigationSystem) Phase() coresys.Phase { return coresys.PhaseNavigate }

// Unreachable returns how many sources had no path in the last tick.
func (s *NavigationSystem) Unreachable() int { return s.unreachable }

func (s *NavigationSystem) Update(_ time.Duration) {
	ws := s.world
	ws.BeginEnsure()
	defer ws.EndEnsure()

	dests, groups := ws.DestinationGroups()
	active := make(map[grid.Cell]struct{}, len(dests))
	s.unreachable = 0
	for _, d := range dests {
		active[d] = struct{}{}
		s.unreachable += ws.Flows.Ensure(d, groups[d], ws.Obstacles)
	}
	ws.SetActiveDestinations(active)

	for _, id := range ws.Navigators.IDs() {
		n, _ := ws.Navigators.Get(id)
		n.HasPath = false
		if !n.Resolved {
			continue
		}
		if m, ok := ws.Members.Get(id); ok && m.Indexed {
			_, n.HasPath = ws.Flows.Vector(n.DestCell, m.Cell)
		}
	}
}

// FlowGCSystem drops flow fields whose destination nobody requested this
// tick. Runs after every ensure.
// Phase 3 (Collect).
type FlowGCSystem struct {
	world *world.State
}

func NewFlowGCSystem(ws *world.State) *FlowGCSystem {
	return &FlowGCSystem{world: ws}
}

func (s *FlowGCSystem) Phase() coresys.Phase { return coresys.PhaseCollect }

func (s *FlowGCSystem) Update(_ time.Duration) {
	s.world.Flows.GarbageCollect(s.world.ActiveDestinations())
}
