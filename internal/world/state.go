package world

import (
	"sort"

	"github.com/l1jgo/navgrid/internal/core/ecs"
	"github.com/l1jgo/navgrid/internal/core/event"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/nav"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"github.com/l1jgo/navgrid/internal/spatial"
	"github.com/l1jgo/navgrid/internal/vec"
	"github.com/l1jgo/navgrid/internal/visibility"
	"go.uber.org/zap"
)

// Options sizes the world's shared caches.
type Options struct {
	Teams     int
	Sight     float64 // visibility radius in cells
	Heuristic nav.HeuristicParams
	Repulsion obstacle.RepulsionParams
}

// State owns the navigation singletons (obstacle field, spatial index,
// flow cache, visibility) and the agent component stores. It is handed by
// reference to every tick system.
// Accessed only from the simulation goroutine, except for the read-only
// steering fan-out.
type State struct {
	geo       grid.Geometry
	heuristic nav.HeuristicParams

	ECS        *ecs.World
	Bodies     *ecs.Store[Body]
	Members    *ecs.Store[Membership]
	Navigators *ecs.Store[Navigator]
	Steerings  *ecs.Store[Steering]

	Obstacles *obstacle.Field
	Index     *spatial.Index
	Flows     *nav.FlowCache
	Vision    *visibility.Map
	Bus       *event.Bus

	stamps   []obstacle.Stamp // authoring copy, re-stamped after a resize
	active   map[grid.Cell]struct{}
	ensuring bool
	pending  *pendingChange

	log *zap.Logger
}

type pendingChange struct {
	geo       *grid.Geometry
	heuristic nav.HeuristicParams
	stamps    []obstacle.Stamp
	hasStamps bool
}

func NewState(geo grid.Geometry, opts Options, log *zap.Logger) *State {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Teams < 1 {
		opts.Teams = 1
	}
	s := &State{
		geo:        geo,
		heuristic:  opts.Heuristic,
		ECS:        ecs.NewWorld(),
		Bodies:     ecs.NewStore[Body](),
		Members:    ecs.NewStore[Membership](),
		Navigators: ecs.NewStore[Navigator](),
		Steerings:  ecs.NewStore[Steering](),
		Obstacles:  obstacle.NewField(geo, opts.Repulsion),
		Index:      spatial.NewIndex(geo, opts.Teams, log),
		Flows:      nav.NewFlowCache(geo, opts.Heuristic, log),
		Vision:     visibility.NewMap(geo, opts.Teams, opts.Sight),
		Bus:        event.NewBus(),
		active:     make(map[grid.Cell]struct{}),
		log:        log,
	}
	s.ECS.Register(s.Bodies)
	s.ECS.Register(s.Members)
	s.ECS.Register(s.Navigators)
	s.ECS.Register(s.Steerings)
	s.ECS.OnDestroy(s.unindex)
	return s
}

func (s *State) Geometry() grid.Geometry        { return s.geo }
func (s *State) Heuristic() nav.HeuristicParams { return s.heuristic }
func (s *State) Stamps() []obstacle.Stamp       { return s.stamps }
func (s *State) Log() *zap.Logger               { return s.log }

// ActiveDestinations returns the destinations recorded by the last
// navigation pass.
func (s *State) ActiveDestinations() map[grid.Cell]struct{} { return s.active }

// SpawnAgent creates an agent at pos. It enters the spatial index on the
// next spatial pass.
func (s *State) SpawnAgent(team int, pos vec.Vec2) ecs.EntityID {
	id := s.ECS.CreateEntity()
	s.Bodies.Set(id, &Body{Pos: pos})
	s.Members.Set(id, &Membership{Team: team})
	s.Navigators.Set(id, &Navigator{})
	s.Steerings.Set(id, &Steering{})
	return id
}

// SetDestination points an agent at a world position.
func (s *State) SetDestination(id ecs.EntityID, dest vec.Vec2) bool {
	n, ok := s.Navigators.Get(id)
	if !ok || !s.ECS.Alive(id) {
		return false
	}
	n.Dest = dest
	n.Active = true
	return true
}

// ClearDestination stops navigating; the agent keeps only repulsion.
func (s *State) ClearDestination(id ecs.EntityID) {
	if n, ok := s.Navigators.Get(id); ok {
		*n = Navigator{}
	}
}

// Despawn queues an agent for end-of-tick destruction.
func (s *State) Despawn(id ecs.EntityID) { s.ECS.MarkForDestruction(id) }

// Agents returns live agent IDs ordered by slot index.
func (s *State) Agents() []ecs.EntityID { return s.Members.IDs() }

// unindex runs before the entity's slot can be reused, so a recycled handle
// never inherits a stale index membership.
func (s *State) unindex(id ecs.EntityID) {
	m, ok := s.Members.Get(id)
	if !ok {
		return
	}
	if m.Indexed {
		if ch, ok := s.Index.Remove(id, m.Team, m.Cell); ok {
			event.Emit(s.Bus, ch)
		}
	}
	event.Emit(s.Bus, event.AgentDespawned{Team: m.Team, LastCell: m.Cell, HadCell: m.Indexed})
	m.Indexed = false
}

// BeginEnsure/EndEnsure bracket the navigation pass. Geometry and obstacle
// changes are refused in between.
func (s *State) BeginEnsure() { s.ensuring = true }
func (s *State) EndEnsure()   { s.ensuring = false }

// SetActiveDestinations records the destinations referenced this tick.
func (s *State) SetActiveDestinations(active map[grid.Cell]struct{}) { s.active = active }

// SetObstacles replaces the authored obstacle layout. Every flow field was
// searched against the old layout, so the cache is dropped wholesale.
// Returns false while a navigation pass is in progress.
func (s *State) SetObstacles(stamps []obstacle.Stamp) bool {
	if s.ensuring {
		return false
	}
	s.stamps = append([]obstacle.Stamp(nil), stamps...)
	n := s.Obstacles.SetFromSpec(s.stamps)
	s.Flows.Clear()
	s.log.Info("obstacles stamped", zap.Int("stamps", len(stamps)), zap.Int("applied", n))
	return true
}

// Reconfigure swaps the geometry and heuristic. Dense grids are resized,
// obstacles re-stamped, the flow cache dropped and every agent re-inserted
// into the index. Returns false while a navigation pass is in progress.
func (s *State) Reconfigure(geo grid.Geometry, heuristic nav.HeuristicParams) bool {
	if s.ensuring {
		return false
	}
	// Deliver change records cut against the old grid before it goes away.
	s.Bus.SwapBuffers()
	s.Bus.DispatchAll()

	old := s.geo
	s.geo = geo
	s.heuristic = heuristic

	s.Obstacles.Resize(geo)
	applied := s.Obstacles.SetFromSpec(s.stamps)
	s.Index.Resize(geo)
	s.Vision.Resize(geo)
	s.Flows.Reset(geo, heuristic)
	s.active = make(map[grid.Cell]struct{})

	reinserted := 0
	for _, id := range s.Members.IDs() {
		m, _ := s.Members.Get(id)
		m.Indexed = false
		b, ok := s.Bodies.Get(id)
		if !ok {
			continue
		}
		c, ok := geo.ToCell(b.Pos)
		if !ok {
			continue
		}
		if ch, ok := s.Index.Update(id, m.Team, grid.Cell{}, false, c); ok {
			m.Cell, m.Indexed = c, true
			event.Emit(s.Bus, ch)
			reinserted++
		}
	}
	event.Emit(s.Bus, event.GeometryChanged{Old: old, New: geo, Heuristic: heuristic})
	s.log.Info("geometry reconfigured",
		zap.Int("rows", geo.Rows), zap.Int("cols", geo.Cols),
		zap.Float64("cell_width", geo.Width), zap.Int("margin", geo.Margin),
		zap.Int("obstacles", applied), zap.Int("agents", reinserted))
	return true
}

// RequestReconfigure queues a geometry change for the start of the next
// tick. A later request replaces an earlier one.
func (s *State) RequestReconfigure(geo grid.Geometry, heuristic nav.HeuristicParams) {
	if s.pending == nil {
		s.pending = &pendingChange{}
	}
	s.pending.geo = &geo
	s.pending.heuristic = heuristic
}

// RequestObstacles queues an obstacle layout for the start of the next tick.
func (s *State) RequestObstacles(stamps []obstacle.Stamp) {
	if s.pending == nil {
		s.pending = &pendingChange{}
	}
	s.pending.stamps = append([]obstacle.Stamp(nil), stamps...)
	s.pending.hasStamps = true
}

// ApplyPending applies queued changes, obstacles first so a resize re-stamps
// the new layout. It reports whether anything was applied.
func (s *State) ApplyPending() bool {
	p := s.pending
	if p == nil || s.ensuring {
		return false
	}
	s.pending = nil
	if p.hasStamps {
		s.SetObstacles(p.stamps)
	}
	if p.geo != nil {
		s.Reconfigure(*p.geo, p.heuristic)
	}
	return true
}

// DestinationGroups resolves every active navigator to a destination cell
// and groups the agents' current cells under it. Destinations come back in
// row-major order; sources keep agent ID order.
func (s *State) DestinationGroups() ([]grid.Cell, map[grid.Cell][]grid.Cell) {
	groups := make(map[grid.Cell][]grid.Cell)
	for _, id := range s.Navigators.IDs() {
		n, _ := s.Navigators.Get(id)
		n.Resolved = false
		if !n.Active {
			continue
		}
		dc, ok := s.geo.ToCell(n.Dest)
		if !ok {
			continue
		}
		n.DestCell, n.Resolved = dc, true
		// An agent not yet indexed still keeps its destination alive.
		if _, ok := groups[dc]; !ok {
			groups[dc] = nil
		}
		if m, ok := s.Members.Get(id); ok && m.Indexed {
			groups[dc] = append(groups[dc], m.Cell)
		}
	}
	dests := make([]grid.Cell, 0, len(groups))
	for d := range groups {
		dests = append(dests, d)
	}
	sort.Slice(dests, func(i, j int) bool {
		if dests[i].Row != dests[j].Row {
			return dests[i].Row < dests[j].Row
		}
		return dests[i].Col < dests[j].Col
	})
	return dests, groups
}
