package world

import (
	"testing"

	"github.com/l1jgo/navgrid/internal/core/ecs"
	"github.com/l1jgo/navgrid/internal/core/event"
	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/l1jgo/navgrid/internal/nav"
	"github.com/l1jgo/navgrid/internal/obstacle"
	"github.com/l1jgo/navgrid/internal/spatial"
	"github.com/l1jgo/navgrid/internal/vec"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newState() *State {
	geo := grid.NewGeometry(10, 10, 10)
	geo.Margin = 0
	return NewState(geo, Options{Teams: 2, Sight: 2, Heuristic: nav.DefaultHeuristic(), Repulsion: obstacle.DefaultRepulsion()}, nil)
}

func TestSetObstaclesDropsFlowCache(t *testing.T) {
	s := newState()
	dest := grid.Cell{Row: 5, Col: 5}
	s.Flows.Ensure(dest, []grid.Cell{{Row: 5, Col: 0}}, s.Obstacles)
	require.Equal(t, 1, s.Flows.Len())

	require.True(t, s.SetObstacles([]obstacle.Stamp{{Cell: grid.Cell{Row: 5, Col: 2}, Kind: obstacle.Full}}))
	assert.Equal(t, 0, s.Flows.Len())
	assert.Equal(t, obstacle.Full, s.Obstacles.Kind(grid.Cell{Row: 5, Col: 2}))
	assert.Len(t, s.Stamps(), 1)
}

func TestChangesRefusedDuringEnsure(t *testing.T) {
	s := newState()
	s.BeginEnsure()
	assert.False(t, s.SetObstacles(nil))
	assert.False(t, s.Reconfigure(grid.NewGeometry(4, 4, 1), nav.HeuristicParams{}))
	s.RequestReconfigure(grid.NewGeometry(4, 4, 1), nav.HeuristicParams{})
	assert.False(t, s.ApplyPending(), "still queued")
	s.EndEnsure()

	assert.True(t, s.ApplyPending())
	assert.Equal(t, 4, s.Geometry().Rows)
	assert.False(t, s.ApplyPending(), "queue drained")
}

func TestReconfigureReinsertsAgents(t *testing.T) {
	s := newState()
	inside := s.SpawnAgent(0, vec.Vec2{X: 1, Y: 1})
	outside := s.SpawnAgent(1, vec.Vec2{X: 45, Y: 45})
	s.SetObstacles([]obstacle.Stamp{
		{Cell: grid.Cell{Row: 1, Col: 1}, Kind: obstacle.HalfNE},
		{Cell: grid.Cell{Row: 8, Col: 8}, Kind: obstacle.Full},
	})

	var geoEvents []event.GeometryChanged
	var changes []spatial.Change
	event.Subscribe(s.Bus, func(ev event.GeometryChanged) { geoEvents = append(geoEvents, ev) })
	event.Subscribe(s.Bus, func(ch spatial.Change) { changes = append(changes, ch) })

	small := grid.NewGeometry(6, 6, 10)
	small.Margin = 0
	require.True(t, s.Reconfigure(small, nav.HeuristicParams{MaxWeight: 0.5, RampCells: 10}))
	assert.Equal(t, small, s.Geometry())
	assert.Equal(t, 0.5, s.Heuristic().MaxWeight)

	// Stamps outside the new grid are skipped, the rest re-applied.
	assert.Equal(t, obstacle.HalfNE, s.Obstacles.Kind(grid.Cell{Row: 1, Col: 1}))
	assert.Equal(t, 1, s.Obstacles.Count())

	c, ok := s.Index.CellOf(inside, 0)
	require.True(t, ok)
	assert.Equal(t, grid.Cell{Row: 3, Col: 3}, c)
	_, ok = s.Index.CellOf(outside, 1)
	assert.False(t, ok)
	m, _ := s.Members.Get(outside)
	assert.False(t, m.Indexed)

	s.Bus.SwapBuffers()
	s.Bus.DispatchAll()
	require.Len(t, geoEvents, 1)
	assert.Equal(t, 10, geoEvents[0].Old.Rows)
	assert.Equal(t, 6, geoEvents[0].New.Rows)
	require.Len(t, changes, 1)
	assert.Equal(t, inside, changes[0].Entity)
	assert.False(t, changes[0].HasPrev)
}

func TestDespawnHookUnindexes(t *testing.T) {
	s := newState()
	id := s.SpawnAgent(1, vec.Vec2{})
	m, _ := s.Members.Get(id)
	ch, ok := s.Index.Update(id, 1, grid.Cell{}, false, grid.Cell{Row: 5, Col: 5})
	require.True(t, ok)
	m.Cell, m.Indexed = ch.New, true

	var despawned []event.AgentDespawned
	event.Subscribe(s.Bus, func(ev event.AgentDespawned) { despawned = append(despawned, ev) })

	s.Despawn(id)
	assert.Equal(t, 1, s.Index.Len(1), "still indexed until the flush")
	s.ECS.FlushDestroyQueue()
	assert.Equal(t, 0, s.Index.Len(1))
	assert.False(t, s.Members.Has(id))
	assert.False(t, s.SetDestination(id, vec.Vec2{}))

	s.Bus.SwapBuffers()
	s.Bus.DispatchAll()
	require.Len(t, despawned, 1)
	assert.Equal(t, grid.Cell{Row: 5, Col: 5}, despawned[0].LastCell)
	assert.True(t, despawned[0].HadCell)
}

func TestDestinationGroups(t *testing.T) {
	s := newState()
	geo := s.Geometry()
	a := s.SpawnAgent(0, geo.ToWorld(grid.Cell{Row: 1, Col: 1}))
	b := s.SpawnAgent(0, geo.ToWorld(grid.Cell{Row: 2, Col: 2}))
	c := s.SpawnAgent(0, geo.ToWorld(grid.Cell{Row: 3, Col: 3}))
	idle := s.SpawnAgent(0, vec.Vec2{})

	// a and b share a destination; c goes elsewhere and is not indexed yet.
	for _, id := range []ecs.EntityID{a, b} {
		m, _ := s.Members.Get(id)
		body, _ := s.Bodies.Get(id)
		cell, _ := geo.ToCell(body.Pos)
		s.Index.Update(id, m.Team, grid.Cell{}, false, cell)
		m.Cell, m.Indexed = cell, true
	}
	s.SetDestination(a, geo.ToWorld(grid.Cell{Row: 8, Col: 8}))
	s.SetDestination(b, geo.ToWorld(grid.Cell{Row: 8, Col: 8}))
	s.SetDestination(c, geo.ToWorld(grid.Cell{Row: 0, Col: 9}))

	dests, groups := s.DestinationGroups()
	assert.Equal(t, []grid.Cell{{Row: 0, Col: 9}, {Row: 8, Col: 8}}, dests)
	assert.Equal(t, []grid.Cell{{Row: 1, Col: 1}, {Row: 2, Col: 2}}, groups[grid.Cell{Row: 8, Col: 8}])
	assert.Empty(t, groups[grid.Cell{Row: 0, Col: 9}])
	n, _ := s.Navigators.Get(c)
	assert.True(t, n.Resolved)
	n, _ = s.Navigators.Get(idle)
	assert.False(t, n.Resolved)
}
