package system

import (
	"time"

	"github.com/l1jgo/navgrid/internal/core/event"
	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/world"
)

// SpatialSystem moves every agent's handle to the cell under its position
// and emits a change record for each transition. Agents that left the grid
// are removed from the index until they come back.
// Phase 1 (Spatial).
type SpatialSystem struct {
	world *world.State
	moved int
}

func NewSpatialSystem(ws *world.State) *SpatialSystem {
	return &SpatialSystem{world: ws}
}

func (s *SpatialSystem) Phase() coresys.Phase { return coresys.PhaseSpatial }

// Moved returns the number of membership changes in the last tick.
func (s *SpatialSystem) Moved() int { return s.moved }

func (s *SpatialSystem) Update(_ time.Duration) {
	ws := s.world
	geo := ws.Geometry()
	s.moved = 0
	for _, id := range ws.Agents() {
		m, _ := ws.Members.Get(id)
		b, ok := ws.Bodies.Get(id)
		if !ok {
			continue
		}
		c, inside := geo.ToCell(b.Pos)
		if !inside {
			if m.Indexed {
				if ch, ok := ws.Index.Remove(id, m.Team, m.Cell); ok {
					event.Emit(ws.Bus, ch)
					s.moved++
				}
				m.Indexed = false
			}
			continue
		}
		ch, changed := ws.Index.Update(id, m.Team, m.Cell, m.Indexed, c)
		if !changed {
			continue
		}
		m.Cell, m.Indexed = c, true
		event.Emit(ws.Bus, ch)
		s.moved++
	}
}
