package system

import (
	"time"

	"github.com/l1jgo/navgrid/internal/core/event"
	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/spatial"
	"github.com/l1jgo/navgrid/internal/world"
	"go.uber.org/zap"
)

// VisibilitySystem keeps the per-team visibility map in step with the
// spatial index. Change records are folded in as the bus delivers them; the
// tick update only refreshes the coverage snapshot, every interval ticks.
// Phase 6 (PostUpdate).
type VisibilitySystem struct {
	world    *world.State
	interval int
	ticks    int
	coverage []int
}

func NewVisibilitySystem(ws *world.State, teams, interval int) *VisibilitySystem {
	if interval < 1 {
		interval = 1
	}
	s := &VisibilitySystem{world: ws, interval: interval, coverage: make([]int, teams)}
	event.Subscribe(ws.Bus, func(ch spatial.Change) {
		ws.Vision.Apply(ch)
	})
	event.Subscribe(ws.Bus, func(ev event.GeometryChanged) {
		ws.Log().Debug("visibility rebuilt for new grid",
			zap.Int("rows", ev.New.Rows), zap.Int("cols", ev.New.Cols))
	})
	return s
}

func (s *VisibilitySystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

// Coverage returns the visible cell count per team from the last refresh.
func (s *VisibilitySystem) Coverage() []int { return s.coverage }

func (s *VisibilitySystem) Update(_ time.Duration) {
	s.ticks++
	if s.ticks < s.interval {
		return
	}
	s.ticks = 0
	for t := range s.coverage {
		s.coverage[t] = s.world.Vision.VisibleCells(t)
	}
}
