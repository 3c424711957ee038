package system

import (
	"time"

	"github.com/l1jgo/navgrid/internal/core/event"
	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/world"
)

// EventDispatchSystem makes last tick's events readable and delivers them.
// Register it before ReconfigureSystem so change records cut against the
// old grid are consumed before a resize.
// Phase 0 (Input).
type EventDispatchSystem struct {
	bus *event.Bus
}

func NewEventDispatchSystem(bus *event.Bus) *EventDispatchSystem {
	return &EventDispatchSystem{bus: bus}
}

func (s *EventDispatchSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *EventDispatchSystem) Update(_ time.Duration) {
	s.bus.SwapBuffers()
	s.bus.DispatchAll()
}

// ReconfigureSystem applies geometry and obstacle changes queued since the
// last tick, before any spatial or navigation work starts.
// Phase 0 (Input).
type ReconfigureSystem struct {
	world *world.State
}

func NewReconfigureSystem(ws *world.State) *ReconfigureSystem {
	return &ReconfigureSystem{world: ws}
}

func (s *ReconfigureSystem) Phase() coresys.Phase { return coresys.PhaseInput }

func (s *ReconfigureSystem) Update(_ time.Duration) {
	s.world.ApplyPending()
}
