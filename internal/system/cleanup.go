package system

import (
	"time"

	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/world"
	"go.uber.org/zap"
)

// CleanupSystem flushes the deferred entity destruction queue at tick end.
// The world's destroy hook pulls each agent out of the spatial index before
// its slot returns to the pool.
// Phase 7 (Cleanup).
type CleanupSystem struct {
	world *world.State
}

func NewCleanupSystem(ws *world.State) *CleanupSystem {
	return &CleanupSystem{world: ws}
}

func (s *CleanupSystem) Phase() coresys.Phase { return coresys.PhaseCleanup }

func (s *CleanupSystem) Update(_ time.Duration) {
	if n := s.world.ECS.FlushDestroyQueue(); n > 0 {
		s.world.Log().Debug("agents despawned", zap.Int("count", n))
	}
}
