package system

import (
	"time"

	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/metrics"
	"github.com/l1jgo/navgrid/internal/world"
)

// MetricsSystem publishes flow cache and agent counts once per tick.
// Phase 6 (PostUpdate).
type MetricsSystem struct {
	world    *world.State
	exporter *metrics.Exporter
}

func NewMetricsSystem(ws *world.State, exporter *metrics.Exporter) *MetricsSystem {
	return &MetricsSystem{world: ws, exporter: exporter}
}

func (s *MetricsSystem) Phase() coresys.Phase { return coresys.PhasePostUpdate }

func (s *MetricsSystem) Update(_ time.Duration) {
	st := s.world.Flows.Stats()
	s.exporter.Observe(metrics.Snapshot{
		FlowEntries:    st.Entries,
		FinalizedCells: st.Finalized,
		FlowVectors:    st.Vectors,
		Agents:         s.world.ECS.Pool().Live(),
		Unreachable:    st.Unreachable,
		Collected:      st.Collected,
	})
}
