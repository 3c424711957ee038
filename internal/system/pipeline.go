package system

import (
	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/metrics"
	"github.com/l1jgo/navgrid/internal/world"
)

// Pipeline is the full navigation tick wired onto one runner. The order
// inside PhaseInput matters: events first, then queued reconfigure.
type Pipeline struct {
	Runner     *coresys.Runner
	Spatial    *SpatialSystem
	Navigation *NavigationSystem
	Visibility *VisibilitySystem
}

// NewPipeline registers every system for ws. exporter may be nil.
func NewPipeline(ws *world.State, params SteerParams, teams int, exporter *metrics.Exporter) *Pipeline {
	p := &Pipeline{
		Runner:     coresys.NewRunner(),
		Spatial:    NewSpatialSystem(ws),
		Navigation: NewNavigationSystem(ws),
		Visibility: NewVisibilitySystem(ws, teams, 2),
	}
	r := p.Runner
	r.Register(NewEventDispatchSystem(ws.Bus))
	r.Register(NewReconfigureSystem(ws))
	r.Register(p.Spatial)
	r.Register(p.Navigation)
	r.Register(NewFlowGCSystem(ws))
	r.Register(NewSteeringSystem(ws, params))
	r.Register(NewIntegrateSystem(ws, params))
	r.Register(p.Visibility)
	if exporter != nil {
		r.Register(NewMetricsSystem(ws, exporter))
	}
	r.Register(NewCleanupSystem(ws))
	return p
}
