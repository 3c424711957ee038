package system

import "time"

// Phase defines execution ordering within a single tick.
type Phase int

const (
	PhaseInput      Phase = iota // 0: dispatch last tick's events, apply queued reconfigure
	PhaseSpatial                 // 1: move handles between cells, emit change records
	PhaseNavigate                // 2: extend searches for every (destination, source)
	PhaseCollect                 // 3: drop flow fields nobody targets
	PhaseSteer                   // 4: sample flow + repulsion (read-only fan-out)
	PhaseIntegrate               // 5: apply forces to velocity and position
	PhasePostUpdate              // 6: visibility, metrics
	PhaseCleanup                 // 7: destroy queued entities
)

var phaseNames = [...]string{"input", "spatial", "navigate", "collect", "steer", "integrate", "post_update", "cleanup"}

func (p Phase) String() string {
	if p >= 0 && int(p) < len(phaseNames) {
		return phaseNames[p]
	}
	return "phase?"
}

// System is the interface every tick system implements.
type System interface {
	Phase() Phase
	Update(dt time.Duration)
}
