package system

import (
	"math"
	"time"

	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/vec"
	"github.com/l1jgo/navgrid/internal/world"
)

// IntegrateSystem is a minimal semi-implicit Euler step: force to velocity,
// velocity to position. Agents with no force are damped toward rest. The
// grid box is solid: positions are clamped inside it and the outward
// velocity component is dropped.
// Phase 5 (Integrate).
type IntegrateSystem struct {
	world  *world.State
	params SteerParams
}

func NewIntegrateSystem(ws *world.State, params SteerParams) *IntegrateSystem {
	return &IntegrateSystem{world: ws, params: params}
}

func (s *IntegrateSystem) Phase() coresys.Phase { return coresys.PhaseIntegrate }

func (s *IntegrateSystem) Update(dt time.Duration) {
	sec := dt.Seconds()
	if sec <= 0 {
		return
	}
	ws := s.world
	bounds := ws.Geometry().Bounds()
	// Keep positions strictly below the max edge so they map to a cell.
	eps := ws.Geometry().Width * 1e-6

	for _, id := range ws.Agents() {
		b, ok := ws.Bodies.Get(id)
		if !ok {
			continue
		}
		st, _ := ws.Steerings.Get(id)
		var force vec.Vec2
		if st != nil {
			force = st.Force
		}
		if force.IsZero() {
			b.Vel = b.Vel.Mul(math.Max(0, 1-s.params.Damping*sec))
		} else {
			b.Vel = b.Vel.Add(force.Mul(sec))
		}
		b.Vel = b.Vel.ClampLength(s.params.MaxSpeed)
		b.Pos = b.Pos.Add(b.Vel.Mul(sec))

		if b.Pos.X < bounds.Min.X {
			b.Pos.X, b.Vel.X = bounds.Min.X, math.Max(0, b.Vel.X)
		} else if b.Pos.X > bounds.Max.X-eps {
			b.Pos.X, b.Vel.X = bounds.Max.X-eps, math.Min(0, b.Vel.X)
		}
		if b.Pos.Y < bounds.Min.Y {
			b.Pos.Y, b.Vel.Y = bounds.Min.Y, math.Max(0, b.Vel.Y)
		} else if b.Pos.Y > bounds.Max.Y-eps {
			b.Pos.Y, b.Vel.Y = bounds.Max.Y-eps, math.Min(0, b.Vel.Y)
		}
	}
}
