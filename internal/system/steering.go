package system

import (
	"context"
	"runtime"
	"time"

	"github.com/l1jgo/navgrid/internal/core/ecs"
	coresys "github.com/l1jgo/navgrid/internal/core/system"
	"github.com/l1jgo/navgrid/internal/world"
	"golang.org/x/sync/errgroup"
)

// SteerParams bounds the forces and speeds agents may reach.
type SteerParams struct {
	MaxForce float64 // world units / s²
	MaxSpeed float64 // world units / s
	Damping  float64 // fraction of velocity shed per second with no force
	Workers  int     // sampling goroutines; <= 0 means GOMAXPROCS
}

func DefaultSteerParams() SteerParams {
	return SteerParams{MaxForce: 40, MaxSpeed: 20, Damping: 2}
}

// SteeringSystem samples the flow field and obstacle repulsion for every
// agent. Sampling only reads the caches, so agents are split across
// workers; each worker writes only its own agents' Steering components.
// Phase 4 (Steer).
type SteeringSystem struct {
	world  *world.State
	params SteerParams
}

func NewSteeringSystem(ws *world.State, params SteerParams) *SteeringSystem {
	return &SteeringSystem{world: ws, params: params}
}

func (s *SteeringSystem) Phase() coresys.Phase { return coresys.PhaseSteer }

func (s *SteeringSystem) Update(_ time.Duration) {
	ids := s.world.Agents()
	if len(ids) == 0 {
		return
	}
	workers := s.params.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > len(ids) {
		workers = len(ids)
	}
	chunk := (len(ids) + workers - 1) / workers

	g, _ := errgroup.WithContext(context.Background())
	for start := 0; start < len(ids); start += chunk {
		part := ids[start:min(start+chunk, len(ids))]
		g.Go(func() error {
			for _, id := range part {
				s.steer(id)
			}
			return nil
		})
	}
	_ = g.Wait()
}

func (s *SteeringSystem) steer(id ecs.EntityID) {
	ws := s.world
	st, ok := ws.Steerings.Get(id)
	if !ok {
		return
	}
	b, ok := ws.Bodies.Get(id)
	if !ok {
		return
	}
	*st = world.Steering{}
	if n, ok := ws.Navigators.Get(id); ok && n.Resolved {
		st.Flow = ws.Flows.Sample(n.DestCell, b.Pos)
	}
	st.Repulsion = ws.Obstacles.RepulsionForce(b.Pos, b.Vel)
	st.Force = st.Flow.Mul(s.params.MaxForce).
		Add(st.Repulsion.Mul(s.params.MaxForce)).
		ClampLength(s.params.MaxForce)
}
