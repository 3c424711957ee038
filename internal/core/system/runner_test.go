package system

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

type recorder struct {
	name  string
	phase Phase
	log   *[]string
}

func (r recorder) Phase() Phase            { return r.phase }
func (r recorder) Update(dt time.Duration) { *r.log = append(*r.log, r.name) }

func TestRunnerPhaseOrder(t *testing.T) {
	var log []string
	r := NewRunner()
	r.Register(recorder{"cleanup", PhaseCleanup, &log})
	r.Register(recorder{"steer", PhaseSteer, &log})
	r.Register(recorder{"spatial", PhaseSpatial, &log})
	r.Register(recorder{"nav-a", PhaseNavigate, &log})
	r.Register(recorder{"nav-b", PhaseNavigate, &log})
	r.Register(recorder{"input", PhaseInput, &log})

	r.Tick(time.Second / 20)
	assert.Equal(t, []string{"input", "spatial", "nav-a", "nav-b", "steer", "cleanup"}, log)
	assert.Equal(t, 6, r.Len())

	log = log[:0]
	r.TickPhase(PhaseNavigate, 0)
	assert.Equal(t, []string{"nav-a", "nav-b"}, log)
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "navigate", PhaseNavigate.String())
	assert.Equal(t, "cleanup", PhaseCleanup.String())
	assert.Equal(t, "phase?", Phase(42).String())
}
