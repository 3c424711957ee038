package metrics

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveDeltas(t *testing.T) {
	e := NewExporter()
	e.Observe(Snapshot{FlowEntries: 3, FinalizedCells: 120, Agents: 10, Unreachable: 2, Collected: 1})
	e.Observe(Snapshot{FlowEntries: 2, FinalizedCells: 90, Agents: 9, Unreachable: 5, Collected: 1})

	assert.Equal(t, 2.0, testutil.ToFloat64(e.flowEntries))
	assert.Equal(t, 90.0, testutil.ToFloat64(e.finalized))
	assert.Equal(t, 9.0, testutil.ToFloat64(e.agents))
	assert.Equal(t, 5.0, testutil.ToFloat64(e.unreachable))
	assert.Equal(t, 1.0, testutil.ToFloat64(e.collected))
}

func TestHandlerExposesCollectors(t *testing.T) {
	e := NewExporter()
	e.ObserveTick(3 * time.Millisecond)
	e.Observe(Snapshot{FlowEntries: 1})

	rec := httptest.NewRecorder()
	e.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body := rec.Body.String()
	for _, name := range []string{"navgrid_flow_entries 1", "navgrid_tick_seconds_count 1", "navgrid_unreachable_total 0"} {
		assert.True(t, strings.Contains(body, name), "missing %q", name)
	}
}
