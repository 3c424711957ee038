package event

import (
	"testing"

	"github.com/l1jgo/navgrid/internal/grid"
	"github.com/stretchr/testify/assert"
)

func TestBusDoubleBuffered(t *testing.T) {
	b := NewBus()
	var got []AgentDespawned
	Subscribe(b, func(ev AgentDespawned) { got = append(got, ev) })

	Emit(b, AgentDespawned{Team: 1})
	Emit(b, AgentDespawned{Team: 2})
	assert.Equal(t, 2, b.Pending())

	b.DispatchAll()
	assert.Empty(t, got, "not readable in the emitting tick")

	b.SwapBuffers()
	assert.Equal(t, 0, b.Pending())
	b.DispatchAll()
	assert.Equal(t, []AgentDespawned{{Team: 1}, {Team: 2}}, got)

	b.SwapBuffers()
	got = nil
	b.DispatchAll()
	assert.Empty(t, got, "delivered once")
}

func TestBusTypeOrder(t *testing.T) {
	b := NewBus()
	var order []string
	Subscribe(b, func(GeometryChanged) { order = append(order, "geo") })
	Subscribe(b, func(AgentDespawned) { order = append(order, "despawn") })

	Emit(b, GeometryChanged{New: grid.NewGeometry(4, 4, 1)})
	Emit(b, AgentDespawned{})
	b.SwapBuffers()
	b.DispatchAll()
	assert.Equal(t, []string{"geo", "despawn"}, order)
}
