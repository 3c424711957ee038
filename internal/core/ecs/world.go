package ecs

// World owns the entity pool, the registered component stores and a
// deferred destruction queue. Entities marked during a tick stay fully
// readable until CleanupSystem flushes the queue at the end of it.
type World struct {
	pool         *EntityPool
	stores       []Removable
	hooks        []func(EntityID)
	destroyQueue []EntityID
	queued       map[EntityID]struct{}
}

func NewWorld() *World {
	return &World{
		pool:         NewEntityPool(),
		stores:       make([]Removable, 0, 16),
		destroyQueue: make([]EntityID, 0, 64),
		queued:       make(map[EntityID]struct{}, 64),
	}
}

func (w *World) Pool() *EntityPool { return w.pool }

// Register adds a component store stripped on destroy.
func (w *World) Register(store Removable) { w.stores = append(w.stores, store) }

// OnDestroy registers a hook run for each entity during the flush, before
// its components are removed and before its slot can be reused. External
// indexes keyed by EntityID drop the handle here.
func (w *World) OnDestroy(fn func(EntityID)) { w.hooks = append(w.hooks, fn) }

func (w *World) CreateEntity() EntityID { return w.pool.Create() }

func (w *World) Alive(id EntityID) bool { return w.pool.Alive(id) }

// MarkForDestruction queues an entity for end-of-tick cleanup. Marking the
// same entity twice, or a dead one, is a no-op.
func (w *World) MarkForDestruction(id EntityID) {
	if !w.pool.Alive(id) {
		return
	}
	if _, ok := w.queued[id]; ok {
		return
	}
	w.queued[id] = struct{}{}
	w.destroyQueue = append(w.destroyQueue, id)
}

// Pending returns the number of entities waiting for the flush.
func (w *World) Pending() int { return len(w.destroyQueue) }

// FlushDestroyQueue runs the destroy hooks, strips components and frees the
// slots of every queued entity. It returns how many were destroyed.
func (w *World) FlushDestroyQueue() int {
	n := 0
	for _, id := range w.destroyQueue {
		for _, fn := range w.hooks {
			fn(id)
		}
		for _, s := range w.stores {
			s.Remove(id)
		}
		if w.pool.Destroy(id) {
			n++
		}
		delete(w.queued, id)
	}
	w.destroyQueue = w.destroyQueue[:0]
	return n
}
