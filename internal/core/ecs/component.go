package ecs

import "sort"

// Removable is implemented by every component store so the World can strip
// a destroyed entity from all of them at once.
type Removable interface {
	Remove(id EntityID)
}

// Store is a typed map of component pointers. Systems mutate components in
// place through the returned pointers.
type Store[T any] struct {
	data map[EntityID]*T
}

func NewStore[T any]() *Store[T] {
	return &Store[T]{data: make(map[EntityID]*T, 256)}
}

func (s *Store[T]) Set(id EntityID, c *T) { s.data[id] = c }

func (s *Store[T]) Get(id EntityID) (*T, bool) {
	c, ok := s.data[id]
	return c, ok
}

func (s *Store[T]) Remove(id EntityID) { delete(s.data, id) }

func (s *Store[T]) Has(id EntityID) bool {
	_, ok := s.data[id]
	return ok
}

func (s *Store[T]) Len() int { return len(s.data) }

// Each visits components in map order.
func (s *Store[T]) Each(fn func(EntityID, *T)) {
	for id, c := range s.data {
		fn(id, c)
	}
}

// IDs returns the stored entities ordered by slot index. Use it where the
// visit order must be reproducible between runs.
func (s *Store[T]) IDs() []EntityID {
	ids := make([]EntityID, 0, len(s.data))
	for id := range s.data {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i].Index() < ids[j].Index() })
	return ids
}
