package grid

// Dense is a fixed-size row-major array of cell payloads. It must be
// Resize()d after any geometry change; old contents are discarded.
// Accessed only from the simulation goroutine. No locks.
type Dense[T any] struct {
	geo  Geometry
	data []T
}

func NewDense[T any](geo Geometry) *Dense[T] {
	return &Dense[T]{geo: geo, data: make([]T, geo.Len())}
}

func (d *Dense[T]) Geometry() Geometry { return d.geo }

// Get returns the payload at c, or the zero value when c is out of bounds.
func (d *Dense[T]) Get(c Cell) T {
	if !d.geo.InBounds(c) {
		var zero T
		return zero
	}
	return d.data[d.geo.Index(c)]
}

// Ptr returns a mutable pointer into the backing array, or nil out of bounds.
func (d *Dense[T]) Ptr(c Cell) *T {
	if !d.geo.InBounds(c) {
		return nil
	}
	return &d.data[d.geo.Index(c)]
}

// Set stores v at c. Out-of-bounds writes are dropped.
func (d *Dense[T]) Set(c Cell, v T) bool {
	if !d.geo.InBounds(c) {
		return false
	}
	d.data[d.geo.Index(c)] = v
	return true
}

// Fill overwrites every cell with v.
func (d *Dense[T]) Fill(v T) {
	for i := range d.data {
		d.data[i] = v
	}
}

// Resize adopts a new geometry and resets every cell to the zero value.
func (d *Dense[T]) Resize(geo Geometry) {
	n := geo.Len()
	if cap(d.data) < n {
		d.data = make([]T, n)
	} else {
		d.data = d.data[:n]
		var zero T
		for i := range d.data {
			d.data[i] = zero
		}
	}
	d.geo = geo
}

// Sparse stores payloads only for cells that were written. Reads of absent
// cells report ok=false; nothing is ever auto-populated.
type Sparse[T any] struct {
	geo  Geometry
	data map[int]T
}

func NewSparse[T any](geo Geometry) *Sparse[T] {
	return &Sparse[T]{geo: geo, data: make(map[int]T)}
}

func (s *Sparse[T]) Geometry() Geometry { return s.geo }

func (s *Sparse[T]) Get(c Cell) (T, bool) {
	if !s.geo.InBounds(c) {
		var zero T
		return zero, false
	}
	v, ok := s.data[s.geo.Index(c)]
	return v, ok
}

func (s *Sparse[T]) Has(c Cell) bool {
	_, ok := s.Get(c)
	return ok
}

// Set stores v at c. Out-of-bounds writes are dropped.
func (s *Sparse[T]) Set(c Cell, v T) bool {
	if !s.geo.InBounds(c) {
		return false
	}
	s.data[s.geo.Index(c)] = v
	return true
}

func (s *Sparse[T]) Delete(c Cell) {
	if s.geo.InBounds(c) {
		delete(s.data, s.geo.Index(c))
	}
}

func (s *Sparse[T]) Len() int { return len(s.data) }

// Each visits every stored cell in unspecified order.
func (s *Sparse[T]) Each(fn func(Cell, T)) {
	for idx, v := range s.data {
		fn(s.geo.CellAt(idx), v)
	}
}

// Clear drops all stored cells.
func (s *Sparse[T]) Clear() {
	for k := range s.data {
		delete(s.data, k)
	}
}

// Resize only swaps the geometry; stored entries keep their flat indices.
// Owners of destination-keyed data drop it wholesale instead of re-projecting.
func (s *Sparse[T]) Resize(geo Geometry) { s.geo = geo }
