package ecs

// Each2 visits entities that carry both A and B, ranging over the smaller
// store and probing the other.
func Each2[A, B any](sa *Store[A], sb *Store[B], fn func(EntityID, *A, *B)) {
	if sa.Len() <= sb.Len() {
		for id, a := range sa.data {
			if b, ok := sb.data[id]; ok {
				fn(id, a, b)
			}
		}
		return
	}
	for id, b := range sb.data {
		if a, ok := sa.data[id]; ok {
			fn(id, a, b)
		}
	}
}

// Each3 visits entities that carry A, B and C, ranging over A.
// Pass the store most likely to be small first.
func Each3[A, B, C any](sa *Store[A], sb *Store[B], sc *Store[C], fn func(EntityID, *A, *B, *C)) {
	for id, a := range sa.data {
		b, ok := sb.data[id]
		if !ok {
			continue
		}
		if c, ok := sc.data[id]; ok {
			fn(id, a, b, c)
		}
	}
}
