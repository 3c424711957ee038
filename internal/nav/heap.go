package nav

// frontierEntry is one discovered-but-not-finalized candidate. cost is the
// path cost from the destination; prio adds the heuristic toward the source
// the frontier was last keyed for.
type frontierEntry struct {
	idx  int // flat grid index
	cost float64
	prio float64
}

// minHeap orders entries by prio. Hand-rolled to avoid container/heap's
// interface boxing on the hot path.
type minHeap []frontierEntry

func (h *minHeap) push(e frontierEntry) {
	*h = append(*h, e)
	h.up(len(*h) - 1)
}

func (h *minHeap) pop() frontierEntry {
	old := *h
	n := len(old)
	e := old[0]
	old[0] = old[n-1]
	*h = old[:n-1]
	if len(*h) > 0 {
		h.down(0)
	}
	return e
}

func (h minHeap) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h[parent].prio <= h[i].prio {
			break
		}
		h[parent], h[i] = h[i], h[parent]
		i = parent
	}
}

func (h minHeap) down(i int) {
	n := len(h)
	for {
		left := 2*i + 1
		if left >= n {
			return
		}
		smallest := left
		if right := left + 1; right < n && h[right].prio < h[left].prio {
			smallest = right
		}
		if h[i].prio <= h[smallest].prio {
			return
		}
		h[i], h[smallest] = h[smallest], h[i]
		i = smallest
	}
}

// rekey recomputes every priority and restores heap order in O(n).
func (h minHeap) rekey(prio func(frontierEntry) float64) {
	for i := range h {
		h[i].prio = prio(h[i])
	}
	for i := len(h)/2 - 1; i >= 0; i-- {
		h.down(i)
	}
}
