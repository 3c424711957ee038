package ecs

import "strconv"

// EntityID encodes a 32-bit slot index in the lower bits and a 32-bit
// generation in the upper bits. The generation bumps on destroy, so a handle
// held past its entity's lifetime never matches the slot's next occupant.
type EntityID uint64

func NewEntityID(index uint32, generation uint32) EntityID {
	return EntityID(uint64(generation)<<32 | uint64(index))
}

func (id EntityID) Index() uint32      { return uint32(id) }
func (id EntityID) Generation() uint32 { return uint32(id >> 32) }
func (id EntityID) IsZero() bool       { return id == 0 }

// String renders index#generation, e.g. "12#3".
func (id EntityID) String() string {
	return strconv.FormatUint(uint64(id.Index()), 10) + "#" + strconv.FormatUint(uint64(id.Generation()), 10)
}

// EntityPool hands out generational IDs and recycles freed slots LIFO.
type EntityPool struct {
	generations []uint32
	freeList    []uint32
	live        int
}

func NewEntityPool() *EntityPool {
	return &EntityPool{
		generations: make([]uint32, 0, 1024),
		freeList:    make([]uint32, 0, 256),
	}
}

func (p *EntityPool) Create() EntityID {
	p.live++
	if n := len(p.freeList); n > 0 {
		idx := p.freeList[n-1]
		p.freeList = p.freeList[:n-1]
		return NewEntityID(idx, p.generations[idx])
	}
	// Slot 0 starts at generation 1 so no live entity equals the zero ID.
	idx := uint32(len(p.generations))
	gen := uint32(0)
	if idx == 0 {
		gen = 1
	}
	p.generations = append(p.generations, gen)
	return NewEntityID(idx, gen)
}

func (p *EntityPool) Alive(id EntityID) bool {
	idx := id.Index()
	if int(idx) >= len(p.generations) {
		return false
	}
	return p.generations[idx] == id.Generation()
}

// Destroy frees the slot. Stale or unknown IDs are ignored and return false.
func (p *EntityPool) Destroy(id EntityID) bool {
	if !p.Alive(id) {
		return false
	}
	idx := id.Index()
	p.generations[idx]++
	p.freeList = append(p.freeList, idx)
	p.live--
	return true
}

// Live returns the number of allocated, not yet destroyed entities.
func (p *EntityPool) Live() int { return p.live }
