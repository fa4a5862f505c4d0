package motion

// The registry owns every animation record. Records are recycled through a
// slot pool rather than freed, so sustained animation load does not allocate
// per submission; generational handles detect use of a slot after reuse.
//
// The registry is the engine's only shared mutable structure and all
// mutation goes through the engine's narrow API. It is not safe for
// concurrent use.

type slot struct {
	generation uint32
	rec        *record
}

type registry struct {
	slots []slot
	free  []uint32
	// order holds live slot indices in insertion order. Stable iteration
	// keeps frame output deterministic when animations overlap.
	order  []uint32
	owners map[string]Handle
	nextID uint64
}

func newRegistry() *registry {
	return &registry{owners: make(map[string]Handle)}
}

// alloc claims a slot, reusing a free one when available. Reuse bumps the
// slot generation so handles to the previous occupant go stale.
func (r *registry) alloc() (Handle, *record) {
	r.nextID++

	var idx uint32
	if n := len(r.free); n > 0 {
		idx = r.free[n-1]
		r.free = r.free[:n-1]
		r.slots[idx].generation++
		r.slots[idx].rec.reset()
	} else {
		idx = uint32(len(r.slots))
		r.slots = append(r.slots, slot{generation: 1, rec: &record{}})
	}

	rec := r.slots[idx].rec
	h := Handle{index: idx, generation: r.slots[idx].generation}
	rec.id = r.nextID
	rec.handle = h
	r.order = append(r.order, idx)
	return h, rec
}

// get resolves a handle. Terminal records stay resolvable until their slot
// is reused; stale handles return nil.
func (r *registry) get(h Handle) *record {
	if int(h.index) >= len(r.slots) {
		return nil
	}
	s := r.slots[h.index]
	if s.generation != h.generation {
		return nil
	}
	return s.rec
}

// release returns a terminal record's slot to the free list and drops it
// from iteration order. The record's state stays readable through its
// handle until the slot is reused.
func (r *registry) release(h Handle) {
	rec := r.get(h)
	if rec == nil {
		return
	}
	for i, idx := range r.order {
		if idx == h.index {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	if rec.owner != "" {
		if cur, ok := r.owners[rec.owner]; ok && cur == h {
			delete(r.owners, rec.owner)
		}
	}
	r.free = append(r.free, h.index)
}

// liveCount returns the number of non-terminal records.
func (r *registry) liveCount() int {
	return len(r.order)
}
