package object

// ID encodes a 32-bit slot in the lower bits and a 32-bit generation in
// the upper bits. The generation increments when a slot is released so
// stale references to dismissed modal objects never match a new object.
type ID uint64

func newID(slot uint32, generation uint32) ID {
	return ID(uint64(generation)<<32 | uint64(slot))
}

func (id ID) Slot() uint32       { return uint32(id) }
func (id ID) Generation() uint32 { return uint32(id >> 32) }
func (id ID) IsZero() bool       { return id == 0 }

// IDPool allocates object IDs with a free list. Slot 0 generation 0 is
// never handed out so the zero ID means "unassigned".
type IDPool struct {
	generations []uint32
	free        []uint32
	next        uint32
}

func NewIDPool() *IDPool {
	return &IDPool{
		generations: []uint32{1}, // burn slot 0
		next:        1,
	}
}

func (p *IDPool) Allocate() ID {
	if n := len(p.free); n > 0 {
		slot := p.free[n-1]
		p.free = p.free[:n-1]
		return newID(slot, p.generations[slot])
	}
	slot := p.next
	p.next++
	p.generations = append(p.generations, 0)
	return newID(slot, p.generations[slot])
}

func (p *IDPool) Alive(id ID) bool {
	slot := id.Slot()
	if slot == 0 || slot >= p.next {
		return false
	}
	return p.generations[slot] == id.Generation()
}

func (p *IDPool) Release(id ID) {
	if !p.Alive(id) {
		return
	}
	slot := id.Slot()
	p.generations[slot]++
	p.free = append(p.free, slot)
}
