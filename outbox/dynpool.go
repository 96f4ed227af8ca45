package outbox

// dynPool is the ordered, second-tier collection of dynamic blocks
// (spec §3, §4.4). Compaction on removal preserves the order of surviving
// blocks, so scan order (used by the Allocator and Reconciler) stays stable
// across reclamation.
type dynPool struct {
	blocks          []*dynBlock
	maxBlocks       int
	dynSlotCount    int
	topicMax        int
	payloadMax      int
}

func newDynPool(maxBlocks, dynSlotCount, topicMax, payloadMax int) *dynPool {
	return &dynPool{
		maxBlocks:    maxBlocks,
		dynSlotCount: dynSlotCount,
		topicMax:     topicMax,
		payloadMax:   payloadMax,
	}
}

// findFree scans existing blocks in order for the first free slot.
func (p *dynPool) findFree() *slot {
	for _, b := range p.blocks {
		if s := b.findFree(); s != nil {
			return s
		}
	}
	return nil
}

// grow appends a new block if under maxBlocks, returning its slot 0.
// Growth "fails" (returns nil) only because the pool is already at
// maxBlocks; spec's allocation-failure path (buffer allocation failing) has
// no analogue with Go's make, which panics under true OOM rather than
// returning an error — that failure mode is therefore not modeled here.
func (p *dynPool) grow() *slot {
	if len(p.blocks) >= p.maxBlocks {
		return nil
	}
	b := newDynBlock(p.dynSlotCount, p.topicMax, p.payloadMax)
	p.blocks = append(p.blocks, b)
	return &b.slots[0]
}

func (p *dynPool) occupiedCount() int {
	n := 0
	for _, b := range p.blocks {
		n += b.occupiedCount()
	}
	return n
}

func (p *dynPool) capacity() int {
	return p.maxBlocks * p.dynSlotCount
}

// blockContaining returns the block owning s, or nil. Used by the
// Reconciler to stamp lastActiveAt when a block becomes fully free.
func (p *dynPool) blockContaining(s *slot) *dynBlock {
	for _, b := range p.blocks {
		for i := range b.slots {
			if &b.slots[i] == s {
				return b
			}
		}
	}
	return nil
}

// reclaimIdle removes every block that is fully free and has been idle for
// longer than idleTimeout, compacting the slice to preserve order. Returns
// the number reclaimed.
func (p *dynPool) reclaimIdle(now, idleTimeout int64) int {
	if len(p.blocks) == 0 {
		return 0
	}
	kept := p.blocks[:0]
	reclaimed := 0
	for _, b := range p.blocks {
		if b.state == blockIdle && b.idleFor(now) > idleTimeout {
			b.state = blockFreed
			reclaimed++
			continue
		}
		kept = append(kept, b)
	}
	p.blocks = kept
	return reclaimed
}

func (p *dynPool) reset() {
	p.blocks = nil
}
