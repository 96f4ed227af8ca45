package outbox

// blockState is the lifecycle of a DynBlock (spec §4.4).
//
//	Allocated --(first slot acquired)--> Active
//	Active    --(last slot freed)------> Idle     (stamp lastActiveAt)
//	Idle      --(slot reacquired)------> Active   (clear lastActiveAt)
//	Idle      --(idle timeout elapsed)-> Freed     (terminal, reclaimed by Sweeper)
//
// The core is single-threaded cooperative (spec §5), so this is a plain
// enum rather than an atomically-transitioned state, unlike the teacher's
// lock-free FastState — there is exactly one logical caller and no CAS race
// to guard against.
type blockState int

const (
	blockAllocated blockState = iota
	blockActive
	blockIdle
	blockFreed
)

func (s blockState) String() string {
	switch s {
	case blockAllocated:
		return `Allocated`
	case blockActive:
		return `Active`
	case blockIdle:
		return `Idle`
	case blockFreed:
		return `Freed`
	default:
		return `Unknown`
	}
}

// dynBlock is a contiguous group of exactly N2 slots, forming one unit of
// overflow capacity in the DynPool. lastActiveAt records when the block
// most recently transitioned to fully free; it is 0 while any slot is
// occupied.
type dynBlock struct {
	slots        []slot
	state        blockState
	lastActiveAt int64
}

func newDynBlock(count, topicMax, payloadMax int) *dynBlock {
	return &dynBlock{
		slots: newSlotArena(count, topicMax, payloadMax),
		state: blockAllocated,
	}
}

func (b *dynBlock) findFree() *slot {
	for i := range b.slots {
		if !b.slots[i].inUse {
			return &b.slots[i]
		}
	}
	return nil
}

func (b *dynBlock) occupiedCount() int {
	n := 0
	for i := range b.slots {
		if b.slots[i].inUse {
			n++
		}
	}
	return n
}

func (b *dynBlock) fullyFree() bool {
	return b.occupiedCount() == 0
}

// onAcquire transitions Allocated/Idle -> Active, clearing lastActiveAt.
func (b *dynBlock) onAcquire() {
	if b.state != blockActive {
		b.state = blockActive
		b.lastActiveAt = 0
	}
}

// refreshIdleState is called by the Sweeper after a pass over this block's
// slots: if every slot is free, it stamps lastActiveAt (first time only,
// matching invariant 8 — a block never sits at lastActiveAt==0 while fully
// free across a tick boundary); otherwise it clears the stamp.
func (b *dynBlock) refreshIdleState(now int64) {
	if b.fullyFree() {
		if b.lastActiveAt == 0 {
			b.lastActiveAt = now
		}
		b.state = blockIdle
	} else {
		b.lastActiveAt = 0
		b.state = blockActive
	}
}

// idleFor reports how long the block has been continuously fully free.
func (b *dynBlock) idleFor(now int64) int64 {
	if b.lastActiveAt == 0 {
		return 0
	}
	return now - b.lastActiveAt
}
