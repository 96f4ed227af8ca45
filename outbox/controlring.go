package outbox

import "github.com/edolis/esp-mqtt/internal/clamp"

// ControlState is the pending-state tag for a ControlRing entry (spec §4.5).
type ControlState int

const (
	// StateQueued is the initial state of an enqueued entry.
	StateQueued ControlState = iota
	StateTransmitted
	StateAcknowledged
	StateConfirmed
)

func (s ControlState) String() string {
	switch s {
	case StateQueued:
		return `Queued`
	case StateTransmitted:
		return `Transmitted`
	case StateAcknowledged:
		return `Acknowledged`
	case StateConfirmed:
		return `Confirmed`
	default:
		return `Unknown`
	}
}

// controlEntry holds one non-acknowledged-traffic message descriptor.
type controlEntry struct {
	msg          []byte
	msgLen       int
	remainingLen int // for total_bytes accounting; see Sub
	id           int64
	msgType      uint8
	qos          int
	state        ControlState
	tick         int64
	occupied     bool
}

// ControlRing is a fixed-size secondary ring for control/non-acknowledged
// traffic, independent of the Slot pools and not bounded by PAYLOAD_MAX
// (spec §4.5). Capacity R is small (default 8); the "degradation" overflow
// policy below deliberately does not evict the oldest entry — see doc
// comment on Enqueue.
type ControlRing struct {
	entries []controlEntry
}

func newControlRing(cap int) *ControlRing {
	return &ControlRing{entries: make([]controlEntry, cap)}
}

// Enqueue inserts msg at the first free index, or — when full — overwrites
// index 0. Per spec §9 this "overwrite index 0" behavior is a documented
// weakness inherited from the source rather than true oldest-victim
// eviction; DESIGN.md (Open Question decision 3) keeps it as-is rather than
// strengthen it, since the core spec explicitly calls it out as intentionally
// preserved observed behavior. Returns the index used as the entry handle.
func (r *ControlRing) Enqueue(msg []byte, msgType uint8, qos int, tick int64) (handle int) {
	for i := range r.entries {
		if !r.entries[i].occupied {
			r.set(i, msg, msgType, qos, tick)
			return i
		}
	}
	r.set(0, msg, msgType, qos, tick)
	return 0
}

func (r *ControlRing) set(i int, msg []byte, msgType uint8, qos int, tick int64) {
	buf := make([]byte, len(msg))
	copy(buf, msg)
	r.entries[i] = controlEntry{
		msg:          buf,
		msgLen:       len(buf),
		remainingLen: len(buf),
		id:           int64(i),
		msgType:      msgType,
		qos:          qos,
		state:        StateQueued,
		tick:         tick,
		occupied:     true,
	}
}

// FindByID returns the index of the occupied entry with the given id, or -1.
func (r *ControlRing) FindByID(id int64) int {
	for i := range r.entries {
		if r.entries[i].occupied && r.entries[i].id == id {
			return i
		}
	}
	return -1
}

// SetState updates the pending-state tag of the entry at handle.
func (r *ControlRing) SetState(handle int, state ControlState) {
	if r.valid(handle) {
		r.entries[handle].state = state
	}
}

// SetTick updates the tick timestamp of the entry at handle.
func (r *ControlRing) SetTick(handle int, tick int64) {
	if r.valid(handle) {
		r.entries[handle].tick = tick
	}
}

// DeleteByID removes the entry with the given id. QoS-1 deletes are
// forwarded to the Reconciler as an on_published, per spec §4.5; that
// forwarding is the caller's (Facade's) responsibility since ControlRing
// has no reference to the Reconciler.
func (r *ControlRing) DeleteByID(id int64) (qos int, deleted bool) {
	i := r.FindByID(id)
	if i < 0 {
		return 0, false
	}
	qos = r.entries[i].qos
	r.entries[i] = controlEntry{}
	return qos, true
}

// DequeueByState returns the ids of every occupied entry currently in the
// given state.
func (r *ControlRing) DequeueByState(state ControlState) []int64 {
	var ids []int64
	for i := range r.entries {
		if r.entries[i].occupied && r.entries[i].state == state {
			ids = append(ids, r.entries[i].id)
		}
	}
	return ids
}

// DeleteExpired clears every entry whose tick is older than now-timeout,
// returning how many were cleared. Driven by Sweeper.tick.
func (r *ControlRing) DeleteExpired(now, timeout int64) int {
	n := 0
	for i := range r.entries {
		if r.entries[i].occupied && now-r.entries[i].tick > timeout {
			r.entries[i] = controlEntry{}
			n++
		}
	}
	return n
}

// Advance records n bytes as transmitted for the entry at handle, reducing
// remainingLen. The subtraction is clamped to zero rather than left to
// underflow, resolving the §9 ambiguity about the source's unsigned
// subtraction / signed zero-comparison: a transport that reports more bytes
// sent than the entry's length must not produce a negative remainder.
func (r *ControlRing) Advance(handle int, n int) {
	if r.valid(handle) {
		r.entries[handle].remainingLen = clamp.Sub(r.entries[handle].remainingLen, n)
	}
}

// TotalBytes sums len+remainingLen across occupied entries (spec §4.5).
func (r *ControlRing) TotalBytes() int {
	total := 0
	for i := range r.entries {
		if r.entries[i].occupied {
			total += r.entries[i].msgLen + r.entries[i].remainingLen
		}
	}
	return total
}

func (r *ControlRing) valid(handle int) bool {
	return handle >= 0 && handle < len(r.entries) && r.entries[handle].occupied
}

func (r *ControlRing) reset() {
	for i := range r.entries {
		r.entries[i] = controlEntry{}
	}
}
