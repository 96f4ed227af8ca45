package outbox

// diagnostics maintains the monotonic counters from spec §4.6. They are
// reset only by Facade.Init/Facade.ClearAll, never decremented otherwise —
// invariant 7.
type diagnostics struct {
	maxBurst       int
	maxPayloadLen  int
	timeoutCount   int64
}

func (d *diagnostics) recordBurst(n int) {
	if n > d.maxBurst {
		d.maxBurst = n
	}
}

func (d *diagnostics) recordPayloadLen(n int) {
	if n > d.maxPayloadLen {
		d.maxPayloadLen = n
	}
}

func (d *diagnostics) recordTimeout() {
	d.timeoutCount++
}

func (d *diagnostics) reset() {
	*d = diagnostics{}
}

// Snapshot is an immutable copy of the diagnostic counters, plus the
// supplemented BlockCount accessor (SPEC_FULL.md) computed live from the
// DynPool rather than stored, since it is not itself monotonic.
type Snapshot struct {
	MaxBurst      int
	MaxPayloadLen int
	TimeoutCount  int64
	BlockCount    int
}
