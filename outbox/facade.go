package outbox

import (
	"sync"
	"time"
)

// Facade wires the allocator, reconciler, sweeper, diagnostics, and control
// ring into the public operations and invariants described by spec §4.2 and
// §6. It is the only type most callers need.
//
// Every exported method is safe to call from any goroutine: they are all
// serialised behind one mutex with no nested acquisition, per spec §5. The
// core itself has no suspension points and no internal goroutines; Tick
// must be driven by an external scheduler.
type Facade struct {
	mu sync.Mutex

	cfg config

	static *staticPool
	dyn    *dynPool
	ring   *ControlRing

	allocator   *allocator
	reconciler  *reconciler
	sweeper     *sweeper
	diag        diagnostics

	now func() int64
}

// New constructs a Facade with the given options layered over the spec §6
// defaults (N1=3, N2=3, B=8, PAYLOAD_MAX=512, TOPIC_MAX=128,
// ACK_TIMEOUT_MS=5000, DYN_BLOCK_IDLE_TIMEOUT_MS=60000, OUTBOX_RING_CAP=8).
func New(opts ...Option) *Facade {
	f := &Facade{now: monotonicMicros}
	f.Init(opts...)
	return f
}

// Init (re)initializes the Facade: idempotent, resets StaticPool, discards
// all DynBlocks, zeroes diagnostics, and re-resolves configuration. Calling
// Init on a live Facade is equivalent to ClearAll plus reconfiguration.
func (f *Facade) Init(opts ...Option) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.cfg = *resolveOptions(opts)
	f.static = newStaticPool(f.cfg.staticSlotCount, f.cfg.topicMax, f.cfg.payloadMax)
	f.dyn = newDynPool(f.cfg.maxDynamicBlocks, f.cfg.dynamicSlotCount, f.cfg.topicMax, f.cfg.payloadMax)
	f.ring = newControlRing(f.cfg.controlRingCap)
	f.allocator = newAllocator(f.static, f.dyn)
	f.reconciler = newReconciler(f.static, f.dyn)
	f.sweeper = newSweeper(f.static, f.dyn, f.ring, &f.diag, f.cfg.ackTimeoutMS, f.cfg.dynBlockIdleTimeout, f.cfg.controlTimeoutMS, f.cfg.logger)
	f.diag.reset()

	if f.cfg.clock != nil {
		f.now = f.cfg.clock
	} else if f.now == nil {
		f.now = monotonicMicros
	}
}

func monotonicMicros() int64 {
	return time.Now().UnixMicro()
}

// clampLen clamps n to cap-1, reporting whether truncation occurred (the
// last byte of every buffer is reserved so transport interop can rely on a
// null-terminated convention, per spec §3).
func clampLen(n, capacity int) (clamped int, truncated bool) {
	if capacity <= 0 {
		return 0, n > 0
	}
	max := capacity - 1
	if n > max {
		return max, true
	}
	return n, false
}

// Publish admits topic/payload as a QoS-1 tracked message, invokes the
// transport synchronously, and records the resulting msgID in the slot
// (spec §4.2). It returns ErrInvalidArgument for malformed arguments
// (without mutating any state), ErrNoCapacity if the Allocator is
// exhausted, or a *TransportError if the transport call itself fails (the
// reserved slot is cleared before returning).
func (f *Facade) Publish(transport Transport, topic, payload []byte, retain bool) (msgID int64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if transport == nil || len(topic) == 0 {
		return -1, &InvalidArgumentError{Message: `nil transport or empty topic`}
	}

	now := f.now()
	f.sweeper.tick(now)

	topic, payload = f.clampInputs(topic, payload)

	s, outcome, evicted := f.allocator.acquire()
	if s == nil {
		return -2, &NoCapacityError{}
	}
	if outcome == acquiredEvicted {
		logWarn(f.cfg.logger, `allocator`, `evicted oldest occupant to admit new message`, map[string]any{`evicted_msg_id`: evicted})
	}

	s.fill(topic, payload, retain, now)
	if b := f.dyn.blockContaining(s); b != nil {
		b.onAcquire()
	}

	id, pubErr := transport.Publish(s.topic[:s.topicLen], s.payload[:s.payloadLen], 1, retain)
	if pubErr != nil || id < 0 {
		s.reset()
		logErr(f.cfg.logger, `publish`, `transport publish failed`, pubErr)
		return -1, &TransportError{Cause: pubErr}
	}

	s.msgID = id
	f.diag.recordBurst(f.allocator.burstCount())
	f.diag.recordPayloadLen(len(payload))
	return id, nil
}

// Track registers a message that the transport has already emitted,
// skipping the transport.Publish call; msgID is stored directly, and may be
// a provisional (even negative) placeholder pending a later Rebind (spec
// §4.2). msgID -1 is rejected as an invalid argument, since it marks a free
// slot.
func (f *Facade) Track(topic, payload []byte, retain bool, msgID int64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(topic) == 0 {
		return -1, &InvalidArgumentError{Message: `empty topic`}
	}
	if msgID == freeMsgID {
		return -1, &InvalidArgumentError{Message: `msgID -1 is reserved for free slots`}
	}

	now := f.now()
	f.sweeper.tick(now)

	topic, payload = f.clampInputs(topic, payload)

	s, outcome, evicted := f.allocator.acquire()
	if s == nil {
		return -2, &NoCapacityError{}
	}
	if outcome == acquiredEvicted {
		logWarn(f.cfg.logger, `allocator`, `evicted oldest occupant to admit tracked message`, map[string]any{`evicted_msg_id`: evicted})
	}

	s.fill(topic, payload, retain, now)
	if b := f.dyn.blockContaining(s); b != nil {
		b.onAcquire()
	}
	s.msgID = msgID
	f.diag.recordBurst(f.allocator.burstCount())
	f.diag.recordPayloadLen(len(payload))

	return msgID, nil
}

func (f *Facade) clampInputs(topic, payload []byte) (clampedTopic, clampedPayload []byte) {
	tLen, tTrunc := clampLen(len(topic), f.cfg.topicMax)
	pLen, pTrunc := clampLen(len(payload), f.cfg.payloadMax)
	if tTrunc {
		logInfo(f.cfg.logger, `publish`, `topic truncated`, map[string]any{`original_len`: len(topic), `clamped_len`: tLen})
	}
	if pTrunc {
		logInfo(f.cfg.logger, `publish`, `payload truncated`, map[string]any{`original_len`: len(payload), `clamped_len`: pLen})
	}
	return topic[:tLen], payload[:pLen]
}

// Rebind updates a slot's recorded id from a provisional value to the
// transport's final one. See reconciler.rebind for the exact no-op
// conditions.
func (f *Facade) Rebind(provisional, final int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.reconciler.rebind(provisional, final) {
		logWarn(f.cfg.logger, `rebind`, `miss`, map[string]any{`provisional`: provisional, `final`: final})
	}
}

// OnPublished delivers a transport acknowledgement to the Reconciler. A
// miss (no matching occupied slot) is a late ack: logged, otherwise silent.
func (f *Facade) OnPublished(msgID int64) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.reconciler.onPublished(msgID, f.now()) {
		logWarn(f.cfg.logger, `reconciler`, `late ack`, map[string]any{`msg_id`: msgID})
	}
}

// PublishControl enqueues a non-acknowledged-traffic message (any QoS other
// than 1) onto the ControlRing, returning its handle (SPEC_FULL.md: this is
// the routing spec §9 describes for the commented-out qos parameter of the
// original publish signature).
func (f *Facade) PublishControl(msg []byte, msgType uint8, qos int) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ring.Enqueue(msg, msgType, qos, f.now())
}

// ConfirmControl marks a ControlRing entry delivered. For qos==1 entries
// this is forwarded to the Reconciler as an OnPublished call, per spec §4.5.
func (f *Facade) ConfirmControl(id int64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if qos, deleted := f.ring.DeleteByID(id); deleted && qos == 1 {
		f.reconciler.onPublished(id, f.now())
	}
}

// Tick drives the Sweeper's periodic maintenance: timeout expiry, idle
// dynamic block reclamation, and ControlRing expiry. Safe to invoke at any
// frequency; idempotent.
func (f *Facade) Tick() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeper.tick(f.now())
}

// ClearAll frees every occupied slot, deallocates every DynBlock, and
// resets diagnostics and the ControlRing. A coarse, total cancellation —
// there is no per-operation cancellation in this core (spec §5).
func (f *Facade) ClearAll() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.static.reset()
	f.dyn.reset()
	f.ring.reset()
	f.diag.reset()
}

// LogDiagnostics emits peak burst, max payload length, timeout count, and
// block count at info level, and also returns them as a Snapshot for
// programmatic use.
func (f *Facade) LogDiagnostics() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	snap := f.snapshotLocked()
	logInfo(f.cfg.logger, `diagnostics`, `snapshot`, map[string]any{
		`max_burst`:        snap.MaxBurst,
		`max_payload_len`:  snap.MaxPayloadLen,
		`timeout_count`:    int(snap.TimeoutCount),
		`block_count`:      snap.BlockCount,
	})
	return snap
}

// Diagnostics returns the current Snapshot without logging it.
func (f *Facade) Diagnostics() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Facade) snapshotLocked() Snapshot {
	return Snapshot{
		MaxBurst:      f.diag.maxBurst,
		MaxPayloadLen: f.diag.maxPayloadLen,
		TimeoutCount:  f.diag.timeoutCount,
		BlockCount:    len(f.dyn.blocks),
	}
}

// Size returns the current total byte accounting of the ControlRing (spec
// §6 "size()").
func (f *Facade) Size() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ring.TotalBytes()
}
