package outbox

// sweeper performs the periodic maintenance pass described in spec §4.4:
// expiring timed-out slots, tracking each DynBlock's idle state, reclaiming
// blocks idle past DYN_BLOCK_IDLE_TIMEOUT_MS, and expiring stale
// ControlRing entries.
type sweeper struct {
	static           *staticPool
	dyn              *dynPool
	ring             *ControlRing
	diag             *diagnostics
	ackTimeoutUS     int64 // all *TimeoutUS fields are microseconds, matching slot.timestamp's unit
	dynBlockIdleUS   int64
	controlTimeoutUS int64
	logger           *Logger
}

// newSweeper takes its timeout parameters in milliseconds (matching spec
// §6's *_MS configuration constants) and converts once to microseconds,
// since slot.timestamp and the clock passed to tick are both monotonic
// microsecond readings (spec §3).
func newSweeper(static *staticPool, dyn *dynPool, ring *ControlRing, diag *diagnostics, ackTimeoutMS, dynBlockIdleTimeoutMS, controlTimeoutMS int64, logger *Logger) *sweeper {
	const usPerMS = 1000
	return &sweeper{
		static:           static,
		dyn:              dyn,
		ring:             ring,
		diag:             diag,
		ackTimeoutUS:     ackTimeoutMS * usPerMS,
		dynBlockIdleUS:   dynBlockIdleTimeoutMS * usPerMS,
		controlTimeoutUS: controlTimeoutMS * usPerMS,
		logger:           logger,
	}
}

// tick is idempotent: running it twice at the same `now` performs the
// timeout sweep and idle bookkeeping, but the second call finds nothing
// left to expire.
func (s *sweeper) tick(now int64) {
	s.expireTimeouts(now)

	for _, b := range s.dyn.blocks {
		b.refreshIdleState(now)
	}

	reclaimed := s.dyn.reclaimIdle(now, s.dynBlockIdleUS)
	if reclaimed > 0 {
		logInfo(s.logger, `sweeper`, `reclaimed idle dynamic blocks`, map[string]any{`count`: reclaimed})
	}

	if expired := s.ring.DeleteExpired(now, s.controlTimeoutUS); expired > 0 {
		logInfo(s.logger, `sweeper`, `expired control ring entries`, map[string]any{`count`: expired})
	}
}

func (s *sweeper) expireTimeouts(now int64) {
	expireSlot := func(sl *slot) {
		if sl.inUse && now-sl.timestamp > s.ackTimeoutUS {
			msgID := sl.msgID
			sl.reset()
			s.diag.recordTimeout()
			logInfo(s.logger, `sweeper`, `slot timed out`, map[string]any{`msg_id`: msgID})
		}
	}
	for i := range s.static.slots {
		expireSlot(&s.static.slots[i])
	}
	for _, b := range s.dyn.blocks {
		for i := range b.slots {
			expireSlot(&b.slots[i])
		}
	}
}
