package outbox

// reconciler matches transport acknowledgements to slots, and rebinds
// provisional message ids to their final, transport-assigned value
// (spec §4.3).
type reconciler struct {
	static *staticPool
	dyn    *dynPool
}

func newReconciler(static *staticPool, dyn *dynPool) *reconciler {
	return &reconciler{static: static, dyn: dyn}
}

// onPublished scans StaticPool then DynPool (block order, then slot order)
// for an occupied slot with a matching msgID. On a hit, it frees the slot
// and, if the owning DynBlock (if any) is now fully free, stamps its
// lastActiveAt with now and marks it idle. On a miss it returns found=false: a
// late ack, which must never panic — duplicates and post-timeout acks are
// routine.
func (r *reconciler) onPublished(msgID int64, now int64) (found bool) {
	if s := r.findByMsgID(msgID); s != nil {
		s.reset()
		if b := r.dyn.blockContaining(s); b != nil && b.fullyFree() {
			b.lastActiveAt = now
			b.state = blockIdle
		}
		return true
	}
	return false
}

func (r *reconciler) findByMsgID(msgID int64) *slot {
	for i := range r.static.slots {
		s := &r.static.slots[i]
		if s.inUse && s.msgID == msgID {
			return s
		}
	}
	for _, b := range r.dyn.blocks {
		for i := range b.slots {
			s := &b.slots[i]
			if s.inUse && s.msgID == msgID {
				return s
			}
		}
	}
	return nil
}

// rebind updates an occupied slot's recorded id from provisional to final.
// It is a no-op (without error) if provisional is 0, final is not a
// positive transport-assigned id, provisional equals final, or no occupied
// slot currently holds provisional; every no-op case returns matched=false,
// which the caller logs as a rebind-miss. Negative provisional values are valid
// and expected: Facade.Track allows callers to register a locally-minted
// placeholder id (e.g. -42) before the transport confirms the final one.
func (r *reconciler) rebind(provisional, final int64) (matched bool) {
	if provisional == 0 || final <= 0 || provisional == final {
		return false
	}
	s := r.findByMsgID(provisional)
	if s == nil {
		return false
	}
	s.msgID = final
	return true
}
