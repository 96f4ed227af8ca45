package outbox

// slot is a fixed-capacity record of one in-flight tracked message. Its
// topic and payload buffers are non-owning slices into the arenas of
// whichever pool allocated it (a StaticPool or a DynBlock); a slot never
// reallocates its own buffers.
//
// Invariants (spec §3):
//
//	inUse  => msgID != freeMsgID && topicLen > 0
//	!inUse => msgID == freeMsgID
//
// payloadLen may be 0: Facade.Publish and Facade.Track accept an empty
// payload.
//
// msgID is usually a positive transport-assigned id, but Facade.Track
// permits a caller-minted provisional id of any value other than freeMsgID
// (including negative ones), to be rebound later via Facade.Rebind.
type slot struct {
	topic   []byte // len == capacity (TOPIC_MAX), only topicLen bytes significant
	payload []byte // len == capacity (PAYLOAD_MAX), only payloadLen bytes significant

	topicLen   int
	payloadLen int

	msgID     int64 // -1 when free
	timestamp int64 // monotonic microseconds at enqueue
	retain    bool
	inUse     bool
}

const freeMsgID = -1

// reset returns the slot to the free state. Buffers are left untouched;
// only lengths and metadata are cleared, matching the "buffers are owned by
// the pool and never reallocated" design note.
func (s *slot) reset() {
	s.topicLen = 0
	s.payloadLen = 0
	s.msgID = freeMsgID
	s.timestamp = 0
	s.retain = false
	s.inUse = false
}

// fill occupies a free slot with a copy of topic and payload. Both inputs
// are assumed already clamped to this slot's buffer capacity by the caller
// (Facade.Publish / Facade.Track).
func (s *slot) fill(topic, payload []byte, retain bool, now int64) {
	s.topicLen = copy(s.topic, topic)
	s.payloadLen = copy(s.payload, payload)
	s.retain = retain
	s.timestamp = now
	s.inUse = true
	s.msgID = freeMsgID // caller sets this once the transport/provisional id is known
}

func newSlotArena(count, topicMax, payloadMax int) []slot {
	slots := make([]slot, count)
	topics := make([]byte, count*topicMax)
	payloads := make([]byte, count*payloadMax)
	for i := range slots {
		slots[i].topic = topics[i*topicMax : (i+1)*topicMax : (i+1)*topicMax]
		slots[i].payload = payloads[i*payloadMax : (i+1)*payloadMax : (i+1)*payloadMax]
		slots[i].msgID = freeMsgID
	}
	return slots
}
