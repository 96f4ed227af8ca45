package outbox_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edolis/esp-mqtt/outbox"
	"github.com/edolis/esp-mqtt/outbox/outboxtest"
)

// fakeClock is a manually-advanced monotonic microsecond clock, used to
// make the Sweeper's timeout and idle-reclamation behavior deterministic in
// tests (spec §8 scenarios specify exact elapsed durations).
type fakeClock struct{ us int64 }

func (c *fakeClock) now() int64    { return c.us }
func (c *fakeClock) advance(ms int) { c.us += int64(ms) * 1000 }

func newTestFacade(t *testing.T, clock *fakeClock, opts ...outbox.Option) *outbox.Facade {
	t.Helper()
	base := []outbox.Option{
		outbox.WithStaticSlotCount(3),
		outbox.WithDynamicSlotCount(3),
		outbox.WithMaxDynamicBlocks(8),
		outbox.WithPayloadMax(16),
		outbox.WithTopicMax(16),
		outbox.WithAckTimeout(100),
		outbox.WithDynBlockIdleTimeout(500),
		outbox.WithClock(clock.now),
	}
	return outbox.New(append(base, opts...)...)
}

// S1: steady state — publish three, ack all three, everything frees.
func TestScenarioS1SteadyState(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()

	id1, err := q.Publish(transport, []byte(`a`), []byte(`1`), false)
	require.NoError(t, err)
	id2, err := q.Publish(transport, []byte(`b`), []byte(`2`), false)
	require.NoError(t, err)
	id3, err := q.Publish(transport, []byte(`c`), []byte(`3`), false)
	require.NoError(t, err)

	q.OnPublished(id1)
	q.OnPublished(id2)
	q.OnPublished(id3)

	snap := q.Diagnostics()
	require.Equal(t, 3, snap.MaxBurst)
	require.Equal(t, int64(0), snap.TimeoutCount)
	require.Equal(t, 0, snap.BlockCount)
}

// S2: burst into one block — 4 publishes with N1=3 fills static, then one
// dynamic block with slot 0 occupied.
func TestScenarioS2BurstIntoOneBlock(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()

	for i := 0; i < 4; i++ {
		_, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
		require.NoError(t, err)
	}

	snap := q.Diagnostics()
	require.Equal(t, 4, snap.MaxBurst)
	require.Equal(t, 1, snap.BlockCount)
}

// S3: burst exceeds growth (B=1), evict oldest. 7 publishes with N1=3,
// N2=3, B=1 exhausts static+dynamic capacity (6 slots) on the 7th call,
// forcing eviction of msg_id=1. The subsequent ack for msg_id=1 is then a
// late ack (no state change, no panic).
func TestScenarioS3EvictOldest(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock,
		outbox.WithMaxDynamicBlocks(1),
		outbox.WithAckTimeout(100_000), // long enough that the sweeper's hygiene pass never times anything out mid-scenario
	)
	transport := outboxtest.NewFakeTransport()

	var ids []int64
	for i := 0; i < 7; i++ {
		clock.advance(1) // distinct timestamps so oldest-victim is unambiguous
		id, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
		require.NoError(t, err)
		ids = append(ids, id)
	}

	snap := q.Diagnostics()
	require.Equal(t, 6, snap.MaxBurst)

	// id 1 (the first message published) was evicted to admit the 7th;
	// acking it now must not panic and must not be mistaken for a live slot.
	q.OnPublished(ids[0])
}

// S4: timeout sweep — 2 publishes, advance past ACK_TIMEOUT, tick frees
// both and bumps timeout_count; subsequent acks are late.
func TestScenarioS4TimeoutSweep(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()

	id1, err := q.Publish(transport, []byte(`t1`), []byte(`p1`), false)
	require.NoError(t, err)
	id2, err := q.Publish(transport, []byte(`t2`), []byte(`p2`), false)
	require.NoError(t, err)

	clock.advance(150)
	q.Tick()

	snap := q.Diagnostics()
	require.Equal(t, int64(2), snap.TimeoutCount)

	// late acks must not panic or change diagnostics further.
	q.OnPublished(id1)
	q.OnPublished(id2)
	snap2 := q.Diagnostics()
	require.Equal(t, snap.TimeoutCount, snap2.TimeoutCount)
}

// S5: idle block reclamation — force a dynamic block, free it, and observe
// it survive a tick before the idle timeout but vanish after.
func TestScenarioS5IdleReclamation(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock,
		outbox.WithAckTimeout(100_000), // keep the sweeper's timeout pass from interfering
	)
	transport := outboxtest.NewFakeTransport()

	// fill static (3) plus one dynamic slot (4th publish).
	var ids []int64
	for i := 0; i < 4; i++ {
		id, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.Equal(t, 1, q.Diagnostics().BlockCount)

	// free the dynamic block's only occupant.
	q.OnPublished(ids[3])

	clock.advance(100)
	q.Tick()
	require.Equal(t, 1, q.Diagnostics().BlockCount, "block must survive before the idle timeout elapses")

	clock.advance(501) // strictly past DYN_BLOCK_IDLE_TIMEOUT_MS=500, since reclaimIdle uses a strict ">"
	q.Tick()
	require.Equal(t, 0, q.Diagnostics().BlockCount, "block must be reclaimed once idle past the timeout")
}

// S6: provisional rebind — track with a negative provisional id, rebind to
// the transport's final id, then ack the final id; no late-ack should be
// logged and the slot must free.
func TestScenarioS6ProvisionalRebind(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)

	_, err := q.Track([]byte(`x`), []byte(`y`), false, -42)
	require.NoError(t, err)

	q.Rebind(-42, 17)
	q.OnPublished(17)

	snap := q.Diagnostics()
	require.Equal(t, 1, snap.MaxBurst)
}

func TestPublishRejectsNilTransportOrEmptyTopic(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()

	_, err := q.Publish(nil, []byte(`t`), []byte(`p`), false)
	require.Error(t, err)

	_, err = q.Publish(transport, nil, []byte(`p`), false)
	require.Error(t, err)
}

func TestPublishClearsSlotOnTransportFailure(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()
	transport.FailNext()

	_, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
	require.Error(t, err)
	require.Equal(t, 0, q.Diagnostics().MaxBurst, "a failed publish must not be counted in the peak burst")

	// the slot must be reusable afterward.
	id, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
	require.NoError(t, err)
	require.NotZero(t, id)
}

func TestClearAllResetsEverything(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock)
	transport := outboxtest.NewFakeTransport()

	for i := 0; i < 5; i++ {
		_, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
		require.NoError(t, err)
	}
	require.NotZero(t, q.Diagnostics().MaxBurst)

	q.ClearAll()

	snap := q.Diagnostics()
	require.Equal(t, 0, snap.BlockCount)
	require.Equal(t, 0, snap.MaxBurst, "ClearAll resets diagnostics (invariant 4)")

	// a fresh publish must still succeed against a fully-freed pool.
	id, err := q.Publish(transport, []byte(`t`), []byte(`p`), false)
	require.NoError(t, err)
	require.NotZero(t, id)
}

func TestTopicAndPayloadTruncation(t *testing.T) {
	clock := &fakeClock{}
	q := newTestFacade(t, clock) // TOPIC_MAX=16, PAYLOAD_MAX=16
	transport := outboxtest.NewFakeTransport()

	longTopic := make([]byte, 64)
	for i := range longTopic {
		longTopic[i] = 'x'
	}
	longPayload := make([]byte, 64)
	for i := range longPayload {
		longPayload[i] = 'y'
	}

	_, err := q.Publish(transport, longTopic, longPayload, false)
	require.NoError(t, err)

	require.Len(t, transport.Published, 1)
	require.Len(t, transport.Published[0].Topic, 15)   // TOPIC_MAX-1
	require.Len(t, transport.Published[0].Payload, 15) // PAYLOAD_MAX-1
}
