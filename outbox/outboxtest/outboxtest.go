// Package outboxtest provides a deterministic reference implementation of
// outbox.Transport, for use in tests.
// It is test/demo scaffolding (SPEC_FULL.md), not part of the core.
package outboxtest

import (
	"fmt"
	"sync"
)

// FakeTransport assigns sequential, increasing ids starting at 1, and
// records every call it receives. It never fails unless configured to via
// FailNext.
type FakeTransport struct {
	mu        sync.Mutex
	nextID    int64
	failNext  bool
	Published []Call
}

// Call records one Publish invocation.
type Call struct {
	Topic   string
	Payload []byte
	QoS     int
	Retain  bool
	MsgID   int64
}

// NewFakeTransport returns a FakeTransport whose first assigned id is 1,
// matching spec §8's end-to-end scenarios ("transport returns consecutive
// ids starting at 1").
func NewFakeTransport() *FakeTransport {
	return &FakeTransport{nextID: 1}
}

// FailNext makes the next Publish call return a transport failure.
func (t *FakeTransport) FailNext() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.failNext = true
}

// Publish implements outbox.Transport.
func (t *FakeTransport) Publish(topic, payload []byte, qos int, retain bool) (int64, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.failNext {
		t.failNext = false
		return -1, fmt.Errorf(`outboxtest: simulated transport failure`)
	}

	id := t.nextID
	t.nextID++

	t.Published = append(t.Published, Call{
		Topic:   string(topic),
		Payload: append([]byte(nil), payload...),
		QoS:     qos,
		Retain:  retain,
		MsgID:   id,
	})

	return id, nil
}

// LastID returns the most recently assigned msgID, or 0 if none assigned.
func (t *FakeTransport) LastID() int64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.nextID - 1
}
