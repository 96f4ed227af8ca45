package outbox

// Transport is the narrow capability the core consumes from the wire
// protocol encoder/decoder and network client, which are themselves out of
// scope for this package (spec §1, §6). It is represented as an interface
// rather than a pair of function values, matching the rest of this module's
// style of small, purpose-built interfaces over raw function types; either
// representation is spec-conformant (spec §9 "Dynamic dispatch").
//
// Publish is treated as a synchronous upcall: it must return an id or error
// before Facade.Publish returns (spec §5, "Suspension points"). There is no
// store parameter: topic and payload are slices of the slot's own buffers,
// which the core keeps alive (inside the slot) until ack or timeout, so the
// transport need not copy them.
type Transport interface {
	// Publish sends one message and returns a non-negative msgID on
	// success, or a negative value on failure.
	Publish(topic, payload []byte, qos int, retain bool) (msgID int64, err error)
}

// TransportFunc adapts a plain function to Transport.
type TransportFunc func(topic, payload []byte, qos int, retain bool) (int64, error)

func (f TransportFunc) Publish(topic, payload []byte, qos int, retain bool) (int64, error) {
	return f(topic, payload, qos, retain)
}
