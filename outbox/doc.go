// Package outbox implements a publish-tracking queue for at-least-once
// delivery of messages from a resource-constrained, long-running process to
// a remote broker, by way of an external transport client.
//
// # Architecture
//
// The queue is built around a two-tier slot allocator: a static pool of
// always-resident slots absorbs steady-state traffic, and a dynamic pool of
// elastic blocks absorbs bursts above that baseline. The allocator tries the
// static pool, then the dynamic pool, then growth, and falls back to
// oldest-victim eviction only when every other option is exhausted. A
// reconciler matches transport acknowledgements back to slots (including
// provisional-id rebinds), and a sweeper runs as periodic maintenance,
// expiring timed-out slots and reclaiming idle dynamic blocks.
//
// A small secondary ring ([ControlRing]) tracks non-acknowledged traffic
// (QoS levels other than 1) and shares the same maintenance tick.
//
// [Facade] wires all of the above into the public operations: [Facade.Publish],
// [Facade.Track], [Facade.Rebind], [Facade.OnPublished], [Facade.Tick], and
// [Facade.ClearAll].
//
// # Concurrency
//
// The core is single-threaded cooperative: every public [Facade] method may
// be called from any goroutine, but they are all serialised behind one
// mutex, with no nested acquisition. The transport's publish call is treated
// as a synchronous upcall; it must return before [Facade.Publish] returns.
//
// # Scheduling
//
// There are no internal timers or goroutines. [Facade.Tick] is a plain
// function any scheduler — a time.Ticker, a real-time OS callback, or a test
// harness advancing a fake clock — can drive at any frequency.
package outbox
