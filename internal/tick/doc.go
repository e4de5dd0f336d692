// Package tick provides the cooperative run loop that every asynchronous
// continuation in the engine is funneled through.
//
// # Why Tick Exists
//
// The lifecycle protocol depends on one ordering guarantee: a continuation
// registered on a future is never invoked synchronously inside the
// registering call, even when the future is already complete. Without that
// guarantee, a dependency chain can finish before the dependent instance has
// registered all of its other waits, and readiness fires out of order.
//
// The Loop makes the guarantee cheap to honor: callbacks are queued with
// Post and only ever run when the owner pumps the loop, so "later" always
// means a later iteration, never "right now, inside your caller".
//
// # How It Works
//
//  1. Post appends a callback to the current queue. It never runs anything.
//  2. Tick swaps the queue out and runs exactly that batch. Callbacks posted
//     while the batch runs land in the next batch.
//  3. Drain repeats Tick until the queue stays empty.
//  4. Run pumps the loop until the context is cancelled, sleeping between
//     batches, for hosts that feed the loop from other goroutines.
//
// # Thread-Safety
//
// Post may be called from any goroutine. Tick, Drain, and Run must be driven
// by a single pumping goroutine; the queue swap is the only shared state and
// is mutex-guarded.
package tick
