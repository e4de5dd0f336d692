// Package broker implements the capability broker: the registry that
// matches components satisfying an abstract capability with consumers that
// declared a dependency on it, including consumers that asked before any
// implementor existed.
package broker

import (
	"sort"
	"sync"

	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/tick"
)

// Broker maps capability identifiers to ready implementors and to waiter
// futures for capabilities nobody satisfies yet. It is an explicit value
// with an explicit lifecycle: create one per application, pass it to the
// orchestrator, discard it at shutdown.
type Broker struct {
	loop *tick.Loop

	mu      sync.Mutex
	ready   map[string][]any
	waiters map[string][]*future.Future
}

// New creates an empty broker bound to the given loop.
func New(loop *tick.Loop) *Broker {
	if loop == nil {
		panic("broker: nil loop")
	}
	return &Broker{
		loop:    loop,
		ready:   make(map[string][]any),
		waiters: make(map[string][]*future.Future),
	}
}

// Lookup returns the earliest-published ready implementor for the
// capability, or false if none has been published.
func (b *Broker) Lookup(capability string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	impls := b.ready[capability]
	if len(impls) == 0 {
		return nil, false
	}
	return impls[0], true
}

// Await returns a future for the capability. If an implementor is already
// ready the future is returned already resolved with the earliest one;
// otherwise it is enqueued as a waiter. The check and the enqueue happen
// under one lock, so a waiter can never slip in between a Publish drain and
// its ready-list update.
func (b *Broker) Await(capability string) *future.Future {
	b.mu.Lock()
	defer b.mu.Unlock()

	fut := future.New(b.loop)
	if impls := b.ready[capability]; len(impls) > 0 {
		_ = fut.Resolve(impls[0])
		return fut
	}
	b.waiters[capability] = append(b.waiters[capability], fut)
	return fut
}

// Publish records impl as a ready implementor of every listed capability
// and resolves all waiters currently pending on them. First-ready-wins:
// waiters resolved here are removed and are not reassigned by later
// publishes. Waiters that arrive after this call are satisfied from the
// updated ready list instead.
func (b *Broker) Publish(impl any, capabilities []string) {
	b.mu.Lock()
	var drained []*future.Future
	for _, capability := range capabilities {
		b.ready[capability] = append(b.ready[capability], impl)
		drained = append(drained, b.waiters[capability]...)
		delete(b.waiters, capability)
	}
	b.mu.Unlock()

	// Resolve outside the lock; continuations are deferred to the loop
	// anyway, so no waiter observes a partially-updated broker.
	for _, w := range drained {
		_ = w.Resolve(impl)
	}
}

// Stalled returns the sorted set of capabilities that have pending waiters
// and no ready implementor. A non-empty result after the loop has drained
// means those waits can never complete.
func (b *Broker) Stalled() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []string
	for capability, ws := range b.waiters {
		if len(ws) > 0 && len(b.ready[capability]) == 0 {
			out = append(out, capability)
		}
	}
	sort.Strings(out)
	return out
}
