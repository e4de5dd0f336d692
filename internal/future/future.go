// Package future implements the single-assignment value holder the
// lifecycle protocol is built on. A Future transitions from Pending to
// exactly one of Resolved or Failed; continuations are always run on a
// later loop tick, never inside the call that attached or completed them.
package future

import (
	"errors"
	"sync"

	"github.com/vk/knitgo/internal/tick"
)

// ErrAlreadyCompleted is returned by Resolve and Fail when the future has
// already left the Pending state.
var ErrAlreadyCompleted = errors.New("future: already completed")

// State is the completion state of a Future.
type State int32

const (
	// Pending indicates the future has not been completed yet.
	Pending State = iota
	// Resolved indicates the future completed successfully.
	Resolved
	// Failed indicates the future completed with an error.
	Failed
)

// String returns a human-readable state name for logs and test output.
func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Resolved:
		return "resolved"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Continuation is a callback invoked with the future's outcome. Exactly one
// of value or err is meaningful: err is nil when the future resolved.
type Continuation func(value any, err error)

// Awaitable is implemented by values whose readiness can be waited on, such
// as managed component instances. Direct dependency resolution uses it to
// chain onto a nested component instead of probing for attributes.
type Awaitable interface {
	Readiness() *Future
}

// Future is a single-assignment holder for an asynchronous result.
type Future struct {
	loop *tick.Loop

	mu    sync.Mutex
	state State
	value any
	err   error
	conts []Continuation
}

// New returns a Pending future whose continuations will be posted to loop.
func New(loop *tick.Loop) *Future {
	if loop == nil {
		panic("future: nil loop")
	}
	return &Future{loop: loop}
}

// State returns the current completion state.
func (f *Future) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Result returns the outcome of the future. done is false while Pending,
// in which case value and err are meaningless.
func (f *Future) Result() (value any, err error, done bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == Pending {
		return nil, nil, false
	}
	return f.value, f.err, true
}

// Resolve completes the future successfully. It returns ErrAlreadyCompleted
// if the future is no longer Pending. Queued continuations are posted to the
// loop, never run inline.
func (f *Future) Resolve(value any) error {
	return f.complete(Resolved, value, nil)
}

// Fail completes the future with cause. It returns ErrAlreadyCompleted if
// the future is no longer Pending.
func (f *Future) Fail(cause error) error {
	if cause == nil {
		panic("future: Fail called with nil error")
	}
	return f.complete(Failed, nil, cause)
}

func (f *Future) complete(s State, value any, err error) error {
	f.mu.Lock()
	if f.state != Pending {
		f.mu.Unlock()
		return ErrAlreadyCompleted
	}
	f.state = s
	f.value = value
	f.err = err
	conts := f.conts
	f.conts = nil
	f.mu.Unlock()

	for _, c := range conts {
		c := c
		f.loop.Post(func() { c(value, err) })
	}
	return nil
}

// OnComplete registers a continuation for the future's outcome. If the
// future is already complete the continuation is still deferred to a later
// tick. This is the guarantee that lets an instance under construction
// register all of its waits before any of them can fire.
func (f *Future) OnComplete(c Continuation) {
	if c == nil {
		panic("future: nil continuation")
	}

	f.mu.Lock()
	if f.state == Pending {
		f.conts = append(f.conts, c)
		f.mu.Unlock()
		return
	}
	value, err := f.value, f.err
	f.mu.Unlock()

	f.loop.Post(func() { c(value, err) })
}

// AfterTick returns a future that resolves to nil on the next loop tick. It
// is the guard the orchestrator mixes into every dependency wait so that no
// instance can become ready inside its own construction call.
func AfterTick(loop *tick.Loop) *Future {
	f := New(loop)
	loop.Post(func() { _ = f.Resolve(nil) })
	return f
}
