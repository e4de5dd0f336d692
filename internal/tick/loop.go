package tick

import (
	"context"
	"sync"
)

// Loop is a cooperative run queue. Callbacks are queued with Post and are
// executed in FIFO order when the loop is pumped with Tick, Drain, or Run.
type Loop struct {
	mu    sync.Mutex
	queue []func()
	wake  chan struct{}
}

// NewLoop creates an empty, ready-to-pump Loop.
func NewLoop() *Loop {
	return &Loop{
		wake: make(chan struct{}, 1),
	}
}

// Post schedules fn to run on a later iteration of the loop. It never
// invokes fn inline.
func (l *Loop) Post(fn func()) {
	if fn == nil {
		panic("tick: nil callback posted to loop")
	}

	l.mu.Lock()
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
}

// Tick runs every callback that was queued before the call and returns how
// many ran. Callbacks posted during the batch are deferred to the next tick.
func (l *Loop) Tick() int {
	l.mu.Lock()
	batch := l.queue
	l.queue = nil
	l.mu.Unlock()

	for _, fn := range batch {
		fn()
	}
	return len(batch)
}

// Drain pumps the loop until no callbacks remain and returns the total
// number executed. With no external producers this runs the engine to
// quiescence: anything still pending afterwards is waiting on an event that
// will never arrive from inside the loop.
func (l *Loop) Drain() int {
	total := 0
	for {
		n := l.Tick()
		if n == 0 {
			return total
		}
		total += n
	}
}

// Pending returns the number of callbacks currently queued.
func (l *Loop) Pending() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.queue)
}

// Run pumps the loop until ctx is cancelled, blocking between batches until
// new work is posted. It is intended for hosts that post work from other
// goroutines; single-threaded callers should prefer Drain.
func (l *Loop) Run(ctx context.Context) error {
	for {
		if l.Tick() > 0 {
			continue
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.wake:
		}
	}
}
