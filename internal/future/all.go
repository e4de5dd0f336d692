package future

import (
	"sync/atomic"

	"github.com/vk/knitgo/internal/tick"
)

// All returns a future that resolves with the input values, in input order,
// once every input has resolved. It fails with the first error to occur and
// stops waiting on the remaining inputs; later outcomes are discarded.
func All(loop *tick.Loop, futures ...*Future) *Future {
	out := New(loop)

	if len(futures) == 0 {
		_ = out.Resolve([]any{})
		return out
	}

	values := make([]any, len(futures))
	remaining := int64(len(futures))

	for i, f := range futures {
		i, f := i, f
		f.OnComplete(func(value any, err error) {
			if err != nil {
				// First failure wins; ErrAlreadyCompleted just means
				// another input failed before this one.
				_ = out.Fail(err)
				return
			}
			values[i] = value
			if atomic.AddInt64(&remaining, -1) == 0 {
				_ = out.Resolve(values)
			}
		})
	}
	return out
}
