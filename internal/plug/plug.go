// Package plug implements dependency descriptors: the per-attribute
// declaration of one dependency of a component type. A plug is either
// Direct (a constructor recipe invoked at resolution time) or Capability
// (an abstract identifier matched through the broker). The plug is owned by
// the declaring type and shared by all of its instances; resolved values
// are stored per owning instance.
package plug

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/vk/knitgo/internal/broker"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/tick"
)

var (
	// ErrAlreadyInitialized is returned when Resolve is invoked a second
	// time for the same owner.
	ErrAlreadyInitialized = errors.New("plug: already resolved for this owner")
	// ErrNotReady is returned when a resolved value is read before
	// resolution has completed.
	ErrNotReady = errors.New("plug: value not ready")
	// ErrImmutable is returned on any attempt to write or clear a slot
	// from outside the resolution protocol.
	ErrImmutable = errors.New("plug: resolved values are immutable")
)

// ConstructorError wraps a failure raised synchronously by a Direct plug's
// recipe. It is the one failure mode that surfaces out of construction
// instead of through the readiness future, because no asynchronous boundary
// has been crossed yet.
type ConstructorError struct {
	Cause error
}

func (e *ConstructorError) Error() string {
	return fmt.Sprintf("plug: constructor failed: %v", e.Cause)
}

func (e *ConstructorError) Unwrap() error {
	return e.Cause
}

// Kind distinguishes the two descriptor variants.
type Kind int

const (
	// KindDirect resolves by invoking a constructor recipe.
	KindDirect Kind = iota
	// KindCapability resolves by consulting the broker for an abstract
	// capability.
	KindCapability
)

// Recipe is a construction callable. Arguments are captured in the closure
// by the declaring code.
type Recipe func(ctx context.Context) (any, error)

// Plug is one dependency descriptor. The zero value is not usable; create
// plugs with Direct or ForCapability.
type Plug struct {
	kind       Kind
	recipe     Recipe
	capability string

	mu    sync.Mutex
	slots map[any]*slot
}

// slot holds the per-owner resolution state.
type slot struct {
	value any
	done  bool
}

// Direct declares a dependency constructed by recipe at resolution time.
func Direct(recipe Recipe) *Plug {
	if recipe == nil {
		panic("plug: nil recipe")
	}
	return &Plug{
		kind:   KindDirect,
		recipe: recipe,
		slots:  make(map[any]*slot),
	}
}

// ForCapability declares a dependency on the abstract capability id,
// satisfied by whichever component publishes it first.
func ForCapability(id string) *Plug {
	if id == "" {
		panic("plug: empty capability identifier")
	}
	return &Plug{
		kind:       KindCapability,
		capability: id,
		slots:      make(map[any]*slot),
	}
}

// Kind returns the descriptor variant.
func (p *Plug) Kind() Kind {
	return p.kind
}

// Capability returns the capability identifier for KindCapability plugs and
// the empty string otherwise.
func (p *Plug) Capability() string {
	return p.capability
}

// Resolve performs the resolution protocol for one owning instance and
// returns the future that completes when the dependency is satisfied.
//
// Direct plugs invoke their recipe synchronously. A recipe failure is
// reported as a *ConstructorError return, not through the future. If the
// produced value implements future.Awaitable, the returned future tracks
// the nested readiness instead of completing with the bare construction:
// the dependency counts as satisfied only once the nested component is
// fully ready, and the resolved value is whatever its readiness carries.
//
// Capability plugs return the broker's future for the capability, which may
// stay pending forever if no implementor is ever published.
//
// Resolve may be invoked at most once per (plug, owner) pair; a second call
// returns ErrAlreadyInitialized even if the first attempt failed.
func (p *Plug) Resolve(ctx context.Context, owner any, loop *tick.Loop, brk *broker.Broker) (*future.Future, error) {
	p.mu.Lock()
	if _, exists := p.slots[owner]; exists {
		p.mu.Unlock()
		return nil, ErrAlreadyInitialized
	}
	sl := &slot{}
	p.slots[owner] = sl
	p.mu.Unlock()

	var fut *future.Future
	switch p.kind {
	case KindDirect:
		value, err := p.recipe(ctx)
		if err != nil {
			return nil, &ConstructorError{Cause: err}
		}
		fut = future.New(loop)
		if aw, ok := value.(future.Awaitable); ok {
			nested := fut
			aw.Readiness().OnComplete(func(v any, err error) {
				if err != nil {
					_ = nested.Fail(err)
					return
				}
				_ = nested.Resolve(v)
			})
		} else {
			_ = fut.Resolve(value)
		}
	case KindCapability:
		fut = brk.Await(p.capability)
	default:
		panic(fmt.Sprintf("plug: unknown kind %d", p.kind))
	}

	fut.OnComplete(func(v any, err error) {
		if err != nil {
			return
		}
		p.mu.Lock()
		sl.value = v
		sl.done = true
		p.mu.Unlock()
	})
	return fut, nil
}

// Value returns the resolved value for owner. It returns ErrNotReady until
// the owner's resolution future has completed successfully.
func (p *Plug) Value(owner any) (any, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	sl, ok := p.slots[owner]
	if !ok || !sl.done {
		return nil, ErrNotReady
	}
	return sl.value, nil
}

// Set refuses to write a slot from outside the resolution protocol.
func (p *Plug) Set(owner, value any) error {
	return ErrImmutable
}

// Clear refuses to discard a slot from outside the resolution protocol.
func (p *Plug) Clear(owner any) error {
	return ErrImmutable
}
