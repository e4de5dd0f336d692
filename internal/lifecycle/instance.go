package lifecycle

import (
	"fmt"
	"sync/atomic"

	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/registry"
)

// State is the lifecycle state of a managed instance.
type State int32

const (
	// Constructing indicates the component's own constructor is running.
	Constructing State = iota
	// AwaitingDependencies indicates dependency descriptors are resolving.
	AwaitingDependencies
	// RunningSetup indicates setup hooks are running.
	RunningSetup
	// Ready indicates the instance is fully ready and published.
	Ready
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case Constructing:
		return "constructing"
	case AwaitingDependencies:
		return "awaiting-dependencies"
	case RunningSetup:
		return "running-setup"
	case Ready:
		return "ready"
	default:
		return "unknown"
	}
}

// Instance is one managed component instance. It implements
// future.Awaitable, so a Direct dependency producing an Instance makes the
// dependent wait for full readiness rather than bare construction, and
// registry.Owner, so setup hooks can read resolved dependencies.
type Instance struct {
	typ       *registry.Type
	value     any
	readiness *future.Future
	state     atomic.Int32
}

// Name returns the component type name.
func (i *Instance) Name() string {
	return i.typ.Name
}

// Type returns the component type declaration.
func (i *Instance) Type() *registry.Type {
	return i.typ
}

// Value returns the component value produced by the constructor.
func (i *Instance) Value() any {
	return i.value
}

// State returns the current lifecycle state.
func (i *Instance) State() State {
	return State(i.state.Load())
}

func (i *Instance) setState(s State) {
	i.state.Store(int32(s))
}

// Readiness returns the instance's readiness future. It resolves with the
// component value once the instance is Ready, or fails with the error that
// stopped it.
func (i *Instance) Readiness() *future.Future {
	return i.readiness
}

// Dep returns the resolved value of the named dependency descriptor.
func (i *Instance) Dep(name string) (any, error) {
	p, ok := i.typ.Plug(name)
	if !ok {
		return nil, fmt.Errorf("component %q declares no plug %q", i.typ.Name, name)
	}
	return p.Value(i)
}
