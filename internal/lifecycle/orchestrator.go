package lifecycle

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/vk/knitgo/internal/broker"
	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/registry"
	"github.com/vk/knitgo/internal/tick"
)

// Orchestrator constructs managed instances and drives each through the
// lifecycle state machine on a shared loop and broker.
type Orchestrator struct {
	loop   *tick.Loop
	broker *broker.Broker
}

// NewOrchestrator creates an orchestrator bound to the given loop and
// broker.
func NewOrchestrator(loop *tick.Loop, brk *broker.Broker) *Orchestrator {
	if loop == nil || brk == nil {
		panic("lifecycle: orchestrator requires a loop and a broker")
	}
	return &Orchestrator{loop: loop, broker: brk}
}

// Loop returns the loop the orchestrator schedules on.
func (o *Orchestrator) Loop() *tick.Loop {
	return o.loop
}

// Broker returns the capability broker.
func (o *Orchestrator) Broker() *broker.Broker {
	return o.broker
}

// Construct builds a new instance of t and starts its lifecycle. The
// returned instance is never Ready when Construct returns; readiness is
// always published on a later loop tick.
//
// A non-nil error reports a synchronous failure: the component's own
// constructor or a Direct plug's recipe failed before any asynchronous
// boundary was crossed. Everything later, such as a failing setup hook,
// is reported only through the instance's readiness future.
func (o *Orchestrator) Construct(ctx context.Context, t *registry.Type) (*Instance, error) {
	logger := ctxlog.FromContext(ctx).With("component", t.Name)

	// Readiness exists before any resolution begins so nested consumers
	// can wait on it immediately.
	inst := &Instance{typ: t, readiness: future.New(o.loop)}
	inst.setState(Constructing)

	value, err := t.New(ctx)
	if err != nil {
		err = fmt.Errorf("component %q: constructor: %w", t.Name, err)
		_ = inst.readiness.Fail(err)
		return nil, err
	}
	inst.value = value

	inst.setState(AwaitingDependencies)
	logger.Debug("Awaiting dependencies.", "plugs", len(t.Plugs))

	waits := make([]*future.Future, 0, len(t.Plugs)+1)
	waits = append(waits, future.AfterTick(o.loop))
	for _, np := range t.Plugs {
		fut, err := np.Plug.Resolve(ctx, inst, o.loop, o.broker)
		if err != nil {
			err = fmt.Errorf("component %q: plug %q: %w", t.Name, np.Name, err)
			_ = inst.readiness.Fail(err)
			return nil, err
		}
		waits = append(waits, fut)
	}

	future.All(o.loop, waits...).OnComplete(func(_ any, err error) {
		if err != nil {
			logger.Debug("Dependency wait failed.", "error", err)
			_ = inst.readiness.Fail(fmt.Errorf("component %q: dependencies: %w", t.Name, err))
			return
		}
		o.runSetup(ctx, inst)
	})

	return inst, nil
}

// runSetup runs every setup hook and moves the instance to Ready once all
// of their completion signals resolve.
func (o *Orchestrator) runSetup(ctx context.Context, inst *Instance) {
	logger := ctxlog.FromContext(ctx).With("component", inst.Name())
	inst.setState(RunningSetup)

	// Every registered hook is invoked, even after one errors. A
	// synchronous error becomes a failed completion signal, so the combined
	// wait fails with the first error while the other hooks still run.
	waits := make([]*future.Future, 0, len(inst.typ.Hooks))
	for _, hook := range inst.typ.Hooks {
		fut, err := hook(ctx, inst)
		if err != nil {
			logger.Debug("Setup hook failed.", "error", err)
			failed := future.New(o.loop)
			_ = failed.Fail(err)
			waits = append(waits, failed)
			continue
		}
		if fut != nil {
			waits = append(waits, fut)
		}
	}

	future.All(o.loop, waits...).OnComplete(func(_ any, err error) {
		if err != nil {
			logger.Debug("Setup wait failed.", "error", err)
			_ = inst.readiness.Fail(fmt.Errorf("component %q: setup: %w", inst.Name(), err))
			return
		}
		o.finish(logger, inst)
	})
}

// finish publishes the instance's capabilities and resolves readiness. The
// broker update and the readiness resolution land in the same scheduling
// step, so no waiter can observe one without the other.
func (o *Orchestrator) finish(logger *slog.Logger, inst *Instance) {
	inst.setState(Ready)
	o.broker.Publish(inst.value, inst.typ.Capabilities)
	_ = inst.readiness.Resolve(inst.value)
	logger.Debug("Component ready.", "capabilities", inst.typ.Capabilities)
}
