package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/vk/knitgo/internal/assembler"
	"github.com/vk/knitgo/internal/broker"
	"github.com/vk/knitgo/internal/ctxlog"
	"github.com/vk/knitgo/internal/lifecycle"
	"github.com/vk/knitgo/internal/tick"
)

// RunResult reports the outcome of one assembly run.
type RunResult struct {
	Ready   []*lifecycle.Instance
	Failed  []*lifecycle.Instance
	Stalled []*lifecycle.Instance
	// StalledCapabilities lists capabilities that were awaited but never
	// published.
	StalledCapabilities []string
}

// Run constructs every instance the boot assembly requests and drives the
// loop to quiescence. It returns an error when any instance failed or
// stalled; stalling is not a core-protocol error, but an assembly that can
// never finish booting is an operator problem worth a non-zero exit.
func (a *App) Run(ctx context.Context) (*RunResult, error) {
	ctx = ctxlog.WithLogger(ctx, a.logger)
	a.logger.Debug("App.Run method started.")

	loop := tick.NewLoop()
	brk := broker.New(loop)
	orch := lifecycle.NewOrchestrator(loop, brk)
	asm := assembler.New(a.registry, orch)

	boots := a.model.Assembly.Boots
	if len(boots) == 0 {
		a.logger.Warn("No boot blocks found in assembly, nothing to construct.")
		return &RunResult{}, nil
	}

	a.logger.Info("Booting assembly.", "instances", len(boots))
	instances := make([]*lifecycle.Instance, 0, len(boots))
	for _, boot := range boots {
		inst, err := asm.Boot(ctx, boot)
		if err != nil {
			return nil, fmt.Errorf("failed to boot %q: %w", boot.Component, err)
		}
		instances = append(instances, inst)
	}

	steps := loop.Drain()
	a.logger.Debug("Loop drained.", "steps", steps)

	result := &RunResult{StalledCapabilities: brk.Stalled()}
	for _, inst := range instances {
		switch _, err, done := inst.Readiness().Result(); {
		case !done:
			a.logger.Warn("Instance never became ready.", "component", inst.Name(), "state", inst.State().String())
			result.Stalled = append(result.Stalled, inst)
		case err != nil:
			a.logger.Error("Instance failed.", "component", inst.Name(), "error", err)
			result.Failed = append(result.Failed, inst)
		default:
			a.logger.Info("Instance ready.", "component", inst.Name())
			result.Ready = append(result.Ready, inst)
		}
	}

	if len(result.Failed) > 0 {
		return result, fmt.Errorf("%d instance(s) failed during boot", len(result.Failed))
	}
	if len(result.Stalled) > 0 {
		return result, fmt.Errorf("%d instance(s) stalled waiting on capabilities: %s",
			len(result.Stalled), strings.Join(result.StalledCapabilities, ", "))
	}

	a.logger.Info("Assembly ready.", "instances", len(result.Ready))
	return result, nil
}

// ReadyValue returns the component value of the named ready instance, for
// callers embedding the app.
func (r *RunResult) ReadyValue(name string) (any, bool) {
	for _, inst := range r.Ready {
		if inst.Name() == name {
			if v, err, done := inst.Readiness().Result(); done && err == nil {
				return v, true
			}
			return nil, false
		}
	}
	return nil, false
}
