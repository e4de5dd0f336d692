package lifecycle

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/knitgo/internal/broker"
	"github.com/vk/knitgo/internal/future"
	"github.com/vk/knitgo/internal/plug"
	"github.com/vk/knitgo/internal/registry"
	"github.com/vk/knitgo/internal/tick"
)

type testRig struct {
	loop *tick.Loop
	brk  *broker.Broker
	orch *Orchestrator
}

func newRig() *testRig {
	loop := tick.NewLoop()
	brk := broker.New(loop)
	return &testRig{loop: loop, brk: brk, orch: NewOrchestrator(loop, brk)}
}

func TestZeroDependencyReadiness(t *testing.T) {
	rig := newRig()
	typ := registry.Define("logger", func(context.Context) (any, error) {
		return "logger-value", nil
	}).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)

	// Never ready synchronously within construction.
	assert.Equal(t, AwaitingDependencies, inst.State())
	assert.Equal(t, future.Pending, inst.Readiness().State())

	rig.loop.Drain()
	assert.Equal(t, Ready, inst.State())

	v, err, done := inst.Readiness().Result()
	require.True(t, done)
	require.NoError(t, err)
	assert.Equal(t, "logger-value", v)
}

func TestDirectDependencyOrdering(t *testing.T) {
	rig := newRig()
	var order []string

	depType := registry.Define("dep", func(context.Context) (any, error) {
		order = append(order, "dep-constructed")
		return "dep-value", nil
	}).OnSetup(func(context.Context, registry.Owner) (*future.Future, error) {
		order = append(order, "dep-setup")
		return nil, nil
	}).Build()

	typ := registry.Define("consumer", func(context.Context) (any, error) {
		order = append(order, "consumer-constructed")
		return "consumer-value", nil
	}).Needs("dep", plug.Direct(func(ctx context.Context) (any, error) {
		// Construct the nested managed component; the consumer must wait
		// for its full readiness, not just its construction.
		return rig.orch.Construct(ctx, depType)
	})).OnSetup(func(_ context.Context, owner registry.Owner) (*future.Future, error) {
		v, err := owner.Dep("dep")
		require.NoError(t, err)
		assert.Equal(t, "dep-value", v)
		order = append(order, "consumer-setup")
		return nil, nil
	}).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)
	rig.loop.Drain()

	assert.Equal(t, Ready, inst.State())
	assert.Equal(t, []string{
		"consumer-constructed",
		"dep-constructed",
		"dep-setup",
		"consumer-setup",
	}, order)
}

func TestConstructorFailureIsSynchronous(t *testing.T) {
	rig := newRig()
	cause := errors.New("no disk")
	typ := registry.Define("broken", func(context.Context) (any, error) {
		return nil, cause
	}).Build()

	_, err := rig.orch.Construct(context.Background(), typ)
	assert.ErrorIs(t, err, cause)
}

func TestDirectRecipeFailureFailsReadiness(t *testing.T) {
	rig := newRig()
	cause := errors.New("recipe exploded")
	typ := registry.Define("consumer", func(context.Context) (any, error) {
		return "v", nil
	}).Needs("dep", plug.Direct(func(context.Context) (any, error) {
		return nil, cause
	})).Build()

	_, err := rig.orch.Construct(context.Background(), typ)
	require.Error(t, err)
	var ce *plug.ConstructorError
	assert.ErrorAs(t, err, &ce)
	assert.ErrorIs(t, err, cause)
}

func TestSetupHookErrorFailsReadiness(t *testing.T) {
	rig := newRig()
	cause := errors.New("setup refused")
	typ := registry.Define("flaky", func(context.Context) (any, error) {
		return "v", nil
	}).OnSetup(func(context.Context, registry.Owner) (*future.Future, error) {
		return nil, cause
	}).Satisfies("flaky").Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)
	rig.loop.Drain()

	assert.Equal(t, RunningSetup, inst.State(), "a failed instance never reaches Ready")
	_, rerr, done := inst.Readiness().Result()
	require.True(t, done)
	assert.ErrorIs(t, rerr, cause)

	// A failed instance never registers with the broker.
	_, ok := rig.brk.Lookup("flaky")
	assert.False(t, ok)
}

func TestAllSetupHooksRunDespiteEarlyError(t *testing.T) {
	rig := newRig()
	first := errors.New("first hook refused")
	var invoked []string

	typ := registry.Define("multi", func(context.Context) (any, error) {
		return "v", nil
	}).OnSetup(func(context.Context, registry.Owner) (*future.Future, error) {
		invoked = append(invoked, "failing")
		return nil, first
	}).OnSetup(func(context.Context, registry.Owner) (*future.Future, error) {
		invoked = append(invoked, "succeeding")
		return nil, nil
	}).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)
	rig.loop.Drain()

	assert.Equal(t, []string{"failing", "succeeding"}, invoked,
		"an erroring hook must not stop the remaining hooks from running")
	_, rerr, done := inst.Readiness().Result()
	require.True(t, done)
	assert.ErrorIs(t, rerr, first)
}

func TestAsyncSetupHook(t *testing.T) {
	rig := newRig()
	gate := future.New(rig.loop)
	typ := registry.Define("slow", func(context.Context) (any, error) {
		return "v", nil
	}).OnSetup(func(context.Context, registry.Owner) (*future.Future, error) {
		return gate, nil
	}).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)
	rig.loop.Drain()
	assert.Equal(t, RunningSetup, inst.State())

	require.NoError(t, gate.Resolve(nil))
	rig.loop.Drain()
	assert.Equal(t, Ready, inst.State())
}

func TestUnpublishedCapabilityStaysPending(t *testing.T) {
	rig := newRig()
	typ := registry.Define("consumer", func(context.Context) (any, error) {
		return "v", nil
	}).Needs("store", plug.ForCapability("store")).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)

	// Drain repeatedly: no amount of idle ticks may spuriously resolve it.
	for i := 0; i < 5; i++ {
		rig.loop.Drain()
		rig.loop.Tick()
	}
	assert.Equal(t, AwaitingDependencies, inst.State())
	assert.Equal(t, future.Pending, inst.Readiness().State())
	assert.Equal(t, []string{"store"}, rig.brk.Stalled())
}

// TestLoggerServiceMemCache walks the canonical late-binding scenario: a
// service depends on a logger directly and on a "cache" capability that
// only appears after the service is already waiting.
func TestLoggerServiceMemCache(t *testing.T) {
	rig := newRig()
	ctx := context.Background()

	loggerType := registry.Define("logger", func(context.Context) (any, error) {
		return "logger-value", nil
	}).Build()

	serviceType := registry.Define("service", func(context.Context) (any, error) {
		return "service-value", nil
	}).Needs("logger", plug.Direct(func(ctx context.Context) (any, error) {
		return rig.orch.Construct(ctx, loggerType)
	})).Needs("cache", plug.ForCapability("cache")).Build()

	service, err := rig.orch.Construct(ctx, serviceType)
	require.NoError(t, err)
	rig.loop.Drain()

	// Logger is ready, but no cache provider exists: service stays put.
	assert.Equal(t, AwaitingDependencies, service.State())
	assert.Equal(t, future.Pending, service.Readiness().State())

	memcacheType := registry.Define("memcache", func(context.Context) (any, error) {
		return "memcache-value", nil
	}).Satisfies("cache").Build()

	memcache, err := rig.orch.Construct(ctx, memcacheType)
	require.NoError(t, err)
	rig.loop.Drain()

	assert.Equal(t, Ready, memcache.State())
	assert.Equal(t, Ready, service.State())

	cache, err := service.Dep("cache")
	require.NoError(t, err)
	assert.Equal(t, "memcache-value", cache)

	logger, err := service.Dep("logger")
	require.NoError(t, err)
	assert.Equal(t, "logger-value", logger)
}

func TestDepUnknownPlug(t *testing.T) {
	rig := newRig()
	typ := registry.Define("plain", func(context.Context) (any, error) {
		return "v", nil
	}).Build()

	inst, err := rig.orch.Construct(context.Background(), typ)
	require.NoError(t, err)
	rig.loop.Drain()

	_, err = inst.Dep("nope")
	assert.ErrorContains(t, err, "declares no plug")
}
