// Package lifecycle drives the per-instance state machine that sequences
// "construct, await dependencies, run setup, become ready".
//
// # State Machine
//
// Every managed instance moves through four states:
//
//	Constructing          the component's own constructor logic runs
//	AwaitingDependencies  every dependency descriptor is being resolved
//	RunningSetup          setup hooks run, each may defer via a future
//	Ready                 readiness resolved, capabilities published
//
// There is no terminal failure state: a failure anywhere in the chain fails
// the instance's readiness future and leaves the instance permanently short
// of Ready. A capability dependency that nobody ever publishes is not a
// failure at all; the instance simply stays pending, which is the
// documented liveness hazard of late-bound capabilities.
//
// # Ordering
//
// The readiness future is created before any dependency resolution starts,
// so nested consumers can obtain a handle to wait on immediately. An
// anti-reentrancy guard (a future resolving on the next loop tick) is mixed
// into every dependency wait; combined with the future package's
// never-inline continuation contract, an instance can never observe itself
// ready inside its own construction call.
package lifecycle
