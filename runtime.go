package rstb

import (
	"fmt"
	"math"
	"time"
)

// Runtime ties the executor, trigger registries, signal cache, assertion
// engine and test orchestrator to one SimBackend. A process hosts exactly
// one Runtime, installed by Init and reached thereafter through the
// package-level functions (Spawn, GetObjectByName, ReactTimer, ...) that
// every simulator binding calls into.
type Runtime struct {
	backend      SimBackend
	executor     *Executor
	registry     *triggerRegistry
	objects      *simObjectCache
	assertions   *assertionRegistry
	orchestrator *orchestrator
	opts         *runtimeOptions
	wallStart    time.Time
}

var globalRuntime *Runtime

// Init installs backend as the process's SimBackend and constructs the
// runtime's subsystems. It must be called exactly once, before the
// backend delivers start_of_simulation.
func Init(backend SimBackend, opts ...RuntimeOption) *Runtime {
	rt := &Runtime{
		backend:  backend,
		executor: newExecutor(),
		registry: newTriggerRegistry(),
		objects:  newSimObjectCache(),
		opts:     resolveRuntimeOptions(opts),
	}
	rt.assertions = newAssertionRegistry(rt.opts.historyDepthHint)
	rt.orchestrator = newOrchestrator(rt)
	if rt.opts.logger != nil {
		SetLogger(rt.opts.logger)
	}
	globalRuntime = rt
	return rt
}

func currentRuntime() *Runtime {
	if globalRuntime == nil {
		panic(ErrRuntimeNotInitialized)
	}
	return globalRuntime
}

// Backend returns the SimBackend the runtime was initialized with.
func (rt *Runtime) Backend() SimBackend { return rt.backend }

// Spawn starts fn as a new Task on rt's executor and returns a handle to
// observe its eventual result. The new task is scheduled onto the ready
// queue but does not begin running until the next time something drains
// the queue (the next react_* entrypoint, or, for a task spawned from
// outside any callback, an explicit Drain call).
func (rt *Runtime) Spawn(name string, fn CoroutineFunc) *JoinHandle {
	return rt.executor.spawn(rt, name, fn)
}

// Spawn forks fn on the process's installed Runtime.
func Spawn(name string, fn CoroutineFunc) *JoinHandle {
	return currentRuntime().Spawn(name, fn)
}

// Drain runs every currently-ready task to its next suspension point.
// Simulator bindings call this after the first Spawn at start-of-simulation,
// when no react_* entrypoint is already going to do it.
func (rt *Runtime) Drain() { rt.executor.drain() }

// GetObjectByName resolves path against rt's backend, interning the
// result.
func (rt *Runtime) GetObjectByName(path string) (*SimObject, error) {
	return rt.objects.getByName(rt.backend, path)
}

// GetObjectByName resolves path against the process's installed Runtime.
func GetObjectByName(path string) (*SimObject, error) {
	return currentRuntime().GetObjectByName(path)
}

// GetRootObject returns the top-level design scope.
func (rt *Runtime) GetRootObject() (*SimObject, error) {
	handle, err := rt.backend.GetRootObject()
	if err != nil {
		return nil, fmt.Errorf("rstb: resolving root object: %w", err)
	}
	return rt.objects.getByHandle(rt.backend, handle)
}

// GetRootObject returns the top-level design scope of the process's
// installed Runtime.
func GetRootObject() (*SimObject, error) {
	return currentRuntime().GetRootObject()
}

// ReactTimer is the simulator-callback entrypoint for a fired timer
// callback; absSteps is the absolute step count it was registered for.
func ReactTimer(absSteps uint64) {
	rt := currentRuntime()
	rt.registry.reactTimer(absSteps)
	rt.executor.drain()
}

// ReactEdge is the simulator-callback entrypoint for a fired edge
// callback on the signal identified by handle; observed is the direction
// the backend classified the transition as.
func ReactEdge(handle ObjectHandle, observed EdgeKind) {
	rt := currentRuntime()
	rt.registry.reactEdge(rt, handle, observed)
	rt.executor.drain()
}

// ReactReadOnly is the simulator-callback entrypoint for the read-only
// phase of the simulation cycle.
func ReactReadOnly() {
	rt := currentRuntime()
	rt.registry.reactReadOnly()
	rt.executor.drain()
}

// ReactReadWrite is the simulator-callback entrypoint for the read-write
// phase of the simulation cycle.
func ReactReadWrite() {
	rt := currentRuntime()
	rt.registry.reactReadWrite()
	rt.executor.drain()
}

// StartOfSimulation is the simulator-callback entrypoint invoked once,
// before the first simulation time step, after Init. It starts the
// orchestrator's first registered test and drains the ready queue so the
// test body runs up to its first suspension point before control returns
// to the simulator.
func StartOfSimulation() {
	rt := currentRuntime()
	rt.wallStart = time.Now()
	CurrentLogger().Info().Log("start of simulation")
	rt.orchestrator.start()
	rt.executor.drain()
}

// EndOfSimulation is the simulator-callback entrypoint invoked once the
// simulator has no more scheduled activity (or the orchestrator has run
// out of tests). It writes results.xml and logs a simulation-speed
// summary.
func EndOfSimulation() {
	rt := currentRuntime()
	wall := time.Since(rt.wallStart).Seconds()
	simSeconds := float64(rt.backend.GetSimTimeSteps()) * math.Pow10(int(rt.backend.GetSimPrecision()))
	var speed float64
	if wall > 0 {
		speed = simSeconds / wall
	}
	CurrentLogger().Info().
		Int("tests_run", rt.orchestrator.count()).
		Log("end of simulation")
	if path := rt.opts.junitPath; path != "" {
		if err := writeJUnitFile(path, rt.orchestrator.results()); err != nil {
			CurrentLogger().Err().Err(err).Log("failed to write results file")
		}
	}
	rt.backend.Log(fmt.Sprintf("rstb: simulation speed %.2f sim-seconds/wall-second", speed))
}

// tearDownTest releases every resource owned by the test that just
// concluded, in the order the runtime requires: assertions first (they
// own checker tasks), then triggers (they own backend callback handles),
// then every other task the concluded test left running. The SimObject
// interning cache is not part of this teardown: signal identities are
// stable for the life of the whole simulation run, not scoped to one
// test.
//
// This does not clear the ready queue outright (unlike the orchestrator
// this runtime is modeled on, which can simply drop a cancelled future).
// A Task here is a real goroutine parked on a channel receive; it must be
// handed the baton one more time to observe its own cancellation and
// return, or it leaks forever. cancelAllLive wakes every live task; the
// drain loop already in progress above this call on the stack (every path
// that can reach tearDownTest runs from inside one) is what actually
// resumes and unwinds them once this function returns.
func (rt *Runtime) tearDownTest() {
	rt.assertions.tearDownAll(rt)
	rt.registry.cancelAll(rt)
	rt.executor.cancelAllLive()
}
