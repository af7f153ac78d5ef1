package rstb

import (
	"errors"
	"fmt"
	"sync"
	"time"
)

// TestFunc is a registered test body. It receives the design's root scope
// directly, since every test needs it, and runs as its own Task: it may
// conclude by simply returning (a non-nil error fails the test, nil
// passes it), or it may call PassTest/FailTest itself at any point,
// including from another Task it has forked.
type TestFunc func(tc *TaskContext, dut *SimObject) (Val, error)

// Test is one registered, named test and its eventual result.
type Test struct {
	name string
	fn   TestFunc
	opts *orchestratorOptions

	ran           bool
	skipped       bool
	passed        bool
	resultVal     Val
	resultErr     error
	wallStart     time.Time
	wallEnd       time.Time
	simStartSteps uint64
	simEndSteps   uint64
}

// Name returns the test's registered name.
func (t *Test) Name() string { return t.name }

// Ran reports whether this test actually executed (false for a skipped
// test, or one the orchestrator never reached because an earlier test
// never concluded).
func (t *Test) Ran() bool { return t.ran }

// Skipped reports whether this test was registered with WithSkip.
func (t *Test) Skipped() bool { return t.skipped }

// Passed reports the test's outcome. Meaningless if Ran is false.
func (t *Test) Passed() bool { return t.passed }

// Err returns the test's failure reason, or nil if it passed.
func (t *Test) Err() error { return t.resultErr }

// WallDuration returns the test's real-time execution span.
func (t *Test) WallDuration() time.Duration { return t.wallEnd.Sub(t.wallStart) }

// SimSteps returns the number of simulator steps the test ran for.
func (t *Test) SimSteps() uint64 { return t.simEndSteps - t.simStartSteps }

// orchestrator chains every registered Test to run one at a time, in
// registration order, tearing the runtime down between each.
type orchestrator struct {
	rt *Runtime

	mu            sync.Mutex
	tests         []*Test
	idx           int
	current       *Test
	currentHandle *JoinHandle
}

func newOrchestrator(rt *Runtime) *orchestrator {
	return &orchestrator{rt: rt}
}

func (o *orchestrator) register(name string, fn TestFunc, opts []OrchestratorOption) *Test {
	t := &Test{name: name, fn: fn, opts: resolveOrchestratorOptions(opts)}
	o.mu.Lock()
	o.tests = append(o.tests, t)
	o.mu.Unlock()
	return t
}

// start runs the first registered test (or the first non-skipped one).
// Called once, from StartOfSimulation.
func (o *orchestrator) start() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.advanceLocked()
}

func (o *orchestrator) count() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.tests)
}

func (o *orchestrator) results() []*Test {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]*Test, len(o.tests))
	copy(out, o.tests)
	return out
}

// advanceLocked starts the next not-yet-run test, skipping over any
// registered with WithSkip, or leaves the orchestrator idle if none
// remain. Callers must hold o.mu.
func (o *orchestrator) advanceLocked() {
	for o.idx < len(o.tests) {
		test := o.tests[o.idx]
		o.idx++

		if test.opts.skip {
			test.skipped = true
			test.resultErr = errors.New(test.opts.skipCause)
			continue
		}

		dut, err := o.rt.GetRootObject()
		if err != nil {
			test.ran = true
			test.resultErr = fmt.Errorf("rstb: resolving root object for test %q: %w", test.name, err)
			continue
		}

		test.wallStart = time.Now()
		test.simStartSteps = o.rt.backend.GetSimTimeSteps()
		o.current = test
		o.rt.assertions.runAll(o.rt)

		handle := o.rt.Spawn(test.name, func(tc *TaskContext) (Val, error) {
			val, err := test.fn(tc, dut)
			// test.fn may have already concluded itself via PassTest/FailTest
			// (directly, or from a task it forked), in which case o.current
			// has already moved on to a later test by the time we get here.
			// Concluding again unconditionally would hijack that later
			// test's slot instead of being the harmless no-op it should be.
			if !test.ran {
				if err != nil {
					o.conclude(false, Neutral, err)
				} else {
					o.conclude(true, val, nil)
				}
			}
			return val, err
		})
		o.currentHandle = handle

		if test.opts.timeout > 0 {
			timeout := test.opts.timeout
			o.rt.Spawn(test.name+":timeout", func(tc *TaskContext) (Val, error) {
				if _, err := tc.Await(TimerSteps(timeout)); err != nil {
					return Neutral, err
				}
				o.conclude(false, Neutral, fmt.Errorf("rstb: test %q timed out after %d steps", test.name, timeout))
				return Neutral, nil
			})
		}
		return
	}
	o.current = nil
	o.currentHandle = nil
}

// conclude takes the current test slot, if any, records the result, tears
// the runtime down, and advances to the next test. A call made while no
// test is in flight (e.g. a late PassTest/FailTest after the last test has
// concluded) finds the slot empty and returns ErrNoCurrentTest. The
// wrapper in advanceLocked does not call this at all once the test has
// concluded itself, since by then the slot may already hold the next test.
func (o *orchestrator) conclude(passed bool, val Val, resultErr error) error {
	o.mu.Lock()
	test := o.current
	handle := o.currentHandle
	if test == nil {
		o.mu.Unlock()
		return ErrNoCurrentTest
	}
	o.current = nil
	o.currentHandle = nil
	o.mu.Unlock()

	test.wallEnd = time.Now()
	test.simEndSteps = o.rt.backend.GetSimTimeSteps()
	test.passed = passed
	test.resultVal = val
	test.resultErr = resultErr
	test.ran = true

	o.rt.tearDownTest()
	if handle != nil {
		handle.Cancel()
	}

	o.mu.Lock()
	o.advanceLocked()
	o.mu.Unlock()
	return nil
}

// PassTest concludes the currently running test successfully. Safe to
// call from the test's own body or from any task it has forked (e.g. to
// cancel a long-running monitor and move on early).
func (rt *Runtime) PassTest(msg string) error {
	return rt.orchestrator.conclude(true, String(msg), nil)
}

// PassTest concludes the process's currently running test successfully.
func PassTest(msg string) error { return currentRuntime().PassTest(msg) }

// FailTest concludes the currently running test with a failure.
func (rt *Runtime) FailTest(reason string) error {
	return rt.orchestrator.conclude(false, Neutral, errors.New(reason))
}

// FailTest concludes the process's currently running test with a failure.
func FailTest(reason string) error { return currentRuntime().FailTest(reason) }

// RegisterTest declares a named test against rt's orchestrator. Tests run
// in registration order, one at a time, starting at StartOfSimulation.
func (rt *Runtime) RegisterTest(name string, fn TestFunc, opts ...OrchestratorOption) *Test {
	return rt.orchestrator.register(name, fn, opts)
}

// RegisterTest declares a named test against the process's installed
// Runtime.
func RegisterTest(name string, fn TestFunc, opts ...OrchestratorOption) *Test {
	return currentRuntime().RegisterTest(name, fn, opts...)
}
