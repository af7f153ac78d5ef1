// Package rstb is a coroutine-based hardware-verification runtime.
//
// A digital-logic simulator loads this package's host binary as a shared
// library through its native programmer interface (VPI/VHPI/Verilator-style,
// see [SimBackend]) and drives it entirely through callbacks: whenever the
// simulator advances to a point of interest — a fixed delay elapses, a
// signal changes, or a read-only/read-write phase of the simulation cycle
// is reached — it invokes one of the four react entrypoints
// ([ReactTimer], [ReactEdge], [ReactReadOnly], [ReactReadWrite]).
//
// # Architecture
//
// Four tightly coupled subsystems make up the core:
//
//   - The [Executor] multiplexes many user test goroutines over the
//     simulator's single callback thread, via a FIFO ready queue and the
//     [Task]/[JoinHandle] pair.
//   - The [Trigger] type and the package-level callback registries
//     translate awaits on simulator events into at most one outstanding
//     simulator callback per distinct event, fanning a single fired
//     callback out to every waiter.
//   - The [Assertion] engine runs long-lived named checkers that arm on a
//     trigger, evaluate a condition synchronously, and spawn a checker
//     task, optionally sampling a bounded per-signal value history.
//   - The test orchestrator ([RegisterTest], [PassTest], [FailTest]) runs
//     a declared sequence of [Test] values back to back within one
//     simulator invocation, tearing down all assertion tasks, triggers and
//     other live tasks between tests.
//
// # Goroutine model
//
// Go has no async/await. Every [Task] is a real goroutine parked on an
// unbuffered channel; [TaskContext.Await] blocks that goroutine until its
// waker fires, and the [Executor] hands exactly one goroutine the "run"
// token at a time so user code never executes concurrently with itself —
// preserving the single-threaded cooperative scheduling model the
// simulator's callback-driven control flow requires.
//
// # Non-goals
//
// No parallel execution of Tasks, no preemption, no work-stealing, no
// cross-process communication, and no virtual time of its own: simulator
// time (via [SimBackend.GetSimTimeSteps]) is authoritative.
package rstb
